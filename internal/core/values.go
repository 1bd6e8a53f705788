package core

import "fmt"

// Values maps property names to the user-supplied values of one stored credential.
type Values map[string]string

// ResolveValues returns one value per declared property. Stored values win;
// missing or empty ones fall back to the property default. Keys the spec does
// not declare are dropped.
func (s CredentialSpec) ResolveValues(stored map[string]string) Values {
	out := make(Values, len(s.Properties))
	for _, p := range s.Properties {
		if v, ok := stored[p.Name]; ok && v != "" {
			out[p.Name] = v
			continue
		}
		out[p.Name] = defaultString(p.Default)
	}
	return out
}

func defaultString(v any) string {
	switch d := v.(type) {
	case nil:
		return ""
	case string:
		return d
	default:
		return fmt.Sprint(d)
	}
}
