package main

import (
	"fmt"
	"strings"

	"github.com/janekbaraniewski/credkit/internal/core"
)

// parseFieldAssignments turns repeated --field key=value flags into a map,
// rejecting keys the credential type does not declare.
func parseFieldAssignments(spec core.CredentialSpec, assignments []string) (map[string]string, error) {
	out := make(map[string]string, len(assignments))
	for _, a := range assignments {
		key, value, ok := strings.Cut(a, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid field %q, want key=value", a)
		}
		if _, declared := spec.Property(key); !declared {
			return nil, fmt.Errorf("credential type %q has no field %q", spec.Name, key)
		}
		out[key] = value
	}
	return out, nil
}
