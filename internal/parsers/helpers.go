package parsers

import (
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Masked replaces a secret in any rendered output.
const Masked = "****"

// Mask hides val entirely. An auth scheme prefix such as "Bearer " is kept.
func Mask(val string) string {
	if scheme, _, ok := strings.Cut(val, " "); ok && isAuthScheme(scheme) {
		return scheme + " " + Masked
	}
	return Masked
}

func isAuthScheme(s string) bool {
	switch strings.ToLower(s) {
	case "bearer", "basic", "token", "bot", "apikey", "oauth":
		return true
	}
	return false
}

func RedactHeaders(headers http.Header, sensitiveKeys ...string) map[string]string {
	sensitive := map[string]bool{
		"authorization": true,
		"x-api-key":     true,
		"cookie":        true,
	}
	for _, k := range sensitiveKeys {
		sensitive[strings.ToLower(k)] = true
	}

	out := make(map[string]string)
	for k, vals := range headers {
		val := strings.Join(vals, ", ")
		if sensitive[strings.ToLower(k)] {
			val = Mask(val)
		}
		out[k] = val
	}
	return out
}

// RedactURL renders u with the values of the named query parameters masked.
// Masked values are written unescaped so they stay readable in logs.
func RedactURL(u *url.URL, sensitiveParams ...string) string {
	if u == nil {
		return ""
	}
	query := u.Query()
	if len(query) == 0 {
		return u.Redacted()
	}

	var b strings.Builder
	for _, k := range slices.Sorted(maps.Keys(query)) {
		for _, v := range query[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			if lo.Contains(sensitiveParams, k) && v != "" {
				b.WriteString(Masked)
			} else {
				b.WriteString(url.QueryEscape(v))
			}
		}
	}

	redacted := *u
	redacted.RawQuery = ""
	redacted.ForceQuery = false
	return redacted.Redacted() + "?" + b.String()
}
