// Package expr evaluates the subset of host expressions used by credential
// descriptors: "={{$credentials.<key>}}" placeholders inside otherwise literal text.
package expr

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"
)

const expressionPrefix = "="

var (
	ErrUnknownField          = errors.New("unknown credential field")
	ErrUnsupportedExpression = errors.New("unsupported expression")
)

var (
	placeholderRe   = regexp.MustCompile(`\{\{(.*?)\}\}`)
	credentialRefRe = regexp.MustCompile(`^\$credentials\.([A-Za-z_][A-Za-z0-9_]*)$`)
)

// IsExpression reports whether v is a template rather than a literal.
func IsExpression(v string) bool {
	return strings.HasPrefix(v, expressionPrefix)
}

// Resolve evaluates template against values. Literals are returned unchanged.
// Substituted values are never re-scanned for placeholders.
func Resolve(template string, values map[string]string) (string, error) {
	if !IsExpression(template) {
		return template, nil
	}
	body := strings.TrimPrefix(template, expressionPrefix)

	var firstErr error
	out := placeholderRe.ReplaceAllStringFunc(body, func(match string) string {
		if firstErr != nil {
			return ""
		}
		key, err := credentialKey(match)
		if err != nil {
			firstErr = err
			return ""
		}
		v, ok := values[key]
		if !ok {
			firstErr = fmt.Errorf("%w: %q", ErrUnknownField, key)
			return ""
		}
		return v
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

// References lists the credential keys a template reads, in first-use order.
func References(template string) ([]string, error) {
	if !IsExpression(template) {
		return nil, nil
	}
	matches := placeholderRe.FindAllString(strings.TrimPrefix(template, expressionPrefix), -1)
	keys := make([]string, 0, len(matches))
	for _, m := range matches {
		key, err := credentialKey(m)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return lo.Uniq(keys), nil
}

func credentialKey(placeholder string) (string, error) {
	inner := strings.TrimSpace(placeholderRe.FindStringSubmatch(placeholder)[1])
	m := credentialRefRe.FindStringSubmatch(inner)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedExpression, inner)
	}
	return m[1], nil
}
