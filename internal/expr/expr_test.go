package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	values := map[string]string{
		"accessToken": "abc123",
		"baseUrl":     "https://platform-api.max.ru",
		"empty":       "",
	}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{name: "literal", template: "/me", want: "/me"},
		{name: "literal with braces", template: "{{$credentials.accessToken}}", want: "{{$credentials.accessToken}}"},
		{name: "whole value", template: "={{$credentials.baseUrl}}", want: "https://platform-api.max.ru"},
		{name: "prefixed", template: "=Bearer {{$credentials.accessToken}}", want: "Bearer abc123"},
		{name: "inner whitespace", template: "={{ $credentials.accessToken }}", want: "abc123"},
		{name: "repeated", template: "={{$credentials.accessToken}}:{{$credentials.accessToken}}", want: "abc123:abc123"},
		{name: "empty value", template: "=Bearer {{$credentials.empty}}", want: "Bearer "},
		{name: "no placeholders", template: "=plain", want: "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.template, values)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_DoesNotRescanSubstitutedValues(t *testing.T) {
	got, err := Resolve("={{$credentials.a}}", map[string]string{
		"a": "{{$credentials.b}}",
		"b": "leak",
	})
	require.NoError(t, err)
	assert.Equal(t, "{{$credentials.b}}", got)
}

func TestResolve_UnknownField(t *testing.T) {
	_, err := Resolve("={{$credentials.missing}}", map[string]string{})
	require.ErrorIs(t, err, ErrUnknownField)
	assert.Contains(t, err.Error(), `"missing"`)
}

func TestResolve_UnsupportedExpression(t *testing.T) {
	for _, template := range []string{
		"={{$json.token}}",
		"={{ 1 + 1 }}",
		"={{$credentials.a.b}}",
	} {
		_, err := Resolve(template, map[string]string{"a": "x"})
		assert.ErrorIs(t, err, ErrUnsupportedExpression, template)
	}
}

func TestReferences(t *testing.T) {
	keys, err := References("={{$credentials.token}} {{ $credentials.user }} {{$credentials.token}}")
	require.NoError(t, err)
	assert.Equal(t, []string{"token", "user"}, keys)

	keys, err = References("/me")
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, err = References("={{$env.HOME}}")
	assert.ErrorIs(t, err, ErrUnsupportedExpression)
}
