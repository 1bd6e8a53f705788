package core

import "maps"

type PropertyType string

const (
	PropertyTypeString  PropertyType = "string"
	PropertyTypeNumber  PropertyType = "number"
	PropertyTypeBoolean PropertyType = "boolean"
	PropertyTypeOptions PropertyType = "options"
)

func (t PropertyType) Valid() bool {
	switch t {
	case PropertyTypeString, PropertyTypeNumber, PropertyTypeBoolean, PropertyTypeOptions:
		return true
	}
	return false
}

// Icon references a presentation asset, e.g. "file:max.svg".
type Icon string

type TypeOptions struct {
	Password bool `json:"password,omitempty"`
}

// Property is one user-configurable field of a credential type.
type Property struct {
	DisplayName string       `json:"displayName"`
	Name        string       `json:"name"`
	Type        PropertyType `json:"type"`
	TypeOptions *TypeOptions `json:"typeOptions,omitempty"`
	Default     any          `json:"default"`
	Description string       `json:"description,omitempty"`
	Placeholder string       `json:"placeholder,omitempty"`
	Required    bool         `json:"required,omitempty"`
}

// Secret reports whether the host must mask this field.
func (p Property) Secret() bool {
	return p.TypeOptions != nil && p.TypeOptions.Password
}

// RequestOptions is a declarative HTTP request. String values starting with
// "=" are templates resolved against stored credential values.
type RequestOptions struct {
	Method  string            `json:"method,omitempty"`
	BaseURL string            `json:"baseURL,omitempty"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
	QS      map[string]string `json:"qs,omitempty"`
}

type TestRequest struct {
	Request RequestOptions `json:"request"`
}

// CredentialSpec is the canonical credential type definition handed to the host.
type CredentialSpec struct {
	Name             string      `json:"name"`
	DisplayName      string      `json:"displayName"`
	Icon             Icon        `json:"icon,omitempty"`
	DocumentationURL string      `json:"documentationUrl,omitempty"`
	Properties       []Property  `json:"properties"`
	Test             TestRequest `json:"test"`
}

type CredentialType interface {
	Name() string

	Spec() CredentialSpec
}

// Clone returns a deep copy of the spec.
func (s CredentialSpec) Clone() CredentialSpec {
	out := s
	if s.Properties != nil {
		out.Properties = make([]Property, len(s.Properties))
		for i, p := range s.Properties {
			if p.TypeOptions != nil {
				opts := *p.TypeOptions
				p.TypeOptions = &opts
			}
			out.Properties[i] = p
		}
	}
	out.Test.Request.Headers = maps.Clone(s.Test.Request.Headers)
	out.Test.Request.QS = maps.Clone(s.Test.Request.QS)
	return out
}

func (s CredentialSpec) Property(name string) (Property, bool) {
	for _, p := range s.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// SecretKeys lists the names of password-marked properties in declaration order.
func (s CredentialSpec) SecretKeys() []string {
	var keys []string
	for _, p := range s.Properties {
		if p.Secret() {
			keys = append(keys, p.Name)
		}
	}
	return keys
}
