package credbase

import (
	"net/http"

	"github.com/janekbaraniewski/credkit/internal/core"
)

// Base centralizes credential type metadata. Credential packages embed it and
// only declare their spec.
type Base struct {
	spec core.CredentialSpec
}

func New(spec core.CredentialSpec) Base {
	normalized := spec.Clone()
	if normalized.DisplayName == "" {
		normalized.DisplayName = normalized.Name
	}
	for i := range normalized.Properties {
		p := &normalized.Properties[i]
		if p.Type == "" {
			p.Type = core.PropertyTypeString
		}
		if p.DisplayName == "" {
			p.DisplayName = p.Name
		}
	}
	if normalized.Test.Request.Method == "" {
		normalized.Test.Request.Method = http.MethodGet
	}

	return Base{spec: normalized}
}

func (b Base) Name() string {
	return b.spec.Name
}

// Spec returns a copy; the held descriptor never changes after New.
func (b Base) Spec() core.CredentialSpec {
	return b.spec.Clone()
}

func (b Base) Property(name string) (core.Property, bool) {
	return b.spec.Property(name)
}
