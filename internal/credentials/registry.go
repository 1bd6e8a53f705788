package credentials

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/samber/lo"

	"github.com/janekbaraniewski/credkit/internal/core"
	"github.com/janekbaraniewski/credkit/internal/credentials/maxapi"
)

var ErrUnknownType = errors.New("unknown credential type")

func AllCredentialTypes() []core.CredentialType {
	return []core.CredentialType{
		maxapi.New(),
	}
}

// Registry holds the credential types known to the host, keyed by name.
// It is built once and never modified.
type Registry struct {
	types  []core.CredentialType
	byName map[string]core.CredentialType
}

func NewRegistry(types ...core.CredentialType) (*Registry, error) {
	r := &Registry{byName: make(map[string]core.CredentialType, len(types))}
	var errs []error
	for _, ct := range types {
		name := ct.Name()
		if err := ct.Spec().Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := r.byName[name]; dup {
			errs = append(errs, fmt.Errorf("credential type %q registered twice", name))
			continue
		}
		r.byName[name] = ct
		r.types = append(r.types, ct)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("building credential registry: %w", err)
	}
	return r, nil
}

// Lookup is case-sensitive, matching how the host resolves credential names.
func (r *Registry) Lookup(name string) (core.CredentialType, error) {
	ct, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownType, name)
	}
	return ct, nil
}

func (r *Registry) Names() []string {
	names := lo.Keys(r.byName)
	slices.Sort(names)
	return names
}

// All returns the types in registration order.
func (r *Registry) All() []core.CredentialType {
	return slices.Clone(r.types)
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	defaultErr      error
)

// DefaultRegistry builds the registry of built-in types on first use.
func DefaultRegistry() (*Registry, error) {
	defaultOnce.Do(func() {
		defaultRegistry, defaultErr = NewRegistry(AllCredentialTypes()...)
	})
	return defaultRegistry, defaultErr
}
