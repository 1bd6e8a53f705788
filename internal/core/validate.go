package core

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/janekbaraniewski/credkit/internal/expr"
)

// Validate checks the structural invariants the host relies on. All problems
// are reported together.
func (s CredentialSpec) Validate() error {
	var errs []error
	if s.Name == "" {
		errs = append(errs, errors.New("credential name is empty"))
	}

	seen := make(map[string]bool, len(s.Properties))
	for i, p := range s.Properties {
		switch {
		case p.Name == "":
			errs = append(errs, fmt.Errorf("property %d: name is empty", i))
		case seen[p.Name]:
			errs = append(errs, fmt.Errorf("property %q: duplicate name", p.Name))
		}
		seen[p.Name] = true
		if !p.Type.Valid() {
			errs = append(errs, fmt.Errorf("property %q: unknown type %q", p.Name, p.Type))
		}
	}

	req := s.Test.Request
	templates := map[string]string{
		"test.request.baseURL": req.BaseURL,
		"test.request.url":     req.URL,
	}
	for _, k := range slices.Sorted(maps.Keys(req.Headers)) {
		templates["test.request.headers."+k] = req.Headers[k]
	}
	for _, k := range slices.Sorted(maps.Keys(req.QS)) {
		templates["test.request.qs."+k] = req.QS[k]
	}
	for _, field := range slices.Sorted(maps.Keys(templates)) {
		refs, err := expr.References(templates[field])
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
			continue
		}
		for _, ref := range refs {
			if !seen[ref] {
				errs = append(errs, fmt.Errorf("%s: references undeclared property %q", field, ref))
			}
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("credential %q: %w", s.Name, err)
	}
	return nil
}
