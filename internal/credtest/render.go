package credtest

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/janekbaraniewski/credkit/internal/core"
	"github.com/janekbaraniewski/credkit/internal/expr"
	"github.com/janekbaraniewski/credkit/internal/parsers"
)

// Render substitutes stored values into the spec's test request and returns
// the request the host would send. No value is validated locally: an empty
// token renders as an empty token.
func Render(ctx context.Context, spec core.CredentialSpec, stored map[string]string) (*http.Request, error) {
	values := spec.ResolveValues(stored)
	opts := spec.Test.Request

	baseURL, err := expr.Resolve(opts.BaseURL, values)
	if err != nil {
		return nil, fmt.Errorf("credtest: resolving baseURL: %w", err)
	}
	path, err := expr.Resolve(opts.URL, values)
	if err != nil {
		return nil, fmt.Errorf("credtest: resolving url: %w", err)
	}

	u, err := url.Parse(joinURL(baseURL, path))
	if err != nil {
		return nil, fmt.Errorf("credtest: parsing request URL: %w", err)
	}
	if len(opts.QS) > 0 {
		query := u.Query()
		for _, k := range slices.Sorted(maps.Keys(opts.QS)) {
			v, err := expr.Resolve(opts.QS[k], values)
			if err != nil {
				return nil, fmt.Errorf("credtest: resolving query %q: %w", k, err)
			}
			query.Set(k, v)
		}
		u.RawQuery = query.Encode()
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("credtest: creating request: %w", err)
	}

	for _, k := range slices.Sorted(maps.Keys(opts.Headers)) {
		v, err := expr.Resolve(opts.Headers[k], values)
		if err != nil {
			return nil, fmt.Errorf("credtest: resolving header %q: %w", k, err)
		}
		req.Header.Set(k, v)
	}
	return req, nil
}

// joinURL appends path to baseURL with exactly one slash between them. An
// absolute path replaces the base.
func joinURL(baseURL, path string) string {
	if path == "" {
		return baseURL
	}
	if baseURL == "" {
		return path
	}
	if p, err := url.Parse(path); err == nil && p.IsAbs() {
		return path
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// RedactedRequest is a loggable view of a rendered test request.
type RedactedRequest struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers"`
}

// Redact masks every header and query value of req that carries a
// password-marked property of spec. Secret headers are re-rendered from their
// templates with each secret replaced by parsers.Masked.
func Redact(req *http.Request, spec core.CredentialSpec, stored map[string]string) RedactedRequest {
	masked := spec.ResolveValues(stored)
	for _, k := range spec.SecretKeys() {
		if masked[k] != "" {
			masked[k] = parsers.Masked
		}
	}

	secretHeaders, secretParams := secretCarriers(spec)
	headers := parsers.RedactHeaders(req.Header)
	for _, k := range secretHeaders {
		name := http.CanonicalHeaderKey(k)
		if _, ok := headers[name]; !ok {
			continue
		}
		v, err := expr.Resolve(spec.Test.Request.Headers[k], masked)
		if err != nil {
			v = parsers.Masked
		}
		headers[name] = v
	}
	return RedactedRequest{
		Method:  req.Method,
		URL:     parsers.RedactURL(req.URL, secretParams...),
		Headers: headers,
	}
}

// secretCarriers returns the header names and query keys whose templates
// read a password-marked property.
func secretCarriers(spec core.CredentialSpec) (headers, params []string) {
	secrets := spec.SecretKeys()
	carries := func(template string) bool {
		refs, err := expr.References(template)
		return err == nil && lo.Some(refs, secrets)
	}
	for k, v := range spec.Test.Request.Headers {
		if carries(v) {
			headers = append(headers, k)
		}
	}
	for k, v := range spec.Test.Request.QS {
		if carries(v) {
			params = append(params, k)
		}
	}
	slices.Sort(headers)
	slices.Sort(params)
	return headers, params
}
