package credtest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/janekbaraniewski/credkit/internal/core"
)

type Status string

const (
	StatusOK      Status = "OK"
	StatusInvalid Status = "INVALID"
	StatusError   Status = "ERROR"
)

const (
	defaultTimeout = 15 * time.Second
	maxDrainBytes  = 64 << 10
)

// Result is the outcome of one credential test probe.
type Result struct {
	CredentialType string        `json:"credential_type"`
	Status         Status        `json:"status"`
	StatusCode     int           `json:"status_code,omitempty"`
	Message        string        `json:"message"`
	RequestURL     string        `json:"request_url"` // secrets masked
	TestedAt       time.Time     `json:"tested_at"`
	Duration       time.Duration `json:"duration"`
}

func (r Result) OK() bool {
	return r.Status == StatusOK
}

// Tester issues credential test requests. Any 2xx is a pass; every other
// status is reported as invalid with the response status line unchanged.
// There is no retry.
type Tester struct {
	client *http.Client
	logger *zap.Logger
	now    func() time.Time
}

func NewTester(client *http.Client, logger *zap.Logger) *Tester {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tester{client: client, logger: logger, now: time.Now}
}

// Test renders ct's test request from stored values and sends it. The error
// return is reserved for descriptors that cannot be rendered; transport
// failures come back as a StatusError result.
func (t *Tester) Test(ctx context.Context, ct core.CredentialType, stored map[string]string) (Result, error) {
	spec := ct.Spec()
	req, err := Render(ctx, spec, stored)
	if err != nil {
		return Result{}, fmt.Errorf("credtest: %s: %w", spec.Name, err)
	}

	redacted := Redact(req, spec, stored)
	res := Result{
		CredentialType: spec.Name,
		RequestURL:     redacted.URL,
		TestedAt:       t.now(),
	}
	log := t.logger.With(zap.String("credential_type", spec.Name))
	log.Debug("sending credential test request",
		zap.String("method", redacted.Method),
		zap.String("url", redacted.URL),
		zap.Any("headers", redacted.Headers),
	)

	start := time.Now()
	resp, err := t.client.Do(req)
	res.Duration = time.Since(start)
	if err != nil {
		// url.Error quotes the request URL, which carries the token.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			uerr.URL = redacted.URL
		}
		res.Status = StatusError
		res.Message = err.Error()
		log.Warn("credential test request failed", zap.Error(err))
		return res, nil
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))

	res.StatusCode = resp.StatusCode
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		res.Status = StatusOK
		res.Message = "OK"
	} else {
		res.Status = StatusInvalid
		res.Message = "HTTP " + resp.Status
	}

	log.Info("credential test finished",
		zap.String("status", string(res.Status)),
		zap.Int("status_code", res.StatusCode),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}
