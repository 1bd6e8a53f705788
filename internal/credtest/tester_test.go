package credtest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/janekbaraniewski/credkit/internal/core"
	"github.com/janekbaraniewski/credkit/internal/credentials/credbase"
)

func TestTester_PassesOn2xx(t *testing.T) {
	var gotAuth, gotToken, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotToken = r.URL.Query().Get("token")
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	tester := NewTester(srv.Client(), nil)
	res, err := tester.Test(context.Background(), credbase.New(probeSpec()), map[string]string{
		"token":   "tok-1234567890",
		"baseUrl": srv.URL,
	})
	require.NoError(t, err)

	assert.True(t, res.OK())
	assert.Equal(t, StatusOK, res.Status)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Equal(t, "OK", res.Message)
	assert.Equal(t, "sampleApi", res.CredentialType)
	assert.Equal(t, srv.URL+"/workspaces/main?token=****&v=2", res.RequestURL)
	assert.False(t, res.TestedAt.IsZero())

	assert.Equal(t, "Bearer tok-1234567890", gotAuth)
	assert.Equal(t, "tok-1234567890", gotToken)
	assert.Equal(t, "/workspaces/main", gotPath)
}

func TestTester_Non2xxIsInvalidAndUnmodified(t *testing.T) {
	for _, code := range []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusMovedPermanently} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if code == http.StatusMovedPermanently {
				// no Location header, so the client cannot follow it
				w.WriteHeader(code)
				return
			}
			http.Error(w, "nope", code)
		}))

		res, err := NewTester(srv.Client(), nil).Test(context.Background(), credbase.New(probeSpec()), map[string]string{
			"baseUrl": srv.URL,
		})
		srv.Close()

		require.NoError(t, err)
		assert.Equal(t, StatusInvalid, res.Status, "code %d", code)
		assert.Equal(t, code, res.StatusCode)
		assert.Equal(t, fmt.Sprintf("HTTP %d %s", code, http.StatusText(code)), res.Message)
	}
}

func TestTester_TransportFailureIsErrorResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	obs, logs := observer.New(zap.DebugLevel)
	tester := NewTester(&http.Client{Timeout: time.Second}, zap.New(obs))
	res, err := tester.Test(context.Background(), credbase.New(probeSpec()), map[string]string{
		"token":   "TOPSECRETTOKEN999",
		"baseUrl": url,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusError, res.Status)
	assert.Zero(t, res.StatusCode)
	assert.NotEmpty(t, res.Message)
	assert.NotContains(t, res.Message, "TOPSECRETTOKEN999")
	assert.Contains(t, res.Message, "token=****")

	failed := logs.FilterMessage("credential test request failed").All()
	require.Len(t, failed, 1)
	assert.NotContains(t, fmt.Sprint(failed[0].ContextMap()), "TOPSECRETTOKEN999")
}

func TestTester_RenderFailureIsError(t *testing.T) {
	spec := probeSpec()
	spec.Test.Request.URL = "={{$json.path}}"

	_, err := NewTester(nil, nil).Test(context.Background(), credbase.New(spec), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sampleApi")
}

func TestTester_LogsRedactedRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	obs, logs := observer.New(zap.DebugLevel)
	_, err := NewTester(srv.Client(), zap.New(obs)).Test(context.Background(), credbase.New(probeSpec()), map[string]string{
		"token":   "very-secret-token",
		"baseUrl": srv.URL,
	})
	require.NoError(t, err)

	entries := logs.FilterMessage("sending credential test request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.NotContains(t, fields["url"], "very-secret-token")
	headers, ok := fields["headers"].(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "Bearer ****", headers["Authorization"])
	assert.Equal(t, 1, logs.FilterMessage("credential test finished").Len())
}

var _ core.CredentialType = credbase.Base{}
