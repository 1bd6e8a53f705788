package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/janekbaraniewski/credkit/internal/config"
	"github.com/janekbaraniewski/credkit/internal/core"
	"github.com/janekbaraniewski/credkit/internal/credentials"
	"github.com/janekbaraniewski/credkit/internal/credtest"
	"github.com/janekbaraniewski/credkit/internal/history"
)

var errCredentialInvalid = errors.New("credential test did not pass")

// app carries what every subcommand needs.
type app struct {
	cfg       config.Config
	credsPath string
	registry  *credentials.Registry
	tester    *credtest.Tester
	logger    *zap.Logger

	openHistory func() (*history.Store, error)
}

func newApp(cfg config.Config, credsPath string, logger *zap.Logger) (*app, error) {
	reg, err := credentials.DefaultRegistry()
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:       cfg,
		credsPath: credsPath,
		registry:  reg,
		tester:    credtest.NewTester(&http.Client{Timeout: cfg.ProbeTimeout()}, logger),
		logger:    logger,
		openHistory: func() (*history.Store, error) {
			return history.OpenStore(cfg.ResolvedHistoryPath())
		},
	}, nil
}

// stored loads credential id together with its registered type.
func (a *app) stored(id string) (config.StoredCredential, core.CredentialType, error) {
	creds, err := config.LoadCredentialsFrom(a.credsPath)
	if err != nil {
		return config.StoredCredential{}, nil, err
	}
	cred, ok := creds.Get(id)
	if !ok {
		return config.StoredCredential{}, nil, fmt.Errorf("credential %q not found in %s", id, a.credsPath)
	}
	ct, err := a.registry.Lookup(cred.Type)
	if err != nil {
		return config.StoredCredential{}, nil, fmt.Errorf("credential %q: %w", id, err)
	}
	return cred, ct, nil
}

// runTest probes credential id and records the outcome. History failures are
// logged and do not change the result.
func (a *app) runTest(ctx context.Context, id string) (credtest.Result, error) {
	cred, ct, err := a.stored(id)
	if err != nil {
		return credtest.Result{}, err
	}
	res, err := a.tester.Test(ctx, ct, cred.Data)
	if err != nil {
		return credtest.Result{}, err
	}

	store, err := a.openHistory()
	if err != nil {
		a.logger.Warn("history unavailable", zap.Error(err))
		return res, nil
	}
	defer store.Close()

	_, err = store.Record(ctx, history.Entry{
		CredentialID:   id,
		CredentialType: res.CredentialType,
		TestedAt:       res.TestedAt,
		Status:         string(res.Status),
		StatusCode:     res.StatusCode,
		Message:        res.Message,
		Duration:       res.Duration,
	})
	if err != nil {
		a.logger.Warn("recording test result failed", zap.String("credential_id", id), zap.Error(err))
	}
	return res, nil
}
