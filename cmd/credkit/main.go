package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/credkit/internal/config"
	"github.com/janekbaraniewski/credkit/internal/logging"
	"github.com/janekbaraniewski/credkit/internal/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		fmt.Fprintf(os.Stderr, "Config path: %s\n", config.ConfigPath())
		os.Exit(1)
	}

	logger, err := logging.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	a, err := newApp(cfg, config.CredentialsPath(), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	root := newRootCommand(a)
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errCredentialInvalid) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		logging.Sync()
		os.Exit(1)
	}
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "credkit",
		Short:         "credkit declares, stores and tests credential types for workflow automation hosts.",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newTypesCommand(a),
		newDescribeCommand(a),
		newSetCommand(a),
		newDeleteCommand(a),
		newRenderCommand(a),
		newTestCommand(a),
		newHistoryCommand(a),
		newWatchCommand(a),
	)
	return root
}
