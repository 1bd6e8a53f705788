package main

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"os/signal"
	"slices"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/janekbaraniewski/credkit/internal/config"
	"github.com/janekbaraniewski/credkit/internal/credtest"
)

func newTypesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List registered credential types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			for _, ct := range a.registry.All() {
				spec := ct.Spec()
				fmt.Fprintf(w, "%s %s\n", columnStyle.Render(spec.Name), spec.DisplayName)
			}
			return nil
		},
	}
}

func newDescribeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <type>",
		Short: "Print a credential type in the host's descriptor schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ct, err := a.registry.Lookup(args[0])
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(ct.Spec(), "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling %s: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newSetCommand(a *app) *cobra.Command {
	var (
		typeName string
		fields   []string
	)
	cmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Store or update a credential",
		Example: "  credkit set max-prod --type maxApi --field accessToken=XXXX\n" +
			"  credkit set max-legacy --type maxApi --field accessToken=XXXX --field baseUrl=https://botapi.max.ru",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			creds, err := config.LoadCredentialsFrom(a.credsPath)
			if err != nil {
				return err
			}
			existing, found := creds.Get(id)
			if typeName == "" {
				if !found {
					return fmt.Errorf("credential %q does not exist yet, pass --type", id)
				}
				typeName = existing.Type
			}

			ct, err := a.registry.Lookup(typeName)
			if err != nil {
				return err
			}
			data, err := parseFieldAssignments(ct.Spec(), fields)
			if err != nil {
				return err
			}

			// Updating an entry of the same type keeps fields that were not passed.
			if found && existing.Type == typeName {
				merged := make(map[string]string, len(existing.Data)+len(data))
				maps.Copy(merged, existing.Data)
				maps.Copy(merged, data)
				data = merged
			}

			if err := config.SaveCredentialTo(a.credsPath, id, config.StoredCredential{Type: typeName, Data: data}); err != nil {
				return err
			}
			a.logger.Info("credential saved", zap.String("credential_id", id), zap.String("credential_type", typeName))
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%s)\n", id, typeName)
			return nil
		},
	}
	cmd.Flags().StringVar(&typeName, "type", "", "credential type name, e.g. maxApi")
	cmd.Flags().StringArrayVar(&fields, "field", nil, "field assignment key=value (repeatable)")
	return cmd
}

func newDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a stored credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.DeleteCredentialFrom(a.credsPath, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func newRenderCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "render <id>",
		Short: "Show the test request for a stored credential with secrets masked",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cred, ct, err := a.stored(args[0])
			if err != nil {
				return err
			}
			spec := ct.Spec()
			req, err := credtest.Render(cmd.Context(), spec, cred.Data)
			if err != nil {
				return err
			}
			redacted := credtest.Redact(req, spec, cred.Data)

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s %s\n", redacted.Method, redacted.URL)
			for _, k := range slices.Sorted(maps.Keys(redacted.Headers)) {
				fmt.Fprintf(w, "%s: %s\n", k, redacted.Headers[k])
			}
			return nil
		},
	}
}

func newTestCommand(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "test <id>",
		Short: "Validate a stored credential against its API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.runTest(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if asJSON {
				data, err := json.MarshalIndent(res, "", "  ")
				if err != nil {
					return fmt.Errorf("marshaling result: %w", err)
				}
				fmt.Fprintln(w, string(data))
			} else {
				printResult(w, args[0], res)
			}
			if !res.OK() {
				return errCredentialInvalid
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func newHistoryCommand(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "List recent credential test runs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id string
			if len(args) == 1 {
				id = args[0]
			}
			store, err := a.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), id, limit)
			if err != nil {
				return err
			}
			printHistory(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to show")
	return cmd
}

func newWatchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <id>",
		Short: "Re-test a credential every time the credential file changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			watcher, err := config.NewWatcher(a.credsPath)
			if err != nil {
				return err
			}
			defer watcher.Close()

			return watchLoop(ctx, a, args[0], watcher.Changes(), cmd)
		},
	}
}

func watchLoop(ctx context.Context, a *app, id string, changes <-chan struct{}, cmd *cobra.Command) error {
	probe := func() {
		res, err := a.runTest(ctx, id)
		if err != nil {
			// the entry may be mid-edit or removed; keep watching
			fmt.Fprintln(cmd.ErrOrStderr(), errorStyle.Render(err.Error()))
			return
		}
		printResult(cmd.OutOrStdout(), id, res)
	}

	probe()
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			probe()
		}
	}
}
