// Package cli holds the enforcement binary's cobra commands.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/ops-accountability/internal/app"
	"github.com/yungbote/ops-accountability/internal/pkg/logger"
)

// RootCmd assembles every subcommand.
func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "enforcement",
		Short: "Operational accountability engine",
		Long: `Runs the violation escalation ladder, composite scoring, and the
carry-forward sweep for restaurant operations, either inline, as a Temporal
worker, or behind the operator HTTP API.`,
		SilenceUsage: true,
	}
	root.AddCommand(RunCmd())
	root.AddCommand(ServeCmd())
	root.AddCommand(WorkerCmd())
	root.AddCommand(MigrateCmd())
	root.AddCommand(TriggerCmd())
	root.AddCommand(NotificationsCmd())
	return root
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// withApp builds the app for one command invocation and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()
	a, err := app.New(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

// loadLogger is for commands that need config and logging but not the store.
func loadLogger() (app.Config, *logger.Logger, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return app.Config{}, nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return app.Config{}, nil, err
	}
	return cfg, log, nil
}
