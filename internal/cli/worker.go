package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/ops-accountability/internal/app"
	"github.com/yungbote/ops-accountability/internal/temporalx"
	"github.com/yungbote/ops-accountability/internal/temporalx/temporalworker"
)

// WorkerCmd polls the Temporal task queue for enforcement workflows.
func WorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the Temporal worker for enforcement workflows",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				tc, err := temporalx.NewClient(a.Log)
				if err != nil {
					return err
				}
				if tc == nil {
					return fmt.Errorf("worker requires TEMPORAL_ADDRESS")
				}
				defer tc.Close()

				runner, err := temporalworker.NewRunner(a.Log, tc, a.Service)
				if err != nil {
					return err
				}
				if err := runner.Start(ctx); err != nil {
					return err
				}
				<-ctx.Done()
				a.Log.Info("Worker shutting down")
				return nil
			})
		},
	}
}
