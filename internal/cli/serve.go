package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/yungbote/ops-accountability/internal/app"
	apphttp "github.com/yungbote/ops-accountability/internal/http"
	httpH "github.com/yungbote/ops-accountability/internal/http/handlers"
	"github.com/yungbote/ops-accountability/internal/temporalx"
)

// ServeCmd runs the operator HTTP API.
func ServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the operator HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if addr == "" {
					addr = a.Cfg.HTTPAddr
				}

				var starter httpH.WorkflowStarter
				tc, err := temporalx.NewClient(a.Log)
				if err != nil {
					a.Log.Warn("Temporal unavailable; async runs disabled", "error", err)
				}
				if tc != nil {
					defer tc.Close()
					if s, err := temporalx.NewStarter(tc); err == nil {
						starter = s
					}
				}

				srv := apphttp.NewServer(apphttp.RouterConfig{
					Log:                a.Log,
					Metrics:            a.Metrics,
					CORSOrigins:        a.Cfg.CORSOrigins,
					ServiceName:        a.Cfg.ServiceName,
					HealthHandler:      httpH.NewHealthHandler(a.Ping),
					EnforcementHandler: httpH.NewEnforcementHandler(a.Service, starter),
				})
				a.Log.Info("Serving operator API", "addr", addr, "async_runs", starter != nil)
				return srv.Run(ctx, addr)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: HTTP_ADDR)")
	return cmd
}
