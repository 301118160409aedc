package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/ops-accountability/internal/clients/redis"
	types "github.com/yungbote/ops-accountability/internal/domain/enforcement"
)

// NotificationsCmd tails the notification channel.
func NotificationsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Tail escalation notifications from Redis",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadLogger()
			if err != nil {
				return err
			}
			defer log.Sync()

			b, err := redis.NewBroadcaster(log, redis.Options{
				Addr:    cfg.RedisAddr,
				Channel: cfg.NotifyChannel,
			})
			if err != nil {
				return err
			}
			defer b.Close()

			ctx, cancel := signalContext(context.Background())
			defer cancel()
			w := cmd.OutOrStdout()
			return b.Listen(ctx, func(n types.Notification) {
				if asJSON {
					_ = writeJSON(w, n)
					return
				}
				c := okColor
				switch n.Severity {
				case types.SeverityCritical:
					c = errColor
				case types.SeverityWarning:
					c = warnColor
				}
				c.Fprintf(w, "[%s] -> %s: %s\n", n.Severity, n.TargetRole, n.Title)
				if n.Body != "" {
					fmt.Fprintf(w, "    %s\n", n.Body)
				}
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print notifications as JSON")
	return cmd
}
