package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/ops-accountability/internal/data/db"
)

// MigrateCmd creates the enforcement tables and the attestation gate function.
func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadLogger()
			if err != nil {
				return err
			}
			defer log.Sync()

			store, err := db.NewPostgresService(log, cfg.DBOptions())
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.AutoMigrateAll(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
