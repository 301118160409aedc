package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yungbote/ops-accountability/internal/temporalx"
	"github.com/yungbote/ops-accountability/internal/temporalx/enforcementwf"
)

// TriggerCmd starts the nightly workflow on Temporal. The workflow ID is
// keyed by business date so a repeated trigger for the same day is rejected.
func TriggerCmd() *cobra.Command {
	var (
		orgs []string
		date string
		skip bool
	)
	cmd := &cobra.Command{
		Use:   "trigger-nightly",
		Short: "Start the enforcement_nightly workflow",
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" {
				date = time.Now().UTC().Format(enforcementwf.DateLayout)
			}
			if _, err := time.Parse(enforcementwf.DateLayout, date); err != nil {
				return fmt.Errorf("invalid --date: %w", err)
			}
			_, log, err := loadLogger()
			if err != nil {
				return err
			}
			defer log.Sync()

			tc, err := temporalx.NewClient(log)
			if err != nil {
				return err
			}
			if tc == nil {
				return fmt.Errorf("trigger requires TEMPORAL_ADDRESS")
			}
			defer tc.Close()

			starter, err := temporalx.NewStarter(tc)
			if err != nil {
				return err
			}
			id := enforcementwf.WorkflowNightly + ":" + date
			runID, err := starter.Start(cmd.Context(), id, enforcementwf.WorkflowNightly, enforcementwf.NightlyInput{
				OrgIDs:       orgs,
				BusinessDate: date,
				SkipCarry:    skip,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "started %s run %s\n", id, runID)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&orgs, "org", nil, "organization ids (default: every org with an active venue)")
	cmd.Flags().StringVar(&date, "date", "", "business date YYYY-MM-DD (default: today UTC)")
	cmd.Flags().BoolVar(&skip, "skip-carry-forward", false, "skip the carry-forward sweep")
	return cmd
}
