package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/ops-accountability/internal/app"
	"github.com/yungbote/ops-accountability/internal/temporalx/enforcementwf"
)

type runFlags struct {
	org    string
	date   string
	asJSON bool
}

func (f *runFlags) bind(cmd *cobra.Command, withDate bool) {
	cmd.Flags().StringVar(&f.org, "org", "", "organization id (default: every org with an active venue)")
	if withDate {
		cmd.Flags().StringVar(&f.date, "date", "", "business date YYYY-MM-DD (default: today UTC)")
	}
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print results as JSON")
}

func (f *runFlags) orgs(ctx context.Context, a *app.App) ([]uuid.UUID, error) {
	if f.org != "" {
		id, err := uuid.Parse(f.org)
		if err != nil {
			return nil, fmt.Errorf("invalid --org: %w", err)
		}
		return []uuid.UUID{id}, nil
	}
	return a.Service.ListOrgs(ctx)
}

func (f *runFlags) businessDate() (time.Time, error) {
	if f.date == "" {
		return time.Now().UTC(), nil
	}
	day, err := time.Parse(enforcementwf.DateLayout, f.date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date: %w", err)
	}
	return day, nil
}

// RunCmd runs batch entry points inline against the configured store.
func RunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a batch entry point inline",
	}
	cmd.AddCommand(runLadderCmd(), runScoresCmd(), runCarryForwardCmd(), runNightlyCmd())
	return cmd
}

func runLadderCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "ladder",
		Short: "Run the five-pass escalation ladder",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				orgs, err := f.orgs(ctx, a)
				if err != nil {
					return err
				}
				for _, org := range orgs {
					res, err := a.Service.RunEscalationLadder(ctx, org)
					if err != nil {
						return err
					}
					if f.asJSON {
						if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
							return err
						}
						continue
					}
					printLadder(cmd.OutOrStdout(), res)
				}
				return nil
			})
		},
	}
	f.bind(cmd, false)
	return cmd
}

func runScoresCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "scores",
		Short: "Compute manager and venue scores for a business date",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := f.businessDate()
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				orgs, err := f.orgs(ctx, a)
				if err != nil {
					return err
				}
				for _, org := range orgs {
					res, err := a.Service.ComputeEnforcementScores(ctx, org, day)
					if err != nil {
						return err
					}
					if f.asJSON {
						if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
							return err
						}
						continue
					}
					printScores(cmd.OutOrStdout(), res)
				}
				return nil
			})
		},
	}
	f.bind(cmd, true)
	return cmd
}

func runCarryForwardCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "carry-forward",
		Short: "Escalate stale manager actions and feedback objects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				res, err := a.Service.RunCarryForward(ctx)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), res)
				}
				printCarryForward(cmd.OutOrStdout(), res)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}

func runNightlyCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "nightly",
		Short: "Run ladder then scores for each org, then one carry-forward sweep",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := f.businessDate()
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				orgs, err := f.orgs(ctx, a)
				if err != nil {
					return err
				}
				out := enforcementwf.NightlyResult{BusinessDate: day.Format(enforcementwf.DateLayout)}
				for _, org := range orgs {
					run := enforcementwf.OrgRun{OrgID: org.String()}
					if res, err := a.Service.RunEscalationLadder(ctx, org); err != nil {
						run.Errors = append(run.Errors, "ladder: "+err.Error())
					} else {
						run.Ladder = &res
					}
					if res, err := a.Service.ComputeEnforcementScores(ctx, org, day); err != nil {
						run.Errors = append(run.Errors, "scores: "+err.Error())
					} else {
						run.Scores = &res
					}
					out.Orgs = append(out.Orgs, run)
				}
				if res, err := a.Service.RunCarryForward(ctx); err != nil {
					out.Errors = append(out.Errors, "carry_forward: "+err.Error())
				} else {
					out.CarryForward = &res
				}

				if f.asJSON {
					return writeJSON(cmd.OutOrStdout(), out)
				}
				w := cmd.OutOrStdout()
				for _, run := range out.Orgs {
					if run.Ladder != nil {
						printLadder(w, *run.Ladder)
					}
					if run.Scores != nil {
						printScores(w, *run.Scores)
					}
					writeErrors(w, run.Errors)
				}
				if out.CarryForward != nil {
					printCarryForward(w, *out.CarryForward)
				}
				writeErrors(w, out.Errors)
				return nil
			})
		},
	}
	f.bind(cmd, true)
	return cmd
}
