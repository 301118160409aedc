package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	types "github.com/yungbote/ops-accountability/internal/domain/enforcement"
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed)
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeErrors(w io.Writer, errs []string) {
	if len(errs) == 0 {
		okColor.Fprintln(w, "  no errors")
		return
	}
	errColor.Fprintf(w, "  %d error(s):\n", len(errs))
	for _, e := range errs {
		fmt.Fprintf(w, "    - %s\n", e)
	}
}

func printLadder(w io.Writer, res types.LadderResult) {
	head := okColor
	if len(res.Errors) > 0 {
		head = warnColor
	}
	head.Fprintf(w, "Escalation ladder for org %s: %d transition(s)\n", res.OrgID, res.Transitions())
	fmt.Fprintf(w, "  time_based=%d recurrence=%d structural=%d systemic=%d silence=%d stall=%d\n",
		res.TimeEscalated, res.RecurrenceFlagged, res.StructuralEscalated, res.SystemicCreated, res.SilencePenalized, res.StallPenalized)
	writeErrors(w, res.Errors)
}

func printScores(w io.Writer, res types.ScoreResult) {
	head := okColor
	if len(res.Errors) > 0 {
		head = warnColor
	}
	head.Fprintf(w, "Scores for org %s on %s\n", res.OrgID, res.BusinessDate.Format("2006-01-02"))
	fmt.Fprintf(w, "  managers scored=%d skipped=%d venues scored=%d\n", res.ManagersScored, res.ManagersSkipped, res.VenuesScored)
	writeErrors(w, res.Errors)
}

func printCarryForward(w io.Writer, res types.CarryForwardResult) {
	head := okColor
	if len(res.Errors) > 0 {
		head = warnColor
	}
	head.Fprintln(w, "Carry-forward sweep")
	fmt.Fprintf(w, "  manager actions=%d feedback objects=%d notifications=%d\n",
		res.ManagerActionsEscalated, res.FeedbackObjectsEscalated, res.NotificationsSent)
	writeErrors(w, res.Errors)
}
