package observability

import (
	"strings"
	"testing"
	"time"

	types "github.com/yungbote/ops-accountability/internal/domain/enforcement"
)

func TestObserveLadderCountsPerPass(t *testing.T) {
	m := NewMetrics()
	m.ObserveLadder(types.LadderResult{TimeEscalated: 2, SilencePenalized: 1, Errors: []string{"stall: boom"}}, time.Second)
	m.ObserveLadder(types.LadderResult{TimeEscalated: 1}, time.Second)

	if got := m.transitions.Value("time_based"); got != 3 {
		t.Fatalf("time_based: want=3 got=%v", got)
	}
	if got := m.runs.Value("ladder", "partial"); got != 1 {
		t.Fatalf("partial runs: want=1 got=%v", got)
	}
	if got := m.runErrors.Value("ladder"); got != 1 {
		t.Fatalf("errors: want=1 got=%v", got)
	}

	var b strings.Builder
	if err := m.WritePrometheus(&b); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := b.String()
	for _, want := range []string{
		`enforcement_ladder_transitions_total{pass="silence"} 1`,
		`enforcement_ladder_transitions_total{pass="time_based"} 3`,
		`enforcement_run_duration_seconds_count{entry_point="ladder"} 2`,
		`enforcement_run_duration_seconds_bucket{entry_point="ladder",le="+Inf"} 2`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	// Zero counts never create series.
	if strings.Contains(out, `pass="stall"`) {
		t.Fatalf("unexpected zero series:\n%s", out)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveScores(types.ScoreResult{ManagersScored: 1}, time.Second)
	m.ObserveAPI("GET", "/healthcheck", "200", time.Millisecond)
	if err := m.WritePrometheus(&strings.Builder{}); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestLabelEscaping(t *testing.T) {
	got := labelString([]string{"a", "b"}, []string{`x"y`})
	if got != `{a="x\"y",b="unknown"}` {
		t.Fatalf("labels=%s", got)
	}
}
