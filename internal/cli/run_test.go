package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"

	types "github.com/yungbote/ops-accountability/internal/domain/enforcement"
)

func TestRunFlagsBusinessDate(t *testing.T) {
	f := runFlags{date: "2026-08-03"}
	day, err := f.businessDate()
	if err != nil {
		t.Fatalf("businessDate: %v", err)
	}
	if want := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC); !day.Equal(want) {
		t.Fatalf("day: want=%v got=%v", want, day)
	}

	f.date = "08/03/2026"
	if _, err := f.businessDate(); err == nil {
		t.Fatalf("expected error for malformed date")
	}
}

func TestRunFlagsExplicitOrg(t *testing.T) {
	org := uuid.New()
	f := runFlags{org: org.String()}
	got, err := f.orgs(context.Background(), nil)
	if err != nil {
		t.Fatalf("orgs: %v", err)
	}
	if len(got) != 1 || got[0] != org {
		t.Fatalf("orgs: want=[%s] got=%v", org, got)
	}

	f.org = "not-a-uuid"
	if _, err := f.orgs(context.Background(), nil); err == nil || !strings.Contains(err.Error(), "--org") {
		t.Fatalf("expected --org error, got %v", err)
	}
}

func TestPrintLadderSummary(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	printLadder(&buf, types.LadderResult{
		OrgID:          uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		TimeEscalated:  2,
		StallPenalized: 1,
		Errors:         []string{"recurrence: store unavailable"},
	})
	out := buf.String()
	for _, want := range []string{
		"org 11111111-1111-1111-1111-111111111111: 3 transition(s)",
		"time_based=2",
		"stall=1",
		"1 error(s)",
		"- recurrence: store unavailable",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestRootRegistersCommands(t *testing.T) {
	root := RootCmd()
	for _, path := range [][]string{
		{"run", "ladder"},
		{"run", "scores"},
		{"run", "carry-forward"},
		{"run", "nightly"},
		{"serve"},
		{"worker"},
		{"migrate"},
		{"trigger-nightly"},
		{"notifications"},
	} {
		cmd, _, err := root.Find(path)
		if err != nil || cmd == root {
			t.Fatalf("command %v not registered (err=%v)", path, err)
		}
	}
}
