package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/ops-accountability/internal/domain/enforcement"
	"github.com/yungbote/ops-accountability/internal/modules/enforcement/carryforward"
	"github.com/yungbote/ops-accountability/internal/modules/enforcement/lifecycle"
	apperrors "github.com/yungbote/ops-accountability/internal/pkg/errors"
	"github.com/yungbote/ops-accountability/internal/services"
	"github.com/yungbote/ops-accountability/internal/temporalx/enforcementwf"
)

type fakeService struct {
	services.EnforcementService

	lastDate   time.Time
	lastReason string
	gateErr    error
	waiveErr   error
}

func (f *fakeService) GetPreshiftSummary(ctx context.Context, orgID, venueID uuid.UUID, day time.Time) (*carryforward.PreshiftSummary, error) {
	f.lastDate = day
	if f.gateErr != nil {
		return nil, f.gateErr
	}
	return &carryforward.PreshiftSummary{OrgID: orgID, VenueID: venueID, BusinessDate: day, Total: 2, Critical: 1, AttestationBlocked: true}, nil
}

func (f *fakeService) RunEscalationLadder(ctx context.Context, orgID uuid.UUID) (types.LadderResult, error) {
	return types.LadderResult{OrgID: orgID, TimeEscalated: 3}, nil
}

func (f *fakeService) ComputeEnforcementScores(ctx context.Context, orgID uuid.UUID, day time.Time) (types.ScoreResult, error) {
	f.lastDate = day
	return types.ScoreResult{OrgID: orgID, BusinessDate: day, VenuesScored: 2}, nil
}

func (f *fakeService) Waive(ctx context.Context, id uuid.UUID, reason string) (bool, error) {
	f.lastReason = reason
	return f.waiveErr == nil, f.waiveErr
}

type fakeStarter struct {
	id, name string
	arg      interface{}
}

func (s *fakeStarter) Start(ctx context.Context, workflowID, name string, arg interface{}) (string, error) {
	s.id, s.name, s.arg = workflowID, name, arg
	return "run-1", nil
}

var fixedNow = time.Date(2026, 8, 3, 9, 30, 0, 0, time.UTC)

func newRouter(svc *fakeService, starter WorkflowStarter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewEnforcementHandler(svc, starter).WithClock(func() time.Time { return fixedNow })
	r := gin.New()
	r.GET("/api/orgs/:org/venues/:venue/preshift", h.GetPreshiftSummary)
	r.POST("/api/orgs/:org/runs/ladder", h.RunLadder)
	r.POST("/api/orgs/:org/runs/scores", h.RunScores)
	r.POST("/api/violations/:violation/:transition", h.Transition)
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestPreshiftSummaryParsesDate(t *testing.T) {
	svc := &fakeService{}
	r := newRouter(svc, nil)
	org, venue := uuid.New(), uuid.New()

	rec := do(r, http.MethodGet, fmt.Sprintf("/api/orgs/%s/venues/%s/preshift?date=2026-08-01", org, venue), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	if got := svc.lastDate.Format("2006-01-02"); got != "2026-08-01" {
		t.Fatalf("date: want=2026-08-01 got=%s", got)
	}
	var body struct {
		Summary carryforward.PreshiftSummary `json:"summary"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Summary.AttestationBlocked || body.Summary.Critical != 1 {
		t.Fatalf("unexpected summary %+v", body.Summary)
	}
}

func TestPreshiftSummaryDefaultsToToday(t *testing.T) {
	svc := &fakeService{}
	r := newRouter(svc, nil)
	rec := do(r, http.MethodGet, fmt.Sprintf("/api/orgs/%s/venues/%s/preshift", uuid.New(), uuid.New()), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	if !svc.lastDate.Equal(fixedNow) {
		t.Fatalf("date: want=%v got=%v", fixedNow, svc.lastDate)
	}
}

func TestBadInputsAreRejected(t *testing.T) {
	r := newRouter(&fakeService{}, nil)
	cases := []struct {
		name string
		path string
		code string
	}{
		{"bad org", "/api/orgs/nope/venues/" + uuid.NewString() + "/preshift", "invalid_org_id"},
		{"bad venue", "/api/orgs/" + uuid.NewString() + "/venues/nope/preshift", "invalid_venue_id"},
		{"bad date", "/api/orgs/" + uuid.NewString() + "/venues/" + uuid.NewString() + "/preshift?date=08/01/2026", "invalid_date"},
	}
	for _, tc := range cases {
		rec := do(r, http.MethodGet, tc.path, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status=%d", tc.name, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), tc.code) {
			t.Fatalf("%s: body=%s", tc.name, rec.Body.String())
		}
	}
}

func TestGateFailureIsServerError(t *testing.T) {
	svc := &fakeService{gateErr: fmt.Errorf("gate: %w", apperrors.ErrStoreUnavailable)}
	r := newRouter(svc, nil)
	rec := do(r, http.MethodGet, fmt.Sprintf("/api/orgs/%s/venues/%s/preshift", uuid.New(), uuid.New()), "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status: want=503 got=%d", rec.Code)
	}
}

func TestRunLadderInline(t *testing.T) {
	r := newRouter(&fakeService{}, nil)
	rec := do(r, http.MethodPost, fmt.Sprintf("/api/orgs/%s/runs/ladder", uuid.New()), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	var body struct {
		Result types.LadderResult `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Result.TimeEscalated != 3 {
		t.Fatalf("result=%+v", body.Result)
	}
}

func TestRunScoresAsyncStartsWorkflow(t *testing.T) {
	starter := &fakeStarter{}
	r := newRouter(&fakeService{}, starter)
	org := uuid.New()
	rec := do(r, http.MethodPost, fmt.Sprintf("/api/orgs/%s/runs/scores?date=2026-08-02&async=true", org), "")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status: want=202 got=%d", rec.Code)
	}
	if starter.name != enforcementwf.WorkflowScores {
		t.Fatalf("workflow=%q", starter.name)
	}
	if want := enforcementwf.WorkflowScores + ":" + org.String() + ":2026-08-02"; starter.id != want {
		t.Fatalf("workflow id: want=%q got=%q", want, starter.id)
	}
	in, ok := starter.arg.(enforcementwf.ScoresInput)
	if !ok || in.BusinessDate != "2026-08-02" {
		t.Fatalf("arg=%+v", starter.arg)
	}
}

func TestWaiveMapsInvalidTransitionToConflict(t *testing.T) {
	svc := &fakeService{waiveErr: fmt.Errorf("resolved -> waived: %w", lifecycle.ErrInvalidTransition)}
	r := newRouter(svc, nil)
	rec := do(r, http.MethodPost, fmt.Sprintf("/api/violations/%s/waive", uuid.New()), `{"reason":"duplicate"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status: want=409 got=%d", rec.Code)
	}
	if svc.lastReason != "duplicate" {
		t.Fatalf("reason=%q", svc.lastReason)
	}
}

func TestUnknownTransition(t *testing.T) {
	r := newRouter(&fakeService{}, nil)
	rec := do(r, http.MethodPost, fmt.Sprintf("/api/violations/%s/reopen", uuid.New()), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d", rec.Code)
	}
}
