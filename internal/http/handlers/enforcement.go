package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/ops-accountability/internal/http/response"
	apperrors "github.com/yungbote/ops-accountability/internal/pkg/errors"
	"github.com/yungbote/ops-accountability/internal/services"
	"github.com/yungbote/ops-accountability/internal/temporalx/enforcementwf"
)

// WorkflowStarter hands a run to the durable worker instead of running inline.
type WorkflowStarter interface {
	Start(ctx context.Context, workflowID, name string, arg interface{}) (string, error)
}

type EnforcementHandler struct {
	svc     services.EnforcementService
	starter WorkflowStarter
	now     func() time.Time
}

func NewEnforcementHandler(svc services.EnforcementService, starter WorkflowStarter) *EnforcementHandler {
	return &EnforcementHandler{svc: svc, starter: starter, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock overrides the clock used for the default business date.
func (h *EnforcementHandler) WithClock(now func() time.Time) *EnforcementHandler {
	h.now = now
	return h
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil || id == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_"+param+"_id", fmt.Errorf("invalid %s id %q", param, c.Param(param)))
		return uuid.Nil, false
	}
	return id, true
}

func (h *EnforcementHandler) businessDate(c *gin.Context) (time.Time, bool) {
	raw := strings.TrimSpace(c.Query("date"))
	if raw == "" {
		return h.now(), true
	}
	day, err := time.Parse(enforcementwf.DateLayout, raw)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_date", fmt.Errorf("date must be YYYY-MM-DD: %w", apperrors.ErrInvalidArgument))
		return time.Time{}, false
	}
	return day, true
}

func (h *EnforcementHandler) async(c *gin.Context) bool {
	return h.starter != nil && strings.EqualFold(c.Query("async"), "true")
}

func (h *EnforcementHandler) startWorkflow(c *gin.Context, workflowID, name string, arg interface{}) {
	runID, err := h.starter.Start(c.Request.Context(), workflowID, name, arg)
	if err != nil {
		response.RespondError(c, http.StatusBadGateway, "workflow_start_failed", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"workflow_id": workflowID, "run_id": runID})
}

// GET /api/orgs/:org/venues/:venue/preshift?date=
func (h *EnforcementHandler) GetPreshiftSummary(c *gin.Context) {
	orgID, ok := parseID(c, "org")
	if !ok {
		return
	}
	venueID, ok := parseID(c, "venue")
	if !ok {
		return
	}
	day, ok := h.businessDate(c)
	if !ok {
		return
	}
	summary, err := h.svc.GetPreshiftSummary(c.Request.Context(), orgID, venueID, day)
	if err != nil {
		response.RespondServiceError(c, "preshift_summary_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"summary": summary})
}

// GET /api/orgs/:org/venues/:venue/queue?date=
func (h *EnforcementHandler) GetQueue(c *gin.Context) {
	orgID, ok := parseID(c, "org")
	if !ok {
		return
	}
	venueID, ok := parseID(c, "venue")
	if !ok {
		return
	}
	day, ok := h.businessDate(c)
	if !ok {
		return
	}
	items, err := h.svc.GetQueue(c.Request.Context(), orgID, venueID, day)
	if err != nil {
		response.RespondServiceError(c, "queue_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"items": items})
}

// GET /api/orgs/:org/scores?date=
func (h *EnforcementHandler) ListScores(c *gin.Context) {
	orgID, ok := parseID(c, "org")
	if !ok {
		return
	}
	day, ok := h.businessDate(c)
	if !ok {
		return
	}
	rows, err := h.svc.ListScores(c.Request.Context(), orgID, day)
	if err != nil {
		response.RespondServiceError(c, "list_scores_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"scores": rows})
}

// POST /api/orgs/:org/runs/ladder
func (h *EnforcementHandler) RunLadder(c *gin.Context) {
	orgID, ok := parseID(c, "org")
	if !ok {
		return
	}
	if h.async(c) {
		id := fmt.Sprintf("%s:%s:%s", enforcementwf.WorkflowLadder, orgID, h.now().Format(time.RFC3339))
		h.startWorkflow(c, id, enforcementwf.WorkflowLadder, enforcementwf.OrgInput{OrgID: orgID.String()})
		return
	}
	res, err := h.svc.RunEscalationLadder(c.Request.Context(), orgID)
	if err != nil {
		response.RespondServiceError(c, "ladder_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"result": res})
}

// POST /api/orgs/:org/runs/scores?date=
func (h *EnforcementHandler) RunScores(c *gin.Context) {
	orgID, ok := parseID(c, "org")
	if !ok {
		return
	}
	day, ok := h.businessDate(c)
	if !ok {
		return
	}
	if h.async(c) {
		date := day.Format(enforcementwf.DateLayout)
		id := fmt.Sprintf("%s:%s:%s", enforcementwf.WorkflowScores, orgID, date)
		h.startWorkflow(c, id, enforcementwf.WorkflowScores, enforcementwf.ScoresInput{OrgID: orgID.String(), BusinessDate: date})
		return
	}
	res, err := h.svc.ComputeEnforcementScores(c.Request.Context(), orgID, day)
	if err != nil {
		response.RespondServiceError(c, "scores_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"result": res})
}

// POST /api/runs/carry-forward
func (h *EnforcementHandler) RunCarryForward(c *gin.Context) {
	if h.async(c) {
		id := fmt.Sprintf("%s:%s", enforcementwf.WorkflowCarryForward, h.now().Format(time.RFC3339))
		h.startWorkflow(c, id, enforcementwf.WorkflowCarryForward, nil)
		return
	}
	res, err := h.svc.RunCarryForward(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, "carry_forward_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"result": res})
}

// GET /api/violations/:violation
func (h *EnforcementHandler) GetViolation(c *gin.Context) {
	id, ok := parseID(c, "violation")
	if !ok {
		return
	}
	detail, err := h.svc.GetViolation(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, "violation_not_found", err)
		return
	}
	response.RespondOK(c, detail)
}

type transitionRequest struct {
	Summary string `json:"summary"`
	Reason  string `json:"reason"`
}

// POST /api/violations/:violation/:transition
func (h *EnforcementHandler) Transition(c *gin.Context) {
	id, ok := parseID(c, "violation")
	if !ok {
		return
	}
	var req transitionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
			return
		}
	}

	ctx := c.Request.Context()
	var (
		applied bool
		err     error
	)
	switch c.Param("transition") {
	case "acknowledge":
		applied, err = h.svc.Acknowledge(ctx, id)
	case "start":
		applied, err = h.svc.StartAction(ctx, id, req.Summary)
	case "resolve":
		applied, err = h.svc.Resolve(ctx, id)
	case "waive":
		applied, err = h.svc.Waive(ctx, id, req.Reason)
	default:
		response.RespondError(c, http.StatusNotFound, "unknown_transition", fmt.Errorf("unknown transition %q", c.Param("transition")))
		return
	}
	if err != nil {
		response.RespondServiceError(c, "transition_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"applied": applied})
}
