// Package memrepo is an in-memory implementation of the enforcement
// repositories. Conditional writes follow the same precondition rules as the
// gorm repos so engine code can be exercised without a database.
package memrepo

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	repos "github.com/yungbote/ops-accountability/internal/data/repos/enforcement"
	types "github.com/yungbote/ops-accountability/internal/domain/enforcement"
	"github.com/yungbote/ops-accountability/internal/pkg/dbctx"
)

// Store holds every table. All sub-repos share its lock.
type Store struct {
	mu sync.Mutex

	violations     map[uuid.UUID]*types.Violation
	events         []*types.ViolationEvent
	actions        []*types.Action
	scores         map[string]*types.EnforcementScore
	attestations   []*types.Attestation
	venues         []*types.Venue
	profiles       []*types.ManagerSignalProfile
	settings       map[uuid.UUID]*types.EnforcementSettings
	managerActions map[uuid.UUID]*types.ManagerAction
	feedback       map[uuid.UUID]*types.FeedbackObject
	escalationLog  []*types.EscalationLogEntry

	// Fail, when set, is consulted before every write; a non-nil error is returned to the caller.
	Fail func(op string, id uuid.UUID) error
	// Now is the clock used for defaulted timestamps.
	Now func() time.Time
}

func New() *Store {
	return &Store{
		violations:     map[uuid.UUID]*types.Violation{},
		scores:         map[string]*types.EnforcementScore{},
		settings:       map[uuid.UUID]*types.EnforcementSettings{},
		managerActions: map[uuid.UUID]*types.ManagerAction{},
		feedback:       map[uuid.UUID]*types.FeedbackObject{},
		Now:            func() time.Time { return time.Now().UTC() },
	}
}

// Repos exposes the store through the repository interfaces.
func (s *Store) Repos() repos.Repos {
	return repos.Repos{
		Tx:             txRunner{},
		Violations:     violationRepo{s},
		Events:         eventRepo{s},
		Actions:        actionRepo{s},
		Scores:         scoreRepo{s},
		Attestations:   attestationRepo{s},
		Venues:         venueRepo{s},
		Profiles:       profileRepo{s},
		Settings:       settingsRepo{s},
		ManagerActions: managerActionRepo{s},
		Feedback:       feedbackRepo{s},
		EscalationLog:  escalationLogRepo{s},
		Gate:           gate{s},
	}
}

func (s *Store) fail(op string, id uuid.UUID) error {
	if s.Fail == nil {
		return nil
	}
	return s.Fail(op, id)
}

// txRunner has no rollback; writes inside fn are applied as they happen.
type txRunner struct{}

func (txRunner) InTx(dbc dbctx.Context, fn func(dbc dbctx.Context) error) error { return fn(dbc) }

// ---- seeding + inspection helpers ----

func (s *Store) PutViolation(v *types.Violation) *types.Violation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.Status == "" {
		v.Status = types.StatusOpen
	}
	cp := *v
	s.violations[v.ID] = &cp
	return v
}

func (s *Store) Violation(id uuid.UUID) *types.Violation {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.violations[id]
	if !ok {
		return nil
	}
	cp := *v
	return &cp
}

func (s *Store) AllViolations() []*types.Violation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*types.Violation, 0, len(s.violations))
	for _, v := range s.violations {
		cp := *v
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DetectedAt.Before(out[j].DetectedAt) })
	return out
}

func (s *Store) Events() []*types.ViolationEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*types.ViolationEvent(nil), s.events...)
}

func (s *Store) Actions() []*types.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*types.Action(nil), s.actions...)
}

func (s *Store) Scores() []*types.EnforcementScore {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*types.EnforcementScore, 0, len(s.scores))
	for _, sc := range s.scores {
		cp := *sc
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID.String() < out[j].EntityID.String() })
	return out
}

func (s *Store) EscalationLog() []*types.EscalationLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*types.EscalationLogEntry(nil), s.escalationLog...)
}

func (s *Store) PutAttestation(a *types.Attestation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	s.attestations = append(s.attestations, a)
}

func (s *Store) PutVenue(v *types.Venue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	s.venues = append(s.venues, v)
}

func (s *Store) PutProfile(p *types.ManagerSignalProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	s.profiles = append(s.profiles, p)
}

func (s *Store) PutSettings(st *types.EnforcementSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *st
	s.settings[st.OrgID] = &cp
}

func (s *Store) PutManagerAction(m *types.ManagerAction) *types.ManagerAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	cp := *m
	s.managerActions[m.ID] = &cp
	return m
}

func (s *Store) ManagerAction(id uuid.UUID) *types.ManagerAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.managerActions[id]
	if !ok {
		return nil
	}
	cp := *m
	return &cp
}

func (s *Store) PutFeedbackObject(f *types.FeedbackObject) *types.FeedbackObject {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	cp := *f
	s.feedback[f.ID] = &cp
	return f
}

func (s *Store) FeedbackObject(id uuid.UUID) *types.FeedbackObject {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.feedback[id]
	if !ok {
		return nil
	}
	cp := *f
	return &cp
}

// ---- violations ----

type violationRepo struct{ s *Store }

func (r violationRepo) Create(dbc dbctx.Context, v *types.Violation) (bool, error) {
	if v == nil {
		return false, nil
	}
	if err := r.s.fail("violation.create", v.ID); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if v.DedupeKey != nil {
		for _, existing := range r.s.violations {
			if existing.DedupeKey != nil && *existing.DedupeKey == *v.DedupeKey {
				return false, nil
			}
		}
	}
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	cp := *v
	r.s.violations[v.ID] = &cp
	return true, nil
}

func (r violationRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Violation, error) {
	return r.s.Violation(id), nil
}

func (r violationRepo) list(match func(v *types.Violation) bool) []*types.Violation {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*types.Violation
	for _, v := range r.s.violations {
		if match(v) {
			cp := *v
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DetectedAt.Before(out[j].DetectedAt) })
	return out
}

func (r violationRepo) ListOpen(dbc dbctx.Context, orgID uuid.UUID) ([]*types.Violation, error) {
	if err := r.s.fail("violation.list_open", orgID); err != nil {
		return nil, err
	}
	return r.list(func(v *types.Violation) bool { return v.OrgID == orgID && !v.IsTerminal() }), nil
}

func (r violationRepo) ListDetectedSince(dbc dbctx.Context, orgID uuid.UUID, since time.Time) ([]*types.Violation, error) {
	if err := r.s.fail("violation.list_recent", orgID); err != nil {
		return nil, err
	}
	return r.list(func(v *types.Violation) bool { return v.OrgID == orgID && !v.DetectedAt.Before(since) }), nil
}

func (r violationRepo) ListResolvedSince(dbc dbctx.Context, orgID uuid.UUID, since time.Time) ([]*types.Violation, error) {
	return r.list(func(v *types.Violation) bool {
		return v.OrgID == orgID && v.Status == types.StatusResolved && v.ResolvedAt != nil && !v.ResolvedAt.Before(since)
	}), nil
}

func (r violationRepo) FindSystemic(dbc dbctx.Context, orgID uuid.UUID, violationType string, since time.Time) (*types.Violation, error) {
	found := r.list(func(v *types.Violation) bool {
		return v.OrgID == orgID && v.VenueID == nil && v.ViolationType == violationType &&
			strings.HasPrefix(v.Title, types.SystemicTitlePrefix) && !v.DetectedAt.Before(since)
	})
	if len(found) == 0 {
		return nil, nil
	}
	return found[len(found)-1], nil
}

func (r violationRepo) UpdateIfState(dbc dbctx.Context, id uuid.UUID, pre repos.Precondition, updates map[string]interface{}) (bool, error) {
	if err := r.s.fail("violation.update", id); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.violations[id]
	if !ok || v.IsTerminal() {
		return false, nil
	}
	if len(pre.Statuses) > 0 && !contains(pre.Statuses, v.Status) {
		return false, nil
	}
	if pre.EscalationLevel != nil && v.EscalationLevel != *pre.EscalationLevel {
		return false, nil
	}
	if pre.RecurrenceCount != nil && v.RecurrenceCount != *pre.RecurrenceCount {
		return false, nil
	}
	if pre.SilenceUnpenalized && v.SilencePenalizedAt != nil {
		return false, nil
	}
	if pre.StallUnpenalized && v.StallPenalizedAt != nil {
		return false, nil
	}
	next := *v
	if err := applyViolationUpdates(&next, updates); err != nil {
		return false, err
	}
	r.s.violations[id] = &next
	return true, nil
}

func applyViolationUpdates(v *types.Violation, updates map[string]interface{}) error {
	for col, val := range updates {
		switch col {
		case "status":
			v.Status = val.(string)
		case "severity":
			v.Severity = val.(string)
		case "escalation_level":
			v.EscalationLevel = val.(int)
		case "recurrence_count":
			v.RecurrenceCount = val.(int)
		case "verification_required":
			v.VerificationRequired = val.(bool)
		case "action_summary":
			v.ActionSummary = val.(string)
		case "metadata":
			v.Metadata = val.(datatypes.JSON)
		case "escalated_at":
			v.EscalatedAt = timePtr(val)
		case "ack_at":
			v.AckAt = timePtr(val)
		case "action_at":
			v.ActionAt = timePtr(val)
		case "resolved_at":
			v.ResolvedAt = timePtr(val)
		case "silence_penalized_at":
			v.SilencePenalizedAt = timePtr(val)
		case "stall_penalized_at":
			v.StallPenalizedAt = timePtr(val)
		case "updated_at":
			if t := timePtr(val); t != nil {
				v.UpdatedAt = *t
			}
		default:
			return fmt.Errorf("memrepo: unsupported violation column %q", col)
		}
	}
	return nil
}

// ---- events + actions ----

type eventRepo struct{ s *Store }

func (r eventRepo) Append(dbc dbctx.Context, e *types.ViolationEvent) error {
	if err := r.s.fail("event.append", e.ViolationID); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = r.s.Now()
	}
	cp := *e
	r.s.events = append(r.s.events, &cp)
	return nil
}

func (r eventRepo) ListByViolation(dbc dbctx.Context, violationID uuid.UUID) ([]*types.ViolationEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*types.ViolationEvent
	for _, e := range r.s.events {
		if e.ViolationID == violationID {
			out = append(out, e)
		}
	}
	return out, nil
}

type actionRepo struct{ s *Store }

func (r actionRepo) Create(dbc dbctx.Context, a *types.Action) error {
	if err := r.s.fail("action.create", a.ViolationID); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.ExecutionStatus == "" {
		a.ExecutionStatus = types.ExecutionPending
	}
	cp := *a
	r.s.actions = append(r.s.actions, &cp)
	return nil
}

func (r actionRepo) ListByViolation(dbc dbctx.Context, violationID uuid.UUID) ([]*types.Action, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*types.Action
	for _, a := range r.s.actions {
		if a.ViolationID == violationID {
			out = append(out, a)
		}
	}
	return out, nil
}

// ---- scoring inputs + outputs ----

type scoreRepo struct{ s *Store }

func scoreKey(sc *types.EnforcementScore) string {
	return strings.Join([]string{
		sc.OrgID.String(),
		sc.EntityType,
		sc.EntityID.String(),
		types.DateOf(time.Time(sc.BusinessDate)).Format("2006-01-02"),
	}, "|")
}

func (r scoreRepo) Upsert(dbc dbctx.Context, scores []*types.EnforcementScore) error {
	for _, sc := range scores {
		if err := r.s.fail("score.upsert", sc.EntityID); err != nil {
			return err
		}
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sc := range scores {
		key := scoreKey(sc)
		cp := *sc
		if existing, ok := r.s.scores[key]; ok {
			cp.ID = existing.ID
		} else if cp.ID == uuid.Nil {
			cp.ID = uuid.New()
		}
		r.s.scores[key] = &cp
	}
	return nil
}

func (r scoreRepo) ListByDate(dbc dbctx.Context, orgID uuid.UUID, businessDate time.Time) ([]*types.EnforcementScore, error) {
	day := types.DateOf(businessDate)
	var out []*types.EnforcementScore
	for _, sc := range r.s.Scores() {
		if sc.OrgID == orgID && types.DateOf(time.Time(sc.BusinessDate)).Equal(day) {
			out = append(out, sc)
		}
	}
	return out, nil
}

type attestationRepo struct{ s *Store }

func (r attestationRepo) ListSubmittedSince(dbc dbctx.Context, orgID uuid.UUID, since time.Time) ([]*types.Attestation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*types.Attestation
	for _, a := range r.s.attestations {
		if a.OrgID == orgID && a.IsSubmitted() && !a.SubmittedAt.Before(since) {
			out = append(out, a)
		}
	}
	return out, nil
}

type venueRepo struct{ s *Store }

func (r venueRepo) ListActive(dbc dbctx.Context, orgID uuid.UUID) ([]*types.Venue, error) {
	if err := r.s.fail("venue.list", orgID); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*types.Venue
	for _, v := range r.s.venues {
		if v.OrgID == orgID && v.Active {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r venueRepo) ListOrgIDs(dbc dbctx.Context) ([]uuid.UUID, error) {
	if err := r.s.fail("venue.list_orgs", uuid.Nil); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := map[uuid.UUID]bool{}
	var out []uuid.UUID
	for _, v := range r.s.venues {
		if v.Active && !seen[v.OrgID] {
			seen[v.OrgID] = true
			out = append(out, v.OrgID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, nil
}

type profileRepo struct{ s *Store }

func (r profileRepo) GetLatest(dbc dbctx.Context, orgID uuid.UUID, managerID uuid.UUID) (*types.ManagerSignalProfile, error) {
	if err := r.s.fail("profile.get", managerID); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var latest *types.ManagerSignalProfile
	for _, p := range r.s.profiles {
		if p.OrgID == orgID && p.ManagerID == managerID {
			if latest == nil || p.ComputedAt.After(latest.ComputedAt) {
				latest = p
			}
		}
	}
	return latest, nil
}

type settingsRepo struct{ s *Store }

func (r settingsRepo) Get(dbc dbctx.Context, orgID uuid.UUID) (*types.EnforcementSettings, error) {
	if err := r.s.fail("settings.get", orgID); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.settings[orgID]
	if !ok {
		return nil, nil
	}
	cp := *st
	return &cp, nil
}

// ---- carry-forward ----

type managerActionRepo struct{ s *Store }

func (r managerActionRepo) ListEscalationCandidates(dbc dbctx.Context) ([]*types.ManagerAction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.Now()
	var out []*types.ManagerAction
	for _, m := range r.s.managerActions {
		if contains(repos.EscalatableManagerActionStatuses, m.Status) && !m.Expired(now) {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r managerActionRepo) ListOpenForVenue(dbc dbctx.Context, orgID uuid.UUID, venueID uuid.UUID, onOrBefore time.Time) ([]*types.ManagerAction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	day := types.DateOf(onOrBefore)
	var out []*types.ManagerAction
	for _, m := range r.s.managerActions {
		if m.OrgID == orgID && m.VenueID == venueID && contains(repos.OpenManagerActionStatuses, m.Status) &&
			!types.DateOf(time.Time(m.BusinessDate)).After(day) {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r managerActionRepo) UpdateIfStatus(dbc dbctx.Context, id uuid.UUID, expectedStatus string, updates map[string]interface{}) (bool, error) {
	if err := r.s.fail("manager_action.update", id); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.managerActions[id]
	if !ok || m.Status != expectedStatus {
		return false, nil
	}
	next := *m
	for col, val := range updates {
		switch col {
		case "status":
			next.Status = val.(string)
		case "assigned_role":
			next.AssignedRole = val.(string)
		case "escalated_to":
			next.EscalatedTo = val.(string)
		case "escalation_reason":
			next.EscalationReason = val.(string)
		case "escalated_at":
			next.EscalatedAt = timePtr(val)
		case "updated_at":
			if t := timePtr(val); t != nil {
				next.UpdatedAt = *t
			}
		default:
			return false, fmt.Errorf("memrepo: unsupported manager_action column %q", col)
		}
	}
	r.s.managerActions[id] = &next
	return true, nil
}

type feedbackRepo struct{ s *Store }

func (r feedbackRepo) ListEscalationCandidates(dbc dbctx.Context) ([]*types.FeedbackObject, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*types.FeedbackObject
	for _, f := range r.s.feedback {
		if contains(repos.EscalatableFeedbackObjectStatuses, f.Status) {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r feedbackRepo) ListOpenForVenue(dbc dbctx.Context, orgID uuid.UUID, venueID uuid.UUID, onOrBefore time.Time) ([]*types.FeedbackObject, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	day := types.DateOf(onOrBefore)
	var out []*types.FeedbackObject
	for _, f := range r.s.feedback {
		if f.OrgID == orgID && f.VenueID == venueID && contains(repos.OpenFeedbackObjectStatuses, f.Status) &&
			!types.DateOf(time.Time(f.BusinessDate)).After(day) {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r feedbackRepo) UpdateIfStatus(dbc dbctx.Context, id uuid.UUID, expectedStatus string, updates map[string]interface{}) (bool, error) {
	if err := r.s.fail("feedback_object.update", id); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.feedback[id]
	if !ok || f.Status != expectedStatus {
		return false, nil
	}
	next := *f
	for col, val := range updates {
		switch col {
		case "status":
			next.Status = val.(string)
		case "owner_role":
			next.OwnerRole = val.(string)
		case "escalated_to":
			next.EscalatedTo = val.(string)
		case "escalation_reason":
			next.EscalationReason = val.(string)
		case "escalated_at":
			next.EscalatedAt = timePtr(val)
		case "updated_at":
			if t := timePtr(val); t != nil {
				next.UpdatedAt = *t
			}
		default:
			return false, fmt.Errorf("memrepo: unsupported feedback_object column %q", col)
		}
	}
	r.s.feedback[id] = &next
	return true, nil
}

type escalationLogRepo struct{ s *Store }

func (r escalationLogRepo) Append(dbc dbctx.Context, e *types.EscalationLogEntry) error {
	if err := r.s.fail("escalation_log.append", e.SourceID); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.s.Now()
	}
	cp := *e
	r.s.escalationLog = append(r.s.escalationLog, &cp)
	return nil
}

func (r escalationLogRepo) ListBySource(dbc dbctx.Context, sourceTable string, sourceID uuid.UUID) ([]*types.EscalationLogEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*types.EscalationLogEntry
	for _, e := range r.s.escalationLog {
		if e.SourceTable == sourceTable && e.SourceID == sourceID {
			out = append(out, e)
		}
	}
	return out, nil
}

// gate mirrors can_submit_attestation.
type gate struct{ s *Store }

func (g gate) CanSubmit(dbc dbctx.Context, orgID uuid.UUID, venueID uuid.UUID, businessDate time.Time) (bool, error) {
	if err := g.s.fail("gate.can_submit", venueID); err != nil {
		return false, err
	}
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	day := types.DateOf(businessDate)
	for _, f := range g.s.feedback {
		if f.OrgID == orgID && f.VenueID == venueID && f.Severity == types.SeverityCritical &&
			contains(repos.OpenFeedbackObjectStatuses, f.Status) && !types.DateOf(time.Time(f.BusinessDate)).After(day) {
			return false, nil
		}
	}
	for _, m := range g.s.managerActions {
		if m.OrgID == orgID && m.VenueID == venueID && m.Priority == types.PriorityUrgent &&
			contains(repos.OpenManagerActionStatuses, m.Status) && !types.DateOf(time.Time(m.BusinessDate)).After(day) {
			return false, nil
		}
	}
	return true, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func timePtr(val interface{}) *time.Time {
	switch t := val.(type) {
	case time.Time:
		return &t
	case *time.Time:
		return t
	default:
		return nil
	}
}
