package observability

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	types "github.com/yungbote/ops-accountability/internal/domain/enforcement"
)

// Metrics holds the engine counters in Prometheus text exposition form.
type Metrics struct {
	runs          *CounterVec
	runDuration   *HistogramVec
	runErrors     *CounterVec
	transitions   *CounterVec
	scoresWritten *CounterVec
	carryForward  *CounterVec
	notifications *Counter
	apiRequests   *CounterVec
	apiLatency    *HistogramVec
}

var runBuckets = []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900}

func NewMetrics() *Metrics {
	return &Metrics{
		runs:          NewCounterVec("enforcement_runs_total", "Batch entry point runs.", []string{"entry_point", "status"}),
		runDuration:   NewHistogramVec("enforcement_run_duration_seconds", "Batch entry point duration.", []string{"entry_point"}, runBuckets),
		runErrors:     NewCounterVec("enforcement_run_errors_total", "Per-item and per-pass errors recorded by batch runs.", []string{"entry_point"}),
		transitions:   NewCounterVec("enforcement_ladder_transitions_total", "Violations changed by the escalation ladder.", []string{"pass"}),
		scoresWritten: NewCounterVec("enforcement_scores_written_total", "Score rows written.", []string{"entity_type"}),
		carryForward:  NewCounterVec("enforcement_carry_forward_escalations_total", "Carry-forward items escalated.", []string{"source_table"}),
		notifications: NewCounter("enforcement_notifications_sent_total", "Escalation notifications delivered."),
		apiRequests:   NewCounterVec("enforcement_api_requests_total", "HTTP requests.", []string{"method", "route", "status"}),
		apiLatency:    NewHistogramVec("enforcement_api_request_duration_seconds", "HTTP request latency.", []string{"method", "route"}, nil),
	}
}

func runStatus(errs []string) string {
	if len(errs) > 0 {
		return "partial"
	}
	return "ok"
}

func (m *Metrics) ObserveLadder(res types.LadderResult, dur time.Duration) {
	if m == nil {
		return
	}
	m.observeRun("ladder", res.Errors, dur)
	m.transitions.Add(float64(res.TimeEscalated), "time_based")
	m.transitions.Add(float64(res.RecurrenceFlagged), "recurrence")
	m.transitions.Add(float64(res.StructuralEscalated), "structural")
	m.transitions.Add(float64(res.SystemicCreated), "systemic")
	m.transitions.Add(float64(res.SilencePenalized), "silence")
	m.transitions.Add(float64(res.StallPenalized), "stall")
}

func (m *Metrics) ObserveScores(res types.ScoreResult, dur time.Duration) {
	if m == nil {
		return
	}
	m.observeRun("scores", res.Errors, dur)
	m.scoresWritten.Add(float64(res.ManagersScored), types.EntityManager)
	m.scoresWritten.Add(float64(res.VenuesScored), types.EntityVenue)
}

func (m *Metrics) ObserveCarryForward(res types.CarryForwardResult, dur time.Duration) {
	if m == nil {
		return
	}
	m.observeRun("carry_forward", res.Errors, dur)
	m.carryForward.Add(float64(res.ManagerActionsEscalated), types.SourceManagerAction)
	m.carryForward.Add(float64(res.FeedbackObjectsEscalated), types.SourceFeedbackObject)
	m.notifications.Add(float64(res.NotificationsSent))
}

func (m *Metrics) observeRun(entryPoint string, errs []string, dur time.Duration) {
	m.runs.Inc(entryPoint, runStatus(errs))
	m.runDuration.Observe(dur.Seconds(), entryPoint)
	if len(errs) > 0 {
		m.runErrors.Add(float64(len(errs)), entryPoint)
	}
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.runs, m.runDuration, m.runErrors, m.transitions,
		m.scoresWritten, m.carryForward, m.notifications,
		m.apiRequests, m.apiLatency,
	}
	for _, mw := range writers {
		if err := mw.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

// ---- lightweight metric primitives (Prometheus exposition) ----

func writeHeader(w io.Writer, name, help, kind string) error {
	if _, err := fmt.Fprintf(w, "# HELP %s %s\n", name, help); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "# TYPE %s %s\n", name, kind)
	return err
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type CounterVec struct {
	name       string
	help       string
	labelNames []string
	mu         sync.RWMutex
	values     map[string]float64
}

func NewCounterVec(name, help string, labels []string) *CounterVec {
	return &CounterVec{name: name, help: help, labelNames: labels, values: map[string]float64{}}
}

func (c *CounterVec) Inc(values ...string) { c.Add(1, values...) }

// Add ignores non-positive deltas so zero counts never create a series.
func (c *CounterVec) Add(v float64, values ...string) {
	if c == nil || v <= 0 {
		return
	}
	lbl := labelString(c.labelNames, values)
	c.mu.Lock()
	c.values[lbl] += v
	c.mu.Unlock()
}

func (c *CounterVec) Value(values ...string) float64 {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.values[labelString(c.labelNames, values)]
}

func (c *CounterVec) WritePrometheus(w io.Writer) error {
	if c == nil {
		return nil
	}
	if err := writeHeader(w, c.name, c.help, "counter"); err != nil {
		return err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, k := range sortedKeys(c.values) {
		if _, err := fmt.Fprintf(w, "%s%s %g\n", c.name, k, c.values[k]); err != nil {
			return err
		}
	}
	return nil
}

type Counter struct {
	name string
	help string
	mu   sync.RWMutex
	val  float64
}

func NewCounter(name, help string) *Counter {
	return &Counter{name: name, help: help}
}

func (c *Counter) Add(v float64) {
	if c == nil || v <= 0 {
		return
	}
	c.mu.Lock()
	c.val += v
	c.mu.Unlock()
}

func (c *Counter) Value() float64 {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.val
}

func (c *Counter) WritePrometheus(w io.Writer) error {
	if c == nil {
		return nil
	}
	if err := writeHeader(w, c.name, c.help, "counter"); err != nil {
		return err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, err := fmt.Fprintf(w, "%s %g\n", c.name, c.val)
	return err
}

type HistogramVec struct {
	name       string
	help       string
	labelNames []string
	buckets    []float64
	mu         sync.RWMutex
	values     map[string]*histogram
}

type histogram struct {
	counts []uint64
	sum    float64
	total  uint64
}

func NewHistogramVec(name, help string, labels []string, buckets []float64) *HistogramVec {
	if len(buckets) == 0 {
		buckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}
	}
	return &HistogramVec{name: name, help: help, labelNames: labels, buckets: buckets, values: map[string]*histogram{}}
}

func (h *HistogramVec) Observe(v float64, values ...string) {
	if h == nil {
		return
	}
	lbl := labelString(h.labelNames, values)
	h.mu.Lock()
	defer h.mu.Unlock()
	hist, ok := h.values[lbl]
	if !ok {
		hist = &histogram{counts: make([]uint64, len(h.buckets))}
		h.values[lbl] = hist
	}
	hist.sum += v
	hist.total++
	for i, b := range h.buckets {
		if v <= b {
			hist.counts[i]++
		}
	}
}

func (h *HistogramVec) WritePrometheus(w io.Writer) error {
	if h == nil {
		return nil
	}
	if err := writeHeader(w, h.name, h.help, "histogram"); err != nil {
		return err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, k := range sortedKeys(h.values) {
		v := h.values[k]
		for i, b := range h.buckets {
			if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n", h.name, withLe(k, fmt.Sprintf("%g", b)), v.counts[i]); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n", h.name, withLe(k, "+Inf"), v.total); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s_sum%s %g\n", h.name, k, v.sum); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s_count%s %d\n", h.name, k, v.total); err != nil {
			return err
		}
	}
	return nil
}

func labelString(names []string, values []string) string {
	if len(names) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("{")
	for i, name := range names {
		if i > 0 {
			b.WriteString(",")
		}
		val := "unknown"
		if i < len(values) {
			val = values[i]
		}
		b.WriteString(name)
		b.WriteString("=\"")
		b.WriteString(escapeLabel(val))
		b.WriteString("\"")
	}
	b.WriteString("}")
	return b.String()
}

func escapeLabel(v string) string {
	v = strings.ReplaceAll(v, "\\", "\\\\")
	v = strings.ReplaceAll(v, "\"", "\\\"")
	return strings.ReplaceAll(v, "\n", "\\n")
}

func withLe(labels string, le string) string {
	le = escapeLabel(le)
	if labels == "" {
		return "{le=\"" + le + "\"}"
	}
	return strings.TrimSuffix(labels, "}") + ",le=\"" + le + "\"}"
}
