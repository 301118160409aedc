package scoring

import (
	"math"
	"time"

	types "github.com/yungbote/ops-accountability/internal/domain/enforcement"
)

type weighted struct {
	Name   string
	Weight float64
}

// Manager Reliability Index weights.
var managerWeights = []weighted{
	{"follow_through", 25},
	{"command_score", 25},
	{"avoidance_discipline", 15},
	{"blame_accountability", 10},
	{"corrective_action", 10},
	{"breach_resolution", 15},
}

// Unit Discipline Score weights.
var venueWeights = []weighted{
	{"breach_frequency", 30},
	{"resolution_rate", 20},
	{"resolution_time", 15},
	{"attestation_compliance", 15},
	{"escalation_rate", 15},
	{"waiver_discipline", 5},
}

const (
	// Applied when a manager has no signal profile or no commitments on record.
	neutralProfileComponent = 0.5
	// Applied when a manager has no resolved violations in the window.
	neutralResolutionSpeed = 0.6
)

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }

// compose turns raw component values into weighted components and the final
// 0-100 score. Missing raws count as zero.
func compose(weights []weighted, raw map[string]float64) (float64, map[string]types.ScoreComponent) {
	components := make(map[string]types.ScoreComponent, len(weights))
	total := 0.0
	for _, w := range weights {
		r := clamp01(raw[w.Name])
		components[w.Name] = types.ScoreComponent{Raw: round4(r), Weighted: round4(r * w.Weight), Weight: w.Weight}
		total += r * w.Weight
	}
	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}
	return round2(total), components
}

// resolutionSpeed maps the mean hours-to-resolve onto [0,1]: resolving at or
// under ceiling-span hours earns 1, at or over the ceiling earns 0.
func resolutionSpeed(resolved []*types.Violation, b types.SystemBounds) (float64, bool) {
	if len(resolved) == 0 || b.ResolutionSpanHours <= 0 {
		return 0, false
	}
	sum := 0.0
	n := 0
	for _, v := range resolved {
		if v.ResolvedAt == nil {
			continue
		}
		sum += v.ResolvedAt.Sub(v.DetectedAt).Hours()
		n++
	}
	if n == 0 {
		return 0, false
	}
	avg := sum / float64(n)
	return clamp01((b.ResolutionCeilingHours - avg) / b.ResolutionSpanHours), true
}

// actionQuality is the share of resolutions that went through acknowledgment
// and a recorded corrective action.
func actionQuality(resolved []*types.Violation) float64 {
	if len(resolved) == 0 {
		return 1
	}
	full := 0
	for _, v := range resolved {
		if v.FullLifecycle() {
			full++
		}
	}
	return float64(full) / float64(len(resolved))
}

func managerComponents(p *types.ManagerSignalProfile, resolved []*types.Violation, b types.SystemBounds) map[string]float64 {
	raw := map[string]float64{
		"follow_through":       neutralProfileComponent,
		"command_score":        neutralProfileComponent,
		"avoidance_discipline": neutralProfileComponent,
		"blame_accountability": neutralProfileComponent,
		"corrective_action":    neutralProfileComponent,
	}
	if p != nil {
		if rate, ok := p.FollowThroughRate(); ok {
			raw["follow_through"] = rate
		}
		raw["command_score"] = p.AvgCommandScore.Data().Overall / 10
		raw["avoidance_discipline"] = 1 - p.AvoidanceRate
		raw["blame_accountability"] = 1 - p.BlameShiftRate
		raw["corrective_action"] = p.CorrectiveActionRate
	}
	speed, ok := resolutionSpeed(resolved, b)
	if !ok {
		speed = neutralResolutionSpeed
	}
	raw["breach_resolution"] = speed * actionQuality(resolved)
	return raw
}

type venueWindow struct {
	violations   []*types.Violation
	attestations int
}

func venueComponents(w venueWindow, b types.SystemBounds) map[string]float64 {
	total := len(w.violations)
	var resolved []*types.Violation
	escalated, waived := 0, 0
	for _, v := range w.violations {
		switch v.Status {
		case types.StatusResolved:
			resolved = append(resolved, v)
		case types.StatusWaived:
			waived++
		}
		if v.EscalationLevel > 0 {
			escalated++
		}
	}
	raw := map[string]float64{
		"resolution_rate":        1,
		"escalation_rate":        1,
		"waiver_discipline":      1,
		"resolution_time":        1,
		"attestation_compliance": 0,
	}
	if b.BreachFrequencyCap > 0 {
		limit := float64(b.BreachFrequencyCap)
		raw["breach_frequency"] = (limit - float64(total)) / limit
	}
	if total > 0 {
		raw["resolution_rate"] = float64(len(resolved)) / float64(total)
		raw["escalation_rate"] = 1 - float64(escalated)/float64(total)
		raw["waiver_discipline"] = 1 - float64(waived)/float64(total)
	}
	if speed, ok := resolutionSpeed(resolved, b); ok {
		raw["resolution_time"] = speed
	}
	if b.ExpectedAttestations > 0 {
		raw["attestation_compliance"] = math.Min(1, float64(w.attestations)/float64(b.ExpectedAttestations))
	}
	return raw
}

// window returns the [start, end) range a business date scores over.
func window(businessDate time.Time, days int) (time.Time, time.Time) {
	end := types.DateOf(businessDate).Add(24 * time.Hour)
	return end.Add(-time.Duration(days) * 24 * time.Hour), end
}
