package confidence

import (
	"math"

	"pricepoint/internal/model"
	"pricepoint/internal/stats"
)

// Inputs gathers every signal the scorer weighs.
type Inputs struct {
	Identity     model.CanonicalIdentity
	UPCMatched   bool
	Sold         *stats.RobustStats
	Active       *stats.RobustStats
	SoldStrong   bool
	ActiveStrong bool
	RetailAnchor bool
	FallbackUsed bool
	// Percentage the safety floor had to raise the statistical target.
	FloorUpliftPct float64
	// Unresolved multi-pack phrasing among ambiguous comps.
	PackAmbiguity bool
	Warnings      []string
}

// Score is the 0-100 confidence with its trigger trail. Hard triggers force
// manual review regardless of the numeric score; soft triggers only lower it.
type Score struct {
	Value        int
	Bucket       model.MatchConfidence
	HardTriggers []string
	SoftTriggers []string
	ManualReview bool
}

// Bucket thresholds for consumers that cannot interpret a raw score.
const (
	highThreshold   = 60
	mediumThreshold = 35
)

// Scorer weights the signals into a score. Weights are fixed policy; the
// zero value is not usable, construct with NewScorer.
type Scorer struct {
	base float64
}

// NewScorer creates a scorer with production weighting.
func NewScorer() *Scorer {
	return &Scorer{base: 50}
}

// Score computes the confidence score and triggers for one decision.
func (sc *Scorer) Score(in Inputs) Score {
	score := sc.base
	out := Score{}

	// Hard triggers first; they force review no matter what the additive
	// factors say.
	soldCount := countOf(in.Sold)
	activeCount := countOf(in.Active)
	if soldCount == 0 && activeCount == 0 && !in.RetailAnchor {
		out.HardTriggers = append(out.HardTriggers, "no-comps-any-channel")
	}
	if in.PackAmbiguity {
		out.HardTriggers = append(out.HardTriggers, "unresolved-pack-ambiguity")
	}

	if in.UPCMatched {
		score += 25
	}
	if in.SoldStrong {
		score += 15
	} else if soldCount > 0 {
		score += 5
	}
	if in.ActiveStrong {
		score += 10
	} else if activeCount > 0 {
		score += 3
	}
	if in.RetailAnchor {
		score += 10
	}

	// Cross-signal agreement between sold and active percentiles.
	if in.SoldStrong && in.ActiveStrong && in.Active.P35 > 0 {
		drift := math.Abs(float64(in.Sold.P35)-float64(in.Active.P35)) / float64(in.Active.P35)
		if drift <= 0.15 {
			score += 10
		}
	}

	if hasWarning(in.Warnings, model.WarnSoldActiveMismatch) {
		score -= 15
		out.SoftTriggers = append(out.SoftTriggers, "sold-active-mismatch")
	}
	if in.FallbackUsed {
		score -= 15
		out.SoftTriggers = append(out.SoftTriggers, "retail-anchor-fallback")
	}
	if in.FloorUpliftPct > 20 {
		score -= 10
		out.SoftTriggers = append(out.SoftTriggers, "safety-floor-override")
	}
	if soldCount > 0 && soldCount < 3 {
		score -= 5
		out.SoftTriggers = append(out.SoftTriggers, "thin-sold-data")
	}
	if hasWarning(in.Warnings, model.WarnFloorOutlierIgnored) {
		score -= 5
		out.SoftTriggers = append(out.SoftTriggers, "active-floor-outlier")
	}

	out.Value = clamp(score)
	out.ManualReview = len(out.HardTriggers) > 0
	out.Bucket = bucket(out.Value)
	return out
}

func bucket(value int) model.MatchConfidence {
	switch {
	case value >= highThreshold:
		return model.ConfidenceHigh
	case value >= mediumThreshold:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceLow
	}
}

func countOf(s *stats.RobustStats) int {
	if s == nil {
		return 0
	}
	return s.Count
}

func clamp(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(math.Round(v))
}

func hasWarning(warnings []string, code string) bool {
	for _, w := range warnings {
		if w == code {
			return true
		}
	}
	return false
}
