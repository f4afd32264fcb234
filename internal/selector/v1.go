package selector

import (
	"math"

	"pricepoint/internal/model"
	"pricepoint/internal/stats"
)

// V1 is the legacy floor/median selector, retained as a configuration-selected
// fallback. It anchors on the lowest surviving active listing and only lets
// sold data pull the target downward.
type V1 struct {
	policy Policy
}

// Generation implements Selector.
func (s *V1) Generation() model.SelectorGeneration { return model.GenerationV1 }

// Select implements Selector.
func (s *V1) Select(in Inputs) Outcome {
	out := Outcome{
		SoldStrong:   stats.IsSoldStrong(in.Sold, s.policy.Stats),
		ActiveStrong: stats.IsActiveStrong(in.Active, s.policy.Stats),
	}

	switch {
	case out.ActiveStrong:
		out.TargetMinor = in.Active.Min
		// Sold history disagreeing downward undercuts the active floor;
		// disagreement upward is ignored in this generation.
		if out.SoldStrong && in.Sold.P50 < out.TargetMinor {
			out.TargetMinor = in.Sold.P50
		}
	case out.SoldStrong:
		out.TargetMinor = in.Sold.P50
	case in.LowestTrustedRetailMinor > 0:
		out.TargetMinor = int64(math.Round(float64(in.LowestTrustedRetailMinor) * s.policy.RetailAnchorRatio))
		out.FallbackUsed = true
		out.Warnings = append(out.Warnings, model.WarnRetailAnchorFallback)
	default:
		out.Warnings = append(out.Warnings, model.WarnNoPricingData, model.WarnManualReviewRequired)
		return out
	}

	if in.Mode == model.ModeFastSale {
		out.TargetMinor -= in.UndercutMinor
	}

	if in.LowestTrustedRetailMinor > 0 {
		cap := int64(math.Round(float64(in.LowestTrustedRetailMinor) * s.policy.RetailCapRatio))
		if out.TargetMinor > cap {
			out.TargetMinor = cap
			out.Warnings = append(out.Warnings, model.WarnRetailCapApplied)
		}
	}

	if out.TargetMinor > 0 && out.TargetMinor < in.MinDeliveredMinor {
		out.TargetMinor = in.MinDeliveredMinor
		out.Warnings = append(out.Warnings, model.WarnMinDeliveredClamped)
	}

	return out
}
