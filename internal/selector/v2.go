package selector

import (
	"math"

	"pricepoint/internal/model"
	"pricepoint/internal/stats"
)

// V2 is the percentile-based selector. It walks progressively weaker signal
// tiers (strong sold data, strong active data, trusted retail anchor) and then
// applies a fixed cap/floor chain to the base target.
type V2 struct {
	policy Policy
}

// Generation implements Selector.
func (s *V2) Generation() model.SelectorGeneration { return model.GenerationV2 }

// Select implements Selector.
func (s *V2) Select(in Inputs) Outcome {
	out := Outcome{
		SoldStrong:   stats.IsSoldStrong(in.Sold, s.policy.Stats),
		ActiveStrong: stats.IsActiveStrong(in.Active, s.policy.Stats),
	}

	switch {
	case out.SoldStrong:
		out.TargetMinor = s.soldTier(in, out.ActiveStrong)
	case out.ActiveStrong:
		out.TargetMinor = s.activeTier(in)
	case in.LowestTrustedRetailMinor > 0:
		out.TargetMinor = int64(math.Round(float64(in.LowestTrustedRetailMinor) * s.policy.RetailAnchorRatio))
		out.FallbackUsed = true
		out.Warnings = append(out.Warnings, model.WarnRetailAnchorFallback)
	default:
		out.Warnings = append(out.Warnings, model.WarnNoPricingData, model.WarnManualReviewRequired)
		return out
	}

	s.applyCaps(in, &out)
	return out
}

func (s *V2) soldTier(in Inputs, activeStrong bool) int64 {
	switch in.Mode {
	case model.ModeFastSale:
		base := in.Sold.P35
		if activeStrong && in.Active.P20 < base {
			base = in.Active.P20
		}
		base -= in.UndercutMinor
		if base < in.MinDeliveredMinor {
			base = in.MinDeliveredMinor
		}
		return base
	case model.ModeMaxMargin:
		if activeStrong && in.Active.P35 < in.Sold.P50 {
			return in.Active.P35
		}
		return in.Sold.P50
	default: // market-match
		return in.Sold.P35
	}
}

func (s *V2) activeTier(in Inputs) int64 {
	switch in.Mode {
	case model.ModeFastSale:
		base := in.Active.P20 - in.UndercutMinor
		if base < in.MinDeliveredMinor {
			base = in.MinDeliveredMinor
		}
		return base
	default: // market-match and max-margin both anchor on P35 without sold data
		return in.Active.P35
	}
}

// applyCaps runs the post-selection adjustments in a fixed order: active P65
// cap, trusted-retail cap, floor-outlier flag, sold/active mismatch flag, and
// the minimum-delivered clamp.
func (s *V2) applyCaps(in Inputs, out *Outcome) {
	if out.ActiveStrong && out.TargetMinor > in.Active.P65 {
		sellThrough := stats.SellThrough(in.Sold, in.Active)
		if !(out.SoldStrong && sellThrough > s.policy.SellThroughBypass) {
			out.TargetMinor = in.Active.P65
			out.Warnings = append(out.Warnings, model.WarnActiveCapApplied)
		}
	}

	if in.LowestTrustedRetailMinor > 0 {
		cap := int64(math.Round(float64(in.LowestTrustedRetailMinor) * s.policy.RetailCapRatio))
		if out.TargetMinor > cap {
			out.TargetMinor = cap
			out.Warnings = append(out.Warnings, model.WarnRetailCapApplied)
		}
	}

	if in.Active != nil && in.Active.P20 > 0 &&
		float64(in.Active.Min) < float64(in.Active.P20)*s.policy.FloorOutlierP20Ratio {
		// Flag only; the comp stays in the diagnostics.
		out.Warnings = append(out.Warnings, model.WarnFloorOutlierIgnored)
	}

	if in.Sold != nil && in.Active != nil && in.Active.P35 > 0 &&
		float64(in.Sold.P35) > float64(in.Active.P35)*s.policy.SoldActiveMismatchRatio {
		// Possible sold-data contamination (undetected multi-packs). Not
		// auto-corrected; confidence scoring penalizes it.
		out.Warnings = append(out.Warnings, model.WarnSoldActiveMismatch)
	}

	if out.TargetMinor > 0 && out.TargetMinor < in.MinDeliveredMinor {
		out.TargetMinor = in.MinDeliveredMinor
		out.Warnings = append(out.Warnings, model.WarnMinDeliveredClamped)
	}
}
