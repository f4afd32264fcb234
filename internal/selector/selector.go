package selector

import (
	"pricepoint/internal/model"
	"pricepoint/internal/stats"
)

// Inputs is everything a target selection needs. Both generations consume the
// same inputs and honor the same outcome contract, so callers stay agnostic
// to which algorithm is active.
type Inputs struct {
	Mode                     model.PricingMode
	Sold                     *stats.RobustStats
	Active                   *stats.RobustStats
	LowestTrustedRetailMinor int64
	UndercutMinor            int64
	MinDeliveredMinor        int64
}

// Outcome is the selected delivered target plus diagnostics. TargetMinor of 0
// means no reliable signal existed; the caller must not publish a price.
type Outcome struct {
	TargetMinor  int64
	FallbackUsed bool
	SoldStrong   bool
	ActiveStrong bool
	Warnings     []string
}

// Policy holds the cap/discount ratios applied around the base target. These
// are operating policy, not algorithmic constants; tune against outcomes.
type Policy struct {
	Stats stats.Policy `yaml:"stats"`

	// Fallback target as a fraction of a trusted retail anchor when no
	// market data is strong.
	RetailAnchorRatio float64 `yaml:"retail_anchor_ratio"`
	// Never price above this fraction of verified retail.
	RetailCapRatio float64 `yaml:"retail_cap_ratio"`
	// Sold-driven prices may exceed the active P65 cap above this
	// sell-through ratio.
	SellThroughBypass float64 `yaml:"sell_through_bypass"`
	// Sold P35 more than this multiple of active P35 flags contamination.
	SoldActiveMismatchRatio float64 `yaml:"sold_active_mismatch_ratio"`
	// Lowest active comp below this fraction of P20 is a floor outlier.
	FloorOutlierP20Ratio float64 `yaml:"floor_outlier_p20_ratio"`
}

// DefaultPolicy returns the production ratios.
func DefaultPolicy() Policy {
	return Policy{
		Stats:                   stats.DefaultPolicy(),
		RetailAnchorRatio:       0.70,
		RetailCapRatio:          0.80,
		SellThroughBypass:       0.40,
		SoldActiveMismatchRatio: 1.25,
		FloorOutlierP20Ratio:    0.80,
	}
}

// Selector chooses a delivered target from filtered comp statistics.
type Selector interface {
	Generation() model.SelectorGeneration
	Select(in Inputs) Outcome
}

// ForGeneration returns the selector for a feature-flag value. Unknown values
// get the current generation.
func ForGeneration(gen model.SelectorGeneration, policy Policy) Selector {
	if gen == model.GenerationV1 {
		return &V1{policy: policy}
	}
	return &V2{policy: policy}
}
