package safety

import (
	"fmt"

	"github.com/shopspring/decimal"

	"pricepoint/internal/model"
)

// FeeModel is the fixed fee/cost assumption behind the safety floor.
// Percentages are fractions (0.13 means 13%).
type FeeModel struct {
	MarketplaceFeePct float64 `yaml:"marketplace_fee_pct"`
	CarrierCostMinor  int64   `yaml:"carrier_cost_minor"`
	MinMarginMinor    int64   `yaml:"min_margin_minor"`
}

// DefaultFeeModel mirrors the production marketplace assumptions.
func DefaultFeeModel() FeeModel {
	return FeeModel{
		MarketplaceFeePct: 0.1325,
		CarrierCostMinor:  550,
		MinMarginMinor:    200,
	}
}

// Validate rejects a model that cannot produce a finite floor.
func (f FeeModel) Validate() error {
	if f.MarketplaceFeePct < 0 || f.MarketplaceFeePct >= 1 {
		return fmt.Errorf("marketplace fee pct %v out of range [0,1)", f.MarketplaceFeePct)
	}
	if f.CarrierCostMinor < 0 {
		return fmt.Errorf("carrier cost %d is negative", f.CarrierCostMinor)
	}
	if f.MinMarginMinor < 0 {
		return fmt.Errorf("min margin %d is negative", f.MinMarginMinor)
	}
	return nil
}

// FloorMinor returns the minimum delivered price that still preserves the
// configured margin after marketplace fees and carrier cost:
//
//	delivered*(1-fee) - carrier >= margin
//
// Decimal math avoids the cent drift a float fee multiplication introduces on
// high-value items.
func (f FeeModel) FloorMinor() int64 {
	costs := decimal.NewFromInt(f.CarrierCostMinor).Add(decimal.NewFromInt(f.MinMarginMinor))
	keep := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(f.MarketplaceFeePct))
	return costs.Div(keep).Ceil().IntPart()
}

// Result reports whether the floor was binding on a candidate target.
type Result struct {
	TargetMinor int64
	FloorMinor  int64
	Binding     bool
	UpliftPct   float64
	Warnings    []string
}

// Apply enforces the floor on a statistically-derived target. When binding,
// the floor silently overrides the target and the uplift is reported as a
// warning; the system must never list at a guaranteed loss under its own fee
// model. A zero target (no signal) is passed through untouched.
func Apply(targetMinor int64, fees FeeModel) Result {
	res := Result{TargetMinor: targetMinor, FloorMinor: fees.FloorMinor()}
	if targetMinor <= 0 || targetMinor >= res.FloorMinor {
		return res
	}

	res.Binding = true
	res.UpliftPct = (float64(res.FloorMinor)/float64(targetMinor) - 1) * 100
	res.TargetMinor = res.FloorMinor
	res.Warnings = append(res.Warnings, model.WarnSafetyFloorApplied)
	return res
}
