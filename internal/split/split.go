package split

import (
	"pricepoint/internal/model"
)

// Result is the item/shipping division of a delivered target. When CanCompete
// is true, ItemMinor + ShipMinor equals the target exactly; when false the
// divergence between the two sides and the target is itself the signal that
// the market could not be matched.
type Result struct {
	ItemMinor       int64
	ShipMinor       int64
	FreeShipApplied bool
	SubsidyMinor    int64
	CanCompete      bool
	Warnings        []string
}

// Split divides a delivered target into item price and buyer-facing shipping
// charge. A purely mechanical target-minus-shipping split can produce item
// prices of a few cents or below zero for low-value products; the explicit
// floor and bounded free-shipping fallback make that failure visible instead
// of listing a nonsensical price.
//
// Cases, in order:
//  1. Normal split: item = target - shipping, accepted when it clears the
//     item floor.
//  2. Free-shipping fallback: item = target with zero shipping, accepted when
//     allowed, the item clears the floor, and the absorbed shipping charge
//     stays within the subsidy budget.
//  3. Cannot-compete: item pinned at the floor with whichever shipping option
//     lands the delivered total closest to target.
func Split(targetMinor, shippingChargeMinor int64, settings model.DeliveredPricingSettings) Result {
	floor := settings.MinItemMinor

	item := targetMinor - shippingChargeMinor
	if item >= floor {
		return Result{
			ItemMinor:  item,
			ShipMinor:  shippingChargeMinor,
			CanCompete: true,
		}
	}

	if settings.AllowFreeShippingWhenNeeded &&
		targetMinor >= floor &&
		shippingChargeMinor <= settings.FreeShippingMaxSubsidyMinor {
		return Result{
			ItemMinor:       targetMinor,
			ShipMinor:       0,
			FreeShipApplied: true,
			SubsidyMinor:    shippingChargeMinor,
			CanCompete:      true,
			Warnings:        []string{model.WarnFreeShippingApplied},
		}
	}

	res := Result{
		ItemMinor:  floor,
		ShipMinor:  shippingChargeMinor,
		CanCompete: false,
		Warnings:   []string{model.WarnCannotCompete},
	}

	// Free shipping may still land closer to the target than charging full
	// shipping on top of the floor, when the subsidy budget allows it.
	if settings.AllowFreeShippingWhenNeeded &&
		shippingChargeMinor <= settings.FreeShippingMaxSubsidyMinor {
		withShip := absDiff(floor+shippingChargeMinor, targetMinor)
		withFree := absDiff(floor, targetMinor)
		if withFree < withShip {
			res.ShipMinor = 0
			res.FreeShipApplied = true
			res.SubsidyMinor = shippingChargeMinor
			res.Warnings = append(res.Warnings, model.WarnFreeShippingApplied)
		}
	}

	return res
}

// ShouldSkip derives the skip decision from configuration alone; the split
// itself only reports that the market could not be matched.
func ShouldSkip(res Result, settings model.DeliveredPricingSettings) bool {
	return !res.CanCompete && settings.LowPriceMode == model.LowPriceAutoSkip
}

func absDiff(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}
