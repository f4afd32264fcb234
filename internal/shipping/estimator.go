package shipping

import (
	"strings"

	"pricepoint/internal/model"
)

// SizeClass buckets a product into a carrier pricing tier.
type SizeClass string

const (
	ClassLetter   SizeClass = "letter"
	ClassSmall    SizeClass = "small_parcel"
	ClassMedium   SizeClass = "medium_parcel"
	ClassLarge    SizeClass = "large_parcel"
	ClassOversize SizeClass = "oversize"
)

// Default buyer-facing charges per class, minor units. Flat-rate carrier
// tiers, not actual postage.
var classCharges = map[SizeClass]int64{
	ClassLetter:   199,
	ClassSmall:    499,
	ClassMedium:   699,
	ClassLarge:    1099,
	ClassOversize: 1899,
}

// Estimator produces the buyer-facing shipping charge for a product. When
// smart shipping is disabled it returns the flat configured estimate.
type Estimator struct {
	charges map[SizeClass]int64
}

// NewEstimator creates an estimator with the default class charges.
func NewEstimator() *Estimator {
	return &Estimator{charges: classCharges}
}

// EstimateMinor returns the shipping charge for the identity under the given
// settings, and whether the smart heuristic was used.
func (e *Estimator) EstimateMinor(id model.CanonicalIdentity, settings model.DeliveredPricingSettings) (int64, bool) {
	if !settings.UseSmartShipping {
		return settings.ShippingEstimateMinor, false
	}
	return e.charges[Classify(id)], true
}

// Classify maps an identity to a size class from its parsed size and pack
// count. The heuristic is deliberately coarse; listings carry no dimensions.
func Classify(id model.CanonicalIdentity) SizeClass {
	class := baseClass(id)

	// Multi-packs ship at least one tier up.
	if id.PackCount > 1 {
		class = bump(class)
	}
	if id.PackCount > 6 {
		class = bump(class)
	}
	return class
}

func baseClass(id model.CanonicalIdentity) SizeClass {
	line := strings.ToLower(id.ProductLine)
	for _, kw := range []string{"card", "sticker", "patch", "coupon"} {
		if strings.Contains(line, kw) {
			return ClassLetter
		}
	}

	if id.Size == nil {
		return ClassSmall
	}

	switch id.Size.Unit {
	case "oz", "floz":
		if id.Size.Value <= 16 {
			return ClassSmall
		}
		if id.Size.Value <= 64 {
			return ClassMedium
		}
		return ClassLarge
	case "ml":
		if id.Size.Value <= 500 {
			return ClassSmall
		}
		return ClassMedium
	case "l":
		if id.Size.Value <= 1 {
			return ClassMedium
		}
		return ClassLarge
	case "g":
		if id.Size.Value <= 500 {
			return ClassSmall
		}
		return ClassMedium
	case "kg":
		if id.Size.Value <= 2 {
			return ClassMedium
		}
		return ClassLarge
	case "lb":
		if id.Size.Value <= 1 {
			return ClassSmall
		}
		if id.Size.Value <= 5 {
			return ClassMedium
		}
		return ClassLarge
	case "ct":
		if id.Size.Value <= 120 {
			return ClassSmall
		}
		return ClassMedium
	default:
		return ClassSmall
	}
}

func bump(c SizeClass) SizeClass {
	switch c {
	case ClassLetter:
		return ClassSmall
	case ClassSmall:
		return ClassMedium
	case ClassMedium:
		return ClassLarge
	default:
		return ClassOversize
	}
}
