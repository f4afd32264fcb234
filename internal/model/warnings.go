package model

// Warning codes accumulated through the pricing stages. These are data, not
// errors: every adjustment a stage makes is reported as a code so a decision
// can be audited after the fact.
const (
	WarnManualReviewRequired = "manual-review-required"
	WarnNoPricingData        = "no-pricing-data"
	WarnRetailAnchorFallback = "retail-anchor-fallback"
	WarnRetailCapApplied     = "retail-cap-applied"
	WarnActiveCapApplied     = "active-cap-applied"
	WarnFloorOutlierIgnored  = "floor-outlier-ignored"
	WarnSoldActiveMismatch   = "sold-active-mismatch"
	WarnMinDeliveredClamped  = "min-delivered-clamped"
	WarnSafetyFloorApplied   = "safety-floor-applied"
	WarnFreeShippingApplied  = "free-shipping-applied"
	WarnCannotCompete        = "cannot-compete"
	WarnAmbiguousPackSize    = "ambiguous-pack-size"
	WarnLowCompCount         = "low-comp-count"
	WarnSmartShippingUsed    = "smart-shipping-used"
	WarnSoldRateLimited      = "sold-rate-limited"
	WarnChannelUnavailable   = "channel-unavailable"
	WarnChannelNotConfigured = "channel-not-configured"
)
