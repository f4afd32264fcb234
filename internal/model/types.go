package model

import "time"

// CompSource identifies the channel a comparable was observed on.
type CompSource string

const (
	SourceSold   CompSource = "sold"
	SourceActive CompSource = "active"
	SourceRetail CompSource = "retail"
)

// RetailSubtype distinguishes retail observations by trust level.
type RetailSubtype string

const (
	RetailBrandSite  RetailSubtype = "brand_site"
	RetailMajor      RetailSubtype = "major_retailer"
	RetailAggregator RetailSubtype = "aggregator"
)

// RawComparable is one observed price point from a channel. Immutable once
// produced by the acquisition step. DeliveredMinor is always
// ItemPriceMinor + ShippingMinor.
type RawComparable struct {
	Source         CompSource    `json:"source"`
	RetailSubtype  RetailSubtype `json:"retail_subtype,omitempty"`
	ItemPriceMinor int64         `json:"item_price_minor"`
	ShippingMinor  int64         `json:"shipping_minor"`
	DeliveredMinor int64         `json:"delivered_minor"`
	Title          string        `json:"title"`
	URL            string        `json:"url,omitempty"`
	InStock        bool          `json:"in_stock"`
	SellerLabel    string        `json:"seller_label,omitempty"`
}

// NewRawComparable builds a comparable with the delivered total derived from
// its parts, so the invariant cannot drift.
func NewRawComparable(source CompSource, itemMinor, shipMinor int64, title string) RawComparable {
	return RawComparable{
		Source:         source,
		ItemPriceMinor: itemMinor,
		ShippingMinor:  shipMinor,
		DeliveredMinor: itemMinor + shipMinor,
		Title:          title,
		InStock:        true,
	}
}

// Size is a parsed package size with a normalized unit.
type Size struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// CanonicalIdentity is the structured identity a pricing request resolves to.
// Derived once per request and never mutated afterwards.
type CanonicalIdentity struct {
	Brand       string `json:"brand"`
	ProductLine string `json:"product_line"`
	Size        *Size  `json:"size,omitempty"`
	PackCount   int    `json:"pack_count"`
	UPC         string `json:"upc,omitempty"`
}

// MatchVerdict classifies a comparable against a canonical identity.
type MatchVerdict string

const (
	VerdictMatch     MatchVerdict = "match"
	VerdictAmbiguous MatchVerdict = "ambiguous"
	VerdictReject    MatchVerdict = "reject"
)

// MatchResult pairs a comparable with its verdict and a reasoning trail.
type MatchResult struct {
	Comp    RawComparable `json:"comp"`
	Verdict MatchVerdict  `json:"verdict"`
	Reasons []string      `json:"reasons"`
}

// CompSample is the price tuple fed into robust statistics.
type CompSample struct {
	ItemMinor      int64 `json:"item_minor"`
	ShipMinor      int64 `json:"ship_minor"`
	DeliveredMinor int64 `json:"delivered_minor"`
}

// PricingMode selects the target-price strategy.
type PricingMode string

const (
	ModeMarketMatch PricingMode = "market-match"
	ModeFastSale    PricingMode = "fast-sale"
	ModeMaxMargin   PricingMode = "max-margin"
)

// LowPriceMode controls behavior when the market cannot be matched profitably.
type LowPriceMode string

const (
	LowPriceFlagOnly    LowPriceMode = "flag-only"
	LowPriceAutoSkip    LowPriceMode = "auto-skip"
	LowPriceAllowAnyway LowPriceMode = "allow-anyway"
)

// SelectorGeneration picks which target-selection algorithm runs.
type SelectorGeneration string

const (
	GenerationV1 SelectorGeneration = "v1"
	GenerationV2 SelectorGeneration = "v2"
)

// DeliveredPricingSettings is the per-request configuration.
type DeliveredPricingSettings struct {
	Mode                       PricingMode        `json:"mode" yaml:"mode"`
	Generation                 SelectorGeneration `json:"generation" yaml:"generation"`
	ShippingEstimateMinor      int64              `json:"shipping_estimate_minor" yaml:"shipping_estimate_minor"`
	MinItemMinor               int64              `json:"min_item_minor" yaml:"min_item_minor"`
	UndercutMinor              int64              `json:"undercut_minor" yaml:"undercut_minor"`
	AllowFreeShippingWhenNeeded bool              `json:"allow_free_shipping_when_needed" yaml:"allow_free_shipping_when_needed"`
	FreeShippingMaxSubsidyMinor int64             `json:"free_shipping_max_subsidy_minor" yaml:"free_shipping_max_subsidy_minor"`
	LowPriceMode               LowPriceMode       `json:"low_price_mode" yaml:"low_price_mode"`
	UseSmartShipping           bool               `json:"use_smart_shipping" yaml:"use_smart_shipping"`
	IncludeAmbiguousComps      bool               `json:"include_ambiguous_comps" yaml:"include_ambiguous_comps"`
}

// MatchConfidence buckets the raw 0-100 confidence score for consumers that
// cannot interpret the number itself.
type MatchConfidence string

const (
	ConfidenceHigh   MatchConfidence = "high"
	ConfidenceMedium MatchConfidence = "medium"
	ConfidenceLow    MatchConfidence = "low"
)

// DeliveredPricingDecision is the final immutable output of a pricing request.
// When CanCompete is true, FinalItemMinor + FinalShipMinor equals
// TargetDeliveredMinor exactly; divergence is the cannot-compete signal.
// A zero target means no price was selected: the split fields stay zero and
// the decision is unpublishable (SkipListing set), so the item-floor guarantee
// applies only to decisions with a positive target.
type DeliveredPricingDecision struct {
	DecisionID           string          `json:"decision_id"`
	Identity             CanonicalIdentity `json:"identity"`
	Mode                 PricingMode     `json:"mode"`
	Generation           SelectorGeneration `json:"generation"`
	CompsUsed            []RawComparable `json:"comps_used"`
	CompsSource          string          `json:"comps_source"`
	SoldCount            int             `json:"sold_count"`
	ActiveCount          int             `json:"active_count"`
	SafetyFloorMinor     int64           `json:"safety_floor_minor"`
	TargetDeliveredMinor int64           `json:"target_delivered_minor"`
	FinalItemMinor       int64           `json:"final_item_minor"`
	FinalShipMinor       int64           `json:"final_ship_minor"`
	FreeShipApplied      bool            `json:"free_ship_applied"`
	SubsidyMinor         int64           `json:"subsidy_minor"`
	CanCompete           bool            `json:"can_compete"`
	SkipListing          bool            `json:"skip_listing"`
	Confidence           int             `json:"confidence"`
	MatchConfidence      MatchConfidence `json:"match_confidence"`
	FallbackUsed         bool            `json:"fallback_used"`
	ManualReview         bool            `json:"manual_review"`
	Warnings             []string        `json:"warnings"`
	CreatedAt            time.Time       `json:"created_at"`
}
