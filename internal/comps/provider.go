package comps

import (
	"context"

	"pricepoint/internal/model"
)

// Query carries the product search terms every channel consumes.
type Query struct {
	Brand     string
	Title     string
	UPC       string
	Condition string
	Quantity  int
}

// SoldResult is the sold-transaction channel response. OK false or RateLimited
// true mean the channel contributed nothing this request; neither is an error.
type SoldResult struct {
	OK          bool
	RateLimited bool
	Samples     []model.RawComparable
}

// ActiveResult is the active-listing channel response.
type ActiveResult struct {
	OK          bool
	Competitors []model.RawComparable
}

// RetailResult is the retail/general-search channel response. BrandSitePrice
// is set when the brand's own storefront was observed directly.
type RetailResult struct {
	OK                  bool
	Results             []model.RawComparable
	BrandSitePriceMinor int64
	BrandSiteSeller     string
}

// SoldProvider looks up completed-transaction history.
type SoldProvider interface {
	Available() bool
	ProviderName() string
	GetSoldHistory(ctx context.Context, q Query) (*SoldResult, error)
}

// ActiveProvider looks up competing live listings.
type ActiveProvider interface {
	Available() bool
	ProviderName() string
	GetActiveListings(ctx context.Context, q Query) (*ActiveResult, error)
}

// RetailProvider searches general retail channels for anchors.
type RetailProvider interface {
	Available() bool
	ProviderName() string
	SearchRetail(ctx context.Context, q Query) (*RetailResult, error)
}

// trustedRetailers are sellers whose observed prices count as anchors.
// Everything else from general search is treated as an aggregator result,
// untrustworthy on its own.
var trustedRetailers = map[string]bool{
	"amazon":     true,
	"walmart":    true,
	"target":     true,
	"costco":     true,
	"cvs":        true,
	"walgreens":  true,
	"ulta":       true,
	"sephora":    true,
	"home depot": true,
	"best buy":   true,
}

// IsTrustedRetailer reports whether a seller label names a verified major
// retailer.
func IsTrustedRetailer(seller string) bool {
	return trustedRetailers[normalizeSeller(seller)]
}
