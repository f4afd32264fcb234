package comps

import (
	"context"

	"pricepoint/internal/model"
)

// MockSoldProvider returns canned sold comps for tests and dry runs.
type MockSoldProvider struct {
	Result      *SoldResult
	Err         error
	Unavailable bool
}

// Available implements SoldProvider.
func (m *MockSoldProvider) Available() bool { return m != nil && !m.Unavailable }

// ProviderName implements SoldProvider.
func (m *MockSoldProvider) ProviderName() string { return "MockSold" }

// GetSoldHistory implements SoldProvider.
func (m *MockSoldProvider) GetSoldHistory(ctx context.Context, q Query) (*SoldResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Result == nil {
		return &SoldResult{}, nil
	}
	return m.Result, nil
}

// MockActiveProvider returns canned active listings.
type MockActiveProvider struct {
	Result      *ActiveResult
	Err         error
	Unavailable bool
}

// Available implements ActiveProvider.
func (m *MockActiveProvider) Available() bool { return m != nil && !m.Unavailable }

// ProviderName implements ActiveProvider.
func (m *MockActiveProvider) ProviderName() string { return "MockActive" }

// GetActiveListings implements ActiveProvider.
func (m *MockActiveProvider) GetActiveListings(ctx context.Context, q Query) (*ActiveResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Result == nil {
		return &ActiveResult{}, nil
	}
	return m.Result, nil
}

// MockRetailProvider returns canned retail results.
type MockRetailProvider struct {
	Result      *RetailResult
	Err         error
	Unavailable bool
}

// Available implements RetailProvider.
func (m *MockRetailProvider) Available() bool { return m != nil && !m.Unavailable }

// ProviderName implements RetailProvider.
func (m *MockRetailProvider) ProviderName() string { return "MockRetail" }

// SearchRetail implements RetailProvider.
func (m *MockRetailProvider) SearchRetail(ctx context.Context, q Query) (*RetailResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Result == nil {
		return &RetailResult{}, nil
	}
	return m.Result, nil
}

// SoldComp builds a sold comparable for fixtures.
func SoldComp(itemMinor, shipMinor int64, title string) model.RawComparable {
	return model.NewRawComparable(model.SourceSold, itemMinor, shipMinor, title)
}

// ActiveComp builds an active comparable for fixtures.
func ActiveComp(itemMinor, shipMinor int64, title string) model.RawComparable {
	return model.NewRawComparable(model.SourceActive, itemMinor, shipMinor, title)
}

// RetailComp builds a retail comparable for fixtures.
func RetailComp(priceMinor int64, title, seller string, subtype model.RetailSubtype) model.RawComparable {
	c := model.NewRawComparable(model.SourceRetail, priceMinor, 0, title)
	c.SellerLabel = seller
	c.RetailSubtype = subtype
	return c
}

// Interface guards.
var (
	_ SoldProvider   = (*MockSoldProvider)(nil)
	_ ActiveProvider = (*MockActiveProvider)(nil)
	_ RetailProvider = (*MockRetailProvider)(nil)
	_ SoldProvider   = (*SoldHistoryClient)(nil)
	_ ActiveProvider = (*ActiveListingClient)(nil)
	_ RetailProvider = (*RetailSearchClient)(nil)
)
