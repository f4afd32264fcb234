package comps

import (
	"strings"
	"testing"

	"pricepoint/internal/model"
)

const resultPageHTML = `
<html><body>
<div class="result-tile">
  <h3>CeraVe Moisturizing Cream 19 oz</h3>
  <span class="seller-name">Walmart</span>
  <span class="result-price">$17.48</span>
  <a href="https://walmart.example.com/p/123">link</a>
</div>
<div class="result-tile">
  <h3>CeraVe Moisturizing Cream 19 oz Tub</h3>
  <span class="seller-name">CeraVe Official</span>
  <span class="result-price">$19.99</span>
  <a href="https://cerave.example.com/p/cream">link</a>
</div>
<div class="result-tile">
  <h3>CeraVe Cream Wholesale Lot</h3>
  <span class="seller-name">DealGrabber</span>
  <span class="result-price">$1,049.00</span>
  <a href="https://dealgrabber.example.com/lot">link</a>
</div>
<div class="result-tile">
  <h3>No price tile</h3>
  <span class="seller-name">Nobody</span>
  <span class="result-price">call us</span>
</div>
</body></html>`

func TestParseResults(t *testing.T) {
	c := NewRetailSearchClient("")
	res, err := c.parseResults(strings.NewReader(resultPageHTML), "CeraVe")
	if err != nil {
		t.Fatalf("parseResults: %v", err)
	}

	if len(res.Results) != 3 {
		t.Fatalf("results = %d, want 3 (price-less tile dropped)", len(res.Results))
	}

	walmart := res.Results[0]
	if walmart.ItemPriceMinor != 1748 {
		t.Errorf("walmart price = %d, want 1748", walmart.ItemPriceMinor)
	}
	if walmart.RetailSubtype != model.RetailMajor {
		t.Errorf("walmart subtype = %s, want major", walmart.RetailSubtype)
	}

	brandSite := res.Results[1]
	if brandSite.RetailSubtype != model.RetailBrandSite {
		t.Errorf("brand site subtype = %s, want brand_site", brandSite.RetailSubtype)
	}
	if res.BrandSitePriceMinor != 1999 {
		t.Errorf("brand site price = %d, want 1999", res.BrandSitePriceMinor)
	}

	aggregator := res.Results[2]
	if aggregator.RetailSubtype != model.RetailAggregator {
		t.Errorf("aggregator subtype = %s, want aggregator", aggregator.RetailSubtype)
	}
	if aggregator.ItemPriceMinor != 104900 {
		t.Errorf("aggregator price = %d, want 104900", aggregator.ItemPriceMinor)
	}
}

func TestParsePriceMinor(t *testing.T) {
	tests := []struct {
		text string
		want int64
	}{
		{"$24.99", 2499},
		{"$1,049.00", 104900},
		{"17.48", 1748},
		{"$5", 500},
		{"free", 0},
		{"", 0},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := parsePriceMinor(tt.text); got != tt.want {
				t.Errorf("parsePriceMinor(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestClassifySeller(t *testing.T) {
	tests := []struct {
		brand  string
		seller string
		want   model.RetailSubtype
	}{
		{"CeraVe", "CeraVe Official", model.RetailBrandSite},
		{"CeraVe", "cerave.com", model.RetailBrandSite},
		{"CeraVe", "Walmart", model.RetailMajor},
		{"CeraVe", "RandomShop24", model.RetailAggregator},
	}
	for _, tt := range tests {
		t.Run(tt.seller, func(t *testing.T) {
			if got := classifySeller(tt.brand, tt.seller); got != tt.want {
				t.Errorf("classifySeller = %s, want %s", got, tt.want)
			}
		})
	}
}
