package comps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"pricepoint/internal/model"
)

// ActiveListingClient fetches live competing listings from the marketplace
// browse API.
type ActiveListingClient struct {
	apiKey      string
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

// NewActiveListingClient creates an active-listing client; nil without a key.
func NewActiveListingClient(apiKey, baseURL string) *ActiveListingClient {
	if apiKey == "" {
		return nil
	}
	if baseURL == "" {
		baseURL = "https://api.marketplace.example.com"
	}
	return &ActiveListingClient{
		apiKey:      apiKey,
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 5),
	}
}

// Available reports whether the client is configured.
func (c *ActiveListingClient) Available() bool {
	return c != nil && c.apiKey != ""
}

// ProviderName implements ActiveProvider.
func (c *ActiveListingClient) ProviderName() string {
	return "ActiveListings"
}

// GetActiveListings implements ActiveProvider.
func (c *ActiveListingClient) GetActiveListings(ctx context.Context, q Query) (*ActiveResult, error) {
	if !c.Available() {
		return &ActiveResult{}, nil
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("brand", q.Brand)
	params.Set("q", q.Title)
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/v1/listings?%s", c.baseURL, params.Encode()), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing API returned status %d", resp.StatusCode)
	}

	var apiResp struct {
		Competitors []struct {
			ItemID     string `json:"item_id"`
			Title      string `json:"title"`
			Condition  string `json:"condition"`
			PriceMinor int64  `json:"price_minor"`
			ShipMinor  int64  `json:"ship_minor"`
			URL        string `json:"url"`
			Seller     string `json:"seller"`
		} `json:"competitors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	result := &ActiveResult{OK: true}
	for _, comp := range apiResp.Competitors {
		if comp.PriceMinor <= 0 {
			continue
		}
		raw := model.NewRawComparable(model.SourceActive, comp.PriceMinor, comp.ShipMinor, comp.Title)
		raw.URL = comp.URL
		raw.SellerLabel = comp.Seller
		result.Competitors = append(result.Competitors, raw)
	}
	return result, nil
}
