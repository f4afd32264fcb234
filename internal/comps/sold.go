package comps

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"pricepoint/internal/model"
)

// SoldHistoryClient fetches completed-transaction comps from the sold-history
// API. Rate limiting and timeouts live here so a slow or throttled channel
// degrades to "no data" instead of stalling the pricing request.
type SoldHistoryClient struct {
	apiKey      string
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

// NewSoldHistoryClient creates a sold-history client. Returns nil when no
// API key is configured, which callers treat as an unavailable channel.
func NewSoldHistoryClient(apiKey, baseURL string) *SoldHistoryClient {
	if apiKey == "" {
		return nil
	}
	if baseURL == "" {
		baseURL = "https://api.soldhistory.example.com"
	}
	return &SoldHistoryClient{
		apiKey:      apiKey,
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 5),
	}
}

// Available reports whether the client is configured.
func (c *SoldHistoryClient) Available() bool {
	return c != nil && c.apiKey != ""
}

// ProviderName implements SoldProvider.
func (c *SoldHistoryClient) ProviderName() string {
	return "SoldHistory"
}

// GetSoldHistory implements SoldProvider. Rate limiting and HTTP 429 are
// surfaced as RateLimited, not as errors.
func (c *SoldHistoryClient) GetSoldHistory(ctx context.Context, q Query) (*SoldResult, error) {
	if !c.Available() {
		return &SoldResult{}, nil
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("title", q.Title)
	params.Set("brand", q.Brand)
	if q.UPC != "" {
		params.Set("upc", q.UPC)
	}
	if q.Condition != "" {
		params.Set("condition", q.Condition)
	}
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/v1/sold?%s", c.baseURL, params.Encode()), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return &SoldResult{RateLimited: true}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sold history API returned status %d", resp.StatusCode)
	}

	var apiResp struct {
		Sales []struct {
			Price    float64 `json:"price"`
			Shipping float64 `json:"shipping"`
			Title    string  `json:"title"`
			URL      string  `json:"url"`
			Currency string  `json:"currency"`
		} `json:"sales"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	result := &SoldResult{OK: true}
	for _, sale := range apiResp.Sales {
		if sale.Price <= 0 {
			continue
		}
		// Round, don't truncate: 16.99 is 1698.999... in binary.
		comp := model.NewRawComparable(
			model.SourceSold,
			int64(math.Round(sale.Price*100)),
			int64(math.Round(sale.Shipping*100)),
			sale.Title,
		)
		comp.URL = sale.URL
		result.Samples = append(result.Samples, comp)
	}
	return result, nil
}
