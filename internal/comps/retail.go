package comps

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/brotli"

	"pricepoint/internal/model"
)

// RetailSearchClient extracts retail price observations from a shopping
// search results page. Results from the brand's own storefront or a verified
// major retailer become trusted anchors; everything else is aggregator noise
// kept only as weak comps.
type RetailSearchClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	maxResults int
}

// NewRetailSearchClient creates a retail search client.
func NewRetailSearchClient(baseURL string) *RetailSearchClient {
	if baseURL == "" {
		baseURL = "https://shopping.search.example.com"
	}
	return &RetailSearchClient{
		baseURL:    baseURL,
		userAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		httpClient: &http.Client{Timeout: 20 * time.Second},
		maxResults: 30,
	}
}

// Available implements RetailProvider; the search endpoint needs no key.
func (c *RetailSearchClient) Available() bool {
	return c != nil
}

// ProviderName implements RetailProvider.
func (c *RetailSearchClient) ProviderName() string {
	return "RetailSearch"
}

// SearchRetail implements RetailProvider.
func (c *RetailSearchClient) SearchRetail(ctx context.Context, q Query) (*RetailResult, error) {
	query := strings.TrimSpace(q.Brand + " " + q.Title)
	searchURL := fmt.Sprintf("%s/search?q=%s&num=%d", c.baseURL, url.QueryEscape(query), c.maxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Encoding", "gzip, br")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("retail search returned status %d", resp.StatusCode)
	}

	reader, err := decodeBody(resp)
	if err != nil {
		return nil, fmt.Errorf("decoding body: %w", err)
	}

	return c.parseResults(reader, q.Brand)
}

// decodeBody unwraps the response content encoding.
func decodeBody(resp *http.Response) (io.Reader, error) {
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		return gzip.NewReader(resp.Body)
	case "br":
		return brotli.NewReader(resp.Body), nil
	default:
		return resp.Body, nil
	}
}

// parseResults extracts offers from result tiles. Exported through
// SearchRetail only; split out so tests can feed canned HTML.
func (c *RetailSearchClient) parseResults(r io.Reader, brand string) (*RetailResult, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}

	result := &RetailResult{OK: true}

	doc.Find("div.sh-dgr__content, div.result-tile, li.product-result").Each(func(i int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Find("h3, .tile-title, .result-title").First().Text())
		seller := strings.TrimSpace(s.Find(".merchant, .seller-name, .result-seller").First().Text())
		priceText := strings.TrimSpace(s.Find(".price, .tile-price, .result-price").First().Text())
		link, _ := s.Find("a").First().Attr("href")

		priceMinor := parsePriceMinor(priceText)
		if priceMinor <= 0 || title == "" {
			return
		}

		comp := model.NewRawComparable(model.SourceRetail, priceMinor, 0, title)
		comp.URL = link
		comp.SellerLabel = seller
		comp.RetailSubtype = classifySeller(brand, seller)
		result.Results = append(result.Results, comp)

		if comp.RetailSubtype == model.RetailBrandSite &&
			(result.BrandSitePriceMinor == 0 || priceMinor < result.BrandSitePriceMinor) {
			result.BrandSitePriceMinor = priceMinor
			result.BrandSiteSeller = seller
		}
	})

	return result, nil
}

// classifySeller assigns the trust subtype for a retail observation.
func classifySeller(brand, seller string) model.RetailSubtype {
	sellerNorm := normalizeSeller(seller)
	brandNorm := normalizeSeller(brand)

	if brandNorm != "" && sellerNorm != "" &&
		(sellerNorm == brandNorm || strings.Contains(sellerNorm, brandNorm)) {
		return model.RetailBrandSite
	}
	if IsTrustedRetailer(seller) {
		return model.RetailMajor
	}
	return model.RetailAggregator
}

func normalizeSeller(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, suffix := range []string{".com", " inc", " llc", " official", " store"} {
		s = strings.TrimSuffix(s, suffix)
	}
	return strings.TrimSpace(s)
}

var priceRe = regexp.MustCompile(`(\d+(?:,\d{3})*)(?:\.(\d{2}))?`)

// parsePriceMinor converts a displayed price ("$24.99") to minor units.
func parsePriceMinor(text string) int64 {
	m := priceRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}

	whole, err := strconv.ParseInt(strings.ReplaceAll(m[1], ",", ""), 10, 64)
	if err != nil {
		return 0
	}
	minor := whole * 100
	if m[2] != "" {
		cents, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			return 0
		}
		minor += cents
	}
	return minor
}
