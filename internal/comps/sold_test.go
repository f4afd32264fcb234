package comps

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetSoldHistory_FractionalPricesRoundToCents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"sales":[
			{"price":16.99,"shipping":2.29,"title":"CeraVe Moisturizing Cream 19 oz"},
			{"price":5.00,"shipping":0,"title":"CeraVe Moisturizing Cream 19 oz"}
		]}`)
	}))
	defer server.Close()

	c := NewSoldHistoryClient("test-key", server.URL)
	res, err := c.GetSoldHistory(context.Background(), Query{Brand: "CeraVe", Title: "Moisturizing Cream"})
	if err != nil {
		t.Fatalf("GetSoldHistory: %v", err)
	}
	if !res.OK || len(res.Samples) != 2 {
		t.Fatalf("ok = %v, samples = %d, want 2", res.OK, len(res.Samples))
	}

	got := res.Samples[0]
	if got.ItemPriceMinor != 1699 {
		t.Errorf("item minor = %d, want 1699", got.ItemPriceMinor)
	}
	if got.ShippingMinor != 229 {
		t.Errorf("ship minor = %d, want 229", got.ShippingMinor)
	}
	if got.DeliveredMinor != 1928 {
		t.Errorf("delivered minor = %d, want 1928", got.DeliveredMinor)
	}

	if res.Samples[1].ItemPriceMinor != 500 {
		t.Errorf("whole-dollar item minor = %d, want 500", res.Samples[1].ItemPriceMinor)
	}
}

func TestGetSoldHistory_RateLimitedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewSoldHistoryClient("test-key", server.URL)
	res, err := c.GetSoldHistory(context.Background(), Query{Brand: "CeraVe", Title: "Moisturizing Cream"})
	if err != nil {
		t.Fatalf("GetSoldHistory: %v", err)
	}
	if !res.RateLimited {
		t.Error("HTTP 429 must surface as RateLimited, not an error")
	}
	if res.OK {
		t.Error("rate-limited response must not report OK")
	}
}
