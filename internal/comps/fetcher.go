package comps

import (
	"context"
	"sync"
	"time"

	"pricepoint/internal/model"
)

// FetchSet is the joined output of one concurrent acquisition pass. A channel
// that failed, timed out, or was unavailable shows up as a nil result plus a
// warning code; the selection algorithm degrades through weaker tiers rather
// than aborting.
type FetchSet struct {
	Sold     *SoldResult
	Active   *ActiveResult
	Retail   *RetailResult
	Warnings []string
}

// Fetcher fans the three channel lookups out concurrently and joins them.
// The channels have no data dependency on each other, so the slowest one
// bounds the wall time instead of their sum.
type Fetcher struct {
	sold    SoldProvider
	active  ActiveProvider
	retail  RetailProvider
	timeout time.Duration
}

// NewFetcher creates a fetcher. Any provider may be nil.
func NewFetcher(sold SoldProvider, active ActiveProvider, retail RetailProvider, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Fetcher{sold: sold, active: active, retail: retail, timeout: timeout}
}

// Fetch runs all available channels with a per-channel timeout and returns
// whatever arrived. Fetch itself never fails.
func (f *Fetcher) Fetch(ctx context.Context, q Query) *FetchSet {
	set := &FetchSet{}
	var mu sync.Mutex
	var wg sync.WaitGroup

	warn := func(code string) {
		mu.Lock()
		set.Warnings = append(set.Warnings, code)
		mu.Unlock()
	}

	if f.sold != nil && f.sold.Available() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, f.timeout)
			defer cancel()

			res, err := f.sold.GetSoldHistory(callCtx, q)
			if err != nil {
				warn(model.WarnChannelUnavailable)
				return
			}
			if res.RateLimited {
				warn(model.WarnSoldRateLimited)
			}
			mu.Lock()
			set.Sold = res
			mu.Unlock()
		}()
	} else {
		warn(model.WarnChannelNotConfigured)
	}

	if f.active != nil && f.active.Available() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, f.timeout)
			defer cancel()

			res, err := f.active.GetActiveListings(callCtx, q)
			if err != nil {
				warn(model.WarnChannelUnavailable)
				return
			}
			mu.Lock()
			set.Active = res
			mu.Unlock()
		}()
	} else {
		warn(model.WarnChannelNotConfigured)
	}

	if f.retail != nil && f.retail.Available() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, f.timeout)
			defer cancel()

			res, err := f.retail.SearchRetail(callCtx, q)
			if err != nil {
				warn(model.WarnChannelUnavailable)
				return
			}
			mu.Lock()
			set.Retail = res
			mu.Unlock()
		}()
	} else {
		warn(model.WarnChannelNotConfigured)
	}

	wg.Wait()
	return set
}

// SoldComps returns the sold channel's comps, empty when the channel
// contributed nothing.
func (s *FetchSet) SoldComps() []model.RawComparable {
	if s.Sold == nil || !s.Sold.OK {
		return nil
	}
	return s.Sold.Samples
}

// ActiveComps returns the active channel's comps.
func (s *FetchSet) ActiveComps() []model.RawComparable {
	if s.Active == nil || !s.Active.OK {
		return nil
	}
	return s.Active.Competitors
}

// RetailComps returns the retail channel's comps.
func (s *FetchSet) RetailComps() []model.RawComparable {
	if s.Retail == nil || !s.Retail.OK {
		return nil
	}
	return s.Retail.Results
}
