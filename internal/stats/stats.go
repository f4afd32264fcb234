package stats

import (
	"math"
	"sort"

	"pricepoint/internal/model"
)

// Policy holds the tunable thresholds for signal strength and outlier
// rejection. Defaults mirror production policy; they are not derived from
// first principles and should be validated against outcome data.
type Policy struct {
	SoldStrongMin   int     `yaml:"sold_strong_min"`
	ActiveStrongMin int     `yaml:"active_strong_min"`
	OutlierIQRMult  float64 `yaml:"outlier_iqr_mult"`
}

// DefaultPolicy returns the production thresholds.
func DefaultPolicy() Policy {
	return Policy{
		SoldStrongMin:   5,
		ActiveStrongMin: 4,
		OutlierIQRMult:  1.5,
	}
}

// RobustStats summarizes a comparable sample set after IQR outlier rejection.
// All percentile fields are delivered totals in minor currency units.
type RobustStats struct {
	RawCount int   `json:"raw_count"`
	Count    int   `json:"count"`
	Min      int64 `json:"min"`
	P20      int64 `json:"p20"`
	P35      int64 `json:"p35"`
	P50      int64 `json:"p50"`
	P65      int64 `json:"p65"`
	IQR      int64 `json:"iqr"`
}

// Summarize computes robust statistics over delivered totals. Samples outside
// [Q1 - k*IQR, Q3 + k*IQR] are discarded before percentiles are computed, so a
// single anomalously cheap damaged-item sale (or a stray multi-pack at the top
// end) cannot anchor the target. Returns nil for an empty sample set.
func Summarize(samples []model.CompSample, policy Policy) *RobustStats {
	if len(samples) == 0 {
		return nil
	}

	delivered := make([]int64, 0, len(samples))
	for _, s := range samples {
		delivered = append(delivered, s.DeliveredMinor)
	}
	sort.Slice(delivered, func(i, j int) bool { return delivered[i] < delivered[j] })

	q1 := percentile(delivered, 25)
	q3 := percentile(delivered, 75)
	iqr := float64(q3 - q1)

	mult := policy.OutlierIQRMult
	if mult <= 0 {
		mult = DefaultPolicy().OutlierIQRMult
	}
	lower := float64(q1) - mult*iqr
	upper := float64(q3) + mult*iqr

	kept := delivered[:0:0]
	for _, d := range delivered {
		if float64(d) >= lower && float64(d) <= upper {
			kept = append(kept, d)
		}
	}
	if len(kept) == 0 {
		// Degenerate distribution; fall back to the raw set rather than
		// reporting nothing.
		kept = delivered
	}

	return &RobustStats{
		RawCount: len(samples),
		Count:    len(kept),
		Min:      kept[0],
		P20:      percentile(kept, 20),
		P35:      percentile(kept, 35),
		P50:      percentile(kept, 50),
		P65:      percentile(kept, 65),
		IQR:      percentile(kept, 75) - percentile(kept, 25),
	}
}

// percentile returns the nearest-rank percentile of a sorted slice.
func percentile(sorted []int64, p float64) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Round(p / 100 * float64(len(sorted)-1)))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// IsSoldStrong reports whether sold-transaction data clears the policy
// threshold after outlier rejection.
func IsSoldStrong(s *RobustStats, policy Policy) bool {
	return s != nil && s.Count >= policy.SoldStrongMin
}

// IsActiveStrong reports whether active-listing data clears the policy
// threshold after outlier rejection.
func IsActiveStrong(s *RobustStats, policy Policy) bool {
	return s != nil && s.Count >= policy.ActiveStrongMin
}

// SellThrough returns the ratio of sold samples to active samples, the demand
// signal used to decide whether a sold-driven price may exceed the active cap.
func SellThrough(sold, active *RobustStats) float64 {
	if sold == nil || active == nil || active.Count == 0 {
		return 0
	}
	return float64(sold.Count) / float64(active.Count)
}
