package stats

import (
	"testing"

	"pricepoint/internal/model"
)

func samplesFromDelivered(delivered ...int64) []model.CompSample {
	out := make([]model.CompSample, 0, len(delivered))
	for _, d := range delivered {
		out = append(out, model.CompSample{ItemMinor: d, DeliveredMinor: d})
	}
	return out
}

func TestSummarize_Empty(t *testing.T) {
	if got := Summarize(nil, DefaultPolicy()); got != nil {
		t.Errorf("expected nil stats for empty input, got %+v", got)
	}
}

func TestSummarize_OutlierRejection(t *testing.T) {
	// Five identical cheap sales plus one anomalous 100-unit sale. The
	// outlier must not survive rejection or influence the median.
	s := Summarize(samplesFromDelivered(500, 500, 500, 500, 500, 10000), DefaultPolicy())
	if s == nil {
		t.Fatal("expected stats, got nil")
	}
	if s.RawCount != 6 {
		t.Errorf("RawCount = %d, want 6", s.RawCount)
	}
	if s.Count != 5 {
		t.Errorf("Count = %d, want 5 (outlier rejected)", s.Count)
	}
	if s.P50 != 500 {
		t.Errorf("P50 = %d, want 500", s.P50)
	}
}

func TestSummarize_FloorOutlierRejection(t *testing.T) {
	// A single damaged-item sale far below the cluster must be discarded.
	s := Summarize(samplesFromDelivered(100, 2000, 2000, 2100, 2100, 2200), DefaultPolicy())
	if s.Count != 5 {
		t.Errorf("Count = %d, want 5", s.Count)
	}
	if s.Min != 2000 {
		t.Errorf("Min = %d, want 2000", s.Min)
	}
}

func TestSummarize_NoOutliers(t *testing.T) {
	s := Summarize(samplesFromDelivered(1000, 1100, 1200, 1300, 1400), DefaultPolicy())
	if s.RawCount != 5 || s.Count != 5 {
		t.Errorf("counts = %d/%d, want 5/5", s.Count, s.RawCount)
	}
	if s.Min != 1000 {
		t.Errorf("Min = %d, want 1000", s.Min)
	}
	if s.P50 != 1200 {
		t.Errorf("P50 = %d, want 1200", s.P50)
	}
	if s.P20 > s.P35 || s.P35 > s.P50 || s.P50 > s.P65 {
		t.Errorf("percentiles not monotonic: %d %d %d %d", s.P20, s.P35, s.P50, s.P65)
	}
}

func TestSummarize_SingleSample(t *testing.T) {
	s := Summarize(samplesFromDelivered(1500), DefaultPolicy())
	if s.Count != 1 || s.P50 != 1500 || s.Min != 1500 {
		t.Errorf("unexpected stats for single sample: %+v", s)
	}
}

func TestStrengthPredicates(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		name   string
		stats  *RobustStats
		sold   bool
		active bool
	}{
		{"nil", nil, false, false},
		{"below both", &RobustStats{Count: 3}, false, false},
		{"active only", &RobustStats{Count: 4}, false, true},
		{"both", &RobustStats{Count: 5}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSoldStrong(tt.stats, policy); got != tt.sold {
				t.Errorf("IsSoldStrong = %v, want %v", got, tt.sold)
			}
			if got := IsActiveStrong(tt.stats, policy); got != tt.active {
				t.Errorf("IsActiveStrong = %v, want %v", got, tt.active)
			}
		})
	}
}

func TestSellThrough(t *testing.T) {
	sold := &RobustStats{Count: 6}
	active := &RobustStats{Count: 10}
	if got := SellThrough(sold, active); got != 0.6 {
		t.Errorf("SellThrough = %v, want 0.6", got)
	}
	if got := SellThrough(nil, active); got != 0 {
		t.Errorf("SellThrough with nil sold = %v, want 0", got)
	}
	if got := SellThrough(sold, &RobustStats{Count: 0}); got != 0 {
		t.Errorf("SellThrough with zero active = %v, want 0", got)
	}
}

func TestSummarize_Deterministic(t *testing.T) {
	in := samplesFromDelivered(900, 850, 1200, 950, 1000, 875, 925)
	a := Summarize(in, DefaultPolicy())
	b := Summarize(in, DefaultPolicy())
	if *a != *b {
		t.Errorf("Summarize not deterministic: %+v vs %+v", a, b)
	}
}
