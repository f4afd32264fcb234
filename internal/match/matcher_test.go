package match

import (
	"testing"

	"pricepoint/internal/identity"
	"pricepoint/internal/model"
)

func comp(title string) model.RawComparable {
	return model.NewRawComparable(model.SourceActive, 1500, 500, title)
}

func TestMatchComps_Verdicts(t *testing.T) {
	id := identity.BuildIdentity("CeraVe", "CeraVe Moisturizing Cream 19 oz")
	m := NewMatcher()

	tests := []struct {
		name    string
		title   string
		verdict model.MatchVerdict
	}{
		{"exact product", "CeraVe Moisturizing Cream 19 oz", model.VerdictMatch},
		{"near exact", "CeraVe Moisturizing Cream for Dry Skin 19oz", model.VerdictMatch},
		{"wrong size", "CeraVe Moisturizing Cream 12 oz", model.VerdictReject},
		{"multi pack", "CeraVe Moisturizing Cream 19 oz Pack of 2", model.VerdictReject},
		{"wrong brand", "Cetaphil Moisturizing Cream 19 oz", model.VerdictAmbiguous},
		{"too short", "Cream", model.VerdictAmbiguous},
		{"no size in title", "CeraVe Moisturizing Cream", model.VerdictMatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := m.MatchComps(id, []model.RawComparable{comp(tt.title)})
			if len(results) != 1 {
				t.Fatalf("expected 1 result, got %d", len(results))
			}
			if results[0].Verdict != tt.verdict {
				t.Errorf("verdict = %s, want %s (reasons: %v)",
					results[0].Verdict, tt.verdict, results[0].Reasons)
			}
			if len(results[0].Reasons) == 0 {
				t.Error("expected a reasoning trail")
			}
		})
	}
}

func TestMatchComps_UPCOverridesTitle(t *testing.T) {
	id := identity.BuildIdentity("Olaplex", "Olaplex No.3 100ml 850018802192")
	m := NewMatcher()

	results := m.MatchComps(id, []model.RawComparable{comp("some listing 850018802192 hair")})
	if results[0].Verdict != model.VerdictMatch {
		t.Errorf("verdict = %s, want match on UPC", results[0].Verdict)
	}
}

func TestMatchComps_PackIdentityMatchesPackComp(t *testing.T) {
	id := identity.BuildIdentity("Duracell", "Duracell AA Batteries Pack of 24")
	m := NewMatcher()

	tests := []struct {
		title   string
		verdict model.MatchVerdict
	}{
		{"Duracell AA Batteries 24-Pack", model.VerdictMatch},
		{"Duracell AA Batteries Pack of 12", model.VerdictReject},
		{"Duracell AA Batteries single", model.VerdictReject},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			results := m.MatchComps(id, []model.RawComparable{comp(tt.title)})
			if results[0].Verdict != tt.verdict {
				t.Errorf("verdict = %s, want %s (reasons: %v)",
					results[0].Verdict, tt.verdict, results[0].Reasons)
			}
		})
	}
}

func TestFilters(t *testing.T) {
	results := []model.MatchResult{
		{Comp: comp("a b"), Verdict: model.VerdictMatch},
		{Comp: comp("c d"), Verdict: model.VerdictAmbiguous},
		{Comp: comp("e f"), Verdict: model.VerdictReject},
	}

	if got := FilterMatches(results); len(got) != 1 {
		t.Errorf("FilterMatches kept %d, want 1", len(got))
	}
	if got := FilterMatchesAndAmbiguous(results); len(got) != 2 {
		t.Errorf("FilterMatchesAndAmbiguous kept %d, want 2", len(got))
	}
}

func TestHasUnresolvedPackAmbiguity(t *testing.T) {
	id := identity.BuildIdentity("Tide", "Tide Pods Original")

	ambiguousPack := []model.MatchResult{
		{Comp: comp("Laundry Pods Pack of 3 value bundle"), Verdict: model.VerdictAmbiguous},
	}
	if !HasUnresolvedPackAmbiguity(id, ambiguousPack) {
		t.Error("expected pack ambiguity to be flagged")
	}

	cleanAmbiguous := []model.MatchResult{
		{Comp: comp("Laundry Pods Original"), Verdict: model.VerdictAmbiguous},
	}
	if HasUnresolvedPackAmbiguity(id, cleanAmbiguous) {
		t.Error("did not expect pack ambiguity")
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		query string
		title string
		min   float64
		max   float64
	}{
		{"moisturizing cream", "cerave moisturizing cream 19 oz", 0.85, 1.0},
		{"moisturizing cream", "moisturizing cream", 1.0, 1.0},
		{"hair perfector", "totally unrelated widget", 0.0, 0.3},
		{"", "anything", 0.0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.query+"_vs_"+tt.title, func(t *testing.T) {
			got := Similarity(tt.query, tt.title)
			if got < tt.min || got > tt.max {
				t.Errorf("Similarity = %.2f, want within [%.2f, %.2f]", got, tt.min, tt.max)
			}
		})
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		s1, s2 string
		want   int
	}{
		{"", "", 0},
		{"a", "", 1},
		{"kitten", "sitting", 3},
		{"abc", "abc", 0},
	}

	for _, tt := range tests {
		if got := levenshtein(tt.s1, tt.s2); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.s1, tt.s2, got, tt.want)
		}
	}
}
