package match

import (
	"fmt"
	"strings"

	"pricepoint/internal/identity"
	"pricepoint/internal/model"
)

// Matcher scores raw comparables against a canonical identity. General retail
// search frequently returns wrong package sizes or bundles (a "Pack of 24"
// for a single-unit query), and averaging those comps produces wildly wrong
// prices, so every comp is classified before any statistic is trusted.
type Matcher struct {
	// Minimum similarity between the identity product line and the comp
	// title for a brand-agreeing comp to count as a match.
	titleThreshold float64
}

// NewMatcher creates a matcher with the default title-similarity threshold.
func NewMatcher() *Matcher {
	return &Matcher{titleThreshold: 0.45}
}

// MatchComps classifies every candidate against the identity.
func (m *Matcher) MatchComps(id model.CanonicalIdentity, comps []model.RawComparable) []model.MatchResult {
	results := make([]model.MatchResult, 0, len(comps))
	for _, comp := range comps {
		results = append(results, m.classify(id, comp))
	}
	return results
}

func (m *Matcher) classify(id model.CanonicalIdentity, comp model.RawComparable) model.MatchResult {
	res := model.MatchResult{Comp: comp}
	title := strings.TrimSpace(comp.Title)

	if len(strings.Fields(title)) < 2 {
		res.Verdict = model.VerdictAmbiguous
		res.Reasons = append(res.Reasons, "title too short to classify")
		return res
	}

	// UPC in the title is the strongest possible signal either way.
	if id.UPC != "" && strings.Contains(title, id.UPC) {
		res.Verdict = model.VerdictMatch
		res.Reasons = append(res.Reasons, "upc present in title")
		return res
	}

	titleLower := strings.ToLower(title)
	brandLower := strings.ToLower(id.Brand)

	if id.Brand != "" && !strings.Contains(titleLower, brandLower) {
		res.Verdict = model.VerdictAmbiguous
		res.Reasons = append(res.Reasons, fmt.Sprintf("brand %q not found in title", id.Brand))
		return res
	}
	res.Reasons = append(res.Reasons, "brand agrees")

	// Pack count: a detected conflict is a hard reject; the comp is a
	// different sellable unit, not a pricing signal.
	compPack, packFound := identity.ParsePackCount(title)
	if packFound || id.PackCount > 1 {
		if compPack != id.PackCount {
			res.Verdict = model.VerdictReject
			res.Reasons = append(res.Reasons,
				fmt.Sprintf("pack count %d conflicts with expected %d", compPack, id.PackCount))
			return res
		}
		res.Reasons = append(res.Reasons, "pack count agrees")
	}

	// Size: conflicting detected sizes reject; a missing size on the comp
	// leaves the verdict to title similarity.
	compSize := identity.ParseSize(title)
	sizeChecked := false
	if id.Size != nil && compSize != nil {
		if !identity.SameSize(id.Size, compSize) {
			res.Verdict = model.VerdictReject
			res.Reasons = append(res.Reasons,
				fmt.Sprintf("size %.4g %s conflicts with expected %.4g %s",
					compSize.Value, compSize.Unit, id.Size.Value, id.Size.Unit))
			return res
		}
		res.Reasons = append(res.Reasons, "size agrees")
		sizeChecked = true
	}

	sim := Similarity(id.ProductLine, title)
	if sim >= m.titleThreshold {
		res.Verdict = model.VerdictMatch
		res.Reasons = append(res.Reasons, fmt.Sprintf("title similarity %.2f", sim))
		return res
	}

	if sizeChecked {
		// Brand, pack, and size all agree; a weak title alone should not
		// discard the comp outright.
		res.Verdict = model.VerdictMatch
		res.Reasons = append(res.Reasons, fmt.Sprintf("attributes agree despite weak title similarity %.2f", sim))
		return res
	}

	res.Verdict = model.VerdictAmbiguous
	res.Reasons = append(res.Reasons, fmt.Sprintf("insufficient signal, title similarity %.2f", sim))
	return res
}

// FilterMatches keeps only comps with a match verdict.
func FilterMatches(results []model.MatchResult) []model.RawComparable {
	return filterByVerdict(results, false)
}

// FilterMatchesAndAmbiguous additionally retains ambiguous comps for callers
// with a downstream disambiguation path.
func FilterMatchesAndAmbiguous(results []model.MatchResult) []model.RawComparable {
	return filterByVerdict(results, true)
}

func filterByVerdict(results []model.MatchResult, keepAmbiguous bool) []model.RawComparable {
	kept := make([]model.RawComparable, 0, len(results))
	for _, r := range results {
		if r.Verdict == model.VerdictMatch || (keepAmbiguous && r.Verdict == model.VerdictAmbiguous) {
			kept = append(kept, r.Comp)
		}
	}
	return kept
}

// HasUnresolvedPackAmbiguity reports whether any ambiguous comp carried a
// pack-count phrase the identity did not, a hard trigger for manual review.
func HasUnresolvedPackAmbiguity(id model.CanonicalIdentity, results []model.MatchResult) bool {
	for _, r := range results {
		if r.Verdict != model.VerdictAmbiguous {
			continue
		}
		if pack, found := identity.ParsePackCount(r.Comp.Title); found && pack != id.PackCount {
			return true
		}
	}
	return false
}

// Similarity computes a 0-1 similarity between a query and a candidate title,
// favoring containment before falling back to edit distance.
func Similarity(query, title string) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	c := strings.ToLower(strings.TrimSpace(title))

	if q == "" || c == "" {
		return 0
	}
	if q == c {
		return 1
	}
	if strings.Contains(c, q) {
		return 0.9
	}

	// Token overlap: proportion of query words present in the title.
	words := strings.Fields(q)
	hit := 0
	for _, w := range words {
		if len(w) > 2 && strings.Contains(c, w) {
			hit++
		}
	}
	if len(words) > 0 {
		overlap := float64(hit) / float64(len(words))
		if overlap > 0 {
			return overlap
		}
	}

	dist := levenshtein(q, c)
	maxLen := len(q)
	if len(c) > maxLen {
		maxLen = len(c)
	}
	sim := 1 - float64(dist)/float64(maxLen)
	if sim < 0 {
		return 0
	}
	return sim
}

func levenshtein(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := 0; j <= len(s2); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(s2)]
}

func minInt(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
