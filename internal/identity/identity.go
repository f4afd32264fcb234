package identity

import (
	"regexp"
	"strconv"
	"strings"

	"pricepoint/internal/model"
)

// unitAliases maps every unit spelling we accept to its canonical form.
var unitAliases = map[string]string{
	"fl oz":        "floz",
	"fl. oz":       "floz",
	"fluid ounce":  "floz",
	"fluid ounces": "floz",
	"floz":         "floz",
	"oz":           "oz",
	"ounce":        "oz",
	"ounces":       "oz",
	"ml":           "ml",
	"milliliter":   "ml",
	"milliliters":  "ml",
	"l":            "l",
	"liter":        "l",
	"liters":       "l",
	"litre":        "l",
	"g":            "g",
	"gram":         "g",
	"grams":        "g",
	"kg":           "kg",
	"lb":           "lb",
	"lbs":          "lb",
	"pound":        "lb",
	"pounds":       "lb",
	"ct":           "ct",
	"count":        "ct",
	"capsules":     "ct",
	"tablets":      "ct",
	"caps":         "ct",
}

var (
	sizeRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(fl\.?\s?oz|fluid ounces?|ounces?|oz|milliliters?|ml|liters?|litre|l\b|grams?|g\b|kg|pounds?|lbs?|lb|count|ct|capsules|tablets|caps)\b`)

	packRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bpack of (\d+)\b`),
		regexp.MustCompile(`(?i)\bset of (\d+)\b`),
		regexp.MustCompile(`(?i)\b(\d+)[\s-]?pack\b`),
		regexp.MustCompile(`(?i)\b(\d+)[\s-]?pk\b`),
		regexp.MustCompile(`(?i)\bx\s?(\d+)\b`),
		regexp.MustCompile(`(?i)\b(\d+)\s?x\b`),
		regexp.MustCompile(`(?i)\bbundle of (\d+)\b`),
	}

	upcRe        = regexp.MustCompile(`\b(\d{12,13})\b`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// BuildIdentity parses a brand plus free-text product description into a
// canonical structured identity. Extraction is best effort: fields that
// cannot be detected are left empty, and PackCount defaults to 1.
func BuildIdentity(brand, description string) model.CanonicalIdentity {
	id := model.CanonicalIdentity{
		Brand:     strings.TrimSpace(brand),
		PackCount: 1,
	}

	if m := upcRe.FindStringSubmatch(description); m != nil {
		id.UPC = m[1]
	}

	id.Size = ParseSize(description)
	if pack, ok := ParsePackCount(description); ok {
		id.PackCount = pack
	}

	id.ProductLine = extractProductLine(id.Brand, description)
	return id
}

// ParseSize extracts the first size token from text and normalizes its unit.
// Returns nil when no size is present.
func ParseSize(text string) *model.Size {
	m := sizeRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}

	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil || value <= 0 {
		return nil
	}

	unit := normalizeUnit(m[2])
	if unit == "" {
		return nil
	}
	return &model.Size{Value: value, Unit: unit}
}

// ParsePackCount extracts a multi-pack quantity from text. The boolean is
// false when no pack phrasing was found, which callers treat as a single unit.
func ParsePackCount(text string) (int, bool) {
	for _, re := range packRes {
		if m := re.FindStringSubmatch(text); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil && n > 1 && n <= 1000 {
				return n, true
			}
		}
	}
	return 1, false
}

// SameSize reports whether two sizes agree after unit normalization, within a
// small tolerance for rounding differences between listings.
func SameSize(a, b *model.Size) bool {
	if a == nil || b == nil {
		return false
	}
	av, au := toBaseUnit(a)
	bv, bu := toBaseUnit(b)
	if au != bu {
		return false
	}
	if av == 0 || bv == 0 {
		return av == bv
	}
	ratio := av / bv
	return ratio > 0.95 && ratio < 1.053
}

// toBaseUnit converts a size to a comparable base (ml for volume, g for
// weight, ct as-is) so 1 l matches 1000 ml and 1 lb matches 16 oz.
func toBaseUnit(s *model.Size) (float64, string) {
	switch s.Unit {
	case "l":
		return s.Value * 1000, "ml"
	case "ml", "floz":
		// Fluid ounces stay distinct from ml; cross-unit volume listings
		// are rare and converting risks false matches.
		return s.Value, s.Unit
	case "kg":
		return s.Value * 1000, "g"
	case "lb":
		return s.Value * 16, "oz"
	default:
		return s.Value, s.Unit
	}
}

func normalizeUnit(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, ".", "")
	key = whitespaceRe.ReplaceAllString(key, " ")
	return unitAliases[key]
}

// extractProductLine strips the brand prefix and packaging noise from the
// description, leaving the product-line text used for title matching.
func extractProductLine(brand, description string) string {
	line := strings.TrimSpace(description)

	if brand != "" {
		if idx := strings.Index(strings.ToLower(line), strings.ToLower(brand)); idx == 0 {
			line = strings.TrimSpace(line[len(brand):])
		}
	}

	line = sizeRe.ReplaceAllString(line, "")
	for _, re := range packRes {
		line = re.ReplaceAllString(line, "")
	}
	line = upcRe.ReplaceAllString(line, "")

	line = strings.Trim(line, " ,-–|")
	return whitespaceRe.ReplaceAllString(line, " ")
}
