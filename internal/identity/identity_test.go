package identity

import (
	"testing"

	"pricepoint/internal/model"
)

func TestBuildIdentity(t *testing.T) {
	tests := []struct {
		name      string
		brand     string
		desc      string
		wantSize  *model.Size
		wantPack  int
		wantUPC   string
		wantLine  string
	}{
		{
			name:     "size and brand",
			brand:    "CeraVe",
			desc:     "CeraVe Moisturizing Cream 19 oz",
			wantSize: &model.Size{Value: 19, Unit: "oz"},
			wantPack: 1,
			wantLine: "Moisturizing Cream",
		},
		{
			name:     "pack of N",
			brand:    "Duracell",
			desc:     "Duracell AA Batteries Pack of 24",
			wantPack: 24,
			wantLine: "AA Batteries",
		},
		{
			name:     "n-pack with fluid ounces",
			brand:    "Dove",
			desc:     "Dove Body Wash 2-Pack 22 fl oz",
			wantSize: &model.Size{Value: 22, Unit: "floz"},
			wantPack: 2,
			wantLine: "Body Wash",
		},
		{
			name:     "upc detected",
			brand:    "Olaplex",
			desc:     "Olaplex No.3 Hair Perfector 100ml 850018802192",
			wantSize: &model.Size{Value: 100, Unit: "ml"},
			wantPack: 1,
			wantUPC:  "850018802192",
		},
		{
			name:     "no size no pack",
			brand:    "Lego",
			desc:     "Lego Star Destroyer",
			wantPack: 1,
			wantLine: "Star Destroyer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := BuildIdentity(tt.brand, tt.desc)
			if id.Brand != tt.brand {
				t.Errorf("Brand = %q, want %q", id.Brand, tt.brand)
			}
			if id.PackCount != tt.wantPack {
				t.Errorf("PackCount = %d, want %d", id.PackCount, tt.wantPack)
			}
			if tt.wantUPC != "" && id.UPC != tt.wantUPC {
				t.Errorf("UPC = %q, want %q", id.UPC, tt.wantUPC)
			}
			if tt.wantSize == nil {
				if id.Size != nil {
					t.Errorf("Size = %+v, want nil", id.Size)
				}
			} else {
				if id.Size == nil {
					t.Fatalf("Size = nil, want %+v", tt.wantSize)
				}
				if id.Size.Value != tt.wantSize.Value || id.Size.Unit != tt.wantSize.Unit {
					t.Errorf("Size = %+v, want %+v", id.Size, tt.wantSize)
				}
			}
			if tt.wantLine != "" && id.ProductLine != tt.wantLine {
				t.Errorf("ProductLine = %q, want %q", id.ProductLine, tt.wantLine)
			}
		})
	}
}

func TestParseSize_UnitNormalization(t *testing.T) {
	tests := []struct {
		text string
		want model.Size
	}{
		{"16 Ounces", model.Size{Value: 16, Unit: "oz"}},
		{"shampoo 250 ml", model.Size{Value: 250, Unit: "ml"}},
		{"1.5 liters", model.Size{Value: 1.5, Unit: "l"}},
		{"protein powder 5 lb", model.Size{Value: 5, Unit: "lb"}},
		{"vitamins 60 count", model.Size{Value: 60, Unit: "ct"}},
		{"120 capsules", model.Size{Value: 120, Unit: "ct"}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := ParseSize(tt.text)
			if got == nil {
				t.Fatalf("ParseSize(%q) = nil", tt.text)
			}
			if got.Value != tt.want.Value || got.Unit != tt.want.Unit {
				t.Errorf("ParseSize(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}

	if got := ParseSize("no size here"); got != nil {
		t.Errorf("ParseSize(no size) = %+v, want nil", got)
	}
}

func TestParsePackCount(t *testing.T) {
	tests := []struct {
		text  string
		want  int
		found bool
	}{
		{"Pack of 12", 12, true},
		{"24-pack", 24, true},
		{"6 pk", 6, true},
		{"bundle of 3", 3, true},
		{"x4", 4, true},
		{"single unit", 1, false},
		{"pack of 1", 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, found := ParsePackCount(tt.text)
			if got != tt.want || found != tt.found {
				t.Errorf("ParsePackCount(%q) = %d,%v want %d,%v", tt.text, got, found, tt.want, tt.found)
			}
		})
	}
}

func TestSameSize(t *testing.T) {
	oz19 := &model.Size{Value: 19, Unit: "oz"}
	tests := []struct {
		name string
		a, b *model.Size
		want bool
	}{
		{"equal", oz19, &model.Size{Value: 19, Unit: "oz"}, true},
		{"within tolerance", oz19, &model.Size{Value: 19.2, Unit: "oz"}, true},
		{"different value", oz19, &model.Size{Value: 12, Unit: "oz"}, false},
		{"liters vs ml", &model.Size{Value: 1, Unit: "l"}, &model.Size{Value: 1000, Unit: "ml"}, true},
		{"pounds vs ounces", &model.Size{Value: 1, Unit: "lb"}, &model.Size{Value: 16, Unit: "oz"}, true},
		{"different unit family", oz19, &model.Size{Value: 19, Unit: "ml"}, false},
		{"nil", oz19, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameSize(tt.a, tt.b); got != tt.want {
				t.Errorf("SameSize = %v, want %v", got, tt.want)
			}
		})
	}
}
