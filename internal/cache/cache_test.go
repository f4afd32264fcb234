package cache

import (
	"path/filepath"
	"testing"
	"time"

	"pricepoint/internal/model"
)

func testDecision(target int64) *model.DeliveredPricingDecision {
	return &model.DeliveredPricingDecision{
		DecisionID:           "test-decision",
		Mode:                 model.ModeMarketMatch,
		TargetDeliveredMinor: target,
		FinalItemMinor:       target - 500,
		FinalShipMinor:       500,
		CanCompete:           true,
		CreatedAt:            time.Now(),
	}
}

func TestPutAndGetDecision(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decisions.json")
	c, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := c.PutDecision("sig-a", testDecision(2000), time.Hour); err != nil {
		t.Fatalf("PutDecision: %v", err)
	}

	got, ok := c.GetDecision("sig-a")
	if !ok {
		t.Fatal("GetDecision: expected hit")
	}
	if got.TargetDeliveredMinor != 2000 {
		t.Errorf("target = %d, want 2000", got.TargetDeliveredMinor)
	}
	if got.FinalItemMinor+got.FinalShipMinor != got.TargetDeliveredMinor {
		t.Error("cached decision lost the delivered split invariant")
	}
}

func TestGetDecision_Miss(t *testing.T) {
	c, err := New(filepath.Join(t.TempDir(), "decisions.json"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := c.GetDecision("never-stored"); ok {
		t.Error("expected miss for unknown signature")
	}
}

func TestGetDecision_Expired(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decisions.json")
	c, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := c.PutDecision("sig-b", testDecision(1500), time.Nanosecond); err != nil {
		t.Fatalf("PutDecision: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.GetDecision("sig-b"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestPersistenceAcrossReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decisions.json")

	c1, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c1.PutDecision("sig-c", testDecision(3000), time.Hour); err != nil {
		t.Fatalf("PutDecision: %v", err)
	}

	c2, err := New(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got, ok := c2.GetDecision("sig-c")
	if !ok {
		t.Fatal("expected entry to survive reload")
	}
	if got.TargetDeliveredMinor != 3000 {
		t.Errorf("target after reload = %d, want 3000", got.TargetDeliveredMinor)
	}
}

func TestClearAndRemove(t *testing.T) {
	c, err := New(filepath.Join(t.TempDir(), "decisions.json"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.PutDecision("sig-d", testDecision(1000), time.Hour); err != nil {
		t.Fatalf("PutDecision: %v", err)
	}
	if err := c.Remove("sig-d"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok := c.GetDecision("sig-d"); ok {
		t.Error("expected removed entry to miss")
	}

	if err := c.PutDecision("sig-e", testDecision(1000), time.Hour); err != nil {
		t.Fatalf("PutDecision: %v", err)
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok := c.GetDecision("sig-e"); ok {
		t.Error("expected cleared cache to miss")
	}
}

func TestSignature(t *testing.T) {
	id := model.CanonicalIdentity{
		Brand:       "CeraVe",
		ProductLine: "moisturizing cream",
		Size:        &model.Size{Value: 19, Unit: "oz"},
		PackCount:   1,
		UPC:         "301871373010",
	}

	sig := Signature(id, model.ModeMarketMatch)
	want := "decision|cerave|moisturizing cream|market-match|301871373010|19oz|x1"
	if sig != want {
		t.Errorf("Signature = %q, want %q", sig, want)
	}

	// Mode is part of the key
	other := Signature(id, model.ModeFastSale)
	if other == sig {
		t.Error("different modes must produce different signatures")
	}
}
