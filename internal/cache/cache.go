package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"pricepoint/internal/model"
)

// Entry is one cached decision payload with its freshness window.
type Entry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	TTL       time.Duration   `json:"ttl"`
}

// Cache memoizes pricing decisions by product signature, backed by a JSON
// file so watch mode survives restarts. The decision pipeline itself stays
// stateless; callers opt in to this.
type Cache struct {
	path    string
	entries map[string]Entry
	mu      sync.RWMutex
}

// New loads a cache from path, starting fresh when the file is missing or
// corrupt.
func New(path string) (*Cache, error) {
	c := &Cache{
		path:    path,
		entries: make(map[string]Entry),
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read cache: %w", err)
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &c.entries); err != nil {
				// Corrupt cache, start fresh
				c.entries = make(map[string]Entry)
			}
		}
	}

	return c, nil
}

// GetDecision returns the cached decision for a signature, if still fresh.
func (c *Cache) GetDecision(signature string) (*model.DeliveredPricingDecision, bool) {
	c.mu.RLock()
	entry, ok := c.entries[signature]
	if !ok {
		c.mu.RUnlock()
		return nil, false
	}

	expired := entry.TTL > 0 && time.Since(entry.Timestamp) > entry.TTL
	if !expired {
		var d model.DeliveredPricingDecision
		err := json.Unmarshal(entry.Data, &d)
		c.mu.RUnlock()
		if err != nil {
			return nil, false
		}
		return &d, true
	}
	c.mu.RUnlock()

	// Expired, need write lock to delete
	c.mu.Lock()
	if e, exists := c.entries[signature]; exists && e.TTL > 0 && time.Since(e.Timestamp) > e.TTL {
		delete(c.entries, signature)
	}
	c.mu.Unlock()

	return nil, false
}

// PutDecision stores a decision under a signature and persists to disk.
func (c *Cache) PutDecision(signature string, d *model.DeliveredPricingDecision, ttl time.Duration) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal decision: %w", err)
	}

	c.mu.Lock()
	c.entries[signature] = Entry{
		Data:      data,
		Timestamp: time.Now(),
		TTL:       ttl,
	}
	c.mu.Unlock()

	return c.save()
}

// Clear removes all cache entries.
func (c *Cache) Clear() error {
	c.mu.Lock()
	c.entries = make(map[string]Entry)
	c.mu.Unlock()
	return c.save()
}

// Remove deletes a specific entry.
func (c *Cache) Remove(signature string) error {
	c.mu.Lock()
	delete(c.entries, signature)
	c.mu.Unlock()
	return c.save()
}

func (c *Cache) save() error {
	if dir := filepath.Dir(c.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create cache dir: %w", err)
		}
	}

	c.mu.RLock()
	data, err := json.MarshalIndent(c.entries, "", "  ")
	c.mu.RUnlock()

	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	return os.WriteFile(c.path, data, 0644)
}

// Signature builds the key a decision is memoized under. Identity attributes
// and the pricing mode are both part of the key: the same product priced
// under two modes is two entries.
func Signature(id model.CanonicalIdentity, mode model.PricingMode) string {
	parts := []string{"decision", id.Brand, id.ProductLine, string(mode)}
	if id.UPC != "" {
		parts = append(parts, id.UPC)
	}
	if id.Size != nil {
		parts = append(parts, fmt.Sprintf("%g%s", id.Size.Value, id.Size.Unit))
	}
	parts = append(parts, fmt.Sprintf("x%d", id.PackCount))
	return strings.ToLower(strings.Join(parts, "|"))
}
