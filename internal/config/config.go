package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"pricepoint/internal/model"
	"pricepoint/internal/safety"
	"pricepoint/internal/selector"
)

// Duration wraps time.Duration so "20s" / "6h" values parse from YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// LogConfig is the logging section of the config file.
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Output     string `yaml:"output"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Config is the full runtime configuration: listing settings, pricing policy,
// fee model, and operational knobs. API keys come from the environment only,
// never from the file.
type Config struct {
	Settings model.DeliveredPricingSettings `yaml:"settings"`
	Policy   selector.Policy                `yaml:"policy"`
	Fees     safety.FeeModel                `yaml:"fees"`

	FetchTimeout  Duration `yaml:"fetch_timeout"`
	CachePath     string   `yaml:"cache_path"`
	CacheTTL      Duration `yaml:"cache_ttl"`
	RetailBaseURL string   `yaml:"retail_base_url"`

	Log LogConfig `yaml:"log"`

	// Populated from the environment after the file is parsed.
	SoldAPIKey   string `yaml:"-"`
	ActiveAPIKey string `yaml:"-"`
}

// Default returns a configuration that prices with production policy and no
// external providers configured.
func Default() *Config {
	return &Config{
		Settings: model.DeliveredPricingSettings{
			Mode:                        model.ModeMarketMatch,
			Generation:                  model.GenerationV2,
			ShippingEstimateMinor:       499,
			MinItemMinor:                99,
			UndercutMinor:               25,
			FreeShippingMaxSubsidyMinor: 700,
			LowPriceMode:                model.LowPriceFlagOnly,
		},
		Policy:       selector.DefaultPolicy(),
		Fees:         safety.DefaultFeeModel(),
		FetchTimeout: Duration(20 * time.Second),
		CachePath:    "data/decisions.json",
		CacheTTL:     Duration(6 * time.Hour),
		Log: LogConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// Load reads configuration: .env first (best effort), then the YAML file when
// path is non-empty, then environment overrides, then validation.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.SoldAPIKey = os.Getenv("SOLD_API_KEY")
	cfg.ActiveAPIKey = os.Getenv("ACTIVE_API_KEY")
	if v := os.Getenv("RETAIL_BASE_URL"); v != "" {
		cfg.RetailBaseURL = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fails fast on settings that would make every decision nonsensical.
func (c *Config) Validate() error {
	s := c.Settings

	switch s.Mode {
	case model.ModeMarketMatch, model.ModeFastSale, model.ModeMaxMargin:
	default:
		return fmt.Errorf("unknown pricing mode %q", s.Mode)
	}
	switch s.Generation {
	case model.GenerationV1, model.GenerationV2, "":
	default:
		return fmt.Errorf("unknown selector generation %q", s.Generation)
	}
	switch s.LowPriceMode {
	case model.LowPriceFlagOnly, model.LowPriceAutoSkip, model.LowPriceAllowAnyway, "":
	default:
		return fmt.Errorf("unknown low price mode %q", s.LowPriceMode)
	}

	if s.MinItemMinor <= 0 {
		return fmt.Errorf("min item price %d must be positive", s.MinItemMinor)
	}
	if s.ShippingEstimateMinor < 0 {
		return fmt.Errorf("shipping estimate %d is negative", s.ShippingEstimateMinor)
	}
	if s.UndercutMinor < 0 {
		return fmt.Errorf("undercut %d is negative", s.UndercutMinor)
	}
	if s.FreeShippingMaxSubsidyMinor < 0 {
		return fmt.Errorf("free shipping subsidy budget %d is negative", s.FreeShippingMaxSubsidyMinor)
	}

	if err := c.Fees.Validate(); err != nil {
		return fmt.Errorf("fee model: %w", err)
	}

	p := c.Policy
	for _, ratio := range []struct {
		name  string
		value float64
	}{
		{"retail_anchor_ratio", p.RetailAnchorRatio},
		{"retail_cap_ratio", p.RetailCapRatio},
		{"sell_through_bypass", p.SellThroughBypass},
		{"floor_outlier_p20_ratio", p.FloorOutlierP20Ratio},
	} {
		if ratio.value <= 0 || ratio.value > 1 {
			return fmt.Errorf("policy %s %v out of range (0,1]", ratio.name, ratio.value)
		}
	}
	if p.SoldActiveMismatchRatio <= 1 {
		return fmt.Errorf("policy sold_active_mismatch_ratio %v must exceed 1", p.SoldActiveMismatchRatio)
	}
	if p.Stats.OutlierIQRMult <= 0 {
		return fmt.Errorf("policy outlier iqr multiplier %v must be positive", p.Stats.OutlierIQRMult)
	}

	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout %v must be positive", c.FetchTimeout)
	}

	return nil
}
