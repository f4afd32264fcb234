// Pricepoint CLI - delivered-price decision engine for resale listings
//
// Usage:
//   pricepoint price --brand CeraVe --title "CeraVe Moisturizing Cream 19 oz"
//   pricepoint watch --products products.yaml --schedule "0 */6 * * *"
//   pricepoint cache clear
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"pricepoint/internal/cache"
	"pricepoint/internal/comps"
	"pricepoint/internal/config"
	"pricepoint/internal/identity"
	"pricepoint/internal/logging"
	"pricepoint/internal/model"
	"pricepoint/internal/pricing"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "pricepoint",
		Usage:   "delivered-price decision engine for resale marketplace listings",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file",
				EnvVars: []string{"PRICEPOINT_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			priceCommand(),
			watchCommand(),
			cacheCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func priceCommand() *cli.Command {
	return &cli.Command{
		Name:  "price",
		Usage: "Price one product and print the decision as JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "brand",
				Aliases:  []string{"b"},
				Usage:    "Product brand",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "title",
				Aliases:  []string{"t"},
				Usage:    "Listing title / product description",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "upc",
				Usage: "UPC when known; skips title-based identity for matching",
			},
			&cli.StringFlag{
				Name:  "condition",
				Value: "new",
				Usage: "Item condition",
			},
			&cli.StringFlag{
				Name:  "mode",
				Usage: "Pricing mode override (market-match, fast-sale, max-margin)",
			},
			&cli.BoolFlag{
				Name:  "mock",
				Usage: "Use canned providers instead of live channels",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Bypass the decision cache",
			},
		},
		Action: runPrice,
	}
}

func runPrice(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if err := logging.Get().Configure(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.MaxAgeDays); err != nil {
		return err
	}

	if mode := c.String("mode"); mode != "" {
		cfg.Settings.Mode = model.PricingMode(mode)
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	settings := cfg.Settings

	engine, err := buildEngine(cfg, c.Bool("mock"))
	if err != nil {
		return err
	}

	store, err := cache.New(cfg.CachePath)
	if err != nil {
		return err
	}

	req := pricing.Request{
		Brand:     c.String("brand"),
		Title:     c.String("title"),
		UPC:       c.String("upc"),
		Condition: c.String("condition"),
		Quantity:  1,
	}

	decision, err := priceOne(c.Context, engine, store, cfg, req, settings, c.Bool("no-cache"))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(decision)
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Reprice a product list on a cron schedule",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "products",
				Aliases:  []string{"p"},
				Usage:    "Path to YAML product list",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "schedule",
				Value: "0 */6 * * *",
				Usage: "Cron schedule expression",
			},
			&cli.BoolFlag{
				Name:  "mock",
				Usage: "Use canned providers instead of live channels",
			},
			&cli.BoolFlag{
				Name:  "immediate",
				Value: true,
				Usage: "Run one pass immediately before the first scheduled tick",
			},
		},
		Action: runWatch,
	}
}

// watchProduct is one entry of the product list file.
type watchProduct struct {
	Brand     string `yaml:"brand"`
	Title     string `yaml:"title"`
	UPC       string `yaml:"upc"`
	Condition string `yaml:"condition"`
	Quantity  int    `yaml:"quantity"`
}

func runWatch(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	log := logging.Get()
	if err := log.Configure(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.MaxAgeDays); err != nil {
		return err
	}

	products, err := loadProducts(c.String("products"))
	if err != nil {
		return err
	}
	if len(products) == 0 {
		return fmt.Errorf("product list is empty")
	}

	engine, err := buildEngine(cfg, c.Bool("mock"))
	if err != nil {
		return err
	}
	store, err := cache.New(cfg.CachePath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	pass := func() {
		for _, p := range products {
			req := pricing.Request{
				Brand:     p.Brand,
				Title:     p.Title,
				UPC:       p.UPC,
				Condition: p.Condition,
				Quantity:  p.Quantity,
			}
			if _, err := priceOne(ctx, engine, store, cfg, req, cfg.Settings, false); err != nil {
				log.WithComponent("watch").WithError(err).
					WithField("title", p.Title).Error("repricing pass failed for product")
			}
		}
	}

	if c.Bool("immediate") {
		pass()
	}

	sched := cron.New()
	if _, err := sched.AddFunc(c.String("schedule"), pass); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", c.String("schedule"), err)
	}
	sched.Start()
	log.WithComponent("watch").WithField("schedule", c.String("schedule")).
		WithField("products", len(products)).Info("watch mode started")

	<-ctx.Done()
	<-sched.Stop().Done()
	return nil
}

func cacheCommand() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the decision cache",
		Subcommands: []*cli.Command{
			{
				Name:  "clear",
				Usage: "Drop all cached decisions",
				Action: func(c *cli.Context) error {
					cfg, err := config.Load(c.String("config"))
					if err != nil {
						return err
					}
					store, err := cache.New(cfg.CachePath)
					if err != nil {
						return err
					}
					return store.Clear()
				},
			},
		},
	}
}

// priceOne prices a single request through the cache. A cached decision is
// keyed by identity and mode, so a policy change needs a cache clear to take
// effect early.
func priceOne(ctx context.Context, engine *pricing.Engine, store *cache.Cache, cfg *config.Config, req pricing.Request, settings model.DeliveredPricingSettings, noCache bool) (*model.DeliveredPricingDecision, error) {
	id := identity.BuildIdentity(req.Brand, req.Title)
	if req.UPC != "" {
		id.UPC = req.UPC
	}
	sig := cache.Signature(id, settings.Mode)

	if !noCache {
		if cached, ok := store.GetDecision(sig); ok {
			return cached, nil
		}
	}

	decision, err := engine.Price(ctx, req, settings)
	if err != nil {
		return nil, err
	}

	if !noCache {
		if err := store.PutDecision(sig, decision, cfg.CacheTTL.Std()); err != nil {
			logging.Get().WithComponent("cache").WithError(err).Warn("failed to persist decision")
		}
	}

	return decision, nil
}

// loadProducts parses the watch-mode product list.
func loadProducts(path string) ([]watchProduct, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read products: %w", err)
	}
	var products []watchProduct
	if err := yaml.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("parse products: %w", err)
	}
	return products, nil
}

func buildEngine(cfg *config.Config, mock bool) (*pricing.Engine, error) {
	var (
		sold   comps.SoldProvider
		active comps.ActiveProvider
		retail comps.RetailProvider
	)

	if mock {
		sold, active, retail = mockProviders()
	} else {
		sold = comps.NewSoldHistoryClient(cfg.SoldAPIKey, "")
		active = comps.NewActiveListingClient(cfg.ActiveAPIKey, "")
		retail = comps.NewRetailSearchClient(cfg.RetailBaseURL)
	}

	fetcher := comps.NewFetcher(sold, active, retail, cfg.FetchTimeout.Std())
	return pricing.NewEngine(fetcher, cfg.Policy, cfg.Fees, logging.Get())
}

// mockProviders returns canned channels for offline dry runs.
func mockProviders() (comps.SoldProvider, comps.ActiveProvider, comps.RetailProvider) {
	sold := &comps.MockSoldProvider{Result: &comps.SoldResult{OK: true, Samples: []model.RawComparable{
		comps.SoldComp(1499, 499, "CeraVe Moisturizing Cream 19 oz"),
		comps.SoldComp(1550, 450, "CeraVe Moisturizing Cream 19 oz tub"),
		comps.SoldComp(1625, 400, "CeraVe Moisturizing Cream 19 oz sealed"),
		comps.SoldComp(1399, 599, "CeraVe Moisturizing Cream 19 oz new"),
		comps.SoldComp(1700, 350, "CeraVe Moisturizing Cream 19 oz"),
	}}}
	active := &comps.MockActiveProvider{Result: &comps.ActiveResult{OK: true, Competitors: []model.RawComparable{
		comps.ActiveComp(1899, 0, "CeraVe Moisturizing Cream 19 oz"),
		comps.ActiveComp(1750, 299, "CeraVe Moisturizing Cream 19 oz"),
		comps.ActiveComp(1999, 0, "CeraVe Moisturizing Cream 19 oz fresh"),
		comps.ActiveComp(1650, 499, "CeraVe Moisturizing Cream 19 oz"),
	}}}
	retail := &comps.MockRetailProvider{Result: &comps.RetailResult{OK: true, Results: []model.RawComparable{
		comps.RetailComp(1748, "CeraVe Moisturizing Cream 19 oz", "Walmart", model.RetailMajor),
	}}}
	return sold, active, retail
}
