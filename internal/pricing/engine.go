package pricing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"pricepoint/internal/comps"
	"pricepoint/internal/confidence"
	"pricepoint/internal/identity"
	"pricepoint/internal/logging"
	"pricepoint/internal/match"
	"pricepoint/internal/model"
	"pricepoint/internal/safety"
	"pricepoint/internal/selector"
	"pricepoint/internal/shipping"
	"pricepoint/internal/split"
	"pricepoint/internal/stats"
)

// Request describes one product to price.
type Request struct {
	Brand     string
	Title     string
	UPC       string
	Condition string
	Quantity  int
}

// Engine runs the full decision pipeline: acquire comps, resolve identity,
// filter, summarize, select a delivered target, enforce the safety floor,
// split, and score. One Engine serves concurrent requests; all per-request
// state lives on the stack.
type Engine struct {
	fetcher   *comps.Fetcher
	matcher   *match.Matcher
	estimator *shipping.Estimator
	scorer    *confidence.Scorer
	policy    selector.Policy
	fees      safety.FeeModel
	log       *logging.Log
}

// NewEngine wires an engine. A nil log falls back to the process logger.
func NewEngine(fetcher *comps.Fetcher, policy selector.Policy, fees safety.FeeModel, log *logging.Log) (*Engine, error) {
	if err := fees.Validate(); err != nil {
		return nil, fmt.Errorf("fee model: %w", err)
	}
	if log == nil {
		log = logging.Get()
	}
	return &Engine{
		fetcher:   fetcher,
		matcher:   match.NewMatcher(),
		estimator: shipping.NewEstimator(),
		scorer:    confidence.NewScorer(),
		policy:    policy,
		fees:      fees,
		log:       log,
	}, nil
}

// Price produces a decision for one product. Missing or thin market data is
// reflected in the decision (zero target, warnings, manual review), never as
// an error; errors are reserved for the pipeline itself being unusable.
func (e *Engine) Price(ctx context.Context, req Request, settings model.DeliveredPricingSettings) (*model.DeliveredPricingDecision, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("request title is empty")
	}

	id := identity.BuildIdentity(req.Brand, req.Title)
	if req.UPC != "" {
		id.UPC = req.UPC
	}

	set := e.fetcher.Fetch(ctx, comps.Query{
		Brand:     req.Brand,
		Title:     req.Title,
		UPC:       id.UPC,
		Condition: req.Condition,
		Quantity:  req.Quantity,
	})
	warnings := append([]string(nil), set.Warnings...)

	soldResults := e.matcher.MatchComps(id, set.SoldComps())
	activeResults := e.matcher.MatchComps(id, set.ActiveComps())
	retailResults := e.matcher.MatchComps(id, set.RetailComps())

	filter := match.FilterMatches
	if settings.IncludeAmbiguousComps {
		filter = match.FilterMatchesAndAmbiguous
	}
	soldKept := filter(soldResults)
	activeKept := filter(activeResults)
	retailKept := filter(retailResults)

	packAmbiguity := match.HasUnresolvedPackAmbiguity(id, soldResults) ||
		match.HasUnresolvedPackAmbiguity(id, activeResults) ||
		match.HasUnresolvedPackAmbiguity(id, retailResults)
	if packAmbiguity {
		warnings = append(warnings, model.WarnAmbiguousPackSize)
	}

	soldStats := stats.Summarize(toSamples(soldKept), e.policy.Stats)
	activeStats := stats.Summarize(toSamples(activeKept), e.policy.Stats)

	if kept := len(soldKept) + len(activeKept); kept > 0 && kept < 3 {
		warnings = append(warnings, model.WarnLowCompCount)
	}

	anchor := trustedRetailAnchor(retailKept, set)

	shipCharge, smartUsed := e.estimator.EstimateMinor(id, settings)
	if smartUsed {
		warnings = append(warnings, model.WarnSmartShippingUsed)
	}

	sel := selector.ForGeneration(settings.Generation, e.policy)
	outcome := sel.Select(selector.Inputs{
		Mode:                     settings.Mode,
		Sold:                     soldStats,
		Active:                   activeStats,
		LowestTrustedRetailMinor: anchor,
		UndercutMinor:            settings.UndercutMinor,
		// The lowest viable delivered total is the item floor shipped free.
		MinDeliveredMinor: settings.MinItemMinor,
	})
	warnings = append(warnings, outcome.Warnings...)

	floorRes := safety.Apply(outcome.TargetMinor, e.fees)
	warnings = append(warnings, floorRes.Warnings...)
	target := floorRes.TargetMinor

	decision := &model.DeliveredPricingDecision{
		DecisionID:           uuid.NewString(),
		Identity:             id,
		Mode:                 settings.Mode,
		Generation:           sel.Generation(),
		CompsUsed:            concatComps(soldKept, activeKept, retailKept),
		CompsSource:          compsSource(soldKept, activeKept, retailKept),
		SoldCount:            countOf(soldStats),
		ActiveCount:          countOf(activeStats),
		SafetyFloorMinor:     floorRes.FloorMinor,
		TargetDeliveredMinor: target,
		FallbackUsed:         outcome.FallbackUsed,
		CreatedAt:            time.Now().UTC(),
	}

	if target > 0 {
		splitRes := split.Split(target, shipCharge, settings)
		warnings = append(warnings, splitRes.Warnings...)
		decision.FinalItemMinor = splitRes.ItemMinor
		decision.FinalShipMinor = splitRes.ShipMinor
		decision.FreeShipApplied = splitRes.FreeShipApplied
		decision.SubsidyMinor = splitRes.SubsidyMinor
		decision.CanCompete = splitRes.CanCompete
		decision.SkipListing = split.ShouldSkip(splitRes, settings)
	} else {
		decision.SkipListing = true
	}

	score := e.scorer.Score(confidence.Inputs{
		Identity:       id,
		UPCMatched:     upcMatched(id, decision.CompsUsed),
		Sold:           soldStats,
		Active:         activeStats,
		SoldStrong:     outcome.SoldStrong,
		ActiveStrong:   outcome.ActiveStrong,
		RetailAnchor:   anchor > 0,
		FallbackUsed:   outcome.FallbackUsed,
		FloorUpliftPct: floorRes.UpliftPct,
		PackAmbiguity:  packAmbiguity,
		Warnings:       warnings,
	})
	decision.Confidence = score.Value
	decision.MatchConfidence = score.Bucket
	decision.ManualReview = score.ManualReview || hasWarning(warnings, model.WarnManualReviewRequired)
	decision.Warnings = warnings

	e.audit(decision)
	return decision, nil
}

// audit emits the one-line decision summary consumed by downstream tooling.
func (e *Engine) audit(d *model.DeliveredPricingDecision) {
	e.log.WithComponent("pricing").WithFields(logging.Fields{
		"decision_id":      d.DecisionID,
		"brand":            d.Identity.Brand,
		"mode":             string(d.Mode),
		"generation":       string(d.Generation),
		"target_delivered": d.TargetDeliveredMinor,
		"item":             d.FinalItemMinor,
		"ship":             d.FinalShipMinor,
		"floor":            d.SafetyFloorMinor,
		"sold_count":       d.SoldCount,
		"active_count":     d.ActiveCount,
		"confidence":       d.Confidence,
		"can_compete":      d.CanCompete,
		"skip":             d.SkipListing,
		"manual_review":    d.ManualReview,
		"warnings":         strings.Join(d.Warnings, ","),
	}).Info("pricing decision")
}

// trustedRetailAnchor picks the lowest delivered price from trusted retail
// observations. Aggregator listings never anchor.
func trustedRetailAnchor(retailKept []model.RawComparable, set *comps.FetchSet) int64 {
	var anchor int64
	for _, c := range retailKept {
		if c.RetailSubtype != model.RetailBrandSite && c.RetailSubtype != model.RetailMajor {
			continue
		}
		if anchor == 0 || c.DeliveredMinor < anchor {
			anchor = c.DeliveredMinor
		}
	}
	if set.Retail != nil && set.Retail.BrandSitePriceMinor > 0 &&
		(anchor == 0 || set.Retail.BrandSitePriceMinor < anchor) {
		anchor = set.Retail.BrandSitePriceMinor
	}
	return anchor
}

func toSamples(comps []model.RawComparable) []model.CompSample {
	samples := make([]model.CompSample, 0, len(comps))
	for _, c := range comps {
		samples = append(samples, model.CompSample{
			ItemMinor:      c.ItemPriceMinor,
			ShipMinor:      c.ShippingMinor,
			DeliveredMinor: c.DeliveredMinor,
		})
	}
	return samples
}

func concatComps(groups ...[]model.RawComparable) []model.RawComparable {
	var out []model.RawComparable
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func compsSource(sold, active, retail []model.RawComparable) string {
	var channels []string
	if len(sold) > 0 {
		channels = append(channels, "sold")
	}
	if len(active) > 0 {
		channels = append(channels, "active")
	}
	if len(retail) > 0 {
		channels = append(channels, "retail")
	}
	if len(channels) == 0 {
		return "none"
	}
	return strings.Join(channels, "+")
}

func upcMatched(id model.CanonicalIdentity, used []model.RawComparable) bool {
	if id.UPC == "" {
		return false
	}
	for _, c := range used {
		if strings.Contains(c.Title, id.UPC) {
			return true
		}
	}
	return false
}

func countOf(s *stats.RobustStats) int {
	if s == nil {
		return 0
	}
	return s.Count
}

func hasWarning(warnings []string, code string) bool {
	for _, w := range warnings {
		if w == code {
			return true
		}
	}
	return false
}
