// Package orchestrator is the top-level recommend(query) operation
// (spec §4.8) composing the UPC validator, request cache, internal
// matching engine, scrape session, feature builder, ML adapter, and
// recommendation engine. Concurrency shape is an errgroup fan-out,
// generalized from the teacher's bounded-concurrency scraping to one
// request's two concurrent sub-tasks (internal match, market scrape).
package orchestrator

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"pricerecommender/mlmodel"
	"pricerecommender/models"
	"pricerecommender/pricing"
	"pricerecommender/reqcache"
	"pricerecommender/upc"
	"pricerecommender/utils"
)

// Matcher is the Internal Matching Engine's contract, satisfied by
// *matching.Engine.
type Matcher interface {
	Match(query models.Query) *models.InternalAggregate
}

// Scraper is the Scrape Session Manager's contract, satisfied by
// *marketplace.Session.
type Scraper interface {
	Fetch(ctx context.Context, query string) models.MarketSample
}

// MLPredictor is the ML Adapter's contract, satisfied by *mlmodel.Adapter.
type MLPredictor interface {
	Predict(fv models.FeatureVector) (models.MLResult, error)
}

// Orchestrator wires every component together behind one entry point.
type Orchestrator struct {
	matcher Matcher
	session Scraper
	ml      MLPredictor
	vocab   *mlmodel.Vocab
	cache   *reqcache.Cache
	logger  *utils.Logger
}

// New assembles an Orchestrator from its already-initialized
// dependencies.
func New(matcher Matcher, session Scraper, ml MLPredictor, vocab *mlmodel.Vocab, cache *reqcache.Cache, logger *utils.Logger) *Orchestrator {
	return &Orchestrator{matcher: matcher, session: session, ml: ml, vocab: vocab, cache: cache, logger: logger}
}

// Override carries a caller-supplied internal_data payload that
// replaces the matching engine's own lookup for this call, per spec
// §6's request schema.
type Override struct {
	Present bool
	Data    models.InternalData
}

// Recommend runs the full A→G pipeline for one raw query string.
func (o *Orchestrator) Recommend(ctx context.Context, raw string, override Override) (models.Recommendation, error) {
	requestID := uuid.NewString()

	query, err := upc.Classify(raw)
	if err != nil {
		return models.Recommendation{}, fmt.Errorf("orchestrator: validate query: %w", err)
	}

	rec, err := o.cache.GetOrCompute(query.CacheKey(), func() (models.Recommendation, error) {
		return o.compute(ctx, query, override)
	})

	if err != nil {
		o.logger.Error("[orchestrator] request_id=%s query=%q failed: %v", requestID, raw, err)
		return models.Recommendation{}, err
	}

	o.logger.Info(
		"[orchestrator] request_id=%s query=%q method=%s weighting=%.2f confidence=%d warnings=%v",
		requestID, query.Canonical, rec.PredictionMethod, rec.InternalVsMarketWeighting, rec.ConfidenceScore, rec.Warnings,
	)
	return rec, nil
}

// compute runs the actual A→F pipeline behind the cache's
// single-flight gate: internal match and market scrape fan out
// concurrently, feature building + ML inference follow, and the
// recommendation engine produces the final artifact.
func (o *Orchestrator) compute(ctx context.Context, query models.Query, override Override) (models.Recommendation, error) {
	var internal *models.InternalAggregate
	var market models.MarketSample

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if override.Present {
			internal = &models.InternalAggregate{
				InternalPrice:   override.Data.InternalPrice,
				SellThroughRate: override.Data.SellThroughRate,
				DaysOnShelf:     override.Data.DaysOnShelf,
				Category:        override.Data.Category,
				MatchedCount:    1,
			}
			return nil
		}
		internal = o.matcher.Match(query)
		return nil
	})

	g.Go(func() error {
		market = o.session.Fetch(gctx, query.Canonical)
		return nil
	})

	// Internal matching is synchronous enough to be left to complete
	// alongside the scrape (spec §5); either path returning an error
	// would abort the group, but neither does by design.
	if err := g.Wait(); err != nil {
		return models.Recommendation{}, err
	}

	features := mlmodel.BuildFeatures(internal, market, o.vocab)
	mlResult, err := o.ml.Predict(features)
	if err != nil {
		o.logger.Warn("[orchestrator] ml prediction failed, demoting: %v", err)
		mlResult = models.MLResult{Available: false}
	}

	return pricing.Recommend(pricing.Input{
		Query:    query.Raw,
		Market:   market,
		Internal: internal,
		ML:       mlResult,
	})
}
