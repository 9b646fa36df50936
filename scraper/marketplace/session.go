package marketplace

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"pricerecommender/market"
	"pricerecommender/models"
	"pricerecommender/utils"
)

// Session is the Scrape Session Manager (spec §4.2): one browser
// allocator opened by Start, fetches serialized behind a mutex so the
// marketplace never sees overlapping requests from this process. Each
// fetch launches a fresh browser from that allocator and closes it when
// the fetch ends; no browser context persists between fetches.
type Session struct {
	drv    driver
	logger *utils.Logger

	mu          sync.Mutex
	lastFetch   time.Time
	maxListings int
	timeout     time.Duration
	delayMin    time.Duration
	delayMax    time.Duration
}

// Config holds the session's tunables, sourced from config.Config.
type Config struct {
	MaxListings int
	Timeout     time.Duration
	DelayMin    time.Duration
	DelayMax    time.Duration
	Headless    bool
}

// New builds a Session around a real chromedp-backed driver.
func New(cfg Config, logger *utils.Logger) *Session {
	return &Session{
		drv:         newChromedpDriver(cfg.Headless),
		logger:      logger,
		maxListings: cfg.MaxListings,
		timeout:     cfg.Timeout,
		delayMin:    cfg.DelayMin,
		delayMax:    cfg.DelayMax,
	}
}

// Start opens the driver. Must be called once at process startup.
func (s *Session) Start(ctx context.Context) error {
	return s.drv.Open(ctx)
}

// Stop closes the driver.
func (s *Session) Stop() error {
	return s.drv.Close()
}

// Fetch runs one query against the shared session. At most one Fetch
// executes at a time; callers queue on a sync.Mutex, which does not
// guarantee that waiting callers are served in arrival order.
// A navigation timeout or driver error never propagates as an error —
// it is reported as a MarketSample with status=error so the
// orchestrator's pipeline continues.
func (s *Session) Fetch(ctx context.Context, query string) models.MarketSample {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.enforceInterFetchDelay()

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cards, err := s.drv.NavigateAndExtract(fetchCtx, query, s.maxListings)
	s.lastFetch = time.Now()

	if err != nil {
		s.logger.Warn("[marketplace] fetch failed for %q: %v", query, err)
		return models.MarketSample{
			Status:    models.SampleError,
			Timestamp: time.Now(),
			Warning:   fmt.Sprintf("scrape failed: %v", err),
		}
	}

	listings := make([]models.Listing, 0, len(cards))
	dropped := 0
	for _, c := range cards {
		listing, ok := parseCard(c)
		if !ok {
			dropped++
			continue
		}
		listings = append(listings, listing)
	}
	if dropped > 0 {
		s.logger.Debug("[marketplace] dropped %d malformed card(s) for %q", dropped, query)
	}

	sample := market.Aggregate(listings)
	if sample.Status == models.SampleEmpty {
		sample.Warning = "no listings parsed"
	}
	return sample
}

// enforceInterFetchDelay blocks until a randomized 2-4s window has
// elapsed since the previous fetch, the non-negotiable serialization
// invariant from spec §4.2/§5.
func (s *Session) enforceInterFetchDelay() {
	if s.lastFetch.IsZero() {
		return
	}
	delayRange := s.delayMax - s.delayMin
	delay := s.delayMin
	if delayRange > 0 {
		delay += time.Duration(rand.Int63n(int64(delayRange)))
	}

	elapsed := time.Since(s.lastFetch)
	if elapsed < delay {
		time.Sleep(delay - elapsed)
	}
}
