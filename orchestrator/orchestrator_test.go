package orchestrator

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"pricerecommender/models"
	"pricerecommender/reqcache"
	"pricerecommender/utils"
)

type fakeMatcher struct {
	agg *models.InternalAggregate
}

func (f *fakeMatcher) Match(query models.Query) *models.InternalAggregate { return f.agg }

type fakeScraper struct {
	sample models.MarketSample
	calls  int32
}

func (f *fakeScraper) Fetch(ctx context.Context, query string) models.MarketSample {
	atomic.AddInt32(&f.calls, 1)
	return f.sample
}

type fakeML struct{}

func (fakeML) Predict(fv models.FeatureVector) (models.MLResult, error) {
	return models.MLResult{Available: false}, nil
}

func TestRecommendHappyPath(t *testing.T) {
	matcher := &fakeMatcher{agg: &models.InternalAggregate{
		InternalPrice: 45, SellThroughRate: 0.85, DaysOnShelf: 25, Category: "Shoes", MatchedCount: 10,
	}}
	scraper := &fakeScraper{sample: models.MarketSample{
		Status: models.SampleOK, Median: 52, Mean: 51.2, Min: 40, Max: 60, SampleSize: 15, Timestamp: time.Now(),
	}}
	orch := New(matcher, scraper, fakeML{}, nil, reqcache.New(time.Hour), utils.NewLogger())

	rec, err := orch.Recommend(context.Background(), "Nike Sneakers", Override{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.RecommendedPrice <= 0 {
		t.Errorf("expected a positive recommended price, got %.2f", rec.RecommendedPrice)
	}
	if scraper.calls != 1 {
		t.Errorf("expected exactly 1 scrape call, got %d", scraper.calls)
	}
}

func TestRecommendCachesRepeatedQueries(t *testing.T) {
	matcher := &fakeMatcher{agg: nil}
	scraper := &fakeScraper{sample: models.MarketSample{Status: models.SampleOK, Median: 30, SampleSize: 25, Timestamp: time.Now()}}
	orch := New(matcher, scraper, fakeML{}, nil, reqcache.New(time.Hour), utils.NewLogger())

	_, err := orch.Recommend(context.Background(), "Nike Sneakers", Override{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = orch.Recommend(context.Background(), "nike sneakers", Override{}) // same normalized key
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if scraper.calls != 1 {
		t.Errorf("expected the second call to hit cache, scrape called %d times", scraper.calls)
	}
}

func TestRecommendUsesOverrideInternalData(t *testing.T) {
	matcher := &fakeMatcher{agg: nil} // would return nil if consulted
	scraper := &fakeScraper{sample: models.MarketSample{Status: models.SampleOK, Median: 52, SampleSize: 15, Timestamp: time.Now()}}
	orch := New(matcher, scraper, fakeML{}, nil, reqcache.New(time.Hour), utils.NewLogger())

	override := Override{Present: true, Data: models.InternalData{InternalPrice: 45, SellThroughRate: 0.85, DaysOnShelf: 25, Category: "Shoes"}}
	rec, err := orch.Recommend(context.Background(), "Nike Sneakers Override", override)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Internal == nil {
		t.Fatal("expected internal data from override to populate the recommendation")
	}
	if rec.Internal.InternalPrice != 45 {
		t.Errorf("internal price: got %.2f, want 45 (from override)", rec.Internal.InternalPrice)
	}
}

func TestRecommendFailsOnEmptyQuery(t *testing.T) {
	orch := New(&fakeMatcher{}, &fakeScraper{}, fakeML{}, nil, reqcache.New(time.Hour), utils.NewLogger())
	_, err := orch.Recommend(context.Background(), "   ", Override{})
	if err == nil {
		t.Fatal("expected an error for an empty query")
	}
}
