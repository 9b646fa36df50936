package pricing

import (
	"testing"
	"time"

	"pricerecommender/models"
)

func marketOK(median, mean float64, sampleSize int) models.MarketSample {
	return models.MarketSample{
		Status: models.SampleOK, Median: median, Mean: mean,
		Min: median * 0.8, Max: median * 1.2, SampleSize: sampleSize, Timestamp: time.Now(),
	}
}

// TestRecommendScenario1 follows S1's inputs. The table's own
// conditions (sell_through > 0.7 → +0.20; market.sample_size=15
// triggers neither the <5 nor the >20 row) yield w=0.70, not the
// 0.60 the scenario's prose arithmetic states — see DESIGN.md for the
// discrepancy. This test asserts the table-consistent result. ML is
// unavailable here, so the warnings list holds exactly "ml unavailable".
func TestRecommendScenario1(t *testing.T) {
	internal := &models.InternalAggregate{
		InternalPrice: 45.00, SellThroughRate: 0.85, DaysOnShelf: 25,
		Category: "Shoes", MatchedCount: 3,
	}
	market := marketOK(52.00, 51.20, 15)

	rec, err := Recommend(Input{Query: "q", Market: market, Internal: internal})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.InternalVsMarketWeighting != 0.70 {
		t.Errorf("weighting: got %.2f, want 0.70", rec.InternalVsMarketWeighting)
	}
	wantPrice := 0.70*45.00 + 0.30*52.00
	if round2(wantPrice) != rec.RecommendedPrice {
		t.Errorf("price: got %.2f, want %.2f", rec.RecommendedPrice, round2(wantPrice))
	}
	if rec.PredictionMethod != models.MethodInternal {
		t.Errorf("method: got %s, want internal", rec.PredictionMethod)
	}
	if len(rec.Warnings) != 1 || rec.Warnings[0] != "ml unavailable" {
		t.Errorf("expected only the 'ml unavailable' warning, got %v", rec.Warnings)
	}
}

func TestRecommendScenario2NullInternal(t *testing.T) {
	market := marketOK(30.00, 30.00, 25)

	rec, err := Recommend(Input{Query: "q", Market: market, Internal: nil})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.InternalVsMarketWeighting != 0.0 {
		t.Errorf("weighting: got %.2f, want 0", rec.InternalVsMarketWeighting)
	}
	if rec.RecommendedPrice != 30.00 {
		t.Errorf("price: got %.2f, want 30.00", rec.RecommendedPrice)
	}
	if rec.ConfidenceScore != 60 {
		t.Errorf("confidence: got %d, want 60", rec.ConfidenceScore)
	}
	if rec.PredictionMethod != models.MethodMarket {
		t.Errorf("method: got %s, want market", rec.PredictionMethod)
	}
	if !containsString(rec.Warnings, "no internal data") {
		t.Errorf("expected 'no internal data' warning, got %v", rec.Warnings)
	}
}

func TestRecommendScenario3MarketError(t *testing.T) {
	internal := &models.InternalAggregate{
		InternalPrice: 45.00, SellThroughRate: 0.85, DaysOnShelf: 25, Category: "Shoes",
	}
	market := models.MarketSample{Status: models.SampleError}

	rec, err := Recommend(Input{Query: "q", Market: market, Internal: internal})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.InternalVsMarketWeighting != 1.0 {
		t.Errorf("weighting: got %.2f, want 1.0", rec.InternalVsMarketWeighting)
	}
	if rec.RecommendedPrice != 45.00 {
		t.Errorf("price: got %.2f, want 45.00", rec.RecommendedPrice)
	}
	if rec.ConfidenceScore != 30 {
		t.Errorf("confidence: got %d, want 30", rec.ConfidenceScore)
	}
	if !containsString(rec.Warnings, "scrape failure") {
		t.Errorf("expected 'scrape failure' warning, got %v", rec.Warnings)
	}
	if rec.PredictionMethod != models.MethodInternal {
		t.Errorf("method: got %s, want internal", rec.PredictionMethod)
	}
}

func TestRecommendScenario4MLSubstitution(t *testing.T) {
	internal := &models.InternalAggregate{
		InternalPrice: 45.00, SellThroughRate: 0.85, DaysOnShelf: 25,
		Category: "Shoes", MatchedCount: 3,
	}
	market := marketOK(52.00, 51.20, 15)
	ml := models.MLResult{Available: true, Price: 50.00, Confidence: 0.9}

	rec, err := Recommend(Input{Query: "q", Market: market, Internal: internal, ML: ml})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantPrice := 0.6*50.00 + 0.3*52.00 + 0.1*45.00
	if rec.RecommendedPrice != round2(wantPrice) {
		t.Errorf("price: got %.2f, want %.2f", rec.RecommendedPrice, round2(wantPrice))
	}
	if rec.PredictionMethod != models.MethodML {
		t.Errorf("method: got %s, want ml", rec.PredictionMethod)
	}
}

func TestRecommendRulesFallbackSingleRecord(t *testing.T) {
	internal := &models.InternalAggregate{ProductionPrice: 20.00, MatchedCount: 1}
	market := models.MarketSample{Status: models.SampleEmpty}

	rec, err := Recommend(Input{Query: "q", Market: market, Internal: internal})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.RecommendedPrice != 30.00 {
		t.Errorf("price: got %.2f, want 30.00 (production_price * 1.5)", rec.RecommendedPrice)
	}
	if rec.PredictionMethod != models.MethodRules {
		t.Errorf("method: got %s, want rules", rec.PredictionMethod)
	}
}

func TestRecommendFailsWithNoDataAtAll(t *testing.T) {
	market := models.MarketSample{Status: models.SampleEmpty}
	_, err := Recommend(Input{Query: "q", Market: market, Internal: nil})
	if err == nil {
		t.Fatal("expected an error when no market, internal, or ml data is available")
	}
}

func TestWeightingMonotonicityInSellThroughRate(t *testing.T) {
	market := marketOK(50, 50, 12)
	low := weight(&models.InternalAggregate{SellThroughRate: 0.2}, market)
	high := weight(&models.InternalAggregate{SellThroughRate: 0.8}, market)
	if !(high > low) {
		t.Errorf("expected weighting to increase with sell-through rate: low=%.2f high=%.2f", low, high)
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
