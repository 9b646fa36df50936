// Package pricing is the Recommendation Engine (spec §4.6), the
// semantic heart of the system: weighting, blended price, confidence
// score, rationale, and warnings. Grounded on
// original_source/app/services/pricing_engine.py's weighting table
// and confidence formula, carried over verbatim since spec.md pins
// the exact constants.
package pricing

import (
	"fmt"
	"math"

	"pricerecommender/models"
)

// Input bundles everything the engine needs for one call.
type Input struct {
	Query    string
	Market   models.MarketSample
	Internal *models.InternalAggregate
	ML       models.MLResult
}

// Recommend computes the full Recommendation for one query. Never
// errors except via the rules-based fallback's last resort — if
// neither market, internal, nor ML data is present, it returns an
// error rather than fabricate a price.
func Recommend(in Input) (models.Recommendation, error) {
	weighting := weight(in.Internal, in.Market)

	price, method, err := blend(in, weighting)
	if err != nil {
		return models.Recommendation{}, err
	}

	confidence := confidenceScore(in, price)
	warnings := buildWarnings(in, price)
	rationale := rationale(in, weighting, method, warnings)

	rec := models.Recommendation{
		Query:                     in.Query,
		RecommendedPrice:          round2(price),
		InternalVsMarketWeighting: weighting,
		ConfidenceScore:           confidence,
		Rationale:                 rationale,
		PredictionMethod:          method,
		Warnings:                  warnings,
	}

	if in.Market.Status != models.SampleEmpty || in.Market.SampleSize > 0 {
		rec.Market = marketData(in.Market)
	}
	if in.Internal != nil {
		rec.Internal = internalData(in.Internal)
	}

	return rec, nil
}

// weight computes w_internal per the §4.6 adjustment table, starting
// at 0.5, applying additive deltas, then the two overrides, then
// clamping to [0,1]. Overrides are checked last so they always win
// regardless of the additive deltas above them.
func weight(internal *models.InternalAggregate, market models.MarketSample) float64 {
	w := 0.5

	if internal != nil {
		if internal.SellThroughRate > 0.7 {
			w += 0.20
		}
		if internal.SellThroughRate < 0.3 {
			w -= 0.15
		}
		if internal.DaysOnShelf > 60 {
			w -= 0.15
		}
	}
	if market.Status == models.SampleOK {
		if market.SampleSize < 5 {
			w += 0.20
		}
		if market.SampleSize > 20 {
			w -= 0.10
		}
	}

	switch {
	case internal == nil:
		w = 0.0
	case market.Status != models.SampleOK:
		w = 1.0
	}

	return clamp01(w)
}

// blend computes p_final and the dominant prediction method: ML
// substitution when confident, else the base blend, else the
// rules-based single-record fallback.
func blend(in Input, w float64) (float64, models.PredictionMethod, error) {
	hasMarket := in.Market.Status == models.SampleOK && in.Market.SampleSize > 0
	hasInternal := in.Internal != nil

	if in.ML.Available && in.ML.Confidence >= 0.7 {
		return mlSubstitution(in.ML, in.Market, in.Internal, hasMarket, hasInternal), models.MethodML, nil
	}

	// A single matched record carries no meaningful sell-through or
	// market context to blend against; treat it as the degenerate
	// rules-based case rather than a one-record "internal aggregate".
	if !hasMarket && hasInternal && in.Internal.MatchedCount == 1 {
		return in.Internal.ProductionPrice * 1.5, models.MethodRules, nil
	}

	if hasMarket || hasInternal {
		p := baseBlend(w, in.Internal, in.Market, hasInternal, hasMarket)
		method := models.MethodInternal
		if w < 0.5 {
			method = models.MethodMarket
		}
		return p, method, nil
	}

	return 0, "", fmt.Errorf("pricing: no market data, internal data, or ml prediction available")
}

// baseBlend computes w_internal×internal + (1-w_internal)×market,
// redistributing the absent side's weight to whichever side is
// present.
func baseBlend(w float64, internal *models.InternalAggregate, market models.MarketSample, hasInternal, hasMarket bool) float64 {
	switch {
	case hasInternal && hasMarket:
		return w*internal.InternalPrice + (1-w)*market.Median
	case hasInternal:
		return internal.InternalPrice
	case hasMarket:
		return market.Median
	default:
		return 0
	}
}

// mlSubstitution computes 0.6×ml + 0.3×market + 0.1×internal,
// redistributing omitted terms' weight proportionally across the
// terms that remain present.
func mlSubstitution(ml models.MLResult, market models.MarketSample, internal *models.InternalAggregate, hasMarket, hasInternal bool) float64 {
	const (
		wML       = 0.6
		wMarket   = 0.3
		wInternal = 0.1
	)

	total := wML
	var sum float64 = wML * ml.Price

	if hasMarket {
		total += wMarket
		sum += wMarket * market.Median
	}
	if hasInternal {
		total += wInternal
		sum += wInternal * internal.InternalPrice
	}

	return sum / total
}

// confidenceScore implements the §4.6 formula exactly: base 50, with
// the listed additive/subtractive adjustments, clamped to [0,100].
func confidenceScore(in Input, finalPrice float64) int {
	score := 50.0

	if in.Market.Status == models.SampleOK && in.Market.SampleSize >= 10 {
		score += 20
	}
	if in.Internal != nil && in.Internal.MatchedCount >= 5 {
		score += 10
	}
	if in.ML.Available {
		score += 15
	}
	if in.Market.Status == models.SampleOK && in.Market.Median > 0 {
		base := math.Max(in.Market.Median, 1)
		if math.Abs(finalPrice-in.Market.Median)/base > 0.30 {
			score -= 15
		}
	}
	if in.Market.Status == models.SampleError {
		score -= 20
	}
	if in.Internal == nil {
		score -= 10
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return int(score)
}

func buildWarnings(in Input, finalPrice float64) []string {
	var warnings []string

	if in.Market.Status == models.SampleOK && in.Market.SampleSize < 5 {
		warnings = append(warnings, "low market sample")
	}
	if in.Internal != nil && in.Internal.DaysOnShelf > 60 {
		warnings = append(warnings, "stale inventory")
	}
	if in.Market.Status == models.SampleOK && in.Market.Median > 0 {
		base := math.Max(in.Market.Median, 1)
		if math.Abs(finalPrice-in.Market.Median)/base > 0.30 {
			warnings = append(warnings, "large deviation from market median")
		}
	}
	if in.Internal == nil {
		warnings = append(warnings, "no internal data")
	}
	if in.Market.Status == models.SampleError {
		warnings = append(warnings, "scrape failure")
	}
	if !in.ML.Available {
		warnings = append(warnings, "ml unavailable")
	}

	return warnings
}

// rationale names the top two contributions by absolute weight
// adjustment and states the final weighting split. Deterministic
// given the inputs.
func rationale(in Input, w float64, method models.PredictionMethod, warnings []string) string {
	factors := topFactors(in)
	split := fmt.Sprintf("%.0f%% internal / %.0f%% market", w*100, (1-w)*100)

	if len(factors) == 0 {
		return fmt.Sprintf("Priced via %s method with a %s weighting.", method, split)
	}
	return fmt.Sprintf("Priced via %s method, driven mainly by %s, with a %s weighting.", method, joinTwo(factors), split)
}

type factor struct {
	name string
	mag  float64
}

// topFactors ranks the same conditions that feed the weighting table
// by the absolute magnitude of the delta they contributed, returning
// at most the top two.
func topFactors(in Input) []string {
	var factors []factor

	if in.Internal != nil {
		if in.Internal.SellThroughRate > 0.7 {
			factors = append(factors, factor{"high sell-through rate", 0.20})
		}
		if in.Internal.SellThroughRate < 0.3 {
			factors = append(factors, factor{"low sell-through rate", 0.15})
		}
		if in.Internal.DaysOnShelf > 60 {
			factors = append(factors, factor{"stale inventory", 0.15})
		}
	}
	if in.Market.Status == models.SampleOK {
		if in.Market.SampleSize < 5 {
			factors = append(factors, factor{"thin market sample", 0.20})
		}
		if in.Market.SampleSize > 20 {
			factors = append(factors, factor{"deep market sample", 0.10})
		}
	}
	if in.Internal == nil {
		factors = append(factors, factor{"no internal data", 0.50})
	}
	if in.Market.Status != models.SampleOK {
		factors = append(factors, factor{"unavailable market data", 0.50})
	}

	for i := 0; i < len(factors); i++ {
		maxIdx := i
		for j := i + 1; j < len(factors); j++ {
			if factors[j].mag > factors[maxIdx].mag {
				maxIdx = j
			}
		}
		factors[i], factors[maxIdx] = factors[maxIdx], factors[i]
	}

	names := make([]string, 0, len(factors))
	for _, f := range factors {
		names = append(names, f.name)
	}
	if len(names) > 2 {
		names = names[:2]
	}
	return names
}

func joinTwo(names []string) string {
	if len(names) == 1 {
		return names[0]
	}
	return names[0] + " and " + names[1]
}

func marketData(m models.MarketSample) *models.MarketData {
	return &models.MarketData{
		MedianPrice:       m.Median,
		AveragePrice:      m.Mean,
		MinPrice:          m.Min,
		MaxPrice:          m.Max,
		SampleSize:        m.SampleSize,
		SoldListingsCount: m.SoldCount,
		Timestamp:         m.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func internalData(a *models.InternalAggregate) *models.InternalData {
	return &models.InternalData{
		InternalPrice:   a.InternalPrice,
		SellThroughRate: a.SellThroughRate,
		DaysOnShelf:     a.DaysOnShelf,
		Category:        a.Category,
		MatchedCount:    a.MatchedCount,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
