package mlmodel

import "pricerecommender/models"

// BuildFeatures assembles the fixed-order feature vector per spec
// §4.5 from the internal aggregate and market sample. internal may be
// nil (unmatched query); market may be a zero-sample MarketSample.
// Unknown categoricals map to UnknownID; unknown numerics fall back to
// the vocabulary's training-time column means.
func BuildFeatures(internal *models.InternalAggregate, market models.MarketSample, vocab *Vocab) models.FeatureVector {
	var fv models.FeatureVector

	if internal != nil {
		fv[models.FeatCategoryID] = float64(vocab.lookup(vocabOrNil(vocab, "category"), internal.Category))
		fv[models.FeatSubcategoryID] = float64(vocab.lookup(vocabOrNil(vocab, "subcategory"), internal.Subcategory))
		fv[models.FeatBrandID] = float64(vocab.lookup(vocabOrNil(vocab, "brand"), internal.Brand))
		fv[models.FeatDepartmentID] = float64(vocab.lookup(vocabOrNil(vocab, "department"), internal.Department))
		fv[models.FeatProductionPrice] = internal.ProductionPrice
		fv[models.FeatDaysOnShelf] = internal.DaysOnShelf
	} else {
		fv[models.FeatCategoryID] = UnknownID
		fv[models.FeatSubcategoryID] = UnknownID
		fv[models.FeatBrandID] = UnknownID
		fv[models.FeatDepartmentID] = UnknownID
		fv[models.FeatProductionPrice] = vocab.mean("production_price", 0)
		fv[models.FeatDaysOnShelf] = vocab.mean("days_on_shelf", 0)
	}

	if market.Status == models.SampleOK && market.SampleSize > 0 {
		fv[models.FeatMarketMedian] = market.Median
		fv[models.FeatMarketSampleSize] = float64(market.SampleSize)
		fv[models.FeatMarketStd] = marketStd(market)
	} else {
		fv[models.FeatMarketMedian] = vocab.mean("market_median", 0)
		fv[models.FeatMarketSampleSize] = 0
		fv[models.FeatMarketStd] = vocab.mean("market_std", 0)
	}

	return fv
}

// marketStd approximates price spread as range/4, grounded on the
// original feature engineering's market_price_std derivation (there
// being no raw per-listing variance available post-aggregation).
func marketStd(market models.MarketSample) float64 {
	rng := market.Max - market.Min
	if rng <= 0 {
		return 0
	}
	return rng / 4.0
}

func vocabOrNil(v *Vocab, which string) map[string]int {
	if v == nil {
		return nil
	}
	switch which {
	case "category":
		return v.CategoryIDs
	case "subcategory":
		return v.SubcategoryIDs
	case "brand":
		return v.BrandIDs
	case "department":
		return v.DepartmentIDs
	default:
		return nil
	}
}
