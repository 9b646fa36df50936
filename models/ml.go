package models

// FeatureVector is the fixed-order input to the regressor, per spec
// §4.5: [category_id, subcategory_id, brand_id, department_id,
// production_price, days_on_shelf, market_median, market_sample_size,
// market_std].
type FeatureVector [9]float64

const (
	FeatCategoryID = iota
	FeatSubcategoryID
	FeatBrandID
	FeatDepartmentID
	FeatProductionPrice
	FeatDaysOnShelf
	FeatMarketMedian
	FeatMarketSampleSize
	FeatMarketStd
)

// MLResult is the outcome of invoking the ML adapter.
type MLResult struct {
	Price            float64
	Available        bool
	Confidence       float64
	TopFeatures      []string
}
