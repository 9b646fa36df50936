package models

// PredictionMethod identifies which branch of the recommendation
// engine produced the final price.
type PredictionMethod string

const (
	MethodML       PredictionMethod = "ml"
	MethodMarket   PredictionMethod = "market"
	MethodInternal PredictionMethod = "internal"
	MethodRules    PredictionMethod = "rules"
)

// Recommendation is the final artifact returned to callers.
type Recommendation struct {
	Query                      string
	RecommendedPrice           float64
	InternalVsMarketWeighting  float64
	ConfidenceScore            int
	Rationale                  string
	PredictionMethod           PredictionMethod
	Market                     *MarketData
	Internal                   *InternalData
	Warnings                   []string
}

// MarketData is the wire-shaped projection of a MarketSample, per
// spec §6.
type MarketData struct {
	MedianPrice      float64 `json:"median_price"`
	AveragePrice     float64 `json:"average_price"`
	MinPrice         float64 `json:"min_price"`
	MaxPrice         float64 `json:"max_price"`
	SampleSize       int     `json:"sample_size"`
	SoldListingsCount int    `json:"sold_listings_count"`
	Timestamp        string  `json:"timestamp"`
}

// InternalData is the wire-shaped projection of an InternalAggregate,
// per spec §6. It is also the shape a caller may supply directly on
// the request to override the matching engine's own lookup.
type InternalData struct {
	InternalPrice   float64 `json:"internal_price"`
	SellThroughRate float64 `json:"sell_through_rate"`
	DaysOnShelf     float64 `json:"days_on_shelf"`
	Category        string  `json:"category"`
	MatchedCount    int     `json:"matched_count"`
}
