// Package market computes aggregate statistics — median, mean, min,
// max, sample size, sold count — over a vector of scraped listings,
// filtering outliers before aggregation. This is the Market Sample
// Aggregator (spec §4.3), generalized from the teacher's
// services/insights.go price-statistics pass.
package market

import (
	"sort"
	"time"

	"pricerecommender/models"
)

// LowConfidenceThreshold is the sample-size floor below which a
// sample is flagged low_confidence.
const LowConfidenceThreshold = 5

// outlierLowFactor / outlierHighFactor bound the window
// [0.25×, 4.0×] of the unfiltered median within which a listing's
// price survives filtering. Deliberately robust rather than
// responsive — see spec §9 Design Notes. Do not weaken.
const (
	outlierLowFactor  = 0.25
	outlierHighFactor = 4.0
)

// Aggregate computes a MarketSample's derived stats from a raw vector
// of listings. The incoming listings are assumed already parsed
// (price > 0 required to count toward sample_size); malformed cards
// are expected to have been dropped upstream by the scrape session
// manager.
func Aggregate(listings []models.Listing) models.MarketSample {
	sample := models.MarketSample{
		Listings:  listings,
		Timestamp: time.Now(),
		Status:    models.SampleOK,
	}

	priced := pricedOnly(listings)
	if len(priced) == 0 {
		sample.Status = models.SampleEmpty
		sample.LowConfidence = true
		return sample
	}

	rawPrices := prices(priced)
	rawMedian := median(rawPrices)

	filtered := filterOutliers(priced, rawMedian)
	if len(filtered) == 0 {
		filtered = priced
	}

	filteredPrices := prices(filtered)
	sort.Float64s(filteredPrices)

	sample.Median = median(filteredPrices)
	sample.Mean = mean(filteredPrices)
	sample.Min = filteredPrices[0]
	sample.Max = filteredPrices[len(filteredPrices)-1]
	sample.SampleSize = len(filtered)
	sample.SoldCount = soldCount(listings)
	sample.LowConfidence = sample.SampleSize < LowConfidenceThreshold

	return sample
}

func pricedOnly(listings []models.Listing) []models.Listing {
	out := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		if l.Price > 0 {
			out = append(out, l)
		}
	}
	return out
}

func soldCount(listings []models.Listing) int {
	n := 0
	for _, l := range listings {
		if l.SoldDate != nil {
			n++
		}
	}
	return n
}

// filterOutliers discards listings whose price falls outside
// [0.25×rawMedian, 4.0×rawMedian].
func filterOutliers(listings []models.Listing, rawMedian float64) []models.Listing {
	if rawMedian <= 0 {
		return listings
	}
	lo := outlierLowFactor * rawMedian
	hi := outlierHighFactor * rawMedian

	out := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		if l.Price >= lo && l.Price <= hi {
			out = append(out, l)
		}
	}
	return out
}

func prices(listings []models.Listing) []float64 {
	out := make([]float64, len(listings))
	for i, l := range listings {
		out[i] = l.Price
	}
	return out
}

// median assumes sorted input is not guaranteed; it sorts a copy.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}
