package models

import "time"

// Condition is the normalized state of a scraped item.
type Condition string

const (
	ConditionNew         Condition = "new"
	ConditionUsed        Condition = "used"
	ConditionRefurbished Condition = "refurbished"
	ConditionUnknown     Condition = "unknown"
)

// RawCard holds the unparsed fields extracted directly from a listing
// card on the marketplace page, before price/condition/date parsing.
// The marketplace session does not use this type: its driver returns
// its own unexported card struct, which parseCard turns into Listings.
type RawCard struct {
	Title        string
	RawPrice     string
	Condition    string
	SoldDateText string
	URL          string
}

// Listing is one scraped marketplace entry. Immutable once built.
type Listing struct {
	Title     string
	Price     float64
	Currency  string
	Condition Condition
	SoldDate  *time.Time
	URL       string
}

// SampleStatus discriminates a successful scrape, an empty-but-successful
// scrape, and a failed scrape.
type SampleStatus string

const (
	SampleOK    SampleStatus = "ok"
	SampleEmpty SampleStatus = "empty"
	SampleError SampleStatus = "error"
)

// MarketSample is the outcome of scraping one query.
type MarketSample struct {
	Listings     []Listing
	Median       float64
	Mean         float64
	Min          float64
	Max          float64
	SampleSize   int
	SoldCount    int
	Timestamp    time.Time
	Status       SampleStatus
	LowConfidence bool
	Warning      string
}
