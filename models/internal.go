package models

import "time"

// InternalRecord is one row of historical sales data, loaded once at
// process start and held immutable for the process lifetime.
type InternalRecord struct {
	ItemID         string
	UPC            string
	Department     string
	Category       string
	Subcategory    string
	Brand          string
	ProductionDate time.Time
	SoldDate       *time.Time
	DaysToSell     *int
	ProductionPrice float64
	SoldPrice      *float64
}

// Sold reports whether the record represents a completed sale.
func (r InternalRecord) Sold() bool {
	return r.SoldDate != nil
}

// InternalAggregate is the outcome of matching a query against
// InternalRecords. A nil *InternalAggregate means no records matched.
type InternalAggregate struct {
	MatchedCount    int
	InternalPrice   float64
	ProductionPrice float64
	SellThroughRate float64
	DaysOnShelf     float64
	Category        string
	Subcategory     string
	Brand           string
	Department      string
}
