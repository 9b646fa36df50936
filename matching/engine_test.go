package matching

import (
	"testing"
	"time"

	"pricerecommender/models"
)

func rec(upc, brand, category, subcategory, department string, prodPrice float64, soldPrice *float64, soldDate *time.Time) models.InternalRecord {
	return models.InternalRecord{
		UPC: upc, Brand: brand, Category: category, Subcategory: subcategory, Department: department,
		ProductionDate: time.Now().AddDate(0, 0, -30), ProductionPrice: prodPrice,
		SoldPrice: soldPrice, SoldDate: soldDate,
	}
}

func ptr(f float64) *float64 { return &f }

func TestMatchExactUPC(t *testing.T) {
	records := []models.InternalRecord{
		rec("012345678905", "Nike", "Shoes", "Sneakers", "Mens", 50, ptr(30), nil),
		rec("999999999999", "Adidas", "Shoes", "Sneakers", "Mens", 40, ptr(25), nil),
	}
	e := New(records, 0)

	agg := e.Match(models.Query{Kind: models.QueryUPC, Canonical: "012345678905"})
	if agg == nil {
		t.Fatal("expected a match")
	}
	if agg.MatchedCount != 1 {
		t.Errorf("matched count: got %d, want 1", agg.MatchedCount)
	}
	if agg.InternalPrice != 30 {
		t.Errorf("internal price: got %.2f, want 30", agg.InternalPrice)
	}
}

func TestMatchTokenScoring(t *testing.T) {
	records := []models.InternalRecord{
		rec("", "Nike", "Shoes", "Sneakers", "Mens", 50, ptr(30), nil),
		rec("", "Nike", "Tops", "T-Shirt", "Mens", 20, nil, nil),
		rec("", "Adidas", "Shoes", "Sneakers", "Mens", 40, ptr(25), nil),
	}
	e := New(records, 0)

	agg := e.Match(models.Query{Kind: models.QueryFreeText, Canonical: "Nike Sneakers"})
	if agg == nil {
		t.Fatal("expected a match")
	}
	// The first record scores 2 (Nike + Sneakers); the other two score 1
	// each (Nike, Sneakers). Only zero-score records are excluded.
	if agg.MatchedCount != 3 {
		t.Errorf("matched count: got %d, want 3", agg.MatchedCount)
	}
}

func TestMatchNoneFound(t *testing.T) {
	e := New([]models.InternalRecord{rec("", "Nike", "Shoes", "Sneakers", "Mens", 50, ptr(30), nil)}, 0)
	agg := e.Match(models.Query{Kind: models.QueryFreeText, Canonical: "Completely Unrelated Widget"})
	if agg != nil {
		t.Fatalf("expected nil aggregate, got %+v", agg)
	}
}

func TestMatchSellThroughAndPriceFallback(t *testing.T) {
	records := []models.InternalRecord{
		rec("", "Nike", "Shoes", "Sneakers", "Mens", 50, nil, nil),
		rec("", "Nike", "Shoes", "Sneakers", "Mens", 60, nil, nil),
	}
	e := New(records, 0)
	agg := e.Match(models.Query{Kind: models.QueryFreeText, Canonical: "Nike Sneakers"})
	if agg == nil {
		t.Fatal("expected a match")
	}
	if agg.SellThroughRate != 0 {
		t.Errorf("sell through: got %.2f, want 0 (nothing sold)", agg.SellThroughRate)
	}
	if agg.InternalPrice != 55 {
		t.Errorf("internal price fallback to production price mean: got %.2f, want 55", agg.InternalPrice)
	}
}

func TestMatchCapsAtMaxMatches(t *testing.T) {
	var records []models.InternalRecord
	for i := 0; i < 10; i++ {
		records = append(records, rec("", "Nike", "Shoes", "Sneakers", "Mens", 50, ptr(30), nil))
	}
	e := New(records, 3)
	agg := e.Match(models.Query{Kind: models.QueryFreeText, Canonical: "Nike Sneakers"})
	if agg == nil {
		t.Fatal("expected a match")
	}
	if agg.MatchedCount != 3 {
		t.Errorf("matched count: got %d, want 3 (capped)", agg.MatchedCount)
	}
}

func TestMatchModalCategory(t *testing.T) {
	records := []models.InternalRecord{
		rec("", "Nike", "Shoes", "Sneakers", "Mens", 50, ptr(30), nil),
		rec("", "Nike", "Shoes", "Boots", "Mens", 50, ptr(30), nil),
		rec("", "Nike", "Accessories", "Hats", "Mens", 50, ptr(30), nil),
	}
	e := New(records, 0)
	agg := e.Match(models.Query{Kind: models.QueryFreeText, Canonical: "Nike"})
	if agg.Category != "Shoes" {
		t.Errorf("modal category: got %q, want Shoes", agg.Category)
	}
}
