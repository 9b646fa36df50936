package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"pricerecommender/models"
)

// csvColumns is the expected header row, in order, per spec §6's
// internal data source table.
var csvColumns = []string{
	"item_id", "upc", "department", "category", "subcategory", "brand",
	"production_date", "sold_date", "days_to_sell", "production_price", "sold_price",
}

// CSVSource loads InternalRecords from a CSV file once at construction
// and serves every subsequent LoadAll from the in-memory copy —
// mirroring the teacher's CSVWriter in reverse (a reader instead of a
// writer). The file is closed once loading finishes; no handle is held.
type CSVSource struct {
	path    string
	records []models.InternalRecord
}

// NewCSVSource opens path, parses every row, and returns a ready-to-use
// CSVSource. Rows that fail to parse are skipped silently rather than
// aborting the whole load.
func NewCSVSource(path string) (*CSVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}
	idx := columnIndex(header)

	var records []models.InternalRecord
	for {
		row, err := r.Read()
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			break
		}
		rec, ok := parseRow(row, idx)
		if !ok {
			continue
		}
		records = append(records, rec)
	}

	return &CSVSource{path: path, records: records}, nil
}

func (c *CSVSource) LoadAll() ([]models.InternalRecord, error) {
	return c.records, nil
}

func (c *CSVSource) Close() error { return nil }

func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[h] = i
	}
	return idx
}

func parseRow(row []string, idx map[string]int) (models.InternalRecord, bool) {
	get := func(col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	productionPrice, err := strconv.ParseFloat(get("production_price"), 64)
	if err != nil {
		return models.InternalRecord{}, false
	}

	rec := models.InternalRecord{
		ItemID:          get("item_id"),
		UPC:             get("upc"),
		Department:      get("department"),
		Category:        get("category"),
		Subcategory:     get("subcategory"),
		Brand:           get("brand"),
		ProductionPrice: productionPrice,
	}

	if t, err := time.Parse("2006-01-02", get("production_date")); err == nil {
		rec.ProductionDate = t
	}
	if raw := get("sold_date"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			rec.SoldDate = &t
		}
	}
	if raw := get("days_to_sell"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			rec.DaysToSell = &n
		}
	}
	if raw := get("sold_price"); raw != "" {
		if p, err := strconv.ParseFloat(raw, 64); err == nil {
			rec.SoldPrice = &p
		}
	}

	return rec, true
}
