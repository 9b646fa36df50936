// Package matching is the Internal Matching Engine (spec §4.4):
// given a query, retrieve matching historical InternalRecords and
// aggregate them into an InternalAggregate. Grounded on the cascade
// search in original_source/app/services/internal_data.py
// (search_by_keywords' exact-then-word-by-word-then-brand-only
// fallback), re-expressed as the scored-token strategy spec.md
// actually specifies.
package matching

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"pricerecommender/models"
)

// DefaultMaxMatches is MAX_INTERNAL_MATCHES' default per spec §7.
const DefaultMaxMatches = 50

var punctuation = regexp.MustCompile(`[^\w\s]`)

// Engine holds an indexed, read-only view of InternalRecords built
// once at startup from whichever storage.DataSource is configured.
type Engine struct {
	records    []models.InternalRecord
	byUPC      map[string][]models.InternalRecord
	maxMatches int
}

// New builds an Engine over records, indexing by UPC for O(1)
// exact-match lookups. maxMatches <= 0 falls back to DefaultMaxMatches.
func New(records []models.InternalRecord, maxMatches int) *Engine {
	if maxMatches <= 0 {
		maxMatches = DefaultMaxMatches
	}
	byUPC := make(map[string][]models.InternalRecord)
	for _, r := range records {
		if r.UPC == "" {
			continue
		}
		byUPC[r.UPC] = append(byUPC[r.UPC], r)
	}
	return &Engine{records: records, byUPC: byUPC, maxMatches: maxMatches}
}

// Match implements the §4.4 precedence: exact UPC match first, then
// scored whitespace-token substring matching across brand, category,
// subcategory, department, ties broken by most-recent sold_date.
// Returns nil if nothing matches. Never errors.
func (e *Engine) Match(query models.Query) *models.InternalAggregate {
	var matched []models.InternalRecord

	if query.Kind == models.QueryUPC {
		matched = e.byUPC[query.Canonical]
	}

	if len(matched) == 0 {
		matched = e.scoredMatch(query.Canonical)
	}

	if len(matched) == 0 {
		return nil
	}

	if len(matched) > e.maxMatches {
		matched = matched[:e.maxMatches]
	}

	agg := aggregate(matched)
	return &agg
}

type scoredRecord struct {
	record models.InternalRecord
	score  int
}

func (e *Engine) scoredMatch(raw string) []models.InternalRecord {
	tokens := tokenize(raw)
	if len(tokens) == 0 {
		return nil
	}

	var scored []scoredRecord
	for _, r := range e.records {
		score := scoreRecord(r, tokens)
		if score > 0 {
			scored = append(scored, scoredRecord{record: r, score: score})
		}
	}
	if len(scored) == 0 {
		return nil
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return mostRecent(scored[i].record) > mostRecent(scored[j].record)
	})

	out := make([]models.InternalRecord, len(scored))
	for i, s := range scored {
		out[i] = s.record
	}
	return out
}

func mostRecent(r models.InternalRecord) int64 {
	if r.SoldDate == nil {
		return 0
	}
	return r.SoldDate.Unix()
}

func tokenize(raw string) []string {
	cleaned := punctuation.ReplaceAllString(strings.ToLower(raw), " ")
	return strings.Fields(cleaned)
}

// scoreRecord counts distinct tokens that appear as a substring of
// any of brand/category/subcategory/department.
func scoreRecord(r models.InternalRecord, tokens []string) int {
	haystacks := []string{
		strings.ToLower(r.Brand),
		strings.ToLower(r.Category),
		strings.ToLower(r.Subcategory),
		strings.ToLower(r.Department),
	}

	score := 0
	for _, tok := range tokens {
		for _, h := range haystacks {
			if h != "" && strings.Contains(h, tok) {
				score++
				break
			}
		}
	}
	return score
}

func aggregate(records []models.InternalRecord) models.InternalAggregate {
	agg := models.InternalAggregate{MatchedCount: len(records)}

	var soldSum, soldN float64
	var prodSum float64
	var daysSum, daysN float64
	var unsoldDaysSum float64
	var unsoldN float64
	categoryCounts := make(map[string]int)
	subcategoryCounts := make(map[string]int)
	brandCounts := make(map[string]int)
	departmentCounts := make(map[string]int)
	now := time.Now()

	for _, r := range records {
		prodSum += r.ProductionPrice
		categoryCounts[r.Category]++
		subcategoryCounts[r.Subcategory]++
		brandCounts[r.Brand]++
		departmentCounts[r.Department]++

		if r.SoldPrice != nil {
			soldSum += *r.SoldPrice
			soldN++
		}
		if r.DaysToSell != nil {
			daysSum += float64(*r.DaysToSell)
			daysN++
		} else if r.SoldDate == nil {
			unsoldDaysSum += now.Sub(r.ProductionDate).Hours() / 24
			unsoldN++
		}
	}

	agg.ProductionPrice = prodSum / float64(len(records))
	if soldN > 0 {
		agg.InternalPrice = soldSum / soldN
	} else {
		agg.InternalPrice = agg.ProductionPrice
	}

	agg.SellThroughRate = soldN / float64(len(records))

	switch {
	case daysN > 0:
		agg.DaysOnShelf = daysSum / daysN
	case unsoldN > 0:
		agg.DaysOnShelf = unsoldDaysSum / unsoldN
	default:
		agg.DaysOnShelf = 0
	}

	agg.Category = modalCategory(categoryCounts)
	agg.Subcategory = modalCategory(subcategoryCounts)
	agg.Brand = modalCategory(brandCounts)
	agg.Department = modalCategory(departmentCounts)
	return agg
}

func modalCategory(counts map[string]int) string {
	best := ""
	bestN := -1
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if counts[k] > bestN {
			best = k
			bestN = counts[k]
		}
	}
	return best
}
