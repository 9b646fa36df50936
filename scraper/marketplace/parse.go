package marketplace

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"

	"pricerecommender/models"
)

// priceRegexp extracts the numeric portion of a currency-prefixed
// price string, grounded on services/cleaner.go's parsePrice.
var priceRegexp = regexp.MustCompile(`[\d,]+(?:\.\d+)?`)

// conditionDictionary is the fixed substring dictionary spec §4.2
// names: {new, used, refurbished}; anything else is unknown.
var conditionDictionary = []struct {
	substr string
	cond   models.Condition
}{
	{"refurbished", models.ConditionRefurbished},
	{"renewed", models.ConditionRefurbished},
	{"new", models.ConditionNew},
	{"used", models.ConditionUsed},
	{"pre-owned", models.ConditionUsed},
}

// parseCard turns a rawCard into a Listing. Returns ok=false if
// either title or price fails to parse — the card is then dropped
// with a warning by the caller, per spec §4.2.
func parseCard(card rawCard) (models.Listing, bool) {
	title := strings.TrimSpace(card.Title)
	if title == "" {
		return models.Listing{}, false
	}

	price, currency, ok := parsePrice(card.Price)
	if !ok {
		return models.Listing{}, false
	}

	listing := models.Listing{
		Title:     title,
		Price:     price,
		Currency:  currency,
		Condition: classifyCondition(card.Condition),
		URL:       card.URL,
	}
	dateText := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(card.SoldDateText), "Sold"))
	if t, err := dateparse.ParseAny(dateText); err == nil {
		listing.SoldDate = &t
	}

	return listing, true
}

// parsePrice extracts the numeric value and a best-effort currency
// symbol from a raw price string, using the symbol as the locale hint:
// for EUR `.` is the thousands separator and `,` the decimal point;
// for every other currency `,` is the thousands separator and `.` the
// decimal point.
func parsePrice(raw string) (float64, string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, "", false
	}

	currency := detectCurrency(raw)

	var cleaned string
	if currency == "EUR" {
		cleaned = strings.ReplaceAll(strings.ReplaceAll(raw, ".", ""), ",", ".")
	} else {
		cleaned = strings.ReplaceAll(raw, ",", "")
	}
	match := priceRegexp.FindString(cleaned)
	if match == "" {
		return 0, "", false
	}

	val, err := strconv.ParseFloat(match, 64)
	if err != nil || val <= 0 {
		return 0, "", false
	}

	return val, currency, true
}

func detectCurrency(raw string) string {
	switch {
	case strings.ContainsRune(raw, '$'):
		return "USD"
	case strings.ContainsRune(raw, '€'):
		return "EUR"
	case strings.ContainsRune(raw, '£'):
		return "GBP"
	case strings.ContainsRune(raw, '¥'):
		return "JPY"
	default:
		return "USD"
	}
}

func classifyCondition(raw string) models.Condition {
	lower := strings.ToLower(raw)
	for _, entry := range conditionDictionary {
		if strings.Contains(lower, entry.substr) {
			return entry.cond
		}
	}
	return models.ConditionUnknown
}
