// Package upc canonicalizes and classifies a raw search string as
// either a checksum-valid UPC or a free-text descriptor.
package upc

import (
	"fmt"
	"strconv"
	"strings"

	"pricerecommender/models"
)

// ErrEmptyQuery is returned for an empty or whitespace-only input —
// the only condition under which validation fails outright.
var ErrEmptyQuery = fmt.Errorf("upc: query is empty")

// Classify strips whitespace and dashes from raw, then classifies the
// result as a checksum-valid UPC-A (12 digits), UPC-E (8 digits), or
// free-text. It never fails except on an empty input.
func Classify(raw string) (models.Query, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return models.Query{}, ErrEmptyQuery
	}

	cleaned := stripSeparators(trimmed)

	if isAllDigits(cleaned) && (len(cleaned) == 12 || len(cleaned) == 8) && validChecksum(cleaned) {
		return models.Query{Raw: raw, Canonical: cleaned, Kind: models.QueryUPC}, nil
	}

	return models.Query{Raw: raw, Canonical: trimmed, Kind: models.QueryFreeText}, nil
}

func stripSeparators(s string) string {
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, " ", "")
	return s
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// validChecksum applies the UPC-A modulo-10 check-digit rule:
// sum(3×odd_position_digits) + sum(even_position_digits) ≡ 0 (mod 10),
// positions 1-indexed from the left, last digit is the check digit.
//
// For 8-digit input this is the spec's acknowledged simplification:
// the UPC-A rule is applied directly to the 8 digits rather than
// expanding UPC-E to UPC-A first. That is very likely wrong UPC-E
// validation, but spec.md §9 says to flag it, not silently fix it —
// so it is left as-is here too.
func validChecksum(digits string) bool {
	n := len(digits)
	sum := 0
	for i := 0; i < n-1; i++ {
		d, err := strconv.Atoi(string(digits[i]))
		if err != nil {
			return false
		}
		// positions are 1-indexed from the left; odd positions (1st, 3rd, ...)
		// are weighted 3.
		if (i+1)%2 == 1 {
			sum += 3 * d
		} else {
			sum += d
		}
	}
	check, err := strconv.Atoi(string(digits[n-1]))
	if err != nil {
		return false
	}
	return (10-sum%10)%10 == check
}
