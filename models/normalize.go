package models

import "strings"

// normalizeWhitespace lowercases s and collapses runs of whitespace to
// a single space, trimming the ends. Used for cache keys and token
// matching so that "Nike  Sneakers" and "nike sneakers" hit the same
// bucket.
func normalizeWhitespace(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	return strings.Join(fields, " ")
}
