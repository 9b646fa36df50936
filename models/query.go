package models

// QueryKind classifies how a raw search string was parsed.
type QueryKind string

const (
	QueryUPC      QueryKind = "upc"
	QueryFreeText QueryKind = "freetext"
)

// Query is a classified, canonicalized search term. It is the single
// input type that flows through every pipeline stage; only the
// internal matching engine treats UPC and free-text queries
// differently.
type Query struct {
	Raw       string
	Canonical string
	Kind      QueryKind
}

// CacheKey returns the normalized form used to key the request cache:
// lowercased, whitespace-collapsed.
func (q Query) CacheKey() string {
	return normalizeWhitespace(q.Canonical)
}
