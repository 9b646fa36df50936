// Package storage holds the internal-data backends. Both CSV and
// relational (Postgres) backends implement the same abstract
// capability (LoadAll, Close); there is no token query method. The
// matching engine is built from the records LoadAll returns and never
// switches on a runtime flag itself.
package storage

import "pricerecommender/models"

// DataSource is the abstract capability the internal matching engine
// depends on. CSV and Postgres backends are interchangeable
// implementations.
type DataSource interface {
	// LoadAll returns every InternalRecord known to the backend. CSV
	// backends load once at startup and return the cached slice;
	// Postgres backends query on every call.
	LoadAll() ([]models.InternalRecord, error)

	// Close releases any held resources (file handles, connections).
	Close() error
}
