package driven

import (
	"context"

	"github.com/custodia-labs/veridoc-cli/internal/core/domain"
)

// RecordStore persists index records so an index can be rebuilt without
// re-embedding the corpus. The stored record carries the vector plus the
// chunk's text and provenance (source document, page number, chunk index,
// page offsets).
//
// Persistence is an interchange format, not a durability guarantee: a
// rebuild after model or chunking changes starts from the documents, not
// from the store.
type RecordStore interface {
	// SaveRecords persists records in one transaction.
	SaveRecords(ctx context.Context, records []domain.IndexRecord) error

	// LoadRecords returns all persisted records in insertion order.
	LoadRecords(ctx context.Context) ([]domain.IndexRecord, error)

	// DeleteBySource removes all records for one source document.
	DeleteBySource(ctx context.Context, sourceDocument string) error

	// Count returns the number of persisted records.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
