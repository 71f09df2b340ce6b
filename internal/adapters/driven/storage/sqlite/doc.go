// Package sqlite provides a SQLite-backed record store.
//
// The store persists index records (vector, chunk text, provenance) so
// an index can be rebuilt on startup without re-embedding the corpus.
// It uses WAL mode for concurrency and embedded SQL migrations applied
// on open, tracked in a schema_migrations version table.
package sqlite
