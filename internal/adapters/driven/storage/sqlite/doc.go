// Package sqlite stores documents, chunks, vectors and answer history in a
// single SQLite database using modernc.org/sqlite (no CGO).
//
//   - DocumentStore: documents and their offset-bearing chunks
//   - VectorIndex: brute-force cosine search over stored embeddings
//   - OutcomeStore: one row per processed query
//
// The schema is applied from versioned files in migrations/. By default the
// database lives at ~/.clause/data/clause.db.
package sqlite
