// Package sqlite provides a SQLite-backed implementation of driven.VectorStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Chunks are stored one row each with their
// embedding encoded as a little-endian float32 blob. Search is a brute-force cosine
// scan, which is adequate for the few thousand chunks a personal document set produces.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// The index_meta table records the embedding dimension and distance metric the
// index was created with; both are checked every time the store is opened.
//
// # Data Location
//
// The database is stored at <data_dir>/index/vectors.db.
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
