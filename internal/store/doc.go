// Package store persists tierlink data in SQLite.
//
// A Store serves two roles. It is a data source that loads record sets from
// arbitrary SELECT queries and a sink that writes linkage results back into
// tables. It also keeps the run history: one row per linkage run with its
// per-tier match counts, keyed by a UUID run identifier.
//
// Schema changes ship as numbered files under migrations/ and are applied in
// order on Open. The newest applied number is kept in PRAGMA user_version.
package store
