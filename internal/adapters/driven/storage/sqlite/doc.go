// Package sqlite provides the SQLite-backed document store.
//
// The store owns two tables: the documents table holding the indexed
// rows, and a standalone FTS5 table over {title, content, description}.
// Every mutation writes both inside one transaction, so the full-text
// index is always a pure function of the live rows. Schema changes go
// through embedded migrations in the migrations subpackage.
package sqlite
