// Package database provides SQLite-based storage for the parts catalog and
// the durable crawl queue.
//
// This package implements the CatalogDB, which stores:
//   - The normalized catalog (groups, subgroups, diagrams, parts)
//   - The per-URL crawl state that makes traversal resumable
//   - A full-text index over part numbers and descriptions
//
// Design decision: We use SQLite (via modernc.org/sqlite) because:
//  1. No external dependencies - the catalog is a single file
//  2. CGO-free implementation allows easy cross-compilation
//  3. The delica-tui browser opens the very same file
//  4. WAL mode lets the browser read while a crawl writes
//
// The unique constraint on (part_number, diagram_id) plus INSERT OR IGNORE
// is the idempotence primitive the crawl and both repair passes rely on.
package database
