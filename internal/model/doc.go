// Package model defines the core data structures used throughout the crawler.
//
// This package contains the following main types:
//   - Group, Subgroup, Diagram, Part: the normalized catalog records
//   - Category, Section, PartRow: raw extraction records before persistence
//   - CrawlState: the durable per-URL traversal record
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (parser, crawler, database, repair) need
// these types, so centralizing them prevents import cycles.
//
// The catalog types mirror the SQLite columns the delica-tui browser reads.
// The crawler persists a small superset (the supersession reference consumed
// by the replacement-merge pass), but never changes the meaning of a column
// the browser shares.
package model
