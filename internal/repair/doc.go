// Package repair provides post-crawl repair passes over the catalog
// database.
//
// The traversal records parts the way the source presents them page by
// page, which leaves two classes of artifact behind: a detail page shared
// by several listing sections gets its parts stored under only one of the
// diagrams, and a superseding part appears as a separate row rather than
// as the replacement number of the part it replaces. The passes in this
// package fix both after the fact. Each pass is idempotent, so the repair
// step can be re-run at any time, including after an incremental crawl.
package repair
