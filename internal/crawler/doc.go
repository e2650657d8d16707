// Package crawler drives the resumable traversal of the parts-diagram site
// and reconciles extracted parts with the correct diagram identity.
//
// # Architecture
//
// The Crawler drains a durable pending queue stored beside the catalog:
// fetch, classify, extract, persist, enqueue discovered links, mark
// completed. Because a URL is marked completed only after its records are
// persisted, the process can be killed at any point and resume cleanly
// from the remaining pending rows.
//
// Design decision: We implement our own traversal rather than using a
// crawling library because:
//  1. The queue must be durable and database-backed for resumability
//  2. The fetch delay is adaptive and shared; one request is in flight at
//     any time, by politeness contract with a fragile source
//  3. Reconciliation needs listing-page context carried across pages
//
// # Reconciliation
//
// Listing pages record which diagram section references each detail-page
// id in a transient in-memory mapping. Detail pages look their id up: a
// hit attaches parts exactly; a miss (resumed crawl, out-of-order
// discovery) falls back to a diagram identity synthesized from the URL
// path, which is less precise and is later corrected by the repair passes.
package crawler
