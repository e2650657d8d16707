// Package report renders crawl summaries for humans. The plain text
// writer serves terminal output; the markdown writer produces a document
// suitable for committing alongside a crawled catalog.
package report
