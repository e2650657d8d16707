package model

// CrawlStatus is the state of one URL in the durable crawl queue.
//
// State machine: unknown -> pending -> completed, or
// pending -> failed -> (bulk reset) -> pending. Completed is terminal.
type CrawlStatus string

const (
	// StatusPending marks a discovered URL that has not been processed yet.
	StatusPending CrawlStatus = "pending"

	// StatusCompleted marks a URL whose extracted records are durably
	// persisted. A URL is never moved to completed before its records are
	// written, so an interrupted run resumes cleanly from pending rows.
	StatusCompleted CrawlStatus = "completed"

	// StatusFailed marks a URL whose fetch or extraction failed. Failed
	// rows are recovered only through an explicit bulk reset to pending.
	StatusFailed CrawlStatus = "failed"
)

// CrawlState is the durable record of one URL's traversal progress.
// These rows are the sole source of resumability: on startup, any pending
// rows are drained in discovery order before the seed is considered.
type CrawlState struct {
	URL    string
	Status CrawlStatus

	// Error holds the failure reason for failed URLs, nil otherwise.
	Error *string
}

// CrawlStats summarizes queue and catalog progress for the stats command.
type CrawlStats struct {
	Pending   int
	Completed int
	Failed    int

	Groups    int
	Subgroups int
	Diagrams  int
	Parts     int

	// FailedURLs lists failed queue entries with their recorded reasons.
	FailedURLs []CrawlState
}
