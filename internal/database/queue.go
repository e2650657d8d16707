package database

import (
	"context"
	"database/sql"
	"fmt"

	"delica-crawler/internal/model"
)

// Enqueue records a newly discovered URL as pending.
// It is idempotent: a URL that already has a crawl-state row, in any
// status, is left untouched. Insertion order is discovery order, which is
// what NextPending drains by.
func (cdb *CatalogDB) Enqueue(ctx context.Context, url string) error {
	_, err := cdb.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO crawl_state (url, status) VALUES (?, ?)`,
		url, string(model.StatusPending))
	if err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", url, err)
	}
	return nil
}

// NextPending returns the oldest pending URL by discovery order, or
// ("", nil) when the queue is drained.
func (cdb *CatalogDB) NextPending(ctx context.Context) (string, error) {
	var url string
	err := cdb.db.QueryRowContext(ctx,
		`SELECT url FROM crawl_state WHERE status = ? ORDER BY id LIMIT 1`,
		string(model.StatusPending)).Scan(&url)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read pending queue: %w", err)
	}
	return url, nil
}

// HasPending reports whether any pending URLs remain. On startup this
// decides between resuming an interrupted traversal and seeding a fresh
// one.
func (cdb *CatalogDB) HasPending(ctx context.Context) (bool, error) {
	var one int
	err := cdb.db.QueryRowContext(ctx,
		`SELECT 1 FROM crawl_state WHERE status = ? LIMIT 1`,
		string(model.StatusPending)).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check pending queue: %w", err)
	}
	return true, nil
}

// MarkCompleted transitions a URL to completed. Completed is terminal;
// callers only invoke this after the URL's extracted records are durably
// persisted.
func (cdb *CatalogDB) MarkCompleted(ctx context.Context, url string) error {
	_, err := cdb.db.ExecContext(ctx,
		`UPDATE crawl_state SET status = ?, error = NULL WHERE url = ?`,
		string(model.StatusCompleted), url)
	if err != nil {
		return fmt.Errorf("failed to mark %s completed: %w", url, err)
	}
	return nil
}

// MarkFailed transitions a URL to failed with the recorded reason.
// There is no automatic retry within a run; failed rows are recovered only
// by ResetFailed.
func (cdb *CatalogDB) MarkFailed(ctx context.Context, url, reason string) error {
	_, err := cdb.db.ExecContext(ctx,
		`UPDATE crawl_state SET status = ?, error = ? WHERE url = ?`,
		string(model.StatusFailed), reason, url)
	if err != nil {
		return fmt.Errorf("failed to mark %s failed: %w", url, err)
	}
	return nil
}

// ResetFailed bulk-resets every failed URL to pending and returns how many
// rows were reset. This is the only transition out of failed; the retry
// entry point calls it before resuming traversal.
func (cdb *CatalogDB) ResetFailed(ctx context.Context) (int64, error) {
	result, err := cdb.db.ExecContext(ctx,
		`UPDATE crawl_state SET status = ?, error = NULL WHERE status = ?`,
		string(model.StatusPending), string(model.StatusFailed))
	if err != nil {
		return 0, fmt.Errorf("failed to reset failed URLs: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read reset result: %w", err)
	}
	return n, nil
}

// CrawlStateFor returns the crawl-state row for a URL, or nil when the URL
// has never been discovered.
func (cdb *CatalogDB) CrawlStateFor(ctx context.Context, url string) (*model.CrawlState, error) {
	var cs model.CrawlState
	var status string
	err := cdb.db.QueryRowContext(ctx,
		`SELECT url, status, error FROM crawl_state WHERE url = ?`, url).
		Scan(&cs.URL, &status, &cs.Error)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read crawl state for %s: %w", url, err)
	}
	cs.Status = model.CrawlStatus(status)
	return &cs, nil
}
