package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"delica-crawler/internal/config"
	"delica-crawler/internal/database"
	"delica-crawler/internal/fetcher"
	"delica-crawler/internal/parser"
)

// Crawler drives the resumable traversal of the parts site. It drains the
// durable pending queue one URL at a time: fetch, classify, extract,
// persist, enqueue discovered links, then mark the URL completed. A URL is
// marked completed only after its records are persisted, so an interrupted
// run resumes cleanly from the remaining pending rows.
//
// Design decision: The queue lives in the database rather than in memory
// (unlike a conventional spider) because resumability is the point: the
// source is slow and fragile, and a full traversal takes hours across
// several sittings.
type Crawler struct {
	// cfg supplies the vehicle identity and retry bounds.
	cfg *config.Config

	// db is the catalog store and durable queue.
	db *database.CatalogDB

	// fetcher performs the rate-limited requests.
	fetcher *fetcher.Fetcher

	// logger for structured logging.
	logger *slog.Logger

	// base is the vehicle's URL prefix, the crawl seed and the boundary
	// every enqueued URL must live under.
	base string

	// mapping is the transient detail-page reconciliation index:
	// detail-page id -> the diagram/subgroup the id's section belongs to.
	// Populated while processing listing pages, consumed while processing
	// detail pages discovered afterward. Deliberately not persisted: it is
	// lost between runs, and the cross-diagram repair pass closes the gap
	// by re-deriving it from the source.
	mapping map[string]diagramTarget
}

// diagramTarget is where extracted parts from one detail page attach.
type diagramTarget struct {
	DiagramID  string
	SubgroupID string
	GroupID    string
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) {
		c.logger = logger
	}
}

// New creates a Crawler.
func New(cfg *config.Config, db *database.CatalogDB, f *fetcher.Fetcher, opts ...Option) *Crawler {
	c := &Crawler{
		cfg:     cfg,
		db:      db,
		fetcher: f,
		logger:  slog.Default(),
		base:    cfg.VehicleBaseURL(),
		mapping: make(map[string]diagramTarget),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// pageFailure wraps an error that condemns only the current URL.
// Anything else returned by process is a store or context failure and
// aborts the whole run.
type pageFailure struct {
	err error
}

// Error implements the error interface.
func (e *pageFailure) Error() string { return e.err.Error() }

// Unwrap exposes the wrapped error.
func (e *pageFailure) Unwrap() error { return e.err }

// failPage marks an error as condemning only the current URL.
func failPage(err error) error { return &pageFailure{err: err} }

// Run executes the traversal until the pending queue is drained.
//
// If pending URLs exist from an earlier run, traversal resumes from them;
// otherwise the vehicle index page is seeded. A single bad page never
// aborts the crawl: its URL is recorded as failed and traversal continues.
// Only store failures and cancellation are fatal.
func (c *Crawler) Run(ctx context.Context) error {
	hasPending, err := c.db.HasPending(ctx)
	if err != nil {
		return err
	}
	if !hasPending {
		c.logger.Info("seeding fresh crawl", "seed", c.base)
		if err := c.db.Enqueue(ctx, c.base); err != nil {
			return err
		}
	} else {
		c.logger.Info("resuming crawl from pending queue")
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		url, err := c.db.NextPending(ctx)
		if err != nil {
			return err
		}
		if url == "" {
			c.logger.Info("pending queue drained")
			return nil
		}

		if err := c.process(ctx, url); err != nil {
			var pf *pageFailure
			if !errors.As(err, &pf) {
				return err
			}
			c.logger.Warn("page failed", "url", url, "error", pf.err)
			if err := c.db.MarkFailed(ctx, url, pf.err.Error()); err != nil {
				return err
			}
			continue
		}

		if err := c.db.MarkCompleted(ctx, url); err != nil {
			return err
		}
	}
}

// process fetches and handles one URL.
func (c *Crawler) process(ctx context.Context, url string) error {
	html, err := c.fetchWithRetry(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return failPage(err)
	}

	doc, err := parser.NewDocument(html)
	if err != nil {
		return failPage(fmt.Errorf("parse HTML: %w", err))
	}

	kind := parser.Classify(doc, url, c.base)
	c.logger.Debug("processing page", "url", url, "kind", kind.String(), "delay", c.fetcher.Delay())

	switch kind {
	case parser.KindIndex:
		return c.processIndex(ctx, doc, url)
	case parser.KindListing:
		return c.processListing(ctx, doc, url)
	case parser.KindDetail:
		return c.processDetail(ctx, doc, url)
	default:
		// Category and unknown pages contribute only links.
		return c.enqueueLinks(ctx, doc, url)
	}
}

// fetchWithRetry re-attempts a fetch a bounded number of times. Rate
// limiting and transport errors are worth retrying because the fetcher has
// already grown its delay; a definitive HTTP status (404, 500) is not.
func (c *Crawler) fetchWithRetry(ctx context.Context, url string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.FetchRetries; attempt++ {
		html, err := c.fetcher.Fetch(ctx, url)
		if err == nil {
			return html, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", err
		}
		var statusErr *fetcher.StatusError
		if errors.As(err, &statusErr) {
			return "", err
		}
		c.logger.Debug("fetch attempt failed",
			"url", url, "attempt", attempt, "error", err, "next_delay", c.fetcher.Delay())
	}
	return "", fmt.Errorf("giving up after %d attempts: %w", c.cfg.FetchRetries, lastErr)
}

// enqueueLinks discovers outbound links and enqueues them in appearance
// order. Enqueue is idempotent, so re-seen URLs are no-ops.
func (c *Crawler) enqueueLinks(ctx context.Context, doc *goquery.Document, url string) error {
	links := parser.PageLinks(doc, url, c.base)
	for _, link := range links {
		if err := c.db.Enqueue(ctx, link); err != nil {
			return err
		}
	}
	c.logger.Debug("links enqueued", "url", url, "count", len(links))
	return nil
}

// pathUnderBase returns the URL's path segments below the vehicle prefix.
func (c *Crawler) pathUnderBase(url string) []string {
	rel := strings.TrimPrefix(url, c.base)
	if rel == url {
		return nil
	}
	segments := make([]string, 0, 4)
	for _, segment := range strings.Split(rel, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}
