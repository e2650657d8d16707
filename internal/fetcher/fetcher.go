package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrRateLimited is returned when the source answers HTTP 429. The fetcher
// has already grown its delay when this is returned; the caller decides
// whether to retry the same URL or record it as failed.
var ErrRateLimited = errors.New("rate limited by source (HTTP 429)")

// StatusError is returned for non-2xx responses other than 429.
// These do not affect the adaptive delay: a 404 is the source telling us
// something about the URL, not about our request rate.
type StatusError struct {
	// URL is the fetched URL.
	URL string

	// Code is the HTTP status code.
	Code int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d fetching %s", e.Code, e.URL)
}

// Fetcher performs sequential, rate-limited HTTP fetches against the parts
// site. It owns one mutable delay shared across all fetches: before every
// request it sleeps for the current delay, grows the delay on HTTP 429 or
// transport errors, and relaxes it toward the floor on success.
//
// Design decision: The delay is a field on the Fetcher instance rather than
// package state, so independent crawl configurations can run side by side
// in tests. The fetcher is not safe for concurrent use; the crawl runs
// strictly sequentially and nothing else should share an instance.
type Fetcher struct {
	// client performs the actual HTTP requests.
	client *http.Client

	// userAgent is sent on every request.
	userAgent string

	// frameNo, when set, is appended as the frame_no query parameter to
	// every fetched URL that does not already carry one. The source
	// resolves part applicability per frame number.
	frameNo string

	// maxBodySize limits the size of response bodies to read.
	maxBodySize int64

	// currentDelay is the single mutable pre-fetch delay.
	currentDelay time.Duration

	// minDelay is the floor currentDelay relaxes toward on success.
	minDelay time.Duration

	// maxDelay caps currentDelay growth under sustained throttling.
	maxDelay time.Duration

	// backoffMultiplier scales currentDelay up on failure, down on success.
	backoffMultiplier float64

	// sleep performs the pre-fetch suspension. Replaced in tests so delay
	// behavior can be asserted without real waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithFrameNo sets the frame number appended as the frame_no query
// parameter on every fetch.
func WithFrameNo(frameNo string) Option {
	return func(f *Fetcher) {
		f.frameNo = frameNo
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = size
	}
}

// WithInitialDelay sets the pre-fetch delay at the start of a run.
func WithInitialDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		f.currentDelay = d
	}
}

// WithMinDelay sets the delay floor.
func WithMinDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		f.minDelay = d
	}
}

// WithMaxDelay sets the delay ceiling.
func WithMaxDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		f.maxDelay = d
	}
}

// WithBackoffMultiplier sets the delay scale factor.
func WithBackoffMultiplier(m float64) Option {
	return func(f *Fetcher) {
		f.backoffMultiplier = m
	}
}

// New creates a Fetcher with the given HTTP client.
//
// Design decision: We require an external client so tests can inject
// httptest transports and so the caller controls timeouts in one place.
func New(client *http.Client, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:            client,
		userAgent:         "delica-crawler/1.0",
		maxBodySize:       5 * 1024 * 1024,
		currentDelay:      3 * time.Second,
		minDelay:          1 * time.Second,
		maxDelay:          60 * time.Second,
		backoffMultiplier: 1.5,
	}
	f.sleep = func(ctx context.Context, d time.Duration) error {
		if d <= 0 {
			return ctx.Err()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d):
			return nil
		}
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves the HTML body of a page.
// Ordinary HTTP failures come back as errors, never panics; HTTP 429 is
// reported as ErrRateLimited after the delay has grown.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	body, err := f.do(ctx, rawURL, "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// FetchBinary retrieves raw bytes, used for diagram illustrations.
func (f *Fetcher) FetchBinary(ctx context.Context, rawURL string) ([]byte, error) {
	return f.do(ctx, rawURL, "*/*")
}

// Delay returns the current adaptive delay. Exposed for progress logging.
func (f *Fetcher) Delay() time.Duration {
	return f.currentDelay
}

// do performs one rate-limited request.
func (f *Fetcher) do(ctx context.Context, rawURL, accept string) ([]byte, error) {
	if err := f.sleep(ctx, f.currentDelay); err != nil {
		return nil, err
	}

	target, err := f.requestURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", accept)

	resp, err := f.client.Do(req)
	if err != nil {
		f.backoff()
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		f.backoff()
		return nil, fmt.Errorf("fetch %s: %w", rawURL, ErrRateLimited)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: rawURL, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		f.backoff()
		return nil, fmt.Errorf("read %s: %w", rawURL, err)
	}

	f.relax()
	return body, nil
}

// requestURL appends the frame_no query parameter when configured and the
// URL does not already carry one.
func (f *Fetcher) requestURL(rawURL string) (string, error) {
	if f.frameNo == "" {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	if q.Get("frame_no") == "" {
		q.Set("frame_no", f.frameNo)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// backoff grows the delay, clamped to maxDelay.
func (f *Fetcher) backoff() {
	grown := time.Duration(float64(f.currentDelay) * f.backoffMultiplier)
	if grown > f.maxDelay {
		grown = f.maxDelay
	}
	f.currentDelay = grown
}

// relax shrinks the delay toward minDelay by the same factor it grows.
func (f *Fetcher) relax() {
	relaxed := time.Duration(float64(f.currentDelay) / f.backoffMultiplier)
	if relaxed < f.minDelay {
		relaxed = f.minDelay
	}
	f.currentDelay = relaxed
}
