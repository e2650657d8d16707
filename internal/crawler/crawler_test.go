package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"delica-crawler/internal/config"
	"delica-crawler/internal/database"
	"delica-crawler/internal/fetcher"
	"delica-crawler/internal/model"
)

const vehiclePath = "/delica_space_gear/pd6w/hseue9/"

const indexPage = `<html><body>
	<a href="engine/">11 ENGINE</a>
</body></html>`

const categoryPage = `<html><body>
	<a href="oil_pan/">OIL PAN</a>
	<a href="missing/">MISSING</a>
</body></html>`

// listingPage has two sections; detail 10001 is shared between them, so
// its mapping is overwritten by the later section and the earlier diagram
// stays under-populated until the sharing repair runs.
const listingPage = `<html><body><table><tr>
	<td>
		<h3>Oil pan</h3>
		<img src="/img/oil_pan.gif">
		<a href="10001/">10001</a>
	</td>
	<td>
		<h3>Oil strainer</h3>
		<img src="/img/oil_strainer.gif">
		<a href="10001/">10001</a>
		<a href="10002/">10002</a>
	</td>
</tr></table></body></html>`

const detailPage10001 = `<html><body><table class="parts">
	<tr><th>No</th><th>PNC</th><th>OEM Part Number</th><th>Qty</th><th>Description</th>
	<th>Spec</th><th>Notes</th><th>Color</th><th>Date Range</th></tr>
	<tr><td>04403</td><td>02878</td><td>MD123456</td><td>2</td><td>Bolt, Flange</td>
	<td>M8</td><td></td><td>Black</td><td>1994.05-1997.08</td></tr>
</table></body></html>`

const detailPage10002 = `<html><body><table class="parts">
	<tr><th>No</th><th>PNC</th><th>OEM Part Number</th><th>Qty</th><th>Description</th>
	<th>Spec</th><th>Notes</th><th>Color</th><th>Date Range</th></tr>
	<tr><td>04404</td><td>02879</td><td>MD050317</td><td>1</td><td>Gasket, Oil Strainer</td>
	<td></td><td></td><td></td><td></td></tr>
</table></body></html>`

// newTestSite serves a miniature three-level catalog and counts requests.
func newTestSite(t *testing.T) (*httptest.Server, *atomic.Int64) {
	t.Helper()

	var requests atomic.Int64
	mux := http.NewServeMux()
	pages := map[string]string{
		vehiclePath:                           indexPage,
		vehiclePath + "engine/":               categoryPage,
		vehiclePath + "engine/oil_pan/":       listingPage,
		vehiclePath + "engine/oil_pan/10001/": detailPage10001,
		vehiclePath + "engine/oil_pan/10002/": detailPage10002,
	}
	for path, page := range pages {
		mux.HandleFunc(path, func(w http.ResponseWriter, _ *http.Request) {
			requests.Add(1)
			w.Write([]byte(page))
		})
	}
	mux.HandleFunc("/img/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("GIF89a"))
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := pages[r.URL.Path]; !ok && r.URL.Path != "/img/oil_pan.gif" && r.URL.Path != "/img/oil_strainer.gif" {
			requests.Add(1)
			http.NotFound(w, r)
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

// newTestCrawler wires a crawler against the test site with delays off.
func newTestCrawler(t *testing.T, server *httptest.Server) (*Crawler, *database.CatalogDB, *config.Config) {
	t.Helper()

	cfg := config.NewConfig()
	cfg.BaseURL = server.URL
	cfg.DBDir = t.TempDir()
	cfg.ImageDir = filepath.Join(cfg.DBDir, "images")

	db, err := database.Open(cfg.DBPath(), database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	f := fetcher.New(server.Client(),
		fetcher.WithInitialDelay(0),
		fetcher.WithMinDelay(0),
		fetcher.WithFrameNo(cfg.FrameNo),
	)
	return New(cfg, db, f), db, cfg
}

func TestCrawlerRun(t *testing.T) {
	t.Parallel()

	server, _ := newTestSite(t)
	c, db, _ := newTestCrawler(t, server)
	ctx := context.Background()

	if err := c.Run(ctx); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	t.Run("index categories become groups", func(t *testing.T) {
		exists, err := db.GroupExists(ctx, "engine")
		if err != nil || !exists {
			t.Errorf("group engine missing: exists=%v err=%v", exists, err)
		}
	})

	t.Run("listing sections become subgroups and diagrams", func(t *testing.T) {
		for _, id := range []string{"engine/oil_pan/oil_pan", "engine/oil_pan/oil_strainer"} {
			exists, err := db.DiagramExists(ctx, id)
			if err != nil || !exists {
				t.Errorf("diagram %s missing: exists=%v err=%v", id, exists, err)
			}
		}
	})

	t.Run("detail parts land under the mapped diagram", func(t *testing.T) {
		parts, err := db.PartsByDetailPageID(ctx, "10001")
		if err != nil {
			t.Fatalf("PartsByDetailPageID() error: %v", err)
		}
		if len(parts) != 1 {
			t.Fatalf("expected 1 row for detail 10001, got %d", len(parts))
		}
		p := parts[0]
		if p.PartNumber != "MD123456" {
			t.Errorf("part number = %q", p.PartNumber)
		}
		// Detail 10001 appears in both sections; the later section's
		// mapping wins during traversal.
		if p.DiagramID != "engine/oil_pan/oil_strainer" {
			t.Errorf("diagram = %q, want engine/oil_pan/oil_strainer", p.DiagramID)
		}
		if p.Quantity == nil || *p.Quantity != 2 {
			t.Errorf("quantity not parsed: %+v", p.Quantity)
		}
		if p.ModelDateRange == nil || *p.ModelDateRange != "1994.05-1997.08" {
			t.Errorf("date range not captured: %+v", p.ModelDateRange)
		}
	})

	t.Run("unreachable page is failed, not fatal", func(t *testing.T) {
		stats, err := db.Stats(ctx)
		if err != nil {
			t.Fatalf("Stats() error: %v", err)
		}
		if stats.Failed != 1 {
			t.Errorf("failed count = %d, want 1 (the missing/ page)", stats.Failed)
		}
		if stats.Pending != 0 {
			t.Errorf("pending count = %d after drained run", stats.Pending)
		}
	})
}

func TestCrawlerResume(t *testing.T) {
	t.Parallel()

	server, requests := newTestSite(t)
	c, _, _ := newTestCrawler(t, server)
	ctx := context.Background()

	if err := c.Run(ctx); err != nil {
		t.Fatalf("first Run() error: %v", err)
	}
	fetched := requests.Load()

	// A second run finds every URL completed or failed: nothing is
	// re-fetched and the seed is not re-queued.
	if err := c.Run(ctx); err != nil {
		t.Fatalf("second Run() error: %v", err)
	}
	if requests.Load() != fetched {
		t.Errorf("resumed run re-fetched pages: %d -> %d", fetched, requests.Load())
	}
}

func TestCrawlerFallbackTarget(t *testing.T) {
	t.Parallel()

	server, _ := newTestSite(t)
	c, db, _ := newTestCrawler(t, server)
	ctx := context.Background()

	// Enqueue only a detail page: no listing has been processed, so the
	// reconciliation mapping is empty and the path fallback must
	// synthesize the diagram identity.
	detailURL := c.base + "engine/oil_pan/10001/"
	if err := db.Enqueue(ctx, detailURL); err != nil {
		t.Fatalf("failed to enqueue: %v", err)
	}
	if err := c.Run(ctx); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	parts, err := db.PartsByDetailPageID(ctx, "10001")
	if err != nil {
		t.Fatalf("PartsByDetailPageID() error: %v", err)
	}
	if len(parts) != 1 {
		t.Fatalf("expected 1 part, got %d", len(parts))
	}
	if parts[0].DiagramID != "engine/oil_pan" {
		t.Errorf("fallback diagram = %q, want engine/oil_pan", parts[0].DiagramID)
	}

	exists, err := db.GroupExists(ctx, "engine")
	if err != nil || !exists {
		t.Errorf("fallback did not create group: exists=%v err=%v", exists, err)
	}
	exists, err = db.DiagramExists(ctx, "engine/oil_pan")
	if err != nil || !exists {
		t.Errorf("fallback did not create diagram: exists=%v err=%v", exists, err)
	}
}

func TestDownloadImages(t *testing.T) {
	t.Parallel()

	server, _ := newTestSite(t)
	c, db, cfg := newTestCrawler(t, server)
	ctx := context.Background()

	if err := c.Run(ctx); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if err := c.DownloadImages(ctx); err != nil {
		t.Fatalf("DownloadImages() error: %v", err)
	}

	missing, err := db.DiagramsMissingImages(ctx)
	if err != nil {
		t.Fatalf("DiagramsMissingImages() error: %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("%d diagrams still missing images after download", len(missing))
	}

	entries, err := filepath.Glob(filepath.Join(cfg.ImageDir, "*"))
	if err != nil {
		t.Fatalf("failed to list image dir: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 downloaded images, got %d: %v", len(entries), entries)
	}

	// Re-running is a no-op.
	if err := c.DownloadImages(ctx); err != nil {
		t.Fatalf("repeated DownloadImages() error: %v", err)
	}
}

func TestPartFromRow(t *testing.T) {
	t.Parallel()

	target := diagramTarget{DiagramID: "engine/oil_pan", SubgroupID: "engine/oil_pan", GroupID: "engine"}

	t.Run("maps all populated fields", func(t *testing.T) {
		t.Parallel()

		row := model.PartRow{
			PartNumber:         "MD123456",
			PNC:                "02878",
			RefNumber:          "04403",
			Quantity:           "2",
			Description:        "Bolt, Flange",
			ModelDateRange:     "1994.05-1997.08",
			ReplacesPartNumber: "MD050317",
		}

		part := partFromRow(row, "10001", target)
		if part.PartNumber != "MD123456" || part.DetailPageID != "10001" {
			t.Errorf("identity mismatch: %+v", part)
		}
		if part.Quantity == nil || *part.Quantity != 2 {
			t.Errorf("quantity not parsed: %+v", part.Quantity)
		}
		if part.ReplacesPartNumber == nil || *part.ReplacesPartNumber != "MD050317" {
			t.Errorf("replaces reference lost: %+v", part.ReplacesPartNumber)
		}
	})

	t.Run("empty scalars become nil", func(t *testing.T) {
		t.Parallel()

		part := partFromRow(model.PartRow{PartNumber: "MD123456"}, "10001", target)
		if part.PNC != nil || part.Description != nil || part.Quantity != nil {
			t.Errorf("empty fields not nil: %+v", part)
		}
	})

	t.Run("non-numeric quantity is dropped", func(t *testing.T) {
		t.Parallel()

		part := partFromRow(model.PartRow{PartNumber: "MD123456", Quantity: "AS REQ"}, "10001", target)
		if part.Quantity != nil {
			t.Errorf("non-numeric quantity kept: %v", *part.Quantity)
		}
	})
}

func TestHumanize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		slug string
		want string
	}{
		{"oil_pan", "Oil pan"},
		{"engine", "Engine"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := humanize(tt.slug); got != tt.want {
			t.Errorf("humanize(%q) = %q, want %q", tt.slug, got, tt.want)
		}
	}
}
