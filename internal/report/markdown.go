package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"

	"delica-crawler/internal/model"
)

// MarkdownWriter outputs crawl summaries in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	output io.Writer

	// now is injectable for deterministic tests.
	now func() time.Time
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		output: output,
		now:    time.Now,
	}
}

// Write outputs the crawl summary in Markdown format.
func (w *MarkdownWriter) Write(stats *model.CrawlStats) error {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, stats)
	w.writeCatalog(md, stats)
	w.writeFailures(md, stats)

	return md.Build()
}

// writeHeader writes the summary header with queue state.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, stats *model.CrawlStats) {
	md.H1("Catalog Crawl Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Generated", w.now().Format("2006-01-02 15:04:05 MST")},
			{"Pages Completed", strconv.Itoa(stats.Completed)},
			{"Pages Pending", strconv.Itoa(stats.Pending)},
			{"Pages Failed", strconv.Itoa(stats.Failed)},
			{"Status", w.statusText(stats)},
		},
	})
	md.PlainText("")
}

// statusText returns the status text based on queue state.
func (w *MarkdownWriter) statusText(stats *model.CrawlStats) string {
	if stats.Pending > 0 {
		return "⏳ In Progress"
	}
	if stats.Failed > 0 {
		return "⚠️ Complete (with failures)"
	}
	return "✅ Complete"
}

// writeCatalog writes the catalog contents section.
func (w *MarkdownWriter) writeCatalog(md *markdown.Markdown, stats *model.CrawlStats) {
	md.H2("Catalog Contents")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Entity", "Count"},
		Rows: [][]string{
			{"Groups", strconv.Itoa(stats.Groups)},
			{"Subgroups", strconv.Itoa(stats.Subgroups)},
			{"Diagrams", strconv.Itoa(stats.Diagrams)},
			{"Parts", strconv.Itoa(stats.Parts)},
		},
	})
	md.PlainText("")
}

// writeFailures writes the failed URL list, if any.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, stats *model.CrawlStats) {
	if len(stats.FailedURLs) == 0 {
		return
	}

	md.H2("Failed Pages")
	md.PlainText("")
	md.PlainText("These pages could not be fetched. Run `delica-crawler retry` to re-queue them.")
	md.PlainText("")

	items := make([]string, 0, len(stats.FailedURLs))
	for _, state := range stats.FailedURLs {
		item := "`" + state.URL + "`"
		if state.Error != nil && *state.Error != "" {
			item += " - " + *state.Error
		}
		items = append(items, item)
	}
	md.BulletList(items...)
	md.PlainText("")
}
