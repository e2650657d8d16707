package report

import (
	"fmt"
	"io"

	"delica-crawler/internal/model"
)

// TextWriter outputs crawl summaries as plain text for terminal use.
type TextWriter struct {
	output io.Writer
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer) *TextWriter {
	return &TextWriter{output: output}
}

// Write outputs the crawl summary as plain text.
func (w *TextWriter) Write(stats *model.CrawlStats) error {
	lines := []string{
		"Crawl queue:",
		fmt.Sprintf("  completed: %d", stats.Completed),
		fmt.Sprintf("  pending:   %d", stats.Pending),
		fmt.Sprintf("  failed:    %d", stats.Failed),
		"",
		"Catalog:",
		fmt.Sprintf("  groups:    %d", stats.Groups),
		fmt.Sprintf("  subgroups: %d", stats.Subgroups),
		fmt.Sprintf("  diagrams:  %d", stats.Diagrams),
		fmt.Sprintf("  parts:     %d", stats.Parts),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w.output, line); err != nil {
			return err
		}
	}

	if len(stats.FailedURLs) > 0 {
		if _, err := fmt.Fprintln(w.output, "\nFailed pages:"); err != nil {
			return err
		}
		for _, state := range stats.FailedURLs {
			reason := ""
			if state.Error != nil {
				reason = " (" + *state.Error + ")"
			}
			if _, err := fmt.Fprintf(w.output, "  %s%s\n", state.URL, reason); err != nil {
				return err
			}
		}
	}
	return nil
}
