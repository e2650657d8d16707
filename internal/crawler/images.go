package crawler

import (
	"context"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DownloadImages fetches the diagram illustrations that have an image URL
// but no local file yet, storing them under the configured image directory
// and recording the path on the diagram row.
//
// The step is idempotent: diagrams with image_path already set are not in
// the candidate set, so re-running only retries earlier failures. A single
// failed download is logged and skipped; only store failures and
// cancellation abort the pass.
func (c *Crawler) DownloadImages(ctx context.Context) error {
	diagrams, err := c.db.DiagramsMissingImages(ctx)
	if err != nil {
		return err
	}
	if len(diagrams) == 0 {
		c.logger.Info("no diagram images to download")
		return nil
	}

	if err := os.MkdirAll(c.cfg.ImageDir, 0750); err != nil {
		return err
	}

	downloaded := 0
	for _, diagram := range diagrams {
		if err := ctx.Err(); err != nil {
			return err
		}

		data, err := c.fetcher.FetchBinary(ctx, diagram.ImageURL)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn("image download failed",
				"diagram", diagram.ID, "url", diagram.ImageURL, "error", err)
			continue
		}

		imagePath := filepath.Join(c.cfg.ImageDir, imageFileName(diagram.ID, diagram.ImageURL))
		if err := os.WriteFile(imagePath, data, 0640); err != nil {
			c.logger.Warn("image write failed", "diagram", diagram.ID, "path", imagePath, "error", err)
			continue
		}

		if err := c.db.SetDiagramImagePath(ctx, diagram.ID, imagePath); err != nil {
			return err
		}
		downloaded++
	}

	c.logger.Info("diagram images downloaded", "count", downloaded, "candidates", len(diagrams))
	return nil
}

// imageFileName derives a flat local file name from the diagram id and the
// source image's extension.
func imageFileName(diagramID, imageURL string) string {
	ext := ".gif"
	if u, err := url.Parse(imageURL); err == nil {
		if e := path.Ext(u.Path); e != "" {
			ext = e
		}
	}
	return strings.ReplaceAll(diagramID, "/", "_") + ext
}
