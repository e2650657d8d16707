package crawler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"delica-crawler/internal/model"
	"delica-crawler/internal/parser"
)

// processIndex extracts the top-level categories, persists them as groups,
// and enqueues each category page.
func (c *Crawler) processIndex(ctx context.Context, doc *goquery.Document, url string) error {
	categories := parser.IndexCategories(doc, url)
	if len(categories) == 0 {
		// Extraction gap: valid but worth eyes, since an empty index
		// means the whole crawl discovers nothing.
		c.logger.Warn("index page yielded zero categories", "url", url)
	}

	for _, cat := range categories {
		group := model.Group{ID: cat.Slug, Code: cat.Code, Name: cat.Name}
		if err := c.db.InsertGroup(ctx, &group); err != nil {
			return err
		}
		if err := c.db.Enqueue(ctx, cat.URL); err != nil {
			return err
		}
	}
	c.logger.Info("index processed", "url", url, "categories", len(categories))
	return nil
}

// processListing extracts the diagram sections of a listing page, persists
// one subgroup+diagram pair per section, records the detail-page mapping,
// and enqueues the referenced detail pages.
//
// Identity rules: a single-section page reuses its own path
// ("group/subgroup") as both the subgroup id and the diagram id; a
// multi-section page mints "path/sectionSlug" per section, all sharing the
// path and group.
func (c *Crawler) processListing(ctx context.Context, doc *goquery.Document, url string) error {
	segments := c.pathUnderBase(url)
	if len(segments) < 2 {
		return failPage(fmt.Errorf("listing URL %s not under vehicle path", url))
	}
	groupSlug, subgroupSlug := segments[0], segments[1]
	path := groupSlug + "/" + subgroupSlug

	if err := c.ensureGroup(ctx, groupSlug); err != nil {
		return err
	}

	sections := parser.DetailSections(doc, url)
	if len(sections) == 0 {
		// Extraction gap: tolerated, logged for visibility. The links
		// below may still reach the detail pages through the fallback.
		c.logger.Warn("listing page yielded zero sections", "url", url)
	}

	for _, section := range sections {
		id := path
		if len(sections) > 1 {
			id = path + "/" + section.Slug
		}

		subgroup := model.Subgroup{ID: id, Name: section.Name, GroupID: groupSlug, Path: path}
		if err := c.db.UpsertSubgroup(ctx, &subgroup); err != nil {
			return err
		}

		diagram := model.Diagram{
			ID:         id,
			GroupID:    groupSlug,
			SubgroupID: id,
			Name:       section.Name,
			ImageURL:   section.ImageURL,
			SourceURL:  url,
		}
		if err := c.db.UpsertDiagram(ctx, &diagram); err != nil {
			return err
		}

		for _, detailID := range section.DetailIDs {
			c.mapping[detailID] = diagramTarget{DiagramID: id, SubgroupID: id, GroupID: groupSlug}
			if err := c.db.Enqueue(ctx, url+detailID+"/"); err != nil {
				return err
			}
		}
	}

	c.logger.Info("listing processed", "url", url, "sections", len(sections))
	return c.enqueueLinks(ctx, doc, url)
}

// processDetail extracts the parts table of a detail page and attaches the
// rows to the correct diagram.
//
// The reconciliation lookup keys on the page's numeric id. A hit means the
// listing page was processed earlier this run and named the exact section
// the id belongs to. A miss is expected, not exceptional (resumed crawl,
// or a detail page reached from elsewhere): the fallback synthesizes the
// diagram identity from the URL path alone, which cannot distinguish
// sibling diagrams on that path and may under-populate them - the
// cross-diagram repair pass exists to close exactly that gap.
func (c *Crawler) processDetail(ctx context.Context, doc *goquery.Document, url string) error {
	segments := c.pathUnderBase(url)
	if len(segments) < 3 {
		return failPage(fmt.Errorf("detail URL %s not under vehicle path", url))
	}
	groupSlug, subgroupSlug, detailID := segments[0], segments[1], segments[len(segments)-1]

	rows := parser.ScanPartCells(parser.PartsTableCells(doc))
	if len(rows) == 0 {
		// Extraction gap: a page classified as having a parts table
		// yielded nothing. Valid outcome, logged, never fatal.
		c.logger.Warn("parts table yielded zero parts", "url", url)
	}

	target, hit := c.mapping[detailID]
	if !hit {
		var err error
		target, err = c.fallbackTarget(ctx, url, groupSlug, subgroupSlug)
		if err != nil {
			return err
		}
		c.logger.Debug("reconciliation miss, using path fallback",
			"url", url, "detail_id", detailID, "diagram", target.DiagramID)
	}

	inserted := 0
	for _, row := range rows {
		part := partFromRow(row, detailID, target)
		ok, err := c.db.InsertPartIfAbsent(ctx, part)
		if err != nil {
			return err
		}
		if ok {
			inserted++
		}
	}

	c.logger.Info("detail processed",
		"url", url, "diagram", target.DiagramID, "parts", len(rows), "inserted", inserted)
	return nil
}

// fallbackTarget synthesizes the diagram identity from the URL path for a
// detail page whose listing mapping is unavailable, creating the backing
// group/subgroup/diagram rows when this run has not seen them.
func (c *Crawler) fallbackTarget(ctx context.Context, url, groupSlug, subgroupSlug string) (diagramTarget, error) {
	path := groupSlug + "/" + subgroupSlug

	if err := c.ensureGroup(ctx, groupSlug); err != nil {
		return diagramTarget{}, err
	}

	exists, err := c.db.DiagramExists(ctx, path)
	if err != nil {
		return diagramTarget{}, err
	}
	if !exists {
		name := humanize(subgroupSlug)
		listingURL := c.base + path + "/"
		subgroup := model.Subgroup{ID: path, Name: name, GroupID: groupSlug, Path: path}
		if err := c.db.UpsertSubgroup(ctx, &subgroup); err != nil {
			return diagramTarget{}, err
		}
		diagram := model.Diagram{
			ID: path, GroupID: groupSlug, SubgroupID: path,
			Name: name, SourceURL: listingURL,
		}
		if err := c.db.UpsertDiagram(ctx, &diagram); err != nil {
			return diagramTarget{}, err
		}
	}

	return diagramTarget{DiagramID: path, SubgroupID: path, GroupID: groupSlug}, nil
}

// ensureGroup creates a group row for a slug seen outside the index page.
// The display name is derived from the slug; a later index pass does not
// overwrite it (groups are never mutated), which matches how rarely this
// path runs.
func (c *Crawler) ensureGroup(ctx context.Context, slug string) error {
	exists, err := c.db.GroupExists(ctx, slug)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return c.db.InsertGroup(ctx, &model.Group{ID: slug, Name: humanize(slug)})
}

// partFromRow converts a scanned row into the persisted part shape.
func partFromRow(row model.PartRow, detailID string, target diagramTarget) *model.Part {
	part := &model.Part{
		DetailPageID:       detailID,
		PartNumber:         row.PartNumber,
		PNC:                optional(row.PNC),
		Description:        optional(row.Description),
		RefNumber:          optional(row.RefNumber),
		Spec:               optional(row.Spec),
		Notes:              optional(row.Notes),
		Color:              optional(row.Color),
		ModelDateRange:     optional(row.ModelDateRange),
		DiagramID:          target.DiagramID,
		GroupID:            target.GroupID,
		SubgroupID:         target.SubgroupID,
		ReplacesPartNumber: optional(row.ReplacesPartNumber),
	}
	if qty, err := strconv.Atoi(row.Quantity); err == nil {
		part.Quantity = &qty
	}
	return part
}

// optional maps "" to nil for nullable columns.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// humanize turns a slug into a display name ("oil_pan" -> "Oil pan").
func humanize(slug string) string {
	words := strings.ReplaceAll(slug, "_", " ")
	if words == "" {
		return slug
	}
	return strings.ToUpper(words[:1]) + words[1:]
}
