package repair

import (
	"context"
	"log/slog"

	"delica-crawler/internal/database"
	"delica-crawler/internal/fetcher"
	"delica-crawler/internal/model"
	"delica-crawler/internal/parser"
)

// SharingPass repairs cross-diagram part sharing.
//
// During traversal, a detail page referenced by several sections of one
// listing page gets its parts attached to whichever section the transient
// mapping held (or the path fallback). This pass re-derives ground truth
// from the source: for every path backing more than one diagram it
// re-fetches the listing page fresh, recomputes the per-section detail-id
// sets, and inserts the part rows missing from diagrams that share a
// detail id. Inserts are keyed on (part_number, diagram_id), so the pass
// is idempotent and safe to re-run.
type SharingPass struct {
	db      *database.CatalogDB
	fetcher *fetcher.Fetcher
	logger  *slog.Logger
}

// NewSharingPass creates the cross-diagram sharing repair pass.
func NewSharingPass(db *database.CatalogDB, f *fetcher.Fetcher, logger *slog.Logger) *SharingPass {
	if logger == nil {
		logger = slog.Default()
	}
	return &SharingPass{db: db, fetcher: f, logger: logger}
}

// Run executes the pass over every shared path. A path whose listing page
// cannot be re-fetched, or whose current section count disagrees with the
// stored diagram count, is skipped with a warning; the remaining paths are
// still repaired.
func (p *SharingPass) Run(ctx context.Context) error {
	paths, err := p.db.SharedPaths(ctx)
	if err != nil {
		return err
	}
	p.logger.Info("cross-diagram sharing repair", "shared_paths", len(paths))

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.repairPath(ctx, path); err != nil {
			return err
		}
	}
	return nil
}

// repairPath repairs one shared path. Returned errors are store failures;
// source-side inconsistencies are logged and skipped.
func (p *SharingPass) repairPath(ctx context.Context, path string) error {
	diagrams, err := p.db.DiagramsForPath(ctx, path)
	if err != nil {
		return err
	}
	if len(diagrams) < 2 {
		return nil
	}

	listingURL := diagrams[0].SourceURL
	html, err := p.fetcher.Fetch(ctx, listingURL)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.logger.Warn("skipping path: listing page unavailable",
			"path", path, "url", listingURL, "error", err)
		return nil
	}

	doc, err := parser.NewDocument(html)
	if err != nil {
		p.logger.Warn("skipping path: listing page unparseable", "path", path, "error", err)
		return nil
	}

	sections := parser.DetailSections(doc, listingURL)
	if len(sections) != len(diagrams) {
		// The source has changed shape since the crawl; repairing
		// against it would attach parts to the wrong diagrams.
		p.logger.Warn("skipping path: section count disagrees with stored diagrams",
			"path", path, "sections", len(sections), "diagrams", len(diagrams))
		return nil
	}

	// Index the stored diagrams by id so sections resolve to them.
	diagramByID := make(map[string]model.Diagram, len(diagrams))
	for _, d := range diagrams {
		diagramByID[d.ID] = d
	}

	// Which sections reference each detail id.
	sharers := make(map[string][]string)
	for _, section := range sections {
		sectionID := path + "/" + section.Slug
		if _, ok := diagramByID[sectionID]; !ok {
			p.logger.Warn("skipping section: no stored diagram for derived id",
				"path", path, "section_id", sectionID)
			continue
		}
		for _, detailID := range section.DetailIDs {
			sharers[detailID] = append(sharers[detailID], sectionID)
		}
	}

	inserted := 0
	for detailID, sectionIDs := range sharers {
		if len(sectionIDs) < 2 {
			continue
		}
		n, err := p.shareParts(ctx, detailID, sectionIDs, diagramByID)
		if err != nil {
			return err
		}
		inserted += n
	}

	p.logger.Info("path repaired", "path", path, "inserted", inserted)
	return nil
}

// shareParts inserts the stored parts of one shared detail page into every
// sharing diagram that is missing them.
func (p *SharingPass) shareParts(ctx context.Context, detailID string, sectionIDs []string, diagramByID map[string]model.Diagram) (int, error) {
	parts, err := p.db.PartsByDetailPageID(ctx, detailID)
	if err != nil {
		return 0, err
	}
	if len(parts) == 0 {
		return 0, nil
	}

	inserted := 0
	for _, sectionID := range sectionIDs {
		diagram := diagramByID[sectionID]
		for _, part := range parts {
			shared := part
			shared.ID = 0
			shared.DiagramID = diagram.ID
			shared.SubgroupID = diagram.SubgroupID
			shared.GroupID = diagram.GroupID
			ok, err := p.db.InsertPartIfAbsent(ctx, &shared)
			if err != nil {
				return inserted, err
			}
			if ok {
				inserted++
			}
		}
	}
	return inserted, nil
}
