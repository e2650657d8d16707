package repair

import (
	"context"
	"log/slog"

	"delica-crawler/internal/database"
)

// ReplacementPass merges replacement rows into the parts they supersede.
//
// The parser records a "Replaces: X" cell on the replacement row itself.
// This pass resolves each such row against its own diagram: when the
// replaced part exists there, the replacement's number is written onto the
// replaced part and the replacement row is deleted. A second run finds no
// rows with a replaces reference left to merge, so the pass is idempotent.
type ReplacementPass struct {
	db     *database.CatalogDB
	logger *slog.Logger
}

// NewReplacementPass creates the replacement-merge repair pass.
func NewReplacementPass(db *database.CatalogDB, logger *slog.Logger) *ReplacementPass {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReplacementPass{db: db, logger: logger}
}

// Run merges every resolvable replacement row. Rows whose replaced part is
// not present in the same diagram are left untouched and logged; they stay
// in the catalog as ordinary parts.
func (p *ReplacementPass) Run(ctx context.Context) error {
	rows, err := p.db.PartsWithReplaces(ctx)
	if err != nil {
		return err
	}
	p.logger.Info("replacement-merge repair", "candidates", len(rows))

	merged := 0
	for _, replacement := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		if replacement.ReplacesPartNumber == nil {
			continue
		}

		replaced, err := p.db.FindPart(ctx, *replacement.ReplacesPartNumber, replacement.DiagramID)
		if err != nil {
			return err
		}
		if replaced == nil {
			p.logger.Warn("replaced part not found in diagram, keeping replacement row",
				"part_number", replacement.PartNumber,
				"replaces", *replacement.ReplacesPartNumber,
				"diagram_id", replacement.DiagramID)
			continue
		}

		if err := p.db.SetReplacementPartNumber(ctx, replaced.ID, replacement.PartNumber); err != nil {
			return err
		}
		if err := p.db.DeletePart(ctx, replacement.ID); err != nil {
			return err
		}
		merged++
	}

	p.logger.Info("replacement rows merged", "merged", merged)
	return nil
}
