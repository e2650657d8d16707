package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"delica-crawler/internal/model"
)

// searchSynonyms maps common search terms to the vocabulary the source
// actually uses in part descriptions, including trade-name variants and
// the abbreviations the catalog is full of. This is a static lookup
// utility, not an algorithm: each matched query token is expanded into an
// OR group of its alternates.
var searchSynonyms = map[string][]string{
	// Regional vocabulary
	"windshield": {"windscreen"},
	"hood":       {"bonnet"},
	"fender":     {"mudguard", "overfender"},
	"muffler":    {"silencer"},
	"shock":      {"shock", "absorber", "damper"},

	// Catalog abbreviations
	"transmission": {"transmission", "t/m"},
	"automatic":    {"automatic", "a/t"},
	"manual":       {"manual", "m/t"},
	"aircon":       {"aircon", "a/c"},
	"ac":           {"a/c", "aircon"},
	"4wd":          {"4wd", "four wheel drive"},

	// Frequent misspellings seen in issue reports
	"gascket":    {"gasket"},
	"gaskit":     {"gasket"},
	"alternater": {"alternator"},
	"breaks":     {"brake"},
}

// SearchResult is one full-text search hit.
type SearchResult struct {
	model.Part

	// GroupName and SubgroupName locate the hit for display.
	GroupName    string
	SubgroupName string
}

// SearchParts runs a full-text query over part numbers and descriptions
// with synonym and abbreviation expansion. Each query token becomes a
// prefix-matched term; tokens with known alternates become OR groups, and
// the groups are ANDed together.
func (cdb *CatalogDB) SearchParts(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	matchExpr := expandQuery(query)
	if matchExpr == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := cdb.db.QueryContext(ctx, `
		SELECT p.id, p.detail_page_id, p.part_number, p.pnc, p.description, p.ref_number,
		       p.quantity, p.spec, p.notes, p.color, p.model_date_range,
		       p.diagram_id, p.group_id, p.subgroup_id,
		       p.replacement_part_number, p.replaces_part_number,
		       g.name, COALESCE(s.name, '')
		FROM parts p
		JOIN parts_fts fts ON p.id = fts.rowid
		JOIN groups g ON p.group_id = g.id
		LEFT JOIN subgroups s ON p.subgroup_id = s.id
		WHERE parts_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, matchExpr, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search parts: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var detailPageID, subgroupID sql.NullString
		if err := rows.Scan(
			&r.ID, &detailPageID, &r.PartNumber, &r.PNC, &r.Description, &r.RefNumber,
			&r.Quantity, &r.Spec, &r.Notes, &r.Color, &r.ModelDateRange,
			&r.DiagramID, &r.GroupID, &subgroupID,
			&r.ReplacementPartNumber, &r.ReplacesPartNumber,
			&r.GroupName, &r.SubgroupName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		r.Part.DetailPageID = detailPageID.String
		r.Part.SubgroupID = subgroupID.String
		results = append(results, r)
	}
	return results, rows.Err()
}

// expandQuery builds the FTS5 MATCH expression for a user query.
// Tokens are lowercased, quoted, prefix-matched, and expanded through the
// synonym table; an empty query yields an empty expression.
func expandQuery(query string) string {
	tokens := strings.Fields(strings.ToLower(query))
	if len(tokens) == 0 {
		return ""
	}

	groups := make([]string, 0, len(tokens))
	for _, token := range tokens {
		token = strings.Trim(token, `"'`)
		if token == "" {
			continue
		}
		alternates := searchSynonyms[token]
		terms := make([]string, 0, len(alternates)+1)
		terms = append(terms, ftsTerm(token))
		for _, alt := range alternates {
			if alt != token {
				terms = append(terms, ftsTerm(alt))
			}
		}
		if len(terms) == 1 {
			groups = append(groups, terms[0])
		} else {
			groups = append(groups, "("+strings.Join(terms, " OR ")+")")
		}
	}
	return strings.Join(groups, " AND ")
}

// ftsTerm quotes one term for FTS5 with prefix matching. Quoting keeps
// tokens with slashes ("a/t") from being read as syntax.
func ftsTerm(term string) string {
	return `"` + strings.ReplaceAll(term, `"`, `""`) + `"*`
}
