package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"delica-crawler/internal/model"
)

// oemPartPattern matches OEM part-number shaped tokens: a short letter
// prefix followed by a digit-heavy suffix with an optional short
// alphanumeric tail ("MD123456", "MB430287AB"). These tokens are the
// anchors the flat-cell scanner keys on.
var oemPartPattern = regexp.MustCompile(`^[A-Z]{1,3}[0-9]{4,8}[A-Z0-9]{0,3}$`)

// pncPattern validates position codes: 4-5 digits with an optional short
// alphanumeric suffix ("02878", "02878C"). Anything else in the PNC slot is
// layout noise and is dropped.
var pncPattern = regexp.MustCompile(`^[0-9]{4,5}[A-Z0-9]{0,2}$`)

// dateRangePattern matches model date-range tokens ("1994.05-1997.08",
// "1994.05 -" for still-current parts).
var dateRangePattern = regexp.MustCompile(`^[0-9]{4}\.[0-9]{2}\s*-\s*(?:[0-9]{4}\.[0-9]{2})?$`)

// replacesPattern matches the supersession cell the source stacks under a
// replaced row ("Replaces: MD050317").
var replacesPattern = regexp.MustCompile(`(?i)^replaces[:. ]\s*([A-Z0-9]+)$`)

// headerTexts are column-header strings the source repeats inline in the
// cell sequence. Any extracted scalar equal to one of these is layout text,
// not data, and is rejected.
var headerTexts = map[string]bool{
	"no":               true,
	"pnc":              true,
	"oem part number":  true,
	"part number":      true,
	"qty":              true,
	"quantity":         true,
	"description":      true,
	"spec":             true,
	"note":             true,
	"notes":            true,
	"color":            true,
	"date range":       true,
	"model date range": true,
	"applicable model": true,
}

const (
	// dateScanWindow is how many cells past an anchor are scanned for a
	// date-range token.
	dateScanWindow = 15

	// nextRecordMinGap is the minimum offset at which another OEM-shaped
	// token is taken to be the next record's anchor. The ref-number and
	// PNC cells of record N+1 sit between the records, so a closer match
	// cannot be a real anchor.
	nextRecordMinGap = 6
)

// PartsTableCells flattens the parts table into its cell texts in document
// order. The table has no reliable column boundaries: header cells and the
// cells of several stacked records arrive as one flat sequence, which is
// exactly the shape ScanPartCells consumes.
func PartsTableCells(doc *goquery.Document) []string {
	cells := make([]string, 0, 64)
	doc.Find(partsTableSelector).First().Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		cells = append(cells, collapseSpace(cell.Text()))
	})
	return cells
}

// ScanPartCells recovers part records from a flat cell sequence.
//
// Every cell matching the OEM part-number shape (and not literal header
// text) is an anchor. Fixed relative offsets around the anchor are read as
// fields: two cells before it are the reference number and PNC, the cells
// after it are quantity, description, spec, notes and color, in the
// source's declared column order. A bounded forward window is then scanned
// for a date-range token, stopping early once another anchor past the
// minimum gap signals entry into the next record's cells.
//
// Known approximation, preserved on purpose: the fixed offsets assume no
// optional column is omitted. A page that drops one silently misaligns the
// trailing fields of that record; we do not detect or correct the drift.
//
// The function is pure: identical input yields an identical ordered result.
func ScanPartCells(cells []string) []model.PartRow {
	rows := make([]model.PartRow, 0, 8)

	for i, cell := range cells {
		anchor := strings.TrimSpace(cell)
		if !isOEMShape(anchor) || isHeaderText(anchor) {
			continue
		}

		row := model.PartRow{PartNumber: anchor}
		if i >= 2 {
			row.RefNumber = fieldAt(cells, i-2)
		}
		if i >= 1 {
			if pnc := fieldAt(cells, i-1); pncPattern.MatchString(pnc) {
				row.PNC = pnc
			}
		}
		row.Quantity = fieldAt(cells, i+1)
		row.Description = fieldAt(cells, i+2)
		row.Spec = fieldAt(cells, i+3)
		row.Notes = fieldAt(cells, i+4)
		row.Color = fieldAt(cells, i+5)

		for j := i + 1; j <= i+dateScanWindow && j < len(cells); j++ {
			token := strings.TrimSpace(cells[j])
			if j-i >= nextRecordMinGap && isOEMShape(token) && !isHeaderText(token) {
				// Entered the next record's cells; a date range found
				// past this point would belong to that record.
				break
			}
			if row.ModelDateRange == "" && dateRangePattern.MatchString(token) {
				row.ModelDateRange = token
			}
			if m := replacesPattern.FindStringSubmatch(token); m != nil {
				row.ReplacesPartNumber = strings.ToUpper(m[1])
			}
		}

		rows = append(rows, row)
	}

	return rows
}

// isOEMShape reports whether the token has the OEM part-number shape.
func isOEMShape(token string) bool {
	return oemPartPattern.MatchString(token)
}

// isHeaderText reports whether the value is literal column-header text.
func isHeaderText(value string) bool {
	return headerTexts[strings.ToLower(strings.TrimSpace(value))]
}

// fieldAt reads one scalar cell, returning "" when the index is out of
// range or the cell is header text.
func fieldAt(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	value := strings.TrimSpace(cells[i])
	if isHeaderText(value) {
		return ""
	}
	return value
}
