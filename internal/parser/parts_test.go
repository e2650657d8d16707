package parser

import (
	"reflect"
	"testing"

	"delica-crawler/internal/model"
)

// singleRecordCells is a flat cell sequence as the source lays it out: the
// inline column headers followed by one part record.
var singleRecordCells = []string{
	"No", "PNC", "OEM Part Number", "Qty", "Description", "Spec", "Notes", "Color", "Date Range",
	"04403", "02878C", "MD123456", "2", "Bolt, Flange", "M8", "", "Black", "1994.05-1997.08",
}

func TestScanPartCells(t *testing.T) {
	t.Parallel()

	t.Run("recovers a single record with all fields", func(t *testing.T) {
		t.Parallel()

		rows := ScanPartCells(singleRecordCells)
		if len(rows) != 1 {
			t.Fatalf("expected 1 row, got %d", len(rows))
		}

		want := model.PartRow{
			PartNumber:     "MD123456",
			PNC:            "02878C",
			RefNumber:      "04403",
			Quantity:       "2",
			Description:    "Bolt, Flange",
			Spec:           "M8",
			Notes:          "",
			Color:          "Black",
			ModelDateRange: "1994.05-1997.08",
		}
		if !reflect.DeepEqual(rows[0], want) {
			t.Errorf("row mismatch:\n got  %+v\n want %+v", rows[0], want)
		}
	})

	t.Run("recovers multiple stacked records", func(t *testing.T) {
		t.Parallel()

		cells := []string{
			"No", "PNC", "OEM Part Number", "Qty", "Description", "Spec", "Notes", "Color", "Date Range",
			"04403", "02878C", "MD123456", "2", "Bolt, Flange", "M8", "", "Black", "1994.05-1997.08",
			"04404", "02879", "MB430287", "1", "Washer", "", "", "", "1997.08 -",
		}

		rows := ScanPartCells(cells)
		if len(rows) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(rows))
		}
		if rows[0].PartNumber != "MD123456" || rows[1].PartNumber != "MB430287" {
			t.Errorf("unexpected part numbers: %q, %q", rows[0].PartNumber, rows[1].PartNumber)
		}
		if rows[1].ModelDateRange != "1997.08 -" {
			t.Errorf("expected open-ended date range, got %q", rows[1].ModelDateRange)
		}
	})

	t.Run("date range past the next anchor is not claimed", func(t *testing.T) {
		t.Parallel()

		// The first record carries no date range of its own; the scanner
		// must not reach into the second record's cells for one.
		cells := []string{
			"04403", "02878", "MD111111", "1", "Bracket", "", "", "",
			"04404", "02879", "MD222222", "1", "Clip", "", "", "", "1994.05-1997.08",
		}

		rows := ScanPartCells(cells)
		if len(rows) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(rows))
		}
		if rows[0].ModelDateRange != "" {
			t.Errorf("first record claimed the second record's date range: %q", rows[0].ModelDateRange)
		}
		if rows[1].ModelDateRange != "1994.05-1997.08" {
			t.Errorf("second record lost its date range: %q", rows[1].ModelDateRange)
		}
	})

	t.Run("captures replaces reference within the window", func(t *testing.T) {
		t.Parallel()

		cells := []string{
			"04403", "02878", "MD999999", "1", "Gasket, Rocker Cover", "", "", "",
			"Replaces: MD050317",
		}

		rows := ScanPartCells(cells)
		if len(rows) != 1 {
			t.Fatalf("expected 1 row, got %d", len(rows))
		}
		if rows[0].ReplacesPartNumber != "MD050317" {
			t.Errorf("expected replaces reference MD050317, got %q", rows[0].ReplacesPartNumber)
		}
	})

	t.Run("rejects malformed PNC slot", func(t *testing.T) {
		t.Parallel()

		cells := []string{"04403", "not-a-pnc", "MD123456", "1", "Bolt"}

		rows := ScanPartCells(cells)
		if len(rows) != 1 {
			t.Fatalf("expected 1 row, got %d", len(rows))
		}
		if rows[0].PNC != "" {
			t.Errorf("malformed PNC accepted: %q", rows[0].PNC)
		}
	})

	t.Run("header text never becomes a field value", func(t *testing.T) {
		t.Parallel()

		// A record at the end of the sequence whose trailing offsets run
		// into the next header block.
		cells := []string{
			"04403", "02878", "MD123456", "1", "Description", "Spec", "Notes", "Color",
		}

		rows := ScanPartCells(cells)
		if len(rows) != 1 {
			t.Fatalf("expected 1 row, got %d", len(rows))
		}
		row := rows[0]
		if row.Description != "" || row.Spec != "" || row.Notes != "" || row.Color != "" {
			t.Errorf("header text leaked into fields: %+v", row)
		}
	})

	t.Run("empty input yields no rows", func(t *testing.T) {
		t.Parallel()

		if rows := ScanPartCells(nil); len(rows) != 0 {
			t.Errorf("expected no rows, got %d", len(rows))
		}
	})

	t.Run("identical input yields identical output", func(t *testing.T) {
		t.Parallel()

		first := ScanPartCells(singleRecordCells)
		second := ScanPartCells(singleRecordCells)
		if !reflect.DeepEqual(first, second) {
			t.Error("scanner output differs between identical runs")
		}
	})
}

func TestIsOEMShape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		token string
		want  bool
	}{
		{"MD123456", true},
		{"MB430287", true},
		{"MR4512", true},
		{"MB430287AB", true},
		{"04403", false},     // no letter prefix
		{"ABCD1234", false},  // prefix too long
		{"MD123", false},     // digit run too short
		{"Bolt", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			t.Parallel()
			if got := isOEMShape(tt.token); got != tt.want {
				t.Errorf("isOEMShape(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestPartsTableCells(t *testing.T) {
	t.Parallel()

	html := `<html><body>
		<table class="parts">
			<tr><th>PNC</th><th>OEM Part Number</th></tr>
			<tr><td>02878</td><td>  MD123456
			</td></tr>
		</table>
		<table><tr><td>not a parts table</td></tr></table>
	</body></html>`

	doc, err := NewDocument(html)
	if err != nil {
		t.Fatalf("failed to parse document: %v", err)
	}

	cells := PartsTableCells(doc)
	want := []string{"PNC", "OEM Part Number", "02878", "MD123456"}
	if !reflect.DeepEqual(cells, want) {
		t.Errorf("cells = %v, want %v", cells, want)
	}
}
