package database

import (
	"context"
	"strings"
	"testing"

	"delica-crawler/internal/model"
)

func TestSearchParts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openTestDB(t)
	diagram := seedDiagram(t, db, "body/windscreen", "windscreen")

	parts := []*model.Part{
		{
			PartNumber:  "MB337322",
			Description: strPtr("Windscreen Washer Tank"),
			DiagramID:   diagram.ID,
			GroupID:     diagram.GroupID,
			SubgroupID:  diagram.SubgroupID,
		},
		{
			PartNumber:  "MD050317",
			Description: strPtr("Gasket, Rocker Cover"),
			DiagramID:   diagram.ID,
			GroupID:     diagram.GroupID,
			SubgroupID:  diagram.SubgroupID,
		},
	}
	for _, p := range parts {
		if _, err := db.InsertPartIfAbsent(ctx, p); err != nil {
			t.Fatalf("failed to insert part: %v", err)
		}
	}

	t.Run("matches description terms", func(t *testing.T) {
		results, err := db.SearchParts(ctx, "washer tank", 10)
		if err != nil {
			t.Fatalf("SearchParts() error: %v", err)
		}
		if len(results) != 1 || results[0].PartNumber != "MB337322" {
			t.Errorf("unexpected results: %+v", results)
		}
		if results[0].GroupName == "" {
			t.Error("group name not joined into result")
		}
	})

	t.Run("matches part number prefixes", func(t *testing.T) {
		results, err := db.SearchParts(ctx, "MB3373", 10)
		if err != nil {
			t.Fatalf("SearchParts() error: %v", err)
		}
		if len(results) != 1 || results[0].PartNumber != "MB337322" {
			t.Errorf("unexpected results: %+v", results)
		}
	})

	t.Run("expands regional synonyms", func(t *testing.T) {
		// The catalog says "windscreen"; the query says "windshield".
		results, err := db.SearchParts(ctx, "windshield", 10)
		if err != nil {
			t.Fatalf("SearchParts() error: %v", err)
		}
		if len(results) != 1 || results[0].PartNumber != "MB337322" {
			t.Errorf("synonym expansion failed: %+v", results)
		}
	})

	t.Run("expands misspellings", func(t *testing.T) {
		results, err := db.SearchParts(ctx, "gascket", 10)
		if err != nil {
			t.Fatalf("SearchParts() error: %v", err)
		}
		if len(results) != 1 || results[0].PartNumber != "MD050317" {
			t.Errorf("misspelling expansion failed: %+v", results)
		}
	})

	t.Run("empty query yields no results", func(t *testing.T) {
		results, err := db.SearchParts(ctx, "   ", 10)
		if err != nil {
			t.Fatalf("SearchParts() error: %v", err)
		}
		if results != nil {
			t.Errorf("expected nil results, got %+v", results)
		}
	})

	t.Run("deleted parts drop out of the index", func(t *testing.T) {
		gasket, err := db.FindPart(ctx, "MD050317", diagram.ID)
		if err != nil || gasket == nil {
			t.Fatalf("FindPart() error: %v", err)
		}
		if err := db.DeletePart(ctx, gasket.ID); err != nil {
			t.Fatalf("DeletePart() error: %v", err)
		}

		results, err := db.SearchParts(ctx, "gasket", 10)
		if err != nil {
			t.Fatalf("SearchParts() error: %v", err)
		}
		if len(results) != 0 {
			t.Errorf("deleted part still searchable: %+v", results)
		}
	})
}

func TestExpandQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "plain token",
			query: "bolt",
			want:  `"bolt"*`,
		},
		{
			name:  "tokens are ANDed",
			query: "washer tank",
			want:  `"washer"* AND "tank"*`,
		},
		{
			name:  "synonym becomes an OR group",
			query: "hood",
			want:  `("hood"* OR "bonnet"*)`,
		},
		{
			name:  "empty query",
			query: "  ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := expandQuery(tt.query); got != tt.want {
				t.Errorf("expandQuery(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestFTSTerm(t *testing.T) {
	t.Parallel()

	if got := ftsTerm("a/t"); got != `"a/t"*` {
		t.Errorf("ftsTerm slash quoting = %q", got)
	}
	if got := ftsTerm(`he said "hi"`); !strings.Contains(got, `""hi""`) {
		t.Errorf("ftsTerm quote escaping = %q", got)
	}
}
