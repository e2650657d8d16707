package parser

import "testing"

func TestIndexCategories(t *testing.T) {
	t.Parallel()

	t.Run("extracts coded categories in order", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<a href="engine/">11 ENGINE</a>
			<a href="electrical/">54 ELECTRICAL</a>
			<a href="/delica_space_gear/pd6w/hseue9/body/">42 BODY</a>
			<a href="about/">About this site</a>
		</body></html>`

		doc, err := NewDocument(html)
		if err != nil {
			t.Fatalf("failed to parse document: %v", err)
		}

		categories := IndexCategories(doc, vehicleBase)
		if len(categories) != 3 {
			t.Fatalf("expected 3 categories, got %d", len(categories))
		}

		first := categories[0]
		if first.Code != "11" || first.Name != "ENGINE" || first.Slug != "engine" {
			t.Errorf("unexpected first category: %+v", first)
		}
		if first.URL != vehicleBase+"engine/" {
			t.Errorf("unexpected category URL: %q", first.URL)
		}
		if categories[2].Slug != "body" {
			t.Errorf("absolute-path category not resolved: %+v", categories[2])
		}
	})

	t.Run("duplicate slugs are dropped", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<a href="engine/">11 ENGINE</a>
			<a href="engine/">11 ENGINE</a>
		</body></html>`

		doc, err := NewDocument(html)
		if err != nil {
			t.Fatalf("failed to parse document: %v", err)
		}
		if categories := IndexCategories(doc, vehicleBase); len(categories) != 1 {
			t.Errorf("expected 1 category, got %d", len(categories))
		}
	})

	t.Run("external hosts are ignored", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<a href="https://other.example.com/engine/">11 ENGINE</a>
		</body></html>`

		doc, err := NewDocument(html)
		if err != nil {
			t.Fatalf("failed to parse document: %v", err)
		}
		if categories := IndexCategories(doc, vehicleBase); len(categories) != 0 {
			t.Errorf("expected no categories, got %d", len(categories))
		}
	})
}
