package model

// Group is a top-level parts category from the index page.
// The ID is the URL slug of the category path segment and is the stable
// identity; the display name keeps the source's two-digit code prefix.
type Group struct {
	// ID is the URL-derived slug (e.g. "engine").
	ID string

	// Code is the two-digit category code printed on the index page
	// (e.g. "11"). Kept for display ordering; not part of identity.
	Code string

	// Name is the human-readable category name.
	Name string
}

// Subgroup is a subcategory below a Group. A listing page with several
// diagram sections produces several Subgroups sharing one Path.
type Subgroup struct {
	// ID is unique per diagram section. For a single-section listing page
	// it equals Path; for multi-section pages it is Path + "/" + section slug.
	ID string

	// Name is the section heading text.
	Name string

	// GroupID references the owning Group.
	GroupID string

	// Path is "groupSlug/subgroupSlug", shared by every section of one
	// listing page. All Subgroups with the same Path belong to one Group.
	Path string
}

// Diagram is one parts illustration. Its ID always equals the ID of its
// Subgroup (one diagram per section).
type Diagram struct {
	ID         string
	GroupID    string
	SubgroupID string
	Name       string

	// ImageURL is the absolute URL of the diagram illustration, empty when
	// the section had no image.
	ImageURL string

	// ImagePath is the local file path of the downloaded illustration.
	// Filled by the image download step, empty until then.
	ImagePath string

	// SourceURL is the listing page the diagram was extracted from.
	SourceURL string
}

// Part is one catalog row extracted from a detail page.
//
// (PartNumber, DiagramID) is unique in the store: the same physical part may
// legitimately appear under several diagrams, each occurrence being its own
// row. Nullable scalars are pointers so the store can distinguish "absent"
// from "empty", matching the columns the browsing TUI reads.
type Part struct {
	// ID is the store rowid, zero before insertion.
	ID int64

	// DetailPageID is the numeric id of the detail page the row came from.
	DetailPageID string

	PartNumber     string
	PNC            *string
	Description    *string
	RefNumber      *string
	Quantity       *int
	Spec           *string
	Notes          *string
	Color          *string
	ModelDateRange *string

	DiagramID  string
	GroupID    string
	SubgroupID string

	// ReplacementPartNumber is set by the replacement-merge repair pass on
	// the superseded row; nil during normal extraction.
	ReplacementPartNumber *string

	// ReplacesPartNumber is the crawler-side supersession reference: the
	// part number this row replaces, captured from a "Replaces:" cell.
	// Consumed and cleared by the replacement-merge pass; never read by
	// the browsing TUI.
	ReplacesPartNumber *string
}

// Category is one entry extracted from the index page, before it is
// persisted as a Group.
type Category struct {
	// Code is the two-digit category code.
	Code string

	// Name is the category display name.
	Name string

	// Slug is the URL-derived identity.
	Slug string

	// URL is the absolute URL of the category page.
	URL string
}

// Section is one named diagram grouping extracted from a listing page.
type Section struct {
	// Name is the section heading.
	Name string

	// Slug is derived from the heading and used only for identity.
	Slug string

	// ImageURL is the absolute diagram illustration URL, empty if the
	// section carries no image.
	ImageURL string

	// DetailIDs are the numeric detail-page ids referenced by links and
	// image-map areas inside the section. De-duplicated within the
	// section, deliberately not across sections: the same detail page can
	// belong to more than one diagram.
	DetailIDs []string
}

// PartRow is one record recovered by the flat-cell scanner from a parts
// table, before reconciliation attaches it to a diagram.
type PartRow struct {
	PartNumber     string
	PNC            string
	RefNumber      string
	Quantity       string
	Description    string
	Spec           string
	Notes          string
	Color          string
	ModelDateRange string

	// ReplacesPartNumber is the supersession reference ("Replaces: X"),
	// empty for ordinary rows.
	ReplacesPartNumber string
}
