package parser

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PageKind is the classification of one fetched page.
// Every page is classified exactly once; extraction dispatches on the kind.
type PageKind int

const (
	// KindUnknown is a page that matches no known shape. It is traversed
	// for links but yields no records.
	KindUnknown PageKind = iota

	// KindIndex is the vehicle's top page listing the parts categories.
	KindIndex

	// KindCategory is an intermediate category page linking to listing
	// pages; it carries no diagram sections of its own.
	KindCategory

	// KindListing is a subcategory listing page with one or more named
	// diagram sections referencing detail pages.
	KindListing

	// KindDetail is a leaf page carrying the parts table for one diagram.
	KindDetail
)

// String returns the kind name for logging.
func (k PageKind) String() string {
	switch k {
	case KindIndex:
		return "index"
	case KindCategory:
		return "category"
	case KindListing:
		return "listing"
	case KindDetail:
		return "detail"
	default:
		return "unknown"
	}
}

// partsTableSelector matches the marker element present only on detail
// pages. The class is the one structural invariant the source has kept
// across layout revisions.
const partsTableSelector = "table.parts"

// listingMinDepth is the minimum number of URL path segments for a
// subcategory listing page: vehicle path, frame, trim, group, subgroup.
const listingMinDepth = 5

// detailIDPattern matches the numeric id path segment of a detail page.
var detailIDPattern = regexp.MustCompile(`^[0-9]{3,6}$`)

// NewDocument parses raw HTML into a goquery document.
func NewDocument(htmlSrc string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(htmlSrc))
}

// HasPartsTable reports whether the page carries the parts-table marker
// element, which identifies a detail page.
func HasPartsTable(doc *goquery.Document) bool {
	return doc.Find(partsTableSelector).Length() > 0
}

// IsSubcategoryListing reports whether the page is an intermediate listing
// page: it lacks a parts table, its URL path is at the minimum nesting
// depth, and it links to at least one numeric detail-page id under its own
// path. The last condition is what separates a listing page from chrome
// pages at the same depth.
func IsSubcategoryListing(doc *goquery.Document, pageURL string) bool {
	if HasPartsTable(doc) {
		return false
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	if len(pathSegments(base.Path)) < listingMinDepth {
		return false
	}

	found := false
	doc.Find("a[href], area[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok {
			return true
		}
		if _, ok := detailIDUnder(base, href); ok {
			found = true
			return false
		}
		return true
	})
	return found
}

// Classify determines the page kind.
// vehicleBase is the crawl root (the vehicle's index page URL).
func Classify(doc *goquery.Document, pageURL, vehicleBase string) PageKind {
	if normalizePath(pageURL) == normalizePath(vehicleBase) {
		return KindIndex
	}
	if HasPartsTable(doc) {
		return KindDetail
	}
	if IsSubcategoryListing(doc, pageURL) {
		return KindListing
	}

	u, err := url.Parse(pageURL)
	if err != nil {
		return KindUnknown
	}
	if len(pathSegments(u.Path)) >= listingMinDepth-1 {
		return KindCategory
	}
	return KindUnknown
}

// detailIDUnder resolves href against the page URL and, when the result is
// a numeric detail-page id directly under the page's own path, returns
// that id.
func detailIDUnder(base *url.URL, href string) (string, bool) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}
	resolved := base.ResolveReference(ref)
	if resolved.Host != base.Host {
		return "", false
	}

	basePath := strings.TrimSuffix(base.Path, "/")
	rest := strings.TrimPrefix(resolved.Path, basePath+"/")
	if rest == resolved.Path {
		return "", false
	}
	rest = strings.TrimSuffix(rest, "/")
	if detailIDPattern.MatchString(rest) {
		return rest, true
	}
	return "", false
}

// pathSegments splits a URL path into its non-empty segments.
func pathSegments(path string) []string {
	segments := make([]string, 0, 8)
	for _, segment := range strings.Split(path, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}

// normalizePath reduces a URL to scheme://host/path with a trailing slash
// and no query or fragment, for identity comparisons.
func normalizePath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)
	u.Scheme = strings.ToLower(u.Scheme)
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}
