package parser

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"delica-crawler/internal/model"
)

// categoryTextPattern matches index-page category anchors: a two-digit
// category code followed by the display name.
var categoryTextPattern = regexp.MustCompile(`^([0-9]{2}) +(.+)$`)

// IndexCategories extracts the ordered list of top-level categories from the
// vehicle index page. A category anchor's text starts with a two-digit code
// ("11 ENGINE"); its slug identity comes from the link's last path segment.
// Duplicate slugs are dropped because the source emits some categories twice
// (once in the overview strip, once in the main list).
func IndexCategories(doc *goquery.Document, pageURL string) []model.Category {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	categories := make([]model.Category, 0, 32)

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		text := collapseSpace(sel.Text())
		m := categoryTextPattern.FindStringSubmatch(text)
		if m == nil {
			return
		}

		href, _ := sel.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref)
		if resolved.Host != base.Host {
			return
		}

		segments := pathSegments(resolved.Path)
		if len(segments) == 0 {
			return
		}
		slug := segments[len(segments)-1]
		if slug == "" || seen[slug] {
			return
		}
		seen[slug] = true

		resolved.RawQuery = ""
		resolved.Fragment = ""
		if !strings.HasSuffix(resolved.Path, "/") {
			resolved.Path += "/"
		}

		categories = append(categories, model.Category{
			Code: m[1],
			Name: m[2],
			Slug: slug,
			URL:  resolved.String(),
		})
	})

	return categories
}
