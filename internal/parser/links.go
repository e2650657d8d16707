package parser

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// quickSearchSegment is a search feature path on the site. It lives under
// the vehicle prefix but is not a parts category, so traversal must not
// descend into it.
const quickSearchSegment = "quick_search"

// chromeSelector matches navigation chrome whose links (breadcrumbs, model
// switcher, pagination of unrelated vehicles) must not be traversed.
const chromeSelector = "nav, header, footer, .breadcrumbs, .breadcrumb, #header, #footer, .nav"

// PageLinks recovers outbound links from a page, restricted to the vehicle's
// URL path prefix. External domains, navigation chrome, and the quick-search
// feature path are excluded. Results are absolute URLs with query and
// fragment stripped and a trailing slash, de-duplicated in discovery order.
func PageLinks(doc *goquery.Document, pageURL, vehicleBase string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	links := make([]string, 0, 32)

	doc.Find("a[href], area[href]").Each(func(_ int, sel *goquery.Selection) {
		if sel.ParentsFiltered(chromeSelector).Length() > 0 {
			return
		}

		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || href == "#" ||
			strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref)
		resolved.RawQuery = ""
		resolved.Fragment = ""
		if !strings.HasSuffix(resolved.Path, "/") {
			resolved.Path += "/"
		}

		abs := resolved.String()
		if !strings.HasPrefix(abs, vehicleBase) {
			return
		}
		if strings.Contains(resolved.Path, "/"+quickSearchSegment+"/") {
			return
		}
		if seen[abs] {
			return
		}
		seen[abs] = true
		links = append(links, abs)
	})

	return links
}
