package parser

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"delica-crawler/internal/model"
)

// DetailSections extracts the named diagram sections from one listing page.
//
// A section is a headed <td> block: its heading text names the diagram, an
// optional <img> carries the illustration, and the links and image-map
// areas inside the block reference detail-page ids. Detail ids are
// de-duplicated within a section (the image map and the text list usually
// both point at each target) but deliberately not across sections: the same
// detail page can legitimately belong to more than one diagram.
func DetailSections(doc *goquery.Document, pageURL string) []model.Section {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	usedSlugs := make(map[string]int)
	sections := make([]model.Section, 0, 4)

	doc.Find("td").Each(func(_ int, td *goquery.Selection) {
		heading := td.Find("h2, h3").First()
		if heading.Length() == 0 {
			return
		}
		name := collapseSpace(heading.Text())
		if name == "" {
			return
		}

		section := model.Section{
			Name: name,
			Slug: uniqueSlug(Slugify(name), usedSlugs),
		}

		if src, ok := td.Find("img").First().Attr("src"); ok {
			if ref, err := url.Parse(strings.TrimSpace(src)); err == nil {
				section.ImageURL = base.ResolveReference(ref).String()
			}
		}

		seen := make(map[string]bool)
		td.Find("a[href], area[href]").Each(func(_ int, link *goquery.Selection) {
			href, _ := link.Attr("href")
			id, ok := detailIDUnder(base, href)
			if !ok || seen[id] {
				return
			}
			seen[id] = true
			section.DetailIDs = append(section.DetailIDs, id)
		})

		sections = append(sections, section)
	})

	return sections
}

// uniqueSlug makes slug unique within one page by suffixing a counter on
// repeats. Repeated headings are rare but the source does produce them on a
// few accessory pages; identity must still be deterministic and distinct.
func uniqueSlug(slug string, used map[string]int) string {
	used[slug]++
	if n := used[slug]; n > 1 {
		return fmt.Sprintf("%s_%d", slug, n)
	}
	return slug
}

// collapseSpace trims text and folds internal whitespace runs to single
// spaces; the source's markup is littered with newlines and nbsp padding.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, " ", " ")), " ")
}
