// Package parser classifies pages from the parts-diagram site and extracts
// typed records from them.
//
// The site is not an API: it is a loosely-structured HTML layout with no
// stable schema, so extraction is heuristic and positional. Each page is
// classified once into a tagged kind (index, category, listing, detail) and
// then dispatched to a pure extraction function for that kind.
//
// # Components
//
//   - Classify / HasPartsTable / IsSubcategoryListing: structural page
//     classification
//   - IndexCategories: top-level categories from the index page
//   - DetailSections: named diagram sections from a listing page
//   - PartsTableCells + ScanPartCells: the flat-cell part scanner
//   - PageLinks: outbound links restricted to the vehicle path prefix
//
// Design decision: The part scanner operates on a flat []string of cell
// texts rather than on HTML nodes. The source's parts table has no reliable
// column boundaries, so the scanner anchors on OEM part-number shaped tokens
// and reads fixed relative offsets around each anchor. Keeping it a pure
// function over a token slice makes the hardest routine unit-testable
// without network access or markup fixtures.
package parser
