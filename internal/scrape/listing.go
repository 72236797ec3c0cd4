package scrape

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// TablesUnder returns the data tables belonging to the named section.
//
// It scans the page's level-2 and level-3 headings in document order and
// matches the first whose normalized title starts with heading
// (case-insensitive). From there it collects every wikitable until the
// next h2/h3. A missing heading yields an empty result: the section is
// simply absent from this revision of the page.
func TablesUnder(doc *goquery.Document, heading string) []*goquery.Selection {
	want := strings.ToLower(heading)

	var tables []*goquery.Selection
	collecting := false
	doc.Find("#bodyContent h2, #bodyContent h3, #bodyContent table.wikitable").
		EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			switch goquery.NodeName(sel) {
			case "h2", "h3":
				if collecting {
					return false
				}
				if strings.HasPrefix(strings.ToLower(headingTitle(sel)), want) {
					collecting = true
				}
			case "table":
				if collecting {
					tables = append(tables, sel)
				}
			}
			return true
		})
	return tables
}

// headingTitle normalizes a heading's text, dropping the "[edit]" link
// artifact that Wikipedia appends to section titles.
func headingTitle(sel *goquery.Selection) string {
	return CleanText(strings.ReplaceAll(sel.Text(), "[edit]", ""))
}

// BuildRecords converts the rows of the given section tables into
// records tagged with the section's authority label. Relative detail
// links are resolved against base.
func BuildRecords(tables []*goquery.Selection, authority string, base *url.URL) []Record {
	var records []Record
	for _, table := range tables {
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			if rec, ok := buildRecord(tr, authority, base); ok {
				records = append(records, rec)
			}
		})
	}
	return records
}

func buildRecord(tr *goquery.Selection, authority string, base *url.URL) (Record, bool) {
	cells := tr.Find("td, th")
	if cells.Length() < 2 {
		// Malformed or decorative row.
		return Record{}, false
	}

	first := cells.Eq(0)
	if goquery.NodeName(first) == "th" {
		// Intra-table header repeat, not data.
		return Record{}, false
	}

	name := CleanText(first.Text())
	if name == "" {
		return Record{}, false
	}

	rec := Record{
		Authority: authority,
		Name:      name,
		City:      CleanText(cells.Eq(1).Text()),
		Coords:    ExtractCoordinates(tr),
	}

	if href, ok := first.Find("a[href]").First().Attr("href"); ok {
		if ref, err := url.Parse(href); err == nil {
			rec.DetailURL = base.ResolveReference(ref).String()
		}
	}

	return rec, true
}
