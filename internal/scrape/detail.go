package scrape

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// bedsLabelPrefix matches infobox labels like "Beds" or "Beds (2020)".
const bedsLabelPrefix = "beds"

// bedsDigitsRE captures the first run of 1-4 digits in a bed-count cell.
var bedsDigitsRE = regexp.MustCompile(`\d{1,4}`)

// DetailInfo holds everything extractable from one facility detail page.
type DetailInfo struct {
	Coords *Coordinates
	// Beds is the parsed bed count; it stays nil when the labeled cell
	// holds no usable number, even if BedsRaw is set.
	Beds    *int
	BedsRaw string
}

// ParseDetail extracts coordinates and the bed count from a facility
// page. Coordinates are searched across the whole document; the bed
// count comes from the first infobox row whose label starts with "beds"
// (case-insensitive). Scanning stops after the first matching row.
func ParseDetail(doc *goquery.Document) DetailInfo {
	info := DetailInfo{Coords: ExtractCoordinates(doc.Selection)}

	infobox := doc.Find("table.infobox").First()
	if infobox.Length() == 0 {
		return info
	}

	infobox.Find("tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		th := tr.Find("th").First()
		td := tr.Find("td").First()
		if th.Length() == 0 || td.Length() == 0 {
			return true
		}
		label := strings.ToLower(CleanText(th.Text()))
		if !strings.HasPrefix(label, bedsLabelPrefix) {
			return true
		}

		info.BedsRaw = CleanText(td.Text())
		if m := bedsDigitsRE.FindString(strings.ReplaceAll(info.BedsRaw, ",", "")); m != "" {
			if n, err := strconv.Atoi(m); err == nil {
				info.Beds = &n
			}
		}
		return false
	})

	return info
}
