package scrape

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// coordStrategy attempts one extraction convention against a markup
// fragment, returning nil when it does not apply or fails to parse.
type coordStrategy func(*goquery.Selection) *Coordinates

// coordStrategies are tried in priority order; the first success wins.
// The source pages are not uniformly structured, so several independent
// conventions have to be supported.
var coordStrategies = []coordStrategy{
	geoMicroformat,
	latitudeLongitudePair,
	kartographerMaplink,
}

// ExtractCoordinates returns the first coordinate pair any strategy can
// extract from the fragment, or nil if none succeeds.
func ExtractCoordinates(sel *goquery.Selection) *Coordinates {
	for _, strategy := range coordStrategies {
		if c := strategy(sel); c != nil {
			return c
		}
	}
	return nil
}

var coordSplitRE = regexp.MustCompile(`[;, ]+`)

// geoMicroformat reads a combined ".geo" element whose text holds both
// values separated by semicolons, commas, or whitespace.
func geoMicroformat(sel *goquery.Selection) *Coordinates {
	geo := sel.Find(".geo").First()
	if geo.Length() == 0 {
		return nil
	}
	var parts []string
	for _, p := range coordSplitRE.Split(CleanText(geo.Text()), -1) {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 2 {
		return nil
	}
	return parseCoordinatePair(parts[0], parts[1])
}

// latitudeLongitudePair reads separate ".latitude" and ".longitude"
// elements. Both must parse or the strategy fails as a whole.
func latitudeLongitudePair(sel *goquery.Selection) *Coordinates {
	lat := sel.Find(".latitude").First()
	lon := sel.Find(".longitude").First()
	if lat.Length() == 0 || lon.Length() == 0 {
		return nil
	}
	return parseCoordinatePair(strings.TrimSpace(lat.Text()), strings.TrimSpace(lon.Text()))
}

// kartographerMaplink reads the explicit data-lat/data-lon attributes of
// a map-link anchor.
func kartographerMaplink(sel *goquery.Selection) *Coordinates {
	link := sel.Find("a.mw-kartographer-maplink").First()
	if link.Length() == 0 {
		return nil
	}
	lat, latOK := link.Attr("data-lat")
	lon, lonOK := link.Attr("data-lon")
	if !latOK || !lonOK {
		return nil
	}
	return parseCoordinatePair(lat, lon)
}

func parseCoordinatePair(latText, lonText string) *Coordinates {
	lat, err := strconv.ParseFloat(latText, 64)
	if err != nil {
		return nil
	}
	lon, err := strconv.ParseFloat(lonText, 64)
	if err != nil {
		return nil
	}
	return &Coordinates{Lat: lat, Lon: lon}
}
