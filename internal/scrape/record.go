// Package scrape parses hospital listing and detail pages into records.
package scrape

import "strings"

// Authorities lists the health-authority section headings on the listing
// page, in page order. Every record is tagged with the section it was
// found under.
var Authorities = []string{
	"Fraser Health",
	"Interior Health",
	"Island Health",
	"Northern Health",
	"Vancouver Coastal Health",
	"Provincial Health Services Authority",
	"Providence Health Care",
	"Other",
}

// Coordinates is a decimal-degree latitude/longitude pair. Presence is
// modeled with a pointer so that the two values are always set together.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Record is the normalized per-facility entity produced by the pipeline.
// Pointer and empty-string fields mark values that were not found.
type Record struct {
	Authority string
	Name      string
	City      string
	Coords    *Coordinates
	DetailURL string

	// Enrichment fields, populated from the facility's detail page.
	Beds          *int
	BedsRaw       string
	BedsSourceURL string
}

// MergeCoordinates fills the record's coordinates only when they are
// currently absent. Listing-page coordinates always take precedence over
// detail-page ones, so an existing pair is never overwritten.
func (r *Record) MergeCoordinates(c *Coordinates) {
	if r.Coords == nil {
		r.Coords = c
	}
}

// CleanText collapses runs of whitespace to single spaces and trims the
// result.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
