package scrape

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

const listingHTML = `
<html><body><div id="bodyContent">
<h2>Fraser Health<span class="mw-editsection">[edit]</span></h2>
<table class="wikitable">
  <tr><th>Name</th><th>City</th></tr>
  <tr><td><a href="/wiki/Royal_Columbian_Hospital">Royal Columbian Hospital</a></td><td>New Westminster</td></tr>
  <tr><td>Delta Hospital</td><td>Delta</td><td><span class="geo">49.08; -123.05</span></td></tr>
  <tr><td></td><td>Nameless Town</td></tr>
  <tr><td>single-cell decorative row</td></tr>
</table>
<table class="wikitable">
  <tr><td>Second Table Hospital</td><td>Surrey</td></tr>
</table>
<h3>Interior Health</h3>
<table class="wikitable">
  <tr><td>Kelowna General Hospital</td><td></td></tr>
</table>
<h2>See also</h2>
<table class="wikitable">
  <tr><td>Not A Hospital</td><td>Nowhere</td></tr>
</table>
</div></body></html>`

func TestTablesUnder(t *testing.T) {
	t.Parallel()
	doc := docFrom(t, listingHTML)

	tests := []struct {
		name    string
		heading string
		want    int
	}{
		{name: "collects tables until next heading", heading: "Fraser Health", want: 2},
		{name: "h3 sections work", heading: "Interior Health", want: 1},
		{name: "match is case-insensitive", heading: "fraser health", want: 2},
		{name: "prefix match suffices", heading: "Interior", want: 1},
		{name: "missing heading yields nothing", heading: "Northern Health", want: 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Len(t, TablesUnder(doc, tt.heading), tt.want)
		})
	}
}

func TestBuildRecords(t *testing.T) {
	t.Parallel()
	doc := docFrom(t, listingHTML)
	base, err := url.Parse("https://en.wikipedia.org/wiki/List_of_hospitals_in_British_Columbia")
	require.NoError(t, err)

	records := BuildRecords(TablesUnder(doc, "Fraser Health"), "Fraser Health", base)
	require.Len(t, records, 3)

	royal := records[0]
	require.Equal(t, "Fraser Health", royal.Authority)
	require.Equal(t, "Royal Columbian Hospital", royal.Name)
	require.Equal(t, "New Westminster", royal.City)
	require.Equal(t, "https://en.wikipedia.org/wiki/Royal_Columbian_Hospital", royal.DetailURL)
	require.Nil(t, royal.Coords)

	delta := records[1]
	require.Equal(t, "Delta Hospital", delta.Name)
	require.Equal(t, "Delta", delta.City)
	require.Empty(t, delta.DetailURL)
	require.Equal(t, &Coordinates{Lat: 49.08, Lon: -123.05}, delta.Coords)

	require.Equal(t, "Second Table Hospital", records[2].Name)

	// Dropped rows: header repeat, empty name, single cell.
	for _, rec := range records {
		require.NotEmpty(t, rec.Name)
		require.NotEqual(t, "Name", rec.Name)
	}
}

func TestBuildRecordsEmptyCityKept(t *testing.T) {
	t.Parallel()
	doc := docFrom(t, listingHTML)
	base, err := url.Parse("https://en.wikipedia.org")
	require.NoError(t, err)

	records := BuildRecords(TablesUnder(doc, "Interior Health"), "Interior Health", base)
	require.Len(t, records, 1)
	require.Equal(t, "Kelowna General Hospital", records[0].Name)
	require.Empty(t, records[0].City)
}

func TestCleanText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "  Royal   Jubilee\n Hospital ", want: "Royal Jubilee Hospital"},
		{in: "\t\n ", want: ""},
		{in: "plain", want: "plain"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, CleanText(tt.in))
	}
}
