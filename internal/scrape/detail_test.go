package scrape

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDetailBeds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		html     string
		wantBeds *int
		wantRaw  string
	}{
		{
			name:     "labeled beds row with trailing annotation",
			html:     `<table class="infobox"><tr><th>Beds (2020)</th><td>312 (acute)</td></tr></table>`,
			wantBeds: intPtr(312),
			wantRaw:  "312 (acute)",
		},
		{
			name:     "comma separated thousands",
			html:     `<table class="infobox"><tr><th>Beds</th><td>1,050</td></tr></table>`,
			wantBeds: intPtr(1050),
			wantRaw:  "1,050",
		},
		{
			name:     "label matched but no number",
			html:     `<table class="infobox"><tr><th>Beds</th><td>unknown</td></tr></table>`,
			wantBeds: nil,
			wantRaw:  "unknown",
		},
		{
			name: "first matching row wins",
			html: `<table class="infobox">` +
				`<tr><th>Beds</th><td>75</td></tr>` +
				`<tr><th>Beds (historical)</th><td>200</td></tr>` +
				`</table>`,
			wantBeds: intPtr(75),
			wantRaw:  "75",
		},
		{
			name:     "case-insensitive label",
			html:     `<table class="infobox"><tr><th>BEDS</th><td>40</td></tr></table>`,
			wantBeds: intPtr(40),
			wantRaw:  "40",
		},
		{
			name:     "no infobox",
			html:     `<p>Nothing tabular here.</p>`,
			wantBeds: nil,
			wantRaw:  "",
		},
		{
			name:     "infobox without beds row",
			html:     `<table class="infobox"><tr><th>Founded</th><td>1897</td></tr></table>`,
			wantBeds: nil,
			wantRaw:  "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			info := ParseDetail(docFrom(t, tt.html))
			require.Equal(t, tt.wantBeds, info.Beds)
			require.Equal(t, tt.wantRaw, info.BedsRaw)
		})
	}
}

func TestParseDetailCoordinates(t *testing.T) {
	t.Parallel()

	html := `<div><span class="geo">49.2608; -123.1139</span></div>` +
		`<table class="infobox"><tr><th>Beds</th><td>500</td></tr></table>`
	info := ParseDetail(docFrom(t, html))
	require.Equal(t, &Coordinates{Lat: 49.2608, Lon: -123.1139}, info.Coords)
	require.Equal(t, intPtr(500), info.Beds)
}

func intPtr(v int) *int {
	return &v
}
