package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openbcdata/bchospitals/internal/dataset"
	"github.com/openbcdata/bchospitals/internal/fetch"
)

// newListingServer serves a synthetic listing page with three facilities
// across two sections: one missing its city, one carrying an inline
// geotag, and one whose detail link is broken.
func newListingServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/wiki/List", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><div id="bodyContent">
<h2>Fraser Health[edit]</h2>
<table class="wikitable">
  <tr><th>Name</th><th>City</th></tr>
  <tr><td><a href="/wiki/Royal_Columbian">Royal Columbian Hospital</a></td><td>New Westminster</td></tr>
  <tr><td><a href="/wiki/Broken">Zeta Hospital</a></td><td></td></tr>
</table>
<h2>Interior Health</h2>
<table class="wikitable">
  <tr><td>Kelowna General Hospital</td><td>Kelowna</td><td><span class="geo">49.8880; -119.4960</span></td></tr>
</table>
</div></body></html>`)
	})
	mux.HandleFunc("/wiki/Royal_Columbian", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body>
<table class="infobox"><tr><th>Beds (2020)</th><td>312 (acute)</td></tr></table>
<span class="latitude">49.2263</span><span class="longitude">-122.8895</span>
</body></html>`)
	})
	mux.HandleFunc("/wiki/Broken", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestPipeline(t *testing.T, listURL, out string) *Pipeline {
	t.Helper()
	fetcher := fetch.New(fetch.Config{UserAgent: "bchospitals-test/1.0"}, zap.NewNop())
	return New(Config{
		ListURL: listURL,
		Out:     out,
		Workers: 4,
	}, fetcher, zap.NewNop())
}

func TestRunEndToEnd(t *testing.T) {
	t.Parallel()

	srv := newListingServer(t)
	out := filepath.Join(t.TempDir(), "hospitals.csv")

	rows, err := newTestPipeline(t, srv.URL+"/wiki/List", out).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, rows)

	records, err := dataset.ReadFile(out)
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Sorted by (authority, name) ascending.
	require.Equal(t, "Royal Columbian Hospital", records[0].Name)
	require.Equal(t, "Zeta Hospital", records[1].Name)
	require.Equal(t, "Kelowna General Hospital", records[2].Name)

	royal := records[0]
	require.Equal(t, "Fraser Health", royal.Authority)
	require.NotNil(t, royal.Beds)
	require.Equal(t, 312, *royal.Beds)
	require.Equal(t, "312 (acute)", royal.BedsRaw)
	require.Equal(t, srv.URL+"/wiki/Royal_Columbian", royal.BedsSourceURL)
	require.NotNil(t, royal.Coords)
	require.InDelta(t, 49.2263, royal.Coords.Lat, 1e-9)
	require.InDelta(t, -122.8895, royal.Coords.Lon, 1e-9)

	// Broken detail link: record survives with enrichment fields absent.
	broken := records[1]
	require.Empty(t, broken.City)
	require.Nil(t, broken.Beds)
	require.Empty(t, broken.BedsRaw)
	require.Empty(t, broken.BedsSourceURL)

	// Listing-page geotag kept; no detail link at all.
	kelowna := records[2]
	require.Equal(t, "Interior Health", kelowna.Authority)
	require.NotNil(t, kelowna.Coords)
	require.InDelta(t, 49.8880, kelowna.Coords.Lat, 1e-9)
	require.Empty(t, kelowna.DetailURL)
}

func TestRunListingUnreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	out := filepath.Join(t.TempDir(), "hospitals.csv")
	_, err := newTestPipeline(t, srv.URL+"/wiki/List", out).Run(context.Background())
	require.ErrorIs(t, err, ErrListingUnreachable)

	_, statErr := os.Stat(out)
	require.True(t, os.IsNotExist(statErr), "no partial output file may be written")
}

func TestRunNoRecords(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><div id="bodyContent"><p>nothing here</p></div></body></html>`)
	}))
	t.Cleanup(srv.Close)

	out := filepath.Join(t.TempDir(), "hospitals.csv")
	_, err := newTestPipeline(t, srv.URL+"/wiki/List", out).Run(context.Background())
	require.ErrorIs(t, err, ErrNoRecords)

	_, statErr := os.Stat(out)
	require.True(t, os.IsNotExist(statErr), "no partial output file may be written")
}
