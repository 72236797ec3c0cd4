// Package dataset assembles enriched records into the persisted CSV
// dataset and reads it back for the consumer-side commands.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/openbcdata/bchospitals/internal/metrics"
	"github.com/openbcdata/bchospitals/internal/scrape"
)

// Columns is the fixed header of the dataset file. It is the contract
// between the pipeline and every downstream reader.
var Columns = []string{
	"Health Authority",
	"Facility Name",
	"Location City",
	"Latitude",
	"Longitude",
	"Beds",
	"Beds Raw",
	"Beds Source URL",
	"Hospital Page URL",
}

// Assemble deduplicates records by (name, city), keeping the first
// occurrence, and stable-sorts the remainder by (authority, name).
func Assemble(records []scrape.Record) []scrape.Record {
	type identity struct {
		name string
		city string
	}

	seen := make(map[identity]struct{}, len(records))
	out := make([]scrape.Record, 0, len(records))
	for _, rec := range records {
		key := identity{name: rec.Name, city: rec.City}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Authority != out[j].Authority {
			return out[i].Authority < out[j].Authority
		}
		return out[i].Name < out[j].Name
	})

	return out
}

// WriteCSV serializes records to w with the fixed column order, and
// returns the number of data rows written. Absent values render as
// empty cells.
func WriteCSV(w io.Writer, records []scrape.Record) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	for _, rec := range records {
		row := []string{
			rec.Authority,
			rec.Name,
			rec.City,
			"",
			"",
			formatInt(rec.Beds),
			rec.BedsRaw,
			rec.BedsSourceURL,
			rec.DetailURL,
		}
		if rec.Coords != nil {
			row[3] = formatFloat(rec.Coords.Lat)
			row[4] = formatFloat(rec.Coords.Lon)
		}
		if err := cw.Write(row); err != nil {
			return 0, fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("flush csv: %w", err)
	}
	return len(records), nil
}

// WriteFile creates (or truncates) path and serializes records into it.
func WriteFile(path string, records []scrape.Record) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create %q: %w", path, err)
	}

	n, err := WriteCSV(f, records)
	if err != nil {
		_ = f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("close %q: %w", path, err)
	}

	metrics.SetDatasetRows(n)
	return n, nil
}

// ReadCSV parses a dataset file back into records. Readers must tolerate
// absent values in every column except the three required string fields,
// so unparseable numeric cells are read as absent rather than errors.
func ReadCSV(r io.Reader) ([]scrape.Record, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"Health Authority", "Facility Name", "Location City"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("dataset missing required column %q", required)
		}
	}

	cell := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []scrape.Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		rec := scrape.Record{
			Authority:     cell(row, "Health Authority"),
			Name:          cell(row, "Facility Name"),
			City:          cell(row, "Location City"),
			BedsRaw:       cell(row, "Beds Raw"),
			BedsSourceURL: cell(row, "Beds Source URL"),
			DetailURL:     cell(row, "Hospital Page URL"),
		}

		lat, latErr := strconv.ParseFloat(cell(row, "Latitude"), 64)
		lon, lonErr := strconv.ParseFloat(cell(row, "Longitude"), 64)
		if latErr == nil && lonErr == nil {
			rec.Coords = &scrape.Coordinates{Lat: lat, Lon: lon}
		}
		if beds, err := strconv.Atoi(cell(row, "Beds")); err == nil {
			rec.Beds = &beds
		}

		records = append(records, rec)
	}
	return records, nil
}

// ReadFile loads the dataset at path.
func ReadFile(path string) ([]scrape.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
