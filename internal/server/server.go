// Package server exposes the dataset over a read-only HTTP API for the
// dashboard. It is a consumer of the CSV file, not part of the
// extraction pipeline.
package server

import (
	"encoding/json"
	"net/http"
	"os"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/openbcdata/bchospitals/internal/dataset"
	"github.com/openbcdata/bchospitals/internal/metrics"
	"github.com/openbcdata/bchospitals/internal/scrape"
)

// Server serves the hospital dataset file.
type Server struct {
	router chi.Router
	file   string
	logger *zap.Logger
}

// New constructs a Server reading the dataset at file.
func New(file string, logger *zap.Logger) *Server {
	s := &Server{
		file:   file,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/hospitals", s.listHospitals)
		r.Get("/authorities", s.listAuthorities)
		r.Get("/summary", s.summary)
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// hospitalRow is the JSON shape of one dataset row. Numeric fields are
// pointers so absent values serialize as null.
type hospitalRow struct {
	HealthAuthority string   `json:"health_authority"`
	FacilityName    string   `json:"facility_name"`
	City            string   `json:"city"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	Beds            *int     `json:"beds"`
	BedsRaw         string   `json:"beds_raw,omitempty"`
	BedsSourceURL   string   `json:"beds_source_url,omitempty"`
	HospitalPageURL string   `json:"hospital_page_url,omitempty"`
}

func toRow(rec scrape.Record) hospitalRow {
	row := hospitalRow{
		HealthAuthority: rec.Authority,
		FacilityName:    rec.Name,
		City:            rec.City,
		Beds:            rec.Beds,
		BedsRaw:         rec.BedsRaw,
		BedsSourceURL:   rec.BedsSourceURL,
		HospitalPageURL: rec.DetailURL,
	}
	if rec.Coords != nil {
		row.Latitude = &rec.Coords.Lat
		row.Longitude = &rec.Coords.Lon
	}
	return row
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// load reads the dataset, honoring the authority filter. The boolean is
// false when a response has already been written (missing or bad file);
// a missing dataset degrades to an explanatory 503, never a crash.
func (s *Server) load(w http.ResponseWriter, r *http.Request) ([]scrape.Record, bool) {
	records, err := dataset.ReadFile(s.file)
	if err != nil {
		if os.IsNotExist(err) {
			s.writeError(w, http.StatusServiceUnavailable,
				"hospital dataset not found; run the scraper first")
			return nil, false
		}
		s.logger.Error("read dataset failed", zap.String("path", s.file), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "hospital dataset could not be read")
		return nil, false
	}

	if authority := r.URL.Query().Get("authority"); authority != "" {
		filtered := records[:0]
		for _, rec := range records {
			if rec.Authority == authority {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}
	return records, true
}

func (s *Server) listHospitals(w http.ResponseWriter, r *http.Request) {
	records, ok := s.load(w, r)
	if !ok {
		return
	}

	rows := make([]hospitalRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, toRow(rec))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"hospitals": rows})
}

func (s *Server) listAuthorities(w http.ResponseWriter, r *http.Request) {
	records, ok := s.load(w, r)
	if !ok {
		return
	}

	seen := make(map[string]struct{})
	var authorities []string
	for _, rec := range records {
		if _, dup := seen[rec.Authority]; dup {
			continue
		}
		seen[rec.Authority] = struct{}{}
		authorities = append(authorities, rec.Authority)
	}
	sort.Strings(authorities)
	s.writeJSON(w, http.StatusOK, map[string]any{"authorities": authorities})
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	records, ok := s.load(w, r)
	if !ok {
		return
	}

	// Rows without bed data still count toward the population; they are
	// excluded only from the numeric aggregates.
	totalBeds := 0
	withBeds := 0
	for _, rec := range records {
		if rec.Beds == nil {
			continue
		}
		withBeds++
		totalBeds += *rec.Beds
	}

	var avgBeds *float64
	if withBeds > 0 {
		avg := float64(totalBeds) / float64(withBeds)
		avgBeds = &avg
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"hospitals":      len(records),
		"with_beds_data": withBeds,
		"total_beds":     totalBeds,
		"average_beds":   avgBeds,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write response failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
