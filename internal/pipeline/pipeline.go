// Package pipeline orchestrates the staged extraction batch run:
// fetch listing, parse sections, enrich concurrently, assemble, write.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/openbcdata/bchospitals/internal/dataset"
	"github.com/openbcdata/bchospitals/internal/enrich"
	"github.com/openbcdata/bchospitals/internal/metrics"
	"github.com/openbcdata/bchospitals/internal/scrape"
)

// The only two fatal conditions; everything else degrades to absence.
var (
	// ErrListingUnreachable means the primary listing page could not be
	// fetched at all.
	ErrListingUnreachable = errors.New("listing page unreachable")
	// ErrNoRecords means the listing page yielded zero recognizable rows.
	ErrNoRecords = errors.New("no records parsed from listing page")
)

// Fetcher retrieves one URL, reporting absence instead of errors.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, bool)
}

// Config holds the pipeline parameters for one run.
type Config struct {
	ListURL string
	Out     string
	Workers int
	Delay   time.Duration
}

// Pipeline runs the extraction and enrichment stages in sequence. Each
// stage completes before the next starts; only the enrichment stage
// fans out internally.
type Pipeline struct {
	cfg     Config
	fetcher Fetcher
	logger  *zap.Logger
}

// New constructs a Pipeline.
func New(cfg Config, fetcher Fetcher, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		fetcher: fetcher,
		logger:  logger,
	}
}

// Run executes the whole pipeline and returns the number of rows
// written. On either fatal condition no output file is produced.
func (p *Pipeline) Run(ctx context.Context) (int, error) {
	body, ok := p.fetcher.Fetch(ctx, p.cfg.ListURL)
	if !ok {
		return 0, ErrListingUnreachable
	}

	records, err := p.parseListing(body)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, ErrNoRecords
	}
	metrics.AddRecordsParsed(len(records))
	p.logger.Info("parsed listing page",
		zap.String("url", p.cfg.ListURL),
		zap.Int("records", len(records)),
	)

	enriched := enrich.Enrich(ctx, p.fetcher, records, enrich.Config{
		Workers: p.cfg.Workers,
		Delay:   p.cfg.Delay,
	}, p.logger)

	assembled := dataset.Assemble(enriched)
	n, err := dataset.WriteFile(p.cfg.Out, assembled)
	if err != nil {
		return 0, fmt.Errorf("write dataset: %w", err)
	}

	p.logger.Info("wrote dataset",
		zap.String("path", p.cfg.Out),
		zap.Int("rows", n),
	)
	return n, nil
}

func (p *Pipeline) parseListing(body []byte) ([]scrape.Record, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse listing page: %w", err)
	}

	base, err := url.Parse(p.cfg.ListURL)
	if err != nil {
		return nil, fmt.Errorf("parse listing url: %w", err)
	}

	var records []scrape.Record
	for _, authority := range scrape.Authorities {
		tables := scrape.TablesUnder(doc, authority)
		records = append(records, scrape.BuildRecords(tables, authority, base)...)
	}
	return records, nil
}
