// Package enrich augments listing records with detail-page attributes
// using a bounded worker pool.
package enrich

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/openbcdata/bchospitals/internal/metrics"
	"github.com/openbcdata/bchospitals/internal/scrape"
)

// PageFetcher retrieves one URL, reporting absence instead of errors.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, bool)
}

// Config controls the enrichment fan-out.
type Config struct {
	// Workers bounds the number of concurrent detail fetches.
	Workers int
	// Delay, when positive, makes each worker pause after its own fetch.
	// This is self-throttling, not a cross-worker rate limiter.
	Delay time.Duration
}

// Enrich fetches every record's detail page and merges the extracted
// attributes into a new slice, preserving input order.
//
// Workers write only to their own index of the results slice, so the
// WaitGroup join is the only synchronization needed. Records without a
// detail URL are never dispatched; they pass through untouched.
func Enrich(ctx context.Context, fetcher PageFetcher, records []scrape.Record, cfg Config, logger *zap.Logger) []scrape.Record {
	results := make([]scrape.Record, len(records))
	copy(results, records)

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = enrichOne(ctx, fetcher, results[i], logger)
				if cfg.Delay > 0 {
					time.Sleep(cfg.Delay)
				}
			}
		}()
	}

	for i, rec := range records {
		if rec.DetailURL == "" {
			continue
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// enrichOne fetches and parses one detail page. Any failure leaves the
// record as it was; per-record problems never abort the batch.
func enrichOne(ctx context.Context, fetcher PageFetcher, rec scrape.Record, logger *zap.Logger) scrape.Record {
	body, ok := fetcher.Fetch(ctx, rec.DetailURL)
	if !ok {
		return rec
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		logger.Warn("unparseable detail page",
			zap.String("url", rec.DetailURL),
			zap.Error(err),
		)
		return rec
	}

	info := scrape.ParseDetail(doc)
	rec.MergeCoordinates(info.Coords)
	rec.Beds = info.Beds
	rec.BedsRaw = info.BedsRaw
	if info.BedsRaw != "" {
		rec.BedsSourceURL = rec.DetailURL
	}

	metrics.IncRecordsEnriched()
	return rec
}
