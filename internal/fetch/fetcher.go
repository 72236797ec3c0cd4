// Package fetch implements single-page HTTP retrieval using gocolly.
package fetch

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/openbcdata/bchospitals/internal/metrics"
)

// Config controls collector behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Fetcher performs best-effort single GETs. Failures are logged and
// reported as absence rather than errors; there are no retries.
//
// All fetches share one base collector, so cloned collectors reuse the
// same pooled transport across a batch of requests.
type Fetcher struct {
	cfg           Config
	baseCollector *colly.Collector
	logger        *zap.Logger
}

// New builds a Fetcher.
func New(cfg Config, logger *zap.Logger) *Fetcher {
	// Synchronous collection is colly's default; passing colly.Async(false)
	// is avoided because colly v2.1.0's Async option ignores its argument
	// and would always enable async mode.
	c := colly.NewCollector()
	c.AllowURLRevisit = true
	// A single best-effort GET per URL; no robots negotiation.
	c.IgnoreRobotsTxt = true
	c.WithTransport(newHTTPTransport())

	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	c.SetRequestTimeout(cfg.Timeout)
	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}

	return &Fetcher{
		cfg:           cfg,
		baseCollector: c,
		logger:        logger,
	}
}

// Fetch executes a single HTTP GET and returns the response body.
// The second return value is false when the URL could not be retrieved
// for any reason: non-2xx status, transport failure, or cancellation.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, bool) {
	start := time.Now()
	collector := f.baseCollector.Clone()

	var (
		body   []byte
		status int
	)
	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(r *colly.Response, _ error) {
		if r != nil {
			status = r.StatusCode
		}
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(rawURL)
	}()

	select {
	case <-ctx.Done():
		f.logger.Warn("fetch canceled",
			zap.String("url", rawURL),
			zap.Error(ctx.Err()),
		)
		metrics.ObserveFetch(metrics.OutcomeCanceled, time.Since(start))
		return nil, false
	case err := <-done:
		if err != nil {
			outcome := metrics.OutcomeError
			if status != 0 {
				outcome = metrics.OutcomeHTTPError
			}
			f.logger.Warn("fetch failed",
				zap.String("url", rawURL),
				zap.Int("status", status),
				zap.Error(err),
			)
			metrics.ObserveFetch(outcome, time.Since(start))
			return nil, false
		}
	}

	if body == nil {
		f.logger.Warn("fetch produced no response", zap.String("url", rawURL))
		metrics.ObserveFetch(metrics.OutcomeError, time.Since(start))
		return nil, false
	}

	metrics.ObserveFetch(metrics.OutcomeOK, time.Since(start))
	return body, true
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
	}
}
