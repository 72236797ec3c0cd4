package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openbcdata/bchospitals/internal/fetch"
	"github.com/openbcdata/bchospitals/internal/pipeline"
)

// Exit codes for the two fatal pipeline conditions.
const (
	exitListingUnreachable = 2
	exitNoRecords          = 3
)

// newScrapeCmd creates and configures the 'scrape' subcommand, which
// runs the full extraction and enrichment pipeline.
func newScrapeCmd() *cobra.Command {
	var (
		out     string
		workers int
		delay   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrapes the hospital listing and writes the CSV dataset",
		Long: `Fetches the hospital listing page, parses every health-authority
section, concurrently follows each facility's page for bed counts and
coordinates, and writes the deduplicated, sorted dataset.

Exits 2 when the listing page is unreachable and 3 when it yields no
recognizable records; no output file is written in either case.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("out") {
				cfg.Scrape.Out = out
			}
			if cmd.Flags().Changed("workers") {
				cfg.Scrape.Workers = workers
			}
			if cmd.Flags().Changed("delay") {
				cfg.Scrape.Delay = delay
			}
			return runScrape(cmd)
		},
	}

	cmd.Flags().StringVar(&out, "out", "bc_hospitals.csv", "output CSV path")
	cmd.Flags().IntVar(&workers, "workers", 10, "concurrent requests for hospital pages")
	cmd.Flags().DurationVar(&delay, "delay", 0, "optional pause between requests in each worker")

	return cmd
}

func runScrape(cmd *cobra.Command) error {
	runLogger := logger.With(zap.String("run_id", uuid.NewString()))

	fetcher := fetch.New(fetch.Config{
		UserAgent: cfg.Scrape.UserAgent,
		Timeout:   cfg.Timeout(),
	}, runLogger)

	p := pipeline.New(pipeline.Config{
		ListURL: cfg.Scrape.ListURL,
		Out:     cfg.Scrape.Out,
		Workers: cfg.Scrape.Workers,
		Delay:   cfg.Scrape.Delay,
	}, fetcher, runLogger)

	rows, err := p.Run(cmd.Context())
	switch {
	case errors.Is(err, pipeline.ErrListingUnreachable):
		runLogger.Error("failed to load listing page; aborting")
		os.Exit(exitListingUnreachable)
	case errors.Is(err, pipeline.ErrNoRecords):
		runLogger.Error("no tables parsed from listing page; aborting")
		os.Exit(exitNoRecords)
	case err != nil:
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s with %d rows.\n", cfg.Scrape.Out, rows)
	return nil
}
