package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openbcdata/bchospitals/internal/dataset"
	"github.com/openbcdata/bchospitals/internal/scrape"
)

// newCheckCmd creates the 'check' subcommand, a diagnostic dump of the
// generated dataset file.
func newCheckCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Prints a diagnostic summary of the dataset file",

		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("file") {
				file = cfg.ServeFile()
			}
			return runCheck(cmd, file)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "dataset CSV path (default: the configured scrape output)")

	return cmd
}

const sampleSize = 5

func runCheck(cmd *cobra.Command, file string) error {
	records, err := dataset.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read dataset %q: %w", file, err)
	}
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Total hospitals collected: %d\n", len(records))
	fmt.Fprintf(out, "Columns: %s\n", strings.Join(dataset.Columns, ", "))

	fmt.Fprintln(out, "\nFirst few rows:")
	for _, rec := range head(records) {
		fmt.Fprintf(out, "  %s | %s | %s\n", rec.Name, rec.City, rec.Authority)
	}

	var withBeds []scrape.Record
	for _, rec := range records {
		if rec.Beds != nil {
			withBeds = append(withBeds, rec)
		}
	}
	fmt.Fprintf(out, "\nFound bed data for %d hospitals\n", len(withBeds))
	for _, rec := range head(withBeds) {
		fmt.Fprintf(out, "  %s | %d beds | %s\n", rec.Name, *rec.Beds, rec.Authority)
	}

	return nil
}

func head(records []scrape.Record) []scrape.Record {
	if len(records) > sampleSize {
		return records[:sampleSize]
	}
	return records
}
