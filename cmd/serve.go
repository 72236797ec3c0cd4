package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openbcdata/bchospitals/internal/server"
)

// newServeCmd creates the 'serve' subcommand, which exposes the dataset
// file over the dashboard HTTP API.
func newServeCmd() *cobra.Command {
	var (
		port int
		file string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serves the dataset over the dashboard HTTP API",

		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("file") {
				cfg.Server.File = file
			}
			return runServe(cmd)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "listen port")
	cmd.Flags().StringVar(&file, "file", "", "dataset CSV path (default: the configured scrape output)")

	return cmd
}

func runServe(cmd *cobra.Command) error {
	srv := server.New(cfg.ServeFile(), logger)
	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-cmd.Context().Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("dashboard API listening",
		zap.Int("port", cfg.Server.Port),
		zap.String("file", cfg.ServeFile()),
	)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
