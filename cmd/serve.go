package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fbz-tec/docvault/core/server"
	"github.com/fbz-tec/docvault/core/store"
	"github.com/fbz-tec/docvault/core/telemetry"
	"github.com/fbz-tec/docvault/core/uploads"
	"github.com/fbz-tec/docvault/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the docvault REST API",
	Long: `Run the REST API on HTTP_ADDR (default :8080).

The database connection is opened on the first request and shared by all
requests. A failed connection is retried on the next request.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "Listen address (overrides HTTP_ADDR)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddr != "" {
		cfg.HTTPAddr = serveAddr
	}

	// Missing settings stop the server before it listens.
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger.SetTimestamps(true)

	collector, err := telemetry.NewPrometheusCollector(nil)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg, collector)
	if err != nil {
		return err
	}

	srv, err := server.New(st, uploads.FromConfig(cfg), server.WithCollector(collector))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := st.Ping(ctx); err != nil {
		logger.Warn("Database not reachable yet, will retry on first request: %v", err)
	} else {
		logger.Success("Connected to %s", st.Backend())
	}

	logger.Info("Serving uploads from %s at %s/files/", cfg.UploadDir, cfg.PublicURL)
	return srv.Run(ctx, cfg.HTTPAddr)
}
