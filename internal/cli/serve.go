package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/factlens/internal/server"
	"github.com/ppiankov/factlens/internal/store"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve exposes the analyzer over HTTP:
  POST /v1/analyze          audit text, media (base64) or a link
  POST /v1/feedback         record an NPS score (0-10) with a comment
  GET  /v1/feedback/last    most recent feedback
  POST /v1/leads            capture an e-mail address
  GET  /v1/leads/export     download captured leads as JSON
  GET  /v1/users/:id/count  personal analysis counter
  GET  /healthz, /metrics

Example:
  factlens serve --addr :8080
  FACTLENS_TELEMETRY_SINK=redis FACTLENS_TELEMETRY_REDIS_URL=redis://localhost:6379/0 factlens serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	a, err := newApp(cfg, true)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Telemetry.Timeout+5*time.Second)
		defer cancel()
		a.close(ctx)
	}()

	srv := server.New(cfg.Server, server.Deps{
		Analyzer: a.analyzer,
		Feedback: a.feedback(),
		Leads:    store.NewLeads(a.kv),
		Counters: store.NewCounters(a.kv),
		Metrics:  a.metrics,
		Logger:   a.logger,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.logger.Info("factlens api starting",
		zap.String("addr", cfg.Server.Addr),
		zap.String("provider", a.analyzer.ProviderName()),
		zap.String("store", cfg.Store.Backend),
		zap.String("telemetry", a.sink.Name()))

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
