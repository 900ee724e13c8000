// Package server exposes the analyzer and its collaborators over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ppiankov/factlens/internal/metrics"
	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/render"
	"github.com/ppiankov/factlens/internal/store"
	"github.com/ppiankov/factlens/internal/telemetry"
	"github.com/ppiankov/factlens/internal/worker"
)

const (
	limiterSweepInterval = 5 * time.Minute
	limiterIdleTimeout   = 30 * time.Minute
	shutdownTimeout      = 15 * time.Second
)

// Analyzer is the analysis entry point the server depends on
type Analyzer interface {
	Analyze(ctx context.Context, mode model.AnalysisMode, ev model.EvidenceInput, requestID string) (model.ResultRecord, error)
	Locale() string
	ProviderName() string
}

// Deps are the collaborators behind the routes. Feedback, Leads, Counters
// and Metrics are optional; their routes answer 503 when absent.
type Deps struct {
	Analyzer Analyzer
	Feedback *telemetry.FeedbackService
	Leads    *store.Leads
	Counters *store.Counters
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

// Server is the HTTP API
type Server struct {
	cfg      model.ServerConfig
	analyzer Analyzer
	feedback *telemetry.FeedbackService
	leads    *store.Leads
	counters *store.Counters
	metrics  *metrics.Metrics
	logger   *zap.Logger
	limiter  *worker.Limiter
	renderer *render.Renderer
	engine   *gin.Engine
}

// New creates the server and its routes
func New(cfg model.ServerConfig, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	s := &Server{
		cfg:      cfg,
		analyzer: deps.Analyzer,
		feedback: deps.Feedback,
		leads:    deps.Leads,
		counters: deps.Counters,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
		limiter:  worker.NewLimiter(cfg.ClientRPS, cfg.ClientBurst),
		renderer: render.NewRenderer(deps.Analyzer.Locale(), false),
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog(), s.observe())
	r.Use(cors.New(corsConfig(cfg.AllowOrigins)))

	r.GET("/healthz", s.health)
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	v1 := r.Group("/v1")
	v1.Use(s.rateLimit(), s.limitBody())
	{
		v1.POST("/analyze", s.analyze)
		v1.POST("/feedback", s.submitFeedback)
		v1.GET("/feedback/last", s.lastFeedback)
		v1.POST("/leads", s.saveLead)
		v1.GET("/leads/export", s.exportLeads)
		v1.GET("/users/:id/count", s.userCount)
	}

	s.engine = r
	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sweepLimiter(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("http server shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) sweepLimiter(ctx context.Context) {
	ticker := time.NewTicker(limiterSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.limiter.Sweep(limiterIdleTimeout); n > 0 {
				s.logger.Debug("forgot idle clients", zap.Int("count", n))
			}
		}
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
	}
	if allowAll {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
