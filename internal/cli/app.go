package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ppiankov/factlens/internal/llm"
	"github.com/ppiankov/factlens/internal/metrics"
	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/pipeline"
	"github.com/ppiankov/factlens/internal/store"
	"github.com/ppiankov/factlens/internal/telemetry"
)

// app holds the long-lived collaborators shared by commands
type app struct {
	cfg      *model.Config
	logger   *zap.Logger
	metrics  *metrics.Metrics
	kv       store.Store
	sink     telemetry.Sink
	emitter  *telemetry.Emitter
	analyzer *pipeline.Analyzer
}

// newApp opens the store and telemetry sink. The analyzer is only built
// when withAnalyzer is set, so commands like feedback work without API keys.
func newApp(cfg *model.Config, withAnalyzer bool) (*app, error) {
	a := &app{cfg: cfg, logger: zap.L(), metrics: metrics.New()}

	kv, err := store.Open(store.Options{
		Backend:  cfg.Store.Backend,
		Dir:      cfg.Store.Dir,
		RedisURL: cfg.Store.RedisURL,
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	a.kv = kv

	sink, err := telemetry.NewSink(cfg.Telemetry, a.logger)
	if err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("telemetry: %w", err)
	}
	a.sink = sink

	if !withAnalyzer {
		return a, nil
	}

	a.emitter = telemetry.NewEmitter(sink, telemetry.EmitterOptions{
		Timeout:     cfg.Telemetry.Timeout,
		MaxInFlight: cfg.Telemetry.MaxInFlight,
		Logger:      a.logger,
		Metrics:     a.metrics,
	})

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg))
	if err != nil {
		a.close(context.Background())
		return nil, fmt.Errorf("create provider: %w", err)
	}

	opts := pipeline.OptionsFromConfig(cfg, provider)
	opts.PageCache = kv
	opts.Emitter = a.emitter
	opts.Metrics = a.metrics
	opts.Logger = a.logger

	analyzer, err := pipeline.NewAnalyzer(opts)
	if err != nil {
		a.close(context.Background())
		return nil, err
	}
	a.analyzer = analyzer
	return a, nil
}

func (a *app) feedback() *telemetry.FeedbackService {
	return telemetry.NewFeedbackService(a.sink, a.kv, a.cfg.Telemetry.Timeout)
}

// close drains pending telemetry, then releases the sink and store
func (a *app) close(ctx context.Context) {
	if a.emitter != nil {
		// The emitter owns the sink once created
		if err := a.emitter.Close(ctx); err != nil {
			a.logger.Warn("telemetry drain incomplete", zap.Error(err))
		}
	} else if a.sink != nil {
		_ = a.sink.Close()
	}
	if a.kv != nil {
		if err := a.kv.Close(); err != nil {
			a.logger.Warn("store close failed", zap.Error(err))
		}
	}
}
