package telemetry

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/factlens/internal/metrics"
)

const (
	defaultEmitTimeout = 5 * time.Second
	defaultMaxInFlight = 64
)

// Emitter sends events in the background. Emit never blocks and never fails;
// delivery errors are logged and counted.
type Emitter struct {
	sink    Sink
	timeout time.Duration
	sem     chan struct{}
	logger  *zap.Logger
	metrics *metrics.Metrics

	wg     sync.WaitGroup
	closed atomic.Bool
}

// EmitterOptions tunes an Emitter; zero values select defaults
type EmitterOptions struct {
	Timeout     time.Duration
	MaxInFlight int
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
}

// NewEmitter creates an emitter delivering to sink
func NewEmitter(sink Sink, opts EmitterOptions) *Emitter {
	if sink == nil {
		sink = NopSink{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultEmitTimeout
	}
	if opts.MaxInFlight <= 0 {
		opts.MaxInFlight = defaultMaxInFlight
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Emitter{
		sink:    sink,
		timeout: opts.Timeout,
		sem:     make(chan struct{}, opts.MaxInFlight),
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
}

// Emit schedules ev for delivery and returns immediately
func (e *Emitter) Emit(ev Event) {
	if e.closed.Load() {
		e.logger.Debug("telemetry emitter closed, dropping event", zap.String("request_id", ev.RequestID))
		e.metrics.TelemetryEvent(e.sink.Name(), "dropped")
		return
	}

	select {
	case e.sem <- struct{}{}:
	default:
		e.logger.Warn("telemetry backlog full, dropping event",
			zap.String("request_id", ev.RequestID),
			zap.Int("max_in_flight", cap(e.sem)))
		e.metrics.TelemetryEvent(e.sink.Name(), "dropped")
		return
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer func() { <-e.sem }()
		e.deliver(ev)
	}()
}

func (e *Emitter) deliver(ev Event) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("telemetry sink panicked",
				zap.String("sink", e.sink.Name()),
				zap.String("panic", fmt.Sprint(r)))
			e.metrics.TelemetryEvent(e.sink.Name(), "error")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	if err := e.sink.Send(ctx, ev); err != nil {
		e.logger.Warn("telemetry event failed",
			zap.String("sink", e.sink.Name()),
			zap.String("request_id", ev.RequestID),
			zap.Error(err))
		e.metrics.TelemetryEvent(e.sink.Name(), "error")
		return
	}
	e.metrics.TelemetryEvent(e.sink.Name(), "ok")
}

// Close stops accepting events and waits for in-flight deliveries or ctx
func (e *Emitter) Close(ctx context.Context) error {
	e.closed.Store(true)

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return e.sink.Close()
	case <-ctx.Done():
		return fmt.Errorf("telemetry drain: %w", ctx.Err())
	}
}
