package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ppiankov/factlens/internal/model"
)

// Sink delivers one event; implementations must honor ctx
type Sink interface {
	Name() string
	Send(ctx context.Context, ev Event) error
	Close() error
}

// NewSink creates the sink selected by cfg.Sink
func NewSink(cfg model.TelemetryConfig, logger *zap.Logger) (Sink, error) {
	switch strings.ToLower(cfg.Sink) {
	case "log", "":
		return NewLogSink(logger), nil

	case "redis":
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("telemetry: redis_url is required for the redis sink")
		}
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("telemetry: redis: %w", err)
		}
		return NewRedisSink(redis.NewClient(opt), cfg.RedisStream), nil

	case "nats":
		if cfg.NATSURL == "" {
			return nil, fmt.Errorf("telemetry: nats_url is required for the nats sink")
		}
		conn, err := nats.Connect(cfg.NATSURL, nats.Name("factlens"))
		if err != nil {
			return nil, fmt.Errorf("telemetry: connect to NATS: %w", err)
		}
		return NewNATSSink(conn, cfg.NATSSubject), nil

	case "none", "off":
		return NopSink{}, nil

	default:
		return nil, fmt.Errorf("unknown telemetry sink: %s (supported: log, redis, nats, none)", cfg.Sink)
	}
}

// LogSink writes events to the structured log
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a log sink; nil logger discards
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Send(_ context.Context, ev Event) error {
	fields := []zap.Field{
		zap.String("kind", string(ev.Kind)),
		zap.String("request_id", ev.RequestID),
		zap.String("comment", ev.Comment),
		zap.String("engine_version", ev.EngineVersion),
		zap.String("methodology_version", ev.MethodologyVersion),
		zap.String("ruleset_id", ev.RulesetID),
		zap.Int("ruleset_revision", ev.RulesetRevision),
	}
	if ev.Score != nil {
		fields = append(fields, zap.Int("score", *ev.Score))
	}
	if ev.Verdict != "" {
		fields = append(fields, zap.String("verdict", string(ev.Verdict)))
	}
	s.logger.Info("telemetry event", fields...)
	return nil
}

func (s *LogSink) Close() error { return nil }

// streamAdder is the part of *redis.Client the sink uses
type streamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	Close() error
}

// RedisSink appends events to a Redis stream
type RedisSink struct {
	rdb    streamAdder
	stream string
}

// NewRedisSink creates a sink writing to stream (default "factlens.telemetry")
func NewRedisSink(rdb *redis.Client, stream string) *RedisSink {
	return newRedisSink(rdb, stream)
}

func newRedisSink(rdb streamAdder, stream string) *RedisSink {
	if stream == "" {
		stream = "factlens.telemetry"
	}
	return &RedisSink{rdb: rdb, stream: stream}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Send(ctx context.Context, ev Event) error {
	_, err := s.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: ev.Fields(),
	}).Result()
	if err != nil {
		return fmt.Errorf("redis xadd %s: %w", s.stream, err)
	}
	return nil
}

func (s *RedisSink) Close() error { return s.rdb.Close() }

// publisher is the part of *nats.Conn the sink uses
type publisher interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// NATSSink publishes events as JSON on a NATS subject
type NATSSink struct {
	conn    publisher
	subject string
}

// NewNATSSink creates a sink publishing on subject (default "factlens.telemetry")
func NewNATSSink(conn *nats.Conn, subject string) *NATSSink {
	return newNATSSink(conn, subject)
}

func newNATSSink(conn publisher, subject string) *NATSSink {
	if subject == "" {
		subject = "factlens.telemetry"
	}
	return &NATSSink{conn: conn, subject: subject}
}

func (s *NATSSink) Name() string { return "nats" }

func (s *NATSSink) Send(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := s.conn.Publish(s.subject, data); err != nil {
		return fmt.Errorf("nats publish %s: %w", s.subject, err)
	}
	// Flush so a dead connection surfaces as an error within ctx
	if err := s.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}
	return nil
}

func (s *NATSSink) Close() error {
	s.conn.Close()
	return nil
}

// NopSink discards every event
type NopSink struct{}

func (NopSink) Name() string { return "none" }
func (NopSink) Send(context.Context, Event) error { return nil }
func (NopSink) Close() error { return nil }
