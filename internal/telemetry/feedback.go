package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/factlens/internal/store"
)

const (
	MinScore = 0
	MaxScore = 10

	lastFeedbackKey = "feedback:last"
	maxCommentRunes = 1000
)

// ErrInvalidScore is returned for NPS scores outside 0..10
var ErrInvalidScore = errors.New("score must be between 0 and 10")

// Feedback is the cached copy of the most recent submission
type Feedback struct {
	Score   int       `json:"score"`
	Comment string    `json:"comment"`
	Date    time.Time `json:"date"`
}

// FeedbackService records NPS feedback synchronously through a sink
type FeedbackService struct {
	sink    Sink
	store   store.Store
	timeout time.Duration
	now     func() time.Time
}

// NewFeedbackService creates a feedback service; kv may be nil to skip caching
func NewFeedbackService(sink Sink, kv store.Store, timeout time.Duration) *FeedbackService {
	if sink == nil {
		sink = NopSink{}
	}
	if timeout <= 0 {
		timeout = defaultEmitTimeout
	}
	return &FeedbackService{sink: sink, store: kv, timeout: timeout, now: time.Now}
}

// Submit validates and sends one feedback event. Unlike auto-log events,
// failures are returned so the user can retry.
func (s *FeedbackService) Submit(ctx context.Context, score int, comment, requestID string) (*Feedback, error) {
	if score < MinScore || score > MaxScore {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidScore, score)
	}
	comment = strings.TrimSpace(comment)
	if r := []rune(comment); len(r) > maxCommentRunes {
		comment = string(r[:maxCommentRunes])
	}

	fb := &Feedback{Score: score, Comment: comment, Date: s.now().UTC()}

	sendCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.sink.Send(sendCtx, FeedbackEvent(score, comment, requestID, fb.Date)); err != nil {
		return nil, fmt.Errorf("send feedback: %w", err)
	}

	if s.store != nil {
		data, err := json.Marshal(fb)
		if err != nil {
			return nil, fmt.Errorf("marshal feedback: %w", err)
		}
		if err := s.store.Set(ctx, lastFeedbackKey, data, 0); err != nil {
			return nil, fmt.Errorf("cache feedback: %w", err)
		}
	}

	return fb, nil
}

// Last returns the most recent feedback, or nil when none was cached
func (s *FeedbackService) Last(ctx context.Context) (*Feedback, error) {
	if s.store == nil {
		return nil, nil
	}
	data, found, err := s.store.Get(ctx, lastFeedbackKey)
	if err != nil || !found {
		return nil, err
	}
	var fb Feedback
	if err := json.Unmarshal(data, &fb); err != nil {
		return nil, fmt.Errorf("decode feedback: %w", err)
	}
	return &fb, nil
}
