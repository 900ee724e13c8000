// Package telemetry carries best-effort events out of the analysis flow:
// one auto-log per completed analysis plus user NPS feedback.
package telemetry

import (
	"context"
	"strconv"
	"time"

	"github.com/ppiankov/factlens/internal/model"
)

// AutoLogComment marks events emitted automatically after an analysis
const AutoLogComment = "auto-log"

// Kind distinguishes automatic events from user feedback
type Kind string

const (
	KindAutoLog  Kind = "auto_log"
	KindFeedback Kind = "feedback"
)

// Event is the record sent to a sink. Score is nil for auto-log events.
type Event struct {
	Kind               Kind               `json:"kind"`
	Score              *int               `json:"score"`
	Comment            string             `json:"comment"`
	RequestID          string             `json:"requestId,omitempty"`
	UserID             string             `json:"userId,omitempty"`
	EngineVersion      string             `json:"engineVersion"`
	MethodologyVersion string             `json:"methodologyVersion"`
	RulesetID          string             `json:"rulesetId"`
	RulesetRevision    int                `json:"rulesetRevision"`
	Mode               model.AnalysisMode `json:"mode,omitempty"`
	Verdict            model.Verdict      `json:"verdict,omitempty"`
	Timestamp          time.Time          `json:"timestamp"`
}

// AutoLog builds the event emitted once per completed analysis
func AutoLog(record model.ResultRecord) Event {
	ts := record.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return Event{
		Kind:               KindAutoLog,
		Comment:            AutoLogComment,
		RequestID:          record.RequestID,
		EngineVersion:      record.Engine.EngineVersion,
		MethodologyVersion: record.Engine.MethodologyVersion,
		RulesetID:          record.Engine.RulesetID,
		RulesetRevision:    record.Engine.RulesetRevision,
		Mode:               record.Mode,
		Verdict:            record.Verdict,
		Timestamp:          ts,
	}
}

// ForUser tags the event with the user who requested the analysis
func (e Event) ForUser(userID string) Event {
	e.UserID = userID
	return e
}

type userIDKey struct{}

// WithUserID returns a context carrying the requesting user's ID.
// An empty ID leaves ctx unchanged.
func WithUserID(ctx context.Context, userID string) context.Context {
	if userID == "" {
		return ctx
	}
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFrom returns the user ID stored by WithUserID, or ""
func UserIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey{}).(string)
	return id
}

// FeedbackEvent builds the event recorded for a user NPS score
func FeedbackEvent(score int, comment, requestID string, at time.Time) Event {
	p := model.Profile()
	return Event{
		Kind:               KindFeedback,
		Score:              &score,
		Comment:            comment,
		RequestID:          requestID,
		EngineVersion:      p.EngineVersion,
		MethodologyVersion: p.MethodologyVersion,
		RulesetID:          p.RulesetID,
		RulesetRevision:    p.RulesetRevision,
		Timestamp:          at.UTC(),
	}
}

// Fields flattens the event for key/value transports such as Redis streams.
// A nil score is sent as an empty string.
func (e Event) Fields() map[string]interface{} {
	score := ""
	if e.Score != nil {
		score = strconv.Itoa(*e.Score)
	}
	return map[string]interface{}{
		"kind":               string(e.Kind),
		"score":              score,
		"comment":            e.Comment,
		"requestId":          e.RequestID,
		"userId":             e.UserID,
		"engineVersion":      e.EngineVersion,
		"methodologyVersion": e.MethodologyVersion,
		"rulesetId":          e.RulesetID,
		"rulesetRevision":    strconv.Itoa(e.RulesetRevision),
		"mode":               string(e.Mode),
		"verdict":            string(e.Verdict),
		"timestamp":          e.Timestamp.Format(time.RFC3339Nano),
	}
}
