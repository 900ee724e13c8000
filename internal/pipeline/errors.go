package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/ppiankov/factlens/internal/validate"
)

// ErrEmptyEvidence is returned when there is neither text, URL nor media to analyze
var ErrEmptyEvidence = errors.New("no evidence to analyze")

// InvocationError marks a failed model invocation (network, timeout, quota).
// It is fatal for the request; nothing is retried.
type InvocationError struct {
	Provider string
	Err      error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("%s invocation failed: %v", e.Provider, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// IsInvocationError reports whether err (or anything it wraps) is an InvocationError
func IsInvocationError(err error) bool {
	var ie *InvocationError
	return errors.As(err, &ie)
}

var userMessages = map[string]struct {
	failure, empty, timeout string
}{
	"pt": {
		failure: "Ocorreu um erro na auditoria.",
		empty:   "Nenhum conteúdo para auditar.",
		timeout: "A auditoria demorou demais e foi interrompida. Tente novamente.",
	},
	"en": {
		failure: "An error occurred during the audit.",
		empty:   "There is no content to audit.",
		timeout: "The audit took too long and was stopped. Please try again.",
	},
}

// UserMessage maps any analysis error to the single message shown to users.
// Validation errors keep their own text; everything else is generic.
func UserMessage(err error, locale string) string {
	msgs, ok := userMessages[locale]
	if !ok {
		msgs = userMessages["pt"]
	}

	var ve *validate.ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Error()
	case errors.Is(err, ErrEmptyEvidence):
		return msgs.empty
	case errors.Is(err, context.DeadlineExceeded):
		return msgs.timeout
	default:
		return msgs.failure
	}
}
