package validate

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/factlens/internal/model"
)

// Minimum text lengths accepted per input type
const (
	MinTextLength      = 40
	MinCaptionLength   = 30
	MaxMediaPartsCount = 4
)

// ValidationError describes one rejected field of the evidence
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// IsValidationError reports whether err (or anything it wraps) is a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Evidence checks the evidence shape for its declared input type.
// The analyzer assumes evidence already passed this check.
func Evidence(ev model.EvidenceInput) error {
	text := strings.TrimSpace(ev.Text)
	textLen := utf8.RuneCountInString(text)

	for i, m := range ev.Media {
		if err := mediaPart(i, m); err != nil {
			return err
		}
	}
	if len(ev.Media) > MaxMediaPartsCount {
		return &ValidationError{Field: "media", Message: fmt.Sprintf("at most %d files per analysis", MaxMediaPartsCount)}
	}

	switch ev.Type {
	case model.InputText:
		if textLen < MinTextLength {
			return &ValidationError{Field: "text", Message: fmt.Sprintf("at least %d characters required, got %d", MinTextLength, textLen)}
		}

	case model.InputImage:
		if !hasMediaOfKind(ev.Media, "image/") {
			return &ValidationError{Field: "media", Message: "an image file is required"}
		}

	case model.InputVideo:
		if !hasMediaOfKind(ev.Media, "video/") && textLen < MinTextLength {
			return &ValidationError{Field: "media", Message: fmt.Sprintf("a video file or a description of at least %d characters is required", MinTextLength)}
		}

	case model.InputLink:
		if err := linkURL(ev.URL); err != nil {
			return err
		}

	case model.InputTextImage:
		if textLen < MinCaptionLength && !ev.HasMedia() {
			return &ValidationError{Field: "text", Message: fmt.Sprintf("a caption of at least %d characters or an image is required", MinCaptionLength)}
		}

	default:
		return &ValidationError{Field: "input_type", Message: fmt.Sprintf("unsupported input type %q", ev.Type)}
	}

	return nil
}

func mediaPart(i int, m model.MediaPart) error {
	field := fmt.Sprintf("media[%d]", i)
	mime := strings.ToLower(m.MIMEType)
	if !strings.HasPrefix(mime, "image/") && !strings.HasPrefix(mime, "video/") {
		return &ValidationError{Field: field, Message: fmt.Sprintf("unsupported MIME type %q (image/* or video/* only)", m.MIMEType)}
	}
	if len(m.Data) == 0 {
		return &ValidationError{Field: field, Message: "file is empty"}
	}
	return nil
}

func hasMediaOfKind(media []model.MediaPart, prefix string) bool {
	for _, m := range media {
		if strings.HasPrefix(strings.ToLower(m.MIMEType), prefix) {
			return true
		}
	}
	return false
}

func linkURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return &ValidationError{Field: "url", Message: "a URL is required"}
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return &ValidationError{Field: "url", Message: err.Error()}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return &ValidationError{Field: "url", Message: "only http and https URLs are supported"}
	}
	if parsed.Host == "" {
		return &ValidationError{Field: "url", Message: "URL has no host"}
	}
	return nil
}
