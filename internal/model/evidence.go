package model

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// InputType is the declared kind of evidence submitted by the user
type InputType string

const (
	InputText      InputType = "text"
	InputImage     InputType = "image"
	InputVideo     InputType = "video"
	InputLink      InputType = "link"
	InputTextImage InputType = "text_image"
)

// ParseInputType converts a user-supplied string into an InputType
func ParseInputType(s string) (InputType, error) {
	switch InputType(strings.ToLower(strings.TrimSpace(s))) {
	case InputText:
		return InputText, nil
	case InputImage:
		return InputImage, nil
	case InputVideo:
		return InputVideo, nil
	case InputLink, "url":
		return InputLink, nil
	case InputTextImage:
		return InputTextImage, nil
	default:
		return "", fmt.Errorf("unknown input type: %q (supported: text, image, video, link, text_image)", s)
	}
}

// MediaPart is one inline binary blob forwarded to the model
type MediaPart struct {
	Data     []byte `json:"-"`
	MIMEType string `json:"mime_type"`
	Name     string `json:"name,omitempty"`
}

// DataURI renders the part as a base64 data URI (used for previews and OpenAI image parts)
func (m MediaPart) DataURI() string {
	return fmt.Sprintf("data:%s;base64,%s", m.MIMEType, base64.StdEncoding.EncodeToString(m.Data))
}

// IsImage reports whether the part carries an image
func (m MediaPart) IsImage() bool {
	return strings.HasPrefix(strings.ToLower(m.MIMEType), "image/")
}

// EvidenceInput is the validated evidence handed to the analyzer.
// Validation (length, media presence, URL shape) happens in the caller.
type EvidenceInput struct {
	Type  InputType   `json:"input_type"`
	Text  string      `json:"text,omitempty"`
	URL   string      `json:"url,omitempty"`
	Media []MediaPart `json:"media,omitempty"`

	// PageExcerpt is filled by the URL fetcher when enabled; never by users.
	PageExcerpt string `json:"-"`
}

// Content returns the textual evidence: the text snippet, or the URL for link inputs
func (e EvidenceInput) Content() string {
	text := strings.TrimSpace(e.Text)
	if e.Type == InputLink && strings.TrimSpace(e.URL) != "" {
		if text == "" {
			return strings.TrimSpace(e.URL)
		}
		return strings.TrimSpace(e.URL) + "\n" + text
	}
	if text == "" {
		return strings.TrimSpace(e.URL)
	}
	return text
}

// HasMedia reports whether at least one media part is attached
func (e EvidenceInput) HasMedia() bool {
	return len(e.Media) > 0
}
