package validate

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ppiankov/factlens/internal/model"
)

func TestEvidence(t *testing.T) {
	longText := strings.Repeat("a", MinTextLength)
	png := model.MediaPart{Data: []byte{0x89}, MIMEType: "image/png"}
	mp4 := model.MediaPart{Data: []byte{0x00}, MIMEType: "video/mp4"}

	tests := []struct {
		name    string
		ev      model.EvidenceInput
		wantErr string // field; empty means valid
	}{
		{"text ok", model.EvidenceInput{Type: model.InputText, Text: longText}, ""},
		{"text short", model.EvidenceInput{Type: model.InputText, Text: "too short"}, "text"},
		{"text counts runes", model.EvidenceInput{Type: model.InputText, Text: strings.Repeat("ã", MinTextLength)}, ""},
		{"image ok", model.EvidenceInput{Type: model.InputImage, Media: []model.MediaPart{png}}, ""},
		{"image missing", model.EvidenceInput{Type: model.InputImage, Text: longText}, "media"},
		{"image given video", model.EvidenceInput{Type: model.InputImage, Media: []model.MediaPart{mp4}}, "media"},
		{"video file", model.EvidenceInput{Type: model.InputVideo, Media: []model.MediaPart{mp4}}, ""},
		{"video description", model.EvidenceInput{Type: model.InputVideo, Text: longText}, ""},
		{"video nothing", model.EvidenceInput{Type: model.InputVideo, Text: "clip"}, "media"},
		{"link ok", model.EvidenceInput{Type: model.InputLink, URL: "https://example.com/a"}, ""},
		{"link scheme", model.EvidenceInput{Type: model.InputLink, URL: "ftp://example.com/a"}, "url"},
		{"link no host", model.EvidenceInput{Type: model.InputLink, URL: "https:///path"}, "url"},
		{"link empty", model.EvidenceInput{Type: model.InputLink}, "url"},
		{"text_image caption", model.EvidenceInput{Type: model.InputTextImage, Text: strings.Repeat("b", MinCaptionLength)}, ""},
		{"text_image media", model.EvidenceInput{Type: model.InputTextImage, Media: []model.MediaPart{png}}, ""},
		{"text_image neither", model.EvidenceInput{Type: model.InputTextImage, Text: "short"}, "text"},
		{"bad mime", model.EvidenceInput{Type: model.InputImage, Media: []model.MediaPart{{Data: []byte{1}, MIMEType: "application/pdf"}}}, "media[0]"},
		{"empty file", model.EvidenceInput{Type: model.InputImage, Media: []model.MediaPart{{MIMEType: "image/png"}}}, "media[0]"},
		{"unknown type", model.EvidenceInput{Type: "audio", Text: longText}, "input_type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Evidence(tt.ev)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected valid evidence, got %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if ve.Field != tt.wantErr {
				t.Errorf("Expected field %s, got %s (%s)", tt.wantErr, ve.Field, ve.Message)
			}
		})
	}
}

func TestEvidence_TooManyFiles(t *testing.T) {
	media := make([]model.MediaPart, MaxMediaPartsCount+1)
	for i := range media {
		media[i] = model.MediaPart{Data: []byte{1}, MIMEType: "image/jpeg"}
	}

	err := Evidence(model.EvidenceInput{Type: model.InputImage, Media: media})
	if err == nil {
		t.Fatal("Expected error for too many files")
	}
}

func TestIsValidationError(t *testing.T) {
	wrapped := fmt.Errorf("request rejected: %w", &ValidationError{Field: "text", Message: "short"})

	if !IsValidationError(wrapped) {
		t.Error("Expected wrapped ValidationError to be detected")
	}
	if IsValidationError(errors.New("boom")) {
		t.Error("Expected plain error not to be a ValidationError")
	}
}
