package model

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNewDraft_Defaults(t *testing.T) {
	d := NewDraft(ModeNarrative, "req-1", "raw text")

	if d.Verdict != VerdictUnverifiable {
		t.Errorf("Expected UNVERIFIABLE, got %s", d.Verdict)
	}
	if d.AuditReliability != 50 {
		t.Errorf("Expected reliability 50, got %d", d.AuditReliability)
	}
	if d.Factuality != LevelLow || d.OpinionLoad != LevelMedium {
		t.Errorf("Unexpected quality defaults: %s/%s", d.Factuality, d.OpinionLoad)
	}
	if d.SourceRank != "tier C / secondary" {
		t.Errorf("Unexpected source rank: %s", d.SourceRank)
	}
	if len(d.Interests) != 1 || d.Interests[0] != "general analysis" {
		t.Errorf("Unexpected interests: %v", d.Interests)
	}
	if d.Conclusion != "raw text" {
		t.Errorf("Expected conclusion kept verbatim, got %q", d.Conclusion)
	}
	if d.AuditID != "req-1" || d.RequestID != "req-1" {
		t.Errorf("Expected ids passed through, got %s/%s", d.AuditID, d.RequestID)
	}
	if d.AnalysisLens != LensNarrative {
		t.Errorf("Expected NARRATIVE lens, got %s", d.AnalysisLens)
	}
	if d.TopSources == nil {
		t.Error("Expected empty, non-nil top sources")
	}
}

func TestAttachEvidence(t *testing.T) {
	d := NewDraft(ModeForensic, "r", "")
	d.AttachEvidence(EvidenceInput{
		Type:  InputTextImage,
		Text:  strings.Repeat("ç", 250),
		Media: []MediaPart{{Data: []byte("abc"), MIMEType: "image/png"}},
	})

	if d.InputType != InputTextImage {
		t.Errorf("Expected input type recorded, got %s", d.InputType)
	}
	if n := utf8.RuneCountInString(d.EvidencePreview.TextSnippet); n != 200 {
		t.Errorf("Expected snippet truncated to 200 runes, got %d", n)
	}
	if len(d.EvidencePreview.MediaURLs) != 1 || d.EvidencePreview.MediaURLs[0] != "data:image/png;base64,YWJj" {
		t.Errorf("Unexpected media URLs: %v", d.EvidencePreview.MediaURLs)
	}
}

func TestForensicHash(t *testing.T) {
	a := ForensicHash("req-1", "conclusion")
	if a != ForensicHash("req-1", "conclusion") {
		t.Error("Expected hash to be deterministic")
	}
	if a == ForensicHash("req-2", "conclusion") || a == ForensicHash("req-1", "other") {
		t.Error("Expected hash to depend on request id and conclusion")
	}
	if a != strings.ToUpper(a) {
		t.Errorf("Expected upper-case hash, got %s", a)
	}
	// The separator keeps ("ab","c") and ("a","bc") apart
	if ForensicHash("ab", "c") == ForensicHash("a", "bc") {
		t.Error("Expected field boundary to affect the hash")
	}
}
