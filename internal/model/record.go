package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/OneOfOne/xxhash"
)

// Defaults applied to every draft before the model text is interpreted
const (
	DefaultReliability = 50
	DefaultSourceRank  = "tier C / secondary"
	DefaultInterest    = "general analysis"
	MaxTopSources      = 3
)

// ResultRecord is the structured artifact produced once per analysis.
// It is handed to renderers, telemetry and sharing read-only.
type ResultRecord struct {
	AuditID         string          `json:"audit_id"`
	RequestID       string          `json:"request_id"`
	InputType       InputType       `json:"input_type,omitempty"`
	Mode            AnalysisMode    `json:"mode"`
	AnalysisLens    AnalysisLens    `json:"analysis_lens"`
	EvidencePreview EvidencePreview `json:"evidence_preview"`

	CanonicalFact    string      `json:"canonical_fact"`
	Verdict          Verdict     `json:"verdict"`
	AuditReliability int         `json:"audit_reliability"` // 0-100
	Factuality       Level       `json:"factuality"`
	Temporality      Temporality `json:"temporality"`
	OpinionLoad      Level       `json:"opinion_load"`
	SourceRank       string      `json:"source_rank"`
	TopSources       []Source    `json:"top_sources"`
	Interests        []string    `json:"interests"`
	Conclusion       string      `json:"conclusion"` // Raw model narrative, unmodified

	ForensicHash string    `json:"forensic_hash"`
	Timestamp    time.Time `json:"timestamp"`

	Engine EngineProfile `json:"engine"`
}

// EvidencePreview echoes the caller's evidence for display; never derived from model text
type EvidencePreview struct {
	TextSnippet string   `json:"text_snippet,omitempty"`
	MediaURLs   []string `json:"media_urls,omitempty"`
}

// NewDraft returns a record initialized with the documented conservative defaults
func NewDraft(mode AnalysisMode, requestID, rawText string) ResultRecord {
	return ResultRecord{
		AuditID:          requestID,
		RequestID:        requestID,
		Mode:             mode,
		AnalysisLens:     mode.Lens(),
		Verdict:          VerdictUnverifiable,
		AuditReliability: DefaultReliability,
		Factuality:       LevelLow,
		Temporality:      TemporalityPartial,
		OpinionLoad:      LevelMedium,
		SourceRank:       DefaultSourceRank,
		TopSources:       []Source{},
		Interests:        []string{DefaultInterest},
		Conclusion:       rawText,
	}
}

// AttachEvidence fills the preview fields from caller-supplied evidence
func (r *ResultRecord) AttachEvidence(ev EvidenceInput) {
	r.InputType = ev.Type
	r.EvidencePreview = EvidencePreview{
		TextSnippet: truncateRunes(ev.Content(), 200),
	}
	for _, m := range ev.Media {
		r.EvidencePreview.MediaURLs = append(r.EvidencePreview.MediaURLs, m.DataURI())
	}
}

// ForensicHash derives a short, stable fingerprint for a request and its conclusion
func ForensicHash(requestID, conclusion string) string {
	sum := xxhash.ChecksumString64(requestID + "\x00" + conclusion)
	return strings.ToUpper(strconv.FormatUint(sum, 36))
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
