package model

import (
	"fmt"
	"strings"
)

// AnalysisMode selects the prompt template and the extraction rules
type AnalysisMode string

const (
	ModeFactual   AnalysisMode = "factual"   // Did the event happen?
	ModeNarrative AnalysisMode = "narrative" // How is the fact being used?
	ModeForensic  AnalysisMode = "forensic"  // Full multidimensional audit
)

// Modes lists every supported mode in display order
func Modes() []AnalysisMode {
	return []AnalysisMode{ModeFactual, ModeNarrative, ModeForensic}
}

// ParseMode converts a user-supplied string into an AnalysisMode.
// An empty string selects the forensic mode.
func ParseMode(s string) (AnalysisMode, error) {
	switch AnalysisMode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeFactual:
		return ModeFactual, nil
	case ModeNarrative:
		return ModeNarrative, nil
	case ModeForensic, "":
		return ModeForensic, nil
	default:
		return "", fmt.Errorf("unknown analysis mode: %q (supported: factual, narrative, forensic)", s)
	}
}

// AnalysisLens is the evaluative angle reported on the result card
type AnalysisLens string

const (
	LensForensic    AnalysisLens = "FORENSIC"
	LensFactual     AnalysisLens = "FACTUAL"
	LensStatistical AnalysisLens = "STATISTICAL"
	LensPolitical   AnalysisLens = "POLITICAL"
	LensNarrative   AnalysisLens = "NARRATIVE"
)

// Lens derives the analysis lens from the mode
func (m AnalysisMode) Lens() AnalysisLens {
	switch m {
	case ModeFactual:
		return LensFactual
	case ModeNarrative:
		return LensNarrative
	default:
		return LensForensic
	}
}

// Verdict is the closed set of audit outcomes
type Verdict string

const (
	VerdictTrueWithSource       Verdict = "TRUE_WITH_SOURCE"
	VerdictTrueImprecise        Verdict = "TRUE_IMPRECISE"
	VerdictDistorted            Verdict = "DISTORTED"
	VerdictFalse                Verdict = "FALSE"
	VerdictUnverifiable         Verdict = "UNVERIFIABLE"
	VerdictNeedsEvidence        Verdict = "NEEDS_EVIDENCE"
	VerdictStatedDataWithSource Verdict = "STATED_DATA_WITH_SOURCE"
)

// Verdicts returns every permitted verdict
func Verdicts() []Verdict {
	return []Verdict{
		VerdictTrueWithSource,
		VerdictTrueImprecise,
		VerdictDistorted,
		VerdictFalse,
		VerdictUnverifiable,
		VerdictNeedsEvidence,
		VerdictStatedDataWithSource,
	}
}

// IsAffirmative reports whether the verdict asserts the claim is backed by a source
func (v Verdict) IsAffirmative() bool {
	return v == VerdictTrueWithSource || v == VerdictStatedDataWithSource
}

// Level is a three-step qualitative scale used for factuality and opinion load
type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

// Temporality describes how current the analysed content is
type Temporality string

const (
	TemporalityCurrent Temporality = "current"
	TemporalityOld     Temporality = "old"
	TemporalityPartial Temporality = "partial"
)
