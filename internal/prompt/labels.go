package prompt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/factlens/internal/model"
)

// Rule is the fixed outcome tied to one verdict phrase.
// Empty Factuality or OpinionLoad leaves the draft value untouched.
type Rule struct {
	Verdict     model.Verdict
	Reliability int
	Factuality  model.Level
	OpinionLoad model.Level
}

// Outcome rules shared by every locale
var (
	RuleFactualTrue      = Rule{Verdict: model.VerdictTrueWithSource, Reliability: 85, Factuality: model.LevelHigh}
	RuleFactualFalse     = Rule{Verdict: model.VerdictFalse, Reliability: 80, Factuality: model.LevelHigh}
	RuleFactualNotProven = Rule{Verdict: model.VerdictUnverifiable, Reliability: 60, Factuality: model.LevelMedium}

	RuleNarrativeFaithful    = Rule{Verdict: model.VerdictTrueWithSource, Reliability: 70, OpinionLoad: model.LevelLow}
	RuleNarrativeManipulated = Rule{Verdict: model.VerdictDistorted, Reliability: 75, OpinionLoad: model.LevelHigh}

	RuleForensicTrue        = Rule{Verdict: model.VerdictTrueWithSource, Reliability: 90, Factuality: model.LevelHigh}
	RuleForensicFalse       = Rule{Verdict: model.VerdictFalse, Reliability: 85, Factuality: model.LevelHigh}
	RuleForensicPartial     = Rule{Verdict: model.VerdictTrueImprecise, Reliability: 70, Factuality: model.LevelMedium}
	RuleForensicManipulated = Rule{Verdict: model.VerdictDistorted, Reliability: 75, Factuality: model.LevelMedium, OpinionLoad: model.LevelHigh}
	RuleForensicMixed       = Rule{Verdict: model.VerdictUnverifiable, Reliability: 65, Factuality: model.LevelLow}
)

// Option is one allowed answer after a verdict label
type Option struct {
	Word string
	Rule Rule
}

// VerdictLine is a labelled verdict line the model is asked to emit
type VerdictLine struct {
	Label   string
	Options []Option
}

// Phrase returns the exact text "<label> <option>" the interpreter looks for
func (v VerdictLine) Phrase(o Option) string {
	return v.Label + " " + o.Word
}

// choices renders "(A / B / C)" for the prompt
func (v VerdictLine) choices() string {
	words := make([]string, len(v.Options))
	for i, o := range v.Options {
		words[i] = o.Word
	}
	return "(" + strings.Join(words, " / ") + ")"
}

// Keyword maps a word found in a labelled section to a normalized value
type Keyword struct {
	Word  string
	Value string
}

// LabelSet is the versioned contract between the prompt builder and the interpreter.
// Every label the model is asked to print lives here and nowhere else.
type LabelSet struct {
	Locale string

	CanonicalFact string
	Confidence    string
	SourceRanking string
	Interests     string

	Factual   VerdictLine
	Narrative VerdictLine
	Forensic  VerdictLine

	SourceTiers  []Keyword
	InterestTags []Keyword

	MediaPlaceholder string
	EmptyResponse    string
}

// VerdictLine returns the verdict line used by the given mode
func (l LabelSet) VerdictLine(mode model.AnalysisMode) VerdictLine {
	switch mode {
	case model.ModeFactual:
		return l.Factual
	case model.ModeNarrative:
		return l.Narrative
	default:
		return l.Forensic
	}
}

// Source tier labels reported on the card
const (
	TierPrimaryLabel   = "tier A / primary"
	TierSecondaryLabel = model.DefaultSourceRank
	TierOpinionLabel   = "tier D / opinion"
	TierUnknownLabel   = "tier E / unknown"
)

// Interest tags reported on the card
const (
	InterestPolitical   = "political"
	InterestEconomic    = "economic"
	InterestIdeological = "ideological"
	InterestSocial      = "social"
	InterestNone        = "none detected"
)

// Portuguese is the original wording and the default locale
var Portuguese = LabelSet{
	Locale:        "pt",
	CanonicalFact: "FATO ATÔMICO CANÔNICO (FAC):",
	Confidence:    "CONFIABILIDADE ESTIMADA:",
	SourceRanking: "RANKING DE FONTES:",
	Interests:     "INTERESSES IDENTIFICADOS:",
	Factual: VerdictLine{
		Label: "VEREDICTO FACTUAL:",
		Options: []Option{
			{Word: "VERDADEIRO", Rule: RuleFactualTrue},
			{Word: "FALSO", Rule: RuleFactualFalse},
			{Word: "NÃO COMPROVADO", Rule: RuleFactualNotProven},
		},
	},
	Narrative: VerdictLine{
		Label: "USO DO FATO:",
		Options: []Option{
			{Word: "FIEL", Rule: RuleNarrativeFaithful},
			{Word: "MANIPULADO", Rule: RuleNarrativeManipulated},
			{Word: "DISTORCIDO", Rule: RuleNarrativeManipulated},
		},
	},
	Forensic: VerdictLine{
		Label: "VEREDICTO FINAL:",
		Options: []Option{
			{Word: "VERDADEIRO", Rule: RuleForensicTrue},
			{Word: "FALSO", Rule: RuleForensicFalse},
			{Word: "PARCIAL", Rule: RuleForensicPartial},
			{Word: "MANIPULADO", Rule: RuleForensicManipulated},
			{Word: "MISTO", Rule: RuleForensicMixed},
		},
	},
	SourceTiers: []Keyword{
		{Word: "primária", Value: TierPrimaryLabel},
		{Word: "primaria", Value: TierPrimaryLabel},
		{Word: "secundária", Value: TierSecondaryLabel},
		{Word: "secundaria", Value: TierSecondaryLabel},
		{Word: "opinativa", Value: TierOpinionLabel},
		{Word: "desconhecida", Value: TierUnknownLabel},
	},
	InterestTags: []Keyword{
		{Word: "político", Value: InterestPolitical},
		{Word: "politico", Value: InterestPolitical},
		{Word: "econômico", Value: InterestEconomic},
		{Word: "economico", Value: InterestEconomic},
		{Word: "ideológico", Value: InterestIdeological},
		{Word: "ideologico", Value: InterestIdeological},
		{Word: "social", Value: InterestSocial},
		{Word: "nenhum", Value: InterestNone},
	},
	MediaPlaceholder: "Análise baseada em mídia anexada",
	EmptyResponse:    "Nenhuma resposta textual foi gerada pelo modelo.",
}

// English mirrors Portuguese for English-speaking deployments
var English = LabelSet{
	Locale:        "en",
	CanonicalFact: "CANONICAL ATOMIC FACT (CAF):",
	Confidence:    "ESTIMATED CONFIDENCE:",
	SourceRanking: "SOURCE RANKING:",
	Interests:     "IDENTIFIED INTERESTS:",
	Factual: VerdictLine{
		Label: "FACTUAL VERDICT:",
		Options: []Option{
			{Word: "TRUE", Rule: RuleFactualTrue},
			{Word: "FALSE", Rule: RuleFactualFalse},
			{Word: "NOT PROVEN", Rule: RuleFactualNotProven},
		},
	},
	Narrative: VerdictLine{
		Label: "FACT USAGE:",
		Options: []Option{
			{Word: "FAITHFUL", Rule: RuleNarrativeFaithful},
			{Word: "MANIPULATED", Rule: RuleNarrativeManipulated},
			{Word: "DISTORTED", Rule: RuleNarrativeManipulated},
		},
	},
	Forensic: VerdictLine{
		Label: "FINAL VERDICT:",
		Options: []Option{
			{Word: "TRUE", Rule: RuleForensicTrue},
			{Word: "FALSE", Rule: RuleForensicFalse},
			{Word: "PARTIAL", Rule: RuleForensicPartial},
			{Word: "MANIPULATED", Rule: RuleForensicManipulated},
			{Word: "MIXED", Rule: RuleForensicMixed},
		},
	},
	SourceTiers: []Keyword{
		{Word: "primary", Value: TierPrimaryLabel},
		{Word: "secondary", Value: TierSecondaryLabel},
		{Word: "opinion", Value: TierOpinionLabel},
		{Word: "unknown", Value: TierUnknownLabel},
	},
	InterestTags: []Keyword{
		{Word: "political", Value: InterestPolitical},
		{Word: "economic", Value: InterestEconomic},
		{Word: "ideological", Value: InterestIdeological},
		{Word: "social", Value: InterestSocial},
		{Word: "none", Value: InterestNone},
	},
	MediaPlaceholder: "Analysis based on attached media",
	EmptyResponse:    "The model produced no textual response.",
}

// Locales is the full label table, keyed by locale code
var Locales = map[string]LabelSet{
	Portuguese.Locale: Portuguese,
	English.Locale:    English,
}

// Lookup returns the label set for a locale code
func Lookup(locale string) (LabelSet, error) {
	if locale == "" {
		return Portuguese, nil
	}
	l, ok := Locales[strings.ToLower(locale)]
	if !ok {
		return LabelSet{}, fmt.Errorf("unknown prompt locale: %q (supported: %s)", locale, strings.Join(LocaleCodes(), ", "))
	}
	return l, nil
}

// LocaleCodes returns the supported locale codes in a stable order
func LocaleCodes() []string {
	codes := make([]string, 0, len(Locales))
	for code := range Locales {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// AllLabelSets returns every label set in a stable order (pt first)
func AllLabelSets() []LabelSet {
	sets := make([]LabelSet, 0, len(Locales))
	sets = append(sets, Portuguese)
	for _, code := range LocaleCodes() {
		if code != Portuguese.Locale {
			sets = append(sets, Locales[code])
		}
	}
	return sets
}
