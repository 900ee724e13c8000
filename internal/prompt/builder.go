package prompt

import (
	"fmt"
	"strings"

	"github.com/ppiankov/factlens/internal/model"
)

// Payload is the deterministic instruction payload sent to the model
type Payload struct {
	RequestID         string
	Mode              model.AnalysisMode
	InputType         model.InputType
	SystemInstruction string
	Prompt            string
	Media             []model.MediaPart
}

// Builder produces prompt payloads for one label locale
type Builder struct {
	labels LabelSet
	text   templateText
}

// NewBuilder creates a builder emitting the labels of the given locale
func NewBuilder(locale string) (*Builder, error) {
	labels, err := Lookup(locale)
	if err != nil {
		return nil, err
	}
	return &Builder{labels: labels, text: templates[labels.Locale]}, nil
}

// Labels returns the label set this builder emits
func (b *Builder) Labels() LabelSet {
	return b.labels
}

// Build assembles the system instruction and the user prompt.
// It has no side effects: the same inputs always yield the same payload.
func (b *Builder) Build(mode model.AnalysisMode, ev model.EvidenceInput, requestID string) Payload {
	return Payload{
		RequestID:         requestID,
		Mode:              mode,
		InputType:         ev.Type,
		SystemInstruction: b.systemInstruction(mode),
		Prompt:            b.trailer(mode, ev, requestID),
		Media:             ev.Media,
	}
}

func (b *Builder) systemInstruction(mode model.AnalysisMode) string {
	var sb strings.Builder
	t := b.text

	sb.WriteString(t.preamble)
	fmt.Fprintf(&sb, "\nanalysisType = %q\n\n", string(mode))
	sb.WriteString(t.answerPerType)
	sb.WriteString("\n\n")

	switch mode {
	case model.ModeFactual:
		b.writeFactual(&sb)
	case model.ModeNarrative:
		b.writeNarrative(&sb)
	default:
		b.writeForensic(&sb)
	}

	sb.WriteString("\n")
	sb.WriteString(t.generalRulesHeader)
	sb.WriteString("\n\n")
	for _, rule := range t.generalRules {
		fmt.Fprintf(&sb, "- %s\n", rule)
	}
	sb.WriteString("\n")
	sb.WriteString(t.answerOnly)
	sb.WriteString("\n")

	return sb.String()
}

func (b *Builder) writeFactual(sb *strings.Builder) {
	t := b.text.factual
	writeSection(sb, b.text, t)
	fmt.Fprintf(sb, "%s %s\n\n", b.labels.Factual.Label, b.labels.Factual.choices())
	writeBulletBlocks(sb, t.blocks)
	sb.WriteString(t.closing)
	sb.WriteString("\n")
}

func (b *Builder) writeNarrative(sb *strings.Builder) {
	t := b.text.narrative
	writeSection(sb, b.text, t)
	fmt.Fprintf(sb, "%s %s\n\n", b.labels.Narrative.Label, b.labels.Narrative.choices())
	writeBulletBlocks(sb, t.blocks)
	sb.WriteString(t.closing)
	sb.WriteString("\n")
}

func (b *Builder) writeForensic(sb *strings.Builder) {
	t := b.text.forensic
	l := b.labels
	writeSection(sb, b.text, t)
	fmt.Fprintf(sb, "%s %s\n\n", l.Forensic.Label, l.Forensic.choices())
	fmt.Fprintf(sb, "%s %s\n\n", l.Confidence, b.text.confidenceHint)
	fmt.Fprintf(sb, "%s\n- %s\n\n", l.CanonicalFact, b.text.canonicalFactHint)
	writeBulletBlocks(sb, t.blocks[:1])
	fmt.Fprintf(sb, "%s\n- %s\n\n", l.SourceRanking, keywordChoices(l.SourceTiers))
	fmt.Fprintf(sb, "%s\n- %s\n\n", l.Interests, keywordChoices(l.InterestTags))
	writeBulletBlocks(sb, t.blocks[1:])
}

func (b *Builder) trailer(mode model.AnalysisMode, ev model.EvidenceInput, requestID string) string {
	t := b.text
	content := ev.Content()
	if content == "" {
		content = b.labels.MediaPlaceholder
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s\n", t.auditIDLabel, requestID)
	fmt.Fprintf(&sb, "Input: %s\n", ev.Type)
	fmt.Fprintf(&sb, "%s: %s\n", t.analysisTypeLabel, mode)
	fmt.Fprintf(&sb, "%s: %s\n", t.contentLabel, content)
	if excerpt := strings.TrimSpace(ev.PageExcerpt); excerpt != "" {
		fmt.Fprintf(&sb, "%s:\n%s\n", t.pageExcerptLabel, excerpt)
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, t.closingInstruction, mode)
	sb.WriteString("\n")
	return sb.String()
}

func writeSection(sb *strings.Builder, t templateText, s modeText) {
	fmt.Fprintf(sb, "%s\n\n", s.header)
	fmt.Fprintf(sb, "%s\n%s\n\n", t.objectiveLabel, s.objective)
	fmt.Fprintf(sb, "%s\n", t.criteriaLabel)
	for _, c := range s.criteria {
		fmt.Fprintf(sb, "- %s\n", c)
	}
	fmt.Fprintf(sb, "\n%s\n\n", t.mustContainLabel)
}

func writeBulletBlocks(sb *strings.Builder, blocks []bulletBlock) {
	for _, blk := range blocks {
		fmt.Fprintf(sb, "%s\n", blk.title)
		for _, item := range blk.items {
			fmt.Fprintf(sb, "- %s\n", item)
		}
		sb.WriteString("\n")
	}
}

// keywordChoices lists the distinct accented keywords of a section ("a / b / c")
func keywordChoices(kws []Keyword) string {
	seen := make(map[string]bool)
	var words []string
	for _, kw := range kws {
		if seen[kw.Value] {
			continue
		}
		seen[kw.Value] = true
		words = append(words, kw.Word)
	}
	return strings.Join(words, " / ")
}
