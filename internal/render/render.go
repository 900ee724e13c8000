// Package render turns result records into JSON reports, Markdown cards,
// share text and terminal summaries. Records are read, never modified.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/ppiankov/factlens/internal/model"
)

// Renderer renders records for one locale
type Renderer struct {
	locale        string
	includeFooter bool
	policy        *bluemonday.Policy
}

// NewRenderer creates a renderer; includeFooter adds engine metadata to Markdown cards
func NewRenderer(locale string, includeFooter bool) *Renderer {
	return &Renderer{
		locale:        locale,
		includeFooter: includeFooter,
		policy:        bluemonday.StrictPolicy(),
	}
}

// JSON writes the record as indented JSON
func JSON(w io.Writer, record model.ResultRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(record); err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return nil
}

// WriteJSON writes the record to path
func (r *Renderer) WriteJSON(record model.ResultRecord, path string) error {
	return writeFile(path, func(w io.Writer) error { return JSON(w, record) })
}

// WriteMarkdown writes the Markdown card to path
func (r *Renderer) WriteMarkdown(record model.ResultRecord, path string) error {
	return writeFile(path, func(w io.Writer) error {
		_, err := io.WriteString(w, r.Markdown(record))
		return err
	})
}

// Markdown renders the report card. Model text and evidence are sanitized
// so that HTML in them cannot reach a Markdown viewer.
func (r *Renderer) Markdown(record model.ResultRecord) string {
	t := textsFor(r.locale)
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s: %s\n\n", t.brand, t.auditTitle)
	fmt.Fprintf(&sb, "**%s:** %s  \n", t.auditID, record.AuditID)
	fmt.Fprintf(&sb, "**%s:** %s\n\n", t.lens, record.AnalysisLens)

	fmt.Fprintf(&sb, "## %s\n\n", t.evidence)
	if n := len(record.EvidencePreview.MediaURLs); n > 0 {
		fmt.Fprintf(&sb, "_%d %s_\n\n", n, t.mediaAttached)
	}
	if snippet := r.clean(record.EvidencePreview.TextSnippet); snippet != "" {
		fmt.Fprintf(&sb, "> %s\n\n", snippet)
	}

	fmt.Fprintf(&sb, "## %s: %s\n\n", t.verdict, VerdictLabel(record.Verdict, r.locale))
	fmt.Fprintf(&sb, "**%s:** %d%%  \n", t.confidence, record.AuditReliability)
	fmt.Fprintf(&sb, "_%s_\n\n", t.reliabilityNote)

	fmt.Fprintf(&sb, "**%s:** \"%s\"\n\n", t.fact, r.clean(record.CanonicalFact))

	fmt.Fprintf(&sb, "| | |\n|---|---|\n")
	fmt.Fprintf(&sb, "| %s | %s |\n", t.factuality, levelLabel(record.Factuality, t))
	fmt.Fprintf(&sb, "| %s | %s |\n", t.sourceRank, record.SourceRank)
	fmt.Fprintf(&sb, "| %s | %s |\n", t.temporality, temporalityLabel(record.Temporality, t))
	fmt.Fprintf(&sb, "| %s | %s |\n", t.opinionLoad, levelLabel(record.OpinionLoad, t))
	fmt.Fprintf(&sb, "| %s | %s |\n\n", t.interests, strings.Join(record.Interests, ", "))

	fmt.Fprintf(&sb, "## %s\n\n", t.sources)
	if len(record.TopSources) == 0 {
		fmt.Fprintf(&sb, "%s\n\n", t.noSources)
	}
	for _, src := range record.TopSources {
		title := r.clean(src.Title)
		if title == "" {
			title = src.URI
		}
		marker := ""
		if src.IsOfficial {
			marker = fmt.Sprintf(" (%s)", t.official)
		}
		fmt.Fprintf(&sb, "- [%s](%s)%s\n", title, src.URI, marker)
	}
	if len(record.TopSources) > 0 {
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "## %s\n\n", t.conclusion)
	fmt.Fprintf(&sb, "%s\n", r.clean(record.Conclusion))

	if r.includeFooter {
		e := record.Engine
		fmt.Fprintf(&sb, "\n---\n\n_%s %s · %s · %s r%d · %s · %s_\n",
			t.engine, e.EngineVersion, e.MethodologyVersion, e.RulesetID, e.RulesetRevision,
			record.Timestamp.Format("2006-01-02 15:04 MST"), record.ForensicHash)
	}

	return sb.String()
}

// ShareText renders the plain-text summary users paste into messengers
func (r *Renderer) ShareText(record model.ResultRecord) string {
	t := textsFor(r.locale)
	return fmt.Sprintf("🛡️ %s — %s\n", t.brand, t.auditTitle) +
		fmt.Sprintf("🔍 %s: %s\n", t.verdict, VerdictLabel(record.Verdict, r.locale)) +
		fmt.Sprintf("📊 %s: %d%%\n", t.confidence, record.AuditReliability) +
		fmt.Sprintf("📋 %s: %s\n", t.fact, record.CanonicalFact) +
		fmt.Sprintf("🆔 %s: %s\n", t.auditID, record.AuditID) +
		fmt.Sprintf("📝 %s: %s\n\n", t.summary, record.Conclusion) +
		fmt.Sprintf("🌐 %s", siteURL)
}

// ForensicRecord renders the short line copied next to the canonical fact
func (r *Renderer) ForensicRecord(record model.ResultRecord) string {
	t := textsFor(r.locale)
	return fmt.Sprintf("%s [%s]: %s\n%s: %s\n%s %s",
		t.fact, record.AuditID, record.CanonicalFact,
		t.verdict, VerdictLabel(record.Verdict, r.locale),
		t.verifiedAt, siteURL)
}

// Summary prints a compact terminal summary
func (r *Renderer) Summary(w io.Writer, record model.ResultRecord) {
	t := textsFor(r.locale)

	fmt.Fprintf(w, "\n%s: %s (%d%%)\n", t.verdict, VerdictLabel(record.Verdict, r.locale), record.AuditReliability)
	fmt.Fprintf(w, "%s: %s\n", t.fact, record.CanonicalFact)
	fmt.Fprintf(w, "%s: %s | %s: %s | %s: %s\n",
		t.factuality, levelLabel(record.Factuality, t),
		t.opinionLoad, levelLabel(record.OpinionLoad, t),
		t.sourceRank, record.SourceRank)
	if len(record.TopSources) > 0 {
		fmt.Fprintf(w, "%s:\n", t.sources)
		for _, src := range record.TopSources {
			marker := ""
			if src.IsOfficial {
				marker = " *"
			}
			fmt.Fprintf(w, "  - %s%s\n", src.URI, marker)
		}
	}
	fmt.Fprintf(w, "%s: %s\n", t.auditID, record.AuditID)
}

// clean strips every HTML construct from model-controlled text
func (r *Renderer) clean(s string) string {
	return strings.TrimSpace(r.policy.Sanitize(s))
}

func writeFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
