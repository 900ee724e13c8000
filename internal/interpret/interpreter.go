// Package interpret turns free-text model answers into draft result records.
//
// Extraction is best-effort, case-insensitive and line-based. Nothing in here
// returns an error: text that matches no label leaves the conservative defaults
// (unverifiable, reliability 50) in place.
package interpret

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/prompt"
)

// TruncationMarker is appended to the fallback canonical fact
const TruncationMarker = "..."

// maxFallbackFactRunes bounds the fallback canonical fact
const maxFallbackFactRunes = 200

// maxSectionLines bounds how many bullet lines are read after a section label
const maxSectionLines = 6

// Interpreter extracts structured fields using every known label set
type Interpreter struct {
	sets       []prompt.LabelSet
	factLabels []*regexp.Regexp
	confidence []*regexp.Regexp
	phrases    map[model.AnalysisMode][]phrase
}

type phrase struct {
	text string // normalized (lowercase) phrase
	rule prompt.Rule
}

// New creates an interpreter accepting the phrases of all label sets.
// Passing no sets uses every locale in the shared table.
func New(sets ...prompt.LabelSet) *Interpreter {
	if len(sets) == 0 {
		sets = prompt.AllLabelSets()
	}

	in := &Interpreter{
		sets:    sets,
		phrases: make(map[model.AnalysisMode][]phrase),
	}

	for _, set := range sets {
		in.factLabels = append(in.factLabels, labelLinePattern(set.CanonicalFact))
		in.confidence = append(in.confidence,
			regexp.MustCompile(`(?i)`+regexp.QuoteMeta(normalizeLabel(set.Confidence))+`\s*([-+]?\d+(?:[.,]\d+)?)\s*(%)?[ \t]*([-–])?`))

		for _, mode := range model.Modes() {
			line := set.VerdictLine(mode)
			for _, opt := range line.Options {
				in.phrases[mode] = append(in.phrases[mode], phrase{
					text: normalize(line.Phrase(opt)),
					rule: opt.Rule,
				})
			}
		}
	}

	return in
}

// Interpret parses rawText produced for the given mode into a draft record
func (in *Interpreter) Interpret(mode model.AnalysisMode, rawText, requestID string) model.ResultRecord {
	// 1. Defaults
	draft := model.NewDraft(mode, requestID, rawText)

	// 2. Canonical atomic fact
	draft.CanonicalFact = in.canonicalFact(rawText)

	// 3. Mode-specific verdict phrase
	normalized := normalize(rawText)
	if rule, ok := in.matchVerdict(mode, normalized); ok {
		applyRule(&draft, rule)
	}

	// 4. Explicit confidence always wins when well-formed
	if r, ok := in.confidenceValue(normalized); ok {
		draft.AuditReliability = r
	}

	// 5. Forensic sections
	if mode == model.ModeForensic {
		if rank, ok := in.sourceRank(rawText); ok {
			draft.SourceRank = rank
		}
		if interests := in.interests(rawText); len(interests) > 0 {
			draft.Interests = interests
		}
	}

	return draft
}

func applyRule(draft *model.ResultRecord, rule prompt.Rule) {
	draft.Verdict = rule.Verdict
	draft.AuditReliability = rule.Reliability
	if rule.Factuality != "" {
		draft.Factuality = rule.Factuality
	}
	if rule.OpinionLoad != "" {
		draft.OpinionLoad = rule.OpinionLoad
	}
}

// matchVerdict picks the phrase whose match starts earliest in the text.
// Ties (same offset) go to the phrase listed first in the label table.
func (in *Interpreter) matchVerdict(mode model.AnalysisMode, normalized string) (prompt.Rule, bool) {
	best := -1
	var rule prompt.Rule
	for _, p := range in.phrases[mode] {
		idx := strings.Index(normalized, p.text)
		if idx < 0 {
			continue
		}
		if best < 0 || idx < best {
			best = idx
			rule = p.rule
		}
	}
	return rule, best >= 0
}

// confidenceValue returns the first well-formed integer percentage in [0,100].
// Out-of-range or fractional values are ignored, as are ranges such as "0-100%".
func (in *Interpreter) confidenceValue(normalized string) (int, bool) {
	best := -1
	value := 0
	for _, re := range in.confidence {
		for _, loc := range re.FindAllStringSubmatchIndex(normalized, -1) {
			if best >= 0 && loc[0] >= best {
				break
			}
			// a dash right after a bare number starts a range
			if loc[6] >= 0 && loc[4] < 0 {
				continue
			}
			n, err := strconv.Atoi(strings.TrimPrefix(normalized[loc[2]:loc[3]], "+"))
			if err != nil || n < 0 || n > 100 {
				continue
			}
			best = loc[0]
			value = n
			break
		}
	}
	return value, best >= 0
}

func (in *Interpreter) canonicalFact(rawText string) string {
	lines := strings.Split(rawText, "\n")
	for i, line := range lines {
		for _, re := range in.factLabels {
			m := re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if fact := cleanValue(m[1]); fact != "" {
				return fact
			}
			// Label on its own line: the description follows as the next line
			if next := nextContentLine(lines[i+1:]); next != "" {
				return next
			}
		}
	}

	first := lines[0]
	return truncate(strings.TrimRight(first, "\r"), maxFallbackFactRunes) + TruncationMarker
}

func (in *Interpreter) sourceRank(rawText string) (string, bool) {
	for _, set := range in.sets {
		section, ok := sectionText(rawText, set.SourceRanking)
		if !ok {
			continue
		}
		if v := firstKeyword(section, set.SourceTiers); v != "" {
			return v, true
		}
	}
	return "", false
}

func (in *Interpreter) interests(rawText string) []string {
	for _, set := range in.sets {
		section, ok := sectionText(rawText, set.Interests)
		if !ok {
			continue
		}
		tags := allKeywords(section, set.InterestTags)
		if len(tags) == 0 {
			continue
		}
		// "none detected" only stands when nothing else was named
		if len(tags) > 1 {
			filtered := tags[:0]
			for _, t := range tags {
				if t != prompt.InterestNone {
					filtered = append(filtered, t)
				}
			}
			tags = filtered
		}
		return tags
	}
	return nil
}
