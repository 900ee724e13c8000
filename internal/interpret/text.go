package interpret

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ppiankov/factlens/internal/prompt"
)

var (
	emphasis   = strings.NewReplacer("*", "", "`", "")
	spaceRuns  = regexp.MustCompile(`[ \t]+`)
	bulletHead = regexp.MustCompile(`^[\s>#*_\-•·]+`)
)

// normalize lowercases, strips markdown emphasis and collapses horizontal whitespace
func normalize(s string) string {
	s = emphasis.Replace(s)
	s = spaceRuns.ReplaceAllString(s, " ")
	return strings.ToLower(s)
}

// normalizeLabel lowercases a label so it matches normalized text
func normalizeLabel(label string) string {
	return strings.ToLower(spaceRuns.ReplaceAllString(label, " "))
}

// labelLinePattern matches a line starting with label, allowing leading
// markdown decoration (bullets, headings, bold markers)
func labelLinePattern(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^[\s>#*_\-•·]*` + regexp.QuoteMeta(label) + `[*_\s]*(.*)$`)
}

// cleanValue trims whitespace and leftover emphasis from an extracted value
func cleanValue(s string) string {
	s = strings.TrimSpace(strings.TrimRight(s, "\r"))
	s = strings.Trim(s, "*_ ")
	return strings.TrimSpace(s)
}

// nextContentLine returns the first non-empty line with bullet decoration removed.
// It gives up at the next label-looking line.
func nextContentLine(lines []string) string {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if looksLikeLabel(trimmed) {
			return ""
		}
		return cleanValue(bulletHead.ReplaceAllString(trimmed, ""))
	}
	return ""
}

// looksLikeLabel reports whether a line is an upper-case "HEADER:" line
func looksLikeLabel(line string) bool {
	line = cleanValue(line)
	if !strings.HasSuffix(line, ":") {
		return false
	}
	return line == strings.ToUpper(line) && line != strings.ToLower(line)
}

// sectionText returns the remainder of the label line plus the bullet lines under it
func sectionText(rawText, label string) (string, bool) {
	re := labelLinePattern(label)
	lines := strings.Split(rawText, "\n")
	for i, line := range lines {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		parts := []string{m[1]}
		taken := 0
		for _, next := range lines[i+1:] {
			trimmed := strings.TrimSpace(next)
			if trimmed == "" {
				if taken > 0 {
					break
				}
				continue
			}
			if looksLikeLabel(trimmed) || taken >= maxSectionLines {
				break
			}
			parts = append(parts, trimmed)
			taken++
		}
		return normalize(strings.Join(parts, "\n")), true
	}
	return "", false
}

type keywordHit struct {
	pos   int
	order int
	value string
}

func keywordHits(section string, kws []prompt.Keyword) []keywordHit {
	var hits []keywordHit
	for i, kw := range kws {
		if idx := strings.Index(section, strings.ToLower(kw.Word)); idx >= 0 {
			hits = append(hits, keywordHit{pos: idx, order: i, value: kw.Value})
		}
	}
	sort.SliceStable(hits, func(a, b int) bool {
		if hits[a].pos != hits[b].pos {
			return hits[a].pos < hits[b].pos
		}
		return hits[a].order < hits[b].order
	})
	return hits
}

// firstKeyword returns the value of the earliest keyword present in section
func firstKeyword(section string, kws []prompt.Keyword) string {
	hits := keywordHits(section, kws)
	if len(hits) == 0 {
		return ""
	}
	return hits[0].value
}

// allKeywords returns the distinct values present in section, in order of appearance
func allKeywords(section string, kws []prompt.Keyword) []string {
	seen := make(map[string]bool)
	var values []string
	for _, h := range keywordHits(section, kws) {
		if seen[h.value] {
			continue
		}
		seen[h.value] = true
		values = append(values, h.value)
	}
	return values
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
