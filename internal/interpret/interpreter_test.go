package interpret

import (
	"strings"
	"testing"

	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/prompt"
)

func TestInterpret_ForensicFinalVerdictFalse(t *testing.T) {
	in := New()

	for _, raw := range []string{
		"FINAL VERDICT: FALSE",
		"final verdict: false",
		"Some preamble\n**Final Verdict:** False\nmore text",
	} {
		got := in.Interpret(model.ModeForensic, raw, "req-1")

		if got.Verdict != model.VerdictFalse {
			t.Errorf("%q: expected verdict FALSE, got %s", raw, got.Verdict)
		}
		if got.AuditReliability != 85 {
			t.Errorf("%q: expected reliability 85, got %d", raw, got.AuditReliability)
		}
		if got.Factuality != model.LevelHigh {
			t.Errorf("%q: expected factuality high, got %s", raw, got.Factuality)
		}
	}
}

func TestInterpret_ConfidenceOverride(t *testing.T) {
	in := New()

	tests := []struct {
		mode model.AnalysisMode
		raw  string
	}{
		{model.ModeForensic, "FINAL VERDICT: TRUE\nESTIMATED CONFIDENCE: 73%"},
		{model.ModeForensic, "ESTIMATED CONFIDENCE: 73%\nFINAL VERDICT: FALSE"},
		{model.ModeFactual, "FACTUAL VERDICT: NOT PROVEN\nestimated confidence: 73 %"},
		{model.ModeNarrative, "ESTIMATED CONFIDENCE: 73%"},
		{model.ModeForensic, "VEREDICTO FINAL: MISTO\nCONFIABILIDADE ESTIMADA: 73%"},
	}

	for _, tt := range tests {
		got := in.Interpret(tt.mode, tt.raw, "req-1")
		if got.AuditReliability != 73 {
			t.Errorf("%s %q: expected reliability 73, got %d", tt.mode, tt.raw, got.AuditReliability)
		}
	}
}

func TestInterpret_ConfidenceIgnoredWhenMalformed(t *testing.T) {
	in := New()

	tests := []string{
		"FINAL VERDICT: FALSE\nESTIMATED CONFIDENCE: 150%",
		"FINAL VERDICT: FALSE\nESTIMATED CONFIDENCE: -5%",
		"FINAL VERDICT: FALSE\nESTIMATED CONFIDENCE: 73.5%",
		"FINAL VERDICT: FALSE\nESTIMATED CONFIDENCE: high",
	}

	for _, raw := range tests {
		got := in.Interpret(model.ModeForensic, raw, "req-1")
		if got.AuditReliability != 85 {
			t.Errorf("%q: expected malformed confidence to be ignored (85), got %d", raw, got.AuditReliability)
		}
	}
}

func TestInterpret_ConfidenceSkipsEchoedRange(t *testing.T) {
	in := New()

	tests := []struct {
		raw  string
		want int
	}{
		{"FINAL VERDICT: TRUE\nESTIMATED CONFIDENCE: 0-100%\nESTIMATED CONFIDENCE: 30%", 30},
		{"FINAL VERDICT: TRUE\nESTIMATED CONFIDENCE: 70 – 80%\nESTIMATED CONFIDENCE: 75%", 75},
		{"FINAL VERDICT: FALSE\nESTIMATED CONFIDENCE: 0-100%", 85},
		{"FINAL VERDICT: FALSE\nESTIMATED CONFIDENCE: 40% - based on two sources", 40},
		{"FINAL VERDICT: FALSE\nESTIMATED CONFIDENCE: 40\n- bullet", 40},
	}

	for _, tt := range tests {
		got := in.Interpret(model.ModeForensic, tt.raw, "req-1")
		if got.AuditReliability != tt.want {
			t.Errorf("%q: expected reliability %d, got %d", tt.raw, tt.want, got.AuditReliability)
		}
	}
}

func TestInterpret_Defaults(t *testing.T) {
	in := New()
	raw := "The model rambled without any label at all.\nSecond line."

	for _, mode := range model.Modes() {
		got := in.Interpret(mode, raw, "req-42")

		if got.Verdict != model.VerdictUnverifiable {
			t.Errorf("%s: expected UNVERIFIABLE, got %s", mode, got.Verdict)
		}
		if got.AuditReliability != model.DefaultReliability {
			t.Errorf("%s: expected reliability %d, got %d", mode, model.DefaultReliability, got.AuditReliability)
		}
		if got.Factuality != model.LevelLow {
			t.Errorf("%s: expected factuality low, got %s", mode, got.Factuality)
		}
		if got.OpinionLoad != model.LevelMedium {
			t.Errorf("%s: expected opinion load medium, got %s", mode, got.OpinionLoad)
		}
		if got.SourceRank != model.DefaultSourceRank {
			t.Errorf("%s: expected default source rank, got %q", mode, got.SourceRank)
		}
		if len(got.Interests) != 1 || got.Interests[0] != model.DefaultInterest {
			t.Errorf("%s: expected default interests, got %v", mode, got.Interests)
		}
		if got.Conclusion != raw {
			t.Errorf("%s: expected conclusion to be raw text verbatim", mode)
		}
		want := "The model rambled without any label at all." + TruncationMarker
		if got.CanonicalFact != want {
			t.Errorf("%s: expected canonical fact %q, got %q", mode, want, got.CanonicalFact)
		}
		if got.AuditID != "req-42" || got.RequestID != "req-42" {
			t.Errorf("%s: expected request id passed through, got %q/%q", mode, got.AuditID, got.RequestID)
		}
	}
}

func TestInterpret_FallbackFactTruncated(t *testing.T) {
	in := New()
	long := strings.Repeat("á", 250)

	got := in.Interpret(model.ModeForensic, long+"\nrest", "req-1")

	want := strings.Repeat("á", 200) + TruncationMarker
	if got.CanonicalFact != want {
		t.Errorf("Expected fact truncated to 200 runes plus marker, got %d runes", len([]rune(got.CanonicalFact)))
	}
}

func TestInterpret_EmptyText(t *testing.T) {
	in := New()

	got := in.Interpret(model.ModeFactual, "", "req-1")

	if got.Verdict != model.VerdictUnverifiable {
		t.Errorf("Expected UNVERIFIABLE, got %s", got.Verdict)
	}
	if got.CanonicalFact != TruncationMarker {
		t.Errorf("Expected bare truncation marker, got %q", got.CanonicalFact)
	}
}

func TestInterpret_CanonicalFact(t *testing.T) {
	in := New()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"portuguese", "VEREDICTO FINAL: FALSO\nFATO ATÔMICO CANÔNICO (FAC): X conteve Y.  \n", "X conteve Y."},
		{"lowercase", "fato atômico canônico (fac): X conteve Y.", "X conteve Y."},
		{"bold label", "**FATO ATÔMICO CANÔNICO (FAC):** X conteve Y.", "X conteve Y."},
		{"english", "CANONICAL ATOMIC FACT (CAF): The dam broke in 2019.", "The dam broke in 2019."},
		{"next line", "FATO ATÔMICO CANÔNICO (FAC):\n\n- X conteve Y.\n", "X conteve Y."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := in.Interpret(model.ModeForensic, tt.raw, "req-1")
			if got.CanonicalFact != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got.CanonicalFact)
			}
		})
	}
}

func TestInterpret_FactualPortugueseEndToEnd(t *testing.T) {
	in := New()

	got := in.Interpret(model.ModeFactual, "Veredicto Factual: Verdadeiro", "req-1")

	if got.Verdict != model.VerdictTrueWithSource {
		t.Errorf("Expected TRUE_WITH_SOURCE, got %s", got.Verdict)
	}
	if got.AuditReliability != 85 {
		t.Errorf("Expected reliability 85, got %d", got.AuditReliability)
	}
	if got.Factuality != model.LevelHigh {
		t.Errorf("Expected factuality high, got %s", got.Factuality)
	}
	if got.AnalysisLens != model.LensFactual {
		t.Errorf("Expected lens FACTUAL, got %s", got.AnalysisLens)
	}
}

func TestInterpret_NarrativeOpinionLoad(t *testing.T) {
	in := New()

	tests := []struct {
		raw     string
		verdict model.Verdict
		rel     int
		opinion model.Level
	}{
		{"FACT USAGE: FAITHFUL", model.VerdictTrueWithSource, 70, model.LevelLow},
		{"FACT USAGE: MANIPULATED", model.VerdictDistorted, 75, model.LevelHigh},
		{"Uso do fato: distorcido", model.VerdictDistorted, 75, model.LevelHigh},
	}

	for _, tt := range tests {
		got := in.Interpret(model.ModeNarrative, tt.raw, "req-1")
		if got.Verdict != tt.verdict || got.AuditReliability != tt.rel || got.OpinionLoad != tt.opinion {
			t.Errorf("%q: expected %s/%d/%s, got %s/%d/%s", tt.raw,
				tt.verdict, tt.rel, tt.opinion, got.Verdict, got.AuditReliability, got.OpinionLoad)
		}
		if got.Factuality != model.LevelLow {
			t.Errorf("%q: narrative phrases must not touch factuality, got %s", tt.raw, got.Factuality)
		}
	}
}

func TestInterpret_ModeScopedPhrases(t *testing.T) {
	in := New()

	// A forensic phrase means nothing in factual mode
	got := in.Interpret(model.ModeFactual, "FINAL VERDICT: FALSE", "req-1")

	if got.Verdict != model.VerdictUnverifiable || got.AuditReliability != 50 {
		t.Errorf("Expected defaults, got %s/%d", got.Verdict, got.AuditReliability)
	}
}

func TestInterpret_EarliestPhraseWins(t *testing.T) {
	in := New()
	raw := "FINAL VERDICT: PARTIAL\n\nLater the text repeats FINAL VERDICT: TRUE as a quote."

	got := in.Interpret(model.ModeForensic, raw, "req-1")

	if got.Verdict != model.VerdictTrueImprecise || got.AuditReliability != 70 {
		t.Errorf("Expected first phrase (PARTIAL) to win, got %s/%d", got.Verdict, got.AuditReliability)
	}

	// Stable across repeated calls
	again := in.Interpret(model.ModeForensic, raw, "req-1")
	if again.Verdict != got.Verdict {
		t.Error("Expected deterministic precedence")
	}
}

func TestInterpret_ForensicSections(t *testing.T) {
	in := New()
	raw := strings.Join([]string{
		"VEREDICTO FINAL: MANIPULADO",
		"RANKING DE FONTES:",
		"- Fonte primária (diário oficial)",
		"INTERESSES IDENTIFICADOS:",
		"- Político",
		"- Econômico",
		"",
		"LIMITE DA EVIDÊNCIA:",
		"- social media only",
	}, "\n")

	got := in.Interpret(model.ModeForensic, raw, "req-1")

	if got.Verdict != model.VerdictDistorted || got.OpinionLoad != model.LevelHigh || got.Factuality != model.LevelMedium {
		t.Errorf("Expected DISTORTED/high/medium, got %s/%s/%s", got.Verdict, got.OpinionLoad, got.Factuality)
	}
	if got.SourceRank != prompt.TierPrimaryLabel {
		t.Errorf("Expected %q, got %q", prompt.TierPrimaryLabel, got.SourceRank)
	}
	if len(got.Interests) != 2 || got.Interests[0] != prompt.InterestPolitical || got.Interests[1] != prompt.InterestEconomic {
		t.Errorf("Expected [political economic], got %v", got.Interests)
	}
}

func TestInterpret_ForensicSectionsIgnoredInOtherModes(t *testing.T) {
	in := New()
	raw := "SOURCE RANKING: primary\nIDENTIFIED INTERESTS: political"

	got := in.Interpret(model.ModeFactual, raw, "req-1")

	if got.SourceRank != model.DefaultSourceRank {
		t.Errorf("Expected default source rank, got %q", got.SourceRank)
	}
	if got.Interests[0] != model.DefaultInterest {
		t.Errorf("Expected default interests, got %v", got.Interests)
	}
}

func TestInterpret_NoneDetectedYieldsToRealTags(t *testing.T) {
	in := New()

	got := in.Interpret(model.ModeForensic, "IDENTIFIED INTERESTS: none detected", "req-1")
	if len(got.Interests) != 1 || got.Interests[0] != prompt.InterestNone {
		t.Errorf("Expected [none detected], got %v", got.Interests)
	}

	got = in.Interpret(model.ModeForensic, "IDENTIFIED INTERESTS: social; none other", "req-1")
	if len(got.Interests) != 1 || got.Interests[0] != prompt.InterestSocial {
		t.Errorf("Expected [social], got %v", got.Interests)
	}
}

// Every phrase the builder can ask for must be recognised by the interpreter
func TestInterpret_LockstepWithBuilderLabels(t *testing.T) {
	in := New()

	for _, set := range prompt.AllLabelSets() {
		for _, mode := range model.Modes() {
			line := set.VerdictLine(mode)
			for _, opt := range line.Options {
				raw := line.Phrase(opt)
				got := in.Interpret(mode, raw, "req-1")

				if got.Verdict != opt.Rule.Verdict {
					t.Errorf("[%s/%s] %q: expected verdict %s, got %s", set.Locale, mode, raw, opt.Rule.Verdict, got.Verdict)
				}
				if got.AuditReliability != opt.Rule.Reliability {
					t.Errorf("[%s/%s] %q: expected reliability %d, got %d", set.Locale, mode, raw, opt.Rule.Reliability, got.AuditReliability)
				}
			}
		}

		raw := set.Confidence + " 61%"
		if got := in.Interpret(model.ModeForensic, raw, "req-1"); got.AuditReliability != 61 {
			t.Errorf("[%s] confidence label not recognised: %d", set.Locale, got.AuditReliability)
		}

		raw = set.CanonicalFact + " A aconteceu."
		if got := in.Interpret(model.ModeForensic, raw, "req-1"); got.CanonicalFact != "A aconteceu." {
			t.Errorf("[%s] canonical fact label not recognised: %q", set.Locale, got.CanonicalFact)
		}
	}
}

func TestInterpret_BuiltPromptLabelsRoundTrip(t *testing.T) {
	in := New()

	for _, code := range prompt.LocaleCodes() {
		b, err := prompt.NewBuilder(code)
		if err != nil {
			t.Fatalf("NewBuilder(%s) failed: %v", code, err)
		}
		payload := b.Build(model.ModeForensic, model.EvidenceInput{Type: model.InputText, Text: "claim"}, "req-1")
		labels := b.Labels()

		line := labels.Forensic
		if !strings.Contains(payload.SystemInstruction, line.Label) {
			t.Fatalf("[%s] instruction is missing verdict label %q", code, line.Label)
		}
		for _, opt := range line.Options {
			if !strings.Contains(payload.SystemInstruction, opt.Word) {
				t.Errorf("[%s] instruction is missing option %q", code, opt.Word)
			}

			raw := labels.CanonicalFact + " X aconteceu em 2024.\n" + line.Phrase(opt)
			got := in.Interpret(model.ModeForensic, raw, "req-1")
			if got.Verdict != opt.Rule.Verdict {
				t.Errorf("[%s] %q: expected verdict %s, got %s", code, opt.Word, opt.Rule.Verdict, got.Verdict)
			}
			if got.AuditReliability != opt.Rule.Reliability {
				t.Errorf("[%s] %q: expected reliability %d, got %d", code, opt.Word, opt.Rule.Reliability, got.AuditReliability)
			}
			if got.CanonicalFact != "X aconteceu em 2024." {
				t.Errorf("[%s] expected extracted fact, got %q", code, got.CanonicalFact)
			}

			got = in.Interpret(model.ModeForensic, raw+"\n"+labels.Confidence+" 61%", "req-1")
			if got.AuditReliability != 61 {
				t.Errorf("[%s] %q: expected confidence 61 to override, got %d", code, opt.Word, got.AuditReliability)
			}
		}
	}
}
