package render

import (
	"strings"

	"github.com/ppiankov/factlens/internal/model"
)

// texts holds the human-facing captions of one locale
type texts struct {
	brand           string
	auditTitle      string
	verdict         string
	confidence      string
	fact            string
	auditID         string
	summary         string
	evidence        string
	mediaAttached   string
	lens            string
	factuality      string
	sourceRank      string
	temporality     string
	opinionLoad     string
	interests       string
	sources         string
	official        string
	noSources       string
	conclusion      string
	engine          string
	verifiedAt      string
	reliabilityNote string
	verdicts        map[model.Verdict]string
	levels          map[model.Level]string
	temporalities   map[model.Temporality]string
}

const siteURL = "verdadeoufake.app"

var localeTexts = map[string]texts{
	"pt": {
		brand:           "Verdade ou Fake",
		auditTitle:      "Auditoria Forense",
		verdict:         "Veredito",
		confidence:      "Confiança Técnica",
		fact:            "FAC",
		auditID:         "ID da auditoria",
		summary:         "Resumo",
		evidence:        "Evidência Analisada",
		mediaAttached:   "arquivo(s) de mídia anexado(s)",
		lens:            "Lente Analítica",
		factuality:      "Factualidade",
		sourceRank:      "Ranking Fontes",
		temporality:     "Temporalidade",
		opinionLoad:     "Carga Opinativa",
		interests:       "Interesses",
		sources:         "Fontes",
		official:        "oficial",
		noSources:       "Nenhuma fonte citada.",
		conclusion:      "Relatório do Modelo",
		engine:          "Motor",
		verifiedAt:      "Verificado em",
		reliabilityNote: "Mede a qualidade e completude da evidência acessada.",
		verdicts: map[model.Verdict]string{
			model.VerdictTrueWithSource:       "VERDADEIRO COM FONTE",
			model.VerdictTrueImprecise:        "VERDADEIRO IMPRECISO",
			model.VerdictDistorted:            "DISTORCIDO",
			model.VerdictFalse:                "FALSO",
			model.VerdictUnverifiable:         "NÃO VERIFICÁVEL",
			model.VerdictNeedsEvidence:        "PRECISA DE EVIDÊNCIA",
			model.VerdictStatedDataWithSource: "DADO DECLARADO COM FONTE",
		},
		levels: map[model.Level]string{
			model.LevelHigh:   "alta",
			model.LevelMedium: "média",
			model.LevelLow:    "baixa",
		},
		temporalities: map[model.Temporality]string{
			model.TemporalityCurrent: "atual",
			model.TemporalityOld:     "antigo",
			model.TemporalityPartial: "parcial",
		},
	},
	"en": {
		brand:           "Truth or Fake",
		auditTitle:      "Forensic Audit",
		verdict:         "Verdict",
		confidence:      "Technical Confidence",
		fact:            "CAF",
		auditID:         "Audit ID",
		summary:         "Summary",
		evidence:        "Analyzed Evidence",
		mediaAttached:   "media file(s) attached",
		lens:            "Analysis Lens",
		factuality:      "Factuality",
		sourceRank:      "Source Ranking",
		temporality:     "Temporality",
		opinionLoad:     "Opinion Load",
		interests:       "Interests",
		sources:         "Sources",
		official:        "official",
		noSources:       "No sources cited.",
		conclusion:      "Model Report",
		engine:          "Engine",
		verifiedAt:      "Verified at",
		reliabilityNote: "Measures the quality and completeness of the evidence accessed.",
		verdicts:        map[model.Verdict]string{},
		levels:          map[model.Level]string{},
		temporalities:   map[model.Temporality]string{},
	},
}

func textsFor(locale string) texts {
	if t, ok := localeTexts[locale]; ok {
		return t
	}
	return localeTexts["pt"]
}

// VerdictLabel returns the display form of a verdict.
// Unmapped verdicts are shown with underscores as spaces.
func VerdictLabel(v model.Verdict, locale string) string {
	if label, ok := textsFor(locale).verdicts[v]; ok {
		return label
	}
	return strings.ReplaceAll(string(v), "_", " ")
}

func levelLabel(l model.Level, t texts) string {
	if label, ok := t.levels[l]; ok {
		return label
	}
	return string(l)
}

func temporalityLabel(tp model.Temporality, t texts) string {
	if label, ok := t.temporalities[tp]; ok {
		return label
	}
	return string(tp)
}
