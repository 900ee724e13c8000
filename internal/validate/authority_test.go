package validate

import (
	"testing"

	"github.com/ppiankov/factlens/internal/model"
)

func TestAuthorityClassifier_PrimaryDomains(t *testing.T) {
	classifier := NewAuthorityClassifier(nil)

	tests := []struct {
		url      string
		expected model.AuthorityTier
		desc     string
	}{
		{"https://www.gov.br/saude/pt-br", model.TierPrimary, "Brazilian government subdomain"},
		{"https://portal.stf.jus.br/noticias", model.TierPrimary, "Judiciary"},
		{"https://ibge.gov.br/estatisticas", model.TierPrimary, "Exact primary domain"},
		{"https://www.cdc.gov/flu", model.TierPrimary, "US government TLD"},
		{"https://www.who.int/news", model.TierPrimary, "International body"},
		{"https://WWW.GOV.BR:443/x", model.TierPrimary, "Host case and port ignored"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			result := classifier.Classify(tt.url)
			if result != tt.expected {
				t.Errorf("Expected %v for %s, got %v", tt.expected, tt.url, result)
			}
		})
	}
}

func TestAuthorityClassifier_SecondaryAndTertiary(t *testing.T) {
	classifier := NewAuthorityClassifier(nil)

	tests := []struct {
		url      string
		expected model.AuthorityTier
	}{
		{"https://pt.wikipedia.org/wiki/Brasil", model.TierSecondary},
		{"https://www.reuters.com/world/", model.TierSecondary},
		{"https://blog.example.com/post", model.TierTertiary},
		{"https://notgov.br.example.com/", model.TierTertiary},
		{"not a url", model.TierTertiary},
	}

	for _, tt := range tests {
		if result := classifier.Classify(tt.url); result != tt.expected {
			t.Errorf("Expected %v for %s, got %v", tt.expected, tt.url, result)
		}
	}
}

func TestAuthorityClassifier_DomainMapAndPathPatterns(t *testing.T) {
	config := &model.AuthorityConfig{
		DomainMap: map[string]string{
			"www.planalto.gov.br": "secondary",
			"factcheck.example":   "1",
		},
		PathPatterns: []model.PathPattern{
			{Pattern: `^/legislacao/`, Tier: "primary"},
			{Pattern: `([`, Tier: "primary"}, // invalid, skipped
		},
	}
	classifier := NewAuthorityClassifier(config)

	if got := classifier.Classify("https://www.planalto.gov.br/x"); got != model.TierSecondary {
		t.Errorf("Expected domain map to win, got %v", got)
	}
	if got := classifier.Classify("https://factcheck.example/a"); got != model.TierPrimary {
		t.Errorf("Expected numeric tier mapping, got %v", got)
	}
	if got := classifier.Classify("https://random.example/legislacao/lei-1"); got != model.TierPrimary {
		t.Errorf("Expected path pattern match, got %v", got)
	}
}

func TestAuthorityClassifier_GroundingRedirect(t *testing.T) {
	classifier := NewAuthorityClassifier(nil)
	redirect := "https://vertexaisearch.cloud.google.com/grounding-api-redirect/AbC123"

	if !classifier.IsOfficial(model.Source{Title: "gov.br", URI: redirect}) {
		t.Error("Expected redirect titled gov.br to be official")
	}
	if classifier.IsOfficial(model.Source{Title: "youtube.com", URI: redirect}) {
		t.Error("Expected redirect titled youtube.com to be unofficial")
	}
	if classifier.IsOfficial(model.Source{Title: "Some headline with spaces", URI: redirect}) {
		t.Error("Expected free-text title to be unofficial")
	}
}

func TestAuthorityClassifier_MarkOfficial(t *testing.T) {
	classifier := NewAuthorityClassifier(nil)
	sources := []model.Source{
		{Title: "a", URI: "https://www.gov.br/a"},
		{Title: "b", URI: "https://blog.example.com/b"},
		{Title: "c", URI: "https://www.camara.leg.br/c"},
		{Title: "d", URI: "https://www.gov.br/d"},
	}

	got := classifier.MarkOfficial(sources)

	if len(got) != model.MaxTopSources {
		t.Fatalf("Expected %d sources, got %d", model.MaxTopSources, len(got))
	}
	if !got[0].IsOfficial || got[1].IsOfficial || !got[2].IsOfficial {
		t.Errorf("Unexpected official flags: %+v", got)
	}
	if sources[0].IsOfficial {
		t.Error("Expected input slice untouched")
	}
}
