package validate

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/ppiankov/factlens/internal/model"
)

// groundingRedirectHost serves opaque redirect URIs for search-grounded answers;
// the real domain only appears in the source title.
const groundingRedirectHost = "vertexaisearch.cloud.google.com"

// AuthorityClassifier classifies sources into authority tiers
type AuthorityClassifier struct {
	config       *model.AuthorityConfig
	primaryMap   map[string]bool
	secondaryMap map[string]bool
	pathPatterns []*compiledPattern
}

type compiledPattern struct {
	pattern *regexp.Regexp
	tier    model.AuthorityTier
}

// NewAuthorityClassifier creates a new authority classifier
func NewAuthorityClassifier(config *model.AuthorityConfig) *AuthorityClassifier {
	if config == nil {
		config = &model.DefaultConfig().Authority
	}

	classifier := &AuthorityClassifier{
		config:       config,
		primaryMap:   make(map[string]bool),
		secondaryMap: make(map[string]bool),
		pathPatterns: make([]*compiledPattern, 0),
	}

	for _, domain := range config.PrimaryDomains {
		classifier.primaryMap[strings.ToLower(domain)] = true
	}
	for _, domain := range config.SecondaryDomains {
		classifier.secondaryMap[strings.ToLower(domain)] = true
	}

	// Invalid patterns are skipped
	for _, pathPattern := range config.PathPatterns {
		if re, err := regexp.Compile(pathPattern.Pattern); err == nil {
			classifier.pathPatterns = append(classifier.pathPatterns, &compiledPattern{
				pattern: re,
				tier:    parseTierString(pathPattern.Tier),
			})
		}
	}

	return classifier
}

// Classify classifies a URL into an authority tier
func (a *AuthorityClassifier) Classify(rawURL string) model.AuthorityTier {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return model.TierTertiary
	}
	return a.classifyHost(parsed.Hostname(), parsed.Path)
}

// ClassifySource classifies a cited source, resolving grounding redirects via the title
func (a *AuthorityClassifier) ClassifySource(src model.Source) model.AuthorityTier {
	parsed, err := url.Parse(src.URI)
	if err != nil {
		return model.TierTertiary
	}

	if strings.EqualFold(parsed.Hostname(), groundingRedirectHost) {
		host := strings.ToLower(strings.TrimSpace(src.Title))
		if host == "" || strings.ContainsAny(host, " /") {
			return model.TierTertiary
		}
		return a.classifyHost(host, "")
	}

	return a.Classify(src.URI)
}

// IsOfficial reports whether the source is a primary (official) source
func (a *AuthorityClassifier) IsOfficial(src model.Source) bool {
	return a.ClassifySource(src) == model.TierPrimary
}

// MarkOfficial returns a copy of sources with IsOfficial set, capped at MaxTopSources
func (a *AuthorityClassifier) MarkOfficial(sources []model.Source) []model.Source {
	out := make([]model.Source, 0, len(sources))
	for _, src := range sources {
		if len(out) >= model.MaxTopSources {
			break
		}
		src.IsOfficial = a.IsOfficial(src)
		out = append(out, src)
	}
	return out
}

func (a *AuthorityClassifier) classifyHost(host, path string) model.AuthorityTier {
	host = strings.ToLower(host)

	// Explicit domain mappings from config
	if a.config.DomainMap != nil {
		if tierStr, ok := a.config.DomainMap[host]; ok {
			return parseTierString(tierStr)
		}
	}

	if matchesDomain(host, a.primaryMap) {
		return model.TierPrimary
	}
	if matchesDomain(host, a.secondaryMap) {
		return model.TierSecondary
	}

	for _, cp := range a.pathPatterns {
		if path != "" && cp.pattern.MatchString(path) {
			return cp.tier
		}
	}

	return model.TierTertiary
}

// matchesDomain matches host exactly or as a subdomain (foo.gov.br matches gov.br)
func matchesDomain(host string, domains map[string]bool) bool {
	if domains[host] {
		return true
	}
	for domain := range domains {
		if strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// parseTierString converts a tier string to AuthorityTier
func parseTierString(tier string) model.AuthorityTier {
	switch strings.ToLower(tier) {
	case "primary", "1":
		return model.TierPrimary
	case "secondary", "2":
		return model.TierSecondary
	default:
		return model.TierTertiary
	}
}
