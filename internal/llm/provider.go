package llm

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/ppiankov/factlens/internal/model"
)

// Provider defines the interface for model invokers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate sends one instruction payload and returns the raw answer text
	Generate(ctx context.Context, req Request) (*Response, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Request is one multimodal completion call
type Request struct {
	// SystemInstruction carries the role preamble and the mode template
	SystemInstruction string

	// Prompt is the text part (trailer with the evidence)
	Prompt string

	// Media are inline binary parts sent before the text part
	Media []model.MediaPart

	// Model overrides the configured model (provider-specific)
	Model string

	// Temperature overrides the configured temperature when set; 0 is valid
	Temperature *float64

	// MaxTokens limits the response length
	MaxTokens int
}

// Response is the untrusted, unstructured model answer
type Response struct {
	// Text is the raw answer; may be empty or ignore every requested label
	Text string

	// Sources are web sources reported by the provider (grounding) or cited in Text
	Sources []model.Source

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds provider configuration
type Config struct {
	// Provider name: "gemini", "openai", "anthropic", "ollama"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for Gemini/OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// Temperature for generation; kept low to limit format drift. Nil uses the default.
	Temperature *float64

	// MaxTokens for response generation
	MaxTokens int

	// Grounding enables search grounding where the provider supports it
	Grounding bool

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:    "gemini",
		Model:       "gemini-2.5-flash",
		Timeout:     60,
		Temperature: genai.Ptr(defaultTemperature),
		MaxTokens:   2048,
		Grounding:   true,
	}
}

// defaultTemperature is used when neither request nor config sets one
const defaultTemperature = 0.1

func (c Config) model(req Request, fallback string) string {
	if req.Model != "" {
		return req.Model
	}
	if c.Model != "" {
		return c.Model
	}
	return fallback
}

func (c Config) maxTokens(req Request) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return 2048
}

func (c Config) temperature(req Request) float64 {
	if req.Temperature != nil {
		return *req.Temperature
	}
	if c.Temperature != nil {
		return *c.Temperature
	}
	return defaultTemperature
}

func (c Config) timeout(fallback time.Duration) time.Duration {
	if c.Timeout > 0 {
		return time.Duration(c.Timeout) * time.Second
	}
	return fallback
}

// unsupportedMediaNote tells the model which attachments could not be forwarded
func unsupportedMediaNote(provider string, media []model.MediaPart) string {
	var names []string
	for _, m := range media {
		if m.IsImage() {
			continue
		}
		name := m.Name
		if name == "" {
			name = m.MIMEType
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return ""
	}
	return fmt.Sprintf("\n\n[%s cannot receive these attachments: %s]", provider, strings.Join(names, ", "))
}

var urlPattern = regexp.MustCompile(`https?://[^\s\)\]>"']+`)

// extractURLs extracts all URLs from text
func extractURLs(text string) []string {
	matches := urlPattern.FindAllString(text, -1)

	// Deduplicate
	seen := make(map[string]bool)
	var unique []string
	for _, u := range matches {
		// Clean up trailing punctuation
		u = strings.TrimRight(u, ".,;:!?*")
		if !seen[u] {
			seen[u] = true
			unique = append(unique, u)
		}
	}

	return unique
}

// citedSources turns URLs cited in the answer into sources (at most MaxTopSources)
func citedSources(text string) []model.Source {
	var sources []model.Source
	for _, u := range extractURLs(text) {
		if len(sources) >= model.MaxTopSources {
			break
		}
		title := u
		if parsed, err := url.Parse(u); err == nil && parsed.Host != "" {
			title = parsed.Host
		}
		sources = append(sources, model.Source{Title: title, URI: u})
	}
	return sources
}
