package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/util"
)

// GeminiProvider implements the Provider interface for Google Gemini models
type GeminiProvider struct {
	client  *genai.Client
	config  Config
	timeout time.Duration
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(config Config) (*GeminiProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
		HTTPClient: &http.Client{
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
			},
		},
	}
	if config.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	client, err := genai.NewClient(context.Background(), clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client:  client,
		config:  config,
		timeout: config.timeout(60 * time.Second),
	}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// IsAvailable checks that the configured model can be resolved
func (p *GeminiProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.Models.Get(ctx, p.config.model(Request{}, "gemini-2.5-flash"), nil)
	if err != nil {
		zap.L().Warn("gemini availability check failed", zap.Error(err))
		return false
	}
	return true
}

// Generate calls generateContent with the media parts followed by the text part
func (p *GeminiProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	modelName := p.config.model(req, "gemini-2.5-flash")

	parts := make([]*genai.Part, 0, len(req.Media)+1)
	for _, m := range req.Media {
		parts = append(parts, genai.NewPartFromBytes(m.Data, m.MIMEType))
	}
	parts = append(parts, genai.NewPartFromText(req.Prompt))

	genConfig := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(p.config.temperature(req))),
		MaxOutputTokens: int32(p.config.maxTokens(req)),
	}
	if strings.TrimSpace(req.SystemInstruction) != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	if p.config.Grounding {
		genConfig.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.Models.GenerateContent(ctxWithTimeout, modelName,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, genConfig)
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	text := strings.TrimSpace(resp.Text())

	sources := groundingSources(resp)
	if len(sources) == 0 {
		sources = citedSources(text)
	}

	tokens := 0
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	return &Response{
		Text:       text,
		Sources:    sources,
		Model:      modelName,
		TokensUsed: tokens,
	}, nil
}

// groundingSources reads web chunks from the first candidate's grounding metadata
func groundingSources(resp *genai.GenerateContentResponse) []model.Source {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}

	seen := make(map[string]bool)
	var sources []model.Source
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" || seen[chunk.Web.URI] {
			continue
		}
		seen[chunk.Web.URI] = true

		title := chunk.Web.Title
		if title == "" {
			title = chunk.Web.URI
		}
		sources = append(sources, model.Source{Title: title, URI: chunk.Web.URI})
		if len(sources) >= model.MaxTopSources {
			break
		}
	}
	return sources
}
