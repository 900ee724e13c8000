package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/ppiankov/factlens/internal/util"
)

// OpenAIProvider implements the Provider interface for OpenAI models
type OpenAIProvider struct {
	client  *openai.Client
	config  Config
	timeout time.Duration
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
		},
	}

	return &OpenAIProvider{
		client:  openai.NewClientWithConfig(clientConfig),
		config:  config,
		timeout: config.timeout(30 * time.Second),
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is properly configured
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	// Simple check: try to list models (lightweight API call)
	_, err := p.client.ListModels(ctx)
	if err != nil {
		zap.L().Warn("openai availability check failed", zap.Error(err))
		return false
	}
	return true
}

// Generate calls the Chat Completions API. Images travel as data-URI image parts;
// other media types are named in the text part instead.
func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	modelName := p.config.model(req, openai.GPT4oMini)

	userText := req.Prompt + unsupportedMediaNote(p.Name(), req.Media)
	userMsg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}

	var imageParts []openai.ChatMessagePart
	for _, m := range req.Media {
		if !m.IsImage() {
			continue
		}
		imageParts = append(imageParts, openai.ChatMessagePart{
			Type:     openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{URL: m.DataURI(), Detail: openai.ImageURLDetailAuto},
		})
	}
	if len(imageParts) > 0 {
		userMsg.MultiContent = append(imageParts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeText,
			Text: userText,
		})
	} else {
		userMsg.Content = userText
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if strings.TrimSpace(req.SystemInstruction) != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemInstruction,
		})
	}
	messages = append(messages, userMsg)

	ctxWithTimeout, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, openai.ChatCompletionRequest{
		Model:       modelName,
		Messages:    messages,
		MaxTokens:   p.config.maxTokens(req),
		Temperature: float32(p.config.temperature(req)),
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)

	return &Response{
		Text:       text,
		Sources:    citedSources(text),
		Model:      modelName,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}
