package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// OllamaProvider implements the Provider interface for Ollama local models
type OllamaProvider struct {
	client *restClient
	config Config
}

// Ollama API structures
type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	System  string        `json:"system,omitempty"`
	Images  []string      `json:"images,omitempty"` // base64, multimodal models only
	Options ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"` // Max tokens
}

type ollamaResponse struct {
	Model     string `json:"model"`
	CreatedAt string `json:"created_at"`
	Response  string `json:"response"`
	Done      bool   `json:"done"`

	// Token counts (only present when done=true)
	PromptEvalCount int `json:"prompt_eval_count,omitempty"`
	EvalCount       int `json:"eval_count,omitempty"`
}

type ollamaError struct {
	Error string `json:"error"`
}

func decodeOllamaError(body []byte) (string, string, bool) {
	var e ollamaError
	if err := json.Unmarshal(body, &e); err != nil || e.Error == "" {
		return "", "", false
	}
	return "", e.Error, true
}

// NewOllamaProvider creates a new Ollama provider
func NewOllamaProvider(config Config) (*OllamaProvider, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	return &OllamaProvider{
		// local models are slow on first load
		client: newRESTClient("ollama", baseURL, config, 120*time.Second, nil, decodeOllamaError),
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// IsAvailable checks if Ollama is running by listing local models
func (p *OllamaProvider) IsAvailable(ctx context.Context) bool {
	status, err := p.client.ping(ctx, "/api/tags")
	if err != nil {
		zap.L().Warn("ollama availability check failed", zap.String("base_url", p.client.baseURL), zap.Error(err))
		return false
	}
	if status != http.StatusOK {
		zap.L().Warn("ollama availability check failed", zap.String("base_url", p.client.baseURL), zap.Int("status", status))
		return false
	}
	return true
}

// Generate calls /api/generate without streaming
func (p *OllamaProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	modelName := p.config.model(req, "")
	if modelName == "" {
		return nil, fmt.Errorf("ollama model must be specified (e.g., llava, llama3.1:8b)")
	}

	apiReq := ollamaRequest{
		Model:  modelName,
		Prompt: req.Prompt + unsupportedMediaNote(p.Name(), req.Media),
		Stream: false,
		System: req.SystemInstruction,
		Options: ollamaOptions{
			Temperature: p.config.temperature(req),
			NumPredict:  p.config.maxTokens(req),
		},
	}
	for _, m := range req.Media {
		if m.IsImage() {
			apiReq.Images = append(apiReq.Images, base64.StdEncoding.EncodeToString(m.Data))
		}
	}

	resp, err := p.makeRequest(ctx, apiReq)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(resp.Response)

	// Ollama counts may be 0 for some models; fall back to ~4 chars per token
	tokensUsed := resp.PromptEvalCount + resp.EvalCount
	if tokensUsed == 0 {
		tokensUsed = (len(apiReq.System) + len(apiReq.Prompt) + len(text)) / 4
	}

	return &Response{
		Text:       text,
		Sources:    citedSources(text),
		Model:      resp.Model,
		TokensUsed: tokensUsed,
	}, nil
}

func (p *OllamaProvider) makeRequest(ctx context.Context, apiReq ollamaRequest) (*ollamaResponse, error) {
	var resp ollamaResponse
	if err := p.client.postJSON(ctx, "/api/generate", apiReq, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
