package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ppiankov/factlens/internal/model"
)

func TestGeminiProvider_Generate_Grounded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/gemini-2.5-flash:generateContent") {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if _, ok := body["systemInstruction"]; !ok {
			t.Error("Expected systemInstruction in request")
		}
		if _, ok := body["tools"]; !ok {
			t.Error("Expected search tool when grounding is enabled")
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{
				"content": {"role": "model", "parts": [{"text": "FINAL VERDICT: TRUE\nESTIMATED CONFIDENCE: 88%"}]},
				"groundingMetadata": {"groundingChunks": [
					{"web": {"uri": "https://www.gov.br/a", "title": "gov.br"}},
					{"web": {"uri": "https://www.gov.br/a", "title": "gov.br"}},
					{"web": {"uri": "https://reuters.com/b", "title": ""}},
					{"web": {"uri": "https://x.com/c", "title": "x"}},
					{"web": {"uri": "https://y.com/d", "title": "y"}}
				]}
			}],
			"usageMetadata": {"totalTokenCount": 42}
		}`))
	}))
	defer server.Close()

	provider, err := NewGeminiProvider(Config{
		APIKey:    "test-key",
		BaseURL:   server.URL,
		Model:     "gemini-2.5-flash",
		Timeout:   5,
		Grounding: true,
	})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Generate(context.Background(), Request{
		SystemInstruction: "auditor",
		Prompt:            "Content: claim",
		Media:             []model.MediaPart{{Data: []byte{1}, MIMEType: "image/png"}},
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !strings.HasPrefix(resp.Text, "FINAL VERDICT: TRUE") {
		t.Errorf("Unexpected text: %q", resp.Text)
	}
	if resp.TokensUsed != 42 {
		t.Errorf("Expected 42 tokens, got %d", resp.TokensUsed)
	}
	if len(resp.Sources) != model.MaxTopSources {
		t.Fatalf("Expected %d deduplicated sources, got %+v", model.MaxTopSources, resp.Sources)
	}
	if resp.Sources[1].Title != "https://reuters.com/b" {
		t.Errorf("Expected URI as fallback title, got %q", resp.Sources[1].Title)
	}
}

func TestGeminiProvider_Generate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"code": 429, "message": "quota exceeded", "status": "RESOURCE_EXHAUSTED"}}`))
	}))
	defer server.Close()

	provider, err := NewGeminiProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Generate(context.Background(), Request{Prompt: "x"})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
}

func TestGeminiProvider_MissingKey(t *testing.T) {
	if _, err := NewGeminiProvider(Config{}); err == nil {
		t.Error("Expected error for missing API key")
	}
}
