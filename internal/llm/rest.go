package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/factlens/internal/util"
)

const (
	maxResponseBytes = 8 << 20
	maxErrorBodyLen  = 512
)

// APIError is a non-200 answer from a model endpoint
type APIError struct {
	Provider   string
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("%s API error (%d): %s - %s", e.Provider, e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.StatusCode, e.Message)
}

// errorDecoder pulls the type and message out of a provider's error body
type errorDecoder func(body []byte) (typ, msg string, ok bool)

// restClient is the JSON-over-HTTP transport shared by the REST providers
type restClient struct {
	provider   string
	baseURL    string
	headers    map[string]string
	httpClient *http.Client
	decodeErr  errorDecoder
}

func newRESTClient(provider, baseURL string, config Config, fallbackTimeout time.Duration, headers map[string]string, decodeErr errorDecoder) *restClient {
	return &restClient{
		provider: provider,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		headers:  headers,
		httpClient: &http.Client{
			Timeout: config.timeout(fallbackTimeout),
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
			},
		},
		decodeErr: decodeErr,
	}
}

// postJSON sends in as JSON to path and decodes a 200 answer into out
func (c *restClient) postJSON(ctx context.Context, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return c.apiError(httpResp.StatusCode, respBody)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// ping issues a GET and reports the status code
func (c *restClient) ping(ctx context.Context, path string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}

func (c *restClient) apiError(status int, body []byte) *APIError {
	apiErr := &APIError{Provider: c.provider, StatusCode: status}
	if c.decodeErr != nil {
		if typ, msg, ok := c.decodeErr(body); ok {
			apiErr.Type = typ
			apiErr.Message = msg
			return apiErr
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBodyLen {
		msg = msg[:maxErrorBodyLen] + "..."
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	apiErr.Message = msg
	return apiErr
}
