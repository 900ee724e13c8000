package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/factlens/internal/metrics"
	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/pipeline"
	"github.com/ppiankov/factlens/internal/store"
	"github.com/ppiankov/factlens/internal/telemetry"
)

const claim = "O prefeito anunciou ontem a construção de três novos hospitais na cidade."

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAnalyzer struct {
	err error

	mu      sync.Mutex
	calls   []model.EvidenceInput
	ids     []string
	userIDs []string
}

func (a *fakeAnalyzer) Analyze(ctx context.Context, mode model.AnalysisMode, ev model.EvidenceInput, requestID string) (model.ResultRecord, error) {
	a.mu.Lock()
	a.calls = append(a.calls, ev)
	a.ids = append(a.ids, requestID)
	a.userIDs = append(a.userIDs, telemetry.UserIDFrom(ctx))
	a.mu.Unlock()
	if a.err != nil {
		return model.ResultRecord{}, a.err
	}
	return model.ResultRecord{
		AuditID:          "AUD-1",
		RequestID:        requestID,
		Mode:             mode,
		CanonicalFact:    "Prefeito anunciou hospitais",
		Verdict:          model.VerdictTrueWithSource,
		AuditReliability: 82,
		Conclusion:       "Confirmado por fontes oficiais.",
		Timestamp:        time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Engine:           model.Profile(),
	}, nil
}

func (a *fakeAnalyzer) Locale() string { return "pt" }

func (a *fakeAnalyzer) ProviderName() string { return "fake" }

type captureSink struct {
	err    error
	events []telemetry.Event
}

func (s *captureSink) Name() string { return "capture" }

func (s *captureSink) Send(ctx context.Context, ev telemetry.Event) error {
	s.events = append(s.events, ev)
	return s.err
}

func (s *captureSink) Close() error { return nil }

type fixture struct {
	server   *Server
	analyzer *fakeAnalyzer
	sink     *captureSink
	metrics  *metrics.Metrics
}

func newFixture(t *testing.T, cfg model.ServerConfig) *fixture {
	t.Helper()
	kv := store.NewMemoryStore()
	t.Cleanup(func() { _ = kv.Close() })

	f := &fixture{analyzer: &fakeAnalyzer{}, sink: &captureSink{}, metrics: metrics.New()}
	f.server = New(cfg, Deps{
		Analyzer: f.analyzer,
		Feedback: telemetry.NewFeedbackService(f.sink, kv, time.Second),
		Leads:    store.NewLeads(kv),
		Counters: store.NewCounters(kv),
		Metrics:  f.metrics,
	})
	return f
}

func defaultServerConfig() model.ServerConfig {
	return model.DefaultConfig().Server
}

func (f *fixture) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	f := newFixture(t, defaultServerConfig())

	rec := f.do(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "fake", body["provider"])
	assert.Contains(t, body, "engine")
}

func TestAnalyzeText(t *testing.T) {
	f := newFixture(t, defaultServerConfig())

	rec := f.do(http.MethodPost, "/v1/analyze", gin.H{
		"mode":       "factual",
		"input_type": "text",
		"text":       claim,
		"user_id":    "u-1",
		"request_id": "req-42",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "req-42", resp.Result.RequestID)
	assert.Equal(t, model.ModeFactual, resp.Result.Mode)
	assert.Equal(t, []string{"u-1"}, f.analyzer.userIDs)
	assert.Contains(t, resp.ShareText, "AUD-1")
	assert.Contains(t, resp.ShareText, "verdadeoufake.app")
	require.NotNil(t, resp.PersonalCount)
	assert.Equal(t, int64(1), *resp.PersonalCount)

	rec = f.do(http.MethodGet, "/v1/users/u-1/count", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["count"])
}

func TestAnalyzeGeneratesRequestID(t *testing.T) {
	f := newFixture(t, defaultServerConfig())

	rec := f.do(http.MethodPost, "/v1/analyze", gin.H{"input_type": "text", "text": claim})
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, f.analyzer.ids, 1)
	assert.Len(t, f.analyzer.ids[0], 36)

	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.PersonalCount)
	assert.Equal(t, []string{""}, f.analyzer.userIDs)
	assert.Equal(t, model.ModeForensic, resp.Result.Mode)
}

func TestAnalyzeMediaDataURI(t *testing.T) {
	f := newFixture(t, defaultServerConfig())
	png := []byte{0x89, 'P', 'N', 'G'}

	rec := f.do(http.MethodPost, "/v1/analyze", gin.H{
		"input_type": "image",
		"media": []gin.H{
			{"data": "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), "name": "shot.png"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.Len(t, f.analyzer.calls, 1)
	media := f.analyzer.calls[0].Media
	require.Len(t, media, 1)
	assert.Equal(t, "image/png", media[0].MIMEType)
	assert.Equal(t, png, media[0].Data)
	assert.Equal(t, "shot.png", media[0].Name)
}

func TestAnalyzeRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		body  interface{}
		field string
	}{
		{"malformed json", `{"input_type":`, ""},
		{"missing input type", gin.H{"text": claim}, ""},
		{"unknown mode", gin.H{"mode": "gossip", "input_type": "text", "text": claim}, ""},
		{"unknown input type", gin.H{"input_type": "audio", "text": claim}, ""},
		{"bad base64", gin.H{"input_type": "image", "media": []gin.H{{"mime_type": "image/png", "data": "%%%"}}}, ""},
		{"short text", gin.H{"input_type": "text", "text": "curto"}, "text"},
		{"link without url", gin.H{"input_type": "link"}, "url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, defaultServerConfig())
			rec := f.do(http.MethodPost, "/v1/analyze", tt.body)

			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			body := decode(t, rec)
			assert.NotEmpty(t, body["error"])
			if tt.field != "" {
				assert.Equal(t, tt.field, body["field"])
			}
			assert.Empty(t, f.analyzer.calls)
		})
	}
}

func TestAnalyzeFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"invocation", &pipeline.InvocationError{Provider: "fake", Err: errors.New("quota")}, http.StatusBadGateway},
		{"empty evidence", pipeline.ErrEmptyEvidence, http.StatusBadRequest},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, defaultServerConfig())
			f.analyzer.err = tt.err

			rec := f.do(http.MethodPost, "/v1/analyze", gin.H{"input_type": "text", "text": claim})
			require.Equal(t, tt.code, rec.Code)

			msg := decode(t, rec)["error"].(string)
			assert.Equal(t, pipeline.UserMessage(tt.err, "pt"), msg)
			assert.NotContains(t, msg, "quota")
			assert.NotContains(t, msg, "disk on fire")
		})
	}
}

func TestAnalyzeBodyLimit(t *testing.T) {
	cfg := defaultServerConfig()
	cfg.MaxRequestBytes = 64
	f := newFixture(t, cfg)

	rec := f.do(http.MethodPost, "/v1/analyze", gin.H{"input_type": "text", "text": strings.Repeat("a", 200)})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "request body too large", decode(t, rec)["error"])
}

func TestRateLimitPerClient(t *testing.T) {
	cfg := defaultServerConfig()
	cfg.ClientRPS = 0.001
	cfg.ClientBurst = 2
	f := newFixture(t, cfg)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, f.do(http.MethodGet, "/v1/users/u-1/count", nil).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// Health checks sit outside the limited group
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/healthz", nil).Code)
}

func TestFeedback(t *testing.T) {
	f := newFixture(t, defaultServerConfig())

	rec := f.do(http.MethodGet, "/v1/feedback/last", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(http.MethodPost, "/v1/feedback", gin.H{"score": 9, "comment": "  útil  ", "request_id": "req-1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.Len(t, f.sink.events, 1)
	ev := f.sink.events[0]
	assert.Equal(t, telemetry.KindFeedback, ev.Kind)
	require.NotNil(t, ev.Score)
	assert.Equal(t, 9, *ev.Score)
	assert.Equal(t, "útil", ev.Comment)

	rec = f.do(http.MethodGet, "/v1/feedback/last", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(9), decode(t, rec)["score"])
}

func TestFeedbackRejections(t *testing.T) {
	f := newFixture(t, defaultServerConfig())

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/v1/feedback", gin.H{"comment": "no score"}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/v1/feedback", gin.H{"score": 11}).Code)
	assert.Empty(t, f.sink.events)

	f.sink.err = errors.New("broker down")
	assert.Equal(t, http.StatusBadGateway, f.do(http.MethodPost, "/v1/feedback", gin.H{"score": 0}).Code)
}

func TestLeads(t *testing.T) {
	f := newFixture(t, defaultServerConfig())

	assert.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/v1/leads", gin.H{"email": "Ana@Example.com"}).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodPost, "/v1/leads", gin.H{"email": "ana@example.com"}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/v1/leads", gin.H{"email": "not-an-email"}).Code)

	rec := f.do(http.MethodGet, "/v1/leads/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "leads.json")

	var export store.LeadsExport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &export))
	require.Len(t, export.Leads, 1)
	assert.Equal(t, "ana@example.com", export.Leads[0].Email)
}

func TestOptionalServicesUnavailable(t *testing.T) {
	s := New(defaultServerConfig(), Deps{Analyzer: &fakeAnalyzer{}})

	for _, path := range []string{"/v1/feedback/last", "/v1/leads/export", "/v1/users/u/count"} {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, defaultServerConfig())
	f.do(http.MethodGet, "/healthz", nil)

	rec := f.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `factlens_http_requests_total{code="200",route="/healthz"}`)
}

func TestCORSPreflight(t *testing.T) {
	cfg := defaultServerConfig()
	cfg.AllowOrigins = []string{"https://verdadeoufake.app"}
	f := newFixture(t, cfg)

	req := httptest.NewRequest(http.MethodOptions, "/v1/analyze", nil)
	req.Header.Set("Origin", "https://verdadeoufake.app")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "https://verdadeoufake.app", rec.Header().Get("Access-Control-Allow-Origin"))
}
