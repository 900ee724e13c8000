// Package pipeline orchestrates one analysis: prompt, model invocation,
// interpretation and the ruleset pass.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/factlens/internal/extract"
	"github.com/ppiankov/factlens/internal/interpret"
	"github.com/ppiankov/factlens/internal/llm"
	"github.com/ppiankov/factlens/internal/metrics"
	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/prompt"
	"github.com/ppiankov/factlens/internal/ruleset"
	"github.com/ppiankov/factlens/internal/store"
	"github.com/ppiankov/factlens/internal/telemetry"
	"github.com/ppiankov/factlens/internal/util"
	"github.com/ppiankov/factlens/internal/validate"
	"github.com/ppiankov/factlens/internal/worker"
)

const defaultPageCacheTTL = time.Hour

// Options wires an Analyzer. Only Provider is required.
type Options struct {
	Provider llm.Provider
	Locale   string

	Model string
	// Temperature overrides the provider's configured temperature when set
	Temperature *float64
	MaxTokens   int

	Authority *model.AuthorityConfig

	// Fetcher enables page excerpts for link evidence
	Fetcher      *Fetcher
	PageCache    store.Store
	PageCacheTTL time.Duration

	// Limiter is keyed by provider name
	Limiter *worker.Limiter
	Emitter *telemetry.Emitter
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// Analyzer runs analyses. It holds no per-request state and is safe for concurrent use.
type Analyzer struct {
	provider    llm.Provider
	builder     *prompt.Builder
	interpreter *interpret.Interpreter
	classifier  *validate.AuthorityClassifier

	fetcher      *Fetcher
	extractor    *extract.PageExtractor
	pageCache    store.Store
	pageCacheTTL time.Duration

	limiter *worker.Limiter
	emitter *telemetry.Emitter
	metrics *metrics.Metrics
	logger  *zap.Logger

	model       string
	temperature *float64
	maxTokens   int

	now func() time.Time
}

// NewAnalyzer creates an analyzer
func NewAnalyzer(opts Options) (*Analyzer, error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("analyzer: a model provider is required")
	}
	builder, err := prompt.NewBuilder(opts.Locale)
	if err != nil {
		return nil, fmt.Errorf("analyzer: %w", err)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.PageCacheTTL <= 0 {
		opts.PageCacheTTL = defaultPageCacheTTL
	}

	return &Analyzer{
		provider:     opts.Provider,
		builder:      builder,
		interpreter:  interpret.New(),
		classifier:   validate.NewAuthorityClassifier(opts.Authority),
		fetcher:      opts.Fetcher,
		extractor:    extract.NewPageExtractor(extract.DefaultMaxExcerptRunes),
		pageCache:    opts.PageCache,
		pageCacheTTL: opts.PageCacheTTL,
		limiter:      opts.Limiter,
		emitter:      opts.Emitter,
		metrics:      opts.Metrics,
		logger:       opts.Logger,
		model:        opts.Model,
		temperature:  opts.Temperature,
		maxTokens:    opts.MaxTokens,
		now:          time.Now,
	}, nil
}

// OptionsFromConfig fills the config-driven parts of Options.
// Telemetry, metrics and logging are wired by the caller.
func OptionsFromConfig(cfg *model.Config, provider llm.Provider) Options {
	temperature := cfg.LLM.Temperature
	opts := Options{
		Provider:    provider,
		Locale:      cfg.LLM.Locale,
		Model:       cfg.LLM.Model,
		Temperature: &temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Authority:   &cfg.Authority,
	}

	if cfg.RateLimiting.RequestsPerSecond > 0 {
		opts.Limiter = worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	}

	if cfg.HTTP.FetchURLs {
		fetcher := NewFetcher(cfg.HTTP.Timeout, cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes,
			cfg.HTTP.InsecureTLS, cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy)
		if cfg.HTTP.RespectRobots {
			fetcher.WithRobots(util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout))
		}
		opts.Fetcher = fetcher
	}

	return opts
}

// Locale returns the label locale of emitted prompts
func (a *Analyzer) Locale() string {
	return a.builder.Labels().Locale
}

// ProviderName returns the name of the model provider
func (a *Analyzer) ProviderName() string {
	return a.provider.Name()
}

// Analyze runs one analysis. Evidence is expected to have passed validate.Evidence.
// The only error sources are empty evidence and the model invocation; telemetry
// never affects the result.
func (a *Analyzer) Analyze(ctx context.Context, mode model.AnalysisMode, ev model.EvidenceInput, requestID string) (model.ResultRecord, error) {
	start := a.now()
	log := a.logger.With(zap.String("request_id", requestID), zap.String("mode", string(mode)))

	if strings.TrimSpace(ev.Content()) == "" && !ev.HasMedia() {
		return model.ResultRecord{}, ErrEmptyEvidence
	}

	// 1. Optional page excerpt for link evidence
	if ev.Type == model.InputLink && a.fetcher != nil && ev.PageExcerpt == "" {
		ev.PageExcerpt = a.pageExcerpt(ctx, ev.URL, log)
	}

	// 2. Prompt
	payload := a.builder.Build(mode, ev, requestID)

	// 3. Model invocation
	resp, err := a.invoke(ctx, payload, log)
	if err != nil {
		return model.ResultRecord{}, err
	}

	text := resp.Text
	if strings.TrimSpace(text) == "" {
		log.Warn("model returned no text")
		text = a.builder.Labels().EmptyResponse
	}

	// 4. Interpretation
	draft := a.interpreter.Interpret(mode, text, requestID)
	draft.AttachEvidence(ev)
	draft.TopSources = a.classifier.MarkOfficial(resp.Sources)

	// 5. Ruleset pass
	log.Debug("ruleset pass",
		zap.String("engine_version", model.EngineVersion),
		zap.String("methodology_version", model.MethodologyVersion),
		zap.String("ruleset_id", model.RulesetID),
		zap.Int("ruleset_revision", model.RulesetRevision))

	record, adjustments := ruleset.Explain(draft)
	for _, adj := range adjustments {
		a.metrics.RuleFired(adj.Rule)
		log.Debug("ruleset adjustment", zap.String("rule", adj.Rule), zap.String("detail", adj.Detail))
	}

	record.Engine = model.Profile()
	record.Timestamp = a.now().UTC()
	record.ForensicHash = model.ForensicHash(requestID, record.Conclusion)

	// 6. Fire-and-forget side channel
	if a.emitter != nil {
		a.emitter.Emit(telemetry.AutoLog(record).ForUser(telemetry.UserIDFrom(ctx)))
	}

	elapsed := a.now().Sub(start)
	a.metrics.ObserveAnalysis(string(mode), string(record.Verdict), elapsed.Seconds(), record.AuditReliability)
	log.Info("analysis complete",
		zap.String("verdict", string(record.Verdict)),
		zap.Int("reliability", record.AuditReliability),
		zap.Duration("elapsed", elapsed))

	return record, nil
}

func (a *Analyzer) invoke(ctx context.Context, payload prompt.Payload, log *zap.Logger) (*llm.Response, error) {
	name := a.provider.Name()

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx, name); err != nil {
			a.metrics.InvocationFailed(name)
			return nil, &InvocationError{Provider: name, Err: fmt.Errorf("rate limit wait: %w", err)}
		}
	}

	resp, err := a.provider.Generate(ctx, llm.Request{
		SystemInstruction: payload.SystemInstruction,
		Prompt:            payload.Prompt,
		Media:             payload.Media,
		Model:             a.model,
		Temperature:       a.temperature,
		MaxTokens:         a.maxTokens,
	})
	if err == nil && resp == nil {
		err = errors.New("empty response")
	}
	if err != nil {
		a.metrics.InvocationFailed(name)
		log.Error("model invocation failed", zap.String("provider", name), zap.Error(err))
		return nil, &InvocationError{Provider: name, Err: err}
	}

	log.Debug("model responded",
		zap.String("provider", name),
		zap.String("model", resp.Model),
		zap.Int("tokens", resp.TokensUsed),
		zap.Int("sources", len(resp.Sources)))

	return resp, nil
}

// pageExcerpt fetches and extracts the linked page. Failures are logged and
// yield an empty excerpt; the URL alone is still analyzed.
func (a *Analyzer) pageExcerpt(ctx context.Context, rawURL string, log *zap.Logger) string {
	key := store.HashKey("page", rawURL)
	if a.pageCache != nil {
		if cached, found, err := a.pageCache.Get(ctx, key); err == nil && found {
			log.Debug("page excerpt cache hit", zap.String("url", rawURL))
			return string(cached)
		}
	}

	result, err := a.fetcher.FetchWithRetry(ctx, rawURL)
	if err != nil {
		log.Warn("page fetch failed, analyzing URL only", zap.String("url", rawURL), zap.Error(err))
		return ""
	}

	page, err := a.extractor.Extract(result.HTML, result.FinalURL)
	if err != nil {
		log.Warn("page extraction failed, analyzing URL only", zap.String("url", rawURL), zap.Error(err))
		return ""
	}

	log.Debug("page excerpt extracted",
		zap.String("url", result.FinalURL),
		zap.String("method", page.Method),
		zap.Bool("truncated", result.Truncated),
		zap.Int("runes", len([]rune(page.Excerpt))))

	if a.pageCache != nil && page.Excerpt != "" {
		if err := a.pageCache.Set(ctx, key, []byte(page.Excerpt), a.pageCacheTTL); err != nil {
			log.Debug("page excerpt cache write failed", zap.Error(err))
		}
	}

	return page.Excerpt
}
