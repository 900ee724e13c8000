package model

import "time"

// Config holds the complete runtime configuration
type Config struct {
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Store        StoreConfig        `yaml:"store" mapstructure:"store"`
	Telemetry    TelemetryConfig    `yaml:"telemetry" mapstructure:"telemetry"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	Authority    AuthorityConfig    `yaml:"authority" mapstructure:"authority"`
}

// LLMConfig configures the model invoker
type LLMConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"` // gemini, openai, anthropic, ollama
	Model       string  `yaml:"model" mapstructure:"model"`
	APIKey      string  `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL     string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout     int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Locale      string  `yaml:"locale" mapstructure:"locale"` // prompt label language: pt, en
	Grounding   bool    `yaml:"grounding" mapstructure:"grounding"` // gemini: attach the Google Search tool
}

// HTTPConfig configures outbound HTTP used for URL evidence
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	InsecureTLS   bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
	FetchURLs     bool          `yaml:"fetch_urls" mapstructure:"fetch_urls"`         // fetch link evidence and pass a page excerpt to the model
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"` // honour robots.txt when fetching
}

// StoreConfig selects the key-value backend for counters, leads and feedback
type StoreConfig struct {
	Backend  string `yaml:"backend" mapstructure:"backend"` // memory, disk, layered, redis
	Dir      string `yaml:"dir" mapstructure:"dir"`
	RedisURL string `yaml:"redis_url,omitempty" mapstructure:"redis_url"`
}

// TelemetryConfig selects where auto-log and feedback events go
type TelemetryConfig struct {
	Sink        string        `yaml:"sink" mapstructure:"sink"` // log, redis, nats, none
	RedisURL    string        `yaml:"redis_url,omitempty" mapstructure:"redis_url"`
	RedisStream string        `yaml:"redis_stream" mapstructure:"redis_stream"`
	NATSURL     string        `yaml:"nats_url,omitempty" mapstructure:"nats_url"`
	NATSSubject string        `yaml:"nats_subject" mapstructure:"nats_subject"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxInFlight int           `yaml:"max_in_flight" mapstructure:"max_in_flight"`
}

// ConcurrencyConfig controls batch parallelism
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig controls request pacing towards the model provider
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr            string   `yaml:"addr" mapstructure:"addr"`
	AllowOrigins    []string `yaml:"allow_origins" mapstructure:"allow_origins"`
	ClientRPS       float64  `yaml:"client_rps" mapstructure:"client_rps"`
	ClientBurst     int      `yaml:"client_burst" mapstructure:"client_burst"`
	MaxRequestBytes int64    `yaml:"max_request_bytes" mapstructure:"max_request_bytes"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	JSONLogs      bool `yaml:"json_logs" mapstructure:"json_logs"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// AuthorityConfig drives the official-source classification of top sources
type AuthorityConfig struct {
	PrimaryDomains   []string          `yaml:"primary_domains" mapstructure:"primary_domains"`
	SecondaryDomains []string          `yaml:"secondary_domains" mapstructure:"secondary_domains"`
	PathPatterns     []PathPattern     `yaml:"path_patterns,omitempty" mapstructure:"path_patterns"`
	DomainMap        map[string]string `yaml:"domain_map,omitempty" mapstructure:"domain_map"`
}

// PathPattern maps a URL path regex to a tier name
type PathPattern struct {
	Pattern string `yaml:"pattern" mapstructure:"pattern"`
	Tier    string `yaml:"tier" mapstructure:"tier"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    "gemini",
			Model:       "gemini-2.5-flash",
			Timeout:     60,
			Temperature: 0.1,
			MaxTokens:   2048,
			Locale:      "pt",
			Grounding:   true,
		},
		HTTP: HTTPConfig{
			Timeout:       20 * time.Second,
			UserAgent:     "FactLens/1.5 (+https://github.com/ppiankov/factlens)",
			MaxBodyBytes:  2_000_000,
			RespectRobots: true,
		},
		Store: StoreConfig{
			Backend: "layered",
			Dir:     "~/.factlens/store",
		},
		Telemetry: TelemetryConfig{
			Sink:        "log",
			RedisStream: "factlens.telemetry",
			NATSSubject: "factlens.telemetry",
			Timeout:     5 * time.Second,
			MaxInFlight: 64,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         4,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			AllowOrigins:    []string{"*"},
			ClientRPS:       0.5,
			ClientBurst:     5,
			MaxRequestBytes: 25 << 20,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
		Authority: AuthorityConfig{
			PrimaryDomains: []string{
				"gov", "gov.br", "jus.br", "leg.br", "mil.br", "edu", "edu.br",
				"gov.uk", "ac.uk", "europa.eu", "who.int", "un.org", "ibge.gov.br",
			},
			SecondaryDomains: []string{
				"wikipedia.org", "reuters.com", "apnews.com", "bbc.co.uk", "bbc.com",
				"agenciabrasil.ebc.com.br", "nature.com", "science.org",
			},
		},
	}
}
