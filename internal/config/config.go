package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/dig"

	"github.com/davidbz/llmrelay/internal/domain"
	"github.com/davidbz/llmrelay/internal/keyring"
	"github.com/davidbz/llmrelay/internal/orchestrator"
	"github.com/davidbz/llmrelay/internal/provider/anthropic"
	"github.com/davidbz/llmrelay/internal/provider/echo"
	"github.com/davidbz/llmrelay/internal/provider/openai"
)

// ErrInvalidRoute indicates a malformed ORCHESTRATOR_CANDIDATES entry.
var ErrInvalidRoute = errors.New("invalid route")

// Config represents the relay configuration.
type Config struct {
	Server       ServerConfig
	CORS         CORSConfig
	Orchestrator OrchestratorConfig
	Cache        CacheConfig
	Log          LogConfig
	Gemini       openai.GeminiConfig
	OpenAI       openai.Config
	Anthropic    anthropic.Config
	Echo         echo.Config
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port         int `env:"SERVER_PORT"          envDefault:"8080"`
	ReadTimeout  int `env:"SERVER_READ_TIMEOUT"  envDefault:"30"`
	WriteTimeout int `env:"SERVER_WRITE_TIMEOUT" envDefault:"60"`
}

// CORSConfig contains CORS policy settings.
type CORSConfig struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS"   envSeparator:"," envDefault:"*"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS"   envSeparator:"," envDefault:"GET,POST,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS"   envSeparator:"," envDefault:"Content-Type,Authorization"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS"                  envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE"                            envDefault:"86400"`
}

// OrchestratorConfig contains candidate order, throttling and cooldown settings.
type OrchestratorConfig struct {
	Candidates              []string      `env:"ORCHESTRATOR_CANDIDATES"   envSeparator:","`
	MinRequestInterval      time.Duration `env:"MIN_REQUEST_INTERVAL"                       envDefault:"12s"`
	DefaultRetryDelay       time.Duration `env:"DEFAULT_RETRY_DELAY"                        envDefault:"60s"`
	QuotaExhaustedCooldown  time.Duration `env:"QUOTA_EXHAUSTED_COOLDOWN"                   envDefault:"1h"`
	BillingErrorCooldown    time.Duration `env:"BILLING_ERROR_COOLDOWN"                     envDefault:"2h"`
	RequestTimeout          time.Duration `env:"LLM_REQUEST_TIMEOUT"                        envDefault:"5s"`
	FastModeRequestTimeout  time.Duration `env:"FAST_MODE_REQUEST_TIMEOUT"                  envDefault:"3s"`
	GenerateTimeout         time.Duration `env:"GENERATE_TIMEOUT"                           envDefault:"20s"`
	FastModeGenerateTimeout time.Duration `env:"FAST_MODE_GENERATE_TIMEOUT"                 envDefault:"3s"`
	FastMode                bool          `env:"FAST_MODE"                                  envDefault:"false"`
	MaxAttempts             int           `env:"ORCHESTRATOR_MAX_ATTEMPTS"                  envDefault:"6"`
	MaxTokens               int           `env:"LLM_MAX_TOKENS"                             envDefault:"2000"`
	Temperature             float64       `env:"LLM_TEMPERATURE"                            envDefault:"0.7"`
}

// Settings converts the environment settings to orchestrator settings.
func (c OrchestratorConfig) Settings() orchestrator.Config {
	return orchestrator.Config{
		DefaultRetryDelay:       c.DefaultRetryDelay,
		QuotaExhaustedCooldown:  c.QuotaExhaustedCooldown,
		BillingErrorCooldown:    c.BillingErrorCooldown,
		CallTimeout:             c.RequestTimeout,
		FastModeCallTimeout:     c.FastModeRequestTimeout,
		GenerateTimeout:         c.GenerateTimeout,
		FastModeGenerateTimeout: c.FastModeGenerateTimeout,
		MaxAttempts:             c.MaxAttempts,
		FastMode:                c.FastMode,
		DefaultMaxTokens:        c.MaxTokens,
		DefaultTemperature:      c.Temperature,
	}
}

// CacheConfig contains response cache settings.
type CacheConfig struct {
	Enabled       bool          `env:"CACHE_ENABLED"    envDefault:"false"`
	RedisAddr     string        `env:"REDIS_ADDR"       envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB"         envDefault:"0"`
	TTL           time.Duration `env:"CACHE_TTL"        envDefault:"1h"`
	KeyPrefix     string        `env:"CACHE_KEY_PREFIX" envDefault:"llmrelay"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// DepConfig is used for dependency injection with dig.
type DepConfig struct {
	dig.Out
	*ServerConfig
	*CORSConfig
	*OrchestratorConfig
	*CacheConfig
	*LogConfig
}

// Load loads environment files and parses configuration.
func Load() (*Config, error) {
	for _, file := range []string{".env"} {
		_ = godotenv.Load(file)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ParseDependenciesConfig returns pointers to sub-configs for dependency injection.
func ParseDependenciesConfig(cfg *Config) DepConfig {
	return DepConfig{
		dig.Out{},
		&cfg.Server,
		&cfg.CORS,
		&cfg.Orchestrator,
		&cfg.Cache,
		&cfg.Log,
	}
}

// Validate rejects malformed candidates and oversized credential pools.
func (c *Config) Validate() error {
	if _, err := ParseRoutes(c.Orchestrator.Candidates); err != nil {
		return err
	}

	for provider, keys := range c.Pools() {
		if len(keys) > keyring.MaxCredentialsPerProvider {
			return fmt.Errorf("%w: %s has %d keys", keyring.ErrPoolTooLarge, provider, len(keys))
		}
	}

	return nil
}

// Pools returns the credential secrets per provider. Providers without
// keys are omitted.
func (c *Config) Pools() map[string][]string {
	pools := make(map[string][]string)

	if keys := c.Gemini.Keys(); len(keys) > 0 {
		pools[openai.GeminiName] = keys
	}
	if keys := c.Anthropic.Keys(); len(keys) > 0 {
		pools[anthropic.Name] = keys
	}
	if keys := c.OpenAI.Keys(); len(keys) > 0 {
		pools[openai.OpenAIName] = keys
	}
	if c.Echo.Enabled {
		pools[echo.NewProvider(c.Echo).Name()] = []string{echo.LocalCredential}
	}

	return pools
}

// Routes returns the candidate routes in priority order. Without an
// explicit ORCHESTRATOR_CANDIDATES list, Claude Haiku comes first, then the
// Gemini speed-first list, then OpenAI, then echo, each only when keyed.
func (c *Config) Routes() ([]domain.Route, error) {
	if len(c.Orchestrator.Candidates) > 0 {
		return ParseRoutes(c.Orchestrator.Candidates)
	}

	pools := c.Pools()
	var routes []domain.Route

	if _, ok := pools[anthropic.Name]; ok {
		routes = append(routes, domain.Route{Provider: anthropic.Name, Model: c.Anthropic.Model})
	}
	if _, ok := pools[openai.GeminiName]; ok {
		for _, model := range openai.GeminiModels(c.Gemini.Model) {
			routes = append(routes, domain.Route{Provider: openai.GeminiName, Model: model})
		}
	}
	if _, ok := pools[openai.OpenAIName]; ok {
		for _, model := range openai.OpenAIModels() {
			routes = append(routes, domain.Route{Provider: openai.OpenAIName, Model: model})
		}
	}
	if c.Echo.Enabled {
		provider := echo.NewProvider(c.Echo)
		routes = append(routes, domain.Route{Provider: provider.Name(), Model: provider.Model()})
	}

	return routes, nil
}

// ParseRoutes parses "provider/model" entries. Model names may contain
// further slashes; blank entries are skipped.
func ParseRoutes(entries []string) ([]domain.Route, error) {
	routes := make([]domain.Route, 0, len(entries))
	seen := make(map[domain.Route]bool, len(entries))

	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		provider, model, ok := strings.Cut(entry, "/")
		provider = strings.TrimSpace(provider)
		model = strings.TrimSpace(model)
		if !ok || provider == "" || model == "" {
			return nil, fmt.Errorf("%w: %q, expected provider/model", ErrInvalidRoute, entry)
		}

		route := domain.Route{Provider: provider, Model: model}
		if seen[route] {
			continue
		}
		seen[route] = true
		routes = append(routes, route)
	}

	return routes, nil
}
