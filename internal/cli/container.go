package cli

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/davidbz/llmrelay/internal/cache/redis"
	"github.com/davidbz/llmrelay/internal/classify"
	"github.com/davidbz/llmrelay/internal/config"
	"github.com/davidbz/llmrelay/internal/cooldown"
	"github.com/davidbz/llmrelay/internal/domain"
	"github.com/davidbz/llmrelay/internal/httpserver"
	"github.com/davidbz/llmrelay/internal/httpserver/middleware"
	"github.com/davidbz/llmrelay/internal/keyring"
	"github.com/davidbz/llmrelay/internal/observability"
	"github.com/davidbz/llmrelay/internal/orchestrator"
	"github.com/davidbz/llmrelay/internal/provider/anthropic"
	"github.com/davidbz/llmrelay/internal/provider/echo"
	"github.com/davidbz/llmrelay/internal/provider/openai"
	"github.com/davidbz/llmrelay/internal/provider/registry"
	"github.com/davidbz/llmrelay/internal/routing"
	"github.com/davidbz/llmrelay/internal/throttle"
)

const redisPingTimeout = 2 * time.Second

// buildContainer wires every component of the relay server. loadConfig is
// injectable so tests can bypass the environment.
func buildContainer(loadConfig func() (*config.Config, error)) (*dig.Container, error) {
	container := dig.New()

	constructors := []struct {
		name string
		fn   any
	}{
		// Configuration
		{"config", loadConfig},
		{"config dependencies", config.ParseDependenciesConfig},

		// Observability
		{"logger", newLogger},
		{"event bus", newEventBus},

		// Providers and pricing
		{"provider registry", newProviderRegistry},
		{"pricing registry", newPricingRegistry},
		{"cost calculator", newCostCalculator},

		// Orchestration state
		{"cooldown store", newCooldownStore},
		{"credential ring", newCredentialRing},
		{"throttle gate", newThrottleGate},
		{"classifier", classify.Default},
		{"selector", newSelector},
		{"orchestrator", newOrchestrator},

		// Domain services
		{"response cache", newResponseCache},
		{"gateway service", newGatewayService},

		// HTTP layer
		{"HTTP handler", httpserver.NewHandler},
		{"middleware chain", middleware.BuildMiddlewareChain},
		{"HTTP server", httpserver.NewServer},
	}

	for _, c := range constructors {
		if err := container.Provide(c.fn); err != nil {
			return nil, fmt.Errorf("failed to provide %s: %w", c.name, err)
		}
	}

	return container, nil
}

func newLogger(cfg *config.LogConfig) (*zap.Logger, error) {
	return observability.InitLogger(cfg.Level)
}

func newEventBus(logger *zap.Logger) domain.EventPublisher {
	return observability.NewEventBus(logger)
}

// newProviderRegistry registers an adapter for every provider that has
// credentials. The logger dependency orders logger installation first.
func newProviderRegistry(cfg *config.Config, _ *zap.Logger) (domain.ProviderRegistry, error) {
	ctx := context.Background()
	reg := registry.NewRegistry()
	pools := cfg.Pools()

	var providers []domain.Provider

	if _, ok := pools[openai.GeminiName]; ok {
		gemini, err := openai.NewGeminiProvider(cfg.Gemini)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini provider: %w", err)
		}
		providers = append(providers, gemini)
	}

	if _, ok := pools[anthropic.Name]; ok {
		providers = append(providers, anthropic.NewProvider(cfg.Anthropic))
	}

	if _, ok := pools[openai.OpenAIName]; ok {
		oai, err := openai.NewOpenAIProvider(cfg.OpenAI)
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI provider: %w", err)
		}
		providers = append(providers, oai)
	}

	if cfg.Echo.Enabled {
		providers = append(providers, echo.NewProvider(cfg.Echo))
	}

	if err := reg.RegisterAll(ctx, providers...); err != nil {
		return nil, fmt.Errorf("failed to register providers: %w", err)
	}

	names, _ := reg.List(ctx)
	observability.FromContext(ctx).Info("providers registered",
		observability.Any("providers", names))

	return reg, nil
}

func newPricingRegistry() (domain.PricingRegistry, error) {
	ctx := context.Background()
	pricing := domain.NewInMemoryPricingRegistry()

	for _, name := range []string{openai.GeminiName, openai.OpenAIName} {
		if err := openai.RegisterPricing(ctx, pricing, name); err != nil {
			return nil, err
		}
	}
	if err := anthropic.RegisterPricing(ctx, pricing); err != nil {
		return nil, err
	}
	if err := echo.RegisterPricing(ctx, pricing); err != nil {
		return nil, err
	}

	return pricing, nil
}

func newCostCalculator(pricing domain.PricingRegistry) domain.CostCalculator {
	return domain.NewStandardCostCalculator(pricing)
}

func newCooldownStore() *cooldown.Store {
	return cooldown.NewStore()
}

func newCredentialRing(cfg *config.Config) (*keyring.Ring, error) {
	return keyring.New(cfg.Pools())
}

func newThrottleGate(cfg *config.OrchestratorConfig) *throttle.Gate {
	return throttle.New(cfg.MinRequestInterval, cfg.FastMode)
}

func newSelector(
	cfg *config.Config,
	reg domain.ProviderRegistry,
	cooldowns *cooldown.Store,
	ring *keyring.Ring,
) (*routing.Selector, error) {
	routes, err := cfg.Routes()
	if err != nil {
		return nil, err
	}

	return routing.NewSelector(context.Background(), routes, reg, cooldowns, ring, cfg.Orchestrator.FastMode)
}

func newOrchestrator(
	cfg *config.OrchestratorConfig,
	reg domain.ProviderRegistry,
	selector *routing.Selector,
	cooldowns *cooldown.Store,
	ring *keyring.Ring,
	gate *throttle.Gate,
	classifier *classify.Classifier,
	events domain.EventPublisher,
) (domain.Orchestrator, error) {
	return orchestrator.New(cfg.Settings(), orchestrator.Deps{
		Registry:   reg,
		Selector:   selector,
		Cooldowns:  cooldowns,
		Ring:       ring,
		Gate:       gate,
		Classifier: classifier,
		Events:     events,
	})
}

// newResponseCache returns nil when caching is disabled. An unreachable
// Redis is logged and the cache kept, since failed lookups fall through to
// the orchestrator.
func newResponseCache(cfg *config.CacheConfig) domain.ResponseCache {
	if !cfg.Enabled {
		return nil
	}

	client := redis.NewClient(redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	logger := observability.FromContext(ctx)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, cache lookups will fail open",
			observability.String("addr", cfg.RedisAddr),
			observability.Error(err))
	} else {
		logger.Info("response cache enabled",
			observability.String("addr", cfg.RedisAddr),
			observability.Duration("ttl", cfg.TTL))
	}

	return redis.NewResponseCache(client, cfg.KeyPrefix)
}

func newGatewayService(
	orch domain.Orchestrator,
	calculator domain.CostCalculator,
	cache domain.ResponseCache,
	cfg *config.CacheConfig,
) *domain.GatewayService {
	return domain.NewGatewayService(orch, calculator, cache, cfg.TTL)
}
