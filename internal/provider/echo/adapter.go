// Package echo provides a local provider that echoes the prompt back.
// It implements the domain.Provider interface without making external API calls,
// providing deterministic responses for testing and development purposes.
package echo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/davidbz/llmrelay/internal/domain"
	"github.com/davidbz/llmrelay/internal/observability"
)

const (
	providerName = "echo"
	modelName    = "echo4"

	// LocalCredential is the placeholder secret the echo pool is built with.
	LocalCredential = "echo-local-credential"
)

// Config contains echo provider configuration.
type Config struct {
	Enabled bool          `env:"ECHO_ENABLED" envDefault:"false"`
	Latency time.Duration `env:"ECHO_LATENCY" envDefault:"0s"`
}

// Provider implements the domain.Provider interface for echo testing.
type Provider struct {
	name            string
	latency         time.Duration
	supportedModels map[string]bool
}

// NewProvider creates a new echo provider.
func NewProvider(config Config) *Provider {
	return &Provider{
		name:    providerName,
		latency: config.Latency,
		supportedModels: map[string]bool{
			modelName: true,
		},
	}
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return p.name
}

// Model returns the only model the provider serves.
func (p *Provider) Model() string {
	return modelName
}

// Call echoes the prompt after the configured latency.
func (p *Provider) Call(ctx context.Context, req *domain.CallRequest) (*domain.CallResponse, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}

	if !p.supportedModels[req.Model] {
		return nil, &domain.ProviderError{
			StatusCode: 404,
			Body:       fmt.Sprintf("model %s is not supported by echo provider", req.Model),
		}
	}

	logger := observability.FromContext(ctx)
	logger.Debug("echoing request")

	if p.latency > 0 {
		timer := time.NewTimer(p.latency)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	content := buildEchoContent(req.Prompt)

	// Simple word-based counting
	promptTokens := countTokens(req.Prompt)
	completionTokens := countTokens(content)

	logger.Debug("echo completed",
		observability.Int("prompt_tokens", promptTokens),
		observability.Int("completion_tokens", completionTokens),
	)

	return &domain.CallResponse{
		Text:  content,
		Model: req.Model,
		Usage: domain.Usage{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			TotalTokens:      promptTokens + completionTokens,
		},
	}, nil
}

// buildEchoContent constructs the echo response from the prompt.
func buildEchoContent(prompt string) string {
	if strings.TrimSpace(prompt) == "" {
		return ""
	}
	return fmt.Sprintf("[echo]: %s", prompt)
}

// countTokens performs simple word-based token counting.
func countTokens(content string) int {
	if content == "" {
		return 0
	}
	return len(strings.Fields(content))
}
