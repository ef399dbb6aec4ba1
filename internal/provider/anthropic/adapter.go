// Package anthropic provides the Claude adapter on top of the official
// Anthropic SDK.
package anthropic

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/davidbz/llmrelay/internal/domain"
	"github.com/davidbz/llmrelay/internal/observability"
)

// Name is the provider identifier used in routes and credential pools.
const Name = "anthropic"

const (
	providerName     = Name
	defaultMaxTokens = 1024
)

// Provider implements the domain.Provider interface for Anthropic.
type Provider struct {
	baseURL string

	mu      sync.Mutex
	clients map[string]anthropic.Client
}

// NewProvider creates a new Anthropic provider.
func NewProvider(config Config) *Provider {
	return &Provider{
		baseURL: config.BaseURL,
		clients: make(map[string]anthropic.Client),
	}
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return providerName
}

// Call sends one Messages request with the request's credential.
func (p *Provider) Call(ctx context.Context, req *domain.CallRequest) (*domain.CallResponse, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}
	if req.Credential.Secret == "" {
		return nil, errors.New("anthropic API key is required")
	}

	logger := observability.FromContext(ctx)
	logger.Debug("calling Anthropic API",
		observability.String("credential", req.Credential.String()))

	client := p.clientFor(req.Credential.Secret)

	message, err := client.Messages.New(ctx, toSDKParams(req))
	if err != nil {
		logger.Debug("Anthropic API call failed", observability.Error(err))
		return nil, toProviderError(err)
	}

	logger.Debug("Anthropic API call succeeded",
		observability.Int("input_tokens", int(message.Usage.InputTokens)),
		observability.Int("output_tokens", int(message.Usage.OutputTokens)),
	)

	return toDomainResponse(req.Model, message), nil
}

func (p *Provider) clientFor(secret string) anthropic.Client {
	p.mu.Lock()
	defer p.mu.Unlock()

	if client, ok := p.clients[secret]; ok {
		return client
	}

	opts := []option.RequestOption{
		option.WithAPIKey(secret),
		option.WithMaxRetries(0),
	}
	if p.baseURL != "" {
		opts = append(opts, option.WithBaseURL(p.baseURL))
	}

	client := anthropic.NewClient(opts...)
	p.clients[secret] = client
	return client
}

func toSDKParams(req *domain.CallRequest) anthropic.MessageNewParams {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}

	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	return params
}

func toDomainResponse(requested string, message *anthropic.Message) *domain.CallResponse {
	var text strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	model := string(message.Model)
	if model == "" {
		model = requested
	}

	input := int(message.Usage.InputTokens)
	output := int(message.Usage.OutputTokens)

	return &domain.CallResponse{
		Text:  text.String(),
		Model: model,
		Usage: domain.Usage{
			PromptTokens:     input,
			CompletionTokens: output,
			TotalTokens:      input + output,
		},
	}
}

func toProviderError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		body := apiErr.RawJSON()
		if strings.TrimSpace(body) == "" {
			body = apiErr.Error()
		}
		return &domain.ProviderError{StatusCode: apiErr.StatusCode, Body: body, Err: err}
	}

	return &domain.ProviderError{Body: err.Error(), Err: err}
}
