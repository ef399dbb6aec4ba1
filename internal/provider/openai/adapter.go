// Package openai provides adapters built on the official OpenAI SDK: one for
// OpenAI itself and one for Gemini through its OpenAI-compatible endpoint.
// Each credential gets its own SDK client with SDK retries disabled, since
// retrying and rotation belong to the orchestrator.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/davidbz/llmrelay/internal/domain"
	"github.com/davidbz/llmrelay/internal/observability"
)

const (
	OpenAIName = "openai"
	GeminiName = "gemini"
)

// Provider implements the domain.Provider interface for OpenAI-compatible APIs.
type Provider struct {
	name    string
	baseURL string

	mu      sync.Mutex
	clients map[string]openai.Client
}

// NewProvider creates an adapter named name that talks to baseURL.
func NewProvider(name, baseURL string) (*Provider, error) {
	if name == "" {
		return nil, errors.New("provider name is required")
	}

	return &Provider{
		name:    name,
		baseURL: baseURL,
		clients: make(map[string]openai.Client),
	}, nil
}

// NewOpenAIProvider creates the OpenAI adapter.
func NewOpenAIProvider(config Config) (*Provider, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	return NewProvider(OpenAIName, baseURL)
}

// NewGeminiProvider creates the Gemini adapter.
func NewGeminiProvider(config GeminiConfig) (*Provider, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	return NewProvider(GeminiName, baseURL)
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return p.name
}

// Call sends a single chat completion with the request's credential.
func (p *Provider) Call(ctx context.Context, req *domain.CallRequest) (*domain.CallResponse, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}
	if req.Credential.Secret == "" {
		return nil, fmt.Errorf("%s API key is required", p.name)
	}

	logger := observability.FromContext(ctx)
	logger.Debug("calling OpenAI-compatible API",
		observability.String("credential", req.Credential.String()))

	client := p.clientFor(req.Credential.Secret)

	resp, err := client.Chat.Completions.New(ctx, toSDKParams(req))
	if err != nil {
		logger.Debug("OpenAI-compatible API call failed", observability.Error(err))
		return nil, toProviderError(err)
	}

	logger.Debug("OpenAI-compatible API call succeeded",
		observability.Int("prompt_tokens", int(resp.Usage.PromptTokens)),
		observability.Int("completion_tokens", int(resp.Usage.CompletionTokens)),
	)

	return toDomainResponse(req.Model, resp), nil
}

func (p *Provider) clientFor(secret string) openai.Client {
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

	client := openai.NewClient(opts...)
	p.clients[secret] = client
	return client
}

// toSDKParams converts a call request to SDK ChatCompletionNewParams.
func toSDKParams(req *domain.CallRequest) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
	}

	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	return params
}

func toDomainResponse(requested string, resp *openai.ChatCompletion) *domain.CallResponse {
	content := ""
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}

	model := string(resp.Model)
	if model == "" {
		model = requested
	}

	return &domain.CallResponse{
		Text:  content,
		Model: model,
		Usage: domain.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}
}

// toProviderError keeps the status code and raw body of API errors so the
// classifier can read retry hints and quota details.
func toProviderError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		body := apiErr.RawJSON()
		if strings.TrimSpace(body) == "" {
			body = apiErr.Error()
		}
		return &domain.ProviderError{StatusCode: apiErr.StatusCode, Body: body, Err: err}
	}

	return &domain.ProviderError{Body: err.Error(), Err: err}
}
