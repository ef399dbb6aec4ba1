package domain

import "context"

// Provider is an adapter for one LLM vendor. It performs exactly one call
// with the credential it is given and never retries on its own.
type Provider interface {
	// Call sends the prompt to model using the given credential. Failures
	// reported by the vendor are returned as *ProviderError.
	Call(ctx context.Context, req *CallRequest) (*CallResponse, error)

	// Name returns the provider identifier.
	Name() string
}

// ProviderRegistry manages available providers.
type ProviderRegistry interface {
	// Register adds a provider to the registry.
	Register(ctx context.Context, provider Provider) error

	// Get retrieves a provider by name.
	Get(ctx context.Context, providerName string) (Provider, error)

	// List returns all available providers.
	List(ctx context.Context) ([]string, error)
}

// Orchestrator picks candidates and drives calls until one succeeds.
type Orchestrator interface {
	// Generate returns a result or ErrExhausted.
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error)

	// Status returns a snapshot of cooldowns, pools and throttle state.
	Status() Status
}

// EventPublisher publishes events for observability.
type EventPublisher interface {
	// Publish publishes an event with the given type and data.
	Publish(ctx context.Context, eventType string, data map[string]interface{})
}
