// Package orchestrator drives one generation request across the configured
// candidates until a provider answers or every option is exhausted.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/davidbz/llmrelay/internal/classify"
	"github.com/davidbz/llmrelay/internal/cooldown"
	"github.com/davidbz/llmrelay/internal/domain"
	"github.com/davidbz/llmrelay/internal/keyring"
	"github.com/davidbz/llmrelay/internal/observability"
	"github.com/davidbz/llmrelay/internal/routing"
	"github.com/davidbz/llmrelay/internal/throttle"
)

const (
	DefaultRetryDelay              = 60 * time.Second
	DefaultQuotaCooldown           = time.Hour
	DefaultBillingCooldown         = 2 * time.Hour
	DefaultCallTimeout             = 5 * time.Second
	DefaultFastModeCallTimeout     = 3 * time.Second
	DefaultGenerateTimeout         = 20 * time.Second
	DefaultFastModeGenerateTimeout = 3 * time.Second
	DefaultMaxAttempts             = 6
)

// Event types published by the orchestrator.
const (
	EventCooldownSet        = "cooldown.set"
	EventCredentialRotated  = "credential.rotated"
	EventCredentialDisabled = "credential.disabled"
	EventExhausted          = "orchestrator.exhausted"
)

// Config holds the timing and retry settings.
type Config struct {
	DefaultRetryDelay       time.Duration
	QuotaExhaustedCooldown  time.Duration
	BillingErrorCooldown    time.Duration
	CallTimeout             time.Duration
	FastModeCallTimeout     time.Duration
	GenerateTimeout         time.Duration
	FastModeGenerateTimeout time.Duration
	MaxAttempts             int
	FastMode                bool
	DefaultMaxTokens        int
	DefaultTemperature      float64
}

func (c Config) withDefaults() Config {
	if c.DefaultRetryDelay <= 0 {
		c.DefaultRetryDelay = DefaultRetryDelay
	}
	if c.QuotaExhaustedCooldown <= 0 {
		c.QuotaExhaustedCooldown = DefaultQuotaCooldown
	}
	if c.BillingErrorCooldown <= 0 {
		c.BillingErrorCooldown = DefaultBillingCooldown
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = DefaultCallTimeout
	}
	if c.FastModeCallTimeout <= 0 {
		c.FastModeCallTimeout = DefaultFastModeCallTimeout
	}
	if c.GenerateTimeout <= 0 {
		c.GenerateTimeout = DefaultGenerateTimeout
	}
	if c.FastModeGenerateTimeout <= 0 {
		c.FastModeGenerateTimeout = DefaultFastModeGenerateTimeout
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	return c
}

// Deps are the collaborators shared by every request.
type Deps struct {
	Registry   domain.ProviderRegistry
	Selector   *routing.Selector
	Cooldowns  *cooldown.Store
	Ring       *keyring.Ring
	Gate       *throttle.Gate
	Classifier *classify.Classifier
	Events     domain.EventPublisher
}

// Orchestrator implements domain.Orchestrator.
type Orchestrator struct {
	cfg        Config
	registry   domain.ProviderRegistry
	selector   *routing.Selector
	cooldowns  *cooldown.Store
	ring       *keyring.Ring
	gate       *throttle.Gate
	classifier *classify.Classifier
	events     domain.EventPublisher
	nowFunc    func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock replaces time.Now for status snapshots.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.nowFunc = now
	}
}

// New creates an orchestrator. Missing timing settings take their defaults
// and a nil classifier uses the built-in patterns.
func New(cfg Config, deps Deps, opts ...Option) (*Orchestrator, error) {
	switch {
	case deps.Registry == nil:
		return nil, errors.New("provider registry is required")
	case deps.Selector == nil:
		return nil, errors.New("selector is required")
	case deps.Cooldowns == nil:
		return nil, errors.New("cooldown store is required")
	case deps.Ring == nil:
		return nil, errors.New("credential ring is required")
	case deps.Gate == nil:
		return nil, errors.New("throttle gate is required")
	}

	classifier := deps.Classifier
	if classifier == nil {
		classifier = classify.Default()
	}

	o := &Orchestrator{
		cfg:        cfg.withDefaults(),
		registry:   deps.Registry,
		selector:   deps.Selector,
		cooldowns:  deps.Cooldowns,
		ring:       deps.Ring,
		gate:       deps.Gate,
		classifier: classifier,
		events:     deps.Events,
		nowFunc:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Generate tries candidates in priority order. Provider failures never reach
// the caller: the result is a success or domain.ErrExhausted.
func (o *Orchestrator) Generate(ctx context.Context, req *domain.GenerateRequest) (*domain.GenerateResult, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request cannot be nil", domain.ErrInvalidRequest)
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, fmt.Errorf("%w: prompt cannot be empty", domain.ErrInvalidRequest)
	}

	maxAttempts := o.cfg.MaxAttempts
	deadline := o.cfg.GenerateTimeout
	if o.cfg.FastMode {
		maxAttempts = 1
		deadline = o.cfg.FastModeGenerateTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	tried := routing.Tried{}
	attempts := 0

	for attempts < maxAttempts {
		cand, ok := o.selector.Next(tried)
		if !ok {
			break
		}
		tried.Add(cand)

		attemptCtx := observability.WithModel(observability.WithProvider(ctx, cand.Provider), cand.Model)
		logger := observability.FromContext(attemptCtx)

		if err := o.gate.WaitIfNeeded(ctx, cand.Provider); err != nil {
			logger.Info("throttle wait cancelled", observability.Error(err))
			return nil, o.exhausted(ctx, attempts, "cancelled")
		}

		provider, err := o.registry.Get(ctx, cand.Provider)
		if err != nil {
			logger.Warn("adapter missing for candidate", observability.Error(err))
			continue
		}

		attempts++
		logger.Debug("calling provider",
			observability.Int("attempt", attempts),
			observability.Int("credential", cand.Credential.Index))

		resp, callErr := o.call(attemptCtx, provider, cand, req)
		if callErr == nil {
			logger.Info("provider call succeeded",
				observability.Int("attempt", attempts),
				observability.Int("credential", cand.Credential.Index))

			return &domain.GenerateResult{
				Text:       resp.Text,
				Provider:   cand.Provider,
				Model:      cand.Model,
				Credential: cand.Credential.Index,
				Attempts:   attempts,
				Usage:      resp.Usage,
				FinishTime: o.nowFunc(),
			}, nil
		}

		if ctx.Err() != nil {
			logger.Info("request cancelled during provider call", observability.Error(ctx.Err()))
			return nil, o.exhausted(ctx, attempts, "cancelled")
		}

		status, body := failureDetails(callErr)
		outcome := o.classifier.Classify(status, body)

		logger.Warn("provider call failed",
			observability.Int("attempt", attempts),
			observability.Int("credential", cand.Credential.Index),
			observability.Int("status", status),
			observability.String("class", outcome.Class.String()),
			observability.Error(callErr))

		o.apply(attemptCtx, cand, outcome)
	}

	return nil, o.exhausted(ctx, attempts, "no candidates left")
}

func (o *Orchestrator) call(
	ctx context.Context,
	provider domain.Provider,
	cand domain.Candidate,
	req *domain.GenerateRequest,
) (*domain.CallResponse, error) {
	timeout := o.cfg.CallTimeout
	if o.cfg.FastMode {
		timeout = o.cfg.FastModeCallTimeout
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = o.cfg.DefaultMaxTokens
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = o.cfg.DefaultTemperature
	}

	resp, err := provider.Call(callCtx, &domain.CallRequest{
		Model:       cand.Model,
		Credential:  cand.Credential,
		Prompt:      req.Prompt,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return nil, err
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		return nil, errEmptyResponse
	}
	return resp, nil
}

var errEmptyResponse = errors.New("empty response from provider")

func failureDetails(err error) (int, string) {
	var perr *domain.ProviderError
	if errors.As(err, &perr) {
		return perr.StatusCode, perr.Body
	}
	return 0, err.Error()
}

// apply updates shared state for a classified failure.
func (o *Orchestrator) apply(ctx context.Context, cand domain.Candidate, outcome classify.Outcome) {
	delay := o.cfg.DefaultRetryDelay
	if outcome.HasDelay {
		delay = outcome.Delay
	}
	reason := outcome.Class.Reason()

	switch outcome.Class {
	case classify.RateLimited:
		o.setCooldown(ctx, cooldown.CredentialScope(cand.Provider, cand.Credential.Index), delay, reason)
		o.rotate(ctx, cand)
		if d, ok := o.poolBlocked(cand.Provider); ok {
			o.setCooldown(ctx, cooldown.ModelScope(cand.Provider, cand.Model), d, reason)
		}
	case classify.QuotaExhausted:
		o.setCooldown(ctx, cooldown.ProviderScope(cand.Provider), o.cfg.QuotaExhaustedCooldown, reason)
	case classify.Billing:
		o.setCooldown(ctx, cooldown.ProviderScope(cand.Provider), o.cfg.BillingErrorCooldown, reason)
	case classify.InvalidCredential:
		o.ring.MarkUnusable(cand.Provider, cand.Credential.Index)
		observability.FromContext(ctx).Warn("credential disabled",
			observability.String("credential", cand.Credential.String()))
		o.publish(ctx, EventCredentialDisabled, map[string]interface{}{
			"provider":   cand.Provider,
			"credential": cand.Credential.Index,
		})
		o.rotate(ctx, cand)
	default:
		o.setCooldown(ctx, cooldown.ModelScope(cand.Provider, cand.Model), delay, reason)
	}
}

// poolBlocked reports whether every usable credential of provider is on a
// credential cooldown, and returns the shortest time until one frees up.
func (o *Orchestrator) poolBlocked(provider string) (time.Duration, bool) {
	var shortest time.Duration
	usable := 0

	for _, cred := range o.ring.Pool(provider) {
		if o.ring.IsUnusable(provider, cred.Index) {
			continue
		}
		usable++
		remaining := o.cooldowns.Remaining(cooldown.CredentialScope(provider, cred.Index))
		if remaining <= 0 {
			return 0, false
		}
		if shortest == 0 || remaining < shortest {
			shortest = remaining
		}
	}

	return shortest, usable > 0
}

func (o *Orchestrator) setCooldown(ctx context.Context, scope cooldown.Scope, d time.Duration, reason cooldown.Reason) {
	if !o.cooldowns.SetCooldown(scope, d, reason) {
		return
	}

	observability.FromContext(ctx).Info("cooldown set",
		observability.String("scope", scope.String()),
		observability.Duration("duration", d),
		observability.String("reason", string(reason)))

	o.publish(ctx, EventCooldownSet, map[string]interface{}{
		"scope":   scope.String(),
		"seconds": d.Seconds(),
		"reason":  string(reason),
	})
}

func (o *Orchestrator) rotate(ctx context.Context, cand domain.Candidate) {
	if !o.ring.Advance(cand.Provider, cand.Credential.Index) {
		return
	}

	observability.FromContext(ctx).Info("credential rotated",
		observability.Int("from", cand.Credential.Index))

	o.publish(ctx, EventCredentialRotated, map[string]interface{}{
		"provider": cand.Provider,
		"from":     cand.Credential.Index,
	})
}

func (o *Orchestrator) exhausted(ctx context.Context, attempts int, cause string) error {
	observability.FromContext(ctx).Warn("all candidates exhausted",
		observability.Int("attempts", attempts),
		observability.String("cause", cause))

	o.publish(ctx, EventExhausted, map[string]interface{}{
		"attempts": attempts,
		"cause":    cause,
	})

	return domain.ErrExhausted
}

func (o *Orchestrator) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if o.events == nil {
		return
	}
	o.events.Publish(ctx, eventType, data)
}
