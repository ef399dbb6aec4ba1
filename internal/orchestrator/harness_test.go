package orchestrator_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/llmrelay/internal/cooldown"
	"github.com/davidbz/llmrelay/internal/domain"
	"github.com/davidbz/llmrelay/internal/keyring"
	"github.com/davidbz/llmrelay/internal/orchestrator"
	"github.com/davidbz/llmrelay/internal/provider/registry"
	"github.com/davidbz/llmrelay/internal/routing"
	"github.com/davidbz/llmrelay/internal/throttle"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
	frozen bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Sleep(_ context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	if !c.frozen {
		c.now = c.now.Add(d)
	}
	return nil
}

func (c *fakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}

// scriptedProvider answers each call through respond and records requests.
type scriptedProvider struct {
	name    string
	respond func(ctx context.Context, req *domain.CallRequest, n int) (*domain.CallResponse, error)

	mu    sync.Mutex
	calls []domain.CallRequest
}

func (p *scriptedProvider) Name() string {
	return p.name
}

func (p *scriptedProvider) Call(ctx context.Context, req *domain.CallRequest) (*domain.CallResponse, error) {
	p.mu.Lock()
	p.calls = append(p.calls, *req)
	n := len(p.calls)
	p.mu.Unlock()

	if p.respond == nil {
		return &domain.CallResponse{Text: "ok from " + p.name, Model: req.Model}, nil
	}
	return p.respond(ctx, req, n)
}

func (p *scriptedProvider) Calls() []domain.CallRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.CallRequest(nil), p.calls...)
}

func succeed(text string) func(context.Context, *domain.CallRequest, int) (*domain.CallResponse, error) {
	return func(_ context.Context, req *domain.CallRequest, _ int) (*domain.CallResponse, error) {
		return &domain.CallResponse{
			Text:  text,
			Model: req.Model,
			Usage: domain.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
		}, nil
	}
}

func fail(status int, body string) func(context.Context, *domain.CallRequest, int) (*domain.CallResponse, error) {
	return func(_ context.Context, _ *domain.CallRequest, _ int) (*domain.CallResponse, error) {
		return nil, &domain.ProviderError{StatusCode: status, Body: body}
	}
}

// recordingEvents is a domain.EventPublisher that keeps every event.
type recordingEvents struct {
	mu     sync.Mutex
	events []string
	data   []map[string]interface{}
}

func (r *recordingEvents) Publish(_ context.Context, eventType string, data map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, eventType)
	r.data = append(r.data, data)
}

func (r *recordingEvents) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type harness struct {
	clock     *fakeClock
	cooldowns *cooldown.Store
	ring      *keyring.Ring
	gate      *throttle.Gate
	events    *recordingEvents
	orch      *orchestrator.Orchestrator
}

type harnessOptions struct {
	cfg      orchestrator.Config
	routes   []domain.Route
	pools    map[string][]string
	interval time.Duration
	events   domain.EventPublisher
	// frozen keeps the clock still while the gate sleeps, so every wait is
	// measured from the same instant.
	frozen bool
	// realSleep lets the gate block on timers and honour cancellation.
	realSleep bool
}

func newHarness(t *testing.T, opts harnessOptions, providers ...domain.Provider) *harness {
	t.Helper()
	ctx := context.Background()

	clock := newFakeClock()
	clock.frozen = opts.frozen
	cooldowns := cooldown.NewStore(cooldown.WithClock(clock.Now))

	ring, err := keyring.New(opts.pools)
	require.NoError(t, err)

	reg := registry.NewRegistry()
	require.NoError(t, reg.RegisterAll(ctx, providers...))

	selector, err := routing.NewSelector(ctx, opts.routes, reg, cooldowns, ring, opts.cfg.FastMode)
	require.NoError(t, err)

	gateOpts := []throttle.Option{throttle.WithClock(clock.Now, clock.Sleep)}
	if opts.realSleep {
		gateOpts = nil
	}
	gate := throttle.New(opts.interval, opts.cfg.FastMode, gateOpts...)
	events := &recordingEvents{}
	var publisher domain.EventPublisher = events
	if opts.events != nil {
		publisher = opts.events
	}

	orch, err := orchestrator.New(opts.cfg, orchestrator.Deps{
		Registry:  reg,
		Selector:  selector,
		Cooldowns: cooldowns,
		Ring:      ring,
		Gate:      gate,
		Events:    publisher,
	}, orchestrator.WithClock(clock.Now))
	require.NoError(t, err)

	return &harness{
		clock:     clock,
		cooldowns: cooldowns,
		ring:      ring,
		gate:      gate,
		events:    events,
		orch:      orch,
	}
}

func geminiPool() map[string][]string {
	return map[string][]string{
		"gemini": {"g-key-0000", "g-key-1111", "g-key-2222", "g-key-3333"},
	}
}

func mixedPools() map[string][]string {
	return map[string][]string{
		"anthropic": {"sk-ant-0000"},
		"gemini":    {"g-key-0000", "g-key-1111", "g-key-2222", "g-key-3333"},
	}
}

var mixedRoutes = []domain.Route{
	{Provider: "anthropic", Model: "claude-haiku-4-5"},
	{Provider: "gemini", Model: "gemini-2.5-flash"},
	{Provider: "gemini", Model: "gemini-2.0-flash"},
}

var geminiRoutes = []domain.Route{
	{Provider: "gemini", Model: "gemini-2.5-flash"},
	{Provider: "gemini", Model: "gemini-flash-latest"},
	{Provider: "gemini", Model: "gemini-2.0-flash"},
	{Provider: "gemini", Model: "gemini-2.5-pro"},
}
