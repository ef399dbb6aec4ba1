package orchestrator_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/llmrelay/internal/cooldown"
	"github.com/davidbz/llmrelay/internal/domain"
	"github.com/davidbz/llmrelay/internal/orchestrator"
)

func findScope(t *testing.T, status domain.Status, scope string) domain.ScopeStatus {
	t.Helper()

	for _, s := range status.Scopes {
		if s.Scope == scope {
			return s
		}
	}
	require.Failf(t, "scope not found", "scope %s missing from status", scope)
	return domain.ScopeStatus{}
}

func TestOrchestrator_Status(t *testing.T) {
	t.Run("should list every configured scope when idle", func(t *testing.T) {
		h := newHarness(t, harnessOptions{
			cfg:      orchestrator.Config{MaxAttempts: 6},
			routes:   mixedRoutes,
			pools:    mixedPools(),
			interval: 12 * time.Second,
		}, &scriptedProvider{name: "anthropic"}, &scriptedProvider{name: "gemini"})

		status := h.orch.Status()

		// 2 providers, 3 routes, 5 credentials.
		require.Len(t, status.Scopes, 10)
		require.Empty(t, status.BlockedScopes())
		require.Equal(t, "provider:anthropic", status.Scopes[0].Scope)
		require.Equal(t, domain.PoolStatus{Size: 4, Cursor: 0, Unusable: []int{}}, status.Pools["gemini"])
		require.InDelta(t, 12.0, status.Settings.MinRequestInterval, 1e-9)
		require.InDelta(t, 3600.0, status.Settings.QuotaExhaustedCooldown, 1e-9)
		require.InDelta(t, 7200.0, status.Settings.BillingErrorCooldown, 1e-9)
		require.InDelta(t, 60.0, status.Settings.DefaultRetryDelay, 1e-9)
		require.Equal(t, 6, status.Settings.MaxAttempts)
		require.False(t, status.FastMode)
		require.Equal(t, h.clock.Now(), status.TakenAt)
	})

	t.Run("should report cooldowns rotation and last dispatch", func(t *testing.T) {
		anthropic := &scriptedProvider{name: "anthropic", respond: fail(http.StatusBadRequest, anthropicCreditBody)}
		gemini := &scriptedProvider{name: "gemini", respond: func(_ context.Context, req *domain.CallRequest, n int) (*domain.CallResponse, error) {
			if n == 1 {
				return nil, &domain.ProviderError{StatusCode: http.StatusTooManyRequests, Body: "Please retry in 20s."}
			}
			return &domain.CallResponse{Text: "ok", Model: req.Model}, nil
		}}
		h := newHarness(t, harnessOptions{routes: mixedRoutes, pools: mixedPools()}, anthropic, gemini)

		_, err := h.orch.Generate(context.Background(), &domain.GenerateRequest{Prompt: "hello"})
		require.NoError(t, err)

		h.clock.Advance(5 * time.Second)
		status := h.orch.Status()

		provider := findScope(t, status, "provider:anthropic")
		require.True(t, provider.Blocked)
		require.Equal(t, "billing", provider.Reason)
		require.InDelta(t, 7195.0, provider.RemainingSeconds, 1e-6)

		require.False(t, findScope(t, status, "model:gemini/gemini-2.5-flash").Blocked)

		cred := findScope(t, status, "credential:gemini#0")
		require.True(t, cred.Blocked)
		require.Equal(t, "rate_limited", cred.Reason)
		require.InDelta(t, 15.0, cred.RemainingSeconds, 1e-6)
		require.NotNil(t, cred.Credential)
		require.Equal(t, 0, *cred.Credential)

		require.False(t, findScope(t, status, "credential:gemini#1").Blocked)
		require.Len(t, status.BlockedScopes(), 2)
		require.Equal(t, 1, status.Pools["gemini"].Cursor)
		require.Contains(t, status.LastIssued, "gemini")
		require.Contains(t, status.LastIssued, "anthropic")
	})

	t.Run("should include live cooldowns outside the configured routes", func(t *testing.T) {
		h := newHarness(t, harnessOptions{routes: geminiRoutes, pools: geminiPool()}, &scriptedProvider{name: "gemini"})
		h.cooldowns.SetCooldown(cooldown.ModelScope("gemini", "gemini-exp"), time.Minute, cooldown.ReasonGeneric)

		status := h.orch.Status()

		extra := findScope(t, status, "model:gemini/gemini-exp")
		require.True(t, extra.Blocked)
		require.Equal(t, "generic", extra.Reason)
	})
}
