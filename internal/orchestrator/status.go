package orchestrator

import (
	"github.com/davidbz/llmrelay/internal/cooldown"
	"github.com/davidbz/llmrelay/internal/domain"
)

// Status returns a read-only snapshot of cooldowns, credential pools and
// throttle state. Every configured provider, route and credential scope is
// listed, blocked or not, followed by any other live cooldown.
func (o *Orchestrator) Status() domain.Status {
	seen := make(map[cooldown.Scope]bool)
	scopes := make([]cooldown.Scope, 0)

	add := func(scope cooldown.Scope) {
		if seen[scope] {
			return
		}
		seen[scope] = true
		scopes = append(scopes, scope)
	}

	routes := o.selector.Routes()
	providers := make([]string, 0)
	providerSeen := make(map[string]bool)
	for _, route := range routes {
		if !providerSeen[route.Provider] {
			providerSeen[route.Provider] = true
			providers = append(providers, route.Provider)
		}
	}

	for _, provider := range providers {
		add(cooldown.ProviderScope(provider))
		for _, route := range routes {
			if route.Provider == provider {
				add(cooldown.ModelScope(route.Provider, route.Model))
			}
		}
		for _, cred := range o.ring.Pool(provider) {
			add(cooldown.CredentialScope(provider, cred.Index))
		}
	}

	for _, entry := range o.cooldowns.Snapshot() {
		add(entry.Scope)
	}

	out := domain.Status{
		FastMode:   o.cfg.FastMode,
		Scopes:     make([]domain.ScopeStatus, 0, len(scopes)),
		Pools:      make(map[string]domain.PoolStatus),
		LastIssued: o.gate.Snapshot(),
		Settings: domain.StatusSettings{
			MinRequestInterval:     o.gate.Interval().Seconds(),
			DefaultRetryDelay:      o.cfg.DefaultRetryDelay.Seconds(),
			QuotaExhaustedCooldown: o.cfg.QuotaExhaustedCooldown.Seconds(),
			BillingErrorCooldown:   o.cfg.BillingErrorCooldown.Seconds(),
			MaxAttempts:            o.cfg.MaxAttempts,
		},
		TakenAt: o.nowFunc(),
	}

	for _, scope := range scopes {
		out.Scopes = append(out.Scopes, o.scopeStatus(scope))
	}

	for provider, pool := range o.ring.Snapshot() {
		out.Pools[provider] = domain.PoolStatus{
			Size:     pool.Size,
			Cursor:   pool.Cursor,
			Unusable: pool.Unusable,
		}
	}

	return out
}

func (o *Orchestrator) scopeStatus(scope cooldown.Scope) domain.ScopeStatus {
	status := domain.ScopeStatus{
		Scope:    scope.String(),
		Kind:     string(scope.Kind),
		Provider: scope.Provider,
		Model:    scope.Model,
	}
	if scope.Kind == cooldown.KindCredential {
		idx := scope.Credential
		status.Credential = &idx
	}

	if entry, ok := o.cooldowns.Entry(scope); ok {
		remaining := entry.ExpiresAt.Sub(o.nowFunc())
		if remaining > 0 {
			status.Blocked = true
			status.RemainingSeconds = remaining.Seconds()
			status.Reason = string(entry.Reason)
		}
	}

	return status
}
