package domain

import "time"

// Status is a read-only snapshot of orchestrator state for monitoring.
type Status struct {
	FastMode   bool                  `json:"fast_mode"`
	Scopes     []ScopeStatus         `json:"scopes"`
	Pools      map[string]PoolStatus `json:"pools"`
	LastIssued map[string]time.Time  `json:"last_issued,omitempty"`
	Settings   StatusSettings        `json:"settings"`
	TakenAt    time.Time             `json:"taken_at"`
}

// ScopeStatus is the cooldown state of one provider, model or credential scope.
type ScopeStatus struct {
	Scope            string  `json:"scope"`
	Kind             string  `json:"kind"`
	Provider         string  `json:"provider"`
	Model            string  `json:"model,omitempty"`
	Credential       *int    `json:"credential,omitempty"`
	Blocked          bool    `json:"blocked"`
	RemainingSeconds float64 `json:"remaining_seconds"`
	Reason           string  `json:"reason,omitempty"`
}

// PoolStatus describes a provider's credential pool.
type PoolStatus struct {
	Size     int   `json:"size"`
	Cursor   int   `json:"cursor"`
	Unusable []int `json:"unusable,omitempty"`
}

// StatusSettings echoes the timing configuration in seconds.
type StatusSettings struct {
	MinRequestInterval     float64 `json:"min_request_interval"`
	DefaultRetryDelay      float64 `json:"default_retry_delay"`
	QuotaExhaustedCooldown float64 `json:"quota_exhausted_cooldown"`
	BillingErrorCooldown   float64 `json:"billing_error_cooldown"`
	MaxAttempts            int     `json:"max_attempts"`
}

// BlockedScopes returns only the scopes currently in cooldown.
func (s Status) BlockedScopes() []ScopeStatus {
	blocked := make([]ScopeStatus, 0, len(s.Scopes))
	for _, scope := range s.Scopes {
		if scope.Blocked {
			blocked = append(blocked, scope)
		}
	}
	return blocked
}
