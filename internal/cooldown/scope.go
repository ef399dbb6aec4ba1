package cooldown

import "fmt"

// Kind identifies what a Scope covers.
type Kind string

const (
	KindProvider   Kind = "provider"
	KindModel      Kind = "model"
	KindCredential Kind = "credential"
)

// Scope is the unit a cooldown applies to. Scopes are independent: a
// provider cooldown and a model cooldown under it can be active at once.
type Scope struct {
	Kind       Kind
	Provider   string
	Model      string
	Credential int
}

// ProviderScope covers every model and credential of provider.
func ProviderScope(provider string) Scope {
	return Scope{Kind: KindProvider, Provider: provider}
}

// ModelScope covers one model regardless of credential.
func ModelScope(provider, model string) Scope {
	return Scope{Kind: KindModel, Provider: provider, Model: model}
}

// CredentialScope covers one credential across all models of its provider.
func CredentialScope(provider string, index int) Scope {
	return Scope{Kind: KindCredential, Provider: provider, Credential: index}
}

func (s Scope) String() string {
	switch s.Kind {
	case KindModel:
		return fmt.Sprintf("model:%s/%s", s.Provider, s.Model)
	case KindCredential:
		return fmt.Sprintf("credential:%s#%d", s.Provider, s.Credential)
	default:
		return "provider:" + s.Provider
	}
}

// Reason records why a scope was put in cooldown.
type Reason string

const (
	ReasonRateLimited    Reason = "rate_limited"
	ReasonQuotaExhausted Reason = "quota_exhausted"
	ReasonBilling        Reason = "billing"
	ReasonGeneric        Reason = "generic"
)
