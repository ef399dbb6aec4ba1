package routing

import (
	"context"
	"errors"

	"github.com/davidbz/llmrelay/internal/cooldown"
	"github.com/davidbz/llmrelay/internal/domain"
	"github.com/davidbz/llmrelay/internal/keyring"
	"github.com/davidbz/llmrelay/internal/observability"
)

// ErrNoRoutes is returned when no configured route has both a credential
// pool and a registered adapter.
var ErrNoRoutes = errors.New("no routable candidates configured")

// AttemptKey identifies one (provider, model, credential) attempt.
type AttemptKey struct {
	Provider   string
	Model      string
	Credential int
}

// KeyOf returns the attempt key of c.
func KeyOf(c domain.Candidate) AttemptKey {
	return AttemptKey{Provider: c.Provider, Model: c.Model, Credential: c.Credential.Index}
}

// Tried is the set of attempts already made for one request.
type Tried map[AttemptKey]struct{}

// Add records c as attempted.
func (t Tried) Add(c domain.Candidate) {
	t[KeyOf(c)] = struct{}{}
}

// Has reports whether the attempt was already made.
func (t Tried) Has(key AttemptKey) bool {
	_, ok := t[key]
	return ok
}

// Selector produces the ordered eligible candidates for a request from the
// static route list, the cooldown store and the credential ring.
type Selector struct {
	routes    []domain.Route
	cooldowns *cooldown.Store
	ring      *keyring.Ring
	fastMode  bool
}

// NewSelector keeps the routes in priority order, dropping those whose
// provider has no credentials or no adapter in registry.
func NewSelector(
	ctx context.Context,
	routes []domain.Route,
	registry domain.ProviderRegistry,
	cooldowns *cooldown.Store,
	ring *keyring.Ring,
	fastMode bool,
) (*Selector, error) {
	logger := observability.FromContext(ctx)

	kept := make([]domain.Route, 0, len(routes))
	for _, route := range routes {
		if len(ring.Pool(route.Provider)) == 0 {
			logger.Warn("dropping route without credentials", observability.String("route", route.String()))
			continue
		}
		if _, err := registry.Get(ctx, route.Provider); err != nil {
			logger.Warn("dropping route without adapter",
				observability.String("route", route.String()),
				observability.Error(err))
			continue
		}
		kept = append(kept, route)
	}

	if len(kept) == 0 {
		return nil, ErrNoRoutes
	}

	return &Selector{
		routes:    kept,
		cooldowns: cooldowns,
		ring:      ring,
		fastMode:  fastMode,
	}, nil
}

// Routes returns the routes the selector draws from, in priority order.
func (s *Selector) Routes() []domain.Route {
	return append([]domain.Route(nil), s.routes...)
}

// FastMode reports whether cooldowns are ignored and only one candidate is
// offered.
func (s *Selector) FastMode() bool {
	return s.fastMode
}

// Candidates returns every currently eligible candidate in priority order.
func (s *Selector) Candidates() []domain.Candidate {
	return s.scan(nil, false)
}

// Next returns the first eligible candidate not yet in tried.
func (s *Selector) Next(tried Tried) (domain.Candidate, bool) {
	if s.fastMode {
		candidates := s.scan(nil, true)
		if len(candidates) == 0 || tried.Has(KeyOf(candidates[0])) {
			return domain.Candidate{}, false
		}
		return candidates[0], true
	}

	candidates := s.scan(tried, true)
	if len(candidates) == 0 {
		return domain.Candidate{}, false
	}
	return candidates[0], true
}

func (s *Selector) scan(tried Tried, first bool) []domain.Candidate {
	var out []domain.Candidate

	for rank, route := range s.routes {
		if !s.fastMode {
			if s.cooldowns.IsBlocked(cooldown.ProviderScope(route.Provider)) ||
				s.cooldowns.IsBlocked(cooldown.ModelScope(route.Provider, route.Model)) {
				continue
			}
		}

		cred, ok := s.ring.Current(route.Provider, s.eligible(route, tried))
		if !ok {
			continue
		}

		out = append(out, domain.Candidate{Route: route, Credential: cred, Rank: rank})
		if first || s.fastMode {
			break
		}
	}

	return out
}

func (s *Selector) eligible(route domain.Route, tried Tried) func(domain.Credential) bool {
	if s.fastMode {
		return nil
	}
	return func(c domain.Credential) bool {
		if tried.Has(AttemptKey{Provider: route.Provider, Model: route.Model, Credential: c.Index}) {
			return false
		}
		return !s.cooldowns.IsBlocked(cooldown.CredentialScope(route.Provider, c.Index))
	}
}
