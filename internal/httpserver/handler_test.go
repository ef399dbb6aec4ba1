package httpserver_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/davidbz/llmrelay/internal/config"
	"github.com/davidbz/llmrelay/internal/domain"
	"github.com/davidbz/llmrelay/internal/httpserver"
	"github.com/davidbz/llmrelay/internal/httpserver/middleware"
	"github.com/davidbz/llmrelay/internal/mocks"
)

type fixture struct {
	orchestrator *mocks.MockOrchestrator
	registry     *mocks.MockProviderRegistry
	cache        *mocks.MockResponseCache
	routes       http.Handler
}

func newFixture(t *testing.T, withCache bool) *fixture {
	t.Helper()

	f := &fixture{
		orchestrator: mocks.NewMockOrchestrator(t),
		registry:     mocks.NewMockProviderRegistry(t),
	}

	var cache domain.ResponseCache
	if withCache {
		f.cache = mocks.NewMockResponseCache(t)
		cache = f.cache
	}

	gateway := domain.NewGatewayService(f.orchestrator, nil, cache, time.Hour)
	handler := httpserver.NewHandler(gateway, f.registry)
	server := httpserver.NewServer(&config.ServerConfig{Port: 0}, handler, middleware.Trace())
	f.routes = server.Routes()

	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	f.routes.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) httpserver.ErrorResponse {
	t.Helper()

	var body httpserver.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestHandleGenerate(t *testing.T) {
	t.Run("should return the orchestrator result", func(t *testing.T) {
		f := newFixture(t, false)
		f.orchestrator.EXPECT().
			Generate(mock.Anything, &domain.GenerateRequest{Prompt: "Hello"}).
			Return(&domain.GenerateResult{
				Text:     "Hi!",
				Provider: "gemini",
				Model:    "gemini-2.5-flash",
				Attempts: 2,
			}, nil)

		w := f.do(http.MethodPost, "/v1/generate", `{"prompt":"Hello"}`)

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "application/json", w.Header().Get("Content-Type"))
		require.Equal(t, "MISS", w.Header().Get(httpserver.HeaderCache))
		require.Equal(t, "gemini", w.Header().Get(httpserver.HeaderProvider))
		require.Equal(t, "2", w.Header().Get(httpserver.HeaderAttempts))
		require.NotEmpty(t, w.Header().Get("X-Request-Id"))

		var result domain.GenerateResult
		require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
		require.Equal(t, "Hi!", result.Text)
		require.Equal(t, "gemini-2.5-flash", result.Model)
	})

	t.Run("should answer 503 when every candidate is exhausted", func(t *testing.T) {
		f := newFixture(t, false)
		f.orchestrator.EXPECT().
			Generate(mock.Anything, mock.Anything).
			Return(nil, domain.ErrExhausted)

		w := f.do(http.MethodPost, "/v1/generate", `{"prompt":"Hello"}`)

		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		body := decodeError(t, w)
		require.Equal(t, "exhausted", body.Status)
		require.Equal(t, domain.ErrExhausted.Error(), body.Error)
	})

	t.Run("should answer 500 on unexpected failures", func(t *testing.T) {
		f := newFixture(t, false)
		f.orchestrator.EXPECT().
			Generate(mock.Anything, mock.Anything).
			Return(nil, errors.New("boom"))

		w := f.do(http.MethodPost, "/v1/generate", `{"prompt":"Hello"}`)

		require.Equal(t, http.StatusInternalServerError, w.Code)
		require.Contains(t, decodeError(t, w).Error, "boom")
	})

	t.Run("should reject a blank prompt without calling the orchestrator", func(t *testing.T) {
		f := newFixture(t, false)

		w := f.do(http.MethodPost, "/v1/generate", `{"prompt":"  "}`)

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t, "invalid_request", decodeError(t, w).Status)
	})

	t.Run("should reject invalid JSON", func(t *testing.T) {
		f := newFixture(t, false)

		w := f.do(http.MethodPost, "/v1/generate", `{"prompt":`)

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, decodeError(t, w).Error, "invalid request body")
	})

	t.Run("should reject other methods", func(t *testing.T) {
		f := newFixture(t, false)

		w := f.do(http.MethodGet, "/v1/generate", "")

		require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})

	t.Run("should mark cached answers", func(t *testing.T) {
		f := newFixture(t, true)
		f.cache.EXPECT().
			Get(mock.Anything, mock.Anything).
			Return(&domain.GenerateResult{Text: "cached", Provider: "anthropic"}, nil)

		w := f.do(http.MethodPost, "/v1/generate", `{"prompt":"Hello"}`)

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "HIT", w.Header().Get(httpserver.HeaderCache))
		require.Empty(t, w.Header().Get(httpserver.HeaderAttempts))

		var result domain.GenerateResult
		require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
		require.True(t, result.Cached)
	})

	t.Run("should store fresh answers in the cache", func(t *testing.T) {
		f := newFixture(t, true)
		result := &domain.GenerateResult{Text: "fresh", Provider: "gemini", Attempts: 1}
		f.cache.EXPECT().Get(mock.Anything, mock.Anything).Return(nil, domain.ErrCacheMiss)
		f.orchestrator.EXPECT().Generate(mock.Anything, mock.Anything).Return(result, nil)
		f.cache.EXPECT().Set(mock.Anything, mock.Anything, result, time.Hour).Return(nil)

		w := f.do(http.MethodPost, "/v1/generate", `{"prompt":"Hello"}`)

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "MISS", w.Header().Get(httpserver.HeaderCache))
	})
}

func TestHandleStatus(t *testing.T) {
	t.Run("should return the orchestrator snapshot", func(t *testing.T) {
		f := newFixture(t, false)
		credential := 1
		f.orchestrator.EXPECT().Status().Return(domain.Status{
			Scopes: []domain.ScopeStatus{{
				Scope:            "credential:gemini#1",
				Kind:             "credential",
				Provider:         "gemini",
				Credential:       &credential,
				Blocked:          true,
				RemainingSeconds: 18.4,
				Reason:           "rate_limited",
			}},
			Pools: map[string]domain.PoolStatus{"gemini": {Size: 4, Cursor: 2}},
		})

		w := f.do(http.MethodGet, "/v1/status", "")

		require.Equal(t, http.StatusOK, w.Code)

		var status domain.Status
		require.NoError(t, json.NewDecoder(w.Body).Decode(&status))
		require.Len(t, status.BlockedScopes(), 1)
		require.Equal(t, 1, *status.Scopes[0].Credential)
		require.Equal(t, 2, status.Pools["gemini"].Cursor)
	})

	t.Run("should reject other methods", func(t *testing.T) {
		f := newFixture(t, false)

		w := f.do(http.MethodPost, "/v1/status", "")

		require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func TestHandleHealth(t *testing.T) {
	t.Run("should list registered providers", func(t *testing.T) {
		f := newFixture(t, false)
		f.registry.EXPECT().List(mock.Anything).Return([]string{"anthropic", "gemini"}, nil)
		f.orchestrator.EXPECT().Status().Return(domain.Status{FastMode: true})

		w := f.do(http.MethodGet, "/health", "")

		require.Equal(t, http.StatusOK, w.Code)

		var body httpserver.HealthResponse
		require.NoError(t, json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&body))
		require.Equal(t, "healthy", body.Status)
		require.Equal(t, []string{"anthropic", "gemini"}, body.Providers)
		require.True(t, body.FastMode)
	})
}
