package registry_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/llmrelay/internal/domain"
	"github.com/davidbz/llmrelay/internal/mocks"
	"github.com/davidbz/llmrelay/internal/provider/registry"
)

// stubProvider is a minimal domain.Provider for registry tests.
type stubProvider struct {
	name string
}

func (s *stubProvider) Call(_ context.Context, req *domain.CallRequest) (*domain.CallResponse, error) {
	return &domain.CallResponse{Text: "ok", Model: req.Model}, nil
}

func (s *stubProvider) Name() string {
	return s.name
}

func TestRegistry_Register(t *testing.T) {
	t.Run("should register provider successfully", func(t *testing.T) {
		reg := registry.NewRegistry()
		ctx := context.Background()

		err := reg.Register(ctx, &stubProvider{name: "gemini"})
		require.NoError(t, err)

		registered, err := reg.Get(ctx, "gemini")
		require.NoError(t, err)
		require.NotNil(t, registered)
		require.Equal(t, "gemini", registered.Name())
	})

	t.Run("should key providers by their reported name", func(t *testing.T) {
		reg := registry.NewRegistry()
		ctx := context.Background()
		provider := mocks.NewMockProvider(t)
		provider.EXPECT().Name().Return("anthropic").Once()

		require.NoError(t, reg.Register(ctx, provider))

		registered, err := reg.Get(ctx, "anthropic")
		require.NoError(t, err)
		require.Same(t, provider, registered)
	})

	t.Run("should return error when provider is nil", func(t *testing.T) {
		reg := registry.NewRegistry()

		err := reg.Register(context.Background(), nil)

		require.Error(t, err)
		require.Contains(t, err.Error(), "provider cannot be nil")
	})

	t.Run("should return error when provider name is empty", func(t *testing.T) {
		reg := registry.NewRegistry()

		err := reg.Register(context.Background(), &stubProvider{name: ""})

		require.Error(t, err)
		require.Contains(t, err.Error(), "provider name cannot be empty")
	})

	t.Run("should return error when provider already registered", func(t *testing.T) {
		reg := registry.NewRegistry()
		ctx := context.Background()

		require.NoError(t, reg.Register(ctx, &stubProvider{name: "anthropic"}))
		err := reg.Register(ctx, &stubProvider{name: "anthropic"})

		require.Error(t, err)
		require.Contains(t, err.Error(), "provider anthropic already registered")
	})
}

func TestRegistry_RegisterAll(t *testing.T) {
	t.Run("should register every provider", func(t *testing.T) {
		reg := registry.NewRegistry()
		ctx := context.Background()

		err := reg.RegisterAll(ctx, &stubProvider{name: "gemini"}, &stubProvider{name: "anthropic"})
		require.NoError(t, err)

		names, err := reg.List(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"anthropic", "gemini"}, names)
	})

	t.Run("should stop at the first failure", func(t *testing.T) {
		reg := registry.NewRegistry()

		err := reg.RegisterAll(context.Background(), &stubProvider{name: "gemini"}, nil)

		require.Error(t, err)
	})
}

func TestRegistry_Get(t *testing.T) {
	t.Run("should return error when provider name is empty", func(t *testing.T) {
		reg := registry.NewRegistry()

		provider, err := reg.Get(context.Background(), "")

		require.Error(t, err)
		require.Nil(t, provider)
		require.Contains(t, err.Error(), "provider name cannot be empty")
	})

	t.Run("should return error when provider not found", func(t *testing.T) {
		reg := registry.NewRegistry()

		provider, err := reg.Get(context.Background(), "nonexistent")

		require.Error(t, err)
		require.Nil(t, provider)
		require.Contains(t, err.Error(), "provider nonexistent not found")
	})
}

func TestRegistry_List(t *testing.T) {
	t.Run("should return empty list when no providers registered", func(t *testing.T) {
		reg := registry.NewRegistry()

		names, err := reg.List(context.Background())

		require.NoError(t, err)
		require.Empty(t, names)
	})
}

func TestRegistry_Concurrent(t *testing.T) {
	t.Run("should handle concurrent reads and writes", func(t *testing.T) {
		reg := registry.NewRegistry()
		ctx := context.Background()
		require.NoError(t, reg.Register(ctx, &stubProvider{name: "gemini"}))

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = reg.Get(ctx, "gemini")
				_, _ = reg.List(ctx)
			}()
		}
		wg.Wait()

		names, err := reg.List(ctx)
		require.NoError(t, err)
		require.Len(t, names, 1)
	})
}
