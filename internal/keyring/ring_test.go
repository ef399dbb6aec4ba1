package keyring_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/llmrelay/internal/domain"
	"github.com/davidbz/llmrelay/internal/keyring"
)

func newRing(t *testing.T) *keyring.Ring {
	t.Helper()

	ring, err := keyring.New(map[string][]string{
		"gemini":    {"key-a-0000", "key-b-1111", "key-c-2222", "key-d-3333"},
		"anthropic": {"sk-ant-9999"},
	})
	require.NoError(t, err)
	return ring
}

func TestNew(t *testing.T) {
	t.Run("should reject more than four credentials", func(t *testing.T) {
		_, err := keyring.New(map[string][]string{
			"gemini": {"a", "b", "c", "d", "e"},
		})

		require.ErrorIs(t, err, keyring.ErrPoolTooLarge)
	})

	t.Run("should reject empty secrets", func(t *testing.T) {
		_, err := keyring.New(map[string][]string{
			"gemini": {"a", ""},
		})

		require.ErrorIs(t, err, keyring.ErrEmptySecret)
	})

	t.Run("should skip providers without secrets", func(t *testing.T) {
		ring, err := keyring.New(map[string][]string{
			"gemini": {"a"},
			"openai": nil,
		})

		require.NoError(t, err)
		require.Equal(t, []string{"gemini"}, ring.Providers())
	})

	t.Run("should assign stable indexes in order", func(t *testing.T) {
		ring := newRing(t)

		pool := ring.Pool("gemini")
		require.Len(t, pool, 4)
		for i, cred := range pool {
			require.Equal(t, i, cred.Index)
			require.Equal(t, "gemini", cred.Provider)
		}
	})
}

func TestRing_Current(t *testing.T) {
	t.Run("should start at index zero", func(t *testing.T) {
		ring := newRing(t)

		cred, ok := ring.Current("gemini", nil)

		require.True(t, ok)
		require.Equal(t, 0, cred.Index)
	})

	t.Run("should skip credentials the predicate rejects", func(t *testing.T) {
		ring := newRing(t)
		blocked := map[int]bool{0: true, 1: true}

		cred, ok := ring.Current("gemini", func(c domain.Credential) bool { return !blocked[c.Index] })

		require.True(t, ok)
		require.Equal(t, 2, cred.Index)
	})

	t.Run("should wrap around from the cursor", func(t *testing.T) {
		ring := newRing(t)
		require.True(t, ring.Advance("gemini", 0))
		require.True(t, ring.Advance("gemini", 1))
		require.True(t, ring.Advance("gemini", 2))

		cred, ok := ring.Current("gemini", func(c domain.Credential) bool { return c.Index != 3 })

		require.True(t, ok)
		require.Equal(t, 0, cred.Index)
	})

	t.Run("should report none when every credential is rejected", func(t *testing.T) {
		ring := newRing(t)

		_, ok := ring.Current("gemini", func(domain.Credential) bool { return false })

		require.False(t, ok)
	})

	t.Run("should report none for an unknown provider", func(t *testing.T) {
		ring := newRing(t)

		_, ok := ring.Current("mistral", nil)

		require.False(t, ok)
	})

	t.Run("should skip unusable credentials", func(t *testing.T) {
		ring := newRing(t)
		ring.MarkUnusable("gemini", 0)

		cred, ok := ring.Current("gemini", nil)

		require.True(t, ok)
		require.Equal(t, 1, cred.Index)
		require.True(t, ring.IsUnusable("gemini", 0))
	})
}

func TestRing_Advance(t *testing.T) {
	t.Run("should move the cursor to the next index", func(t *testing.T) {
		ring := newRing(t)

		require.True(t, ring.Advance("gemini", 0))

		cred, _ := ring.Current("gemini", nil)
		require.Equal(t, 1, cred.Index)
	})

	t.Run("should wrap at the end of the pool", func(t *testing.T) {
		ring, err := keyring.New(map[string][]string{"gemini": {"a", "b"}})
		require.NoError(t, err)

		require.True(t, ring.Advance("gemini", 0))
		require.True(t, ring.Advance("gemini", 1))

		require.Equal(t, 0, ring.Snapshot()["gemini"].Cursor)
	})

	t.Run("should ignore a stale advance", func(t *testing.T) {
		ring := newRing(t)

		require.True(t, ring.Advance("gemini", 0))
		require.False(t, ring.Advance("gemini", 0))

		require.Equal(t, 1, ring.Snapshot()["gemini"].Cursor)
	})

	t.Run("should advance once under concurrent failures of one credential", func(t *testing.T) {
		ring := newRing(t)

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ring.Advance("gemini", 0)
			}()
		}
		wg.Wait()

		require.Equal(t, 1, ring.Snapshot()["gemini"].Cursor)
	})

	t.Run("should keep a single credential pool at zero", func(t *testing.T) {
		ring := newRing(t)

		require.True(t, ring.Advance("anthropic", 0))

		require.Equal(t, 0, ring.Snapshot()["anthropic"].Cursor)
	})
}

func TestRing_Snapshot(t *testing.T) {
	t.Run("should report size cursor and sorted unusable indexes", func(t *testing.T) {
		ring := newRing(t)
		ring.MarkUnusable("gemini", 3)
		ring.MarkUnusable("gemini", 1)
		ring.MarkUnusable("gemini", 9)
		ring.Advance("gemini", 0)

		snap := ring.Snapshot()

		require.Equal(t, keyring.PoolSnapshot{Size: 4, Cursor: 1, Unusable: []int{1, 3}}, snap["gemini"])
		require.Equal(t, 1, snap["anthropic"].Size)
		require.Empty(t, snap["anthropic"].Unusable)
	})
}
