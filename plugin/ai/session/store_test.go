package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	store, err := NewMemoryStore(0)
	require.NoError(t, err)

	t.Run("first access creates empty transcript", func(t *testing.T) {
		msgs := store.GetOrCreate(ctx, "s1")
		assert.NotNil(t, msgs)
		assert.Empty(t, msgs)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("second access returns same transcript", func(t *testing.T) {
		require.NoError(t, store.Append(ctx, "s1", UserMessage("hello")))
		msgs := store.GetOrCreate(ctx, "s1")
		require.Len(t, msgs, 1)
		assert.Equal(t, "hello", msgs[0].Content)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("returned slice is a copy", func(t *testing.T) {
		msgs := store.GetOrCreate(ctx, "s1")
		msgs[0].Content = "mutated"
		again := store.GetOrCreate(ctx, "s1")
		assert.Equal(t, "hello", again[0].Content)
	})
}

func TestMemoryStore_AppendPreservesOrder(t *testing.T) {
	ctx := context.Background()
	store, err := NewMemoryStore(0)
	require.NoError(t, err)

	require.NoError(t, store.Append(ctx, "s", UserMessage("first")))
	require.NoError(t, store.Append(ctx, "s", AssistantMessage("second")))
	require.NoError(t, store.Append(ctx, "s", UserMessage("third")))

	msgs := store.GetOrCreate(ctx, "s")
	require.Len(t, msgs, 3)
	assert.Equal(t, []string{"first", "second", "third"},
		[]string{msgs[0].Content, msgs[1].Content, msgs[2].Content})
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, RoleAssistant, msgs[1].Role)
}

func TestMemoryStore_AppendRejectsUnknownRole(t *testing.T) {
	store, err := NewMemoryStore(0)
	require.NoError(t, err)

	err = store.Append(context.Background(), "s", Message{Role: "system", Content: "x"})
	assert.Error(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStore_AppendStampsTimestamp(t *testing.T) {
	ctx := context.Background()
	store, err := NewMemoryStore(0)
	require.NoError(t, err)

	require.NoError(t, store.Append(ctx, "s", Message{Role: RoleUser, Content: "x"}))
	msgs := store.GetOrCreate(ctx, "s")
	assert.False(t, msgs[0].Timestamp.IsZero())
}

func TestMemoryStore_Bounded(t *testing.T) {
	ctx := context.Background()
	store, err := NewMemoryStore(2)
	require.NoError(t, err)

	require.NoError(t, store.Append(ctx, "a", UserMessage("a1")))
	require.NoError(t, store.Append(ctx, "b", UserMessage("b1")))
	// Touch "a" so "b" becomes least recently used.
	store.GetOrCreate(ctx, "a")
	require.NoError(t, store.Append(ctx, "c", UserMessage("c1")))

	assert.Equal(t, 2, store.Len())
	assert.Len(t, store.GetOrCreate(ctx, "a"), 1)
	assert.Len(t, store.GetOrCreate(ctx, "c"), 1)
}

func TestMemoryStore_UnboundedKeepsEverySession(t *testing.T) {
	ctx := context.Background()
	store, err := NewMemoryStore(0)
	require.NoError(t, err)

	for i := 0; i < 500; i++ {
		require.NoError(t, store.Append(ctx, fmt.Sprintf("s-%d", i), UserMessage("x")))
	}
	assert.Equal(t, 500, store.Len())
}

func TestMemoryStore_EvictIdle(t *testing.T) {
	for _, capacity := range []int{0, 10} {
		t.Run(fmt.Sprintf("capacity_%d", capacity), func(t *testing.T) {
			ctx := context.Background()
			store, err := NewMemoryStore(capacity)
			require.NoError(t, err)

			require.NoError(t, store.Append(ctx, "old", UserMessage("x")))
			cutoff := time.Now().Add(time.Millisecond)
			time.Sleep(2 * time.Millisecond)
			require.NoError(t, store.Append(ctx, "new", UserMessage("y")))

			assert.Equal(t, 1, store.EvictIdle(cutoff))
			assert.Equal(t, 1, store.Len())
			assert.Len(t, store.GetOrCreate(ctx, "new"), 1)
		})
	}
}

func TestMemoryStore_LockSerializesSession(t *testing.T) {
	ctx := context.Background()
	store, err := NewMemoryStore(0)
	require.NoError(t, err)

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			unlock := store.Lock("shared")
			defer unlock()
			// user turn followed by its reply must stay adjacent
			_ = store.Append(ctx, "shared", UserMessage(fmt.Sprintf("q%d", i)))
			_ = store.Append(ctx, "shared", AssistantMessage(fmt.Sprintf("a%d", i)))
		}(i)
	}
	wg.Wait()

	msgs := store.GetOrCreate(ctx, "shared")
	require.Len(t, msgs, 2*workers)
	for i := 0; i < len(msgs); i += 2 {
		assert.Equal(t, RoleUser, msgs[i].Role)
		assert.Equal(t, RoleAssistant, msgs[i+1].Role)
		assert.Equal(t, msgs[i].Content[1:], msgs[i+1].Content[1:])
	}
	assert.Equal(t, 0, store.locks.size())
}

func TestKeyedMutex_UnlockIsIdempotent(t *testing.T) {
	k := newKeyedMutex()
	unlock := k.Lock("a")
	unlock()
	unlock()
	assert.Equal(t, 0, k.size())

	// Different keys do not block each other.
	u1 := k.Lock("x")
	u2 := k.Lock("y")
	assert.Equal(t, 2, k.size())
	u1()
	u2()
}
