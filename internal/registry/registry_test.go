package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// record stands in for the three concrete types this substrate actually
// stores (*method.Method, *agent.Agent, *delegate.Delegate) without this
// package importing any of them. Its key strings below mirror the real
// shapes each caller uses: pkg/method.Key ("name@version"),
// pkg/agent.idKey (decimal positive id), pkg/delegate's decimal
// negative id.
type record struct {
	Key   string
	Value string
}

func TestBaseRegistry_Register(t *testing.T) {
	r := NewBaseRegistry[record]()

	require.NoError(t, r.Register("greeter@1.0.0", record{Key: "greeter@1.0.0", Value: "method"}))
	assert.Error(t, r.Register("", record{}), "empty key must be rejected")
	assert.Error(t, r.Register("greeter@1.0.0", record{Key: "greeter@1.0.0", Value: "duplicate"}),
		"re-registering the same key must fail rather than overwrite")
}

func TestBaseRegistry_Get(t *testing.T) {
	r := NewBaseRegistry[record]()
	require.NoError(t, r.Register("42", record{Key: "42", Value: "agent"}))

	item, ok := r.Get("42")
	require.True(t, ok)
	assert.Equal(t, "agent", item.Value)

	_, ok = r.Get("-1")
	assert.False(t, ok, "a key that was never registered must not be found")
}

func TestBaseRegistry_List_ReturnsEveryRegisteredItemRegardlessOfKeyShape(t *testing.T) {
	r := NewBaseRegistry[record]()

	keys := []string{"greeter@1.0.0", "42", "-1"} // method, agent, delegate key shapes
	for _, k := range keys {
		require.NoError(t, r.Register(k, record{Key: k}))
	}

	items := r.List()
	assert.Len(t, items, len(keys))

	seen := make(map[string]bool)
	for _, item := range items {
		seen[item.Key] = true
	}
	for _, k := range keys {
		assert.True(t, seen[k], "List must include key %q", k)
	}
}

func TestBaseRegistry_Remove(t *testing.T) {
	r := NewBaseRegistry[record]()
	require.NoError(t, r.Register("42", record{Key: "42"}))

	require.NoError(t, r.Remove("42"))
	_, ok := r.Get("42")
	assert.False(t, ok)

	assert.Error(t, r.Remove("42"), "removing an already-removed key must fail")
}

func TestBaseRegistry_Count(t *testing.T) {
	r := NewBaseRegistry[record]()
	assert.Equal(t, 0, r.Count())

	require.NoError(t, r.Register("42", record{}))
	assert.Equal(t, 1, r.Count())

	require.NoError(t, r.Register("-1", record{}))
	assert.Equal(t, 2, r.Count())

	require.NoError(t, r.Remove("42"))
	assert.Equal(t, 1, r.Count())
}

func TestBaseRegistry_Clear(t *testing.T) {
	r := NewBaseRegistry[record]()
	require.NoError(t, r.Register("42", record{}))
	require.NoError(t, r.Register("-1", record{}))
	require.Equal(t, 2, r.Count())

	r.Clear()

	assert.Equal(t, 0, r.Count())
	assert.Empty(t, r.List())
	_, ok := r.Get("42")
	assert.False(t, ok)
}

// TestBaseRegistry_Concurrency exercises the mutex guard every one of
// pkg/method.Methodology, pkg/agent.Registry, and pkg/delegate.Registry
// relies on for safe concurrent access from the scheduler's single
// goroutine plus the delegate-response adapter goroutines (pkg/system's
// errgroup-based drainDelegates).
func TestBaseRegistry_Concurrency(t *testing.T) {
	r := NewBaseRegistry[record]()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			key := fmt.Sprintf("%d", i+1)
			_ = r.Register(key, record{Key: key})
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			r.Get(fmt.Sprintf("%d", i+1))
			r.Count()
			r.List()
		}
	}()

	wg.Wait()

	assert.Equal(t, 100, r.Count())
}
