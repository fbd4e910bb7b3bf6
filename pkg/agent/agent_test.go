package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quenio/agerun/pkg/data"
	"github.com/quenio/agerun/pkg/eventlog"
	"github.com/quenio/agerun/pkg/lang/instr"
	"github.com/quenio/agerun/pkg/method"
)

type nopRuntime struct{}

func (nopRuntime) Send(int64, int64, data.Value) bool         { return false }
func (nopRuntime) Compile(string, string, string) bool        { return false }
func (nopRuntime) Spawn(string, string, *data.MapValue) int64 { return 0 }
func (nopRuntime) DestroyAgent(int64) bool                    { return false }
func (nopRuntime) DestroyMethod(string, string) bool          { return false }

func newEvaluator() *instr.Evaluator {
	return instr.NewEvaluator(nopRuntime{}, eventlog.New(nil, eventlog.DefaultCapacity), nil)
}

func TestNew_EnqueuesSpawnLifecycleMessage(t *testing.T) {
	m, err := method.Compile("greeter", method.Version{1, 0, 0}, "memory.x := 1")
	require.NoError(t, err)

	a, err := New(m, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, a.QueueLen())
}

func TestProcessOne_RunsMethodAgainstMessage(t *testing.T) {
	m, err := method.Compile("greeter", method.Version{1, 0, 0}, "memory.x := 1\nmemory.y := memory.x + 1")
	require.NoError(t, err)

	a, err := New(m, nil, 1)
	require.NoError(t, err)

	ev := newEvaluator()
	ok := a.ProcessOne(ev)
	require.True(t, ok)
	assert.Equal(t, int64(1), a.Memory().GetInteger("x"))
	assert.Equal(t, int64(2), a.Memory().GetInteger("y"))
	assert.Equal(t, 0, a.QueueLen())
}

func TestProcessOne_EmptyQueueReturnsFalse(t *testing.T) {
	m, err := method.Compile("greeter", method.Version{1, 0, 0}, "memory.x := 1")
	require.NoError(t, err)
	a, err := New(m, nil, 1)
	require.NoError(t, err)

	ev := newEvaluator()
	require.True(t, a.ProcessOne(ev)) // drains the spawn message
	assert.False(t, a.ProcessOne(ev))
}

func TestProcessOne_DestroyLifecycleMarksTeardown(t *testing.T) {
	m, err := method.Compile("greeter", method.Version{1, 0, 0}, "memory.x := 1")
	require.NoError(t, err)
	a, err := New(m, nil, 1)
	require.NoError(t, err)

	ev := newEvaluator()
	require.True(t, a.ProcessOne(ev)) // spawn message

	a.RequestDestroy()
	require.True(t, a.ProcessOne(ev))
	assert.True(t, a.PendingTeardown())
}

func TestRegistry_SpawnAllocatesIncreasingIDs(t *testing.T) {
	r := NewRegistry()
	methodology := method.NewMethodology()
	m, err := method.Compile("greeter", method.Version{1, 0, 0}, "memory.x := 1")
	require.NoError(t, err)
	methodology.Register(m)

	a1, err := r.Spawn(methodology, m, nil)
	require.NoError(t, err)
	a2, err := r.Spawn(methodology, m, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(1), a1.ID())
	assert.Equal(t, int64(2), a2.ID())

	ids := r.Agents()
	require.Len(t, ids, 2)
	assert.Equal(t, int64(1), ids[0].ID())
	assert.Equal(t, int64(2), ids[1].ID())
}

func TestRegistry_RemoveReleasesMethodReference(t *testing.T) {
	r := NewRegistry()
	methodology := method.NewMethodology()
	m, err := method.Compile("greeter", method.Version{1, 0, 0}, "memory.x := 1")
	require.NoError(t, err)
	methodology.Register(m)

	a, err := r.Spawn(methodology, m, nil)
	require.NoError(t, err)

	assert.Error(t, methodology.Unregister("greeter", method.Version{1, 0, 0}))
	require.NoError(t, r.Remove(methodology, a.ID()))
	assert.NoError(t, methodology.Unregister("greeter", method.Version{1, 0, 0}))

	_, ok := r.Get(a.ID())
	assert.False(t, ok)
}

func TestRegistry_SetNextIDOnlyIncreases(t *testing.T) {
	r := NewRegistry()
	r.SetNextID(5)
	methodology := method.NewMethodology()
	m, err := method.Compile("greeter", method.Version{1, 0, 0}, "memory.x := 1")
	require.NoError(t, err)

	a, err := r.Spawn(methodology, m, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(5), a.ID())

	r.SetNextID(2) // must not move the allocator backwards
	a2, err := r.Spawn(methodology, m, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(6), a2.ID())
}
