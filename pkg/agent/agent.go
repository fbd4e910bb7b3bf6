// Package agent implements Agent (section 3.6) and AgentRegistry
// (section 3.8): positive-id message processors running a compiled
// Method against a memory/context/message Frame.
package agent

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/quenio/agerun/internal/registry"
	"github.com/quenio/agerun/pkg/data"
	"github.com/quenio/agerun/pkg/frame"
	"github.com/quenio/agerun/pkg/lang/instr"
	"github.com/quenio/agerun/pkg/method"
)

// LifecycleKey is the reserved field name lifecycle messages use.
const LifecycleKey = "__lifecycle__"

// Lifecycle message kinds (section 6.5).
const (
	LifecycleSpawn   = "__spawn__"
	LifecycleDestroy = "__destroy__"
)

// NewLifecycleMessage builds an unowned `{__lifecycle__: kind}` map.
func NewLifecycleMessage(kind string) data.Value {
	m := data.NewMap()
	m.SetString(LifecycleKey, kind)
	return m
}

// IsLifecycleMessage reports whether msg is the lifecycle marker kind.
func IsLifecycleMessage(msg data.Value, kind string) bool {
	m, ok := msg.(*data.MapValue)
	if !ok {
		return false
	}
	return m.GetString(LifecycleKey) == kind
}

// Agent is one running instance of a Method: positive id, owned
// memory and context maps, and a FIFO message queue (section 3.6).
type Agent struct {
	id        int64
	methodRef *method.Method
	memory    *data.MapValue
	context   *data.MapValue
	queue     *data.ListValue

	mu              sync.Mutex
	pendingTeardown bool
}

// New constructs an agent bound to m with id, shallow-copying context
// into an owned map and enqueuing the spawn lifecycle message as its
// first message (section 4.6). context may be nil, meaning "empty".
func New(m *method.Method, context *data.MapValue, id int64) (*Agent, error) {
	var ownedContext data.Value
	if context == nil {
		ownedContext = data.NewMap()
	} else {
		ownedContext = data.ShallowCopy(context)
		if ownedContext == nil {
			return nil, fmt.Errorf("agent: context is not copyable (nested non-primitive container)")
		}
	}
	ctxMap := ownedContext.(*data.MapValue)

	a := &Agent{
		id:        id,
		methodRef: m,
		memory:    data.NewMap(),
		context:   ctxMap,
		queue:     data.NewList(),
	}
	a.Deliver(NewLifecycleMessage(LifecycleSpawn))
	return a, nil
}

// ID returns the agent's positive identifier.
func (a *Agent) ID() int64 { return a.id }

// Method returns the method this agent runs.
func (a *Agent) Method() *method.Method { return a.methodRef }

// Memory returns the agent's writable memory map (borrowed).
func (a *Agent) Memory() *data.MapValue { return a.memory }

// Context returns the agent's immutable-post-creation context map (borrowed).
func (a *Agent) Context() *data.MapValue { return a.context }

// QueueLen reports the number of messages currently queued.
func (a *Agent) QueueLen() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.queue.Count()
}

// Deliver enqueues message, taking ownership (section 4.6). Returns
// false if message is already owned elsewhere.
func (a *Agent) Deliver(message data.Value) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.queue.AddLastData(message)
}

// PendingTeardown reports whether the destroy lifecycle message has
// already been processed and this agent is ready for registry removal.
func (a *Agent) PendingTeardown() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pendingTeardown
}

// RequestDestroy enqueues the destroy lifecycle message ahead of
// actual teardown (section 4.6, 6.5).
func (a *Agent) RequestDestroy() {
	a.Deliver(NewLifecycleMessage(LifecycleDestroy))
}

// ProcessOne pops one message, builds a Frame, and runs every
// instruction of the agent's method against it in order (section
// 4.6). Returns false if the queue was empty. The message is
// destroyed once every instruction has run.
func (a *Agent) ProcessOne(ev *instr.Evaluator) bool {
	a.mu.Lock()
	if a.queue.Count() == 0 {
		a.mu.Unlock()
		return false
	}
	msg := a.queue.RemoveFirst()
	a.mu.Unlock()

	f, err := frame.New(a.memory, a.context, msg)
	if err != nil {
		data.Destroy(msg)
		return true
	}

	ev.SetSender(a.id)
	for _, node := range a.methodRef.Instructions {
		ev.Evaluate(node, f)
	}

	if IsLifecycleMessage(msg, LifecycleDestroy) {
		a.mu.Lock()
		a.pendingTeardown = true
		a.mu.Unlock()
	}

	data.Destroy(msg)
	return true
}

// Restore reconstructs an Agent at a specific id with already-populated
// memory and context, without enqueuing a spawn lifecycle message —
// used when restoring a persisted agency snapshot (section 6.3), where
// the agent already existed on disk and is resuming, not spawning
// anew. memory and context default to empty maps if nil.
func Restore(m *method.Method, id int64, memory, context *data.MapValue) *Agent {
	if memory == nil {
		memory = data.NewMap()
	}
	if context == nil {
		context = data.NewMap()
	}
	return &Agent{id: id, methodRef: m, memory: memory, context: context, queue: data.NewList()}
}

// Registry allocates strictly increasing positive agent ids and
// preserves id->agent mapping, iterating in insertion (== numeric id)
// order (section 3.8).
type Registry struct {
	mu     sync.Mutex
	base   *registry.BaseRegistry[*Agent]
	nextID int64
}

// NewRegistry creates an empty Registry whose first allocated id is 1.
func NewRegistry() *Registry {
	return &Registry{base: registry.NewBaseRegistry[*Agent](), nextID: 1}
}

func idKey(id int64) string { return strconv.FormatInt(id, 10) }

// Spawn allocates a new id, constructs an Agent for m, registers it,
// and acquires a methodology reference for (m.Name, m.Version).
func (r *Registry) Spawn(methodology *method.Methodology, m *method.Method, context *data.MapValue) (*Agent, error) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.mu.Unlock()

	a, err := New(m, context, id)
	if err != nil {
		return nil, err
	}
	if err := r.base.Register(idKey(id), a); err != nil {
		return nil, err
	}
	if methodology != nil {
		methodology.Acquire(m.Name, m.Version)
	}
	return a, nil
}

// Adopt registers an already-constructed agent (typically from
// Restore) without allocating a new id, and acquires its methodology
// reference — the counterpart to Spawn used by persistence load
// (section 6.3).
func (r *Registry) Adopt(methodology *method.Methodology, a *Agent) error {
	if err := r.base.Register(idKey(a.id), a); err != nil {
		return err
	}
	if methodology != nil {
		methodology.Acquire(a.methodRef.Name, a.methodRef.Version)
	}
	return nil
}

// Get looks up an agent by id.
func (r *Registry) Get(id int64) (*Agent, bool) {
	return r.base.Get(idKey(id))
}

// Agents returns every registered agent in ascending-id (== insertion)
// order.
func (r *Registry) Agents() []*Agent {
	list := r.base.List()
	sort.Slice(list, func(i, j int) bool { return list[i].id < list[j].id })
	return list
}

// Count returns the number of currently registered agents.
func (r *Registry) Count() int { return r.base.Count() }

// Remove tears an agent down: releases its methodology reference,
// destroys any still-queued messages, and removes it from the
// registry.
func (r *Registry) Remove(methodology *method.Methodology, id int64) error {
	a, ok := r.Get(id)
	if !ok {
		return fmt.Errorf("agent: no agent with id %d", id)
	}
	for a.queue.Count() > 0 {
		data.Destroy(a.queue.RemoveFirst())
	}
	if methodology != nil {
		methodology.Release(a.methodRef.Name, a.methodRef.Version)
	}
	return r.base.Remove(idKey(id))
}

// SetNextID resets the id allocator, used by persistence load to
// continue after the highest id found on disk (section 6.3).
func (r *Registry) SetNextID(next int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if next > r.nextID {
		r.nextID = next
	}
}
