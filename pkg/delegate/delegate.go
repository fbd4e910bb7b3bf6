// Package delegate implements the base Delegate, DelegateRegistry, and
// delegation Facade (section 3.7, 3.8, 4.8): negative-id participants
// in the message bus that mediate agent access to external resources.
package delegate

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/quenio/agerun/internal/registry"
	"github.com/quenio/agerun/pkg/data"
)

// Handler is implemented by each concrete delegate type (file, network,
// log) to synchronously compute a response for one queued message.
type Handler interface {
	// Type returns the delegate kind identifier ("file", "network", "log").
	Type() string

	// Handle computes a response map for message, sent by senderID.
	// Handle never mutates or takes ownership of message.
	Handle(message *data.MapValue, senderID int64) *data.MapValue
}

type envelope struct {
	senderID int64
	payload  data.Value
}

// Delegate wraps a Handler with the FIFO queue and id every delegate
// shares, mirroring the interface an Agent exposes (section 4.8): a
// delegate is addressed by negative id and reached via
// deliver/has-messages/take-message rather than direct calls.
type Delegate struct {
	id      int64
	handler Handler

	mu    sync.Mutex
	queue []envelope
}

// New wraps handler as a delegate with the given negative id.
func New(id int64, handler Handler) *Delegate {
	return &Delegate{id: id, handler: handler}
}

// ID returns the delegate's negative identifier.
func (d *Delegate) ID() int64 { return d.id }

// Type returns the delegate kind identifier.
func (d *Delegate) Type() string { return d.handler.Type() }

// Deliver enqueues msg (taking ownership), recording senderID for the
// eventual response routing. Returns false if msg is already owned
// elsewhere.
func (d *Delegate) Deliver(senderID int64, msg data.Value) bool {
	if msg == nil || !msg.TakeOwnership(d) {
		return false
	}
	d.mu.Lock()
	d.queue = append(d.queue, envelope{senderID: senderID, payload: msg})
	d.mu.Unlock()
	return true
}

// HasMessages reports whether the delegate has a queued message.
func (d *Delegate) HasMessages() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue) > 0
}

// TakeMessage pops the oldest queued message, transferring ownership
// back to the caller, alongside the sender id it was delivered with.
func (d *Delegate) TakeMessage() (msg data.Value, senderID int64, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.queue) == 0 {
		return nil, 0, false
	}
	e := d.queue[0]
	d.queue = d.queue[1:]
	e.payload.DropOwnership(d)
	return e.payload, e.senderID, true
}

// Process pops one queued message and runs it through the delegate's
// Handler, destroying the input message and returning the response
// map plus the sender id the response should be routed back to. ok is
// false if the queue was empty.
func (d *Delegate) Process() (response *data.MapValue, senderID int64, ok bool) {
	msg, sender, has := d.TakeMessage()
	if !has {
		return nil, 0, false
	}
	defer data.Destroy(msg)

	m, isMap := msg.(*data.MapValue)
	if !isMap {
		resp := data.NewMap()
		resp.SetString("status", "error")
		resp.SetString("message", "delegate message must be a map")
		return resp, sender, true
	}
	return d.handler.Handle(m, sender), sender, true
}

// DrainAndDestroy discards every still-queued message, used when the
// delegate (or its registry) is torn down.
func (d *Delegate) DrainAndDestroy() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, e := range d.queue {
		e.payload.DropOwnership(d)
		data.Destroy(e.payload)
	}
	d.queue = nil
}

func idKey(id int64) string { return strconv.FormatInt(id, 10) }

// Registry holds delegates keyed by their unique negative id (section
// 3.8): rejects duplicate registration for an id; destroying the
// registry destroys all contained delegates.
type Registry struct {
	base *registry.BaseRegistry[*Delegate]
}

// NewRegistry creates an empty delegate Registry.
func NewRegistry() *Registry {
	return &Registry{base: registry.NewBaseRegistry[*Delegate]()}
}

// Register adds d, failing if its id is already registered or is not
// negative (section 3.7: "id: i64 (<0, unique)").
func (r *Registry) Register(d *Delegate) error {
	if d.id >= 0 {
		return fmt.Errorf("delegate: id must be negative, got %d", d.id)
	}
	return r.base.Register(idKey(d.id), d)
}

// Get looks up a delegate by id.
func (r *Registry) Get(id int64) (*Delegate, bool) {
	return r.base.Get(idKey(id))
}

// List returns every registered delegate.
func (r *Registry) List() []*Delegate {
	return r.base.List()
}

// Remove tears a delegate down, destroying any messages still queued.
func (r *Registry) Remove(id int64) error {
	d, ok := r.Get(id)
	if !ok {
		return fmt.Errorf("delegate: no delegate with id %d", id)
	}
	d.DrainAndDestroy()
	return r.base.Remove(idKey(id))
}

// Destroy tears down every registered delegate.
func (r *Registry) Destroy() {
	for _, d := range r.base.List() {
		d.DrainAndDestroy()
		_ = r.base.Remove(idKey(d.id))
	}
}

// Facade composes a Registry with the convenience calls spec.md §4.8
// names for the delegation subsystem.
type Facade struct {
	registry *Registry
}

// NewFacade builds a Facade over registry.
func NewFacade(registry *Registry) *Facade {
	return &Facade{registry: registry}
}

// RegisterDelegate registers d, taking ownership per section 4.8.
func (f *Facade) RegisterDelegate(d *Delegate) error {
	return f.registry.Register(d)
}

// SendToDelegate enqueues message to id's queue, or destroys it on
// lookup failure (section 4.8). Returns whether the send succeeded.
func (f *Facade) SendToDelegate(senderID, id int64, message data.Value) bool {
	d, ok := f.registry.Get(id)
	if !ok {
		data.Destroy(message)
		return false
	}
	return d.Deliver(senderID, message)
}

// DelegateHasMessages reports whether id has a queued message.
func (f *Facade) DelegateHasMessages(id int64) bool {
	d, ok := f.registry.Get(id)
	if !ok {
		return false
	}
	return d.HasMessages()
}

// TakeDelegateMessage pops id's oldest queued message.
func (f *Facade) TakeDelegateMessage(id int64) (data.Value, int64, bool) {
	d, ok := f.registry.Get(id)
	if !ok {
		return nil, 0, false
	}
	return d.TakeMessage()
}

// Registry exposes the underlying delegate registry for iteration
// (e.g. pkg/system's drain loop, pkg/httpapi introspection).
func (f *Facade) Registry() *Registry { return f.registry }
