// Package frame defines the borrowed execution context bound during
// one method evaluation.
package frame

import (
	"errors"

	"github.com/quenio/agerun/pkg/data"
)

// ErrMissingField is returned by New when memory, context, or message
// is nil — a Frame never owns its referents and never tolerates a gap.
var ErrMissingField = errors.New("frame: memory, context, and message are all required")

// Root names the reserved top-level identifiers an expression's
// MemoryAccess may bind to.
type Root string

const (
	RootMemory  Root = "memory"
	RootContext Root = "context"
	RootMessage Root = "message"
)

// Frame is the triple (memory, context, message) bound for the
// duration of one method evaluation. Frame borrows all three; it is
// never the owner of record for any of them.
type Frame struct {
	memory  *data.MapValue
	context *data.MapValue
	message data.Value
}

// New builds a Frame, failing if any field is missing.
func New(memory, context *data.MapValue, message data.Value) (*Frame, error) {
	if memory == nil || context == nil || message == nil {
		return nil, ErrMissingField
	}
	return &Frame{memory: memory, context: context, message: message}, nil
}

// Memory returns the writable memory root.
func (f *Frame) Memory() *data.MapValue { return f.memory }

// Context returns the read-only context root.
func (f *Frame) Context() *data.MapValue { return f.context }

// Message returns the read-only message root.
func (f *Frame) Message() data.Value { return f.message }

// Resolve returns a borrowed reference to the value at path under the
// given root ("memory", "context", or "message"). For the message
// root, an empty path returns the message itself; a non-empty path
// only resolves if the message is a map.
func (f *Frame) Resolve(root Root, path []string) data.Value {
	switch root {
	case RootMemory:
		return resolveIn(f.memory, path)
	case RootContext:
		return resolveIn(f.context, path)
	case RootMessage:
		if len(path) == 0 {
			return f.message
		}
		m, ok := f.message.(*data.MapValue)
		if !ok {
			return nil
		}
		return resolveIn(m, path)
	default:
		return nil
	}
}

func resolveIn(m *data.MapValue, path []string) data.Value {
	if len(path) == 0 {
		return m
	}
	joined := path[0]
	for _, p := range path[1:] {
		joined += "." + p
	}
	return m.GetData(joined)
}
