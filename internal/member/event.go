package member

import (
	"fmt"
	"sync"

	"github.com/zclconf/go-cty/cty"
)

// EventSpec is the registration-time description of an event (signal).
type EventSpec struct {
	Name        string
	Description string
	Params      []cty.Type
	// Signal returns the per-instance signal of obj.
	Signal func(obj any) *Signal
}

// Event describes a signal that instances of a class emit.
type Event struct {
	info
	params []cty.Type
	signal func(obj any) *Signal
}

// NewEvent builds an immutable event descriptor.
func NewEvent(spec EventSpec) *Event {
	return &Event{
		info:   info{name: spec.Name, description: spec.Description},
		params: paramsCopy(spec.Params),
		signal: spec.Signal,
	}
}

func (e *Event) Kind() Kind           { return KindEvent }
func (e *Event) Signature() Signature { return Signature{Params: e.params} }

// Signal returns the signal instance of obj for this event.
func (e *Event) Signal(obj any) (*Signal, error) {
	if e.signal == nil {
		return nil, fmt.Errorf("event %q: %w", e.name, ErrNotBound)
	}
	s := e.signal(obj)
	if s == nil {
		return nil, fmt.Errorf("event %q: object %T has no signal", e.name, obj)
	}
	return s, nil
}

// SlotSpec is the registration-time description of an event handler.
type SlotSpec struct {
	Name        string
	Description string
	Params      []cty.Type
	// Handler returns the handler function bound to obj.
	Handler func(obj any) func(args []cty.Value)
}

// Slot describes an event handler that can be connected to an event.
type Slot struct {
	info
	params  []cty.Type
	handler func(obj any) func(args []cty.Value)
}

// NewSlot builds an immutable slot descriptor.
func NewSlot(spec SlotSpec) *Slot {
	return &Slot{
		info:    info{name: spec.Name, description: spec.Description},
		params:  paramsCopy(spec.Params),
		handler: spec.Handler,
	}
}

func (s *Slot) Kind() Kind           { return KindSlot }
func (s *Slot) Signature() Signature { return Signature{Params: s.params} }

// Handler returns the handler function bound to obj.
func (s *Slot) Handler(obj any) (func(args []cty.Value), error) {
	if s.handler == nil {
		return nil, fmt.Errorf("slot %q: %w", s.name, ErrNotBound)
	}
	h := s.handler(obj)
	if h == nil {
		return nil, fmt.Errorf("slot %q: object %T has no handler", s.name, obj)
	}
	return h, nil
}

// Connect wires the event of src to the slot of dst. Both must have the same
// signature. The returned function disconnects the handler again.
func Connect(ev *Event, src any, slot *Slot, dst any) (func(), error) {
	if !ev.Signature().Equal(slot.Signature()) {
		return nil, fmt.Errorf("connect %q to %q: %w: %s vs %s", ev.name, slot.name, ErrSignatureMismatch, ev.Signature(), slot.Signature())
	}
	sig, err := ev.Signal(src)
	if err != nil {
		return nil, err
	}
	h, err := slot.Handler(dst)
	if err != nil {
		return nil, err
	}
	return sig.Connect(h), nil
}

// Signal is the per-instance emitter behind an event. Objects embed one
// Signal per event they expose.
type Signal struct {
	mu       sync.Mutex
	sig      Signature
	nextID   int
	handlers []connection
}

type connection struct {
	id int
	fn func(args []cty.Value)
}

// NewSignal creates a signal whose emissions carry the given parameter types.
func NewSignal(params ...cty.Type) *Signal {
	return &Signal{sig: Signature{Params: paramsCopy(params)}}
}

// Connect registers fn and returns a function that removes it.
func (s *Signal) Connect(fn func(args []cty.Value)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.handlers = append(s.handlers, connection{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, c := range s.handlers {
			if c.id == id {
				s.handlers = append(s.handlers[:i:i], s.handlers[i+1:]...)
				return
			}
		}
	}
}

// Len returns the number of connected handlers.
func (s *Signal) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handlers)
}

// Emit converts args to the signal's parameter types and calls every
// connected handler in connection order. Handlers run outside the lock and
// may connect or disconnect.
func (s *Signal) Emit(args ...cty.Value) error {
	converted, err := s.sig.Convert(args)
	if err != nil {
		return err
	}

	s.mu.Lock()
	handlers := append([]connection(nil), s.handlers...)
	s.mu.Unlock()

	for _, c := range handlers {
		c.fn(converted)
	}
	return nil
}
