package registry

import "slices"

// EventKind discriminates registry notifications.
type EventKind int

const (
	// EventClassLoaded is sent once per class after it has been inserted,
	// either as a placeholder or as a real class. It announces that the
	// class exists, not that it is fully queryable.
	EventClassLoaded EventKind = iota
	// EventClassUnloaded is sent once per class when its module is unloaded.
	EventClassUnloaded
)

func (k EventKind) String() string {
	switch k {
	case EventClassLoaded:
		return "loaded"
	case EventClassUnloaded:
		return "unloaded"
	default:
		return "unknown"
	}
}

// Event is a single registry notification.
type Event struct {
	Kind  EventKind
	Class *Class
}

// Listener receives registry notifications. Listeners are called
// synchronously on the goroutine that changed the registry, after the
// registry lock has been released, so they may query the registry.
type Listener func(Event)

// Subscribe registers l and returns a function that removes it again.
func (r *Registry) Subscribe(l Listener) (cancel func()) {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	return r.subscribeLocked(l)
}

// Watch registers l and returns the classes present at the moment of
// subscription. A class is reported through the snapshot, through an
// EventClassLoaded, or both; consumers must tolerate seeing it twice.
func (r *Registry) Watch(l Listener) (existing []*Class, cancel func()) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	r.subMu.Lock()
	defer r.subMu.Unlock()
	return r.sortedClassesLocked(), r.subscribeLocked(l)
}

func (r *Registry) subscribeLocked(l Listener) func() {
	r.nextSub++
	id := r.nextSub
	r.listeners[id] = l
	return func() {
		r.subMu.Lock()
		defer r.subMu.Unlock()
		delete(r.listeners, id)
	}
}

// emit delivers one event per class to every listener in subscription order.
// It must be called without holding r.mu.
func (r *Registry) emit(kind EventKind, classes []*Class) {
	if len(classes) == 0 {
		return
	}
	r.subMu.Lock()
	ids := make([]int, 0, len(r.listeners))
	for id := range r.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	listeners := make([]Listener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, r.listeners[id])
	}
	r.subMu.Unlock()

	for _, c := range classes {
		ev := Event{Kind: kind, Class: c}
		for _, l := range listeners {
			l(ev)
		}
	}
}
