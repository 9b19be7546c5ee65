package loadable

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"reflect"
	"slices"
	"strconv"
	"sync"

	"github.com/vk/metaclass/internal/ctxlog"
	"github.com/vk/metaclass/internal/registry"
)

var (
	// ErrUnsupportedFormat is returned when no loader handles a file extension.
	ErrUnsupportedFormat = errors.New("loadable: unsupported format")
	// ErrNoTargetClass is returned by LoadNew when the loader's type does not
	// name a class that can be created without arguments.
	ErrNoTargetClass = errors.New("loadable: type has no default-constructible class")
)

// Manager maintains the format index built from registry notifications.
type Manager struct {
	reg    *registry.Registry
	logger *slog.Logger
	cancel func()

	// qmu guards the queue only. Listeners run on whatever goroutine
	// changed the registry, which may be a drain in progress.
	qmu   sync.Mutex
	queue []registry.Event

	// mu guards the index and serialises drains.
	mu        sync.Mutex
	seen      map[*registry.Class]struct{}
	byClass   map[*registry.Class]*Loader
	loaders   []*Loader
	types     map[string]*Type
	typeOrder []string
	baseDirs  []string
	// targets maps the Go type of a load or save target to the loadable
	// type whose class creates it.
	targets map[reflect.Type]string
}

// NewManager subscribes to reg. Classes registered before the call are
// picked up from the registry snapshot; nothing is processed until the
// first query.
func NewManager(ctx context.Context, reg *registry.Registry) *Manager {
	m := &Manager{
		reg:     reg,
		logger:  ctxlog.FromContext(ctx),
		seen:    make(map[*registry.Class]struct{}),
		byClass: make(map[*registry.Class]*Loader),
		types:   make(map[string]*Type),
		targets: make(map[reflect.Type]string),
	}
	existing, cancel := reg.Watch(m.enqueue)
	m.cancel = cancel

	m.qmu.Lock()
	for _, c := range existing {
		m.queue = append(m.queue, registry.Event{Kind: registry.EventClassLoaded, Class: c})
	}
	m.qmu.Unlock()
	return m
}

// Close stops listening to the registry.
func (m *Manager) Close() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m *Manager) enqueue(ev registry.Event) {
	m.qmu.Lock()
	defer m.qmu.Unlock()
	m.queue = append(m.queue, ev)
}

// requeue puts ev back at the head of the queue.
func (m *Manager) requeue(ev registry.Event) {
	m.qmu.Lock()
	defer m.qmu.Unlock()
	m.queue = slices.Insert(m.queue, 0, ev)
}

func (m *Manager) pop() (registry.Event, bool) {
	m.qmu.Lock()
	defer m.qmu.Unlock()
	if len(m.queue) == 0 {
		return registry.Event{}, false
	}
	ev := m.queue[0]
	m.queue = m.queue[1:]
	return ev, true
}

// drainLocked processes queued notifications until the queue is empty.
// Creating a loader may load its module, which queues more notifications;
// those are processed in the same drain. When ctx ends mid-drain the
// pending notification stays queued for the next query.
func (m *Manager) drainLocked(ctx context.Context) {
	for {
		ev, ok := m.pop()
		if !ok {
			return
		}
		switch ev.Kind {
		case registry.EventClassLoaded:
			if err := m.addLocked(ctx, ev.Class); err != nil {
				m.requeue(ev)
				m.logger.Debug("Loader discovery interrupted.", "class", ev.Class.QualifiedName(), "error", err)
				return
			}
		case registry.EventClassUnloaded:
			m.removeLocked(ev.Class)
		}
	}
}

// addLocked evaluates c as a loader class. It returns an error only when
// ctx ended before c could be evaluated; every other failure is final and
// c is not looked at again until it is unloaded.
func (m *Manager) addLocked(ctx context.Context, c *registry.Class) error {
	if _, dup := m.seen[c]; dup {
		return nil
	}
	if !c.IsDerivedFromName(RootClass) {
		m.seen[c] = struct{}{}
		return nil
	}
	logger := m.logger.With("class", c.QualifiedName())

	props, err := c.Properties(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		m.seen[c] = struct{}{}
		logger.Warn("Skipping loader class.", "error", err)
		return nil
	}
	typeName := props[PropType]
	if typeName == "" {
		m.seen[c] = struct{}{}
		logger.Debug("Skipping loader class without type.")
		return nil
	}

	obj, err := c.Create(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		m.seen[c] = struct{}{}
		logger.Warn("Skipping loader class that failed to instantiate.", "error", err)
		return nil
	}
	m.seen[c] = struct{}{}
	impl, ok := obj.(LoaderImpl)
	if !ok {
		logger.Warn("Skipping loader class without usable instance.", "instance", fmt.Sprintf("%T", obj))
		return nil
	}

	l := &Loader{
		class:       c,
		impl:        impl,
		typeName:    typeName,
		formats:     parseFormats(props[PropFormats]),
		canLoad:     flag(props[PropLoad], true),
		canSave:     flag(props[PropSave], false),
		description: props[PropDescription],
	}
	m.byClass[c] = l
	m.loaders = append(m.loaders, l)
	t := m.types[typeName]
	if t == nil {
		t = &Type{name: typeName}
		m.types[typeName] = t
		m.typeOrder = append(m.typeOrder, typeName)
	}
	t.loaders = append(t.loaders, l)
	logger.Debug("Loader registered.", "type", typeName, "formats", l.formats)
	return nil
}

func (m *Manager) removeLocked(c *registry.Class) {
	delete(m.seen, c)
	l := m.byClass[c]
	if l == nil {
		return
	}
	delete(m.byClass, c)
	m.loaders = slices.DeleteFunc(m.loaders, func(x *Loader) bool { return x == l })
	if t := m.types[l.typeName]; t != nil {
		t.loaders = slices.DeleteFunc(slices.Clone(t.loaders), func(x *Loader) bool { return x == l })
		if len(t.loaders) == 0 {
			delete(m.types, l.typeName)
			m.typeOrder = slices.DeleteFunc(m.typeOrder, func(n string) bool { return n == l.typeName })
			maps.DeleteFunc(m.targets, func(_ reflect.Type, n string) bool { return n == l.typeName })
		}
	}
	m.logger.Debug("Loader retracted.", "class", c.QualifiedName())
}

func flag(raw string, def bool) bool {
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

// Types returns a snapshot of all types in discovery order.
func (m *Manager) Types(ctx context.Context) []*Type {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drainLocked(ctx)
	out := make([]*Type, 0, len(m.typeOrder))
	for _, name := range m.typeOrder {
		out = append(out, m.snapshotLocked(name))
	}
	return out
}

// Type returns a snapshot of the named type, or nil.
func (m *Manager) Type(ctx context.Context, name string) *Type {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drainLocked(ctx)
	if m.types[name] == nil {
		return nil
	}
	return m.snapshotLocked(name)
}

func (m *Manager) snapshotLocked(name string) *Type {
	t := m.types[name]
	return &Type{name: t.name, loaders: slices.Clone(t.loaders)}
}

// Loaders returns all loaders in discovery order.
func (m *Manager) Loaders(ctx context.Context) []*Loader {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drainLocked(ctx)
	return slices.Clone(m.loaders)
}

// LoaderByExtension returns the first loader declaring ext, or nil.
func (m *Manager) LoaderByExtension(ctx context.Context, ext string) *Loader {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drainLocked(ctx)
	return findLoader(m.loaders, ext, nil)
}

// Formats returns every supported extension, sorted.
func (m *Manager) Formats(ctx context.Context) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drainLocked(ctx)
	return collectFormats(m.loaders)
}

// IsFormatLoadSupported reports whether some loader reads ext.
func (m *Manager) IsFormatLoadSupported(ctx context.Context, ext string) bool {
	return m.loaderFor(ctx, ext, (*Loader).CanLoad) != nil
}

// IsFormatSaveSupported reports whether some loader writes ext.
func (m *Manager) IsFormatSaveSupported(ctx context.Context, ext string) bool {
	return m.loaderFor(ctx, ext, (*Loader).CanSave) != nil
}

func (m *Manager) loaderFor(ctx context.Context, ext string, keep func(*Loader) bool) *Loader {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drainLocked(ctx)
	return findLoader(m.loaders, ext, keep)
}

// typedLoaderFor returns the loader of typeName for ext, or nil.
func (m *Manager) typedLoaderFor(ctx context.Context, typeName, ext string, keep func(*Loader) bool) *Loader {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drainLocked(ctx)
	t := m.types[typeName]
	if t == nil {
		return nil
	}
	return findLoader(t.loaders, ext, keep)
}

// targetLoaderFor picks the loader for ext among the types that declare it.
// When more than one type does, the type whose class creates values of the
// same Go type as target wins. Without a match the first loader for ext in
// discovery order is used.
func (m *Manager) targetLoaderFor(ctx context.Context, target any, ext string, keep func(*Loader) bool) *Loader {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drainLocked(ctx)

	var candidates []*Loader
	for _, name := range m.typeOrder {
		if l := findLoader(m.types[name].loaders, ext, keep); l != nil {
			candidates = append(candidates, l)
		}
	}
	if len(candidates) < 2 {
		return findLoader(m.loaders, ext, keep)
	}

	rt := reflect.TypeOf(target)
	if name, ok := m.targets[rt]; ok {
		for _, l := range candidates {
			if l.typeName == name {
				return l
			}
		}
	}
	for _, l := range candidates {
		if m.createsLocked(ctx, l.typeName, rt) {
			m.targets[rt] = l.typeName
			return l
		}
	}
	return findLoader(m.loaders, ext, keep)
}

// createsLocked reports whether the class named typeName creates values of
// Go type rt with its default constructor.
func (m *Manager) createsLocked(ctx context.Context, typeName string, rt reflect.Type) bool {
	cls := m.reg.Class(typeName)
	if cls == nil {
		return false
	}
	obj, err := cls.Create(ctx)
	if err != nil || obj == nil {
		return false
	}
	return reflect.TypeOf(obj) == rt
}

// AddBaseDir appends a directory searched by Load for relative paths.
func (m *Manager) AddBaseDir(dir string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dir = filepath.Clean(dir)
	if !slices.Contains(m.baseDirs, dir) {
		m.baseDirs = append(m.baseDirs, dir)
	}
}

// RemoveBaseDir removes a directory from the search list.
func (m *Manager) RemoveBaseDir(dir string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dir = filepath.Clean(dir)
	m.baseDirs = slices.DeleteFunc(m.baseDirs, func(d string) bool { return d == dir })
}

// BaseDirs returns the search list in order.
func (m *Manager) BaseDirs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.baseDirs)
}

// ClearBaseDirs empties the search list.
func (m *Manager) ClearBaseDirs() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baseDirs = nil
}
