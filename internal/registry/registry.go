package registry

import (
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/vk/metaclass/internal/hierarchy"
	"golang.org/x/sync/singleflight"
)

// DefaultMaxResolveAttempts bounds how often a module is requested from the
// resolver before it is marked unavailable.
const DefaultMaxResolveAttempts = 3

// Registry owns every Class and Module of one application instance. A single
// reader/writer lock guards the whole class graph; aggregation and cascade
// invalidation run as one writer critical section.
type Registry struct {
	mu           sync.RWMutex
	classes      map[string]*Class // Key: fully qualified class name
	modules      map[uint64]*Module
	moduleByName map[string]*Module
	graph        *hierarchy.Graph

	logger      *slog.Logger
	resolver    Resolver
	maxAttempts int
	inflight    singleflight.Group

	subMu     sync.Mutex
	nextSub   int
	listeners map[int]Listener
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for registry diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithResolver sets the resolver used to load the module of a placeholder
// class on first use.
func WithResolver(resolver Resolver) Option {
	return func(r *Registry) { r.resolver = resolver }
}

// WithMaxResolveAttempts sets the number of resolver calls made for a module
// before its failure becomes terminal. Values below 1 are ignored.
func WithMaxResolveAttempts(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// New creates an empty Registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		classes:      make(map[string]*Class),
		modules:      make(map[uint64]*Module),
		moduleByName: make(map[string]*Module),
		graph:        hierarchy.New(),
		logger:       slog.Default(),
		maxAttempts:  DefaultMaxResolveAttempts,
		listeners:    make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Class returns the class registered under its fully qualified name, or nil.
func (r *Registry) Class(name string) *Class {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.classes[name]
}

// Classes returns all registered classes sorted by qualified name.
func (r *Registry) Classes() []*Class {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedClassesLocked()
}

func (r *Registry) sortedClassesLocked() []*Class {
	out := make([]*Class, 0, len(r.classes))
	for _, c := range r.classes {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b *Class) int { return strings.Compare(a.qualified, b.qualified) })
	return out
}

// Modules returns all known modules ordered by id.
func (r *Registry) Modules() []*Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Module, 0, len(r.modules))
	for _, m := range r.modules {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b *Module) int {
		switch {
		case a.id < b.id:
			return -1
		case a.id > b.id:
			return 1
		}
		return 0
	})
	return out
}

// Module returns the module with the given id, or nil.
func (r *Registry) Module(id uint64) *Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.modules[id]
}

// ModuleByName returns the module with the given name, or nil.
func (r *Registry) ModuleByName(name string) *Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.moduleByName[name]
}

// linkLocked records the declared base of c in the hierarchy index.
func (r *Registry) linkLocked(c *Class) {
	base := c.impl.baseName()
	if base == c.qualified {
		// A self edge is left out of the index; aggregation reports it.
		r.graph.Remove(c.qualified)
		return
	}
	if err := r.graph.SetParent(c.qualified, base); err != nil {
		r.logger.Warn("Failed to index base class.", "class", c.qualified, "base", base, "error", err)
	}
}

// invalidateLocked drops the aggregated view of c and of every class that
// transitively derives from it.
func (r *Registry) invalidateLocked(c *Class) {
	c.agg = nil
	for _, name := range r.graph.Descendants(c.qualified) {
		if d := r.classes[name]; d != nil {
			d.agg = nil
		}
	}
}
