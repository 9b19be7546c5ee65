package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Resolver locates the plugin implementing a module that is not resident.
type Resolver interface {
	Resolve(ctx context.Context, module string) (Plugin, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, module string) (Plugin, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, module string) (Plugin, error) {
	return f(ctx, module)
}

// Catalog is a Resolver over a fixed set of compiled-in plugins.
type Catalog struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
}

// NewCatalog creates a catalog containing the given plugins.
func NewCatalog(plugins ...Plugin) *Catalog {
	c := &Catalog{plugins: make(map[string]Plugin)}
	for _, p := range plugins {
		c.Add(p)
	}
	return c
}

// Add makes p resolvable under its name. It panics on duplicate names, which
// indicate two plugins compiled in under the same module name.
func (c *Catalog) Add(p Plugin) {
	c.mu.Lock()
	defer c.mu.Unlock()
	name := p.Name()
	if _, exists := c.plugins[name]; exists {
		panic(fmt.Sprintf("registry: plugin %q added to catalog twice", name))
	}
	c.plugins[name] = p
}

// Resolve returns the plugin registered under module.
func (c *Catalog) Resolve(_ context.Context, module string) (Plugin, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.plugins[module]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, module)
	}
	return p, nil
}

// Names returns the sorted names of all plugins in the catalog.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.plugins))
	for name := range c.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ensureResolved loads the modules of every placeholder on the base chain of
// c. The resolver is called without holding the registry lock, so queries
// against already real classes are never stalled by a plugin load.
func (r *Registry) ensureResolved(ctx context.Context, c *Class) error {
	tried := make(map[*Module]struct{})
	for {
		m := r.pendingModule(c)
		if m == nil {
			return nil
		}
		if _, seen := tried[m]; seen {
			return nil
		}
		tried[m] = struct{}{}
		if err := r.resolveModule(ctx, m); err != nil {
			return fmt.Errorf("class %s: %w", c.qualified, err)
		}
	}
}

// pendingModule returns the module of the first placeholder on the base chain
// of c, or nil if the chain has none.
func (r *Registry) pendingModule(c *Class) *Module {
	r.mu.RLock()
	defer r.mu.RUnlock()

	visited := make(map[*Class]struct{})
	for cur := c; cur != nil; {
		if _, seen := visited[cur]; seen {
			return nil
		}
		visited[cur] = struct{}{}
		switch cur.impl.state() {
		case StatePlaceholder:
			return cur.module
		case StateUnresolvable:
			return nil
		}
		base := cur.impl.baseName()
		if base == "" {
			return nil
		}
		cur = r.classes[base]
	}
	return nil
}

// ResolveModule loads the named module through the resolver unless it is
// already resident. Failures become terminal once the attempts are used up.
func (r *Registry) ResolveModule(ctx context.Context, name string) (*Module, error) {
	m := r.ModuleByName(name)
	if m == nil {
		r.mu.Lock()
		if m = r.moduleByName[name]; m == nil {
			m = newModule(r, name)
			r.modules[m.id] = m
			r.moduleByName[name] = m
		}
		r.mu.Unlock()
	}
	if err := r.resolveModule(ctx, m); err != nil {
		return m, err
	}
	return m, nil
}

func (r *Registry) resolveModule(ctx context.Context, m *Module) error {
	r.mu.RLock()
	resident, failure := m.resident, m.failure
	r.mu.RUnlock()
	if resident {
		return nil
	}
	if failure != nil {
		return failure
	}

	_, err, _ := r.inflight.Do(m.name, func() (any, error) {
		// A flight that finished between the check above and Do has
		// already settled the module.
		r.mu.RLock()
		resident, failure := m.resident, m.failure
		r.mu.RUnlock()
		if resident || failure != nil {
			return nil, failure
		}
		return nil, r.resolveAttempts(ctx, m)
	})
	return err
}

func (r *Registry) resolveAttempts(ctx context.Context, m *Module) error {
	if r.resolver == nil {
		return r.failModule(m, errors.New("no resolver configured"))
	}

	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.logger.Debug("Resolving module.", "module", m.name, "attempt", attempt)

		err := r.loadResolved(ctx, m)
		if err == nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		lastErr = err
		r.logger.Debug("Module resolution attempt failed.", "module", m.name, "attempt", attempt, "error", err)
		if errors.Is(err, ErrModuleNotFound) {
			break
		}
	}
	return r.failModule(m, lastErr)
}

func (r *Registry) loadResolved(ctx context.Context, m *Module) error {
	p, err := r.resolver.Resolve(ctx, m.name)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("%w: resolver returned no plugin for %s", ErrModuleNotFound, m.name)
	}
	if p.Name() != m.name {
		return fmt.Errorf("resolver returned plugin %q for module %q", p.Name(), m.name)
	}
	if _, err := r.LoadPlugin(ctx, p); err != nil && !errors.Is(err, ErrModuleLoaded) {
		if m.Resident() {
			// The module is loaded; individual class failures were
			// reported by LoadPlugin and are cached on those classes.
			return nil
		}
		return err
	}
	return nil
}

// failModule caches the terminal failure of m and turns its placeholders
// unresolvable. The failure is logged once.
func (r *Registry) failModule(m *Module, cause error) error {
	err := fmt.Errorf("%w: %s: %w", ErrModuleUnavailable, m.name, cause)

	r.mu.Lock()
	if m.resident {
		r.mu.Unlock()
		return nil
	}
	if m.failure != nil {
		err = m.failure
		r.mu.Unlock()
		return err
	}
	m.failure = err
	for _, c := range m.classes {
		if c.impl.state() == StatePlaceholder {
			c.impl = unresolvable(c.impl, err)
			r.invalidateLocked(c)
		}
	}
	r.mu.Unlock()

	r.logger.Error("Module could not be resolved.", "module", m.name, "error", cause)
	return err
}
