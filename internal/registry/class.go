package registry

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/vk/metaclass/internal/classid"
	"github.com/vk/metaclass/internal/member"
)

// Class is the stable handle for a registered type. It forwards every query
// to its current implementation, which may be swapped from placeholder to
// real when the owning module loads; handles stay valid across the swap.
type Class struct {
	reg       *Registry
	name      classid.Name
	qualified string

	// guarded by reg.mu
	module *Module
	impl   classImpl
	agg    *aggregate
}

// pendingError reports a class on the chain that is still a placeholder
// after resolution was attempted.
type pendingError struct {
	class string
}

func (e *pendingError) Error() string {
	return fmt.Sprintf("class %s is still a placeholder", e.class)
}

func (e *pendingError) Unwrap() error { return ErrModuleUnavailable }

// maxViewRounds bounds the resolve/aggregate loop when the class graph keeps
// changing underneath a query.
const maxViewRounds = 4

func (c *Class) String() string { return c.qualified }

// Name returns the unqualified class name.
func (c *Class) Name() string { return c.name.Class }

// Namespace returns the namespace, empty for the global namespace.
func (c *Class) Namespace() string { return c.name.Namespace }

// QualifiedName returns `Namespace::Name`.
func (c *Class) QualifiedName() string { return c.qualified }

// Description returns the own description of the class.
func (c *Class) Description() string {
	c.reg.mu.RLock()
	defer c.reg.mu.RUnlock()
	return c.impl.description()
}

// BaseClassName returns the declared base class name, empty for a root.
func (c *Class) BaseClassName() string {
	c.reg.mu.RLock()
	defer c.reg.mu.RUnlock()
	return c.impl.baseName()
}

// Module returns the owning module, or nil once the class is retracted.
func (c *Class) Module() *Module {
	c.reg.mu.RLock()
	defer c.reg.mu.RUnlock()
	return c.module
}

// State returns the state of the current implementation.
func (c *Class) State() State {
	c.reg.mu.RLock()
	defer c.reg.mu.RUnlock()
	return c.impl.state()
}

// Err returns the cached failure of an unresolvable class.
func (c *Class) Err() error {
	c.reg.mu.RLock()
	defer c.reg.mu.RUnlock()
	return c.impl.cause()
}

// BaseClass resolves the declared base by name. It returns nil for a root
// class and for a base that is not registered.
func (c *Class) BaseClass() *Class {
	c.reg.mu.RLock()
	defer c.reg.mu.RUnlock()
	base := c.impl.baseName()
	if base == "" {
		return nil
	}
	return c.reg.classes[base]
}

// IsDerivedFrom reports whether other is c or one of its ancestors. The
// comparison is by handle, so a class retracted by an unload is not an
// ancestor of anything registered under its name afterwards.
func (c *Class) IsDerivedFrom(other *Class) bool {
	if other == nil {
		return false
	}
	c.reg.mu.RLock()
	defer c.reg.mu.RUnlock()

	visited := make(map[*Class]struct{})
	for cur := c; cur != nil; {
		if cur == other {
			return true
		}
		if c.reg.classes[cur.qualified] != cur {
			// Retracted handles keep their declared base but are no
			// longer linked to the live hierarchy.
			return false
		}
		if _, seen := visited[cur]; seen {
			return false
		}
		visited[cur] = struct{}{}
		base := cur.impl.baseName()
		if base == "" {
			return false
		}
		cur = c.reg.classes[base]
	}
	return false
}

// IsDerivedFromName walks the declared base chain by name. It works on
// placeholders and does not trigger module resolution.
func (c *Class) IsDerivedFromName(name string) bool {
	c.reg.mu.RLock()
	defer c.reg.mu.RUnlock()

	visited := make(map[*Class]struct{})
	for cur := c; cur != nil; {
		if cur.qualified == name {
			return true
		}
		if _, seen := visited[cur]; seen {
			return false
		}
		visited[cur] = struct{}{}
		base := cur.impl.baseName()
		if base == "" {
			return false
		}
		if base == name {
			return true
		}
		cur = c.reg.classes[base]
	}
	return false
}

// DerivedClasses returns every registered class that transitively derives
// from c, breadth first.
func (c *Class) DerivedClasses() []*Class {
	c.reg.mu.RLock()
	defer c.reg.mu.RUnlock()
	var out []*Class
	for _, name := range c.reg.graph.Descendants(c.qualified) {
		if d := c.reg.classes[name]; d != nil {
			out = append(out, d)
		}
	}
	return out
}

// Init aggregates the class and its ancestors. A placeholder on the chain
// triggers loading of its module first. Init is idempotent.
func (c *Class) Init(ctx context.Context) error {
	_, err := c.view(ctx)
	return err
}

// DeInit drops the aggregated view of c and of every class deriving from it.
// Own members are kept; the next query aggregates again.
func (c *Class) DeInit() {
	c.reg.mu.Lock()
	defer c.reg.mu.Unlock()
	c.reg.invalidateLocked(c)
}

// Initialized reports whether the aggregated view is present.
func (c *Class) Initialized() bool {
	c.reg.mu.RLock()
	defer c.reg.mu.RUnlock()
	return c.agg != nil
}

func (c *Class) view(ctx context.Context) (*aggregate, error) {
	c.reg.mu.RLock()
	agg := c.agg
	c.reg.mu.RUnlock()
	if agg != nil {
		return agg, nil
	}

	var err error
	for i := 0; i < maxViewRounds; i++ {
		if err = c.reg.ensureResolved(ctx, c); err != nil {
			return nil, err
		}
		c.reg.mu.Lock()
		err = c.reg.initLocked(c, make(map[*Class]struct{}))
		agg = c.agg
		c.reg.mu.Unlock()

		var pending *pendingError
		if !errors.As(err, &pending) {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	return agg, nil
}

// initLocked aggregates c after its base. The caller holds the write lock,
// so the whole chain is built in one critical section.
func (r *Registry) initLocked(c *Class, visiting map[*Class]struct{}) error {
	if c.agg != nil {
		return nil
	}
	switch c.impl.state() {
	case StatePlaceholder:
		return &pendingError{class: c.qualified}
	case StateUnresolvable:
		return fmt.Errorf("class %s: %w", c.qualified, c.impl.cause())
	}
	if _, seen := visiting[c]; seen {
		return fmt.Errorf("class %s: %w", c.qualified, ErrCyclicInheritance)
	}
	visiting[c] = struct{}{}

	var base *aggregate
	if baseName := c.impl.baseName(); baseName != "" {
		b := r.classes[baseName]
		if b == nil {
			return fmt.Errorf("class %s: %w %q", c.qualified, ErrUnknownBaseClass, baseName)
		}
		if err := r.initLocked(b, visiting); err != nil {
			return fmt.Errorf("class %s: %w", c.qualified, err)
		}
		base = b.agg
	}

	c.agg = buildAggregate(base, c.impl.ownMembers(), c.impl.ownProperties())
	r.logger.Debug("Class initialized.", "class", c.qualified, "members", len(c.agg.order), "constructors", len(c.agg.constructors))
	return nil
}

// Member returns the aggregated non-constructor member with the given name,
// or nil.
func (c *Class) Member(ctx context.Context, name string) (member.Descriptor, error) {
	agg, err := c.view(ctx)
	if err != nil {
		return nil, err
	}
	return agg.byName[name], nil
}

// Attribute returns the attribute with the given name, or nil if no class on
// the chain declares one or the name is shadowed by another kind.
func (c *Class) Attribute(ctx context.Context, name string) (*member.Attribute, error) {
	d, err := c.Member(ctx, name)
	if err != nil {
		return nil, err
	}
	a, _ := d.(*member.Attribute)
	return a, nil
}

// Method returns the method with the given name, or nil.
func (c *Class) Method(ctx context.Context, name string) (*member.Method, error) {
	d, err := c.Member(ctx, name)
	if err != nil {
		return nil, err
	}
	m, _ := d.(*member.Method)
	return m, nil
}

// Event returns the event with the given name, or nil.
func (c *Class) Event(ctx context.Context, name string) (*member.Event, error) {
	d, err := c.Member(ctx, name)
	if err != nil {
		return nil, err
	}
	e, _ := d.(*member.Event)
	return e, nil
}

// Slot returns the slot with the given name, or nil.
func (c *Class) Slot(ctx context.Context, name string) (*member.Slot, error) {
	d, err := c.Member(ctx, name)
	if err != nil {
		return nil, err
	}
	s, _ := d.(*member.Slot)
	return s, nil
}

// Constructor returns the own constructor with the given name, or nil.
func (c *Class) Constructor(ctx context.Context, name string) (*member.Constructor, error) {
	agg, err := c.view(ctx)
	if err != nil {
		return nil, err
	}
	return agg.constructor(name), nil
}

// Members returns every aggregated non-constructor member: own members in
// registration order followed by inherited ones, nearest ancestor first.
func (c *Class) Members(ctx context.Context) ([]member.Descriptor, error) {
	agg, err := c.view(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Clone(agg.order), nil
}

// Attributes returns the aggregated attributes in member order.
func (c *Class) Attributes(ctx context.Context) ([]*member.Attribute, error) {
	agg, err := c.view(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Clone(agg.attributes), nil
}

// Methods returns the aggregated methods in member order.
func (c *Class) Methods(ctx context.Context) ([]*member.Method, error) {
	agg, err := c.view(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Clone(agg.methods), nil
}

// Events returns the aggregated events in member order.
func (c *Class) Events(ctx context.Context) ([]*member.Event, error) {
	agg, err := c.view(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Clone(agg.events), nil
}

// Slots returns the aggregated slots in member order.
func (c *Class) Slots(ctx context.Context) ([]*member.Slot, error) {
	agg, err := c.view(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Clone(agg.slots), nil
}

// Constructors returns the class's own constructors in registration order.
func (c *Class) Constructors(ctx context.Context) ([]*member.Constructor, error) {
	agg, err := c.view(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Clone(agg.constructors), nil
}

// Properties returns the aggregated properties. Nearer classes win.
func (c *Class) Properties(ctx context.Context) (map[string]string, error) {
	agg, err := c.view(ctx)
	if err != nil {
		return nil, err
	}
	return maps.Clone(agg.properties), nil
}

// Property returns one aggregated property, empty if it is not declared.
func (c *Class) Property(ctx context.Context, key string) (string, error) {
	agg, err := c.view(ctx)
	if err != nil {
		return "", err
	}
	return agg.properties[key], nil
}

// OwnMembers returns the members declared by the class itself, constructors
// included. Placeholders have none.
func (c *Class) OwnMembers() []member.Descriptor {
	c.reg.mu.RLock()
	defer c.reg.mu.RUnlock()
	return slices.Clone(c.impl.ownMembers())
}

// OwnProperties returns the properties declared by the class itself.
func (c *Class) OwnProperties() map[string]string {
	c.reg.mu.RLock()
	defer c.reg.mu.RUnlock()
	return maps.Clone(c.impl.ownProperties())
}
