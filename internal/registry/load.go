package registry

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/vk/metaclass/internal/classid"
	"github.com/vk/metaclass/internal/manifest"
	"github.com/vk/metaclass/internal/member"
)

// LoadPlugin makes the module of p resident and registers its classes.
// Placeholders previously declared for the module are upgraded in place, so
// existing Class handles start serving real data. Declared classes the
// plugin does not define become unresolvable.
//
// A malformed class spec does not prevent the remaining classes from being
// registered: the module is loaded and the per-class failures are returned
// joined together.
func (r *Registry) LoadPlugin(ctx context.Context, p Plugin) (*Module, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil plugin", ErrInvalidClass)
	}
	name := p.Name()
	if name == "" {
		return nil, fmt.Errorf("%w: plugin without module name", ErrInvalidClass)
	}
	if m := r.ModuleByName(name); m != nil && m.Resident() {
		return m, fmt.Errorf("%w: %s", ErrModuleLoaded, name)
	}

	// Register runs without the lock held; plugins may query the registry.
	registrar := &Registrar{module: name}
	p.Register(registrar)

	type prepared struct {
		name classid.Name
		impl *realImpl
	}
	var errs []error
	var specs []prepared
	for _, spec := range registrar.specs {
		n, impl, err := prepareClass(spec)
		if err != nil {
			r.logger.Warn("Skipping malformed class.", "module", name, "class", spec.Name, "error", err)
			errs = append(errs, err)
			continue
		}
		specs = append(specs, prepared{name: n, impl: impl})
	}

	r.mu.Lock()
	m := r.moduleByName[name]
	if m == nil {
		m = newModule(r, name)
		r.modules[m.id] = m
		r.moduleByName[name] = m
	} else if m.resident {
		r.mu.Unlock()
		return m, fmt.Errorf("%w: %s", ErrModuleLoaded, name)
	}
	m.resident = true
	m.failure = nil

	var loaded []*Class
	upgraded := 0
	seen := make(map[string]struct{}, len(specs))
	for _, s := range specs {
		q := s.name.String()
		if _, dup := seen[q]; dup {
			errs = append(errs, fmt.Errorf("class %s: %w in module %s", q, ErrDuplicateClass, name))
			continue
		}
		seen[q] = struct{}{}

		c := r.classes[q]
		switch {
		case c == nil:
			c = &Class{reg: r, name: s.name, qualified: q, module: m}
			r.classes[q] = c
			m.classes = append(m.classes, c)
			loaded = append(loaded, c)
		case c.module == m && c.impl.state() != StateReal:
			upgraded++
		default:
			errs = append(errs, fmt.Errorf("class %s: %w by module %s", q, ErrDuplicateClass, c.module.name))
			continue
		}
		c.impl = s.impl
		r.linkLocked(c)
		r.invalidateLocked(c)
	}

	for _, c := range m.classes {
		if c.impl.state() == StateReal {
			continue
		}
		err := fmt.Errorf("%w: %s", ErrClassNotInModule, name)
		c.impl = unresolvable(c.impl, err)
		r.invalidateLocked(c)
		r.logger.Warn("Declared class not provided by module.", "module", name, "class", c.qualified)
	}
	r.mu.Unlock()

	r.logger.Debug("Module loaded.", "module", name, "id", m.id, "new", len(loaded), "upgraded", upgraded)
	r.emit(EventClassLoaded, loaded)
	return m, errors.Join(errs...)
}

// DeclareModule registers placeholder classes for a module that is not
// resident yet. Classes that already exist are left untouched. Declaring a
// class for a module that is already resident, or whose resolution already
// failed, yields an unresolvable class.
func (r *Registry) DeclareModule(ctx context.Context, decl *manifest.Module) (*Module, error) {
	if decl == nil || decl.Name == "" {
		return nil, fmt.Errorf("%w: module declaration without name", ErrInvalidClass)
	}

	type prepared struct {
		name classid.Name
		impl *placeholderImpl
	}
	var errs []error
	var decls []prepared
	for _, cd := range decl.Classes {
		n, err := classid.Qualify(cd.Namespace, cd.Name)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: module %s: %w", ErrInvalidClass, decl.Name, err))
			continue
		}
		base, err := normalizeBase(cd.Base)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: class %s: %w", ErrInvalidClass, n, err))
			continue
		}
		decls = append(decls, prepared{name: n, impl: &placeholderImpl{desc: cd.Description, base: base}})
	}

	r.mu.Lock()
	m := r.moduleByName[decl.Name]
	if m == nil {
		m = newModule(r, decl.Name)
		r.modules[m.id] = m
		r.moduleByName[decl.Name] = m
	}
	if decl.Description != "" {
		m.description = decl.Description
	}
	if decl.Source != "" {
		m.source = decl.Source
	}

	var declared []*Class
	for _, d := range decls {
		q := d.name.String()
		if existing := r.classes[q]; existing != nil {
			if existing.module != m {
				errs = append(errs, fmt.Errorf("class %s: %w by module %s", q, ErrDuplicateClass, existing.module.name))
			}
			continue
		}
		var impl classImpl = d.impl
		switch {
		case m.resident:
			impl = unresolvable(impl, fmt.Errorf("%w: %s", ErrClassNotInModule, m.name))
		case m.failure != nil:
			impl = unresolvable(impl, m.failure)
		}
		c := &Class{reg: r, name: d.name, qualified: q, module: m, impl: impl}
		r.classes[q] = c
		m.classes = append(m.classes, c)
		r.linkLocked(c)
		r.invalidateLocked(c)
		declared = append(declared, c)
	}
	r.mu.Unlock()

	r.logger.Debug("Module declared.", "module", m.name, "id", m.id, "classes", len(declared))
	r.emit(EventClassLoaded, declared)
	return m, errors.Join(errs...)
}

// DeclareModules declares every module of a manifest model.
func (r *Registry) DeclareModules(ctx context.Context, model *manifest.Model) error {
	if model == nil {
		return nil
	}
	var errs []error
	for _, decl := range model.Modules {
		if _, err := r.DeclareModule(ctx, decl); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// UnloadModule retracts every class of the module as a unit and forgets the
// module. Retracted Class handles stay valid but report ErrClassRetracted;
// classes deriving from them are invalidated and fail to aggregate until a
// new base is registered.
func (r *Registry) UnloadModule(ctx context.Context, id uint64) error {
	r.mu.Lock()
	m := r.modules[id]
	if m == nil {
		r.mu.Unlock()
		return fmt.Errorf("%w: id %d", ErrModuleNotFound, id)
	}

	retracted := m.classes
	cause := fmt.Errorf("%w: module %s unloaded", ErrClassRetracted, m.name)
	for _, c := range retracted {
		r.invalidateLocked(c)
		r.graph.Remove(c.qualified)
		delete(r.classes, c.qualified)
		c.impl = unresolvable(c.impl, cause)
		c.module = nil
	}
	m.classes = nil
	m.resident = false
	delete(r.modules, id)
	delete(r.moduleByName, m.name)
	r.mu.Unlock()

	r.logger.Debug("Module unloaded.", "module", m.name, "id", id, "classes", len(retracted))
	r.emit(EventClassUnloaded, retracted)
	return nil
}

// prepareClass validates a spec and builds its real implementation.
func prepareClass(spec ClassSpec) (classid.Name, *realImpl, error) {
	n, err := classid.Qualify(spec.Namespace, spec.Name)
	if err != nil {
		return classid.Name{}, nil, fmt.Errorf("%w: %w", ErrInvalidClass, err)
	}
	base, err := normalizeBase(spec.Base)
	if err != nil {
		return classid.Name{}, nil, fmt.Errorf("%w: class %s: %w", ErrInvalidClass, n, err)
	}
	if err := validateMembers(spec.Members); err != nil {
		return classid.Name{}, nil, fmt.Errorf("%w: class %s: %w", ErrInvalidClass, n, err)
	}
	return n, &realImpl{
		desc:    spec.Description,
		base:    base,
		members: append([]member.Descriptor(nil), spec.Members...),
		props:   maps.Clone(spec.Properties),
	}, nil
}

func normalizeBase(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	n, err := classid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("base class: %w", err)
	}
	return n.String(), nil
}

// validateMembers checks that member names are unique within their group.
// Constructors form one group, every other kind shares the second.
func validateMembers(members []member.Descriptor) error {
	ctors := make(map[string]struct{})
	others := make(map[string]struct{})
	for i, d := range members {
		if d == nil {
			return fmt.Errorf("member %d is nil", i)
		}
		if d.Name() == "" {
			return fmt.Errorf("member %d has no name", i)
		}
		group := others
		if d.Kind() == member.KindConstructor {
			if _, ok := d.(*member.Constructor); !ok {
				return fmt.Errorf("constructor %q has unsupported type %T", d.Name(), d)
			}
			group = ctors
		}
		if _, dup := group[d.Name()]; dup {
			return fmt.Errorf("duplicate %s %q", d.Kind(), d.Name())
		}
		group[d.Name()] = struct{}{}
	}
	return nil
}
