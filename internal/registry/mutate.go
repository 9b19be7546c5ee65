package registry

import (
	"context"
	"fmt"
	"slices"

	"github.com/vk/metaclass/internal/member"
)

// AddMember adds an own member and invalidates the class and its
// descendants.
func (c *Class) AddMember(ctx context.Context, d member.Descriptor) error {
	return c.mutate(ctx, func(impl *realImpl) error {
		members := append(slices.Clone(impl.members), d)
		if err := validateMembers(members); err != nil {
			return fmt.Errorf("%w: class %s: %w", ErrInvalidClass, c.qualified, err)
		}
		impl.members = members
		return nil
	})
}

// RemoveMember removes every own member called name, constructors included.
func (c *Class) RemoveMember(ctx context.Context, name string) error {
	return c.mutate(ctx, func(impl *realImpl) error {
		n := len(impl.members)
		impl.members = slices.DeleteFunc(impl.members, func(d member.Descriptor) bool {
			return d.Name() == name
		})
		if len(impl.members) == n {
			return fmt.Errorf("member %q on %s: %w", name, c.qualified, ErrMemberNotFound)
		}
		return nil
	})
}

// SetProperty sets an own property. An empty value removes it.
func (c *Class) SetProperty(ctx context.Context, key, value string) error {
	return c.mutate(ctx, func(impl *realImpl) error {
		if value == "" {
			delete(impl.props, key)
			return nil
		}
		if impl.props == nil {
			impl.props = make(map[string]string)
		}
		impl.props[key] = value
		return nil
	})
}

// SetBaseClassName changes the declared base. An empty name makes the class
// a root. The new base is resolved lazily on the next query.
func (c *Class) SetBaseClassName(ctx context.Context, base string) error {
	normalized, err := normalizeBase(base)
	if err != nil {
		return fmt.Errorf("%w: class %s: %w", ErrInvalidClass, c.qualified, err)
	}
	return c.mutate(ctx, func(impl *realImpl) error {
		impl.base = normalized
		return nil
	})
}

// SetDescription replaces the own description.
func (c *Class) SetDescription(ctx context.Context, desc string) error {
	return c.mutate(ctx, func(impl *realImpl) error {
		impl.desc = desc
		return nil
	})
}

// mutate applies fn to a copy of the real implementation of c and installs
// the copy, invalidating c and its descendants in the same critical section.
// A placeholder is resolved first; other states cannot be modified.
func (c *Class) mutate(ctx context.Context, fn func(*realImpl) error) error {
	c.reg.mu.RLock()
	state := c.impl.state()
	c.reg.mu.RUnlock()
	if state == StatePlaceholder {
		if m := c.Module(); m != nil {
			if err := c.reg.resolveModule(ctx, m); err != nil {
				return fmt.Errorf("class %s: %w", c.qualified, err)
			}
		}
	}

	c.reg.mu.Lock()
	defer c.reg.mu.Unlock()
	current, ok := c.impl.(*realImpl)
	if !ok {
		if cause := c.impl.cause(); cause != nil {
			return fmt.Errorf("class %s: %w", c.qualified, cause)
		}
		return fmt.Errorf("class %s: %w", c.qualified, ErrModuleUnavailable)
	}
	next := current.clone()
	if err := fn(next); err != nil {
		return err
	}
	c.impl = next
	c.reg.linkLocked(c)
	c.reg.invalidateLocked(c)
	c.reg.logger.Debug("Class modified.", "class", c.qualified)
	return nil
}
