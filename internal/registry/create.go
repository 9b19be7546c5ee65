package registry

import (
	"context"
	"fmt"

	"github.com/vk/metaclass/internal/member"
	"github.com/zclconf/go-cty/cty"
)

// Create instantiates the class through the first own constructor whose
// signature accepts args. With no args it selects the default constructor.
// A class without a matching constructor yields a nil object and a nil
// error; trying argument lists until one matches is ordinary usage.
func (c *Class) Create(ctx context.Context, args ...cty.Value) (any, error) {
	agg, err := c.view(ctx)
	if err != nil {
		return nil, err
	}
	for _, ctor := range agg.constructors {
		if ctor.Matches(args) {
			return ctor.Invoke(args)
		}
	}
	return nil, nil
}

// CreateNamed instantiates the class through the named constructor. An
// unknown name or a signature mismatch yields a nil object and a nil error.
func (c *Class) CreateNamed(ctx context.Context, name string, args ...cty.Value) (any, error) {
	agg, err := c.view(ctx)
	if err != nil {
		return nil, err
	}
	ctor := agg.constructor(name)
	if ctor == nil || !ctor.Matches(args) {
		return nil, nil
	}
	return ctor.Invoke(args)
}

// ConnectEvent connects the event of src, an instance of c, to the slot of
// dst, an instance of dstClass. The returned function disconnects them.
func (c *Class) ConnectEvent(ctx context.Context, src any, event string, dstClass *Class, dst any, slot string) (func(), error) {
	ev, err := c.Event(ctx, event)
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, fmt.Errorf("event %q on %s: %w", event, c.qualified, ErrMemberNotFound)
	}
	if dstClass == nil {
		dstClass = c
	}
	sl, err := dstClass.Slot(ctx, slot)
	if err != nil {
		return nil, err
	}
	if sl == nil {
		return nil, fmt.Errorf("slot %q on %s: %w", slot, dstClass.qualified, ErrMemberNotFound)
	}
	return member.Connect(ev, src, sl, dst)
}
