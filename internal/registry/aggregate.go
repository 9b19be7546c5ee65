package registry

import (
	"maps"

	"github.com/vk/metaclass/internal/member"
)

// aggregate is the merged view of a class and all of its ancestors. It is
// built once and never modified; invalidation drops it.
type aggregate struct {
	byName map[string]member.Descriptor
	// order lists every non-constructor member: own members in registration
	// order, then inherited members nearest ancestor first.
	order []member.Descriptor

	attributes   []*member.Attribute
	methods      []*member.Method
	events       []*member.Event
	slots        []*member.Slot
	constructors []*member.Constructor
	properties   map[string]string
}

// buildAggregate merges own data over a copy of the base aggregate. Own
// members shadow inherited members of the same name regardless of kind.
// Constructors are never inherited.
func buildAggregate(base *aggregate, own []member.Descriptor, props map[string]string) *aggregate {
	a := &aggregate{
		byName:     make(map[string]member.Descriptor),
		properties: make(map[string]string),
	}
	for _, d := range own {
		if ctor, ok := d.(*member.Constructor); ok {
			a.constructors = append(a.constructors, ctor)
			continue
		}
		a.add(d)
	}
	if base != nil {
		for _, d := range base.order {
			if _, shadowed := a.byName[d.Name()]; !shadowed {
				a.add(d)
			}
		}
		maps.Copy(a.properties, base.properties)
	}
	maps.Copy(a.properties, props)
	return a
}

func (a *aggregate) add(d member.Descriptor) {
	a.byName[d.Name()] = d
	a.order = append(a.order, d)
	switch m := d.(type) {
	case *member.Attribute:
		a.attributes = append(a.attributes, m)
	case *member.Method:
		a.methods = append(a.methods, m)
	case *member.Event:
		a.events = append(a.events, m)
	case *member.Slot:
		a.slots = append(a.slots, m)
	}
}

func (a *aggregate) constructor(name string) *member.Constructor {
	for _, c := range a.constructors {
		if c.Name() == name {
			return c
		}
	}
	return nil
}
