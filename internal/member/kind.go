package member

import "github.com/zclconf/go-cty/cty"

// Kind discriminates the member descriptor family.
type Kind int

const (
	KindAttribute Kind = iota
	KindMethod
	KindEvent
	KindSlot
	KindConstructor
)

func (k Kind) String() string {
	switch k {
	case KindAttribute:
		return "attribute"
	case KindMethod:
		return "method"
	case KindEvent:
		return "event"
	case KindSlot:
		return "slot"
	case KindConstructor:
		return "constructor"
	default:
		return "unknown"
	}
}

// Descriptor is the common view of every member descriptor.
type Descriptor interface {
	Name() string
	Kind() Kind
	Description() string
	Signature() Signature
}

// info holds the fields shared by all descriptors.
type info struct {
	name        string
	description string
}

func (i info) Name() string        { return i.name }
func (i info) Description() string { return i.description }

func paramsCopy(params []cty.Type) []cty.Type {
	if len(params) == 0 {
		return nil
	}
	return append([]cty.Type(nil), params...)
}
