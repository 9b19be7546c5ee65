package member

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// ConstructorSpec is the registration-time description of a constructor.
type ConstructorSpec struct {
	Name        string
	Description string
	Params      []cty.Type
	New         func(args []cty.Value) (any, error)
}

// Constructor describes one way of instantiating a class.
type Constructor struct {
	info
	params []cty.Type
	fn     func(args []cty.Value) (any, error)
}

// NewConstructor builds an immutable constructor descriptor.
func NewConstructor(spec ConstructorSpec) *Constructor {
	return &Constructor{
		info:   info{name: spec.Name, description: spec.Description},
		params: paramsCopy(spec.Params),
		fn:     spec.New,
	}
}

func (c *Constructor) Kind() Kind { return KindConstructor }

func (c *Constructor) Signature() Signature {
	return Signature{Params: c.params}
}

// Matches reports whether args select this constructor.
func (c *Constructor) Matches(args []cty.Value) bool {
	return c.Signature().Accepts(args)
}

// Invoke runs the constructor. Callers are expected to check Matches first.
func (c *Constructor) Invoke(args []cty.Value) (any, error) {
	if c.fn == nil {
		return nil, fmt.Errorf("constructor %q: %w", c.name, ErrNotBound)
	}
	if !c.Matches(args) {
		return nil, fmt.Errorf("constructor %q: %w", c.name, ErrSignatureMismatch)
	}
	obj, err := c.fn(args)
	if err != nil {
		return nil, fmt.Errorf("constructor %q: %w", c.name, err)
	}
	if obj == nil {
		return nil, fmt.Errorf("constructor %q returned no object", c.name)
	}
	return obj, nil
}
