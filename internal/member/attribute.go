package member

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// AccessMode describes how an attribute may be accessed.
type AccessMode int

const (
	AccessReadWrite AccessMode = iota
	AccessReadOnly
)

func (m AccessMode) String() string {
	if m == AccessReadOnly {
		return "read-only"
	}
	return "read-write"
}

// AttributeSpec is the registration-time description of an attribute.
type AttributeSpec struct {
	Name        string
	Description string
	Type        cty.Type
	// Default is returned by Get when no getter is bound. A zero Default
	// means a null value of Type.
	Default  cty.Value
	ReadOnly bool
	Get      func(obj any) (cty.Value, error)
	Set      func(obj any, v cty.Value) error
}

// Attribute describes a typed, named value exposed by instances of a class.
type Attribute struct {
	info
	ty     cty.Type
	def    cty.Value
	access AccessMode
	get    func(obj any) (cty.Value, error)
	set    func(obj any, v cty.Value) error
}

// NewAttribute builds an immutable attribute descriptor.
func NewAttribute(spec AttributeSpec) *Attribute {
	ty := spec.Type
	if ty == cty.NilType {
		ty = cty.DynamicPseudoType
	}
	def := spec.Default
	if def.Type() == cty.NilType {
		def = cty.NullVal(ty)
	}
	access := AccessReadWrite
	if spec.ReadOnly || spec.Set == nil {
		access = AccessReadOnly
	}
	return &Attribute{
		info:   info{name: spec.Name, description: spec.Description},
		ty:     ty,
		def:    def,
		access: access,
		get:    spec.Get,
		set:    spec.Set,
	}
}

func (a *Attribute) Kind() Kind { return KindAttribute }

// Signature of an attribute is its value type as return type.
func (a *Attribute) Signature() Signature { return Signature{Return: a.ty} }

// Type returns the attribute's value type.
func (a *Attribute) Type() cty.Type { return a.ty }

// Default returns the attribute's default value.
func (a *Attribute) Default() cty.Value { return a.def }

// Access returns the attribute's access mode.
func (a *Attribute) Access() AccessMode { return a.access }

// HasAccessors reports whether the attribute is backed by a getter.
func (a *Attribute) HasAccessors() bool { return a.get != nil }

// Get reads the attribute from obj. Without a getter the default value is
// returned.
func (a *Attribute) Get(obj any) (cty.Value, error) {
	if a.get == nil {
		return a.def, nil
	}
	v, err := a.get(obj)
	if err != nil {
		return cty.NilVal, fmt.Errorf("get attribute %q: %w", a.name, err)
	}
	return v, nil
}

// Set converts v to the attribute type and writes it to obj.
func (a *Attribute) Set(obj any, v cty.Value) error {
	if a.access == AccessReadOnly {
		return fmt.Errorf("set attribute %q: %w", a.name, ErrReadOnly)
	}
	converted, err := convert.Convert(v, a.ty)
	if err != nil {
		return fmt.Errorf("set attribute %q: %w: %v", a.name, ErrSignatureMismatch, err)
	}
	if err := a.set(obj, converted); err != nil {
		return fmt.Errorf("set attribute %q: %w", a.name, err)
	}
	return nil
}
