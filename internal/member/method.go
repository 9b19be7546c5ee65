package member

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// MethodSpec is the registration-time description of a method.
type MethodSpec struct {
	Name        string
	Description string
	Signature   Signature
	Call        func(obj any, args []cty.Value) (cty.Value, error)
}

// Method describes a callable member.
type Method struct {
	info
	sig  Signature
	call func(obj any, args []cty.Value) (cty.Value, error)
}

// NewMethod builds an immutable method descriptor.
func NewMethod(spec MethodSpec) *Method {
	return &Method{
		info: info{name: spec.Name, description: spec.Description},
		sig:  Signature{Return: spec.Signature.Return, Params: paramsCopy(spec.Signature.Params)},
		call: spec.Call,
	}
}

func (m *Method) Kind() Kind           { return KindMethod }
func (m *Method) Signature() Signature { return m.sig }

// Call invokes the method on obj. Arguments are converted to the parameter
// types; the result is converted to the return type. Methods without a
// return type yield cty.NilVal.
func (m *Method) Call(obj any, args ...cty.Value) (cty.Value, error) {
	if m.call == nil {
		return cty.NilVal, fmt.Errorf("call method %q: %w", m.name, ErrNotBound)
	}
	converted, err := m.sig.Convert(args)
	if err != nil {
		return cty.NilVal, fmt.Errorf("call method %q: %w", m.name, err)
	}
	result, err := m.call(obj, converted)
	if err != nil {
		return cty.NilVal, fmt.Errorf("call method %q: %w", m.name, err)
	}
	if m.sig.Return == cty.NilType {
		return cty.NilVal, nil
	}
	if result.Type() == cty.NilType {
		return cty.NullVal(m.sig.Return), nil
	}
	out, err := convert.Convert(result, m.sig.Return)
	if err != nil {
		return cty.NilVal, fmt.Errorf("call method %q: result: %w: %v", m.name, ErrSignatureMismatch, err)
	}
	return out, nil
}
