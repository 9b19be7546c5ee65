package member

import (
	"fmt"
	"reflect"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ToValue converts a native Go value into its corresponding cty.Value. A
// cty.Value is returned unchanged.
func ToValue(v any) (cty.Value, error) {
	if v == nil {
		return cty.NilVal, fmt.Errorf("cannot convert nil to a value")
	}
	if val, ok := v.(cty.Value); ok {
		return val, nil
	}
	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unable to infer cty.Type: %w", err)
	}
	return gocty.ToCtyValue(v, ty)
}

// Args converts native Go values into an argument list for constructors,
// methods and signals.
func Args(vals ...any) ([]cty.Value, error) {
	out := make([]cty.Value, len(vals))
	for i, v := range vals {
		val, err := ToValue(v)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		out[i] = val
	}
	return out, nil
}

// MustArgs is like Args but panics on error.
func MustArgs(vals ...any) []cty.Value {
	args, err := Args(vals...)
	if err != nil {
		panic(err)
	}
	return args
}

// Decode converts val to the type implied by target's element type and
// stores it into target, which must be a non-nil pointer.
func Decode(val cty.Value, target any) error {
	ptr := reflect.ValueOf(target)
	if ptr.Kind() != reflect.Ptr || ptr.IsNil() {
		return fmt.Errorf("decode target must be a non-nil pointer")
	}
	ty, err := gocty.ImpliedType(reflect.Zero(ptr.Elem().Type()).Interface())
	if err != nil {
		return fmt.Errorf("cannot imply cty type for %s: %w", ptr.Elem().Type(), err)
	}
	converted, err := convert.Convert(val, ty)
	if err != nil {
		return fmt.Errorf("cannot convert value of type %s to %s: %w", val.Type().FriendlyName(), ty.FriendlyName(), err)
	}
	return gocty.FromCtyValue(converted, target)
}
