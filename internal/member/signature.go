package member

import (
	"fmt"
	"strings"

	"github.com/vk/metaclass/internal/typeexpr"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Signature is the ordered list of type tags of a member: its parameter
// types and, for methods and attributes, the return type. cty.NilType as
// Return means the member returns nothing.
type Signature struct {
	Return cty.Type
	Params []cty.Type
}

// Sig is a shorthand for building a Signature.
func Sig(ret cty.Type, params ...cty.Type) Signature {
	return Signature{Return: ret, Params: paramsCopy(params)}
}

// Arity returns the number of parameters.
func (s Signature) Arity() int {
	return len(s.Params)
}

// String renders the signature as `return(param, ...)`, e.g.
// `number(string, bool)` or `void()`.
func (s Signature) String() string {
	params := make([]string, len(s.Params))
	for i, p := range s.Params {
		params[i] = typeexpr.String(p)
	}
	return typeexpr.String(s.Return) + "(" + strings.Join(params, ", ") + ")"
}

// Equal reports whether both signatures have identical type tags.
func (s Signature) Equal(other Signature) bool {
	if !typeEqual(s.Return, other.Return) || len(s.Params) != len(other.Params) {
		return false
	}
	for i := range s.Params {
		if !typeEqual(s.Params[i], other.Params[i]) {
			return false
		}
	}
	return true
}

// Accepts reports whether args match the parameter list exactly: same arity
// and every argument's type conforms to its parameter type. No conversion is
// attempted, so a number never matches a string parameter. A parameter of
// type `any` accepts every argument.
//
// cty has a single number type, so integer and fractional arguments are
// indistinguishable here: a constructor declared with a `number` parameter
// accepts 3 and 3.14 alike. Constructors that need an integer must check
// the value themselves, e.g. with big.Float.IsInt on AsBigFloat.
func (s Signature) Accepts(args []cty.Value) bool {
	if len(args) != len(s.Params) {
		return false
	}
	for i, arg := range args {
		if arg.Type() == cty.NilType {
			return false
		}
		if errs := arg.Type().TestConformance(s.Params[i]); len(errs) > 0 {
			return false
		}
	}
	return true
}

// Convert checks the arity of args and converts every argument to its
// parameter type. It is used for calls, where a safe conversion (e.g. the
// string "3" for a number parameter) is acceptable.
func (s Signature) Convert(args []cty.Value) ([]cty.Value, error) {
	if len(args) != len(s.Params) {
		return nil, fmt.Errorf("%w: expected %d arguments, got %d", ErrSignatureMismatch, len(s.Params), len(args))
	}
	out := make([]cty.Value, len(args))
	for i, arg := range args {
		if arg.Type() == cty.NilType {
			return nil, fmt.Errorf("%w: argument %d is not a value", ErrSignatureMismatch, i)
		}
		converted, err := convert.Convert(arg, s.Params[i])
		if err != nil {
			return nil, fmt.Errorf("%w: argument %d: %v", ErrSignatureMismatch, i, err)
		}
		out[i] = converted
	}
	return out, nil
}

func typeEqual(a, b cty.Type) bool {
	if a == cty.NilType || b == cty.NilType {
		return a == b
	}
	return a.Equals(b)
}
