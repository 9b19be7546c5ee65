package typeexpr

import (
	"sort"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// String renders a cty.Type in the notation accepted by Parse. Types Parse
// cannot express (tuples, capsules) fall back to their friendly name.
func String(ty cty.Type) string {
	switch {
	case ty == cty.NilType:
		return "void"
	case ty == cty.DynamicPseudoType:
		return "any"
	case ty == cty.String:
		return "string"
	case ty == cty.Number:
		return "number"
	case ty == cty.Bool:
		return "bool"
	case ty.IsListType():
		return "list(" + String(ty.ElementType()) + ")"
	case ty.IsMapType():
		return "map(" + String(ty.ElementType()) + ")"
	case ty.IsSetType():
		return "set(" + String(ty.ElementType()) + ")"
	case ty.IsObjectType():
		attrs := ty.AttributeTypes()
		names := make([]string, 0, len(attrs))
		for name := range attrs {
			names = append(names, name)
		}
		sort.Strings(names)

		var sb strings.Builder
		sb.WriteString("object({")
		for i, name := range names {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(" ")
			sb.WriteString(name)
			sb.WriteString(" = ")
			sb.WriteString(String(attrs[name]))
		}
		if len(names) > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString("})")
		return sb.String()
	default:
		return ty.FriendlyName()
	}
}
