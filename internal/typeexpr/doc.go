// Package typeexpr parses HCL type expressions such as `string`,
// `list(number)` or `object({ name = string })` into cty.Type values, and
// renders cty.Type values back into the same notation.
//
// Member descriptors use cty types as their type tags; this package lets
// plugin code and manifests spell those tags as short strings.
package typeexpr
