// Package member defines the immutable metadata records that describe the
// members of a registered class: attributes, methods, events, event handlers
// (slots) and constructors.
//
// Every descriptor carries a name and a Signature made of cty type tags.
// Kind specific payload (an attribute's default and accessors, a method's
// invoker, a constructor's factory) is supplied once at construction time
// through a Spec struct and never changes afterwards, so descriptors can be
// shared freely between the aggregated views of a class and its subclasses.
package member
