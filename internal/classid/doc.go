/*
Package classid provides a structured representation for class identifiers
within the registry, based on the canonical format `Namespace::ClassName`.

The namespace is itself a `::` separated sequence of segments and may be
empty, e.g. `Image::Loaders::PNG`, `Core::Object` or plain `Object`.

This package enforces the identifier schema and centralizes all formatting
and parsing logic so that registry keys are always canonical.
*/
package classid
