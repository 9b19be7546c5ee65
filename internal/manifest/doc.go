// Package manifest reads declarations of plugin modules that are not loaded
// yet. A manifest names each module and the classes it will provide, with
// their namespaces and base classes, so the registry can hand out placeholder
// classes before the module itself is resolved.
//
// Manifests may be written in HCL, YAML or TOML; all three produce the same
// format-agnostic Model. The format is chosen by file extension.
package manifest
