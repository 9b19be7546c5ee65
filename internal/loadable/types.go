package loadable

import (
	"slices"
	"strings"

	"github.com/vk/metaclass/internal/registry"
)

// Loader is one instantiated loader class.
type Loader struct {
	class       *registry.Class
	impl        LoaderImpl
	typeName    string
	formats     []string
	canLoad     bool
	canSave     bool
	description string
}

// Class returns the registry class the loader was created from.
func (l *Loader) Class() *registry.Class { return l.class }

// Impl returns the loader instance.
func (l *Loader) Impl() LoaderImpl { return l.impl }

// TypeName returns the type the loader handles.
func (l *Loader) TypeName() string { return l.typeName }

// Formats returns the declared file extensions.
func (l *Loader) Formats() []string { return slices.Clone(l.formats) }

// CanLoad reports whether the loader reads files.
func (l *Loader) CanLoad() bool { return l.canLoad }

// CanSave reports whether the loader writes files.
func (l *Loader) CanSave() bool { return l.canSave }

// Description returns the loader description, falling back to the class
// description.
func (l *Loader) Description() string {
	if l.description != "" {
		return l.description
	}
	return l.class.Description()
}

// SupportsFormat reports whether ext is one of the declared formats. An
// exact match is preferred; otherwise the comparison ignores case.
func (l *Loader) SupportsFormat(ext string) bool {
	ext = strings.TrimPrefix(ext, ".")
	if slices.Contains(l.formats, ext) {
		return true
	}
	return slices.ContainsFunc(l.formats, func(f string) bool { return strings.EqualFold(f, ext) })
}

// Type groups the loaders handling the same type. It is a snapshot taken by
// the Manager at query time.
type Type struct {
	name    string
	loaders []*Loader
}

// Name returns the type name.
func (t *Type) Name() string { return t.name }

// Loaders returns the loaders of the type in registration order.
func (t *Type) Loaders() []*Loader { return slices.Clone(t.loaders) }

// Formats returns the sorted, de-duplicated formats of all loaders.
func (t *Type) Formats() []string { return collectFormats(t.loaders) }

// LoaderFor returns the first loader of the type supporting ext, or nil.
func (t *Type) LoaderFor(ext string) *Loader {
	return findLoader(t.loaders, ext, nil)
}

func collectFormats(loaders []*Loader) []string {
	var out []string
	for _, l := range loaders {
		for _, f := range l.formats {
			if !slices.Contains(out, f) {
				out = append(out, f)
			}
		}
	}
	slices.Sort(out)
	return out
}

// findLoader prefers exact extension matches over case-insensitive ones.
func findLoader(loaders []*Loader, ext string, keep func(*Loader) bool) *Loader {
	ext = strings.TrimPrefix(ext, ".")
	var folded *Loader
	for _, l := range loaders {
		if keep != nil && !keep(l) {
			continue
		}
		if slices.Contains(l.formats, ext) {
			return l
		}
		if folded == nil && l.SupportsFormat(ext) {
			folded = l
		}
	}
	return folded
}

// parseFormats splits a comma separated format list.
func parseFormats(raw string) []string {
	var out []string
	for _, f := range strings.Split(raw, ",") {
		f = strings.TrimPrefix(strings.TrimSpace(f), ".")
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}
