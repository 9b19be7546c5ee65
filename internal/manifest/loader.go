package manifest

import (
	"context"
	"errors"
)

// MultiLoader runs several loaders over the same paths and merges their
// models. Each loader only picks up the extensions it understands.
type MultiLoader struct {
	loaders []Loader
}

// NewLoader returns a loader for HCL, YAML and TOML manifests.
func NewLoader() *MultiLoader {
	return NewMultiLoader(NewHCLLoader(), NewYAMLLoader(), NewTOMLLoader())
}

// NewMultiLoader combines the given loaders.
func NewMultiLoader(loaders ...Loader) *MultiLoader {
	return &MultiLoader{loaders: loaders}
}

// Load runs every loader and merges the results. Errors from all loaders
// are reported together.
func (l *MultiLoader) Load(ctx context.Context, paths ...string) (*Model, error) {
	model := &Model{}
	var errs []error
	for _, loader := range l.loaders {
		m, err := loader.Load(ctx, paths...)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, mod := range m.Modules {
			model.add(mod)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return model, nil
}
