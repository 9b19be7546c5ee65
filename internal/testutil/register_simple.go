package testutil

import "github.com/vk/metaclass/internal/registry"

// SimplePlugin is a test helper for easily creating a plugin module that
// registers a fixed set of class specs.
type SimplePlugin struct {
	ModuleName string
	Classes    []registry.ClassSpec
}

// Name implements the registry.Plugin interface.
func (p *SimplePlugin) Name() string { return p.ModuleName }

// Register implements the registry.Plugin interface.
func (p *SimplePlugin) Register(r *registry.Registrar) {
	for _, spec := range p.Classes {
		r.RegisterClass(spec)
	}
}
