package manifest

import "context"

// Model is the format-agnostic result of loading one or more manifest files.
type Model struct {
	Modules []*Module
}

// Module declares a plugin module and the classes it will provide once it
// is loaded.
type Module struct {
	Name        string
	Description string
	// Source is the file the module was declared in.
	Source  string
	Classes []*Class
}

// Class declares a class of a module that is not loaded yet. Only the
// strings needed to reference the class are known up front.
type Class struct {
	// Name is either bare, to be placed into Namespace, or fully qualified.
	Name        string
	Namespace   string
	Base        string
	Description string
}

// Loader reads manifest files into a Model.
type Loader interface {
	Load(ctx context.Context, paths ...string) (*Model, error)
}

// Module returns the module declaration with the given name, or nil.
func (m *Model) Module(name string) *Module {
	for _, mod := range m.Modules {
		if mod.Name == name {
			return mod
		}
	}
	return nil
}

// add merges mod into the model. Declarations of the same module from
// several files are combined; the first non-empty description wins.
func (m *Model) add(mod *Module) {
	existing := m.Module(mod.Name)
	if existing == nil {
		m.Modules = append(m.Modules, mod)
		return
	}
	if existing.Description == "" {
		existing.Description = mod.Description
	}
	existing.Classes = append(existing.Classes, mod.Classes...)
}
