package registry

import (
	"slices"
	"sync/atomic"

	"github.com/vk/metaclass/internal/member"
)

// moduleIDs issues process-wide unique module ids.
var moduleIDs atomic.Uint64

// Module is the load unit a class belongs to.
type Module struct {
	reg         *Registry
	id          uint64
	name        string
	description string
	source      string

	// guarded by reg.mu
	resident bool
	failure  error
	classes  []*Class
}

func newModule(reg *Registry, name string) *Module {
	return &Module{reg: reg, id: moduleIDs.Add(1), name: name}
}

// ID returns the module's process-unique id.
func (m *Module) ID() uint64 { return m.id }

// Name returns the module name plugins and manifests refer to.
func (m *Module) Name() string { return m.name }

// Description returns the module description from its manifest, if any.
func (m *Module) Description() string {
	m.reg.mu.RLock()
	defer m.reg.mu.RUnlock()
	return m.description
}

// Source returns the manifest file that declared the module, if any.
func (m *Module) Source() string {
	m.reg.mu.RLock()
	defer m.reg.mu.RUnlock()
	return m.source
}

// Resident reports whether the module's plugin has been loaded.
func (m *Module) Resident() bool {
	m.reg.mu.RLock()
	defer m.reg.mu.RUnlock()
	return m.resident
}

// Err returns the cached resolution failure of the module, if any.
func (m *Module) Err() error {
	m.reg.mu.RLock()
	defer m.reg.mu.RUnlock()
	return m.failure
}

// Classes returns the classes owned by the module in registration order.
func (m *Module) Classes() []*Class {
	m.reg.mu.RLock()
	defer m.reg.mu.RUnlock()
	return slices.Clone(m.classes)
}

// Plugin is implemented by every compiled-in unit that contributes classes.
type Plugin interface {
	// Name returns the module name, matching the name used in manifests.
	Name() string
	// Register describes the module's classes.
	Register(r *Registrar)
}

// ClassSpec is the registration-time description of a real class.
type ClassSpec struct {
	// Name is either a bare class name placed into Namespace, or a fully
	// qualified `Namespace::Class` name.
	Name        string
	Namespace   string
	Description string
	// Base is the fully qualified name of the base class, empty for a root.
	Base       string
	Properties map[string]string
	Members    []member.Descriptor
}

// Registrar collects the class specs of one plugin.
type Registrar struct {
	module string
	specs  []ClassSpec
}

// Module returns the name of the module being registered.
func (r *Registrar) Module() string { return r.module }

// RegisterClass adds a class to the module. Specs are validated when the
// registry applies them; a malformed spec is skipped without affecting the
// other classes of the module.
func (r *Registrar) RegisterClass(spec ClassSpec) {
	r.specs = append(r.specs, spec)
}
