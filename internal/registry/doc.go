// Package registry is the runtime class registry.
//
// Plugins (compiled-in modules) describe their classes through a Registrar:
// name, namespace, base class, string properties and member descriptors
// (attributes, methods, events, slots, constructors). Manifests can declare
// the classes of a module before the module is loaded; those classes exist
// as placeholders that know only their names and base class name. The
// first query that needs real data resolves the owning module through a
// Resolver and upgrades the placeholder in place, so *Class handles obtained
// earlier stay valid.
//
// A class's member view is aggregated lazily: inherited members are copied
// from the base class, own members shadow inherited members of the same
// name, and constructors are never inherited. Any change to a class's own
// data or base invalidates the aggregated views of all derived classes.
//
// All class graph state is guarded by a single reader/writer lock. Module
// resolution runs outside of that lock so a slow or failing plugin load does
// not stall queries against classes that are already resident.
package registry
