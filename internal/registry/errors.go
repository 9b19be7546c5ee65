package registry

import "errors"

var (
	// ErrModuleUnavailable indicates that a placeholder class could not be
	// upgraded because its module cannot be loaded. The failure is cached.
	ErrModuleUnavailable = errors.New("registry: module unavailable")

	// ErrClassNotInModule indicates that a module was loaded but did not
	// register a class that had been declared for it.
	ErrClassNotInModule = errors.New("registry: class not provided by module")

	// ErrCyclicInheritance indicates a base class chain that revisits a class.
	ErrCyclicInheritance = errors.New("registry: cyclic inheritance")

	// ErrUnknownBaseClass indicates a declared base class that is not registered.
	ErrUnknownBaseClass = errors.New("registry: unknown base class")

	// ErrDuplicateClass indicates a second real registration of a class name.
	ErrDuplicateClass = errors.New("registry: class already registered")

	// ErrInvalidClass indicates a malformed class registration.
	ErrInvalidClass = errors.New("registry: invalid class")

	// ErrModuleLoaded indicates that a module is already resident.
	ErrModuleLoaded = errors.New("registry: module already loaded")

	// ErrModuleNotFound indicates an unknown module.
	ErrModuleNotFound = errors.New("registry: module not found")

	// ErrClassRetracted indicates a class whose module has been unloaded.
	ErrClassRetracted = errors.New("registry: class retracted")

	// ErrMemberNotFound is returned by operations (not queries) that need a
	// member which does not exist.
	ErrMemberNotFound = errors.New("registry: member not found")
)
