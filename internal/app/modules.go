package app

import (
	"github.com/vk/metaclass/internal/registry"
	"github.com/vk/metaclass/modules/keyvalues"
	"github.com/vk/metaclass/modules/text"
)

// coreModules is the definitive list of all plugin modules that are compiled
// into the metaclass binary. They are resolved on demand, when a manifest
// declared class is first used or a module is preloaded.
var coreModules = []registry.Plugin{
	&text.Module{},
	&keyvalues.Module{},
}
