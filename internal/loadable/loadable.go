package loadable

import (
	"context"
	"io"

	"github.com/vk/metaclass/internal/registry"
)

// RootClass is the class every loader derives from.
const RootClass = "Loadable::LoaderImpl"

// Well-known class properties read by the Manager.
const (
	// PropType names the type a loader handles, conventionally the
	// qualified name of the class it fills.
	PropType = "Type"
	// PropFormats is a comma separated list of file extensions.
	PropFormats = "Formats"
	// PropLoad enables loading; loaders load unless it is set to false.
	PropLoad = "Load"
	// PropSave enables saving; loaders only save when it is set to true.
	PropSave = "Save"
	// PropDescription is a human readable loader description.
	PropDescription = "Description"
)

// LoaderImpl is implemented by the objects loader classes construct.
type LoaderImpl interface {
	Load(ctx context.Context, target any, r io.Reader) error
	Save(ctx context.Context, target any, w io.Writer) error
}

// ModuleName is the module providing RootClass.
const ModuleName = "loadable"

type plugin struct{}

// Plugin returns the module that registers RootClass. It has no
// constructors; only derived classes are instantiated.
func Plugin() registry.Plugin { return plugin{} }

func (plugin) Name() string { return ModuleName }

func (plugin) Register(r *registry.Registrar) {
	r.RegisterClass(registry.ClassSpec{
		Name:        RootClass,
		Description: "Base class of file loaders discovered by the loadable manager.",
	})
}
