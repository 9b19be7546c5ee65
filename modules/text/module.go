package text

import (
	"github.com/vk/metaclass/internal/loadable"
	"github.com/vk/metaclass/internal/member"
	"github.com/vk/metaclass/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// ModuleName is the name manifests use to declare this module.
const ModuleName = "text"

// Class names registered by the module.
const (
	DocumentClass = "Text::Document"
	LoaderClass   = "Text::PlainLoader"
)

// Module implements the registry.Plugin interface for this package.
type Module struct{}

// Name returns the module name.
func (m *Module) Name() string { return ModuleName }

// Register describes the document and loader classes.
func (m *Module) Register(r *registry.Registrar) {
	r.RegisterClass(registry.ClassSpec{
		Name:        DocumentClass,
		Description: "A plain text document.",
		Members: []member.Descriptor{
			member.NewConstructor(member.ConstructorSpec{
				Name: "Default",
				New:  func([]cty.Value) (any, error) { return NewDocument(), nil },
			}),
			member.NewConstructor(member.ConstructorSpec{
				Name:   "WithContent",
				Params: []cty.Type{cty.String},
				New: func(args []cty.Value) (any, error) {
					d := NewDocument()
					d.SetContent(args[0].AsString())
					return d, nil
				},
			}),
			member.NewAttribute(member.AttributeSpec{
				Name:        "content",
				Description: "Full text of the document.",
				Type:        cty.String,
				Default:     cty.StringVal(""),
				Get:         func(obj any) (cty.Value, error) { return cty.StringVal(obj.(*Document).Content()), nil },
				Set: func(obj any, v cty.Value) error {
					obj.(*Document).SetContent(v.AsString())
					return nil
				},
			}),
			member.NewAttribute(member.AttributeSpec{
				Name:        "lines",
				Description: "Number of lines.",
				Type:        cty.Number,
				Get:         func(obj any) (cty.Value, error) { return cty.NumberIntVal(int64(obj.(*Document).Lines())), nil },
			}),
			member.NewMethod(member.MethodSpec{
				Name:        "append",
				Description: "Appends text to the end of the document.",
				Signature:   member.Sig(cty.NilType, cty.String),
				Call: func(obj any, args []cty.Value) (cty.Value, error) {
					obj.(*Document).Append(args[0].AsString())
					return cty.NilVal, nil
				},
			}),
			member.NewMethod(member.MethodSpec{
				Name:        "line",
				Description: "Returns one line, zero based.",
				Signature:   member.Sig(cty.String, cty.Number),
				Call: func(obj any, args []cty.Value) (cty.Value, error) {
					i, _ := args[0].AsBigFloat().Int64()
					return cty.StringVal(obj.(*Document).Line(int(i))), nil
				},
			}),
			member.NewEvent(member.EventSpec{
				Name:        "changed",
				Description: "Emitted with the new content after every change.",
				Params:      []cty.Type{cty.String},
				Signal:      func(obj any) *member.Signal { return obj.(*Document).Changed },
			}),
			member.NewSlot(member.SlotSpec{
				Name:        "setContent",
				Description: "Replaces the content.",
				Params:      []cty.Type{cty.String},
				Handler: func(obj any) func([]cty.Value) {
					d := obj.(*Document)
					return func(args []cty.Value) { d.SetContent(args[0].AsString()) }
				},
			}),
		},
	})

	r.RegisterClass(registry.ClassSpec{
		Name:        LoaderClass,
		Base:        loadable.RootClass,
		Description: "Reads and writes text documents verbatim.",
		Properties: map[string]string{
			loadable.PropType:    DocumentClass,
			loadable.PropFormats: "txt,TXT,md",
			loadable.PropLoad:    "1",
			loadable.PropSave:    "1",
		},
		Members: []member.Descriptor{
			member.NewConstructor(member.ConstructorSpec{
				Name: "Default",
				New:  func([]cty.Value) (any, error) { return PlainLoader{}, nil },
			}),
		},
	})
}
