package keyvalues

import (
	"github.com/vk/metaclass/internal/loadable"
	"github.com/vk/metaclass/internal/member"
	"github.com/vk/metaclass/internal/registry"
	"github.com/vk/metaclass/internal/typeexpr"
	"github.com/zclconf/go-cty/cty"
)

// ModuleName is the name manifests use to declare this module.
const ModuleName = "keyvalues"

// Class names registered by the module.
const (
	TableClass      = "KV::Table"
	EnvLoaderClass  = "KV::EnvLoader"
	YAMLLoaderClass = "KV::YAMLLoader"
	TOMLLoaderClass = "KV::TOMLLoader"
	XMLLoaderClass  = "KV::XMLLoader"
	CSVLoaderClass  = "KV::CSVLoader"
)

// Module implements the registry.Plugin interface for this package.
type Module struct{}

// Name returns the module name.
func (m *Module) Name() string { return ModuleName }

// Register describes the table class and its loaders.
func (m *Module) Register(r *registry.Registrar) {
	r.RegisterClass(registry.ClassSpec{
		Name:        TableClass,
		Description: "A string to string table.",
		Members:     tableMembers(),
	})

	loaders := []struct {
		name, formats, desc string
		impl                loadable.LoaderImpl
	}{
		{EnvLoaderClass, "env,properties", "KEY=VALUE files.", EnvLoader{}},
		{YAMLLoaderClass, "yaml,yml", "YAML mappings, flattened to dotted keys.", YAMLLoader{}},
		{TOMLLoaderClass, "toml", "TOML documents, flattened to dotted keys.", TOMLLoader{}},
		{XMLLoaderClass, "xml", "XML property lists.", XMLLoader{}},
		{CSVLoaderClass, "csv", "Two column key,value CSV files.", CSVLoader{}},
	}
	for _, l := range loaders {
		impl := l.impl
		r.RegisterClass(registry.ClassSpec{
			Name:        l.name,
			Base:        loadable.RootClass,
			Description: l.desc,
			Properties: map[string]string{
				loadable.PropType:    TableClass,
				loadable.PropFormats: l.formats,
				loadable.PropSave:    "1",
			},
			Members: []member.Descriptor{
				member.NewConstructor(member.ConstructorSpec{
					Name: "Default",
					New:  func([]cty.Value) (any, error) { return impl, nil },
				}),
			},
		})
	}
}

var entriesType = typeexpr.MustParse("map(string)")

func tableMembers() []member.Descriptor {
	strStr := []cty.Type{cty.String, cty.String}
	return []member.Descriptor{
		member.NewConstructor(member.ConstructorSpec{
			Name: "Default",
			New:  func([]cty.Value) (any, error) { return NewTable(), nil },
		}),
		member.NewConstructor(member.ConstructorSpec{
			Name:        "FromEnvironment",
			Description: "Creates a table holding the process environment.",
			New:         func([]cty.Value) (any, error) { return FromEnvironment(), nil },
		}),
		member.NewAttribute(member.AttributeSpec{
			Name: "count",
			Type: cty.Number,
			Get: func(obj any) (cty.Value, error) {
				return cty.NumberIntVal(int64(obj.(*Table).Len())), nil
			},
		}),
		member.NewAttribute(member.AttributeSpec{
			Name:    "entries",
			Type:    entriesType,
			Default: cty.MapValEmpty(cty.String),
			Get: func(obj any) (cty.Value, error) {
				entries := obj.(*Table).Entries()
				if len(entries) == 0 {
					return cty.MapValEmpty(cty.String), nil
				}
				vals := make(map[string]cty.Value, len(entries))
				for k, v := range entries {
					vals[k] = cty.StringVal(v)
				}
				return cty.MapVal(vals), nil
			},
			Set: func(obj any, v cty.Value) error {
				entries := make(map[string]string)
				if !v.IsNull() {
					for k, val := range v.AsValueMap() {
						entries[k] = val.AsString()
					}
				}
				obj.(*Table).Replace(entries)
				return nil
			},
		}),
		member.NewMethod(member.MethodSpec{
			Name:      "get",
			Signature: member.Sig(cty.String, cty.String),
			Call: func(obj any, args []cty.Value) (cty.Value, error) {
				v, ok := obj.(*Table).Get(args[0].AsString())
				if !ok {
					return cty.NullVal(cty.String), nil
				}
				return cty.StringVal(v), nil
			},
		}),
		member.NewMethod(member.MethodSpec{
			Name:      "set",
			Signature: member.Sig(cty.NilType, strStr...),
			Call: func(obj any, args []cty.Value) (cty.Value, error) {
				obj.(*Table).Set(args[0].AsString(), args[1].AsString())
				return cty.NilVal, nil
			},
		}),
		member.NewMethod(member.MethodSpec{
			Name:      "delete",
			Signature: member.Sig(cty.Bool, cty.String),
			Call: func(obj any, args []cty.Value) (cty.Value, error) {
				return cty.BoolVal(obj.(*Table).Delete(args[0].AsString())), nil
			},
		}),
		member.NewEvent(member.EventSpec{
			Name:   "changed",
			Params: strStr,
			Signal: func(obj any) *member.Signal { return obj.(*Table).Changed },
		}),
		member.NewSlot(member.SlotSpec{
			Name:   "assign",
			Params: strStr,
			Handler: func(obj any) func([]cty.Value) {
				t := obj.(*Table)
				return func(args []cty.Value) {
					if args[1].AsString() == "" {
						t.Delete(args[0].AsString())
						return
					}
					t.Set(args[0].AsString(), args[1].AsString())
				}
			},
		}),
	}
}
