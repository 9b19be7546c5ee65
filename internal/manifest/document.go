package manifest

// document is the shared shape of YAML and TOML manifests:
//
//	modules:
//	  - name: widgets
//	    namespace: UI
//	    classes:
//	      - name: Widget
//	        base: Core::Object
type document struct {
	Modules []documentModule `yaml:"modules" toml:"modules"`
}

type documentModule struct {
	Name        string          `yaml:"name" toml:"name"`
	Description string          `yaml:"description,omitempty" toml:"description,omitempty"`
	Namespace   string          `yaml:"namespace,omitempty" toml:"namespace,omitempty"`
	Classes     []documentClass `yaml:"classes" toml:"classes"`
}

type documentClass struct {
	Name        string `yaml:"name" toml:"name"`
	Base        string `yaml:"base,omitempty" toml:"base,omitempty"`
	Description string `yaml:"description,omitempty" toml:"description,omitempty"`
}

func (d *document) translate(file string) []*Module {
	out := make([]*Module, 0, len(d.Modules))
	for _, m := range d.Modules {
		mod := &Module{Name: m.Name, Description: m.Description, Source: file}
		for _, c := range m.Classes {
			mod.Classes = append(mod.Classes, &Class{
				Name:        c.Name,
				Namespace:   m.Namespace,
				Base:        c.Base,
				Description: c.Description,
			})
		}
		out = append(out, mod)
	}
	return out
}
