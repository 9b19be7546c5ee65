package manifest

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/metaclass/internal/ctxlog"
)

// HCLLoader reads `.hcl` manifests of the form
//
//	module "widgets" {
//	  description = "UI widgets"
//	  namespace   = "UI"
//
//	  class "Widget" {
//	    base = "Core::Object"
//	  }
//	}
type HCLLoader struct{}

// NewHCLLoader creates a new HCL manifest loader.
func NewHCLLoader() *HCLLoader {
	return &HCLLoader{}
}

type hclFileRoot struct {
	Modules []*hclModule `hcl:"module,block"`
	Remain  hcl.Body     `hcl:",remain"`
}

type hclModule struct {
	Name        string      `hcl:"name,label"`
	Description *string     `hcl:"description,optional"`
	Namespace   *string     `hcl:"namespace,optional"`
	Classes     []*hclClass `hcl:"class,block"`
}

type hclClass struct {
	Name        string  `hcl:"name,label"`
	Base        *string `hcl:"base,optional"`
	Description *string `hcl:"description,optional"`
}

// Load parses every `.hcl` file found under paths.
func (l *HCLLoader) Load(ctx context.Context, paths ...string) (*Model, error) {
	logger := ctxlog.FromContext(ctx)
	files, err := findFiles(paths, func(ext string) bool { return ext == "hcl" })
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL manifests.", "count", len(files))

	parser := hclparse.NewParser()
	model := &Model{}
	for _, file := range files {
		f, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		var root hclFileRoot
		if diags := gohcl.DecodeBody(f.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}
		for _, m := range root.Modules {
			model.add(translateHCLModule(file, m))
		}
	}
	logger.Debug("HCL manifests loaded.", "modules", len(model.Modules))
	return model, nil
}

func translateHCLModule(file string, m *hclModule) *Module {
	namespace := deref(m.Namespace)
	out := &Module{Name: m.Name, Description: deref(m.Description), Source: file}
	for _, c := range m.Classes {
		out.Classes = append(out.Classes, &Class{
			Name:        c.Name,
			Namespace:   namespace,
			Base:        deref(c.Base),
			Description: deref(c.Description),
		})
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
