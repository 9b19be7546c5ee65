package manifest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
	return dir
}

func TestHCLLoader(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"widgets.hcl": `
module "widgets" {
  description = "UI widgets"
  namespace   = "UI"

  class "Widget" {
    base        = "Core::Object"
    description = "Base widget"
  }
  class "Other::Label" {
    base = "UI::Widget"
  }
}
`,
		"ignored.txt": "not a manifest",
	})

	model, err := NewHCLLoader().Load(context.Background(), dir)
	require.NoError(t, err)

	want := []*Module{{
		Name:        "widgets",
		Description: "UI widgets",
		Source:      filepath.Join(dir, "widgets.hcl"),
		Classes: []*Class{
			{Name: "Widget", Namespace: "UI", Base: "Core::Object", Description: "Base widget"},
			{Name: "Other::Label", Namespace: "UI", Base: "UI::Widget"},
		},
	}}
	if diff := cmp.Diff(want, model.Modules); diff != "" {
		t.Errorf("model mismatch (-want +got):\n%s", diff)
	}
}

func TestHCLLoader_Errors(t *testing.T) {
	dir := writeFiles(t, map[string]string{"bad.hcl": `module "x" { class {} }`})
	_, err := NewHCLLoader().Load(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.hcl")

	dir = writeFiles(t, map[string]string{"broken.hcl": `module "x" {`})
	_, err = NewHCLLoader().Load(context.Background(), dir)
	require.Error(t, err)
}

func TestYAMLAndTOMLLoaders(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.yaml": `
modules:
  - name: formats
    namespace: Fmt
    classes:
      - name: Reader
        base: Loadable::LoaderImpl
`,
		"nested/b.toml": `
[[modules]]
name = "formats"
description = "File formats"

[[modules.classes]]
name = "Fmt::Writer"
base = "Loadable::LoaderImpl"
`,
	})

	ctx := context.Background()
	yamlModel, err := NewYAMLLoader().Load(ctx, dir)
	require.NoError(t, err)
	require.Len(t, yamlModel.Modules, 1)
	assert.Equal(t, &Class{Name: "Reader", Namespace: "Fmt", Base: "Loadable::LoaderImpl"}, yamlModel.Modules[0].Classes[0])

	tomlModel, err := NewTOMLLoader().Load(ctx, dir)
	require.NoError(t, err)
	require.Len(t, tomlModel.Modules, 1)
	assert.Equal(t, "File formats", tomlModel.Modules[0].Description)
	assert.Equal(t, "Fmt::Writer", tomlModel.Modules[0].Classes[0].Name)

	// The multi-loader merges the same module declared in both files.
	merged, err := NewLoader().Load(ctx, dir)
	require.NoError(t, err)
	require.Len(t, merged.Modules, 1)
	formats := merged.Module("formats")
	require.NotNil(t, formats)
	assert.Equal(t, "File formats", formats.Description)
	assert.Len(t, formats.Classes, 2)
}

func TestMultiLoader_ReportsAllErrors(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"bad.yaml": "modules: [",
		"bad.toml": "[[modules]",
	})
	_, err := NewLoader().Load(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.yaml")
	assert.Contains(t, err.Error(), "bad.toml")
}

func TestFindFiles(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"one.hcl":       "",
		"sub/two.HCL":   "",
		"sub/three.txt": "",
	})
	files, err := findFiles([]string{dir, filepath.Join(dir, "one.hcl"), filepath.Join(dir, "missing")},
		func(ext string) bool { return ext == "hcl" })
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{filepath.Join(dir, "one.hcl"), filepath.Join(dir, "sub", "two.HCL")}, files)
}
