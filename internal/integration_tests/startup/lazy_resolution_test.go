package integration_tests

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/metaclass/internal/registry"
	"github.com/vk/metaclass/internal/testutil"
	"github.com/vk/metaclass/modules/keyvalues"
	"github.com/vk/metaclass/modules/text"
)

const textManifest = `
module "text" {
  namespace = "Text"

  class "Document" {}

  class "PlainLoader" {
    base = "Loadable::LoaderImpl"
  }
}
`

const keyvaluesManifest = `
modules:
  - name: keyvalues
    namespace: KV
    classes:
      - name: Table
      - name: EnvLoader
        base: Loadable::LoaderImpl
`

// Test for: declared classes stay placeholders until first use
func TestStartup_DeclaredClassesResolveOnFirstUse(t *testing.T) {
	// --- Arrange ---
	result := testutil.RunIntegrationTest(t, testutil.Harness{
		Files: map[string]string{"manifests/text.hcl": textManifest},
	})
	require.NoError(t, result.Err)
	ctx := result.App.Context(context.Background())

	doc := testutil.AssertClassState(t, result, "Text::Document", registry.StatePlaceholder)
	require.False(t, result.App.Registry().ModuleByName("text").Resident())

	// --- Act ---
	method, err := doc.Method(ctx, "append")

	// --- Assert ---
	require.NoError(t, err)
	require.NotNil(t, method)
	assert.Equal(t, registry.StateReal, doc.State())
	assert.True(t, result.App.Registry().ModuleByName("text").Resident())
	testutil.AssertClassState(t, result, "Text::PlainLoader", registry.StateReal)
	testutil.AssertLoggedTimes(t, result, "Module loaded.", 2) // loadable, text
}

// Test for: concurrent first use resolves a module exactly once
func TestStartup_ConcurrentFirstUseLoadsOnce(t *testing.T) {
	result := testutil.RunIntegrationTest(t, testutil.Harness{
		Files: map[string]string{"manifests/text.hcl": textManifest},
	})
	require.NoError(t, result.Err)
	ctx := result.App.Context(context.Background())
	doc := result.App.Registry().Class("Text::Document")

	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = doc.Members(ctx)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	testutil.AssertLoggedTimes(t, result, `msg="Resolving module." module=text`, 1)
}

// Test for: preloaded modules are resident after startup
func TestStartup_Preload(t *testing.T) {
	result := testutil.RunIntegrationTest(t, testutil.Harness{
		Files:   map[string]string{"manifests/kv.yaml": keyvaluesManifest},
		Preload: []string{keyvalues.ModuleName},
	})
	require.NoError(t, result.Err)

	testutil.AssertClassState(t, result, keyvalues.TableClass, registry.StateReal)
	// Classes the manifest does not declare are registered by the module.
	testutil.AssertClassState(t, result, keyvalues.CSVLoaderClass, registry.StateReal)
}

// Test for: the loadable manager resolves declared loaders and loads files
func TestStartup_LoadersFromDeclaredModules(t *testing.T) {
	result := testutil.RunIntegrationTest(t, testutil.Harness{
		Files: map[string]string{
			"manifests/text.hcl": textManifest,
			"manifests/kv.yaml":  keyvaluesManifest,
			"data/note.txt":      "hello\nworld\n",
			"data/app.env":       "A=1\nB=2\n",
		},
	})
	require.NoError(t, result.Err)
	ctx := result.App.Context(context.Background())
	mgr := result.App.Loaders()

	obj, err := mgr.LoadNew(ctx, "note.txt")
	require.NoError(t, err)
	doc, ok := obj.(*text.Document)
	require.True(t, ok, "expected *text.Document, got %T", obj)
	assert.Equal(t, 2, doc.Lines())
	assert.Equal(t, "world", doc.Line(1))

	obj, err = mgr.LoadNew(ctx, "app.env")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "1", "B": "2"}, obj.(*keyvalues.Table).Entries())

	assert.True(t, mgr.IsFormatSaveSupported(ctx, "csv"))
	assert.True(t, mgr.IsFormatLoadSupported(ctx, ".TXT"))
}

// Test for: unloading a module retracts its classes and loaders
func TestStartup_UnloadAndReload(t *testing.T) {
	result := testutil.RunIntegrationTest(t, testutil.Harness{
		Files:   map[string]string{"manifests/text.hcl": textManifest},
		Preload: []string{text.ModuleName},
	})
	require.NoError(t, result.Err)
	ctx := result.App.Context(context.Background())
	reg := result.App.Registry()
	mgr := result.App.Loaders()
	require.NotNil(t, mgr.Type(ctx, text.DocumentClass))

	doc := reg.Class(text.DocumentClass)
	require.NoError(t, reg.UnloadModule(ctx, reg.ModuleByName(text.ModuleName).ID()))

	assert.Nil(t, reg.Class(text.DocumentClass))
	assert.Equal(t, registry.StateUnresolvable, doc.State())
	assert.ErrorIs(t, doc.Init(ctx), registry.ErrClassRetracted)
	assert.Nil(t, mgr.Type(ctx, text.DocumentClass))

	_, err := reg.LoadPlugin(ctx, &text.Module{})
	require.NoError(t, err)
	assert.NotNil(t, mgr.Type(ctx, text.DocumentClass))
}
