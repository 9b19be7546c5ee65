package integration_tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/metaclass/internal/app"
	"github.com/vk/metaclass/internal/registry"
	"github.com/vk/metaclass/internal/testutil"
)

// Test for: every class in the shipped manifests is provided by its module
func TestManifestParity(t *testing.T) {
	cfg, err := app.NewConfig(app.Config{ManifestPaths: []string{"../../../manifests"}, LogLevel: "debug"})
	require.NoError(t, err)
	logs := &testutil.SafeBuffer{}
	a := app.NewApp(logs, cfg, nil)
	t.Cleanup(a.Close)
	ctx := a.Context(context.Background())

	require.NoError(t, a.Start(ctx))
	require.NotEmpty(t, a.Manifests().Modules)
	for _, m := range a.Manifests().Modules {
		_, err := a.Registry().ResolveModule(ctx, m.Name)
		require.NoError(t, err, "module %s", m.Name)
	}

	for _, c := range a.Registry().Classes() {
		assert.Equal(t, registry.StateReal, c.State(), "class %s: %v", c, c.Err())
		assert.NoError(t, c.Init(ctx), "class %s", c)
	}
	assert.NotContains(t, logs.String(), "Declared class not provided by module.")
}
