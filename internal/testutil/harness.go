package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/metaclass/internal/app"
	"github.com/vk/metaclass/internal/registry"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput *SafeBuffer
	Err       error
	App       *app.App
	// Root is the temporary directory the files were written to.
	Root string
}

// Harness describes an application under test.
type Harness struct {
	// Files are written below a temporary root. Manifests belong under
	// "manifests/", data files for loaders under "data/".
	Files map[string]string
	// Preload names modules loaded at startup.
	Preload []string
	// Plugins replace the compiled-in modules when set.
	Plugins []registry.Plugin
	// MaxResolveAttempts overrides the default when positive.
	MaxResolveAttempts int
}

// RunIntegrationTest starts an app for h using a background context.
func RunIntegrationTest(t *testing.T, h Harness) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, h)
}

// RunIntegrationTestWithContext writes the harness files, starts an app with
// debug logging and returns it together with the captured log output. The
// app is closed when the test ends.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, h Harness) *HarnessResult {
	t.Helper()

	root := t.TempDir()
	manifestDir := filepath.Join(root, "manifests")
	dataDir := filepath.Join(root, "data")
	require.NoError(t, os.Mkdir(manifestDir, 0755))
	require.NoError(t, os.Mkdir(dataDir, 0755))
	WriteFiles(t, root, h.Files)

	cfg, err := app.NewConfig(app.Config{
		ManifestPaths:      []string{manifestDir},
		Preload:            h.Preload,
		LoaderBaseDirs:     []string{dataDir},
		MaxResolveAttempts: h.MaxResolveAttempts,
		LogLevel:           "debug",
		LogFormat:          "text",
	})
	require.NoError(t, err)

	logBuffer := &SafeBuffer{}
	testApp := app.NewApp(logBuffer, cfg, nil, h.Plugins...)
	t.Cleanup(testApp.Close)
	startErr := testApp.Start(ctx)

	t.Cleanup(func() {
		if os.Getenv("METACLASS_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return &HarnessResult{
		LogOutput: logBuffer,
		Err:       startErr,
		App:       testApp,
		Root:      root,
	}
}

// WriteFiles writes files relative to root, creating parent directories.
func WriteFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		filePath := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
	}
}
