package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/metaclass/internal/registry"
)

// AssertClassState checks that the named class is registered and in the
// expected lifecycle state. It does not trigger module resolution.
func AssertClassState(t *testing.T, result *HarnessResult, name string, want registry.State) *registry.Class {
	t.Helper()

	c := result.App.Registry().Class(name)
	require.NotNil(t, c, "class %q is not registered", name)
	require.Equal(t, want, c.State(), "unexpected state for class %q", name)
	return c
}

// AssertLoggedTimes checks that msg appears exactly n times in the log output.
func AssertLoggedTimes(t *testing.T, result *HarnessResult, msg string, n int) {
	t.Helper()

	got := strings.Count(result.LogOutput.String(), msg)
	require.Equal(t, n, got, "expected %q to be logged %d times, found %d", msg, n, got)
}
