package app

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/vk/metaclass/internal/registry"
)

func TestNewConfig(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		in      Config
		want    *Config
		wantErr string
	}{
		{
			name: "defaults",
			in:   Config{},
			want: &Config{LogLevel: "info", LogFormat: "text", MaxResolveAttempts: registry.DefaultMaxResolveAttempts},
		},
		{
			name: "normalises case",
			in:   Config{LogLevel: "DEBUG", LogFormat: "JSON", MaxResolveAttempts: 5, Preload: []string{"text"}},
			want: &Config{LogLevel: "debug", LogFormat: "json", MaxResolveAttempts: 5, Preload: []string{"text"}},
		},
		{name: "bad level", in: Config{LogLevel: "verbose"}, wantErr: "invalid log-level"},
		{name: "bad format", in: Config{LogFormat: "xml"}, wantErr: "invalid log-format"},
		{name: "negative attempts", in: Config{MaxResolveAttempts: -1}, wantErr: "invalid resolve-attempts"},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := NewConfig(tc.in)
			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("NewConfig() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDefaultManifestPaths(t *testing.T) {
	paths := DefaultManifestPaths()
	require.Len(t, paths, 2)
	require.Equal(t, "manifests", paths[0])
	require.Contains(t, paths[1], AppDirName)
}
