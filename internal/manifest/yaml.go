package manifest

import (
	"context"
	"fmt"
	"os"

	"github.com/vk/metaclass/internal/ctxlog"
	"gopkg.in/yaml.v3"
)

// YAMLLoader reads `.yaml` and `.yml` manifests.
type YAMLLoader struct{}

// NewYAMLLoader creates a new YAML manifest loader.
func NewYAMLLoader() *YAMLLoader {
	return &YAMLLoader{}
}

// Load parses every YAML file found under paths.
func (l *YAMLLoader) Load(ctx context.Context, paths ...string) (*Model, error) {
	files, err := findFiles(paths, func(ext string) bool { return ext == "yaml" || ext == "yml" })
	if err != nil {
		return nil, err
	}

	model := &Model{}
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read manifest %s: %w", file, err)
		}
		var doc document
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML manifest %s: %w", file, err)
		}
		for _, m := range doc.translate(file) {
			model.add(m)
		}
	}
	ctxlog.FromContext(ctx).Debug("YAML manifests loaded.", "files", len(files), "modules", len(model.Modules))
	return model, nil
}
