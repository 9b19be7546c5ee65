package manifest

import (
	"context"
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/vk/metaclass/internal/ctxlog"
)

// TOMLLoader reads `.toml` manifests using `[[modules]]` and
// `[[modules.classes]]` tables.
type TOMLLoader struct{}

// NewTOMLLoader creates a new TOML manifest loader.
func NewTOMLLoader() *TOMLLoader {
	return &TOMLLoader{}
}

// Load parses every TOML file found under paths.
func (l *TOMLLoader) Load(ctx context.Context, paths ...string) (*Model, error) {
	files, err := findFiles(paths, func(ext string) bool { return ext == "toml" })
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
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse TOML manifest %s: %w", file, err)
		}
		for _, m := range doc.translate(file) {
			model.add(m)
		}
	}
	ctxlog.FromContext(ctx).Debug("TOML manifests loaded.", "files", len(files), "modules", len(model.Modules))
	return model, nil
}
