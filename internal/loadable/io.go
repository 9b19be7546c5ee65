package loadable

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Load reads path into target. The loader is chosen by the file's
// extension; when several types declare it, the type whose class creates
// target's Go type is used. Relative paths that do not exist in the working
// directory are searched in the base directories, in order.
func (m *Manager) Load(ctx context.Context, target any, path string) error {
	l := m.targetLoaderFor(ctx, target, filepath.Ext(path), (*Loader).CanLoad)
	if l == nil {
		return m.unsupported(path)
	}
	return m.loadWith(ctx, l, target, path)
}

// LoadAs reads path into target with a loader of the named type.
func (m *Manager) LoadAs(ctx context.Context, typeName string, target any, path string) error {
	l := m.typedLoaderFor(ctx, typeName, filepath.Ext(path), (*Loader).CanLoad)
	if l == nil {
		return m.unsupported(path)
	}
	return m.loadWith(ctx, l, target, path)
}

// LoadNew creates an instance of the loader's type class and loads path
// into it.
func (m *Manager) LoadNew(ctx context.Context, path string) (any, error) {
	l := m.loaderFor(ctx, filepath.Ext(path), (*Loader).CanLoad)
	if l == nil {
		return nil, m.unsupported(path)
	}
	cls := m.reg.Class(l.typeName)
	if cls == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoTargetClass, l.typeName)
	}
	target, err := cls.Create(ctx)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoTargetClass, l.typeName)
	}
	if err := m.loadWith(ctx, l, target, path); err != nil {
		return nil, err
	}
	return target, nil
}

func (m *Manager) loadWith(ctx context.Context, l *Loader, target any, path string) error {
	resolved, err := m.resolvePath(path)
	if err != nil {
		return err
	}

	f, err := os.Open(resolved)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", resolved, err)
	}
	defer f.Close()

	m.logger.Debug("Loading file.", "path", resolved, "loader", l.class.QualifiedName())
	if err := l.impl.Load(ctx, target, f); err != nil {
		return fmt.Errorf("loader %s failed to read %s: %w", l.class.QualifiedName(), resolved, err)
	}
	return nil
}

// Save writes target to path, choosing the loader the same way Load does.
// Relative paths are written relative to the working directory.
func (m *Manager) Save(ctx context.Context, target any, path string) error {
	l := m.targetLoaderFor(ctx, target, filepath.Ext(path), (*Loader).CanSave)
	if l == nil {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	return m.saveWith(ctx, l, target, path)
}

// SaveAs writes target to path with a loader of the named type.
func (m *Manager) SaveAs(ctx context.Context, typeName string, target any, path string) error {
	l := m.typedLoaderFor(ctx, typeName, filepath.Ext(path), (*Loader).CanSave)
	if l == nil {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	return m.saveWith(ctx, l, target, path)
}

func (m *Manager) saveWith(ctx context.Context, l *Loader, target any, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	m.logger.Debug("Saving file.", "path", path, "loader", l.class.QualifiedName())
	if err := l.impl.Save(ctx, target, f); err != nil {
		return fmt.Errorf("loader %s failed to write %s: %w", l.class.QualifiedName(), path, err)
	}
	return nil
}

// unsupported reports a file no loader reads, naming its detected media
// type when the file exists and is recognised.
func (m *Manager) unsupported(path string) error {
	if resolved, err := m.resolvePath(path); err == nil {
		if mime := sniff(resolved); mime != "" {
			return fmt.Errorf("%w: %s (detected %s)", ErrUnsupportedFormat, path, mime)
		}
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

func (m *Manager) resolvePath(path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	for _, dir := range m.BaseDirs() {
		candidate := filepath.Join(dir, path)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("file %s not found in working directory or base directories: %w", path, os.ErrNotExist)
}
