package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/metaclass/internal/ctxlog"
	"github.com/vk/metaclass/internal/loadable"
)

// Start registers the loadable root class, declares every module found in
// the manifests, preloads the configured modules and creates the loadable
// manager. Manifest errors are fatal; preload failures are reported
// together after every module has been tried.
func (a *App) Start(ctx context.Context) error {
	ctx = a.Context(ctx)
	logger := ctxlog.FromContext(ctx)

	if _, err := a.registry.LoadPlugin(ctx, loadable.Plugin()); err != nil {
		return fmt.Errorf("failed to register loadable root class: %w", err)
	}

	if err := a.LoadManifests(ctx); err != nil {
		return err
	}

	a.loaders = loadable.NewManager(ctx, a.registry)
	for _, dir := range a.config.LoaderBaseDirs {
		a.loaders.AddBaseDir(dir)
	}

	if err := a.Preload(ctx, a.config.Preload...); err != nil {
		return err
	}
	logger.Debug("Application started.", "classes", len(a.registry.Classes()), "modules", len(a.registry.Modules()))
	return nil
}

// LoadManifests reads the configured manifest paths and declares their
// modules as placeholders.
func (a *App) LoadManifests(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading manifests...", "paths", a.config.ManifestPaths)

	model, err := a.loader.Load(ctx, a.config.ManifestPaths...)
	if err != nil {
		return fmt.Errorf("failed to load manifests: %w", err)
	}
	a.manifests = model

	if err := a.registry.DeclareModules(ctx, model); err != nil {
		return fmt.Errorf("invalid manifest declarations: %w", err)
	}
	logger.Info("Manifests loaded.", "modules", len(model.Modules))
	return nil
}

// Preload resolves the named modules eagerly.
func (a *App) Preload(ctx context.Context, modules ...string) error {
	var errs []error
	for _, name := range modules {
		if _, err := a.registry.ResolveModule(ctx, name); err != nil {
			errs = append(errs, err)
			continue
		}
		ctxlog.FromContext(ctx).Debug("Module preloaded.", "module", name)
	}
	return errors.Join(errs...)
}

// LoadAll resolves every module of the plugin catalog.
func (a *App) LoadAll(ctx context.Context) error {
	return a.Preload(ctx, a.catalog.Names()...)
}
