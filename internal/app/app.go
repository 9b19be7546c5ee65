package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/vk/metaclass/internal/ctxlog"
	"github.com/vk/metaclass/internal/loadable"
	"github.com/vk/metaclass/internal/manifest"
	"github.com/vk/metaclass/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	logger    *slog.Logger
	config    *Config
	loader    manifest.Loader
	registry  *registry.Registry
	catalog   *registry.Catalog
	manifests *manifest.Model
	loaders   *loadable.Manager
}

// NewApp is the constructor for the main application. It returns an App with
// its own isolated logger, registry and plugin catalog. Nothing is loaded
// until Start is called. When no plugins are given the compiled-in modules
// are used.
func NewApp(logW io.Writer, cfg *Config, loader manifest.Loader, plugins ...registry.Plugin) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	if loader == nil {
		loader = manifest.NewLoader()
	}
	if len(plugins) == 0 {
		plugins = coreModules
	}
	catalog := registry.NewCatalog(plugins...)

	reg := registry.New(
		registry.WithLogger(logger),
		registry.WithResolver(catalog),
		registry.WithMaxResolveAttempts(cfg.MaxResolveAttempts),
	)
	logger.Debug("Registry created.", "catalog", catalog.Names())

	return &App{
		logger:   logger,
		config:   cfg,
		loader:   loader,
		registry: reg,
		catalog:  catalog,
	}
}

// Context returns ctx carrying the application logger.
func (a *App) Context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Config returns the validated configuration.
func (a *App) Config() *Config { return a.config }

// Registry returns the application's class registry.
func (a *App) Registry() *registry.Registry { return a.registry }

// Catalog returns the compiled-in plugin catalog.
func (a *App) Catalog() *registry.Catalog { return a.catalog }

// Manifests returns the manifest model loaded by Start.
func (a *App) Manifests() *manifest.Model { return a.manifests }

// Loaders returns the loadable manager created by Start.
func (a *App) Loaders() *loadable.Manager { return a.loaders }

// Close releases the loadable manager subscription.
func (a *App) Close() {
	if a.loaders != nil {
		a.loaders.Close()
	}
}
