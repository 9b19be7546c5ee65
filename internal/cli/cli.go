package cli

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vk/metaclass/internal/app"
	"github.com/vk/metaclass/internal/registry"
)

// EnvPrefix prefixes every environment variable read by the CLI, e.g.
// METACLASS_LOG_LEVEL.
const EnvPrefix = "METACLASS"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	return &ExitError{Code: 2, Message: err.Error()}
}

// options carries state shared by all subcommands.
type options struct {
	v          *viper.Viper
	outW       io.Writer
	errW       io.Writer
	configFile string
}

// Execute builds the command tree and runs it with args. Any failure is
// returned as an *ExitError: 2 for usage problems, 1 for everything else.
func Execute(ctx context.Context, args []string, outW, errW io.Writer) error {
	root := NewRootCommand(outW, errW)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	if strings.HasPrefix(err.Error(), "unknown command") {
		return usageError(err)
	}
	return &ExitError{Code: 1, Message: err.Error()}
}

// NewRootCommand returns the metaclass command with all subcommands
// attached. Command output goes to outW, logs go to errW.
func NewRootCommand(outW, errW io.Writer) *cobra.Command {
	o := &options{v: viper.New(), outW: outW, errW: errW}

	root := &cobra.Command{
		Use:   "metaclass",
		Short: "Inspect a runtime class registry",
		Long: `metaclass loads module manifests, declares their classes as placeholders
and resolves modules on demand when a class is first used.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.readConfigFile()
		},
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	flags := root.PersistentFlags()
	flags.StringVar(&o.configFile, "config", "", "Config file (default is $XDG_CONFIG_HOME/metaclass/config.yaml)")
	flags.StringSlice("manifests", app.DefaultManifestPaths(), "Manifest files or directories.")
	flags.StringSlice("preload", nil, "Modules to load eagerly at startup.")
	flags.StringSlice("base-dir", nil, "Directories searched for relative paths by loaders.")
	flags.Int("resolve-attempts", registry.DefaultMaxResolveAttempts, "Maximum attempts to resolve a module.")
	flags.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flags.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")

	_ = o.v.BindPFlags(flags)
	o.v.SetEnvPrefix(EnvPrefix)
	o.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	o.v.AutomaticEnv()

	root.AddCommand(
		newClassesCommand(o),
		newDescribeCommand(o),
		newModulesCommand(o),
		newLoadersCommand(o),
		newLoadCommand(o),
	)
	return root
}

// readConfigFile reads the explicit --config file, or the default one when
// it exists.
func (o *options) readConfigFile() error {
	if o.configFile != "" {
		o.v.SetConfigFile(o.configFile)
		if err := o.v.ReadInConfig(); err != nil {
			return usageError(err)
		}
		return nil
	}
	o.v.SetConfigName("config")
	o.v.AddConfigPath(filepath.Join(xdg.ConfigHome, app.AppDirName))
	if err := o.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return usageError(err)
	}
	return nil
}

// config assembles and validates the application config from the merged
// flag, environment and file values.
func (o *options) config() (*app.Config, error) {
	cfg, err := app.NewConfig(app.Config{
		ManifestPaths:      o.v.GetStringSlice("manifests"),
		Preload:            o.v.GetStringSlice("preload"),
		LoaderBaseDirs:     o.v.GetStringSlice("base-dir"),
		MaxResolveAttempts: o.v.GetInt("resolve-attempts"),
		LogLevel:           o.v.GetString("log-level"),
		LogFormat:          o.v.GetString("log-format"),
	})
	if err != nil {
		return nil, usageError(err)
	}
	return cfg, nil
}

// start creates and starts the application. Callers must Close it.
func (o *options) start(cmd *cobra.Command) (*app.App, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	a := app.NewApp(o.errW, cfg, nil)
	if err := a.Start(cmd.Context()); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// exactArgs wraps cobra.ExactArgs so that argument count errors exit with
// the usage code.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return usageError(err)
		}
		return nil
	}
}
