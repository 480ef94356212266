//go:build !ios && !android && (amd64 || arm64)

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/obinnaokechukwu/gobj"
)

var cfgFile string

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "gobj",
	Short: "Inspect GObject classes and instances",
	Long: `gobj loads GLib at runtime and lists, reads and writes GObject properties
through the gobj identity-preserving binding layer.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.gobj/config.yaml)")
	flags.StringP("output", "o", "table", "output format: table, yaml or json")
	flags.String("log-level", "warn", "log level: debug, info, warn or error")
	flags.StringSlice("lib", nil, "extra GLib-based libraries to load, e.g. gio-2.0")
	flags.StringSlice("type-init", nil, "get_type functions to call before resolving type names")
	flags.StringSlice("library-path", nil, "directories searched for the GLib libraries")

	for _, name := range []string{"output", "log-level", "lib", "type-init", "library-path"} {
		_ = viper.BindPFlag(configKey(name), flags.Lookup(name))
	}

	rootCmd.AddCommand(propsCmd, getCmd, applyCmd, versionCmd)
}

// configKey maps a flag name to its config file and environment key.
func configKey(flag string) string {
	return strings.ReplaceAll(flag, "-", "_")
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".gobj"))
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("GOBJ")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound && cfgFile != "" {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
	}
}

func outputFormat() string {
	return viper.GetString("output")
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// session is the loaded native state a command works with.
type session struct {
	log     *zap.Logger
	binding *gobj.Binding
}

// openSession loads GLib and the configured extra libraries, runs the
// configured type initializers and creates a binding.
func openSession() (*session, error) {
	log, err := newLogger(viper.GetString("log_level"))
	if err != nil {
		return nil, err
	}
	gobj.SetLogger(log)
	gobj.AddLibraryPath(viper.GetStringSlice("library_path")...)

	native, err := gobj.GLib()
	if err != nil {
		return nil, err
	}
	if err := gobj.ForwardGLibLogs(log.Named("glib")); err != nil {
		log.Warn("cannot forward GLib log output", zap.Error(err))
	}

	libs := []uintptr{0}
	for _, name := range viper.GetStringSlice("lib") {
		lib, err := gobj.LoadLibrary(name)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", name, err)
		}
		log.Debug("loaded library", zap.String("lib", name))
		libs = append(libs, lib)
	}

	for _, fn := range viper.GetStringSlice("type_init") {
		name, err := ensureType(libs, fn)
		if err != nil {
			return nil, err
		}
		log.Debug("registered type", zap.String("func", fn), zap.String("type", name))
	}

	return &session{
		log:     log,
		binding: gobj.NewBinding(native, gobj.WithLogger(log), gobj.WithRegistryName("cli")),
	}, nil
}

// ensureType calls getTypeFunc from whichever loaded library exports it,
// trying extra libraries before libgobject-2.0.
func ensureType(libs []uintptr, getTypeFunc string) (string, error) {
	var lastErr error
	for i := len(libs) - 1; i >= 0; i-- {
		name, err := gobj.EnsureType(libs[i], getTypeFunc)
		if err == nil {
			return name, nil
		}
		lastErr = err
	}
	return "", lastErr
}

func (s *session) close() {
	_ = gobj.ForwardGLibLogs(nil)
	_ = s.log.Sync()
}

// instance creates a bound instance of typeName. The returned release
// function unregisters the wrapper and drops the native reference.
func (s *session) instance(typeName string) (*gobj.Object, func(), error) {
	h, err := gobj.NewInstance(typeName)
	if err != nil {
		return nil, nil, err
	}
	obj := s.binding.Bind(h)
	s.log.Debug("created instance", zap.String("type", typeName), zap.Stringer("handle", h))

	return obj, func() {
		s.binding.Unregister(h)
		gobj.Unref(h)
	}, nil
}
