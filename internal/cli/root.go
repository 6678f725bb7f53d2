// Package cli implements the jstree command line interface.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/specvital/jstree/pkg/scanner"
	"github.com/specvital/jstree/pkg/source"
)

const (
	configName = ".jstree"
	envPrefix  = "JSTREE"
)

var (
	errUnknownFormat = errors.New("unknown output format")
	errFilesFailed   = errors.New("some files could not be extracted")
)

// app carries the configuration shared by all subcommands.
type app struct {
	v      *viper.Viper
	logger *slog.Logger
}

// NewRootCmd builds the jstree command tree.
func NewRootCmd() *cobra.Command {
	a := &app{
		v:      viper.New(),
		logger: slog.New(slog.DiscardHandler),
	}

	cmd := &cobra.Command{
		Use:   "jstree",
		Short: "Extract the test tree of JavaScript and TypeScript test files",
		Long: `jstree statically reads Jest/Vitest/Mocha style test files and reports the
suites and cases they declare, without running them.

Configuration is read from flags, JSTREE_* environment variables and an
optional .jstree.yaml in the root directory.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initConfig(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file (default is <root>/.jstree.yaml)")
	flags.StringP("format", "f", formatText, "output format: text, json or yaml")
	flags.String("root", ".", "directory file arguments are resolved against")
	flags.IntP("workers", "w", scanner.DefaultWorkers, "number of parallel parsers (0 uses GOMAXPROCS)")
	flags.Duration("timeout", scanner.DefaultTimeout, "timeout for a whole run")
	flags.StringSlice("exclude", nil, "additional glob patterns of files to skip")
	flags.BoolP("verbose", "v", false, "log debug information to stderr")

	cmd.AddCommand(newTreeCmd(a), newListCmd(a), newNearestCmd(a))

	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *app) initConfig(cmd *cobra.Command) error {
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}

	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if cfgFile := a.v.GetString("config"); cfgFile != "" {
		a.v.SetConfigFile(cfgFile)
	} else {
		a.v.AddConfigPath(a.v.GetString("root"))
		a.v.SetConfigType("yaml")
		a.v.SetConfigName(configName)
	}

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	if err := checkFormat(a.format()); err != nil {
		return err
	}

	level := slog.LevelWarn
	if a.v.GetBool("verbose") {
		level = slog.LevelDebug
	}
	a.logger = slog.New(tint.NewHandler(cmd.ErrOrStderr(), &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    color.NoColor,
	}))
	if used := a.v.ConfigFileUsed(); used != "" {
		a.logger.Debug("config loaded", "file", used)
	}

	return nil
}

func (a *app) format() string {
	return strings.ToLower(a.v.GetString("format"))
}

func (a *app) newScanner() *scanner.Scanner {
	opts := []scanner.ScanOption{
		scanner.WithWorkers(a.v.GetInt("workers")),
		scanner.WithTimeout(a.v.GetDuration("timeout")),
		scanner.WithLogger(a.logger),
	}
	if exclude := a.v.GetStringSlice("exclude"); len(exclude) > 0 {
		opts = append(opts, scanner.WithExcludePatterns(exclude))
	}
	return scanner.NewScanner(opts...)
}

func (a *app) openSource() (*source.LocalSource, error) {
	return source.NewLocalSource(a.v.GetString("root"))
}

// relativePaths maps file arguments onto slash separated paths below root.
func relativePaths(root string, args []string) ([]string, error) {
	paths := make([]string, 0, len(args))
	for _, arg := range args {
		p := arg
		if filepath.IsAbs(p) {
			rel, err := filepath.Rel(root, p)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", arg, source.ErrInvalidPath)
			}
			p = rel
		}
		paths = append(paths, filepath.ToSlash(filepath.Clean(p)))
	}
	return paths, nil
}

// checkFailed turns per-file failures, already logged by the scanner, into
// a non-zero exit.
func checkFailed(errs []scanner.ScanError) error {
	if len(errs) > 0 {
		return fmt.Errorf("%w: %d file(s)", errFilesFailed, len(errs))
	}
	return nil
}
