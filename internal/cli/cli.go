// Package cli implements the depscan command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depscan/pkg/analyzer"
	"github.com/matzehuels/depscan/pkg/buildinfo"
	"github.com/matzehuels/depscan/pkg/cache"
	"github.com/matzehuels/depscan/pkg/command"
	"github.com/matzehuels/depscan/pkg/observability"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "depscan"

	// defaultConfigFile is read by "run" when --config is not given.
	defaultConfigFile = "build-config.yaml"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// runner overrides the build tool runner; tests substitute a Recorder.
	runner command.Runner
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "depscan reports the community dependencies of a product Maven repository",
		Long: `depscan unpacks a product Maven repository, builds a throwaway application
depending on every extension it ships and reports which of the resolved
dependencies were not rebuilt by the vendor. It also cross-checks the platform
BOMs against the repository and compares the reports of consecutive builds.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			observability.SetAnalysisHooks(stageLogger{logger: c.Logger})
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.runCommand())
	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.bomCheckCommand())
	root.AddCommand(c.postBuildCommand())
	root.AddCommand(c.parseTreeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Environment Factory
// =============================================================================

// envOptions are the flags shared by commands that run analyzers.
type envOptions struct {
	noCache bool
	workDir string
}

func (o *envOptions) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable the extension scan cache")
	cmd.Flags().StringVar(&o.workDir, "work-dir", "", "directory for temporary files (default: system temp)")
}

// newEnv creates the analyzer environment for CLI use.
func (c *CLI) newEnv(logger *log.Logger, opts envOptions) (analyzer.Env, error) {
	ch, err := newCache(opts.noCache)
	if err != nil {
		return analyzer.Env{}, err
	}
	runner := c.runner
	if runner == nil {
		runner = command.NewOSRunner(logger)
	}
	return analyzer.Env{Runner: runner, Cache: ch, WorkDir: opts.workDir, Logger: logger}, nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/depscan/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
