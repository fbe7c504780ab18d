// Package analyzer runs the add-ons enabled in a build configuration.
//
// Two add-ons are provided:
//
//  1. quarkusCommunityDepAnalyzer: unpacks the product repository, builds a
//     scaffold application depending on every shipped extension and reports
//     the community dependencies it pulls in, plus vendor-branded BOM entries
//     missing from the repository.
//  2. quarkusPostBuildAnalyzer: compares the reports of the two latest
//     published builds.
//
// # Usage
//
//	cfg, err := config.Load("build-config.yaml")
//	if err != nil {
//	    return err
//	}
//	env := analyzer.Env{Runner: command.NewOSRunner(logger), Logger: logger}
//	if err := analyzer.NewRegistry().Dispatch(ctx, cfg, env); err != nil {
//	    return err
//	}
package analyzer

import (
	"context"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depscan/pkg/cache"
	"github.com/matzehuels/depscan/pkg/command"
	"github.com/matzehuels/depscan/pkg/config"
	"github.com/matzehuels/depscan/pkg/errors"
	"github.com/matzehuels/depscan/pkg/httputil"
	"github.com/matzehuels/depscan/pkg/postbuild"
)

// AddOn is one analysis step of a build.
type AddOn interface {
	Name() string
	Trigger(ctx context.Context) error
}

// Env holds the collaborators shared by add-ons. Zero fields get defaults.
type Env struct {
	// Runner executes the build tool. Defaults to an OSRunner.
	Runner command.Runner
	// Fetcher downloads post-build artifacts. Defaults to an httputil.Client.
	Fetcher postbuild.Fetcher
	// Cache memoizes repository scans. Defaults to a NullCache.
	Cache cache.Cache
	// WorkDir holds temporary files. Defaults to os.TempDir().
	WorkDir string
	Logger  *log.Logger
}

func (e Env) withDefaults() Env {
	if e.Logger == nil {
		e.Logger = log.Default()
	}
	if e.Runner == nil {
		e.Runner = command.NewOSRunner(e.Logger)
	}
	if e.Fetcher == nil {
		e.Fetcher = httputil.NewClient()
	}
	if e.Cache == nil {
		e.Cache = cache.NewNullCache()
	}
	return e
}

// Factory builds an add-on for a configuration.
type Factory func(cfg *config.Config, env Env) AddOn

// Registry maps add-on names to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns a registry holding the built-in add-ons.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register(config.CommunityDepAnalyzer, func(cfg *config.Config, env Env) AddOn {
		return NewCommunityDepAnalyzer(cfg, env)
	})
	r.Register(config.PostBuildAnalyzer, func(cfg *config.Config, env Env) AddOn {
		return NewPostBuildAnalyzer(cfg, env)
	})
	return r
}

// Register adds or replaces the factory for name.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// Names returns the registered add-on names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Dispatch triggers the add-ons enabled in cfg in the order of
// [config.Config.Enabled] and stops at the first failure.
func (r *Registry) Dispatch(ctx context.Context, cfg *config.Config, env Env) error {
	env = env.withDefaults()
	enabled := cfg.Enabled()
	if len(enabled) == 0 {
		env.Logger.Warn("no add-on enabled in the configuration")
		return nil
	}
	for _, name := range enabled {
		f, ok := r.factories[name]
		if !ok {
			return errors.New(errors.ErrCodeInvalidConfig, "unknown add-on %q", name)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		env.Logger.Info("Triggering add-on", "addon", name)
		if err := f(cfg, env).Trigger(ctx); err != nil {
			return err
		}
	}
	return nil
}
