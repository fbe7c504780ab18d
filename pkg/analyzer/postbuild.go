package analyzer

import (
	"context"

	"github.com/matzehuels/depscan/pkg/config"
	"github.com/matzehuels/depscan/pkg/errors"
	"github.com/matzehuels/depscan/pkg/observability"
	"github.com/matzehuels/depscan/pkg/postbuild"
)

// PostBuildAnalyzer compares the reports of the latest build with the
// previous one.
type PostBuildAnalyzer struct {
	cfg *config.Config
	env Env
}

// NewPostBuildAnalyzer returns the analyzer for cfg. cfg must enable it.
func NewPostBuildAnalyzer(cfg *config.Config, env Env) *PostBuildAnalyzer {
	return &PostBuildAnalyzer{cfg: cfg, env: env.withDefaults()}
}

// Name implements AddOn.
func (a *PostBuildAnalyzer) Name() string { return config.PostBuildAnalyzer }

// Trigger implements AddOn. Comparison failures are logged and do not fail
// the build; only cancellation is returned.
func (a *PostBuildAnalyzer) Trigger(ctx context.Context) error {
	out, err := a.Analyze(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		a.env.Logger.Error("Post-build analysis failed", "error", err)
		return nil
	}
	a.env.Logger.Info("Post-build analysis written", "path", out)
	return nil
}

// Analyze runs the comparison and returns the path of the written report.
func (a *PostBuildAnalyzer) Analyze(ctx context.Context) (string, error) {
	opts := a.cfg.AddOns.PostBuild
	if opts == nil {
		return "", errors.New(errors.ErrCodeInvalidConfig, "%s is not configured", a.Name())
	}
	c := &postbuild.Comparator{
		StagingPath: opts.StagingPath,
		ProductName: opts.ProductName,
		Fetcher:     a.env.Fetcher,
		Logger:      a.env.Logger,
	}
	done := observability.Stage(ctx, a.Name(), "compare")
	out, err := c.Run(ctx, a.cfg.ExtrasPath)
	done(err)
	return out, err
}

var _ AddOn = (*PostBuildAnalyzer)(nil)
