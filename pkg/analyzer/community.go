package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/depscan/pkg/bom"
	"github.com/matzehuels/depscan/pkg/config"
	"github.com/matzehuels/depscan/pkg/errors"
	"github.com/matzehuels/depscan/pkg/extension"
	"github.com/matzehuels/depscan/pkg/maven"
	"github.com/matzehuels/depscan/pkg/observability"
	"github.com/matzehuels/depscan/pkg/report"
	"github.com/matzehuels/depscan/pkg/repository"
	"github.com/matzehuels/depscan/pkg/scaffold"
)

// CommunityDepAnalyzer reports the community dependencies of a product
// repository.
type CommunityDepAnalyzer struct {
	cfg *config.Config
	env Env
	// Exclusions filters extensions out of the scaffold by substring.
	// Defaults to scaffold.DefaultExclusions.
	Exclusions []string
}

// NewCommunityDepAnalyzer returns the analyzer for cfg. cfg must enable it.
func NewCommunityDepAnalyzer(cfg *config.Config, env Env) *CommunityDepAnalyzer {
	return &CommunityDepAnalyzer{cfg: cfg, env: env.withDefaults(), Exclusions: scaffold.DefaultExclusions}
}

// Name implements AddOn.
func (a *CommunityDepAnalyzer) Name() string { return config.CommunityDepAnalyzer }

// Trigger implements AddOn. Any failure aborts the run.
func (a *CommunityDepAnalyzer) Trigger(ctx context.Context) error {
	_, err := a.Analyze(ctx)
	return err
}

// Result describes one community dependency analysis.
type Result struct {
	RunID           string
	UpstreamVersion string
	// Extensions are the discovered extensions, Selected the artifact ids
	// declared in the scaffold after exclusions.
	Extensions []extension.Extension
	Selected   []string
	// Community are the community dependencies, sorted.
	Community []maven.Coordinate
	// Problematic are the vendor-branded BOM entries missing from the repository.
	Problematic []string
	// Outputs are the report files written, in order.
	Outputs  []string
	Duration time.Duration
}

// Analyze runs the analysis and writes the reports to the extras path:
// the raw dependency tree, the community dependency CSV and the list of
// missing BOM entries. Each report is written whole or not at all.
func (a *CommunityDepAnalyzer) Analyze(ctx context.Context) (*Result, error) {
	opts := a.cfg.AddOns.CommunityDeps
	if opts == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "%s is not configured", a.Name())
	}
	if a.cfg.RepositoryZip == "" {
		return nil, errors.New(errors.ErrCodePrecondition,
			"no repository data available for the analysis, generate the repository first")
	}

	start := time.Now()
	res := &Result{RunID: uuid.NewString()}
	logger := a.env.Logger.With("run", res.RunID)
	logger.Info("Starting community dependency analysis", "repository", a.cfg.RepositoryZip, "extras", a.cfg.ExtrasPath)

	work, err := os.MkdirTemp(a.env.WorkDir, "depscan-"+res.RunID[:8]+"-")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "failed to create work directory")
	}
	defer os.RemoveAll(work)

	var repo *repository.Repository
	err = a.stage(ctx, "unpack", func() error {
		repo, err = repository.Unpack(a.cfg.RepositoryZip, filepath.Join(work, "repoZipForDepAnalysis"))
		if err != nil {
			return err
		}
		res.UpstreamVersion, err = repo.UpstreamVersion()
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Unpacked repository", "entries", len(repo.Entries), "version", res.UpstreamVersion)

	gen := scaffold.New(a.env.Runner, repo.Root, logger)
	gen.WorkDir = work
	if a.cfg.Maven != "" {
		gen.Maven = a.cfg.Maven
	}
	if opts.AdditionalRepository != "" {
		if gen.Settings, err = scaffold.WriteSettings(work, opts.AdditionalRepository); err != nil {
			return nil, err
		}
		logger.Debug("Using additional repository", "url", opts.AdditionalRepository, "settings", gen.Settings)
	}

	err = a.stage(ctx, "discover", func() error {
		d := extension.NewDiscoverer(extension.Config{
			Root:            repo.Root,
			Skip:            opts.SkippedExtensions,
			DescriptorName:  extension.DescriptorName(a.cfg.Flow.RepositoryGeneration.BOMArtifactID, res.UpstreamVersion),
			VendorNamespace: a.cfg.VendorNamespace,
			Cache:           a.env.Cache,
			Logger:          logger,
		})
		res.Extensions, err = d.Discover(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	res.Selected = scaffold.Select(extension.IDs(res.Extensions), a.Exclusions)
	logger.Info("Selected extensions", "discovered", len(res.Extensions), "selected", len(res.Selected))

	var tree []string
	err = a.stage(ctx, "scaffold", func() error {
		project, err := gen.Generate(ctx, res.UpstreamVersion, res.Selected)
		if err != nil {
			return err
		}
		if err := gen.Build(ctx, project); err != nil {
			return err
		}
		tree, err = gen.DependencyTree(ctx, project)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(a.cfg.ExtrasPath, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "failed to create %s", a.cfg.ExtrasPath)
	}
	write := func(name string, fn func(path string) error) error {
		path := filepath.Join(a.cfg.ExtrasPath, name)
		if err := fn(path); err != nil {
			return err
		}
		res.Outputs = append(res.Outputs, path)
		return nil
	}

	classifier := maven.NewClassifier(a.cfg.VendorMarker)
	err = a.stage(ctx, "classify", func() error {
		if err := write(report.TreeText, func(p string) error { return report.WriteLines(p, tree) }); err != nil {
			return err
		}
		res.Community = classifier.Community(maven.ParseTree(tree, logger)).Sorted()
		return write(report.CommunityCSV, func(p string) error { return report.WriteCommunityCSV(p, res.Community) })
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Community dependencies found", "count", len(res.Community))

	err = a.stage(ctx, "bom", func() error {
		checker := bom.NewChecker(repo, classifier, logger)
		res.Problematic = checker.Gather(bom.Locations(a.cfg.VendorNamespace, a.cfg.ProductBOM(), opts.CheckDeploymentBOMs))
		return write(report.ProblematicText, func(p string) error { return report.WriteLines(p, res.Problematic) })
	})
	if err != nil {
		return nil, err
	}
	if len(res.Problematic) > 0 {
		logger.Warn("BOM entries missing from the repository", "count", len(res.Problematic))
	}

	res.Duration = time.Since(start)
	logger.Info("Community dependency analysis finished", "outputs", len(res.Outputs), "duration", res.Duration.Round(time.Millisecond))
	return res, nil
}

// stage runs fn as a named stage, reporting it to the analysis hooks.
func (a *CommunityDepAnalyzer) stage(ctx context.Context, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := observability.Stage(ctx, a.Name(), name)
	err := fn()
	done(err)
	if err != nil {
		a.env.Logger.Debug("stage failed", "stage", name, "error", err)
	}
	return err
}

var _ AddOn = (*CommunityDepAnalyzer)(nil)
