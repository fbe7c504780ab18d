// Package scaffold generates, builds and inspects a throwaway application
// that depends on a set of platform extensions.
//
// The build tool is driven through a [command.Runner]; this package only
// shapes the command lines. All commands resolve artifacts exclusively from
// the unpacked repository (-Dmaven.repo.local) and, when configured, from
// one additional repository declared in a generated settings.xml.
//
// No timeout is imposed on the build tool. A hung build blocks until the
// context is cancelled.
package scaffold

import (
	"context"
	_ "embed"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depscan/pkg/command"
	"github.com/matzehuels/depscan/pkg/errors"
	"github.com/matzehuels/depscan/pkg/observability"
)

// ProjectName is the group and artifact id of the generated application,
// and the directory it is created in.
const ProjectName = "tmp"

// PlatformArtifactID is the platform BOM the scaffold imports.
const PlatformArtifactID = "quarkus-bom"

// DefaultMaven is the build tool executable.
const DefaultMaven = "mvn"

//go:embed settings-template.xml
var settingsTemplate string

// repoURLPlaceholder is replaced by the additional repository URL.
const repoURLPlaceholder = "ADD_REPO_URL"

// Generator drives the build tool for one repository.
type Generator struct {
	Runner command.Runner
	// Maven is the build tool executable. Defaults to DefaultMaven.
	Maven string
	// RepoRoot is the local repository every command resolves from.
	RepoRoot string
	// Settings is an optional settings.xml path passed with -s.
	Settings string
	// WorkDir is where scaffold projects are created. Defaults to os.TempDir().
	WorkDir string
	Logger  *log.Logger
}

// New returns a Generator running commands through runner against repoRoot.
func New(runner command.Runner, repoRoot string, logger *log.Logger) *Generator {
	if logger == nil {
		logger = log.Default()
	}
	return &Generator{Runner: runner, Maven: DefaultMaven, RepoRoot: repoRoot, Logger: logger}
}

// RenderSettings returns the settings template with the additional
// repository URL filled in.
func RenderSettings(additionalRepository string) string {
	return strings.ReplaceAll(settingsTemplate, repoURLPlaceholder, additionalRepository)
}

// WriteSettings writes the rendered settings for additionalRepository to a
// new file in dir and returns its path.
func WriteSettings(dir, additionalRepository string) (string, error) {
	f, err := os.CreateTemp(dir, "settings-for-dep-analysis-*.xml")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeIO, err, "failed to prepare settings.xml to pass the additional repository")
	}
	defer f.Close()
	if _, err := f.WriteString(RenderSettings(additionalRepository)); err != nil {
		return "", errors.Wrap(errors.ErrCodeIO, err, "failed to prepare settings.xml to pass the additional repository")
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrap(errors.ErrCodeIO, err, "failed to prepare settings.xml to pass the additional repository")
	}
	return f.Name(), nil
}

// repoArgs are appended to every command.
func (g *Generator) repoArgs() []string {
	args := []string{"-Dmaven.repo.local=" + g.RepoRoot}
	if g.Settings != "" {
		args = append(args, "-s", g.Settings)
	}
	return args
}

func (g *Generator) maven() string {
	if g.Maven == "" {
		return DefaultMaven
	}
	return g.Maven
}

// CreateCommand returns the command creating a scaffold for the platform
// version with the given extensions.
func (g *Generator) CreateCommand(version string, extensions []string) command.Command {
	return command.New(g.maven(),
		"-X",
		"io.quarkus:quarkus-maven-plugin:"+version+":create",
		"-DprojectGroupId="+ProjectName,
		"-DprojectArtifactId="+ProjectName,
		"-DplatformArtifactId="+PlatformArtifactID,
		"-DplatformVersion="+version,
		"-Dextensions="+strings.Join(extensions, ","),
	).With(g.repoArgs()...)
}

// BuildCommand returns the command packaging the scaffold without tests.
func (g *Generator) BuildCommand() command.Command {
	return command.New(g.maven(), "-Dmaven.test.skip=true", "-B", "clean", "package").With(g.repoArgs()...)
}

// TreeCommand returns the command printing the scaffold's dependency tree.
func (g *Generator) TreeCommand() command.Command {
	return command.New(g.maven(), "dependency:tree").With(g.repoArgs()...)
}

// Generate creates a scaffold for version with extensions in a new
// directory below WorkDir and returns the project directory.
func (g *Generator) Generate(ctx context.Context, version string, extensions []string) (string, error) {
	parent, err := os.MkdirTemp(g.WorkDir, "q-dep-analysis-generated-project-")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeIO, err, "failed to create scaffold directory")
	}
	cmd := g.CreateCommand(version, extensions)
	g.Logger.Info("Creating scaffold project", "dir", parent, "extensions", len(extensions))
	g.Logger.Debug("will create project with", "command", cmd.String())
	if _, err := g.run(ctx, cmd, parent); err != nil {
		return "", err
	}
	return filepath.Join(parent, ProjectName), nil
}

// Build packages the project in dir.
func (g *Generator) Build(ctx context.Context, dir string) error {
	g.Logger.Info("Building the project", "dir", dir)
	_, err := g.run(ctx, g.BuildCommand(), dir)
	return err
}

// DependencyTree returns the raw dependency:tree output of the project in dir.
func (g *Generator) DependencyTree(ctx context.Context, dir string) ([]string, error) {
	return g.run(ctx, g.TreeCommand(), dir)
}

func (g *Generator) run(ctx context.Context, cmd command.Command, dir string) ([]string, error) {
	start := time.Now()
	lines, err := g.Runner.Run(ctx, cmd, dir)
	observability.Analysis().OnCommand(ctx, command.Summary(cmd), len(lines), time.Since(start), err)
	return lines, err
}
