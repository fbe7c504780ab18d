// Package postbuild compares the artifact lists of the two most recent
// builds published on a staging server.
//
// The staging directory for a product is an HTML listing with one
// subdirectory per build. Sorted by modification time, the first build is
// the latest and the second the one before it. For both builds the
// comparison downloads:
//
//	extras/community-dependencies.csv
//	extras/repository-artifact-list.txt
//	extras/nonexistent-redhat-deps.txt
//	<license bundle>.zip   (first listing entry containing "license")
//
// and reports what was added or removed, one line per check.
package postbuild

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depscan/pkg/errors"
	"github.com/matzehuels/depscan/pkg/report"
	"github.com/matzehuels/depscan/pkg/repository"
)

// Fetcher retrieves remote resources. *httputil.Client implements it.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
	Download(ctx context.Context, url, dst string) error
}

// Build is one published build directory.
type Build struct {
	Name string
	URL  string // ends with "/"
}

// Comparator compares the latest build of a product with the previous one.
type Comparator struct {
	// StagingPath is the staging server URL holding one directory per product.
	StagingPath string
	// ProductName is the product directory, also matched against build names.
	ProductName string
	Fetcher     Fetcher
	// WorkDir receives downloads. Defaults to a new temporary directory.
	WorkDir string
	Logger  *log.Logger
}

// Builds returns the latest and the previous build from the product listing.
// Fewer than two builds is a PRECONDITION_FAILED error.
func (c *Comparator) Builds(ctx context.Context) (latest, old Build, err error) {
	productURL := join(c.StagingPath, c.ProductName) + "/"
	page, err := c.Fetcher.Get(ctx, productURL+sortByModifiedDesc)
	if err != nil {
		return Build{}, Build{}, err
	}
	links, err := Links(page)
	if err != nil {
		return Build{}, Build{}, err
	}
	builds := Matching(links, c.ProductName)
	if len(builds) < 2 {
		return Build{}, Build{}, errors.New(errors.ErrCodePrecondition,
			"need two %s builds in %s to compare, found %d", c.ProductName, productURL, len(builds))
	}
	mk := func(href string) Build {
		return Build{Name: strings.TrimSuffix(href, "/"), URL: withSlash(join(productURL, href))}
	}
	return mk(builds[0]), mk(builds[1]), nil
}

// Compare returns the report lines for the latest build against the previous one.
func (c *Comparator) Compare(ctx context.Context) ([]string, error) {
	latest, old, err := c.Builds(ctx)
	if err != nil {
		return nil, err
	}
	c.logger().Info("Latest build path", "url", latest.URL)
	c.logger().Info("Old build path", "url", old.URL)

	work := c.WorkDir
	if work == "" {
		if work, err = os.MkdirTemp("", "post-build-"); err != nil {
			return nil, errors.Wrap(errors.ErrCodeIO, err, "failed to create download directory")
		}
		defer os.RemoveAll(work)
	}

	var lines []string
	deps, err := c.diffDepsCSV(ctx, work, latest, old)
	if err != nil {
		return nil, err
	}
	lines = append(lines, deps...)

	for _, f := range []struct{ path, kind string }{
		{"extras/" + report.ArtifactListText, "artifacts"},
		{"extras/" + report.ProblematicText, "nonexistent-redhat-deps"},
	} {
		line, err := c.diffTextFiles(ctx, work, latest, old, f.path, f.kind)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	lic, err := c.diffLicenses(ctx, work, latest, old)
	if err != nil {
		return nil, err
	}
	return append(lines, lic), nil
}

// Run compares the builds and writes the report to extrasPath.
func (c *Comparator) Run(ctx context.Context, extrasPath string) (string, error) {
	lines, err := c.Compare(ctx)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(extrasPath, 0o755); err != nil {
		return "", errors.Wrap(errors.ErrCodeIO, err, "failed to create %s", extrasPath)
	}
	out := filepath.Join(extrasPath, report.PostBuildText)
	if err := report.WriteLines(out, lines); err != nil {
		return "", err
	}
	return out, nil
}

// diffDepsCSV reports community dependencies added in and removed from the
// latest build.
func (c *Comparator) diffDepsCSV(ctx context.Context, work string, latest, old Build) ([]string, error) {
	const csvPath = "extras/" + report.CommunityCSV
	column := func(b Build, name string) (map[string]struct{}, error) {
		data, err := c.fetch(ctx, b.URL+csvPath, filepath.Join(work, name))
		if err != nil {
			return nil, err
		}
		return report.ReadColumn(bytes.NewReader(data), report.CommunityColumn)
	}
	newDeps, err := column(latest, "new_dependencies.csv")
	if err != nil {
		return nil, err
	}
	oldDeps, err := column(old, "old_dependencies.csv")
	if err != nil {
		return nil, err
	}

	added := "Community Dependencies present in new build which were not present in old build are " +
		formatSet(subtract(newDeps, oldDeps))
	removed := "Community Dependencies present in old build which are not present in new build are " +
		formatSet(subtract(oldDeps, newDeps))
	c.logger().Info("Build info for new build", "diff", added)
	c.logger().Info("Build info for old build", "diff", removed)
	return []string{added, removed}, nil
}

// diffTextFiles reports the lines of path present in the latest build only.
func (c *Comparator) diffTextFiles(ctx context.Context, work string, latest, old Build, path, kind string) (string, error) {
	newData, err := c.fetch(ctx, latest.URL+path, filepath.Join(work, "latest_"+kind+".txt"))
	if err != nil {
		return "", err
	}
	oldData, err := c.fetch(ctx, old.URL+path, filepath.Join(work, "old_"+kind+".txt"))
	if err != nil {
		return "", err
	}
	equal := bytes.Equal(newData, oldData)
	c.logger().Info("Compared "+kind, "equal", equal)
	if equal {
		return "The " + kind + " files are equal", nil
	}

	newLines, err := report.ReadLines(bytes.NewReader(newData))
	if err != nil {
		return "", err
	}
	oldLines, err := report.ReadLines(bytes.NewReader(oldData))
	if err != nil {
		return "", err
	}
	return kind + " present in new build and not present in old build are " + formatSet(subtract(newLines, oldLines)), nil
}

// diffLicenses reports license names present in the latest build only.
func (c *Comparator) diffLicenses(ctx context.Context, work string, latest, old Build) (string, error) {
	names := func(b Build, name string) (map[string]struct{}, error) {
		page, err := c.Fetcher.Get(ctx, b.URL)
		if err != nil {
			return nil, err
		}
		links, err := Links(page)
		if err != nil {
			return nil, err
		}
		bundles := Matching(links, "license")
		if len(bundles) == 0 {
			return nil, errors.New(errors.ErrCodeNotFound, "no license bundle in %s", b.URL)
		}
		zipPath := filepath.Join(work, name)
		if err := c.Fetcher.Download(ctx, join(b.URL, bundles[0]), zipPath); err != nil {
			return nil, err
		}
		xmlPath := filepath.Join(work, strings.TrimSuffix(name, ".zip")+"-"+LicensesEntry)
		if err := repository.ExtractEntry(zipPath, LicensesEntry, xmlPath); err != nil {
			return nil, err
		}
		f, err := os.Open(xmlPath)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeIO, err, "failed to open %s", xmlPath)
		}
		defer f.Close()
		return LicenseNames(f)
	}
	newNames, err := names(latest, "latest.zip")
	if err != nil {
		return "", err
	}
	oldNames, err := names(old, "old.zip")
	if err != nil {
		return "", err
	}
	added := subtract(newNames, oldNames)
	if len(added) == 0 {
		return "There is no new licenses added in the build compared to the previous build", nil
	}
	return "The new licenses added to this build are " + formatSet(added), nil
}

// fetch downloads url to dst and returns its contents.
func (c *Comparator) fetch(ctx context.Context, url, dst string) ([]byte, error) {
	if err := c.Fetcher.Download(ctx, url, dst); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "failed to read %s", dst)
	}
	return data, nil
}

func (c *Comparator) logger() *log.Logger {
	if c.Logger == nil {
		return log.Default()
	}
	return c.Logger
}

// subtract returns the sorted elements of a that are not in b.
func subtract(a, b map[string]struct{}) []string {
	var out []string
	for k := range a {
		if _, ok := b[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// formatSet renders values as "[a, b]".
func formatSet(values []string) string {
	return "[" + strings.Join(values, ", ") + "]"
}
