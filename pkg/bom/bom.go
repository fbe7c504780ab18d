// Package bom cross-references the dependencyManagement section of a BOM
// against the artifacts present in a Maven repository.
//
// Every managed dependency whose resolved version carries the vendor marker
// must have its jar in the repository. Those that do not are reported in the
// form used by the release tooling:
//
//	'com.example:lib:1.0.0.redhat-00001:',
package bom

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"deps.dev/util/maven"
	"github.com/charmbracelet/log"
	"golang.org/x/net/html/charset"

	"github.com/matzehuels/depscan/pkg/errors"
	"github.com/matzehuels/depscan/pkg/extension"
	depmaven "github.com/matzehuels/depscan/pkg/maven"
	"github.com/matzehuels/depscan/pkg/repository"
)

// Location names a BOM and the repository pattern that locates its POM.
type Location struct {
	Name    string
	Pattern *regexp.Regexp
}

func location(path string) Location {
	name := path[strings.LastIndex(path, "/")+1:]
	return Location{
		Name:    name,
		Pattern: regexp.MustCompile(`^` + regexp.QuoteMeta(path) + `/[^/]+/[^/]+\.pom$`),
	}
}

var (
	runtimeBOM    = location("io/quarkus/quarkus-bom")
	deploymentBOM = location("io/quarkus/quarkus-bom-deployment")
)

// productLocations returns the product BOM and product deployment BOM under
// the vendor namespace, a slash-separated repository path such as
// "com/redhat". An empty namespace uses [extension.DefaultVendorNamespace].
func productLocations(namespace string) (Location, Location) {
	namespace = strings.Trim(namespace, "/")
	if namespace == "" {
		namespace = extension.DefaultVendorNamespace
	}
	return location(namespace + "/quarkus/quarkus-product-bom"),
		location(namespace + "/quarkus/quarkus-product-bom-deployment")
}

// Locations returns the BOMs to check. The runtime BOM is always included,
// product BOMs under namespace only when product is set, and deployment BOMs
// only when deployment is set.
func Locations(namespace string, product, deployment bool) []Location {
	productBOM, productDeploymentBOM := productLocations(namespace)
	locs := []Location{runtimeBOM}
	if product {
		locs = append(locs, productBOM)
	}
	if deployment {
		locs = append(locs, deploymentBOM)
		if product {
			locs = append(locs, productDeploymentBOM)
		}
	}
	return locs
}

// Checker checks BOMs against a repository.
type Checker struct {
	Repo       *repository.Repository
	Classifier depmaven.Classifier
	Logger     *log.Logger
}

// NewChecker returns a Checker for repo. A nil logger uses log.Default().
func NewChecker(repo *repository.Repository, classifier depmaven.Classifier, logger *log.Logger) *Checker {
	if logger == nil {
		logger = log.Default()
	}
	return &Checker{Repo: repo, Classifier: classifier, Logger: logger}
}

// Gather checks every BOM in locs and returns the merged missing entries,
// sorted and without duplicates. A BOM that cannot be located, read or parsed
// is logged at error level and contributes nothing.
func (c *Checker) Gather(locs []Location) []string {
	merged := make(map[string]struct{})
	for _, loc := range locs {
		missing, err := c.CheckLocation(loc)
		if err != nil {
			c.Logger.Error("unable to check BOM references", "bom", loc.Name, "error", err)
			continue
		}
		c.Logger.Debug("BOM checked", "bom", loc.Name, "missing", len(missing))
		for _, m := range missing {
			merged[m] = struct{}{}
		}
	}
	out := make([]string, 0, len(merged))
	for m := range merged {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// CheckLocation finds the first POM matching loc and checks it.
// Returns a NOT_FOUND error when the repository holds no such BOM.
func (c *Checker) CheckLocation(loc Location) ([]string, error) {
	found := c.Repo.Find(loc.Pattern)
	if len(found) == 0 {
		return nil, errors.New(errors.ErrCodeNotFound, "%s not found in the repository", loc.Name)
	}
	if len(found) > 1 {
		c.Logger.Warn("several BOM versions present, checking the first", "bom", loc.Name, "path", found[0])
	}
	return c.Check(found[0])
}

// Check returns the vendor-branded managed dependencies of the BOM at the
// repository path rel whose jar is missing, formatted by [Format]. The result
// is sorted and holds each entry once.
func (c *Checker) Check(rel string) ([]string, error) {
	f, err := os.Open(c.Repo.Abs(rel))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "failed to open %s", rel)
	}
	defer f.Close()

	project, err := Parse(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parsing error in %s", rel)
	}
	props := properties(project)

	seen := make(map[string]struct{})
	var out []string
	for _, dep := range project.DependencyManagement.Dependencies {
		version := resolve(string(dep.Version), props)
		if !c.Classifier.IsVendorVersion(version) {
			continue
		}
		// Declared types are not trusted; the jar is what must be present.
		coord, err := depmaven.NewCoordinate(string(dep.GroupID), string(dep.ArtifactID), version,
			depmaven.DefaultType, string(dep.Classifier))
		if err != nil {
			c.Logger.Warn("skipping incomplete managed dependency", "bom", rel, "error", err)
			continue
		}
		if c.Repo.Exists(coord.Path()) {
			continue
		}
		entry := Format(coord)
		if _, ok := seen[entry]; !ok {
			seen[entry] = struct{}{}
			out = append(out, entry)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Format renders a missing artifact as 'group:artifact:version:classifier',
// with an empty classifier field when there is none.
func Format(c depmaven.Coordinate) string {
	return fmt.Sprintf("'%s:%s:%s:%s',", c.GroupID, c.ArtifactID, c.Version, c.Classifier)
}

// Parse decodes a POM. Non-UTF-8 charsets and HTML entities are accepted.
func Parse(r io.Reader) (*maven.Project, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	dec.Entity = xml.HTMLEntity

	var project maven.Project
	if err := dec.Decode(&project); err != nil {
		return nil, err
	}
	return &project, nil
}

// properties returns the property table of project, including the
// project.version built-ins.
func properties(project *maven.Project) map[string]string {
	props := make(map[string]string, len(project.Properties.Properties)+2)
	if v := string(project.Version); v != "" {
		props["project.version"] = v
		props["pom.version"] = v
	}
	for _, p := range project.Properties.Properties {
		props[string(p.Name)] = string(p.Value)
	}
	return props
}

// resolve replaces a whole-value ${name} reference with its property value.
// Unknown properties resolve to "". Literal versions pass through.
func resolve(version string, props map[string]string) string {
	name, ok := strings.CutPrefix(version, "${")
	if !ok {
		return version
	}
	name, ok = strings.CutSuffix(name, "}")
	if !ok {
		return version
	}
	return props[name]
}
