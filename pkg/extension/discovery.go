// Package extension discovers the platform extensions shipped in a Maven
// repository.
//
// An extension is a jar carrying the metadata entry
// "META-INF/quarkus-extension.properties". Only extensions that are also listed
// in the vendor's platform descriptor, and not explicitly skipped, are
// reported:
//
//	d := extension.NewDiscoverer(extension.Config{
//	    Root:           repo.Root,
//	    DescriptorName: extension.DescriptorName(bom, version),
//	    Skip:           []string{"quarkus-jdbc-oracle"},
//	})
//	exts, err := d.Discover(ctx)
package extension

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/ini.v1"

	"github.com/matzehuels/depscan/pkg/cache"
	"github.com/matzehuels/depscan/pkg/errors"
	"github.com/matzehuels/depscan/pkg/observability"
	"github.com/matzehuels/depscan/pkg/repository"
)

// DefaultMarker is the archive entry that identifies an extension jar.
const DefaultMarker = "META-INF/quarkus-extension.properties"

// deploymentKey is the marker property naming the extension's deployment artifact.
const deploymentKey = "deployment-artifact"

// Config configures a Discoverer.
type Config struct {
	// Root is the maven-repository directory to walk.
	Root string
	// Marker is the archive entry identifying extension jars. Defaults to DefaultMarker.
	Marker string
	// Skip lists artifact ids to leave out, matched exactly.
	Skip []string
	// DescriptorName is the exact file name of the platform descriptor.
	DescriptorName string
	// VendorNamespace must appear in the descriptor's directory path.
	// Defaults to DefaultVendorNamespace.
	VendorNamespace string
	// Cache memoizes marker scans between runs. Nil disables caching.
	Cache cache.Cache
	// Logger receives progress and warnings. Nil uses log.Default().
	Logger *log.Logger
}

// Extension is a discovered extension jar.
type Extension struct {
	// ArtifactID is the name of the jar's grandparent directory.
	ArtifactID string
	// Path is the jar path relative to the repository root, slash-separated.
	Path string
	// Deployment is the deployment artifact declared in the marker
	// properties, empty if absent.
	Deployment string
}

// Discoverer finds extension jars in a repository.
type Discoverer struct {
	cfg  Config
	skip map[string]struct{}
}

// NewDiscoverer returns a Discoverer for cfg, filling defaults.
func NewDiscoverer(cfg Config) *Discoverer {
	if cfg.Marker == "" {
		cfg.Marker = DefaultMarker
	}
	if cfg.VendorNamespace == "" {
		cfg.VendorNamespace = DefaultVendorNamespace
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.NewNullCache()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	skip := make(map[string]struct{}, len(cfg.Skip))
	for _, s := range cfg.Skip {
		skip[s] = struct{}{}
	}
	return &Discoverer{cfg: cfg, skip: skip}
}

// Discover walks the repository and returns the extensions that carry the
// marker, appear in the platform descriptor and are not skipped. The result is
// in walk order (lexical by path) and holds each artifact id once.
//
// Exactly one descriptor named Config.DescriptorName must exist below a
// directory containing Config.VendorNamespace; anything else is a
// PRECONDITION_FAILED error. Walk and archive errors are returned as IO_ERROR.
func (d *Discoverer) Discover(ctx context.Context) ([]Extension, error) {
	jars, descriptors, err := d.walk()
	if err != nil {
		return nil, err
	}
	if len(descriptors) != 1 {
		return nil, errors.New(errors.ErrCodePrecondition,
			"expected a single %s below %s in the repository, found %d",
			d.cfg.DescriptorName, d.cfg.VendorNamespace, len(descriptors))
	}

	data, err := os.ReadFile(filepath.Join(d.cfg.Root, filepath.FromSlash(descriptors[0])))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "unable to read %s", descriptors[0])
	}
	listed, err := ParseDescriptor(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "unable to read extensions from %s", descriptors[0])
	}
	d.cfg.Logger.Debug("platform descriptor loaded", "path", descriptors[0], "extensions", len(listed))

	var (
		out  []Extension
		seen = make(map[string]struct{})
	)
	for _, rel := range jars {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id := artifactID(rel)
		if _, ok := listed[id]; !ok {
			continue
		}
		if _, ok := d.skip[id]; ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		isExt, err := d.hasMarker(ctx, rel)
		if err != nil {
			return nil, err
		}
		if !isExt {
			continue
		}
		seen[id] = struct{}{}
		ext := Extension{ArtifactID: id, Path: rel, Deployment: d.deployment(rel)}
		d.cfg.Logger.Debug("extension found", "artifact", id, "deployment", ext.Deployment)
		out = append(out, ext)
	}
	return out, nil
}

// walk collects jar paths and matching descriptor paths, both relative to
// the root and in lexical order.
func (d *Discoverer) walk() (jars, descriptors []string, err error) {
	err = filepath.WalkDir(d.cfg.Root, func(p string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if e.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(d.cfg.Root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		switch {
		case strings.HasSuffix(rel, ".jar"):
			jars = append(jars, rel)
		case e.Name() == d.cfg.DescriptorName && strings.Contains(path.Dir(rel), d.cfg.VendorNamespace):
			descriptors = append(descriptors, rel)
		}
		return nil
	})
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeIO, err, "failed to walk through repository contents: %s", d.cfg.Root)
	}
	return jars, descriptors, nil
}

// hasMarker reports whether the jar at rel contains the marker entry,
// consulting the cache first.
func (d *Discoverer) hasMarker(ctx context.Context, rel string) (bool, error) {
	abs := filepath.Join(d.cfg.Root, filepath.FromSlash(rel))
	info, err := os.Stat(abs)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeIO, err, "failed to stat %s", rel)
	}
	key := cache.ScanKey(d.cfg.Marker, rel, info.Size(), info.ModTime())
	if data, hit, err := d.cfg.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "scan")
		return string(data) == "1", nil
	}
	observability.Cache().OnCacheMiss(ctx, "scan")

	found, err := repository.HasEntry(abs, d.cfg.Marker)
	if err != nil {
		return false, err
	}
	val := []byte("0")
	if found {
		val = []byte("1")
	}
	if err := d.cfg.Cache.Set(ctx, key, val, 0); err != nil {
		d.cfg.Logger.Warn("failed to cache scan result", "path", rel, "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "scan", len(val))
	}
	return found, nil
}

// deployment reads the deployment artifact from the jar's marker properties.
// Read failures are logged and yield "".
func (d *Discoverer) deployment(rel string) string {
	abs := filepath.Join(d.cfg.Root, filepath.FromSlash(rel))
	data, err := repository.ReadEntry(abs, d.cfg.Marker)
	if err != nil {
		d.cfg.Logger.Warn("unable to read extension properties", "path", rel, "error", err)
		return ""
	}
	props, err := ini.LoadSources(ini.LoadOptions{KeyValueDelimiters: "="}, data)
	if err != nil {
		d.cfg.Logger.Warn("malformed extension properties", "path", rel, "error", err)
		return ""
	}
	return props.Section("").Key(deploymentKey).String()
}

// artifactID returns the grandparent directory name of a jar path:
// group/path/<artifact>/<version>/<file>.jar.
func artifactID(rel string) string {
	return path.Base(path.Dir(path.Dir(rel)))
}

// IDs returns the artifact ids of exts in order.
func IDs(exts []Extension) []string {
	ids := make([]string, len(exts))
	for i, e := range exts {
		ids[i] = e.ArtifactID
	}
	return ids
}
