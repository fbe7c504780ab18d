// Package repository gives access to an unpacked Maven repository archive.
//
// A product repository is shipped as a zip whose artifacts live below a
// "maven-repository" directory:
//
//	quarkus-2.2.3-maven-repository/
//	    maven-repository/
//	        io/quarkus/quarkus-core/2.2.3.redhat-00001/quarkus-core-2.2.3.redhat-00001.jar
//	        ...
//
// [Unpack] extracts such an archive and returns a [Repository] rooted at that
// directory. Entry paths are kept relative to the root with forward slashes so
// they can be matched against layout patterns on any platform.
package repository

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/matzehuels/depscan/pkg/errors"
)

// ContentsDir is the directory inside a repository archive holding the artifacts.
const ContentsDir = "maven-repository"

// coreJar matches the upstream core jar and captures its version directory.
var coreJar = regexp.MustCompile(`^io/quarkus/quarkus-core/([^/]+)/[^/]+\.jar$`)

// Repository is an unpacked Maven repository.
type Repository struct {
	// Root is the absolute path of the maven-repository directory.
	Root string
	// Entries are the files below Root, relative, slash-separated and sorted.
	Entries []string
}

// Unpack extracts the zip archive at zipPath into dest and locates the
// maven-repository directory inside it.
//
// Returns a PRECONDITION_FAILED error when the archive holds no
// maven-repository directory, and IO_ERROR or INVALID_PATH errors when
// extraction fails. Nothing is left half-written in a usable state on error;
// callers own dest and should remove it.
func Unpack(zipPath, dest string) (*Repository, error) {
	if _, err := os.Stat(zipPath); err != nil {
		return nil, errors.Wrap(errors.ErrCodePrecondition, err, "repository archive %s is not available", zipPath)
	}
	names, err := extractAll(zipPath, dest)
	if err != nil {
		return nil, err
	}

	prefix, ok := contentsPrefix(names)
	if !ok {
		return nil, errors.New(errors.ErrCodePrecondition, "no %s directory in %s", ContentsDir, zipPath)
	}
	var entries []string
	for _, n := range names {
		if rel, found := strings.CutPrefix(n, prefix); found && rel != "" {
			entries = append(entries, rel)
		}
	}
	sort.Strings(entries)

	root, err := filepath.Abs(filepath.Join(dest, filepath.FromSlash(prefix)))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "failed to resolve %s", prefix)
	}
	return &Repository{Root: root, Entries: entries}, nil
}

// Open returns a Repository for an already unpacked maven-repository
// directory, listing its files.
func Open(root string) (*Repository, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "failed to resolve %s", root)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, errors.New(errors.ErrCodePrecondition, "repository directory %s does not exist", root)
	}

	var entries []string
	err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(abs, p)
		if err != nil {
			return err
		}
		entries = append(entries, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "failed to walk through repository contents: %s", abs)
	}
	sort.Strings(entries)
	return &Repository{Root: abs, Entries: entries}, nil
}

// contentsPrefix returns the archive path up to and including the first
// maven-repository directory, with a trailing slash.
func contentsPrefix(names []string) (string, bool) {
	marker := ContentsDir + "/"
	for _, n := range names {
		if strings.HasPrefix(n, marker) {
			return marker, true
		}
		if i := strings.Index(n, "/"+marker); i >= 0 {
			return n[:i+len(marker)+1], true
		}
	}
	return "", false
}

// UpstreamVersion returns the version of the io.quarkus:quarkus-core jar.
// Returns a PRECONDITION_FAILED error when the repository holds none.
func (r *Repository) UpstreamVersion() (string, error) {
	for _, e := range r.Entries {
		if m := coreJar.FindStringSubmatch(e); m != nil {
			return m[1], nil
		}
	}
	return "", errors.New(errors.ErrCodePrecondition,
		"quarkus core not found in the repository, unable to determine the version")
}

// Find returns the entries matching pattern, in sorted order.
func (r *Repository) Find(pattern *regexp.Regexp) []string {
	var out []string
	for _, e := range r.Entries {
		if pattern.MatchString(e) {
			out = append(out, e)
		}
	}
	return out
}

// Abs returns the absolute filesystem path of the slash-separated entry rel.
func (r *Repository) Abs(rel string) string {
	return filepath.Join(r.Root, filepath.FromSlash(path.Clean(rel)))
}

// Exists reports whether the slash-separated path rel is a regular file.
func (r *Repository) Exists(rel string) bool {
	info, err := os.Stat(r.Abs(rel))
	return err == nil && info.Mode().IsRegular()
}
