package repository

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/matzehuels/depscan/pkg/errors"
)

// maxEntrySize bounds a single extracted entry to guard against zip bombs.
const maxEntrySize = 4 << 30

// HasEntry reports whether any entry name in the archive at path contains fragment.
func HasEntry(path, fragment string) (bool, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeIO, err, "failed to open archive %s", path)
	}
	defer r.Close()

	for _, f := range r.File {
		if strings.Contains(f.Name, fragment) {
			return true, nil
		}
	}
	return false, nil
}

// ReadEntry returns the contents of the first entry whose name ends with name.
// Returns a NOT_FOUND error if no entry matches.
func ReadEntry(path, name string) ([]byte, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "failed to open archive %s", path)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != name && !strings.HasSuffix(f.Name, "/"+name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeIO, err, "failed to open %s in %s", f.Name, path)
		}
		defer rc.Close()
		data, err := io.ReadAll(io.LimitReader(rc, maxEntrySize))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeIO, err, "failed to read %s in %s", f.Name, path)
		}
		return data, nil
	}
	return nil, errors.New(errors.ErrCodeNotFound, "%s not found in %s", name, path)
}

// ExtractEntry writes the first entry whose name ends with name to dst.
func ExtractEntry(path, name, dst string) error {
	data, err := ReadEntry(path, name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "failed to write %s", dst)
	}
	return nil
}

// extractAll unpacks every entry of the archive at path below dest and returns
// the entry names, using forward slashes. Entry names are validated before any
// file is created.
func extractAll(path, dest string) ([]string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "failed to open archive %s", path)
	}
	defer r.Close()

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		if err := errors.ValidateArchiveEntry(f.Name); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "refusing to extract %q", f.Name)
		}
		target := filepath.Join(dest, filepath.FromSlash(f.Name))
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return nil, errors.Wrap(errors.ErrCodeIO, err, "failed to create %s", target)
			}
			continue
		}
		if err := extractFile(f, target); err != nil {
			return nil, err
		}
		names = append(names, f.Name)
	}
	return names, nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "failed to create %s", filepath.Dir(target))
	}
	rc, err := f.Open()
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "failed to open %s", f.Name)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "failed to create %s", target)
	}
	defer out.Close()

	if _, err := io.Copy(out, io.LimitReader(rc, maxEntrySize)); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "failed to extract %s", f.Name)
	}
	if err := out.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "failed to extract %s", f.Name)
	}
	// Scan results are cached by size and modification time, so unpacking the
	// same archive again must reproduce both.
	if mod := f.Modified; !mod.IsZero() {
		if err := os.Chtimes(target, mod, mod); err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "failed to set times of %s", target)
		}
	}
	return nil
}
