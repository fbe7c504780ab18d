// Package report writes the analysis outputs: the community dependency CSV
// and plain line-oriented text files.
//
// Every writer goes through a temporary file in the target directory that is
// renamed into place only after it was written completely, so a failed stage
// never leaves a truncated report behind.
package report

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/depscan/pkg/errors"
	"github.com/matzehuels/depscan/pkg/maven"
)

// Output file names written to the extras directory.
const (
	CommunityCSV     = "community-dependencies.csv"
	TreeText         = "community-analysis-excluding-quarkus-micrometer-tree.txt"
	ProblematicText  = "nonexistent-redhat-deps.txt"
	ArtifactListText = "repository-artifact-list.txt"
	PostBuildText    = "post-build-info.txt"
)

// CommunityColumn is the first CSV column, holding the full coordinate.
const CommunityColumn = "Community dependencies"

// Delimiter separates CSV fields.
const Delimiter = ';'

var csvHeader = []string{CommunityColumn, "Group ID", "Artifact ID", "Version", "Type", "Classifier"}

// WriteCommunityCSV writes coords, one row each, in the given order.
func WriteCommunityCSV(path string, coords []maven.Coordinate) error {
	return writeAtomic(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		cw.Comma = Delimiter
		if err := cw.Write(csvHeader); err != nil {
			return err
		}
		for _, c := range coords {
			typ := c.Type
			if typ == "" {
				typ = maven.DefaultType
			}
			if err := cw.Write([]string{c.String(), c.GroupID, c.ArtifactID, c.Version, typ, c.Classifier}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

// ReadColumn returns the distinct values of column in a ';'-delimited CSV
// with a header row. A missing column is an INVALID_INPUT error.
func ReadColumn(r io.Reader, column string) (map[string]struct{}, error) {
	cr := csv.NewReader(r)
	cr.Comma = Delimiter
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return map[string]struct{}{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "malformed CSV header")
	}
	idx := -1
	for i, h := range header {
		if h == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "column %q not found", column)
	}

	values := make(map[string]struct{})
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "malformed CSV row")
		}
		if idx < len(rec) {
			values[rec[idx]] = struct{}{}
		}
	}
	return values, nil
}

// WriteLines writes lines separated by newlines, with a trailing newline
// after the last one.
func WriteLines(path string, lines []string) error {
	return writeAtomic(path, func(w io.Writer) error {
		bw := bufio.NewWriter(w)
		for _, l := range lines {
			if _, err := bw.WriteString(l); err != nil {
				return err
			}
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
		return bw.Flush()
	})
}

// ReadLines returns the distinct lines of r.
func ReadLines(r io.Reader) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		out[sc.Text()] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "failed to read lines")
	}
	return out, nil
}

func writeAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "failed to create %s", dir)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "failed to create %s", path)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if err := tmp.Chmod(0o644); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "failed to create %s", path)
	}
	if err := write(tmp); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "failed to write %s", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "failed to write %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "failed to write %s", path)
	}
	return nil
}
