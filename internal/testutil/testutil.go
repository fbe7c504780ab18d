// Package testutil builds on-disk fixtures shared by package tests:
// zip archives, jar files and Maven repository trees.
package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
)

// ExtensionMarker is the metadata entry carried by extension jars.
const ExtensionMarker = "META-INF/quarkus-extension.properties"

// FixtureTime is the modification time of every entry written by WriteZip.
var FixtureTime = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

// WriteZip creates a zip archive at path holding files (name -> content).
// Names ending in "/" become directory entries.
func WriteZip(t testing.TB, path string, files map[string]string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	names := make([]string, 0, len(files))
	for n := range files {
		names = append(names, n)
	}
	sort.Strings(names)

	w := zip.NewWriter(f)
	for _, n := range names {
		fw, err := w.CreateHeader(&zip.FileHeader{Name: n, Method: zip.Deflate, Modified: FixtureTime})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte(files[n])); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

// WriteFile writes content to root/rel, creating parent directories.
func WriteFile(t testing.TB, root, rel, content string) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

// ExtensionJar returns jar contents for an extension whose deployment
// artifact is deployment.
func ExtensionJar(deployment string) map[string]string {
	return map[string]string{
		"META-INF/MANIFEST.MF": "Manifest-Version: 1.0\n",
		ExtensionMarker:        "deployment-artifact=" + deployment + "\nname=Extension\n",
	}
}

// PlainJar returns jar contents without extension metadata.
func PlainJar() map[string]string {
	return map[string]string{
		"META-INF/MANIFEST.MF": "Manifest-Version: 1.0\n",
		"org/example/A.class":  "cafebabe",
	}
}

// Descriptor returns a platform descriptor JSON listing artifactIDs.
func Descriptor(artifactIDs ...string) string {
	s := `{"bom":{"groupId":"io.quarkus","artifactId":"quarkus-bom"},"extensions":[`
	for i, id := range artifactIDs {
		if i > 0 {
			s += ","
		}
		s += `{"artifactId":"` + id + `","groupId":"io.quarkus","name":"` + id + `"}`
	}
	return s + `]}`
}
