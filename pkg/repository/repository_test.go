package repository

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/depscan/internal/testutil"
	"github.com/matzehuels/depscan/pkg/errors"
)

func TestUnpack(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "repo.zip")
	testutil.WriteZip(t, zipPath, map[string]string{
		"quarkus-1.2.3-maven-repository/": "",
		"quarkus-1.2.3-maven-repository/maven-repository/io/quarkus/quarkus-core/1.2.3/quarkus-core-1.2.3.jar": "jar",
		"quarkus-1.2.3-maven-repository/maven-repository/io/quarkus/quarkus-core/1.2.3/quarkus-core-1.2.3.pom": "pom",
		"quarkus-1.2.3-maven-repository/maven-repository/io/quarkus/quarkus-bom/1.2.3/quarkus-bom-1.2.3.pom":   "bom",
		"quarkus-1.2.3-maven-repository/LICENSE": "license",
	})

	repo, err := Unpack(zipPath, filepath.Join(dir, "out"))
	if err != nil {
		t.Fatalf("Unpack() error: %v", err)
	}

	want := []string{
		"io/quarkus/quarkus-bom/1.2.3/quarkus-bom-1.2.3.pom",
		"io/quarkus/quarkus-core/1.2.3/quarkus-core-1.2.3.jar",
		"io/quarkus/quarkus-core/1.2.3/quarkus-core-1.2.3.pom",
	}
	if diff := cmp.Diff(want, repo.Entries); diff != "" {
		t.Errorf("Entries mismatch (-want +got):\n%s", diff)
	}
	if filepath.Base(repo.Root) != ContentsDir {
		t.Errorf("Root = %q, want a %s directory", repo.Root, ContentsDir)
	}
	if !repo.Exists("io/quarkus/quarkus-core/1.2.3/quarkus-core-1.2.3.jar") {
		t.Error("Exists() should find an extracted jar")
	}
	if repo.Exists("io/quarkus/quarkus-core/1.2.3") {
		t.Error("Exists() should be false for directories")
	}

	v, err := repo.UpstreamVersion()
	if err != nil {
		t.Fatalf("UpstreamVersion() error: %v", err)
	}
	if v != "1.2.3" {
		t.Errorf("UpstreamVersion() = %q, want %q", v, "1.2.3")
	}

	boms := repo.Find(regexp.MustCompile(`^io/quarkus/quarkus-bom/[^/]+/[^/]+\.pom$`))
	if len(boms) != 1 {
		t.Errorf("Find() = %v, want one BOM", boms)
	}
}

func TestUnpackRestoresModTimes(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "repo.zip")
	jar := "io/quarkus/quarkus-arc/1.2.3/quarkus-arc-1.2.3.jar"
	testutil.WriteZip(t, zipPath, map[string]string{"maven-repository/" + jar: "jar"})

	for _, out := range []string{"first", "second"} {
		repo, err := Unpack(zipPath, filepath.Join(dir, out))
		if err != nil {
			t.Fatalf("Unpack() error: %v", err)
		}
		info, err := os.Stat(repo.Abs(jar))
		if err != nil {
			t.Fatal(err)
		}
		if !info.ModTime().Equal(testutil.FixtureTime) {
			t.Errorf("%s: ModTime() = %v, want %v", out, info.ModTime(), testutil.FixtureTime)
		}
	}
}

func TestUnpackRootLevelContents(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "repo.zip")
	testutil.WriteZip(t, zipPath, map[string]string{
		"maven-repository/g/a/1/a-1.jar": "jar",
	})

	repo, err := Unpack(zipPath, filepath.Join(dir, "out"))
	if err != nil {
		t.Fatalf("Unpack() error: %v", err)
	}
	if diff := cmp.Diff([]string{"g/a/1/a-1.jar"}, repo.Entries); diff != "" {
		t.Errorf("Entries mismatch (-want +got):\n%s", diff)
	}
}

func TestUnpackErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing archive", func(t *testing.T) {
		_, err := Unpack(filepath.Join(dir, "absent.zip"), filepath.Join(dir, "out1"))
		if !errors.Is(err, errors.ErrCodePrecondition) {
			t.Errorf("Unpack() error = %v, want PRECONDITION_FAILED", err)
		}
	})

	t.Run("no contents directory", func(t *testing.T) {
		p := filepath.Join(dir, "flat.zip")
		testutil.WriteZip(t, p, map[string]string{"g/a/1/a-1.jar": "jar"})
		_, err := Unpack(p, filepath.Join(dir, "out2"))
		if !errors.Is(err, errors.ErrCodePrecondition) {
			t.Errorf("Unpack() error = %v, want PRECONDITION_FAILED", err)
		}
	})

	t.Run("path traversal", func(t *testing.T) {
		p := filepath.Join(dir, "evil.zip")
		testutil.WriteZip(t, p, map[string]string{"maven-repository/../../evil.jar": "x"})
		_, err := Unpack(p, filepath.Join(dir, "out3"))
		if err == nil {
			t.Fatal("Unpack() should reject traversal entries")
		}
		if _, statErr := os.Stat(filepath.Join(dir, "evil.jar")); statErr == nil {
			t.Error("traversal entry must not be written")
		}
	})

	t.Run("not a zip", func(t *testing.T) {
		p := testutil.WriteFile(t, dir, "bogus.zip", "not a zip")
		_, err := Unpack(p, filepath.Join(dir, "out4"))
		if !errors.Is(err, errors.ErrCodeIO) {
			t.Errorf("Unpack() error = %v, want IO_ERROR", err)
		}
	})
}

func TestUpstreamVersionMissing(t *testing.T) {
	repo := &Repository{Entries: []string{"io/quarkus/quarkus-arc/1.0/quarkus-arc-1.0.jar"}}
	if _, err := repo.UpstreamVersion(); !errors.Is(err, errors.ErrCodePrecondition) {
		t.Errorf("UpstreamVersion() error = %v, want PRECONDITION_FAILED", err)
	}
}

func TestOpen(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "io/quarkus/quarkus-core/2.0.0/quarkus-core-2.0.0.jar", "x")
	testutil.WriteFile(t, root, "org/acme/lib/1/lib-1.pom", "x")

	repo, err := Open(root)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	want := []string{
		"io/quarkus/quarkus-core/2.0.0/quarkus-core-2.0.0.jar",
		"org/acme/lib/1/lib-1.pom",
	}
	if diff := cmp.Diff(want, repo.Entries); diff != "" {
		t.Errorf("Entries mismatch (-want +got):\n%s", diff)
	}
	if v, _ := repo.UpstreamVersion(); v != "2.0.0" {
		t.Errorf("UpstreamVersion() = %q, want 2.0.0", v)
	}

	if _, err := Open(filepath.Join(root, "absent")); !errors.Is(err, errors.ErrCodePrecondition) {
		t.Errorf("Open(absent) error = %v, want PRECONDITION_FAILED", err)
	}
}

func TestArchiveHelpers(t *testing.T) {
	dir := t.TempDir()
	jar := filepath.Join(dir, "ext.jar")
	testutil.WriteZip(t, jar, testutil.ExtensionJar("io.quarkus:quarkus-arc-deployment:1.0"))

	ok, err := HasEntry(jar, "quarkus-extension.properties")
	if err != nil || !ok {
		t.Errorf("HasEntry() = %v, %v; want true", ok, err)
	}

	data, err := ReadEntry(jar, "quarkus-extension.properties")
	if err != nil {
		t.Fatalf("ReadEntry() error: %v", err)
	}
	if len(data) == 0 {
		t.Error("ReadEntry() returned no data")
	}

	if _, err := ReadEntry(jar, "licenses.xml"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("ReadEntry(missing) error = %v, want NOT_FOUND", err)
	}

	dst := filepath.Join(dir, "manifest.mf")
	if err := ExtractEntry(jar, "MANIFEST.MF", dst); err != nil {
		t.Fatalf("ExtractEntry() error: %v", err)
	}
	if _, err := os.Stat(dst); err != nil {
		t.Errorf("extracted file missing: %v", err)
	}
}
