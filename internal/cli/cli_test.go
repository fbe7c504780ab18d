package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/depscan/internal/testutil"
	"github.com/matzehuels/depscan/pkg/config"
	"github.com/matzehuels/depscan/pkg/errors"
	"github.com/matzehuels/depscan/pkg/extension"
	"github.com/matzehuels/depscan/pkg/maven"
)

func execute(t *testing.T, c *CLI, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := c.RootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandRegistersCommands(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()

	var got []string
	for _, cmd := range root.Commands() {
		got = append(got, cmd.Name())
	}
	want := []string{"analyze", "bom-check", "cache", "completion", "parse-tree", "post-build", "run", "version"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeOptionsConfig(t *testing.T) {
	env := map[string]string{
		config.EnvMaven:                "/opt/env/mvn",
		config.EnvExtrasPath:           "env-extras",
		config.EnvAdditionalRepository: "https://env.example.com/maven",
	}
	getenv := func(k string) string { return env[k] }

	tests := []struct {
		name       string
		opts       analyzeOptions
		wantMaven  string
		wantExtras string
		wantRepo   string
		wantBOM    string
	}{
		{
			name:       "environment fills unset flags",
			opts:       analyzeOptions{bom: extension.CommunityBOM},
			wantMaven:  "/opt/env/mvn",
			wantExtras: "env-extras",
			wantRepo:   "https://env.example.com/maven",
			wantBOM:    extension.CommunityBOM,
		},
		{
			name: "flags win over environment",
			opts: analyzeOptions{
				bom:                  "quarkus-product-bom",
				maven:                "./mvnw",
				extras:               "out",
				additionalRepository: "https://flag.example.com/maven",
			},
			wantMaven:  "./mvnw",
			wantExtras: "out",
			wantRepo:   "https://flag.example.com/maven",
			wantBOM:    "quarkus-product-bom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := tt.opts.config("repo.zip", getenv)
			if err != nil {
				t.Fatalf("config() error: %v", err)
			}
			if cfg.RepositoryZip != "repo.zip" {
				t.Errorf("RepositoryZip = %q", cfg.RepositoryZip)
			}
			if cfg.Maven != tt.wantMaven {
				t.Errorf("Maven = %q, want %q", cfg.Maven, tt.wantMaven)
			}
			if cfg.ExtrasPath != tt.wantExtras {
				t.Errorf("ExtrasPath = %q, want %q", cfg.ExtrasPath, tt.wantExtras)
			}
			if got := cfg.AddOns.CommunityDeps.AdditionalRepository; got != tt.wantRepo {
				t.Errorf("AdditionalRepository = %q, want %q", got, tt.wantRepo)
			}
			if got := cfg.Flow.RepositoryGeneration.BOMArtifactID; got != tt.wantBOM {
				t.Errorf("BOMArtifactID = %q, want %q", got, tt.wantBOM)
			}
			if cfg.AddOns.PostBuild != nil {
				t.Error("analyze must not enable the post-build add-on")
			}
		})
	}
}

func TestAnalyzeOptionsConfigInvalid(t *testing.T) {
	opts := analyzeOptions{additionalRepository: "ftp://example.com/maven"}
	_, err := opts.config("repo.zip", func(string) string { return "" })
	if !errors.Is(err, errors.ErrCodeInvalidInput) && !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Fatalf("config() error = %v, want validation error", err)
	}
}

func TestParseTreeCommand(t *testing.T) {
	dir := t.TempDir()
	tree := strings.Join([]string{
		"[INFO] --- maven-dependency-plugin:3.1.2:tree (default-cli) @ app ---",
		"[INFO] org.acme:app:jar:1.0.0-SNAPSHOT",
		"[INFO] +- io.quarkus:quarkus-arc:jar:1.2.3.redhat-00001:compile",
		"[INFO] |  \\- io.smallrye:jandex:jar:2.4.2.Final:compile",
		"[INFO] \\- org.junit.jupiter:junit-jupiter:jar:5.7.2:test",
	}, "\n")
	in := testutil.WriteFile(t, dir, "tree.txt", tree)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "community only",
			want: []string{"io.smallrye:jandex:2.4.2.Final"},
		},
		{
			name: "all dependencies",
			args: []string{"--all"},
			want: []string{"io.quarkus:quarkus-arc:1.2.3.redhat-00001", "io.smallrye:jandex:2.4.2.Final"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "deps.csv")
			args := append([]string{"parse-tree", in, "-o", out}, tt.args...)
			if _, err := execute(t, New(&bytes.Buffer{}, LogInfo), args...); err != nil {
				t.Fatalf("parse-tree error: %v", err)
			}
			data, err := os.ReadFile(out)
			if err != nil {
				t.Fatal(err)
			}
			lines := strings.Split(strings.TrimSpace(string(data)), "\n")
			var got []string
			for _, l := range lines[1:] {
				got = append(got, strings.SplitN(l, ";", 2)[0])
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("rows mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseTreeCommandMissingFile(t *testing.T) {
	_, err := execute(t, New(&bytes.Buffer{}, LogInfo), "parse-tree", filepath.Join(t.TempDir(), "absent.txt"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Fatalf("error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestScanLines(t *testing.T) {
	got, err := scanLines(strings.NewReader("a\r\nb\n\nc"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a\r", "b", "", "c"}, got); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

const bomPOM = `<project xmlns="http://maven.apache.org/POM/4.0.0">
  <modelVersion>4.0.0</modelVersion>
  <groupId>io.quarkus</groupId>
  <artifactId>quarkus-bom</artifactId>
  <version>1.2.3</version>
  <dependencyManagement>
    <dependencies>
      <dependency><groupId>io.quarkus</groupId><artifactId>quarkus-arc</artifactId><version>1.2.3.redhat-00001</version></dependency>
      <dependency><groupId>io.quarkus</groupId><artifactId>quarkus-core</artifactId><version>1.2.3.redhat-00001</version></dependency>
      <dependency><groupId>org.acme</groupId><artifactId>lib</artifactId><version>2.0</version></dependency>
    </dependencies>
  </dependencyManagement>
</project>
`

func TestBomCheckCommand(t *testing.T) {
	repo := t.TempDir()
	testutil.WriteFile(t, repo, "io/quarkus/quarkus-bom/1.2.3/quarkus-bom-1.2.3.pom", bomPOM)
	core := maven.Coordinate{GroupID: "io.quarkus", ArtifactID: "quarkus-core", Version: "1.2.3.redhat-00001"}
	testutil.WriteFile(t, repo, core.Path(), "jar")
	out := filepath.Join(t.TempDir(), "nonexistent-redhat-deps.txt")

	if _, err := execute(t, New(&bytes.Buffer{}, LogInfo), "bom-check", repo, "-o", out); err != nil {
		t.Fatalf("bom-check error: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), "'io.quarkus:quarkus-arc:1.2.3.redhat-00001:',\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestBomCheckCommandVendorNamespace(t *testing.T) {
	repo := t.TempDir()
	testutil.WriteFile(t, repo, "io/quarkus/quarkus-bom/1.2.3/quarkus-bom-1.2.3.pom", bomPOM)
	testutil.WriteFile(t, repo, "org/acme/quarkus/quarkus-product-bom/1.2.3/quarkus-product-bom-1.2.3.pom",
		strings.Replace(bomPOM, "quarkus-core", "quarkus-product-core", 1))
	out := filepath.Join(t.TempDir(), "missing.txt")

	args := []string{"bom-check", repo, "--product", "--vendor-namespace", "org/acme", "-o", out}
	if _, err := execute(t, New(&bytes.Buffer{}, LogInfo), args...); err != nil {
		t.Fatalf("bom-check error: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "io.quarkus:quarkus-product-core:1.2.3.redhat-00001:") {
		t.Errorf("output = %q, want the product BOM entries", data)
	}
}

func TestBomCheckCommandMissingRepository(t *testing.T) {
	_, err := execute(t, New(&bytes.Buffer{}, LogInfo), "bom-check", filepath.Join(t.TempDir(), "absent"))
	if !errors.Is(err, errors.ErrCodePrecondition) {
		t.Fatalf("error = %v, want PRECONDITION", err)
	}
}

func TestPostBuildCommandRequiresFlags(t *testing.T) {
	if _, err := execute(t, New(&bytes.Buffer{}, LogInfo), "post-build", "--product", "quarkus"); err == nil {
		t.Fatal("post-build without --staging should fail")
	}
}

func TestRunCommandMissingConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "build-config.yaml")
	_, err := execute(t, New(&bytes.Buffer{}, LogInfo), "run", "--config", path, "--no-cache")
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Fatalf("error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestRunCommandNoAddOns(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "build-config.yaml", "extrasPath: "+filepath.Join(dir, "extras")+"\n")

	var logs bytes.Buffer
	c := New(&logs, log.InfoLevel)
	if _, err := execute(t, c, "run", "--config", path, "--no-cache"); err != nil {
		t.Fatalf("run error: %v", err)
	}
	if !strings.Contains(logs.String(), "no add-on enabled") {
		t.Errorf("logs = %q, want a warning about no enabled add-ons", logs.String())
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, New(&bytes.Buffer{}, LogInfo), "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "version: ") {
		t.Errorf("output = %q, want build information", out)
	}
}

func TestClearCache(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "ab/abcdef.json", "{}")
	testutil.WriteFile(t, dir, "cd/cdef01.json", "{}")

	n, err := clearCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("clearCache() = %d, want 2", n)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("cache dir still holds %d entries", len(entries))
	}
}

func TestCompletionCommand(t *testing.T) {
	out, err := execute(t, New(&bytes.Buffer{}, LogInfo), "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "depscan") {
		t.Error("bash completion does not mention depscan")
	}
	if _, err := execute(t, New(&bytes.Buffer{}, LogInfo), "completion", "tcsh"); err == nil {
		t.Error("completion accepted an unsupported shell")
	}
}
