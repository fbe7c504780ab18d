package scaffold

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/depscan/pkg/command"
)

func TestCreateCommand(t *testing.T) {
	g := New(&command.Recorder{}, "/repo/maven-repository", nil)
	got := g.CreateCommand("1.2.3", []string{"quarkus-arc", "quarkus-resteasy"}).String()
	want := "mvn -X io.quarkus:quarkus-maven-plugin:1.2.3:create -DprojectGroupId=tmp -DprojectArtifactId=tmp " +
		"-DplatformArtifactId=quarkus-bom -DplatformVersion=1.2.3 -Dextensions=quarkus-arc,quarkus-resteasy " +
		"-Dmaven.repo.local=/repo/maven-repository"
	if got != want {
		t.Errorf("CreateCommand() =\n  %s\nwant\n  %s", got, want)
	}
}

func TestCommandsWithSettings(t *testing.T) {
	g := New(&command.Recorder{}, "/r", nil)
	g.Settings = "/tmp/settings.xml"
	g.Maven = "/opt/maven/bin/mvn"

	tests := []struct {
		name string
		cmd  command.Command
		want string
	}{
		{"build", g.BuildCommand(), "/opt/maven/bin/mvn -Dmaven.test.skip=true -B clean package -Dmaven.repo.local=/r -s /tmp/settings.xml"},
		{"tree", g.TreeCommand(), "/opt/maven/bin/mvn dependency:tree -Dmaven.repo.local=/r -s /tmp/settings.xml"},
		{"create", g.CreateCommand("2.0", nil), "/opt/maven/bin/mvn -X io.quarkus:quarkus-maven-plugin:2.0:create -DprojectGroupId=tmp -DprojectArtifactId=tmp -DplatformArtifactId=quarkus-bom -DplatformVersion=2.0 -Dextensions= -Dmaven.repo.local=/r -s /tmp/settings.xml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cmd.String(); got != tt.want {
				t.Errorf("got  %s\nwant %s", got, tt.want)
			}
		})
	}
}

func TestRenderSettings(t *testing.T) {
	got := RenderSettings("https://repo.example.com/maven2")
	if strings.Contains(got, repoURLPlaceholder) {
		t.Error("placeholder left in rendered settings")
	}
	if n := strings.Count(got, "<url>https://repo.example.com/maven2</url>"); n != 2 {
		t.Errorf("repository URL appears %d times, want 2", n)
	}
}

func TestWriteSettings(t *testing.T) {
	dir := t.TempDir()
	p, err := WriteSettings(dir, "https://repo.example.com")
	if err != nil {
		t.Fatalf("WriteSettings() error: %v", err)
	}
	if filepath.Dir(p) != dir {
		t.Errorf("settings written to %s, want below %s", p, dir)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != RenderSettings("https://repo.example.com") {
		t.Error("written settings differ from the rendered template")
	}

	if _, err := WriteSettings(filepath.Join(dir, "absent"), "x"); err == nil {
		t.Error("WriteSettings() into a missing directory should fail")
	}
}

func TestExcluded(t *testing.T) {
	filter := []string{"quarkus-vertx-deployment", "quarkus-bom"}
	tests := []struct {
		id   string
		want bool
	}{
		{"quarkus-vertx-deployment", true},
		{"quarkus-vertx", true}, // substring of a filter entry
		{"vertx", true},
		{"quarkus-bom", true},
		{"quarkus-arc", false},
		{"quarkus-vertx-http", false},
	}
	for _, tt := range tests {
		if got := Excluded(filter, tt.id); got != tt.want {
			t.Errorf("Excluded(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
	if Excluded(nil, "anything") {
		t.Error("an empty filter excludes nothing")
	}
}

func TestSelect(t *testing.T) {
	ids := []string{"quarkus-arc", "quarkus-micrometer", "quarkus-resteasy-reactive", "quarkus-jdbc-oracle", "quarkus-picocli"}
	got := Select(ids, DefaultExclusions)
	if diff := cmp.Diff([]string{"quarkus-arc", "quarkus-picocli"}, got); diff != "" {
		t.Errorf("Select() mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateBuildTree(t *testing.T) {
	ctx := context.Background()
	rec := &command.Recorder{
		Outputs: map[string][]string{
			"mvn dependency:tree": {"[INFO] io.quarkus:quarkus-arc:jar:1.2.3:compile"},
		},
	}
	g := New(rec, "/repo", nil)
	g.WorkDir = t.TempDir()

	project, err := g.Generate(ctx, "1.2.3", []string{"quarkus-arc"})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if filepath.Base(project) != ProjectName {
		t.Errorf("project dir = %s, want a %s directory", project, ProjectName)
	}
	if err := g.Build(ctx, project); err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	lines, err := g.DependencyTree(ctx, project)
	if err != nil {
		t.Fatalf("DependencyTree() error: %v", err)
	}
	if len(lines) != 1 {
		t.Errorf("tree = %q", lines)
	}

	if len(rec.Calls) != 3 {
		t.Fatalf("got %d calls, want 3", len(rec.Calls))
	}
	if rec.Calls[0].Dir != filepath.Dir(project) {
		t.Errorf("create ran in %s, want %s", rec.Calls[0].Dir, filepath.Dir(project))
	}
	for _, c := range rec.Calls[1:] {
		if c.Dir != project {
			t.Errorf("%s ran in %s, want %s", c.Command, c.Dir, project)
		}
	}
}

func TestGenerateFails(t *testing.T) {
	boom := stderrors.New("create failed")
	rec := &command.Recorder{Err: map[string]error{"mvn io.quarkus:quarkus-maven-plugin:1.0:create": boom}}
	g := New(rec, "/repo", nil)
	g.WorkDir = t.TempDir()
	if _, err := g.Generate(context.Background(), "1.0", nil); !stderrors.Is(err, boom) {
		t.Errorf("Generate() error = %v, want %v", err, boom)
	}
}
