package maven

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/depscan/pkg/errors"
)

func TestNewCoordinate(t *testing.T) {
	tests := []struct {
		name       string
		group      string
		artifact   string
		version    string
		typ        string
		classifier string
		want       Coordinate
		wantErr    bool
	}{
		{
			name: "defaults type to jar", group: "io.quarkus", artifact: "quarkus-core", version: "1.2.3",
			want: Coordinate{GroupID: "io.quarkus", ArtifactID: "quarkus-core", Version: "1.2.3", Type: "jar"},
		},
		{
			name: "blank type", group: "g", artifact: "a", version: "1", typ: "  ",
			want: Coordinate{GroupID: "g", ArtifactID: "a", Version: "1", Type: "jar"},
		},
		{
			name: "keeps pom and classifier", group: "g", artifact: "a", version: "1", typ: "pom", classifier: "sources",
			want: Coordinate{GroupID: "g", ArtifactID: "a", Version: "1", Type: "pom", Classifier: "sources"},
		},
		{name: "empty group", artifact: "a", version: "1", wantErr: true},
		{name: "empty artifact", group: "g", version: "1", wantErr: true},
		{name: "empty version", group: "g", artifact: "a", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewCoordinate(tt.group, tt.artifact, tt.version, tt.typ, tt.classifier)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidCoordinate) {
					t.Fatalf("NewCoordinate() error = %v, want INVALID_COORDINATE", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewCoordinate() unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("NewCoordinate() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCoordinatePaths(t *testing.T) {
	tests := []struct {
		c           Coordinate
		versionPath string
		fileName    string
		str         string
	}{
		{
			c:           Coordinate{GroupID: "io.quarkus", ArtifactID: "quarkus-core", Version: "1.2.3", Type: "jar"},
			versionPath: "io/quarkus/quarkus-core/1.2.3",
			fileName:    "quarkus-core-1.2.3.jar",
			str:         "io.quarkus:quarkus-core:1.2.3",
		},
		{
			c:           Coordinate{GroupID: "io.netty", ArtifactID: "netty-transport-native-epoll", Version: "4.1.65.Final", Type: "jar", Classifier: "linux-x86_64"},
			versionPath: "io/netty/netty-transport-native-epoll/4.1.65.Final",
			fileName:    "netty-transport-native-epoll-4.1.65.Final-linux-x86_64.jar",
			str:         "io.netty:netty-transport-native-epoll:4.1.65.Final:jar:linux-x86_64",
		},
		{
			c:           Coordinate{GroupID: "io.quarkus", ArtifactID: "quarkus-bom", Version: "2.2.3.redhat-00001", Type: "pom"},
			versionPath: "io/quarkus/quarkus-bom/2.2.3.redhat-00001",
			fileName:    "quarkus-bom-2.2.3.redhat-00001.pom",
			str:         "io.quarkus:quarkus-bom:2.2.3.redhat-00001:pom",
		},
		{
			c:           Coordinate{GroupID: "junit", ArtifactID: "junit", Version: "4.13"},
			versionPath: "junit/junit/4.13",
			fileName:    "junit-4.13.jar",
			str:         "junit:junit:4.13",
		},
	}

	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			if got := tt.c.VersionPath(); got != tt.versionPath {
				t.Errorf("VersionPath() = %q, want %q", got, tt.versionPath)
			}
			if got := tt.c.FileName(); got != tt.fileName {
				t.Errorf("FileName() = %q, want %q", got, tt.fileName)
			}
			if got := tt.c.Path(); got != tt.versionPath+"/"+tt.fileName {
				t.Errorf("Path() = %q, want %q", got, tt.versionPath+"/"+tt.fileName)
			}
			if got := tt.c.String(); got != tt.str {
				t.Errorf("String() = %q, want %q", got, tt.str)
			}
		})
	}
}

func TestSet(t *testing.T) {
	a := Coordinate{GroupID: "g", ArtifactID: "a", Version: "1", Type: "jar"}
	b := Coordinate{GroupID: "g", ArtifactID: "b", Version: "1", Type: "jar"}
	aSources := Coordinate{GroupID: "g", ArtifactID: "a", Version: "1", Type: "jar", Classifier: "sources"}

	s := NewSet(b, a)
	if s.Add(a) {
		t.Error("Add() of an equal coordinate should report false")
	}
	if !s.Add(aSources) {
		t.Error("Add() of a coordinate differing only by classifier should report true")
	}
	if len(s) != 3 {
		t.Fatalf("len = %d, want 3", len(s))
	}
	if !s.Contains(Coordinate{GroupID: "g", ArtifactID: "b", Version: "1", Type: "jar"}) {
		t.Error("Contains() should use structural equality")
	}

	want := []Coordinate{a, aSources, b}
	if diff := cmp.Diff(want, s.Sorted()); diff != "" {
		t.Errorf("Sorted() mismatch (-want +got):\n%s", diff)
	}
}
