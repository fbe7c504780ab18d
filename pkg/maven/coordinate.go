package maven

import (
	"path"
	"sort"
	"strings"

	"github.com/matzehuels/depscan/pkg/errors"
)

// DefaultType is the packaging type assumed when none is declared.
const DefaultType = "jar"

// Coordinate identifies a Maven artifact.
//
// Coordinate is a comparable value: two coordinates are the same artifact when
// all five fields are equal, so it can be used directly as a map key.
// Construct with [NewCoordinate] to enforce the invariants; the zero value is
// not a valid coordinate.
type Coordinate struct {
	GroupID    string // e.g. "io.quarkus", never empty
	ArtifactID string // e.g. "quarkus-core", never empty
	Version    string // e.g. "1.2.3.redhat-00001", never empty
	Type       string // packaging, "jar" when not declared
	Classifier string // optional, empty means none
}

// NewCoordinate builds a coordinate, defaulting a blank type to "jar".
// Returns an INVALID_COORDINATE error if group, artifact or version is empty.
func NewCoordinate(groupID, artifactID, version, typ, classifier string) (Coordinate, error) {
	groupID = strings.TrimSpace(groupID)
	artifactID = strings.TrimSpace(artifactID)
	version = strings.TrimSpace(version)
	if groupID == "" || artifactID == "" || version == "" {
		return Coordinate{}, errors.New(errors.ErrCodeInvalidCoordinate,
			"incomplete coordinate %q:%q:%q", groupID, artifactID, version)
	}
	typ = strings.TrimSpace(typ)
	if typ == "" {
		typ = DefaultType
	}
	return Coordinate{
		GroupID:    groupID,
		ArtifactID: artifactID,
		Version:    version,
		Type:       typ,
		Classifier: strings.TrimSpace(classifier),
	}, nil
}

// VersionPath returns the repository-relative directory holding the artifact:
// the group with dots replaced by slashes, then artifact id, then version.
// Always uses forward slashes.
func (c Coordinate) VersionPath() string {
	return path.Join(strings.ReplaceAll(c.GroupID, ".", "/"), c.ArtifactID, c.Version)
}

// FileName returns the artifact file name, "artifact-version[-classifier].type".
func (c Coordinate) FileName() string {
	var b strings.Builder
	b.WriteString(c.ArtifactID)
	b.WriteByte('-')
	b.WriteString(c.Version)
	if c.Classifier != "" {
		b.WriteByte('-')
		b.WriteString(c.Classifier)
	}
	b.WriteByte('.')
	b.WriteString(c.typ())
	return b.String()
}

// Path returns VersionPath joined with FileName.
func (c Coordinate) Path() string {
	return path.Join(c.VersionPath(), c.FileName())
}

// String returns "group:artifact:version", followed by ":type" when the type is
// not jar and ":classifier" when one is set.
func (c Coordinate) String() string {
	s := c.GroupID + ":" + c.ArtifactID + ":" + c.Version
	if t := c.typ(); t != DefaultType || c.Classifier != "" {
		s += ":" + t
	}
	if c.Classifier != "" {
		s += ":" + c.Classifier
	}
	return s
}

func (c Coordinate) typ() string {
	if c.Type == "" {
		return DefaultType
	}
	return c.Type
}

// Set is a set of coordinates deduplicated by structural equality.
// The zero value is not usable; create one with [NewSet].
type Set map[Coordinate]struct{}

// NewSet returns a set holding the given coordinates.
func NewSet(cs ...Coordinate) Set {
	s := make(Set, len(cs))
	for _, c := range cs {
		s.Add(c)
	}
	return s
}

// Add inserts c, reporting whether it was not already present.
func (s Set) Add(c Coordinate) bool {
	if _, ok := s[c]; ok {
		return false
	}
	s[c] = struct{}{}
	return true
}

// Contains reports whether c is in the set.
func (s Set) Contains(c Coordinate) bool {
	_, ok := s[c]
	return ok
}

// Sorted returns the coordinates ordered by their String form.
func (s Set) Sorted() []Coordinate {
	out := make([]Coordinate, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}
