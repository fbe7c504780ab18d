package maven

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
)

// InfoPrefix starts every informational line of Maven console output.
const InfoPrefix = "[INFO] "

// treeGlyphs matches the indentation and connectors drawn before each node.
var treeGlyphs = regexp.MustCompile(`^[+|\\\-\s]+`)

// importantScopes are the scopes that end up in the shipped artifact set.
var importantScopes = map[string]bool{
	"compile": true,
	"runtime": true,
}

// ParseTreeLine parses one line of `mvn dependency:tree` output.
//
// It returns false for anything that is not a compile or runtime dependency:
// non-INFO lines, headers, test/provided/system scopes and lines with fewer
// than five colon-separated fields. Lines with an unexpected field count are
// logged once at warn level on logger (which may be nil) and discarded.
func ParseTreeLine(line string, logger *log.Logger) (Coordinate, bool) {
	if !strings.HasPrefix(line, InfoPrefix) {
		return Coordinate{}, false
	}
	gav := strings.TrimRight(strings.TrimPrefix(line, InfoPrefix), "\r\n")
	gav = treeGlyphs.ReplaceAllString(gav, "")
	fields := strings.Split(gav, ":")
	if len(fields) < 5 || !importantScopes[fields[len(fields)-1]] {
		return Coordinate{}, false
	}

	var (
		c   Coordinate
		err error
	)
	switch len(fields) {
	case 5:
		// group:artifact:type:version:scope
		c, err = NewCoordinate(fields[0], fields[1], fields[3], fields[2], "")
	case 6:
		// group:artifact:type:classifier:version:scope
		c, err = NewCoordinate(fields[0], fields[1], fields[4], fields[2], fields[3])
	default:
		if logger != nil {
			logger.Warn("suspicious line in the dependency tree, assuming it is not a dependency", "line", gav)
		}
		return Coordinate{}, false
	}
	if err != nil {
		if logger != nil {
			logger.Warn("incomplete coordinate in the dependency tree", "line", gav)
		}
		return Coordinate{}, false
	}
	return c, true
}

// ParseTree parses every line of dependency-tree output into a set.
// Tree order is not preserved.
func ParseTree(lines []string, logger *log.Logger) Set {
	s := make(Set)
	for _, line := range lines {
		if c, ok := ParseTreeLine(line, logger); ok {
			s.Add(c)
		}
	}
	return s
}
