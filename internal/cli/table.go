package cli

import (
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"

	"github.com/matzehuels/depscan/pkg/maven"
)

// newTable returns a table writer mirroring to w, with rounded borders when
// stdout is a terminal.
func newTable(w io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		t.SetStyle(table.StyleRounded)
		t.SetAllowedRowLength(width)
	} else {
		t.SetStyle(table.StyleLight)
	}
	t.Style().Options.DoNotColorBordersAndSeparators = true
	t.AppendHeader(header)
	return t
}

// renderCoordinates prints coords as a table with one row each.
func renderCoordinates(w io.Writer, coords []maven.Coordinate) {
	t := newTable(w, table.Row{"Group ID", "Artifact ID", "Version", "Type", "Classifier"})
	for _, c := range coords {
		typ := c.Type
		if typ == "" {
			typ = maven.DefaultType
		}
		t.AppendRow(table.Row{c.GroupID, c.ArtifactID, c.Version, typ, c.Classifier})
	}
	t.AppendFooter(table.Row{"", "", "", "Total", len(coords)})
	t.Render()
}

// renderList prints values as a single-column table.
func renderList(w io.Writer, title string, values []string) {
	t := newTable(w, table.Row{title})
	for _, v := range values {
		t.AppendRow(table.Row{v})
	}
	t.Render()
}
