package cli

import (
	"bufio"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depscan/pkg/errors"
	"github.com/matzehuels/depscan/pkg/maven"
	"github.com/matzehuels/depscan/pkg/report"
)

// parseTreeCommand creates the parse-tree command, which classifies the
// output of a saved "mvn dependency:tree" run.
func (c *CLI) parseTreeCommand() *cobra.Command {
	var (
		all          bool
		vendorMarker string
		output       string
	)

	cmd := &cobra.Command{
		Use:   "parse-tree <file|->",
		Short: "Classify the dependencies of saved dependency-tree output",
		Long: `Parse the output of "mvn dependency:tree" and list its community
dependencies, those whose version lacks the vendor marker.

Only compile and runtime dependencies are considered. Use "-" to read from
standard input.`,
		Example: `  mvn dependency:tree | depscan parse-tree -
  depscan parse-tree tree.txt --all
  depscan parse-tree tree.txt -o community-dependencies.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			lines, err := readTreeLines(args[0])
			if err != nil {
				return err
			}
			deps := maven.ParseTree(lines, logger)
			coords := maven.NewClassifier(vendorMarker).Community(deps).Sorted()
			if all {
				coords = deps.Sorted()
			}

			if output != "" {
				if err := report.WriteCommunityCSV(output, coords); err != nil {
					return err
				}
				printFile(output)
			}
			printSuccess("Parsed %d dependencies", len(deps))
			if len(coords) == 0 {
				printInfo("No community dependencies")
				return nil
			}
			renderCoordinates(stdout, coords)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "list every dependency, not only community ones")
	cmd.Flags().StringVar(&vendorMarker, "vendor-marker", maven.DefaultVendorMarker, "version substring of vendor-rebuilt artifacts")
	cmd.Flags().StringVarP(&output, "output", "o", "", "also write the listed dependencies as CSV")

	return cmd
}

// readTreeLines reads path, or standard input when path is "-".
func readTreeLines(path string) ([]string, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.New(errors.ErrCodeFileNotFound, "file not found: %s", path)
			}
			return nil, errors.Wrap(errors.ErrCodeIO, err, "open %s", path)
		}
		defer f.Close()
		r = f
	}
	return scanLines(r)
}

func scanLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read dependency tree")
	}
	return lines, nil
}
