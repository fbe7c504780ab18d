package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/depscan/pkg/bom"
	"github.com/matzehuels/depscan/pkg/extension"
	"github.com/matzehuels/depscan/pkg/maven"
	"github.com/matzehuels/depscan/pkg/report"
	"github.com/matzehuels/depscan/pkg/repository"
)

// bomCheckCommand creates the bom-check command, which lists vendor BOM
// entries whose jar is missing from an unpacked repository.
func (c *CLI) bomCheckCommand() *cobra.Command {
	var (
		product      bool
		deployment   bool
		vendorMarker string
		namespace    string
		output       string
	)

	cmd := &cobra.Command{
		Use:   "bom-check <maven-repository-dir>",
		Short: "List vendor BOM entries missing from an unpacked repository",
		Long: `List the vendor-branded managed dependencies of the platform BOMs whose jar
is missing from an unpacked maven-repository directory.

The runtime BOM is always checked. --product adds the product BOM and
--deployment the deployment BOMs.`,
		Example: `  depscan bom-check ./quarkus-2.13.9-maven-repository/maven-repository --product
  depscan bom-check ./maven-repository -o nonexistent-redhat-deps.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			repo, err := repository.Open(args[0])
			if err != nil {
				return err
			}
			prog := newProgress(logger)
			checker := bom.NewChecker(repo, maven.NewClassifier(vendorMarker), logger)
			missing := checker.Gather(bom.Locations(namespace, product, deployment))
			prog.done("Checked BOM references")

			if output != "" {
				if err := report.WriteLines(output, missing); err != nil {
					return err
				}
				printFile(output)
			}
			if len(missing) == 0 {
				printSuccess("Every vendor BOM entry is present in %s", repo.Root)
				return nil
			}
			printWarning("%d vendor BOM entries are missing", len(missing))
			renderList(stdout, "Missing artifact", missing)
			return nil
		},
	}

	cmd.Flags().BoolVar(&product, "product", false, "also check the product BOM")
	cmd.Flags().BoolVar(&deployment, "deployment", false, "also check the deployment BOMs")
	cmd.Flags().StringVar(&vendorMarker, "vendor-marker", maven.DefaultVendorMarker, "version substring of vendor-rebuilt artifacts")
	cmd.Flags().StringVar(&namespace, "vendor-namespace", extension.DefaultVendorNamespace, "repository path holding the product BOMs")
	cmd.Flags().StringVarP(&output, "output", "o", "", "also write the list to this file")

	return cmd
}
