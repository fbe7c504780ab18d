package cli

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depscan/pkg/analyzer"
	"github.com/matzehuels/depscan/pkg/config"
	"github.com/matzehuels/depscan/pkg/extension"
)

// analyzeOptions holds the flags of the analyze command.
type analyzeOptions struct {
	extras               string
	bom                  string
	vendorMarker         string
	maven                string
	additionalRepository string
	skipped              []string
	deploymentBOMs       bool
	show                 bool
	env                  envOptions
}

// config builds the configuration for analyzing zipPath. Flags take
// precedence over environment overrides.
func (o analyzeOptions) config(zipPath string, getenv func(string) string) (*config.Config, error) {
	cfg := config.Default()
	cfg.RepositoryZip = zipPath
	cfg.AddOns.CommunityDeps = &config.CommunityDeps{
		SkippedExtensions:   o.skipped,
		CheckDeploymentBOMs: o.deploymentBOMs,
	}
	cfg.ApplyEnv(getenv)

	if o.extras != "" {
		cfg.ExtrasPath = o.extras
	}
	if o.maven != "" {
		cfg.Maven = o.maven
	}
	if o.additionalRepository != "" {
		cfg.AddOns.CommunityDeps.AdditionalRepository = o.additionalRepository
	}
	if o.bom != "" {
		cfg.Flow.RepositoryGeneration.BOMArtifactID = o.bom
	}
	if o.vendorMarker != "" {
		cfg.VendorMarker = o.vendorMarker
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// analyzeCommand creates the analyze command, which runs the community
// dependency analysis on one repository archive without a configuration file.
func (c *CLI) analyzeCommand() *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze <repository.zip>",
		Short: "Report the community dependencies of a repository archive",
		Long: `Report the community dependencies of a product repository archive.

Writes three reports to the extras directory:
  community-dependencies.csv                                 community dependencies, sorted
  community-analysis-excluding-quarkus-micrometer-tree.txt   raw dependency tree
  nonexistent-redhat-deps.txt                                vendor BOM entries missing from the archive`,
		Example: `  depscan analyze quarkus-2.13.9-maven-repository.zip
  depscan analyze repo.zip --bom quarkus-product-bom --deployment-boms --skip quarkus-jdbc-oracle`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := opts.config(args[0], os.Getenv)
			if err != nil {
				return err
			}
			env, err := c.newEnv(logger, opts.env)
			if err != nil {
				return err
			}
			defer env.Cache.Close()

			res, err := analyzer.NewCommunityDepAnalyzer(cfg, env).Analyze(ctx)
			if err != nil {
				return err
			}

			printSuccess("Analyzed %s %s", StyleHighlight.Render(args[0]), StyleDim.Render("("+res.Duration.Round(time.Millisecond).String()+")"))
			printKeyValue("Version", res.UpstreamVersion)
			printKeyValue("Extensions", fmt.Sprintf("%d of %d", len(res.Selected), len(res.Extensions)))
			printKeyValue("Community", StyleNumber.Render(strconv.Itoa(len(res.Community))))
			if n := len(res.Problematic); n > 0 {
				printWarning("%d vendor BOM entries are missing from the repository", n)
			}
			for _, out := range res.Outputs {
				printFile(out)
			}
			if opts.show && len(res.Community) > 0 {
				printNewline()
				renderCoordinates(stdout, res.Community)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.extras, "extras", "o", "", "directory receiving the reports (default: extras)")
	cmd.Flags().StringVar(&opts.bom, "bom", extension.CommunityBOM, "BOM the repository was generated from (quarkus-bom or quarkus-product-bom)")
	cmd.Flags().StringVar(&opts.vendorMarker, "vendor-marker", "", "version substring of vendor-rebuilt artifacts (default: redhat)")
	cmd.Flags().StringVar(&opts.maven, "mvn", "", "build tool executable (default: mvn)")
	cmd.Flags().StringVar(&opts.additionalRepository, "additional-repository", "", "extra Maven repository URL for the scaffold build")
	cmd.Flags().StringSliceVar(&opts.skipped, "skip", nil, "extension artifact ids to leave out")
	cmd.Flags().BoolVar(&opts.deploymentBOMs, "deployment-boms", false, "also check the deployment BOMs")
	cmd.Flags().BoolVar(&opts.show, "show", false, "print the community dependencies as a table")
	opts.env.register(cmd)

	return cmd
}
