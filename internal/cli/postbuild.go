package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depscan/pkg/analyzer"
	"github.com/matzehuels/depscan/pkg/config"
)

// postBuildCommand creates the post-build command, which compares the two
// most recent builds of a product on a staging server.
func (c *CLI) postBuildCommand() *cobra.Command {
	var (
		staging string
		product string
		extras  string
		env     envOptions
	)

	cmd := &cobra.Command{
		Use:   "post-build",
		Short: "Compare the reports of the two latest staged builds",
		Long: `Compare the reports of the latest staged build of a product with the build
before it and write the differences to post-build-info.txt in the extras
directory.

Unlike "run", a failed comparison is reported as an error.`,
		Example: `  depscan post-build --staging https://download.example.com/staging/ --product quarkus-2.13`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg := config.Default()
			cfg.ExtrasPath = extras
			cfg.AddOns.PostBuild = &config.PostBuild{StagingPath: staging, ProductName: product}
			if err := cfg.Validate(); err != nil {
				return err
			}
			e, err := c.newEnv(logger, env)
			if err != nil {
				return err
			}
			defer e.Cache.Close()

			spin := newSpinnerWithContext(ctx, "Comparing "+product+" builds...")
			spin.Start()
			out, err := analyzer.NewPostBuildAnalyzer(cfg, e).Analyze(ctx)
			if err != nil {
				if spin.Cancelled() {
					spin.Stop()
					return context.Canceled
				}
				spin.StopWithError("Comparison failed")
				return err
			}
			spin.StopWithSuccess("Compared " + StyleHighlight.Render(product) + " builds")
			printFile(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&staging, "staging", "", "staging server URL holding one directory per product")
	cmd.Flags().StringVar(&product, "product", "", "product directory on the staging server")
	cmd.Flags().StringVarP(&extras, "extras", "o", config.DefaultExtrasPath, "directory receiving post-build-info.txt")
	cmd.MarkFlagRequired("staging")
	cmd.MarkFlagRequired("product")
	env.register(cmd)

	return cmd
}
