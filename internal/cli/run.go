package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depscan/pkg/analyzer"
	"github.com/matzehuels/depscan/pkg/config"
)

// runCommand creates the run command, which triggers every add-on enabled in
// a build configuration.
func (c *CLI) runCommand() *cobra.Command {
	var (
		configPath string
		envFiles   []string
		env        envOptions
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the add-ons enabled in a build configuration",
		Long: `Run the add-ons enabled in a build configuration.

The configuration is read from YAML or TOML. Variables from .env files (the
one next to the configuration and any given with --env) are loaded first and
never override variables already set. DEPSCAN_MVN, DEPSCAN_EXTRAS_PATH and
DEPSCAN_ADDITIONAL_REPOSITORY override the corresponding settings.`,
		Example: `  depscan run
  depscan run --config build-config.toml --env ci.env`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			files := append([]string{filepath.Join(filepath.Dir(configPath), ".env")}, envFiles...)
			if err := config.LoadEnvFiles(files...); err != nil {
				return err
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			e, err := c.newEnv(logger, env)
			if err != nil {
				return err
			}
			defer e.Cache.Close()

			prog := newProgress(logger)
			if err := analyzer.NewRegistry().Dispatch(ctx, cfg, e); err != nil {
				return err
			}
			prog.done("Build analysis complete")

			printSuccess("Ran %d add-on(s)", len(cfg.Enabled()))
			for _, name := range cfg.Enabled() {
				printDetail("%s", name)
			}
			printKeyValue("Reports", cfg.ExtrasPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigFile, "build configuration file (.yaml, .yml or .toml)")
	cmd.Flags().StringSliceVar(&envFiles, "env", nil, "additional .env files to load")
	env.register(cmd)

	return cmd
}
