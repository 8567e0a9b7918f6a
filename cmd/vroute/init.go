package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vroute"
	"github.com/vango-dev/vroute/internal/config"
)

func initCmd(flags *globalFlags) *cobra.Command {
	var (
		force bool
		yaml  bool
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default configuration",
		Long: `Write a vroute.json (or vroute.yaml) declaring the journal routes.

Examples:
  vroute init
  vroute init ./app --yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			name := config.ConfigFileName
			if yaml {
				name = config.ConfigName + ".yaml"
			}
			path := filepath.Join(dir, name)

			if _, err := os.Stat(path); err == nil && !force {
				return cliError("%s already exists (use --force to overwrite)", path)
			}

			cfg := config.New()
			cfg.Name = filepath.Base(absDir(dir))
			cfg.Routes = vroute.JournalRoutes()
			cfg.NotFoundView = "NotFound"
			if err := cfg.SaveTo(path); err != nil {
				return err
			}

			success(cmd.OutOrStdout(), "Wrote %s", path)
			info(cmd.OutOrStdout(), "%d routes declared", len(cfg.Routes))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	cmd.Flags().BoolVar(&yaml, "yaml", false, "Write YAML instead of JSON")

	return cmd
}

func absDir(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}
