package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/planora/planora/internal/config"
)

func newConfigCmd(f *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}
	cmd.AddCommand(newConfigInitCmd(f))
	return cmd
}

func newConfigInitCmd(f *globalFlags) *cobra.Command {
	var (
		global bool
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Long: `Write the default configuration to ./planora.yaml, ~/.planora/config.yaml with --global,
or the path given with --config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := f.configPath
			switch {
			case path != "":
			case global:
				path = config.GlobalConfigPath()
			default:
				path = config.ProjectConfigPath()
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite it", path)
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&global, "global", false, "Write the global config in ~/.planora")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}
