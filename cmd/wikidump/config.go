package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yourusername/wikidump-go/internal/app"
	"github.com/yourusername/wikidump-go/internal/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a config file with the defaults and any flags given",
	Long: `Writes a YAML config file holding the default settings, with the dump selection
and directory flags applied. The default path is $HOME/.wikidump/config.yaml.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("failed to find home directory: %w", err)
			}
			path = filepath.Join(home, ".wikidump", "config.yaml")
		}

		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
		}

		config := domain.DefaultConfig()
		if err := applyFlags(cmd, config); err != nil {
			return err
		}
		if err := config.Dump.Descriptor().Validate(); err != nil {
			return fmt.Errorf("invalid dump selection: %w", err)
		}

		if err := app.SaveConfig(config, path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
}
