package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rshade/feedlist/internal/config"
)

// ErrConfigExists is returned by config init when the target file exists.
var ErrConfigExists = errors.New("configuration file already exists, use --force to overwrite")

// NewConfigInitCmd creates the config init command for initializing configuration.
// Inside a project (a directory tree containing .feedlist/, or --project-dir),
// it writes the project-local .feedlist/config.yaml. Otherwise, or with --global,
// it writes the global $FEEDLIST_HOME/config.yaml.
func NewConfigInitCmd() *cobra.Command {
	var (
		force  bool
		global bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file with default values",
		Long: `Creates a new configuration file with default values.

Inside a project with a .feedlist directory, or with --project-dir, the
project-local .feedlist/config.yaml is created. Use --global to write the
global configuration even inside a project.`,
		Example: `  # Create configuration (project-local when inside a project)
  feedlist config init

  # Create global configuration
  feedlist config init --global

  # Create configuration, overwriting existing
  feedlist config init --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := initTargetPath(global)
			if err != nil {
				return err
			}
			return initConfig(cmd, path, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration file")
	cmd.Flags().BoolVar(&global, "global", false, "write the global configuration even inside a project")

	return cmd
}

// initTargetPath picks the project-local or the global config path.
func initTargetPath(global bool) (string, error) {
	if projectDir := config.GetResolvedProjectDir(); projectDir != "" && !global {
		return config.ProjectConfigPath(projectDir), nil
	}
	return config.DefaultConfigPath()
}

// initConfig saves the default configuration to path.
func initConfig(cmd *cobra.Command, path string, force bool) error {
	if !force {
		_, err := os.Stat(path)
		if err == nil {
			return ErrConfigExists
		}
		if !os.IsNotExist(err) {
			return fmt.Errorf("cannot access config path %s: %w", path, err)
		}
	}

	if err := config.New().Save(path); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	cmd.Printf("Configuration initialized at %s\n", path)
	return nil
}
