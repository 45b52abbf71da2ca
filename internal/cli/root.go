package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/feedlist/internal/config"
	"github.com/rshade/feedlist/internal/logging"
)

// annotationDefaultsOnError marks commands that keep running on the default
// configuration when the config file cannot be loaded.
const annotationDefaultsOnError = "feedlist/defaults-on-config-error"

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the feedlist CLI.
// It loads the global and project configuration, wires up logging and
// tracing, and registers the view, rows and config subcommands.
func NewRootCmd(ver string) *cobra.Command {
	var logResult *logging.LogPathResult

	cmd := &cobra.Command{
		Use:           "feedlist",
		Short:         "Browse item feeds as grouped, paged lists",
		Long:          "feedlist: Browse YAML and JSON item feeds as virtualized, groupable, paginated lists",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				if !defaultsOnConfigError(cmd) {
					return err
				}
				cmd.PrintErrf("Warning: %v; using defaults\n", err)
				cfg = config.New()
			}
			config.SetGlobalConfig(cfg)

			result := setupLogging(cmd, cfg)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return cleanupLogging(logResult)
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("config", "", "config file (default $FEEDLIST_HOME/config.yaml)")
	cmd.PersistentFlags().String("project-dir", "", "project directory holding a .feedlist/config.yaml overlay")
	cmd.AddCommand(NewViewCmd(), NewRowsCmd(), newConfigCmd())

	return cmd
}

// loadConfig resolves the project directory and loads the merged configuration.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	projectFlag, _ := cmd.Flags().GetString("project-dir")

	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	projectDir := config.ResolveProjectDir(cmd.Context(), projectFlag, wd)
	config.SetResolvedProjectDir(projectDir)

	return config.LoadWithProject(cmd.Context(), path, projectDir)
}

// defaultsOnConfigError reports whether cmd or one of its parents carries
// annotationDefaultsOnError.
func defaultsOnConfigError(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[annotationDefaultsOnError] != "" {
			return true
		}
	}
	return false
}

const rootCmdExample = `  # Browse a feed interactively, starting at the newest page
  feedlist view messages.yaml --anchor bottom --initial-page -1

  # Group by channel and order by time, newest first
  feedlist view messages.yaml --group-by channel --order-by time:desc

  # Follow a feed file while another process appends to it
  feedlist view messages.yaml --watch --anchor bottom

  # Print the projected rows as JSON, second page of 20
  feedlist rows messages.yaml --group-by channel --output json --page 2 --page-size 20

  # Initialize configuration
  feedlist config init`

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "config",
		Short:       "Configuration management commands",
		Annotations: map[string]string{annotationDefaultsOnError: "true"},
	}
	cmd.AddCommand(NewConfigInitCmd(), NewConfigValidateCmd())
	return cmd
}
