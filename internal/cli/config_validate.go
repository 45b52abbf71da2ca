package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/feedlist/internal/config"
)

// NewConfigValidateCmd creates the config validate command for validating configuration.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Loads the global configuration and any project overlay, then checks it for
syntax and semantic correctness:
- Schema version compatibility
- Scroll anchor and order expression
- Non-negative list and feed settings
- Logging level and format

Invalid configuration exits with code 2.`,
		Example: `  # Validate current configuration
  feedlist config validate

  # Validate and show detailed information
  feedlist config validate --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")

	return cmd
}

// runConfigValidate reloads the configuration so load errors are reported
// rather than replaced by defaults.
func runConfigValidate(cmd *cobra.Command, verbose bool) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return invalidInput(fmt.Errorf("configuration could not be loaded: %w", err))
	}
	if err = cfg.Validate(); err != nil {
		return invalidInput(fmt.Errorf("configuration validation failed: %w", err))
	}

	cmd.Printf("✅ Configuration is valid\n")

	if verbose {
		printVerboseDetails(cmd, cfg)
	}
	return nil
}

// printVerboseDetails prints detailed configuration information.
func printVerboseDetails(cmd *cobra.Command, cfg *config.Config) {
	source := cfg.Path()
	if source == "" {
		source = "(defaults)"
	}
	cmd.Println()
	cmd.Println("Configuration details:")
	cmd.Printf("  Source: %s\n", source)
	if projectDir := config.GetResolvedProjectDir(); projectDir != "" {
		cmd.Printf("  Project overlay: %s\n", config.ProjectConfigPath(projectDir))
	}
	cmd.Printf("  Key field: %s\n", cfg.List.KeyField)
	if cfg.List.GroupBy != "" {
		cmd.Printf("  Group by: %s\n", cfg.List.GroupBy)
	} else {
		cmd.Println("  Group by: (ungrouped)")
	}
	if cfg.List.OrderBy != "" {
		cmd.Printf("  Order by: %s\n", cfg.List.OrderBy)
	}
	cmd.Printf("  Anchor: %s\n", cfg.List.Anchor)
	cmd.Printf("  Page size: %d\n", cfg.Feed.PageSize)
	cmd.Printf("  Logging level: %s\n", cfg.Logging.Level)
	if cfg.Logging.File != "" {
		cmd.Printf("  Log file: %s\n", cfg.Logging.File)
	}
}
