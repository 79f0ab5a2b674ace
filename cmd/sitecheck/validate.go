package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/sitecheck/config"
)

// validateCmd validates a config file without starting the server.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a sitecheck configuration file without starting the server.

This command parses the YAML, reads any groups_file, expands environment
variables, and validates all fields. It's useful for CI/CD pipelines or
pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  sitecheck validate -c config.yaml
  sitecheck validate --config /etc/sitecheck/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	reg, err := config.BuildRegistry(cfg)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Title:            %s\n", cfg.Title)
	fmt.Fprintf(out, "  Port:             %d\n", cfg.Port)
	fmt.Fprintf(out, "  Refresh interval: %s\n", cfg.RefreshInterval.Duration())
	fmt.Fprintf(out, "  Check timeout:    %s\n", cfg.CheckTimeout.Duration())
	fmt.Fprintf(out, "  Groups:           %d\n", len(cfg.Groups))
	fmt.Fprintf(out, "  URLs:             %d distinct\n", reg.Len())

	return nil
}
