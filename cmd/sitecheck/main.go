// Package main is the entry point for the sitecheck CLI.
//
// sitecheck can be run either as a library (SDK) or as a standalone binary
// with YAML configuration. This CLI provides the standalone binary approach.
//
// Usage:
//
//	sitecheck serve -c config.yaml    # Start the status pages and API
//	sitecheck check -c config.yaml    # Run one sweep and print the labels
//	sitecheck validate -c config.yaml # Validate configuration
//	sitecheck version                 # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "sitecheck",
	Short: "A small URL status poller",
	Long: `sitecheck polls a fixed set of grouped URLs and reports the HTTP
status code of each, or UNREACHABLE when the host cannot be contacted.

Results are served as an HTML page grouped by name and as a flat JSON
object at /api.

Quick start:
  1. Create a config file (sitecheck.yaml)
  2. Run: sitecheck serve -c sitecheck.yaml
  3. Open http://localhost:8080 in your browser

Example config:
  port: 8080
  refresh_interval: 60s
  groups:
    BBC:
      - https://www.bbc.co.uk
      - https://www.bbc.co.uk/404
    Google:
      - https://www.google.com`,
	SilenceUsage: true,
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this sitecheck binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "sitecheck %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
