package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/sitecheck"
	"github.com/jpalmerr/sitecheck/config"
)

// checkCmd runs a single sweep and prints the result.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check every configured URL once",
	Long: `Check every configured URL once and print the results without
starting the server.

By default results are printed grouped by name, one "label  url" line per
URL. With --json the flat URL to label object served at /api is printed.

Example:
  sitecheck check -c config.yaml
  sitecheck check -c config.yaml --json`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	checkCmd.Flags().Bool("json", false, "print results as a JSON object")
	_ = checkCmd.MarkFlagRequired("config")
}

func runCheck(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	asJSON, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	opts, err := config.BuildOptions(cfg)
	if err != nil {
		return fmt.Errorf("failed to build options: %w", err)
	}
	opts = append(opts, sitecheck.WithLogger(newLogger(slog.LevelWarn)))

	sc, err := sitecheck.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create sitecheck: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := sc.CheckAll(ctx)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Results)
	}
	return printGrouped(out, sc, res)
}

func printGrouped(w io.Writer, sc *sitecheck.SiteCheck, res sitecheck.SweepResult) error {
	for i, g := range sc.Registry().Groups() {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, g.Name); err != nil {
			return err
		}
		for _, url := range g.URLs {
			label, _ := res.Label(url)
			if _, err := fmt.Fprintf(w, "  %-11s  %s\n", label, url); err != nil {
				return err
			}
		}
	}
	return nil
}
