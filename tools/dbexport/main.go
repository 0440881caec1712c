// Package main provides a CLI tool that copies graphing data from a SQLite
// database into MySQL or PostgreSQL, keeping the original ids.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (can be set via ldflags during build)
var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dbexport",
	Short: "Copy graphing data from SQLite to MySQL or PostgreSQL",
	Long: `Copies datasets, targets, samples, sample signals and UMAP plot points
from a SQLite database into another backend.

Tables are copied parent first so foreign keys hold throughout. Rows whose id
already exists in the target are skipped, so an interrupted run can be repeated.`,
	RunE:         runExport,
	SilenceUsage: true,
}

var cfg Config

func init() {
	rootCmd.Flags().StringVar(&cfg.SQLitePath, "sqlite-path", "", "Path to source SQLite database file")

	rootCmd.Flags().StringVar(&cfg.TargetType, "target-type", TargetMySQL, "Target backend: mysql, postgres or sqlite")
	rootCmd.Flags().StringVar(&cfg.TargetDSN, "target-dsn", "", "Target connection string, or a file path for sqlite")

	rootCmd.Flags().IntVar(&cfg.BatchSize, "batch-size", DefaultBatchSize, "Number of records per batch")
	rootCmd.Flags().BoolVar(&cfg.AutoMigrate, "auto-migrate", true, "Create tables in target database before copying")
	rootCmd.Flags().BoolVar(&cfg.SkipVerify, "skip-verify", false, "Skip post-copy verification")
	rootCmd.Flags().BoolVar(&cfg.Verbose, "verbose", false, "Enable verbose output")

	rootCmd.Flags().StringVar(&cfg.ConfigPath, "config", "", "Path to config.yaml (for connection fallback)")
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}

func runExport(cmd *cobra.Command, args []string) error {
	if v, _ := cmd.Flags().GetBool("version"); v {
		fmt.Fprintf(cmd.OutOrStdout(), "dbexport version %s\n", version)
		return nil
	}

	if err := cfg.Load(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	out := cmd.OutOrStdout()
	if cfg.Verbose {
		fmt.Fprintf(out, "Source: %s\n", cfg.SQLitePath)
		fmt.Fprintf(out, "Target: %s %s\n", cfg.TargetType, cfg.SanitizedTargetDSN())
		fmt.Fprintf(out, "Batch size: %d\n", cfg.BatchSize)
	}

	migrator, err := NewMigrator(&cfg, out)
	if err != nil {
		return fmt.Errorf("failed to initialize migrator: %w", err)
	}
	defer migrator.Close()

	stats, err := migrator.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	stats.Print(out)

	if !cfg.SkipVerify {
		fmt.Fprintln(out, "\n--- Verification ---")
		if err := NewVerifier(migrator.sourceDB, migrator.targetDB, out).Verify(); err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}
		fmt.Fprintln(out, "Verification passed!")
	}
	return nil
}
