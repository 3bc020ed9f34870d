// Package cli defines the haskellings command tree.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/TonyCrane/haskellings/internal/config"
	"github.com/TonyCrane/haskellings/internal/logging"
	"github.com/TonyCrane/haskellings/internal/report"
)

// Version is set at build time via ldflags:
//
//	go build -ldflags "-X github.com/TonyCrane/haskellings/internal/cli.Version=1.0.0" ./cmd/haskellings
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "haskellings",
	Short: "A tutor for learning Haskell through small exercises",
	Long: `haskellings compiles and checks a series of small Haskell exercises.
Fix one exercise at a time; watch mode re-checks on every save.`,
	SilenceUsage: true,
}

// Flag values layered over defaults and environment.
var flagOverrides config.Config

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagOverrides.Root, "root", "", "project root (default: discovered from the working directory)")
	pf.StringVar(&flagOverrides.GHCPath, "ghc", "", "path to the GHC binary (default: discovered)")
	pf.StringVar(&flagOverrides.PackageDB, "package-db", "", "GHC package database (default: discovered)")
	pf.StringVar(&flagOverrides.ExercisesDir, "exercises-dir", "", "exercises directory name under the root")
	pf.BoolVarP(&flagOverrides.Verbose, "verbose", "v", false, "verbose logging")
	pf.StringVar(&flagOverrides.LogFormat, "log-format", "", `log format: "text" or "json"`)
	pf.BoolVar(&flagOverrides.NoColor, "no-color", false, "disable styled output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(hintCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(watchCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("haskellings %s\n", Version)
	},
}

// setup builds the effective configuration (defaults, then environment,
// then flags), discovers machine paths, validates, and verifies the
// toolchain runs.
func setup() (*config.Config, *report.Printer, *slog.Logger, error) {
	cfg := config.DefaultConfig()
	if err := config.FromEnv(cfg); err != nil {
		return nil, nil, nil, err
	}
	applyOverrides(cfg, &flagOverrides)

	if err := config.Discover(cfg); err != nil {
		return nil, nil, nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, nil, nil, fmt.Errorf("configuration error: %w", err)
	}
	if err := config.CheckToolchain(cfg); err != nil {
		return nil, nil, nil, err
	}

	logger := logging.NewLogger(cfg.LogFormat, "info", cfg.Verbose)
	logging.SetDefault(logger)

	printer := report.NewPrinter(cfg.NoColor)
	return cfg, printer, logger, nil
}

func applyOverrides(cfg, over *config.Config) {
	if over.Root != "" {
		cfg.Root = over.Root
	}
	if over.GHCPath != "" {
		cfg.GHCPath = over.GHCPath
	}
	if over.PackageDB != "" {
		cfg.PackageDB = over.PackageDB
	}
	if over.ExercisesDir != "" {
		cfg.ExercisesDir = over.ExercisesDir
	}
	if over.LogFormat != "" {
		cfg.LogFormat = over.LogFormat
	}
	if over.Verbose {
		cfg.Verbose = true
	}
	if over.NoColor {
		cfg.NoColor = true
	}
	if over.MetricsAddr != "" {
		cfg.MetricsAddr = over.MetricsAddr
	}
}
