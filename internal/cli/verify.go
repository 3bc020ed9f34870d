package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/TonyCrane/haskellings/internal/exercise"
	"github.com/TonyCrane/haskellings/internal/pipeline"
	"github.com/TonyCrane/haskellings/internal/stats"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Run every exercise in order and summarize the results",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, printer, logger, err := setup()
		if err != nil {
			return err
		}

		controller := pipeline.NewController(cfg, printer, logger)
		summary := stats.NewSummary()

		for _, ex := range exercise.All() {
			printer.Info("=== %s ===", ex.Name)
			start := time.Now()
			result, err := controller.Run(ex)
			if err != nil {
				return err
			}
			summary.Record(result, time.Since(start))
		}

		printer.Line("")
		for _, line := range summary.Lines() {
			printer.Line(line)
		}

		if !summary.AllPassed() {
			cmd.SilenceErrors = true
			return errors.New("verify: not all exercises pass")
		}
		printer.Success("Everything passes. Nice work!")
		return nil
	},
}
