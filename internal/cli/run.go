package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TonyCrane/haskellings/internal/exercise"
	"github.com/TonyCrane/haskellings/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run <exercise>",
	Short: "Compile and check one exercise",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, printer, logger, err := setup()
		if err != nil {
			return err
		}

		ex, ok := exercise.Lookup(args[0])
		if !ok {
			return fmt.Errorf("no exercise named %q (try `haskellings list`)", args[0])
		}

		controller := pipeline.NewController(cfg, printer, logger)
		result, err := controller.Run(ex)
		if err != nil {
			return err
		}
		if result != pipeline.RunSuccess {
			// Diagnostics were already reported; the exit code carries
			// the outcome for scripts.
			cmd.SilenceErrors = true
			return fmt.Errorf("%s: %s", ex.Name, result)
		}
		return nil
	},
}

var execCmd = &cobra.Command{
	Use:   "exec <exercise>",
	Short: "Compile one exercise and run it interactively",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, printer, logger, err := setup()
		if err != nil {
			return err
		}

		ex, ok := exercise.Lookup(args[0])
		if !ok {
			return fmt.Errorf("no exercise named %q (try `haskellings list`)", args[0])
		}

		controller := pipeline.NewController(cfg, printer, logger)
		return controller.Exec(ex)
	},
}

var hintCmd = &cobra.Command{
	Use:   "hint <exercise>",
	Short: "Show the hint for one exercise",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ex, ok := exercise.Lookup(args[0])
		if !ok {
			return fmt.Errorf("no exercise named %q (try `haskellings list`)", args[0])
		}
		fmt.Println(ex.Hint)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all exercises in order",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, d := range exercise.All() {
			fmt.Printf("%-16s %-12s %s\n", d.Name, d.Kind.Tag, d.SourcePath())
		}
		return nil
	},
}
