package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/TonyCrane/haskellings/internal/exercise"
	"github.com/TonyCrane/haskellings/internal/logging"
	"github.com/TonyCrane/haskellings/internal/metrics"
	"github.com/TonyCrane/haskellings/internal/pipeline"
	"github.com/TonyCrane/haskellings/internal/report"
	"github.com/TonyCrane/haskellings/internal/watch"
)

var (
	watchPlain   bool
	watchMetrics string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-check the current exercise on every save",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, printer, logger, err := setup()
		if err != nil {
			return err
		}
		if watchMetrics != "" {
			cfg.MetricsAddr = watchMetrics
		}

		// The TUI owns the terminal, so logs are discarded unless the
		// learner asked for the plain loop.
		if !watchPlain {
			logger = logging.NewLoggerWithWriter(io.Discard, cfg.LogFormat, "info")
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		var collector *metrics.Collector
		if cfg.MetricsAddr != "" {
			registry := prometheus.NewRegistry()
			collector = metrics.NewCollector(registry)
			server := metrics.NewServer(cfg.MetricsAddr, registry, logger)
			server.Start()
			defer func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer shutdownCancel()
				server.Shutdown(shutdownCtx)
			}()
		}

		watcher, err := watch.NewWatcher(cfg.ExercisesRoot(), watch.DefaultDebounce)
		if err != nil {
			return fmt.Errorf("watching %s: %w", cfg.ExercisesRoot(), err)
		}
		defer watcher.Close()

		session := watch.NewSession(cfg, logger, collector)

		// Filesystem changes and manual re-run requests share one
		// trigger channel.
		triggers := make(chan string, 1)
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case path := <-watcher.Changes():
					select {
					case triggers <- path:
					default:
					}
				}
			}
		}()

		go watcher.Run(ctx)
		go session.Run(ctx, triggers)

		if watchPlain {
			return runPlainLoop(ctx, session, printer)
		}

		model := watch.NewModel(session.Events(), triggers)
		program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
		_, err = program.Run()
		return err
	},
}

// runPlainLoop prints each run outcome directly, for terminals where
// the dashboard is unwanted.
func runPlainLoop(ctx context.Context, session *watch.Session, printer *report.Printer) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-session.Events():
			switch {
			case ev.Err != nil:
				printer.Failure("Error: %v", ev.Err)
			case ev.AllDone:
				printer.Success("All exercises complete. Well done!")
			default:
				if ev.Output != "" {
					printer.Line(ev.Output)
				}
				if ev.Result == pipeline.RunSuccess {
					printer.Info("Remove the %q comment from %s to move on.",
						exercise.NotDoneMarker, ev.Exercise.SourceFile())
				}
			}
		}
	}
}

func init() {
	watchCmd.Flags().BoolVar(&watchPlain, "plain", false, "print results instead of showing the dashboard")
	watchCmd.Flags().StringVar(&watchMetrics, "metrics", "", "serve Prometheus metrics on this address during the session")
}
