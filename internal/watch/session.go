package watch

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/TonyCrane/haskellings/internal/config"
	"github.com/TonyCrane/haskellings/internal/exercise"
	"github.com/TonyCrane/haskellings/internal/metrics"
	"github.com/TonyCrane/haskellings/internal/pipeline"
	"github.com/TonyCrane/haskellings/internal/report"
)

// Event describes the outcome of one watch-mode pipeline run.
type Event struct {
	// Exercise that was run. Zero when AllDone.
	Exercise exercise.Descriptor

	// Result of the pipeline, valid when Err is nil and not AllDone.
	Result pipeline.RunResult

	// Output is the pipeline's captured report transcript.
	Output string

	// Completed is how many catalog exercises no longer carry the
	// not-done marker.
	Completed int

	// AllDone is set when every exercise is complete.
	AllDone bool

	// Err is set when the pipeline could not run (configuration or
	// filesystem trouble).
	Err error

	Duration time.Duration
}

// Session drives watch mode: it reacts to change notifications by
// running the pipeline on the first incomplete exercise and publishes
// an Event per run.
type Session struct {
	cfg       *config.Config
	logger    *slog.Logger
	collector *metrics.Collector // nil when metrics are disabled

	events chan Event
}

// NewSession creates a watch session. collector may be nil.
func NewSession(cfg *config.Config, logger *slog.Logger, collector *metrics.Collector) *Session {
	return &Session{
		cfg:       cfg,
		logger:    logger,
		collector: collector,
		events:    make(chan Event, 1),
	}
}

// Events returns the stream of run outcomes.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Run performs an initial pipeline run, then re-runs on every change
// notification until the context is cancelled.
func (s *Session) Run(ctx context.Context, changes <-chan string) error {
	s.runCurrent(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case path := <-changes:
			s.logger.Debug("change_detected", "path", path)
			s.runCurrent(ctx)
		}
	}
}

// runCurrent runs the pipeline on the first incomplete exercise and
// publishes the outcome.
func (s *Session) runCurrent(ctx context.Context) {
	ex, found, err := exercise.FirstIncomplete(s.cfg.ExercisesRoot())
	if err != nil {
		s.publish(ctx, Event{Err: err})
		return
	}

	completed := s.completedCount()
	if s.collector != nil {
		s.collector.SetCompleted(completed)
	}

	if !found {
		s.publish(ctx, Event{AllDone: true, Completed: completed})
		return
	}

	var buf bytes.Buffer
	controller := pipeline.NewController(s.cfg, report.NewPrinterWithWriter(&buf), s.logger)

	start := time.Now()
	result, err := controller.Run(ex)
	elapsed := time.Since(start)

	if s.collector != nil && err == nil {
		s.collector.RecordRun(result, elapsed.Seconds())
	}

	s.publish(ctx, Event{
		Exercise:  ex,
		Result:    result,
		Output:    buf.String(),
		Completed: completed,
		Err:       err,
		Duration:  elapsed,
	})
}

// completedCount counts catalog exercises without the not-done marker.
// Unreadable sources count as incomplete.
func (s *Session) completedCount() int {
	completed := 0
	for _, d := range exercise.All() {
		marked, err := exercise.HasMarker(filepath.Join(s.cfg.ExercisesRoot(), d.SourcePath()))
		if err == nil && !marked {
			completed++
		}
	}
	return completed
}

func (s *Session) publish(ctx context.Context, ev Event) {
	select {
	case s.events <- ev:
	case <-ctx.Done():
	}
}
