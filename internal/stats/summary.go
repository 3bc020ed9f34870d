// Package stats aggregates results across a verify run over the whole
// exercise catalog.
package stats

import (
	"fmt"
	"time"

	"github.com/influxdata/tdigest"

	"github.com/TonyCrane/haskellings/internal/pipeline"
)

// Summary accumulates per-exercise outcomes and run durations.
// Durations go into a T-Digest so percentiles stay cheap even for
// large catalogs.
type Summary struct {
	total         int
	compileErrors int
	testFailures  int
	successes     int

	durations *tdigest.TDigest
	totalTime time.Duration
}

// NewSummary creates an empty summary.
func NewSummary() *Summary {
	return &Summary{
		durations: tdigest.NewWithCompression(100),
	}
}

// Record adds one exercise outcome.
func (s *Summary) Record(result pipeline.RunResult, d time.Duration) {
	s.total++
	s.totalTime += d
	s.durations.Add(d.Seconds(), 1)

	switch result {
	case pipeline.CompileError:
		s.compileErrors++
	case pipeline.TestFailed:
		s.testFailures++
	case pipeline.RunSuccess:
		s.successes++
	}
}

// AllPassed reports whether every recorded exercise succeeded.
func (s *Summary) AllPassed() bool {
	return s.total > 0 && s.successes == s.total
}

// Total returns the number of recorded exercises.
func (s *Summary) Total() int { return s.total }

// Successes returns the number of passing exercises.
func (s *Summary) Successes() int { return s.successes }

// Failures returns compile errors plus test failures.
func (s *Summary) Failures() int { return s.compileErrors + s.testFailures }

// Quantile returns the q-quantile of per-exercise run durations in
// seconds. Returns 0 when nothing was recorded.
func (s *Summary) Quantile(q float64) float64 {
	if s.total == 0 {
		return 0
	}
	return s.durations.Quantile(q)
}

// Lines renders the summary as printable lines.
func (s *Summary) Lines() []string {
	lines := []string{
		fmt.Sprintf("%d/%d exercises passing", s.successes, s.total),
	}
	if s.compileErrors > 0 {
		lines = append(lines, fmt.Sprintf("%d failed to compile", s.compileErrors))
	}
	if s.testFailures > 0 {
		lines = append(lines, fmt.Sprintf("%d compiled but failed their checks", s.testFailures))
	}
	if s.total > 0 {
		lines = append(lines,
			fmt.Sprintf("run time: %.2fs total, p50 %.2fs, p95 %.2fs per exercise",
				s.totalTime.Seconds(), s.Quantile(0.5), s.Quantile(0.95)))
	}
	return lines
}
