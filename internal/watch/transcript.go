package watch

import (
	"strings"
	"sync"
)

const (
	// maxLineLength is the maximum length of a kept line before
	// truncation.
	maxLineLength = 4096

	// maxLines is how many recent pipeline output lines are kept for
	// the dashboard.
	maxLines = 200
)

// Transcript keeps the most recent pipeline output lines in a circular
// buffer for display in the watch dashboard.
type Transcript struct {
	buffer []string
	bufIdx int
	mu     sync.Mutex
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{buffer: make([]string, maxLines)}
}

// Replace clears the transcript and stores the output of one run.
func (t *Transcript) Replace(output string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buffer = make([]string, maxLines)
	t.bufIdx = 0
	for _, line := range strings.Split(strings.TrimRight(output, "\n"), "\n") {
		if len(line) > maxLineLength {
			line = line[:maxLineLength] + "...(truncated)"
		}
		t.buffer[t.bufIdx] = line
		t.bufIdx = (t.bufIdx + 1) % maxLines
	}
}

// Recent returns up to n of the most recent lines, oldest first.
func (t *Transcript) Recent(n int) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n > maxLines {
		n = maxLines
	}

	lines := make([]string, 0, n)
	for i := 0; i < n; i++ {
		idx := (t.bufIdx - n + i + maxLines) % maxLines
		if t.buffer[idx] != "" {
			lines = append(lines, t.buffer[idx])
		}
	}
	return lines
}
