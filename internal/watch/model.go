package watch

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/TonyCrane/haskellings/internal/exercise"
	"github.com/TonyCrane/haskellings/internal/pipeline"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5E7EB")).
			Background(lipgloss.Color("#7C3AED")).
			Bold(true).
			Padding(0, 1)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981")).
		Bold(true)

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))
)

// eventMsg wraps a session Event for Bubble Tea.
type eventMsg Event

// Model is the watch-mode dashboard.
type Model struct {
	events     <-chan Event
	rerun      chan<- string
	transcript *Transcript

	last     *Event
	total    int
	width    int
	height   int
	quitting bool
}

// NewModel creates the dashboard model. Events come from a Session;
// rerun receives a token when the learner requests a manual re-run.
func NewModel(events <-chan Event, rerun chan<- string) Model {
	return Model{
		events:     events,
		rerun:      rerun,
		transcript: NewTranscript(),
		total:      len(exercise.All()),
		width:      80,
		height:     24,
	}
}

// Init starts listening for session events.
func (m Model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			select {
			case m.rerun <- "manual":
			default:
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case eventMsg:
		ev := Event(msg)
		m.last = &ev
		m.transcript.Replace(ev.Output)
		return m, waitForEvent(m.events)
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("haskellings watch"))
	b.WriteString("\n\n")

	if m.last == nil {
		b.WriteString(dimStyle.Render("Compiling..."))
		b.WriteString("\n")
		return b.String()
	}

	ev := m.last

	switch {
	case ev.Err != nil:
		b.WriteString(failStyle.Render(fmt.Sprintf("Error: %v", ev.Err)))
	case ev.AllDone:
		b.WriteString(okStyle.Render("All exercises complete. Well done!"))
	default:
		status := failStyle.Render(ev.Result.String())
		if ev.Result == pipeline.RunSuccess {
			status = okStyle.Render(ev.Result.String())
		}
		b.WriteString(fmt.Sprintf("Exercise %s: %s  %s",
			ev.Exercise.Name,
			status,
			dimStyle.Render(fmt.Sprintf("(%d/%d complete, %.1fs)", ev.Completed, m.total, ev.Duration.Seconds())),
		))
	}
	b.WriteString("\n\n")

	// Transcript, clipped to the window.
	budget := m.height - 8
	if budget < 3 {
		budget = 3
	}
	for _, line := range m.transcript.Recent(budget) {
		b.WriteString(line)
		b.WriteString("\n")
	}

	if !ev.AllDone && ev.Result == pipeline.RunSuccess && ev.Err == nil {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf(
			"Remove the %q comment from %s to move on.",
			exercise.NotDoneMarker, ev.Exercise.SourceFile())))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("r: re-run  q: quit"))
	b.WriteString("\n")
	return b.String()
}

func waitForEvent(events <-chan Event) tea.Cmd {
	return func() tea.Msg {
		return eventMsg(<-events)
	}
}
