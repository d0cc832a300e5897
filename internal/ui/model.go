package ui

import (
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/linuxmatters/arianator/internal/pipeline"
)

// Spinner frames for steps without fine-grained progress
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// StepProgress tracks the display state of one pipeline step
type StepProgress struct {
	Step     pipeline.Step
	State    pipeline.State
	Progress float64
	Detail   string
	Level    float64 // dBFS, NaN until reported
	Peak     float64 // loudest level seen during the step
	Started  time.Time
	Elapsed  time.Duration
	Error    error
}

// Model is the Bubbletea model for a single arianator run
type Model struct {
	Text  string
	Voice string

	Steps   []StepProgress
	Current int // index of the running step, -1 when idle

	StartTime time.Time
	Summary   *pipeline.Summary
	Err       error
	Done      bool

	// Interrupted is set when the user quits before the run finishes
	Interrupted bool
	cancel      func()

	spinnerIndex int

	Width  int
	Height int
}

// NewModel creates a model listing steps in run order. cancel, if not
// nil, is called when the user quits early.
func NewModel(text, voice string, steps []pipeline.Step, cancel func()) Model {
	m := Model{
		Text:      text,
		Voice:     voice,
		Steps:     make([]StepProgress, len(steps)),
		Current:   -1,
		StartTime: time.Now(),
		cancel:    cancel,
	}
	for i, s := range steps {
		m.Steps[i] = StepProgress{Step: s, Level: math.NaN(), Peak: math.Inf(-1)}
	}
	return m
}

// Init starts the spinner
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if !m.Done {
				m.Interrupted = true
				if m.cancel != nil {
					m.cancel()
				}
			}
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case tickMsg:
		if m.Done {
			return m, nil
		}
		m.spinnerIndex = (m.spinnerIndex + 1) % len(spinnerFrames)
		return m, tickCmd()

	case EventMsg:
		m.apply(msg.Event)

	case DoneMsg:
		m.Summary = msg.Summary
		m.Err = msg.Err
		m.Done = true
		m.Current = -1
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) apply(ev pipeline.Event) {
	i := m.indexOf(ev.Step)
	if i < 0 {
		return
	}
	s := &m.Steps[i]
	if s.State == pipeline.Queued && ev.State == pipeline.Running {
		s.Started = time.Now()
	}
	s.State = ev.State
	s.Progress = ev.Progress
	if ev.Detail != "" {
		s.Detail = ev.Detail
	}
	if ev.HasLevel() {
		s.Level = ev.Level
		s.Peak = math.Max(s.Peak, ev.Level)
	}
	if ev.Elapsed > 0 {
		s.Elapsed = ev.Elapsed
	}

	switch ev.State {
	case pipeline.Running:
		m.Current = i
	case pipeline.Failed:
		s.Error = ev.Err
		m.Current = -1
	default:
		if m.Current == i {
			m.Current = -1
		}
	}
}

func (m Model) indexOf(step pipeline.Step) int {
	for i, s := range m.Steps {
		if s.Step == step {
			return i
		}
	}
	return -1
}

// CompletedSteps counts steps that finished or were skipped
func (m Model) CompletedSteps() int {
	n := 0
	for _, s := range m.Steps {
		if s.State == pipeline.Done || s.State == pipeline.Skipped {
			n++
		}
	}
	return n
}

// View renders the UI
func (m Model) View() string {
	if m.Done {
		return renderCompletionSummary(m)
	}
	return renderProcessingView(m)
}
