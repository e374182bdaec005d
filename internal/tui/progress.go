package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Digital-Shane/media-renamer/internal/core"
	"github.com/Digital-Shane/media-renamer/internal/media"
	"github.com/Digital-Shane/media-renamer/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type pipelineEventMsg struct {
	event core.Event
	done  bool
}

// recentLines is how many finished files the progress view keeps on screen.
const recentLines = 5

// RunModel shows the progress of a rename run. It consumes the pipeline's
// event stream until the run finishes and exposes the final summary.
type RunModel struct {
	events <-chan core.Event
	cancel context.CancelFunc

	width  int
	height int

	progress progress.Model
	theme    theme.Theme
	dryRun   bool

	total      int
	done       int
	current    string
	recent     []media.Outcome
	summary    *media.Summary
	cancelling bool
	finished   bool
}

// NewRunModel creates a model reading events. cancel is called when the
// user interrupts the run; the model keeps draining events until the
// pipeline reports it is done.
func NewRunModel(events <-chan core.Event, cancel context.CancelFunc, dryRun bool, th theme.Theme) *RunModel {
	gradient := th.ProgressGradient()
	prog := progress.New(progress.WithGradient(gradient[0], gradient[1]))
	prog.Width = 50

	return &RunModel{
		events:   events,
		cancel:   cancel,
		width:    80,
		height:   12,
		progress: prog,
		theme:    th,
		dryRun:   dryRun,
	}
}

// Init starts reading pipeline events.
func (m *RunModel) Init() tea.Cmd {
	return m.waitForEvent()
}

func (m *RunModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return pipelineEventMsg{done: true}
		}
		return pipelineEventMsg{event: ev}
	}
}

// Update processes Bubble Tea messages.
func (m *RunModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.progress.Width = max(msg.Width-4, 10)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			if !m.cancelling && m.cancel != nil {
				m.cancel()
			}
			m.cancelling = true
			return m, nil
		}
	case pipelineEventMsg:
		return m.handleEvent(msg)
	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		m.progress = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *RunModel) handleEvent(msg pipelineEventMsg) (tea.Model, tea.Cmd) {
	if msg.done {
		m.finished = true
		return m, tea.Quit
	}

	ev := msg.event
	m.total = ev.Total
	switch ev.Type {
	case core.EventStarted:
		m.current = ev.Path
		return m, m.waitForEvent()
	case core.EventFinished:
		m.done = ev.Done
		m.recent = append(m.recent, ev.Outcome)
		if len(m.recent) > recentLines {
			m.recent = m.recent[len(m.recent)-recentLines:]
		}
	case core.EventDone:
		m.done = ev.Done
		m.summary = ev.Summary
		m.current = ""
	}

	ratio := 0.0
	if m.total > 0 {
		ratio = float64(m.done) / float64(m.total)
	}
	return m, tea.Batch(m.progress.SetPercent(ratio), m.waitForEvent())
}

// Summary returns the run summary once the pipeline has finished.
func (m *RunModel) Summary() *media.Summary {
	return m.summary
}

// Cancelled reports whether the user interrupted the run.
func (m *RunModel) Cancelled() bool {
	return m.cancelling
}

// View renders the progress screen.
func (m *RunModel) View() string {
	title := "Renaming media"
	if m.dryRun {
		title = "Renaming media (dry run)"
	}
	header := m.theme.HeaderStyle().Width(m.width).Render(title)

	count := fmt.Sprintf("%d/%d files", m.done, m.total)
	body := []string{
		m.progress.View(),
		count,
	}
	if m.current != "" {
		body = append(body, m.theme.MutedStyle().Render("Working: "+truncate(filepath.Base(m.current), m.width-13)))
	}
	if len(m.recent) > 0 {
		body = append(body, "")
		for _, o := range m.recent {
			body = append(body, m.outcomeLine(o))
		}
	}

	status := "ctrl+c to cancel"
	switch {
	case m.finished:
		status = "done"
	case m.cancelling:
		status = "cancelling, waiting for in-flight files"
	}
	footer := m.theme.StatusBarStyle().Width(m.width).Render(status)

	panel := m.theme.PanelStyle().Width(max(m.width-2, 20)).Render(strings.Join(body, "\n"))
	return lipgloss.JoinVertical(lipgloss.Left, header, panel, footer)
}

func (m *RunModel) outcomeLine(o media.Outcome) string {
	icon := m.theme.StatusIcon(o.Status)
	name := filepath.Base(o.OriginalPath)
	if o.Status == media.StatusFailed {
		line := fmt.Sprintf("%s %s: %s", icon, name, o.Detail)
		return truncate(line, m.width-6)
	}
	line := fmt.Sprintf("%s %s -> %s", icon, name, filepath.Base(o.ProposedPath))
	return truncate(line, m.width-6)
}
