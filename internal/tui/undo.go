package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Digital-Shane/media-renamer/internal/log"
	"github.com/Digital-Shane/media-renamer/internal/media"
	"github.com/Digital-Shane/media-renamer/internal/tui/theme"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var (
	undoSessionFn = log.UndoSession
	markUndoneFn  = log.MarkUndone
)

type undoCompleteMsg struct {
	successful int
	failed     int
	err        error
}

// UndoModel lets the user pick a journal session and reverse it.
type UndoModel struct {
	sessions []*log.LogSession
	paths    []string
	cursor   int

	confirming bool
	inProgress bool
	complete   bool
	successful int
	failed     int
	err        error

	width   int
	height  int
	details viewport.Model
	theme   theme.Theme
}

// NewUndoModel creates a picker over sessions, newest first. paths holds
// the journal file each session was read from.
func NewUndoModel(sessions []*log.LogSession, paths []string, th theme.Theme) *UndoModel {
	return &UndoModel{
		sessions: sessions,
		paths:    paths,
		width:    80,
		height:   24,
		details:  viewport.New(38, 16),
		theme:    th,
	}
}

func (m *UndoModel) Init() tea.Cmd {
	return nil
}

func (m *UndoModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.details.Width = max(m.width/2-4, 10)
		m.details.Height = max(m.height-6, 3)
		return m, nil
	case undoCompleteMsg:
		m.inProgress = false
		m.complete = true
		m.successful, m.failed, m.err = msg.successful, msg.failed, msg.err
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *UndoModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" || key == "esc" || (key == "q" && !m.inProgress) {
		return m, tea.Quit
	}
	if m.complete || m.inProgress || len(m.sessions) == 0 {
		return m, nil
	}

	if m.confirming {
		switch key {
		case "enter", "y":
			m.confirming = false
			m.inProgress = true
			return m, m.performUndo(m.cursor)
		case "n":
			m.confirming = false
		}
		return m, nil
	}

	switch key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.details.GotoTop()
		}
	case "down", "j":
		if m.cursor < len(m.sessions)-1 {
			m.cursor++
			m.details.GotoTop()
		}
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.details, cmd = m.details.Update(msg)
		return m, cmd
	case "enter":
		m.confirming = true
	}
	return m, nil
}

func (m *UndoModel) performUndo(i int) tea.Cmd {
	session, path := m.sessions[i], m.paths[i]
	return func() tea.Msg {
		successful, failed, _ := undoSessionFn(session)
		var err error
		if failed == 0 {
			err = markUndoneFn(path)
		}
		return undoCompleteMsg{successful: successful, failed: failed, err: err}
	}
}

// Result reports how many renames were reversed and whether the session
// could be retired. It is only meaningful once Done returns true.
func (m *UndoModel) Result() (successful, failed int, err error) {
	return m.successful, m.failed, m.err
}

// Done reports whether an undo was carried out.
func (m *UndoModel) Done() bool {
	return m.complete
}

func (m *UndoModel) View() string {
	header := m.theme.HeaderStyle().Width(m.width).Render("Undo a previous run")

	var body, status string
	switch {
	case len(m.sessions) == 0:
		body = m.theme.MutedStyle().Render("No operation sessions found to undo.")
		status = "q: quit"
	case m.complete:
		body = fmt.Sprintf("Restored %d file(s)", m.successful)
		if m.failed > 0 {
			body += fmt.Sprintf(", %d could not be restored", m.failed)
		}
		if m.err != nil {
			body += "\n" + m.theme.WarningStyle().Render(m.err.Error())
		}
		status = "q: quit"
	case m.inProgress:
		body = "Restoring files..."
		status = "please wait"
	case m.confirming:
		body = m.renderConfirmation(m.sessions[m.cursor])
		status = "enter/y: undo | n: back"
	default:
		left := m.theme.PanelStyle().Width(max(m.width/2-2, 10)).Render(m.renderList())
		m.details.SetContent(m.renderDetails(m.sessions[m.cursor]))
		right := m.theme.PanelStyle().Width(max(m.width-m.width/2-2, 10)).Render(m.details.View())
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, right)
		status = "↑↓ select | pgup/pgdn scroll | enter: undo | q: quit"
	}

	footer := m.theme.StatusBarStyle().Width(m.width).Render(status)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m *UndoModel) renderList() string {
	lines := make([]string, 0, len(m.sessions))
	for i, s := range m.sessions {
		prefix := "  "
		if i == m.cursor {
			prefix = "> "
		}
		line := fmt.Sprintf("%s%s (%d renamed)", prefix, relativeTime(s.Metadata.Timestamp), s.Metadata.SuccessfulOps)
		lines = append(lines, runewidth.Truncate(line, max(m.width/2-6, 10), "…"))
	}
	return strings.Join(lines, "\n")
}

func (m *UndoModel) renderDetails(s *log.LogSession) string {
	label := lipgloss.NewStyle().Bold(true).Foreground(m.theme.Colors().Accent)
	width := m.details.Width

	var b strings.Builder
	b.WriteString(label.Render("Command: ") + strings.Join(s.Metadata.CommandArgs, " ") + "\n")
	b.WriteString(label.Render("Date: ") + s.Metadata.Timestamp.Format("2006-01-02 15:04:05") + "\n")
	b.WriteString(label.Render("Directory: ") + s.Metadata.WorkingDir + "\n")
	b.WriteString(label.Render("Session: ") + m.theme.MutedStyle().Render(s.Metadata.SessionID) + "\n\n")

	for _, op := range s.Operations {
		status := media.StatusSuccess
		if !op.Success {
			status = media.StatusFailed
		}
		line := fmt.Sprintf("%s %s -> %s", m.theme.StatusIcon(status), filepath.Base(op.SourcePath), filepath.Base(op.DestPath))
		b.WriteString(runewidth.Truncate(line, width, "…") + "\n")
	}
	return b.String()
}

func (m *UndoModel) renderConfirmation(s *log.LogSession) string {
	text := fmt.Sprintf("Move %d file(s) back to their original names?\n\nSession: %s\nDate: %s\nDirectory: %s",
		s.Metadata.SuccessfulOps,
		s.Metadata.SessionID,
		s.Metadata.Timestamp.Format("2006-01-02 15:04:05"),
		s.Metadata.WorkingDir)
	return m.theme.PanelStyle().
		BorderForeground(m.theme.Colors().Warning).
		Padding(1, 2).
		Width(min(60, m.width-2)).
		Render(text)
}

func relativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
