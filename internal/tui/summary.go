package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Digital-Shane/media-renamer/internal/media"
	"github.com/Digital-Shane/media-renamer/internal/tui/theme"
	"github.com/mattn/go-runewidth"
)

func init() {
	runewidth.DefaultCondition.EastAsianWidth = false
	runewidth.DefaultCondition.StrictEmojiNeutral = true
}

var statusOrder = []media.Status{
	media.StatusSuccess,
	media.StatusDryRun,
	media.StatusSkipped,
	media.StatusFailed,
}

// OutcomeLine renders a single file's outcome on one line, truncated to
// width when width is positive.
func OutcomeLine(o media.Outcome, width int, th theme.Theme) string {
	var b strings.Builder
	b.WriteString(th.StatusIcon(o.Status))
	b.WriteString(" ")
	b.WriteString(o.OriginalPath)

	switch o.Status {
	case media.StatusFailed:
		fmt.Fprintf(&b, " [%s] %s", o.Reason, o.Detail)
	case media.StatusSkipped:
		b.WriteString(" (already named)")
	default:
		b.WriteString(" -> ")
		b.WriteString(filepath.Base(o.ProposedPath))
	}

	line := b.String()
	if width > 0 {
		line = runewidth.Truncate(line, width, "…")
	}
	return line
}

// RenderSummary renders the end-of-run report. Verbose output lists every
// file with its status and warnings; otherwise only failures are listed.
func RenderSummary(s *media.Summary, verbose bool, width int, th theme.Theme) string {
	if s == nil {
		s = media.NewSummary()
	}

	var lines []string
	for _, o := range s.Outcomes {
		if !verbose && o.Status != media.StatusFailed {
			continue
		}
		lines = append(lines, OutcomeLine(o, width, th))
		if verbose {
			for _, w := range o.Warnings {
				lines = append(lines, th.WarningStyle().Render(truncate("    warning: "+w, width)))
			}
		}
	}
	if len(lines) > 0 {
		lines = append(lines, "")
	}

	badges := make([]string, 0, len(statusOrder)+1)
	badges = append(badges, fmt.Sprintf("%d files", s.Total()))
	for _, status := range statusOrder {
		n := s.Counts[status]
		if n == 0 && status != media.StatusFailed {
			continue
		}
		badges = append(badges, th.BadgeStyle(status).Render(fmt.Sprintf("%s %d", status, n)))
	}
	lines = append(lines, strings.Join(badges, " "))

	if s.AuthFailed() {
		lines = append(lines, th.WarningStyle().Render("a metadata provider rejected its credentials; check the API key"))
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
