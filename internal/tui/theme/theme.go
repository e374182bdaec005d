package theme

import (
	"os"
	"runtime"

	"github.com/Digital-Shane/media-renamer/internal/media"
	"github.com/charmbracelet/lipgloss"
)

// Colors holds the palette shared by the progress view and the summary.
type Colors struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Accent     lipgloss.Color
	Background lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
}

// Theme centralizes colors, borders and status icons.
type Theme struct {
	colors Colors
	panel  lipgloss.Border
	icons  map[media.Status]string
}

// Option configures a Theme during construction.
type Option func(*Theme)

// WithColors overrides the base color palette.
func WithColors(colors Colors) Option {
	return func(t *Theme) {
		t.colors = colors
	}
}

// WithASCII forces the ASCII status icons.
func WithASCII() Option {
	return func(t *Theme) {
		t.icons = asciiIcons
	}
}

// New constructs a Theme with optional overrides applied.
func New(opts ...Option) Theme {
	t := Theme{
		colors: Colors{
			Primary:    lipgloss.Color("#3a6b4a"),
			Secondary:  lipgloss.Color("#5a8c6a"),
			Accent:     lipgloss.Color("#8fc279"),
			Background: lipgloss.Color("#f8f8f8"),
			Muted:      lipgloss.Color("#9ba8c0"),
			Success:    lipgloss.Color("#5dc796"),
			Warning:    lipgloss.Color("#e5b454"),
			Error:      lipgloss.Color("#f04c56"),
		},
		panel: lipgloss.RoundedBorder(),
		icons: emojiIcons,
	}
	if isLimitedTerminal() {
		t.icons = asciiIcons
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// Default returns the default Theme configuration.
func Default() Theme {
	return New()
}

// Colors exposes the theme color palette.
func (t Theme) Colors() Colors {
	return t.colors
}

// StatusIcon returns the icon shown next to a file with the given status.
func (t Theme) StatusIcon(s media.Status) string {
	return t.icons[s]
}

// HeaderStyle returns the style used for primary headers.
func (t Theme) HeaderStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Background(t.colors.Primary).
		Foreground(t.colors.Background).
		Align(lipgloss.Center)
}

// StatusBarStyle returns the style used for the footer.
func (t Theme) StatusBarStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Background(t.colors.Secondary).
		Foreground(t.colors.Background).
		Padding(0, 1)
}

// PanelStyle returns the bordered panel container style.
func (t Theme) PanelStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(t.panel).
		BorderForeground(t.colors.Accent).
		Padding(0, 1)
}

// MutedStyle renders secondary text.
func (t Theme) MutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.colors.Muted)
}

// BadgeStyle returns the badge style for a status.
func (t Theme) BadgeStyle(s media.Status) lipgloss.Style {
	base := lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(t.colors.Background)

	switch s {
	case media.StatusSuccess:
		return base.Background(t.colors.Success)
	case media.StatusFailed:
		return base.Background(t.colors.Error)
	case media.StatusDryRun:
		return base.Background(t.colors.Accent)
	default:
		return base.Background(t.colors.Muted)
	}
}

// WarningStyle renders attribute and fallback warnings.
func (t Theme) WarningStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.colors.Warning)
}

// ProgressGradient returns the gradient colors for progress bars.
func (t Theme) ProgressGradient() []string {
	return []string{string(t.colors.Primary), string(t.colors.Accent)}
}

// isLimitedTerminal detects environments where ASCII icons are preferable.
func isLimitedTerminal() bool {
	if os.Getenv("SSH_CLIENT") != "" || os.Getenv("SSH_TTY") != "" || os.Getenv("SSH_CONNECTION") != "" {
		return true
	}
	return runtime.GOOS == "windows"
}

var emojiIcons = map[media.Status]string{
	media.StatusSuccess: "✅",
	media.StatusSkipped: "=",
	media.StatusDryRun:  "🔍",
	media.StatusFailed:  "❌",
}

var asciiIcons = map[media.Status]string{
	media.StatusSuccess: "[v]",
	media.StatusSkipped: "[=]",
	media.StatusDryRun:  "[?]",
	media.StatusFailed:  "[!]",
}
