package output

import "github.com/charmbracelet/lipgloss"

var (
	colorSuccess = lipgloss.Color("#8BC34A")
	colorWarning = lipgloss.Color("#FFC107")
	colorError   = lipgloss.Color("#e53935")
	colorInfo    = lipgloss.Color("#2196F3")
	colorMuted   = lipgloss.Color("#6b7280")
)

// Styles are bound to one renderer so that output written to a pipe or a
// buffer carries no escape codes.
type Styles struct {
	Title   lipgloss.Style
	Header  lipgloss.Style
	Body    lipgloss.Style
	Muted   lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
	Panel   lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Title:   r.NewStyle().Bold(true),
		Header:  r.NewStyle().Bold(true).Foreground(colorInfo),
		Body:    r.NewStyle(),
		Muted:   r.NewStyle().Foreground(colorMuted),
		Label:   r.NewStyle().Foreground(colorMuted),
		Value:   r.NewStyle().Bold(true),
		Success: r.NewStyle().Foreground(colorSuccess),
		Warning: r.NewStyle().Foreground(colorWarning),
		Error:   r.NewStyle().Foreground(colorError).Bold(true),
		Info:    r.NewStyle().Foreground(colorInfo),
		Panel:   r.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	}
}
