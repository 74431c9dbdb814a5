package styles

import "github.com/charmbracelet/lipgloss"

// Common reusable styles built from the color tokens.
var (
	TextPrimaryStyle   = lipgloss.NewStyle().Foreground(TextPrimary)
	TextSecondaryStyle = lipgloss.NewStyle().Foreground(TextSecondary)
	TextDimStyle       = lipgloss.NewStyle().Foreground(TextDim)
	TitleStyle         = lipgloss.NewStyle().Foreground(TitleText).Bold(true)

	StdoutStyle = lipgloss.NewStyle().Foreground(TextPrimary)
	StderrStyle = lipgloss.NewStyle().Foreground(StderrText)
	// Script locations inside compiler output
	LocationStyle = lipgloss.NewStyle().Foreground(LocationText).Underline(true)

	LineNumberStyle = lipgloss.NewStyle().Foreground(LineNumber)
	CursorLineStyle = lipgloss.NewStyle().Background(CursorLineBg)
)

// Monochrome drops every color, for terminals configured with ui.theme
// "mono".
func Monochrome() {
	plain := lipgloss.NewStyle()
	TextPrimaryStyle = plain
	TextSecondaryStyle = plain
	TextDimStyle = plain
	TitleStyle = plain.Bold(true)
	StdoutStyle = plain
	StderrStyle = plain.Bold(true)
	LocationStyle = plain.Underline(true)
	LineNumberStyle = plain
	CursorLineStyle = plain
}
