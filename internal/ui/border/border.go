package border

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/justinpbarnett/kws/internal/ui/styles"
)

const (
	cornerTL = "╭"
	cornerTR = "╮"
	cornerBL = "╰"
	cornerBR = "╯"
	horizBar = "─"
	vertBar  = "│"
)

func borderColor(focused bool) lipgloss.AdaptiveColor {
	if focused {
		return styles.BorderFocused
	}
	return styles.BorderUnfocused
}

// RenderBorderTop renders: ╭─ Title ──────── badge ─╮
// The badge is right-aligned and dropped when it does not fit.
func RenderBorderTop(title, badge string, width int, focused bool) string {
	if width < 2 {
		return ""
	}
	bs := lipgloss.NewStyle().Foreground(borderColor(focused))
	ts := styles.TextSecondaryStyle.Bold(true)
	if focused {
		ts = styles.TitleStyle
	}

	innerWidth := width - 2
	left := ""
	if title != "" {
		left = bs.Render(horizBar+" ") + ts.Render(title) + " "
	}
	right := ""
	if badge != "" {
		right = " " + badge + bs.Render(" "+horizBar)
	}

	fill := innerWidth - lipgloss.Width(left) - lipgloss.Width(right)
	if fill < 0 && right != "" {
		fill += lipgloss.Width(right)
		right = ""
	}
	if fill < 0 {
		// Title alone is too wide: cut it to the panel.
		left = lipgloss.NewStyle().MaxWidth(innerWidth).Render(left)
		fill = innerWidth - lipgloss.Width(left)
	}

	return bs.Render(cornerTL) + left + bs.Render(strings.Repeat(horizBar, max(fill, 0))) + right + bs.Render(cornerTR)
}

// RenderBorderBottom renders the bottom border.
// If focused and keybinds provided: ╰─ [^r] run  [^s] stop ──╯
// Keybinds that overflow the panel are dropped.
func RenderBorderBottom(keybinds []Keybind, width int, focused bool) string {
	if width < 2 {
		return ""
	}
	bs := lipgloss.NewStyle().Foreground(borderColor(focused))
	innerWidth := width - 2

	if !focused || len(keybinds) == 0 {
		return bs.Render(cornerBL + strings.Repeat(horizBar, innerWidth) + cornerBR)
	}

	maxKbWidth := max(innerWidth-3, 0)
	var parts []string
	used := 0
	for _, kb := range keybinds {
		rendered := RenderKeybind(kb)
		w := lipgloss.Width(rendered)
		sep := 0
		if len(parts) > 0 {
			sep = 2
		}
		if used+sep+w > maxKbWidth {
			break
		}
		parts = append(parts, rendered)
		used += sep + w
	}

	fill := max(maxKbWidth-used, 0)
	return bs.Render(cornerBL+horizBar+" ") +
		strings.Join(parts, "  ") +
		bs.Render(" "+strings.Repeat(horizBar, fill)+cornerBR)
}

// RenderBorderSides wraps content lines with │ on each side, truncating or
// padding each to width-2 columns. Widths are ANSI-aware.
func RenderBorderSides(content string, width int, focused bool) string {
	if width < 2 {
		return content
	}
	bs := lipgloss.NewStyle().Foreground(borderColor(focused))
	truncator := lipgloss.NewStyle().MaxWidth(width - 2)

	innerWidth := width - 2
	lines := strings.Split(content, "\n")
	result := make([]string, 0, len(lines))
	for _, line := range lines {
		w := lipgloss.Width(line)
		if w > innerWidth {
			line = truncator.Render(line)
			w = lipgloss.Width(line)
		}
		if w < innerWidth {
			line += strings.Repeat(" ", innerWidth-w)
		}
		result = append(result, bs.Render(vertBar)+line+bs.Render(vertBar))
	}
	return strings.Join(result, "\n")
}
