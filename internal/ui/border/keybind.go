package border

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/justinpbarnett/kws/internal/ui/styles"
)

// Keybind is a single hint in a panel's bottom border: [^r] run.
type Keybind struct {
	Key   string
	Label string
}

func RenderKeybind(kb Keybind) string {
	keyStyle := lipgloss.NewStyle().Foreground(styles.KeybindKey).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(styles.KeybindLabel)
	return keyStyle.Render("["+kb.Key+"]") + labelStyle.Render(kb.Label)
}

// KeybindWidth is the display width of a rendered keybind.
func KeybindWidth(kb Keybind) int {
	return 2 + lipgloss.Width(kb.Key) + lipgloss.Width(kb.Label)
}
