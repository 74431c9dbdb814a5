package panels

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/justinpbarnett/kws/internal/ui/border"
	"github.com/justinpbarnett/kws/internal/ui/styles"
)

type HelpOverlay struct {
	width  int
	height int
}

func NewHelpOverlay() *HelpOverlay {
	return &HelpOverlay{
		width:  46,
		height: 19,
	}
}

func (h HelpOverlay) Update(msg tea.Msg) (HelpOverlay, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "f1", "q":
			return h, func() tea.Msg { return CloseModalMsg{} }
		}
	}
	return h, nil
}

func (h HelpOverlay) View() string {
	keyStyle := lipgloss.NewStyle().Foreground(styles.KeybindKey).Bold(true)
	descStyle := styles.TextPrimaryStyle
	sectionStyle := styles.TitleStyle

	kv := func(key, desc string) string {
		return "  " + keyStyle.Render(padKey(key)) + "  " + descStyle.Render(desc)
	}

	var b strings.Builder
	b.WriteString(sectionStyle.Render("Script") + "\n")
	b.WriteString(kv("ctrl+r", "Run script") + "\n")
	b.WriteString(kv("ctrl+s/esc", "Stop running script") + "\n")
	b.WriteString(kv("ctrl+g", "Jump to first error") + "\n")
	b.WriteString(kv("f2", "Save script to file") + "\n")
	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("Output") + "\n")
	b.WriteString(kv("ctrl+o", "Toggle editor/output") + "\n")
	b.WriteString(kv("ctrl+y", "Copy output") + "\n")
	b.WriteString(kv("j/k", "Scroll output") + "\n")
	b.WriteString(kv("G/g", "Jump to bottom/top") + "\n")
	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("Global") + "\n")
	b.WriteString(kv("f1", "Toggle this help") + "\n")
	b.WriteString(kv("ctrl+q", "Quit"))

	bottomKb := []border.Keybind{{Key: "Esc", Label: " close"}}
	return border.RenderPanel("Keybinds", "", b.String(), bottomKb, h.width, h.height, true)
}

func padKey(k string) string {
	const w = 10
	if len(k) >= w {
		return k
	}
	return k + strings.Repeat(" ", w-len(k))
}
