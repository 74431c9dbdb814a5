package border

import "strings"

// RenderPanel assembles a complete bordered panel:
//
//	top border (title, optional badge)
//	content lines (with side borders)
//	bottom border (keybinds when focused)
//
// Content is padded or cropped to exactly height-2 rows.
func RenderPanel(title, badge, content string, keybinds []Keybind,
	width, height int, focused bool) string {

	if height < 2 || width < 2 {
		return ""
	}

	innerHeight := height - 2
	var lines []string
	if content != "" {
		lines = strings.Split(content, "\n")
	}
	if len(lines) > innerHeight {
		lines = lines[:innerHeight]
	}
	for len(lines) < innerHeight {
		lines = append(lines, "")
	}

	top := RenderBorderTop(title, badge, width, focused)
	middle := RenderBorderSides(strings.Join(lines, "\n"), width, focused)
	bottom := RenderBorderBottom(keybinds, width, focused)
	return top + "\n" + middle + "\n" + bottom
}
