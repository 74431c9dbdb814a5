package layout

// Layout holds the computed cell dimensions for all panels.
type Layout struct {
	TermWidth  int
	TermHeight int
	TooSmall   bool

	EditorWidth    int
	OutputWidth    int
	PanelHeight    int
	StatusBarWidth int
}

const (
	MinWidth  = 40
	MinHeight = 8

	EditorWeight = 0.5
)

// Calculate splits the terminal into editor and output side by side above
// a one-row status bar. Returns Layout with TooSmall=true under minimum.
func Calculate(termWidth, termHeight int) Layout {
	l := Layout{
		TermWidth:  termWidth,
		TermHeight: termHeight,
	}

	if termWidth < MinWidth || termHeight < MinHeight {
		l.TooSmall = true
		return l
	}

	l.EditorWidth = int(float64(termWidth) * EditorWeight)
	l.OutputWidth = termWidth - l.EditorWidth
	l.PanelHeight = termHeight - 1
	l.StatusBarWidth = termWidth
	return l
}
