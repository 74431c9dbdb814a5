package layout

import "testing"

func TestTooSmall(t *testing.T) {
	if l := Calculate(MinWidth-1, 24); !l.TooSmall {
		t.Errorf("expected TooSmall for width %d", MinWidth-1)
	}
	if l := Calculate(80, MinHeight-1); !l.TooSmall {
		t.Errorf("expected TooSmall for height %d", MinHeight-1)
	}
}

func TestSplitCoversTerminal(t *testing.T) {
	sizes := [][2]int{{MinWidth, MinHeight}, {80, 24}, {81, 25}, {200, 60}}
	for _, sz := range sizes {
		l := Calculate(sz[0], sz[1])
		if l.TooSmall {
			t.Errorf("%dx%d should not be too small", sz[0], sz[1])
			continue
		}
		if l.EditorWidth+l.OutputWidth != sz[0] {
			t.Errorf("%dx%d: widths %d+%d do not fill the terminal", sz[0], sz[1], l.EditorWidth, l.OutputWidth)
		}
		if l.PanelHeight+1 != sz[1] {
			t.Errorf("%dx%d: panel height %d leaves no room for exactly one status row", sz[0], sz[1], l.PanelHeight)
		}
		if l.StatusBarWidth != sz[0] {
			t.Errorf("%dx%d: status bar width %d", sz[0], sz[1], l.StatusBarWidth)
		}
	}
}
