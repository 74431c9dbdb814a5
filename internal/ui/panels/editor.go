package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/justinpbarnett/kws/internal/ui/border"
	"github.com/justinpbarnett/kws/internal/ui/styles"
)

const tabWidth = 4

// Editor is the script pane: a multi-line textarea inside a bordered panel.
type Editor struct {
	textarea textarea.Model
	name     string
	width    int
	height   int
	focused  bool
	dirty    bool
}

func NewEditor(name, content string, showLineNumbers bool) Editor {
	ta := textarea.New()
	ta.Prompt = ""
	ta.ShowLineNumbers = showLineNumbers
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.FocusedStyle.CursorLine = styles.CursorLineStyle
	ta.FocusedStyle.LineNumber = styles.LineNumberStyle
	ta.BlurredStyle.LineNumber = styles.LineNumberStyle
	ta.SetValue(content)
	ta.Focus()

	e := Editor{textarea: ta, name: name, focused: true}
	e.Goto(1, 1)
	return e
}

func (e Editor) Update(msg tea.Msg) (Editor, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && km.Type == tea.KeyTab {
		e.textarea.InsertString(strings.Repeat(" ", tabWidth))
		e.dirty = true
		return e, nil
	}
	before := e.textarea.Value()
	var cmd tea.Cmd
	e.textarea, cmd = e.textarea.Update(msg)
	if e.textarea.Value() != before {
		e.dirty = true
	}
	return e, cmd
}

func (e Editor) View() string {
	info := e.textarea.LineInfo()
	badge := styles.TextSecondaryStyle.Render(
		fmt.Sprintf("ln %d, col %d", e.textarea.Line()+1, info.StartColumn+info.ColumnOffset+1),
	)
	title := e.name
	if e.dirty {
		title += " •"
	}

	var keybinds []border.Keybind
	if e.focused {
		keybinds = []border.Keybind{
			{Key: "^r", Label: " run"},
			{Key: "^g", Label: " goto error"},
			{Key: "^o", Label: " output"},
		}
	}
	return border.RenderPanel(title, badge, e.textarea.View(), keybinds, e.width, e.height, e.focused)
}

func (e *Editor) SetSize(w, h int) {
	e.width = w
	e.height = h
	e.textarea.SetWidth(max(w-2, 1))
	e.textarea.SetHeight(max(h-2, 1))
}

func (e *Editor) SetFocused(focused bool) {
	e.focused = focused
	if focused {
		e.textarea.Focus()
	} else {
		e.textarea.Blur()
	}
}

func (e Editor) Focused() bool { return e.focused }

func (e Editor) Value() string { return e.textarea.Value() }

// SetValue replaces the script, for example after the file changed on disk.
func (e *Editor) SetValue(s string) {
	e.textarea.SetValue(s)
	e.dirty = false
	e.Goto(1, 1)
}

// MarkSaved clears the modified marker.
func (e *Editor) MarkSaved() { e.dirty = false }

func (e Editor) Dirty() bool { return e.dirty }

// Cursor returns the 1-based row and column of the cursor.
func (e Editor) Cursor() (row, col int) {
	info := e.textarea.LineInfo()
	return e.textarea.Line() + 1, info.StartColumn + info.ColumnOffset + 1
}

// Goto moves the cursor to a 1-based row and column. A column of 0 or less
// means the start of the line; out-of-range values are clamped.
func (e *Editor) Goto(row, col int) {
	target := min(max(row, 1), e.textarea.LineCount()) - 1

	// Cursor movement is by visual row, so a wrapped line takes several steps.
	for guard := 0; e.textarea.Line() > target && guard < 100000; guard++ {
		e.textarea.CursorUp()
	}
	for guard := 0; e.textarea.Line() < target && guard < 100000; guard++ {
		e.textarea.CursorDown()
	}
	e.textarea.CursorStart()
	if col > 1 {
		e.textarea.SetCursor(col - 1)
	}
}
