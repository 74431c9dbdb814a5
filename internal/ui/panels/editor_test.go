package panels

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func newSizedEditor(content string) Editor {
	e := NewEditor("script.kts", content, true)
	e.SetSize(60, 20)
	return e
}

func TestEditorInitialCursor(t *testing.T) {
	e := newSizedEditor("a\nb\nc")
	if row, col := e.Cursor(); row != 1 || col != 1 {
		t.Errorf("cursor = %d:%d, want 1:1", row, col)
	}
	if e.Dirty() {
		t.Error("new editor should not be dirty")
	}
}

func TestEditorGoto(t *testing.T) {
	e := newSizedEditor("first line\nsecond line\nthird line")

	tests := []struct {
		name             string
		row, col         int
		wantRow, wantCol int
	}{
		{"exact", 2, 5, 2, 5},
		{"line start", 3, 0, 3, 1},
		{"back up", 1, 3, 1, 3},
		{"row past end", 99, 1, 3, 1},
		{"row before start", -4, 2, 1, 2},
		{"col past end", 2, 500, 2, len("second line") + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e.Goto(tt.row, tt.col)
			row, col := e.Cursor()
			if row != tt.wantRow || col != tt.wantCol {
				t.Errorf("Goto(%d, %d) = %d:%d, want %d:%d",
					tt.row, tt.col, row, col, tt.wantRow, tt.wantCol)
			}
		})
	}
}

func TestEditorTypingMarksDirty(t *testing.T) {
	e := newSizedEditor("")
	e, _ = e.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if !e.Dirty() {
		t.Error("expected dirty after typing")
	}
	if e.Value() != "x" {
		t.Errorf("value = %q", e.Value())
	}
	e.MarkSaved()
	if e.Dirty() {
		t.Error("expected clean after MarkSaved")
	}
}

func TestEditorTabInsertsSpaces(t *testing.T) {
	e := newSizedEditor("x")
	e, _ = e.Update(tea.KeyMsg{Type: tea.KeyTab})
	if e.Value() != "    x" {
		t.Errorf("value = %q, want four spaces before x", e.Value())
	}
}

func TestEditorSetValueResets(t *testing.T) {
	e := newSizedEditor("old")
	e, _ = e.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("z")})
	e.SetValue("new\ncontent")
	if e.Dirty() {
		t.Error("SetValue should clear dirty")
	}
	if row, _ := e.Cursor(); row != 1 {
		t.Errorf("cursor row = %d, want 1", row)
	}
}

func TestEditorBlurredIgnoresTyping(t *testing.T) {
	e := newSizedEditor("a")
	e.SetFocused(false)
	e, _ = e.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("b")})
	if e.Value() != "a" {
		t.Errorf("blurred editor accepted input: %q", e.Value())
	}
}

func TestEditorView(t *testing.T) {
	e := newSizedEditor("val x = 1")
	view := e.View()
	if !strings.Contains(view, "script.kts") {
		t.Error("expected the script name in the title")
	}
	if !strings.Contains(view, "ln 1, col 1") {
		t.Error("expected the cursor badge")
	}
	if !strings.Contains(view, "run") {
		t.Error("expected run keybind while focused")
	}
	if lines := strings.Split(view, "\n"); len(lines) != 20 {
		t.Errorf("view has %d lines, want 20", len(lines))
	}

	e, _ = e.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("!")})
	if !strings.Contains(e.View(), "•") {
		t.Error("expected the modified marker after an edit")
	}
}
