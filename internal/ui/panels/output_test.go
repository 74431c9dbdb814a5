package panels

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/justinpbarnett/kws/internal/diag"
	"github.com/justinpbarnett/kws/internal/process"
)

func newSizedOutput() Output {
	o := NewOutput(diag.NewScanner("script", "kts"))
	o.SetSize(60, 10)
	return o
}

func TestOutputEmptyState(t *testing.T) {
	o := newSizedOutput()
	if !strings.Contains(o.View(), "Press ctrl+r to run") {
		t.Error("expected the empty-state hint")
	}
	if o.PlainText() != "" {
		t.Errorf("plain text = %q", o.PlainText())
	}
}

func TestOutputAppendInterleavesStreams(t *testing.T) {
	o := newSizedOutput()
	o.Append(process.OutputEvent(process.Stdout, []byte("one\n")))
	o.Append(process.OutputEvent(process.Stderr, []byte("two\n")))
	o.Append(process.OutputEvent(process.Stdout, []byte("three\n")))
	o.Append(process.ExitEvent(0))

	if got := o.PlainText(); got != "one\ntwo\nthree\n" {
		t.Errorf("plain text = %q", got)
	}
	view := ansi.Strip(o.View())
	for _, want := range []string{"one", "two", "three"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestOutputNoteExcludedFromPlainText(t *testing.T) {
	o := newSizedOutput()
	o.Note("-- run 1 --")
	o.Append(process.OutputEvent(process.Stdout, []byte("x\n")))
	if o.PlainText() != "x\n" {
		t.Errorf("plain text = %q", o.PlainText())
	}
	if !strings.Contains(o.View(), "run 1") {
		t.Error("expected the note in the view")
	}
}

func TestOutputFirstLocation(t *testing.T) {
	o := newSizedOutput()
	o.Append(process.OutputEvent(process.Stdout, []byte("script.kts:9:9: printed, not an error\n")))
	if _, ok := o.FirstLocation(); ok {
		t.Error("stdout locations must be ignored")
	}

	o.Append(process.OutputEvent(process.Stderr, []byte("script.kts:4:7: error: expecting ')'\n")))
	o.Append(process.OutputEvent(process.Stderr, []byte("script.kts:8:1: error: later\n")))
	loc, ok := o.FirstLocation()
	if !ok {
		t.Fatal("expected a location")
	}
	if loc.Row != 4 || loc.Col != 7 {
		t.Errorf("location = %d:%d, want 4:7", loc.Row, loc.Col)
	}
}

func TestOutputClear(t *testing.T) {
	o := newSizedOutput()
	o.Append(process.OutputEvent(process.Stderr, []byte("script.kts:1: boom\n")))
	o.Clear()
	if o.PlainText() != "" {
		t.Error("expected empty output after Clear")
	}
	if _, ok := o.FirstLocation(); ok {
		t.Error("expected no location after Clear")
	}
}

func TestOutputFollowsTail(t *testing.T) {
	o := newSizedOutput()
	for i := 0; i < 50; i++ {
		o.Append(process.OutputEvent(process.Stdout, []byte("line\n")))
	}
	o.Append(process.OutputEvent(process.Stdout, []byte("the last line\n")))
	if !strings.Contains(o.View(), "the last line") {
		t.Error("expected the view to follow new output")
	}
}

func TestOutputScrollKeysWhenFocused(t *testing.T) {
	o := newSizedOutput()
	o.Append(process.OutputEvent(process.Stdout, []byte("top line\n")))
	for i := 0; i < 50; i++ {
		o.Append(process.OutputEvent(process.Stdout, []byte("filler\n")))
	}

	o, _ = o.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	if strings.Contains(o.View(), "top line") {
		t.Error("unfocused output must ignore scroll keys")
	}

	o.SetFocused(true)
	o, _ = o.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	if !strings.Contains(o.View(), "top line") {
		t.Error("expected g to jump to the top")
	}

	o.Append(process.OutputEvent(process.Stdout, []byte("fresh\n")))
	if strings.Contains(o.View(), "fresh") {
		t.Error("scrolled-up view should not jump to new output")
	}

	o, _ = o.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("G")})
	if !strings.Contains(o.View(), "fresh") {
		t.Error("expected G to jump to the bottom")
	}
}

func TestOutputBadge(t *testing.T) {
	o := newSizedOutput()
	o.SetBadge("exit 1")
	if !strings.Contains(o.View(), "exit 1") {
		t.Error("expected the badge in the border")
	}
}
