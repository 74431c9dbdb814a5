package ui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/justinpbarnett/kws/internal/process"
)

func newTeaTestModel(t *testing.T, eng *fakeEngine, content string) *teatest.TestModel {
	t.Helper()
	app := NewApp(eng, Options{
		ScriptName:   "script.kts",
		Content:      content,
		PollInterval: 10 * time.Millisecond,
	})
	tm := teatest.NewTestModel(t, app, teatest.WithInitialTermSize(120, 40))
	tm.Send(tea.WindowSizeMsg{Width: 120, Height: 40})
	return tm
}

func TestAppInitialRender(t *testing.T) {
	tm := newTeaTestModel(t, newFakeEngine(), "println(1)")
	waitForContains(t, tm, "Press ctrl+r to run")

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlQ})
	tm.WaitFinished(t, teatest.WithFinalTimeout(waitDuration))
}

func TestAppRunRoundTrip(t *testing.T) {
	eng := newFakeEngine()
	tm := newTeaTestModel(t, eng, "println(\"hello\")")
	waitForContains(t, tm, "script.kts")

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlR})
	waitForContains(t, tm, "running")

	eng.emit(
		process.OutputEvent(process.Stdout, []byte("hello from the tool\n")),
		process.ExitEvent(0),
	)
	waitForAll(t, tm, "hello from the tool", "exit 0")

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlQ})
	fm := tm.FinalModel(t, teatest.WithFinalTimeout(waitDuration))
	app, ok := fm.(App)
	if !ok {
		t.Fatalf("final model is %T", fm)
	}
	if app.Running() {
		t.Error("expected no run in flight at quit")
	}
	if eng.lastScript() != "println(\"hello\")" {
		t.Errorf("engine got %q", eng.lastScript())
	}
	if _, _, shutdowns := eng.counts(); shutdowns != 1 {
		t.Errorf("shutdowns = %d, want 1", shutdowns)
	}
}

func TestAppHelpModalFlow(t *testing.T) {
	tm := newTeaTestModel(t, newFakeEngine(), "")
	waitForContains(t, tm, "f1:help")

	tm.Send(tea.KeyMsg{Type: tea.KeyF1})
	waitForContains(t, tm, "Keybinds")

	tm.Send(tea.KeyMsg{Type: tea.KeyEsc})
	time.Sleep(200 * time.Millisecond)
	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlQ})
	fm := tm.FinalModel(t, teatest.WithFinalTimeout(waitDuration))
	if fm.(App).helpOverlay != nil {
		t.Error("expected help overlay closed after esc")
	}
}
