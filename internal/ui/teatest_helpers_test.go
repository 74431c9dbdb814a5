package ui

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/x/exp/teatest"
	"github.com/justinpbarnett/kws/internal/process"
)

const waitDuration = 3 * time.Second

// fakeEngine records calls from the app. A run it accepts stays in flight
// until the test finishes it with emit(process.ExitEvent(...)).
type fakeEngine struct {
	mu        sync.Mutex
	mode      string
	scripts   []string
	events    []process.Event
	running   bool
	reject    bool
	cancels   int
	shutdowns int
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{mode: "warm"}
}

func (f *fakeEngine) RunScript(script string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reject || f.running {
		return false
	}
	f.scripts = append(f.scripts, script)
	f.running = true
	return true
}

func (f *fakeEngine) Cancel() {
	f.mu.Lock()
	f.cancels++
	f.mu.Unlock()
}

func (f *fakeEngine) Shutdown() {
	f.mu.Lock()
	f.shutdowns++
	f.mu.Unlock()
}

func (f *fakeEngine) PollEvents() []process.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.events
	f.events = nil
	return out
}

func (f *fakeEngine) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

func (f *fakeEngine) Mode() string { return f.mode }

func (f *fakeEngine) emit(events ...process.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range events {
		if e.IsExit() {
			f.running = false
		}
		f.events = append(f.events, e)
	}
}

func (f *fakeEngine) lastScript() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.scripts) == 0 {
		return ""
	}
	return f.scripts[len(f.scripts)-1]
}

func (f *fakeEngine) counts() (runs, cancels, shutdowns int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.scripts), f.cancels, f.shutdowns
}

// waitForContains waits until the program output contains the given substring.
func waitForContains(tb testing.TB, tm *teatest.TestModel, substr string) {
	tb.Helper()
	teatest.WaitFor(
		tb,
		tm.Output(),
		func(bts []byte) bool { return bytes.Contains(bts, []byte(substr)) },
		teatest.WithDuration(waitDuration),
		teatest.WithCheckInterval(20*time.Millisecond),
	)
}

// waitForAll waits until every substring has appeared in the output read
// during this call.
func waitForAll(tb testing.TB, tm *teatest.TestModel, substrs ...string) {
	tb.Helper()
	teatest.WaitFor(
		tb,
		tm.Output(),
		func(bts []byte) bool {
			for _, s := range substrs {
				if !bytes.Contains(bts, []byte(s)) {
					return false
				}
			}
			return true
		},
		teatest.WithDuration(waitDuration),
		teatest.WithCheckInterval(20*time.Millisecond),
	)
}
