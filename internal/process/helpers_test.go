package process

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/justinpbarnett/kws/internal/config"
	"github.com/justinpbarnett/kws/internal/runtime"
)

// fakeToolScript stands in for kotlinc: it accepts "-script <path>" and runs
// the script with /bin/sh, replacing itself so the tool is one process. The
// %s slot runs before the script is opened.
const fakeToolScript = `#!/bin/sh
while [ $# -gt 2 ]; do shift; done
[ "$1" = "-script" ] || { echo "usage: -script <path>" >&2; exit 2; }
%s
exec /bin/sh "$2"
`

func fakeTool(t *testing.T) *runtime.Tool {
	t.Helper()
	return fakeToolWithStartup(t, "")
}

// fakeToolWithStartup runs startup before the tool reads its script, like a
// compiler printing warnings while it warms up.
func fakeToolWithStartup(t *testing.T, startup string) *runtime.Tool {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kotlinc")
	if err := os.WriteFile(path, []byte(fmt.Sprintf(fakeToolScript, startup)), 0o755); err != nil {
		t.Fatalf("write fake tool: %v", err)
	}
	return runtime.NewTool(&config.ToolConfig{Command: path, ScriptFlag: "-script"}, nil)
}

func missingTool() *runtime.Tool {
	return runtime.NewTool(&config.ToolConfig{Command: "kws-test-no-such-tool", ScriptFlag: "-script"}, nil)
}

func testOptions(t *testing.T, channel string) Options {
	t.Helper()
	return Options{
		WorkDir:          t.TempDir(),
		ScriptName:       "script.kts",
		Channel:          channel,
		IsolateRuns:      true,
		PollInterval:     20 * time.Millisecond,
		NotFoundExitCode: 127,
	}
}

// recorder is a Sink that keeps every event and signals exits.
type recorder struct {
	mu     sync.Mutex
	events []Event
	exits  chan Event
}

func newRecorder() *recorder {
	return &recorder{exits: make(chan Event, 16)}
}

func (r *recorder) Publish(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	if e.IsExit() {
		r.exits <- e
	}
}

func (r *recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *recorder) output(stream Stream) string {
	var b strings.Builder
	for _, e := range r.Events() {
		if e.Type == EventOutput && e.Stream == stream {
			b.Write(e.Data)
		}
	}
	return b.String()
}

func (r *recorder) waitExit(t *testing.T, timeout time.Duration) Event {
	t.Helper()
	select {
	case e := <-r.exits:
		return e
	case <-time.After(timeout):
		t.Fatalf("no exit event within %v; events: %v", timeout, r.Events())
		return Event{}
	}
}

// pollEvents drains a supervisor until an exit event arrives.
func pollUntilExit(t *testing.T, s *Supervisor, timeout time.Duration) []Event {
	t.Helper()
	deadline := time.After(timeout)
	var got []Event
	for {
		for _, e := range s.PollEvents() {
			got = append(got, e)
			if e.IsExit() {
				return got
			}
		}
		select {
		case <-s.Notify():
		case <-time.After(50 * time.Millisecond):
		case <-deadline:
			t.Fatalf("no exit event within %v; events: %v", timeout, got)
			return nil
		}
	}
}

func joinOutput(events []Event, stream Stream) string {
	var b strings.Builder
	for _, e := range events {
		if e.Type == EventOutput && e.Stream == stream {
			b.Write(e.Data)
		}
	}
	return b.String()
}

func eventually(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out after %v: %s", timeout, msg)
}

// assertExitLast checks that events hold exactly one exit and nothing after it.
func assertExitLast(t *testing.T, events []Event) {
	t.Helper()
	exits := 0
	for i, e := range events {
		if !e.IsExit() {
			continue
		}
		exits++
		if i != len(events)-1 {
			t.Errorf("events after exit: %v", events[i+1:])
		}
	}
	if exits != 1 {
		t.Errorf("got %d exit events, want 1: %v", exits, events)
	}
}
