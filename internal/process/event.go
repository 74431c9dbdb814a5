package process

import "fmt"

type Stream int

const (
	Stdout Stream = iota
	Stderr
)

func (s Stream) String() string {
	if s == Stderr {
		return "stderr"
	}
	return "stdout"
}

type EventType string

const (
	EventOutput EventType = "output"
	EventExit   EventType = "exit"
)

// Event is one unit of a run's feed: a chunk of output from one stream, or
// the run's exit code. Exit is always the last event of a run.
type Event struct {
	Type   EventType
	Stream Stream
	Data   []byte
	Code   int
}

func OutputEvent(stream Stream, data []byte) Event {
	return Event{Type: EventOutput, Stream: stream, Data: data}
}

func ExitEvent(code int) Event {
	return Event{Type: EventExit, Code: code}
}

func (e Event) IsExit() bool { return e.Type == EventExit }

func (e Event) String() string {
	if e.IsExit() {
		return fmt.Sprintf("exit(%d)", e.Code)
	}
	return fmt.Sprintf("%s(%q)", e.Stream, e.Data)
}

// Sink receives events from a session's worker goroutine.
type Sink interface {
	Publish(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) Publish(e Event) { f(e) }
