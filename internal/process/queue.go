package process

import "sync"

// EventQueue is an unbounded, order-preserving hand-off from engine
// goroutines to a single consumer. Publish never blocks and never drops.
type EventQueue struct {
	mu     sync.Mutex
	events []Event
	total  int
	notify chan struct{}
}

func NewEventQueue() *EventQueue {
	return &EventQueue{notify: make(chan struct{}, 1)}
}

func (q *EventQueue) Publish(e Event) {
	q.mu.Lock()
	q.events = append(q.events, e)
	q.total++
	q.mu.Unlock()

	// Coalesced wakeup: one pending signal is enough.
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Poll drains and returns everything queued so far, oldest first. It
// returns nil when the queue is empty.
func (q *EventQueue) Poll() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) == 0 {
		return nil
	}
	out := q.events
	q.events = nil
	return out
}

// Notify is signalled after a Publish. Consumers that would rather block
// than poll on a timer can wait on it and then call Poll.
func (q *EventQueue) Notify() <-chan struct{} {
	return q.notify
}

func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// TotalPublished counts every event ever published, drained or not.
func (q *EventQueue) TotalPublished() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.total
}
