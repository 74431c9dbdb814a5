package process

import (
	"strings"
	"sync"
)

// Line is one complete or in-progress line of tool output.
type Line struct {
	Stream Stream
	Text   string
}

// Scrollback keeps the most recent lines of output in a fixed-size ring.
// Chunks are split on newlines; a trailing partial line stays open and is
// extended by the next chunk from the same stream.
type Scrollback struct {
	mu           sync.RWMutex
	lines        []Line
	capacity     int
	head         int
	count        int
	totalWritten int
	partial      [2]bool
	partialIdx   [2]int
}

func NewScrollback(capacity int) *Scrollback {
	if capacity <= 0 {
		capacity = 10000
	}
	return &Scrollback{
		lines:    make([]Line, capacity),
		capacity: capacity,
	}
}

// Write appends a chunk of output from stream.
func (sb *Scrollback) Write(stream Stream, data []byte) {
	if len(data) == 0 {
		return
	}
	sb.mu.Lock()
	defer sb.mu.Unlock()

	parts := strings.Split(string(data), "\n")
	for i, part := range parts {
		last := i == len(parts)-1
		if last && part == "" {
			// data ended with a newline: nothing left open
			sb.partial[stream] = false
			break
		}
		if sb.partial[stream] && sb.stillHeld(stream) {
			sb.lines[sb.partialIdx[stream]].Text += part
		} else {
			sb.appendLocked(Line{Stream: stream, Text: part})
			sb.partialIdx[stream] = (sb.head - 1 + sb.capacity) % sb.capacity
		}
		sb.partial[stream] = last
	}
}

// stillHeld reports whether the open line of stream has not been evicted.
func (sb *Scrollback) stillHeld(stream Stream) bool {
	idx := sb.partialIdx[stream]
	oldest := (sb.head - sb.count + sb.capacity) % sb.capacity
	dist := (idx - oldest + sb.capacity) % sb.capacity
	return dist < sb.count && sb.lines[idx].Stream == stream
}

// Append adds a complete line.
func (sb *Scrollback) Append(line Line) {
	sb.mu.Lock()
	sb.appendLocked(line)
	sb.partial = [2]bool{}
	sb.mu.Unlock()
}

func (sb *Scrollback) appendLocked(line Line) {
	sb.lines[sb.head] = line
	sb.head = (sb.head + 1) % sb.capacity
	if sb.count < sb.capacity {
		sb.count++
	}
	sb.totalWritten++
}

func (sb *Scrollback) Lines() []Line {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	if sb.count == 0 {
		return nil
	}

	result := make([]Line, sb.count)
	if sb.count < sb.capacity {
		copy(result, sb.lines[:sb.count])
	} else {
		// Buffer has wrapped: oldest is at head, newest is at head-1
		n := copy(result, sb.lines[sb.head:])
		copy(result[n:], sb.lines[:sb.head])
	}
	return result
}

func (sb *Scrollback) Tail(n int) []Line {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	if n <= 0 || sb.count == 0 {
		return nil
	}
	if n > sb.count {
		n = sb.count
	}

	result := make([]Line, n)
	start := (sb.head - n + sb.capacity) % sb.capacity
	if start+n <= sb.capacity {
		copy(result, sb.lines[start:start+n])
	} else {
		first := sb.capacity - start
		copy(result, sb.lines[start:])
		copy(result[first:], sb.lines[:n-first])
	}
	return result
}

// Text joins the held lines of one stream, or of both when stream < 0.
func (sb *Scrollback) Text(stream Stream) string {
	var b strings.Builder
	for _, l := range sb.Lines() {
		if stream >= 0 && l.Stream != stream {
			continue
		}
		b.WriteString(l.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

func (sb *Scrollback) Len() int {
	sb.mu.RLock()
	defer sb.mu.RUnlock()
	return sb.count
}

func (sb *Scrollback) TotalWritten() int {
	sb.mu.RLock()
	defer sb.mu.RUnlock()
	return sb.totalWritten
}

func (sb *Scrollback) Reset() {
	sb.mu.Lock()
	sb.head = 0
	sb.count = 0
	sb.totalWritten = 0
	sb.partial = [2]bool{}
	sb.mu.Unlock()
}
