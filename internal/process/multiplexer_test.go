package process

import (
	"context"
	"os"
	"testing"
	"time"
)

func collect(t *testing.T, m *Multiplexer, timeout time.Duration) []Chunk {
	t.Helper()
	var got []Chunk
	deadline := time.After(timeout)
	for {
		select {
		case c, ok := <-m.Chunks():
			if !ok {
				return got
			}
			got = append(got, c)
		case <-deadline:
			t.Fatalf("chunks not closed within %v", timeout)
			return nil
		}
	}
}

func pipe(t *testing.T) (*os.File, *os.File) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		r.Close()
		w.Close()
	})
	return r, w
}

func streamText(chunks []Chunk, s Stream) string {
	var out []byte
	for _, c := range chunks {
		if c.Stream == s {
			out = append(out, c.Data...)
		}
	}
	return string(out)
}

func TestMultiplexerBothStreams(t *testing.T) {
	outR, outW := pipe(t)
	errR, errW := pipe(t)

	m := NewMultiplexer(outR, errR, 10*time.Millisecond, nil)
	go m.Run(context.Background())

	outW.WriteString("hello\n")
	errW.WriteString("oops\n")
	outW.WriteString("world\n")
	outW.Close()
	errW.Close()

	chunks := collect(t, m, 2*time.Second)
	if got := streamText(chunks, Stdout); got != "hello\nworld\n" {
		t.Errorf("stdout = %q", got)
	}
	if got := streamText(chunks, Stderr); got != "oops\n" {
		t.Errorf("stderr = %q", got)
	}
}

func TestMultiplexerContinuesAfterOneStreamEnds(t *testing.T) {
	outR, outW := pipe(t)
	errR, errW := pipe(t)

	m := NewMultiplexer(outR, errR, 10*time.Millisecond, nil)
	go m.Run(context.Background())

	outW.Close()
	time.Sleep(50 * time.Millisecond)
	errW.WriteString("late\n")
	errW.Close()

	chunks := collect(t, m, 2*time.Second)
	if got := streamText(chunks, Stderr); got != "late\n" {
		t.Errorf("stderr = %q, want data written after stdout closed", got)
	}
}

func TestMultiplexerReadErrorEndsOnlyThatStream(t *testing.T) {
	// Reading a directory fails with EISDIR although poll reports it ready.
	dir, err := os.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer dir.Close()
	errR, errW := pipe(t)

	m := NewMultiplexer(dir, errR, 10*time.Millisecond, nil)
	go m.Run(context.Background())

	time.Sleep(30 * time.Millisecond)
	errW.WriteString("still here\n")
	errW.Close()

	chunks := collect(t, m, 2*time.Second)
	if got := streamText(chunks, Stdout); got != "" {
		t.Errorf("stdout = %q, want nothing", got)
	}
	if got := streamText(chunks, Stderr); got != "still here\n" {
		t.Errorf("stderr = %q", got)
	}
}

func TestMultiplexerPreservesOrderWithinStream(t *testing.T) {
	outR, outW := pipe(t)
	errR, errW := pipe(t)
	errW.Close()

	m := NewMultiplexer(outR, errR, 10*time.Millisecond, nil)
	go m.Run(context.Background())

	var want []byte
	for i := 0; i < 200; i++ {
		line := []byte{'a' + byte(i%26), '\n'}
		want = append(want, line...)
		outW.Write(line)
	}
	outW.Close()

	chunks := collect(t, m, 2*time.Second)
	if got := streamText(chunks, Stdout); got != string(want) {
		t.Errorf("stdout out of order or incomplete: got %d bytes, want %d", len(got), len(want))
	}
}

func TestMultiplexerNilStream(t *testing.T) {
	outR, outW := pipe(t)

	m := NewMultiplexer(outR, nil, 10*time.Millisecond, nil)
	go m.Run(context.Background())
	outW.WriteString("only stdout")
	outW.Close()

	chunks := collect(t, m, 2*time.Second)
	if got := streamText(chunks, Stdout); got != "only stdout" {
		t.Errorf("stdout = %q", got)
	}
}

func TestMultiplexerCancel(t *testing.T) {
	outR, _ := pipe(t)
	errR, _ := pipe(t)

	ctx, cancel := context.WithCancel(context.Background())
	m := NewMultiplexer(outR, errR, 10*time.Millisecond, nil)
	go m.Run(ctx)

	cancel()
	collect(t, m, 2*time.Second)
}

func TestForwardPublishesOutputEvents(t *testing.T) {
	outR, outW := pipe(t)
	errR, errW := pipe(t)
	outW.WriteString("out")
	errW.WriteString("err")
	outW.Close()
	errW.Close()

	rec := newRecorder()
	NewMultiplexer(outR, errR, 10*time.Millisecond, nil).Forward(context.Background(), rec)

	if got := rec.output(Stdout); got != "out" {
		t.Errorf("stdout = %q", got)
	}
	if got := rec.output(Stderr); got != "err" {
		t.Errorf("stderr = %q", got)
	}
	for _, e := range rec.Events() {
		if e.IsExit() {
			t.Errorf("Forward published an exit event: %v", e)
		}
	}
}
