package process

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

const (
	defaultPollInterval = 100 * time.Millisecond
	readBufferSize      = 32 * 1024
)

// Chunk is a slice of bytes read from one of a child's output streams.
type Chunk struct {
	Stream Stream
	Data   []byte
}

// Multiplexer merges a child's stdout and stderr into one ordered feed of
// chunks. It waits on both descriptors with poll(2) and a short timeout, so
// data ready on one stream is never held up behind the other. The Chunks
// channel is closed once both streams have reached end-of-stream.
type Multiplexer struct {
	files    [2]*os.File
	interval time.Duration
	chunks   chan Chunk
	logger   *zap.Logger
}

func NewMultiplexer(stdout, stderr *os.File, interval time.Duration, logger *zap.Logger) *Multiplexer {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Multiplexer{
		files:    [2]*os.File{stdout, stderr},
		interval: interval,
		chunks:   make(chan Chunk, 64),
		logger:   logger,
	}
}

func (m *Multiplexer) Chunks() <-chan Chunk {
	return m.chunks
}

// Run polls until both streams end or ctx is cancelled, then closes Chunks.
// A read error ends only the stream it happened on.
func (m *Multiplexer) Run(ctx context.Context) {
	defer close(m.chunks)

	var open [2]bool
	fds := make([]unix.PollFd, 2)
	for i, f := range m.files {
		fds[i].Fd = -1
		if f == nil {
			continue
		}
		fd := f.Fd()
		if fd == ^uintptr(0) {
			continue
		}
		fds[i] = unix.PollFd{Fd: int32(fd), Events: unix.POLLIN}
		open[i] = true
	}

	buf := make([]byte, readBufferSize)
	timeout := int(m.interval / time.Millisecond)

	for open[Stdout] || open[Stderr] {
		if ctx.Err() != nil {
			return
		}

		for i := range fds {
			fds[i].Revents = 0
		}
		n, err := unix.Poll(fds, timeout)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			m.logger.Warn("poll failed, ending output streams", zap.Error(err))
			return
		}
		if n == 0 {
			continue
		}

		// Stdout is serviced first when both are ready.
		for i := range fds {
			if !open[i] || fds[i].Revents == 0 {
				continue
			}
			stream := Stream(i)
			if fds[i].Revents&unix.POLLNVAL != 0 {
				m.endStream(fds, &open, stream, errors.New("invalid descriptor"))
				continue
			}

			nr, rerr := m.files[i].Read(buf)
			if nr > 0 {
				data := make([]byte, nr)
				copy(data, buf[:nr])
				select {
				case m.chunks <- Chunk{Stream: stream, Data: data}:
				case <-ctx.Done():
					return
				}
			}
			if rerr != nil || nr == 0 {
				m.endStream(fds, &open, stream, rerr)
			}
		}
	}
}

func (m *Multiplexer) endStream(fds []unix.PollFd, open *[2]bool, s Stream, err error) {
	open[s] = false
	fds[s].Fd = -1
	if err != nil && !errors.Is(err, io.EOF) {
		m.logger.Debug("stream read failed, treating as end of stream",
			zap.Stringer("stream", s), zap.Error(err))
	}
}

// Forward runs the multiplexer and publishes every chunk to sink as an
// output event, returning when both streams have ended.
func (m *Multiplexer) Forward(ctx context.Context, sink Sink) {
	go m.Run(ctx)
	for c := range m.chunks {
		sink.Publish(OutputEvent(c.Stream, c.Data))
	}
}
