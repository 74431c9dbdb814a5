package process

import (
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

const fifoOpenRetry = 20 * time.Millisecond

// fifoChannel is a named pipe at the alias path. The tool opens it by name;
// Supply waits for that reader before writing.
type fifoChannel struct {
	supplyOnce
	path string
	w    *os.File
}

func newFIFOChannel(path string) (*fifoChannel, error) {
	err := replaceAtomically(path, func(tmp string) error {
		return unix.Mkfifo(tmp, 0o600)
	})
	if err != nil {
		return nil, fmt.Errorf("expose fifo at %s: %w", path, err)
	}
	return &fifoChannel{supplyOnce: newSupplyOnce(), path: path}, nil
}

func (c *fifoChannel) Path() string { return c.path }

func (c *fifoChannel) ExtraFiles() []*os.File { return nil }

func (c *fifoChannel) Supply(script []byte) error {
	if err := c.claim(); err != nil {
		return err
	}

	// A non-blocking open for writing fails with ENXIO until a reader has
	// the fifo open.
	var fd int
	for {
		var err error
		fd, err = unix.Open(c.path, unix.O_WRONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
		if err == nil {
			break
		}
		if !errors.Is(err, unix.ENXIO) && !errors.Is(err, unix.EINTR) {
			return fmt.Errorf("open fifo: %w", err)
		}
		select {
		case <-c.closed:
			return ErrChannelClosed
		case <-time.After(fifoOpenRetry):
		}
	}

	// Non-blocking fds become pollable Files, so Close can interrupt a
	// pending write.
	w := os.NewFile(uintptr(fd), c.path)
	c.mu.Lock()
	if c.retired {
		c.mu.Unlock()
		w.Close()
		return ErrChannelClosed
	}
	c.w = w
	c.mu.Unlock()

	_, err := w.Write(script)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		select {
		case <-c.closed:
			return ErrChannelClosed
		default:
		}
		return fmt.Errorf("write script: %w", err)
	}
	return nil
}

func (c *fifoChannel) Close() error {
	if !c.retire() {
		return nil
	}
	c.mu.Lock()
	w := c.w
	c.mu.Unlock()
	if w != nil {
		w.Close()
	}
	return removeIfExists(c.path)
}
