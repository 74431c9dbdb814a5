package process

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/justinpbarnett/kws/internal/config"
)

var (
	// ErrChannelSupplied is returned by a second Supply on the same channel.
	ErrChannelSupplied = errors.New("input channel already supplied")
	// ErrChannelClosed is returned when the channel was retired before or
	// during Supply.
	ErrChannelClosed = errors.New("input channel closed")
)

// InputChannel is a single-use byte conduit that the tool reads as if it
// were a script file. One channel serves exactly one script and one launch.
type InputChannel interface {
	// Path is the filesystem alias handed to the tool as its script path.
	Path() string
	// ExtraFiles must be passed to the child, starting at fd 3.
	ExtraFiles() []*os.File
	// Supply writes the whole script and closes the write end, which is the
	// tool's end-of-input signal. It may block until the tool reads.
	Supply(script []byte) error
	// Supplied is closed once Supply has been called.
	Supplied() <-chan struct{}
	// Close retires the channel: both ends are closed and the alias removed.
	Close() error
}

// NewInputChannel creates a channel of the given kind and exposes it at path,
// atomically replacing whatever stale alias was there.
func NewInputChannel(kind, path string) (InputChannel, error) {
	switch kind {
	case config.ChannelProcFD:
		return newProcFDChannel(path)
	case config.ChannelFIFO:
		return newFIFOChannel(path)
	default:
		return nil, fmt.Errorf("unknown input channel kind %q", kind)
	}
}

// supplyOnce tracks the single permitted Supply and the retired state.
type supplyOnce struct {
	mu       sync.Mutex
	used     bool
	supplied chan struct{}
	closed   chan struct{}
	retired  bool
}

func newSupplyOnce() supplyOnce {
	return supplyOnce{
		supplied: make(chan struct{}),
		closed:   make(chan struct{}),
	}
}

func (s *supplyOnce) claim() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.retired {
		return ErrChannelClosed
	}
	if s.used {
		return ErrChannelSupplied
	}
	s.used = true
	close(s.supplied)
	return nil
}

// retire reports whether this call was the one that retired the channel.
func (s *supplyOnce) retire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.retired {
		return false
	}
	s.retired = true
	close(s.closed)
	return true
}

func (s *supplyOnce) Supplied() <-chan struct{} {
	return s.supplied
}

// replaceAtomically builds a new alias at a temporary sibling name and
// renames it over path, so a launch never sees a half-replaced alias.
func replaceAtomically(path string, create func(tmp string) error) error {
	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".tmp-"+strconv.Itoa(os.Getpid()))
	_ = os.Remove(tmp)
	if err := create(tmp); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("install alias: %w", err)
	}
	return nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
