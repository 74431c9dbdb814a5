package process

import (
	"fmt"
	"os"
)

// procFDAlias resolves, inside the child, to its fd 3: the first entry of
// exec.Cmd.ExtraFiles.
const procFDAlias = "/proc/self/fd/3"

// procFDChannel is an anonymous pipe whose read end the child inherits as
// fd 3, exposed through a symlink to /proc/self/fd/3. Linux only.
type procFDChannel struct {
	supplyOnce
	path string
	r    *os.File
	w    *os.File
}

func newProcFDChannel(path string) (*procFDChannel, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("create pipe: %w", err)
	}
	err = replaceAtomically(path, func(tmp string) error {
		return os.Symlink(procFDAlias, tmp)
	})
	if err != nil {
		r.Close()
		w.Close()
		return nil, fmt.Errorf("expose channel at %s: %w", path, err)
	}
	return &procFDChannel{supplyOnce: newSupplyOnce(), path: path, r: r, w: w}, nil
}

func (c *procFDChannel) Path() string { return c.path }

func (c *procFDChannel) ExtraFiles() []*os.File { return []*os.File{c.r} }

func (c *procFDChannel) Supply(script []byte) error {
	if err := c.claim(); err != nil {
		return err
	}
	_, err := c.w.Write(script)
	if cerr := c.w.Close(); err == nil {
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

func (c *procFDChannel) Close() error {
	if !c.retire() {
		return nil
	}
	// Closing our read end unblocks a Supply stuck on a full pipe whose
	// reader has died.
	c.r.Close()
	c.w.Close()
	return removeIfExists(c.path)
}
