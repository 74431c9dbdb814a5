package runtime

import (
	"context"
	"os"
	"os/exec"
	"syscall"
)

// Runtime launches the external script tool.
type Runtime interface {
	Name() string
	Start(ctx context.Context, scriptPath string, opts RunOptions) (*Process, error)
}

type RunOptions struct {
	WorkDir string
	// ExtraFiles are inherited by the child starting at fd 3.
	ExtraFiles []*os.File
}

// Process is a launched tool invocation. Stdout and Stderr are the read ends
// of the child's output pipes and belong to whoever drains them.
type Process struct {
	PID    int
	Cmd    *exec.Cmd
	Stdout *os.File
	Stderr *os.File
	// Done is closed once the process has exited and been reaped.
	Done chan struct{}

	waitErr error
}

// Wait blocks until the process exits and returns its exit code.
func (p *Process) Wait() int {
	<-p.Done
	return ExitCode(p.Cmd.ProcessState)
}

// Err returns the error from cmd.Wait once Done is closed.
func (p *Process) Err() error {
	<-p.Done
	return p.waitErr
}

// Exited reports whether the process has already been reaped.
func (p *Process) Exited() bool {
	select {
	case <-p.Done:
		return true
	default:
		return false
	}
}

// CloseOutputs closes both read ends. Safe to call more than once.
func (p *Process) CloseOutputs() {
	if p.Stdout != nil {
		p.Stdout.Close()
	}
	if p.Stderr != nil {
		p.Stderr.Close()
	}
}

// ExitCode converts a process state into an exit code. A process killed by
// a signal reports the negated signal number (SIGKILL -> -9).
func ExitCode(state *os.ProcessState) int {
	if state == nil {
		return -1
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return -int(ws.Signal())
	}
	return state.ExitCode()
}
