package runtime

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"sort"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"
)

// ErrToolNotFound is returned when the tool executable cannot be located.
var ErrToolNotFound = errors.New("tool not found")

// Tool runs `<command> <extra args...> <script flag> <path>`.
type Tool struct {
	candidates []string
	scriptFlag string
	extraArgs  []string
	env        []string
	lookPath   func(string) (string, error)

	mu   sync.Mutex
	name string
	path string
}

func (t *Tool) Name() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.name
}

// Resolve returns the executable path, retrying the lookup if the tool was
// missing earlier (it may have been installed since).
func (t *Tool) Resolve() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.path != "" {
		return t.path, nil
	}
	for _, c := range t.candidates {
		if p, err := t.lookPath(c); err == nil {
			t.name = c
			t.path = p
			return p, nil
		}
	}
	return "", fmt.Errorf("%s: %w", t.name, ErrToolNotFound)
}

func (t *Tool) BuildArgs(scriptPath string) []string {
	args := make([]string, 0, len(t.extraArgs)+2)
	args = append(args, t.extraArgs...)
	args = append(args, t.scriptFlag, scriptPath)
	return args
}

// Start launches the tool with stdin on /dev/null and stdout/stderr on fresh
// pipes. The child gets its own process group so the whole tree can be
// signalled; cancelling ctx kills that group.
func (t *Tool) Start(ctx context.Context, scriptPath string, opts RunOptions) (*Process, error) {
	path, err := t.Resolve()
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, path, t.BuildArgs(scriptPath)...)
	cmd.Dir = opts.WorkDir
	cmd.Env = append(os.Environ(), t.env...)
	cmd.ExtraFiles = opts.ExtraFiles
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
	}

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		stdoutR.Close()
		stdoutW.Close()
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	if err := cmd.Start(); err != nil {
		stdoutR.Close()
		stdoutW.Close()
		stderrR.Close()
		stderrW.Close()
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, exec.ErrNotFound) {
			t.forget()
			return nil, fmt.Errorf("%s: %w", t.Name(), ErrToolNotFound)
		}
		return nil, fmt.Errorf("start: %w", err)
	}

	// The child holds its own copies of the write ends.
	stdoutW.Close()
	stderrW.Close()

	proc := &Process{
		PID:    cmd.Process.Pid,
		Cmd:    cmd,
		Stdout: stdoutR,
		Stderr: stderrR,
		Done:   make(chan struct{}),
	}
	go func() {
		proc.waitErr = cmd.Wait()
		close(proc.Done)
	}()

	return proc, nil
}

// forget drops a cached path that no longer exists.
func (t *Tool) forget() {
	t.mu.Lock()
	t.path = ""
	t.mu.Unlock()
}

func envList(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}
