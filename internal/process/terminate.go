package process

import (
	"errors"

	"github.com/justinpbarnett/kws/internal/runtime"
	ps "github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// Terminator force-kills a tool process together with everything it spawned.
// kotlinc forks a JVM that outlives a polite SIGTERM to the launcher, so the
// whole tree gets SIGKILL. Every step is best effort: failures are logged
// and the remaining steps still run.
type Terminator struct {
	logger *zap.Logger
}

func NewTerminator(logger *zap.Logger) *Terminator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Terminator{logger: logger}
}

// Terminate kills a snapshot of proc's descendants, then proc itself, then
// sweeps proc's process group. Processes spawned after the snapshot escape
// the first pass; the group sweep still reaches any that stayed in the
// launcher's group. Terminate never fails and only borrows proc.
func (t *Terminator) Terminate(proc *runtime.Process) {
	if proc == nil || proc.PID <= 0 {
		return
	}
	log := t.logger.With(zap.Int("pid", proc.PID))

	// Once reaped the pid may be reused, so only the group is addressed.
	if !proc.Exited() {
		for _, pid := range t.Descendants(proc.PID) {
			t.kill(log, pid)
		}
		t.kill(log, int32(proc.PID))
	}

	if err := unix.Kill(-proc.PID, unix.SIGKILL); err != nil && !errors.Is(err, unix.ESRCH) {
		log.Debug("kill process group failed", zap.Error(err))
	}
}

// Descendants returns every live descendant of pid, parents before children.
func (t *Terminator) Descendants(pid int) []int32 {
	root, err := ps.NewProcess(int32(pid))
	if err != nil {
		t.logger.Debug("process lookup failed", zap.Int("pid", pid), zap.Error(err))
		return nil
	}

	var out []int32
	seen := map[int32]bool{root.Pid: true}
	queue := []*ps.Process{root}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		children, err := p.Children()
		if err != nil {
			if !errors.Is(err, ps.ErrorNoChildren) {
				t.logger.Debug("list children failed", zap.Int32("pid", p.Pid), zap.Error(err))
			}
			continue
		}
		for _, c := range children {
			if seen[c.Pid] {
				continue
			}
			seen[c.Pid] = true
			out = append(out, c.Pid)
			queue = append(queue, c)
		}
	}
	return out
}

func (t *Terminator) kill(log *zap.Logger, pid int32) {
	if err := unix.Kill(int(pid), unix.SIGKILL); err != nil && !errors.Is(err, unix.ESRCH) {
		log.Debug("kill failed", zap.Int32("target", pid), zap.Error(err))
	}
}
