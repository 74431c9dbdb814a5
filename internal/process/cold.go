package process

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/justinpbarnett/kws/internal/runtime"
	"go.uber.org/zap"
)

type SessionState int

const (
	StateIdle SessionState = iota
	StateLaunching
	StateRunning
	StateDraining
	StateExited
)

func (s SessionState) String() string {
	switch s {
	case StateLaunching:
		return "launching"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateExited:
		return "exited"
	default:
		return "idle"
	}
}

// ColdSession runs one script in one fresh tool process. The process, and
// the script file it reads, live exactly as long as the run.
type ColdSession struct {
	tool   runtime.Runtime
	opts   Options
	sink   Sink
	term   *Terminator
	logger *zap.Logger

	mu       sync.Mutex
	state    SessionState
	proc     *runtime.Process
	stopReq  bool
	artifact string
}

func NewColdSession(tool runtime.Runtime, opts Options, sink Sink) *ColdSession {
	opts = opts.withDefaults()
	return &ColdSession{
		tool:   tool,
		opts:   opts,
		sink:   sink,
		term:   NewTerminator(opts.Logger),
		logger: opts.Logger.With(zap.String("component", "cold-session")),
	}
}

// Start runs script on a new goroutine. Starting a session that is not idle
// is the caller's mistake; it is logged and ignored.
func (s *ColdSession) Start(ctx context.Context, script string) {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		s.logger.Warn("start ignored, run already in flight", zap.Stringer("state", s.state))
		return
	}
	s.state = StateLaunching
	s.stopReq = false
	s.mu.Unlock()

	go s.run(ctx, script)
}

// Run executes script synchronously and returns its exit code. The exit
// event is published after the script artifact has been removed.
func (s *ColdSession) Run(ctx context.Context, script string) int {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		s.logger.Warn("run ignored, run already in flight", zap.Stringer("state", s.state))
		return -1
	}
	s.state = StateLaunching
	s.stopReq = false
	s.mu.Unlock()

	return s.run(ctx, script)
}

func (s *ColdSession) run(ctx context.Context, script string) int {
	code := s.execute(ctx, script)
	s.cleanup()
	s.sink.Publish(ExitEvent(code))
	s.setState(StateIdle)
	return code
}

// resolver is implemented by runtimes that can look the tool up without
// launching it.
type resolver interface {
	Resolve() (string, error)
}

func (s *ColdSession) execute(ctx context.Context, script string) int {
	if r, ok := s.tool.(resolver); ok {
		if _, err := r.Resolve(); err != nil {
			return s.reportLaunchFailure(err)
		}
	}

	path, err := s.writeArtifact(script)
	if err != nil {
		s.logger.Error("stage script failed", zap.Error(err))
		s.sink.Publish(OutputEvent(Stderr, []byte(fmt.Sprintf("failed to stage script: %v\n", err))))
		return launchFailedExitCode
	}

	proc, err := s.tool.Start(ctx, path, runtime.RunOptions{WorkDir: s.opts.WorkDir})
	if err != nil {
		return s.reportLaunchFailure(err)
	}
	defer proc.CloseOutputs()

	s.mu.Lock()
	s.proc = proc
	s.state = StateRunning
	stop := s.stopReq
	s.mu.Unlock()
	s.logger.Debug("tool started", zap.Int("pid", proc.PID), zap.String("script", path))

	if stop {
		s.term.Terminate(proc)
	}

	NewMultiplexer(proc.Stdout, proc.Stderr, s.opts.PollInterval, s.logger).Forward(ctx, s.sink)

	s.setState(StateDraining)
	code := proc.Wait()

	s.mu.Lock()
	s.proc = nil
	s.state = StateExited
	s.mu.Unlock()
	s.logger.Debug("tool exited", zap.Int("pid", proc.PID), zap.Int("code", code), zap.NamedError("wait", proc.Err()))
	return code
}

func (s *ColdSession) reportLaunchFailure(err error) int {
	if errors.Is(err, runtime.ErrToolNotFound) {
		s.logger.Warn("tool not found", zap.String("tool", s.tool.Name()))
		s.sink.Publish(OutputEvent(Stderr, []byte(NotFoundMessage(s.tool.Name()))))
		return s.opts.NotFoundExitCode
	}
	s.logger.Error("tool launch failed", zap.Error(err))
	s.sink.Publish(OutputEvent(Stderr, []byte(fmt.Sprintf("failed to start %s: %v\n", s.tool.Name(), err))))
	return launchFailedExitCode
}

// writeArtifact persists the script. Isolated runs get their own directory
// so a process launched against an older run never reads this script.
func (s *ColdSession) writeArtifact(script string) (string, error) {
	path := s.opts.ScriptPath()
	if s.opts.IsolateRuns {
		dir := filepath.Join(RunsDir(s.opts.WorkDir), uuid.NewString())
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create run dir: %w", err)
		}
		path = filepath.Join(dir, s.opts.ScriptName)
	} else if err := removeIfExists(path); err != nil {
		// A warm alias or fifo may still sit at the fixed name.
		return "", fmt.Errorf("remove stale artifact: %w", err)
	}

	s.mu.Lock()
	s.artifact = path
	s.mu.Unlock()

	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		return "", fmt.Errorf("write script: %w", err)
	}
	return path, nil
}

func (s *ColdSession) cleanup() {
	s.mu.Lock()
	path := s.artifact
	s.artifact = ""
	s.mu.Unlock()
	if path == "" {
		return
	}
	removeArtifact(s.logger, path)
	if s.opts.IsolateRuns {
		removeRunDir(s.logger, filepath.Dir(path))
	}
}

// Stop kills the running process tree. It is a no-op when idle; during
// launch the kill is deferred until the process exists.
func (s *ColdSession) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.proc != nil:
		s.term.Terminate(s.proc)
	case s.state == StateLaunching:
		s.stopReq = true
	}
}

func (s *ColdSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Artifact returns the current script path, empty when none is staged.
func (s *ColdSession) Artifact() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.artifact
}

func (s *ColdSession) setState(st SessionState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}
