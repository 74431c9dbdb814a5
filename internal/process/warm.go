package process

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/justinpbarnett/kws/internal/runtime"
	"go.uber.org/zap"
)

// ErrSessionEnded is returned by Refresh and Start after End.
var ErrSessionEnded = errors.New("warm session ended")

const (
	relaunchBackoffMin = 250 * time.Millisecond
	relaunchBackoffMax = 5 * time.Second
)

// WarmSession keeps one tool process launched ahead of time, blocked on an
// input channel that has not been written yet. Write hands it a script;
// when that process exits a fresh channel and process replace it.
//
// mu serializes channel replacement, launch and Stop, so Stop never acts on
// a process that belongs to a different script.
type WarmSession struct {
	tool   runtime.Runtime
	opts   Options
	sink   Sink
	term   *Terminator
	logger *zap.Logger

	mu       sync.Mutex
	channel  InputChannel
	written  bool
	exited   bool
	pending  *string
	proc     *runtime.Process
	stopReq  bool
	ended    bool
	started  bool
	launches int

	endCh    chan struct{}
	loopDone chan struct{}
}

func NewWarmSession(tool runtime.Runtime, opts Options, sink Sink) *WarmSession {
	opts = opts.withDefaults()
	return &WarmSession{
		tool:     tool,
		opts:     opts,
		sink:     sink,
		term:     NewTerminator(opts.Logger),
		logger:   opts.Logger.With(zap.String("component", "warm-session")),
		endCh:    make(chan struct{}),
		loopDone: make(chan struct{}),
	}
}

// Start creates the first channel and begins the launch loop.
func (s *WarmSession) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = true
	s.mu.Unlock()

	if err := s.Refresh(); err != nil {
		close(s.loopDone)
		return err
	}
	go s.loop(ctx)
	return nil
}

// Refresh retires the current channel and process and installs a new
// channel at the alias path. A script written after the old process had
// already exited is supplied to the new channel.
func (s *WarmSession) Refresh() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return ErrSessionEnded
	}
	s.resetLocked()

	ch, err := NewInputChannel(s.opts.Channel, s.opts.ScriptPath())
	if err != nil {
		s.pending = nil
		return fmt.Errorf("refresh input channel: %w", err)
	}
	s.channel = ch
	s.exited = false

	if s.pending != nil {
		script := *s.pending
		s.pending = nil
		s.written = true
		s.logger.Debug("handing late script to relaunched process")
		s.supply(ch, script)
		return nil
	}
	s.written = false
	s.stopReq = false
	return nil
}

func (s *WarmSession) resetLocked() {
	if s.proc != nil {
		s.term.Terminate(s.proc)
	}
	if s.channel != nil {
		if err := s.channel.Close(); err != nil {
			s.logger.Debug("close input channel", zap.Error(err))
		}
		s.channel = nil
	}
	s.written = false
}

// Write supplies script to the waiting process. It reports false, and does
// nothing, when there is no channel or the channel already has a script.
// The actual write runs on its own goroutine because it may block until
// the tool reads.
func (s *WarmSession) Write(script string) bool {
	s.mu.Lock()
	ch := s.channel
	if ch == nil || s.ended {
		s.mu.Unlock()
		s.logger.Warn("write ignored, no active input channel")
		return false
	}
	if s.written {
		s.mu.Unlock()
		s.logger.Warn("write ignored, channel already supplied")
		return false
	}
	s.written = true
	if s.exited {
		s.pending = &script
		s.mu.Unlock()
		return true
	}
	s.mu.Unlock()

	s.supply(ch, script)
	return true
}

func (s *WarmSession) supply(ch InputChannel, script string) {
	go func() {
		err := ch.Supply([]byte(script))
		switch {
		case err == nil, errors.Is(err, ErrChannelClosed):
		default:
			s.logger.Warn("supply script failed", zap.Error(err))
		}
	}()
}

// Stop kills the process running the written script. A process still
// waiting for its first byte is left alone. When the script was written but
// its process is not launched yet, the kill happens right after launch.
func (s *WarmSession) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.written {
		return
	}
	if s.proc == nil {
		s.stopReq = true
		return
	}
	s.term.Terminate(s.proc)
}

// End stops the session for good: the loop exits after the current process
// and the alias is removed. Safe to call more than once.
func (s *WarmSession) End() {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.ended = true
	s.pending = nil
	close(s.endCh)
	s.resetLocked()
	s.mu.Unlock()
}

// Done is closed when the launch loop has returned.
func (s *WarmSession) Done() <-chan struct{} {
	return s.loopDone
}

// Launches is the number of tool processes started so far.
func (s *WarmSession) Launches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.launches
}

func (s *WarmSession) loop(ctx context.Context) {
	defer close(s.loopDone)

	backoff := relaunchBackoffMin
	for {
		code, consumed, ok := s.runOnce(ctx)
		if !ok {
			return
		}

		// The new channel is in place before Exit is published, so a caller
		// reacting to Exit can write straight away.
		if !s.isEnded() && ctx.Err() == nil {
			if err := s.Refresh(); err != nil && !errors.Is(err, ErrSessionEnded) {
				s.logger.Error("warm session cannot continue", zap.Error(err))
				if !consumed {
					s.sink.Publish(OutputEvent(Stderr, []byte(fmt.Sprintf("warm session cannot continue: %v\n", err))))
					code = launchFailedExitCode
				}
				s.sink.Publish(ExitEvent(code))
				return
			}
		}
		// An idle process that dies never ran a script, so there is no run
		// to report an exit for.
		if consumed {
			s.sink.Publish(ExitEvent(code))
		}

		if s.isEnded() || ctx.Err() != nil {
			return
		}

		// A tool that dies before reading its script would otherwise be
		// relaunched in a tight loop.
		if consumed {
			backoff = relaunchBackoffMin
			continue
		}
		s.logger.Warn("tool exited before receiving a script", zap.Int("code", code), zap.Duration("backoff", backoff))
		select {
		case <-time.After(backoff):
		case <-s.endCh:
			return
		case <-ctx.Done():
			return
		}
		backoff = min(backoff*2, relaunchBackoffMax)
	}
}

// runOnce launches a process against the current channel and waits for it.
// consumed reports whether a script had been written to that channel. ok is
// false when the session ended before anything ran.
func (s *WarmSession) runOnce(ctx context.Context) (code int, consumed bool, ok bool) {
	s.mu.Lock()
	ch := s.channel
	if ch == nil || s.ended {
		s.mu.Unlock()
		return 0, false, false
	}
	proc, err := s.tool.Start(ctx, ch.Path(), runtime.RunOptions{
		WorkDir:    s.opts.WorkDir,
		ExtraFiles: ch.ExtraFiles(),
	})
	if err == nil {
		s.proc = proc
		s.launches++
		if s.stopReq {
			s.term.Terminate(proc)
		}
	}
	s.mu.Unlock()

	if err != nil {
		// Report once per script rather than once per launch attempt.
		select {
		case <-ch.Supplied():
		case <-s.endCh:
			return 0, false, false
		case <-ctx.Done():
			return 0, false, false
		}
		return s.reportLaunchFailure(err), true, true
	}
	s.logger.Debug("tool launched", zap.Int("pid", proc.PID), zap.String("alias", ch.Path()))

	var held []Event
	NewMultiplexer(proc.Stdout, proc.Stderr, s.opts.PollInterval, s.logger).Forward(ctx, SinkFunc(func(e Event) {
		s.forward(ch, &held, e)
	}))
	code = proc.Wait()
	proc.CloseOutputs()

	s.mu.Lock()
	consumed = s.written && s.channel == ch
	if s.channel == ch {
		s.exited = true
	}
	s.proc = nil
	s.mu.Unlock()

	if consumed {
		s.publishAll(held)
	} else if len(held) > 0 {
		s.logger.Debug("discarding output of unsupplied process", zap.Int("events", len(held)))
	}

	s.logger.Debug("tool exited", zap.Int("pid", proc.PID), zap.Int("code", code), zap.NamedError("wait", proc.Err()))
	return code, consumed || s.isEnded(), true
}

// forward publishes output of the process reading ch. Output printed before
// ch is supplied is held back and published ahead of the script's own.
func (s *WarmSession) forward(ch InputChannel, held *[]Event, e Event) {
	s.mu.Lock()
	supplied := s.written && s.channel == ch
	s.mu.Unlock()
	if !supplied {
		*held = append(*held, e)
		return
	}
	s.publishAll(*held)
	*held = nil
	s.sink.Publish(e)
}

func (s *WarmSession) publishAll(events []Event) {
	for _, e := range events {
		s.sink.Publish(e)
	}
}

func (s *WarmSession) reportLaunchFailure(err error) int {
	if errors.Is(err, runtime.ErrToolNotFound) {
		s.logger.Warn("tool not found", zap.String("tool", s.tool.Name()))
		s.sink.Publish(OutputEvent(Stderr, []byte(NotFoundMessage(s.tool.Name()))))
		return s.opts.NotFoundExitCode
	}
	s.logger.Error("tool launch failed", zap.Error(err))
	s.sink.Publish(OutputEvent(Stderr, []byte(fmt.Sprintf("failed to start %s: %v\n", s.tool.Name(), err))))
	return launchFailedExitCode
}

func (s *WarmSession) isEnded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}
