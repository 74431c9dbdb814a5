package process

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/justinpbarnett/kws/internal/config"
	"github.com/justinpbarnett/kws/internal/runtime"
	"go.uber.org/zap"
)

// Supervisor is the one object the UI talks to. It owns the session for the
// configured mode, tracks whether a run is in flight, and hands out the
// events produced by that run in order.
type Supervisor struct {
	mode   string
	tool   runtime.Runtime
	opts   Options
	queue  *EventQueue
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	running    bool
	shutdown   bool
	runs       int
	runID      string
	cold       *ColdSession
	warm       *WarmSession
	transcript *Transcript
}

func NewSupervisor(mode string, tool runtime.Runtime, opts Options) *Supervisor {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &Supervisor{
		mode:   mode,
		tool:   tool,
		opts:   opts,
		queue:  NewEventQueue(),
		logger: opts.Logger.With(zap.String("component", "supervisor"), zap.String("mode", mode)),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start prepares the session. In warm mode this launches the first tool
// process so it is ready before the first script arrives.
func (s *Supervisor) Start() error {
	if s.mode != config.ModeWarm {
		return nil
	}
	s.mu.Lock()
	if s.warm != nil {
		s.mu.Unlock()
		return nil
	}
	s.warm = NewWarmSession(s.tool, s.opts, s)
	warm := s.warm
	s.mu.Unlock()

	if err := warm.Start(s.ctx); err != nil {
		return fmt.Errorf("start warm session: %w", err)
	}
	return nil
}

func (s *Supervisor) Mode() string { return s.mode }

// RunScript submits script for execution. It returns false, and changes
// nothing, while a run is in flight or after Shutdown.
func (s *Supervisor) RunScript(script string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running || s.shutdown {
		return false
	}

	s.runs++
	s.runID = uuid.NewString()
	s.openTranscriptLocked()
	s.running = true
	log := s.logger.With(zap.String("run_id", s.runID))

	if s.mode == config.ModeWarm {
		if s.warm == nil || !s.warm.Write(script) {
			log.Error("warm session not ready")
			s.publishLocked(OutputEvent(Stderr, []byte("session is not ready, try again\n")))
			s.publishLocked(ExitEvent(launchFailedExitCode))
			return true
		}
		log.Info("script submitted", zap.Int("bytes", len(script)))
		return true
	}

	s.cold = NewColdSession(s.tool, s.opts, s)
	s.cold.Start(s.ctx, script)
	log.Info("script submitted", zap.Int("bytes", len(script)))
	return true
}

// Cancel force-stops the run in flight. Its Exit event still arrives.
func (s *Supervisor) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.logger.Info("cancelling run", zap.String("run_id", s.runID))
	if s.warm != nil {
		s.warm.Stop()
	}
	if s.cold != nil {
		s.cold.Stop()
	}
}

// Shutdown ends the session and kills anything still running. It is safe to
// call more than once.
func (s *Supervisor) Shutdown() {
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		return
	}
	s.shutdown = true
	warm, cold := s.warm, s.cold
	s.mu.Unlock()

	s.logger.Info("shutting down", zap.Int("runs", s.Runs()), zap.Int("events", s.queue.TotalPublished()))
	if warm != nil {
		warm.End()
	}
	if cold != nil {
		cold.Stop()
	}
	s.cancel()
}

// PollEvents drains every event published since the previous call.
func (s *Supervisor) PollEvents() []Event {
	return s.queue.Poll()
}

// Notify signals that new events may be waiting.
func (s *Supervisor) Notify() <-chan struct{} {
	return s.queue.Notify()
}

func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Supervisor) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

// Publish implements Sink for the sessions. An Exit ends the run in flight.
// Events with no run in flight belong to no script and are dropped.
func (s *Supervisor) Publish(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		s.logger.Debug("dropping event outside a run", zap.Stringer("event", e))
		return
	}
	s.publishLocked(e)
}

func (s *Supervisor) publishLocked(e Event) {
	if s.transcript != nil {
		if err := s.transcript.Record(e); err != nil {
			s.logger.Warn("transcript write failed", zap.Error(err))
		}
	}
	s.queue.Publish(e)
	if e.IsExit() {
		s.running = false
		s.closeTranscriptLocked()
		s.logger.Info("run finished", zap.String("run_id", s.runID), zap.Int("code", e.Code))
	}
}

func (s *Supervisor) openTranscriptLocked() {
	if s.opts.TranscriptDir == "" {
		return
	}
	t, err := CreateTranscript(s.opts.TranscriptDir, s.runID)
	if err != nil {
		s.logger.Warn("transcript unavailable", zap.Error(err))
		return
	}
	s.transcript = t
	s.logger.Debug("transcript opened", zap.String("run_id", s.runID),
		zap.String("stdout", t.StdoutPath()), zap.String("stderr", t.StderrPath()))
}

func (s *Supervisor) closeTranscriptLocked() {
	if s.transcript == nil {
		return
	}
	if err := s.transcript.Close(); err != nil {
		s.logger.Debug("close transcript", zap.Error(err))
	}
	s.transcript = nil
}
