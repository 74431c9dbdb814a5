package ui

import "github.com/justinpbarnett/kws/internal/process"

// Engine runs scripts on behalf of the UI. *process.Supervisor satisfies it.
type Engine interface {
	RunScript(script string) bool
	Cancel()
	Shutdown()
	PollEvents() []process.Event
	Running() bool
	Mode() string
}

var _ Engine = (*process.Supervisor)(nil)
