package ui

import "github.com/justinpbarnett/kws/internal/ui/panels"

// CloseModalMsg signals that the modal should be closed.
type CloseModalMsg = panels.CloseModalMsg

// ClearFlashMsg signals the status bar flash should be cleared.
type ClearFlashMsg = panels.ClearFlashMsg

// pollMsg asks the app to drain engine events.
type pollMsg struct{}

// ScriptChangedMsg replaces the editor content, sent when the script file
// changed on disk.
type ScriptChangedMsg struct {
	Content string
}

// RunScriptMsg runs the current editor content as if ctrl+r was pressed.
type RunScriptMsg struct{}
