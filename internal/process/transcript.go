package process

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Transcript records one run's output into a stdout and a stderr file.
type Transcript struct {
	stdoutPath string
	stderrPath string
	stdout     *os.File
	stderr     *os.File
}

// CreateTranscript opens the transcript files for a run inside dir,
// creating dir when needed. Files are opened in append mode.
func CreateTranscript(dir, runID string) (*Transcript, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create transcript dir: %w", err)
	}
	stdoutPath, stderrPath := transcriptPaths(dir, runID)

	stdoutF, err := os.OpenFile(stdoutPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	stderrF, err := os.OpenFile(stderrPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		stdoutF.Close()
		return nil, err
	}

	return &Transcript{
		stdoutPath: stdoutPath,
		stderrPath: stderrPath,
		stdout:     stdoutF,
		stderr:     stderrF,
	}, nil
}

func (t *Transcript) StdoutPath() string { return t.stdoutPath }
func (t *Transcript) StderrPath() string { return t.stderrPath }

// Record appends an output event to the file for its stream. Exit events
// are ignored.
func (t *Transcript) Record(e Event) error {
	if e.Type != EventOutput {
		return nil
	}
	f := t.stdout
	if e.Stream == Stderr {
		f = t.stderr
	}
	_, err := f.Write(e.Data)
	return err
}

func (t *Transcript) Close() error {
	var firstErr error
	if t.stdout != nil {
		if err := t.stdout.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if t.stderr != nil {
		if err := t.stderr.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func transcriptPaths(dir, runID string) (string, string) {
	return filepath.Join(dir, runID+".stdout"), filepath.Join(dir, runID+".stderr")
}

// TranscriptRunID returns the run id a transcript file belongs to, or false
// when name is not a transcript file.
func TranscriptRunID(name string) (string, bool) {
	for _, ext := range []string{".stdout", ".stderr"} {
		if id, ok := strings.CutSuffix(name, ext); ok && id != "" {
			return id, true
		}
	}
	return "", false
}

// RemoveTranscript deletes both transcript files of a run. Files that are
// already gone are not an error.
func RemoveTranscript(dir, runID string) error {
	stdoutPath, stderrPath := transcriptPaths(dir, runID)
	return errors.Join(removeIfExists(stdoutPath), removeIfExists(stderrPath))
}
