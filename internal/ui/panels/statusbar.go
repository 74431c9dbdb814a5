package panels

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/justinpbarnett/kws/internal/ui/styles"
	"github.com/justinpbarnett/kws/internal/ui/text"
)

const flashDurationVal = 4 * time.Second

// Version is set via -ldflags at build time. Falls back to "dev".
var Version = "dev"

// FlashDuration returns how long the status bar flash is shown.
func FlashDuration() time.Duration { return flashDurationVal }

// FlashLevel controls the icon and color of a status bar flash message.
type FlashLevel int

const (
	FlashInfo    FlashLevel = iota // blue ●
	FlashSuccess                   // green ✓
	FlashWarning                   // yellow ⚠
	FlashError                     // red ✗
)

type StatusBar struct {
	width      int
	mode       string
	running    bool
	spinner    string
	started    time.Time
	hasExit    bool
	exitCode   int
	elapsed    time.Duration
	runs       int
	flash      string
	flashLevel FlashLevel
	flashUntil time.Time
	now        func() time.Time
}

func NewStatusBar(mode string) StatusBar {
	return StatusBar{mode: mode, now: time.Now}
}

func (s StatusBar) View() string {
	sep := styles.TextDimStyle.Render(" │ ")

	appName := "kws " + Version
	if s.running && s.spinner != "" {
		appName = s.spinner + " " + appName
	}
	left := " " + styles.TextSecondaryStyle.Render(appName) + sep +
		styles.TextSecondaryStyle.Render(s.mode)

	switch {
	case s.running:
		state := "running " + text.FormatElapsed(s.now().Sub(s.started))
		left += sep + lipgloss.NewStyle().Foreground(styles.StatusRunning).Render(state)
	case s.hasExit:
		state := text.FormatExit(s.exitCode) + " in " + text.FormatElapsed(s.elapsed)
		left += sep + lipgloss.NewStyle().Foreground(styles.ExitCodeColor(s.exitCode)).Render(state)
	default:
		left += sep + lipgloss.NewStyle().Foreground(styles.StatusPending).Render("idle")
	}

	if s.flash != "" && s.now().Before(s.flashUntil) {
		var icon string
		var color lipgloss.TerminalColor
		switch s.flashLevel {
		case FlashSuccess:
			icon, color = "✓", styles.StatusSuccess
		case FlashError:
			icon, color = "✗", styles.StatusError
		case FlashWarning:
			icon, color = "⚠", styles.StatusWarning
		default:
			icon, color = "●", styles.StatusRunning
		}
		left += sep + lipgloss.NewStyle().Foreground(color).Bold(true).Render(icon+" "+s.flash)
	}

	right := styles.TextSecondaryStyle.Render("f1:help") + " "

	rightWidth := lipgloss.Width(right)
	if lipgloss.Width(left)+1+rightWidth > s.width {
		left = text.Truncate(left, max(s.width-rightWidth-1, 0))
	}
	gap := max(s.width-lipgloss.Width(left)-rightWidth, 1)
	return left + strings.Repeat(" ", gap) + right
}

// RunStarted switches the bar to the running state.
func (s *StatusBar) RunStarted() {
	s.running = true
	s.started = s.now()
	s.runs++
}

// RunFinished records the exit code of the run that just ended.
func (s *StatusBar) RunFinished(code int) {
	s.running = false
	s.hasExit = true
	s.exitCode = code
	s.elapsed = s.now().Sub(s.started)
}

func (s StatusBar) Runs() int { return s.runs }

// SetSpinner sets the current spinner frame shown while running.
func (s *StatusBar) SetSpinner(frame string) { s.spinner = frame }

func (s *StatusBar) SetFlash(msg string) {
	s.SetFlashWithLevel(msg, FlashInfo)
}

func (s *StatusBar) SetFlashWithLevel(msg string, level FlashLevel) {
	s.flash = msg
	s.flashLevel = level
	s.flashUntil = s.now().Add(flashDurationVal)
}

func (s *StatusBar) ClearFlash() {
	s.flash = ""
	s.flashLevel = FlashInfo
	s.flashUntil = time.Time{}
}

func (s *StatusBar) SetSize(w int) {
	s.width = w
}
