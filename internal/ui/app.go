package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/justinpbarnett/kws/internal/diag"
	"github.com/justinpbarnett/kws/internal/ui/clipboard"
	"github.com/justinpbarnett/kws/internal/ui/layout"
	"github.com/justinpbarnett/kws/internal/ui/panels"
	"github.com/justinpbarnett/kws/internal/ui/styles"
	"github.com/justinpbarnett/kws/internal/ui/text"
	"go.uber.org/zap"
)

const defaultPollInterval = 100 * time.Millisecond

type Options struct {
	// ScriptName is the artifact name the tool sees, e.g. "script.kts". It
	// titles the editor and anchors error locations.
	ScriptName string
	// ScriptPath is the file being edited; empty for a scratch buffer.
	ScriptPath      string
	Content         string
	PollInterval    time.Duration
	ShowLineNumbers bool
	ClearOnRun      bool
	Logger          *zap.Logger
}

type App struct {
	engine      Engine
	opts        Options
	editor      panels.Editor
	output      panels.Output
	statusBar   panels.StatusBar
	spinner     spinner.Model
	helpOverlay *panels.HelpOverlay
	keys        KeyMap
	layout      layout.Layout
	width       int
	height      int
	ready       bool
	running     bool
	focusOutput bool
	copyText    func(string) error
	logger      *zap.Logger
}

func NewApp(engine Engine, opts Options) App {
	if opts.ScriptName == "" {
		opts.ScriptName = "script.kts"
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	ext := filepath.Ext(opts.ScriptName)
	base := strings.TrimSuffix(opts.ScriptName, ext)
	scanner := diag.NewScanner(base, strings.TrimPrefix(ext, "."))

	title := opts.ScriptName
	if opts.ScriptPath != "" {
		title = filepath.Base(opts.ScriptPath)
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.StatusRunning)

	return App{
		engine:    engine,
		opts:      opts,
		editor:    panels.NewEditor(title, opts.Content, opts.ShowLineNumbers),
		output:    panels.NewOutput(scanner),
		statusBar: panels.NewStatusBar(engine.Mode()),
		spinner:   sp,
		keys:      DefaultKeyMap(),
		copyText:  clipboard.Write,
		logger:    opts.Logger.With(zap.String("component", "ui")),
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, a.poll())
}

func (a App) poll() tea.Cmd {
	return tea.Tick(a.opts.PollInterval, func(time.Time) tea.Msg {
		return pollMsg{}
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.layout = layout.Calculate(msg.Width, msg.Height)
		a.propagateSizes()
		return a, nil

	case pollMsg:
		a.drainEvents()
		return a, a.poll()

	case spinner.TickMsg:
		if !a.running {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		a.statusBar.SetSpinner(a.spinner.View())
		return a, cmd

	case CloseModalMsg:
		a.helpOverlay = nil
		return a, nil

	case ClearFlashMsg:
		a.statusBar.ClearFlash()
		return a, nil

	case RunScriptMsg:
		return a, a.startRun()

	case ScriptChangedMsg:
		if a.editor.Dirty() {
			return a, a.flash("file changed on disk, keeping your edits", panels.FlashWarning)
		}
		a.editor.SetValue(msg.Content)
		return a, nil

	case tea.MouseMsg:
		var cmd tea.Cmd
		a.output, cmd = a.output.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		if key.Matches(msg, a.keys.Quit) {
			a.logger.Info("quit requested")
			a.engine.Shutdown()
			return a, tea.Quit
		}
		if a.helpOverlay != nil {
			var cmd tea.Cmd
			*a.helpOverlay, cmd = a.helpOverlay.Update(msg)
			return a, cmd
		}

		switch {
		case key.Matches(msg, a.keys.Run):
			return a, a.startRun()
		case key.Matches(msg, a.keys.Stop):
			return a, a.stopRun()
		case key.Matches(msg, a.keys.GotoError):
			return a, a.gotoError()
		case key.Matches(msg, a.keys.Copy):
			return a, a.copyOutput()
		case key.Matches(msg, a.keys.Save):
			return a, a.save()
		case key.Matches(msg, a.keys.FocusNext):
			a.setFocusOutput(!a.focusOutput)
			return a, nil
		case key.Matches(msg, a.keys.Help):
			a.helpOverlay = panels.NewHelpOverlay()
			return a, nil
		}
		return a.routeKey(msg)
	}
	return a, nil
}

func (a App) View() string {
	if !a.ready {
		return lipgloss.Place(a.width, a.height,
			lipgloss.Center, lipgloss.Center, "Loading...")
	}

	if a.layout.TooSmall {
		msg := fmt.Sprintf("Terminal too small (%d×%d)\nMinimum: %d×%d",
			a.width, a.height, layout.MinWidth, layout.MinHeight)
		return lipgloss.Place(a.width, a.height,
			lipgloss.Center, lipgloss.Center, msg)
	}

	panes := lipgloss.JoinHorizontal(lipgloss.Top, a.editor.View(), a.output.View())
	full := lipgloss.JoinVertical(lipgloss.Left, panes, a.statusBar.View())

	if a.helpOverlay != nil {
		full = lipgloss.Place(a.width, a.height,
			lipgloss.Center, lipgloss.Center, a.helpOverlay.View(),
			lipgloss.WithWhitespaceChars(" "),
			lipgloss.WithWhitespaceForeground(styles.TextDim),
		)
	}
	return full
}

// Script returns the current editor content.
func (a App) Script() string { return a.editor.Value() }

func (a App) Running() bool { return a.running }

func (a *App) drainEvents() {
	for _, e := range a.engine.PollEvents() {
		if e.IsExit() {
			a.finishRun(e.Code)
			continue
		}
		a.output.Append(e)
	}
}

func (a *App) startRun() tea.Cmd {
	if a.running {
		return a.flash("a script is already running", panels.FlashWarning)
	}
	script := a.editor.Value()
	if a.opts.ClearOnRun {
		a.output.Clear()
	}
	if !a.engine.RunScript(script) {
		return a.flash("engine busy, try again", panels.FlashWarning)
	}
	a.running = true
	a.statusBar.RunStarted()
	a.output.SetBadge(lipgloss.NewStyle().Foreground(styles.StatusRunning).Render("running"))
	a.logger.Debug("run started", zap.Int("bytes", len(script)))
	return a.spinner.Tick
}

func (a *App) finishRun(code int) {
	a.running = false
	a.statusBar.RunFinished(code)
	a.statusBar.SetSpinner("")
	a.output.SetBadge(lipgloss.NewStyle().Foreground(styles.ExitCodeColor(code)).Render(text.FormatExit(code)))
	a.logger.Debug("run finished", zap.Int("code", code))
}

func (a *App) stopRun() tea.Cmd {
	if !a.running {
		return nil
	}
	a.engine.Cancel()
	return a.flash("stopping", panels.FlashInfo)
}

func (a *App) gotoError() tea.Cmd {
	loc, ok := a.output.FirstLocation()
	if !ok {
		return a.flash("no error location in output", panels.FlashInfo)
	}
	a.editor.Goto(loc.Row, loc.Col)
	a.setFocusOutput(false)
	return nil
}

func (a *App) copyOutput() tea.Cmd {
	out := a.output.PlainText()
	if out == "" {
		return a.flash("nothing to copy", panels.FlashInfo)
	}
	if err := a.copyText(out); err != nil {
		a.logger.Warn("copy to clipboard failed", zap.Error(err))
		return a.flash("copy failed: "+err.Error(), panels.FlashError)
	}
	return a.flash(fmt.Sprintf("copied %d lines", strings.Count(out, "\n")), panels.FlashSuccess)
}

func (a *App) save() tea.Cmd {
	if a.opts.ScriptPath == "" {
		return a.flash("scratch buffer, nothing to save to", panels.FlashWarning)
	}
	if err := os.WriteFile(a.opts.ScriptPath, []byte(a.editor.Value()), 0o644); err != nil {
		a.logger.Error("save failed", zap.String("path", a.opts.ScriptPath), zap.Error(err))
		return a.flash("save failed: "+err.Error(), panels.FlashError)
	}
	a.editor.MarkSaved()
	return a.flash("saved "+filepath.Base(a.opts.ScriptPath), panels.FlashSuccess)
}

func (a *App) flash(msg string, level panels.FlashLevel) tea.Cmd {
	a.statusBar.SetFlashWithLevel(msg, level)
	return tea.Tick(panels.FlashDuration(), func(time.Time) tea.Msg {
		return ClearFlashMsg{}
	})
}

func (a App) routeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if a.focusOutput {
		a.output, cmd = a.output.Update(msg)
	} else {
		a.editor, cmd = a.editor.Update(msg)
	}
	return a, cmd
}

func (a *App) setFocusOutput(output bool) {
	a.focusOutput = output
	a.editor.SetFocused(!output)
	a.output.SetFocused(output)
}

func (a *App) propagateSizes() {
	l := a.layout
	a.editor.SetSize(l.EditorWidth, l.PanelHeight)
	a.output.SetSize(l.OutputWidth, l.PanelHeight)
	a.statusBar.SetSize(l.StatusBarWidth)
}
