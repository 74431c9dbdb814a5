package panels

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/justinpbarnett/kws/internal/diag"
	"github.com/justinpbarnett/kws/internal/process"
	"github.com/justinpbarnett/kws/internal/ui/border"
	"github.com/justinpbarnett/kws/internal/ui/styles"
	"github.com/justinpbarnett/kws/internal/ui/text"
)

const outputCapacity = 10000

// Output shows the run's stdout and stderr interleaved in arrival order.
// Stderr is drawn in red and script locations inside it are underlined.
type Output struct {
	viewport    viewport.Model
	buffer      *process.Scrollback
	scanner     *diag.Scanner
	width       int
	height      int
	focused     bool
	follow      bool
	badge       string
	scrollSpeed int
}

func NewOutput(scanner *diag.Scanner) Output {
	return Output{
		viewport:    viewport.New(0, 0),
		buffer:      process.NewScrollback(outputCapacity),
		scanner:     scanner,
		follow:      true,
		scrollSpeed: 3,
	}
}

// Append adds an output event. Exit events are ignored here.
func (o *Output) Append(e process.Event) {
	if e.Type != process.EventOutput {
		return
	}
	o.buffer.Write(e.Stream, e.Data)
	o.refresh()
}

// Note adds a line of its own, such as a run summary.
func (o *Output) Note(s string) {
	o.buffer.Append(process.Line{Stream: -1, Text: s})
	o.refresh()
}

func (o *Output) Clear() {
	o.buffer.Reset()
	o.follow = true
	o.refresh()
}

func (o *Output) SetBadge(s string) { o.badge = s }

// FirstLocation returns the first script location reported on stderr.
func (o Output) FirstLocation() (diag.Location, bool) {
	if o.scanner == nil {
		return diag.Location{}, false
	}
	for _, l := range o.buffer.Lines() {
		if l.Stream != process.Stderr {
			continue
		}
		if locs := o.scanner.Scan(ansi.Strip(l.Text)); len(locs) > 0 {
			return locs[0], true
		}
	}
	return diag.Location{}, false
}

// PlainText is the output as the tool wrote it, without styling.
func (o Output) PlainText() string {
	var b strings.Builder
	for _, l := range o.buffer.Lines() {
		if l.Stream < 0 {
			continue
		}
		b.WriteString(l.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

func (o Output) Update(msg tea.Msg) (Output, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && o.focused {
		switch km.String() {
		case "G", "end":
			o.follow = true
			o.viewport.GotoBottom()
			return o, nil
		case "g", "home":
			o.follow = false
			o.viewport.GotoTop()
			return o, nil
		case "j", "down":
			o.viewport.SetYOffset(o.viewport.YOffset + o.scrollSpeed)
			o.follow = o.viewport.AtBottom()
			return o, nil
		case "k", "up":
			o.follow = false
			o.viewport.SetYOffset(max(o.viewport.YOffset-o.scrollSpeed, 0))
			return o, nil
		}
	}

	var cmd tea.Cmd
	o.viewport, cmd = o.viewport.Update(msg)
	if _, ok := msg.(tea.MouseMsg); ok {
		o.follow = o.viewport.AtBottom()
	}
	return o, cmd
}

func (o Output) View() string {
	var keybinds []border.Keybind
	if o.focused {
		keybinds = []border.Keybind{
			{Key: "^y", Label: " copy"},
			{Key: "G", Label: " bottom"},
			{Key: "g", Label: " top"},
			{Key: "^o", Label: " editor"},
		}
		if !o.follow && !o.viewport.AtBottom() {
			keybinds = append(keybinds, border.Keybind{Key: "↓", Label: " new output"})
		}
	}
	return border.RenderPanel("Output", o.badge, o.viewport.View(), keybinds, o.width, o.height, o.focused)
}

func (o *Output) SetSize(w, h int) {
	o.width = w
	o.height = h
	o.viewport.Width = max(w-2, 0)
	o.viewport.Height = max(h-2, 0)
	o.refresh()
}

func (o *Output) SetFocused(focused bool) { o.focused = focused }

func (o *Output) SetScrollSpeed(n int) {
	if n > 0 {
		o.scrollSpeed = n
	}
}

func (o *Output) refresh() {
	o.viewport.SetContent(o.render())
	if o.follow {
		o.viewport.GotoBottom()
	}
}

func (o *Output) render() string {
	lines := o.buffer.Lines()
	if len(lines) == 0 {
		return styles.TextDimStyle.Render("Press ctrl+r to run the script")
	}
	width := o.viewport.Width
	var rows []string
	for _, l := range lines {
		rows = append(rows, text.WrapLine(o.styleLine(l), width)...)
	}
	return strings.Join(rows, "\n")
}

func (o *Output) styleLine(l process.Line) string {
	s := strings.ReplaceAll(ansi.Strip(l.Text), "\t", "    ")
	switch l.Stream {
	case process.Stdout:
		return styles.StdoutStyle.Render(s)
	case process.Stderr:
		if o.scanner == nil {
			return styles.StderrStyle.Render(s)
		}
		var b strings.Builder
		for _, seg := range diag.Split(s, o.scanner.Scan(s)) {
			if seg.Location != nil {
				b.WriteString(styles.LocationStyle.Render(seg.Text))
			} else {
				b.WriteString(styles.StderrStyle.Render(seg.Text))
			}
		}
		return b.String()
	default:
		return styles.TextSecondaryStyle.Render(s)
	}
}
