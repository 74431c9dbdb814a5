package clipboard

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
)

// osc52Out receives the OSC52 fallback sequence. The terminal owns stderr
// while the TUI runs on stdout's alt screen.
var osc52Out io.Writer = os.Stderr

// Write copies run output to the system clipboard. It tries the native
// clipboard first (wl-copy, xclip, pbcopy, etc.) then falls back
// to OSC52 for SSH/tmux sessions.
func Write(text string) error {
	if clipboard.Unsupported {
		return writeOSC52(osc52Out, text)
	}
	if err := clipboard.WriteAll(text); err == nil {
		return nil
	}
	return writeOSC52(osc52Out, text)
}

func writeOSC52(w io.Writer, text string) error {
	encoded := base64.StdEncoding.EncodeToString([]byte(text))
	_, err := fmt.Fprintf(w, "\x1b]52;c;%s\x07", encoded)
	return err
}
