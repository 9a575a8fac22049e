package workbench

import (
	"io"
	"os"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
)

// sysClipboard talks to the system clipboard and falls back to the OSC 52
// escape sequence when no clipboard tool is available, which also works
// over ssh. OSC 52 cannot be read back, so Read then returns the last
// text written.
type sysClipboard struct {
	mu     sync.Mutex
	out    io.Writer
	last   string
	system bool
}

func newClipboard(out io.Writer) *sysClipboard {
	if out == nil {
		out = os.Stderr
	}
	return &sysClipboard{out: out, system: !clipboard.Unsupported}
}

func (c *sysClipboard) Write(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = text
	if c.system {
		if err := clipboard.WriteAll(text); err == nil {
			return nil
		}
	}
	seq := osc52.New(text)
	if os.Getenv("TMUX") != "" {
		seq = seq.Tmux()
	}
	_, err := seq.WriteTo(c.out)
	return err
}

func (c *sysClipboard) Read() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.system {
		text, err := clipboard.ReadAll()
		if err == nil {
			return text, nil
		}
		if c.last == "" {
			return "", err
		}
	}
	return c.last, nil
}
