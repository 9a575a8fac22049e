package workbench

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/charmbracelet/x/ansi"

	"github.com/odvcencio/zcode/store"
)

// terminal is a shell connected over pipes. Output is stripped of escape
// sequences; there is no screen emulation.
type terminal struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser

	mu     sync.Mutex
	exited bool
}

func shellCommand() string {
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	return "/bin/sh"
}

// startTerminal launches the shell in dir unless one is running.
func (w *Workbench) startTerminal(dir string) {
	if w.term != nil && w.term.running() {
		return
	}
	cmd := exec.CommandContext(w.ctx, shellCommand(), "-i")
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "TERM=dumb", "PAGER=cat", "GIT_PAGER=cat")
	stdin, err := cmd.StdinPipe()
	if err != nil {
		w.goIO(func() store.Action { return store.TerminalExited{Err: err.Error()} })
		return
	}
	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw
	if err := cmd.Start(); err != nil {
		pw.Close()
		w.goIO(func() store.Action { return store.TerminalExited{Err: err.Error()} })
		return
	}
	t := &terminal{cmd: cmd, stdin: stdin}
	w.term = t
	w.log.Info("terminal started", "shell", cmd.Path, "dir", dir)

	w.group.Go(func() error {
		buf := make([]byte, 4096)
		for {
			n, err := pr.Read(buf)
			if n > 0 {
				w.post(store.TerminalOutput{Data: ansi.Strip(string(buf[:n]))})
			}
			if err != nil {
				return nil
			}
		}
	})
	w.group.Go(func() error {
		err := cmd.Wait()
		pw.Close()
		t.mu.Lock()
		t.exited = true
		t.mu.Unlock()
		msg := ""
		var exit *exec.ExitError
		if err != nil && !errors.As(err, &exit) {
			msg = err.Error()
		} else if exit != nil && exit.ExitCode() > 0 {
			msg = exit.Error()
		}
		w.post(store.TerminalExited{Err: msg})
		return nil
	})
}

func (t *terminal) running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.exited
}

func (t *terminal) Write(data string) error {
	if !t.running() {
		return errors.New("terminal has exited")
	}
	_, err := io.WriteString(t.stdin, data)
	return err
}

// Close ends the shell.
func (t *terminal) Close() error {
	if !t.running() {
		return nil
	}
	t.stdin.Close()
	if t.cmd.Process != nil {
		if err := t.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			return err
		}
	}
	return nil
}
