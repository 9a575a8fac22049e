package workbench

import (
	"bufio"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/odvcencio/zcode/editor"
)

// historyPath names the undo log of a file: one file per path under the
// data directory, keyed by a hash of the path.
func (w *Workbench) historyPath(path string) string {
	if w.opts.DataDir == "" || path == "" {
		return ""
	}
	return filepath.Join(w.opts.DataDir, "history", editor.ContentHash(path)+".log")
}

func (w *Workbench) historyErr(err error) {
	if err != nil {
		w.log.Warn("history log write failed", "error", err)
	}
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 64*1024*1024)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	return out, sc.Err()
}

func appendLines(path string, lines []string) error {
	if len(lines) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(strings.Join(lines, "\n") + "\n"); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeLines(path string, lines []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var data string
	if len(lines) > 0 {
		data = strings.Join(lines, "\n") + "\n"
	}
	return atomicWrite(path, []byte(data))
}

// serialQueue runs jobs one at a time in submission order. Do never
// blocks, so the UI goroutine can hand it writes.
type serialQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	jobs   []func()
	closed bool
	done   chan struct{}
	log    *slog.Logger
}

func newSerialQueue(log *slog.Logger) *serialQueue {
	q := &serialQueue{done: make(chan struct{}), log: log}
	q.cond = sync.NewCond(&q.mu)
	go q.run()
	return q
}

// Do queues fn. Jobs queued after Close are dropped.
func (q *serialQueue) Do(fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.log.Warn("write dropped after shutdown")
		return
	}
	q.jobs = append(q.jobs, fn)
	q.cond.Signal()
}

// Close runs the queued jobs and stops.
func (q *serialQueue) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		q.cond.Signal()
	}
	q.mu.Unlock()
	<-q.done
}

func (q *serialQueue) run() {
	defer close(q.done)
	for {
		q.mu.Lock()
		for len(q.jobs) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.jobs) == 0 {
			q.mu.Unlock()
			return
		}
		fn := q.jobs[0]
		q.jobs = q.jobs[1:]
		q.mu.Unlock()
		fn()
	}
}
