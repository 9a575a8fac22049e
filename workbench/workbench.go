// Package workbench runs the editor: it feeds terminal input and adapter
// events to the store as actions, performs the effects the store returns
// and draws the state with lipgloss.
package workbench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/odvcencio/zcode/completion"
	"github.com/odvcencio/zcode/lsp"
	"github.com/odvcencio/zcode/plugin"
	"github.com/odvcencio/zcode/search"
	"github.com/odvcencio/zcode/settings"
	"github.com/odvcencio/zcode/store"
)

// Channel sizes. Adapters block on full channels except the log, which
// drops lines.
const (
	eventBuffer  = 4096
	resultBuffer = 256
	logBuffer    = 4096
	// ioWorkers bounds concurrent filesystem work.
	ioWorkers = 8
	// shutdownTimeout bounds language server shutdown.
	shutdownTimeout = 3 * time.Second
)

// Options configure a workbench.
type Options struct {
	// Root is the workspace directory.
	Root string
	// Open lists files to open after the workspace loads.
	Open []string
	// Settings is the settings file already loaded; nil uses defaults.
	Settings *settings.File
	// SettingsPath is watched for changes when set.
	SettingsPath string
	// DataDir holds history logs. Empty disables persistence.
	DataDir string
	// RankerPath is where completion ranking is saved. Empty disables it.
	RankerPath string
	DisableLSP bool
	// LogFile receives every log record besides the Logs tab.
	LogFile  io.Writer
	LogLevel slog.Leveler
	// Input and Output replace the terminal; used by tests.
	Input  io.Reader
	Output io.Writer
	// Width and Height are the initial size before the first resize.
	Width, Height int
}

// Workbench is the running editor. It implements tea.Model.
type Workbench struct {
	opts   Options
	ctx    context.Context
	cancel context.CancelFunc
	start  time.Time

	store   *store.Store
	painter *painter
	layout  screenLayout

	log      *slog.Logger
	logDrops *atomic.Int64

	logs       chan string
	results    chan store.Action
	lspEvents  chan lsp.Event
	plugEvents chan plugin.Event
	globalMsgs chan search.Message
	editorMsgs chan search.EditorMessage
	wake       chan struct{}

	lsp     *lsp.Manager
	plugins *plugin.Host
	search  *search.Driver

	globalSearch   *search.Handle
	editorSearches map[int]*search.Handle

	group  *errgroup.Group
	ioSem  *semaphore.Weighted
	serial *serialQueue
	term   *terminal
	clip   *sysClipboard

	drag     dragState
	quitting bool
	stopping atomic.Bool
}

// New builds a workbench for opts and starts its adapters. Call Run, or
// drive it as a tea.Model and call Shutdown.
func New(opts Options) (*Workbench, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("open workspace: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open workspace: %s is not a directory", root)
	}
	opts.Root = root
	if opts.LogLevel == nil {
		opts.LogLevel = slog.LevelInfo
	}

	ctx, cancel := context.WithCancel(context.Background())
	group, gctx := errgroup.WithContext(ctx)
	w := &Workbench{
		opts:           opts,
		ctx:            gctx,
		cancel:         cancel,
		start:          time.Now(),
		logs:           make(chan string, logBuffer),
		results:        make(chan store.Action, resultBuffer),
		lspEvents:      make(chan lsp.Event, eventBuffer),
		plugEvents:     make(chan plugin.Event, eventBuffer),
		globalMsgs:     make(chan search.Message, eventBuffer),
		editorMsgs:     make(chan search.EditorMessage, resultBuffer),
		wake:           make(chan struct{}, 1),
		editorSearches: make(map[int]*search.Handle),
		group:          group,
		ioSem:          semaphore.NewWeighted(ioWorkers),
	}
	w.log, w.logDrops = newLogger(w.logs, opts.LogFile, opts.LogLevel)
	w.serial = newSerialQueue(w.log)
	w.clip = newClipboard(opts.Output)

	ranker := completion.NewRanker()
	if opts.RankerPath != "" {
		r, err := completion.Load(opts.RankerPath)
		if err != nil {
			w.log.Warn("completion ranking not loaded", "path", opts.RankerPath, "error", err)
		}
		ranker = r
	}
	w.store = store.New(store.Config{
		Root:        root,
		Settings:    opts.Settings,
		Ranker:      ranker,
		LspDisabled: opts.DisableLSP,
		Width:       opts.Width,
		Height:      opts.Height,
	})
	st := w.store.State()
	w.painter = newPainter(st.Theme)
	w.search = search.NewDriver(w.log.With("component", "search"))
	if !opts.DisableLSP {
		w.lsp = lsp.NewManager(gctx, root, st.Servers, w.lspEvents, w.log.With("component", "lsp"))
	}
	w.plugins = plugin.NewHost(gctx, root, w.plugEvents, w.log.With("component", "plugin"))
	w.startPlugins(st.PluginConfigs)

	if opts.SettingsPath != "" {
		watcher := settings.NewWatcher(opts.SettingsPath, w.log.With("component", "settings"))
		group.Go(func() error {
			err := watcher.Run(gctx, func(f *settings.File, err error) {
				if err != nil {
					w.post(store.SettingsError{Err: err.Error()})
					return
				}
				w.post(store.SettingsReloaded{Settings: f})
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	return w, nil
}

// State exposes the store state for inspection.
func (w *Workbench) State() *store.AppState { return w.store.State() }

// Run takes over the terminal until the editor quits.
func (w *Workbench) Run() error {
	opts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(w.ctx),
	}
	if w.opts.Input != nil {
		opts = append(opts, tea.WithInput(w.opts.Input))
	}
	if w.opts.Output != nil {
		opts = append(opts, tea.WithOutput(w.opts.Output))
	}
	_, err := tea.NewProgram(w, opts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && w.quitting {
		err = nil
	}
	return multierr.Append(err, w.Shutdown())
}

// Shutdown stops every adapter and waits for pending writes. Calls after
// the first do nothing.
func (w *Workbench) Shutdown() error {
	if w.stopping.Swap(true) {
		return nil
	}
	var err error
	w.globalSearch.Cancel()
	for _, h := range w.editorSearches {
		h.Cancel()
	}
	if w.lsp != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		err = multierr.Append(err, w.lsp.Shutdown(ctx))
		cancel()
	}
	err = multierr.Append(err, w.plugins.Shutdown())
	if w.term != nil {
		err = multierr.Append(err, w.term.Close())
	}
	w.cancel()
	w.serial.Close()
	return multierr.Append(err, w.group.Wait())
}

// post delivers an action from an adapter goroutine. Once shutdown
// starts nothing reads actions any more and they are dropped.
func (w *Workbench) post(a store.Action) {
	if w.stopping.Load() {
		return
	}
	select {
	case w.results <- a:
	case <-w.ctx.Done():
		return
	}
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// goIO runs fn on a bounded worker and posts its result.
func (w *Workbench) goIO(fn func() store.Action) {
	w.group.Go(func() error {
		if err := w.ioSem.Acquire(w.ctx, 1); err != nil {
			return nil
		}
		defer w.ioSem.Release(1)
		if a := fn(); a != nil {
			w.post(a)
		}
		return nil
	})
}

// now is wall time at startup advanced by the monotonic clock, so wall
// clock steps never move it backwards.
func (w *Workbench) now() int64 {
	return w.start.UnixMilli() + time.Since(w.start).Milliseconds()
}

func (w *Workbench) startPlugins(cfgs []settings.Plugin) {
	running := make(map[string]bool)
	for _, id := range w.plugins.IDs() {
		running[id] = true
	}
	for _, c := range cfgs {
		if running[c.ID] {
			continue
		}
		if err := w.plugins.Start(plugin.Config{ID: c.ID, Command: c.Command, Args: c.Args}); err != nil {
			w.log.Error("plugin failed to start", "plugin", c.ID, "error", err)
		}
	}
}
