package plugin

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/multierr"

	"github.com/odvcencio/zcode/rpc"
)

var (
	// ErrOffline is returned when talking to a plugin that has stopped.
	ErrOffline = errors.New("plugin offline")
	// ErrUnknownPlugin is returned for ids the host never started.
	ErrUnknownPlugin = errors.New("unknown plugin")
)

const initTimeout = 10 * time.Second

// Config is how to launch a plugin.
type Config struct {
	ID      string
	Command string
	Args    []string
}

// State is a plugin's lifecycle.
type State int

const (
	StateStarting State = iota
	StateOnline
	StateOffline
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateOnline:
		return "online"
	}
	return "offline"
}

// Dialer connects to a plugin. The connection's read loop is run by the
// host.
type Dialer func(ctx context.Context, cfg Config, dir string) (*rpc.Conn, error)

type plugin struct {
	id   string
	conn *rpc.Conn

	mu     sync.Mutex
	state  State
	reason string
}

// methodDef is a plugin-to-host method. A handler error means the
// plugin sent something undecodable and takes it offline.
type methodDef struct {
	Method  string
	Handler func(p *plugin, params json.RawMessage) (any, error)
}

// Host runs plugins and turns their traffic into events.
type Host struct {
	Workspace string

	ctx     context.Context
	log     *slog.Logger
	out     chan<- Event
	dial    Dialer
	methods []methodDef

	mu      sync.Mutex
	plugins map[string]*plugin
}

// NewHost returns a host that launches plugins as child processes in
// workspace.
func NewHost(ctx context.Context, workspace string, out chan<- Event, log *slog.Logger) *Host {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "plugin")
	h := &Host{
		Workspace: workspace,
		ctx:       ctx,
		log:       log,
		out:       out,
		dial:      processDialer(log),
		plugins:   make(map[string]*plugin),
	}
	h.registerMethods()
	return h
}

func (h *Host) registerMethods() {
	h.methods = []methodDef{
		h.methodRegister(),
		h.methodPatch(),
		h.methodLog(),
	}
}

func (h *Host) methodRegister() methodDef {
	return methodDef{
		Method: MethodRegister,
		Handler: func(p *plugin, params json.RawMessage) (any, error) {
			var reg RegisterParams
			if err := json.Unmarshal(params, &reg); err != nil {
				return nil, err
			}
			seen := make(map[string]bool)
			for _, c := range reg.Commands {
				if c.ID == "" {
					return nil, errors.New("command without id")
				}
				if seen[c.ID] {
					return nil, fmt.Errorf("duplicate command %q", c.ID)
				}
				seen[c.ID] = true
			}
			clear(seen)
			for _, s := range reg.StatusItems {
				if s.ID == "" || seen[s.ID] {
					return nil, fmt.Errorf("invalid status item id %q", s.ID)
				}
				seen[s.ID] = true
			}
			h.emit(RegisteredEvent{PluginID: p.id, Commands: reg.Commands, StatusItems: reg.StatusItems}, true)
			return struct{}{}, nil
		},
	}
}

func (h *Host) methodPatch() methodDef {
	return methodDef{
		Method: MethodUIPatch,
		Handler: func(p *plugin, params json.RawMessage) (any, error) {
			var patch PatchParams
			if err := json.Unmarshal(params, &patch); err != nil {
				return nil, err
			}
			h.emit(PatchEvent{PluginID: p.id, Patches: patch.Items}, true)
			return struct{}{}, nil
		},
	}
}

func (h *Host) methodLog() methodDef {
	return methodDef{
		Method: MethodLog,
		Handler: func(p *plugin, params json.RawMessage) (any, error) {
			var lp LogParams
			if err := json.Unmarshal(params, &lp); err != nil {
				return nil, err
			}
			h.emit(LogEvent{PluginID: p.id, Level: lp.Level, Message: lp.Message}, false)
			return struct{}{}, nil
		},
	}
}

func (h *Host) lookupMethod(name string) (methodDef, bool) {
	for _, m := range h.methods {
		if m.Method == name {
			return m, true
		}
	}
	return methodDef{}, false
}

func (h *Host) handler(p *plugin) rpc.Handler {
	return func(msg *rpc.Message) {
		m, ok := h.lookupMethod(msg.Method)
		if !ok {
			if msg.IsRequest() {
				_ = p.conn.Reply(msg.ID, nil, &rpc.Error{Code: rpc.CodeMethodNotFound, Message: "method not found: " + msg.Method})
			} else {
				h.log.Debug("ignoring notification", "plugin", p.id, "method", msg.Method)
			}
			return
		}
		result, err := m.Handler(p, msg.Params)
		if err != nil {
			if msg.IsRequest() {
				_ = p.conn.Reply(msg.ID, nil, &rpc.Error{Code: rpc.CodeInvalidParams, Message: err.Error()})
			}
			h.markOffline(p, fmt.Sprintf("%s: invalid params: %v", msg.Method, err))
			return
		}
		if msg.IsRequest() {
			_ = p.conn.Reply(msg.ID, result, nil)
		}
	}
}

// Start launches a plugin. It returns once the process is running;
// initialization continues in the background.
func (h *Host) Start(cfg Config) error {
	if cfg.ID == "" || strings.Contains(cfg.ID, ":") {
		return fmt.Errorf("plugin id %q: must be non-empty and contain no colon", cfg.ID)
	}
	h.mu.Lock()
	if old, ok := h.plugins[cfg.ID]; ok && old.State() != StateOffline {
		h.mu.Unlock()
		return fmt.Errorf("plugin %s already running", cfg.ID)
	}
	p := &plugin{id: cfg.ID}
	h.plugins[cfg.ID] = p
	h.mu.Unlock()

	conn, err := h.dial(h.ctx, cfg, h.Workspace)
	if err != nil {
		h.markOffline(p, err.Error())
		return err
	}
	p.mu.Lock()
	p.conn = conn
	p.mu.Unlock()
	conn.SetHandler(h.handler(p))
	go func() {
		err := conn.Run()
		h.markOffline(p, exitReason(err))
	}()
	go h.initialize(p)
	return nil
}

func (h *Host) initialize(p *plugin) {
	ctx, cancel := context.WithTimeout(h.ctx, initTimeout)
	defer cancel()
	_, err := p.conn.Call(ctx, MethodInitialize, InitializeParams{ProtocolVersion: ProtocolVersion, WorkspaceRoot: h.Workspace})
	if err != nil {
		h.markOffline(p, "initialize: "+err.Error())
		return
	}
	p.mu.Lock()
	if p.state != StateStarting {
		p.mu.Unlock()
		return
	}
	p.state = StateOnline
	p.mu.Unlock()
	h.log.Info("plugin online", "plugin", p.id)
	h.emit(OnlineEvent{PluginID: p.id}, true)
}

func exitReason(err error) string {
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
		return "process exited"
	}
	return err.Error()
}

// markOffline records the first reason a plugin stopped and closes it.
func (h *Host) markOffline(p *plugin, reason string) {
	p.mu.Lock()
	if p.state == StateOffline {
		p.mu.Unlock()
		return
	}
	p.state, p.reason = StateOffline, reason
	conn := p.conn
	p.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
	h.log.Warn("plugin offline", "plugin", p.id, "reason", reason)
	h.emit(OfflineEvent{PluginID: p.id, Reason: reason}, true)
}

// State returns p's lifecycle state.
func (p *plugin) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Status returns a plugin's state and offline reason.
func (h *Host) Status(id string) (State, string, error) {
	h.mu.Lock()
	p, ok := h.plugins[id]
	h.mu.Unlock()
	if !ok {
		return StateOffline, "", ErrUnknownPlugin
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state, p.reason, nil
}

// IDs returns the ids of every plugin started, sorted.
func (h *Host) IDs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := make([]string, 0, len(h.plugins))
	for id := range h.plugins {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Notify sends a notification to a plugin.
func (h *Host) Notify(id, method string, params any) error {
	h.mu.Lock()
	p, ok := h.plugins[id]
	h.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlugin, id)
	}
	p.mu.Lock()
	state, reason, conn := p.state, p.reason, p.conn
	p.mu.Unlock()
	if state == StateOffline || conn == nil {
		return fmt.Errorf("%w: %s: %s", ErrOffline, id, reason)
	}
	if err := conn.Notify(method, params); err != nil {
		h.markOffline(p, "write: "+err.Error())
		return fmt.Errorf("%w: %s: %v", ErrOffline, id, err)
	}
	return nil
}

// Invoke tells a plugin that the user ran one of its commands.
func (h *Host) Invoke(id, commandID string) error {
	return h.Notify(id, MethodCommandInvoked, CommandInvokedParams{CommandID: commandID})
}

// Shutdown closes every plugin.
func (h *Host) Shutdown() error {
	h.mu.Lock()
	conns := make([]*rpc.Conn, 0, len(h.plugins))
	for _, p := range h.plugins {
		p.mu.Lock()
		if p.conn != nil {
			conns = append(conns, p.conn)
		}
		p.state, p.reason = StateOffline, "shutdown"
		p.mu.Unlock()
	}
	h.mu.Unlock()
	var err error
	for _, c := range conns {
		err = multierr.Append(err, c.Close())
	}
	return err
}

// emit delivers ev. Important events wait for room; log lines are dropped
// when the channel is full.
func (h *Host) emit(ev Event, important bool) {
	if h.out == nil {
		return
	}
	if important {
		select {
		case h.out <- ev:
		case <-h.ctx.Done():
		}
		return
	}
	select {
	case h.out <- ev:
	default:
	}
}

// processDialer starts plugins as child processes.
func processDialer(log *slog.Logger) Dialer {
	return func(ctx context.Context, cfg Config, dir string) (*rpc.Conn, error) {
		cmd := exec.CommandContext(ctx, cfg.Command, cfg.Args...)
		cmd.Dir = dir
		stdin, err := cmd.StdinPipe()
		if err != nil {
			return nil, err
		}
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			return nil, err
		}
		stderr, err := cmd.StderrPipe()
		if err != nil {
			return nil, err
		}
		if err := cmd.Start(); err != nil {
			return nil, fmt.Errorf("start plugin %s: %w", cfg.ID, err)
		}
		plog := log.With("plugin", cfg.ID)
		go func() {
			sc := bufio.NewScanner(stderr)
			for sc.Scan() {
				plog.Debug("stderr", "line", sc.Text())
			}
		}()
		return rpc.NewConn(stdout, stdin, &process{stdin: stdin, cmd: cmd}, plog), nil
	}
}

type process struct {
	stdin io.Closer
	cmd   *exec.Cmd
}

// Close ends the plugin's input and waits briefly for it to exit.
func (p *process) Close() error {
	err := p.stdin.Close()
	done := make(chan error, 1)
	go func() { done <- p.cmd.Wait() }()
	select {
	case werr := <-done:
		var exitErr *exec.ExitError
		if werr != nil && !errors.As(werr, &exitErr) {
			err = multierr.Append(err, werr)
		}
	case <-time.After(2 * time.Second):
		err = multierr.Append(err, p.cmd.Process.Kill())
	}
	return err
}
