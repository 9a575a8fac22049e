package lsp

import (
	"context"
	"log/slog"
	"sync"

	"go.uber.org/multierr"

	"github.com/odvcencio/zcode/editor"
)

type sessionKey struct {
	server string
	root   string
}

// Manager routes documents and requests to sessions keyed by server
// command and language root.
type Manager struct {
	Workspace string

	ctx  context.Context
	log  *slog.Logger
	out  chan<- Event
	dial func(ctx context.Context, cfg ServerConfig, root string) (*Client, error)

	mu       sync.Mutex
	servers  map[string]ServerConfig
	sessions map[sessionKey]*Session
	byPath   map[string]*Session
}

// NewManager returns a manager that launches servers as child processes.
func NewManager(ctx context.Context, workspace string, servers map[string]ServerConfig, out chan<- Event, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	m := &Manager{
		Workspace: workspace,
		ctx:       ctx,
		log:       log,
		out:       out,
		servers:   MergeServers(DefaultServers(), servers),
		sessions:  make(map[sessionKey]*Session),
		byPath:    make(map[string]*Session),
	}
	m.dial = func(ctx context.Context, cfg ServerConfig, root string) (*Client, error) {
		return NewClient(ctx, cfg, root, m.log)
	}
	return m
}

// SetServers replaces the server table. Running sessions are kept.
func (m *Manager) SetServers(overrides map[string]ServerConfig) {
	m.mu.Lock()
	m.servers = MergeServers(DefaultServers(), overrides)
	m.mu.Unlock()
}

// Server returns the configuration for a language id.
func (m *Manager) Server(lang string) (ServerConfig, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg, ok := m.servers[lang]
	return cfg, ok && cfg.Command != ""
}

func (m *Manager) sessionFor(lang, path string) *Session {
	s, created := m.lookupOrCreate(lang, path)
	if created {
		s.Start()
	}
	return s
}

func (m *Manager) lookupOrCreate(lang, path string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg, ok := m.servers[lang]
	if !ok || cfg.Command == "" {
		return nil, false
	}
	key := sessionKey{server: cfg.Command, root: RootFor(lang, path, m.Workspace)}
	s := m.sessions[key]
	created := s == nil
	if created {
		root := key.root
		s = NewSession(m.ctx, cfg.Command, root, func(ctx context.Context) (*Client, error) {
			return m.dial(ctx, cfg, root)
		}, m.out, m.log)
		m.sessions[key] = s
	}
	m.byPath[path] = s
	return s, created
}

func (m *Manager) session(path string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byPath[path]
}

// Open starts tracking a document, starting its server if needed.
func (m *Manager) Open(path, lang string, version uint64, text editor.Rope) {
	if s := m.sessionFor(lang, path); s != nil {
		s.Open(path, lang, version, text)
	}
}

// NeedsSync reports whether the server is behind version for path.
func (m *Manager) NeedsSync(path string, version uint64) bool {
	if s := m.session(path); s != nil {
		return s.NeedsSync(path, version)
	}
	return false
}

// Change forwards a document change.
func (m *Manager) Change(path string, version uint64, deltas []editor.EditDelta, text editor.Rope) {
	if s := m.session(path); s != nil {
		s.Change(path, version, deltas, text)
	}
}

// Save forwards didSave.
func (m *Manager) Save(path string) {
	if s := m.session(path); s != nil {
		s.Save(path)
	}
}

// Close forwards didClose and forgets the document.
func (m *Manager) Close(path string) {
	m.mu.Lock()
	s := m.byPath[path]
	delete(m.byPath, path)
	m.mu.Unlock()
	if s != nil {
		s.Close(path)
	}
}

// Request routes req to the session of its document.
func (m *Manager) Request(req Request) {
	if s := m.session(req.Path); s != nil {
		s.Request(req)
	}
}

// Restart restarts the session serving path.
func (m *Manager) Restart(path string) {
	if s := m.session(path); s != nil {
		s.Restart()
	}
}

// Sessions returns a snapshot of running sessions.
func (m *Manager) Sessions() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// Shutdown stops every session and aggregates their errors.
func (m *Manager) Shutdown(ctx context.Context) error {
	var err error
	for _, s := range m.Sessions() {
		err = multierr.Append(err, s.Shutdown(ctx))
	}
	return err
}
