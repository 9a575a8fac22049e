package lsp

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"

	"github.com/odvcencio/zcode/editor"
	"github.com/odvcencio/zcode/rpc"
)

// State is the lifecycle of a session.
type State int

const (
	StateStarting State = iota
	StateReady
	StateFailed
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

const (
	// QueueLimit bounds requests buffered while a session is not ready.
	QueueLimit = 64
	// MaxAttempts bounds consecutive start attempts.
	MaxAttempts = 7

	backoffBase = 200 * time.Millisecond
	backoffCap  = 5 * time.Second
	initTimeout = 30 * time.Second
)

// Backoff is the delay before start attempt attempt+1, after attempt
// consecutive failures.
func Backoff(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	d := backoffBase
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= backoffCap {
			return backoffCap
		}
	}
	return d
}

// Dialer starts a client for a session.
type Dialer func(ctx context.Context) (*Client, error)

type docState struct {
	lang    string
	version uint64
	text    editor.Rope
	sent    uint64
}

// Session is one language server connection for a (server, root) pair.
// All methods are safe for concurrent use; events are delivered on the
// channel given to NewSession.
type Session struct {
	Server string
	Root   string

	log     *slog.Logger
	dial    Dialer
	out     chan<- Event
	ctx     context.Context
	cancel  context.CancelFunc
	backoff func(int) time.Duration

	mu      sync.Mutex
	state   State
	attempt int
	client  *Client
	caps    Capabilities
	queue   []Request
	docs    map[string]*docState
	pending map[int64]RequestKind
	hinted  bool
	timer   *time.Timer
	gen     int

	enc    atomic.Value
	latest [numKinds]atomic.Int64
}

// NewSession creates a stopped session. Call Start to connect.
func NewSession(ctx context.Context, server, root string, dial Dialer, out chan<- Event, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Session{
		Server:  server,
		Root:    root,
		log:     log.With("component", "lsp", "server", server, "root", root),
		dial:    dial,
		out:     out,
		ctx:     ctx,
		cancel:  cancel,
		backoff: Backoff,
		state:   StateStopped,
		docs:    make(map[string]*docState),
		pending: make(map[int64]RequestKind),
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Capabilities returns the capabilities of the connected server.
func (s *Session) Capabilities() Capabilities {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.caps
}

func (s *Session) encoding() Encoding {
	if e, ok := s.enc.Load().(Encoding); ok {
		return e
	}
	return UTF16
}

// Latest returns the id of the newest request of kind, or 0.
func (s *Session) Latest(kind RequestKind) int64 { return s.latest[kind].Load() }

// Pending returns the number of requests awaiting a response.
func (s *Session) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Start connects in the background.
func (s *Session) Start() {
	s.mu.Lock()
	if s.state == StateStarting || s.state == StateReady || s.ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	s.state = StateStarting
	s.gen++
	gen := s.gen
	s.mu.Unlock()
	s.emit(StateEvent{Server: s.Server, Root: s.Root, State: StateStarting}, true)
	go s.connect(gen)
}

// Restart drops the current connection and starts over with a fresh
// attempt budget.
func (s *Session) Restart() {
	s.mu.Lock()
	old := s.client
	s.client = nil
	s.attempt = 0
	s.state = StateStopped
	if s.timer != nil {
		s.timer.Stop()
	}
	s.resetDocsLocked()
	s.mu.Unlock()
	if old != nil {
		_ = old.Close()
	}
	s.Start()
}

func (s *Session) connect(gen int) {
	client, err := s.dial(s.ctx)
	if err != nil {
		s.failStart(gen, err)
		return
	}
	ictx, cancel := context.WithTimeout(s.ctx, initTimeout)
	client.SetHandler(s.handler(client))
	caps, err := client.Initialize(ictx, FileURI(s.Root))
	cancel()
	if err != nil {
		_ = client.Close()
		s.failStart(gen, err)
		return
	}

	s.mu.Lock()
	if s.state != StateStarting || s.gen != gen || s.ctx.Err() != nil {
		s.mu.Unlock()
		_ = client.Close()
		return
	}
	s.client, s.caps, s.state, s.attempt = client, caps, StateReady, 0
	s.enc.Store(caps.Encoding)
	for path, d := range s.docs {
		s.openLocked(path, d)
	}
	queued := s.queue
	s.queue = nil
	for _, req := range queued {
		s.sendLocked(req)
	}
	s.mu.Unlock()

	s.log.Info("language server ready", "encoding", caps.Encoding)
	s.emit(StateEvent{Server: s.Server, Root: s.Root, State: StateReady, Caps: caps}, true)
	go func() {
		<-client.Done()
		s.fail(client, &TransportError{Server: s.Server, Err: connErr(client)})
	}()
}

func connErr(c *Client) error {
	if err := c.Err(); err != nil {
		return err
	}
	return rpc.ErrClosed
}

func (s *Session) failStart(gen int, err error) {
	s.mu.Lock()
	if s.gen != gen || s.state != StateStarting {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.fail(nil, err)
}

// fail moves the session to Failed and schedules a restart. client is the
// connection that broke, or nil for a failed start.
func (s *Session) fail(client *Client, err error) {
	s.mu.Lock()
	if client != nil && s.client != client {
		s.mu.Unlock()
		return
	}
	if s.ctx.Err() != nil {
		s.state = StateStopped
		s.mu.Unlock()
		return
	}
	s.client = nil
	s.state = StateFailed
	s.attempt++
	attempt := s.attempt
	clear(s.pending)
	s.resetDocsLocked()
	hint := !s.hinted && errors.Is(err, exec.ErrNotFound)
	if hint {
		s.hinted = true
	}
	if attempt < MaxAttempts {
		s.timer = time.AfterFunc(s.backoff(attempt), s.retry)
	} else {
		s.queue = nil
	}
	s.mu.Unlock()

	if hint {
		s.log.Warn(InstallHint(s.Server))
	}
	s.log.Warn("language server failed", "attempt", attempt, "err", err)
	if client != nil {
		_ = client.Close()
	}
	s.emit(StateEvent{Server: s.Server, Root: s.Root, State: StateFailed, Attempt: attempt, Err: err.Error()}, true)
}

func (s *Session) retry() {
	s.mu.Lock()
	if s.state != StateFailed || s.ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	s.state = StateStarting
	s.gen++
	gen := s.gen
	s.mu.Unlock()
	s.emit(StateEvent{Server: s.Server, Root: s.Root, State: StateStarting}, true)
	s.connect(gen)
}

func (s *Session) resetDocsLocked() {
	for _, d := range s.docs {
		d.sent = 0
	}
}

// Shutdown stops the session and its server.
func (s *Session) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	client := s.client
	s.client = nil
	s.state = StateStopped
	s.queue = nil
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()
	var err error
	if client != nil {
		err = client.Shutdown(ctx)
	}
	s.cancel()
	return err
}

// emit delivers ev. Important events wait for room; others are dropped
// when the channel is full.
func (s *Session) emit(ev Event, important bool) {
	if s.out == nil {
		return
	}
	if important {
		select {
		case s.out <- ev:
		case <-s.ctx.Done():
		}
		return
	}
	select {
	case s.out <- ev:
	default:
		s.log.Debug("event dropped, channel full")
	}
}

// Open registers a document and sends didOpen once the server is ready.
func (s *Session) Open(path, lang string, version uint64, text editor.Rope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := &docState{lang: lang, version: version, text: text}
	s.docs[path] = d
	if s.state == StateReady {
		s.openLocked(path, d)
	}
}

func (s *Session) openLocked(path string, d *docState) {
	if err := s.client.DidOpen(FileURI(path), d.lang, int(d.version), d.text.String()); err != nil {
		s.log.Debug("didOpen failed", "path", path, "err", err)
		return
	}
	d.sent = d.version
}

// NeedsSync reports whether version is ahead of what the server has.
func (s *Session) NeedsSync(path string, version uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.docs[path]
	return d != nil && d.sent != 0 && version > d.sent
}

// Change records a new document version. deltas take the text from
// version-1 to version; when they do not bridge the last sent version or
// the server cannot take ranged edits, the full text is sent.
func (s *Session) Change(path string, version uint64, deltas []editor.EditDelta, text editor.Rope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.docs[path]
	if d == nil || version <= d.version {
		return
	}
	d.version, d.text = version, text
	if s.state != StateReady || d.sent == 0 || s.caps.Sync == SyncNone {
		return
	}
	var changes []ContentChange
	if s.caps.Incremental() && d.sent+1 == version && len(deltas) > 0 {
		enc := s.caps.Encoding
		changes = make([]ContentChange, 0, len(deltas))
		for _, dl := range deltas {
			rng := Range{Start: enc.PositionOf(dl.Start), End: enc.PositionOf(dl.OldEnd)}
			changes = append(changes, ContentChange{Range: &rng, Text: dl.Text})
		}
	} else {
		changes = []ContentChange{{Text: text.String()}}
	}
	if err := s.client.DidChange(FileURI(path), int(version), changes); err != nil {
		s.log.Debug("didChange failed", "path", path, "err", err)
		return
	}
	d.sent = version
}

// Save sends didSave for an open document.
func (s *Session) Save(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.docs[path]
	if d == nil || d.sent == 0 || s.state != StateReady {
		return
	}
	var text *string
	if s.caps.SaveIncludeText {
		t := d.text.String()
		text = &t
	}
	_ = s.client.DidSave(FileURI(path), text)
}

// Close forgets a document and sends didClose.
func (s *Session) Close(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.docs[path]
	delete(s.docs, path)
	if d == nil || d.sent == 0 || s.state != StateReady {
		return
	}
	_ = s.client.DidClose(FileURI(path))
}

// Documents returns the number of tracked documents.
func (s *Session) Documents() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

// Request sends req, or queues it while the session is starting or
// failed. A queued request replaces an older queued one of the same
// latest-only kind; a full queue drops its oldest entry.
func (s *Session) Request(req Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateReady:
		s.sendLocked(req)
		return
	case StateStopped:
		return
	}
	if s.state == StateFailed && s.attempt >= MaxAttempts {
		return
	}
	if req.Kind.LatestOnly() {
		kept := s.queue[:0]
		for _, q := range s.queue {
			if q.Kind != req.Kind {
				kept = append(kept, q)
			}
		}
		s.queue = kept
	}
	if len(s.queue) >= QueueLimit {
		s.log.Debug("request queue full, dropping oldest", "kind", s.queue[0].Kind)
		s.queue = s.queue[1:]
	}
	s.queue = append(s.queue, req)
}

// Queued returns the number of buffered requests.
func (s *Session) Queued() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

func (s *Session) sendLocked(req Request) {
	if !s.caps.Supports(req.Kind) {
		return
	}
	caps, client := s.caps, s.client
	id, ch, err := client.Go(req.method(), req.params(caps.Encoding))
	if err != nil {
		s.log.Debug("request failed", "kind", req.Kind, "err", err)
		return
	}
	s.pending[id] = req.Kind
	if req.Kind.LatestOnly() {
		s.latest[req.Kind].Store(id)
	}
	go s.await(req, id, ch, caps)
}

func (s *Session) await(req Request, id int64, ch <-chan rpc.Result, caps Capabilities) {
	var res rpc.Result
	select {
	case res = <-ch:
	case <-s.ctx.Done():
		return
	}
	s.mu.Lock()
	delete(s.pending, id)
	s.mu.Unlock()
	if req.Kind.LatestOnly() && s.latest[req.Kind].Load() != id {
		s.log.Debug("stale response dropped", "kind", req.Kind, "id", id)
		return
	}
	base := Response{Kind: req.Kind, Path: req.Path, Version: req.Version, Encoding: caps.Encoding}
	if res.Err != nil {
		if !IsTransportError(res.Err) && !errors.Is(res.Err, rpc.ErrClosed) {
			s.emit(RequestFailedEvent{Response: base, Err: res.Err.Error()}, false)
		}
		return
	}
	ev, err := req.decode(res.Value, caps)
	if err != nil {
		s.log.Debug("decode response", "kind", req.Kind, "err", err)
		return
	}
	s.emit(ev, importantKind(req.Kind))
}

// importantKind marks responses the user explicitly asked for.
func importantKind(k RequestKind) bool {
	switch k {
	case KindFormatting, KindRename, KindDefinition, KindReferences, KindCodeAction,
		KindDocumentSymbols, KindWorkspaceSymbols:
		return true
	}
	return false
}

// handler answers server-initiated traffic.
func (s *Session) handler(client *Client) rpc.Handler {
	return func(msg *rpc.Message) {
		switch msg.Method {
		case "textDocument/publishDiagnostics":
			var p PublishDiagnosticsParams
			if err := json.Unmarshal(msg.Params, &p); err != nil {
				s.log.Debug("bad diagnostics", "err", err)
				return
			}
			s.emit(DiagnosticsEvent{Path: PathFromURI(p.URI), Version: p.Version, Encoding: s.encoding(), Diagnostics: p.Diagnostics}, true)
		case "window/logMessage", "window/showMessage":
			var p struct {
				Type    int    `json:"type"`
				Message string `json:"message"`
			}
			if json.Unmarshal(msg.Params, &p) == nil {
				lvl := slog.LevelDebug
				if p.Type == 1 {
					lvl = slog.LevelWarn
				}
				s.log.Log(s.ctx, lvl, p.Message)
			}
		case "workspace/configuration":
			var p struct {
				Items []json.RawMessage `json:"items"`
			}
			_ = json.Unmarshal(msg.Params, &p)
			_ = client.Reply(msg.ID, make([]any, len(p.Items)), nil)
		case "workspace/workspaceFolders":
			_ = client.Reply(msg.ID, []map[string]string{{"uri": FileURI(s.Root), "name": s.Root}}, nil)
		case "workspace/applyEdit":
			var p struct {
				Label string        `json:"label"`
				Edit  WorkspaceEdit `json:"edit"`
			}
			if err := json.Unmarshal(msg.Params, &p); err != nil {
				_ = client.Reply(msg.ID, nil, &rpc.Error{Code: rpc.CodeInvalidParams, Message: err.Error()})
				return
			}
			s.emit(ApplyEditEvent{Label: p.Label, Encoding: s.encoding(), Edit: p.Edit}, true)
			_ = client.Reply(msg.ID, map[string]bool{"applied": true}, nil)
		case "client/registerCapability", "client/unregisterCapability", "window/workDoneProgress/create":
			_ = client.Reply(msg.ID, nil, nil)
		default:
			if msg.IsRequest() {
				_ = client.Reply(msg.ID, nil, &rpc.Error{Code: rpc.CodeMethodNotFound, Message: "method not found: " + msg.Method})
			}
		}
	}
}
