package lsp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/zcode/editor"
	"github.com/odvcencio/zcode/rpc"
)

type closers []io.Closer

func (cs closers) Close() error {
	var first error
	for _, c := range cs {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// fakeServer is an in-memory language server. Requests other than
// initialize and shutdown go to onRequest, which runs on the server's read
// loop and must not block.
type fakeServer struct {
	t         *testing.T
	caps      string
	onRequest func(srv *rpc.Conn, msg *rpc.Message)

	mu    sync.Mutex
	conns []*rpc.Conn
	notes chan *rpc.Message
}

func newFakeServer(t *testing.T, caps string) *fakeServer {
	return &fakeServer{t: t, caps: caps, notes: make(chan *rpc.Message, 256)}
}

func (f *fakeServer) dial(ctx context.Context) (*Client, error) {
	cr, sw := io.Pipe()
	sr, cw := io.Pipe()
	srv := rpc.NewConn(sr, sw, closers{sr, sw}, nil)
	srv.SetHandler(func(msg *rpc.Message) { f.handle(srv, msg) })
	go srv.Run()
	f.mu.Lock()
	f.conns = append(f.conns, srv)
	f.mu.Unlock()
	f.t.Cleanup(func() { _ = srv.Close() })
	return NewClientConn("fake", rpc.NewConn(cr, cw, closers{cr, cw}, nil), nil), nil
}

func (f *fakeServer) handle(srv *rpc.Conn, msg *rpc.Message) {
	switch {
	case msg.Method == "initialize":
		_ = srv.Reply(msg.ID, json.RawMessage(`{"capabilities":`+f.caps+`}`), nil)
	case msg.Method == "shutdown":
		_ = srv.Reply(msg.ID, nil, nil)
	case msg.IsNotification():
		if msg.Method != "initialized" {
			f.notes <- msg
		}
	case f.onRequest != nil:
		f.onRequest(srv, msg)
	default:
		_ = srv.Reply(msg.ID, nil, nil)
	}
}

// kill drops the newest server connection.
func (f *fakeServer) kill() {
	f.mu.Lock()
	srv := f.conns[len(f.conns)-1]
	f.mu.Unlock()
	_ = srv.Close()
}

func (f *fakeServer) nextNote(t *testing.T) *rpc.Message {
	t.Helper()
	select {
	case m := <-f.notes:
		return m
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for notification")
		return nil
	}
}

func waitEvent[T Event](t *testing.T, out <-chan Event, match func(T) bool) T {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-out:
			if e, ok := ev.(T); ok && (match == nil || match(e)) {
				return e
			}
		case <-deadline:
			var zero T
			t.Fatalf("timed out waiting for %T", zero)
			return zero
		}
	}
}

func isState(st State) func(StateEvent) bool {
	return func(e StateEvent) bool { return e.State == st }
}

func newTestSession(t *testing.T, dial Dialer) (*Session, chan Event) {
	t.Helper()
	out := make(chan Event, 256)
	s := NewSession(context.Background(), "fake", t.TempDir(), dial, out, nil)
	s.backoff = func(int) time.Duration { return time.Millisecond }
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})
	return s, out
}

func TestStaleCompletionIsDropped(t *testing.T) {
	srv := newFakeServer(t, `{"completionProvider":{"triggerCharacters":["."]},"textDocumentSync":1}`)
	gates := []chan struct{}{make(chan struct{}), make(chan struct{})}
	arrived := make(chan int64, 2)
	n := 0
	srv.onRequest = func(conn *rpc.Conn, msg *rpc.Message) {
		if msg.Method != "textDocument/completion" {
			_ = conn.Reply(msg.ID, nil, nil)
			return
		}
		gate, label := gates[n], []string{"A", "B"}[n]
		n++
		id, _ := msg.IntID()
		arrived <- id
		go func() {
			<-gate
			_ = conn.Reply(msg.ID, []CompletionItem{{Label: label}}, nil)
		}()
	}
	s, out := newTestSession(t, srv.dial)
	s.Start()
	waitEvent(t, out, isState(StateReady))

	text := editor.NewRope("fmt.")
	req := Request{Kind: KindCompletion, Path: "/w/a.go", Version: 1, Text: text, Point: text.Point(4)}
	s.Request(req)
	req.Version = 2
	s.Request(req)
	<-arrived
	second := <-arrived
	require.Equal(t, second, s.Latest(KindCompletion))

	close(gates[0])
	close(gates[1])
	ev := waitEvent[CompletionEvent](t, out, nil)
	require.Equal(t, uint64(2), ev.Version)
	require.Len(t, ev.Items, 1)
	require.Equal(t, "B", ev.Items[0].Label)

	select {
	case extra := <-out:
		if _, ok := extra.(CompletionEvent); ok {
			t.Fatalf("stale completion delivered: %+v", extra)
		}
	case <-time.After(100 * time.Millisecond):
	}
	require.Eventually(t, func() bool { return s.Pending() == 0 }, time.Second, 5*time.Millisecond)
}

func TestQueuedRequestsFlushOnReady(t *testing.T) {
	srv := newFakeServer(t, `{"hoverProvider":true,"definitionProvider":true,"textDocumentSync":1}`)
	methods := make(chan string, 8)
	srv.onRequest = func(conn *rpc.Conn, msg *rpc.Message) {
		methods <- msg.Method
		_ = conn.Reply(msg.ID, nil, nil)
	}
	release := make(chan struct{})
	dial := func(ctx context.Context) (*Client, error) {
		<-release
		return srv.dial(ctx)
	}
	s, out := newTestSession(t, dial)
	s.Start()
	waitEvent(t, out, isState(StateStarting))

	text := editor.NewRope("package a")
	s.Open("/w/a.go", "go", 1, text)
	s.Request(Request{Kind: KindHover, Path: "/w/a.go", Version: 1, Text: text})
	s.Request(Request{Kind: KindHover, Path: "/w/a.go", Version: 1, Text: text, Point: text.Point(3)})
	s.Request(Request{Kind: KindDefinition, Path: "/w/a.go", Version: 1, Text: text})
	require.Equal(t, 2, s.Queued())

	close(release)
	waitEvent(t, out, isState(StateReady))
	require.Equal(t, "textDocument/didOpen", srv.nextNote(t).Method)
	require.Equal(t, "textDocument/hover", <-methods)
	require.Equal(t, "textDocument/definition", <-methods)
	require.Equal(t, 0, s.Queued())
}

func TestQueueDropsOldest(t *testing.T) {
	dial := func(ctx context.Context) (*Client, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	s, _ := newTestSession(t, dial)
	s.Start()
	for i := 0; i < QueueLimit+5; i++ {
		s.Request(Request{Kind: KindReferences, Path: fmt.Sprintf("/w/%d.go", i)})
	}
	require.Equal(t, QueueLimit, s.Queued())
	s.mu.Lock()
	first := s.queue[0].Path
	s.mu.Unlock()
	require.Equal(t, "/w/5.go", first)
}

func TestStartFailuresGiveUpAfterMaxAttempts(t *testing.T) {
	var mu sync.Mutex
	dials := 0
	dial := func(ctx context.Context) (*Client, error) {
		mu.Lock()
		dials++
		mu.Unlock()
		return nil, fmt.Errorf("start gopls: %w", exec.ErrNotFound)
	}
	s, out := newTestSession(t, dial)
	s.Start()
	last := waitEvent(t, out, func(e StateEvent) bool { return e.State == StateFailed && e.Attempt == MaxAttempts })
	require.Contains(t, last.Err, "executable file not found")

	time.Sleep(20 * time.Millisecond)
	require.Equal(t, StateFailed, s.State())
	mu.Lock()
	require.Equal(t, MaxAttempts, dials)
	mu.Unlock()

	s.Request(Request{Kind: KindHover})
	require.Equal(t, 0, s.Queued())
}

func TestTransportLossRestartsAndReopens(t *testing.T) {
	srv := newFakeServer(t, `{"textDocumentSync":1}`)
	s, out := newTestSession(t, srv.dial)
	s.Start()
	waitEvent(t, out, isState(StateReady))
	s.Open("/w/a.go", "go", 3, editor.NewRope("x"))
	require.Equal(t, "textDocument/didOpen", srv.nextNote(t).Method)

	srv.kill()
	failed := waitEvent(t, out, isState(StateFailed))
	require.Equal(t, 1, failed.Attempt)
	waitEvent(t, out, isState(StateReady))

	reopen := srv.nextNote(t)
	require.Equal(t, "textDocument/didOpen", reopen.Method)
	var p struct {
		TextDocument TextDocumentItem `json:"textDocument"`
	}
	require.NoError(t, json.Unmarshal(reopen.Params, &p))
	require.Equal(t, 3, p.TextDocument.Version)
	require.True(t, s.NeedsSync("/w/a.go", 4))
}

func TestChangeIncrementalOrFull(t *testing.T) {
	srv := newFakeServer(t, `{"positionEncoding":"utf-8","textDocumentSync":2}`)
	s, out := newTestSession(t, srv.dial)
	s.Start()
	waitEvent(t, out, isState(StateReady))

	before := editor.NewRope("héllo")
	s.Open("/w/a.go", "go", 1, before)
	srv.nextNote(t)

	after := editor.NewRope("héXllo")
	delta := editor.EditDelta{Start: before.Point(2), OldEnd: before.Point(2), NewEnd: after.Point(3), Text: "X"}
	s.Change("/w/a.go", 2, []editor.EditDelta{delta}, after)

	var p struct {
		TextDocument   VersionedTextDocumentIdentifier `json:"textDocument"`
		ContentChanges []ContentChange                 `json:"contentChanges"`
	}
	note := srv.nextNote(t)
	require.Equal(t, "textDocument/didChange", note.Method)
	require.NoError(t, json.Unmarshal(note.Params, &p))
	require.Equal(t, 2, p.TextDocument.Version)
	require.Len(t, p.ContentChanges, 1)
	require.NotNil(t, p.ContentChanges[0].Range)
	require.Equal(t, 3, p.ContentChanges[0].Range.Start.Character)

	// A skipped version cannot be bridged by deltas.
	s.Change("/w/a.go", 4, []editor.EditDelta{delta}, editor.NewRope("full"))
	p.ContentChanges = nil
	require.NoError(t, json.Unmarshal(srv.nextNote(t).Params, &p))
	require.Len(t, p.ContentChanges, 1)
	require.Nil(t, p.ContentChanges[0].Range)
	require.Equal(t, "full", p.ContentChanges[0].Text)

	// Older versions are ignored.
	s.Change("/w/a.go", 3, nil, editor.NewRope("old"))
	select {
	case m := <-srv.notes:
		t.Fatalf("unexpected %s", m.Method)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestServerRequestsAnswered(t *testing.T) {
	srv := newFakeServer(t, `{}`)
	s, out := newTestSession(t, srv.dial)
	s.Start()
	waitEvent(t, out, isState(StateReady))

	srv.mu.Lock()
	conn := srv.conns[0]
	srv.mu.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := conn.Call(ctx, "workspace/configuration", map[string]any{"items": []any{map[string]any{}, map[string]any{}}})
	require.NoError(t, err)
	require.JSONEq(t, `[null,null]`, string(res))

	res, err = conn.Call(ctx, "workspace/applyEdit", map[string]any{"label": "fix", "edit": map[string]any{"changes": map[string]any{}}})
	require.NoError(t, err)
	require.JSONEq(t, `{"applied":true}`, string(res))
	ev := waitEvent[ApplyEditEvent](t, out, nil)
	require.Equal(t, "fix", ev.Label)

	_, err = conn.Call(ctx, "custom/thing", nil)
	var rerr *rpc.Error
	require.True(t, errors.As(err, &rerr))
	require.Equal(t, rpc.CodeMethodNotFound, rerr.Code)

	require.NoError(t, conn.Notify("textDocument/publishDiagnostics", map[string]any{
		"uri":         FileURI("/w/a.go"),
		"diagnostics": []map[string]any{{"range": map[string]any{}, "message": "boom", "severity": 1}},
	}))
	diag := waitEvent[DiagnosticsEvent](t, out, nil)
	require.Equal(t, "/w/a.go", diag.Path)
	require.Equal(t, "boom", diag.Diagnostics[0].Message)
}
