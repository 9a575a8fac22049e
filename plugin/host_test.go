package plugin

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/zcode/commands"
	"github.com/odvcencio/zcode/rpc"
)

type closers []io.Closer

func (cs closers) Close() error {
	for _, c := range cs {
		_ = c.Close()
	}
	return nil
}

// fakePlugin is the plugin side of an in-memory connection.
type fakePlugin struct {
	conn     *rpc.Conn
	raw      io.Writer
	received chan *rpc.Message
}

func newTestHost(t *testing.T, failInit bool) (*Host, chan Event, chan *fakePlugin) {
	t.Helper()
	out := make(chan Event, 64)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := NewHost(ctx, "/work", out, nil)
	plugins := make(chan *fakePlugin, 4)
	h.dial = func(ctx context.Context, cfg Config, dir string) (*rpc.Conn, error) {
		hr, pw := io.Pipe()
		pr, hw := io.Pipe()
		fp := &fakePlugin{raw: pw, received: make(chan *rpc.Message, 16)}
		fp.conn = rpc.NewConn(pr, pw, closers{pr, pw}, nil)
		fp.conn.SetHandler(func(msg *rpc.Message) {
			if msg.Method == MethodInitialize && failInit {
				_ = fp.conn.Reply(msg.ID, nil, &rpc.Error{Code: rpc.CodeInternalError, Message: "boom"})
				return
			}
			if msg.IsRequest() {
				_ = fp.conn.Reply(msg.ID, struct{}{}, nil)
			}
			fp.received <- msg
		})
		go fp.conn.Run()
		t.Cleanup(func() { _ = fp.conn.Close() })
		plugins <- fp
		return rpc.NewConn(hr, hw, closers{hr, hw}, nil), nil
	}
	t.Cleanup(func() { _ = h.Shutdown() })
	return h, out, plugins
}

func next[T Event](t *testing.T, out <-chan Event) T {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-out:
			if e, ok := ev.(T); ok {
				return e
			}
		case <-deadline:
			var zero T
			t.Fatalf("timed out waiting for %T", zero)
			return zero
		}
	}
}

func TestInitializeRegisterAndInvoke(t *testing.T) {
	h, out, plugins := newTestHost(t, false)
	require.NoError(t, h.Start(Config{ID: "fmt", Command: "fake"}))
	fp := <-plugins

	first := <-fp.received
	require.Equal(t, MethodInitialize, first.Method)
	var ip InitializeParams
	require.NoError(t, json.Unmarshal(first.Params, &ip))
	require.Equal(t, InitializeParams{ProtocolVersion: ProtocolVersion, WorkspaceRoot: "/work"}, ip)
	next[OnlineEvent](t, out)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := fp.conn.Call(ctx, MethodRegister, RegisterParams{
		Commands:    []CommandDecl{{ID: "run", Title: "Run Formatter", Key: "ctrl+alt+f"}},
		StatusItems: []StatusItem{{ID: "state", Text: "idle"}},
	})
	require.NoError(t, err)
	reg := next[RegisteredEvent](t, out)
	require.Equal(t, "fmt", reg.PluginID)
	require.Equal(t, "run", reg.Commands[0].ID)

	busy := "busy"
	require.NoError(t, fp.conn.Notify(MethodUIPatch, PatchParams{Items: []StatusPatch{{ID: "state", Text: &busy}}}))
	patch := next[PatchEvent](t, out)
	require.Equal(t, StatusItem{ID: "state", Text: "busy"}, patch.Patches[0].Apply(StatusItem{ID: "state", Text: "idle"}))

	require.NoError(t, fp.conn.Notify(MethodLog, LogParams{Level: "info", Message: "hello"}))
	require.Equal(t, "hello", next[LogEvent](t, out).Message)

	require.NoError(t, h.Invoke("fmt", "run"))
	inv := <-fp.received
	require.Equal(t, MethodCommandInvoked, inv.Method)
	var ci CommandInvokedParams
	require.NoError(t, json.Unmarshal(inv.Params, &ci))
	require.Equal(t, "run", ci.CommandID)

	st, _, err := h.Status("fmt")
	require.NoError(t, err)
	require.Equal(t, StateOnline, st)
}

func TestBadParamsTakePluginOffline(t *testing.T) {
	h, out, plugins := newTestHost(t, false)
	require.NoError(t, h.Start(Config{ID: "p", Command: "fake"}))
	fp := <-plugins
	next[OnlineEvent](t, out)

	require.NoError(t, fp.conn.Notify(MethodRegister, map[string]any{"commands": "nope"}))
	off := next[OfflineEvent](t, out)
	require.Contains(t, off.Reason, MethodRegister)

	err := h.Invoke("p", "x")
	require.True(t, errors.Is(err, ErrOffline), "err = %v", err)
	st, reason, _ := h.Status("p")
	require.Equal(t, StateOffline, st)
	require.Equal(t, off.Reason, reason)
}

func TestUndecodableFrameTakesPluginOffline(t *testing.T) {
	h, out, plugins := newTestHost(t, false)
	require.NoError(t, h.Start(Config{ID: "p", Command: "fake"}))
	fp := <-plugins
	next[OnlineEvent](t, out)

	require.NoError(t, rpc.Write(fp.raw, []byte(`{"jsonrpc":"1.0","method":"x"}`)))
	off := next[OfflineEvent](t, out)
	require.NotEqual(t, "process exited", off.Reason)
}

func TestFailedInitializeIsOffline(t *testing.T) {
	h, out, _ := newTestHost(t, true)
	require.NoError(t, h.Start(Config{ID: "p", Command: "fake"}))
	off := next[OfflineEvent](t, out)
	require.Contains(t, off.Reason, "initialize")
}

func TestStartValidatesIDs(t *testing.T) {
	h, _, _ := newTestHost(t, false)
	require.Error(t, h.Start(Config{ID: "a:b", Command: "x"}))
	require.Error(t, h.Start(Config{ID: "", Command: "x"}))
	require.True(t, errors.Is(h.Invoke("missing", "x"), ErrUnknownPlugin))
}

func TestPaletteName(t *testing.T) {
	name := PaletteName("fmt", "run")
	require.Equal(t, "plugin:fmt:run", name)
	id, cmd, ok := commands.Command(name).PluginParts()
	require.True(t, ok)
	require.Equal(t, "fmt", id)
	require.Equal(t, "run", cmd)
}

func TestMissingExecutable(t *testing.T) {
	out := make(chan Event, 4)
	h := NewHost(context.Background(), t.TempDir(), out, nil)
	err := h.Start(Config{ID: "gone", Command: "zcode-plugin-that-does-not-exist"})
	require.Error(t, err)
	off := next[OfflineEvent](t, out)
	require.Equal(t, "gone", off.PluginID)
}
