package lsp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/multierr"

	"github.com/odvcencio/zcode/rpc"
)

// ErrClientClosed is returned for operations on a closed client.
var ErrClientClosed = errors.New("lsp: client closed")

// TransportError marks failures of the server process or its pipes, as
// opposed to errors the server answered with.
type TransportError struct {
	Server string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("lsp %s: transport: %v", e.Server, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransportError reports whether err means the connection is unusable.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te) || errors.Is(err, ErrClientClosed) || errors.Is(err, rpc.ErrClosed)
}

// Client manages communication with one LSP server process.
type Client struct {
	name   string
	cmd    *exec.Cmd
	conn   *rpc.Conn
	log    *slog.Logger
	closed atomic.Bool
}

// NewClient starts the server process and its read loop.
func NewClient(ctx context.Context, cfg ServerConfig, dir string, log *slog.Logger) (*Client, error) {
	if log == nil {
		log = slog.Default()
	}
	cmd := exec.CommandContext(ctx, cfg.Command, cfg.Args...)
	cmd.Dir = dir
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		_ = stdin.Close()
		return nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		_ = stdin.Close()
		_ = stdout.Close()
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		_ = stdout.Close()
		return nil, &TransportError{Server: cfg.Command, Err: err}
	}
	log = log.With("server", cfg.Command)
	go drainStderr(stderr, log)

	c := newClient(cfg.Command, rpc.NewConn(stdout, stdin, stdin, log), log)
	c.cmd = cmd
	return c, nil
}

// NewClientConn wraps an existing connection, e.g. an in-memory pipe.
func NewClientConn(name string, conn *rpc.Conn, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return newClient(name, conn, log)
}

func newClient(name string, conn *rpc.Conn, log *slog.Logger) *Client {
	c := &Client{name: name, conn: conn, log: log}
	go func() {
		if err := conn.Run(); err != nil && !errors.Is(err, io.EOF) {
			log.Debug("read loop ended", "err", err)
		}
	}()
	return c
}

func drainStderr(r io.Reader, log *slog.Logger) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64<<10), 1<<20)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			log.Debug("stderr", "line", line)
		}
	}
}

// Name is the server command.
func (c *Client) Name() string { return c.name }

// Done is closed when the connection ends.
func (c *Client) Done() <-chan struct{} { return c.conn.Done() }

// Err returns why the connection ended.
func (c *Client) Err() error { return c.conn.Err() }

// SetHandler registers the callback for server requests and notifications.
func (c *Client) SetHandler(h rpc.Handler) { c.conn.SetHandler(h) }

// Reply answers a server request.
func (c *Client) Reply(id json.RawMessage, result any, rerr *rpc.Error) error {
	return c.wrap(c.conn.Reply(id, result, rerr))
}

func (c *Client) wrap(err error) error {
	if err == nil {
		return nil
	}
	var rerr *rpc.Error
	if errors.As(err, &rerr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &TransportError{Server: c.name, Err: err}
}

// Go sends a request without waiting.
func (c *Client) Go(method string, params any) (int64, <-chan rpc.Result, error) {
	if c.closed.Load() {
		return 0, nil, ErrClientClosed
	}
	id, ch, err := c.conn.Go(method, params)
	return id, ch, c.wrap(err)
}

// Call sends a request and waits for the response.
func (c *Client) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}
	res, err := c.conn.Call(ctx, method, params)
	return res, c.wrap(err)
}

// Notify sends a notification (no response expected).
func (c *Client) Notify(method string, params any) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	return c.wrap(c.conn.Notify(method, params))
}

// DidOpen notifies the server that a document is now open in the editor.
func (c *Client) DidOpen(uri, languageID string, version int, text string) error {
	return c.Notify("textDocument/didOpen", map[string]any{
		"textDocument": TextDocumentItem{URI: uri, LanguageID: languageID, Version: version, Text: text},
	})
}

// DidChange notifies the server that a document changed.
func (c *Client) DidChange(uri string, version int, changes []ContentChange) error {
	return c.Notify("textDocument/didChange", map[string]any{
		"textDocument":   VersionedTextDocumentIdentifier{URI: uri, Version: version},
		"contentChanges": changes,
	})
}

// DidSave notifies the server that a document was saved.
func (c *Client) DidSave(uri string, text *string) error {
	p := map[string]any{"textDocument": TextDocumentIdentifier{URI: uri}}
	if text != nil {
		p["text"] = *text
	}
	return c.Notify("textDocument/didSave", p)
}

// DidClose notifies the server that a document is closed.
func (c *Client) DidClose(uri string) error {
	return c.Notify("textDocument/didClose", map[string]any{
		"textDocument": TextDocumentIdentifier{URI: uri},
	})
}

// Initialize performs the initialize handshake and returns the server's
// capabilities.
func (c *Client) Initialize(ctx context.Context, rootURI string) (Capabilities, error) {
	params := map[string]any{
		"processId": os.Getpid(),
		"rootUri":   rootURI,
		"clientInfo": map[string]any{
			"name": "zcode",
		},
		"workspaceFolders": []map[string]any{{"uri": rootURI, "name": rootURI}},
		"capabilities": map[string]any{
			"general": map[string]any{
				"positionEncodings": []string{string(UTF16), string(UTF8), string(UTF32)},
			},
			"workspace": map[string]any{
				"applyEdit":     true,
				"configuration": true,
				"symbol":        map[string]any{},
			},
			"textDocument": map[string]any{
				"synchronization": map[string]any{"didSave": true},
				"completion": map[string]any{
					"completionItem": map[string]any{"snippetSupport": true},
					"contextSupport": true,
				},
				"hover":         map[string]any{"contentFormat": []string{"plaintext", "markdown"}},
				"signatureHelp": map[string]any{"contextSupport": true},
				"definition":    map[string]any{"linkSupport": true},
				"references":    map[string]any{},
				"rename":        map[string]any{},
				"codeAction":    map[string]any{},
				"formatting":    map[string]any{},
				"foldingRange":  map[string]any{"lineFoldingOnly": true},
				"inlayHint":     map[string]any{},
				"documentSymbol": map[string]any{
					"hierarchicalDocumentSymbolSupport": true,
				},
				"semanticTokens": map[string]any{
					"requests":       map[string]any{"full": true},
					"tokenTypes":     semanticTypeNames(),
					"tokenModifiers": []string{"readonly", "declaration", "static", "deprecated"},
					"formats":        []string{"relative"},
				},
				"publishDiagnostics": map[string]any{"versionSupport": true},
			},
		},
	}
	res, err := c.Call(ctx, "initialize", params)
	if err != nil {
		return Capabilities{}, err
	}
	caps, err := ParseCapabilities(res)
	if err != nil {
		return Capabilities{}, fmt.Errorf("parse capabilities: %w", err)
	}
	return caps, c.Notify("initialized", map[string]any{})
}

func semanticTypeNames() []string {
	names := make([]string, 0, len(semanticKinds))
	for name := range semanticKinds {
		names = append(names, name)
	}
	return names
}

// Shutdown runs the shutdown/exit sequence, then closes the client.
func (c *Client) Shutdown(ctx context.Context) error {
	if c == nil || c.closed.Load() {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	var err error
	if _, cerr := c.Call(ctx, "shutdown", nil); cerr != nil && !IsTransportError(cerr) {
		err = multierr.Append(err, cerr)
	}
	_ = c.Notify("exit", nil)
	return multierr.Append(err, c.Close())
}

// Close stops the server process and fails pending requests.
func (c *Client) Close() error {
	if c == nil || !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := c.conn.Close()
	if c.cmd != nil && c.cmd.Process != nil {
		done := make(chan error, 1)
		go func() { done <- c.cmd.Wait() }()
		select {
		case werr := <-done:
			var exitErr *exec.ExitError
			if werr != nil && !errors.As(werr, &exitErr) {
				err = multierr.Append(err, werr)
			}
		case <-time.After(2 * time.Second):
			err = multierr.Append(err, c.cmd.Process.Kill())
		}
	}
	return err
}
