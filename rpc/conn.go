package rpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	json "github.com/goccy/go-json"
)

// ErrClosed is returned for calls on a closed connection and delivered to
// requests still pending when the connection ends.
var ErrClosed = errors.New("rpc: connection closed")

// Result is the outcome of a call.
type Result struct {
	Value json.RawMessage
	Err   error
}

// Handler receives incoming requests and notifications. Requests must be
// answered with Conn.Reply.
type Handler func(msg *Message)

// Conn is a JSON-RPC peer over a byte stream. Requests use monotonically
// increasing int32 ids.
type Conn struct {
	r   *Reader
	w   io.Writer
	c   io.Closer
	log *slog.Logger

	writeMu sync.Mutex
	mu      sync.Mutex
	pending map[int64]chan Result
	handler Handler
	nextID  atomic.Int32
	closed  atomic.Bool
	once    sync.Once
	err     error
	done    chan struct{}
}

// NewConn wraps rw. Call Run to start reading.
func NewConn(r io.Reader, w io.Writer, c io.Closer, log *slog.Logger) *Conn {
	if log == nil {
		log = slog.Default()
	}
	return &Conn{
		r:       NewReader(r, MaxMessageSize),
		w:       w,
		c:       c,
		log:     log,
		pending: make(map[int64]chan Result),
		done:    make(chan struct{}),
	}
}

// SetHandler installs the callback for incoming requests and notifications.
func (c *Conn) SetHandler(h Handler) {
	c.mu.Lock()
	c.handler = h
	c.mu.Unlock()
}

// Run reads until the stream ends or fails. Oversized messages are logged
// and skipped. The returned error is also reported by Err.
func (c *Conn) Run() error {
	defer c.finish()
	for {
		body, err := c.r.Read()
		if errors.Is(err, ErrMessageTooLarge) {
			c.log.Warn("dropped oversized message", "err", err)
			continue
		}
		if err != nil {
			c.setErr(err)
			return err
		}
		msg, err := Decode(body)
		if err != nil {
			c.setErr(err)
			return err
		}
		c.dispatch(msg)
	}
}

func (c *Conn) dispatch(msg *Message) {
	if msg.IsResponse() {
		id, ok := msg.IntID()
		if !ok {
			c.log.Debug("response with non-numeric id", "id", string(msg.ID))
			return
		}
		c.mu.Lock()
		ch, found := c.pending[id]
		delete(c.pending, id)
		c.mu.Unlock()
		if !found {
			return
		}
		if msg.Error != nil {
			ch <- Result{Err: msg.Error}
		} else {
			ch <- Result{Value: msg.Result}
		}
		return
	}
	c.mu.Lock()
	h := c.handler
	c.mu.Unlock()
	if h != nil {
		h(msg)
		return
	}
	if msg.IsRequest() {
		_ = c.Reply(msg.ID, nil, &Error{Code: CodeMethodNotFound, Message: "method not found: " + msg.Method})
	}
}

func (c *Conn) setErr(err error) {
	c.mu.Lock()
	if c.err == nil {
		c.err = err
	}
	c.mu.Unlock()
}

func (c *Conn) finish() {
	c.closed.Store(true)
	c.mu.Lock()
	pending := c.pending
	c.pending = map[int64]chan Result{}
	c.mu.Unlock()
	for _, ch := range pending {
		ch <- Result{Err: ErrClosed}
	}
	close(c.done)
}

// Done is closed once Run returns.
func (c *Conn) Done() <-chan struct{} { return c.done }

// Err returns the error that ended Run, if any.
func (c *Conn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Conn) send(m *Message) error {
	if c.closed.Load() {
		return ErrClosed
	}
	body, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	if len(body) > MaxMessageSize {
		return fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, len(body))
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := Write(c.w, body); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// Go sends a request and returns its id and a channel that receives exactly
// one Result.
func (c *Conn) Go(method string, params any) (int64, <-chan Result, error) {
	id := int64(c.nextID.Add(1))
	req, err := NewRequest(id, method, params)
	if err != nil {
		return 0, nil, err
	}
	ch := make(chan Result, 1)
	c.mu.Lock()
	if c.closed.Load() {
		c.mu.Unlock()
		return 0, nil, ErrClosed
	}
	c.pending[id] = ch
	c.mu.Unlock()
	if err := c.send(req); err != nil {
		c.forget(id)
		return 0, nil, err
	}
	return id, ch, nil
}

func (c *Conn) forget(id int64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// Call sends a request and waits for its response.
func (c *Conn) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	id, ch, err := c.Go(method, params)
	if err != nil {
		return nil, err
	}
	select {
	case r := <-ch:
		return r.Value, r.Err
	case <-ctx.Done():
		c.forget(id)
		return nil, ctx.Err()
	}
}

// Notify sends a notification.
func (c *Conn) Notify(method string, params any) error {
	m, err := NewNotification(method, params)
	if err != nil {
		return err
	}
	return c.send(m)
}

// Reply answers an incoming request.
func (c *Conn) Reply(id json.RawMessage, result any, rerr *Error) error {
	m, err := NewResponse(id, result, rerr)
	if err != nil {
		return err
	}
	return c.send(m)
}

// Close closes the underlying stream. Pending calls fail with ErrClosed
// once Run observes the end of input.
func (c *Conn) Close() error {
	var err error
	c.once.Do(func() {
		c.closed.Store(true)
		if c.c != nil {
			err = c.c.Close()
		}
	})
	return err
}
