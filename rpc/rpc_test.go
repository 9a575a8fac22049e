package rpc

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

func TestReaderReadsFramedBodies(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []byte(`{"a":1}`)))
	buf.WriteString("content-length: 2\r\nContent-Type: application/json\r\n\r\n{}")
	r := NewReader(&buf, 0)

	body, err := r.Read()
	require.NoError(t, err)
	require.Equal(t, `{"a":1}`, string(body))
	body, err = r.Read()
	require.NoError(t, err)
	require.Equal(t, "{}", string(body))
	_, err = r.Read()
	require.ErrorIs(t, err, io.EOF)
}

func TestReaderSkipsOversizedBody(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []byte(strings.Repeat("x", 32))))
	require.NoError(t, Write(&buf, []byte("ok")))
	r := NewReader(&buf, 16)
	_, err := r.Read()
	require.ErrorIs(t, err, ErrMessageTooLarge)
	body, err := r.Read()
	require.NoError(t, err)
	require.Equal(t, "ok", string(body))
}

func TestReaderMissingLength(t *testing.T) {
	r := NewReader(strings.NewReader("X-Other: 1\r\n\r\n"), 0)
	_, err := r.Read()
	require.ErrorIs(t, err, ErrMissingLength)
}

func TestMessageKinds(t *testing.T) {
	req, err := NewRequest(5, "m", map[string]int{"x": 1})
	require.NoError(t, err)
	require.True(t, req.IsRequest())
	id, ok := req.IntID()
	require.True(t, ok)
	require.Equal(t, int64(5), id)

	n, err := NewNotification("n", nil)
	require.NoError(t, err)
	require.True(t, n.IsNotification())

	resp, err := NewResponse(req.ID, nil, nil)
	require.NoError(t, err)
	require.True(t, resp.IsResponse())
	require.Equal(t, "null", string(resp.Result))

	_, err = Decode([]byte(`{"jsonrpc":"1.0","method":"x"}`))
	require.Error(t, err)
}

// pipePair connects two Conns through in-memory pipes.
func pipePair(t *testing.T) (*Conn, *Conn) {
	t.Helper()
	ar, bw := io.Pipe()
	br, aw := io.Pipe()
	a := NewConn(ar, aw, multiCloser{ar, aw}, nil)
	b := NewConn(br, bw, multiCloser{br, bw}, nil)
	go a.Run()
	go b.Run()
	t.Cleanup(func() {
		_ = a.Close()
		_ = b.Close()
	})
	return a, b
}

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var first error
	for _, c := range m {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func TestConnCallAndNotify(t *testing.T) {
	client, server := pipePair(t)
	notes := make(chan string, 1)
	server.SetHandler(func(msg *Message) {
		if msg.IsNotification() {
			notes <- msg.Method
			return
		}
		var p struct{ N int }
		_ = json.Unmarshal(msg.Params, &p)
		if msg.Method == "fail" {
			_ = server.Reply(msg.ID, nil, &Error{Code: CodeRequestFailed, Message: "nope"})
			return
		}
		_ = server.Reply(msg.ID, p.N*2, nil)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := client.Call(ctx, "double", map[string]int{"N": 21})
	require.NoError(t, err)
	require.Equal(t, "42", string(res))

	_, err = client.Call(ctx, "fail", nil)
	var rerr *Error
	require.True(t, errors.As(err, &rerr))
	require.Equal(t, CodeRequestFailed, rerr.Code)

	require.NoError(t, client.Notify("ping", nil))
	select {
	case m := <-notes:
		require.Equal(t, "ping", m)
	case <-time.After(5 * time.Second):
		t.Fatal("notification not delivered")
	}
}

func TestConnIDsIncrease(t *testing.T) {
	client, server := pipePair(t)
	server.SetHandler(func(msg *Message) { _ = server.Reply(msg.ID, true, nil) })
	id1, ch1, err := client.Go("a", nil)
	require.NoError(t, err)
	id2, ch2, err := client.Go("b", nil)
	require.NoError(t, err)
	require.Greater(t, id2, id1)
	<-ch1
	<-ch2
}

func TestConnPendingFailOnClose(t *testing.T) {
	client, server := pipePair(t)
	server.SetHandler(func(*Message) {})
	_, ch, err := client.Go("never", nil)
	require.NoError(t, err)
	_ = server.Close()
	select {
	case r := <-ch:
		require.ErrorIs(t, r.Err, ErrClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("pending call not failed")
	}
	<-client.Done()
	_, _, err = client.Go("after", nil)
	require.ErrorIs(t, err, ErrClosed)
}

func TestConnUnhandledRequestGetsMethodNotFound(t *testing.T) {
	client, _ := pipePair(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := client.Call(ctx, "missing", nil)
	var rerr *Error
	require.True(t, errors.As(err, &rerr))
	require.Equal(t, CodeMethodNotFound, rerr.Code)
}
