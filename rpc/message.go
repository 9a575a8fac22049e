package rpc

import (
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
)

// Version is the only supported JSON-RPC version.
const Version = "2.0"

// Standard error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeRequestFailed  = -32803
)

// Message is the union of request, notification and response envelopes.
// ID is kept raw so both numeric and string ids round trip.
type Message struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// IsRequest reports whether m expects a reply.
func (m *Message) IsRequest() bool { return m.Method != "" && len(m.ID) > 0 }

// IsNotification reports whether m is a one-way message.
func (m *Message) IsNotification() bool { return m.Method != "" && len(m.ID) == 0 }

// IsResponse reports whether m answers an earlier request.
func (m *Message) IsResponse() bool { return m.Method == "" && len(m.ID) > 0 }

// IntID returns the numeric id of m.
func (m *Message) IntID() (int64, bool) {
	if len(m.ID) == 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(string(m.ID), 10, 64)
	return n, err == nil
}

// Error is a JSON-RPC error object.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Decode parses one message body.
func Decode(body []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	if m.JSONRPC != Version {
		return nil, fmt.Errorf("decode message: unsupported jsonrpc version %q", m.JSONRPC)
	}
	return &m, nil
}

func marshalParams(params any) (json.RawMessage, error) {
	if params == nil {
		return nil, nil
	}
	if raw, ok := params.(json.RawMessage); ok {
		return raw, nil
	}
	return json.Marshal(params)
}

// NewRequest builds a request with a numeric id.
func NewRequest(id int64, method string, params any) (*Message, error) {
	p, err := marshalParams(params)
	if err != nil {
		return nil, fmt.Errorf("encode %s params: %w", method, err)
	}
	return &Message{JSONRPC: Version, ID: json.RawMessage(strconv.FormatInt(id, 10)), Method: method, Params: p}, nil
}

// NewNotification builds a notification.
func NewNotification(method string, params any) (*Message, error) {
	p, err := marshalParams(params)
	if err != nil {
		return nil, fmt.Errorf("encode %s params: %w", method, err)
	}
	return &Message{JSONRPC: Version, Method: method, Params: p}, nil
}

// NewResponse answers the request identified by id. A non-nil rerr wins
// over result.
func NewResponse(id json.RawMessage, result any, rerr *Error) (*Message, error) {
	m := &Message{JSONRPC: Version, ID: id}
	if rerr != nil {
		m.Error = rerr
		return m, nil
	}
	r, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	m.Result = r
	return m, nil
}
