// Package rpc implements the Content-Length framed JSON-RPC 2.0 transport
// shared by language servers and plugins.
package rpc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// MaxMessageSize caps a single framed body.
const MaxMessageSize = 4 << 20

var (
	// ErrMessageTooLarge is returned for bodies above the reader's limit.
	ErrMessageTooLarge = errors.New("rpc: message too large")
	// ErrMissingLength is returned when a header block has no usable
	// Content-Length.
	ErrMissingLength = errors.New("rpc: missing content-length")
)

// Reader decodes framed messages.
type Reader struct {
	r   *bufio.Reader
	max int
}

// NewReader wraps r. A max of zero means MaxMessageSize.
func NewReader(r io.Reader, max int) *Reader {
	if max <= 0 {
		max = MaxMessageSize
	}
	return &Reader{r: bufio.NewReader(r), max: max}
}

// Read returns the next message body. Oversized bodies are skipped so the
// stream stays aligned, and ErrMessageTooLarge is returned.
func (r *Reader) Read() ([]byte, error) {
	length := -1
	for {
		line, err := r.r.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) && line == "" && length < 0 {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("read header: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(name), "content-length") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: %q", ErrMissingLength, value)
		}
		length = n
	}
	if length < 0 {
		return nil, ErrMissingLength
	}
	if length > r.max {
		if _, err := r.r.Discard(length); err != nil {
			return nil, fmt.Errorf("discard body: %w", err)
		}
		return nil, fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, length)
	}
	body := make([]byte, length)
	if _, err := io.ReadFull(r.r, body); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// Write frames body onto w.
func Write(w io.Writer, body []byte) error {
	if _, err := io.WriteString(w, "Content-Length: "+strconv.Itoa(len(body))+"\r\n\r\n"); err != nil {
		return err
	}
	_, err := w.Write(body)
	return err
}
