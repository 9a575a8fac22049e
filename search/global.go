// Package search implements workspace-wide and in-buffer text search and the
// state models the workbench renders them from.
package search

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
	"golang.org/x/sync/errgroup"
)

const (
	// windowSize is the streaming read size and the binary sniff length.
	windowSize = 8 << 10
	// maxCarry bounds how much of an unterminated line is held back for
	// previews before the window falls back to carrying len(pattern)-1 bytes.
	maxCarry = 64 << 10
	// progressEvery is the file interval between Progress messages.
	progressEvery = 100
	// regexTimeout bounds a single regexp2 evaluation.
	regexTimeout = 2 * time.Second
)

var errBinary = errors.New("binary file")

// Request starts a workspace search.
type Request struct {
	ID            uint64
	Root          string
	Pattern       string
	CaseSensitive bool
	Regex         bool
}

// Match is one hit inside a file. Line is zero based; Col and Len count
// characters within the line.
type Match struct {
	Line    int
	Col     int
	Len     int
	Preview string
}

// FileMatches lists the hits of one file.
type FileMatches struct {
	Path    string
	Matches []Match
}

// MessageKind tags a Message.
type MessageKind int

const (
	MsgProgress MessageKind = iota
	MsgFileMatches
	MsgComplete
	MsgCancelled
	MsgError
)

func (k MessageKind) String() string {
	switch k {
	case MsgProgress:
		return "progress"
	case MsgFileMatches:
		return "file-matches"
	case MsgComplete:
		return "complete"
	case MsgCancelled:
		return "cancelled"
	case MsgError:
		return "error"
	}
	return "unknown"
}

// Message is streamed from a running search. Every message carries the id of
// the request that produced it.
type Message struct {
	SearchID uint64
	Kind     MessageKind

	FilesSearched    int
	FilesWithMatches int

	File FileMatches

	TotalFiles   int
	TotalMatches int

	Err string
}

// Handle controls a running search.
type Handle struct {
	ID        uint64
	cancelled atomic.Bool
	cancel    context.CancelFunc
	done      chan struct{}
}

// Cancel asks the search to stop. It emits Cancelled once it notices.
func (h *Handle) Cancel() {
	if h == nil {
		return
	}
	h.cancelled.Store(true)
	h.cancel()
}

// Cancelled reports whether Cancel was called.
func (h *Handle) Cancelled() bool { return h.cancelled.Load() }

// Done is closed after the final message was sent.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Driver runs workspace searches on a bounded worker pool.
type Driver struct {
	Workers int
	Log     *slog.Logger
}

// NewDriver returns a driver sized to the machine.
func NewDriver(log *slog.Logger) *Driver {
	if log == nil {
		log = slog.Default()
	}
	return &Driver{Workers: runtime.NumCPU(), Log: log.With("component", "search")}
}

// Start launches req in the background. Messages are sent on out until ctx
// ends; the caller cancels through the returned handle.
func (d *Driver) Start(ctx context.Context, req Request, out chan<- Message) *Handle {
	wctx, cancel := context.WithCancel(ctx)
	h := &Handle{ID: req.ID, cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(h.done)
		defer cancel()
		final := d.run(wctx, h, req, func(m Message) bool {
			select {
			case out <- m:
				return true
			case <-wctx.Done():
				return false
			}
		})
		final.SearchID = req.ID
		select {
		case out <- final:
		case <-ctx.Done():
		}
	}()
	return h
}

// fileMatcher searches one file. A nil slice means no hits.
type fileMatcher interface {
	file(path string) ([]Match, error)
}

func newMatcher(pattern string, caseSensitive, regex bool) (fileMatcher, error) {
	if !regex && (caseSensitive || isASCII(pattern)) {
		needle := []byte(pattern)
		if !caseSensitive {
			needle = bytes.ToLower(needle)
		}
		return &literalMatcher{needle: needle, fold: !caseSensitive, needleChars: utf8.RuneCount(needle)}, nil
	}
	re, err := compile(pattern, caseSensitive, regex)
	if err != nil {
		return nil, err
	}
	return &regexMatcher{re: re}, nil
}

func compile(pattern string, caseSensitive, regex bool, extra ...regexp2.RegexOptions) (*regexp2.Regexp, error) {
	if !regex {
		pattern = regexp2.Escape(pattern)
	}
	opts := regexp2.None
	for _, o := range extra {
		opts |= o
	}
	if !caseSensitive {
		opts |= regexp2.IgnoreCase
	}
	re, err := regexp2.Compile(pattern, opts)
	if err != nil {
		return nil, fmt.Errorf("invalid regex: %w", err)
	}
	re.MatchTimeout = regexTimeout
	return re, nil
}

func (d *Driver) run(ctx context.Context, h *Handle, req Request, send func(Message) bool) Message {
	stopped := func() bool { return h.Cancelled() || ctx.Err() != nil }
	if req.Pattern == "" {
		return Message{Kind: MsgComplete}
	}
	m, err := newMatcher(req.Pattern, req.CaseSensitive, req.Regex)
	if err != nil {
		return Message{Kind: MsgError, Err: err.Error()}
	}
	files, err := walkFiles(req.Root, stopped, nil)
	if err != nil {
		return Message{Kind: MsgError, Err: fmt.Sprintf("walk %s: %v", req.Root, err)}
	}
	if stopped() {
		return Message{Kind: MsgCancelled}
	}

	workers := d.Workers
	if workers <= 0 {
		workers = 1
	}
	chunk := workers * 4
	var searched, withMatches, total int
	results := make([][]Match, chunk)
	for base := 0; base < len(files); base += chunk {
		if stopped() {
			return Message{Kind: MsgCancelled}
		}
		batch := files[base:min(base+chunk, len(files))]
		clear(results)
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for i, path := range batch {
			g.Go(func() error {
				if gctx.Err() != nil || h.Cancelled() {
					return nil
				}
				ms, err := m.file(path)
				if err != nil && !errors.Is(err, errBinary) {
					d.Log.Debug("search skipped file", "path", path, "err", err)
				}
				results[i] = ms
				return nil
			})
		}
		_ = g.Wait()
		if stopped() {
			return Message{Kind: MsgCancelled}
		}
		for i, path := range batch {
			searched++
			if ms := results[i]; len(ms) > 0 {
				withMatches++
				total += len(ms)
				if !send(Message{SearchID: req.ID, Kind: MsgFileMatches, File: FileMatches{Path: path, Matches: ms}}) {
					return Message{Kind: MsgCancelled}
				}
			}
			if searched%progressEvery == 0 {
				if !send(Message{SearchID: req.ID, Kind: MsgProgress, FilesSearched: searched, FilesWithMatches: withMatches}) {
					return Message{Kind: MsgCancelled}
				}
			}
		}
	}
	return Message{Kind: MsgComplete, TotalFiles: searched, TotalMatches: total, FilesSearched: searched, FilesWithMatches: withMatches}
}

// literalMatcher streams a file through a fixed window.
type literalMatcher struct {
	needle      []byte
	needleChars int
	fold        bool
}

func (l *literalMatcher) file(path string) ([]Match, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return l.scan(f)
}

// scan searches complete lines of each window. An unterminated tail line is
// carried into the next window; once it outgrows maxCarry only the last
// len(needle)-1 bytes are kept so matches spanning the cut are still found.
func (l *literalMatcher) scan(r io.Reader) ([]Match, error) {
	n := len(l.needle)
	chunk := make([]byte, windowSize)
	buf := make([]byte, 0, windowSize)
	var scratch []byte
	var out []Match
	line := 0      // line number of buf[0]
	lineChars := 0 // characters of that line already consumed before buf[0]
	first := true
	for {
		k, err := io.ReadFull(r, chunk)
		eof := errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
		if err != nil && !eof {
			return nil, err
		}
		if first {
			if bytes.IndexByte(chunk[:k], 0) >= 0 {
				return nil, errBinary
			}
			first = false
		}
		buf = append(buf, chunk[:k]...)

		end := len(buf)
		partial := false
		if !eof {
			end = bytes.LastIndexByte(buf, '\n') + 1
			if end == 0 {
				if len(buf) <= maxCarry {
					continue
				}
				end, partial = len(buf), true
			}
		}
		hay := buf[:end]
		if l.fold {
			scratch = appendLowerASCII(scratch[:0], hay)
			hay = scratch
		}

		row, start := line, 0
		for start < end {
			stop := bytes.IndexByte(hay[start:end], '\n')
			if stop < 0 {
				stop = end
			} else {
				stop += start
			}
			base := 0
			if row == line {
				base = lineChars
			}
			seg := hay[start:stop]
			for off := 0; ; {
				i := bytes.Index(seg[off:], l.needle)
				if i < 0 {
					break
				}
				p := off + i
				out = append(out, Match{
					Line:    row,
					Col:     base + charCount(seg[:p]),
					Len:     l.needleChars,
					Preview: preview(buf[start:stop]),
				})
				off = p + n
			}
			row++
			start = stop + 1
		}

		if eof {
			return out, nil
		}
		if partial {
			keep := min(n-1, end)
			lineChars += charCount(buf[:end-keep])
			buf = append(buf[:0], buf[end-keep:]...)
			continue
		}
		line += bytes.Count(buf[:end], []byte{'\n'})
		lineChars = 0
		buf = append(buf[:0], buf[end:]...)
	}
}

// regexMatcher evaluates a compiled expression line by line.
type regexMatcher struct {
	re *regexp2.Regexp
}

func (m *regexMatcher) file(path string) ([]Match, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return m.scan(f)
}

func (m *regexMatcher) scan(r io.Reader) ([]Match, error) {
	br := bufio.NewReaderSize(r, windowSize)
	head, err := br.Peek(windowSize)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, err
	}
	if bytes.IndexByte(head, 0) >= 0 {
		return nil, errBinary
	}
	var out []Match
	for row := 0; ; row++ {
		text, err := br.ReadString('\n')
		if len(text) > 0 {
			if !utf8.ValidString(text) {
				return nil, errors.New("invalid utf-8")
			}
			line := strings.TrimRight(text, "\r\n")
			hits, merr := matchRanges(m.re, line)
			if merr != nil {
				return nil, merr
			}
			for _, h := range hits {
				out = append(out, Match{Line: row, Col: h.Start, Len: h.End - h.Start, Preview: preview([]byte(line))})
			}
		}
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// matchRanges returns the non-empty matches of re in s as character ranges.
func matchRanges(re *regexp2.Regexp, s string) ([]TextMatch, error) {
	var out []TextMatch
	m, err := re.FindStringMatch(s)
	for ; m != nil && err == nil; m, err = re.FindNextMatch(m) {
		if m.Length == 0 {
			continue
		}
		out = append(out, TextMatch{Start: m.Index, End: m.Index + m.Length})
	}
	return out, err
}

const maxPreview = 400

func preview(line []byte) string {
	line = bytes.TrimRight(line, "\r\n")
	if len(line) > maxPreview {
		cut := maxPreview
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		line = line[:cut]
	}
	return string(line)
}

// charCount counts rune starts, so a window cut inside a multi-byte rune
// still sums correctly across windows.
func charCount(b []byte) int {
	n := 0
	for _, c := range b {
		if utf8.RuneStart(c) {
			n++
		}
	}
	return n
}

func appendLowerASCII(dst, src []byte) []byte {
	for _, c := range src {
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		dst = append(dst, c)
	}
	return dst
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
