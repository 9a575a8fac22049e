package store

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/odvcencio/zcode/commands"
	"github.com/odvcencio/zcode/editor"
	"github.com/odvcencio/zcode/lsp"
)

func serverKey(server, root string) string { return server + "\x00" + root }

// capsFor returns the capabilities of the ready session that serves t:
// the one for its language's server whose root holds the file most
// closely.
func (s *Store) capsFor(t *Tab) (lsp.Capabilities, bool) {
	srv, ok := s.st.Servers[t.Lang]
	if !ok || srv.Command == "" || t.Path == "" {
		return lsp.Capabilities{}, false
	}
	var best ServerStatus
	found := false
	for _, st := range s.st.Lsp {
		if st.Server != srv.Command || st.State != lsp.StateReady {
			continue
		}
		if st.Root != "" && t.Path != st.Root && !strings.HasPrefix(t.Path, st.Root+string(filepath.Separator)) {
			continue
		}
		if !found || len(st.Root) > len(best.Root) {
			best, found = st, true
		}
	}
	return best.Caps, found
}

// request builds a request of kind for the primary cursor of t. A
// selection becomes the Point to End range.
func (s *Store) request(t *Tab, kind lsp.RequestKind) lsp.Request {
	r := t.Buffer.Rope()
	c := t.Buffer.Primary()
	start, end := c.Range()
	return lsp.Request{
		Kind:    kind,
		Path:    t.Path,
		Version: t.Version,
		Text:    r,
		Point:   r.Point(start),
		End:     r.Point(end),
	}
}

// lspTab returns the active tab if it can talk to a language server.
func (s *Store) lspTab(announce bool) *Tab {
	t := s.st.Layout.ActiveTab()
	switch {
	case s.st.LspDisabled:
		if announce {
			s.message("language servers are disabled")
		}
		return nil
	case t == nil || t.Path == "":
		if announce {
			s.message("no file is open")
		}
		return nil
	}
	if _, ok := s.st.Servers[t.Lang]; !ok {
		if announce {
			s.message("no language server for %s", t.Lang)
		}
		return nil
	}
	return t
}

func (s *Store) requestSignature(t *Tab, trigger string) {
	if s.lspTab(false) != t {
		return
	}
	req := s.request(t, lsp.KindSignatureHelp)
	req.TriggerChar = trigger
	s.emit(LspSignatureHelpRequest{Request: req})
}

// lspCommand runs the language commands. Debounced ones are silent when
// no server can answer.
func (s *Store) lspCommand(cmd commands.Command) bool {
	explicit := true
	switch cmd {
	case commands.LspSemanticTokens, commands.LspInlayHints, commands.LspFoldingRange:
		explicit = false
	case commands.LspHover, commands.LspCompletion:
		explicit = !s.ticking
	}
	t := s.lspTab(explicit)
	if t == nil {
		return explicit
	}
	switch cmd {
	case commands.LspHover:
		s.emit(LspHoverRequest{Request: s.request(t, lsp.KindHover)})
	case commands.LspCompletion:
		ctx, lineStart := completionContext(t)
		start, _ := t.strategy().PrefixBounds(ctx)
		s.st.Completion.Request(t.Path, t.Version, lineStart+start)
		req := s.request(t, lsp.KindCompletion)
		req.TriggerChar = s.st.Debounce.firing
		s.emit(LspCompletionRequest{Request: req})
	case commands.LspSignatureHelp:
		s.requestSignature(t, "")
	case commands.LspSemanticTokens:
		s.emit(LspSemanticTokensRequest{Request: s.request(t, lsp.KindSemanticTokens)})
	case commands.LspInlayHints:
		s.emit(LspInlayHintsRequest{Request: s.request(t, lsp.KindInlayHints)})
	case commands.LspFoldingRange:
		s.emit(LspFoldingRangeRequest{Request: s.request(t, lsp.KindFoldingRange)})
	case commands.LspDefinition:
		s.emit(LspDefinitionRequest{Request: s.request(t, lsp.KindDefinition)})
	case commands.LspReferences:
		s.emit(LspReferencesRequest{Request: s.request(t, lsp.KindReferences)})
	case commands.LspFormat:
		req := s.request(t, lsp.KindFormatting)
		req.TabSize = max(s.st.Config.TabSize, 1)
		req.InsertSpaces = s.st.Config.InsertSpaces
		s.emit(LspFormatRequest{Request: req})
	case commands.LspRename:
		s.st.UI.Input = &InputDialog{Purpose: InputLspRename, Title: "Rename Symbol", Field: editor.NewField(wordAt(t)), Target: t.Path}
		return true
	case commands.LspCodeActions:
		req := s.request(t, lsp.KindCodeAction)
		row := t.Buffer.Cursor().Row
		for _, d := range s.st.Diagnostics[t.Path] {
			if d.Range.Start.Line <= row && row <= d.Range.End.Line {
				req.Diagnostics = append(req.Diagnostics, d)
			}
		}
		s.emit(LspCodeActionRequest{Request: req})
	case commands.LspDocumentSymbols:
		s.emit(LspSymbolsRequest{Request: s.request(t, lsp.KindDocumentSymbols)})
	case commands.LspWorkspaceSymbols:
		s.st.UI.Input = &InputDialog{Purpose: InputWorkspaceSymbols, Title: "Workspace Symbols", Field: editor.NewField(wordAt(t)), Target: t.Path}
		return true
	case commands.LspRestart:
		s.emit(RestartLspClient{Path: t.Path})
		s.message("restarting language server for %s", t.Lang)
		return true
	default:
		return false
	}
	return false
}

// current returns the open tab of path if the response was computed for
// its current version.
func (s *Store) current(r lsp.Response) *Tab {
	t := s.st.Layout.FindPath(r.Path)
	if t == nil || r.Version != t.Version {
		return nil
	}
	return t
}

func (s *Store) lspHover(ev lsp.HoverEvent) bool {
	t := s.current(ev.Response)
	if t == nil || t != s.st.Layout.ActiveTab() {
		return false
	}
	s.st.UI.Hover = ev.Text
	return true
}

func (s *Store) lspCompletion(ev lsp.CompletionEvent, now int64) bool {
	comp := &s.st.Completion
	p := comp.Pending
	t := s.st.Layout.ActiveTab()
	if p == nil || t == nil || t.Path != ev.Path || p.Path != ev.Path || ev.Version < t.Version {
		return false
	}
	pos := t.Buffer.Primary().Pos
	if pos < p.Anchor {
		comp.Close()
		return true
	}
	s.compEnc = ev.Encoding
	return comp.Apply(ev.Path, ev.Version, ev.Items, ev.Incomplete, t.Buffer.Rope().Slice(p.Anchor, pos), t.Lang, s.st.Ranker, now)
}

func (s *Store) lspSignatureHelp(ev lsp.SignatureHelpEvent) bool {
	t := s.current(ev.Response)
	if t == nil {
		return false
	}
	h := ev.Help
	if h == nil || len(h.Signatures) == 0 {
		s.st.UI.Signature = ""
		return true
	}
	i := max(0, min(h.ActiveSignature, len(h.Signatures)-1))
	label := h.Signatures[i].Label
	if len(h.Signatures) > 1 {
		label = fmt.Sprintf("%s  (%d/%d)", label, i+1, len(h.Signatures))
	}
	s.st.UI.Signature = label
	return true
}

func (s *Store) lspSemanticTokens(ev lsp.SemanticTokensEvent) bool {
	t := s.current(ev.Response)
	if t == nil {
		return false
	}
	t.Semantic, t.SemanticVersion = ev.Lines, t.Version
	return true
}

func (s *Store) lspInlayHints(ev lsp.InlayHintsEvent) bool {
	t := s.current(ev.Response)
	if t == nil {
		return false
	}
	t.Hints, t.HintsVersion, t.HintsEnc = ev.Hints, t.Version, ev.Encoding
	return true
}

func (s *Store) lspFoldingRanges(ev lsp.FoldingRangesEvent) bool {
	t := s.current(ev.Response)
	if t == nil {
		return false
	}
	regions := make([]editor.FoldRegion, 0, len(ev.Ranges))
	for _, r := range ev.Ranges {
		if r.EndLine > r.StartLine {
			regions = append(regions, editor.FoldRegion{StartLine: r.StartLine, EndLine: r.EndLine})
		}
	}
	t.Folds.SetRegions(regions)
	t.FoldVersion = t.Version
	return true
}

// lspDiagnostics stores published diagnostics for open documents unless
// they describe an older version.
func (s *Store) lspDiagnostics(ev lsp.DiagnosticsEvent) bool {
	t := s.st.Layout.FindPath(ev.Path)
	if t == nil {
		return false
	}
	if ev.Version != nil && uint64(*ev.Version) < t.Version {
		return false
	}
	if len(ev.Diagnostics) == 0 {
		if _, ok := s.st.Diagnostics[ev.Path]; !ok {
			return false
		}
		delete(s.st.Diagnostics, ev.Path)
		delete(s.diagEnc, ev.Path)
		s.rebuildProblems()
		return true
	}
	s.st.Diagnostics[ev.Path] = ev.Diagnostics
	s.diagEnc[ev.Path] = ev.Encoding
	s.rebuildProblems()
	return true
}

// rebuildProblems flattens diagnostics into the Problems panel, sorted by
// path then position.
func (s *Store) rebuildProblems() {
	paths := make([]string, 0, len(s.st.Diagnostics))
	for p := range s.st.Diagnostics {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	s.st.Problems = s.st.Problems[:0]
	for _, p := range paths {
		enc := s.diagEnc[p]
		start := len(s.st.Problems)
		for _, d := range s.st.Diagnostics[p] {
			msg := strings.TrimSpace(d.Message)
			if d.Source != "" {
				msg = d.Source + ": " + msg
			}
			s.st.Problems = append(s.st.Problems, s.location(p, d.Range.Start, enc, msg, d.Severity))
		}
		added := s.st.Problems[start:]
		sort.SliceStable(added, func(i, j int) bool {
			if added[i].Line != added[j].Line {
				return added[i].Line < added[j].Line
			}
			return added[i].Col < added[j].Col
		})
	}
	s.st.UI.PanelSelected = min(s.st.UI.PanelSelected, max(s.st.PanelLen()-1, 0))
}

// location converts a wire position to a panel row. Columns are converted
// to runes when the document is open; otherwise the encoding travels
// along.
func (s *Store) location(path string, pos lsp.Position, enc lsp.Encoding, text string, severity int) Location {
	loc := Location{Path: path, Line: pos.Line, Col: pos.Character, Text: text, Severity: severity, Enc: enc}
	if t := s.st.Layout.FindPath(path); t != nil {
		line := t.Buffer.Rope().Line(pos.Line)
		loc.Col, loc.Enc = enc.CharCol(line, pos.Character), ""
		if text == "" {
			loc.Text = strings.TrimSpace(line)
		}
	}
	return loc
}

// lspLocations jumps to a single definition and lists everything else in
// the Locations panel.
func (s *Store) lspLocations(ev lsp.LocationsEvent) bool {
	if len(ev.Locations) == 0 {
		s.message("no %s found", ev.Kind)
		return true
	}
	locs := make([]Location, 0, len(ev.Locations))
	for _, l := range ev.Locations {
		locs = append(locs, s.location(lsp.PathFromURI(l.URI), l.Range.Start, ev.Encoding, "", 0))
	}
	if ev.Kind == lsp.KindDefinition && len(locs) == 1 {
		return s.openLocation(locs[0])
	}
	s.st.Locations = locs
	s.showBottom(BottomLocations)
	return true
}

func (s *Store) lspSymbols(ev lsp.SymbolsEvent) bool {
	s.st.Symbols = ev.Symbols
	s.symbolEnc = ev.Encoding
	s.showBottom(BottomSymbols)
	if len(ev.Symbols) == 0 {
		s.message("no symbols")
	}
	return true
}

func (s *Store) lspCodeActions(ev lsp.CodeActionsEvent) bool {
	if s.current(ev.Response) == nil {
		return false
	}
	s.st.CodeActions = ev.Actions
	s.st.actionPath = ev.Path
	s.actionEnc = ev.Encoding
	if len(ev.Actions) == 0 {
		s.message("no code actions")
		return true
	}
	s.showBottom(BottomCodeActions)
	return true
}

// applyCodeAction runs the chosen code action's edit.
func (s *Store) applyCodeAction(i int) bool {
	if i < 0 || i >= len(s.st.CodeActions) {
		return false
	}
	a := s.st.CodeActions[i]
	if a.Edit != nil {
		s.applyWorkspaceEdit(*a.Edit, s.actionEnc, s.now)
	}
	if a.Command != nil {
		s.logf("code action %q wants command %s, which is not supported", a.Title, a.Command.Command)
	}
	s.st.CodeActions = nil
	s.st.UI.BottomVisible = false
	s.st.UI.Focus = FocusEditor
	s.relayout()
	return true
}

// lspEdits applies formatting and rename results. They are discarded when
// the document changed after the request.
func (s *Store) lspEdits(ev lsp.EditsEvent, now int64) bool {
	if s.current(ev.Response) == nil {
		s.logf("discarded %s result for %s: document changed", ev.Kind, s.rel(ev.Path))
		return false
	}
	s.applyWorkspaceEdit(ev.Edit, ev.Encoding, now)
	return true
}

// applyWorkspaceEdit edits open documents in place and hands edits for
// other files to the file system adapter.
func (s *Store) applyWorkspaceEdit(edit lsp.WorkspaceEdit, enc lsp.Encoding, now int64) {
	byURI := edit.ByURI()
	uris := make([]string, 0, len(byURI))
	for u := range byURI {
		uris = append(uris, u)
	}
	sort.Strings(uris)
	for _, u := range uris {
		path := lsp.PathFromURI(u)
		edits := byURI[u]
		if t := s.st.Layout.FindPath(path); t != nil {
			s.edited(t, t.Buffer.ApplyEdits(enc.TextEdits(t.Buffer.Rope(), edits), now), now)
			continue
		}
		s.emit(LspApplyEdit{Path: path, Encoding: enc, Edits: edits})
	}
}

// lspServerState records a session lifecycle change. A session that just
// became ready gets fresh document data.
func (s *Store) lspServerState(ev lsp.StateEvent) bool {
	key := serverKey(ev.Server, ev.Root)
	prev := s.st.Lsp[key]
	s.st.Lsp[key] = ServerStatus{Server: ev.Server, Root: ev.Root, State: ev.State, Attempt: ev.Attempt, Err: ev.Err, Caps: ev.Caps}
	switch ev.State {
	case lsp.StateReady:
		s.logf("lsp %s ready in %s (%s)", ev.Server, s.rel(ev.Root), ev.Caps.Encoding)
		for _, k := range []DeadlineKind{DeadlineSemanticTokens, DeadlineInlayHints, DeadlineFolding} {
			s.st.Debounce.Schedule(k, s.now, "")
		}
	case lsp.StateFailed:
		if prev.State != lsp.StateFailed {
			msg := fmt.Sprintf("lsp %s failed: %s", ev.Server, ev.Err)
			if hint := lsp.InstallHint(ev.Server); hint != "" {
				msg += " (" + hint + ")"
			}
			s.message("%s", msg)
		} else {
			s.logf("lsp %s attempt %d failed: %s", ev.Server, ev.Attempt, ev.Err)
		}
	case lsp.StateStopped:
		s.logf("lsp %s stopped", ev.Server)
	}
	return true
}
