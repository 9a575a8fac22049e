package workbench

import (
	"fmt"

	"github.com/odvcencio/zcode/completion"
	"github.com/odvcencio/zcode/explorer"
	"github.com/odvcencio/zcode/search"
	"github.com/odvcencio/zcode/settings"
	"github.com/odvcencio/zcode/store"
)

// perform hands each effect to the adapter that owns it. Nothing here
// blocks: I/O runs on workers and comes back as actions.
func (w *Workbench) perform(effects []store.Effect) {
	for _, e := range effects {
		w.performOne(e)
	}
}

func (w *Workbench) performOne(e store.Effect) {
	if req, ok := store.LspRequestOf(e); ok {
		if w.lsp != nil {
			w.lsp.Request(req)
		}
		return
	}
	switch e := e.(type) {
	case store.StartGlobalSearch:
		w.globalSearch.Cancel()
		w.globalSearch = w.search.Start(w.ctx, e.Request, w.globalMsgs)
	case store.CancelGlobalSearch:
		if w.globalSearch != nil && w.globalSearch.ID == e.ID {
			w.globalSearch.Cancel()
		}
	case store.StartEditorSearch:
		w.editorSearches[e.Pane].Cancel()
		w.editorSearches[e.Pane] = search.StartEditor(w.ctx, e.Request, w.editorMsgs)
	case store.CancelEditorSearch:
		w.editorSearches[e.Pane].Cancel()
		delete(w.editorSearches, e.Pane)

	case store.LoadDir:
		w.goIO(func() store.Action { return loadDir(e.Path) })
	case store.LoadFile:
		w.goIO(func() store.Action { return w.loadFile(e.Path) })
	case store.WriteFile:
		w.serial.Do(func() { w.post(writeFile(e)) })
	case store.CreateFile:
		w.goIO(func() store.Action { return createFile(e.Path) })
	case store.CreateDir:
		w.goIO(func() store.Action { return createDir(e.Path) })
	case store.DeletePath:
		w.goIO(func() store.Action { return deletePath(e) })
	case store.RenamePath:
		w.goIO(func() store.Action { return renamePath(e) })
	case store.CopyPath:
		w.goIO(func() store.Action { return copyPath(e) })
	case store.GitRefreshStatus:
		w.goIO(func() store.Action { return w.gitStatus(e.Root) })
	case store.ListFiles:
		w.goIO(func() store.Action { return w.listFiles(e.Root) })

	case store.LspOpen:
		if w.lsp != nil {
			w.lsp.Open(e.Path, e.Lang, e.Version, e.Text)
		}
	case store.LspChange:
		if w.lsp != nil {
			w.lsp.Change(e.Path, e.Version, e.Deltas, e.Text)
		}
	case store.LspSave:
		if w.lsp != nil {
			w.lsp.Save(e.Path)
		}
	case store.LspClose:
		if w.lsp != nil {
			w.lsp.Close(e.Path)
		}
	case store.RestartLspClient:
		if w.lsp != nil {
			w.lsp.Restart(e.Path)
		}
	case store.LspApplyEdit:
		w.serial.Do(func() {
			if a := applyEditToFile(e, w.now()); a != nil {
				w.post(a)
			}
		})

	case store.ClipboardWrite:
		w.goIO(func() store.Action {
			if err := w.clip.Write(e.Text); err != nil {
				w.log.Warn("clipboard write failed", "error", err)
			}
			return nil
		})
	case store.ClipboardRead:
		w.goIO(func() store.Action {
			text, err := w.clip.Read()
			if err != nil {
				return store.LogLine{Line: fmt.Sprintf("clipboard read failed: %v", err)}
			}
			return store.ClipboardText{Text: text, Now: w.now()}
		})

	case store.EmitPluginNotification:
		if err := w.plugins.Notify(e.PluginID, e.Method, e.Params); err != nil {
			w.log.Warn("plugin notification failed", "plugin", e.PluginID, "method", e.Method, "error", err)
		}

	case store.TerminalStart:
		w.startTerminal(e.Dir)
	case store.TerminalWrite:
		if w.term != nil {
			if err := w.term.Write(e.Data); err != nil {
				w.log.Warn("terminal write failed", "error", err)
			}
		}

	case store.AppendHistoryLog:
		if path := w.historyPath(e.Path); path != "" {
			w.serial.Do(func() { w.historyErr(appendLines(path, e.Lines)) })
		}
	case store.ResetHistoryLog:
		if path := w.historyPath(e.Path); path != "" {
			w.serial.Do(func() { w.historyErr(writeLines(path, e.Lines)) })
		}

	case store.SaveRanker:
		if w.opts.RankerPath != "" {
			path := w.opts.RankerPath
			w.serial.Do(func() {
				if err := completion.WriteSnapshot(path, e.Data); err != nil {
					w.log.Warn("completion ranking not saved", "path", path, "error", err)
				}
			})
		}
	case store.ReloadSettings:
		w.reloadSettings()
	case store.Quit:
		w.quitting = true
	default:
		w.log.Debug("unhandled effect", "effect", fmt.Sprintf("%T", e))
	}
}

func (w *Workbench) reloadSettings() {
	path := w.opts.SettingsPath
	if path == "" || settings.EnvEnabled(settings.EnvDisableSettings) {
		w.goIO(func() store.Action { return store.SettingsError{Err: "settings are disabled"} })
		return
	}
	w.goIO(func() store.Action {
		f, err := settings.Load(path)
		if err != nil {
			return store.SettingsError{Err: err.Error()}
		}
		return store.SettingsReloaded{Settings: f}
	})
}

func (w *Workbench) gitStatus(root string) store.Action {
	repo, err := explorer.RepoRoot(root)
	if err != nil {
		w.log.Debug("no git repository", "root", root, "error", err)
		return nil
	}
	statuses, err := explorer.Status(repo)
	if err != nil {
		w.log.Warn("git status failed", "repo", repo, "error", err)
		return nil
	}
	return store.GitStatusLoaded{RepoRoot: repo, Statuses: statuses}
}

// quickOpenLimit caps the files offered by quick open.
const quickOpenLimit = 20000

func (w *Workbench) listFiles(root string) store.Action {
	files, truncated, err := search.ListFiles(w.ctx, root, quickOpenLimit)
	if err != nil {
		return store.FilesListed{Err: err.Error()}
	}
	if truncated {
		w.log.Info("quick open list truncated", "root", root, "limit", quickOpenLimit)
	}
	return store.FilesListed{Files: files, Truncated: truncated}
}
