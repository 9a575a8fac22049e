package store

import (
	"strings"

	"github.com/odvcencio/zcode/plugin"
)

// plugin returns the state of id, creating it as starting.
func (s *Store) plugin(id string) *PluginState {
	p, ok := s.st.Plugins[id]
	if !ok {
		p = &PluginState{ID: id, State: plugin.StateStarting}
		s.st.Plugins[id] = p
	}
	return p
}

// pluginRegistered replaces a plugin's declarations and rebinds its keys.
func (s *Store) pluginRegistered(ev plugin.RegisteredEvent) bool {
	p := s.plugin(ev.PluginID)
	p.Commands = append([]plugin.CommandDecl(nil), ev.Commands...)
	p.Status = append([]plugin.StatusItem(nil), ev.StatusItems...)
	s.rebuildKeymap()
	s.logf("plugin %s registered %d commands", ev.PluginID, len(ev.Commands))
	return true
}

// pluginPatched updates status items by id. Unknown ids are appended.
func (s *Store) pluginPatched(ev plugin.PatchEvent) bool {
	p := s.plugin(ev.PluginID)
	for _, patch := range ev.Patches {
		found := false
		for i := range p.Status {
			if p.Status[i].ID == patch.ID {
				p.Status[i] = patch.Apply(p.Status[i])
				found = true
				break
			}
		}
		if !found {
			p.Status = append(p.Status, patch.Apply(plugin.StatusItem{ID: patch.ID}))
		}
	}
	return true
}

func (s *Store) pluginOnline(ev plugin.OnlineEvent) bool {
	p := s.plugin(ev.PluginID)
	p.State = plugin.StateOnline
	p.Reason = ""
	s.logf("plugin %s online", ev.PluginID)
	return true
}

// pluginOffline drops what a stopped plugin declared.
func (s *Store) pluginOffline(ev plugin.OfflineEvent) bool {
	p := s.plugin(ev.PluginID)
	p.State = plugin.StateOffline
	p.Reason = ev.Reason
	p.Commands = nil
	p.Status = nil
	s.rebuildKeymap()
	s.message("plugin %s offline: %s", ev.PluginID, orDefault(ev.Reason, "exited"))
	return true
}

// terminalOutput appends shell output line by line, holding back a
// trailing partial line.
func (s *Store) terminalOutput(data string) {
	data = s.st.terminalPartial + data
	lines := strings.Split(data, "\n")
	for _, line := range lines[:len(lines)-1] {
		s.st.Terminal.Push(strings.TrimRight(line, "\r"))
	}
	s.st.terminalPartial = lines[len(lines)-1]
	if s.st.UI.Bottom == BottomTerminal {
		s.st.UI.PanelScroll = max(s.st.Terminal.Len()-s.st.UI.PanelHeight, 0)
	}
}
