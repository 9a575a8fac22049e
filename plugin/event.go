package plugin

// Event is delivered from the host to the editor.
type Event interface{ pluginEvent() }

// RegisteredEvent carries a plugin's declarations. A later registration
// replaces an earlier one.
type RegisteredEvent struct {
	PluginID    string
	Commands    []CommandDecl
	StatusItems []StatusItem
}

// PatchEvent updates declared status items.
type PatchEvent struct {
	PluginID string
	Patches  []StatusPatch
}

// LogEvent is a line a plugin asked to show in the logs.
type LogEvent struct {
	PluginID string
	Level    string
	Message  string
}

// OnlineEvent reports that a plugin answered zcode/initialize.
type OnlineEvent struct {
	PluginID string
}

// OfflineEvent reports that a plugin stopped, with the reason.
type OfflineEvent struct {
	PluginID string
	Reason   string
}

func (RegisteredEvent) pluginEvent() {}
func (PatchEvent) pluginEvent()      {}
func (LogEvent) pluginEvent()        {}
func (OnlineEvent) pluginEvent()     {}
func (OfflineEvent) pluginEvent()    {}
