// Package plugin hosts out-of-process plugins that talk JSON-RPC 2.0 over
// stdio with Content-Length framing.
package plugin

import (
	json "github.com/goccy/go-json"

	"github.com/odvcencio/zcode/commands"
)

// ProtocolVersion is sent in zcode/initialize.
const ProtocolVersion = 1

// Methods.
const (
	MethodInitialize     = "zcode/initialize"
	MethodRegister       = "zcode/register"
	MethodUIPatch        = "zcode/ui/patch"
	MethodLog            = "zcode/log"
	MethodCommandInvoked = "zcode/command/invoked"
)

// InitializeParams is sent to a plugin once its process is up.
type InitializeParams struct {
	ProtocolVersion int    `json:"protocol_version"`
	WorkspaceRoot   string `json:"workspace_root"`
}

// CommandDecl is a command a plugin offers. Key optionally binds it in
// Context.
type CommandDecl struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Key     string `json:"key,omitempty"`
	Context string `json:"context,omitempty"`
}

// StatusItem is a status bar entry owned by a plugin.
type StatusItem struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Tooltip string `json:"tooltip,omitempty"`
}

// RegisterParams declares a plugin's commands and status items.
type RegisterParams struct {
	Commands    []CommandDecl `json:"commands"`
	StatusItems []StatusItem  `json:"status_items"`
}

// StatusPatch updates fields of a declared status item. Nil fields are
// left alone.
type StatusPatch struct {
	ID      string  `json:"id"`
	Text    *string `json:"text,omitempty"`
	Tooltip *string `json:"tooltip,omitempty"`
}

// PatchParams is the payload of zcode/ui/patch.
type PatchParams struct {
	Items []StatusPatch `json:"items"`
}

// LogParams is the payload of zcode/log.
type LogParams struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// CommandInvokedParams tells a plugin one of its commands ran.
type CommandInvokedParams struct {
	CommandID string          `json:"command_id"`
	Args      json.RawMessage `json:"args,omitempty"`
}

// PaletteName is the palette and keymap name of a plugin command.
func PaletteName(pluginID, commandID string) string {
	return string(commands.Plugin(pluginID, commandID))
}

// Apply patches item.
func (p StatusPatch) Apply(item StatusItem) StatusItem {
	if p.Text != nil {
		item.Text = *p.Text
	}
	if p.Tooltip != nil {
		item.Tooltip = *p.Tooltip
	}
	return item
}
