package settings

import (
	"os"
	"strings"
)

// Environment switches.
const (
	EnvDisableSettings = "ZCODE_DISABLE_SETTINGS"
	EnvDisableLSP      = "ZCODE_DISABLE_LSP"
	EnvRunTUIE2E       = "ZCODE_RUN_TUI_E2E"
	EnvLogFile         = "ZCODE_LOG_FILE"
)

// ParseBool accepts 1, true, yes and on in any case.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// EnvEnabled reports whether the named switch is set to a true value.
func EnvEnabled(name string) bool {
	return ParseBool(os.Getenv(name))
}
