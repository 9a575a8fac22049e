package settings

import "sort"

// Theme maps colour slots to lipgloss colour strings.
type Theme map[string]string

// DefaultTheme is a dark palette. Slot names match the highlight kinds plus
// the UI chrome.
func DefaultTheme() Theme {
	return Theme{
		"foreground":    "#d4d4d4",
		"background":    "",
		"muted":         "#6a6a6a",
		"accent":        "#61afef",
		"border":        "#3e4451",
		"border.active": "#61afef",
		"selection":     "#264f78",
		"cursorline":    "#2a2d34",
		"gutter":        "#5c6370",
		"statusbar":     "#21252b",
		"error":         "#e06c75",
		"warning":       "#e5c07b",
		"info":          "#61afef",
		"hint":          "#98c379",
		"match":         "#515c6a",
		"keyword":       "#c678dd",
		"string":        "#98c379",
		"comment":       "#7f848e",
		"number":        "#d19a66",
		"function":      "#61afef",
		"method":        "#61afef",
		"type":          "#e5c07b",
		"variable":      "#e06c75",
		"parameter":     "#d19a66",
		"property":      "#e06c75",
		"constant":      "#d19a66",
		"namespace":     "#e5c07b",
		"operator":      "#56b6c2",
		"macro":         "#c678dd",
		"attribute":     "#d19a66",
		"tag":           "#e06c75",
		"punctuation":   "#abb2bf",
		"enumMember":    "#56b6c2",
		"label":         "#c678dd",
		"inlayHint":     "#5c6370",
	}
}

// Merge returns a copy of t with overrides applied. An empty override
// value resets the slot to the terminal default.
func (t Theme) Merge(overrides map[string]string) Theme {
	out := make(Theme, len(t)+len(overrides))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// Color returns the colour for slot, falling back to foreground.
func (t Theme) Color(slot string) string {
	if c, ok := t[slot]; ok {
		return c
	}
	return t["foreground"]
}

// Slots returns the slot names sorted.
func (t Theme) Slots() []string {
	out := make([]string, 0, len(t))
	for k := range t {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
