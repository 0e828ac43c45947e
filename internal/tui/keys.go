package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"mockup/internal/editor"
)

// Focus targets reported to the dispatcher.
const (
	TargetCanvas = "CANVAS"
	TargetInput  = "INPUT"
)

// terminal key names that differ from the editor's
var keyNames = map[string]string{
	"up":        "ArrowUp",
	"down":      "ArrowDown",
	"left":      "ArrowLeft",
	"right":     "ArrowRight",
	"delete":    "Delete",
	"backspace": "Backspace",
	"enter":     "Enter",
	"esc":       "Escape",
	"tab":       "Tab",
}

// keyEvent converts a terminal key message. Terminals never report the
// command key, so the primary modifier always arrives as ctrl.
func keyEvent(msg tea.KeyMsg, target string) editor.KeyEvent {
	ev := editor.KeyEvent{Target: target}
	name := msg.String()
	for stripped := true; stripped; {
		stripped = false
		for _, mod := range []string{"ctrl+", "alt+", "shift+"} {
			if len(name) > len(mod) && strings.HasPrefix(name, mod) {
				switch mod {
				case "ctrl+":
					ev.Ctrl = true
				case "alt+":
					ev.Alt = true
				case "shift+":
					ev.Shift = true
				}
				name = strings.TrimPrefix(name, mod)
				stripped = true
			}
		}
	}
	if mapped, ok := keyNames[name]; ok {
		name = mapped
	}
	ev.Key = name
	if msg.Type == tea.KeyDelete {
		ev.Code = 46
	}
	return ev
}
