package tui

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	titleStyle   = lipgloss.NewStyle().Bold(true)
)

func (m Model) View() string {
	if m.closed {
		return ""
	}
	if m.help {
		return m.helpView()
	}

	var b strings.Builder
	b.WriteString(strings.Join(m.canvas.Render(max(m.width, 1), m.canvasHeight()), "\n"))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	return b.String()
}

func (m Model) statusLine() string {
	var status string
	switch m.mode {
	case ModeTextInput:
		status = fmt.Sprintf("Mode: TEXT | %s | Enter=place, Esc=cancel", m.input.View())
	case ModeConfirm:
		status = fmt.Sprintf("Mode: CONFIRM | %s | Quit without saving? (y/n)",
			errorStyle.Render("Save failed: "+m.errorMessage))
	default:
		status = fmt.Sprintf("Mode: %s | %s | Selected: %d | History: %d/%d",
			m.mode, m.designID, len(m.session.Selection()),
			m.session.HistoryIndex()+1, m.session.HistoryLen())
		if m.session.SavePending() {
			status += " | " + dimStyle.Render("unsaved")
		}
		if m.successMessage != "" {
			status += " | " + successStyle.Render(m.successMessage)
		}
		if m.errorMessage != "" {
			status += " | " + errorStyle.Render("ERROR: "+m.errorMessage)
		} else if m.successMessage == "" {
			status += " | ? for help | q to quit"
		}
	}
	if m.width > 0 {
		status = truncate.StringWithTail(status, uint(m.width), "…")
	}
	return status
}

func helpLines() []string {
	lines := []string{
		titleStyle.Render("Mockup Help"),
		"",
		"Canvas:",
		"  b                Add a box at the center of the view",
		"  t                Add a text label (type, then Enter)",
		"  g                Add a print-area guide",
		"  tab              Select the next object",
		"  esc              Clear the selection",
		"  shift+arrows     Nudge the selection",
		"  arrows           Pan the view",
		"",
		"Editing:",
		"  delete/backspace Delete the selection",
		"  ctrl+a           Select all",
		"  ctrl+c / ctrl+v  Copy / paste (each paste lands further off)",
		"  ctrl+z / ctrl+y  Undo / redo",
		"",
		"Files:",
		"  ctrl+s           Save now (edits are also saved automatically)",
		"  e                Export the design as PNG",
		"",
		"General:",
		"  ?                Toggle this help screen",
		"  q/ctrl+q         Quit",
	}
	if runtime.GOOS == "linux" {
		lines = append(lines, "",
			"Note: if ctrl+s freezes the terminal, flow control is on. Run stty -ixon before starting.")
	}
	return lines
}

func (m Model) helpView() string {
	width := max(m.width, 20)
	var wrapped []string
	for _, line := range helpLines() {
		wrapped = append(wrapped, strings.Split(wordwrap.String(line, width), "\n")...)
	}

	visible := max(m.height-1, 1)
	start := min(m.helpScroll, max(len(wrapped)-visible, 0))
	end := min(start+visible, len(wrapped))

	status := dimStyle.Render(fmt.Sprintf("Help (%d-%d of %d lines) | j/k to scroll, Esc to close",
		start+1, end, len(wrapped)))
	return strings.Join(wrapped[start:end], "\n") + "\n" + status
}
