// Package tui is the terminal host of the editor: a bubbletea program that
// feeds key presses to the editor session and draws the canvas.
package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"mockup/internal/editor"
	"mockup/internal/scene"
)

type Mode int

const (
	ModeNormal Mode = iota
	ModeTextInput
	ModeConfirm
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "NORMAL"
	case ModeTextInput:
		return "TEXT"
	case ModeConfirm:
		return "CONFIRM"
	default:
		return "UNKNOWN"
	}
}

// SaveResultMsg reports a finished persist attempt. Send it from the
// session's OnSave hook.
type SaveResultMsg struct {
	Err error
}

type Options struct {
	DesignID string
	Canvas   *scene.Canvas
	Session  *editor.Session
	Keymap   editor.Keymap

	// NudgeStep is how far shift+arrow moves the selection.
	NudgeStep float64
	// ExportPath resolves the file name of a PNG export.
	ExportPath func(filename string) string
	Logger     *slog.Logger
}

type Model struct {
	width      int
	height     int
	mode       Mode
	help       bool
	helpScroll int

	designID   string
	canvas     *scene.Canvas
	session    *editor.Session
	dispatcher *editor.Dispatcher
	input      textinput.Model
	nudgeStep  float64
	exportPath func(string) string

	errorMessage   string
	successMessage string
	closed         bool
	log            *slog.Logger
}

func New(opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "label text"
	ti.CharLimit = 200
	ti.Width = 40

	if opts.NudgeStep <= 0 {
		opts.NudgeStep = 1
	}
	if opts.ExportPath == nil {
		opts.ExportPath = func(filename string) string { return filename }
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return Model{
		mode:       ModeNormal,
		designID:   opts.DesignID,
		canvas:     opts.Canvas,
		session:    opts.Session,
		dispatcher: editor.NewDispatcher(opts.Session, opts.Keymap),
		input:      ti,
		nudgeStep:  opts.NudgeStep,
		exportPath: opts.ExportPath,
		log:        opts.Logger,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Mode() Mode { return m.mode }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-40, 10)
		return m, nil

	case SaveResultMsg:
		if msg.Err != nil {
			m.setError(msg.Err)
		} else if m.mode == ModeNormal {
			m.successMessage = "Saved"
		}
		return m, nil

	case tea.KeyMsg:
		if m.help {
			return m.updateHelp(msg), nil
		}
		switch m.mode {
		case ModeTextInput:
			return m.updateTextInput(msg)
		case ModeConfirm:
			return m.updateConfirm(msg)
		}
		return m.updateNormal(msg)
	}

	if m.mode == ModeTextInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.errorMessage = ""
	m.successMessage = ""

	ev := keyEvent(msg, TargetCanvas)
	if cmd, ok := m.dispatcher.Resolve(ev); ok {
		if _, err := m.dispatcher.HandleKey(ev); err != nil {
			m.setError(err)
		} else {
			m.successMessage = m.describe(cmd)
		}
		return m, nil
	}

	switch msg.String() {
	case "?":
		m.help = true
		m.helpScroll = 0
	case "q", "ctrl+q":
		return m.quit()
	case "b":
		m.add(func(x, y float64) editor.ObjectID { return m.canvas.AddBox(x, y, "box") }, true)
	case "g":
		m.add(func(x, y float64) editor.ObjectID { return m.canvas.AddGuide(x, y, 24, 12) }, false)
	case "t":
		m.mode = ModeTextInput
		m.input.Reset()
		return m, m.input.Focus()
	case "tab":
		m.cycleSelection()
	case "esc":
		if err := m.session.ClearSelection(); err != nil {
			m.setError(err)
		}
	case "shift+up":
		m.nudge(0, -m.nudgeStep)
	case "shift+down":
		m.nudge(0, m.nudgeStep)
	case "shift+left":
		m.nudge(-m.nudgeStep, 0)
	case "shift+right":
		m.nudge(m.nudgeStep, 0)
	case "e":
		m.exportPNG()
	}
	return m, nil
}

func (m Model) updateTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// editor chords typed into the label stay in the label
	if handled, err := m.dispatcher.HandleKey(keyEvent(msg, TargetInput)); handled {
		if err != nil {
			m.setError(err)
		}
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEnter:
		text := strings.TrimSpace(m.input.Value())
		m.input.Blur()
		m.mode = ModeNormal
		if text != "" {
			m.add(func(x, y float64) editor.ObjectID { return m.canvas.AddText(x, y, text) }, true)
		}
		return m, nil
	case tea.KeyEsc:
		m.input.Blur()
		m.mode = ModeNormal
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.session.Close()
		m.closed = true
		return m, tea.Quit
	case "n", "N", "esc":
		m.mode = ModeNormal
	}
	return m, nil
}

func (m Model) updateHelp(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc", "q", "?":
		m.help = false
		m.helpScroll = 0
	case "j", "down":
		if m.helpScroll < len(helpLines())-1 {
			m.helpScroll++
		}
	case "k", "up":
		if m.helpScroll > 0 {
			m.helpScroll--
		}
	}
	return m
}

// quit flushes a pending save first. If that fails the user decides.
func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.session.SavePending() {
		if err := m.session.Save(true); err != nil {
			m.setError(err)
			m.mode = ModeConfirm
			return m, nil
		}
	}
	m.session.Close()
	m.closed = true
	return m, tea.Quit
}

func (m *Model) add(create func(x, y float64) editor.ObjectID, selectIt bool) {
	x, y := m.center()
	var id editor.ObjectID
	err := m.session.Mutate(func(editor.Surface) error {
		id = create(x, y)
		return nil
	}, true)
	if err != nil {
		m.setError(err)
		return
	}
	if selectIt {
		if err := m.session.Select(id); err != nil {
			m.setError(err)
		}
	}
}

// center is the world point under the middle of the canvas area.
func (m *Model) center() (float64, float64) {
	x, y := m.canvas.WorldPoint(float64(m.width/2), float64(m.canvasHeight()/2))
	return math.Round(x), math.Round(y)
}

func (m *Model) cycleSelection() {
	ids := m.canvas.Selectable()
	if len(ids) == 0 {
		return
	}
	next := ids[0]
	if current := m.session.Selection(); len(current) == 1 {
		if i := slices.Index(ids, current[0]); i >= 0 {
			next = ids[(i+1)%len(ids)]
		}
	}
	if err := m.session.Select(next); err != nil {
		m.setError(err)
	}
}

// nudge moves the selection. Held keys coalesce into one undo step.
func (m *Model) nudge(dx, dy float64) {
	ids := m.session.Selection()
	if len(ids) == 0 {
		return
	}
	err := m.session.Mutate(func(editor.Surface) error {
		m.canvas.MoveObjects(ids, dx, dy)
		return nil
	}, false)
	if err != nil {
		m.setError(err)
	}
}

func (m *Model) exportPNG() {
	path := m.exportPath(m.designID + ".png")
	if err := m.canvas.ExportPNGFile(path); err != nil {
		m.setError(fmt.Errorf("export: %w", err))
		return
	}
	m.log.Info("exported png", "path", path)
	m.successMessage = "Exported " + path
}

func (m *Model) describe(cmd editor.Command) string {
	switch cmd.Kind {
	case editor.CmdSave:
		return "Saved"
	case editor.CmdCopy:
		if n := len(m.session.Selection()); n > 0 {
			return fmt.Sprintf("Copied %d", n)
		}
	case editor.CmdPaste:
		if n := len(m.session.Selection()); n > 0 {
			return fmt.Sprintf("Pasted %d", n)
		}
	}
	return ""
}

func (m *Model) setError(err error) {
	m.log.Warn("editor error", "error", err)
	m.successMessage = ""
	switch {
	case errors.Is(err, editor.ErrBusy):
		m.errorMessage = "editor busy, try again"
	case errors.Is(err, editor.ErrClosed):
		m.errorMessage = "design closed"
	default:
		m.errorMessage = err.Error()
	}
}

func (m Model) canvasHeight() int {
	return max(m.height-1, 1)
}
