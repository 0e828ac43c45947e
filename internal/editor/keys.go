package editor

import "strings"

// KeyEvent is one key press as the host saw it. Target names the focused
// control ("INPUT", "TEXTAREA", "CANVAS"...).
type KeyEvent struct {
	Key    string
	Code   int
	Ctrl   bool
	Meta   bool
	Shift  bool
	Alt    bool
	Target string
}

// keyCodeDelete is the legacy numeric code of the Delete key.
const keyCodeDelete = 46

// Primary reports whether the platform command modifier is held.
func (e KeyEvent) Primary() bool {
	return e.Ctrl || e.Meta
}

// InTextEntry reports whether focus sits in a control that edits text.
func (e KeyEvent) InTextEntry() bool {
	switch strings.ToUpper(e.Target) {
	case "INPUT", "TEXTAREA":
		return true
	}
	return false
}

type Modifiers uint8

const (
	ModPrimary Modifiers = 1 << iota
	ModShift
	ModAlt
)

// ModNone matches a chord with no modifier held.
const ModNone Modifiers = 0

func (e KeyEvent) modifiers() Modifiers {
	var m Modifiers
	if e.Primary() {
		m |= ModPrimary
	}
	if e.Shift {
		m |= ModShift
	}
	if e.Alt {
		m |= ModAlt
	}
	return m
}

func (e KeyEvent) normalizedKey() string {
	if e.Code == keyCodeDelete {
		return "delete"
	}
	return strings.ToLower(e.Key)
}

// Binding maps one exact chord to a command.
type Binding struct {
	Key     string
	Mods    Modifiers
	Command Command
}

type Keymap []Binding

// DefaultKeymap is the editor's hotkey table. panStep is the viewport
// distance of one arrow press.
func DefaultKeymap(panStep float64) Keymap {
	pan := func(d Direction) Command {
		return Command{Kind: CmdPanViewport, Direction: d, Distance: panStep}
	}
	return Keymap{
		{Key: "delete", Mods: ModNone, Command: Command{Kind: CmdDeleteSelection}},
		{Key: "delete", Mods: ModPrimary, Command: Command{Kind: CmdDeleteSelection}},
		{Key: "backspace", Mods: ModNone, Command: Command{Kind: CmdDeleteSelection}},
		{Key: "backspace", Mods: ModPrimary, Command: Command{Kind: CmdDeleteSelection}},
		{Key: "z", Mods: ModPrimary, Command: Command{Kind: CmdUndo}},
		{Key: "y", Mods: ModPrimary, Command: Command{Kind: CmdRedo}},
		{Key: "c", Mods: ModPrimary, Command: Command{Kind: CmdCopy}},
		{Key: "v", Mods: ModPrimary, Command: Command{Kind: CmdPaste}},
		{Key: "s", Mods: ModPrimary, Command: Command{Kind: CmdSave}},
		{Key: "a", Mods: ModPrimary, Command: Command{Kind: CmdSelectAll}},
		{Key: "arrowup", Mods: ModNone, Command: pan(DirUp)},
		{Key: "arrowdown", Mods: ModNone, Command: pan(DirDown)},
		{Key: "arrowleft", Mods: ModNone, Command: pan(DirLeft)},
		{Key: "arrowright", Mods: ModNone, Command: pan(DirRight)},
	}
}

// Lookup returns the command bound to exactly this chord.
func (km Keymap) Lookup(key string, mods Modifiers) (Command, bool) {
	key = strings.ToLower(key)
	for _, b := range km {
		if b.Key == key && b.Mods == mods {
			return b.Command, true
		}
	}
	return Command{}, false
}

// Dispatcher resolves key events to commands and hands them to a Handler.
// It holds no scene state of its own.
type Dispatcher struct {
	keymap  Keymap
	handler Handler
}

func NewDispatcher(handler Handler, keymap Keymap) *Dispatcher {
	if keymap == nil {
		keymap = DefaultKeymap(1)
	}
	return &Dispatcher{keymap: keymap, handler: handler}
}

// Resolve maps an event to at most one command. Events aimed at a text
// entry control never resolve.
func (d *Dispatcher) Resolve(ev KeyEvent) (Command, bool) {
	if ev.InTextEntry() {
		return Command{}, false
	}
	return d.keymap.Lookup(ev.normalizedKey(), ev.modifiers())
}

// HandleKey resolves ev and executes the command. handled is true whenever
// a command matched, which is when the host must suppress its own default
// handling of the chord, even if the command itself failed.
func (d *Dispatcher) HandleKey(ev KeyEvent) (handled bool, err error) {
	cmd, ok := d.Resolve(ev)
	if !ok {
		return false, nil
	}
	return true, d.handler.Execute(cmd)
}
