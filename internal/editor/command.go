package editor

import "fmt"

type CommandKind int

const (
	CmdDeleteSelection CommandKind = iota
	CmdUndo
	CmdRedo
	CmdCopy
	CmdPaste
	CmdSave
	CmdSelectAll
	CmdPanViewport
)

func (k CommandKind) String() string {
	switch k {
	case CmdDeleteSelection:
		return "DeleteSelection"
	case CmdUndo:
		return "Undo"
	case CmdRedo:
		return "Redo"
	case CmdCopy:
		return "Copy"
	case CmdPaste:
		return "Paste"
	case CmdSave:
		return "Save"
	case CmdSelectAll:
		return "SelectAll"
	case CmdPanViewport:
		return "PanViewport"
	default:
		return fmt.Sprintf("CommandKind(%d)", int(k))
	}
}

type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Command is a named editor intent. Direction and Distance are only read
// for CmdPanViewport.
type Command struct {
	Kind      CommandKind
	Direction Direction
	Distance  float64
}

func (c Command) String() string {
	if c.Kind == CmdPanViewport {
		return fmt.Sprintf("%s(%s, %g)", c.Kind, c.Direction, c.Distance)
	}
	return c.Kind.String()
}

// Handler executes resolved commands.
type Handler interface {
	Execute(cmd Command) error
}
