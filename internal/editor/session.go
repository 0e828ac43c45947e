package editor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type State int

const (
	StateIdle State = iota
	StateMutating
	StateUndoing
	StateRedoing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateMutating:
		return "mutating"
	case StateUndoing:
		return "undoing"
	case StateRedoing:
		return "redoing"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options configures a Session. The zero value is usable: no persistence,
// unbounded history, no coalescing.
type Options struct {
	DesignID  string
	Persister Persister

	HistoryLimit   int
	CoalesceWindow time.Duration

	SaveDelay   time.Duration
	SaveRetry   time.Duration
	SaveTimeout time.Duration

	// PasteOffset is the x and y shift between successive pastes.
	PasteOffset float64
	// Mirror, when set, receives every copied fragment as text.
	Mirror ClipboardMirror

	Logger *slog.Logger
	// OnSave is called after every persist attempt, from whichever
	// goroutine ran it.
	OnSave func(error)

	Now       func() time.Time
	AfterFunc AfterFunc
}

// Session is the state of one open editor: history, clipboard and the
// pending save. Create it when the editor mounts and Close it on unmount.
type Session struct {
	mu          sync.Mutex
	state       State
	surface     Surface
	history     *History
	clipboard   ClipboardSlot
	saver       *Saver
	pasteOffset float64
	mirror      ClipboardMirror
	log         *slog.Logger
}

// NewSession snapshots the surface as the base of the history.
func NewSession(surface Surface, opts Options) (*Session, error) {
	doc, err := surface.ToDocument()
	if err != nil {
		return nil, &SerializationError{Op: "serialize initial scene", Err: err}
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Session{
		surface:     surface,
		history:     NewHistory(doc, opts.HistoryLimit, opts.CoalesceWindow, opts.Now),
		pasteOffset: opts.PasteOffset,
		mirror:      opts.Mirror,
		log:         log.With("design", opts.DesignID),
	}
	s.saver = newSaver(saverConfig{
		persister: opts.Persister,
		designID:  opts.DesignID,
		capture:   s.captureForSave,
		delay:     opts.SaveDelay,
		retry:     opts.SaveRetry,
		timeout:   opts.SaveTimeout,
		afterFunc: opts.AfterFunc,
		log:       s.log,
		onSave:    opts.OnSave,
	})
	return s, nil
}

func (s *Session) begin(next State) error {
	switch s.state {
	case StateIdle:
		s.state = next
		return nil
	case StateClosed:
		return ErrClosed
	default:
		return ErrBusy
	}
}

func (s *Session) end() {
	if s.state != StateClosed {
		s.state = StateIdle
	}
}

// Execute runs one dispatched command.
func (s *Session) Execute(cmd Command) error {
	s.log.Debug("command", "cmd", cmd.String())
	switch cmd.Kind {
	case CmdDeleteSelection:
		return s.DeleteSelection()
	case CmdUndo:
		return s.Undo()
	case CmdRedo:
		return s.Redo()
	case CmdCopy:
		return s.Copy()
	case CmdPaste:
		return s.Paste()
	case CmdSave:
		return s.Save(true)
	case CmdSelectAll:
		return s.SelectAll()
	case CmdPanViewport:
		return s.Pan(cmd.Direction, cmd.Distance)
	default:
		return fmt.Errorf("unknown command %s", cmd)
	}
}

// Record snapshots the scene after a mutation made directly on the
// surface. See Mutate for the usual entry point.
func (s *Session) Record(skipCoalesce bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(StateMutating); err != nil {
		return err
	}
	defer s.end()
	return s.recordLocked(skipCoalesce)
}

func (s *Session) recordLocked(skipCoalesce bool) error {
	doc, err := s.surface.ToDocument()
	if err != nil {
		return &SerializationError{Op: "serialize scene", Err: err}
	}
	s.history.Record(doc, skipCoalesce)
	s.saver.Schedule()
	return nil
}

// Mutate runs fn against the surface and records the result. fn runs with
// the session unlocked but in the mutating state, so any command it
// triggers fails with ErrBusy instead of interleaving.
func (s *Session) Mutate(fn func(Surface) error, skipCoalesce bool) error {
	s.mu.Lock()
	if err := s.begin(StateMutating); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	err := s.runMutation(fn)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return ErrClosed
	}
	defer s.end()
	if err != nil {
		return err
	}
	s.surface.RenderAll()
	return s.recordLocked(skipCoalesce)
}

// runMutation calls fn and puts the session back to idle if it panics.
func (s *Session) runMutation(fn func(Surface) error) error {
	defer func() {
		if r := recover(); r != nil {
			s.mu.Lock()
			s.end()
			s.mu.Unlock()
			panic(r)
		}
	}()
	return fn(s.surface)
}

// Undo steps back one snapshot. At the start of history it does nothing.
func (s *Session) Undo() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(StateUndoing); err != nil {
		return err
	}
	defer s.end()

	prev := s.history.Index()
	doc, ok := s.history.Undo()
	if !ok {
		return nil
	}
	if err := s.applyLocked(doc); err != nil {
		s.history.seek(prev)
		return err
	}
	s.log.Debug("undo", "index", s.history.Index(), "len", s.history.Len())
	s.saver.Schedule()
	return nil
}

// Redo steps forward one snapshot. At the tip of history it does nothing.
func (s *Session) Redo() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(StateRedoing); err != nil {
		return err
	}
	defer s.end()

	prev := s.history.Index()
	doc, ok := s.history.Redo()
	if !ok {
		return nil
	}
	if err := s.applyLocked(doc); err != nil {
		s.history.seek(prev)
		return err
	}
	s.log.Debug("redo", "index", s.history.Index(), "len", s.history.Len())
	s.saver.Schedule()
	return nil
}

// applyLocked loads a snapshot and keeps whatever part of the selection
// still exists in it.
func (s *Session) applyLocked(doc Document) error {
	active := s.surface.ActiveObjects()
	if err := s.surface.LoadDocument(doc); err != nil {
		return &SerializationError{Op: "load snapshot", Err: err}
	}

	selectable := make(map[ObjectID]bool)
	for _, ref := range s.surface.Objects() {
		if ref.Selectable {
			selectable[ref.ID] = true
		}
	}
	var keep []ObjectID
	for _, id := range active {
		if selectable[id] {
			keep = append(keep, id)
		}
	}
	if len(keep) == 0 {
		s.surface.DiscardActiveObject()
	} else {
		s.surface.SetActiveObjects(keep)
	}
	s.surface.RenderAll()
	return nil
}

// Save persists the scene. With skip false it only (re)starts the
// debounce window; with skip true it writes now.
func (s *Session) Save(skip bool) error {
	return s.SaveContext(context.Background(), skip)
}

func (s *Session) SaveContext(ctx context.Context, skip bool) error {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return ErrClosed
	}
	if !skip {
		s.mu.Unlock()
		s.saver.Schedule()
		return nil
	}
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrBusy
	}
	s.mu.Unlock()
	return s.saver.SaveNow(ctx)
}

// captureForSave is the saver's read of the live document. It runs with
// the saver's write lock held.
func (s *Session) captureForSave() (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateClosed:
		return nil, ErrClosed
	case StateIdle:
	default:
		return nil, ErrBusy
	}
	doc, err := s.surface.ToDocument()
	if err != nil {
		return nil, &SerializationError{Op: "serialize scene", Err: err}
	}
	return doc, nil
}

// SavePending reports whether a deferred save is waiting to fire.
func (s *Session) SavePending() bool {
	return s.saver.Pending()
}

// Close cancels the pending save and drops history and clipboard. The
// session rejects every command afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return
	}
	s.saver.Close()
	s.state = StateClosed
	s.clipboard = ClipboardSlot{}
	s.history = NewHistory(nil, 0, 0, nil)
	s.log.Debug("session closed")
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// HistoryLen and HistoryIndex expose the undo cursor for status displays.
func (s *Session) HistoryLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Len()
}

func (s *Session) HistoryIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Index()
}

func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state != StateClosed && s.history.CanUndo()
}

func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state != StateClosed && s.history.CanRedo()
}
