package editor

import "bytes"

// ClipboardSlot holds the last copied fragment and how many times it has
// been pasted since.
type ClipboardSlot struct {
	fragment []byte
	pastes   int
}

func (c ClipboardSlot) Empty() bool { return len(c.fragment) == 0 }

// ClipboardMirror publishes copied objects as text outside the process, for
// example to the system clipboard. Failures are logged and ignored.
type ClipboardMirror func(text string) error

// Copy serializes the selection into the clipboard slot. With nothing
// selected it does nothing.
func (s *Session) Copy() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(StateMutating); err != nil {
		return err
	}
	defer s.end()

	ids := s.surface.ActiveObjects()
	if len(ids) == 0 {
		return nil
	}
	fragment, err := s.surface.SerializeObjects(ids)
	if err != nil {
		return &SerializationError{Op: "copy selection", Err: err}
	}
	s.clipboard = ClipboardSlot{fragment: bytes.Clone(fragment)}

	if s.mirror != nil {
		text := string(fragment)
		if ts, ok := s.surface.(TextSurface); ok {
			text = ts.ObjectsText(ids)
		}
		if err := s.mirror(text); err != nil {
			s.log.Warn("clipboard mirror failed", "error", err)
		}
	}
	s.log.Debug("copied selection", "count", len(ids))
	return nil
}

// Paste inserts the clipboard fragment, offset further on every paste so
// copies never land exactly on top of each other, and selects exactly the
// inserted objects.
func (s *Session) Paste() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(StateMutating); err != nil {
		return err
	}
	defer s.end()

	if s.clipboard.Empty() {
		return nil
	}
	offset := float64(s.clipboard.pastes+1) * s.pasteOffset
	ids, err := s.surface.InsertObjects(s.clipboard.fragment, offset, offset)
	if err != nil {
		return &SerializationError{Op: "paste clipboard", Err: err}
	}
	s.clipboard.pastes++
	s.surface.DiscardActiveObject()
	s.surface.SetActiveObjects(ids)
	s.surface.RenderAll()
	s.log.Debug("pasted clipboard", "count", len(ids), "offset", offset)
	return s.recordLocked(true)
}

// HasClipboard reports whether a paste would insert anything.
func (s *Session) HasClipboard() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.clipboard.Empty()
}
