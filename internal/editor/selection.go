package editor

// SelectAll makes every selectable object active, replacing the current
// selection. Guides and other non-selectable objects are left out.
func (s *Session) SelectAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(StateMutating); err != nil {
		return err
	}
	defer s.end()

	s.surface.DiscardActiveObject()
	var ids []ObjectID
	for _, ref := range s.surface.Objects() {
		if ref.Selectable {
			ids = append(ids, ref.ID)
		}
	}
	if len(ids) > 0 {
		s.surface.SetActiveObjects(ids)
	}
	s.surface.RenderAll()
	return nil
}

// DeleteSelection removes the active objects and records one history step.
// An empty selection leaves history untouched.
func (s *Session) DeleteSelection() error {
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
	s.surface.Remove(ids...)
	s.surface.DiscardActiveObject()
	s.surface.RenderAll()
	s.log.Debug("deleted selection", "count", len(ids))
	return s.recordLocked(true)
}

// Selection returns the active object ids.
func (s *Session) Selection() []ObjectID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.surface.ActiveObjects()
}

// Select replaces the selection with ids. Selection changes are never
// recorded.
func (s *Session) Select(ids ...ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(StateMutating); err != nil {
		return err
	}
	defer s.end()

	s.surface.DiscardActiveObject()
	if len(ids) > 0 {
		s.surface.SetActiveObjects(ids)
	}
	s.surface.RenderAll()
	return nil
}

// ClearSelection empties the selection.
func (s *Session) ClearSelection() error {
	return s.Select()
}
