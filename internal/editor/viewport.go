package editor

// panDelta converts a direction and distance to a translation.
func panDelta(dir Direction, distance float64) (dx, dy float64) {
	switch dir {
	case DirUp:
		return 0, -distance
	case DirDown:
		return 0, distance
	case DirLeft:
		return -distance, 0
	case DirRight:
		return distance, 0
	}
	return 0, 0
}

// Pan moves the viewport and requests a render. Panning is never recorded
// in history.
func (s *Session) Pan(dir Direction, distance float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(StateMutating); err != nil {
		return err
	}
	defer s.end()

	dx, dy := panDelta(dir, distance)
	s.surface.PanBy(dx, dy)
	s.surface.RenderAll()
	return nil
}
