package session

// Selection engine: pure logic over (Captured, Selected, Cursor). Fully
// deterministic for a given Next/Prev/Shutter sequence, so selection flows
// can be replayed in tests.

// MoveCursor moves the selection cursor delta steps, cyclic over the
// captured photos.
func (s *Session) MoveCursor(delta int) {
	n := len(s.Captured)
	if n == 0 {
		return
	}
	s.Cursor = ((s.Cursor+delta)%n + n) % n
}

// Toggle flips membership of the cursor's photo in the selection. A photo is
// removed unconditionally; adding is refused once the template's slot count
// is reached, so the cap never blocks deselection. Reports whether the
// selection changed.
func (s *Session) Toggle() bool {
	for i, idx := range s.Selected {
		if idx == s.Cursor {
			s.Selected = append(s.Selected[:i], s.Selected[i+1:]...)
			return true
		}
	}
	if s.Template == nil || len(s.Selected) >= s.Template.Slots {
		return false
	}
	s.Selected = append(s.Selected, s.Cursor)
	return true
}

// SelectionComplete reports whether exactly slotCount photos are selected.
func (s *Session) SelectionComplete() bool {
	return s.Template != nil && len(s.Selected) == s.Template.Slots
}

// SelectedPaths returns the selected photo paths in selection order, the
// order the composition engine fills template slots.
func (s *Session) SelectedPaths() []string {
	paths := make([]string, len(s.Selected))
	for i, idx := range s.Selected {
		paths[i] = s.Captured[idx].Path
	}
	return paths
}

// IsSelected reports whether photo index i is part of the selection.
func (s *Session) IsSelected(i int) bool {
	for _, idx := range s.Selected {
		if idx == i {
			return true
		}
	}
	return false
}
