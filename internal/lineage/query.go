package lineage

// indexOf must be called with mu held.
func (s *Store) indexOf(id string) int {
	for i := range s.events {
		if s.events[i].ID == id {
			return i
		}
	}
	return -1
}

// Events returns a copy of the sequence in creation order.
func (s *Store) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Len returns the number of events.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// GetByID returns the event with the given id.
func (s *Store) GetByID(id string) (Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.events[i], true
	}
	return Event{}, false
}

// GetLatest returns the most recently appended event, which is not
// necessarily the deepest event of any branch.
func (s *Store) GetLatest() (Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.events) == 0 {
		return Event{}, false
	}
	return s.events[len(s.events)-1], true
}

// GetInitial returns the first event in the sequence.
func (s *Store) GetInitial() (Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.events) == 0 {
		return Event{}, false
	}
	return s.events[0], true
}

// GetPreviousEvent returns the parent of the event with the given id.
func (s *Store) GetPreviousEvent(id string) (Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 || s.events[i].ParentID == nil {
		return Event{}, false
	}
	if p := s.indexOf(*s.events[i].ParentID); p >= 0 {
		return s.events[p], true
	}
	return Event{}, false
}

// GetByVersion returns the first event carrying version n. Versions are
// creation counters and may repeat after a legacy migration.
func (s *Store) GetByVersion(n int) (Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.events {
		if e.Version == n {
			return e, true
		}
	}
	return Event{}, false
}

// GetPreviousContent returns the snapshot stored immediately before the
// latest append, for "what changed in the last save" diffs.
func (s *Store) GetPreviousContent() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.events) < 2 {
		return "", false
	}
	return s.events[len(s.events)-2].Content, true
}

// Ancestors returns the parent chain of id, nearest first, stopping at a
// root, a dangling reference or a cycle.
func (s *Store) Ancestors(id string) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var chain []Event
	seen := map[string]bool{id: true}
	i := s.indexOf(id)
	for i >= 0 && s.events[i].ParentID != nil {
		pid := *s.events[i].ParentID
		if seen[pid] {
			break
		}
		seen[pid] = true
		i = s.indexOf(pid)
		if i < 0 {
			break
		}
		chain = append(chain, s.events[i])
	}
	return chain
}

// Children returns the events whose parent is id, in creation order.
func (s *Store) Children(id string) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, e := range s.events {
		if e.ParentID != nil && *e.ParentID == id {
			out = append(out, e)
		}
	}
	return out
}

// Heads returns events that have no children, in creation order.
func (s *Store) Heads() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hasChild := make(map[string]bool, len(s.events))
	for _, e := range s.events {
		if e.ParentID != nil {
			hasChild[*e.ParentID] = true
		}
	}
	var out []Event
	for _, e := range s.events {
		if !hasChild[e.ID] {
			out = append(out, e)
		}
	}
	return out
}
