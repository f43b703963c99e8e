package store

import "sort"

// Activities returns the global catalog.
func (s *Store) Activities() []Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Activity, len(s.activities))
	copy(out, s.activities)
	return out
}

// UsageCount reports how many books have the activity attached.
func (s *Store) UsageCount(activityID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.books {
		for _, cfg := range b.Configs {
			if cfg.ActivityID == activityID {
				n++
				break
			}
		}
	}
	return n
}

// AddActivity inserts a catalog entry and attaches it to every existing book,
// visible and unhighlighted, after that book's current activities. New
// activities appearing everywhere is the intended default, not a side effect.
func (s *Store) AddActivity(def Activity) (*Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	def.ID = newID()
	if def.Kind != KindDuration {
		def.HasLiveTimer = false
	}
	s.activities = append(s.activities, def)

	for i := range s.books {
		b := &s.books[i]
		b.Configs = append(b.Configs, ActivityConfig{
			ActivityID: def.ID,
			Visible:    true,
			Order:      maxOrder(b.Configs) + 1,
		})
	}
	if err := s.saveActivities(); err != nil {
		return nil, err
	}
	if err := s.saveBooks(); err != nil {
		return nil, err
	}
	return &def, nil
}

// UpdateActivity replaces the catalog entry's editable fields. Book configs
// and historical records are untouched.
func (s *Store) UpdateActivity(id string, def Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.activityByID(id)
	if a == nil {
		return ErrActivityNotFound
	}
	a.Name = def.Name
	a.Kind = def.Kind
	a.Unit = def.Unit
	a.Icon = def.Icon
	a.Color = def.Color
	a.HasLiveTimer = def.Kind == KindDuration && def.HasLiveTimer
	return s.saveActivities()
}

// DeleteActivity removes a catalog entry. Refused while any book still
// references it; detach it from every book first.
func (s *Store) DeleteActivity(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.books {
		for _, cfg := range b.Configs {
			if cfg.ActivityID == id {
				return ErrActivityInUse
			}
		}
	}
	for i := range s.activities {
		if s.activities[i].ID == id {
			s.activities = append(s.activities[:i], s.activities[i+1:]...)
			return s.saveActivities()
		}
	}
	return ErrActivityNotFound
}

// AttachActivity adds an activity to a book after its current activities.
// Attaching an already attached activity is a no-op.
func (s *Store) AttachActivity(bookID, activityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.bookByID(bookID)
	if b == nil {
		return ErrBookNotFound
	}
	if s.activityByID(activityID) == nil {
		return ErrActivityNotFound
	}
	for _, cfg := range b.Configs {
		if cfg.ActivityID == activityID {
			return nil
		}
	}
	b.Configs = append(b.Configs, ActivityConfig{
		ActivityID: activityID,
		Visible:    true,
		Order:      maxOrder(b.Configs) + 1,
	})
	return s.saveBooks()
}

// DetachActivity removes an activity from one book, clearing any timer state
// for the pair. Detaching an absent config is a no-op.
func (s *Store) DetachActivity(bookID, activityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.bookByID(bookID)
	if b == nil {
		return ErrBookNotFound
	}
	for i, cfg := range b.Configs {
		if cfg.ActivityID == activityID {
			b.Configs = append(b.Configs[:i], b.Configs[i+1:]...)
			if byActivity, ok := s.timers[bookID]; ok {
				delete(byActivity, activityID)
				if err := s.saveTimers(); err != nil {
					return err
				}
			}
			return s.saveBooks()
		}
	}
	return nil
}

// SetHighlight toggles the book's highlight flag for one activity. A book
// shows at most 3 highlighted activities; the 4th enable is rejected.
func (s *Store) SetHighlight(bookID, activityID string, on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.bookByID(bookID)
	if b == nil {
		return ErrBookNotFound
	}
	var target *ActivityConfig
	count := 0
	for i := range b.Configs {
		if b.Configs[i].Highlighted {
			count++
		}
		if b.Configs[i].ActivityID == activityID {
			target = &b.Configs[i]
		}
	}
	if target == nil {
		return ErrNotAttached
	}
	if on && !target.Highlighted && count >= 3 {
		return ErrHighlightLimit
	}
	if target.Highlighted == on {
		return nil
	}
	target.Highlighted = on
	return s.saveBooks()
}

// SetVisible toggles whether the activity appears on the book's home grid.
func (s *Store) SetVisible(bookID, activityID string, on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.bookByID(bookID)
	if b == nil {
		return ErrBookNotFound
	}
	for i := range b.Configs {
		if b.Configs[i].ActivityID == activityID {
			b.Configs[i].Visible = on
			return s.saveBooks()
		}
	}
	return ErrNotAttached
}

// Reorder moves a visible activity from one position to another within the
// book's order-sorted visible subsequence. Visible entries get dense fresh
// order values; hidden entries keep their relative order but are pushed after
// the visible ones, so they never interleave on screen. Other books are
// unaffected. Out-of-range indices are absorbed as no-ops.
func (s *Store) Reorder(bookID string, from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.bookByID(bookID)
	if b == nil {
		return ErrBookNotFound
	}

	sorted := make([]ActivityConfig, len(b.Configs))
	copy(sorted, b.Configs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	var visible, hidden []ActivityConfig
	for _, cfg := range sorted {
		if cfg.Visible {
			visible = append(visible, cfg)
		} else {
			hidden = append(hidden, cfg)
		}
	}
	if from < 0 || from >= len(visible) || to < 0 || to >= len(visible) || from == to {
		return nil
	}

	moved := visible[from]
	visible = append(visible[:from], visible[from+1:]...)
	visible = append(visible[:to], append([]ActivityConfig{moved}, visible[to:]...)...)

	next := 0
	for i := range visible {
		visible[i].Order = next
		next++
	}
	for i := range hidden {
		hidden[i].Order = next
		next++
	}
	b.Configs = append(visible, hidden...)
	return s.saveBooks()
}

func maxOrder(configs []ActivityConfig) int {
	max := -1
	for _, cfg := range configs {
		if cfg.Order > max {
			max = cfg.Order
		}
	}
	return max
}
