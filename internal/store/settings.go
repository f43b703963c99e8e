package store

// ShowSeconds reports whether live reminder timers render down to seconds.
func (s *Store) ShowSeconds() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.showSeconds
}

// SetShowSeconds persists the reminder time-format granularity.
func (s *Store) SetShowSeconds(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showSeconds = on
	return s.putKey(keyShowSeconds, s.showSeconds)
}
