package store

import (
	"math"
	"time"
)

// The timer engine is a per-(book, activity) state machine with two states:
// idle (no entry, or IsRunning false) and running. Its state is persisted on
// every transition so a running timer survives a relaunch; elapsed time is
// always recomputed from the persisted start instant, never stored.

// TimerFor returns the persisted state for the pair; the zero value means
// idle.
func (s *Store) TimerFor(bookID, activityID string) TimerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timers[bookID][activityID]
}

// RunningTimers returns the running entries for one book, keyed by activity.
func (s *Store) RunningTimers(bookID string) map[string]TimerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]TimerState{}
	for id, ts := range s.timers[bookID] {
		if ts.IsRunning {
			out[id] = ts
		}
	}
	return out
}

// StartTimer transitions the pair to running. The activity must be attached
// to the book and visible. Starting an already running timer is a no-op and
// does not reset the start instant, so racing starts from two views collapse
// into one.
func (s *Store) StartTimer(bookID, activityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.bookByID(bookID)
	if b == nil {
		return ErrBookNotFound
	}
	attached := false
	for _, cfg := range b.Configs {
		if cfg.ActivityID == activityID && cfg.Visible {
			attached = true
			break
		}
	}
	if !attached {
		return ErrNotAttached
	}

	if s.timers[bookID][activityID].IsRunning {
		return nil
	}
	if s.timers[bookID] == nil {
		s.timers[bookID] = map[string]TimerState{}
	}
	now := time.Now()
	s.timers[bookID][activityID] = TimerState{IsRunning: true, StartedAt: &now}
	return s.saveTimers()
}

// StopTimer transitions the pair to idle and logs the completed span as a
// duration record: start from the persisted instant, end now, duration as
// measured by the caller's display tick, value in whole minutes (rounded, so
// sub-30-second spans record as 0). Stopping an idle timer is a no-op and
// yields no record.
func (s *Store) StopTimer(bookID, activityID string, elapsed time.Duration) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.timers[bookID][activityID]
	if !ts.IsRunning || ts.StartedAt == nil {
		return nil, nil
	}
	if elapsed < 0 {
		elapsed = 0
	}

	unit := "分钟"
	if a := s.activityByID(activityID); a != nil && a.Unit != "" {
		unit = a.Unit
	}
	end := time.Now()
	rec := Record{
		BookID:     bookID,
		ActivityID: activityID,
		Kind:       KindDuration,
		Value:      math.Round(elapsed.Minutes()),
		Unit:       unit,
		StartTime:  *ts.StartedAt,
		EndTime:    &end,
		DurationMs: elapsed.Milliseconds(),
	}

	s.timers[bookID][activityID] = TimerState{}
	if err := s.saveTimers(); err != nil {
		return nil, err
	}
	return s.addRecordLocked(rec)
}

// Elapsed computes the live elapsed time of a timer state against the wall
// clock. Arbitrarily long spans are valid; a timer left running across a long
// shutdown simply reports the full span.
func Elapsed(ts TimerState) time.Duration {
	if !ts.IsRunning || ts.StartedAt == nil {
		return 0
	}
	return time.Since(*ts.StartedAt)
}
