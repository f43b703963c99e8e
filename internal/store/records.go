package store

import (
	"sort"
	"time"

	"github.com/Niansi/baby-tracker/internal/timefmt"
)

// AddRecord logs an event. The store assigns the id and creation time; the
// book defaults to the active one when the caller leaves it empty. Records
// are prepended so the in-memory log reads most-recent-first.
func (s *Store) AddRecord(r Record) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addRecordLocked(r)
}

func (s *Store) addRecordLocked(r Record) (*Record, error) {
	r.ID = newID()
	if r.BookID == "" {
		r.BookID = s.activeBook
	}
	r.CreatedAt = time.Now()
	if r.StartTime.IsZero() {
		r.StartTime = r.CreatedAt
	}
	s.records = append([]Record{r}, s.records...)
	if err := s.saveRecords(); err != nil {
		return nil, err
	}
	return &r, nil
}

// UpdateRecord replaces the record with the same id. Unknown ids are ignored.
func (s *Store) UpdateRecord(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == r.ID {
			s.records[i] = r
			return s.saveRecords()
		}
	}
	return nil
}

// DeleteRecord removes a record by id. Unknown ids are ignored.
func (s *Store) DeleteRecord(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return s.saveRecords()
		}
	}
	return nil
}

// LastRecord returns the record with the latest start time for the pair, or
// nil. Records sharing the exact same start time keep log order, so the most
// recently inserted one wins.
func (s *Store) LastRecord(bookID, activityID string) *Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRecordLocked(bookID, activityID)
}

func (s *Store) lastRecordLocked(bookID, activityID string) *Record {
	var last *Record
	for i := range s.records {
		r := &s.records[i]
		if r.BookID != bookID || r.ActivityID != activityID {
			continue
		}
		if last == nil || r.StartTime.After(last.StartTime) {
			last = r
		}
	}
	if last == nil {
		return nil
	}
	out := *last
	return &out
}

// RecordsForBook returns the book's records sorted by start time, newest
// first.
func (s *Store) RecordsForBook(bookID string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Record
	for _, r := range s.records {
		if r.BookID == bookID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out
}

// RecordsByDateRange filters the book's records to those whose start time
// falls on a calendar day in [start, end]; the end date is inclusive through
// its last millisecond.
func (s *Store) RecordsByDateRange(bookID string, start, end time.Time) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	lo := timefmt.StartOfDay(start)
	hi := timefmt.EndOfDay(end)
	var out []Record
	for _, r := range s.records {
		if r.BookID != bookID {
			continue
		}
		if r.StartTime.Before(lo) || r.StartTime.After(hi) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out
}
