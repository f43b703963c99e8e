package store

import (
	"sort"
	"time"
)

// Books returns all books in their stored order.
func (s *Store) Books() []Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Book, len(s.books))
	copy(out, s.books)
	return out
}

// ActiveBook returns the currently selected book. At least one book always
// exists, so this never fails.
func (s *Store) ActiveBook() Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b := s.bookByID(s.activeBook); b != nil {
		return *b
	}
	return s.books[0]
}

// SetActiveBook switches the process-wide active book.
func (s *Store) SetActiveBook(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bookByID(id) == nil {
		return ErrBookNotFound
	}
	s.activeBook = id
	return s.saveActiveBook()
}

// AddBook creates a book with every catalog activity attached in the default
// configuration and makes it active.
func (s *Store) AddBook(name, icon, color, startDate string) (*Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if startDate == "" {
		startDate = time.Now().Format("2006-01-02")
	}
	b := Book{
		ID:        newID(),
		Name:      name,
		Icon:      icon,
		Color:     color,
		StartDate: startDate,
		Configs:   defaultConfigs(s.activities),
	}
	s.books = append(s.books, b)
	s.activeBook = b.ID
	if err := s.saveBooks(); err != nil {
		return nil, err
	}
	if err := s.saveActiveBook(); err != nil {
		return nil, err
	}
	return &b, nil
}

// UpdateBook edits a book's profile fields. Configs are untouched.
func (s *Store) UpdateBook(id, name, icon, color, startDate string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.bookByID(id)
	if b == nil {
		return ErrBookNotFound
	}
	b.Name = name
	b.Icon = icon
	b.Color = color
	b.StartDate = startDate
	return s.saveBooks()
}

// DeleteBook removes a book together with its records and timer states. The
// last remaining book cannot be deleted; deleting the active book hands the
// active slot to the first survivor.
func (s *Store) DeleteBook(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.books) <= 1 {
		return ErrLastBook
	}
	idx := -1
	for i := range s.books {
		if s.books[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrBookNotFound
	}

	s.books = append(s.books[:idx], s.books[idx+1:]...)

	kept := s.records[:0]
	for _, r := range s.records {
		if r.BookID != id {
			kept = append(kept, r)
		}
	}
	s.records = kept
	delete(s.timers, id)

	if s.activeBook == id {
		s.activeBook = s.books[0].ID
		if err := s.saveActiveBook(); err != nil {
			return err
		}
	}
	if err := s.saveBooks(); err != nil {
		return err
	}
	if err := s.saveRecords(); err != nil {
		return err
	}
	return s.saveTimers()
}

// BookActivities joins the book's configs against the catalog in display
// order. Configs pointing at a deleted activity render as a placeholder
// rather than being dropped or repaired.
func (s *Store) BookActivities(bookID string) []BookActivity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bookActivitiesLocked(bookID)
}

func (s *Store) bookActivitiesLocked(bookID string) []BookActivity {
	b := s.bookByID(bookID)
	if b == nil {
		return nil
	}
	out := make([]BookActivity, 0, len(b.Configs))
	for _, cfg := range b.Configs {
		a := s.activityByID(cfg.ActivityID)
		if a == nil {
			ph := unknownActivity(cfg.ActivityID)
			a = &ph
		}
		out = append(out, BookActivity{
			Activity:    *a,
			Visible:     cfg.Visible,
			Highlighted: cfg.Highlighted,
			Order:       cfg.Order,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

func (s *Store) bookByID(id string) *Book {
	for i := range s.books {
		if s.books[i].ID == id {
			return &s.books[i]
		}
	}
	return nil
}

func (s *Store) activityByID(id string) *Activity {
	for i := range s.activities {
		if s.activities[i].ID == id {
			return &s.activities[i]
		}
	}
	return nil
}
