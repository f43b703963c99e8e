package store

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// migrate upgrades whatever generation of state load() produced to the
// current normalized shape. It runs once at open and is idempotent: already
// normalized state passes through untouched and nothing is rewritten.
//
// Generation 1 kept a full embedded activity list inside every book.
// Generation 2 keeps one global catalog plus per-book ActivityConfig entries.
func (s *Store) migrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false

	if s.migrateEmbedded() {
		changed = true
	}

	// Fresh install, or the books blob was corrupt: seed a single default
	// book with the default catalog fully attached.
	if len(s.books) == 0 {
		if len(s.activities) == 0 {
			s.activities = DefaultActivities()
		}
		start := time.Now().AddDate(0, 0, -108)
		s.books = []Book{{
			ID:        "default-anne",
			Name:      defaultBookName,
			Icon:      "👶",
			Color:     "orange",
			StartDate: start.Format("2006-01-02"),
			Configs:   defaultConfigs(s.activities),
		}}
		changed = true
	}

	if !s.validBook(s.activeBook) {
		s.activeBook = s.books[0].ID
		changed = true
	}

	if !changed {
		return nil
	}
	if err := s.saveActivities(); err != nil {
		return err
	}
	if err := s.saveBooks(); err != nil {
		return err
	}
	return s.saveActiveBook()
}

// migrateEmbedded converts generation-1 books in place. For each embedded
// activity the first occurrence of an id wins the catalog slot; every
// occurrence still yields that book's ActivityConfig, with absent per-book
// fields defaulted (visible, not highlighted, positional order).
func (s *Store) migrateEmbedded() bool {
	changed := false
	seen := make(map[string]bool, len(s.activities))
	for _, a := range s.activities {
		seen[a.ID] = true
	}

	for i := range s.books {
		b := &s.books[i]
		if len(b.Legacy) == 0 || len(b.Configs) > 0 {
			b.Legacy = nil
			continue
		}
		changed = true

		configs := make([]ActivityConfig, 0, len(b.Legacy))
		for idx, la := range b.Legacy {
			if la.ID != "" && !seen[la.ID] {
				seen[la.ID] = true
				s.activities = append(s.activities, Activity{
					ID:           la.ID,
					Name:         la.Name,
					Kind:         la.Kind,
					Unit:         la.Unit,
					Icon:         la.Icon,
					Color:        la.Color,
					HasLiveTimer: la.IsTimer,
				})
			}
			cfg := ActivityConfig{ActivityID: la.ID, Visible: true, Order: idx}
			if la.IsActive != nil {
				cfg.Visible = *la.IsActive
			}
			if la.IsHighlight != nil {
				cfg.Highlighted = *la.IsHighlight
			}
			if la.Order != nil {
				cfg.Order = *la.Order
			}
			configs = append(configs, cfg)
		}
		sort.SliceStable(configs, func(x, y int) bool { return configs[x].Order < configs[y].Order })
		b.Configs = configs
		b.Legacy = nil
	}
	return changed
}

func (s *Store) validBook(id string) bool {
	for _, b := range s.books {
		if b.ID == id {
			return true
		}
	}
	return false
}

func newID() string {
	return uuid.NewString()
}
