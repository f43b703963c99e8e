package store

import (
	"time"

	"github.com/Niansi/baby-tracker/internal/timefmt"
)

// Reminder is one row of the at-a-glance takeover view: a highlighted
// activity together with how long ago it last happened (or for how long it
// has been running).
type Reminder struct {
	Activity      Activity
	Live          bool          // a live timer is running right now
	NoRecord      bool          // never logged and not running
	Elapsed       time.Duration // since the timer start, or since the last record's start
	FormattedTime string
	Description   string // e.g. "持续 1小时30分钟" or "120 ml"
}

// Reminders computes the reminder rows for the active book: up to 3
// highlighted activities in display order. A row is live when the pair's
// timer is running and the activity is a duration kind with a live timer;
// otherwise it falls back to the last record, and failing that to a
// "no record yet" state that is distinct from any numeric value. Callers
// re-invoke this on every display tick; nothing here is cached.
func (s *Store) Reminders() []Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()

	bookID := s.activeBook
	now := time.Now()
	var out []Reminder
	for _, ba := range s.bookActivitiesLocked(bookID) {
		if !ba.Highlighted {
			continue
		}
		if len(out) == 3 {
			break
		}

		ts := s.timers[bookID][ba.ID]
		if ts.IsRunning && ts.StartedAt != nil && ba.Kind == KindDuration && ba.HasLiveTimer {
			elapsed := now.Sub(*ts.StartedAt)
			formatted := timefmt.DurationChinese(elapsed)
			if s.showSeconds {
				formatted = timefmt.ElapsedChineseHMS(elapsed)
			}
			out = append(out, Reminder{
				Activity:      ba.Activity,
				Live:          true,
				Elapsed:       elapsed,
				FormattedTime: formatted,
			})
			continue
		}

		last := s.lastRecordLocked(bookID, ba.ID)
		if last == nil {
			out = append(out, Reminder{
				Activity:      ba.Activity,
				NoRecord:      true,
				FormattedTime: "暂无记录",
			})
			continue
		}

		elapsed := now.Sub(last.StartTime)
		desc := FormatValue(last.Value) + " " + last.Unit
		if last.Kind == KindDuration {
			desc = "持续 " + timefmt.DurationChinese(last.Duration())
		}
		out = append(out, Reminder{
			Activity:      ba.Activity,
			Elapsed:       elapsed,
			FormattedTime: timefmt.DurationChinese(elapsed),
			Description:   desc,
		})
	}
	return out
}

// HasReminderData reports whether the takeover view has anything worth
// showing: at least one highlighted activity that has ever produced a record
// or is currently timing. The inactivity watchdog only arms when this is
// true, so activities that have literally never been used don't nag.
func (s *Store) HasReminderData() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	bookID := s.activeBook
	for _, ba := range s.bookActivitiesLocked(bookID) {
		if !ba.Highlighted {
			continue
		}
		ts := s.timers[bookID][ba.ID]
		if ts.IsRunning && ba.Kind == KindDuration && ba.HasLiveTimer {
			return true
		}
		if s.lastRecordLocked(bookID, ba.ID) != nil {
			return true
		}
	}
	return false
}
