// Package timefmt holds the time and duration formatting helpers shared by the
// store, export and TUI layers. Display strings are always derived at read time
// from instants; nothing here is ever persisted.
package timefmt

import (
	"fmt"
	"time"
)

const day = 24 * time.Hour

// Clock formats a duration as H:MM:SS, dropping the hour part while it is zero.
func Clock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// DurationChinese renders a duration in hours and minutes, e.g. "1小时25分钟".
// Sub-minute durations render in seconds so a fresh record never reads as zero.
func DurationChinese(d time.Duration) string {
	if d < 0 {
		return "未开始"
	}
	if d < time.Minute {
		secs := int(d.Round(time.Second).Seconds())
		if secs < 1 {
			secs = 1
		}
		return fmt.Sprintf("%d秒", secs)
	}
	totalMinutes := int(d.Minutes())
	h := totalMinutes / 60
	m := totalMinutes % 60
	out := ""
	if h > 0 {
		out += fmt.Sprintf("%d小时", h)
	}
	if m > 0 {
		out += fmt.Sprintf("%d分钟", m)
	}
	if out == "" {
		return "不足1分钟"
	}
	return out
}

// ElapsedChineseHMS renders a duration down to seconds, e.g. "1小时3分钟5秒".
// Used for live tickers where the seconds digit carries the "it's alive" signal.
func ElapsedChineseHMS(d time.Duration) string {
	if d < 0 {
		return "未知时间"
	}
	total := int(d.Seconds())
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	out := ""
	if h > 0 {
		out += fmt.Sprintf("%d小时", h)
	}
	if m > 0 || h > 0 {
		out += fmt.Sprintf("%d分钟", m)
	}
	out += fmt.Sprintf("%d秒", s)
	return out
}

// DayKey returns the calendar date of t in local time as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.Local().Format("2006-01-02")
}

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	t = t.Local()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable millisecond of t's local calendar day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).Add(day - time.Millisecond)
}

// DaysOld returns the whole calendar days elapsed since start, never negative.
func DaysOld(start, now time.Time) int {
	d := StartOfDay(now).Sub(StartOfDay(start))
	days := int(d / day)
	if days < 0 {
		return 0
	}
	return days
}
