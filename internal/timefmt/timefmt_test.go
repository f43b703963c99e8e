package timefmt

import (
	"testing"
	"time"
)

func TestClock(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00"},
		{59 * time.Second, "0:59"},
		{90 * time.Second, "1:30"},
		{time.Hour + 5*time.Minute + 3*time.Second, "1:05:03"},
		{-time.Second, "0:00"},
	}
	for _, c := range cases {
		if got := Clock(c.d); got != c.want {
			t.Errorf("Clock(%v) = %q, want %q", c.d, got, c.want)
		}
	}
}

func TestDurationChinese(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{-time.Second, "未开始"},
		{0, "1秒"},
		{500 * time.Millisecond, "1秒"},
		{45 * time.Second, "45秒"},
		{time.Minute, "1分钟"},
		{90 * time.Minute, "1小时30分钟"},
		{2 * time.Hour, "2小时"},
		{3 * time.Hour, "3小时"},
		{180 * time.Minute, "3小时"},
	}
	for _, c := range cases {
		if got := DurationChinese(c.d); got != c.want {
			t.Errorf("DurationChinese(%v) = %q, want %q", c.d, got, c.want)
		}
	}
}

func TestElapsedChineseHMS(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{-time.Second, "未知时间"},
		{5 * time.Second, "5秒"},
		{3*time.Minute + 5*time.Second, "3分钟5秒"},
		{time.Hour + 5*time.Second, "1小时0分钟5秒"},
		{10 * time.Minute, "10分钟0秒"},
	}
	for _, c := range cases {
		if got := ElapsedChineseHMS(c.d); got != c.want {
			t.Errorf("ElapsedChineseHMS(%v) = %q, want %q", c.d, got, c.want)
		}
	}
}

func TestDayBoundaries(t *testing.T) {
	at := time.Date(2025, 3, 14, 15, 9, 26, 0, time.Local)
	if got := DayKey(at); got != "2025-03-14" {
		t.Fatalf("DayKey = %q", got)
	}
	start := StartOfDay(at)
	if start.Hour() != 0 || start.Minute() != 0 || start.Second() != 0 {
		t.Fatalf("StartOfDay not midnight: %v", start)
	}
	end := EndOfDay(at)
	if end.Hour() != 23 || end.Minute() != 59 || end.Second() != 59 {
		t.Fatalf("EndOfDay wrong: %v", end)
	}
	if !end.After(at) {
		t.Fatal("EndOfDay should be after the instant")
	}
}

func TestDaysOld(t *testing.T) {
	now := time.Date(2025, 3, 14, 8, 0, 0, 0, time.Local)
	cases := []struct {
		start time.Time
		want  int
	}{
		{now, 0},
		{now.AddDate(0, 0, -1), 1},
		// late-evening birth still counts as one full day the next morning
		{time.Date(2025, 3, 13, 23, 30, 0, 0, time.Local), 1},
		{now.AddDate(0, 0, -108), 108},
		{now.AddDate(0, 0, 3), 0},
	}
	for _, c := range cases {
		if got := DaysOld(c.start, now); got != c.want {
			t.Errorf("DaysOld(%v) = %d, want %d", c.start, got, c.want)
		}
	}
}
