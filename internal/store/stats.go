package store

import (
	"sort"
	"time"

	"github.com/Niansi/baby-tracker/internal/timefmt"
)

// The aggregations below take a record slice rather than reading the log so
// callers can feed them an already filtered range. They rely on each record's
// snapshotted Kind, never on the current catalog.

// DailyCount is the number of records logged on one calendar day.
type DailyCount struct {
	Date  string
	Count int
}

// DailyCounts groups records by the calendar day of their start time,
// ascending by date. Days without records are absent.
func DailyCounts(records []Record) []DailyCount {
	byDay := map[string]int{}
	for _, r := range records {
		byDay[timefmt.DayKey(r.StartTime)]++
	}
	out := make([]DailyCount, 0, len(byDay))
	for day, n := range byDay {
		out = append(out, DailyCount{Date: day, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// ActivityStats aggregates one activity's records. Duration records feed
// TotalDurationMs, value records feed TotalValue, count records only Count.
type ActivityStats struct {
	Count           int
	TotalDurationMs int64
	TotalValue      float64
}

// PerActivityStats aggregates records per activity id.
func PerActivityStats(records []Record) map[string]ActivityStats {
	out := map[string]ActivityStats{}
	for _, r := range records {
		st := out[r.ActivityID]
		st.Count++
		switch r.Kind {
		case KindDuration:
			st.TotalDurationMs += r.DurationMs
		case KindValue:
			st.TotalValue += r.Value
		}
		out[r.ActivityID] = st
	}
	return out
}

// TrendPoint is one day of the cumulative trend: per activity id, the running
// total of record values up to and including that day.
type TrendPoint struct {
	Date   string
	Totals map[string]float64
}

// CumulativeTrend produces one point per calendar day in [start, end], every
// day present even without activity, covering records of the given kind. The
// accumulated quantity is the record value (1 per count record, the amount
// for value records, minutes for duration records). Points carry running
// totals rather than per-day deltas; the series drives an accumulating chart
// and is non-decreasing by construction.
func CumulativeTrend(records []Record, kind Kind, start, end time.Time) []TrendPoint {
	perDay := map[string]map[string]float64{}
	for _, r := range records {
		if r.Kind != kind {
			continue
		}
		day := timefmt.DayKey(r.StartTime)
		if perDay[day] == nil {
			perDay[day] = map[string]float64{}
		}
		perDay[day][r.ActivityID] += r.Value
	}

	running := map[string]float64{}
	var out []TrendPoint
	last := timefmt.StartOfDay(end)
	for d := timefmt.StartOfDay(start); !d.After(last); d = d.AddDate(0, 0, 1) {
		day := timefmt.DayKey(d)
		for id, v := range perDay[day] {
			running[id] += v
		}
		totals := make(map[string]float64, len(running))
		for id, v := range running {
			totals[id] = v
		}
		out = append(out, TrendPoint{Date: day, Totals: totals})
	}
	return out
}

// HourlyHeatmap buckets records by the local hour of day of their start time,
// aggregated across all days in the given set, counting per activity id.
func HourlyHeatmap(records []Record) [24]map[string]int {
	var out [24]map[string]int
	for i := range out {
		out[i] = map[string]int{}
	}
	for _, r := range records {
		out[r.StartTime.Local().Hour()][r.ActivityID]++
	}
	return out
}
