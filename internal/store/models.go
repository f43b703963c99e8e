package store

import (
	"strconv"
	"time"

	"github.com/Niansi/baby-tracker/internal/timefmt"
)

// Kind classifies how an activity is measured.
type Kind string

const (
	KindCount    Kind = "count"    // single tap events, value is always 1
	KindValue    Kind = "value"    // measured amount, e.g. 120 ml
	KindDuration Kind = "duration" // span of time, value is minutes
)

// Activity is a catalog entry shared by all books. Per-book behavior
// (visibility, highlight, ordering) lives in ActivityConfig instead.
type Activity struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Kind         Kind   `json:"kind"`
	Unit         string `json:"unit"`
	Icon         string `json:"icon"`
	Color        string `json:"color"`
	HasLiveTimer bool   `json:"hasLiveTimer"` // only meaningful for KindDuration
}

// ActivityConfig binds one catalog activity to one book.
type ActivityConfig struct {
	ActivityID  string `json:"activityId"`
	Visible     bool   `json:"isActive"`
	Highlighted bool   `json:"isHighlight"`
	Order       int    `json:"order"`
}

// Book is one tracked profile. Configs are kept sorted by Order.
type Book struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Icon      string           `json:"icon"`
	Color     string           `json:"color"`
	StartDate string           `json:"startDate"` // YYYY-MM-DD, day 0 for age display
	Configs   []ActivityConfig `json:"activityConfigs,omitempty"`

	// Legacy carries the embedded activity list of generation-1 blobs.
	// It is consumed by the load-time migration and never written back.
	Legacy []legacyActivity `json:"activityTypes,omitempty"`
}

// legacyActivity is the generation-1 embedded shape: catalog fields and
// per-book fields inlined together. Optional fields are pointers so the
// migration can tell "absent" from "false"/"zero".
type legacyActivity struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Kind        Kind   `json:"type"`
	Unit        string `json:"unit"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	IsTimer     bool   `json:"isTimer"`
	IsActive    *bool  `json:"isActive"`
	IsHighlight *bool  `json:"isHighlight"`
	Order       *int   `json:"order"`
}

// Record is one logged event. Kind and Unit are snapshots taken at creation
// time; later catalog edits never rewrite history.
type Record struct {
	ID         string     `json:"id"`
	BookID     string     `json:"bookId"`
	ActivityID string     `json:"activityId"`
	Kind       Kind       `json:"kind"`
	Value      float64    `json:"value"`
	Unit       string     `json:"unit"`
	StartTime  time.Time  `json:"startTime"`
	EndTime    *time.Time `json:"endTime,omitempty"`
	DurationMs int64      `json:"durationMs,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// TimerState is the persisted per-(book, activity) timer. It survives process
// restarts so an in-progress sleep is still ticking after a relaunch.
type TimerState struct {
	IsRunning bool       `json:"isRunning"`
	StartedAt *time.Time `json:"startedAt,omitempty"`
}

// BookActivity is the read-side join of a catalog entry with its per-book
// config, in display order.
type BookActivity struct {
	Activity
	Visible     bool
	Highlighted bool
	Order       int
}

// Icon and color choices offered by the editing forms.
var (
	CustomIcons = []string{
		"👶", "👧", "👦", "🍼", "🐣", "🧸", "🌙", "☕", "🚬", "💩", "💧",
		"🍎", "🏃", "📚", "💊", "🧘", "💸", "🐶", "🐱", "🧷", "🤱", "🛁",
	}
	CustomColors = []string{
		"blue", "indigo", "purple", "orange", "green", "red", "yellow", "pink", "amber", "gray",
	}
)

const (
	defaultBookName = "点点 (默认本)"
	sleepActivityID = "a-sleep"
)

// DefaultActivities returns the seed catalog for a fresh install.
func DefaultActivities() []Activity {
	return []Activity{
		{ID: "a-feeding-bottle", Name: "奶瓶喂养", Kind: KindValue, Unit: "ml", Icon: "🍼", Color: "blue"},
		{ID: "a-feeding-breast", Name: "母乳亲喂", Kind: KindDuration, Unit: "分钟", Icon: "🤱", Color: "indigo", HasLiveTimer: true},
		{ID: sleepActivityID, Name: "睡觉", Kind: KindDuration, Unit: "分钟", Icon: "🌙", Color: "purple", HasLiveTimer: true},
		{ID: "a-poop", Name: "臭臭", Kind: KindCount, Unit: "次", Icon: "💩", Color: "amber"},
		{ID: "a-diaper", Name: "换尿片", Kind: KindCount, Unit: "次", Icon: "🧷", Color: "yellow"},
		{ID: "a-smoke", Name: "抽烟", Kind: KindCount, Unit: "次", Icon: "🚬", Color: "gray"},
	}
}

// defaultConfigs attaches every catalog entry, all visible, with the sleep
// activity (or failing that the first live-timer duration activity)
// highlighted by convention.
func defaultConfigs(catalog []Activity) []ActivityConfig {
	highlightID := ""
	for _, a := range catalog {
		if a.ID == sleepActivityID {
			highlightID = a.ID
			break
		}
		if highlightID == "" && a.Kind == KindDuration && a.HasLiveTimer {
			highlightID = a.ID
		}
	}
	configs := make([]ActivityConfig, 0, len(catalog))
	for i, a := range catalog {
		configs = append(configs, ActivityConfig{
			ActivityID:  a.ID,
			Visible:     true,
			Highlighted: a.ID == highlightID,
			Order:       i,
		})
	}
	return configs
}

// unknownActivity is the placeholder for records or configs whose activity no
// longer exists in the catalog. Dangling references are tolerated, not repaired.
func unknownActivity(id string) Activity {
	return Activity{ID: id, Name: "未知活动", Kind: KindCount, Unit: "?", Icon: "❓", Color: "gray"}
}

// FormatValue renders a record value without a trailing ".0" for whole numbers.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Age returns the book's age in whole days, or -1 if the start date is unset
// or unparseable.
func (b Book) Age(now time.Time) int {
	start, err := time.ParseInLocation("2006-01-02", b.StartDate, time.Local)
	if err != nil {
		return -1
	}
	return timefmt.DaysOld(start, now)
}

// Duration returns the recorded span for duration-kind records.
func (r Record) Duration() time.Duration {
	return time.Duration(r.DurationMs) * time.Millisecond
}
