// Package export writes a book's record log to CSV or JSON files for use
// outside the tracker.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/Niansi/baby-tracker/internal/store"
)

func ToCSV(records []store.Record, catalog map[string]store.Activity, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Activity", "Kind", "Value", "Unit", "Start", "End", "Duration (ms)"}); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{
			r.ID,
			activityName(catalog, r.ActivityID),
			string(r.Kind),
			store.FormatValue(r.Value),
			r.Unit,
			r.StartTime.Local().Format(time.RFC3339),
			endTime(r),
			fmt.Sprintf("%d", r.DurationMs),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func activityName(catalog map[string]store.Activity, id string) string {
	if a, ok := catalog[id]; ok {
		return a.Name
	}
	return "未知活动"
}

func endTime(r store.Record) string {
	if r.EndTime == nil {
		return ""
	}
	return r.EndTime.Local().Format(time.RFC3339)
}
