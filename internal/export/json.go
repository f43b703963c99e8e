package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/Niansi/baby-tracker/internal/store"
)

type jsonExport struct {
	ExportedAt string       `json:"exported_at"`
	Count      int          `json:"count"`
	Records    []jsonRecord `json:"records"`
}

type jsonRecord struct {
	ID         string  `json:"id"`
	Activity   string  `json:"activity"`
	ActivityID string  `json:"activity_id"`
	Kind       string  `json:"kind"`
	Value      float64 `json:"value"`
	Unit       string  `json:"unit,omitempty"`
	StartTime  string  `json:"start_time"`
	EndTime    string  `json:"end_time,omitempty"`
	DurationMs int64   `json:"duration_ms,omitempty"`
}

func ToJSON(records []store.Record, catalog map[string]store.Activity, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(records),
	}

	for _, r := range records {
		export.Records = append(export.Records, jsonRecord{
			ID:         r.ID,
			Activity:   activityName(catalog, r.ActivityID),
			ActivityID: r.ActivityID,
			Kind:       string(r.Kind),
			Value:      r.Value,
			Unit:       r.Unit,
			StartTime:  r.StartTime.Local().Format(time.RFC3339),
			EndTime:    endTime(r),
			DurationMs: r.DurationMs,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
