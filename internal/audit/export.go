package audit

import (
	"encoding/csv"
	"io"
	"time"
)

// WriteTimelineCSV serialises rows as CSV with timestamps rendered in loc.
func WriteTimelineCSV(w io.Writer, rows []TimelineRow, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"At", "Action", "Entity", "Entity ID", "Meta"}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write([]string{
			row.At.In(loc).Format(time.RFC3339),
			row.Action,
			row.Entity,
			row.EntityID,
			string(row.Meta),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
