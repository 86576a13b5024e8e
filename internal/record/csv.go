package record

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

var csvHeader = []string{"task_id", "sub_task_id", "text", "status", "completed", "priority", "deadline", "segment", "created_at"}

// WriteCSV flattens tasks into one row per task followed by one row per
// sub-task. Sub-task rows carry the parent's id and segment.
func WriteCSV(w io.Writer, tasks []Task) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, t := range tasks {
		row := []string{t.ID, "", t.Text, t.Status, strconv.FormatBool(t.Completed), t.Priority, deref(t.Deadline), t.Segment, t.CreatedAt}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing task %q: %w", t.ID, err)
		}
		for _, s := range t.SubTasks {
			row := []string{t.ID, s.ID, s.Text, s.Status, strconv.FormatBool(s.Completed), s.Priority, deref(s.Deadline), t.Segment, ""}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("writing sub-task %q: %w", s.ID, err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
