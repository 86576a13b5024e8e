package record

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/juno/internal/domain"
)

// Validate checks an imported task list before conversion and returns
// every problem found, not just the first.
func Validate(tasks []Task) []error {
	var errs []error
	ids := make(map[string]bool)

	for i, t := range tasks {
		where := fmt.Sprintf("tasks[%d]", i)
		if t.ID != "" {
			if ids[t.ID] {
				errs = append(errs, fmt.Errorf("%s.id: duplicate id %q", where, t.ID))
			}
			ids[t.ID] = true
		}
		errs = append(errs, validateEntry(where, t.Text, t.Status, t.Priority, t.Deadline)...)
		if t.CreatedAt != "" {
			if _, err := parseTime(t.CreatedAt); err != nil {
				errs = append(errs, fmt.Errorf("%s.createdAt: %v", where, err))
			}
		}

		subIDs := make(map[string]bool)
		for j, s := range t.SubTasks {
			subWhere := fmt.Sprintf("%s.subTasks[%d]", where, j)
			if s.ID != "" {
				if subIDs[s.ID] {
					errs = append(errs, fmt.Errorf("%s.id: duplicate sub-task id %q", subWhere, s.ID))
				}
				subIDs[s.ID] = true
			}
			errs = append(errs, validateEntry(subWhere, s.Text, s.Status, s.Priority, s.Deadline)...)
		}
	}
	return errs
}

func validateEntry(where, text, status, priority string, deadline *string) []error {
	var errs []error
	if strings.TrimSpace(text) == "" {
		errs = append(errs, fmt.Errorf("%s.text is required", where))
	}
	if status != "" {
		if _, err := domain.ParseStatus(status); err != nil {
			errs = append(errs, fmt.Errorf("%s.status: %v", where, err))
		}
	}
	if priority != "" {
		if _, err := domain.ParsePriority(priority); err != nil {
			errs = append(errs, fmt.Errorf("%s.priority: %v", where, err))
		}
	}
	if _, err := parseOptional(deadline); err != nil {
		errs = append(errs, fmt.Errorf("%s.deadline: %v", where, err))
	}
	return errs
}
