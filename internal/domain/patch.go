package domain

import (
	"fmt"
	"strings"
	"time"
)

// Patch carries the fields of a full-form edit. Nil fields are left alone.
// ClearDeadline wins over Deadline when both are set.
type Patch struct {
	Text          *string
	Priority      *Priority
	Status        *Status
	Deadline      *time.Time
	ClearDeadline bool
}

func (p Patch) IsEmpty() bool {
	return p.Text == nil && p.Priority == nil && p.Status == nil && p.Deadline == nil && !p.ClearDeadline
}

func (p Patch) Validate() error {
	if p.Text != nil && strings.TrimSpace(*p.Text) == "" {
		return fmt.Errorf("%w: text must not be empty", ErrValidation)
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrValidation, *p.Priority)
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, *p.Status)
	}
	return nil
}
