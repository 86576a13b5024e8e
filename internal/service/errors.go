package service

import "fmt"

// PersistenceError reports a write-through that failed. The in-memory
// change it belonged to has already been applied and is kept; the write
// waits in the outbox until RetryPending succeeds.
type PersistenceError struct {
	Op  string
	ID  string
	Err error
}

func (e *PersistenceError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("persisting %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("persisting %s %s: %v", e.Op, e.ID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
