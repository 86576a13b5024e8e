// Package record defines the JSON wire format for tasks: the document
// shape stored by the file backend, written by export and read by import.
package record

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Task is one task document. Dates are ISO-8601 strings; Deadline is
// null when the task has none.
type Task struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	Status    string    `json:"status"`
	Priority  string    `json:"priority"`
	Deadline  *string   `json:"deadline"`
	Segment   string    `json:"segment"`
	CreatedAt string    `json:"createdAt"`
	SubTasks  []SubTask `json:"subTasks"`
}

// SubTask is nested inside its parent Task document.
type SubTask struct {
	ID        string  `json:"id"`
	Text      string  `json:"text"`
	Completed bool    `json:"completed"`
	Status    string  `json:"status"`
	Priority  string  `json:"priority"`
	Deadline  *string `json:"deadline"`
}

// LoadFile reads a JSON array of task documents.
func LoadFile(path string) ([]Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("parsing task file: %w", err)
	}
	return tasks, nil
}

// WriteJSON writes tasks as an indented JSON array.
func WriteJSON(w io.Writer, tasks []Task) error {
	if tasks == nil {
		tasks = []Task{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tasks); err != nil {
		return fmt.Errorf("encoding tasks: %w", err)
	}
	return nil
}
