package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/juno/internal/domain"
	"github.com/alexanderramin/juno/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fmtNow = time.Date(2025, 6, 11, 9, 0, 0, 0, time.UTC)

func fmtTask(t *testing.T, id, text, segment string) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(id, text, domain.PriorityHigh, segment, fmtNow)
	require.NoError(t, err)
	return task
}

func TestFormatTaskList_NestsSubTasks(t *testing.T) {
	task := fmtTask(t, "task-0000000001", "Ship release", "Work")
	_, err := task.AddSubTask("sub-00000000001", "Write notes")
	require.NoError(t, err)
	_, err = task.AddSubTask("sub-00000000002", "Tag build")
	require.NoError(t, err)

	out := stripANSI(FormatTaskList("All", []view.Item{{Task: task}}, fmtNow))

	assert.Contains(t, out, "ALL")
	assert.Contains(t, out, "00000001")
	assert.Contains(t, out, "Ship release")
	assert.Contains(t, out, "├─ Write notes")
	assert.Contains(t, out, "└─ Tag build")
	assert.Contains(t, out, "Work")
	assert.Contains(t, out, "0/1 done")
}

func TestFormatTaskList_StandaloneSubTaskNamesParent(t *testing.T) {
	parent := fmtTask(t, "task-1", "Trip", "Personal")
	sub, err := parent.AddSubTask("sub-1", "Book hotel")
	require.NoError(t, err)

	out := stripANSI(FormatTaskList("Today", []view.Item{{SubTask: sub, Parent: parent}}, fmtNow))
	assert.Contains(t, out, "Book hotel")
	assert.Contains(t, out, "↳ Trip")
	assert.Contains(t, out, "Personal")
}

func TestFormatTaskList_Empty(t *testing.T) {
	out := stripANSI(FormatTaskList("Work", nil, fmtNow))
	assert.Contains(t, out, "Nothing here.")
}

func TestFormatSummary(t *testing.T) {
	out := stripANSI(FormatSummary(view.Summary{Total: 4, Completed: 1, Incomplete: 3}))
	assert.Contains(t, out, "1/4 done")
	assert.Contains(t, out, "3 open")
	assert.Contains(t, out, " 25%")

	assert.Equal(t, "0 items", stripANSI(FormatSummary(view.Summary{})))
}

func TestFormatTaskDetail(t *testing.T) {
	task := fmtTask(t, "task-1", "Plan trip", "Personal")
	sub, err := task.AddSubTask("sub-1", "Book hotel")
	require.NoError(t, err)
	due := fmtNow.AddDate(0, 0, 1)
	sub.SetDeadline(&due)
	sub.Toggle()

	out := stripANSI(FormatTaskDetail(task, fmtNow))
	assert.Contains(t, out, "Plan trip")
	assert.Contains(t, out, "task-1")
	assert.Contains(t, out, "▲ high")
	assert.Contains(t, out, "SUB-TASKS")
	assert.Contains(t, out, "└─ sub-1 ✔ Book hotel")
	assert.Contains(t, out, "[ low · Tomorrow ]")
}

func TestFormatSegmentList_CountsMembers(t *testing.T) {
	tasks := []*domain.Task{
		fmtTask(t, "a", "a", "Work"),
		fmtTask(t, "b", "b", "Work"),
		fmtTask(t, "c", "c", ""),
	}
	out := stripANSI(FormatSegmentList([]string{"Personal", "Work"}, tasks))

	lines := strings.Split(out, "\n")
	var work, all string
	for _, l := range lines {
		switch {
		case strings.Contains(l, "Work"):
			work = l
		case strings.Contains(l, "All"):
			all = l
		}
	}
	assert.Contains(t, work, "2")
	assert.Contains(t, all, "1")
}

func TestRenderTable_AlignsStyledCells(t *testing.T) {
	out := stripANSI(RenderTable([]string{"A", "B"}, [][]string{{StyleRed.Render("long cell"), "x"}, {"s"}}))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, strings.Index(lines[0], "B"), strings.Index(lines[2], "x"))
}
