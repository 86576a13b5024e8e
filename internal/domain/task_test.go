package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func newTestTask(t *testing.T, text string) *Task {
	t.Helper()
	task, err := NewTask("t-"+text, text, PriorityLow, "", testNow)
	require.NoError(t, err)
	return task
}

func assertConsistent(t *testing.T, e Entry) {
	t.Helper()
	assert.Equal(t, e.Status == StatusDone, e.Completed, "completed must mirror status (status=%q)", e.Status)
}

func TestNewTask_Defaults(t *testing.T) {
	task, err := NewTask("t1", "  Write report  ", "", "", testNow)
	require.NoError(t, err)
	assert.Equal(t, "Write report", task.Text)
	assert.Equal(t, StatusTodo, task.Status)
	assert.False(t, task.Completed)
	assert.Equal(t, PriorityLow, task.Priority)
	assert.Equal(t, SegmentAll, task.Segment)
	assert.Equal(t, testNow, task.CreatedAt)
	assert.Nil(t, task.Deadline)
	assert.NotNil(t, task.SubTasks)
	assert.Empty(t, task.SubTasks)
}

func TestNewTask_RejectsEmptyText(t *testing.T) {
	for _, text := range []string{"", "   ", "\t\n"} {
		_, err := NewTask("t1", text, PriorityLow, "Work", testNow)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValidation)
	}
}

func TestNewTask_RejectsUnknownPriority(t *testing.T) {
	_, err := NewTask("t1", "x", Priority("urgent"), "Work", testNow)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestToggle_TwiceRestoresOriginal(t *testing.T) {
	for _, start := range ValidStatuses {
		task := newTestTask(t, "toggle")
		require.NoError(t, task.SetStatus(start))
		// In Progress is not restored by a double toggle: the first toggle
		// completes it, the second returns it to Todo.
		origCompleted := task.Completed

		task.Toggle()
		assertConsistent(t, task.Entry)
		assert.Equal(t, !origCompleted, task.Completed)

		task.Toggle()
		assertConsistent(t, task.Entry)
		assert.Equal(t, origCompleted, task.Completed)
		if start != StatusInProgress {
			assert.Equal(t, start, task.Status)
		}
	}
}

func TestSetStatus_KeepsCompletedConsistent(t *testing.T) {
	task := newTestTask(t, "status")
	for _, s := range ValidStatuses {
		require.NoError(t, task.SetStatus(s))
		assert.Equal(t, s, task.Status)
		assertConsistent(t, task.Entry)
	}
}

func TestSetStatus_Invalid(t *testing.T) {
	task := newTestTask(t, "status")
	err := task.SetStatus("Blocked")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, StatusTodo, task.Status, "status should not change")
}

func TestSetDeadline_CopiesAndClears(t *testing.T) {
	task := newTestTask(t, "deadline")
	d := testNow.Add(24 * time.Hour)
	task.SetDeadline(&d)
	d = d.Add(time.Hour)
	require.NotNil(t, task.Deadline)
	assert.Equal(t, testNow.Add(24*time.Hour), *task.Deadline, "must not alias caller's value")

	task.SetDeadline(nil)
	assert.Nil(t, task.Deadline)
}

func TestApply_MergesOnlySetFields(t *testing.T) {
	task := newTestTask(t, "merge")
	d := testNow.Add(48 * time.Hour)
	task.SetDeadline(&d)

	require.NoError(t, task.Apply(Patch{Priority: Ptr(PriorityHigh)}))
	assert.Equal(t, "merge", task.Text)
	assert.Equal(t, PriorityHigh, task.Priority)
	require.NotNil(t, task.Deadline)

	require.NoError(t, task.Apply(Patch{Text: Ptr("merged"), Status: Ptr(StatusDone), ClearDeadline: true}))
	assert.Equal(t, "merged", task.Text)
	assert.True(t, task.Completed)
	assert.Nil(t, task.Deadline)
}

func TestApply_InvalidPatchLeavesEntryUntouched(t *testing.T) {
	task := newTestTask(t, "merge")
	before := *task.Clone()

	err := task.Apply(Patch{Text: Ptr("new text"), Status: Ptr(Status("Nope"))})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, before.Entry, task.Entry)

	err = task.Apply(Patch{Text: Ptr("  ")})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "merge", task.Text)
}

func TestSubTasks_AddFindRemove(t *testing.T) {
	task := newTestTask(t, "parent")

	s1, err := task.AddSubTask("s1", "first")
	require.NoError(t, err)
	assert.Equal(t, StatusTodo, s1.Status)
	assert.Equal(t, PriorityLow, s1.Priority)
	assert.Nil(t, s1.Deadline)

	_, err = task.AddSubTask("s2", "second")
	require.NoError(t, err)

	_, err = task.AddSubTask("s1", "duplicate id")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = task.AddSubTask("s3", " ")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Len(t, task.SubTasks, 2)

	found, ok := task.SubTask("s2")
	require.True(t, ok)
	found.Toggle()
	assert.True(t, task.SubTasks[1].Completed, "SubTask must point into the owned slice")
	assertConsistent(t, task.SubTasks[1].Entry)

	assert.True(t, task.RemoveSubTask("s1"))
	assert.False(t, task.RemoveSubTask("s1"))
	require.Len(t, task.SubTasks, 1)
	assert.Equal(t, "s2", task.SubTasks[0].ID)
}

func TestClone_IsDeep(t *testing.T) {
	task := newTestTask(t, "orig")
	d := testNow
	task.SetDeadline(&d)
	_, err := task.AddSubTask("s1", "child")
	require.NoError(t, err)
	task.SubTasks[0].SetDeadline(&d)

	c := task.Clone()
	c.Text = "changed"
	c.SubTasks[0].Text = "changed child"
	*c.Deadline = d.Add(time.Hour)
	*c.SubTasks[0].Deadline = d.Add(time.Hour)

	assert.Equal(t, "orig", task.Text)
	assert.Equal(t, "child", task.SubTasks[0].Text)
	assert.Equal(t, d, *task.Deadline)
	assert.Equal(t, d, *task.SubTasks[0].Deadline)
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		name          string
		in            Entry
		wantStatus    Status
		wantCompleted bool
		wantChanged   bool
	}{
		{"consistent todo", Entry{Status: StatusTodo, Priority: PriorityLow}, StatusTodo, false, false},
		{"missing status completed", Entry{Completed: true, Priority: PriorityLow}, StatusDone, true, true},
		{"missing status open", Entry{Priority: PriorityLow}, StatusTodo, false, true},
		{"status wins over flag", Entry{Status: StatusInProgress, Completed: true, Priority: PriorityLow}, StatusInProgress, false, true},
		{"done without flag", Entry{Status: StatusDone, Priority: PriorityLow}, StatusDone, true, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := tc.in
			changed := e.Normalize()
			assert.Equal(t, tc.wantStatus, e.Status)
			assert.Equal(t, tc.wantCompleted, e.Completed)
			assert.Equal(t, tc.wantChanged, changed)
		})
	}
}

func TestTaskNormalize_FillsSegmentAndSubTasks(t *testing.T) {
	task := &Task{Entry: Entry{ID: "t", Text: "x", Status: StatusTodo}}
	task.SubTasks = []SubTask{{Entry: Entry{ID: "s", Text: "y", Completed: true}}}

	assert.True(t, task.Normalize())
	assert.Equal(t, SegmentAll, task.Segment)
	assert.Equal(t, PriorityLow, task.Priority)
	assert.Equal(t, StatusDone, task.SubTasks[0].Status)
}
