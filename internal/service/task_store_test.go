package service

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/alexanderramin/juno/internal/domain"
	"github.com/alexanderramin/juno/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTask_Defaults(t *testing.T) {
	h := newHarness(t)
	task, err := h.ws.Tasks().CreateTask(context.Background(), "  Buy milk  ", "", "Personal")
	require.NoError(t, err)

	assert.Equal(t, "id-001", task.ID)
	assert.Equal(t, "Buy milk", task.Text)
	assert.Equal(t, domain.StatusTodo, task.Status)
	assert.False(t, task.Completed)
	assert.Equal(t, domain.PriorityLow, task.Priority)
	assert.Equal(t, "Personal", task.Segment)
	assert.Nil(t, task.Deadline)
	assert.Empty(t, task.SubTasks)
	assert.Equal(t, testutil.FixedNow, task.CreatedAt)
}

func TestCreateTask_Validation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		text     string
		priority domain.Priority
		segment  string
	}{
		{"empty text", "   ", domain.PriorityLow, ""},
		{"bad priority", "x", domain.Priority("urgent"), ""},
		{"unknown segment", "x", domain.PriorityLow, "Garden"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.ws.Tasks().CreateTask(ctx, tt.text, tt.priority, tt.segment)
			require.ErrorIs(t, err, domain.ErrValidation)
			assert.Empty(t, h.ws.Tasks().Tasks())
		})
	}
	assert.Equal(t, 1, h.store.Writes(), "only the default segment seed was written")
}

func TestCreateTask_PersistFailureDoesNotAdd(t *testing.T) {
	h := newHarness(t)
	h.store.FailWrites(true)

	_, err := h.ws.Tasks().CreateTask(context.Background(), "lost", domain.PriorityLow, "")
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "create_task", perr.Op)
	assert.ErrorIs(t, err, testutil.ErrInjected)

	assert.Empty(t, h.ws.Tasks().Tasks())
	assert.Empty(t, h.ws.Pending(), "a failed create is not queued")
}

func TestCreateTask_LandsAheadOfCompleted(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.create(t, "A")
	require.NoError(t, h.ws.Tasks().ToggleTask(ctx, a.ID))
	h.create(t, "B")

	assert.Equal(t, []string{"B", "A"}, taskTexts(h.ws.Tasks().Tasks()))
	assert.Equal(t, []string{"B", "A"}, taskTexts(h.reopen(t).Tasks().Tasks()), "order is persisted")
}

func TestToggleTask_TwiceIsIdentity(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.create(t, "A")
	require.NoError(t, h.ws.Tasks().SetStatus(ctx, a.ID, domain.StatusInProgress))

	require.NoError(t, h.ws.Tasks().ToggleTask(ctx, a.ID))
	got, err := h.ws.Tasks().Task(a.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.Equal(t, domain.StatusDone, got.Status)

	require.NoError(t, h.ws.Tasks().ToggleTask(ctx, a.ID))
	got, err = h.ws.Tasks().Task(a.ID)
	require.NoError(t, err)
	assert.False(t, got.Completed)
	assert.Equal(t, domain.StatusTodo, got.Status, "un-completing lands on Todo")
}

func TestToggleTask_PartitionIsStable(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	var ids []string
	for _, text := range []string{"A", "B", "C", "D"} {
		ids = append(ids, h.create(t, text).ID)
	}

	require.NoError(t, h.ws.Tasks().ToggleTask(ctx, ids[2]))
	require.NoError(t, h.ws.Tasks().ToggleTask(ctx, ids[0]))
	assert.Equal(t, []string{"B", "D", "C", "A"}, taskTexts(h.ws.Tasks().Tasks()))

	require.NoError(t, h.ws.Tasks().ToggleTask(ctx, ids[2]))
	assert.Equal(t, []string{"B", "D", "C", "A"}, taskTexts(h.ws.Tasks().Tasks()),
		"C rejoins the incomplete group at its current position")
}

func TestTaskStore_RandomMutationsKeepInvariants(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))
	statuses := domain.ValidStatuses

	for i := 0; i < 8; i++ {
		h.create(t, string(rune('A'+i)))
	}
	for step := 0; step < 200; step++ {
		tasks := h.ws.Tasks().Tasks()
		before := tasks
		target := tasks[rng.Intn(len(tasks))]

		switch rng.Intn(4) {
		case 0:
			require.NoError(t, h.ws.Tasks().ToggleTask(ctx, target.ID))
		case 1:
			require.NoError(t, h.ws.Tasks().SetStatus(ctx, target.ID, statuses[rng.Intn(len(statuses))]))
		case 2:
			require.NoError(t, h.ws.Tasks().SetPriority(ctx, target.ID, domain.PriorityHigh))
		case 3:
			_, err := h.ws.Tasks().AddSubTask(ctx, target.ID, "sub")
			require.NoError(t, err)
		}

		after := h.ws.Tasks().Tasks()
		requireConsistent(t, after)
		assertRelativeOrderKept(t, before, after)
	}

	stored := h.reopen(t).Tasks().Tasks()
	assert.Equal(t, taskIDs(h.ws.Tasks().Tasks()), taskIDs(stored))
}

// assertRelativeOrderKept checks that tasks sharing a completion state
// after the mutation kept their previous relative order.
func assertRelativeOrderKept(t *testing.T, before, after []*domain.Task) {
	t.Helper()
	pos := make(map[string]int, len(before))
	for i, task := range before {
		pos[task.ID] = i
	}
	last := map[bool]int{false: -1, true: -1}
	for _, task := range after {
		p := pos[task.ID]
		require.Greater(t, p, last[task.Completed], "relative order broken at %s", task.Text)
		last[task.Completed] = p
	}
}

func TestDeleteTask(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.create(t, "A")
	_, err := h.ws.Tasks().AddSubTask(ctx, a.ID, "child")
	require.NoError(t, err)
	b := h.create(t, "B")

	require.NoError(t, h.ws.Tasks().DeleteTask(ctx, a.ID))
	assert.Equal(t, []string{b.ID}, taskIDs(h.ws.Tasks().Tasks()))
	assert.Equal(t, []string{b.ID}, taskIDs(h.reopen(t).Tasks().Tasks()))

	require.ErrorIs(t, h.ws.Tasks().DeleteTask(ctx, a.ID), domain.ErrNotFound)
}

func TestSetters(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.create(t, "A")
	deadline := time.Date(2025, 6, 11, 18, 0, 0, 0, time.UTC)

	require.NoError(t, h.ws.Tasks().SetPriority(ctx, a.ID, domain.PriorityHigh))
	require.NoError(t, h.ws.Tasks().SetDeadline(ctx, a.ID, &deadline))
	require.NoError(t, h.ws.Tasks().MoveTask(ctx, a.ID, "Work"))
	require.NoError(t, h.ws.Tasks().SetStatus(ctx, a.ID, domain.StatusDone))

	got := h.reopen(t).Tasks().Tasks()[0]
	assert.Equal(t, domain.PriorityHigh, got.Priority)
	require.NotNil(t, got.Deadline)
	assert.True(t, deadline.Equal(*got.Deadline))
	assert.Equal(t, "Work", got.Segment)
	assert.True(t, got.Completed)

	require.NoError(t, h.ws.Tasks().SetDeadline(ctx, a.ID, nil))
	got, err := h.ws.Tasks().Task(a.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Deadline)

	require.NoError(t, h.ws.Tasks().MoveTask(ctx, a.ID, ""))
	got, err = h.ws.Tasks().Task(a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SegmentAll, got.Segment)
}

func TestSetters_RejectInvalidWithoutChange(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.create(t, "A")
	writes := h.store.Writes()

	require.ErrorIs(t, h.ws.Tasks().SetStatus(ctx, a.ID, "Blocked"), domain.ErrValidation)
	require.ErrorIs(t, h.ws.Tasks().SetPriority(ctx, a.ID, "urgent"), domain.ErrValidation)
	require.ErrorIs(t, h.ws.Tasks().MoveTask(ctx, a.ID, "Nowhere"), domain.ErrValidation)
	require.ErrorIs(t, h.ws.Tasks().SetPriority(ctx, "nope", domain.PriorityHigh), domain.ErrNotFound)

	got, err := h.ws.Tasks().Task(a.ID)
	require.NoError(t, err)
	assert.Equal(t, a, got)
	assert.Equal(t, writes, h.store.Writes(), "rejected operations write nothing")
}

func TestEditTask_MergesPatch(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.create(t, "A")
	deadline := testutil.FixedNow.Add(48 * time.Hour)
	require.NoError(t, h.ws.Tasks().SetDeadline(ctx, a.ID, &deadline))

	err := h.ws.Tasks().EditTask(ctx, a.ID, domain.Patch{
		Text:   domain.Ptr("A revised"),
		Status: domain.Ptr(domain.StatusDone),
	})
	require.NoError(t, err)

	got, err := h.ws.Tasks().Task(a.ID)
	require.NoError(t, err)
	assert.Equal(t, "A revised", got.Text)
	assert.True(t, got.Completed)
	assert.Equal(t, domain.PriorityLow, got.Priority, "untouched field kept")
	require.NotNil(t, got.Deadline, "untouched deadline kept")

	err = h.ws.Tasks().EditTask(ctx, a.ID, domain.Patch{Text: domain.Ptr(" ")})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestSubTasks(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	store := h.ws.Tasks()
	a := h.create(t, "A")

	s1, err := store.AddSubTask(ctx, a.ID, "first")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusTodo, s1.Status)
	assert.Equal(t, domain.PriorityLow, s1.Priority)
	assert.Nil(t, s1.Deadline)
	s2, err := store.AddSubTask(ctx, a.ID, "second")
	require.NoError(t, err)

	deadline := testutil.FixedNow
	require.NoError(t, store.ToggleSubTask(ctx, a.ID, s1.ID))
	require.NoError(t, store.SetSubTaskPriority(ctx, a.ID, s2.ID, domain.PriorityMedium))
	require.NoError(t, store.SetSubTaskDeadline(ctx, a.ID, s2.ID, &deadline))
	require.NoError(t, store.SetSubTaskStatus(ctx, a.ID, s2.ID, domain.StatusInProgress))
	require.NoError(t, store.EditSubTask(ctx, a.ID, s2.ID, domain.Patch{Text: domain.Ptr("second!")}))

	got := h.reopen(t).Tasks().Tasks()[0]
	require.Len(t, got.SubTasks, 2)
	assert.True(t, got.SubTasks[0].Completed)
	assert.Equal(t, domain.StatusDone, got.SubTasks[0].Status)
	assert.Equal(t, "second!", got.SubTasks[1].Text)
	assert.Equal(t, domain.PriorityMedium, got.SubTasks[1].Priority)
	assert.Equal(t, domain.StatusInProgress, got.SubTasks[1].Status)
	require.NotNil(t, got.SubTasks[1].Deadline)
	assert.False(t, got.Completed, "sub-task completion does not touch the parent")

	require.NoError(t, store.DeleteSubTask(ctx, a.ID, s1.ID))
	task, err := store.Task(a.ID)
	require.NoError(t, err)
	require.Len(t, task.SubTasks, 1)
	assert.Equal(t, s2.ID, task.SubTasks[0].ID)

	require.ErrorIs(t, store.ToggleSubTask(ctx, a.ID, s1.ID), domain.ErrNotFound)
	require.ErrorIs(t, store.DeleteSubTask(ctx, "nope", s2.ID), domain.ErrNotFound)
	_, err = store.AddSubTask(ctx, a.ID, "")
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestTasks_ReturnsCopies(t *testing.T) {
	h := newHarness(t)
	a := h.create(t, "A")

	snapshot := h.ws.Tasks().Tasks()
	snapshot[0].Text = "mutated"
	snapshot[0].SubTasks = append(snapshot[0].SubTasks, domain.SubTask{})

	got, err := h.ws.Tasks().Task(a.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Text)
	assert.Empty(t, got.SubTasks)
}

func TestResolveID(t *testing.T) {
	ids := []string{"0197-aaa111", "0197-bbb111", "0197-bbb222"}
	h := newHarness(t, WithIDGenerator(func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}))
	for _, text := range []string{"A", "B", "C"} {
		h.create(t, text)
	}
	store := h.ws.Tasks()

	id, err := store.ResolveID("0197-BBB222")
	require.NoError(t, err)
	assert.Equal(t, "0197-bbb222", id)

	id, err = store.ResolveID("a111")
	require.NoError(t, err)
	assert.Equal(t, "0197-aaa111", id)

	_, err = store.ResolveID("111")
	require.ErrorIs(t, err, domain.ErrValidation, "ambiguous suffix")

	_, err = store.ResolveID("zzz")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMutation_PersistFailureKeepsChangeAndQueuesWrite(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.create(t, "A")

	h.store.FailWrites(true)
	err := h.ws.Tasks().SetPriority(ctx, a.ID, domain.PriorityHigh)

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, OpUpsertTask, perr.Op)
	assert.Equal(t, a.ID, perr.ID)
	assert.True(t, errors.Is(err, testutil.ErrInjected))

	got, err := h.ws.Tasks().Task(a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityHigh, got.Priority, "in-memory change is not rolled back")

	stored := h.reopen(t).Tasks().Tasks()[0]
	assert.Equal(t, domain.PriorityLow, stored.Priority)
	require.Len(t, h.ws.Pending(), 1)
}
