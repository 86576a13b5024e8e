package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/juno/internal/domain"
	"github.com/alexanderramin/juno/internal/repository"
	"github.com/alexanderramin/juno/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(tasks []*domain.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

// taskRepoContract runs the same behavior checks against every backend.
func taskRepoContract(t *testing.T, newRepo func(t *testing.T) repository.TaskRepo) {
	ctx := context.Background()

	t.Run("empty owner lists nothing", func(t *testing.T) {
		repo := newRepo(t)
		tasks, err := repo.ListByOwner(ctx, "nobody")
		require.NoError(t, err)
		assert.NotNil(t, tasks)
		assert.Empty(t, tasks)
	})

	t.Run("upsert round-trips every field", func(t *testing.T) {
		repo := newRepo(t)
		loc := time.FixedZone("CEST", 2*60*60)
		deadline := time.Date(2025, 6, 12, 23, 30, 0, 0, loc)
		task := testutil.NewTestTask("Write report",
			testutil.WithID("t1"),
			testutil.WithSegment("Work"),
			testutil.WithPriority(domain.PriorityHigh),
			testutil.WithDeadline(deadline),
			testutil.WithStatus(domain.StatusInProgress),
			testutil.WithSubTask("s1", "Outline", testutil.SubDone()),
			testutil.WithSubTask("s2", "Draft", testutil.SubDeadline(deadline)),
		)
		require.NoError(t, repo.Upsert(ctx, "alice", task))

		got, err := repo.ListByOwner(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, got, 1)
		g := got[0]
		assert.Equal(t, "Write report", g.Text)
		assert.Equal(t, "Work", g.Segment)
		assert.Equal(t, domain.PriorityHigh, g.Priority)
		assert.Equal(t, domain.StatusInProgress, g.Status)
		assert.False(t, g.Completed)
		require.NotNil(t, g.Deadline)
		assert.True(t, deadline.Equal(*g.Deadline))
		assert.Equal(t, 12, g.Deadline.Day(), "offset must survive storage")
		assert.True(t, testutil.FixedNow.Equal(g.CreatedAt))

		require.Len(t, g.SubTasks, 2)
		assert.Equal(t, "s1", g.SubTasks[0].ID)
		assert.True(t, g.SubTasks[0].Completed)
		assert.Equal(t, domain.StatusDone, g.SubTasks[0].Status)
		assert.Nil(t, g.SubTasks[0].Deadline)
		assert.Equal(t, "s2", g.SubTasks[1].ID)
		require.NotNil(t, g.SubTasks[1].Deadline)
	})

	t.Run("upsert updates in place and replaces sub-tasks", func(t *testing.T) {
		repo := newRepo(t)
		a := testutil.NewTestTask("A", testutil.WithID("a"), testutil.WithSubTask("s1", "one"))
		b := testutil.NewTestTask("B", testutil.WithID("b"))
		require.NoError(t, repo.Upsert(ctx, "o", a))
		require.NoError(t, repo.Upsert(ctx, "o", b))

		a.Text = "A edited"
		a.RemoveSubTask("s1")
		_, err := a.AddSubTask("s2", "two")
		require.NoError(t, err)
		require.NoError(t, repo.Upsert(ctx, "o", a))

		got, err := repo.ListByOwner(ctx, "o")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, ids(got), "existing task keeps its position")
		assert.Equal(t, "A edited", got[0].Text)
		require.Len(t, got[0].SubTasks, 1)
		assert.Equal(t, "s2", got[0].SubTasks[0].ID)
	})

	t.Run("delete removes task and tolerates missing ids", func(t *testing.T) {
		repo := newRepo(t)
		a := testutil.NewTestTask("A", testutil.WithID("a"), testutil.WithSubTask("s1", "one"))
		require.NoError(t, repo.Upsert(ctx, "o", a))

		require.NoError(t, repo.Delete(ctx, "o", "a"))
		require.NoError(t, repo.Delete(ctx, "o", "a"))

		got, err := repo.ListByOwner(ctx, "o")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("reorder places listed ids first", func(t *testing.T) {
		repo := newRepo(t)
		for _, id := range []string{"a", "b", "c", "d"} {
			require.NoError(t, repo.Upsert(ctx, "o", testutil.NewTestTask(id, testutil.WithID(id))))
		}
		require.NoError(t, repo.Reorder(ctx, "o", []string{"c", "a", "ghost"}))

		got, err := repo.ListByOwner(ctx, "o")
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "a", "b", "d"}, ids(got))

		require.NoError(t, repo.Upsert(ctx, "o", testutil.NewTestTask("e", testutil.WithID("e"))))
		got, err = repo.ListByOwner(ctx, "o")
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "a", "b", "d", "e"}, ids(got), "new tasks append after reordered ones")
	})

	t.Run("owners are isolated", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Upsert(ctx, "alice", testutil.NewTestTask("mine", testutil.WithID("x"))))
		require.NoError(t, repo.Upsert(ctx, "bob", testutil.NewTestTask("his", testutil.WithID("x"))))
		require.NoError(t, repo.Delete(ctx, "bob", "x"))

		got, err := repo.ListByOwner(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "mine", got[0].Text)
	})
}

func TestSQLiteTaskRepo(t *testing.T) {
	taskRepoContract(t, func(t *testing.T) repository.TaskRepo {
		tasks, _ := testutil.NewTestRepos(t)
		return tasks
	})
}

func TestSQLiteTaskRepo_UpsertRollsBackOnSubTaskFailure(t *testing.T) {
	ctx := context.Background()
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLiteTaskRepo(database)

	task := testutil.NewTestTask("A", testutil.WithID("a"), testutil.WithSubTask("s1", "one"))
	require.NoError(t, repo.Upsert(ctx, "o", task))

	// Exec order: upsert task, delete sub-tasks, insert s1, insert s2.
	failing := repo.WithUnitOfWork(&testutil.FailOnNthExecUoW{DB: database, FailOn: 4})
	task.Text = "A edited"
	_, err := task.AddSubTask("s2", "two")
	require.NoError(t, err)

	err = failing.Upsert(ctx, "o", task)
	require.ErrorIs(t, err, testutil.ErrInjected)

	got, err := repo.ListByOwner(ctx, "o")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Text)
	require.Len(t, got[0].SubTasks, 1)
	assert.Equal(t, "s1", got[0].SubTasks[0].ID)
}
