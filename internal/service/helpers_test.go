package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alexanderramin/juno/internal/domain"
	"github.com/alexanderramin/juno/internal/repository"
	"github.com/alexanderramin/juno/internal/testutil"
	"github.com/stretchr/testify/require"
)

const testOwner = "alice"

type harness struct {
	ws       *Workspace
	store    *testutil.FlakyStore
	tasks    repository.TaskRepo
	segments repository.SegmentRepo
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%03d", n)
	}
}

// newHarness opens a workspace over in-memory SQLite wrapped in a
// FlakyStore so tests can make writes fail.
func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	tasks, segments := testutil.NewTestRepos(t)
	store := testutil.NewFlakyStore(tasks, segments)
	opts = append([]Option{
		WithClock(func() time.Time { return testutil.FixedNow }),
		WithIDGenerator(sequentialIDs()),
	}, opts...)
	ws, err := OpenWorkspace(context.Background(), testOwner, store, store, opts...)
	require.NoError(t, err)
	return &harness{ws: ws, store: store, tasks: tasks, segments: segments}
}

// reopen loads a second workspace from the same backing repos.
func (h *harness) reopen(t *testing.T) *Workspace {
	t.Helper()
	ws, err := OpenWorkspace(context.Background(), testOwner, h.tasks, h.segments)
	require.NoError(t, err)
	return ws
}

func (h *harness) create(t *testing.T, text string) *domain.Task {
	t.Helper()
	task, err := h.ws.Tasks().CreateTask(context.Background(), text, domain.PriorityLow, "")
	require.NoError(t, err)
	return task
}

func taskIDs(tasks []*domain.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func taskTexts(tasks []*domain.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Text
	}
	return out
}

func requireConsistent(t *testing.T, tasks []*domain.Task) {
	t.Helper()
	require.True(t, domain.IsPartitioned(tasks), "completed task ahead of an incomplete one: %v", taskTexts(tasks))
	for _, task := range tasks {
		require.Equal(t, task.Status == domain.StatusDone, task.Completed, "task %s", task.ID)
		for _, s := range task.SubTasks {
			require.Equal(t, s.Status == domain.StatusDone, s.Completed, "sub-task %s", s.ID)
		}
	}
}
