package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/alexanderramin/juno/internal/domain"
	"github.com/alexanderramin/juno/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenWorkspace_RequiresOwner(t *testing.T) {
	tasks, segments := testutil.NewTestRepos(t)
	_, err := OpenWorkspace(context.Background(), "  ", tasks, segments)
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestOpenWorkspace_SeedsDefaultSegmentsOnce(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, []string{"Personal", "Work"}, h.ws.Segments().Segments())

	names, initialized, err := h.segments.List(context.Background(), testOwner)
	require.NoError(t, err)
	assert.True(t, initialized)
	assert.Equal(t, []string{"Personal", "Work"}, names)

	// An owner who deleted everything is not re-seeded.
	require.NoError(t, h.ws.Segments().DeleteSegment(context.Background(), "Personal"))
	require.NoError(t, h.ws.Segments().DeleteSegment(context.Background(), "Work"))
	assert.Empty(t, h.reopen(t).Segments().Segments())
}

func TestOpenWorkspace_NormalizesStoredTasks(t *testing.T) {
	ctx := context.Background()
	tasks, segments := testutil.NewTestRepos(t)
	require.NoError(t, segments.Replace(ctx, testOwner, []string{"Work"}))

	done := testutil.NewTestTask("done first", testutil.WithID("a"), testutil.Completed())
	stale := testutil.NewTestTask("stale flags", testutil.WithID("b"), testutil.WithSegment("Gone"))
	stale.Completed = true // status still Todo
	require.NoError(t, tasks.Upsert(ctx, testOwner, done))
	require.NoError(t, tasks.Upsert(ctx, testOwner, stale))

	ws, err := OpenWorkspace(ctx, testOwner, tasks, segments)
	require.NoError(t, err)

	got := ws.Tasks().Tasks()
	assert.Equal(t, []string{"b", "a"}, taskIDs(got))
	assert.False(t, got[0].Completed, "status wins over a stale completed flag")
	assert.Equal(t, domain.SegmentAll, got[0].Segment, "unknown segment falls back to All")
	requireConsistent(t, got)
	assert.Empty(t, ws.Pending())

	// The repairs were written back, including the new order.
	stored, err := tasks.ListByOwner(ctx, testOwner)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, taskIDs(stored))
	assert.Equal(t, domain.SegmentAll, stored[0].Segment)
}

func TestOpenWorkspace_FailedRepairGoesToOutbox(t *testing.T) {
	ctx := context.Background()
	tasks, segments := testutil.NewTestRepos(t)
	store := testutil.NewFlakyStore(tasks, segments)
	store.FailWrites(true)

	ws, err := OpenWorkspace(ctx, testOwner, store, store)
	require.NoError(t, err, "open succeeds even when seeding fails")

	pending := ws.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, OpReplaceSegments, pending[0].Kind)

	store.FailWrites(false)
	require.NoError(t, ws.RetryPending(ctx))
	assert.Empty(t, ws.Pending())

	_, initialized, err := segments.List(ctx, testOwner)
	require.NoError(t, err)
	assert.True(t, initialized)
}

func TestOpenWorkspace_OwnersAreIsolated(t *testing.T) {
	ctx := context.Background()
	tasks, segments := testutil.NewTestRepos(t)

	alice, err := OpenWorkspace(ctx, "alice", tasks, segments)
	require.NoError(t, err)
	_, err = alice.Tasks().CreateTask(ctx, "alice's", domain.PriorityLow, "")
	require.NoError(t, err)

	bob, err := OpenWorkspace(ctx, "bob", tasks, segments)
	require.NoError(t, err)
	assert.Empty(t, bob.Tasks().Tasks())
}

func TestWorkspace_ObserverReceivesEvents(t *testing.T) {
	var buf bytes.Buffer
	h := newHarness(t, WithObserver(NewLogUseCaseObserver(&buf)))

	h.create(t, "observed")
	err := h.ws.Tasks().ToggleTask(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)

	out := buf.String()
	assert.Contains(t, out, "msg=service_use_case")
	assert.Contains(t, out, "use_case=workspace.open")
	assert.Contains(t, out, "use_case=task.create")
	assert.Contains(t, out, "owner=alice")
	assert.Contains(t, out, "task_id=id-001")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "use_case=task.toggle")
}

func TestNewID_IsTimeOrdered(t *testing.T) {
	a, b := NewID(), NewID()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
	assert.Equal(t, "7", a[14:15], "UUID version nibble")
}
