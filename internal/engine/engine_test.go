package engine

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/shipgate/internal/github"
	"github.com/joescharf/shipgate/internal/models"
)

func twoProjects() []models.TrackedProject {
	return []models.TrackedProject{
		{Repo: "acme/roadmap", DisplayName: "Roadmap"},
		{Repo: "acme/api", DisplayName: "API"},
	}
}

func TestRefreshAll_IsolatesProjectFailures(t *testing.T) {
	client := &fakeClient{
		branches: map[string][]string{"acme/roadmap": {"main", "develop"}},
		fail: map[string]error{
			"branches acme/api": &github.FetchError{Op: "branches", Repo: "acme/api", Status: 500},
			"pulls acme/api":    &github.FetchError{Op: "pulls", Repo: "acme/api", Status: 500},
			"commits acme/api":  &github.FetchError{Op: "commits", Repo: "acme/api", Status: 500},
			"contents acme/api": &github.FetchError{Op: "contents", Repo: "acme/api", Status: 500},
		},
	}
	e := New(client, Config{}, twoProjects())

	batch := e.RefreshAll(context.Background())
	require.Len(t, batch.Statuses, 2)
	assert.NotEmpty(t, batch.ID)
	assert.False(t, batch.Stale)

	healthy := batch.Statuses["acme/roadmap"]
	require.NotNil(t, healthy)
	assert.Empty(t, healthy.Error)

	broken := batch.Statuses["acme/api"]
	require.NotNil(t, broken)
	assert.NotEmpty(t, broken.Error)
	assert.Equal(t, 0, broken.Branches.Count)
}

func TestRefreshAll_PublishesSnapshot(t *testing.T) {
	client := &fakeClient{branches: map[string][]string{
		"acme/roadmap": {"main", "develop"},
		"acme/api":     {"main", "develop"},
	}}
	e := New(client, Config{}, twoProjects())

	assert.Empty(t, e.Snapshot())
	batch := e.RefreshAll(context.Background())

	snap := e.Snapshot()
	require.Len(t, snap, 2)
	st, ok := e.Status("acme/roadmap")
	require.True(t, ok)
	assert.True(t, st.Branches.Healthy)

	id, at := e.LastRefresh()
	assert.Equal(t, batch.ID, id)
	assert.False(t, at.IsZero())
}

func TestRefreshAll_StaleBatchDiscarded(t *testing.T) {
	client := &fakeClient{branches: map[string][]string{"acme/roadmap": {"main", "develop"}}}
	e := New(client, Config{}, twoProjects()[:1])

	// Simulate an overlapping cycle: gen 1 reserved first but a later
	// cycle publishes before it settles.
	e.genMu.Lock()
	e.nextGen = 5
	e.genMu.Unlock()
	e.mu.Lock()
	e.publishedGen = 6
	e.mu.Unlock()

	batch := e.RefreshAll(context.Background())
	assert.True(t, batch.Stale, "older generation must not overwrite a newer published batch")
}

func TestOnPublish_CalledPerPublishedBatch(t *testing.T) {
	client := &fakeClient{branches: map[string][]string{"acme/roadmap": {"main"}}}
	e := New(client, Config{}, twoProjects()[:1])

	var calls atomic.Int32
	e.OnPublish(func(b Batch) { calls.Add(1) })

	e.RefreshAll(context.Background())
	e.RefreshAll(context.Background())
	assert.Equal(t, int32(2), calls.Load())
}

func TestStartAutoRefresh_FetchesImmediately(t *testing.T) {
	client := &fakeClient{branches: map[string][]string{"acme/roadmap": {"main"}}}
	e := New(client, Config{}, twoProjects()[:1])

	published := make(chan Batch, 1)
	e.OnPublish(func(b Batch) {
		select {
		case published <- b:
		default:
		}
	})

	// Long interval: only the immediate fetch can fire.
	stop := e.StartAutoRefresh(context.Background(), time.Hour)
	defer stop()

	select {
	case <-published:
	case <-time.After(5 * time.Second):
		t.Fatal("expected an immediate refresh before the first interval elapsed")
	}
}

func TestStartAutoRefresh_StopDisarmsTimer(t *testing.T) {
	client := &fakeClient{branches: map[string][]string{"acme/roadmap": {"main"}}}
	e := New(client, Config{}, twoProjects()[:1])

	var calls atomic.Int32
	e.OnPublish(func(b Batch) { calls.Add(1) })

	stop := e.StartAutoRefresh(context.Background(), 20*time.Millisecond)
	time.Sleep(70 * time.Millisecond)
	stop()
	stop() // idempotent

	// Let any in-flight cycle settle before sampling.
	time.Sleep(50 * time.Millisecond)
	settled := calls.Load()
	assert.GreaterOrEqual(t, settled, int32(2), "immediate fetch plus at least one tick")

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, settled, calls.Load(), "no refreshes after stop")
}
