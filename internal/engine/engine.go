package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/joescharf/shipgate/internal/github"
	"github.com/joescharf/shipgate/internal/models"
)

// DefaultInterval is the auto-refresh period.
const DefaultInterval = 60 * time.Second

// Batch is the outcome of one full refresh cycle.
type Batch struct {
	// ID is a ULID stamped when the cycle starts, for log correlation.
	ID         string                           `json:"id"`
	Generation uint64                           `json:"generation"`
	Statuses   map[string]*models.ProjectStatus `json:"statuses"`
	StartedAt  time.Time                        `json:"started_at"`
	Elapsed    time.Duration                    `json:"elapsed"`
	// Stale is set when a newer cycle published first and this
	// result was discarded.
	Stale bool `json:"stale"`
}

// Engine runs the aggregator across all tracked projects and holds the
// most recently published batch. All state is transient: each cycle
// rebuilds every status from scratch.
type Engine struct {
	client   github.Client
	cfg      Config
	projects []models.TrackedProject

	mu           sync.RWMutex
	statuses     map[string]*models.ProjectStatus
	publishedGen uint64
	lastBatchID  string
	lastRefresh  time.Time

	genMu   sync.Mutex
	nextGen uint64

	onPublish func(Batch)
}

// New creates an engine over the given client and tracked projects.
func New(client github.Client, cfg Config, projects []models.TrackedProject) *Engine {
	return &Engine{
		client:   client,
		cfg:      cfg.withDefaults(),
		projects: projects,
		statuses: map[string]*models.ProjectStatus{},
	}
}

// OnPublish registers a callback invoked after each published batch.
// Must be set before the first refresh.
func (e *Engine) OnPublish(fn func(Batch)) { e.onPublish = fn }

// Projects returns the tracked project configuration.
func (e *Engine) Projects() []models.TrackedProject { return e.projects }

// RefreshAll runs one full batch: every project aggregates
// concurrently, project failures stay isolated, and the result is
// published unless a newer cycle already published (overlapping
// refreshes resolve newest-wins, stale batches are discarded).
func (e *Engine) RefreshAll(ctx context.Context) Batch {
	e.genMu.Lock()
	e.nextGen++
	gen := e.nextGen
	e.genMu.Unlock()

	batch := Batch{
		ID:         ulid.Make().String(),
		Generation: gen,
		StartedAt:  time.Now().UTC(),
		Statuses:   make(map[string]*models.ProjectStatus, len(e.projects)),
	}

	results := make([]*models.ProjectStatus, len(e.projects))
	var g errgroup.Group
	g.SetLimit(e.cfg.Concurrency)
	for i, p := range e.projects {
		g.Go(func() error {
			results[i] = e.fetchOne(ctx, p)
			return nil
		})
	}
	_ = g.Wait()

	for _, st := range results {
		batch.Statuses[st.Repo] = st
	}
	batch.Elapsed = time.Since(batch.StartedAt)

	e.mu.Lock()
	if gen > e.publishedGen {
		e.publishedGen = gen
		e.statuses = batch.Statuses
		e.lastBatchID = batch.ID
		e.lastRefresh = batch.StartedAt
	} else {
		batch.Stale = true
	}
	e.mu.Unlock()

	if !batch.Stale && e.onPublish != nil {
		e.onPublish(batch)
	}
	return batch
}

// fetchOne isolates a single project's aggregation. The aggregator
// never fails by contract; the recover guard keeps an unexpected panic
// in one project from tearing down the batch.
func (e *Engine) fetchOne(ctx context.Context, p models.TrackedProject) (st *models.ProjectStatus) {
	defer func() {
		if r := recover(); r != nil {
			st = emptyStatus(p, fmt.Sprintf("aggregation panic: %v", r))
		}
	}()
	return FetchProjectStatus(ctx, e.client, e.cfg, p)
}

// Snapshot returns a copy of the most recently published statuses,
// keyed by repo id.
func (e *Engine) Snapshot() map[string]*models.ProjectStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string]*models.ProjectStatus, len(e.statuses))
	for k, v := range e.statuses {
		out[k] = v
	}
	return out
}

// Status returns the published status for one repo id.
func (e *Engine) Status(repo string) (*models.ProjectStatus, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	st, ok := e.statuses[repo]
	return st, ok
}

// LastRefresh reports the id and start time of the published batch.
func (e *Engine) LastRefresh() (id string, at time.Time) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastBatchID, e.lastRefresh
}

// StartAutoRefresh fetches once immediately, then re-runs the batch on
// every interval tick until the returned stop function is called or
// ctx is cancelled. Stopping only disarms the timer; a refresh already
// in flight settles normally and publishes if still newest.
func (e *Engine) StartAutoRefresh(ctx context.Context, interval time.Duration) (stop func()) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	done := make(chan struct{})

	go func() {
		e.RefreshAll(ctx)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				e.RefreshAll(ctx)
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

// emptyStatus is the minimal all-empty record substituted when a
// project's aggregation fails wholesale.
func emptyStatus(p models.TrackedProject, reason string) *models.ProjectStatus {
	return &models.ProjectStatus{
		Repo:        p.Repo,
		DisplayName: p.DisplayName,
		Description: p.Description,
		Branches:    models.BranchInfo{Names: []string{}},
		OpenPRs:     []models.PullRequestInfo{},
		Gate:        models.ShipGate{Status: models.GateBuilding, CurrentStage: models.StageMVP},
		FetchedAt:   time.Now().UTC(),
		Error:       reason,
	}
}
