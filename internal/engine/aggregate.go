// Package engine reconstructs project state: it fans out the six
// per-project fetches, runs the document parsers and the ship-gate
// classifier over whatever came back, and batches the work across all
// tracked projects. Aggregation never fails; fetch errors are recorded
// on the status record instead.
package engine

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joescharf/shipgate/internal/docs"
	"github.com/joescharf/shipgate/internal/gate"
	"github.com/joescharf/shipgate/internal/github"
	"github.com/joescharf/shipgate/internal/models"
)

// Config holds the fetch settings shared by all tracked projects.
type Config struct {
	// Ref is the branch the documents and latest commit are read from.
	Ref string

	VisionPath     string
	MilestonesPath string
	HandoffPath    string

	// Concurrency bounds how many projects refresh at once.
	Concurrency int
}

// Defaults for any zero-valued Config field.
const (
	DefaultRef            = "develop"
	DefaultVisionPath     = "docs/VISION.md"
	DefaultMilestonesPath = "docs/MILESTONES.md"
	DefaultHandoffPath    = "docs/HANDOFF.md"
	DefaultConcurrency    = 4
)

func (c Config) withDefaults() Config {
	if c.Ref == "" {
		c.Ref = DefaultRef
	}
	if c.VisionPath == "" {
		c.VisionPath = DefaultVisionPath
	}
	if c.MilestonesPath == "" {
		c.MilestonesPath = DefaultMilestonesPath
	}
	if c.HandoffPath == "" {
		c.HandoffPath = DefaultHandoffPath
	}
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	return c
}

// result is a tagged fetch outcome. Failures cross the concurrency
// boundary as values, never as errors, so one fetch can never take its
// siblings down.
type result[T any] struct {
	value T
	err   error
}

// or unwraps the result, substituting def and recording the failure
// reason when the fetch failed.
func (r result[T]) or(def T, errs *[]string) T {
	if r.err != nil {
		*errs = append(*errs, r.err.Error())
		return def
	}
	return r.value
}

// capture schedules fn on the group, storing its outcome in dst. The
// worker itself always succeeds so the group never cancels siblings.
func capture[T any](g *errgroup.Group, dst *result[T], fn func() (T, error)) {
	g.Go(func() error {
		dst.value, dst.err = fn()
		return nil
	})
}

// FetchProjectStatus builds one complete status record for a tracked
// project. The six fetches run concurrently and settle independently;
// a missing document is "no data", a failed fetch contributes its
// reason to the status error string. This function never fails.
func FetchProjectStatus(ctx context.Context, client github.Client, cfg Config, p models.TrackedProject) *models.ProjectStatus {
	cfg = cfg.withDefaults()

	var (
		branches   result[models.BranchInfo]
		prs        result[[]models.PullRequestInfo]
		commit     result[*models.CommitInfo]
		vision     result[*string]
		milestones result[*string]
		handoff    result[*string]
	)

	var g errgroup.Group
	capture(&g, &branches, func() (models.BranchInfo, error) {
		return client.Branches(ctx, p.Repo)
	})
	capture(&g, &prs, func() ([]models.PullRequestInfo, error) {
		return client.OpenPullRequests(ctx, p.Repo)
	})
	capture(&g, &commit, func() (*models.CommitInfo, error) {
		return client.LatestCommit(ctx, p.Repo, cfg.Ref)
	})
	capture(&g, &vision, func() (*string, error) {
		return fetchDoc(ctx, client, p.Repo, cfg.VisionPath, cfg.Ref)
	})
	capture(&g, &milestones, func() (*string, error) {
		return fetchDoc(ctx, client, p.Repo, cfg.MilestonesPath, cfg.Ref)
	})
	capture(&g, &handoff, func() (*string, error) {
		return fetchDoc(ctx, client, p.Repo, cfg.HandoffPath, cfg.Ref)
	})
	_ = g.Wait()

	var errs []string
	status := &models.ProjectStatus{
		Repo:        p.Repo,
		DisplayName: p.DisplayName,
		Description: p.Description,
		Branches:    branches.or(models.BranchInfo{Names: []string{}}, &errs),
		OpenPRs:     prs.or([]models.PullRequestInfo{}, &errs),
		LastCommit:  commit.or(nil, &errs),
		FetchedAt:   time.Now().UTC(),
	}

	if doc := milestones.or(nil, &errs); doc != nil {
		status.Milestones = docs.ParseMilestones(*doc)
		status.Progress = docs.ParseProgress(*doc, status.Milestones)
		status.StageProgress = docs.ParseStageProgress(*doc)
	}
	status.Gate = gate.Compute(status.StageProgress)

	if doc := vision.or(nil, &errs); doc != nil {
		ns := docs.ParseVision(*doc)
		status.NorthStar = &ns
	}
	if doc := handoff.or(nil, &errs); doc != nil {
		session := docs.ParseHandoff(*doc)
		status.Session = &session
	}

	status.Error = strings.Join(errs, "; ")
	return status
}

// fetchDoc reads one document, folding "file absent" into a nil
// pointer so the aggregator can tell absence from failure.
func fetchDoc(ctx context.Context, client github.Client, repo, path, ref string) (*string, error) {
	content, found, err := client.FileContent(ctx, repo, path, ref)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &content, nil
}
