package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/shipgate/internal/github"
	"github.com/joescharf/shipgate/internal/models"
)

// fakeClient implements github.Client with canned per-repo data.
type fakeClient struct {
	branches map[string][]string
	prs      map[string][]models.PullRequestInfo
	commits  map[string]*models.CommitInfo
	files    map[string]string // key: repo + "/" + path
	fail     map[string]error  // key: op + " " + repo
}

var _ github.Client = (*fakeClient)(nil)

func (f *fakeClient) Branches(ctx context.Context, repo string) (models.BranchInfo, error) {
	if err := f.fail["branches "+repo]; err != nil {
		return models.BranchInfo{}, err
	}
	names := f.branches[repo]
	hasMain := false
	for _, n := range names {
		if n == "main" || n == "master" {
			hasMain = true
		}
	}
	return models.BranchInfo{Names: names, Count: len(names), Healthy: len(names) == 2 && hasMain}, nil
}

func (f *fakeClient) OpenPullRequests(ctx context.Context, repo string) ([]models.PullRequestInfo, error) {
	if err := f.fail["pulls "+repo]; err != nil {
		return nil, err
	}
	return f.prs[repo], nil
}

func (f *fakeClient) LatestCommit(ctx context.Context, repo, ref string) (*models.CommitInfo, error) {
	if err := f.fail["commits "+repo]; err != nil {
		return nil, err
	}
	return f.commits[repo], nil
}

func (f *fakeClient) FileContent(ctx context.Context, repo, path, ref string) (string, bool, error) {
	if err := f.fail["contents "+repo]; err != nil {
		return "", false, err
	}
	content, ok := f.files[repo+"/"+path]
	return content, ok, nil
}

const testMilestonesDoc = `| Phase | Name | Status | Stage |
|-------|------|--------|-------|
| M1 | Setup | Done | MVP |
| M6 | Sync | Planned | V2 |

## M1 Setup
- [x] scaffold
- [x] ci

## M6 Sync
- [ ] protocol
- [ ] conflict handling
`

func testProject() models.TrackedProject {
	return models.TrackedProject{Repo: "acme/roadmap", DisplayName: "Roadmap", Description: "Planning service"}
}

func TestFetchProjectStatus_HappyPath(t *testing.T) {
	client := &fakeClient{
		branches: map[string][]string{"acme/roadmap": {"main", "develop"}},
		prs: map[string][]models.PullRequestInfo{"acme/roadmap": {
			{Number: 3, Title: "sync work", Mergeable: models.MergeableYes},
		}},
		commits: map[string]*models.CommitInfo{"acme/roadmap": {SHA: "abc123", Message: "wip"}},
		files: map[string]string{
			"acme/roadmap/docs/MILESTONES.md": testMilestonesDoc,
			"acme/roadmap/docs/VISION.md":     "Ship calm software.\n",
			"acme/roadmap/docs/HANDOFF.md":    "## Next Step\nFinish sync.\n",
		},
	}

	st := FetchProjectStatus(context.Background(), client, Config{}, testProject())
	require.NotNil(t, st)

	assert.Equal(t, "acme/roadmap", st.Repo)
	assert.Empty(t, st.Error)
	assert.True(t, st.Branches.Healthy)
	assert.Len(t, st.OpenPRs, 1)
	require.NotNil(t, st.LastCommit)
	assert.Equal(t, "abc123", st.LastCommit.SHA)

	assert.Len(t, st.Milestones, 2)
	assert.Equal(t, 2, st.Progress.Completed)
	assert.Equal(t, 4, st.Progress.Total)

	require.Len(t, st.StageProgress, 2)
	assert.Equal(t, models.StageMVP, st.StageProgress[0].Stage)
	assert.Equal(t, models.GateShipIt, st.Gate.Status)
	assert.Equal(t, models.StageMVP, st.Gate.CurrentStage)

	require.NotNil(t, st.NorthStar)
	assert.Equal(t, "Ship calm software.", st.NorthStar.Vision)
	require.NotNil(t, st.Session)
	assert.Equal(t, "Finish sync.", st.Session.NextStep)
	assert.False(t, st.FetchedAt.IsZero())
}

func TestFetchProjectStatus_AllFetchesFail(t *testing.T) {
	boom := &github.FetchError{Op: "any", Repo: "acme/roadmap", Status: 500}
	client := &fakeClient{fail: map[string]error{
		"branches acme/roadmap": boom,
		"pulls acme/roadmap":    boom,
		"commits acme/roadmap":  boom,
		"contents acme/roadmap": boom,
	}}

	st := FetchProjectStatus(context.Background(), client, Config{}, testProject())
	require.NotNil(t, st)

	assert.Equal(t, 0, st.Branches.Count)
	assert.NotNil(t, st.Branches.Names)
	assert.Empty(t, st.Branches.Names)
	assert.NotNil(t, st.OpenPRs)
	assert.Empty(t, st.OpenPRs)
	assert.Nil(t, st.LastCommit)
	assert.Empty(t, st.Milestones)
	assert.Nil(t, st.NorthStar)
	assert.Nil(t, st.Session)
	assert.Equal(t, models.GateBuilding, st.Gate.Status)
	assert.Equal(t, models.StageMVP, st.Gate.CurrentStage)

	require.NotEmpty(t, st.Error)
	assert.Contains(t, st.Error, "HTTP 500")
}

func TestFetchProjectStatus_MissingDocsAreNotErrors(t *testing.T) {
	client := &fakeClient{
		branches: map[string][]string{"acme/roadmap": {"main", "develop"}},
	}

	st := FetchProjectStatus(context.Background(), client, Config{}, testProject())
	assert.Empty(t, st.Error)
	assert.Nil(t, st.NorthStar)
	assert.Nil(t, st.Session)
	assert.Empty(t, st.Milestones)
	assert.Equal(t, models.GateBuilding, st.Gate.Status)
}

func TestFetchProjectStatus_PartialFailure(t *testing.T) {
	client := &fakeClient{
		branches: map[string][]string{"acme/roadmap": {"main", "develop"}},
		files: map[string]string{
			"acme/roadmap/docs/MILESTONES.md": testMilestonesDoc,
		},
		fail: map[string]error{
			"pulls acme/roadmap": &github.FetchError{Op: "pulls", Repo: "acme/roadmap", Status: 502},
		},
	}

	st := FetchProjectStatus(context.Background(), client, Config{}, testProject())
	// Partial data still renders; the failed fetch is annotated.
	assert.True(t, st.Branches.Healthy)
	assert.Len(t, st.Milestones, 2)
	assert.Empty(t, st.OpenPRs)
	assert.Contains(t, st.Error, "pulls")
	assert.Contains(t, st.Error, "502")
}
