// Package github is a read-only client for the code-hosting REST API.
// Every operation fails independently with a FetchError on a non-2xx
// response; a 404 on a file-content read is absence, not failure.
package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/joescharf/shipgate/internal/models"
)

// DefaultBaseURL is the public GitHub REST v3 endpoint.
const DefaultBaseURL = "https://api.github.com"

// FetchError is a failed API call (non-2xx response).
type FetchError struct {
	Op     string
	Repo   string
	Status int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s %s: HTTP %d", e.Op, e.Repo, e.Status)
}

// Client issues the read operations the engine needs.
type Client interface {
	Branches(ctx context.Context, repo string) (models.BranchInfo, error)
	OpenPullRequests(ctx context.Context, repo string) ([]models.PullRequestInfo, error)
	LatestCommit(ctx context.Context, repo, ref string) (*models.CommitInfo, error)
	// FileContent returns (content, true, nil) when the file exists,
	// (_, false, nil) when it is absent, and an error only on a
	// transport failure.
	FileContent(ctx context.Context, repo, path, ref string) (string, bool, error)
}

// RESTClient implements Client against the GitHub REST API.
type RESTClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option configures a RESTClient.
type Option func(*RESTClient)

// WithBaseURL points the client at a different API host (tests,
// GitHub Enterprise).
func WithBaseURL(u string) Option {
	return func(c *RESTClient) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithToken attaches a bearer token to every request. Without one the
// API still answers, just with a far lower rate limit.
func WithToken(token string) Option {
	return func(c *RESTClient) { c.token = token }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *RESTClient) { c.http = h }
}

// NewClient creates a RESTClient for the public GitHub API.
func NewClient(opts ...Option) *RESTClient {
	c := &RESTClient{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get performs one API call and decodes the JSON body into out.
// A nil *int status means any non-2xx is an error; otherwise the
// response status is written there and the caller decides.
func (c *RESTClient) get(ctx context.Context, op, repo, path string, query url.Values, out any, status *int) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%s %s: %w", op, repo, err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", op, repo, err)
	}
	defer resp.Body.Close()

	if status != nil {
		*status = resp.StatusCode
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if status != nil {
			io.Copy(io.Discard, resp.Body)
			return nil
		}
		return &FetchError{Op: op, Repo: repo, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", op, repo, err)
	}
	return nil
}

// Branches fetches the branch list and derives its health: exactly two
// branches, one of them the main branch.
func (c *RESTClient) Branches(ctx context.Context, repo string) (models.BranchInfo, error) {
	var raw []struct {
		Name string `json:"name"`
	}
	if err := c.get(ctx, "branches", repo, "/repos/"+repo+"/branches", nil, &raw, nil); err != nil {
		return models.BranchInfo{}, err
	}

	names := make([]string, len(raw))
	hasMain := false
	for i, b := range raw {
		names[i] = b.Name
		if b.Name == "main" || b.Name == "master" {
			hasMain = true
		}
	}
	return models.BranchInfo{
		Names:   names,
		Count:   len(names),
		Healthy: len(names) == 2 && hasMain,
	}, nil
}

// OpenPullRequests fetches open PRs. An empty list is a valid result.
func (c *RESTClient) OpenPullRequests(ctx context.Context, repo string) ([]models.PullRequestInfo, error) {
	var raw []struct {
		Number int    `json:"number"`
		Title  string `json:"title"`
		Head   struct {
			Ref string `json:"ref"`
		} `json:"head"`
		Base struct {
			Ref string `json:"ref"`
		} `json:"base"`
		MergeableState string `json:"mergeable_state"`
		User           struct {
			Login string `json:"login"`
		} `json:"user"`
		UpdatedAt string `json:"updated_at"`
		HTMLURL   string `json:"html_url"`
	}
	query := url.Values{"state": {"open"}}
	if err := c.get(ctx, "pulls", repo, "/repos/"+repo+"/pulls", query, &raw, nil); err != nil {
		return nil, err
	}

	prs := make([]models.PullRequestInfo, len(raw))
	for i, p := range raw {
		prs[i] = models.PullRequestInfo{
			Number:    p.Number,
			Title:     p.Title,
			HeadRef:   p.Head.Ref,
			BaseRef:   p.Base.Ref,
			Mergeable: models.NormalizeMergeable(p.MergeableState),
			Author:    p.User.Login,
			UpdatedAt: p.UpdatedAt,
			URL:       p.HTMLURL,
		}
	}
	return prs, nil
}

// LatestCommit fetches the newest commit on ref. A 2xx response with no
// commits (empty branch) returns nil, nil.
func (c *RESTClient) LatestCommit(ctx context.Context, repo, ref string) (*models.CommitInfo, error) {
	var raw []struct {
		SHA    string `json:"sha"`
		Commit struct {
			Message string `json:"message"`
			Author  struct {
				Name string `json:"name"`
				Date string `json:"date"`
			} `json:"author"`
		} `json:"commit"`
	}
	query := url.Values{"per_page": {"1"}}
	if ref != "" {
		query.Set("sha", ref)
	}
	if err := c.get(ctx, "commits", repo, "/repos/"+repo+"/commits", query, &raw, nil); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return &models.CommitInfo{
		SHA:     raw[0].SHA,
		Message: raw[0].Commit.Message,
		Date:    raw[0].Commit.Author.Date,
		Author:  raw[0].Commit.Author.Name,
	}, nil
}

// FileContent fetches a file at path on ref. 404 means the file does
// not exist; a successful response without a content field (the path
// is a directory) is also treated as absent.
func (c *RESTClient) FileContent(ctx context.Context, repo, path, ref string) (string, bool, error) {
	var raw struct {
		Content  *string `json:"content"`
		Encoding string  `json:"encoding"`
	}
	query := url.Values{}
	if ref != "" {
		query.Set("ref", ref)
	}

	var status int
	apiPath := "/repos/" + repo + "/contents/" + strings.TrimLeft(path, "/")
	if err := c.get(ctx, "contents", repo, apiPath, query, &raw, &status); err != nil {
		return "", false, err
	}
	switch {
	case status == http.StatusNotFound:
		return "", false, nil
	case status < 200 || status >= 300:
		return "", false, &FetchError{Op: "contents", Repo: repo, Status: status}
	case raw.Content == nil:
		return "", false, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(compactBase64(*raw.Content))
	if err != nil {
		return "", false, fmt.Errorf("contents %s: decode %s: %w", repo, path, err)
	}
	return string(decoded), true, nil
}

// compactBase64 strips the newlines GitHub embeds in content payloads.
func compactBase64(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}
