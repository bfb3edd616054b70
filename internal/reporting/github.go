package reporting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// GitHubBackend implements Backend against the GitHub REST API: issue
// comments for the summary, one pull-request review per inline comment,
// and commit statuses for the overall status/check-run.
type GitHubBackend struct {
	Owner, Repo string
	PRNumber    int
	CommitSHA   string

	baseURL    string
	token      string
	httpClient *http.Client
}

// NewGitHubBackend creates a GitHubBackend authenticated with token.
func NewGitHubBackend(token, owner, repo string, prNumber int, commitSHA string) *GitHubBackend {
	return &GitHubBackend{
		Owner:     owner,
		Repo:      repo,
		PRNumber:  prNumber,
		CommitSHA: commitSHA,
		baseURL:   "https://api.github.com",
		token:     token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (g *GitHubBackend) StartStatus(ctx context.Context) error {
	return g.SetStatus(ctx, StatusPending, "review in progress")
}

type githubComment struct {
	ID   int64  `json:"id"`
	Body string `json:"body"`
}

func (g *GitHubBackend) ListSummaryComments(ctx context.Context) ([]PostedComment, error) {
	path := fmt.Sprintf("/repos/%s/%s/issues/%d/comments", g.Owner, g.Repo, g.PRNumber)
	var comments []githubComment
	if err := g.get(ctx, path, &comments); err != nil {
		return nil, fmt.Errorf("list summary comments: %w", err)
	}
	return toPosted(comments), nil
}

func (g *GitHubBackend) PostSummary(ctx context.Context, body string) error {
	path := fmt.Sprintf("/repos/%s/%s/issues/%d/comments", g.Owner, g.Repo, g.PRNumber)
	return g.send(ctx, http.MethodPost, path, map[string]string{"body": body}, nil)
}

func (g *GitHubBackend) UpdateSummary(ctx context.Context, id, body string) error {
	path := fmt.Sprintf("/repos/%s/%s/issues/comments/%s", g.Owner, g.Repo, id)
	return g.send(ctx, http.MethodPatch, path, map[string]string{"body": body}, nil)
}

func (g *GitHubBackend) ListInlineComments(ctx context.Context) ([]PostedComment, error) {
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d/comments", g.Owner, g.Repo, g.PRNumber)
	var comments []githubComment
	if err := g.get(ctx, path, &comments); err != nil {
		return nil, fmt.Errorf("list inline comments: %w", err)
	}
	return toPosted(comments), nil
}

func (g *GitHubBackend) PostInline(ctx context.Context, file string, line int, body string) error {
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d/reviews", g.Owner, g.Repo, g.PRNumber)
	payload := map[string]any{
		"commit_id": g.CommitSHA,
		"event":     "COMMENT",
		"comments": []map[string]any{{
			"path": file,
			"line": line,
			"side": "RIGHT",
			"body": body,
		}},
	}
	return g.send(ctx, http.MethodPost, path, payload, nil)
}

func (g *GitHubBackend) UpdateInline(ctx context.Context, id, body string) error {
	path := fmt.Sprintf("/repos/%s/%s/pulls/comments/%s", g.Owner, g.Repo, id)
	return g.send(ctx, http.MethodPatch, path, map[string]string{"body": body}, nil)
}

func (g *GitHubBackend) ResolveInline(ctx context.Context, id string, partial bool) error {
	body := "_resolved: no longer reproduces._"
	if partial {
		body = "_some findings in this thread no longer reproduce._"
	}
	path := fmt.Sprintf("/repos/%s/%s/pulls/comments/%s", g.Owner, g.Repo, id)
	return g.send(ctx, http.MethodPatch, path, map[string]string{"body": body}, nil)
}

func (g *GitHubBackend) SetStatus(ctx context.Context, state StatusState, description string) error {
	path := fmt.Sprintf("/repos/%s/%s/statuses/%s", g.Owner, g.Repo, g.CommitSHA)
	payload := map[string]string{
		"state":       string(state),
		"description": description,
		"context":     "prreview",
	}
	return g.send(ctx, http.MethodPost, path, payload, nil)
}

func toPosted(comments []githubComment) []PostedComment {
	out := make([]PostedComment, len(comments))
	for i, c := range comments {
		out[i] = PostedComment{ID: fmt.Sprintf("%d", c.ID), Body: c.Body}
	}
	return out
}

func (g *GitHubBackend) get(ctx context.Context, path string, dest any) error {
	return g.send(ctx, http.MethodGet, path, nil, dest)
}

func (g *GitHubBackend) send(ctx context.Context, method, path string, body, dest any) error {
	url := g.baseURL + path

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: HTTP %d", method, path, resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}
