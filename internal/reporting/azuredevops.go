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

// AzureDevOpsBackend implements Backend against the Azure DevOps REST
// API. ADO models both summary and inline feedback as "comment threads"
// on a pull request (no separate issue-comment resource like GitHub's):
// the summary is a thread with no file context, inline findings are
// threads anchored to a file/line.
type AzureDevOpsBackend struct {
	Organization, Project, Repo string
	PRNumber                    int
	CommitSHA                   string

	baseURL    string
	token      string
	httpClient *http.Client
}

// NewAzureDevOpsBackend creates an AzureDevOpsBackend authenticated with a
// personal access token.
func NewAzureDevOpsBackend(token, organization, project, repo string, prNumber int, commitSHA string) *AzureDevOpsBackend {
	return &AzureDevOpsBackend{
		Organization: organization,
		Project:      project,
		Repo:         repo,
		PRNumber:     prNumber,
		CommitSHA:    commitSHA,
		baseURL:      fmt.Sprintf("https://dev.azure.com/%s/%s/_apis/git/repositories/%s", organization, project, repo),
		token:        token,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (a *AzureDevOpsBackend) StartStatus(ctx context.Context) error {
	return a.SetStatus(ctx, StatusPending, "review in progress")
}

type adoThread struct {
	ID       int64           `json:"id"`
	Comments []adoThreadItem `json:"comments"`
	Status   string          `json:"status,omitempty"`
}

type adoThreadItem struct {
	Content string `json:"content"`
}

func (a *AzureDevOpsBackend) threads(ctx context.Context) ([]adoThread, error) {
	path := fmt.Sprintf("/pullRequests/%d/threads?api-version=7.1", a.PRNumber)
	var wrapper struct {
		Value []adoThread `json:"value"`
	}
	if err := a.get(ctx, path, &wrapper); err != nil {
		return nil, err
	}
	return wrapper.Value, nil
}

func threadBody(t adoThread) string {
	if len(t.Comments) == 0 {
		return ""
	}
	return t.Comments[0].Content
}

func (a *AzureDevOpsBackend) ListSummaryComments(ctx context.Context) ([]PostedComment, error) {
	threads, err := a.threads(ctx)
	if err != nil {
		return nil, fmt.Errorf("list summary threads: %w", err)
	}
	return toADOPosted(threads), nil
}

func (a *AzureDevOpsBackend) PostSummary(ctx context.Context, body string) error {
	return a.createThread(ctx, body, nil)
}

func (a *AzureDevOpsBackend) UpdateSummary(ctx context.Context, id, body string) error {
	return a.updateThread(ctx, id, body)
}

func (a *AzureDevOpsBackend) ListInlineComments(ctx context.Context) ([]PostedComment, error) {
	threads, err := a.threads(ctx)
	if err != nil {
		return nil, fmt.Errorf("list inline threads: %w", err)
	}
	return toADOPosted(threads), nil
}

type adoFileContext struct {
	FilePath       string `json:"filePath"`
	RightFileStart adoPos `json:"rightFileStart"`
	RightFileEnd   adoPos `json:"rightFileEnd"`
}

type adoPos struct {
	Line   int `json:"line"`
	Offset int `json:"offset"`
}

func (a *AzureDevOpsBackend) PostInline(ctx context.Context, file string, line int, body string) error {
	return a.createThread(ctx, body, &adoFileContext{
		FilePath:       "/" + file,
		RightFileStart: adoPos{Line: line, Offset: 1},
		RightFileEnd:   adoPos{Line: line, Offset: 1},
	})
}

func (a *AzureDevOpsBackend) UpdateInline(ctx context.Context, id, body string) error {
	return a.updateThread(ctx, id, body)
}

func (a *AzureDevOpsBackend) ResolveInline(ctx context.Context, id string, partial bool) error {
	status := "closed"
	if partial {
		status = "fixed"
	}
	path := fmt.Sprintf("/pullRequests/%d/threads/%s?api-version=7.1", a.PRNumber, id)
	return a.send(ctx, http.MethodPatch, path, map[string]string{"status": status}, nil)
}

func (a *AzureDevOpsBackend) SetStatus(ctx context.Context, state StatusState, description string) error {
	path := fmt.Sprintf("/commits/%s/statuses?api-version=7.1", a.CommitSHA)
	payload := map[string]any{
		"state":       adoState(state),
		"description": description,
		"context":     map[string]string{"name": "prreview", "genre": "continuous-integration"},
	}
	return a.send(ctx, http.MethodPost, path, payload, nil)
}

func adoState(s StatusState) string {
	switch s {
	case StatusPass:
		return "succeeded"
	case StatusFail:
		return "failed"
	default:
		return "pending"
	}
}

func (a *AzureDevOpsBackend) createThread(ctx context.Context, body string, fileCtx *adoFileContext) error {
	path := fmt.Sprintf("/pullRequests/%d/threads?api-version=7.1", a.PRNumber)
	payload := map[string]any{
		"comments": []adoThreadItem{{Content: body}},
		"status":   "active",
	}
	if fileCtx != nil {
		payload["threadContext"] = fileCtx
	}
	return a.send(ctx, http.MethodPost, path, payload, nil)
}

func (a *AzureDevOpsBackend) updateThread(ctx context.Context, id, body string) error {
	path := fmt.Sprintf("/pullRequests/%d/threads/%s/comments/1?api-version=7.1", a.PRNumber, id)
	return a.send(ctx, http.MethodPatch, path, map[string]string{"content": body}, nil)
}

func toADOPosted(threads []adoThread) []PostedComment {
	out := make([]PostedComment, 0, len(threads))
	for _, t := range threads {
		out = append(out, PostedComment{ID: fmt.Sprintf("%d", t.ID), Body: threadBody(t)})
	}
	return out
}

func (a *AzureDevOpsBackend) get(ctx context.Context, path string, dest any) error {
	return a.send(ctx, http.MethodGet, path, nil, dest)
}

func (a *AzureDevOpsBackend) send(ctx context.Context, method, path string, body, dest any) error {
	url := a.baseURL + path

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
	req.Header.Set("Authorization", "Basic "+a.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
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
