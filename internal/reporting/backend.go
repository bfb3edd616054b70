package reporting

import "context"

// StatusState is the coarse overall-status outcome the run publishes to
// the hosting platform's check-run/status API.
type StatusState string

const (
	StatusPending StatusState = "pending"
	StatusPass    StatusState = "success"
	StatusFail    StatusState = "failure"
)

// PostedComment is one existing comment/thread as read back from the
// platform, enough to find a prior summary or extract prior markers.
type PostedComment struct {
	ID   string
	Body string
}

// Backend is the per-platform half of the Reporter contract: "summary
// element + inline comment element + overall-status element" (spec §4.9),
// abstracted so GitHub and Azure DevOps implementations share every
// ordering/dedup/resolve rule in publish.go.
type Backend interface {
	// StartStatus opens an in-progress status/check-run early.
	StartStatus(ctx context.Context) error

	// ListSummaryComments returns existing top-level PR comments, to find
	// one carrying the summary marker.
	ListSummaryComments(ctx context.Context) ([]PostedComment, error)
	PostSummary(ctx context.Context, body string) error
	UpdateSummary(ctx context.Context, id, body string) error

	// ListInlineComments returns existing inline review comments/threads.
	ListInlineComments(ctx context.Context) ([]PostedComment, error)
	PostInline(ctx context.Context, file string, line int, body string) error
	UpdateInline(ctx context.Context, id, body string) error
	// ResolveInline closes or strikes-through a thread whose finding(s) no
	// longer exist. partial is true when only some of the thread's
	// embedded markers are stale, calling for a strikethrough rather than
	// a full close.
	ResolveInline(ctx context.Context, id string, partial bool) error

	// SetStatus updates the overall status/check-run from gating.
	SetStatus(ctx context.Context, state StatusState, description string) error
}
