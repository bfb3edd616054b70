package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/codepathfinder/prreview/internal/lineresolver"
	"github.com/codepathfinder/prreview/internal/model"
	"github.com/codepathfinder/prreview/internal/pipeline"
)

// minInlinePostInterval is the rate limit between inline comment posts
// (spec §4.9: "≥ 100 ms between inline posts").
const minInlinePostInterval = 100 * time.Millisecond

// Publisher drives the two-publisher contract (spec §4.9) against a
// platform Backend: start an in-progress status, upsert the summary,
// post/update/resolve inline comments, and update the overall status from
// gating — in the ordering the spec requires (summary before inline,
// resolution after inline).
type Publisher struct {
	Backend Backend

	// Sleep is the rate-limit delay hook; tests override it with a no-op
	// so the suite doesn't pay 100ms per inline comment.
	Sleep func(time.Duration)
}

// New creates a Publisher with the real time.Sleep rate limiter.
func New(backend Backend) *Publisher {
	return &Publisher{Backend: backend, Sleep: time.Sleep}
}

// StartStatus opens an in-progress status/check-run early, per spec
// §4.9's contract op 1.
func (p *Publisher) StartStatus(ctx context.Context) error {
	return p.Backend.StartStatus(ctx)
}

// Publish runs the full publish contract (spec §4.9 op 2).
func (p *Publisher) Publish(ctx context.Context, complete, partial []pipeline.Group, changeSet model.ChangeSet, drift lineresolver.DriftSignal, cfg model.Config) error {
	driftGate := drift.Severity == lineresolver.DriftCritical

	if err := p.publishSummary(ctx, complete, partial, drift, driftGate); err != nil {
		return fmt.Errorf("publish summary: %w", err)
	}

	if !driftGate {
		if err := p.publishInline(ctx, complete, changeSet, cfg); err != nil {
			return fmt.Errorf("publish inline: %w", err)
		}
	}

	fail := Gates(complete, cfg.FailOnSeverity)
	state := StatusPass
	description := "no gating findings"
	if fail {
		state = StatusFail
		description = "gating findings present"
	}
	if driftGate {
		description = "drift gate active: inline comments withheld"
	}
	if err := p.Backend.SetStatus(ctx, state, description); err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	return nil
}

// publishSummary composes and upserts the one summary comment per PR,
// matched by summaryMarker, never creating a second one.
func (p *Publisher) publishSummary(ctx context.Context, complete, partial []pipeline.Group, drift lineresolver.DriftSignal, driftGate bool) error {
	body := BuildSummary(complete, partial, drift, driftGate)

	existing, err := p.Backend.ListSummaryComments(ctx)
	if err != nil {
		return err
	}
	for _, c := range existing {
		if strings.Contains(c.Body, summaryMarker) {
			return p.Backend.UpdateSummary(ctx, c.ID, body)
		}
	}
	return p.Backend.PostSummary(ctx, body)
}

// publishInline posts/updates eligible inline comments, then resolves
// prior threads whose findings no longer exist. Eligible findings exclude
// ones with no line and ones targeting a file the current ChangeSet marks
// deleted. Off-diff lines are not re-checked here; LineResolver filters
// them upstream.
func (p *Publisher) publishInline(ctx context.Context, complete []pipeline.Group, changeSet model.ChangeSet, cfg model.Config) error {
	eligible := filterEligible(complete, changeSet)

	existing, err := p.Backend.ListInlineComments(ctx)
	if err != nil {
		return err
	}
	existingByMarker, currentCommentMarkers := indexExisting(existing)

	maxInline := cfg.MaxInlineComments
	posted := 0
	currentFingerprints := map[string]bool{}

	for i, g := range eligible {
		for _, f := range g.Findings {
			currentFingerprints[fingerprintFor(f)] = true
		}
		if maxInline > 0 && posted >= maxInline {
			continue
		}

		body := BuildInlineBody(g)
		if id, ok := firstExistingID(existingByMarker, g); ok {
			if err := p.Backend.UpdateInline(ctx, id, body); err != nil {
				return err
			}
		} else {
			if err := p.Backend.PostInline(ctx, g.File, g.Line, body); err != nil {
				return err
			}
		}
		posted++

		if i < len(eligible)-1 {
			p.sleep(minInlinePostInterval)
		}
	}

	return p.resolveStale(ctx, existing, currentCommentMarkers, currentFingerprints)
}

func (p *Publisher) sleep(d time.Duration) {
	if p.Sleep != nil {
		p.Sleep(d)
	}
}

// resolveStale closes threads whose every embedded marker is gone from
// the current run, and strikes through just the stale markers of threads
// where only some are gone.
func (p *Publisher) resolveStale(ctx context.Context, existing []PostedComment, markersByComment map[string][]string, current map[string]bool) error {
	for _, c := range existing {
		markers := markersByComment[c.ID]
		if len(markers) == 0 {
			continue
		}
		staleCount := 0
		for _, m := range markers {
			if !current[m] {
				staleCount++
			}
		}
		if staleCount == 0 {
			continue
		}
		partial := staleCount < len(markers)
		if err := p.Backend.ResolveInline(ctx, c.ID, partial); err != nil {
			return err
		}
	}
	return nil
}

func filterEligible(groups []pipeline.Group, changeSet model.ChangeSet) []pipeline.Group {
	out := make([]pipeline.Group, 0, len(groups))
	for _, g := range groups {
		file, ok := changeSet.FileByPath(g.File)
		if ok && file.Status == model.FileDeleted {
			continue
		}
		kept := pipeline.Group{File: g.File, Line: g.Line}
		for _, f := range g.Findings {
			if !f.HasLine() {
				continue
			}
			kept.Findings = append(kept.Findings, f)
		}
		if len(kept.Findings) > 0 {
			out = append(out, kept)
		}
	}
	return out
}

// indexExisting maps each embedded fingerprint marker to the comment ID
// that carries it, and separately records every marker embedded in each
// comment (a group's inline comment may carry more than one).
func indexExisting(comments []PostedComment) (byMarker map[string]string, markersByComment map[string][]string) {
	byMarker = map[string]string{}
	markersByComment = map[string][]string{}
	for _, c := range comments {
		markers := ExtractMarkers(c.Body)
		markersByComment[c.ID] = markers
		for _, m := range markers {
			byMarker[m] = c.ID
		}
	}
	return byMarker, markersByComment
}

// firstExistingID finds an existing comment covering any finding in g, so
// a group is updated in place rather than duplicated across runs.
func firstExistingID(byMarker map[string]string, g pipeline.Group) (string, bool) {
	for _, f := range g.Findings {
		if id, ok := byMarker[fingerprintFor(f)]; ok {
			return id, true
		}
	}
	return "", false
}
