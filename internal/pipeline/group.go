package pipeline

import "github.com/codepathfinder/prreview/internal/model"

// Group is a run of findings in the same file, close enough together that
// the Reporter renders them as a single inline comment rather than one
// comment per finding. Members are kept in their incoming (sorted) order;
// the comment anchors on the first member's line.
type Group struct {
	File     string
	Line     int
	Findings []model.Finding
}

// GroupAdjacent folds sorted findings into Groups: consecutive findings in
// the same file whose lines are within LineProximityThreshold of the
// previous member of the run join the same Group. findings must already be
// sorted by Sort (or at least ordered by file then line) for grouping to
// produce contiguous runs.
func GroupAdjacent(findings []model.Finding) []Group {
	groups := make([]Group, 0, len(findings))

	for _, f := range findings {
		if n := len(groups); n > 0 {
			last := &groups[n-1]
			lastMember := last.Findings[len(last.Findings)-1]
			if f.File == last.File && abs(f.Line-lastMember.Line) <= LineProximityThreshold {
				last.Findings = append(last.Findings, f)
				continue
			}
		}
		groups = append(groups, Group{File: f.File, Line: f.Line, Findings: []model.Finding{f}})
	}

	return groups
}
