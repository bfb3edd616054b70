package lineresolver

import "github.com/codepathfinder/prreview/internal/model"

// Reason names why a line failed validation.
type Reason string

const (
	ReasonFileNotInDiff    Reason = "file_not_in_diff"
	ReasonFileDeleted      Reason = "file_deleted"
	ReasonLineNotInDiff    Reason = "line_not_in_diff"
	ReasonLineNotAddition  Reason = "line_not_addition"
)

// Options configures Validate.
type Options struct {
	// AdditionsOnly requires the line to be an added line, not merely
	// present as diff context.
	AdditionsOnly bool
	// SuggestNearest, when the line is invalid, searches for the closest
	// commentable line and returns it.
	SuggestNearest bool
}

// Result is the outcome of validating one (file, line) pair.
type Result struct {
	Valid   bool
	Reason  Reason
	Nearest int // 0 when no suggestion was requested or none exists
}

// Validate checks whether a finding's line is commentable, per opts.
func Validate(lm *model.LineMap, file string, line int, opts Options) Result {
	flm, ok := lm.Files[file]
	if !ok {
		return Result{Valid: false, Reason: ReasonFileNotInDiff}
	}

	lines := flm.AllLines
	if opts.AdditionsOnly {
		lines = flm.AddedLines
	}

	if _, ok := lines[line]; ok {
		return Result{Valid: true}
	}

	reason := ReasonLineNotInDiff
	if opts.AdditionsOnly {
		if _, inAll := flm.AllLines[line]; inAll {
			reason = ReasonLineNotAddition
		}
	}

	result := Result{Valid: false, Reason: reason}
	if opts.SuggestNearest {
		if nearest, found := nearestLine(flm, line, opts.AdditionsOnly); found {
			result.Nearest = nearest
		}
	}
	return result
}

// nearestLine walks the sorted candidate lines and returns the globally
// closest to target, stopping as soon as distance starts increasing (the
// lines are sorted ascending, so once we've crossed target the distance
// can only grow from there).
func nearestLine(flm *model.FileLineMap, target int, additionsOnly bool) (int, bool) {
	candidates := sortedCandidates(flm, additionsOnly)
	if len(candidates) == 0 {
		return 0, false
	}

	best := candidates[0]
	bestDist := abs(best - target)
	for _, l := range candidates[1:] {
		d := abs(l - target)
		if d < bestDist {
			best, bestDist = l, d
			continue
		}
		if l > target {
			// Sorted ascending and now moving away from target: no closer
			// candidate remains.
			break
		}
	}
	return best, true
}

func sortedCandidates(flm *model.FileLineMap, additionsOnly bool) []int {
	all := flm.SortedLines()
	if !additionsOnly {
		return all
	}
	out := make([]int, 0, len(all))
	for _, l := range all {
		if _, ok := flm.AddedLines[l]; ok {
			out = append(out, l)
		}
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
