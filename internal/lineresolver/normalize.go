package lineresolver

import "github.com/codepathfinder/prreview/internal/model"

// NormalizeOutcome tags what happened to one finding during normalization.
type NormalizeOutcome string

const (
	OutcomeValid     NormalizeOutcome = "valid"
	OutcomeSnapped   NormalizeOutcome = "snapped"
	OutcomeDropped   NormalizeOutcome = "dropped"
)

// NormalizeDetail records the per-finding outcome, used for drift reporting.
type NormalizeDetail struct {
	Finding      model.Finding
	Outcome      NormalizeOutcome
	OriginalLine int
	NewLine      int // set only when Outcome == OutcomeSnapped
	Reason       Reason
}

// NormalizeStats summarizes a normalization pass.
type NormalizeStats struct {
	Valid     int
	Snapped   int
	Dropped   int
}

// NormalizeConfig controls how an invalid line is handled: snap to the
// nearest commentable line, or drop the finding entirely.
type NormalizeConfig struct {
	SnapToNearest bool
	AdditionsOnly bool
}

// NormalizeForDiff validates every finding's line against lm and either
// keeps it as-is, snaps it to the nearest commentable line, or drops it.
// A finding with no line, targeting a deleted file, or landing on a
// non-commentable line is handled per cfg.
func NormalizeForDiff(findings []model.Finding, lm *model.LineMap, cfg NormalizeConfig) (NormalizeStats, []NormalizeDetail) {
	var stats NormalizeStats
	details := make([]NormalizeDetail, 0, len(findings))

	for _, f := range findings {
		if !f.HasLine() {
			stats.Dropped++
			details = append(details, NormalizeDetail{Finding: f, Outcome: OutcomeDropped, Reason: ReasonLineNotInDiff})
			continue
		}

		result := Validate(lm, f.File, f.Line, Options{AdditionsOnly: cfg.AdditionsOnly, SuggestNearest: cfg.SnapToNearest})
		if result.Valid {
			stats.Valid++
			details = append(details, NormalizeDetail{Finding: f, Outcome: OutcomeValid, OriginalLine: f.Line, NewLine: f.Line})
			continue
		}

		if cfg.SnapToNearest && result.Nearest != 0 {
			stats.Snapped++
			details = append(details, NormalizeDetail{Finding: f, Outcome: OutcomeSnapped, OriginalLine: f.Line, NewLine: result.Nearest, Reason: result.Reason})
			continue
		}

		stats.Dropped++
		details = append(details, NormalizeDetail{Finding: f, Outcome: OutcomeDropped, OriginalLine: f.Line, Reason: result.Reason})
	}

	return stats, details
}
