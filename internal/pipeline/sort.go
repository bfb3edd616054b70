package pipeline

import (
	"sort"

	"github.com/codepathfinder/prreview/internal/model"
)

// Sort orders findings by severity (error, warning, info), then file path,
// then line number, ascending. It sorts in place and also returns the
// slice for chaining.
func Sort(findings []model.Finding) []model.Finding {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() < b.Severity.Rank()
		}
		if a.File != b.File {
			return a.File < b.File
		}
		return a.Line < b.Line
	})
	return findings
}
