package reporting

import (
	"github.com/codepathfinder/prreview/internal/model"
	"github.com/codepathfinder/prreview/internal/pipeline"
)

// Gates reports whether the complete-stream findings should fail the
// overall status, given the configured fail-on threshold. A finding fails
// the run when it is at least as severe as the threshold — `error` always
// fails regardless of threshold; `info` only fails when the threshold
// itself is `info`. Partial findings never participate in gating (spec
// §4.8/§4.9).
func Gates(complete []pipeline.Group, failOn model.Severity) bool {
	for _, g := range complete {
		for _, f := range g.Findings {
			if f.Severity.Rank() <= failOn.Rank() {
				return true
			}
		}
	}
	return false
}
