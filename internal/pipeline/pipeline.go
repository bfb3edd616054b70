package pipeline

import "github.com/codepathfinder/prreview/internal/model"

// Result is FindingPipeline's output: two independently ordered and
// grouped streams. Complete drives the run's overall pass/fail gating;
// Partial is posted to the reader (labeled as degraded) but never gates,
// since it came from an agent run that did not finish cleanly.
type Result struct {
	Complete []Group
	Partial  []Group
}

// Run sanitizes, dedupes, sorts, and groups findings, splitting them by
// Provenance before grouping so a partial-provenance finding can never
// join the same inline comment as a complete one (that would let a
// degraded finding silently gate the run through grouping).
func Run(findings []model.Finding) Result {
	sanitized := SanitizeAll(findings)
	deduped := Dedupe(sanitized)

	var complete, partial []model.Finding
	for _, f := range deduped {
		if f.Provenance == model.ProvenancePartial {
			partial = append(partial, f)
		} else {
			complete = append(complete, f)
		}
	}

	return Result{
		Complete: GroupAdjacent(Sort(complete)),
		Partial:  GroupAdjacent(Sort(partial)),
	}
}
