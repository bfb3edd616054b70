package pipeline

import "github.com/codepathfinder/prreview/internal/model"

// LineProximityThreshold is how close two same-fingerprint findings in the
// same file must be (in lines) to be considered the same finding reported
// twice rather than two distinct occurrences.
const LineProximityThreshold = 3

// Dedupe collapses findings that share a fingerprint and lie within
// LineProximityThreshold lines of each other in the same file, keeping the
// first-seen occurrence. Order of the surviving findings matches their
// first appearance in findings.
func Dedupe(findings []model.Finding) []model.Finding {
	type seenKey struct {
		file        string
		fingerprint string
	}
	kept := make([]model.Finding, 0, len(findings))
	seenLines := make(map[seenKey][]int)

	for _, f := range findings {
		key := seenKey{file: f.File, fingerprint: f.Fingerprint}
		lines := seenLines[key]

		duplicate := false
		for _, line := range lines {
			if abs(f.Line-line) <= LineProximityThreshold {
				duplicate = true
				break
			}
		}

		// Record this line regardless, so a chain of near findings
		// (10, 13, 16, ...) merges transitively even though the first
		// and last are more than the threshold apart.
		seenLines[key] = append(lines, f.Line)
		if duplicate {
			continue
		}
		kept = append(kept, f)
	}

	return kept
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
