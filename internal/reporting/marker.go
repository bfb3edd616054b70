package reporting

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"

	"github.com/codepathfinder/prreview/internal/model"
)

// markerPrefix namespaces the hidden marker so a stray "<!-- ... -->"
// comment left by something else never collides with one of ours.
const markerPrefix = "prreview:fp:"

var markerRe = regexp.MustCompile(`<!--\s*prreview:fp:([0-9a-f]+)\s*-->`)

// Marker returns the hidden HTML-comment token embedded at the end of
// every posted comment. Across runs this is the sole identity carrier for
// a finding — no persistent database is assumed (spec §5).
func Marker(f model.Finding) string {
	return fmt.Sprintf("<!-- %s%s -->", markerPrefix, fingerprintFor(f))
}

// fingerprintFor uses the finding's own Fingerprint when the producing
// agent set one (the CFA core always does); otherwise it derives one from
// file/line/ruleId/sourceAgent/message so every finding is markable.
func fingerprintFor(f model.Finding) string {
	if f.Fingerprint != "" {
		return f.Fingerprint
	}
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%s|%s|%s", f.File, f.Line, f.RuleID, f.SourceAgent, f.Message)
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// ExtractMarkers returns every fingerprint embedded in body, in the order
// they appear. A malformed marker (the regex does not match it) is
// skipped rather than treated as a parse error; neither this function nor
// its callers log a warning for it.
func ExtractMarkers(body string) []string {
	matches := markerRe.FindAllStringSubmatch(body, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}
