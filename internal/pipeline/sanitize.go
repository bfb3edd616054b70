// Package pipeline implements FindingPipeline: the stage between agent
// output and the Reporter. It sanitizes raw findings, deduplicates near
// duplicates, orders and groups them for presentation, and splits the
// result into a complete stream (drives gating) and a partial stream
// (posted but never gates).
package pipeline

import (
	"html"
	"strings"

	"github.com/codepathfinder/prreview/internal/model"
)

// Sanitize strips embedded NUL bytes, truncates the three bounded fields
// to their model-defined limits, and HTML-escapes message and suggestion
// text so it can be embedded safely in a rendered comment body. RuleID is
// not HTML-escaped: it is never rendered outside an italic code-style
// span and escaping it would corrupt rule identifiers like `a<b`-style
// regex fragments some agents emit.
func Sanitize(f model.Finding) model.Finding {
	f.Message = truncate(html.EscapeString(stripNull(f.Message)), model.MaxMessageLen)
	f.Suggestion = truncate(html.EscapeString(stripNull(f.Suggestion)), model.MaxSuggestionLen)
	f.RuleID = truncate(stripNull(f.RuleID), model.MaxRuleIDLen)
	return f
}

// SanitizeAll applies Sanitize to every finding and returns the results in
// a new slice; the input slice is not modified.
func SanitizeAll(findings []model.Finding) []model.Finding {
	out := make([]model.Finding, len(findings))
	for i, f := range findings {
		out[i] = Sanitize(f)
	}
	return out
}

func stripNull(s string) string {
	if !strings.ContainsRune(s, 0) {
		return s
	}
	return strings.ReplaceAll(s, "\x00", "")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
