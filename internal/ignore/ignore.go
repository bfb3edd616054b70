// Package ignore compiles a gitignore-compatible pattern set — from a
// repo-level ignore file plus config-level include/exclude lists — into an
// ordered decision list, deciding for a canonical path whether it is
// excluded from review.
package ignore

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// MaxIgnoreFileBytes bounds the ignore file this package will load.
const MaxIgnoreFileBytes = 1 * 1024 * 1024

// rule is one compiled pattern line.
type rule struct {
	raw        string
	glob       string // the doublestar-matchable glob, after normalization
	negated    bool
	lineNumber int
	dirOnly    bool // trailing "/" in the source pattern: matches directory contents only
}

// Matcher holds a compiled, ordered rule list. Later rules override
// earlier ones on a match (last-match-wins), which is how gitignore
// negation works.
type Matcher struct {
	rules []rule
}

// CompileIgnoreFile parses an ignore file's contents (e.g. .gitignore
// syntax) into a Matcher. Empty lines and comment lines (leading '#') are
// skipped; an escaped leading '#' or '!' is treated as literal.
func CompileIgnoreFile(contents string) (*Matcher, error) {
	if len(contents) > MaxIgnoreFileBytes {
		return nil, fmt.Errorf("ignore file exceeds %d bytes", MaxIgnoreFileBytes)
	}

	var rules []rule
	scanner := bufio.NewScanner(strings.NewReader(contents))
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		if r, ok := compileLine(line, lineNumber); ok {
			rules = append(rules, r)
		}
	}
	return &Matcher{rules: rules}, nil
}

// CompileList compiles an ordered list of raw pattern lines (e.g. from
// config-level include/exclude lists) the same way as an ignore file.
func CompileList(patterns []string) (*Matcher, error) {
	var rules []rule
	for i, p := range patterns {
		if r, ok := compileLine(p, i+1); ok {
			rules = append(rules, r)
		}
	}
	return &Matcher{rules: rules}, nil
}

func compileLine(line string, lineNumber int) (rule, bool) {
	trimmed := strings.TrimRight(line, "\r")
	if trimmed == "" {
		return rule{}, false
	}
	if strings.HasPrefix(trimmed, "#") {
		return rule{}, false
	}

	negated := false
	switch {
	case strings.HasPrefix(trimmed, "\\#"):
		trimmed = trimmed[1:]
	case strings.HasPrefix(trimmed, "\\!"):
		trimmed = trimmed[1:]
	case strings.HasPrefix(trimmed, "!"):
		negated = true
		trimmed = trimmed[1:]
	}
	if trimmed == "" {
		return rule{}, false
	}

	dirOnly := strings.HasSuffix(trimmed, "/")
	pattern := strings.TrimSuffix(trimmed, "/")

	rooted := strings.HasPrefix(pattern, "/")
	pattern = strings.TrimPrefix(pattern, "/")

	glob := normalizeGlob(pattern, rooted)

	return rule{raw: line, glob: glob, negated: negated, lineNumber: lineNumber, dirOnly: dirOnly}, true
}

// normalizeGlob turns a gitignore pattern into a doublestar-matchable glob:
// a rooted pattern anchors to the tree root; every other pattern, including
// one with an inner "/", is prefixed with "**/" and matches at any depth.
// A directory-only pattern's contents are matched in rule.matches, which
// also tries the glob with a "/**" suffix.
func normalizeGlob(pattern string, rooted bool) string {
	if rooted {
		return pattern
	}
	return "**/" + pattern
}

// Match reports whether path is ignored: the last rule whose glob matches
// (or whose dirOnly glob matches path as a directory prefix) decides,
// implementing gitignore's last-match-wins negation semantics.
func (m *Matcher) Match(path string) bool {
	ignored := false
	for _, r := range m.rules {
		if r.matches(path) {
			ignored = !r.negated
		}
	}
	return ignored
}

func (r rule) matches(path string) bool {
	if !r.dirOnly {
		if ok, _ := doublestar.Match(r.glob, path); ok {
			return true
		}
	}
	// Also match as a directory-contents pattern: "docs" should ignore
	// "docs/readme.md" even without an explicit trailing "/**".
	ok, _ := doublestar.Match(r.glob+"/**", path)
	return ok
}
