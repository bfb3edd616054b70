// Package lineresolver parses unified-diff patches into hunks and derives,
// per file, the set of line numbers that are commentable on the host
// platform. Host review APIs silently drop or mis-place inline comments
// posted on off-diff lines, so every inline comment must be validated
// against a FileLineMap before it is posted.
package lineresolver

import (
	"regexp"
	"strconv"

	"github.com/codepathfinder/prreview/internal/model"
)

// hunkHeaderRe matches "@@ -a,b +c,d @@" headers, accepting the
// count-omitted variant ("@@ -a +c @@", implying a count of 1).
var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// ParseHunks parses every hunk in a unified-diff patch.
func ParseHunks(patch string) []model.DiffHunk {
	var hunks []model.DiffHunk
	var current *model.DiffHunk
	newLine := 0

	for _, line := range splitLines(patch) {
		if m := hunkHeaderRe.FindStringSubmatch(line); m != nil {
			if current != nil {
				hunks = append(hunks, *current)
			}
			oldStart := atoiDefault(m[1], 0)
			oldCount := atoiDefault(m[2], 1)
			newStart := atoiDefault(m[3], 0)
			newCount := atoiDefault(m[4], 1)
			current = &model.DiffHunk{OldStart: oldStart, OldCount: oldCount, NewStart: newStart, NewCount: newCount}
			newLine = newStart
			continue
		}
		if current == nil {
			continue
		}
		if len(line) == 0 {
			continue
		}
		switch line[0] {
		case '+':
			current.Lines = append(current.Lines, model.HunkLine{NewLine: newLine, Kind: model.HunkLineAddition})
			newLine++
		case ' ':
			current.Lines = append(current.Lines, model.HunkLine{NewLine: newLine, Kind: model.HunkLineContext})
			newLine++
		case '-':
			// Deleted line: advances the old-file counter only (tracked
			// implicitly via OldStart/OldCount), allocates no new-file line.
		case '\\':
			// "\ No newline at end of file" and similar: ignored.
		}
	}
	if current != nil {
		hunks = append(hunks, *current)
	}
	return hunks
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
