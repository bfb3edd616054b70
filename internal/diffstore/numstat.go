package diffstore

import (
	"strconv"
	"strings"

	"github.com/codepathfinder/prreview/internal/model"
)

// numstatEntry is one parsed line of `git diff --numstat -z`.
type numstatEntry struct {
	Additions int // 0 for a binary file ("-" in numstat output); see IsBinary
	Deletions int
	Path      string
	OldPath   string // set only for renames
	IsBinary  bool
}

// parseNumstatZ parses NUL-delimited numstat output, robust against
// filenames containing spaces, tabs, or newlines. Each record is
// "additions<TAB>deletions<TAB>path" terminated by NUL, except renames,
// whose path field is empty and whose oldPath and newPath follow as two
// further NUL-terminated fields.
func parseNumstatZ(raw string) []numstatEntry {
	fields := strings.Split(raw, "\x00")
	var entries []numstatEntry
	for i := 0; i < len(fields); {
		if strings.TrimSpace(fields[i]) == "" {
			i++
			continue
		}
		parts := strings.SplitN(fields[i], "\t", 3)
		if len(parts) < 3 {
			i++
			continue
		}
		add, del, path := parts[0], parts[1], parts[2]
		entry := numstatEntry{Path: Canonicalize(path)}
		if add == "-" || del == "-" {
			entry.IsBinary = true
		} else {
			entry.Additions, _ = strconv.Atoi(add)
			entry.Deletions, _ = strconv.Atoi(del)
		}
		if path == "" && i+1 < len(fields) {
			// Rename: this record's path field was empty, old/new names
			// follow as their own NUL-delimited fields.
			entry.OldPath = Canonicalize(fields[i+1])
			if i+2 < len(fields) {
				entry.Path = Canonicalize(fields[i+2])
			}
			i += 3
		} else {
			i++
		}
		entries = append(entries, entry)
	}
	return entries
}

func statusFor(entry numstatEntry, nameStatus map[string]model.FileStatus) model.FileStatus {
	if s, ok := nameStatus[entry.Path]; ok {
		return s
	}
	if entry.OldPath != "" {
		return model.FileRenamed
	}
	return model.FileModified
}
