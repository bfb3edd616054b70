package lineresolver

import "github.com/codepathfinder/prreview/internal/model"

// Build derives a LineMap from a ChangeSet's files. Deleted files and
// binary files are omitted — they have no commentable new-file lines.
func Build(files []model.ChangedFile) *model.LineMap {
	lm := model.NewLineMap()
	for _, f := range files {
		if f.Status == model.FileDeleted || f.IsBinary || f.Patch == "" {
			continue
		}
		lm.Files[f.Path] = fileLineMap(f.Patch)
	}
	return lm
}

func fileLineMap(patch string) *model.FileLineMap {
	hunks := ParseHunks(patch)
	flm := &model.FileLineMap{
		Hunks:        hunks,
		AllLines:     make(map[int]struct{}),
		AddedLines:   make(map[int]struct{}),
		ContextLines: make(map[int]struct{}),
	}
	for _, h := range hunks {
		for _, l := range h.Lines {
			flm.AllLines[l.NewLine] = struct{}{}
			switch l.Kind {
			case model.HunkLineAddition:
				flm.AddedLines[l.NewLine] = struct{}{}
			case model.HunkLineContext:
				flm.ContextLines[l.NewLine] = struct{}{}
			}
		}
	}
	return flm
}
