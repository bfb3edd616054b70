package diffstore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codepathfinder/prreview/internal/model"
)

func TestFinalize_SumsTotals(t *testing.T) {
	cs := model.ChangeSet{Files: []model.ChangedFile{
		{Path: "a.go", Additions: 3, Deletions: 1},
		{Path: "b.go", Additions: 5, Deletions: 0},
	}}
	out, err := finalize(cs)
	require.NoError(t, err)
	assert.Equal(t, 8, out.TotalAdditions)
	assert.Equal(t, 1, out.TotalDeletions)
}

func TestFinalize_RejectsTooManyFiles(t *testing.T) {
	files := make([]model.ChangedFile, MaxFiles+1)
	cs := model.ChangeSet{Files: files}
	_, err := finalize(cs)
	require.Error(t, err)
	var limitErr *LimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, "files", limitErr.Limit)
}

func TestFinalize_RejectsOversizedDiff(t *testing.T) {
	cs := model.ChangeSet{Files: []model.ChangedFile{
		{Path: "a.go", Patch: strings.Repeat("x", MaxDiffBytes+1)},
	}}
	_, err := finalize(cs)
	require.Error(t, err)
	var limitErr *LimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, "diff_bytes", limitErr.Limit)
}
