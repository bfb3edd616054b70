package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codepathfinder/prreview/internal/model"
	"github.com/codepathfinder/prreview/internal/pipeline"
)

func TestGroupAdjacent_MergesWithinThreshold(t *testing.T) {
	in := []model.Finding{
		{File: "a.go", Line: 10},
		{File: "a.go", Line: 12},
	}
	groups := pipeline.GroupAdjacent(in)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Findings, 2)
}

func TestGroupAdjacent_SplitsBeyondThreshold(t *testing.T) {
	in := []model.Finding{
		{File: "a.go", Line: 10},
		{File: "a.go", Line: 20},
	}
	groups := pipeline.GroupAdjacent(in)
	require.Len(t, groups, 2)
}

func TestGroupAdjacent_NeverMergesAcrossFiles(t *testing.T) {
	in := []model.Finding{
		{File: "a.go", Line: 10},
		{File: "b.go", Line: 11},
	}
	groups := pipeline.GroupAdjacent(in)
	require.Len(t, groups, 2)
}

func TestGroupAdjacent_AnchorsOnFirstMemberLine(t *testing.T) {
	in := []model.Finding{
		{File: "a.go", Line: 10},
		{File: "a.go", Line: 12},
	}
	groups := pipeline.GroupAdjacent(in)
	require.Len(t, groups, 1)
	assert.Equal(t, 10, groups[0].Line)
}
