package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codepathfinder/prreview/internal/model"
	"github.com/codepathfinder/prreview/internal/pipeline"
)

func TestSort_OrdersBySeverityThenFileThenLine(t *testing.T) {
	in := []model.Finding{
		{Severity: model.SeverityInfo, File: "b.go", Line: 1},
		{Severity: model.SeverityError, File: "b.go", Line: 5},
		{Severity: model.SeverityError, File: "a.go", Line: 10},
		{Severity: model.SeverityError, File: "a.go", Line: 2},
	}
	out := pipeline.Sort(in)
	require.Len(t, out, 4)
	assert.Equal(t, "a.go", out[0].File)
	assert.Equal(t, 2, out[0].Line)
	assert.Equal(t, "a.go", out[1].File)
	assert.Equal(t, 10, out[1].Line)
	assert.Equal(t, "b.go", out[2].File)
	assert.Equal(t, model.SeverityInfo, out[3].Severity)
}
