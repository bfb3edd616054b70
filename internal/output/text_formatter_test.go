package output_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codepathfinder/prreview/internal/model"
	"github.com/codepathfinder/prreview/internal/output"
)

func TestTextFormatter_NoFindings(t *testing.T) {
	var buf bytes.Buffer
	f := output.NewTextFormatterWithWriter(&buf)

	require.NoError(t, f.Format(nil, nil))
	assert.Contains(t, buf.String(), "No findings.")
}

func TestTextFormatter_GroupsBySeverityInOrder(t *testing.T) {
	var buf bytes.Buffer
	f := output.NewTextFormatterWithWriter(&buf)

	complete := []model.Finding{
		{Severity: model.SeverityInfo, File: "a.go", Line: 1, Message: "info msg", SourceAgent: "sec"},
		{Severity: model.SeverityError, File: "b.go", Line: 2, Message: "error msg", SourceAgent: "sec"},
	}

	require.NoError(t, f.Format(complete, nil))
	out := buf.String()

	errorIdx := indexOf(out, "ERROR")
	infoIdx := indexOf(out, "INFO")
	require.GreaterOrEqual(t, errorIdx, 0)
	require.GreaterOrEqual(t, infoIdx, 0)
	assert.Less(t, errorIdx, infoIdx)
}

func TestTextFormatter_ShowsDegradedBadge(t *testing.T) {
	var buf bytes.Buffer
	f := output.NewTextFormatterWithWriter(&buf)

	complete := []model.Finding{
		{Severity: model.SeverityWarning, File: "a.go", Line: 1, Message: "m", SourceAgent: "sec", Degraded: true},
	}
	require.NoError(t, f.Format(complete, nil))
	assert.Contains(t, buf.String(), "[degraded]")
}

func TestTextFormatter_PartialSectionLabeled(t *testing.T) {
	var buf bytes.Buffer
	f := output.NewTextFormatterWithWriter(&buf)

	partial := []model.Finding{
		{Severity: model.SeverityWarning, File: "a.go", Line: 1, Message: "m", SourceAgent: "sec"},
	}
	require.NoError(t, f.Format(nil, partial))
	assert.Contains(t, buf.String(), "Partial findings")
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
