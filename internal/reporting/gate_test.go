package reporting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codepathfinder/prreview/internal/model"
	"github.com/codepathfinder/prreview/internal/pipeline"
	"github.com/codepathfinder/prreview/internal/reporting"
)

func groupOf(sev model.Severity) []pipeline.Group {
	return []pipeline.Group{{Findings: []model.Finding{{Severity: sev}}}}
}

func TestGates_ErrorAlwaysFails(t *testing.T) {
	assert.True(t, reporting.Gates(groupOf(model.SeverityError), model.SeverityError))
	assert.True(t, reporting.Gates(groupOf(model.SeverityError), model.SeverityInfo))
}

func TestGates_WarningFailsUnlessThresholdIsError(t *testing.T) {
	assert.False(t, reporting.Gates(groupOf(model.SeverityWarning), model.SeverityError))
	assert.True(t, reporting.Gates(groupOf(model.SeverityWarning), model.SeverityWarning))
	assert.True(t, reporting.Gates(groupOf(model.SeverityWarning), model.SeverityInfo))
}

func TestGates_InfoOnlyFailsAtInfoThreshold(t *testing.T) {
	assert.False(t, reporting.Gates(groupOf(model.SeverityInfo), model.SeverityError))
	assert.False(t, reporting.Gates(groupOf(model.SeverityInfo), model.SeverityWarning))
	assert.True(t, reporting.Gates(groupOf(model.SeverityInfo), model.SeverityInfo))
}

func TestGates_NoFindings_NeverFails(t *testing.T) {
	assert.False(t, reporting.Gates(nil, model.SeverityInfo))
}
