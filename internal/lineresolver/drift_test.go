package lineresolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codepathfinder/prreview/internal/lineresolver"
)

func TestComputeDrift_BelowThreshold_None(t *testing.T) {
	stats := lineresolver.NormalizeStats{Valid: 95, Snapped: 3, Dropped: 2}
	signal := lineresolver.ComputeDrift(stats, lineresolver.DefaultDriftThresholds())
	assert.Equal(t, lineresolver.DriftNone, signal.Severity)
}

func TestComputeDrift_Warning(t *testing.T) {
	stats := lineresolver.NormalizeStats{Valid: 80, Snapped: 15, Dropped: 5}
	signal := lineresolver.ComputeDrift(stats, lineresolver.DefaultDriftThresholds())
	assert.Equal(t, lineresolver.DriftWarning, signal.Severity)
}

func TestComputeDrift_Critical_SuppressesInline(t *testing.T) {
	stats := lineresolver.NormalizeStats{Valid: 50, Snapped: 30, Dropped: 20}
	signal := lineresolver.ComputeDrift(stats, lineresolver.DefaultDriftThresholds())
	assert.Equal(t, lineresolver.DriftCritical, signal.Severity)
	assert.InDelta(t, 50.0, signal.DegradationPercent, 0.01)
}

func TestComputeDrift_NoFindings_None(t *testing.T) {
	signal := lineresolver.ComputeDrift(lineresolver.NormalizeStats{}, lineresolver.DefaultDriftThresholds())
	assert.Equal(t, lineresolver.DriftNone, signal.Severity)
}
