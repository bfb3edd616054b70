package cfa_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codepathfinder/prreview/internal/cfa"
	"github.com/codepathfinder/prreview/internal/cfa/cfg"
	"github.com/codepathfinder/prreview/internal/cfa/pathcov"
	"github.com/codepathfinder/prreview/internal/model"
)

func TestFingerprint_StableAndScopedToCoordinates(t *testing.T) {
	a := cfa.Fingerprint("main.go", "handle", "sql-injection", 10, "q")
	b := cfa.Fingerprint("main.go", "handle", "sql-injection", 10, "q")
	c := cfa.Fingerprint("main.go", "handle", "sql-injection", 11, "q")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, cfa.FingerprintLen)
}

func TestEmitFinding_FullCoverage_Suppressed(t *testing.T) {
	g := cfg.New("f", "handle", "main.go", 1, 20)
	analysis := &pathcov.Analysis{VulnKind: "sql-injection", Status: pathcov.StatusFull, CoveragePercent: 100}

	_, ok := cfa.EmitFinding(g, cfa.Vulnerability{Kind: "sql-injection", BaseSeverity: model.SeverityError}, analysis, nil)
	assert.False(t, ok)
}

func TestEmitFinding_UnreachableSink_NoFinding(t *testing.T) {
	g := cfg.New("f", "handle", "main.go", 1, 20)

	_, ok := cfa.EmitFinding(g, cfa.Vulnerability{Kind: "sql-injection", BaseSeverity: model.SeverityError}, nil, nil)
	assert.False(t, ok)
}

func TestEmitFinding_HighCoverage_DowngradesTwoLevels(t *testing.T) {
	g := cfg.New("f", "handle", "main.go", 1, 20)
	analysis := &pathcov.Analysis{
		VulnKind:         "sql-injection",
		Status:           pathcov.StatusPartial,
		CoveragePercent:  80,
		MitigatedCount:   4,
		UnmitigatedCount: 1,
	}

	f, ok := cfa.EmitFinding(g, cfa.Vulnerability{Kind: "sql-injection", SinkLine: 15, Variable: "q", BaseSeverity: model.SeverityError}, analysis, nil)
	require.True(t, ok)
	assert.Equal(t, model.SeverityInfo, f.Severity)
	assert.Equal(t, "cfa/sql-injection", f.RuleID)
	assert.Equal(t, 15, f.Line)
	assert.NotEmpty(t, f.Fingerprint)
}

func TestEmitFinding_MidCoverage_DowngradesOneLevel(t *testing.T) {
	g := cfg.New("f", "handle", "main.go", 1, 20)
	analysis := &pathcov.Analysis{
		VulnKind:         "xss",
		Status:           pathcov.StatusPartial,
		CoveragePercent:  50,
		MitigatedCount:   1,
		UnmitigatedCount: 1,
	}

	f, ok := cfa.EmitFinding(g, cfa.Vulnerability{Kind: "xss", BaseSeverity: model.SeverityError}, analysis, nil)
	require.True(t, ok)
	assert.Equal(t, model.SeverityWarning, f.Severity)
}

func TestEmitFinding_NoMitigation_SeverityUnchanged(t *testing.T) {
	g := cfg.New("f", "handle", "main.go", 1, 20)
	analysis := &pathcov.Analysis{VulnKind: "xss", Status: pathcov.StatusNone, CoveragePercent: 0, UnmitigatedCount: 1}

	f, ok := cfa.EmitFinding(g, cfa.Vulnerability{Kind: "xss", BaseSeverity: model.SeverityError}, analysis, nil)
	require.True(t, ok)
	assert.Equal(t, model.SeverityError, f.Severity)
}

func TestEmitFinding_PatternTimeout_MarksDegraded(t *testing.T) {
	g := cfg.New("f", "handle", "main.go", 1, 20)
	analysis := &pathcov.Analysis{VulnKind: "xss", Status: pathcov.StatusNone, UnmitigatedCount: 1}
	timeouts := []cfa.PatternTimeoutInfo{{PatternID: "p1", ElapsedMs: 150}}

	f, ok := cfa.EmitFinding(g, cfa.Vulnerability{Kind: "xss", BaseSeverity: model.SeverityWarning}, analysis, timeouts)
	require.True(t, ok)
	assert.True(t, f.Degraded)
	assert.Contains(t, f.Message, "timed out")
}
