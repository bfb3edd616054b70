// Package cfa is the control-flow analysis core: it ties together CFG
// construction (cfg), mitigation detection (mitigation), path coverage
// (pathcov), and inter-procedural extension (interproc) into the
// per-vulnerability findings the pipeline consumes.
package cfa

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/codepathfinder/prreview/internal/cfa/cfg"
	"github.com/codepathfinder/prreview/internal/cfa/pathcov"
	"github.com/codepathfinder/prreview/internal/model"
)

// FingerprintLen is the number of hex characters kept from the SHA-256
// digest — enough to make accidental collisions practically impossible
// across one run's finding set while keeping fingerprints short in
// comment markers.
const FingerprintLen = 16

// Vulnerability is one potential finding location: a sink node in a CFG,
// the vulnerability kind it represents, and the tainted variable reaching
// it.
type Vulnerability struct {
	Kind         string
	SinkNodeID   string
	SinkLine     int
	Variable     string
	BaseSeverity model.Severity
	RuleID       string // defaults to "cfa/" + Kind if empty
}

// PatternTimeoutInfo is attached to a finding when any mitigation pattern
// evaluation backing its coverage analysis timed out, so the message can
// disclose that the result may be conservative.
type PatternTimeoutInfo struct {
	PatternID string
	ElapsedMs int64
}

// Fingerprint computes the stable identity of a finding from its
// coordinates, truncated to FingerprintLen hex characters.
func Fingerprint(filePath, functionName, vulnKind string, sinkLine int, variable string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%d|%s", filePath, functionName, vulnKind, sinkLine, variable)
	sum := hex.EncodeToString(h.Sum(nil))
	if len(sum) > FingerprintLen {
		return sum[:FingerprintLen]
	}
	return sum
}

// EmitFinding turns a completed path analysis into a Finding, applying the
// severity downgrade rules and suppression. It returns ok=false when the
// analysis fully mitigates the vulnerability (no finding should be
// emitted).
func EmitFinding(g *cfg.Graph, vuln Vulnerability, analysis *pathcov.Analysis, timeouts []PatternTimeoutInfo) (model.Finding, bool) {
	if analysis == nil {
		// Analyze returned nil: the sink is unreachable from entry, so
		// there is nothing to report.
		return model.Finding{}, false
	}
	if analysis.Status == pathcov.StatusFull {
		return model.Finding{}, false
	}

	severity := downgrade(vuln.BaseSeverity, analysis.CoveragePercent)

	ruleID := vuln.RuleID
	if ruleID == "" {
		ruleID = "cfa/" + vuln.Kind
	}

	message := buildMessage(vuln, analysis, timeouts)

	f := model.Finding{
		Severity:    severity,
		File:        g.FilePath,
		Line:        vuln.SinkLine,
		Message:     message,
		RuleID:      ruleID,
		Fingerprint: Fingerprint(g.FilePath, g.FunctionName, vuln.Kind, vuln.SinkLine, vuln.Variable),
		Provenance:  model.ProvenanceComplete,
	}
	if analysis.Degraded || len(timeouts) > 0 {
		f.Degraded = true
		f.DegradedReason = analysis.DegradedReason
		if f.DegradedReason == "" && len(timeouts) > 0 {
			f.DegradedReason = "pattern_timeout"
		}
	}
	return f, true
}

// downgrade applies the spec's coverage-based severity reduction:
// >=75% coverage drops two levels, >=50% drops one, otherwise unchanged.
// Suppression for 100% coverage is handled by the caller before this runs.
func downgrade(base model.Severity, coveragePercent float64) model.Severity {
	switch {
	case coveragePercent >= 75:
		return base.Downgrade(2)
	case coveragePercent >= 50:
		return base.Downgrade(1)
	default:
		return base
	}
}

func buildMessage(vuln Vulnerability, a *pathcov.Analysis, timeouts []PatternTimeoutInfo) string {
	total := a.MitigatedCount + a.UnmitigatedCount
	msg := fmt.Sprintf("%s: %d of %d paths (%.0f%%) are protected.", vuln.Kind, a.MitigatedCount, total, a.CoveragePercent)

	for _, p := range a.Paths {
		if !p.Mitigated {
			msg += fmt.Sprintf(" Unprotected path: %s.", p.Signature)
		}
	}
	if a.Degraded {
		msg += fmt.Sprintf(" Analysis degraded (%s): results may be conservative.", a.DegradedReason)
	}
	for _, t := range timeouts {
		msg += fmt.Sprintf(" Pattern %s timed out after %dms: results may be conservative.", t.PatternID, t.ElapsedMs)
	}
	return msg
}
