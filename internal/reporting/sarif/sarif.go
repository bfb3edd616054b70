// Package sarif renders a FindingPipeline result as SARIF 2.1.0, the
// additional report sink CI systems (GitHub code scanning, Azure DevOps
// Advanced Security) consume alongside the Reporter's PR comments.
package sarif

import (
	"encoding/json"
	"fmt"
	"io"

	goSarif "github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/codepathfinder/prreview/internal/model"
)

const informationURI = "https://github.com/codepathfinder/prreview"

// Write renders complete and partial findings as one SARIF run and encodes
// it to w as indented JSON.
func Write(w io.Writer, complete, partial []model.Finding) error {
	report, err := goSarif.New(goSarif.Version210)
	if err != nil {
		return fmt.Errorf("failed to create sarif report: %w", err)
	}

	run := goSarif.NewRunWithInformationURI("prreview", informationURI)

	all := make([]model.Finding, 0, len(complete)+len(partial))
	all = append(all, complete...)
	all = append(all, partial...)

	buildRules(all, run)
	for _, finding := range all {
		buildResult(finding, run)
	}

	report.AddRun(run)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func buildRules(findings []model.Finding, run *goSarif.Run) {
	seen := make(map[string]bool)
	for _, finding := range findings {
		id := ruleKey(finding)
		if seen[id] {
			continue
		}
		seen[id] = true

		rule := run.AddRule(id).
			WithName(id).
			WithHelpURI(informationURI)
		rule.WithDefaultConfiguration(goSarif.NewReportingConfiguration().WithLevel(severityToLevel(finding.Severity)))
		rule.WithProperties(map[string]interface{}{
			"tags":              []string{"pr-review"},
			"security-severity": severityToScore(finding.Severity),
			"precision":         "high",
		})
	}
}

// ruleKey falls back to the source agent name when a finding carries no
// rule id, since SARIF requires every result to reference a rule.
func ruleKey(f model.Finding) string {
	if f.RuleID != "" {
		return f.RuleID
	}
	return "agent:" + f.SourceAgent
}

func severityToLevel(s model.Severity) string {
	switch s {
	case model.SeverityError:
		return "error"
	case model.SeverityWarning:
		return "warning"
	default:
		return "note"
	}
}

func severityToScore(s model.Severity) string {
	switch s {
	case model.SeverityError:
		return "9.0"
	case model.SeverityWarning:
		return "5.0"
	default:
		return "3.0"
	}
}

func buildResult(finding model.Finding, run *goSarif.Run) {
	message := finding.Message
	if finding.Degraded {
		message += " (degraded: " + finding.DegradedReason + ")"
	}

	result := run.CreateResultForRule(ruleKey(finding)).
		WithMessage(goSarif.NewTextMessage(message))

	line := finding.Line
	if line <= 0 {
		line = 1
	}

	region := goSarif.NewRegion().WithStartLine(line)
	location := goSarif.NewLocation().WithPhysicalLocation(
		goSarif.NewPhysicalLocation().
			WithArtifactLocation(goSarif.NewArtifactLocation().WithUri(finding.File)).
			WithRegion(region),
	)
	result.AddLocation(location)
}
