package reporting

import (
	"fmt"
	"sort"
	"strings"

	"github.com/codepathfinder/prreview/internal/lineresolver"
	"github.com/codepathfinder/prreview/internal/model"
	"github.com/codepathfinder/prreview/internal/pipeline"
)

// summaryMarker identifies the one summary comment this run upserts,
// distinct from the per-finding fingerprint markers.
const summaryMarker = "<!-- prreview:summary -->"

func severityEmoji(s model.Severity) string {
	switch s {
	case model.SeverityError:
		return "\U0001F534" // red circle
	case model.SeverityWarning:
		return "\U0001F7E1" // yellow circle
	default:
		return "ℹ️" // info icon
	}
}

// BuildSummary composes the summary markdown: overall counts by severity,
// a per-agent breakdown, a partial-findings section when any exist, and a
// drift block when thresholds were exceeded.
func BuildSummary(complete, partial []pipeline.Group, drift lineresolver.DriftSignal, driftGate bool) string {
	var sb strings.Builder
	sb.WriteString(summaryMarker + "\n")
	sb.WriteString("## PR Review Summary\n\n")

	counts := countBySeverity(complete)
	sb.WriteString(fmt.Sprintf("%s %d error(s) · %s %d warning(s) · %s %d info\n\n",
		severityEmoji(model.SeverityError), counts[model.SeverityError],
		severityEmoji(model.SeverityWarning), counts[model.SeverityWarning],
		severityEmoji(model.SeverityInfo), counts[model.SeverityInfo]))

	if byAgent := countByAgent(complete); len(byAgent) > 0 {
		sb.WriteString("| Agent | Findings |\n|:------|---------:|\n")
		for _, agent := range sortedKeys(byAgent) {
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", agent, byAgent[agent]))
		}
		sb.WriteString("\n")
	}

	if driftGate {
		sb.WriteString("> **Drift Gate Active** — the diff changed too much since analysis ran; inline comments were withheld this run.\n\n")
	} else if drift.Severity != lineresolver.DriftNone {
		sb.WriteString(fmt.Sprintf("> Line drift: %.1f%% of findings could not be placed exactly (%s).\n\n", drift.DegradationPercent, drift.Severity))
	}

	if len(partial) > 0 {
		sb.WriteString("### Partial results (degraded)\n\n")
		sb.WriteString("These findings came from an agent run that did not finish cleanly and never gate the run.\n\n")
		for _, g := range partial {
			for _, f := range g.Findings {
				sb.WriteString(fmt.Sprintf("- %s `%s:%d` %s\n", severityEmoji(f.Severity), f.File, f.Line, f.Message))
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func countBySeverity(groups []pipeline.Group) map[model.Severity]int {
	counts := map[model.Severity]int{}
	for _, g := range groups {
		for _, f := range g.Findings {
			counts[f.Severity]++
		}
	}
	return counts
}

func countByAgent(groups []pipeline.Group) map[string]int {
	counts := map[string]int{}
	for _, g := range groups {
		for _, f := range g.Findings {
			if f.SourceAgent != "" {
				counts[f.SourceAgent]++
			}
		}
	}
	return counts
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// BuildInlineBody renders one Group as a single inline comment: severity
// emoji + bold agent name + message + italic rule id + suggestion + a
// trailing fingerprint marker per member finding, so multi-finding groups
// remain individually resolvable.
func BuildInlineBody(g pipeline.Group) string {
	var sb strings.Builder
	for i, f := range g.Findings {
		if i > 0 {
			sb.WriteString("\n---\n")
		}
		agent := f.SourceAgent
		if agent == "" {
			agent = "prreview"
		}
		sb.WriteString(fmt.Sprintf("%s **%s**: %s\n", severityEmoji(f.Severity), agent, f.Message))
		if f.RuleID != "" {
			sb.WriteString(fmt.Sprintf("\n_%s_\n", f.RuleID))
		}
		if f.Suggestion != "" {
			sb.WriteString(fmt.Sprintf("\n%s\n", f.Suggestion))
		}
		if f.Degraded {
			sb.WriteString(fmt.Sprintf("\n_degraded: %s_\n", f.DegradedReason))
		}
		sb.WriteString("\n" + Marker(f) + "\n")
	}
	return sb.String()
}
