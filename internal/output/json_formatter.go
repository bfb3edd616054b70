package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/codepathfinder/prreview/internal/model"
)

// JSONFormatter renders findings as machine-readable JSON, for `--json`
// dry-run output and for other tooling consuming review results directly.
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a formatter writing to stdout.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{writer: os.Stdout}
}

// NewJSONFormatterWithWriter creates a formatter with a custom writer, for tests.
func NewJSONFormatterWithWriter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// JSONOutput is the top-level JSON document.
type JSONOutput struct {
	Tool    JSONTool    `json:"tool"`
	Run     JSONRun     `json:"run"`
	Results []JSONFinding `json:"results"`
	Summary JSONSummary `json:"summary"`
	Errors  []string    `json:"errors,omitempty"`
}

type JSONTool struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	URL     string `json:"url"`
}

type JSONRun struct {
	Repo      string  `json:"repo"`
	PRNumber  int     `json:"pr_number,omitempty"`
	Timestamp string  `json:"timestamp"`
	Duration  float64 `json:"duration_seconds"`
}

type JSONFinding struct {
	RuleID     string            `json:"rule_id,omitempty"`
	SourceAgent string           `json:"source_agent"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Severity   string            `json:"severity"`
	Provenance string            `json:"provenance"`
	File       string            `json:"file"`
	Line       int               `json:"line,omitempty"`
	EndLine    int               `json:"end_line,omitempty"`
	Degraded   bool              `json:"degraded,omitempty"`
	DegradedReason string        `json:"degraded_reason,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

type JSONSummary struct {
	Total      int            `json:"total"`
	Complete   int            `json:"complete"`
	Partial    int            `json:"partial"`
	BySeverity map[string]int `json:"by_severity"`
}

// RunInfo carries the run metadata that accompanies the findings themselves.
type RunInfo struct {
	Repo      string
	PRNumber  int
	Version   string
	Duration  time.Duration
	Errors    []string
}

// Format writes complete and partial findings as a single JSON document.
func (f *JSONFormatter) Format(complete, partial []model.Finding, run RunInfo) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildOutput(complete, partial, run))
}

func buildOutput(complete, partial []model.Finding, run RunInfo) JSONOutput {
	version := run.Version
	if version == "" {
		version = "unknown"
	}

	all := make([]model.Finding, 0, len(complete)+len(partial))
	all = append(all, complete...)
	all = append(all, partial...)

	bySeverity := make(map[string]int)
	for _, finding := range all {
		bySeverity[string(finding.Severity)]++
	}

	return JSONOutput{
		Tool: JSONTool{
			Name:    "prreview",
			Version: version,
			URL:     "https://github.com/codepathfinder/prreview",
		},
		Run: JSONRun{
			Repo:      run.Repo,
			PRNumber:  run.PRNumber,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Duration:  run.Duration.Seconds(),
		},
		Results: buildResults(all),
		Summary: JSONSummary{
			Total:      len(all),
			Complete:   len(complete),
			Partial:    len(partial),
			BySeverity: bySeverity,
		},
		Errors: run.Errors,
	}
}

func buildResults(findings []model.Finding) []JSONFinding {
	out := make([]JSONFinding, 0, len(findings))
	for _, finding := range findings {
		out = append(out, JSONFinding{
			RuleID:         finding.RuleID,
			SourceAgent:    finding.SourceAgent,
			Message:        finding.Message,
			Suggestion:     finding.Suggestion,
			Severity:       string(finding.Severity),
			Provenance:     string(finding.Provenance),
			File:           finding.File,
			Line:           finding.Line,
			EndLine:        finding.EndLine,
			Degraded:       finding.Degraded,
			DegradedReason: finding.DegradedReason,
			Metadata:       finding.Metadata,
		})
	}
	return out
}
