package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/codepathfinder/prreview/internal/model"
)

// TextFormatter renders findings as human-readable text for local/dry-run
// use (`review --dry-run`), separate from the Reporter's PR-comment output.
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a formatter writing to stdout.
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{writer: os.Stdout}
}

// NewTextFormatterWithWriter creates a formatter with a custom writer, for tests.
func NewTextFormatterWithWriter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes complete and partial findings as grouped, severity-ordered text.
func (f *TextFormatter) Format(complete, partial []model.Finding) error {
	if len(complete) == 0 && len(partial) == 0 {
		fmt.Fprintln(f.writer, "No findings.")
		return nil
	}

	if len(complete) > 0 {
		fmt.Fprintln(f.writer, "Findings:")
		fmt.Fprintln(f.writer)
		f.writeBySeverity(complete)
	}

	if len(partial) > 0 {
		fmt.Fprintln(f.writer)
		fmt.Fprintln(f.writer, "Partial findings (from degraded or failed optional agents):")
		fmt.Fprintln(f.writer)
		f.writeBySeverity(partial)
	}

	f.writeSummary(complete, partial)
	return nil
}

func (f *TextFormatter) writeBySeverity(findings []model.Finding) {
	grouped := map[model.Severity][]model.Finding{}
	for _, finding := range findings {
		grouped[finding.Severity] = append(grouped[finding.Severity], finding)
	}

	for _, sev := range []model.Severity{model.SeverityError, model.SeverityWarning, model.SeverityInfo} {
		group := grouped[sev]
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(f.writer, "%s (%d):\n", strings.ToUpper(string(sev)), len(group))
		for _, finding := range group {
			f.writeFinding(finding)
		}
		fmt.Fprintln(f.writer)
	}
}

func (f *TextFormatter) writeFinding(finding model.Finding) {
	location := finding.File
	if finding.HasLine() {
		location = fmt.Sprintf("%s:%d", finding.File, finding.Line)
	}

	badge := ""
	if finding.Degraded {
		badge = " [degraded]"
	}

	fmt.Fprintf(f.writer, "  [%s]%s %s: %s\n", finding.SourceAgent, badge, location, finding.Message)
	if finding.RuleID != "" {
		fmt.Fprintf(f.writer, "    rule: %s\n", finding.RuleID)
	}
	if finding.Suggestion != "" {
		fmt.Fprintf(f.writer, "    suggestion: %s\n", finding.Suggestion)
	}
}

func (f *TextFormatter) writeSummary(complete, partial []model.Finding) {
	fmt.Fprintln(f.writer, "Summary:")
	fmt.Fprintf(f.writer, "  %d complete, %d partial\n", len(complete), len(partial))

	counts := map[model.Severity]int{}
	for _, finding := range append(append([]model.Finding{}, complete...), partial...) {
		counts[finding.Severity]++
	}
	var parts []string
	for _, sev := range []model.Severity{model.SeverityError, model.SeverityWarning, model.SeverityInfo} {
		if n := counts[sev]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, sev))
		}
	}
	if len(parts) > 0 {
		fmt.Fprintf(f.writer, "  %s\n", strings.Join(parts, " | "))
	}
}
