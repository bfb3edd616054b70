package output

import (
	"fmt"
	"strings"

	"github.com/codepathfinder/prreview/internal/model"
)

// ExitCode is the CLI process exit code, per spec §6/§7.
type ExitCode int

const (
	// ExitCodeSuccess: review passed (no gating findings), or preflight
	// succeeded with warnings only.
	ExitCodeSuccess ExitCode = 0

	// ExitCodeFindings: gating findings matched fail_on_severity.
	ExitCodeFindings ExitCode = 1

	// ExitCodeError: preflight/config error, or a required-agent failure.
	ExitCodeError ExitCode = 2
)

// InvalidSeverityError reports a --fail-on value outside the known set.
type InvalidSeverityError struct {
	Severity string
	Valid    []string
}

func (e *InvalidSeverityError) Error() string {
	return fmt.Sprintf("invalid severity %q, must be one of: %s", e.Severity, strings.Join(e.Valid, ", "))
}

var validSeverities = map[string]bool{
	string(model.SeverityError):   true,
	string(model.SeverityWarning): true,
	string(model.SeverityInfo):    true,
}

// DetermineExitCode applies the precedence from spec §6/§7: errors first,
// then gating findings, then success.
func DetermineExitCode(gated bool, preflightFailed bool, requiredAgentFailed bool) ExitCode {
	if preflightFailed || requiredAgentFailed {
		return ExitCodeError
	}
	if gated {
		return ExitCodeFindings
	}
	return ExitCodeSuccess
}

// ParseFailOn parses a comma-separated --fail-on value into severities,
// trimming whitespace and dropping empty entries.
func ParseFailOn(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ValidateSeverities checks every entry against the known severity set
// (error/warning/info, case-insensitive).
func ValidateSeverities(severities []string) error {
	valid := []string{string(model.SeverityError), string(model.SeverityWarning), string(model.SeverityInfo)}
	for _, s := range severities {
		if !validSeverities[strings.ToLower(s)] {
			return &InvalidSeverityError{Severity: s, Valid: valid}
		}
	}
	return nil
}
