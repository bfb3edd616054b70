package cfa

import "github.com/codepathfinder/prreview/internal/model"

// SinkSpec names the vulnerability kind and base severity a matched call
// site represents before any mitigation or path-coverage adjustment.
type SinkSpec struct {
	VulnKind     string
	BaseSeverity model.Severity
}

// DefaultSinks is the built-in table of call names treated as potential
// vulnerability sinks, keyed by the unqualified function or method name:
// the part of a CFG call site's recorded callee after its last dot. This is deliberately name-based rather than
// fully type-resolved (the CFG's CallSite carries no receiver type), the
// same trade-off the mitigation matcher already makes for Module
// resolution via import aliases.
func DefaultSinks() map[string]SinkSpec {
	return map[string]SinkSpec{
		"Exec":          {VulnKind: "sql-injection", BaseSeverity: model.SeverityError},
		"ExecContext":   {VulnKind: "sql-injection", BaseSeverity: model.SeverityError},
		"Query":         {VulnKind: "sql-injection", BaseSeverity: model.SeverityError},
		"QueryContext":  {VulnKind: "sql-injection", BaseSeverity: model.SeverityError},
		"QueryRow":      {VulnKind: "sql-injection", BaseSeverity: model.SeverityError},
		"Command":       {VulnKind: "command-injection", BaseSeverity: model.SeverityError},
		"CommandContext": {VulnKind: "command-injection", BaseSeverity: model.SeverityError},
		"Open":          {VulnKind: "path-traversal", BaseSeverity: model.SeverityWarning},
		"OpenFile":      {VulnKind: "path-traversal", BaseSeverity: model.SeverityWarning},
		"ReadFile":      {VulnKind: "path-traversal", BaseSeverity: model.SeverityWarning},
		"WriteFile":     {VulnKind: "path-traversal", BaseSeverity: model.SeverityWarning},
		"Unmarshal":     {VulnKind: "unsafe-deserialization", BaseSeverity: model.SeverityWarning},
		"Get":           {VulnKind: "ssrf", BaseSeverity: model.SeverityWarning},
		"Post":          {VulnKind: "ssrf", BaseSeverity: model.SeverityWarning},
	}
}
