// Package configload loads the project's review configuration file (YAML,
// following the teacher pack's exclusive use of gopkg.in/yaml.v3 for
// structured config anywhere in the corpus) into the model.Config shape
// Preflight and PassRunner operate over, and resolves the subset of the
// process environment Preflight needs.
package configload

import "github.com/codepathfinder/prreview/internal/model"

// fileConfig is the on-disk YAML shape: plain strings and bools, not the
// model package's enums, since a config file author writes "error", not
// model.SeverityError.
type fileConfig struct {
	FailOnSeverity    string       `yaml:"fail_on_severity"`
	MaxInlineComments int          `yaml:"max_inline_comments"`
	DualPlatform      bool         `yaml:"dual_platform"`
	Passes            []filePass   `yaml:"passes"`
}

type filePass struct {
	Name     string       `yaml:"name"`
	Required bool         `yaml:"required"`
	Enabled  bool         `yaml:"enabled"`
	Agents   []fileAgent  `yaml:"agents"`
}

type fileAgent struct {
	ID             string   `yaml:"id"`
	Provider       string   `yaml:"provider"`
	Model          string   `yaml:"model"`
	SecretsAllOf   []string `yaml:"secrets_all_of"`
	SecretsOneOf   []string `yaml:"secrets_one_of"`
	Paid           bool     `yaml:"paid"`
	InProcessLLM   bool     `yaml:"in_process_llm"`
	ChatCapable    bool     `yaml:"chat_capable"`
	BaseURL        string   `yaml:"base_url"`
	DeploymentName string   `yaml:"deployment_name"`
}

func parseSeverity(s string) model.Severity {
	switch s {
	case "warning":
		return model.SeverityWarning
	case "info":
		return model.SeverityInfo
	default:
		return model.SeverityError
	}
}

func severityToString(s model.Severity) string {
	return string(s)
}
