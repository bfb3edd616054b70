package configload

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/codepathfinder/prreview/internal/model"
)

// Load reads and parses a YAML config file at path into a model.Config and
// sets ConfigPath to path. AvailableSecrets is filled in by the caller (Preflight
// needs the resolved environment, which configload does not itself read
// from a file).
func Load(path string) (model.Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return model.Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg := model.Config{
		FailOnSeverity:    parseSeverity(fc.FailOnSeverity),
		MaxInlineComments: fc.MaxInlineComments,
		DualPlatform:      fc.DualPlatform,
		ConfigPath:        path,
	}
	if cfg.MaxInlineComments <= 0 {
		cfg.MaxInlineComments = DefaultMaxInlineComments
	}

	for _, p := range fc.Passes {
		pass := model.Pass{Name: p.Name, Required: p.Required, Enabled: p.Enabled}
		for _, a := range p.Agents {
			pass.Agents = append(pass.Agents, model.AgentConfig{
				ID:       a.ID,
				Provider: a.Provider,
				Model:    a.Model,
				Secrets: model.SecretRequirement{
					AllOf: a.SecretsAllOf,
					OneOf: a.SecretsOneOf,
				},
				Paid:           a.Paid,
				InProcessLLM:   a.InProcessLLM,
				ChatCapable:    a.ChatCapable,
				BaseURL:        a.BaseURL,
				DeploymentName: a.DeploymentName,
			})
		}
		cfg.Passes = append(cfg.Passes, pass)
	}

	return cfg, nil
}

// DefaultMaxInlineComments caps inline PR comments when a config omits an
// explicit limit.
const DefaultMaxInlineComments = 25
