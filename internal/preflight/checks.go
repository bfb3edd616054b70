package preflight

import (
	"fmt"
	"strings"

	"github.com/codepathfinder/prreview/internal/model"
)

// checkSecrets is check 1: every enabled agent's required secrets (one-of
// and all-of sets) must be present in the environment.
func checkSecrets(cfg model.Config, env Environment) checkOutcome {
	var out checkOutcome
	for _, pass := range cfg.Passes {
		if !pass.Enabled {
			continue
		}
		for _, agent := range pass.Agents {
			for _, name := range agent.Secrets.AllOf {
				if !env.Secrets[name] {
					out.errors = append(out.errors, fmt.Sprintf("agent %q: missing required secret %q", agent.ID, name))
				}
			}
			if len(agent.Secrets.OneOf) > 0 && !anyPresent(env.Secrets, agent.Secrets.OneOf) {
				out.errors = append(out.errors, fmt.Sprintf("agent %q: none of %s is present", agent.ID, strings.Join(agent.Secrets.OneOf, ", ")))
			}
		}
	}
	return out
}

func anyPresent(secrets map[string]bool, names []string) bool {
	for _, name := range names {
		if secrets[name] {
			return true
		}
	}
	return false
}

// checkModelConfigPresent is check 2: every enabled agent must name a
// model, unless exactly one secret-backed provider is configured (a
// single-key setup), in which case the model is auto-apply-able from that
// provider's default.
func checkModelConfigPresent(cfg model.Config, env Environment) checkOutcome {
	var out checkOutcome
	singleKey := countPresent(env.Secrets) == 1

	for _, pass := range cfg.Passes {
		if !pass.Enabled {
			continue
		}
		for _, agent := range pass.Agents {
			if agent.Model == "" && !singleKey {
				out.errors = append(out.errors, fmt.Sprintf("agent %q: no model configured and environment has more than one key, so it cannot be auto-applied", agent.ID))
			}
		}
	}
	return out
}

func countPresent(secrets map[string]bool) int {
	n := 0
	for _, present := range secrets {
		if present {
			n++
		}
	}
	return n
}

// checkModelProviderMatch is check 3: an enabled cloud LLM agent must name
// a provider Preflight recognizes.
func checkModelProviderMatch(cfg model.Config) checkOutcome {
	var out checkOutcome
	for _, pass := range cfg.Passes {
		if !pass.Enabled {
			continue
		}
		for _, agent := range pass.Agents {
			if !agent.Paid {
				continue
			}
			if _, known := providerModelFamilies[agent.Provider]; !known {
				out.errors = append(out.errors, fmt.Sprintf("agent %q: unknown provider %q", agent.ID, agent.Provider))
			}
		}
	}
	return out
}

// checkProviderModelFamily is check 4: the configured model must belong to
// its provider's known family (e.g. an "anthropic" provider cannot be
// pointed at a "gpt-4" model).
func checkProviderModelFamily(cfg model.Config) checkOutcome {
	var out checkOutcome
	for _, pass := range cfg.Passes {
		if !pass.Enabled {
			continue
		}
		for _, agent := range pass.Agents {
			prefixes, known := providerModelFamilies[agent.Provider]
			if !known || len(prefixes) == 0 || agent.Model == "" {
				continue
			}
			if !hasAnyPrefix(agent.Model, prefixes) {
				out.errors = append(out.errors, fmt.Sprintf("agent %q: model %q is not in provider %q's family", agent.ID, agent.Model, agent.Provider))
			}
		}
	}
	return out
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// checkInfraSpecific is check 5: Azure agents need a deployment name,
// local-provider agents need a base URL. Never demoted by the
// no-required-cloud-agent rule.
func checkInfraSpecific(cfg model.Config) checkOutcome {
	var out checkOutcome
	for _, pass := range cfg.Passes {
		if !pass.Enabled {
			continue
		}
		for _, agent := range pass.Agents {
			switch agent.Provider {
			case "azure":
				if agent.DeploymentName == "" {
					out.errors = append(out.errors, fmt.Sprintf("agent %q: azure provider requires a deployment name", agent.ID))
				}
			case "local":
				if agent.BaseURL == "" {
					out.errors = append(out.errors, fmt.Sprintf("agent %q: local provider requires a base URL", agent.ID))
				}
			}
		}
	}
	return out
}

// checkChatCapability is check 6: a completion-only model cannot back a
// chat agent.
func checkChatCapability(cfg model.Config) checkOutcome {
	var out checkOutcome
	for _, pass := range cfg.Passes {
		if !pass.Enabled {
			continue
		}
		for _, agent := range pass.Agents {
			if agent.Paid && !agent.ChatCapable {
				out.errors = append(out.errors, fmt.Sprintf("agent %q: model %q is completion-only and cannot back a chat agent", agent.ID, agent.Model))
			}
		}
	}
	return out
}

// checkMultiKeyAmbiguity is check 7: more than one provider key present
// without every agent pinning an explicit provider is ambiguous. Never
// demoted.
func checkMultiKeyAmbiguity(cfg model.Config, env Environment) checkOutcome {
	var out checkOutcome
	if countPresent(env.Secrets) <= 1 {
		return out
	}
	for _, pass := range cfg.Passes {
		if !pass.Enabled {
			continue
		}
		for _, agent := range pass.Agents {
			if agent.Provider == "" {
				out.errors = append(out.errors, fmt.Sprintf("agent %q: multiple provider keys present but no explicit provider configured", agent.ID))
			}
		}
	}
	return out
}

// checkPlatformEnvironmentConsistency is check 8: when dual-platform
// reporting is configured, warn (never error) if no CI marker is visible
// in the environment.
func checkPlatformEnvironmentConsistency(cfg model.Config, env Environment) checkOutcome {
	var out checkOutcome
	if cfg.DualPlatform && !env.HasCI {
		out.warnings = append(out.warnings, "dual-platform reporting is configured but no CI marker is present in the environment")
	}
	return out
}
