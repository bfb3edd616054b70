// Package preflight validates configuration, secrets, and provider/model
// compatibility before any agent runs (spec §4.6). All eight checks run
// regardless of earlier failures — errors and warnings both accumulate —
// so a single invocation reports every problem at once instead of making
// the user fix issues one at a time.
package preflight

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"github.com/codepathfinder/prreview/internal/model"
)

// cloudProviders lists providers Preflight treats as hosted/cloud LLMs —
// used to decide whether any required cloud agent is enabled, which
// controls the error-to-warning demotion rule.
var cloudProviders = map[string]bool{
	"openai":    true,
	"anthropic": true,
	"azure":     true,
}

// providerModelFamilies maps a provider to the model name prefixes it
// actually serves. A model outside its provider's family fails check 4.
var providerModelFamilies = map[string][]string{
	"openai":    {"gpt-", "o1", "o3"},
	"anthropic": {"claude-"},
	"azure":     {"gpt-", "o1", "o3"},
	"local":     {}, // local providers are not family-constrained
}

// Environment is the subset of the process environment Preflight needs:
// which secret names are present (never their values) and whether a CI
// marker is visible.
type Environment struct {
	Secrets map[string]bool
	HasCI   bool
}

// Run executes all eight ordered checks against cfg and env, accumulating
// errors and warnings, then resolves the {provider, model, config-path,
// effective-environment-hash} tuple spec §4.6 calls for.
func Run(cfg model.Config, env Environment) model.PreflightResult {
	var errs, warnings []string

	hasRequiredCloud := hasRequiredCloudAgent(cfg)

	check(&errs, &warnings, checkSecrets(cfg, env), hasRequiredCloud, true)
	check(&errs, &warnings, checkModelConfigPresent(cfg, env), hasRequiredCloud, true)
	check(&errs, &warnings, checkModelProviderMatch(cfg), hasRequiredCloud, true)
	check(&errs, &warnings, checkProviderModelFamily(cfg), hasRequiredCloud, true)
	check(&errs, &warnings, checkInfraSpecific(cfg), hasRequiredCloud, false)
	check(&errs, &warnings, checkChatCapability(cfg), hasRequiredCloud, true)
	check(&errs, &warnings, checkMultiKeyAmbiguity(cfg, env), hasRequiredCloud, false)
	check(&errs, &warnings, checkPlatformEnvironmentConsistency(cfg, env), hasRequiredCloud, false)

	result := model.PreflightResult{
		Valid:    len(errs) == 0,
		Errors:   errs,
		Warnings: warnings,
		Resolved: resolve(cfg, env),
	}
	return result
}

// checkOutcome is one check's findings before the demotion rule is
// applied: demotable errors become warnings when no required cloud agent
// is enabled, non-demotable ones (infrastructure, ambiguity) never do.
type checkOutcome struct {
	errors   []string
	warnings []string
}

func check(errs, warnings *[]string, outcome checkOutcome, hasRequiredCloud, demotable bool) {
	*warnings = append(*warnings, outcome.warnings...)
	if !demotable || hasRequiredCloud {
		*errs = append(*errs, outcome.errors...)
		return
	}
	*warnings = append(*warnings, outcome.errors...)
}

func hasRequiredCloudAgent(cfg model.Config) bool {
	for _, pass := range cfg.Passes {
		if !pass.Enabled {
			continue
		}
		for _, agent := range pass.Agents {
			if pass.Required && cloudProviders[agent.Provider] {
				return true
			}
		}
	}
	return false
}

func resolve(cfg model.Config, env Environment) model.ResolvedConfig {
	provider, modelName := firstEnabledAgent(cfg)
	return model.ResolvedConfig{
		Provider:                 provider,
		Model:                    modelName,
		ConfigPath:               cfg.ConfigPath,
		EffectiveEnvironmentHash: hashEnvironment(env),
	}
}

func firstEnabledAgent(cfg model.Config) (provider, modelName string) {
	for _, pass := range cfg.Passes {
		if !pass.Enabled {
			continue
		}
		for _, agent := range pass.Agents {
			return agent.Provider, agent.Model
		}
	}
	return "", ""
}

// hashEnvironment derives a stable hash over the set of secret names
// present (never their values), so the resolved tuple can be logged as a
// single structured line without leaking anything sensitive.
func hashEnvironment(env Environment) string {
	names := make([]string, 0, len(env.Secrets))
	for name, present := range env.Secrets {
		if present {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	h := sha256.New()
	for _, name := range names {
		h.Write([]byte(name))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
