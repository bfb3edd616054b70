package configload

import (
	"os"

	"github.com/codepathfinder/prreview/internal/preflight"
)

// knownSecrets is spec §6's environment contract: every secret name
// Preflight's checks may reference. Presence, never value, is recorded.
var knownSecrets = []string{
	"GITHUB_TOKEN",
	"SYSTEM_ACCESSTOKEN",
	"OPENAI_API_KEY",
	"ANTHROPIC_API_KEY",
	"AZURE_OPENAI_API_KEY",
	"AZURE_OPENAI_ENDPOINT",
	"AZURE_OPENAI_DEPLOYMENT",
	"OLLAMA_BASE_URL",
	"MODEL",
}

// ciMarkers is the set of environment variables that signal a CI platform
// is driving this run, used by Preflight's platform/CI consistency check.
var ciMarkers = []string{
	"GITHUB_ACTIONS",
	"TF_BUILD",
}

// ResolveEnvironment reads the process environment for the names
// Preflight needs, recording only which secrets are present.
func ResolveEnvironment() preflight.Environment {
	secrets := make(map[string]bool, len(knownSecrets))
	for _, name := range knownSecrets {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			secrets[name] = true
		}
	}

	hasCI := false
	for _, name := range ciMarkers {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			hasCI = true
			break
		}
	}

	return preflight.Environment{Secrets: secrets, HasCI: hasCI}
}
