package model

// SecretRequirement describes how an agent's required secrets combine:
// AllOf means every named secret must be present, OneOf means at least one
// of the named set must be present (e.g. any one of several provider API
// keys).
type SecretRequirement struct {
	AllOf []string
	OneOf []string
}

// AgentConfig is one agent's static configuration, as loaded from the
// project's config file and environment.
type AgentConfig struct {
	ID       string
	Provider string
	Model    string

	// Required secrets this agent needs to run at all.
	Secrets SecretRequirement

	// Paid marks an agent that consumes the cost budget (a hosted LLM
	// call), as opposed to a free, local, or purely structural check.
	Paid bool

	// InProcessLLM marks an agent that runs an LLM directly in this
	// process rather than delegating to an external CI/agent binary —
	// subject to the direct-main-push policy gate.
	InProcessLLM bool

	// ChatCapable is false for completion-only models; chat agents
	// require it.
	ChatCapable bool

	// BaseURL is set for local/self-hosted LLM providers.
	BaseURL string

	// DeploymentName is required for Azure-hosted models.
	DeploymentName string
}

// Pass is one named stage of the PassRunner: an ordered set of agents that
// either all are eligible to run or, if Required, abort the run on
// failure.
type Pass struct {
	Name     string
	Required bool
	Enabled  bool
	Agents   []AgentConfig
}

// Config is the fully loaded project configuration PassRunner and
// Preflight operate over.
type Config struct {
	Passes []Pass

	// AvailableSecrets is the set of secret names present in the
	// resolved environment (never their values).
	AvailableSecrets map[string]bool

	FailOnSeverity    Severity
	MaxInlineComments int
	DualPlatform      bool

	ConfigPath string
}

// ResolvedConfig is Preflight's output tuple: the source of truth every
// agent context is built from for the rest of the run.
type ResolvedConfig struct {
	Provider                string
	Model                   string
	ConfigPath              string
	EffectiveEnvironmentHash string
}

// PreflightResult is the {valid, errors[], warnings[], resolved} shape
// spec §4.6 calls for.
type PreflightResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
	Resolved ResolvedConfig
}
