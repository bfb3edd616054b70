package configload

import "github.com/codepathfinder/prreview/internal/model"

// DefaultConfig returns the built-in two-pass configuration: a free,
// always-enabled structural pass (the CFA core) and an optional
// paid-LLM review pass a project can enable once it has a provider key
// configured. config init --defaults writes this out; review falls back
// to it when no config file is found.
func DefaultConfig(provider string) model.Config {
	cfg := model.Config{
		FailOnSeverity:    model.SeverityError,
		MaxInlineComments: DefaultMaxInlineComments,
		Passes: []model.Pass{
			{
				Name:     "structural",
				Required: true,
				Enabled:  true,
				Agents: []model.AgentConfig{
					{ID: "cfa", Provider: "local", Paid: false, InProcessLLM: false},
				},
			},
			llmPass(provider),
		},
	}
	return cfg
}

func llmPass(provider string) model.Pass {
	if provider == "" {
		provider = "anthropic"
	}

	agent := model.AgentConfig{
		ID:           "llm-review",
		Provider:     provider,
		Paid:         true,
		InProcessLLM: true,
		ChatCapable:  true,
	}
	switch provider {
	case "openai":
		agent.Model = "gpt-4o"
		agent.Secrets = model.SecretRequirement{AllOf: []string{"OPENAI_API_KEY"}}
	case "azure":
		agent.Model = "gpt-4o"
		agent.DeploymentName = "gpt-4o-deployment"
		agent.Secrets = model.SecretRequirement{AllOf: []string{"AZURE_OPENAI_API_KEY", "AZURE_OPENAI_ENDPOINT", "AZURE_OPENAI_DEPLOYMENT"}}
	case "local":
		agent.Model = "llama3"
		agent.BaseURL = "http://localhost:11434"
		agent.Secrets = model.SecretRequirement{AllOf: []string{"OLLAMA_BASE_URL"}}
	default:
		agent.Provider = "anthropic"
		agent.Model = "claude-sonnet-4"
		agent.Secrets = model.SecretRequirement{AllOf: []string{"ANTHROPIC_API_KEY"}}
	}

	return model.Pass{
		Name:     "llm-review",
		Required: false,
		Enabled:  true,
		Agents:   []model.AgentConfig{agent},
	}
}
