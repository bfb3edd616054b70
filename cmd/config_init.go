package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/codepathfinder/prreview/internal/configload"
	"github.com/codepathfinder/prreview/internal/model"
	"github.com/codepathfinder/prreview/internal/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage project configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a project config file",
	Long: `init writes a config file describing which passes and agents run
for this project. With --defaults it writes the built-in two-pass config
for --provider without prompting; otherwise it asks a short set of
questions interactively, which requires a terminal.`,
	RunE: runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().Bool("defaults", false, "write the built-in default config without prompting")
	configInitCmd.Flags().String("provider", "anthropic", "LLM provider for the optional review pass: anthropic, openai, azure, local")
	configInitCmd.Flags().String("platform", "github", "target platform: github, ado, or both")
	configInitCmd.Flags().String("output", ".prreview.yaml", "path to write the config file")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	defaults, _ := flags.GetBool("defaults")
	provider, _ := flags.GetString("provider")
	platform, _ := flags.GetString("platform")
	outPath, _ := flags.GetString("output")

	if !defaults && !output.IsTTY(os.Stdout) {
		return fmt.Errorf("interactive config init requires a terminal; pass --defaults for a non-interactive run")
	}

	if !defaults {
		provider, platform = promptForProvider(cmd, provider, platform)
	}

	cfg := configload.DefaultConfig(provider)
	cfg.DualPlatform = platform == "both"

	raw, err := marshalConfig(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil && filepath.Dir(outPath) != "." {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(outPath, raw, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", outPath, err)
	}

	fmt.Printf("wrote %s\n", outPath)
	return nil
}

// promptForProvider is a minimal interactive prompt; it only runs when
// stdout is a terminal (checked by the caller), and falls back to the
// flag defaults on empty input.
func promptForProvider(cmd *cobra.Command, defaultProvider, defaultPlatform string) (string, string) {
	provider := defaultProvider
	platform := defaultPlatform

	fmt.Fprintf(cmd.OutOrStdout(), "LLM provider [%s]: ", defaultProvider)
	var line string
	if _, err := fmt.Scanln(&line); err == nil && line != "" {
		provider = line
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Platform (github/ado/both) [%s]: ", defaultPlatform)
	line = ""
	if _, err := fmt.Scanln(&line); err == nil && line != "" {
		platform = line
	}

	return provider, platform
}

// fileConfigOut mirrors configload's on-disk shape so marshalConfig
// round-trips through the same field names configload.Load expects.
type fileConfigOut struct {
	FailOnSeverity    string         `yaml:"fail_on_severity"`
	MaxInlineComments int            `yaml:"max_inline_comments"`
	DualPlatform      bool           `yaml:"dual_platform"`
	Passes            []filePassOut  `yaml:"passes"`
}

type filePassOut struct {
	Name     string         `yaml:"name"`
	Required bool           `yaml:"required"`
	Enabled  bool           `yaml:"enabled"`
	Agents   []fileAgentOut `yaml:"agents"`
}

type fileAgentOut struct {
	ID             string   `yaml:"id"`
	Provider       string   `yaml:"provider"`
	Model          string   `yaml:"model,omitempty"`
	SecretsAllOf   []string `yaml:"secrets_all_of,omitempty"`
	SecretsOneOf   []string `yaml:"secrets_one_of,omitempty"`
	Paid           bool     `yaml:"paid,omitempty"`
	InProcessLLM   bool     `yaml:"in_process_llm,omitempty"`
	ChatCapable    bool     `yaml:"chat_capable,omitempty"`
	BaseURL        string   `yaml:"base_url,omitempty"`
	DeploymentName string   `yaml:"deployment_name,omitempty"`
}

func marshalConfig(cfg model.Config) ([]byte, error) {
	out := fileConfigOut{
		FailOnSeverity:    string(cfg.FailOnSeverity),
		MaxInlineComments: cfg.MaxInlineComments,
		DualPlatform:      cfg.DualPlatform,
	}
	for _, p := range cfg.Passes {
		fp := filePassOut{Name: p.Name, Required: p.Required, Enabled: p.Enabled}
		for _, a := range p.Agents {
			fp.Agents = append(fp.Agents, fileAgentOut{
				ID:             a.ID,
				Provider:       a.Provider,
				Model:          a.Model,
				SecretsAllOf:   a.Secrets.AllOf,
				SecretsOneOf:   a.Secrets.OneOf,
				Paid:           a.Paid,
				InProcessLLM:   a.InProcessLLM,
				ChatCapable:    a.ChatCapable,
				BaseURL:        a.BaseURL,
				DeploymentName: a.DeploymentName,
			})
		}
		out.Passes = append(out.Passes, fp)
	}
	return yaml.Marshal(out)
}
