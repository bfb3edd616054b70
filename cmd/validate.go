package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/codepathfinder/prreview/internal/analytics"
	"github.com/codepathfinder/prreview/internal/configload"
	"github.com/codepathfinder/prreview/internal/output"
	"github.com/codepathfinder/prreview/internal/preflight"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a project's config and environment without running a review",
	Long: `validate runs Preflight against the project's config file (or the
built-in default config) and the current environment, reporting errors and
warnings without touching any diff or posting anything.`,
	RunE: runValidateCmd,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().String("repo", ".", "path to the project")
	validateCmd.Flags().String("config", "", "path to a config file (defaults to <repo>/.prreview.yaml)")
	validateCmd.Flags().Bool("json", false, "emit machine-readable JSON instead of text")
}

type validateReport struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func runValidateCmd(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	repo, _ := flags.GetString("repo")
	configPath, _ := flags.GetString("config")
	asJSON, _ := flags.GetBool("json")

	if configPath == "" {
		configPath = filepath.Join(repo, ".prreview.yaml")
	}

	var cfg = configload.DefaultConfig("")
	if _, err := os.Stat(configPath); err == nil {
		loaded, loadErr := configload.Load(configPath)
		if loadErr != nil {
			return fmt.Errorf("load config %s: %w", configPath, loadErr)
		}
		cfg = loaded
	}

	env := configload.ResolveEnvironment()
	cfg.AvailableSecrets = env.Secrets

	result := preflight.Run(cfg, env)

	if result.Valid {
		emitter.Emit(analytics.ConfigValidated, nil)
	} else {
		emitter.Emit(analytics.ConfigInvalid, nil)
	}

	report := validateReport{Valid: result.Valid, Errors: result.Errors, Warnings: result.Warnings}
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		for _, e := range report.Errors {
			fmt.Printf("error: %s\n", e)
		}
		for _, w := range report.Warnings {
			fmt.Printf("warning: %s\n", w)
		}
		if result.Valid {
			fmt.Println("ok")
		}
	}

	if !result.Valid {
		os.Exit(int(output.ExitCodeError))
	}
	return nil
}
