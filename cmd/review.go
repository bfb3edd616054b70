package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codepathfinder/prreview/internal/analytics"
	"github.com/codepathfinder/prreview/internal/lineresolver"
	"github.com/codepathfinder/prreview/internal/model"
	"github.com/codepathfinder/prreview/internal/output"
	"github.com/codepathfinder/prreview/internal/pipeline"
	"github.com/codepathfinder/prreview/internal/reporting"
	sarifreport "github.com/codepathfinder/prreview/internal/reporting/sarif"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review a pull request's diff and post findings",
	Long: `review resolves the diff between two refs, runs the structural
analysis core and any configured agents against it, and posts the
deduplicated findings back to the configured platform (or prints them with
--dry-run).`,
	RunE: runReviewCmd,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
	reviewCmd.Flags().String("repo", ".", "path to the git repository")
	reviewCmd.Flags().String("base", "", "base ref (required)")
	reviewCmd.Flags().String("head", "", "head ref (required)")
	reviewCmd.Flags().Int("pr", 0, "pull request number")
	reviewCmd.Flags().String("owner", "", "repository owner (GitHub) or organization (Azure DevOps)")
	reviewCmd.Flags().String("repo-name", "", "repository name")
	reviewCmd.Flags().String("project", "", "Azure DevOps project (ignored for GitHub)")
	reviewCmd.Flags().String("platform", "", "github, azuredevops, or empty for dry-run only")
	reviewCmd.Flags().Bool("dry-run", false, "run the review but never publish")
	reviewCmd.Flags().String("config", "", "path to a config file (defaults to a built-in config)")
	reviewCmd.Flags().String("ruleset-dir", "", "directory of extracted mitigation-pattern bundles")
	reviewCmd.Flags().String("sarif-out", "", "write SARIF 2.1.0 output to this path")
	reviewCmd.Flags().String("json", "", "write JSON output to this path")
	_ = reviewCmd.MarkFlagRequired("base")
	_ = reviewCmd.MarkFlagRequired("head")
}

func runReviewCmd(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	repo, _ := flags.GetString("repo")
	base, _ := flags.GetString("base")
	head, _ := flags.GetString("head")
	prNumber, _ := flags.GetInt("pr")
	owner, _ := flags.GetString("owner")
	repoName, _ := flags.GetString("repo-name")
	project, _ := flags.GetString("project")
	platform, _ := flags.GetString("platform")
	dryRun, _ := flags.GetBool("dry-run")
	configPath, _ := flags.GetString("config")
	rulesetDir, _ := flags.GetString("ruleset-dir")
	sarifOut, _ := flags.GetString("sarif-out")
	jsonOut, _ := flags.GetString("json")

	if dryRun {
		platform = ""
	}

	req := reviewRequest{
		RepoPath:     repo,
		BaseRef:      base,
		HeadRef:      head,
		PRNumber:     prNumber,
		Owner:        owner,
		RepoName:     repoName,
		Project:      project,
		Organization: owner,
		ConfigPath:   configPath,
		RulesetDir:   rulesetDir,
		Platform:     platform,
		Token:        tokenForPlatform(platform),
	}

	emitter.Emit(analytics.ReviewStarted, nil)

	ctx := context.Background()
	outcome, err := runReview(ctx, req)
	if err != nil {
		emitter.Emit(analytics.ReviewFailed, map[string]any{"reason": "internal_error"})
		return err
	}

	if !outcome.Preflight.Valid {
		emitter.Emit(analytics.PreflightFailed, nil)
		printPreflight(outcome.Preflight)
		os.Exit(int(output.DetermineExitCode(false, true, false)))
	}
	if outcome.BudgetExhausted {
		emitter.Emit(analytics.BudgetExhausted, nil)
	}

	if sarifOut != "" {
		if err := writeSARIF(sarifOut, outcome.Result); err != nil {
			return fmt.Errorf("write sarif: %w", err)
		}
	}
	if jsonOut != "" {
		if err := writeJSON(jsonOut, outcome.Result); err != nil {
			return fmt.Errorf("write json: %w", err)
		}
	}

	gated := reporting.Gates(outcome.Result.Complete, outcome.Config.FailOnSeverity)

	if req.Platform != "" {
		backend, err := newBackend(req, outcome.ChangeSet.CheckSHA)
		if err != nil {
			return err
		}
		publisher := reporting.New(backend)
		if err := publisher.StartStatus(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "warning: start status: %v\n", err)
		}
		if err := publisher.Publish(ctx, outcome.Result.Complete, outcome.Result.Partial, outcome.ChangeSet, outcome.Drift, outcome.Config); err != nil {
			fmt.Fprintf(os.Stderr, "warning: publish: %v\n", err)
		}
	} else {
		printDryRun(outcome)
	}

	if gated {
		emitter.Emit(analytics.ReviewFailed, map[string]any{"reason": "gated"})
	} else {
		emitter.Emit(analytics.ReviewCompleted, nil)
	}

	code := output.DetermineExitCode(gated, false, outcome.RequiredFailed)
	if code != output.ExitCodeSuccess {
		os.Exit(int(code))
	}
	return nil
}

func tokenForPlatform(platform string) string {
	switch platform {
	case "github":
		return os.Getenv("GITHUB_TOKEN")
	case "azuredevops":
		return os.Getenv("SYSTEM_ACCESSTOKEN")
	default:
		return ""
	}
}

func printPreflight(result model.PreflightResult) {
	for _, e := range result.Errors {
		fmt.Fprintf(os.Stderr, "error: %s\n", e)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
}

func printDryRun(outcome reviewOutcome) {
	text := output.NewTextFormatter()
	_ = text.Format(flatten(outcome.Result.Complete), flatten(outcome.Result.Partial))
	fmt.Fprintln(os.Stderr, reporting.BuildSummary(outcome.Result.Complete, outcome.Result.Partial, outcome.Drift, outcome.Drift.Severity == lineresolver.DriftCritical))
}

func writeSARIF(path string, result pipeline.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return sarifreport.Write(f, flatten(result.Complete), flatten(result.Partial))
}

func writeJSON(path string, result pipeline.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	jf := output.NewJSONFormatterWithWriter(f)
	return jf.Format(flatten(result.Complete), flatten(result.Partial), output.RunInfo{})
}

func flatten(groups []pipeline.Group) []model.Finding {
	var out []model.Finding
	for _, g := range groups {
		out = append(out, g.Findings...)
	}
	return out
}

