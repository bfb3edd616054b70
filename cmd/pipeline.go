package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/codepathfinder/prreview/internal/budget"
	"github.com/codepathfinder/prreview/internal/cache"
	"github.com/codepathfinder/prreview/internal/cfa"
	"github.com/codepathfinder/prreview/internal/cfa/mitigation"
	"github.com/codepathfinder/prreview/internal/configload"
	"github.com/codepathfinder/prreview/internal/diffstore"
	"github.com/codepathfinder/prreview/internal/ignore"
	"github.com/codepathfinder/prreview/internal/lineresolver"
	"github.com/codepathfinder/prreview/internal/model"
	"github.com/codepathfinder/prreview/internal/passrunner"
	"github.com/codepathfinder/prreview/internal/pipeline"
	"github.com/codepathfinder/prreview/internal/preflight"
	"github.com/codepathfinder/prreview/internal/reporting"
	"github.com/codepathfinder/prreview/internal/ruleset"
	"github.com/codepathfinder/prreview/internal/securitylog"
)

// reviewRequest is every input a review run needs, whether it arrives from
// CLI flags (cmd/review.go) or a webhook payload (cmd/serve.go).
type reviewRequest struct {
	RepoPath   string
	BaseRef    string
	HeadRef    string
	PRNumber   int
	Owner      string
	RepoName   string
	ConfigPath string
	RulesetDir string

	Platform string // "github", "azuredevops", or "" (dry-run/no publish)
	Token    string

	Organization string // Azure DevOps only
	Project      string // Azure DevOps only
}

// reviewOutcome is what a run produced, independent of how it was
// triggered, so both review.go and serve.go can render or gate on it the
// same way.
type reviewOutcome struct {
	ChangeSet       model.ChangeSet
	Result          pipeline.Result
	Drift           lineresolver.DriftSignal
	Config          model.Config
	Preflight       model.PreflightResult
	RequiredFailed  bool
	BudgetExhausted bool
}

// runReview executes DiffStore -> IgnoreMatcher/LineResolver -> Preflight
// -> {CFA core, PassRunner} -> FindingPipeline, the same spine for both an
// interactive review and a served webhook request. It never publishes;
// callers decide whether and how to report the outcome.
func runReview(ctx context.Context, req reviewRequest) (reviewOutcome, error) {
	store := diffstore.New(req.RepoPath)
	changeSet, err := store.GetDiff(ctx, req.BaseRef, req.HeadRef)
	if err != nil {
		return reviewOutcome{}, fmt.Errorf("resolve diff: %w", err)
	}

	matcher, err := ignore.LoadIgnoreFile(req.RepoPath, filepath.Join(req.RepoPath, ".prreviewignore"))
	if err != nil {
		return reviewOutcome{}, fmt.Errorf("load ignore file: %w", err)
	}
	changeSet.Files = applyIgnore(changeSet.Files, matcher)

	lineMap := lineresolver.Build(changeSet.Files)

	cfg, err := loadConfig(req)
	if err != nil {
		return reviewOutcome{}, fmt.Errorf("load config: %w", err)
	}
	env := configload.ResolveEnvironment()
	cfg.AvailableSecrets = env.Secrets

	preflightResult := preflight.Run(cfg, env)
	outcome := reviewOutcome{ChangeSet: changeSet, Config: cfg, Preflight: preflightResult}
	if !preflightResult.Valid {
		return outcome, nil
	}

	limits := model.BudgetLimits{
		MaxFiles:          500,
		MaxChangedLines:   20000,
		MaxTokens:         2_000_000,
		MaxUSD:            25,
		MaxWallMs:         int64(10 * time.Minute / time.Millisecond),
		MaxCallDepth:      8,
		MaxNodesVisited:   5000,
		MaxPatternRegexMs: 200,
	}
	b := budget.New(limits, budget.ModelRate{InputPerToken: 0.000005, OutputPerToken: 0.000015}, time.Now())

	registry := mitigation.NewRegistry()
	if req.RulesetDir != "" {
		runID := fmt.Sprintf("%s/%s#%d", req.Owner, req.RepoName, req.PRNumber)
		secLog := securitylog.New(os.Stderr, runID, nil)
		if _, err := ruleset.LoadIntoRegistry(req.RulesetDir, registry, mitigation.DefaultClassifier(), nil, secLog); err != nil {
			return outcome, fmt.Errorf("load ruleset: %w", err)
		}
	}

	cfaFindings, err := cfa.Analyze(changeSet.Files, os.ReadFile, registry, b, cfa.DefaultSinks())
	if err != nil {
		return outcome, fmt.Errorf("cfa analyze: %w", err)
	}

	runnerResult, runErr := runPasses(ctx, cfg, b, req, preflightResult.Resolved.EffectiveEnvironmentHash)
	var requiredFailed bool
	if runErr != nil {
		var fatal *passrunner.RequiredAgentFailedError
		if !errors.As(runErr, &fatal) {
			return outcome, fmt.Errorf("run passes: %w", runErr)
		}
		requiredFailed = true
	}

	allFindings := append(append([]model.Finding{}, cfaFindings...), runnerResult.Complete...)
	allFindings = append(allFindings, runnerResult.Partial...)

	stats, _ := lineresolver.NormalizeForDiff(allFindings, lineMap, lineresolver.NormalizeConfig{SnapToNearest: true, AdditionsOnly: true})
	drift := lineresolver.ComputeDrift(stats, lineresolver.DefaultDriftThresholds())

	result := pipeline.Run(allFindings)

	outcome.Result = result
	outcome.Drift = drift
	outcome.RequiredFailed = requiredFailed
	outcome.BudgetExhausted = b.Status() == model.BudgetTerminated
	return outcome, nil
}

func applyIgnore(files []model.ChangedFile, matcher *ignore.Matcher) []model.ChangedFile {
	if matcher == nil {
		return files
	}
	kept := make([]model.ChangedFile, 0, len(files))
	for _, f := range files {
		if !matcher.Match(f.Path) {
			kept = append(kept, f)
		}
	}
	return kept
}

func loadConfig(req reviewRequest) (model.Config, error) {
	if req.ConfigPath != "" {
		return configload.Load(req.ConfigPath)
	}
	return configload.DefaultConfig(""), nil
}

func runPasses(ctx context.Context, cfg model.Config, b *budget.Budget, req reviewRequest, configHash string) (passrunner.Result, error) {
	c, err := cache.New(cache.DefaultSize)
	if err != nil {
		return passrunner.Result{}, err
	}
	runner := &passrunner.Runner{
		Budget:     b,
		Cache:      c,
		Agents:     map[string]passrunner.Agent{},
		PRID:       fmt.Sprintf("%s/%s#%d", req.Owner, req.RepoName, req.PRNumber),
		HeadSHA:    req.HeadRef,
		ConfigHash: configHash,
	}
	return runner.Run(ctx, cfg, passrunner.PushContext{IsDirectPush: req.PRNumber == 0, TargetBranch: req.BaseRef})
}

func newBackend(req reviewRequest, headSHA string) (reporting.Backend, error) {
	switch req.Platform {
	case "github":
		return reporting.NewGitHubBackend(req.Token, req.Owner, req.RepoName, req.PRNumber, headSHA), nil
	case "azuredevops":
		return reporting.NewAzureDevOpsBackend(req.Token, req.Organization, req.Project, req.RepoName, req.PRNumber, headSHA), nil
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown platform %q", req.Platform)
	}
}
