// Package passrunner implements PassRunner (spec §4.7): it iterates
// config.passes in order, consults the cache before invoking an agent,
// enforces the budget gate and the direct-main-push policy gate, and
// classifies every AgentResult exhaustively into the complete/partial
// finding streams.
package passrunner

import (
	"context"
	"fmt"

	"github.com/codepathfinder/prreview/internal/budget"
	"github.com/codepathfinder/prreview/internal/cache"
	"github.com/codepathfinder/prreview/internal/model"
)

// AgentContext is the scoped context an agent runs with: its ID and the
// provider/model from its config. Runner does not fill Env, so agents
// receive it nil; no environment allow-list is applied.
type AgentContext struct {
	AgentID  string
	Provider string
	Model    string
	Env      map[string]string
}

// Agent invokes one configured agent and returns its outcome. Production
// agents (in-process LLM calls, external CI checks) implement this;
// PassRunner itself is agnostic to what an agent does.
type Agent interface {
	Run(ctx context.Context, actx AgentContext) model.AgentResult
}

// PushContext describes the event PassRunner is reacting to, for the
// policy gate: an in-process LLM agent is denied on a direct push to the
// main branch (as opposed to a PR targeting main).
type PushContext struct {
	IsDirectPush bool
	TargetBranch string
}

// RequiredAgentFailedError aborts a run: a required agent failed or was
// denied by policy.
type RequiredAgentFailedError struct {
	Pass  string
	Agent string
	Err   error
}

func (e *RequiredAgentFailedError) Error() string {
	return fmt.Sprintf("pass %q: required agent %q failed: %v", e.Pass, e.Agent, e.Err)
}

func (e *RequiredAgentFailedError) Unwrap() error { return e.Err }

// Runner executes passes against a shared Budget and Cache, recording an
// ExecutionTrace as it goes. It is single-writer: Runner.Run must not be
// called concurrently from multiple goroutines against the same instance.
type Runner struct {
	Budget  *budget.Budget
	Cache   *cache.Cache
	Agents  map[string]Agent // agent ID -> implementation
	PRID    string
	HeadSHA string
	ConfigHash string
}

// Result is PassRunner's output: the two finding streams plus the trace
// for diagnostics.
type Result struct {
	Complete []model.Finding
	Partial  []model.Finding
	Trace    model.ExecutionTrace
}

// Run executes every enabled pass in cfg.Passes, in order. It returns a
// *RequiredAgentFailedError wrapped as err when a required agent fails,
// is denied by policy, or its pass is skipped for budget reasons while
// required.
func (r *Runner) Run(ctx context.Context, cfg model.Config, push PushContext) (Result, error) {
	var result Result

	for _, pass := range cfg.Passes {
		if !pass.Enabled {
			continue
		}

		hasPaid := anyPaidAgent(pass.Agents)
		if skip, fatal := r.Budget.PassGate(hasPaid, pass.Required); skip {
			if fatal {
				return result, &RequiredAgentFailedError{Pass: pass.Name, Agent: "*", Err: errBudgetExceeded}
			}
			continue
		}

		for _, agentCfg := range pass.Agents {
			outcome, err := r.runAgent(ctx, pass, agentCfg, push)
			if err != nil {
				return result, err
			}
			appendOutcome(&result, outcome)
		}
	}

	return result, nil
}

var errBudgetExceeded = fmt.Errorf("budget exceeded before required pass ran")

func anyPaidAgent(agents []model.AgentConfig) bool {
	for _, a := range agents {
		if a.Paid {
			return true
		}
	}
	return false
}

// appendOutcome classifies an AgentResult exhaustively and folds its
// findings into the appropriate stream. The switch has no default branch:
// model's unexported marker method keeps every variant inside that
// package, and a result whose Kind is none of the three cases adds no
// findings to either stream.
func appendOutcome(result *Result, outcome outcome) {
	result.Trace.Record(outcome.trace)

	switch outcome.result.Kind() {
	case model.AgentResultSuccess:
		success := outcome.result.(model.AgentSuccess)
		result.Complete = append(result.Complete, stamp(success.Findings, model.ProvenanceComplete)...)
	case model.AgentResultFailure:
		failure := outcome.result.(model.AgentFailure)
		result.Partial = append(result.Partial, stamp(failure.PartialFindings, model.ProvenancePartial)...)
	case model.AgentResultSkipped:
		// no findings to collect
	}
}

func stamp(findings []model.Finding, provenance model.Provenance) []model.Finding {
	out := make([]model.Finding, len(findings))
	for i, f := range findings {
		f.Provenance = provenance
		out[i] = f
	}
	return out
}
