package passrunner

import (
	"context"
	"errors"
	"time"

	"github.com/codepathfinder/prreview/internal/cache"
	"github.com/codepathfinder/prreview/internal/model"
)

// ErrDirectPushDenied is the policy-gate failure: an in-process LLM agent
// is never run against a direct push to the main branch.
var ErrDirectPushDenied = errors.New("in-process LLM agents are denied on direct pushes to the main branch")

// outcome bundles one agent's classified result with its trace entry.
type outcome struct {
	result model.AgentResult
	trace  model.TraceEntry
}

// runAgent consults the cache, applies the policy gate, and otherwise
// invokes the agent, caching a Success result on completion. A required
// agent's Failure or policy denial returns a *RequiredAgentFailedError; an
// optional agent's failure is folded into the partial stream instead.
func (r *Runner) runAgent(ctx context.Context, pass model.Pass, agentCfg model.AgentConfig, push PushContext) (outcome, error) {
	if agentCfg.InProcessLLM && push.IsDirectPush && push.TargetBranch == "main" {
		denied := model.AgentSkipped{Reason: ErrDirectPushDenied.Error()}
		o := outcome{result: denied, trace: model.TraceEntry{Pass: pass.Name, Agent: agentCfg.ID, Outcome: model.AgentResultSkipped, SkippedReason: denied.Reason}}
		if pass.Required {
			return o, &RequiredAgentFailedError{Pass: pass.Name, Agent: agentCfg.ID, Err: ErrDirectPushDenied}
		}
		return o, nil
	}

	key := cache.Key{PRID: r.PRID, HeadSHA: r.HeadSHA, ConfigHash: r.ConfigHash, AgentID: agentCfg.ID}
	if entry, hit := r.Cache.Get(key); hit {
		return outcome{
			result: entry.Result,
			trace:  model.TraceEntry{Pass: pass.Name, Agent: agentCfg.ID, Outcome: model.AgentResultSuccess, CacheHit: true},
		}, nil
	}

	agent, ok := r.Agents[agentCfg.ID]
	if !ok {
		skipped := model.AgentSkipped{Reason: "no implementation registered for agent"}
		o := outcome{result: skipped, trace: model.TraceEntry{Pass: pass.Name, Agent: agentCfg.ID, Outcome: model.AgentResultSkipped, SkippedReason: skipped.Reason}}
		if pass.Required {
			return o, &RequiredAgentFailedError{Pass: pass.Name, Agent: agentCfg.ID, Err: errors.New(skipped.Reason)}
		}
		return o, nil
	}

	start := time.Now()
	actx := AgentContext{AgentID: agentCfg.ID, Provider: agentCfg.Provider, Model: agentCfg.Model}
	result := agent.Run(ctx, actx)
	duration := time.Since(start).Milliseconds()

	trace := model.TraceEntry{Pass: pass.Name, Agent: agentCfg.ID, Outcome: result.Kind(), DurationMs: duration}

	switch v := result.(type) {
	case model.AgentSuccess:
		r.Cache.Put(key, v)
	case model.AgentFailure:
		if pass.Required {
			return outcome{result: result, trace: trace}, &RequiredAgentFailedError{Pass: pass.Name, Agent: agentCfg.ID, Err: v.Err}
		}
	case model.AgentSkipped:
		trace.SkippedReason = v.Reason
	}

	return outcome{result: result, trace: trace}, nil
}
