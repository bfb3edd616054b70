package model

// AgentMetrics carries the lightweight per-execution numbers every
// AgentResult variant reports regardless of outcome.
type AgentMetrics struct {
	DurationMs   int64
	TokensUsed   int64
	EstimatedUSD float64
}

// AgentResult is a sealed tagged union: exactly one of AgentSuccess,
// AgentFailure, or AgentSkipped. The unexported isAgentResult method
// closes the set so a new variant outside this package fails to compile
// against any exhaustive switch that calls it, and Kind reports which
// variant a value holds (a type switch works as well).
type AgentResult interface {
	isAgentResult()
	Kind() AgentResultKind
}

// AgentResultKind names the concrete variant of an AgentResult, for callers
// that want a comparable tag without a type switch.
type AgentResultKind string

const (
	AgentResultSuccess AgentResultKind = "success"
	AgentResultFailure AgentResultKind = "failure"
	AgentResultSkipped AgentResultKind = "skipped"
)

// AgentSuccess is the outcome of an agent that completed normally. Every
// finding in Findings carries ProvenanceComplete.
type AgentSuccess struct {
	Findings []Finding
	Metrics  AgentMetrics
}

func (AgentSuccess) isAgentResult()            {}
func (AgentSuccess) Kind() AgentResultKind      { return AgentResultSuccess }

// AgentFailure is the outcome of an agent that errored partway through.
// PartialFindings are whatever the agent managed to produce before
// failing; PassRunner stamps them with ProvenancePartial before they enter
// the pipeline.
type AgentFailure struct {
	Err             error
	Stage           string
	PartialFindings []Finding
	Metrics         AgentMetrics
}

func (AgentFailure) isAgentResult()       {}
func (AgentFailure) Kind() AgentResultKind { return AgentResultFailure }

// AgentSkipped is the outcome of an agent the runner decided not to invoke
// (budget exhausted, trust gate, missing required secret for an optional
// agent, and so on).
type AgentSkipped struct {
	Reason  string
	Metrics AgentMetrics
}

func (AgentSkipped) isAgentResult()       {}
func (AgentSkipped) Kind() AgentResultKind { return AgentResultSkipped }
