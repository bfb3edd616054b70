// Package analytics sends anonymous, PII-free usage events from the CLI's
// command bodies, never from the review core itself — the CFA/PassRunner/
// Reporter packages stay telemetry-agnostic and take no dependency here.
package analytics

// Emitter sends a named event with optional properties. Implementations
// must not block the caller on network errors; emission is best-effort.
type Emitter interface {
	Emit(event string, properties map[string]any)
	Close()
}

// Event names. Properties passed alongside an event must never carry file
// paths, source snippets, or anything PR-identifying.
const (
	ReviewStarted    = "prreview:review_started"
	ReviewCompleted  = "prreview:review_completed"
	ReviewFailed     = "prreview:review_failed"
	PreflightFailed  = "prreview:preflight_failed"
	BudgetExhausted  = "prreview:budget_exhausted"
	ServeStarted     = "prreview:serve_started"
	ServeStopped     = "prreview:serve_stopped"
	ConfigValidated  = "prreview:config_validated"
	ConfigInvalid    = "prreview:config_invalid"
)

// NoopEmitter discards every event. Used when metrics are disabled.
type NoopEmitter struct{}

func (NoopEmitter) Emit(string, map[string]any) {}
func (NoopEmitter) Close()                      {}
