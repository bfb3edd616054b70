// Package mitigation detects, from a CFG's nodes, source constructs that
// are credited with protecting against one or more vulnerability kinds —
// sanitizer calls and nil/comma-ok guards — and records each
// match as a MitigationInstance the path-coverage pass can attach to CFG
// nodes by line overlap.
package mitigation

// Kind names the syntactic construct a Pattern's MatchKind targets. Go has
// no typeof/instanceof/optional-chaining operators; they are mapped to
// their closest Go idiom (see matcher.go).
type Kind string

const (
	KindFunctionCall    Kind = "function_call"
	KindMethodCall      Kind = "method_call"
	KindTypeGuard       Kind = "type_guard"       // nil check, comma-ok check
	KindAssignment      Kind = "assignment"
	KindTypeAssertion   Kind = "type_assertion"    // x.(T), Go's instanceof analog
	KindTypeSwitch      Kind = "type_switch"       // Go's typeof analog
	KindCommaOK         Kind = "comma_ok"          // v, ok := m[k] / x.(T) / <-ch — Go's optional-chaining analog
)

// Confidence reflects how certain a MitigationInstance is. A call match
// carries its pattern's Confidence unchanged; a call whose pattern has a
// module constraint that cannot be verified against the file's imports is
// not matched at all, so no instance is recorded at a lowered confidence.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

func (c Confidence) Lower() Confidence {
	switch c {
	case ConfidenceHigh:
		return ConfidenceMedium
	case ConfidenceMedium:
		return ConfidenceLow
	default:
		return ConfidenceLow
	}
}

// Pattern is one declarative mitigation rule, loaded from built-ins or
// configuration and immutable for the run.
type Pattern struct {
	ID   string
	Name string

	Mitigates []string // vulnerability kinds this pattern protects against

	MatchKind Kind

	// Match criteria: all non-empty constraints must hold for a match.
	ExactName  string
	NameRegex  string // raw pattern text; compiled once at load by Compile
	Module     string // required import path, resolved from the file's imports
	Confidence Confidence

	BuiltIn    bool
	Deprecated bool
}

// CompiledPattern is a Pattern plus its compiled, timeout-guarded matcher.
// Produced once at load by Compile and reused for every match in the run.
type CompiledPattern struct {
	Pattern
	nameMatcher *guardedRegex
}

// Scope names the lexical extent a MitigationInstance's protection holds
// over. The detectors assign it per kind without inspecting the enclosing
// constructs: call matches get ScopeFunction and type guards ScopeBlock;
// no detector assigns ScopeModule.
type Scope string

const (
	ScopeBlock    Scope = "block"
	ScopeFunction Scope = "function"
	ScopeModule   Scope = "module"
)

// CallChainLink is one (function, file, line) hop in a cross-file
// mitigation's call chain, ordered from the vulnerability site toward the
// mitigation site.
type CallChainLink struct {
	Function string
	File     string
	Line     int
}

// Instance is one detected mitigation occurrence, attached to the CFG node
// whose line range it overlaps.
type Instance struct {
	PatternID        string
	File             string
	Line             int
	ProtectedVars    []string
	Scope            Scope
	Confidence       Confidence
	CallChain        []CallChainLink // non-empty only for cross-file instances
	DiscoveryDepth   int
}

// Registry holds every compiled pattern available to a run, indexed both by
// id and by the vulnerability kinds it mitigates.
type Registry struct {
	byID   map[string]*CompiledPattern
	byKind map[string][]*CompiledPattern
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*CompiledPattern), byKind: make(map[string][]*CompiledPattern)}
}

// Add compiles and registers a pattern. It returns an error if the
// pattern's name regex fails to compile or its ReDoS risk classification
// is at or above the rejection threshold and it is not whitelisted.
func (r *Registry) Add(p Pattern, classifier *RedosClassifier, whitelist map[string]bool) error {
	compiled, err := compile(p, classifier, whitelist)
	if err != nil {
		return err
	}
	r.byID[p.ID] = compiled
	for _, kind := range p.Mitigates {
		r.byKind[kind] = append(r.byKind[kind], compiled)
	}
	return nil
}

// ByKind returns every compiled pattern that mitigates the given
// vulnerability kind.
func (r *Registry) ByKind(vulnKind string) []*CompiledPattern {
	return r.byKind[vulnKind]
}

// Get retrieves a compiled pattern by id.
func (r *Registry) Get(id string) (*CompiledPattern, bool) {
	p, ok := r.byID[id]
	return p, ok
}
