package mitigation

import (
	"strings"

	"github.com/codepathfinder/prreview/internal/cfa/cfg"
)

// CallSite is the matcher's view of one call, carrying what the CFG only
// keeps as a flattened callee string plus enough to resolve Module
// constraints against the file's imports. When Object is empty and
// Function is a dotted callee as the CFG records it ("zod.parse"),
// matchCall splits Function at its last dot into receiver and name.
type CallSite struct {
	Object   string // "" for a bare identifier call
	Function string
	Args     []string
	Line     int
}

// Detect scans a graph's call sites against a registry's patterns whose
// MatchKind is a call kind (function or method), and returns one Instance
// per match. imports maps an import path to its local alias, used to
// resolve a pattern's Module constraint.
func Detect(g *cfg.Graph, calls []CallSite, registry *Registry, imports map[string]string) []Instance {
	var found []Instance
	for _, cp := range allPatterns(registry) {
		if cp.MatchKind != KindFunctionCall && cp.MatchKind != KindMethodCall {
			continue
		}
		for _, call := range calls {
			if inst, ok := matchCall(g, cp, call, imports); ok {
				found = append(found, inst)
			}
		}
	}
	return found
}

func allPatterns(r *Registry) []*CompiledPattern {
	seen := make(map[string]*CompiledPattern)
	for _, list := range r.byKind {
		for _, p := range list {
			seen[p.ID] = p
		}
	}
	out := make([]*CompiledPattern, 0, len(seen))
	for _, p := range seen {
		out = append(out, p)
	}
	return out
}

func matchCall(g *cfg.Graph, cp *CompiledPattern, call CallSite, imports map[string]string) (Instance, bool) {
	object, function := call.Object, call.Function
	if object == "" {
		if i := strings.LastIndex(function, "."); i >= 0 {
			object, function = function[:i], function[i+1:]
		}
	}
	if !matchesName(cp, function) {
		return Instance{}, false
	}

	confidence := cp.Confidence
	if cp.Module != "" {
		resolvedPath, known := resolveModule(object, imports)
		if !known {
			return Instance{}, false
		}
		if resolvedPath != cp.Module {
			return Instance{}, false
		}
	}

	return Instance{
		PatternID:     cp.ID,
		File:          g.FilePath,
		Line:          call.Line,
		ProtectedVars: call.Args,
		Scope:         ScopeFunction,
		Confidence:    confidence,
	}, true
}

func matchesName(cp *CompiledPattern, name string) bool {
	if cp.ExactName == "" && cp.nameMatcher == nil {
		return false
	}
	if cp.ExactName != "" && cp.ExactName != name {
		return false
	}
	if cp.nameMatcher != nil {
		matched, ok, _ := cp.nameMatcher.Match(name)
		return ok && matched
	}
	return true
}

// resolveModule maps a call's receiver identifier to an import path via the
// file's import alias table. A bare-identifier call (Object == "") has no
// module to resolve.
func resolveModule(object string, imports map[string]string) (string, bool) {
	if object == "" {
		return "", false
	}
	for path, alias := range imports {
		if alias == object {
			return path, true
		}
	}
	return "", false
}

// DetectTypeGuards scans a graph's branch nodes for Go's nil-check
// and comma-ok idioms — the closest Go analogs to the spec's type-guard,
// typeof/instanceof, and optional-chaining match kinds (Go has none of
// those operators directly; see DESIGN.md).
func DetectTypeGuards(g *cfg.Graph) []Instance {
	var found []Instance
	for _, n := range g.Nodes {
		if n.Type != cfg.NodeBranch {
			continue
		}
		cond := n.Condition
		if isNilGuard(cond) || isCommaOKGuard(cond) {
			found = append(found, Instance{
				PatternID:  "builtin/type-guard",
				File:       g.FilePath,
				Line:       n.Lines[0],
				Scope:      ScopeBlock,
				Confidence: ConfidenceHigh,
			})
		}
	}
	return found
}

func isNilGuard(cond string) bool {
	if cond == "" {
		return false
	}
	return strings.Contains(cond, "!= nil") || strings.Contains(cond, "== nil")
}

func isCommaOKGuard(cond string) bool {
	return strings.Contains(cond, " ok") || strings.HasSuffix(cond, "ok")
}
