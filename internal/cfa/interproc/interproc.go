// Package interproc extends mitigation detection across function and file
// boundaries, bounded by a maximum call depth. When it has to give up
// rather than genuinely resolve a call it sets a flag on the walk result;
// the caller decides how that flag changes a path's coverage status.
package interproc

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/codepathfinder/prreview/internal/cfa/cfg"
	"github.com/codepathfinder/prreview/internal/cfa/mitigation"
)

// DefaultMaxCallDepth is the spec's default bound on inter-procedural
// recursion.
const DefaultMaxCallDepth = 5

// MaxRetainedMitigations caps how many cross-file mitigations one Walk call
// keeps. Once the cap is hit, mitigations found later in that walk are
// dropped and those already kept stay; the cap does not span Walk calls.
const MaxRetainedMitigations = 100

// CFGLookup resolves a callee name to its built CFG, across the repo's
// already-analyzed files. A false second return means the callee could not
// be resolved (dynamic dispatch, external package, or simply not yet
// built) and recursion stops there.
type CFGLookup func(functionName string) (*cfg.Graph, bool)

// CrossFileMitigation is a mitigation instance discovered by recursing into
// a callee, carrying the call chain from the original vulnerability site.
type CrossFileMitigation struct {
	Instance  mitigation.Instance
	CallChain []mitigation.CallChainLink
	Depth     int
}

// Result is the outcome of one bounded inter-procedural traversal starting
// from a call site in the analyzed function.
type Result struct {
	CrossFile              []CrossFileMitigation
	ConservativeAssumption bool // an unresolved or dynamic call stopped a branch
	ConservativeFallback   bool // the depth limit was reached before resolving
}

// Walker performs bounded inter-procedural mitigation discovery. It caches
// resolved CFGs by function name via an LRU so repeated callees across many
// call sites in one run don't re-resolve.
type Walker struct {
	lookup   CFGLookup
	registry *mitigation.Registry
	maxDepth int
	cfgCache *lru.Cache[string, *cfg.Graph]
}

// NewWalker builds a Walker with an LRU-backed CFG cache sized for a
// typical run's fan-out. maxDepth is honored as given, including zero (no
// inter-procedural recursion at all): a negative value is the only "unset"
// sentinel and falls back to DefaultMaxCallDepth.
func NewWalker(lookup CFGLookup, registry *mitigation.Registry, maxDepth int) *Walker {
	if maxDepth < 0 {
		maxDepth = DefaultMaxCallDepth
	}
	cache, _ := lru.New[string, *cfg.Graph](512)
	return &Walker{lookup: lookup, registry: registry, maxDepth: maxDepth, cfgCache: cache}
}

func (w *Walker) resolve(name string) (*cfg.Graph, bool) {
	if g, ok := w.cfgCache.Get(name); ok {
		return g, true
	}
	g, ok := w.lookup(name)
	if ok {
		w.cfgCache.Add(name, g)
	}
	return g, ok
}

// Walk recurses from a call site looking for mitigations in the callee and
// its transitive callees, up to maxDepth. chain is the call-chain link list
// accumulated so far, ordered from the vulnerability site toward the
// current function.
func (w *Walker) Walk(callSite cfg.CallSite, callerFile string, chain []mitigation.CallChainLink) Result {
	return w.walk(callSite, callerFile, chain, 0, &Result{})
}

func (w *Walker) walk(callSite cfg.CallSite, callerFile string, chain []mitigation.CallChainLink, depth int, acc *Result) Result {
	if callSite.Dynamic || !callSite.Resolved {
		acc.ConservativeAssumption = true
		return *acc
	}
	if depth >= w.maxDepth {
		acc.ConservativeFallback = true
		return *acc
	}

	callee, ok := w.resolve(callSite.Callee)
	if !ok {
		acc.ConservativeAssumption = true
		return *acc
	}

	link := mitigation.CallChainLink{Function: callee.FunctionName, File: callee.FilePath, Line: callSite.Line}
	nextChain := append(append([]mitigation.CallChainLink{}, chain...), link)

	calls := make([]mitigation.CallSite, 0, len(callee.CallSites))
	for _, c := range callee.CallSites {
		calls = append(calls, mitigation.CallSite{Function: c.Callee, Line: c.Line})
	}

	instances := mitigation.Detect(callee, calls, w.registry, callee.Imports)
	instances = append(instances, mitigation.DetectTypeGuards(callee)...)
	for _, inst := range instances {
		if len(acc.CrossFile) >= MaxRetainedMitigations {
			break
		}
		inst.CallChain = nextChain
		inst.DiscoveryDepth = depth + 1
		acc.CrossFile = append(acc.CrossFile, CrossFileMitigation{
			Instance:  inst,
			CallChain: nextChain,
			Depth:     depth + 1,
		})
	}

	for _, nested := range callee.CallSites {
		if len(acc.CrossFile) >= MaxRetainedMitigations {
			break
		}
		w.walk(nested, callee.FilePath, nextChain, depth+1, acc)
	}

	return *acc
}
