// Package pathcov performs path coverage analysis: for a sink node and a
// vulnerability kind, it enumerates entry-to-sink paths through a CFG and
// classifies how much of that surface is protected by a detected
// mitigation, producing the coverage percentage and status that drive
// severity downgrade in the CFA core.
package pathcov

import (
	"strings"

	"github.com/codepathfinder/prreview/internal/cfa/cfg"
	"github.com/codepathfinder/prreview/internal/cfa/mitigation"
)

// Status summarizes how completely a vulnerability's reachable paths are
// mitigated.
type Status string

const (
	StatusNone    Status = "none"
	StatusPartial Status = "partial"
	StatusFull    Status = "full"
)

// Limits are the bounded-DFS caps from spec §4.4.3, each with a sensible
// default.
type Limits struct {
	MaxPaths        int
	MaxPathLength   int
	MaxNodesVisited int
}

// DefaultLimits returns the spec's defaults: 100 paths, 50 nodes per path,
// 10000 total nodes visited across the traversal.
func DefaultLimits() Limits {
	return Limits{MaxPaths: 100, MaxPathLength: 50, MaxNodesVisited: 10000}
}

// Path is one enumerated entry-to-sink path.
type Path struct {
	Nodes       []string
	Mitigations []string // mitigation pattern ids encountered along this path
	Signature   string
	Mitigated   bool
}

// Analysis is the complete result of analyzing one (CFG, sink, vulnerability
// kind) triple.
type Analysis struct {
	VulnKind   string
	SinkNodeID string

	Paths            []Path
	MitigatedCount   int
	UnmitigatedCount int
	CoveragePercent  float64
	Status           Status
	Degraded         bool
	DegradedReason   string
	NodesVisited     int
	NodeLimitReached bool
}

// traversalState tracks node-visit accounting for one enumeration, reset
// per call to Analyze. The limit is strictly-greater-than: visiting exactly
// maxNodesVisited nodes is allowed; the next visit stops the traversal.
type traversalState struct {
	nodesVisited    int
	maxNodesVisited int
	limitReached    bool
	reason          string
}

func (s *traversalState) visit() bool {
	if s.nodesVisited >= s.maxNodesVisited {
		s.limitReached = true
		s.reason = "node_limit_exceeded"
		return false
	}
	s.nodesVisited++
	return true
}

// Analyze runs reachability, bounded path enumeration, and mitigation
// classification for one sink node and vulnerability kind.
//
// instancesByNode maps a CFG node id to the mitigation instances attached
// to it by line overlap. registry resolves each instance's pattern so
// pathMitigatesVulnerability can check the pattern's Mitigates set —
// strictly, per spec: a mitigation only counts toward a vulnerability kind
// it actually claims to protect against, not merely "any mitigation on the
// path."
func Analyze(g *cfg.Graph, sinkNodeID, vulnKind string, instancesByNode map[string][]mitigation.Instance, registry *mitigation.Registry, limits Limits) *Analysis {
	if !reachable(g, g.EntryNode, sinkNodeID) {
		return nil
	}

	a := &Analysis{VulnKind: vulnKind, SinkNodeID: sinkNodeID}

	if dom := g.ComputeDominators(); dominatingMitigationExists(dom, g, sinkNodeID, vulnKind, instancesByNode, registry) {
		a.Status = StatusFull
		a.CoveragePercent = 100
		a.MitigatedCount = 1
		return a
	}

	state := &traversalState{maxNodesVisited: limits.MaxNodesVisited}
	var paths []Path
	var walk func(node string, visited map[string]bool, trail []string)
	walk = func(node string, visited map[string]bool, trail []string) {
		if len(paths) >= limits.MaxPaths {
			return
		}
		if !state.visit() {
			return
		}
		if len(trail) >= limits.MaxPathLength {
			return
		}
		trail = append(trail, node)

		if node == sinkNodeID {
			paths = append(paths, buildPath(trail, vulnKind, instancesByNode, registry))
			return
		}
		if visited[node] {
			return
		}
		visited[node] = true
		for _, e := range g.Successors(node) {
			walk(e.To, visited, trail)
		}
		visited[node] = false
	}
	walk(g.EntryNode, map[string]bool{}, nil)

	a.Paths = dedupBySignature(paths)
	a.NodesVisited = state.nodesVisited
	a.NodeLimitReached = state.limitReached

	for _, p := range a.Paths {
		if p.Mitigated {
			a.MitigatedCount++
		} else {
			a.UnmitigatedCount++
		}
	}

	total := a.MitigatedCount + a.UnmitigatedCount
	if total > 0 {
		a.CoveragePercent = float64(a.MitigatedCount) / float64(total) * 100
	}

	a.Status = deriveStatus(a)
	if a.NodeLimitReached {
		a.Degraded = true
		a.DegradedReason = "node_limit_exceeded"
	}
	return a
}

func deriveStatus(a *Analysis) Status {
	if len(a.Paths) == 0 {
		return StatusNone
	}
	allMitigated := a.UnmitigatedCount == 0
	switch {
	case allMitigated && !a.NodeLimitReached:
		return StatusFull
	case a.MitigatedCount > 0:
		return StatusPartial
	case a.NodeLimitReached:
		return StatusPartial
	default:
		return StatusNone
	}
}

func buildPath(trail []string, vulnKind string, instancesByNode map[string][]mitigation.Instance, registry *mitigation.Registry) Path {
	var mitigations []string
	mitigated := false
	for _, nodeID := range trail {
		for _, inst := range instancesByNode[nodeID] {
			if pathMitigatesVulnerability(inst, vulnKind, registry) {
				mitigations = append(mitigations, inst.PatternID)
				mitigated = true
			}
		}
	}
	return Path{
		Nodes:       append([]string{}, trail...),
		Mitigations: mitigations,
		Signature:   strings.Join(trail, ">"),
		Mitigated:   mitigated,
	}
}

// pathMitigatesVulnerability implements the spec's corrected, strict
// semantics: an instance counts only if its pattern's Mitigates set names
// this vulnerability kind. The source system's lax "any mitigation counts"
// behavior was flagged as a bug in the spec and intentionally not
// reproduced here.
func pathMitigatesVulnerability(inst mitigation.Instance, vulnKind string, registry *mitigation.Registry) bool {
	if registry == nil {
		return false
	}
	pattern, ok := registry.Get(inst.PatternID)
	if !ok {
		return false
	}
	for _, k := range pattern.Mitigates {
		if k == vulnKind {
			return true
		}
	}
	return false
}

func dedupBySignature(paths []Path) []Path {
	seen := make(map[string]bool)
	out := make([]Path, 0, len(paths))
	for _, p := range paths {
		if seen[p.Signature] {
			continue
		}
		seen[p.Signature] = true
		out = append(out, p)
	}
	return out
}

func reachable(g *cfg.Graph, from, to string) bool {
	if from == to {
		return true
	}
	visited := map[string]bool{from: true}
	queue := []string{from}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for _, e := range g.Successors(node) {
			if e.To == to {
				return true
			}
			if !visited[e.To] {
				visited[e.To] = true
				queue = append(queue, e.To)
			}
		}
	}
	return false
}

// dominatingMitigationExists reports whether some mitigation instance
// mitigating vulnKind sits on a node that dominates the sink — sufficient
// on its own to mark the analysis full without enumerating every path.
func dominatingMitigationExists(dom map[string]map[string]struct{}, g *cfg.Graph, sinkNodeID, vulnKind string, instancesByNode map[string][]mitigation.Instance, registry *mitigation.Registry) bool {
	for nodeID, instances := range instancesByNode {
		if nodeID == sinkNodeID {
			continue
		}
		if !cfg.Dominates(dom, nodeID, sinkNodeID) {
			continue
		}
		for _, inst := range instances {
			if pathMitigatesVulnerability(inst, vulnKind, registry) {
				return true
			}
		}
	}
	return false
}
