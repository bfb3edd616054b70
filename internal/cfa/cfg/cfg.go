// Package cfg builds per-function control-flow graphs for the CFA core.
//
// A graph is an arena: nodes and edges are looked up by string id, never by
// pointer, so a CFG with back-edges (any function containing a loop) is
// trivially copyable and has no cyclic ownership to reason about.
package cfg

// NodeType categorizes a CFG node.
type NodeType string

const (
	NodeEntry      NodeType = "entry"
	NodeExit       NodeType = "exit"
	NodeThrow      NodeType = "throw"
	NodeBasic      NodeType = "basic"
	NodeBranch     NodeType = "branch"
	NodeMerge      NodeType = "merge"
	NodeLoopHeader NodeType = "loop_header"
	NodeLoopBody   NodeType = "loop_body"
	NodeCall       NodeType = "call"
	NodeAwait      NodeType = "await"
)

// EdgeType categorizes a CFG edge.
type EdgeType string

const (
	EdgeSequential EdgeType = "sequential"
	EdgeBranchTrue EdgeType = "branch_true"
	EdgeBranchFalse EdgeType = "branch_false"
	EdgeLoopBack   EdgeType = "loop_back"
	EdgeLoopExit   EdgeType = "loop_exit"
	EdgeException  EdgeType = "exception"
	EdgeReturn     EdgeType = "return"
	EdgeAwait      EdgeType = "await"
)

// CallSite is one call expression, recorded on Graph.CallSites with its
// source line; it carries no id of the node that contains it.
type CallSite struct {
	Callee     string
	Resolved   bool
	Dynamic    bool
	Line       int
}

// Node is one vertex in a function's CFG.
type Node struct {
	ID    string
	Type  NodeType
	// Lines is [startLine, endLine], both 1-indexed and inclusive. It is set
	// on the entry and exit nodes and on the basic nodes walkBlock folds
	// plain statements into; every other node the builder creates (branch,
	// loop, await, case-statement, return and throw nodes) leaves it zero,
	// so a line inside such a statement maps to no node.
	Lines [2]int

	// Statements holds the raw source text of each statement folded into
	// this node, in order. Populated during construction, consumed by
	// mitigation-pattern matching.
	Statements []string

	// TaintedVars and Mitigations are populated by the mitigation and
	// path-coverage passes; cfg construction leaves them empty.
	TaintedVars map[string]struct{}
	Mitigations []string // MitigationInstance ids attached by line overlap

	IsAsyncBoundary bool

	Condition string // set on NodeBranch nodes: the branch's source condition
}

// Edge is one directed arc between two node ids.
type Edge struct {
	From string
	To   string
	Type EdgeType
}

// Graph is the control-flow graph of one function.
type Graph struct {
	FunctionID   string // file:line:name
	FunctionName string
	FilePath     string
	StartLine    int
	EndLine      int
	IsAsync      bool

	Nodes map[string]*Node
	Edges []Edge

	EntryNode string
	ExitNodes []string

	CallSites []CallSite

	// Imports is the defining file's import map (module path -> local
	// alias), set by the pass-one caller once per file. Populated so an
	// inter-procedural walker that resolves this graph as a callee can run
	// call-based mitigation detection without a second per-file lookup.
	Imports map[string]string

	// out/in are successor/predecessor indices derived from Edges, kept in
	// sync by AddEdge; not populated by direct Edges mutation.
	out map[string][]int // node id -> indices into Edges
	in  map[string][]int
}

// New creates an empty Graph seeded with its entry and first exit node.
func New(functionID, functionName, filePath string, startLine, endLine int) *Graph {
	g := &Graph{
		FunctionID:   functionID,
		FunctionName: functionName,
		FilePath:     filePath,
		StartLine:    startLine,
		EndLine:      endLine,
		Nodes:        make(map[string]*Node),
		out:          make(map[string][]int),
		in:           make(map[string][]int),
	}
	entry := &Node{ID: functionID + ":entry", Type: NodeEntry, Lines: [2]int{startLine, startLine}}
	exit := &Node{ID: functionID + ":exit", Type: NodeExit, Lines: [2]int{endLine, endLine}}
	g.AddNode(entry)
	g.AddNode(exit)
	g.EntryNode = entry.ID
	g.ExitNodes = []string{exit.ID}
	return g
}

// AddNode registers a node in the graph.
func (g *Graph) AddNode(n *Node) {
	if n.TaintedVars == nil {
		n.TaintedVars = make(map[string]struct{})
	}
	g.Nodes[n.ID] = n
}

// AddEdge adds a typed edge from one node id to another. Both must already
// exist; AddEdge is silently a no-op otherwise, since malformed
// construction is a programmer error in the builder, not a runtime
// condition callers should need to check.
func (g *Graph) AddEdge(from, to string, typ EdgeType) {
	if _, ok := g.Nodes[from]; !ok {
		return
	}
	if _, ok := g.Nodes[to]; !ok {
		return
	}
	idx := len(g.Edges)
	g.Edges = append(g.Edges, Edge{From: from, To: to, Type: typ})
	g.out[from] = append(g.out[from], idx)
	g.in[to] = append(g.in[to], idx)
}

// Successors returns the edges leaving a node.
func (g *Graph) Successors(nodeID string) []Edge {
	idxs := g.out[nodeID]
	edges := make([]Edge, 0, len(idxs))
	for _, i := range idxs {
		edges = append(edges, g.Edges[i])
	}
	return edges
}

// Predecessors returns the edges entering a node.
func (g *Graph) Predecessors(nodeID string) []Edge {
	idxs := g.in[nodeID]
	edges := make([]Edge, 0, len(idxs))
	for _, i := range idxs {
		edges = append(edges, g.Edges[i])
	}
	return edges
}

// IsDeadEnd reports whether a node has no outgoing edges and is not one of
// the function's registered exit nodes — i.e. it is unreachable dead code
// rather than a legitimate terminator.
func (g *Graph) IsDeadEnd(nodeID string) bool {
	if len(g.out[nodeID]) > 0 {
		return false
	}
	for _, exit := range g.ExitNodes {
		if exit == nodeID {
			return false
		}
	}
	return true
}

// ComputeDominators runs the standard iterative dominator fixed-point over
// the graph, returning node id -> set of node ids that dominate it. Used by
// the path-coverage pass's dominator-based shortcut: a mitigation that
// dominates the sink is sufficient to mark a PathAnalysis `full` without
// enumerating every path.
func (g *Graph) ComputeDominators() map[string]map[string]struct{} {
	all := make(map[string]struct{}, len(g.Nodes))
	for id := range g.Nodes {
		all[id] = struct{}{}
	}

	dom := make(map[string]map[string]struct{}, len(g.Nodes))
	dom[g.EntryNode] = map[string]struct{}{g.EntryNode: {}}
	for id := range g.Nodes {
		if id == g.EntryNode {
			continue
		}
		dom[id] = cloneSet(all)
	}

	changed := true
	for changed {
		changed = false
		for id := range g.Nodes {
			if id == g.EntryNode {
				continue
			}
			preds := g.Predecessors(id)
			if len(preds) == 0 {
				continue
			}
			next := cloneSet(dom[preds[0].From])
			for _, e := range preds[1:] {
				next = intersectSets(next, dom[e.From])
			}
			next[id] = struct{}{}
			if !setsEqual(dom[id], next) {
				dom[id] = next
				changed = true
			}
		}
	}
	return dom
}

// Dominates reports whether a dominates b using a precomputed dominator
// map from ComputeDominators.
func Dominates(dom map[string]map[string]struct{}, a, b string) bool {
	set, ok := dom[b]
	if !ok {
		return false
	}
	_, ok = set[a]
	return ok
}

func cloneSet(s map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

func intersectSets(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for k := range a {
		if _, ok := b[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}

func setsEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
