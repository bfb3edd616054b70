package cfg

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codepathfinder/prreview/internal/cfa/parse"
)

// builder holds the mutable state needed while walking one function body:
// a counter for fresh node ids and the active break/continue targets, kept
// as explicit stacks rather than host-language recursion so deeply nested
// switch/for/select combinations behave predictably.
type builder struct {
	g        *Graph
	source   []byte
	nextID   int
	breakTo  []string // stack of merge/exit node ids `break` should jump to
	contTo   []string // stack of node ids `continue` should jump to
}

func (b *builder) freshID(kind string) string {
	b.nextID++
	return fmt.Sprintf("%s:%s%d", b.g.FunctionID, kind, b.nextID)
}

// Build constructs the CFG for one function unit found by
// parse.ParsedFile.IterateFunctions.
func Build(filePath string, fn parse.FunctionUnit, source []byte) *Graph {
	functionID := fmt.Sprintf("%s:%d:%s", filePath, fn.LineStart, fn.Name)
	g := New(functionID, fn.Name, filePath, fn.LineStart, fn.LineEnd)

	awaits := parse.ExtractAwaits(fn.Body, source)
	g.IsAsync = len(awaits) > 0

	for _, call := range parse.ExtractCalls(fn.Body, source) {
		g.CallSites = append(g.CallSites, CallSite{
			Callee:   calleeName(call),
			Resolved: call.ObjectName == "" && call.FunctionName != "",
			Dynamic:  call.FunctionName == "",
			Line:     int(call.LineNumber),
		})
	}

	b := &builder{g: g, source: source}
	if fn.Body == nil {
		g.AddEdge(g.EntryNode, g.ExitNodes[0], EdgeSequential)
		return g
	}

	last := b.walkBlock(fn.Body, g.EntryNode)
	if last != "" {
		g.AddEdge(last, g.ExitNodes[0], EdgeSequential)
	}
	return g
}

func calleeName(c *parse.CallInfo) string {
	if c.ObjectName != "" {
		return c.ObjectName + "." + c.FunctionName
	}
	return c.FunctionName
}

// walkBlock folds a sequence of sibling statements into the graph starting
// from `from`, returning the id of the node execution should continue from
// after the block, or "" if every path out of the block already terminates
// (return/panic/break/continue/goto).
func (b *builder) walkBlock(block *sitter.Node, from string) string {
	current := from
	var pendingStmts []string
	var pendingLines [2]int

	flush := func() {
		if len(pendingStmts) == 0 {
			return
		}
		n := &Node{ID: b.freshID("basic"), Type: NodeBasic, Statements: pendingStmts, Lines: pendingLines}
		b.g.AddNode(n)
		b.g.AddEdge(current, n.ID, EdgeSequential)
		current = n.ID
		pendingStmts = nil
	}

	for i := 0; i < int(block.NamedChildCount()); i++ {
		stmt := block.NamedChild(i)
		kind := parse.ClassifyStatement(stmt, b.source)

		switch kind {
		case parse.StmtIf:
			flush()
			current = b.buildIf(stmt, current)
			if current == "" {
				return ""
			}
		case parse.StmtFor:
			flush()
			current = b.buildFor(stmt, current)
			if current == "" {
				return ""
			}
		case parse.StmtSwitch, parse.StmtTypeSwitch:
			flush()
			current = b.buildSwitch(stmt, current)
			if current == "" {
				return ""
			}
		case parse.StmtReturn:
			flush()
			b.terminate(stmt, current, NodeExit, EdgeReturn, true)
			return ""
		case parse.StmtGo, parse.StmtReceive:
			flush()
			current = b.buildAwait(stmt, current, kind)
		case parse.StmtBreak:
			flush()
			if len(b.breakTo) > 0 {
				b.g.AddEdge(current, b.breakTo[len(b.breakTo)-1], EdgeLoopExit)
			}
			return ""
		case parse.StmtContinue:
			flush()
			if len(b.contTo) > 0 {
				b.g.AddEdge(current, b.contTo[len(b.contTo)-1], EdgeLoopBack)
			}
			return ""
		default:
			if isPanicCall(stmt, b.source) {
				flush()
				b.terminate(stmt, current, NodeThrow, EdgeException, false)
				return ""
			}
			if len(pendingStmts) == 0 {
				pendingLines[0] = int(stmt.StartPoint().Row) + 1
			}
			pendingLines[1] = int(stmt.EndPoint().Row) + 1
			pendingStmts = append(pendingStmts, stmt.Content(b.source))
		}
	}
	flush()
	return current
}

func isPanicCall(stmt *sitter.Node, source []byte) bool {
	if stmt.Type() != "expression_statement" || stmt.NamedChildCount() != 1 {
		return false
	}
	expr := stmt.NamedChild(0)
	if expr.Type() != "call_expression" {
		return false
	}
	fn := expr.ChildByFieldName("function")
	return fn != nil && fn.Type() == "identifier" && fn.Content(source) == "panic"
}

// terminate wires `from` to a fresh exit-class node for the statement (a
// return node reached over edgeType when reuseExit is set, otherwise a
// throw node for panics) and registers it in ExitNodes. The new node gets
// no outgoing edge.
func (b *builder) terminate(stmt *sitter.Node, from string, nodeType NodeType, edgeType EdgeType, reuseExit bool) {
	if reuseExit {
		term := &Node{ID: b.freshID("return"), Type: nodeType, Statements: []string{stmt.Content(b.source)}}
		b.g.AddNode(term)
		b.g.AddEdge(from, term.ID, edgeType)
		b.g.ExitNodes = append(b.g.ExitNodes, term.ID)
		return
	}
	term := &Node{ID: b.freshID("throw"), Type: nodeType, Statements: []string{stmt.Content(b.source)}}
	b.g.AddNode(term)
	b.g.AddEdge(from, term.ID, EdgeSequential)
	b.g.ExitNodes = append(b.g.ExitNodes, term.ID)
}

// buildIf wires a branch node with branch_true/branch_false successors that
// rejoin at a merge node. An absent else wires branch_false directly to
// merge.
func (b *builder) buildIf(stmt *sitter.Node, from string) string {
	cond := stmt.ChildByFieldName("condition")
	branch := &Node{ID: b.freshID("branch"), Type: NodeBranch}
	if cond != nil {
		branch.Condition = cond.Content(b.source)
	}
	b.g.AddNode(branch)
	b.g.AddEdge(from, branch.ID, EdgeSequential)

	merge := &Node{ID: b.freshID("merge"), Type: NodeMerge}
	b.g.AddNode(merge)

	consequence := stmt.ChildByFieldName("consequence")
	trueEnd := branch.ID
	if consequence != nil {
		bodyEntry := &Node{ID: b.freshID("basic"), Type: NodeBasic}
		b.g.AddNode(bodyEntry)
		b.g.AddEdge(branch.ID, bodyEntry.ID, EdgeBranchTrue)
		trueEnd = b.walkBlock(consequence, bodyEntry.ID)
	}
	if trueEnd != "" {
		b.g.AddEdge(trueEnd, merge.ID, EdgeSequential)
	}

	alt := stmt.ChildByFieldName("alternative")
	if alt == nil {
		b.g.AddEdge(branch.ID, merge.ID, EdgeBranchFalse)
	} else if alt.Type() == "if_statement" {
		elseEntry := &Node{ID: b.freshID("basic"), Type: NodeBasic}
		b.g.AddNode(elseEntry)
		b.g.AddEdge(branch.ID, elseEntry.ID, EdgeBranchFalse)
		nested := b.buildIf(alt, elseEntry.ID)
		if nested != "" {
			b.g.AddEdge(nested, merge.ID, EdgeSequential)
		}
	} else {
		elseEntry := &Node{ID: b.freshID("basic"), Type: NodeBasic}
		b.g.AddNode(elseEntry)
		b.g.AddEdge(branch.ID, elseEntry.ID, EdgeBranchFalse)
		falseEnd := b.walkBlock(alt, elseEntry.ID)
		if falseEnd != "" {
			b.g.AddEdge(falseEnd, merge.ID, EdgeSequential)
		}
	}

	if len(b.g.Predecessors(merge.ID)) == 0 {
		return ""
	}
	return merge.ID
}

// buildFor wires header -> body (branch_true) and header -> exit
// (loop_exit). The incrementor, when present, sits between body-exit and
// the back-edge; the initializer, when present, precedes the header.
func (b *builder) buildFor(stmt *sitter.Node, from string) string {
	info := parse.ParseForStatement(stmt, b.source)
	current := from
	if info != nil && !info.IsRange && info.Init != "" {
		initNode := &Node{ID: b.freshID("basic"), Type: NodeBasic, Statements: []string{info.Init}}
		b.g.AddNode(initNode)
		b.g.AddEdge(current, initNode.ID, EdgeSequential)
		current = initNode.ID
	}

	header := &Node{ID: b.freshID("loop_header"), Type: NodeLoopHeader}
	if info != nil {
		if info.IsRange {
			header.Condition = info.Left + " range " + info.Right
		} else {
			header.Condition = info.Condition
		}
	}
	b.g.AddNode(header)
	b.g.AddEdge(current, header.ID, EdgeSequential)

	exit := &Node{ID: b.freshID("merge"), Type: NodeMerge}
	b.g.AddNode(exit)

	contTarget := header.ID
	if info != nil && !info.IsRange && info.Update != "" {
		incNode := &Node{ID: b.freshID("basic"), Type: NodeBasic, Statements: []string{info.Update}}
		b.g.AddNode(incNode)
		b.g.AddEdge(incNode.ID, header.ID, EdgeLoopBack)
		contTarget = incNode.ID
	}

	b.breakTo = append(b.breakTo, exit.ID)
	b.contTo = append(b.contTo, contTarget)
	defer func() {
		b.breakTo = b.breakTo[:len(b.breakTo)-1]
		b.contTo = b.contTo[:len(b.contTo)-1]
	}()

	body := stmt.ChildByFieldName("body")
	bodyHeader := &Node{ID: b.freshID("loop_body"), Type: NodeLoopBody}
	b.g.AddNode(bodyHeader)
	b.g.AddEdge(header.ID, bodyHeader.ID, EdgeBranchTrue)

	var bodyEnd string
	if body != nil {
		bodyEnd = b.walkBlock(body, bodyHeader.ID)
	} else {
		bodyEnd = bodyHeader.ID
	}
	if bodyEnd != "" {
		b.g.AddEdge(bodyEnd, contTarget, EdgeLoopBack)
	}

	b.g.AddEdge(header.ID, exit.ID, EdgeLoopExit)
	return exit.ID
}

// buildSwitch wires a branch to each case body; fall-through connects
// sequential edges between consecutive case bodies until a terminator, and
// an explicit break routes to merge via the break-target stack.
func (b *builder) buildSwitch(stmt *sitter.Node, from string) string {
	branch := &Node{ID: b.freshID("branch"), Type: NodeBranch}
	if cond := stmt.ChildByFieldName("value"); cond != nil {
		branch.Condition = cond.Content(b.source)
	}
	b.g.AddNode(branch)
	b.g.AddEdge(from, branch.ID, EdgeSequential)

	merge := &Node{ID: b.freshID("merge"), Type: NodeMerge}
	b.g.AddNode(merge)

	b.breakTo = append(b.breakTo, merge.ID)
	defer func() { b.breakTo = b.breakTo[:len(b.breakTo)-1] }()

	hasDefault := false
	var prevCaseEnd string
	for i := 0; i < int(stmt.NamedChildCount()); i++ {
		child := stmt.NamedChild(i)
		if child.Type() != "expression_case" && child.Type() != "default_case" && child.Type() != "type_case" {
			continue
		}
		isDefault := child.Type() == "default_case"
		hasDefault = hasDefault || isDefault

		caseEntry := &Node{ID: b.freshID("basic"), Type: NodeBasic}
		b.g.AddNode(caseEntry)
		edgeType := EdgeBranchTrue
		if isDefault {
			edgeType = EdgeBranchFalse
		}
		b.g.AddEdge(branch.ID, caseEntry.ID, edgeType)
		if prevCaseEnd != "" {
			b.g.AddEdge(prevCaseEnd, caseEntry.ID, EdgeSequential)
		}

		end := b.walkCaseStatements(child, caseEntry.ID)
		fallsThrough := false
		if cnt := int(child.NamedChildCount()); cnt > 0 {
			fallsThrough = child.NamedChild(cnt-1).Type() == "fallthrough_statement"
		}
		prevCaseEnd = ""
		if end != "" && fallsThrough {
			prevCaseEnd = end
		} else if end != "" {
			b.g.AddEdge(end, merge.ID, EdgeSequential)
		}
	}
	if prevCaseEnd != "" {
		b.g.AddEdge(prevCaseEnd, merge.ID, EdgeSequential)
	}

	if !hasDefault {
		b.g.AddEdge(branch.ID, merge.ID, EdgeBranchFalse)
	}

	return merge.ID
}

// walkCaseStatements walks a case/default_case node's statement children
// directly (they are not wrapped in a block node the way if/for bodies
// are).
func (b *builder) walkCaseStatements(caseNode *sitter.Node, from string) string {
	current := from
	for i := 0; i < int(caseNode.NamedChildCount()); i++ {
		stmt := caseNode.NamedChild(i)
		if stmt.Type() == "expression_list" || stmt.Type() == "type_case" {
			continue
		}
		kind := parse.ClassifyStatement(stmt, b.source)
		switch kind {
		case parse.StmtFallthrough:
			return current // caller wires sequential edge to next case
		case parse.StmtIf:
			current = b.buildIf(stmt, current)
		case parse.StmtFor:
			current = b.buildFor(stmt, current)
		case parse.StmtSwitch, parse.StmtTypeSwitch:
			current = b.buildSwitch(stmt, current)
		case parse.StmtReturn:
			b.terminate(stmt, current, NodeExit, EdgeReturn, true)
			return ""
		case parse.StmtBreak:
			if len(b.breakTo) > 0 {
				b.g.AddEdge(current, b.breakTo[len(b.breakTo)-1], EdgeLoopExit)
			}
			return ""
		default:
			if isPanicCall(stmt, b.source) {
				b.terminate(stmt, current, NodeThrow, EdgeException, false)
				return ""
			}
			n := &Node{ID: b.freshID("basic"), Type: NodeBasic, Statements: []string{stmt.Content(b.source)}}
			b.g.AddNode(n)
			b.g.AddEdge(current, n.ID, EdgeSequential)
			current = n.ID
		}
		if current == "" {
			return ""
		}
	}
	return current
}

// buildAwait wires an await node (go-statement dispatch or channel
// receive) with an incoming `await` edge, per the CFG's async-boundary
// model.
func (b *builder) buildAwait(stmt *sitter.Node, from string, kind parse.StatementKind) string {
	n := &Node{ID: b.freshID("await"), Type: NodeAwait, Statements: []string{stmt.Content(b.source)}, IsAsyncBoundary: true}
	b.g.AddNode(n)
	b.g.AddEdge(from, n.ID, EdgeAwait)
	return n.ID
}
