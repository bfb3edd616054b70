package cfg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codepathfinder/prreview/internal/cfa/cfg"
	"github.com/codepathfinder/prreview/internal/cfa/parse"
)

func buildFunc(t *testing.T, source, fnName string) *cfg.Graph {
	t.Helper()
	pf, err := parse.ParseFile("test.go", []byte(source))
	require.NoError(t, err)
	defer pf.Close()

	for _, fn := range pf.IterateFunctions() {
		if fn.Name == fnName {
			return cfg.Build("test.go", fn, []byte(source))
		}
	}
	t.Fatalf("function %s not found", fnName)
	return nil
}

func TestBuild_StraightLine(t *testing.T) {
	src := `package p
func f() {
	x := 1
	y := 2
	_ = x + y
}`
	g := buildFunc(t, src, "f")
	assert.Equal(t, g.EntryNode, g.EntryNode)
	assert.Len(t, g.ExitNodes, 1)

	// entry -> basic -> exit
	succ := g.Successors(g.EntryNode)
	require.Len(t, succ, 1)
	assert.Equal(t, cfg.EdgeSequential, succ[0].Type)
}

func TestBuild_If_NoElse(t *testing.T) {
	src := `package p
func f(ok bool) {
	if ok {
		doThing()
	}
	after()
}`
	g := buildFunc(t, src, "f")

	var branch *cfg.Node
	for _, n := range g.Nodes {
		if n.Type == cfg.NodeBranch {
			branch = n
		}
	}
	require.NotNil(t, branch)

	succ := g.Successors(branch.ID)
	var hasTrue, hasFalse bool
	for _, e := range succ {
		if e.Type == cfg.EdgeBranchTrue {
			hasTrue = true
		}
		if e.Type == cfg.EdgeBranchFalse {
			hasFalse = true
		}
	}
	assert.True(t, hasTrue)
	assert.True(t, hasFalse)
}

func TestBuild_If_Else(t *testing.T) {
	src := `package p
func f(ok bool) {
	if ok {
		a()
	} else {
		b()
	}
	after()
}`
	g := buildFunc(t, src, "f")

	var mergeCount int
	for _, n := range g.Nodes {
		if n.Type == cfg.NodeMerge {
			mergeCount++
		}
	}
	assert.Equal(t, 1, mergeCount)
}

func TestBuild_Return_NoSequentialSuccessor(t *testing.T) {
	src := `package p
func f(ok bool) int {
	if ok {
		return 1
	}
	return 2
}`
	g := buildFunc(t, src, "f")

	for _, n := range g.Nodes {
		if n.Type == cfg.NodeExit {
			assert.Empty(t, g.Successors(n.ID), "exit node must have no outgoing edges")
		}
	}
}

func TestBuild_Panic_CreatesThrowNode(t *testing.T) {
	src := `package p
func f() {
	panic("boom")
}`
	g := buildFunc(t, src, "f")

	var found bool
	for _, n := range g.Nodes {
		if n.Type == cfg.NodeThrow {
			found = true
		}
	}
	assert.True(t, found)
}

func TestBuild_For_HasBackEdge(t *testing.T) {
	src := `package p
func f() {
	for i := 0; i < 10; i++ {
		work(i)
	}
}`
	g := buildFunc(t, src, "f")

	var header *cfg.Node
	for _, n := range g.Nodes {
		if n.Type == cfg.NodeLoopHeader {
			header = n
		}
	}
	require.NotNil(t, header)

	var hasBack, hasExit bool
	for _, e := range g.Predecessors(header.ID) {
		if e.Type == cfg.EdgeLoopBack {
			hasBack = true
		}
	}
	for _, e := range g.Successors(header.ID) {
		if e.Type == cfg.EdgeLoopExit {
			hasExit = true
		}
	}
	assert.True(t, hasBack)
	assert.True(t, hasExit)
}

func TestBuild_GoStatement_IsAwaitBoundary(t *testing.T) {
	src := `package p
func f() {
	go handle()
}`
	g := buildFunc(t, src, "f")
	assert.True(t, g.IsAsync)

	var found bool
	for _, e := range g.Edges {
		if e.Type == cfg.EdgeAwait {
			found = true
		}
	}
	assert.True(t, found)
}

func TestComputeDominators_EntryDominatesAll(t *testing.T) {
	src := `package p
func f(ok bool) {
	if ok {
		a()
	}
	b()
}`
	g := buildFunc(t, src, "f")
	dom := g.ComputeDominators()
	for id := range g.Nodes {
		assert.True(t, cfg.Dominates(dom, g.EntryNode, id), "entry should dominate %s", id)
	}
}
