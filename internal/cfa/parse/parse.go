package parse

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// ParsedFile is a tree-sitter parse of one Go source file, kept alive for
// the duration of CFG construction over its functions. Callers must call
// Close when done.
type ParsedFile struct {
	Path   string
	Source []byte
	Tree   *sitter.Tree
}

// ParseFile parses Go source into a ParsedFile. This is the `parseFile`
// capability of the CFG construction interface: everything downstream
// (iterateFunctions, classifyStatement, extractAwaits, extractCalls,
// extractImports) operates on the tree it returns.
func ParseFile(path string, source []byte) (*ParsedFile, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &ParsedFile{Path: path, Source: source, Tree: tree}, nil
}

// Close releases the underlying tree-sitter tree.
func (f *ParsedFile) Close() {
	if f.Tree != nil {
		f.Tree.Close()
	}
}

// FunctionUnit is one function-like construct found by IterateFunctions:
// a top-level function or a method declaration.
type FunctionUnit struct {
	Name         string
	Node         *sitter.Node
	Body         *sitter.Node
	IsMethod     bool
	ReceiverType string
	LineStart    int
	LineEnd      int
}

// IterateFunctions walks the file's top-level declarations and returns one
// FunctionUnit per function_declaration and method_declaration. This is the
// `iterateFunctions` capability: each unit is the root for one CFG build.
func (f *ParsedFile) IterateFunctions() []FunctionUnit {
	var units []FunctionUnit
	root := f.Tree.RootNode()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "function_declaration":
			info := ParseFunctionDeclaration(child, f.Source)
			units = append(units, FunctionUnit{
				Name:      info.Name,
				Node:      child,
				Body:      child.ChildByFieldName("body"),
				LineStart: int(child.StartPoint().Row) + 1,
				LineEnd:   int(child.EndPoint().Row) + 1,
			})
		case "method_declaration":
			info := ParseMethodDeclaration(child, f.Source)
			units = append(units, FunctionUnit{
				Name:         info.Name,
				Node:         child,
				Body:         child.ChildByFieldName("body"),
				IsMethod:     true,
				ReceiverType: info.ReceiverType,
				LineStart:    int(child.StartPoint().Row) + 1,
				LineEnd:      int(child.EndPoint().Row) + 1,
			})
		}
	}
	return units
}

// StatementKind classifies a statement node for CFG construction purposes.
// This is the `classifyStatement` capability: CFG building switches on kind,
// never on a raw tree-sitter node-type string, so the construction rules in
// the cfg package stay parser-agnostic per the node-kind contract.
type StatementKind string

const (
	StmtIf         StatementKind = "if"
	StmtFor        StatementKind = "for"
	StmtSwitch     StatementKind = "switch"
	StmtTypeSwitch StatementKind = "type_switch"
	StmtSelect     StatementKind = "select"
	StmtReturn     StatementKind = "return"
	StmtGo         StatementKind = "go"
	StmtDefer      StatementKind = "defer"
	StmtSend       StatementKind = "send"
	StmtReceive    StatementKind = "receive"
	StmtBreak      StatementKind = "break"
	StmtContinue   StatementKind = "continue"
	StmtGoto       StatementKind = "goto"
	StmtFallthrough StatementKind = "fallthrough"
	StmtLabeled    StatementKind = "labeled"
	StmtBlock      StatementKind = "block"
	StmtCall       StatementKind = "call"
	StmtOther      StatementKind = "other"
)

// ClassifyStatement maps a tree-sitter node to a StatementKind.
func ClassifyStatement(node *sitter.Node, source []byte) StatementKind {
	if node == nil {
		return StmtOther
	}
	switch node.Type() {
	case "if_statement":
		return StmtIf
	case "for_statement":
		return StmtFor
	case "expression_switch_statement":
		return StmtSwitch
	case "type_switch_statement":
		return StmtTypeSwitch
	case "select_statement":
		return StmtSelect
	case "return_statement":
		return StmtReturn
	case "go_statement":
		return StmtGo
	case "defer_statement":
		return StmtDefer
	case "send_statement":
		return StmtSend
	case "break_statement":
		return StmtBreak
	case "continue_statement":
		return StmtContinue
	case "goto_statement":
		return StmtGoto
	case "fallthrough_statement":
		return StmtFallthrough
	case "labeled_statement":
		return StmtLabeled
	case "block":
		return StmtBlock
	case "expression_statement":
		if isReceiveExpression(node) {
			return StmtReceive
		}
		if containsCallExpression(node) {
			return StmtCall
		}
		return StmtOther
	default:
		return StmtOther
	}
}

// isReceiveExpression reports whether an expression_statement's sole
// expression is a channel receive: "<-ch".
func isReceiveExpression(stmt *sitter.Node) bool {
	if stmt.NamedChildCount() != 1 {
		return false
	}
	expr := stmt.NamedChild(0)
	return expr.Type() == "unary_expression" && expr.ChildCount() > 0 && expr.Child(0).Type() == "<-"
}

func containsCallExpression(stmt *sitter.Node) bool {
	if stmt.NamedChildCount() == 0 {
		return false
	}
	return stmt.NamedChild(0).Type() == "call_expression"
}

// AwaitSite is a point in a function body where control flow forks off
// (go statement) or blocks pending delivery (channel receive). Go has no
// async/await keyword; these are the closest analog to the CFG's `await`
// node/edge kind, and are treated as async boundaries by the CFA core.
type AwaitSite struct {
	LineNumber uint32
	Kind       StatementKind // StmtGo or StmtReceive
	Node       *sitter.Node
}

// ExtractAwaits walks a function body and returns every go-statement and
// channel-receive site within it. This is the `extractAwaits` capability.
func ExtractAwaits(body *sitter.Node, source []byte) []AwaitSite {
	var sites []AwaitSite
	if body == nil {
		return sites
	}
	walk(body, func(n *sitter.Node) {
		switch ClassifyStatement(n, source) {
		case StmtGo:
			sites = append(sites, AwaitSite{LineNumber: uint32(n.StartPoint().Row) + 1, Kind: StmtGo, Node: n})
		case StmtReceive:
			sites = append(sites, AwaitSite{LineNumber: uint32(n.StartPoint().Row) + 1, Kind: StmtReceive, Node: n})
		}
	})
	return sites
}

// ExtractCalls walks a function body and returns every call expression in
// it, in source order. This is the `extractCalls` capability.
func ExtractCalls(body *sitter.Node, source []byte) []*CallInfo {
	var calls []*CallInfo
	if body == nil {
		return calls
	}
	walk(body, func(n *sitter.Node) {
		if n.Type() == "call_expression" {
			if info := ParseCallExpression(n, source); info != nil {
				calls = append(calls, info)
			}
		}
	})
	return calls
}

// ExtractImports returns the import path -> local alias map for a parsed
// file (alias is the package's default name when no explicit alias is
// given). This is the `extractImports` capability, used to resolve a
// mitigation pattern's optional module constraint.
func (f *ParsedFile) ExtractImports() map[string]string {
	imports := make(map[string]string)
	root := f.Tree.RootNode()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child.Type() != "import_declaration" {
			continue
		}
		walk(child, func(n *sitter.Node) {
			if n.Type() != "import_spec" {
				return
			}
			pathNode := n.ChildByFieldName("path")
			if pathNode == nil {
				return
			}
			path := trimQuotes(pathNode.Content(f.Source))
			alias := path
			if idx := lastSlash(path); idx >= 0 {
				alias = path[idx+1:]
			}
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				alias = nameNode.Content(f.Source)
			}
			imports[path] = alias
		})
	}
	return imports
}

// walk performs a pre-order traversal over node and every descendant,
// invoking visit on each. Function literals are descended into so nested
// closures' statements are visible to callers that need them (await
// extraction in particular), matching this package's treatment of
// func_literal as an inline, not separately-CFG'd, construct.
func walk(node *sitter.Node, visit func(*sitter.Node)) {
	if node == nil {
		return
	}
	visit(node)
	for i := 0; i < int(node.NamedChildCount()); i++ {
		walk(node.NamedChild(i), visit)
	}
}

func trimQuotes(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '`') {
		return s[1 : len(s)-1]
	}
	return s
}

func lastSlash(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '/' {
			return i
		}
	}
	return -1
}
