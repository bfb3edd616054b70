package parse

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// CallInfo is one parsed Go call expression — a simple call, a method call,
// or a package-qualified call. ObjectName/FunctionName feed cfg.Build's
// callee-name derivation, which in turn is what interproc.Walker resolves
// across files.
type CallInfo struct {
	FunctionName string   // "Println", "Method", "foo"
	ObjectName   string   // "fmt", "obj", "" for simple calls
	Arguments    []string // argument source code strings
	IsSelector   bool     // true for obj.Method()/pkg.Func(), false for foo()
	LineNumber   uint32
	StartByte    uint32
	EndByte      uint32
}

// ParseCallExpression parses a call_expression node into a CallInfo,
// handling simple calls (foo()), method calls (obj.Method()), and
// package-qualified calls (pkg.Func()).
func ParseCallExpression(node *sitter.Node, sourceCode []byte) *CallInfo {
	if node == nil || node.Type() != "call_expression" {
		return nil
	}

	info := &CallInfo{
		LineNumber: node.StartPoint().Row + 1,
		StartByte:  node.StartByte(),
		EndByte:    node.EndByte(),
	}

	funcNode := node.ChildByFieldName("function")
	if funcNode == nil {
		return nil
	}

	switch funcNode.Type() {
	case "identifier":
		info.FunctionName = funcNode.Content(sourceCode)
	case "selector_expression":
		info.ObjectName, info.FunctionName = ParseSelectorExpression(funcNode, sourceCode)
		info.IsSelector = true
	case "func_literal":
		// An IIFE has no resolvable name; mitigation/cross-file resolution
		// treats it as dynamic rather than misattributing a callee.
	default:
		info.FunctionName = funcNode.Content(sourceCode)
	}

	if argsNode := node.ChildByFieldName("arguments"); argsNode != nil && argsNode.Type() == "argument_list" {
		info.Arguments = extractArguments(argsNode, sourceCode)
	}

	return info
}

// ParseSelectorExpression splits a selector_expression into its operand and
// field, e.g. "fmt.Println" -> ("fmt", "Println").
func ParseSelectorExpression(node *sitter.Node, sourceCode []byte) (object string, field string) {
	if node == nil || node.Type() != "selector_expression" {
		return "", ""
	}
	if operandNode := node.ChildByFieldName("operand"); operandNode != nil {
		object = operandNode.Content(sourceCode)
	}
	if fieldNode := node.ChildByFieldName("field"); fieldNode != nil {
		field = fieldNode.Content(sourceCode)
	}
	return object, field
}

// extractArguments returns an argument_list's named children as source
// strings, in call order.
func extractArguments(argsNode *sitter.Node, sourceCode []byte) []string {
	arguments := []string{}
	for i := 0; i < int(argsNode.NamedChildCount()); i++ {
		if child := argsNode.NamedChild(i); child != nil {
			arguments = append(arguments, child.Content(sourceCode))
		}
	}
	return arguments
}
