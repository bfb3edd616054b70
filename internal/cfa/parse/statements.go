package parse

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// ForInfo is a parsed Go for_statement, split into the pieces cfg.buildFor
// needs to synthesize the loop-header condition and, for C-style loops, an
// initializer node ahead of it.
type ForInfo struct {
	IsRange    bool   // true for range, false for C-style or while-style
	Condition  string // C-style: the middle clause
	Init       string // C-style: the first clause; while-style: the bare condition
	Update     string // C-style: the increment clause
	Left       string // range: the LHS variables
	Right      string // range: the iterable
	LineNumber uint32
	StartByte  uint32
	EndByte    uint32
}

// ParseForStatement parses a Go for_statement node into a ForInfo. Handles
// C-style loops (for i := 0; i < 10; i++), range loops (for _, v := range
// items), and bare while-style loops (for cond).
func ParseForStatement(node *sitter.Node, sourceCode []byte) *ForInfo {
	if node == nil || node.Type() != "for_statement" {
		return nil
	}

	info := &ForInfo{
		LineNumber: uint32(node.StartPoint().Row) + 1,
		StartByte:  node.StartByte(),
		EndByte:    node.EndByte(),
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)

		switch child.Type() {
		case "for_clause":
			info.IsRange = false

			if condNode := child.ChildByFieldName("condition"); condNode != nil {
				info.Condition = condNode.Content(sourceCode)
			}
			if updNode := child.ChildByFieldName("update"); updNode != nil {
				info.Update = updNode.Content(sourceCode)
			}
			// init has no field name; it's simply the clause's first child.
			if initNode := child.NamedChild(0); initNode != nil && initNode.Type() != "block" {
				info.Init = initNode.Content(sourceCode)
			}
			return info

		case "range_clause":
			info.IsRange = true

			if leftNode := child.ChildByFieldName("left"); leftNode != nil {
				info.Left = leftNode.Content(sourceCode)
			}
			if rightNode := child.ChildByFieldName("right"); rightNode != nil {
				info.Right = rightNode.Content(sourceCode)
			}
			return info

		case "block":
			continue

		default:
			// While-style: the condition sits directly as a child, outside
			// any clause node. It is stashed in Init and Condition stays
			// empty, so buildFor places the condition in a basic node ahead
			// of the loop header and the header's Condition is empty.
			info.IsRange = false
			info.Init = child.Content(sourceCode)
			return info
		}
	}

	return info
}
