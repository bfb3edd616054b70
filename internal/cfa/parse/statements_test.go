package parse

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/stretchr/testify/assert"
)

func TestParseForStatement(t *testing.T) {
	tests := []struct {
		name          string
		code          string
		expectedRange bool
		expectedCond  string
		expectedInit  string
		expectedUpd   string
		expectedLeft  string
		expectedRight string
	}{
		{
			name:          "C-style for loop",
			code:          "package p\nfunc f() { for i := 0; i < 10; i++ {} }",
			expectedRange: false,
			expectedCond:  "i < 10",
			expectedInit:  "i := 0",
			expectedUpd:   "i++",
		},
		{
			name:          "range for loop with index and value",
			code:          "package p\nfunc f() { for i, v := range items {} }",
			expectedRange: true,
			expectedLeft:  "i, v",
			expectedRight: "items",
		},
		{
			name:          "range for loop with blank identifier",
			code:          "package p\nfunc f() { for _, v := range items {} }",
			expectedRange: true,
			expectedLeft:  "_, v",
			expectedRight: "items",
		},
		{
			name:          "infinite loop",
			code:          "package p\nfunc f() { for {} }",
			expectedRange: false,
		},
		{
			name:          "while-style loop",
			code:          "package p\nfunc f() { for i < 10 {} }",
			expectedRange: false,
			expectedInit:  "i < 10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := sitter.NewParser()
			parser.SetLanguage(golang.GetLanguage())

			tree, err := parser.ParseCtx(context.Background(), nil, []byte(tt.code))
			assert.NoError(t, err)
			defer tree.Close()

			forNode := findForStatement(tree.RootNode())
			assert.NotNil(t, forNode, "for_statement node not found")

			info := ParseForStatement(forNode, []byte(tt.code))
			assert.NotNil(t, info)

			assert.Equal(t, tt.expectedRange, info.IsRange, "IsRange mismatch")
			if tt.expectedRange {
				assert.Equal(t, tt.expectedLeft, info.Left, "Left mismatch")
				assert.Equal(t, tt.expectedRight, info.Right, "Right mismatch")
			} else {
				assert.Equal(t, tt.expectedCond, info.Condition, "Condition mismatch")
				assert.Equal(t, tt.expectedInit, info.Init, "Init mismatch")
				assert.Equal(t, tt.expectedUpd, info.Update, "Update mismatch")
			}
			assert.Greater(t, info.LineNumber, uint32(0), "LineNumber should be set")
			assert.Greater(t, info.EndByte, info.StartByte, "EndByte should be > StartByte")
		})
	}
}

func TestParseForStatementNil(t *testing.T) {
	info := ParseForStatement(nil, []byte(""))
	assert.Nil(t, info)

	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())
	tree, _ := parser.ParseCtx(context.Background(), nil, []byte("package p"))
	defer tree.Close()

	info = ParseForStatement(tree.RootNode(), []byte("package p"))
	assert.Nil(t, info)
}

func findForStatement(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.Type() == "for_statement" {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if result := findForStatement(node.Child(i)); result != nil {
			return result
		}
	}
	return nil
}
