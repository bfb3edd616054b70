package parse

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

func parseGoSnippet(t *testing.T, code string) (*sitter.Tree, *sitter.Node) {
	t.Helper()
	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())
	defer parser.Close()

	tree, err := parser.ParseCtx(context.Background(), nil, []byte(code))
	if err != nil {
		t.Fatalf("failed to parse Go code: %v", err)
	}
	return tree, tree.RootNode()
}

func findNode(node *sitter.Node, nodeType string) *sitter.Node {
	if node.Type() == nodeType {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if found := findNode(node.Child(i), nodeType); found != nil {
			return found
		}
	}
	return nil
}

func TestExtractParameters(t *testing.T) {
	tests := []struct {
		name          string
		code          string
		expectedNames []string
		expectedTypes []string
	}{
		{
			name:          "simple params",
			code:          `package p; func Foo(x int, y string) {}`,
			expectedNames: []string{"x", "y"},
			expectedTypes: []string{"x: int", "y: string"},
		},
		{
			name:          "grouped params sharing type",
			code:          `package p; func Foo(a, b int) {}`,
			expectedNames: []string{"a", "b"},
			expectedTypes: []string{"a: int", "b: int"},
		},
		{
			name:          "empty param list",
			code:          `package p; func Foo() {}`,
			expectedNames: nil,
			expectedTypes: nil,
		},
		{
			name:          "variadic param",
			code:          `package p; func Foo(args ...string) {}`,
			expectedNames: []string{"args"},
			expectedTypes: []string{"args: ...string"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, root := parseGoSnippet(t, tt.code)
			defer tree.Close()

			funcDecl := findNode(root, "function_declaration")
			if funcDecl == nil {
				t.Fatal("function_declaration not found")
			}
			paramList := funcDecl.ChildByFieldName("parameters")

			result := ExtractParameters(paramList, []byte(tt.code))
			if len(result.Names) != len(tt.expectedNames) {
				t.Fatalf("Names: expected %v, got %v", tt.expectedNames, result.Names)
			}
			for i, name := range tt.expectedNames {
				if result.Names[i] != name {
					t.Errorf("Names[%d]: expected %q, got %q", i, name, result.Names[i])
				}
			}
			if len(result.Types) != len(tt.expectedTypes) {
				t.Fatalf("Types: expected %v, got %v", tt.expectedTypes, result.Types)
			}
		})
	}
}

func TestExtractParametersNil(t *testing.T) {
	result := ExtractParameters(nil, nil)
	if len(result.Names) != 0 || len(result.Types) != 0 {
		t.Errorf("expected empty GoParams for nil input, got %+v", result)
	}
}

func TestExtractReturnType(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected string
	}{
		{"single return type", `package p; func Foo() int { return 0 }`, "int"},
		{"multiple return types", `package p; func Foo() (string, error) { return "", nil }`, "(string, error)"},
		{"no return type", `package p; func Foo() {}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, root := parseGoSnippet(t, tt.code)
			defer tree.Close()

			funcDecl := findNode(root, "function_declaration")
			if funcDecl == nil {
				t.Fatal("function_declaration not found")
			}
			resultNode := funcDecl.ChildByFieldName("result")

			got := ExtractReturnType(resultNode, []byte(tt.code))
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestExtractReturnTypeNil(t *testing.T) {
	if got := ExtractReturnType(nil, nil); got != "" {
		t.Errorf("expected empty string for nil input, got %q", got)
	}
}

func TestExtractReceiverType(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected string
	}{
		{"pointer receiver", `package p; type S struct{}; func (s *S) M() {}`, "S"},
		{"value receiver", `package p; type S struct{}; func (s S) M() {}`, "S"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, root := parseGoSnippet(t, tt.code)
			defer tree.Close()

			methodDecl := findNode(root, "method_declaration")
			if methodDecl == nil {
				t.Fatal("method_declaration not found")
			}
			receiverNode := methodDecl.ChildByFieldName("receiver")

			got := ExtractReceiverType(receiverNode, []byte(tt.code))
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestExtractReceiverTypeGeneric(t *testing.T) {
	// *Stack[T] has a generic_type node, not type_identifier; unhandled,
	// returns "" rather than misparsing.
	code := `package p
type Stack[T any] struct{ items []T }
func (s *Stack[T]) Pop() T { var zero T; return zero }`
	tree, root := parseGoSnippet(t, code)
	defer tree.Close()

	methodDecl := findNode(root, "method_declaration")
	if methodDecl == nil {
		t.Fatal("method_declaration not found")
	}
	receiverNode := methodDecl.ChildByFieldName("receiver")

	if got := ExtractReceiverType(receiverNode, []byte(code)); got != "" {
		t.Errorf("expected empty string for generic receiver, got %q", got)
	}
}

func TestExtractReceiverTypeNil(t *testing.T) {
	if got := ExtractReceiverType(nil, nil); got != "" {
		t.Errorf("expected empty string for nil input, got %q", got)
	}
}

func TestDetermineVisibility(t *testing.T) {
	tests := []struct{ name, input, expected string }{
		{"exported uppercase", "HandleRequest", "public"},
		{"unexported lowercase", "handleRequest", "private"},
		{"empty string", "", "private"},
		{"underscore prefix", "_internal", "private"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetermineVisibility(tt.input); got != tt.expected {
				t.Errorf("DetermineVisibility(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIsInitFunction(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"init function", "init", true},
		{"main function", "main", false},
		{"Init capitalized", "Init", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsInitFunction(tt.input); got != tt.expected {
				t.Errorf("IsInitFunction(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}
