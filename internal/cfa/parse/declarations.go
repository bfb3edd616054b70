package parse

import sitter "github.com/smacker/go-tree-sitter"

// FunctionInfo holds extracted metadata from a Go function_declaration node,
// folded into a FunctionUnit by ParsedFile.IterateFunctions.
type FunctionInfo struct {
	Name       string
	Params     GoParams
	ReturnType string
	Visibility string // "public" or "private"
	IsInit     bool
	LineNumber uint32
}

// MethodInfo is a FunctionInfo plus the receiver's bare type name.
// Cross-file callee resolution is keyed by the bare function name and does
// not use ReceiverType.
type MethodInfo struct {
	FunctionInfo
	ReceiverType string
}

// ParseFunctionDeclaration extracts function information from a Go
// function_declaration node.
//
//	func Foo(a, b int) string {} → Name="Foo", Params, ReturnType="string", Visibility="public"
//	func init() {}               → Name="init", IsInit=true
func ParseFunctionDeclaration(node *sitter.Node, sourceCode []byte) *FunctionInfo {
	name := ""
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		name = nameNode.Content(sourceCode)
	}

	params := ExtractParameters(node.ChildByFieldName("parameters"), sourceCode)
	returnType := ExtractReturnType(node.ChildByFieldName("result"), sourceCode)

	return &FunctionInfo{
		Name:       name,
		Params:     params,
		ReturnType: returnType,
		Visibility: DetermineVisibility(name),
		IsInit:     IsInitFunction(name),
		LineNumber: node.StartPoint().Row + 1,
	}
}

// ParseMethodDeclaration extracts method information from a Go
// method_declaration node.
//
//	func (s *Server) Start() error {}  → Name="Start", ReceiverType="Server"
//	func (s Server) String() string {} → Name="String", ReceiverType="Server"
func ParseMethodDeclaration(node *sitter.Node, sourceCode []byte) *MethodInfo {
	name := ""
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		name = nameNode.Content(sourceCode)
	}

	params := ExtractParameters(node.ChildByFieldName("parameters"), sourceCode)
	returnType := ExtractReturnType(node.ChildByFieldName("result"), sourceCode)
	receiverType := ExtractReceiverType(node.ChildByFieldName("receiver"), sourceCode)

	return &MethodInfo{
		FunctionInfo: FunctionInfo{
			Name:       name,
			Params:     params,
			ReturnType: returnType,
			Visibility: DetermineVisibility(name),
			IsInit:     false, // methods are never init functions
			LineNumber: node.StartPoint().Row + 1,
		},
		ReceiverType: receiverType,
	}
}
