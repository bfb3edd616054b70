package parse

import sitter "github.com/smacker/go-tree-sitter"

// GoParams holds extracted Go parameter information, consumed by
// FunctionInfo/MethodInfo on their way into a FunctionUnit.
type GoParams struct {
	Names []string // parameter names (e.g., ["w", "r"])
	Types []string // "name: type" pairs (e.g., ["w: http.ResponseWriter"])
}

// ExtractParameters extracts parameter names and types from a Go
// parameter_list node.
//
// Handles Go's grouped parameter syntax where multiple names share a type:
//
//	func Foo(a, b int, c string) → Names=["a","b","c"], Types=["a: int","b: int","c: string"]
//
// and variadic parameters:
//
//	func Foo(args ...string) → Names=["args"], Types=["args: ...string"]
//
// Returns empty GoParams if paramList is nil.
func ExtractParameters(paramList *sitter.Node, sourceCode []byte) GoParams {
	result := GoParams{}
	if paramList == nil {
		return result
	}

	for i := 0; i < int(paramList.NamedChildCount()); i++ {
		param := paramList.NamedChild(i)
		if param.Type() != "parameter_declaration" && param.Type() != "variadic_parameter_declaration" {
			continue
		}

		typeNode := param.ChildByFieldName("type")
		paramType := ""
		if typeNode != nil {
			paramType = typeNode.Content(sourceCode)
		}

		isVariadic := param.Type() == "variadic_parameter_declaration"
		if isVariadic && paramType != "" {
			paramType = "..." + paramType
		}

		var names []string
		for j := 0; j < int(param.NamedChildCount()); j++ {
			child := param.NamedChild(j)
			if child.Type() == "identifier" {
				names = append(names, child.Content(sourceCode))
			}
		}

		if len(names) == 0 && paramType != "" {
			result.Names = append(result.Names, "")
			result.Types = append(result.Types, paramType)
			continue
		}

		for _, name := range names {
			result.Names = append(result.Names, name)
			if paramType != "" {
				result.Types = append(result.Types, name+": "+paramType)
			}
		}
	}

	return result
}

// ExtractReturnType extracts the return type string from a Go function
// result node: "int", "(string, error)", "(n int, err error)", or "" for no
// result node at all.
func ExtractReturnType(resultNode *sitter.Node, sourceCode []byte) string {
	if resultNode == nil {
		return ""
	}
	return resultNode.Content(sourceCode)
}

// ExtractReceiverType extracts the receiver base type from a Go method
// declaration, stripping pointer indirection: (s *Server) and (s Server)
// both return "Server". It fills MethodInfo.ReceiverType; cross-file
// callee resolution does not use it.
func ExtractReceiverType(receiverNode *sitter.Node, sourceCode []byte) string {
	if receiverNode == nil {
		return ""
	}

	for i := 0; i < int(receiverNode.NamedChildCount()); i++ {
		param := receiverNode.NamedChild(i)
		if param.Type() != "parameter_declaration" {
			continue
		}

		typeNode := param.ChildByFieldName("type")
		if typeNode == nil {
			continue
		}

		if typeNode.Type() == "pointer_type" {
			for j := 0; j < int(typeNode.NamedChildCount()); j++ {
				child := typeNode.NamedChild(j)
				if child.Type() == "type_identifier" {
					return child.Content(sourceCode)
				}
			}
		}

		if typeNode.Type() == "type_identifier" {
			return typeNode.Content(sourceCode)
		}
	}

	return ""
}

// DetermineVisibility returns "public" or "private" based on Go's
// capitalization convention: exported names start with an uppercase letter.
func DetermineVisibility(name string) string {
	if len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z' {
		return "public"
	}
	return "private"
}

// IsInitFunction returns true if the function name is "init", which has
// special semantics in Go (auto-called at package initialization, never a
// reachable call target).
func IsInitFunction(name string) bool {
	return name == "init"
}
