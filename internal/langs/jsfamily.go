package langs

import (
	"codescope/internal/astcore"

	sitter "github.com/smacker/go-tree-sitter"
)

// jsBranchTags covers the control-flow node types shared by JavaScript and
// TypeScript's grammars (TypeScript's grammar is a superset of JavaScript's).
var jsBranchTags = map[string]string{
	"if_statement":      "if",
	"for_statement":     "loop",
	"for_in_statement":  "loop",
	"while_statement":   "loop",
	"do_statement":      "loop",
	"switch_case":       "switch_case",
	"switch_default":    "switch_case",
	"catch_clause":      "catch",
}

// classifyJSFamily is shared by the JavaScript and TypeScript parsers; ts
// enables the TypeScript-only declarations (interfaces, type aliases).
func classifyJSFamily(n *sitter.Node, src []byte, lang astcore.Language, ts bool) (astcore.NodeKind, astcore.Flags, astcore.Payload) {
	t := n.Type()

	if tag, ok := jsBranchTags[t]; ok {
		return astcore.KindBlock, 0, astcore.Payload{Name: tag}
	}
	if t == "binary_expression" {
		op := n.ChildByFieldName("operator")
		if op != nil {
			switch content(op, src) {
			case "&&":
				return astcore.KindBlock, 0, astcore.Payload{Name: "logical_and"}
			case "||":
				return astcore.KindBlock, 0, astcore.Payload{Name: "logical_or"}
			}
		}
	}
	if t == "ternary_expression" {
		return astcore.KindBlock, 0, astcore.Payload{Name: "ternary"}
	}

	switch t {
	case "program":
		return astcore.KindModule, 0, astcore.Payload{}

	case "function_declaration", "function", "generator_function_declaration":
		name := fieldText(n, "name", src)
		flags := astcore.Flags(0)
		if jsIsAsync(n, src) {
			flags |= astcore.FlagIsAsync
		}
		return astcore.KindFunction, flags, astcore.Payload{Name: name, Signature: "function " + name + fieldText(n, "parameters", src)}

	case "arrow_function":
		flags := astcore.Flags(0)
		if jsIsAsync(n, src) {
			flags |= astcore.FlagIsAsync
		}
		return astcore.KindFunction, flags, astcore.Payload{Name: "<arrow>"}

	case "method_definition":
		nameNode := n.ChildByFieldName("name")
		name := ""
		if nameNode != nil {
			name = content(nameNode, src)
		}
		flags := astcore.Flags(0)
		if jsIsAsync(n, src) {
			flags |= astcore.FlagIsAsync
		}
		return astcore.KindMethod, flags, astcore.Payload{Name: name}

	case "class_declaration":
		name := fieldText(n, "name", src)
		return astcore.KindClass, astcore.FlagIsExported, astcore.Payload{Name: name}

	case "interface_declaration":
		if !ts {
			break
		}
		name := fieldText(n, "name", src)
		return astcore.KindTrait, astcore.FlagIsExported, astcore.Payload{Name: name}

	case "type_alias_declaration":
		if !ts {
			break
		}
		name := fieldText(n, "name", src)
		return astcore.KindClass, astcore.FlagIsExported, astcore.Payload{Name: name}

	case "public_field_definition", "property_signature":
		nameNode := n.ChildByFieldName("name")
		name := ""
		if nameNode != nil {
			name = content(nameNode, src)
		}
		return astcore.KindField, 0, astcore.Payload{Name: name}

	case "required_parameter", "optional_parameter", "identifier_pattern":
		return astcore.KindParameter, 0, astcore.Payload{Name: content(n, src)}

	case "import_statement":
		return astcore.KindImport, 0, astcore.Payload{ImportTarget: jsImportTarget(n, src)}

	case "call_expression":
		fn := n.ChildByFieldName("function")
		callee := ""
		if fn != nil {
			callee = content(fn, src)
		}
		return astcore.KindCall, 0, astcore.Payload{CalleeRef: callee}

	case "comment":
		return astcore.KindComment, 0, astcore.Payload{CommentText: content(n, src)}

	case "identifier", "property_identifier", "shorthand_property_identifier", "type_identifier":
		return astcore.KindIdentifier, 0, astcore.Payload{Name: content(n, src)}

	case "string", "number", "true", "false", "null", "undefined", "template_string":
		return astcore.KindLiteral, 0, astcore.Payload{LiteralValue: content(n, src)}

	case "decorator":
		return astcore.KindAttribute, 0, astcore.Payload{Name: content(n, src)}

	case "statement_block":
		return astcore.KindBlock, 0, astcore.Payload{}

	case "return_statement":
		return astcore.KindOther, 0, astcore.Payload{Name: "return"}

	case "break_statement":
		return astcore.KindOther, 0, astcore.Payload{Name: "break"}

	case "continue_statement":
		return astcore.KindOther, 0, astcore.Payload{Name: "continue"}

	case "assignment_expression":
		left := n.ChildByFieldName("left")
		target := ""
		if left != nil && left.Type() == "identifier" {
			target = content(left, src)
		}
		return astcore.KindOther, 0, astcore.Payload{Name: "assign", AssignTarget: target}

	case "variable_declarator":
		nameNode := n.ChildByFieldName("name")
		target := ""
		if nameNode != nil && nameNode.Type() == "identifier" {
			target = content(nameNode, src)
		}
		return astcore.KindOther, 0, astcore.Payload{Name: "assign", AssignTarget: target}
	}

	return astcore.KindOther, 0, astcore.Payload{}
}

func jsIsAsync(n *sitter.Node, src []byte) bool {
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		if content(n.Child(i), src) == "async" {
			return true
		}
	}
	return false
}

func jsImportTarget(n *sitter.Node, src []byte) string {
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		c := n.NamedChild(i)
		if c.Type() == "string" {
			return trimQuotes(content(c, src))
		}
	}
	return ""
}

func trimQuotes(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'' || s[0] == '`') {
		return s[1 : len(s)-1]
	}
	return s
}
