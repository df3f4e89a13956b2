package langs

import (
	"codescope/internal/astcore"

	sitter "github.com/smacker/go-tree-sitter"
)

// cBranchTags covers C's control-flow node types; C++'s grammar is a
// superset and reuses the same tags plus catch_clause (below).
var cBranchTags = map[string]string{
	"if_statement":    "if",
	"for_statement":   "loop",
	"while_statement":  "loop",
	"do_statement":    "loop",
	"case_statement":  "switch_case",
}

// classifyCFamily is shared by the C and C++ parsers; cpp enables the
// C++-only constructs (classes, namespaces, exception handling).
func classifyCFamily(n *sitter.Node, src []byte, lang astcore.Language, cpp bool) (astcore.NodeKind, astcore.Flags, astcore.Payload) {
	t := n.Type()

	if tag, ok := cBranchTags[t]; ok {
		return astcore.KindBlock, 0, astcore.Payload{Name: tag}
	}
	if cpp && t == "catch_clause" {
		return astcore.KindBlock, 0, astcore.Payload{Name: "catch"}
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
	if t == "conditional_expression" {
		return astcore.KindBlock, 0, astcore.Payload{Name: "ternary"}
	}

	switch t {
	case "translation_unit":
		return astcore.KindModule, 0, astcore.Payload{}

	case "function_definition":
		name := cFunctionName(n, src)
		return astcore.KindFunction, 0, astcore.Payload{Name: name, Signature: content(n.ChildByFieldName("declarator"), src)}

	case "struct_specifier", "union_specifier", "enum_specifier":
		name := fieldText(n, "name", src)
		return astcore.KindClass, 0, astcore.Payload{Name: name}

	case "class_specifier":
		if !cpp {
			break
		}
		name := fieldText(n, "name", src)
		return astcore.KindClass, 0, astcore.Payload{Name: name}

	case "namespace_definition":
		if !cpp {
			break
		}
		name := fieldText(n, "name", src)
		return astcore.KindModule, 0, astcore.Payload{Name: name}

	case "field_declaration":
		return astcore.KindField, 0, astcore.Payload{Name: content(n, src)}

	case "parameter_declaration":
		return astcore.KindParameter, 0, astcore.Payload{Name: content(n, src)}

	case "preproc_include":
		path := fieldText(n, "path", src)
		return astcore.KindImport, 0, astcore.Payload{ImportTarget: path}

	case "call_expression":
		fn := n.ChildByFieldName("function")
		callee := ""
		if fn != nil {
			callee = content(fn, src)
		}
		return astcore.KindCall, 0, astcore.Payload{CalleeRef: callee}

	case "comment":
		return astcore.KindComment, 0, astcore.Payload{CommentText: content(n, src)}

	case "identifier", "field_identifier", "type_identifier", "namespace_identifier":
		return astcore.KindIdentifier, 0, astcore.Payload{Name: content(n, src)}

	case "string_literal", "number_literal", "char_literal", "true", "false":
		return astcore.KindLiteral, 0, astcore.Payload{LiteralValue: content(n, src)}

	case "compound_statement":
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

	case "init_declarator":
		// Only a bare `T name = value;` is tracked; pointer/array declarators
		// (`T *name`, `T name[n]`) are skipped rather than misread.
		decl := n.ChildByFieldName("declarator")
		target := ""
		if decl != nil && decl.Type() == "identifier" {
			target = content(decl, src)
		}
		return astcore.KindOther, 0, astcore.Payload{Name: "assign", AssignTarget: target}
	}

	return astcore.KindOther, 0, astcore.Payload{}
}

// cFunctionName walks a (possibly pointer/array-wrapped) declarator down to
// its identifier, since C's grammar nests function_declarator inside
// pointer_declarator for e.g. `char *foo(void)`.
func cFunctionName(n *sitter.Node, src []byte) string {
	d := n.ChildByFieldName("declarator")
	for d != nil {
		switch d.Type() {
		case "function_declarator":
			inner := d.ChildByFieldName("declarator")
			if inner != nil && inner.Type() == "identifier" {
				return content(inner, src)
			}
			d = inner
		case "pointer_declarator", "reference_declarator":
			d = d.ChildByFieldName("declarator")
		case "identifier":
			return content(d, src)
		default:
			return content(d, src)
		}
	}
	return ""
}
