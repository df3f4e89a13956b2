package langs

import (
	"context"

	"codescope/internal/astcore"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"
)

var rustBranchTags = map[string]string{
	"if_expression":       "if",
	"if_let_expression":   "if",
	"for_expression":      "loop",
	"while_expression":    "loop",
	"while_let_expression": "loop",
	"loop_expression":     "loop",
	"match_arm":           "switch_case",
}

// RustParser wraps tree-sitter's Rust grammar.
type RustParser struct {
	ts *sitter.Parser
}

func NewRustParser() *RustParser {
	p := sitter.NewParser()
	p.SetLanguage(rust.GetLanguage())
	return &RustParser{ts: p}
}

func (p *RustParser) Language() astcore.Language { return astcore.LangRust }
func (p *RustParser) Extensions() []string        { return []string{".rs"} }
func (p *RustParser) Close()                      { p.ts.Close() }

func (p *RustParser) Parse(ctx context.Context, store *astcore.Store, file astcore.FileId, src []byte) (astcore.NodeID, *ParseError, error) {
	tree, err := p.ts.ParseCtx(ctx, nil, src)
	if err != nil {
		return astcore.Unresolved, &ParseError{Path: file.Path, Message: err.Error()}, nil
	}
	defer tree.Close()

	root := tree.RootNode()
	id, _ := buildTree(root, src, file, astcore.LangRust, store, classifyRust, 0)
	if root.HasError() {
		return id, &ParseError{Path: file.Path, Message: "syntax error recovered with partial AST"}, nil
	}
	return id, nil, nil
}

func classifyRust(n *sitter.Node, src []byte) (astcore.NodeKind, astcore.Flags, astcore.Payload) {
	t := n.Type()

	if tag, ok := rustBranchTags[t]; ok {
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

	switch t {
	case "source_file":
		return astcore.KindModule, 0, astcore.Payload{}

	case "function_item":
		name := fieldText(n, "name", src)
		flags := astcore.Flags(0)
		if exportedByCase(name) || hasPubModifier(n, src) {
			flags |= astcore.FlagIsExported
		}
		if isAsyncFn(n, src) {
			flags |= astcore.FlagIsAsync
		}
		if hasExternCModifier(n, src) {
			flags |= astcore.FlagForeignExport
		}
		// impl-block methods parse as function_item too and stay
		// KindFunction here; no receiver is recorded for them.
		return astcore.KindFunction, flags, astcore.Payload{Name: name, Signature: "fn " + name + fieldText(n, "parameters", src)}

	case "struct_item", "enum_item":
		name := fieldText(n, "name", src)
		flags := astcore.Flags(0)
		if hasPubModifier(n, src) {
			flags |= astcore.FlagIsExported
		}
		return astcore.KindClass, flags, astcore.Payload{Name: name}

	case "trait_item":
		name := fieldText(n, "name", src)
		flags := astcore.Flags(0)
		if hasPubModifier(n, src) {
			flags |= astcore.FlagIsExported
		}
		return astcore.KindTrait, flags, astcore.Payload{Name: name}

	case "field_declaration":
		name := fieldText(n, "name", src)
		return astcore.KindField, 0, astcore.Payload{Name: name}

	case "parameter", "self_parameter":
		return astcore.KindParameter, 0, astcore.Payload{Name: content(n, src)}

	case "use_declaration":
		return astcore.KindImport, 0, astcore.Payload{ImportTarget: content(n, src)}

	case "call_expression":
		fn := n.ChildByFieldName("function")
		callee := ""
		if fn != nil {
			callee = content(fn, src)
		}
		return astcore.KindCall, 0, astcore.Payload{CalleeRef: callee}

	case "line_comment", "block_comment":
		return astcore.KindComment, 0, astcore.Payload{CommentText: content(n, src)}

	case "identifier", "field_identifier", "type_identifier":
		return astcore.KindIdentifier, 0, astcore.Payload{Name: content(n, src)}

	case "string_literal", "integer_literal", "float_literal", "char_literal", "boolean_literal":
		return astcore.KindLiteral, 0, astcore.Payload{LiteralValue: content(n, src)}

	case "attribute_item":
		return astcore.KindAttribute, 0, astcore.Payload{Name: content(n, src)}

	case "block":
		return astcore.KindBlock, 0, astcore.Payload{}

	case "return_expression":
		return astcore.KindOther, 0, astcore.Payload{Name: "return"}

	case "break_expression":
		return astcore.KindOther, 0, astcore.Payload{Name: "break"}

	case "continue_expression":
		return astcore.KindOther, 0, astcore.Payload{Name: "continue"}

	case "assignment_expression":
		left := n.ChildByFieldName("left")
		target := ""
		if left != nil && left.Type() == "identifier" {
			target = content(left, src)
		}
		return astcore.KindOther, 0, astcore.Payload{Name: "assign", AssignTarget: target}

	case "let_declaration":
		pat := n.ChildByFieldName("pattern")
		target := ""
		if pat != nil && pat.Type() == "identifier" {
			target = content(pat, src)
		}
		return astcore.KindOther, 0, astcore.Payload{Name: "assign", AssignTarget: target}

	default:
		return astcore.KindOther, 0, astcore.Payload{}
	}
}

func hasPubModifier(n *sitter.Node, src []byte) bool {
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		c := n.Child(i)
		if c.Type() == "visibility_modifier" {
			return true
		}
	}
	return false
}

// hasExternCModifier detects `pub extern "C" fn ...`: a foreign-C export
// per the cross-language binding rules any other language's parser can
// target by matching the exported symbol name.
func hasExternCModifier(n *sitter.Node, src []byte) bool {
	if !hasPubModifier(n, src) {
		return false
	}
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		c := n.Child(i)
		if c.Type() == "extern_modifier" {
			return true
		}
	}
	return false
}

func isAsyncFn(n *sitter.Node, src []byte) bool {
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		c := n.Child(i)
		if content(c, src) == "async" {
			return true
		}
	}
	return false
}
