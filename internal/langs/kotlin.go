package langs

import (
	"context"

	"codescope/internal/astcore"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/kotlin"
)

var kotlinBranchTags = map[string]string{
	"if_expression":  "if",
	"for_statement":  "loop",
	"while_statement": "loop",
	"when_entry":     "switch_case",
	"catch_block":    "catch",
}

// KotlinParser wraps tree-sitter's Kotlin grammar. No pack example parses
// Kotlin directly; node-type mappings are inferred from the grammar's
// published node-types.json and mirrored onto the shared control-flow tags.
type KotlinParser struct {
	ts *sitter.Parser
}

func NewKotlinParser() *KotlinParser {
	p := sitter.NewParser()
	p.SetLanguage(kotlin.GetLanguage())
	return &KotlinParser{ts: p}
}

func (p *KotlinParser) Language() astcore.Language { return astcore.LangKotlin }
func (p *KotlinParser) Extensions() []string        { return []string{".kt", ".kts"} }
func (p *KotlinParser) Close()                      { p.ts.Close() }

func (p *KotlinParser) Parse(ctx context.Context, store *astcore.Store, file astcore.FileId, src []byte) (astcore.NodeID, *ParseError, error) {
	tree, err := p.ts.ParseCtx(ctx, nil, src)
	if err != nil {
		return astcore.Unresolved, &ParseError{Path: file.Path, Message: err.Error()}, nil
	}
	defer tree.Close()

	root := tree.RootNode()
	id, _ := buildTree(root, src, file, astcore.LangKotlin, store, classifyKotlin, 0)
	if root.HasError() {
		return id, &ParseError{Path: file.Path, Message: "syntax error recovered with partial AST"}, nil
	}
	return id, nil, nil
}

func classifyKotlin(n *sitter.Node, src []byte) (astcore.NodeKind, astcore.Flags, astcore.Payload) {
	t := n.Type()

	if tag, ok := kotlinBranchTags[t]; ok {
		return astcore.KindBlock, 0, astcore.Payload{Name: tag}
	}
	if t == "conjunction_expression" {
		return astcore.KindBlock, 0, astcore.Payload{Name: "logical_and"}
	}
	if t == "disjunction_expression" {
		return astcore.KindBlock, 0, astcore.Payload{Name: "logical_or"}
	}

	switch t {
	case "source_file":
		return astcore.KindModule, 0, astcore.Payload{}

	case "function_declaration":
		name := kotlinSimpleName(n, src)
		flags := astcore.Flags(0)
		if exportedByCase(name) {
			flags |= astcore.FlagIsExported
		}
		return astcore.KindFunction, flags, astcore.Payload{Name: name}

	case "class_declaration", "object_declaration":
		name := kotlinSimpleName(n, src)
		flags := astcore.Flags(0)
		if exportedByCase(name) {
			flags |= astcore.FlagIsExported
		}
		return astcore.KindClass, flags, astcore.Payload{Name: name}

	case "interface_declaration":
		name := kotlinSimpleName(n, src)
		return astcore.KindTrait, astcore.FlagIsExported, astcore.Payload{Name: name}

	case "class_parameter", "parameter", "parameter_with_optional_type":
		return astcore.KindParameter, 0, astcore.Payload{Name: content(n, src)}

	case "property_declaration":
		return astcore.KindField, 0, astcore.Payload{Name: content(n, src)}

	case "import_header":
		return astcore.KindImport, 0, astcore.Payload{ImportTarget: content(n, src)}

	case "call_expression":
		fn := n.ChildByFieldName("function")
		callee := ""
		if fn != nil {
			callee = content(fn, src)
		}
		return astcore.KindCall, 0, astcore.Payload{CalleeRef: callee}

	case "line_comment", "multiline_comment":
		return astcore.KindComment, 0, astcore.Payload{CommentText: content(n, src)}

	case "simple_identifier", "type_identifier":
		return astcore.KindIdentifier, 0, astcore.Payload{Name: content(n, src)}

	case "string_literal", "integer_literal", "boolean_literal", "character_literal", "real_literal":
		return astcore.KindLiteral, 0, astcore.Payload{LiteralValue: content(n, src)}

	case "annotation":
		return astcore.KindAttribute, 0, astcore.Payload{Name: content(n, src)}

	case "statements":
		return astcore.KindBlock, 0, astcore.Payload{}

	case "jump_expression":
		// The grammar folds return/break/continue (plain and labelled) into
		// one node type distinguished only by its leading keyword token.
		switch {
		case n.ChildCount() > 0 && content(n.Child(0), src) == "return":
			return astcore.KindOther, 0, astcore.Payload{Name: "return"}
		case n.ChildCount() > 0 && content(n.Child(0), src) == "break":
			return astcore.KindOther, 0, astcore.Payload{Name: "break"}
		case n.ChildCount() > 0 && content(n.Child(0), src) == "continue":
			return astcore.KindOther, 0, astcore.Payload{Name: "continue"}
		default:
			return astcore.KindOther, 0, astcore.Payload{}
		}

	case "assignment":
		// Best-effort: no pack example parses Kotlin, so only the common
		// `name = value` shape (directly_assignable_expression wrapping a
		// bare identifier) is recognized as a dead-store candidate.
		left := n.ChildByFieldName("directly_assignable_expression")
		target := ""
		if left != nil && left.Type() == "simple_identifier" {
			target = content(left, src)
		}
		return astcore.KindOther, 0, astcore.Payload{Name: "assign", AssignTarget: target}

	default:
		return astcore.KindOther, 0, astcore.Payload{}
	}
}

// kotlinSimpleName returns the first simple_identifier child, which the
// Kotlin grammar uses for function, class and interface names alike.
func kotlinSimpleName(n *sitter.Node, src []byte) string {
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		c := n.NamedChild(i)
		if c.Type() == "simple_identifier" || c.Type() == "type_identifier" {
			return content(c, src)
		}
	}
	return ""
}
