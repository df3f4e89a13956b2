package langs

import (
	"context"
	"strings"

	"codescope/internal/astcore"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// goBranchTags maps Go's concrete branching node types onto the canonical
// control-flow tags the complexity analyzer recognizes regardless
// of source language.
var goBranchTags = map[string]string{
	"if_statement":       "if",
	"for_statement":      "loop",
	"expression_case":    "switch_case",
	"default_case":       "switch_case",
	"communication_case": "switch_case",
	"type_case":          "switch_case",
}

// GoParser parses Go source with tree-sitter, grounded on
// internal/world/ast_treesitter.go's extractGoSymbols walker, generalized
// to emit a full Unified AST tree instead of a flat fact list.
type GoParser struct {
	ts *sitter.Parser
}

// NewGoParser constructs a Go language parser.
func NewGoParser() *GoParser {
	p := sitter.NewParser()
	p.SetLanguage(golang.GetLanguage())
	return &GoParser{ts: p}
}

func (p *GoParser) Language() astcore.Language { return astcore.LangGo }
func (p *GoParser) Extensions() []string       { return []string{".go"} }
func (p *GoParser) Close()                     { p.ts.Close() }

func (p *GoParser) Parse(ctx context.Context, store *astcore.Store, file astcore.FileId, src []byte) (astcore.NodeID, *ParseError, error) {
	tree, err := p.ts.ParseCtx(ctx, nil, src)
	if err != nil {
		return astcore.Unresolved, &ParseError{Path: file.Path, Message: err.Error()}, nil
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		// Emit the largest recognizable prefix plus a parse-error record;
		// downstream analyzers still see a well-formed subtree.
		id, _ := buildTree(root, src, file, astcore.LangGo, store, classifyGo, 0)
		return id, &ParseError{Path: file.Path, Message: "syntax error recovered with partial AST"}, nil
	}

	id, _ := buildTree(root, src, file, astcore.LangGo, store, classifyGo, 0)
	return id, nil, nil
}

func classifyGo(n *sitter.Node, src []byte) (astcore.NodeKind, astcore.Flags, astcore.Payload) {
	t := n.Type()

	if tag, ok := goBranchTags[t]; ok {
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

	case "function_declaration":
		name := fieldText(n, "name", src)
		flags := astcore.Flags(0)
		if exportedByCase(name) {
			flags |= astcore.FlagIsExported
		}
		if strings.HasPrefix(name, "Test") || strings.HasPrefix(name, "Benchmark") {
			flags |= astcore.FlagIsTest
		}
		return astcore.KindFunction, flags, astcore.Payload{Name: name, Signature: signature(n, src, "func "+name)}

	case "method_declaration":
		name := fieldText(n, "name", src)
		recv := fieldText(n, "receiver", src)
		flags := astcore.Flags(0)
		if exportedByCase(name) {
			flags |= astcore.FlagIsExported
		}
		return astcore.KindMethod, flags, astcore.Payload{Name: name, Receiver: recv, Signature: signature(n, src, "func "+recv+" "+name)}

	case "type_spec":
		name := fieldText(n, "name", src)
		flags := astcore.Flags(0)
		if exportedByCase(name) {
			flags |= astcore.FlagIsExported
		}
		typeNode := n.ChildByFieldName("type")
		if typeNode != nil && typeNode.Type() == "interface_type" {
			return astcore.KindTrait, flags, astcore.Payload{Name: name}
		}
		return astcore.KindClass, flags, astcore.Payload{Name: name}

	case "field_declaration":
		name := fieldText(n, "name", src)
		flags := astcore.Flags(0)
		if exportedByCase(name) {
			flags |= astcore.FlagIsExported
		}
		return astcore.KindField, flags, astcore.Payload{Name: name}

	case "method_spec":
		name := fieldText(n, "name", src)
		flags := astcore.Flags(0)
		if exportedByCase(name) {
			flags |= astcore.FlagIsExported
		}
		return astcore.KindField, flags, astcore.Payload{Name: name}

	case "parameter_declaration":
		name := fieldText(n, "name", src)
		return astcore.KindParameter, 0, astcore.Payload{Name: name}

	case "import_spec":
		target := strings.Trim(fieldText(n, "path", src), "\"")
		return astcore.KindImport, 0, astcore.Payload{ImportTarget: target}

	case "call_expression":
		fn := n.ChildByFieldName("function")
		callee := ""
		if fn != nil {
			callee = content(fn, src)
		}
		return astcore.KindCall, 0, astcore.Payload{CalleeRef: callee}

	case "comment":
		return astcore.KindComment, 0, astcore.Payload{CommentText: content(n, src)}

	case "identifier", "field_identifier", "package_identifier", "type_identifier":
		return astcore.KindIdentifier, 0, astcore.Payload{Name: content(n, src)}

	case "interpreted_string_literal", "raw_string_literal", "int_literal", "float_literal", "rune_literal":
		return astcore.KindLiteral, 0, astcore.Payload{LiteralValue: content(n, src)}

	case "block", "func_literal":
		return astcore.KindBlock, 0, astcore.Payload{}

	case "return_statement":
		return astcore.KindOther, 0, astcore.Payload{Name: "return"}

	case "break_statement":
		return astcore.KindOther, 0, astcore.Payload{Name: "break"}

	case "continue_statement":
		return astcore.KindOther, 0, astcore.Payload{Name: "continue"}

	case "short_var_declaration", "assignment_statement":
		return astcore.KindOther, 0, astcore.Payload{Name: "assign", AssignTarget: singleAssignTarget(fieldText(n, "left", src))}

	default:
		return astcore.KindOther, 0, astcore.Payload{}
	}
}

// singleAssignTarget returns lhs unchanged only when it names exactly one
// identifier; multi-assign (a, b = ...) and non-identifier targets (a.b,
// a[i]) are not dead-store candidates and report empty.
func singleAssignTarget(lhs string) string {
	if lhs == "" || strings.ContainsAny(lhs, ",.[]*") {
		return ""
	}
	return lhs
}

func fieldText(n *sitter.Node, field string, src []byte) string {
	f := n.ChildByFieldName(field)
	if f == nil {
		return ""
	}
	return content(f, src)
}

func signature(n *sitter.Node, src []byte, prefix string) string {
	params := fieldText(n, "parameters", src)
	result := fieldText(n, "result", src)
	sig := prefix
	if params != "" {
		sig += params
	}
	if result != "" {
		sig += " " + result
	}
	return sig
}
