package langs

import (
	"context"
	"strings"

	"codescope/internal/astcore"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

var pyBranchTags = map[string]string{
	"if_statement":    "if",
	"for_statement":   "loop",
	"while_statement": "loop",
	"except_clause":   "catch",
}

// PythonParser wraps tree-sitter's Python grammar.
type PythonParser struct {
	ts *sitter.Parser
}

func NewPythonParser() *PythonParser {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &PythonParser{ts: p}
}

func (p *PythonParser) Language() astcore.Language { return astcore.LangPython }
func (p *PythonParser) Extensions() []string        { return []string{".py", ".pyi"} }
func (p *PythonParser) Close()                      { p.ts.Close() }

func (p *PythonParser) Parse(ctx context.Context, store *astcore.Store, file astcore.FileId, src []byte) (astcore.NodeID, *ParseError, error) {
	tree, err := p.ts.ParseCtx(ctx, nil, src)
	if err != nil {
		return astcore.Unresolved, &ParseError{Path: file.Path, Message: err.Error()}, nil
	}
	defer tree.Close()

	root := tree.RootNode()
	id, _ := buildTree(root, src, file, astcore.LangPython, store, classifyPython, 0)
	if root.HasError() {
		return id, &ParseError{Path: file.Path, Message: "syntax error recovered with partial AST"}, nil
	}
	return id, nil, nil
}

func classifyPython(n *sitter.Node, src []byte) (astcore.NodeKind, astcore.Flags, astcore.Payload) {
	t := n.Type()

	if tag, ok := pyBranchTags[t]; ok {
		return astcore.KindBlock, 0, astcore.Payload{Name: tag}
	}
	if t == "boolean_operator" {
		op := n.ChildByFieldName("operator")
		if op != nil {
			switch content(op, src) {
			case "and":
				return astcore.KindBlock, 0, astcore.Payload{Name: "logical_and"}
			case "or":
				return astcore.KindBlock, 0, astcore.Payload{Name: "logical_or"}
			}
		}
	}
	if t == "conditional_expression" {
		return astcore.KindBlock, 0, astcore.Payload{Name: "ternary"}
	}

	switch t {
	case "module":
		return astcore.KindModule, 0, astcore.Payload{}

	case "function_definition":
		name := fieldText(n, "name", src)
		flags := astcore.Flags(0)
		if strings.HasPrefix(name, "test_") {
			flags |= astcore.FlagIsTest
		}
		if !strings.HasPrefix(name, "_") {
			flags |= astcore.FlagIsExported
		}
		params := fieldText(n, "parameters", src)
		// Methods are function_definition nodes nested under a class body;
		// the enclosing structure is recovered by the reference graph, not
		// here, so every def is classified as KindFunction uniformly.
		return astcore.KindFunction, flags, astcore.Payload{Name: name, Signature: "def " + name + params}

	case "class_definition":
		name := fieldText(n, "name", src)
		flags := astcore.Flags(0)
		if !strings.HasPrefix(name, "_") {
			flags |= astcore.FlagIsExported
		}
		return astcore.KindClass, flags, astcore.Payload{Name: name}

	case "parameters", "default_parameter", "typed_parameter":
		return astcore.KindParameter, 0, astcore.Payload{Name: content(n, src)}

	case "import_statement", "import_from_statement":
		return astcore.KindImport, 0, astcore.Payload{ImportTarget: moduleTarget(n, src)}

	case "call":
		fn := n.ChildByFieldName("function")
		callee := ""
		if fn != nil {
			callee = content(fn, src)
		}
		return astcore.KindCall, 0, astcore.Payload{CalleeRef: callee}

	case "comment":
		return astcore.KindComment, 0, astcore.Payload{CommentText: content(n, src)}

	case "identifier":
		return astcore.KindIdentifier, 0, astcore.Payload{Name: content(n, src)}

	case "string", "integer", "float", "true", "false", "none":
		return astcore.KindLiteral, 0, astcore.Payload{LiteralValue: content(n, src)}

	case "block":
		return astcore.KindBlock, 0, astcore.Payload{}

	case "decorator":
		return astcore.KindAttribute, 0, astcore.Payload{Name: content(n, src)}

	case "return_statement":
		return astcore.KindOther, 0, astcore.Payload{Name: "return"}

	case "break_statement":
		return astcore.KindOther, 0, astcore.Payload{Name: "break"}

	case "continue_statement":
		return astcore.KindOther, 0, astcore.Payload{Name: "continue"}

	case "assignment":
		left := n.ChildByFieldName("left")
		target := ""
		if left != nil && left.Type() == "identifier" {
			target = content(left, src)
		}
		return astcore.KindOther, 0, astcore.Payload{Name: "assign", AssignTarget: target}

	default:
		return astcore.KindOther, 0, astcore.Payload{}
	}
}

// moduleTarget extracts the dotted module name from an import statement,
// ignoring the individual names bound.
func moduleTarget(n *sitter.Node, src []byte) string {
	nameNode := n.ChildByFieldName("module_name")
	if nameNode != nil {
		return content(nameNode, src)
	}
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		c := n.NamedChild(i)
		if c.Type() == "dotted_name" || c.Type() == "relative_import" {
			return content(c, src)
		}
	}
	return ""
}
