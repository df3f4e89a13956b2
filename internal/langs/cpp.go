package langs

import (
	"context"

	"codescope/internal/astcore"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"
)

// CPPParser wraps tree-sitter's C++ grammar, same inference caveat as CParser.
type CPPParser struct {
	ts *sitter.Parser
}

func NewCPPParser() *CPPParser {
	p := sitter.NewParser()
	p.SetLanguage(cpp.GetLanguage())
	return &CPPParser{ts: p}
}

func (p *CPPParser) Language() astcore.Language { return astcore.LangCPP }
func (p *CPPParser) Extensions() []string        { return []string{".cpp", ".cc", ".cxx", ".hpp", ".hh"} }
func (p *CPPParser) Close()                      { p.ts.Close() }

func (p *CPPParser) Parse(ctx context.Context, store *astcore.Store, file astcore.FileId, src []byte) (astcore.NodeID, *ParseError, error) {
	tree, err := p.ts.ParseCtx(ctx, nil, src)
	if err != nil {
		return astcore.Unresolved, &ParseError{Path: file.Path, Message: err.Error()}, nil
	}
	defer tree.Close()

	root := tree.RootNode()
	classify := func(n *sitter.Node, src []byte) (astcore.NodeKind, astcore.Flags, astcore.Payload) {
		return classifyCFamily(n, src, astcore.LangCPP, true)
	}
	id, _ := buildTree(root, src, file, astcore.LangCPP, store, classify, 0)
	if root.HasError() {
		return id, &ParseError{Path: file.Path, Message: "syntax error recovered with partial AST"}, nil
	}
	return id, nil, nil
}
