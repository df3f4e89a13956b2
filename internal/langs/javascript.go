package langs

import (
	"context"

	"codescope/internal/astcore"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

// JavaScriptParser wraps tree-sitter's JavaScript grammar.
type JavaScriptParser struct {
	ts *sitter.Parser
}

func NewJavaScriptParser() *JavaScriptParser {
	p := sitter.NewParser()
	p.SetLanguage(javascript.GetLanguage())
	return &JavaScriptParser{ts: p}
}

func (p *JavaScriptParser) Language() astcore.Language { return astcore.LangJavaScript }
func (p *JavaScriptParser) Extensions() []string        { return []string{".js", ".jsx", ".mjs", ".cjs"} }
func (p *JavaScriptParser) Close()                      { p.ts.Close() }

func (p *JavaScriptParser) Parse(ctx context.Context, store *astcore.Store, file astcore.FileId, src []byte) (astcore.NodeID, *ParseError, error) {
	tree, err := p.ts.ParseCtx(ctx, nil, src)
	if err != nil {
		return astcore.Unresolved, &ParseError{Path: file.Path, Message: err.Error()}, nil
	}
	defer tree.Close()

	root := tree.RootNode()
	classify := func(n *sitter.Node, src []byte) (astcore.NodeKind, astcore.Flags, astcore.Payload) {
		return classifyJSFamily(n, src, astcore.LangJavaScript, false)
	}
	id, _ := buildTree(root, src, file, astcore.LangJavaScript, store, classify, 0)
	if root.HasError() {
		return id, &ParseError{Path: file.Path, Message: "syntax error recovered with partial AST"}, nil
	}
	return id, nil, nil
}
