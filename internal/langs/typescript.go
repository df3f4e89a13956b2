package langs

import (
	"context"

	"codescope/internal/astcore"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
)

// TypeScriptParser wraps tree-sitter's TypeScript grammar, switching to the
// TSX grammar for .tsx sources so JSX syntax parses cleanly.
type TypeScriptParser struct {
	ts  *sitter.Parser
	tsx *sitter.Parser
}

func NewTypeScriptParser() *TypeScriptParser {
	p := sitter.NewParser()
	p.SetLanguage(typescript.GetLanguage())
	x := sitter.NewParser()
	x.SetLanguage(tsx.GetLanguage())
	return &TypeScriptParser{ts: p, tsx: x}
}

func (p *TypeScriptParser) Language() astcore.Language { return astcore.LangTypeScript }
func (p *TypeScriptParser) Extensions() []string        { return []string{".ts", ".tsx"} }
func (p *TypeScriptParser) Close() {
	p.ts.Close()
	p.tsx.Close()
}

func (p *TypeScriptParser) Parse(ctx context.Context, store *astcore.Store, file astcore.FileId, src []byte) (astcore.NodeID, *ParseError, error) {
	parser := p.ts
	if len(file.Path) >= 4 && file.Path[len(file.Path)-4:] == ".tsx" {
		parser = p.tsx
	}

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return astcore.Unresolved, &ParseError{Path: file.Path, Message: err.Error()}, nil
	}
	defer tree.Close()

	root := tree.RootNode()
	classify := func(n *sitter.Node, src []byte) (astcore.NodeKind, astcore.Flags, astcore.Payload) {
		return classifyJSFamily(n, src, astcore.LangTypeScript, true)
	}
	id, _ := buildTree(root, src, file, astcore.LangTypeScript, store, classify, 0)
	if root.HasError() {
		return id, &ParseError{Path: file.Path, Message: "syntax error recovered with partial AST"}, nil
	}
	return id, nil, nil
}
