package langs

import (
	"context"

	"codescope/internal/astcore"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
)

// CParser wraps tree-sitter's C grammar. No pack example parses C directly;
// node-type mappings are inferred from the grammar's published node-types.json
// and mirrored onto the same control-flow tag set the other parsers use.
type CParser struct {
	ts *sitter.Parser
}

func NewCParser() *CParser {
	p := sitter.NewParser()
	p.SetLanguage(c.GetLanguage())
	return &CParser{ts: p}
}

func (p *CParser) Language() astcore.Language { return astcore.LangC }
func (p *CParser) Extensions() []string        { return []string{".c", ".h"} }
func (p *CParser) Close()                      { p.ts.Close() }

func (p *CParser) Parse(ctx context.Context, store *astcore.Store, file astcore.FileId, src []byte) (astcore.NodeID, *ParseError, error) {
	tree, err := p.ts.ParseCtx(ctx, nil, src)
	if err != nil {
		return astcore.Unresolved, &ParseError{Path: file.Path, Message: err.Error()}, nil
	}
	defer tree.Close()

	root := tree.RootNode()
	classify := func(n *sitter.Node, src []byte) (astcore.NodeKind, astcore.Flags, astcore.Payload) {
		return classifyCFamily(n, src, astcore.LangC, false)
	}
	id, _ := buildTree(root, src, file, astcore.LangC, store, classify, 0)
	if root.HasError() {
		return id, &ParseError{Path: file.Path, Message: "syntax error recovered with partial AST"}, nil
	}
	return id, nil, nil
}
