package langs

import (
	"codescope/internal/astcore"

	sitter "github.com/smacker/go-tree-sitter"
)

// classifyFunc maps one tree-sitter concrete-syntax node onto a Unified AST
// NodeKind, Flags and Payload. It must be a pure function of the node and
// source bytes so that identical bytes parse to an identical AST.
type classifyFunc func(n *sitter.Node, src []byte) (astcore.NodeKind, astcore.Flags, astcore.Payload)

// buildTree walks a tree-sitter concrete syntax tree bottom-up, inserting
// one Unified AST node per named CST node into store. Bottom-up order is
// required for hash-consing: a node's CanonicalHash depends on its
// children's hashes, so children must be inserted (and hashed) first.
func buildTree(n *sitter.Node, src []byte, file astcore.FileId, lang astcore.Language, store *astcore.Store, classify classifyFunc, depth int) (astcore.NodeID, astcore.CanonicalHash) {
	var childIDs []astcore.NodeID
	var childHashes []astcore.CanonicalHash

	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		child := n.NamedChild(i)
		cid, chash := buildTree(child, src, file, lang, store, classify, depth+1)
		childIDs = append(childIDs, cid)
		childHashes = append(childHashes, chash)
	}

	kind, flags, payload := classify(n, src)
	hash := astcore.Canonical(kind, flags, payload, childHashes)
	if kind == astcore.KindModule && depth == 0 {
		// The file path is folded into a file root's hash, so two files with
		// identical bytes keep separate Module roots while sharing every
		// descendant node.
		pathHash := astcore.Canonical(astcore.KindLiteral, 0, astcore.Payload{LiteralValue: file.Path}, nil)
		hash = astcore.Canonical(kind, flags, payload, append(childHashes, pathHash))
	}

	start := n.StartPoint()
	end := n.EndPoint()
	node := astcore.Node{
		Kind:     kind,
		Flags:    flags,
		Parent:   astcore.Unresolved,
		Children: childIDs,
		Span: astcore.Span{
			StartByte: n.StartByte(),
			EndByte:   n.EndByte(),
			StartLine: start.Row + 1,
			StartCol:  start.Column,
			EndLine:   end.Row + 1,
			EndCol:    end.Column,
		},
		File:    file,
		Lang:    lang,
		Payload: payload,
	}

	id, existed := store.Insert(node, hash)
	if !existed {
		parentKind, siblingCount := astcore.KindModule, 0
		if p := n.Parent(); p != nil {
			parentKind, _, _ = classify(p, src)
			siblingCount = int(p.NamedChildCount())
		}
		ctxHash := astcore.ComputeContextHash(parentKind, siblingCount, depth, hash)
		store.SetContextHash(id, ctxHash)
	}

	for i, cid := range childIDs {
		store.SetParentIfUnset(cid, id)
		_ = i
	}

	return id, hash
}

// content reads the source text spanned by n.
func content(n *sitter.Node, src []byte) string {
	return n.Content(src)
}

// exportedByCase reports Go/Rust-style exportedness: identifier starts uppercase.
func exportedByCase(name string) bool {
	return len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z'
}
