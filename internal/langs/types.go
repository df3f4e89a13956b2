// Package langs implements one independent parser per supported language,
// each conforming to the same capability set and dispatched by a
// language-tag registry: no class hierarchy, no dynamic inheritance.
package langs

import (
	"context"

	"codescope/internal/astcore"
)

// ParseError records a parse failure with enough context to attribute it to
// a byte offset: a malformed file still yields the largest recognizable
// prefix plus this record.
type ParseError struct {
	Path    string
	Offset  int
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	return e.Path + ": " + e.Message
}

// Parser is the capability set every language implementation provides.
// Parse must be deterministic: identical bytes produce an identical AST
// including node ordering.
type Parser interface {
	Language() astcore.Language
	Extensions() []string
	Parse(ctx context.Context, store *astcore.Store, file astcore.FileId, content []byte) (astcore.NodeID, *ParseError, error)
}

// Registry dispatches a Language tag to its Parser.
type Registry struct {
	byLang map[astcore.Language]Parser
	byExt  map[string]astcore.Language
}

// NewRegistry builds a registry with every language parser this build
// supports registered, mirroring internal/world/parser_factory.go's
// extension-to-parser registration pattern.
func NewRegistry() *Registry {
	r := &Registry{
		byLang: make(map[astcore.Language]Parser),
		byExt:  make(map[string]astcore.Language),
	}
	for _, p := range []Parser{
		NewGoParser(),
		NewPythonParser(),
		NewRustParser(),
		NewTypeScriptParser(),
		NewJavaScriptParser(),
		NewCParser(),
		NewCPPParser(),
		NewKotlinParser(),
	} {
		r.Register(p)
	}
	return r
}

// Register adds a parser for its supported extensions, replacing any prior
// registration for a clashing extension.
func (r *Registry) Register(p Parser) {
	r.byLang[p.Language()] = p
	for _, ext := range p.Extensions() {
		r.byExt[ext] = p.Language()
	}
}

// For returns the parser registered for lang, or nil.
func (r *Registry) For(lang astcore.Language) Parser {
	return r.byLang[lang]
}

// LanguageForExt classifies a file extension (including the leading dot).
func (r *Registry) LanguageForExt(ext string) astcore.Language {
	if l, ok := r.byExt[ext]; ok {
		return l
	}
	return astcore.LangUnknown
}

// Close releases resources held by every registered parser.
func (r *Registry) Close() {
	for _, p := range r.byLang {
		if c, ok := p.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
