package refgraph

import (
	"strings"

	"codescope/internal/astcore"
)

// resolveForeignBindings applies the three cross-language binding rules.
// Each rule is conservative: when several exporting languages share a
// name, every candidate gets an edge rather than guessing one.
func resolveForeignBindings(store *astcore.Store, st *SymbolTable, addEdge func(Edge)) {
	for _, n := range store.All() {
		if n.Kind != astcore.KindImport {
			continue
		}

		// Foreign-C export rule: an import whose target names a function
		// some other language marked FlagForeignExport.
		name := lastSegment(n.Payload.ImportTarget)
		for _, export := range st.ForeignExports(name) {
			exportNode, ok := store.Get(export)
			if !ok || exportNode.Lang == n.Lang {
				continue
			}
			addEdge(Edge{From: n.ID, To: export, Type: EdgeForeignBinding, SrcLang: exportNode.Lang, DstLang: n.Lang})
		}

		// WebAssembly binding rule: an import naming a .wasm module matches
		// any language's export of the same unmangled symbol name.
		if strings.Contains(strings.ToLower(n.Payload.ImportTarget), ".wasm") {
			for _, candidate := range st.Candidates(name) {
				cand, ok := store.Get(candidate)
				if !ok || cand.Lang == n.Lang {
					continue
				}
				addEdge(Edge{From: n.ID, To: candidate, Type: EdgeForeignBinding, SrcLang: cand.Lang, DstLang: n.Lang})
			}
		}
	}

	// Embedded-interpreter binding rule: an Attribute node naming a foreign
	// symbol (e.g. a binding annotation) resolves by exact name match
	// against another language's declarations.
	for _, n := range store.All() {
		if n.Kind != astcore.KindAttribute || n.Payload.Name == "" {
			continue
		}
		bound := attributeBindingTarget(n.Payload.Name)
		if bound == "" {
			continue
		}
		for _, candidate := range st.Candidates(bound) {
			cand, ok := store.Get(candidate)
			if !ok || cand.Lang == n.Lang {
				continue
			}
			addEdge(Edge{From: n.ID, To: candidate, Type: EdgeForeignBinding, SrcLang: n.Lang, DstLang: cand.Lang})
		}
	}
}

func lastSegment(s string) string {
	if idx := strings.LastIndexAny(s, "./\\::"); idx >= 0 {
		return s[idx+1:]
	}
	return s
}

// attributeBindingTarget extracts the symbol name from an embedded-
// interpreter binding attribute such as `#[binding(foreign_symbol)]` or
// `@Binding("foreign_symbol")`. Returns "" when the attribute text does not
// look like a binding declaration.
func attributeBindingTarget(attr string) string {
	lower := strings.ToLower(attr)
	if !strings.Contains(lower, "binding") {
		return ""
	}
	start := strings.IndexAny(attr, "(\"")
	if start < 0 {
		return ""
	}
	rest := attr[start+1:]
	rest = strings.Trim(rest, "\"')")
	end := strings.IndexAny(rest, "\"),")
	if end < 0 {
		end = len(rest)
	}
	return strings.TrimSpace(rest[:end])
}
