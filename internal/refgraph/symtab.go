package refgraph

import (
	"strings"

	"codescope/internal/astcore"
)

// SymbolTable maps fully-qualified names to node identifiers, built per
// file and merged into one cross-file index. Because the AST store
// hash-conses structurally identical subtrees, two files whose bodies are
// byte-for-byte identical may legitimately map different FQNs to the same
// NodeID; this is intentional, see DESIGN.md.
type SymbolTable struct {
	byFQN  map[string]astcore.NodeID
	byName map[string][]astcore.NodeID // last path segment -> candidates, for unqualified lookups

	foreignExports map[string][]astcore.NodeID // exported symbol name -> candidate definitions

	// implementors maps a Trait/Interface name to every Class node whose
	// method set names are a superset of the trait's, the dynamic-dispatch
	// index needs.
	implementors map[string][]astcore.NodeID
}

// BuildSymbolTables walks every Module root and indexes its declarations.
func BuildSymbolTables(store *astcore.Store) *SymbolTable {
	st := &SymbolTable{
		byFQN:          make(map[string]astcore.NodeID),
		byName:         make(map[string][]astcore.NodeID),
		foreignExports: make(map[string][]astcore.NodeID),
		implementors:   make(map[string][]astcore.NodeID),
	}

	traitMethods := map[string]map[string]bool{}   // trait name -> method name set
	classMethods := map[astcore.NodeID]map[string]bool{} // class node -> method name set
	classNames := map[astcore.NodeID]string{}

	for _, root := range store.Roots() {
		node, ok := store.Get(root)
		if !ok {
			continue
		}
		walkSymbols(store, root, node.File.Path, nil, st, traitMethods, classMethods, classNames)
	}

	for traitName, methods := range traitMethods {
		for classID, classMethodSet := range classMethods {
			if isSuperset(classMethodSet, methods) {
				st.implementors[traitName] = append(st.implementors[traitName], classID)
			}
		}
	}

	return st
}

func isSuperset(have, want map[string]bool) bool {
	if len(want) == 0 {
		return false
	}
	for m := range want {
		if !have[m] {
			return false
		}
	}
	return true
}

func walkSymbols(
	store *astcore.Store,
	id astcore.NodeID,
	filePath string,
	containerStack []string,
	st *SymbolTable,
	traitMethods map[string]map[string]bool,
	classMethods map[astcore.NodeID]map[string]bool,
	classNames map[astcore.NodeID]string,
) {
	node, ok := store.Get(id)
	if !ok {
		return
	}

	nextStack := containerStack
	var enclosingClass astcore.NodeID
	var haveEnclosingClass bool

	switch node.Kind {
	case astcore.KindFunction, astcore.KindMethod:
		if node.Payload.Name != "" {
			fqn := fqnOf(filePath, containerStack, node.Payload.Name)
			st.byFQN[fqn] = id
			st.byName[node.Payload.Name] = append(st.byName[node.Payload.Name], id)
			if node.Flags.Has(astcore.FlagForeignExport) {
				st.foreignExports[node.Payload.Name] = append(st.foreignExports[node.Payload.Name], id)
			}
		}

	case astcore.KindClass:
		if node.Payload.Name != "" {
			fqn := fqnOf(filePath, containerStack, node.Payload.Name)
			st.byFQN[fqn] = id
			st.byName[node.Payload.Name] = append(st.byName[node.Payload.Name], id)
			nextStack = append(append([]string{}, containerStack...), node.Payload.Name)
			classMethods[id] = map[string]bool{}
			classNames[id] = node.Payload.Name
			enclosingClass = id
			haveEnclosingClass = true
		}

	case astcore.KindTrait:
		if node.Payload.Name != "" {
			fqn := fqnOf(filePath, containerStack, node.Payload.Name)
			st.byFQN[fqn] = id
			st.byName[node.Payload.Name] = append(st.byName[node.Payload.Name], id)
			if _, ok := traitMethods[node.Payload.Name]; !ok {
				traitMethods[node.Payload.Name] = map[string]bool{}
			}
			nextStack = append(append([]string{}, containerStack...), node.Payload.Name)
		}
	}

	for _, child := range node.Children {
		cnode, ok := store.Get(child)
		if ok {
			switch {
			case node.Kind == astcore.KindClass && (cnode.Kind == astcore.KindMethod || cnode.Kind == astcore.KindFunction) && haveEnclosingClass:
				classMethods[enclosingClass][cnode.Payload.Name] = true
			case node.Kind == astcore.KindTrait && (cnode.Kind == astcore.KindMethod || cnode.Kind == astcore.KindFunction):
				if m, ok := traitMethods[node.Payload.Name]; ok {
					m[cnode.Payload.Name] = true
				}
			}
		}
		walkSymbols(store, child, filePath, nextStack, st, traitMethods, classMethods, classNames)
	}
}

func fqnOf(filePath string, container []string, name string) string {
	var b strings.Builder
	b.WriteString(filePath)
	for _, c := range container {
		b.WriteString("::")
		b.WriteString(c)
	}
	b.WriteString("::")
	b.WriteString(name)
	return b.String()
}

// Resolve finds the best candidate node for an unqualified or
// dotted/qualified callee reference, mirroring how calls are written in
// each supported language (`helper`, `pkg.Func`, `obj.Method`).
func (st *SymbolTable) Resolve(calleeRef string) (astcore.NodeID, bool) {
	if calleeRef == "" {
		return astcore.Unresolved, false
	}
	name := calleeRef
	if idx := strings.LastIndexAny(calleeRef, ".::"); idx >= 0 {
		name = calleeRef[idx+1:]
	}
	candidates := st.byName[name]
	if len(candidates) == 0 {
		return astcore.Unresolved, false
	}
	// Ambiguous unqualified references resolve to every type-compatible
	// candidate being added as edges by the caller; here
	// we hand back the first as the primary target and let the caller fetch
	// the full candidate list via Candidates when it needs every match.
	return candidates[0], true
}

// Candidates returns every node whose declared name matches the last
// segment of calleeRef.
func (st *SymbolTable) Candidates(calleeRef string) []astcore.NodeID {
	name := calleeRef
	if idx := strings.LastIndexAny(calleeRef, ".::"); idx >= 0 {
		name = calleeRef[idx+1:]
	}
	return st.byName[name]
}

// ForeignExports returns every foreign-C-exported definition named name.
func (st *SymbolTable) ForeignExports(name string) []astcore.NodeID {
	return st.foreignExports[name]
}

// Implementors returns every class-like node whose method set satisfies
// traitName's method set, the dynamic-dispatch index consumes.
func (st *SymbolTable) Implementors(traitName string) []astcore.NodeID {
	return st.implementors[traitName]
}

// FQNsByNode inverts byFQN: every fully-qualified name that resolves to a
// given node. Hash-consing means more than one FQN can share a node only
// when their bodies are byte-for-byte identical, the duplication analyzer's
// Type-1 signal.
func (st *SymbolTable) FQNsByNode() map[astcore.NodeID][]string {
	out := make(map[astcore.NodeID][]string, len(st.byFQN))
	for fqn, id := range st.byFQN {
		out[id] = append(out[id], fqn)
	}
	return out
}
