package analyze

import (
	"sort"

	"codescope/internal/astcore"
	"codescope/internal/refgraph"
)

// isEntryPoint reports whether n is reachable from outside this run's view
// of the graph by convention rather than by a resolvable edge: exported
// symbols, foreign-C exports, a language's "main" convention, and test
// functions when the caller has chosen to treat them as runnable roots.
func isEntryPoint(n astcore.Node, includeTests bool) bool {
	if n.Kind != astcore.KindFunction && n.Kind != astcore.KindMethod {
		return false
	}
	if n.Flags.Has(astcore.FlagIsExported) {
		return true
	}
	if n.Flags.Has(astcore.FlagForeignExport) {
		return true
	}
	if n.Flags.Has(astcore.FlagIsTest) && includeTests {
		return true
	}
	return isMainFunction(n)
}

// isMainFunction recognizes each language's program-entry convention: a
// top-level function literally named "main". Python's
// `if __name__ == "__main__"` idiom is invisible to this AST schema (no
// dedicated If node kind), so only the name convention is checked.
func isMainFunction(n astcore.Node) bool {
	return n.Kind == astcore.KindFunction && n.Payload.Name == "main"
}

// DeadCode finds every Function, Method, Class, Trait, and Import node
// unreachable from any entry point by fixed-point liveness propagation
// over the reference graph, plus parameters never referenced within their
// own function body. includeTests mirrors config.File.IncludeTests: when
// true, test functions are entry points rather than dead-code candidates.
func DeadCode(store *astcore.Store, g *refgraph.Graph, includeTests bool) []DeadCodeFinding {
	live := seedLiveness(store, g, includeTests)
	propagateLiveness(live, g)

	var findings []DeadCodeFinding
	for _, n := range store.All() {
		if f, ok := classifyDead(n, live, g, includeTests); ok {
			findings = append(findings, f)
		}
	}
	findings = append(findings, unusedParameters(store)...)
	findings = append(findings, unreachableCode(store, live)...)
	findings = append(findings, deadStores(store)...)

	sort.Slice(findings, func(i, j int) bool { return findings[i].Node < findings[j].Node })
	return findings
}

// seedLiveness marks every entry point live, plus every ForeignBinding
// edge's target: the target may carry no FlagIsExported of its own (a Rust
// extern-C function is not "exported" in Go's sense), but is reachable
// from outside this run's language boundary all the same.
func seedLiveness(store *astcore.Store, g *refgraph.Graph, includeTests bool) map[astcore.NodeID]bool {
	live := make(map[astcore.NodeID]bool)
	for _, n := range store.All() {
		if isEntryPoint(n, includeTests) {
			live[n.ID] = true
		}
	}
	for _, e := range g.Edges() {
		if e.Type == refgraph.EdgeForeignBinding && e.To != astcore.Unresolved {
			live[e.To] = true
		}
	}
	return live
}

// propagateLiveness runs a worklist closure over live, ordered by
// reverse-post-order number with node identity as a tie-break so the
// traversal order (and therefore any run's findings) is deterministic
// regardless of map iteration order.
func propagateLiveness(live map[astcore.NodeID]bool, g *refgraph.Graph) {
	queue := make([]astcore.NodeID, 0, len(live))
	for id := range live {
		queue = append(queue, id)
	}
	sortByRPO(queue, g)

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		var discovered []astcore.NodeID
		for _, e := range g.OutEdges(id) {
			if e.To == astcore.Unresolved || live[e.To] {
				continue
			}
			live[e.To] = true
			discovered = append(discovered, e.To)
		}
		sortByRPO(discovered, g)
		queue = append(queue, discovered...)
	}
}

func sortByRPO(ids []astcore.NodeID, g *refgraph.Graph) {
	sort.Slice(ids, func(i, j int) bool {
		ri, rj := g.RPONumber(ids[i]), g.RPONumber(ids[j])
		if ri != rj {
			return ri < rj
		}
		return ids[i] < ids[j]
	})
}

func classifyDead(n astcore.Node, live map[astcore.NodeID]bool, g *refgraph.Graph, includeTests bool) (DeadCodeFinding, bool) {
	switch n.Kind {
	case astcore.KindFunction, astcore.KindMethod:
		if n.Flags.Has(astcore.FlagIsTest) {
			if includeTests {
				return DeadCodeFinding{}, false
			}
			return orphanedTest(n, g)
		}
		if live[n.ID] {
			return DeadCodeFinding{}, false
		}
		return DeadCodeFinding{Node: n.ID, Reason: ReasonUnusedFunction, Confidence: confidenceFor(n)}, true

	case astcore.KindClass, astcore.KindTrait:
		if live[n.ID] {
			return DeadCodeFinding{}, false
		}
		return DeadCodeFinding{Node: n.ID, Reason: ReasonUnusedType, Confidence: ConfidenceMedium}, true

	case astcore.KindImport:
		return classifyDeadImport(n, live, g)
	}
	return DeadCodeFinding{}, false
}

// classifyDeadImport reports an import dead only when every edge it
// produced resolved to a concrete, still-dead target. An import resolving
// to Unresolved is left alone: that is the common case for standard-library
// and external-package imports, which this core has no module manifest to
// verify one way or the other, and reporting those as unused would be
// unreliable noise.
func classifyDeadImport(n astcore.Node, live map[astcore.NodeID]bool, g *refgraph.Graph) (DeadCodeFinding, bool) {
	edges := g.OutEdges(n.ID)
	if len(edges) == 0 {
		return DeadCodeFinding{}, false
	}
	for _, e := range edges {
		if e.To == astcore.Unresolved || live[e.To] {
			return DeadCodeFinding{}, false
		}
	}
	return DeadCodeFinding{Node: n.ID, Reason: ReasonUnusedImport, Confidence: ConfidenceLow}, true
}

// orphanedTest flags a test function whose every outgoing call targets the
// Unresolved sentinel: the code it was written to exercise appears to no
// longer exist under any name this run's symbol tables can see.
func orphanedTest(n astcore.Node, g *refgraph.Graph) (DeadCodeFinding, bool) {
	var calls, unresolved int
	for _, e := range g.OutEdges(n.ID) {
		if e.Type != refgraph.EdgeCalls {
			continue
		}
		calls++
		if e.To == astcore.Unresolved {
			unresolved++
		}
	}
	if calls == 0 || unresolved < calls {
		return DeadCodeFinding{}, false
	}
	return DeadCodeFinding{Node: n.ID, Reason: ReasonOrphanedTest, Confidence: ConfidenceMedium}, true
}

// confidenceFor lowers confidence for functions a reflective or
// macro-driven caller could reach without leaving a visible Calls edge.
func confidenceFor(n astcore.Node) Confidence {
	if n.Flags.Has(astcore.FlagHasMacroOrigin) {
		return ConfidenceLow
	}
	if n.Flags.Has(astcore.FlagIsGeneric) {
		return ConfidenceMedium
	}
	return ConfidenceHigh
}

// unusedParameters walks every Function/Method body looking for declared
// parameters whose name never appears again as an Identifier within the
// same subtree, ignoring the blank-identifier convention several languages
// use to mark an intentionally unused parameter.
func unusedParameters(store *astcore.Store) []DeadCodeFinding {
	var findings []DeadCodeFinding
	for _, n := range store.All() {
		if n.Kind != astcore.KindFunction && n.Kind != astcore.KindMethod {
			continue
		}
		params := directParameters(store, n.ID)
		if len(params) == 0 {
			continue
		}
		used := identifierNames(store, n.ID)
		for _, p := range params {
			if p.Payload.Name == "" || p.Payload.Name == "_" {
				continue
			}
			if !used[p.Payload.Name] {
				findings = append(findings, DeadCodeFinding{Node: p.ID, Reason: ReasonUnusedParameter, Confidence: ConfidenceMedium})
			}
		}
	}
	return findings
}

func directParameters(store *astcore.Store, fnID astcore.NodeID) []astcore.Node {
	n, ok := store.Get(fnID)
	if !ok {
		return nil
	}
	var out []astcore.Node
	for _, c := range n.Children {
		cn, ok := store.Get(c)
		if ok && cn.Kind == astcore.KindParameter {
			out = append(out, cn)
		}
	}
	return out
}

// unreachableCode flags statements sitting after a return, break, or
// continue within the same block, restricted to blocks belonging to a live
// function: an unreachable return inside a function classifyDead already
// reports as ReasonUnusedFunction would just double-report the same defect
// under a second name. Comments are not statements and never flagged.
func unreachableCode(store *astcore.Store, live map[astcore.NodeID]bool) []DeadCodeFinding {
	var findings []DeadCodeFinding
	for _, n := range store.All() {
		if n.Kind != astcore.KindBlock {
			continue
		}
		if !enclosingFunctionLive(store, n.ID, live) {
			continue
		}
		seenTerminator := false
		for _, childID := range n.Children {
			cn, ok := store.Get(childID)
			if !ok || cn.Kind == astcore.KindComment {
				continue
			}
			if seenTerminator {
				findings = append(findings, DeadCodeFinding{Node: cn.ID, Reason: ReasonUnreachableCode, Confidence: ConfidenceMedium})
				continue
			}
			if isTerminator(cn) {
				seenTerminator = true
			}
		}
	}
	return findings
}

func isTerminator(n astcore.Node) bool {
	if n.Kind != astcore.KindOther {
		return false
	}
	switch n.Payload.Name {
	case "return", "break", "continue":
		return true
	default:
		return false
	}
}

// enclosingFunctionLive walks up from id to the nearest Function or Method
// ancestor and reports whether the liveness pass reached it. A node with no
// such ancestor (e.g. top-level module code in a scripting language) is
// treated as unreachable scope and skipped.
func enclosingFunctionLive(store *astcore.Store, id astcore.NodeID, live map[astcore.NodeID]bool) bool {
	n, ok := store.Get(id)
	for ok {
		if n.Kind == astcore.KindFunction || n.Kind == astcore.KindMethod {
			return live[n.ID]
		}
		if !n.HasParent() {
			return false
		}
		n, ok = store.Get(n.Parent)
	}
	return false
}

// deadStores finds local assignments whose target name is never read again
// within the same function. The check is name-based rather than a true
// def-use dataflow analysis: a name reassigned before any intervening read
// is flagged on its earlier store even though a later store of the same
// name does get read, the same simplification unusedParameters makes for
// parameters.
func deadStores(store *astcore.Store) []DeadCodeFinding {
	var findings []DeadCodeFinding
	for _, n := range store.All() {
		if n.Kind != astcore.KindFunction && n.Kind != astcore.KindMethod {
			continue
		}
		findings = append(findings, deadStoresInFunction(store, n.ID)...)
	}
	return findings
}

func deadStoresInFunction(store *astcore.Store, fnID astcore.NodeID) []DeadCodeFinding {
	assigns := collectAssignNodes(store, fnID)
	if len(assigns) == 0 {
		return nil
	}
	reads := identifierReadCounts(store, fnID, nil)
	for _, a := range assigns {
		// Each assign's own left-hand side is one occurrence of its target;
		// hash-consing gives same-named identifiers one NodeID, so occurrences
		// are discounted by count rather than skipped by ID.
		reads[a.Payload.AssignTarget]--
	}

	var findings []DeadCodeFinding
	for _, a := range assigns {
		if reads[a.Payload.AssignTarget] == 0 {
			findings = append(findings, DeadCodeFinding{Node: a.ID, Reason: ReasonDeadStore, Confidence: ConfidenceMedium})
		}
	}
	return findings
}

// collectAssignNodes walks root's subtree for KindOther nodes the language
// parsers tag Payload.Name "assign" with a recognized single target; targets
// too complex to name cleanly (multi-assign, field/index targets) carry an
// empty AssignTarget upstream and are skipped here.
func collectAssignNodes(store *astcore.Store, root astcore.NodeID) []astcore.Node {
	n, ok := store.Get(root)
	if !ok {
		return nil
	}
	var out []astcore.Node
	for _, c := range n.Children {
		cn, ok := store.Get(c)
		if !ok {
			continue
		}
		if cn.Kind == astcore.KindOther && cn.Payload.Name == "assign" && cn.Payload.AssignTarget != "" {
			out = append(out, cn)
		}
		out = append(out, collectAssignNodes(store, c)...)
	}
	return out
}

// lhsIdentifierIDs returns, per assign node, the first identifier in
// document order within its subtree matching its own target name: the
// declaration or left-hand side, which several grammars wrap in an
// intermediate node (Go's short_var_declaration names an expression_list,
// not the identifier directly) rather than exposing it as a direct child.
// Because same-named identifiers share a NodeID, the returned IDs cover
// every occurrence of each target name, not only the left-hand side.
func lhsIdentifierIDs(store *astcore.Store, assigns []astcore.Node) map[astcore.NodeID]bool {
	lhs := make(map[astcore.NodeID]bool)
	for _, a := range assigns {
		if id, ok := firstIdentifierNamed(store, a.ID, a.Payload.AssignTarget); ok {
			lhs[id] = true
		}
	}
	return lhs
}

func firstIdentifierNamed(store *astcore.Store, root astcore.NodeID, name string) (astcore.NodeID, bool) {
	n, ok := store.Get(root)
	if !ok {
		return astcore.Unresolved, false
	}
	if n.Kind == astcore.KindIdentifier && n.Payload.Name == name {
		return n.ID, true
	}
	for _, c := range n.Children {
		if id, ok := firstIdentifierNamed(store, c, name); ok {
			return id, true
		}
	}
	return astcore.Unresolved, false
}

func identifierReadCounts(store *astcore.Store, root astcore.NodeID, skip map[astcore.NodeID]bool) map[string]int {
	counts := make(map[string]int)
	var walk func(id astcore.NodeID)
	walk = func(id astcore.NodeID) {
		n, ok := store.Get(id)
		if !ok {
			return
		}
		for _, c := range n.Children {
			cn, ok := store.Get(c)
			if !ok {
				continue
			}
			if cn.Kind == astcore.KindIdentifier && cn.Payload.Name != "" && !skip[cn.ID] {
				counts[cn.Payload.Name]++
			}
			walk(c)
		}
	}
	walk(root)
	return counts
}

func identifierNames(store *astcore.Store, root astcore.NodeID) map[string]bool {
	names := make(map[string]bool)
	n, ok := store.Get(root)
	if !ok {
		return names
	}
	for _, c := range n.Children {
		cn, ok := store.Get(c)
		if !ok {
			continue
		}
		if cn.Kind == astcore.KindParameter {
			continue
		}
		if cn.Kind == astcore.KindIdentifier && cn.Payload.Name != "" {
			names[cn.Payload.Name] = true
		}
		for k := range identifierNames(store, c) {
			names[k] = true
		}
	}
	return names
}
