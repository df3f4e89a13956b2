package refgraph

import (
	"sort"

	"codescope/internal/astcore"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Build resolves every node in store into the reference graph: symbol-table
// construction, intra-language edge resolution, cross-language binding
// rules, and the reachability-closure numbering (RPO + SCC).
func Build(store *astcore.Store) *Graph {
	st := BuildSymbolTables(store)

	g := &Graph{
		store: store,
		out:   make(map[astcore.NodeID][]int),
		in:    make(map[astcore.NodeID][]int),
		g:     simple.NewDirectedGraph(),
	}

	addEdge := func(e Edge) {
		idx := len(g.edges)
		g.edges = append(g.edges, e)
		g.out[e.From] = append(g.out[e.From], idx)
		g.in[e.To] = append(g.in[e.To], idx)

		fn, tn := simple.Node(e.From), simple.Node(e.To)
		if !g.g.Has(fn.ID()) {
			g.g.AddNode(fn)
		}
		if !g.g.Has(tn.ID()) {
			g.g.AddNode(tn)
		}
		if !g.g.HasEdgeFromTo(fn.ID(), tn.ID()) {
			g.g.SetEdge(simple.Edge{F: fn, T: tn})
		}
	}

	for _, n := range store.All() {
		if !g.g.Has(int64(n.ID)) {
			g.g.AddNode(simple.Node(n.ID))
		}

		switch n.Kind {
		case astcore.KindCall:
			resolveCall(st, n, addEdge)
		case astcore.KindImport:
			resolveImport(st, n, addEdge)
		}
	}

	resolveImplements(store, st, addEdge)
	resolveForeignBindings(store, st, addEdge)

	computeRPO(g)
	computeSCC(g)

	return g
}

// resolveCall resolves a Call node's callee reference against every
// candidate whose name matches: an unknown receiver type adds edges to
// all candidates rather than guessing one.
func resolveCall(st *SymbolTable, call astcore.Node, addEdge func(Edge)) {
	candidates := st.Candidates(call.Payload.CalleeRef)
	if len(candidates) == 0 {
		addEdge(Edge{From: call.ID, To: astcore.Unresolved, Type: EdgeCalls, SrcLang: call.Lang, DstLang: call.Lang})
		return
	}
	for _, target := range candidates {
		addEdge(Edge{From: call.ID, To: target, Type: EdgeCalls, SrcLang: call.Lang, DstLang: call.Lang})
	}
}

// resolveImport attaches an Imports edge to the best symbol-table match
// for the import target's trailing path segment (e.g. a package or module
// name). Unmatched imports point at Unresolved; real cross-file module
// resolution requires build-system knowledge (go.mod, package.json,
// Cargo.toml) this core does not ingest, so this is a best-effort match on
// declared names only.
func resolveImport(st *SymbolTable, imp astcore.Node, addEdge func(Edge)) {
	target, ok := st.Resolve(imp.Payload.ImportTarget)
	if !ok {
		addEdge(Edge{From: imp.ID, To: astcore.Unresolved, Type: EdgeImports, SrcLang: imp.Lang, DstLang: imp.Lang})
		return
	}
	addEdge(Edge{From: imp.ID, To: target, Type: EdgeImports, SrcLang: imp.Lang, DstLang: imp.Lang})
}

func resolveImplements(store *astcore.Store, st *SymbolTable, addEdge func(Edge)) {
	for _, n := range store.All() {
		if n.Kind != astcore.KindTrait || n.Payload.Name == "" {
			continue
		}
		for _, impl := range st.Implementors(n.Payload.Name) {
			implNode, ok := store.Get(impl)
			if !ok {
				continue
			}
			addEdge(Edge{From: impl, To: n.ID, Type: EdgeImplements, SrcLang: implNode.Lang, DstLang: n.Lang})
		}
	}
}

func computeRPO(g *Graph) {
	g.rpo = make(map[astcore.NodeID]int)

	visited := make(map[int64]bool)
	var order []astcore.NodeID

	var visit func(id int64)
	visit = func(id int64) {
		if visited[id] {
			return
		}
		visited[id] = true
		to := g.g.From(id)
		succs := make([]int64, 0, to.Len())
		for to.Next() {
			succs = append(succs, to.Node().ID())
		}
		sort.Slice(succs, func(i, j int) bool { return succs[i] < succs[j] })
		for _, s := range succs {
			visit(s)
		}
		order = append(order, astcore.NodeID(id))
	}

	nodes := g.g.Nodes()
	var roots []int64
	for nodes.Next() {
		roots = append(roots, nodes.Node().ID())
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })
	for _, r := range roots {
		visit(r)
	}

	// order is post-order; reverse it for reverse-post-order.
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	for i, id := range order {
		g.rpo[id] = i
	}
	g.rpoOrder = order
}

func computeSCC(g *Graph) {
	g.scc = make(map[astcore.NodeID]int)
	sccs := topo.TarjanSCC(g.g)
	g.sccs = make([][]astcore.NodeID, len(sccs))
	for i, scc := range sccs {
		ids := make([]astcore.NodeID, len(scc))
		for j, n := range scc {
			id := astcore.NodeID(n.ID())
			ids[j] = id
			g.scc[id] = i
		}
		g.sccs[i] = ids
	}
}
