// Package refgraph builds the cross-language reference graph: per-language
// symbol tables, intra- and cross-language edge resolution, and the
// reverse-post-order numbering and strongly-connected-component membership
// the dead-code and correlator stages consume.
package refgraph

import (
	"codescope/internal/astcore"

	"gonum.org/v1/gonum/graph/simple"
)

// EdgeType tags a reference-graph edge. Priority order for edge-budget
// reduction is the declaration order here (lower ordinal, higher priority).
type EdgeType uint8

const (
	EdgeInherits EdgeType = iota
	EdgeUses
	EdgeImplements
	EdgeCalls
	EdgeImports
	EdgeForeignBinding
)

func (t EdgeType) String() string {
	switch t {
	case EdgeInherits:
		return "Inherits"
	case EdgeUses:
		return "Uses"
	case EdgeImplements:
		return "Implements"
	case EdgeCalls:
		return "Calls"
	case EdgeImports:
		return "Imports"
	case EdgeForeignBinding:
		return "ForeignBinding"
	default:
		return "Unknown"
	}
}

// Edge is one reference-graph edge. Cross-language edges carry both
// language tags; same-language edges have SrcLang == DstLang.
type Edge struct {
	From, To astcore.NodeID
	Type     EdgeType
	SrcLang  astcore.Language
	DstLang  astcore.Language
}

// Graph is the reference graph over a Store's nodes. It keeps the full
// multigraph (every Edge, including parallel edges of different types)
// alongside a derived simple.DirectedGraph used only to run gonum's
// topology algorithms, which do not need edge multiplicity to compute
// reachability, SCCs, or PageRank.
type Graph struct {
	store *astcore.Store

	edges []Edge
	out   map[astcore.NodeID][]int // node -> indices into edges
	in    map[astcore.NodeID][]int

	g *simple.DirectedGraph

	rpo      map[astcore.NodeID]int
	rpoOrder []astcore.NodeID
	scc      map[astcore.NodeID]int // node -> SCC index
	sccs     [][]astcore.NodeID
}

// Store returns the AST store this graph was built over.
func (g *Graph) Store() *astcore.Store { return g.store }

// Edges returns every edge in the multigraph.
func (g *Graph) Edges() []Edge { return g.edges }

// OutEdges returns edges leaving id.
func (g *Graph) OutEdges(id astcore.NodeID) []Edge {
	idxs := g.out[id]
	out := make([]Edge, len(idxs))
	for i, idx := range idxs {
		out[i] = g.edges[idx]
	}
	return out
}

// InEdges returns edges arriving at id.
func (g *Graph) InEdges(id astcore.NodeID) []Edge {
	idxs := g.in[id]
	out := make([]Edge, len(idxs))
	for i, idx := range idxs {
		out[i] = g.edges[idx]
	}
	return out
}

// RPONumber returns id's reverse-post-order number, or -1 if id is not
// reachable from any root considered during RPO computation.
func (g *Graph) RPONumber(id astcore.NodeID) int {
	if n, ok := g.rpo[id]; ok {
		return n
	}
	return -1
}

// RPOOrder returns every visited node in reverse-post-order.
func (g *Graph) RPOOrder() []astcore.NodeID { return g.rpoOrder }

// SCCOf returns the strongly-connected-component index containing id.
func (g *Graph) SCCOf(id astcore.NodeID) (int, bool) {
	idx, ok := g.scc[id]
	return idx, ok
}

// SCCs returns every strongly-connected component, each as a list of node
// identifiers. Singleton components (no self-cycle) are included.
func (g *Graph) SCCs() [][]astcore.NodeID { return g.sccs }

// Underlying exposes the derived simple.DirectedGraph for algorithms (e.g.
// PageRank in C7) that need gonum's graph.Directed interface directly.
func (g *Graph) Underlying() *simple.DirectedGraph { return g.g }
