package reduce

import (
	"sort"
	"strconv"
	"strings"

	"codescope/internal/astcore"
	"codescope/internal/refgraph"

	"gonum.org/v1/gonum/graph/network"
)

const (
	// DefaultMaxNodes and DefaultMaxEdges mirror config.Default's reduction
	// budget; Reduce falls back to them when called with a non-positive
	// budget.
	DefaultMaxNodes = 20
	DefaultMaxEdges = 400

	pageRankDamping   = 0.85
	pageRankTolerance = 1e-6
)

// Reduce collapses g down to at most maxNodes vertices and maxEdges edges.
// Vertices are grouped at module (source file) granularity; a group's weight
// is the sum of gonum's PageRank score over every node that file contributed
// to the graph. The highest-weighted groups survive; edges between surviving
// groups keep only their highest-priority EdgeType and are truncated to
// maxEdges in that same priority order. Groups left with no edges after
// truncation are pruned. Every tie is broken lexicographically, so two
// Reduce calls over the same store produce byte-identical output.
func Reduce(g *refgraph.Graph, maxNodes, maxEdges int) ReducedGraph {
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}
	if maxEdges <= 0 {
		maxEdges = DefaultMaxEdges
	}

	scores := network.PageRank(g.Underlying(), pageRankDamping, pageRankTolerance)
	store := g.Store()

	groupOf := make(map[astcore.NodeID]string, len(store.All()))
	groupScore := make(map[string]float64)
	groupMembers := make(map[string][]astcore.NodeID)
	for _, n := range store.All() {
		key := n.File.Path
		groupOf[n.ID] = key
		groupScore[key] += scores[int64(n.ID)]
		groupMembers[key] = append(groupMembers[key], n.ID)
	}

	var groupKeys []string
	for key := range groupScore {
		groupKeys = append(groupKeys, key)
	}
	sort.Slice(groupKeys, func(i, j int) bool {
		if groupScore[groupKeys[i]] != groupScore[groupKeys[j]] {
			return groupScore[groupKeys[i]] > groupScore[groupKeys[j]]
		}
		return groupKeys[i] < groupKeys[j]
	})
	if len(groupKeys) > maxNodes {
		groupKeys = groupKeys[:maxNodes]
	}

	kept := make(map[string]bool, len(groupKeys))
	for _, key := range groupKeys {
		kept[key] = true
	}

	vertexByID := make(map[string]Vertex, len(groupKeys))
	for _, key := range groupKeys {
		id := sanitizeID(key)
		vertexByID[id] = Vertex{ID: id, Label: labelFor(store, key, groupMembers[key]), Weight: groupScore[key]}
	}

	type pairKey struct{ from, to string }
	bestType := make(map[pairKey]refgraph.EdgeType)
	for _, e := range g.Edges() {
		if e.To == astcore.Unresolved {
			continue
		}
		fromKey, toKey := groupOf[e.From], groupOf[e.To]
		if !kept[fromKey] || !kept[toKey] || fromKey == toKey {
			continue
		}
		k := pairKey{sanitizeID(fromKey), sanitizeID(toKey)}
		if t, ok := bestType[k]; !ok || e.Type < t {
			bestType[k] = e.Type
		}
	}

	edges := make([]ReducedEdge, 0, len(bestType))
	for k, t := range bestType {
		edges = append(edges, ReducedEdge{From: k.from, To: k.to, Type: t})
	}
	sort.Slice(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.From != b.From {
			return a.From < b.From
		}
		return a.To < b.To
	})
	if len(edges) > maxEdges {
		edges = edges[:maxEdges]
	}

	referenced := make(map[string]bool, len(edges)*2)
	for _, e := range edges {
		referenced[e.From] = true
		referenced[e.To] = true
	}

	vertices := make([]Vertex, 0, len(referenced))
	for id, v := range vertexByID {
		if referenced[id] {
			vertices = append(vertices, v)
		}
	}
	sort.Slice(vertices, func(i, j int) bool { return vertices[i].ID < vertices[j].ID })

	return ReducedGraph{Vertices: vertices, Edges: edges}
}

// labelFor prefers a module node's own declared name, falling back to a
// path derived by stripping the leading source directory and converting the
// remaining separators to a module-path convention, falling back again to
// the group's first member identifier if the path is empty.
func labelFor(store *astcore.Store, path string, members []astcore.NodeID) string {
	for _, id := range members {
		n, ok := store.Get(id)
		if ok && n.Kind == astcore.KindModule && n.Payload.Name != "" {
			return n.Payload.Name
		}
	}
	if path != "" {
		return derivePathLabel(path)
	}
	if len(members) > 0 {
		return "node_" + strconv.Itoa(int(members[0]))
	}
	return "unknown"
}

func derivePathLabel(path string) string {
	trimmed := path
	if idx := strings.Index(trimmed, "/"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	return strings.ReplaceAll(trimmed, "/", "::")
}

// sanitizeID replaces characters a diagram renderer treats specially with
// underscores, mirroring the safe-identifier convention diagram emitters
// use for arbitrary path-shaped input.
func sanitizeID(id string) string {
	replacer := strings.NewReplacer(
		".", "_",
		"/", "_",
		"-", "_",
		":", "_",
		"*", "_",
		" ", "_",
		"(", "_",
		")", "_",
	)
	return replacer.Replace(id)
}
