package analyze

import (
	"encoding/binary"
	"sort"
	"strconv"

	"codescope/internal/astcore"
	"codescope/internal/refgraph"

	"github.com/cespare/xxhash/v2"
)

const (
	minHashSize     = 128
	type3JaccardMin = 0.80
	type4JaccardMin = 0.85
	shingleWindow   = 4
)

// fragment is one function/method body considered for clone detection.
// Type-1 exact duplicates need no fingerprint of their own: they fall out
// of hash-consing directly (see type1Groups).
type fragment struct {
	node         astcore.NodeID
	alpha        uint64 // identifiers normalized to positional placeholders
	minhash      [minHashSize]uint64
	controlShape [minHashSize]uint64 // MinHash over the branch-tag-only token stream
}

// Duplication groups Function/Method bodies into clone groups at four
// levels of similarity: Type-1 exact duplicates (already collapsed to one
// NodeID by hash-consing, so any symbol-table name with more than one FQN
// pointing at it is an exact clone across call sites), Type-2 clones that
// differ only by identifier renaming, Type-3 near-miss clones (token-level
// Jaccard similarity via MinHash), and Type-4 clones that share control
// flow shape but differ substantially in their token content.
func Duplication(store *astcore.Store, st *refgraph.SymbolTable) []CloneGroup {
	var fragments []fragment
	for _, n := range store.All() {
		if n.Kind != astcore.KindFunction && n.Kind != astcore.KindMethod {
			continue
		}
		fragments = append(fragments, buildFragment(store, n))
	}
	sort.Slice(fragments, func(i, j int) bool { return fragments[i].node < fragments[j].node })

	var groups []CloneGroup
	groups = append(groups, type1Groups(st.FQNsByNode())...)
	groups = append(groups, type2Groups(fragments)...)
	groups = append(groups, type3Groups(fragments)...)
	groups = append(groups, type4Groups(fragments)...)
	return groups
}

// type1Groups reports every Function/Method NodeID that more than one
// fully-qualified name resolves to: since Payload identifiers do
// participate in canonical hashing, two such FQNs can only share a NodeID
// by having byte-for-byte identical bodies.
func type1Groups(fqnsByNode map[astcore.NodeID][]string) []CloneGroup {
	var out []CloneGroup
	var nodes []astcore.NodeID
	for id := range fqnsByNode {
		nodes = append(nodes, id)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })
	for _, id := range nodes {
		if len(fqnsByNode[id]) < 2 {
			continue
		}
		out = append(out, CloneGroup{Type: CloneType1, Members: []astcore.NodeID{id}, Similarity: 1.0})
	}
	return out
}

func type2Groups(fragments []fragment) []CloneGroup {
	byAlpha := make(map[uint64][]astcore.NodeID)
	for _, f := range fragments {
		byAlpha[f.alpha] = append(byAlpha[f.alpha], f.node)
	}
	var out []CloneGroup
	for _, members := range byAlpha {
		if len(members) < 2 {
			continue
		}
		sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
		out = append(out, CloneGroup{Type: CloneType2, Members: members, Similarity: 1.0})
	}
	return out
}

func type3Groups(fragments []fragment) []CloneGroup {
	return similarityGroups(fragments, CloneType3, type3JaccardMin, func(f fragment) [minHashSize]uint64 { return f.minhash })
}

func type4Groups(fragments []fragment) []CloneGroup {
	return similarityGroups(fragments, CloneType4, type4JaccardMin, func(f fragment) [minHashSize]uint64 { return f.controlShape })
}

// similarityGroups unions every pair of fragments whose estimated Jaccard
// similarity (fraction of matching MinHash slots) reaches threshold, then
// reports each resulting union-find component of size 2 or more.
func similarityGroups(fragments []fragment, t CloneType, threshold float64, sig func(fragment) [minHashSize]uint64) []CloneGroup {
	n := len(fragments)
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if estimateJaccard(sig(fragments[i]), sig(fragments[j])) >= threshold {
				union(i, j)
			}
		}
	}

	groupsByRoot := make(map[int][]astcore.NodeID)
	for i, f := range fragments {
		r := find(i)
		groupsByRoot[r] = append(groupsByRoot[r], f.node)
	}

	var out []CloneGroup
	var roots []int
	for r := range groupsByRoot {
		roots = append(roots, r)
	}
	sort.Ints(roots)
	for _, r := range roots {
		members := groupsByRoot[r]
		if len(members) < 2 {
			continue
		}
		sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
		out = append(out, CloneGroup{Type: t, Members: members, Similarity: groupSimilarity(fragments, members, sig)})
	}
	return out
}

// groupSimilarity reports the minimum pairwise similarity within a group,
// the conservative bound: every member is at least this similar to every
// other.
func groupSimilarity(fragments []fragment, members []astcore.NodeID, sig func(fragment) [minHashSize]uint64) float64 {
	byNode := make(map[astcore.NodeID][minHashSize]uint64)
	for _, f := range fragments {
		byNode[f.node] = sig(f)
	}
	min := 1.0
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			s := estimateJaccard(byNode[members[i]], byNode[members[j]])
			if s < min {
				min = s
			}
		}
	}
	return min
}

func estimateJaccard(a, b [minHashSize]uint64) float64 {
	matches := 0
	for i := range a {
		if a[i] == b[i] {
			matches++
		}
	}
	return float64(matches) / float64(minHashSize)
}

// buildFragment computes every fingerprint a function/method node needs
// for clone detection in one bottom-up-excluding-nested-functions walk.
func buildFragment(store *astcore.Store, n astcore.Node) fragment {
	f := fragment{node: n.ID}

	renames := make(map[string]int)
	var tokens []string
	var shape []string

	var walk func(id astcore.NodeID)
	walk = func(id astcore.NodeID) {
		cn, ok := store.Get(id)
		if !ok {
			return
		}
		if cn.ID != n.ID && (cn.Kind == astcore.KindFunction || cn.Kind == astcore.KindMethod) {
			tokens = append(tokens, "closure")
			return
		}
		tokens = append(tokens, tokenFor(cn, renames))
		if cn.Kind == astcore.KindBlock && branchTags[cn.Payload.Name] {
			shape = append(shape, cn.Payload.Name)
		}
		for _, c := range cn.Children {
			walk(c)
		}
	}
	walk(n.ID)

	f.alpha = hashTokens(tokens)
	f.minhash = minHashSignature(shingles(tokens, shingleWindow))
	f.controlShape = minHashSignature(shingles(shape, 2))
	return f
}

func tokenFor(n astcore.Node, renames map[string]int) string {
	switch n.Kind {
	case astcore.KindIdentifier:
		pos, ok := renames[n.Payload.Name]
		if !ok {
			pos = len(renames)
			renames[n.Payload.Name] = pos
		}
		return "id#" + strconv.Itoa(pos)
	case astcore.KindBlock:
		return "block:" + n.Payload.Name
	case astcore.KindLiteral:
		return "lit"
	default:
		return n.Kind.String()
	}
}

func hashTokens(tokens []string) uint64 {
	h := xxhash.New()
	for _, t := range tokens {
		h.Write([]byte(t))
		h.Write([]byte{0})
	}
	return h.Sum64()
}

func shingles(tokens []string, k int) map[uint64]bool {
	set := make(map[uint64]bool)
	if len(tokens) < k {
		if len(tokens) > 0 {
			set[hashTokens(tokens)] = true
		}
		return set
	}
	for i := 0; i+k <= len(tokens); i++ {
		set[hashTokens(tokens[i:i+k])] = true
	}
	return set
}

// minHashSignature computes the standard k-min-values MinHash sketch: for
// each of minHashSize independent hash functions (simulated by mixing a
// per-slot seed into xxhash), the signature slot is the minimum hash value
// over every shingle in the set.
func minHashSignature(set map[uint64]bool) [minHashSize]uint64 {
	var sig [minHashSize]uint64
	for i := range sig {
		sig[i] = ^uint64(0)
	}
	if len(set) == 0 {
		return sig
	}
	var buf [16]byte
	for shingle := range set {
		binary.LittleEndian.PutUint64(buf[8:], shingle)
		for i := 0; i < minHashSize; i++ {
			binary.LittleEndian.PutUint64(buf[:8], uint64(i))
			v := xxhash.Sum64(buf[:])
			if v < sig[i] {
				sig[i] = v
			}
		}
	}
	return sig
}
