package astcore

import "testing"

func TestStoreHashConsIdentity(t *testing.T) {
	s := NewStore()

	leaf := Node{Kind: KindIdentifier, Payload: Payload{Name: "$0"}}
	leafHash := Canonical(leaf.Kind, leaf.Flags, leaf.Payload, nil)

	id1, existed1 := s.Insert(leaf, leafHash)
	if existed1 {
		t.Fatalf("first insert should not report existing")
	}

	id2, existed2 := s.Insert(leaf, leafHash)
	if !existed2 {
		t.Fatalf("structurally identical insert should dedup")
	}
	if id1 != id2 {
		t.Fatalf("expected shared node id, got %d and %d", id1, id2)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 distinct node, got %d", s.Len())
	}
}

func TestStoreDistinctSubtreesGetDistinctIDs(t *testing.T) {
	s := NewStore()

	a := Node{Kind: KindFunction, Payload: Payload{Name: "foo"}}
	b := Node{Kind: KindFunction, Payload: Payload{Name: "bar"}}

	// Function payload does not participate in the canonical hash (only
	// Import/Call/Literal/Identifier do), so these two *would* collapse if
	// they had identical children. Give them children to differentiate.
	childA := Canonical(KindIdentifier, 0, Payload{Name: "$0"}, nil)
	childB := Canonical(KindIdentifier, 0, Payload{Name: "$0", CalleeRef: "x"}, nil)

	hashA := Canonical(a.Kind, a.Flags, a.Payload, []CanonicalHash{childA})
	hashB := Canonical(b.Kind, b.Flags, b.Payload, []CanonicalHash{childB})

	idA, _ := s.Insert(a, hashA)
	idB, _ := s.Insert(b, hashB)

	if idA == idB {
		t.Fatalf("structurally distinct subtrees must not share an id")
	}
}

func TestAlphaRenamedIdentifiersCanonicalizeIdentically(t *testing.T) {
	// Two identifiers with different names canonicalize to the same hash
	// once AlphaRename has replaced both with the same positional placeholder.
	bodyX := Canonical(KindIdentifier, 0, Payload{Name: AlphaRename("x", 0)}, nil)
	bodyY := Canonical(KindIdentifier, 0, Payload{Name: AlphaRename("y", 0)}, nil)

	if bodyX != bodyY {
		t.Fatalf("alpha-renamed identifiers at the same position must canonicalize identically")
	}
}
