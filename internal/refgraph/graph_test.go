package refgraph

import (
	"context"
	"testing"

	"codescope/internal/astcore"
	"codescope/internal/langs"
)

func parseGo(t *testing.T, store *astcore.Store, path, src string) astcore.NodeID {
	t.Helper()
	r := langs.NewRegistry()
	defer r.Close()
	p := r.For(astcore.LangGo)
	file := astcore.FileId{Path: path, Fingerprint: astcore.FingerprintBytes([]byte(src))}
	id, parseErr, err := p.Parse(context.Background(), store, file, []byte(src))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if parseErr != nil {
		t.Fatalf("unexpected syntax error: %v", parseErr)
	}
	return id
}

func TestResolveCallsWithinOneFile(t *testing.T) {
	store := astcore.NewStore()
	parseGo(t, store, "a.go", `package a

func helper() int {
	return 1
}

func caller() int {
	return helper()
}
`)

	g := Build(store)

	var helperFn astcore.NodeID
	var haveCaller, haveHelper bool
	for _, n := range store.All() {
		if n.Kind == astcore.KindFunction && n.Payload.Name == "caller" {
			haveCaller = true
		}
		if n.Kind == astcore.KindFunction && n.Payload.Name == "helper" {
			helperFn = n.ID
			haveHelper = true
		}
	}
	if !haveCaller || !haveHelper {
		t.Fatal("expected to find both caller and helper functions")
	}

	found := false
	for _, e := range g.Edges() {
		if e.Type == EdgeCalls && e.To == helperFn {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a Calls edge targeting helper")
	}
}

func TestRPOIsDeterministicOrder(t *testing.T) {
	store := astcore.NewStore()
	parseGo(t, store, "a.go", `package a

func helper() int {
	return 1
}

func caller() int {
	return helper()
}
`)

	g1 := Build(store)
	g2 := Build(store)

	if len(g1.RPOOrder()) == 0 {
		t.Fatal("expected a non-empty RPO order")
	}
	if len(g1.RPOOrder()) != len(g2.RPOOrder()) {
		t.Fatalf("expected RPO computation to be deterministic across runs over the same store: %d vs %d", len(g1.RPOOrder()), len(g2.RPOOrder()))
	}
	for i := range g1.RPOOrder() {
		if g1.RPOOrder()[i] != g2.RPOOrder()[i] {
			t.Fatalf("RPO order diverged at index %d: %v vs %v", i, g1.RPOOrder()[i], g2.RPOOrder()[i])
		}
	}
}

func TestUnresolvedCallGetsUnresolvedSentinel(t *testing.T) {
	store := astcore.NewStore()
	parseGo(t, store, "a.go", `package a

func caller() {
	doesNotExistAnywhereElse()
}
`)

	g := Build(store)

	found := false
	for _, e := range g.Edges() {
		if e.Type == EdgeCalls && e.To == astcore.Unresolved {
			found = true
		}
	}
	if !found {
		t.Fatal("expected an unresolved call to target the Unresolved sentinel")
	}
}
