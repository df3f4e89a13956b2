package reduce

import (
	"context"
	"testing"

	"codescope/internal/astcore"
	"codescope/internal/langs"
	"codescope/internal/refgraph"
)

func parseGo(t *testing.T, store *astcore.Store, path, src string) {
	t.Helper()
	r := langs.NewRegistry()
	defer r.Close()
	p := r.For(astcore.LangGo)
	file := astcore.FileId{Path: path, Fingerprint: astcore.FingerprintBytes([]byte(src))}
	_, parseErr, err := p.Parse(context.Background(), store, file, []byte(src))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if parseErr != nil {
		t.Fatalf("unexpected syntax error: %v", parseErr)
	}
}

func threeFileStore(t *testing.T) *astcore.Store {
	store := astcore.NewStore()
	parseGo(t, store, "a.go", `package a

func A() int {
	return B()
}
`)
	parseGo(t, store, "b.go", `package b

func B() int {
	return C()
}
`)
	parseGo(t, store, "c.go", `package c

func C() int {
	return 1
}
`)
	return store
}

func TestReduceKeepsHighestWeightedGroupsWithinBudget(t *testing.T) {
	store := threeFileStore(t)
	g := refgraph.Build(store)

	rg := Reduce(g, 2, 400)
	if len(rg.Vertices) > 2 {
		t.Fatalf("expected at most 2 vertices, got %d", len(rg.Vertices))
	}
}

func TestReduceIsDeterministicAcrossRuns(t *testing.T) {
	store := threeFileStore(t)
	g := refgraph.Build(store)

	first := EmitMermaid(Reduce(g, 20, 400))
	second := EmitMermaid(Reduce(g, 20, 400))
	if first != second {
		t.Fatalf("expected byte-identical diagrams across runs, got:\n%s\n---\n%s", first, second)
	}
}

func TestReducePrunesOrphanedVertexWithNoSurvivingEdges(t *testing.T) {
	store := threeFileStore(t)
	g := refgraph.Build(store)

	// A single surviving group can never have a surviving edge (self-loops
	// are excluded as intra-module), so it must be pruned as orphaned.
	rg := Reduce(g, 1, 400)
	if len(rg.Edges) != 0 {
		t.Fatalf("expected no edges when only one group survives, got %d", len(rg.Edges))
	}
	if len(rg.Vertices) != 0 {
		t.Fatalf("expected the lone surviving group to be pruned as orphaned, got %d vertices", len(rg.Vertices))
	}
}

func TestReduceEmitsEdgesInEdgeTypePriorityOrder(t *testing.T) {
	store := astcore.NewStore()
	parseGo(t, store, "caller.go", `package caller

type T struct{}

func (t T) Do() int {
	return 1
}
`)
	parseGo(t, store, "iface.go", `package iface

type Doer interface {
	Do() int
}
`)
	g := refgraph.Build(store)

	rg := Reduce(g, 20, 400)
	for i := 1; i < len(rg.Edges); i++ {
		if rg.Edges[i-1].Type > rg.Edges[i].Type {
			t.Fatalf("edges not in ascending EdgeType priority order at index %d: %v then %v", i, rg.Edges[i-1].Type, rg.Edges[i].Type)
		}
	}
}

func TestReduceLabelsVertexFromPathWhenNoModuleDisplayName(t *testing.T) {
	store := astcore.NewStore()
	parseGo(t, store, "src/pkg/widget.go", `package widget

func Make() int {
	return 1
}
`)
	g := refgraph.Build(store)

	rg := Reduce(g, 20, 400)
	for _, v := range rg.Vertices {
		if v.Label == "" {
			t.Fatalf("expected a non-empty label for vertex %s", v.ID)
		}
	}
}
