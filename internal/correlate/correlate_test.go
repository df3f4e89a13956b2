package correlate

import (
	"context"
	"testing"

	"codescope/internal/analyze"
	"codescope/internal/astcore"
	"codescope/internal/langs"
)

func parseGoFixture(t *testing.T, src string) *astcore.Store {
	t.Helper()
	store := astcore.NewStore()
	r := langs.NewRegistry()
	defer r.Close()
	p := r.For(astcore.LangGo)
	file := astcore.FileId{Path: "fixture.go", Fingerprint: astcore.FingerprintBytes([]byte(src))}
	_, parseErr, err := p.Parse(context.Background(), store, file, []byte(src))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if parseErr != nil {
		t.Fatalf("unexpected syntax error: %v", parseErr)
	}
	return store
}

func findFunction(t *testing.T, store *astcore.Store, name string) astcore.NodeID {
	t.Helper()
	for _, n := range store.All() {
		if n.Kind == astcore.KindFunction && n.Payload.Name == name {
			return n.ID
		}
	}
	t.Fatalf("function %q not found", name)
	return astcore.Unresolved
}

func TestCorrelateScoresFlaggedNodeHigherThanClean(t *testing.T) {
	store := parseGoFixture(t, `package f

func messy(x int) int {
	// FIXME: this branch is untested
	if x > 0 {
		if x > 10 {
			if x > 100 {
				return 3
			}
		}
	}
	return 0
}

func clean() int {
	return 1
}
`)
	messy := findFunction(t, store, "messy")
	clean := findFunction(t, store, "clean")

	findings := Findings{
		DeadCode:   []analyze.DeadCodeFinding{{Node: messy, Reason: analyze.ReasonUnusedFunction, Confidence: analyze.ConfidenceHigh}},
		SATD:       analyze.SATD(store, analyze.Complexity(store)),
		Complexity: analyze.Complexity(store),
	}
	hotspots := Correlate(store, findings)

	byNode := map[astcore.NodeID]Hotspot{}
	for _, h := range hotspots {
		byNode[h.Node] = h
	}
	if _, ok := byNode[clean]; ok {
		t.Fatalf("expected clean() to have no hotspot entry, got %+v", byNode[clean])
	}
	messyHotspot, ok := byNode[messy]
	if !ok {
		t.Fatal("expected messy() to be reported as a hotspot")
	}
	if messyHotspot.Score <= 0 {
		t.Fatalf("expected a positive composite score, got %f", messyHotspot.Score)
	}
}

func TestCorrelateOrdersByDescendingScore(t *testing.T) {
	store := parseGoFixture(t, `package f

func worst(x int) int {
	if x > 0 {
		if x > 1 {
			return 1
		}
	}
	return 0
}

func mild(x int) int {
	if x > 0 {
		return 1
	}
	return 0
}
`)
	worst := findFunction(t, store, "worst")
	mild := findFunction(t, store, "mild")

	findings := Findings{
		DeadCode: []analyze.DeadCodeFinding{
			{Node: worst, Reason: analyze.ReasonUnusedFunction, Confidence: analyze.ConfidenceHigh},
			{Node: mild, Reason: analyze.ReasonUnusedFunction, Confidence: analyze.ConfidenceLow},
		},
		Complexity: analyze.Complexity(store),
	}
	hotspots := Correlate(store, findings)
	if len(hotspots) != 2 {
		t.Fatalf("expected 2 hotspots, got %d", len(hotspots))
	}
	if hotspots[0].Node != worst {
		t.Fatalf("expected worst() to rank first, got node %v first", hotspots[0].Node)
	}
}

func TestCorrelateAttachesChurnRiskFactorOnlyToAlreadyFlaggedNodes(t *testing.T) {
	store := parseGoFixture(t, `package f

func flagged() int {
	return 1
}
`)
	flagged := findFunction(t, store, "flagged")

	findings := Findings{
		DeadCode: []analyze.DeadCodeFinding{{Node: flagged, Reason: analyze.ReasonUnusedFunction, Confidence: analyze.ConfidenceHigh}},
		Churn: []analyze.ChurnResult{
			{Path: "fixture.go", CommitCount: 10, AuthorCount: 3, RecencyScore: 5.0},
		},
	}
	hotspots := Correlate(store, findings)
	if len(hotspots) != 1 {
		t.Fatalf("expected 1 hotspot, got %d", len(hotspots))
	}
	var sawChurn bool
	for _, f := range hotspots[0].Factors {
		if f.Kind == FactorChurnRisk {
			sawChurn = true
			if f.CommitCount != 10 || f.AuthorCount != 3 {
				t.Fatalf("expected churn factor to carry commit/author counts, got %+v", f)
			}
		}
	}
	if !sawChurn {
		t.Fatal("expected a ChurnRisk factor attached to the already-flagged node")
	}
}
