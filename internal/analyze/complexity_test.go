package analyze

import (
	"context"
	"testing"

	"codescope/internal/astcore"
	"codescope/internal/config"
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

func TestComplexitySimpleFunctionIsOne(t *testing.T) {
	store := parseGoFixture(t, `package f

func plain() int {
	return 1
}
`)
	results := Complexity(store)
	if len(results) != 1 {
		t.Fatalf("expected 1 function, got %d", len(results))
	}
	if results[0].Cyclomatic != 1 || results[0].Cognitive != 0 {
		t.Fatalf("expected cyclomatic=1 cognitive=0, got %+v", results[0])
	}
}

func TestComplexityCountsEachBranchingConstruct(t *testing.T) {
	store := parseGoFixture(t, `package f

func branchy(x int) int {
	if x > 0 {
		return 1
	}
	if x < 0 {
		return -1
	}
	return 0
}
`)
	fn := findFunction(t, store, "branchy")
	var r ComplexityResult
	for _, res := range Complexity(store) {
		if res.Node == fn {
			r = res
		}
	}
	if r.Cyclomatic != 3 {
		t.Fatalf("expected cyclomatic 1+2 ifs = 3, got %d", r.Cyclomatic)
	}
}

func TestComplexityExcludesNestedFunctionBranches(t *testing.T) {
	store := parseGoFixture(t, `package f

func outer() int {
	if true {
		return 1
	}
	inner := func() int {
		if true {
			return 2
		}
		return 0
	}
	return inner()
}
`)
	outer := findFunction(t, store, "outer")
	var r ComplexityResult
	for _, res := range Complexity(store) {
		if res.Node == outer {
			r = res
		}
	}
	if r.Cyclomatic != 2 {
		t.Fatalf("expected outer's cyclomatic to exclude the closure's if, got %d", r.Cyclomatic)
	}
}

func TestCognitiveWeighsNesting(t *testing.T) {
	store := parseGoFixture(t, `package f

func nested(x int) int {
	if x > 0 {
		if x > 10 {
			return 2
		}
	}
	return 0
}
`)
	fn := findFunction(t, store, "nested")
	var r ComplexityResult
	for _, res := range Complexity(store) {
		if res.Node == fn {
			r = res
		}
	}
	// outer if: depth 0 contributes 1; inner if: depth 1 contributes 2.
	if r.Cognitive != 3 {
		t.Fatalf("expected cognitive 1+2=3, got %d", r.Cognitive)
	}
	if r.Cognitive < r.Cyclomatic-1 {
		t.Fatalf("invariant violated: cognitive(%d) < cyclomatic(%d)-1", r.Cognitive, r.Cyclomatic)
	}
}

func TestComplexityViolationsRespectThresholds(t *testing.T) {
	results := []ComplexityResult{
		{Node: 1, Cyclomatic: 5, Cognitive: 3},
		{Node: 2, Cyclomatic: 25, Cognitive: 10},
		{Node: 3, Cyclomatic: 35, Cognitive: 40},
	}
	violations := ComplexityViolations(results, config.DefaultThresholds())
	if len(violations) != 2 {
		t.Fatalf("expected 2 violations, got %d", len(violations))
	}
	if violations[0].Level != "warn" {
		t.Errorf("expected node 2 to warn, got %s", violations[0].Level)
	}
	if violations[1].Level != "error" {
		t.Errorf("expected node 3 to error, got %s", violations[1].Level)
	}
}
