package analyze

import (
	"testing"

	"codescope/internal/refgraph"
)

func TestDuplicationFindsType1ExactClones(t *testing.T) {
	store := parseGoFixture(t, `package f

func plainA() int {
	x := 1
	return x
}

func plainB() int {
	x := 1
	return x
}

func different() int {
	return 99
}
`)
	st := refgraph.BuildSymbolTables(store)
	groups := Duplication(store, st)

	var found bool
	for _, g := range groups {
		if g.Type == CloneType1 && len(g.Members) >= 1 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a Type-1 clone group from identical bodies, got %+v", groups)
	}
}

func TestDuplicationFindsType2RenamedClones(t *testing.T) {
	store := parseGoFixture(t, `package f

func addA(a int, b int) int {
	return a + b
}

func addB(x int, y int) int {
	return x + y
}

func unrelated() string {
	return "no relation to the others at all"
}
`)
	st := refgraph.BuildSymbolTables(store)
	groups := Duplication(store, st)

	addAID := findFunction(t, store, "addA")
	addBID := findFunction(t, store, "addB")

	var group *CloneGroup
	for i := range groups {
		if groups[i].Type != CloneType2 {
			continue
		}
		hasA, hasB := false, false
		for _, m := range groups[i].Members {
			if m == addAID {
				hasA = true
			}
			if m == addBID {
				hasB = true
			}
		}
		if hasA && hasB {
			group = &groups[i]
		}
	}
	if group == nil {
		t.Fatalf("expected addA and addB in the same Type-2 clone group, got %+v", groups)
	}
	if group.Similarity != 1.0 {
		t.Fatalf("expected Type-2 alpha-equivalence to report similarity 1.0, got %f", group.Similarity)
	}
}

func TestDuplicationDoesNotGroupDissimilarFunctions(t *testing.T) {
	store := parseGoFixture(t, `package f

func computeSomething(a int, b int) int {
	total := 0
	for i := 0; i < a; i++ {
		total += b
	}
	return total
}

func formatGreeting(name string) string {
	return "hello, " + name
}
`)
	st := refgraph.BuildSymbolTables(store)
	groups := Duplication(store, st)

	computeID := findFunction(t, store, "computeSomething")
	formatID := findFunction(t, store, "formatGreeting")

	for _, g := range groups {
		seenCompute, seenFormat := false, false
		for _, m := range g.Members {
			if m == computeID {
				seenCompute = true
			}
			if m == formatID {
				seenFormat = true
			}
		}
		if seenCompute && seenFormat {
			t.Fatalf("expected unrelated functions not to share a clone group, got %+v", g)
		}
	}
}
