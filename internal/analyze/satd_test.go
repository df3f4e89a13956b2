package analyze

import (
	"testing"
)

func TestSATDCategorizesSeverityMarkers(t *testing.T) {
	store := parseGoFixture(t, `package a

// TODO: wire up retries
func plain() {}

// FIXME: this panics on nil input
func defective() {}

// SECURITY: validate input before use here
func validateInput() {}
`)
	findings := SATD(store, Complexity(store))
	byCategory := map[SATDCategory]SATDFinding{}
	for _, f := range findings {
		byCategory[f.Category] = f
	}

	req, ok := byCategory[CategoryRequirement]
	if !ok || req.Severity != SeverityLow {
		t.Fatalf("expected a Low severity Requirement finding, got %+v", byCategory)
	}
	def, ok := byCategory[CategoryDefect]
	if !ok || def.Severity != SeverityHigh {
		t.Fatalf("expected a High severity Defect finding, got %+v", byCategory)
	}
	sec, ok := byCategory[CategorySecurity]
	if !ok {
		t.Fatal("expected a Security finding")
	}
	if sec.Severity != SeverityCritical {
		t.Fatalf("expected Security finding to stay Critical (clamped at the scale's end), got %s", sec.Severity)
	}
}

func TestSATDDemotesSeverityInsideTestFunctions(t *testing.T) {
	store := parseGoFixture(t, `package a

func TestFoo(t *T) {
	// FIXME: flaky under -race
	doWork()
}

func doWork() {}
`)
	findings := SATD(store, Complexity(store))
	if len(findings) != 1 {
		t.Fatalf("expected exactly 1 finding, got %d", len(findings))
	}
	if findings[0].Severity != SeverityMedium {
		t.Fatalf("expected High demoted to Medium inside a test function, got %s", findings[0].Severity)
	}
}

func TestSATDSkipsBugTrackingReferences(t *testing.T) {
	store := parseGoFixture(t, `package a

// See BUG-104: tracked separately, already fixed upstream
func fine() {}
`)
	findings := SATD(store, Complexity(store))
	for _, f := range findings {
		if f.Category == CategoryDefect {
			t.Fatalf("bug-tracking ID reference should not be classified as live debt: %+v", f)
		}
	}
}

func TestSATDAttachesEnclosingContextHash(t *testing.T) {
	store := parseGoFixture(t, `package a

func withDebt() {
	// HACK: rewrite once the upstream API stabilizes
	return
}
`)
	findings := SATD(store, Complexity(store))
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	fn := findFunction(t, store, "withDebt")
	fnNode, ok := store.Get(fn)
	if !ok {
		t.Fatal("expected to resolve withDebt node")
	}
	if findings[0].ContextHash != fnNode.ContextHash {
		t.Fatalf("expected SATD finding's ContextHash to match its enclosing function's")
	}
	if findings[0].Enclosing != fn {
		t.Fatalf("expected Enclosing to be withDebt's node id")
	}
}
