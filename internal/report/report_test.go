package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"codescope/internal/analyze"
	"codescope/internal/astcore"
	"codescope/internal/correlate"
	"codescope/internal/reduce"
	"codescope/internal/refgraph"
)

func sampleInput() Input {
	files := []FileReport{
		{
			Path:     "b.go",
			Language: "Go",
			Findings: []Finding{
				{RuleID: RuleComplexity, Severity: "High", LineStart: 10, ColStart: 1, Message: "cyclomatic complexity 25"},
				{RuleID: RuleDebt, Severity: "Medium", LineStart: 2, ColStart: 1, Message: "TODO: refactor this"},
			},
		},
		{
			Path:     "a.go",
			Language: "Go",
			Findings: []Finding{
				{RuleID: RuleDeadCode, Severity: "Low", LineStart: 5, ColStart: 3, Message: "unused function"},
			},
		},
	}

	hotspots := []correlate.Hotspot{
		{File: astcore.FileId{Path: "a.go"}, StartLine: 5, EndLine: 8, Score: 3.5,
			Factors: []correlate.Factor{{Kind: correlate.FactorDeadCode, DeadCodeConfidence: analyze.ConfidenceHigh}}},
		{File: astcore.FileId{Path: "b.go"}, StartLine: 10, EndLine: 20, Score: 7.2,
			Factors: []correlate.Factor{{Kind: correlate.FactorComplexity, Cyclomatic: 25, Cognitive: 18}}},
	}

	graph := reduce.ReducedGraph{
		Vertices: []reduce.Vertex{{ID: "a_go", Label: "a.go"}, {ID: "b_go", Label: "b.go"}},
		Edges:    []reduce.ReducedEdge{{From: "b_go", To: "a_go", Type: refgraph.EdgeCalls}},
	}

	return Input{
		Files:    files,
		Hotspots: hotspots,
		Graph:    graph,
		Diagram:  reduce.EmitMermaid(graph),
		Duration: 42 * time.Millisecond,
		Warnings: []Warning{{Kind: ErrUnreadable, Path: "c.go", Message: "permission denied"}},
	}
}

func TestAssembleSortsFilesHotspotsAndFindings(t *testing.T) {
	r := Assemble(sampleInput())

	if r.Files[0].Path != "a.go" || r.Files[1].Path != "b.go" {
		t.Fatalf("expected files sorted by path, got %v", []string{r.Files[0].Path, r.Files[1].Path})
	}
	if r.Hotspots[0].Path != "b.go" {
		t.Fatalf("expected highest composite score first, got %+v", r.Hotspots)
	}
	bFindings := r.Files[1].Findings
	if len(bFindings) != 2 || bFindings[0].LineStart != 2 || bFindings[1].LineStart != 10 {
		t.Fatalf("expected findings sorted by line, got %+v", bFindings)
	}
}

func TestAssembleIsDeterministicAcrossRuns(t *testing.T) {
	in := sampleInput()
	r1 := Assemble(in)
	r2 := Assemble(in)

	// RunID is intentionally unique per call; zero it before comparing the
	// rest of the shape for byte-identical JSON.
	r1.RunID, r2.RunID = "", ""

	b1, err := JSON(r1)
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	b2, err := JSON(r2)
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if string(b1) != string(b2) {
		t.Fatalf("expected byte-identical JSON across runs:\n%s\n---\n%s", b1, b2)
	}
}

func TestJSONRoundTripsFixedSchemaFields(t *testing.T) {
	r := Assemble(sampleInput())
	data, err := JSON(r)
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"schema_version", "generated_at", "duration_ms", "project_health", "files", "hotspots", "graph", "diagram", "warnings"} {
		if _, ok := doc[key]; !ok {
			t.Fatalf("expected top-level key %q in JSON report", key)
		}
	}
}

func TestSARIFDeclaresOneRulePerDistinctFindingKind(t *testing.T) {
	r := Assemble(sampleInput())
	data, err := SARIF(r)
	if err != nil {
		t.Fatalf("SARIF: %v", err)
	}

	var log sarifLog
	if err := json.Unmarshal(data, &log); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if log.Version != "2.1.0" {
		t.Fatalf("expected SARIF version 2.1.0, got %s", log.Version)
	}
	rules := log.Runs[0].Tool.Driver.Rules
	if len(rules) != 3 {
		t.Fatalf("expected 3 distinct rule ids (complexity, debt, deadcode), got %d: %+v", len(rules), rules)
	}
	if len(log.Runs[0].Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(log.Runs[0].Results))
	}
}

func TestMarkdownSectionsAppearInFixedOrder(t *testing.T) {
	r := Assemble(sampleInput())
	md := Markdown(r)

	summary := strings.Index(md, "# Analysis Summary")
	hotspots := strings.Index(md, "## Hotspots")
	findings := strings.Index(md, "## Per-file Findings")
	diagram := strings.Index(md, "## Diagram")

	if summary < 0 || hotspots < 0 || findings < 0 || diagram < 0 {
		t.Fatalf("missing a required section in markdown output:\n%s", md)
	}
	if !(summary < hotspots && hotspots < findings && findings < diagram) {
		t.Fatalf("expected Summary < Hotspots < Findings < Diagram, got offsets %d %d %d %d", summary, hotspots, findings, diagram)
	}
}

func TestMarkdownOmitsDiagramSectionWhenNotRequested(t *testing.T) {
	in := sampleInput()
	in.Diagram = ""
	r := Assemble(in)
	md := Markdown(r)

	if strings.Contains(md, "## Diagram") {
		t.Fatal("expected no Diagram section when no diagram was requested")
	}
}

func TestWarningsSectionListsNonFatalIssues(t *testing.T) {
	r := Assemble(sampleInput())
	md := Markdown(r)

	if !strings.Contains(md, "Unreadable") || !strings.Contains(md, "c.go") {
		t.Fatalf("expected the unreadable-file warning to appear in markdown output:\n%s", md)
	}
	if len(r.Warnings) != 1 || r.Warnings[0].Kind != ErrUnreadable {
		t.Fatalf("expected one Unreadable warning, got %+v", r.Warnings)
	}
}

func TestFatalCancelledErrorSurfacesInReport(t *testing.T) {
	in := sampleInput()
	in.FatalErr = Cancelled("deadline exceeded before all files finished")
	r := Assemble(in)

	if r.Error == nil || r.Error.Kind != ErrCancelled {
		t.Fatalf("expected a Cancelled fatal error on the report, got %+v", r.Error)
	}
	if !ErrCancelled.Fatal() {
		t.Fatal("expected Cancelled to be classified fatal")
	}
	md := Markdown(r)
	if !strings.Contains(md, "Fatal error") {
		t.Fatalf("expected markdown summary to call out the fatal error:\n%s", md)
	}
}

func TestNonFatalErrorKindsAreNotClassifiedFatal(t *testing.T) {
	for _, k := range []ErrorKind{ErrUnreadable, ErrParseError, ErrAnalysisTimeout, ErrCacheCorrupted} {
		if k.Fatal() {
			t.Fatalf("expected %s to be non-fatal", k)
		}
	}
}

func TestGeneratedAtOmittedForReproducibleReport(t *testing.T) {
	r := Assemble(sampleInput())
	if r.GeneratedAt != nil {
		t.Fatal("expected a nil-Timestamp Input to omit generated_at")
	}

	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	in := sampleInput()
	in.Timestamp = &ts
	r2 := Assemble(in)
	if r2.GeneratedAt == nil || !strings.HasPrefix(*r2.GeneratedAt, "2026-01-02T03:04:05") {
		t.Fatalf("expected generated_at to reflect the supplied timestamp, got %v", r2.GeneratedAt)
	}
}
