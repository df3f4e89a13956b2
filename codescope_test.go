package codescope

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"codescope/internal/report"
)

func writeProjectFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

const sampleGoSource = `package sample

// TODO: this loop is quadratic, fix before it hits production data
func bubbleSort(xs []int) {
	for i := 0; i < len(xs); i++ {
		for j := 0; j < len(xs)-i-1; j++ {
			if xs[j] > xs[j+1] {
				xs[j], xs[j+1] = xs[j+1], xs[j]
			}
		}
	}
}

func unused() int {
	return 1
}
`

func TestAnalyzeHappyPathProducesJSONReport(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, "sample.go", sampleGoSource)

	rep, err := Analyze(context.Background(), AnalysisRequest{
		ProjectPath:  dir,
		OutputFormat: FormatJSON,
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if rep.Error != nil {
		t.Fatalf("unexpected fatal error on report: %+v", rep.Error)
	}
	if len(rep.Rendered) == 0 {
		t.Fatal("expected non-empty rendered output")
	}
	if len(rep.Files) != 1 || rep.Files[0].Path == "" {
		t.Fatalf("expected one analyzed file, got %+v", rep.Files)
	}
}

func TestAnalyzeSARIFAndMarkdownFormats(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, "sample.go", sampleGoSource)

	for _, format := range []OutputFormat{FormatSARIF, FormatMarkdown} {
		rep, err := Analyze(context.Background(), AnalysisRequest{ProjectPath: dir, OutputFormat: format})
		if err != nil {
			t.Fatalf("Analyze(%v): %v", format, err)
		}
		if len(rep.Rendered) == 0 {
			t.Fatalf("format %v: expected non-empty rendered output", format)
		}
	}
}

func TestAnalyzeRejectsUnknownAnalyzer(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, "sample.go", sampleGoSource)

	rep, err := Analyze(context.Background(), AnalysisRequest{
		ProjectPath:      dir,
		EnabledAnalyzers: []string{"nonexistent"},
	})
	if err == nil {
		t.Fatal("expected an error for an unknown analyzer name")
	}
	if rep.Error == nil || rep.Error.Kind != report.ErrInvalidConfig {
		t.Fatalf("expected InvalidConfig fatal error, got %+v", rep.Error)
	}
}

func TestAnalyzeFailsOnMissingProjectPath(t *testing.T) {
	rep, err := Analyze(context.Background(), AnalysisRequest{
		ProjectPath: filepath.Join(t.TempDir(), "does-not-exist"),
	})
	if err == nil {
		t.Fatal("expected an error for a nonexistent project path")
	}
	if rep.Error == nil {
		t.Fatalf("expected a fatal error attached to the report, got nil")
	}
}

func TestAnalyzeRequiresProjectPath(t *testing.T) {
	_, err := Analyze(context.Background(), AnalysisRequest{})
	if err == nil {
		t.Fatal("expected an error when ProjectPath is empty")
	}
}

// generateLargeGoSource builds a source file big enough that tree-sitter
// parsing takes long enough to still be running when a short deadline
// elapses, while discovery's directory walk (which only stats the one
// file) finishes well before it.
func generateLargeGoSource(functions int) string {
	var b strings.Builder
	b.WriteString("package sample\n\n")
	for i := 0; i < functions; i++ {
		fmt.Fprintf(&b, "func f%d(x int) int {\n\tif x > %d {\n\t\treturn x - 1\n\t}\n\treturn x + 1\n}\n\n", i, i)
	}
	return b.String()
}

func TestAnalyzeCancellationStillReportsDiscoveredFiles(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, "big.go", generateLargeGoSource(20000))

	rep, err := Analyze(context.Background(), AnalysisRequest{
		ProjectPath: dir,
		Deadline:    3 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected a cancellation error from a deadline too short to finish parsing a large file")
	}
	if rep == nil || rep.Error == nil || rep.Error.Kind != report.ErrCancelled {
		t.Fatalf("expected a Cancelled fatal error on the report, got %+v", rep)
	}
	if len(rep.Files) != 1 || rep.Files[0].Path == "" {
		t.Fatalf("expected the already-discovered file to survive into the partial report, got %+v", rep.Files)
	}
}

func TestAnalyzeRespectsEnabledAnalyzersSubset(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, "sample.go", sampleGoSource)

	rep, err := Analyze(context.Background(), AnalysisRequest{
		ProjectPath:      dir,
		EnabledAnalyzers: []string{"deadcode"},
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	for _, f := range rep.Files {
		for _, finding := range f.Findings {
			if finding.RuleID != "DEAD001" {
				t.Fatalf("expected only deadcode findings when only that analyzer is enabled, got %s", finding.RuleID)
			}
		}
	}
}
