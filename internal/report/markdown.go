package report

import (
	"fmt"
	"strings"
)

// Markdown renders r in the fixed section order: Summary, Warnings (only
// when r has warnings), Hotspots, Per-file findings, Diagram (only when
// r.Diagram is non-nil). Section
// bodies are built from already-sorted data, so two Markdown calls over
// the same report produce identical text.
func Markdown(r *AnalysisReport) string {
	var b strings.Builder

	writeSummary(&b, r)
	writeWarnings(&b, r)
	writeHotspots(&b, r)
	writeFindings(&b, r)
	if r.Diagram != nil {
		b.WriteString("\n## Diagram\n\n")
		b.WriteString(*r.Diagram)
	}

	return b.String()
}

func writeSummary(b *strings.Builder, r *AnalysisReport) {
	b.WriteString("# Analysis Summary\n\n")
	fmt.Fprintf(b, "- Schema version: %s\n", r.SchemaVersion)
	fmt.Fprintf(b, "- Run: %s\n", r.RunID)
	fmt.Fprintf(b, "- Duration: %d ms\n", r.DurationMS)
	fmt.Fprintf(b, "- Overall health score: %.2f\n", r.ProjectHealth.OverallScore)
	fmt.Fprintf(b, "- Defect density: %.2f\n", r.ProjectHealth.DefectDensity)
	fmt.Fprintf(b, "- Estimated technical debt: %.2f hours\n", r.ProjectHealth.TechDebtHours)
	fmt.Fprintf(b, "- Files analyzed: %d\n", len(r.Files))
	if r.Error != nil {
		fmt.Fprintf(b, "- **Fatal error**: %s\n", r.Error.Error())
	}
}

func writeHotspots(b *strings.Builder, r *AnalysisReport) {
	b.WriteString("\n## Hotspots\n\n")
	if len(r.Hotspots) == 0 {
		b.WriteString("No hotspots found.\n")
		return
	}
	b.WriteString("| Path | Lines | Score | Factors |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, h := range r.Hotspots {
		fmt.Fprintf(b, "| %s | %d-%d | %.2f | %s |\n",
			h.Path, h.LineStart, h.LineEnd, h.CompositeScore, strings.Join(h.Factors, ", "))
	}
}

func writeFindings(b *strings.Builder, r *AnalysisReport) {
	b.WriteString("\n## Per-file Findings\n")
	for _, f := range r.Files {
		if len(f.Findings) == 0 {
			continue
		}
		fmt.Fprintf(b, "\n### %s (%s)\n\n", f.Path, f.Language)
		for _, fi := range f.Findings {
			fmt.Fprintf(b, "- [%s] L%d:%d %s (%s)\n", fi.RuleID, fi.LineStart, fi.ColStart, fi.Message, fi.Severity)
		}
	}
}

func writeWarnings(b *strings.Builder, r *AnalysisReport) {
	if len(r.Warnings) == 0 {
		return
	}
	b.WriteString("\n## Warnings\n\n")
	for _, w := range r.Warnings {
		if w.Path != "" {
			fmt.Fprintf(b, "- [%s] %s: %s\n", w.Kind, w.Path, w.Message)
		} else {
			fmt.Fprintf(b, "- [%s] %s\n", w.Kind, w.Message)
		}
	}
}
