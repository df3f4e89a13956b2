package report

import (
	"fmt"
	"math"
	"sort"
	"time"

	"codescope/internal/analyze"
	"codescope/internal/correlate"
	"codescope/internal/reduce"

	"github.com/google/uuid"
)

// debtHoursBySeverity estimates remediation effort for a self-admitted
// technical-debt comment from its escalated severity, the same coarse
// low/medium/high/critical scale the SATD analyzer already reports on.
var debtHoursBySeverity = map[analyze.Severity]float64{
	analyze.SeverityLow:      0.5,
	analyze.SeverityMedium:   1,
	analyze.SeverityHigh:     2,
	analyze.SeverityCritical: 4,
}

// Input is everything Assemble needs to build an AnalysisReport. Callers
// (the root orchestrator) are responsible for turning analyzer-specific
// result slices into Files before calling Assemble; Assemble itself only
// sorts, scores, and shapes.
type Input struct {
	Files     []FileReport
	Hotspots  []correlate.Hotspot
	Graph     reduce.ReducedGraph
	Diagram   string // empty means no diagram was requested
	Duration  time.Duration
	Warnings  []Warning
	FatalErr  *AnalysisError
	Timestamp *time.Time // nil for a reproducible, timestamp-free report
}

const schemaVersion = "1.0"

// Assemble sorts and scores in's pieces into the fixed AnalysisReport
// shape: files by path, findings within a file by (line, column), hotspots
// by composite score descending then path, so two runs over the same
// inputs serialize to byte-identical output whenever Timestamp is nil.
func Assemble(in Input) *AnalysisReport {
	files := make([]FileReport, len(in.Files))
	copy(files, in.Files)
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	for i := range files {
		findings := make([]Finding, len(files[i].Findings))
		copy(findings, files[i].Findings)
		sort.Slice(findings, func(a, b int) bool {
			if findings[a].LineStart != findings[b].LineStart {
				return findings[a].LineStart < findings[b].LineStart
			}
			return findings[a].ColStart < findings[b].ColStart
		})
		files[i].Findings = findings
	}

	hotspots := renderHotspots(in.Hotspots)

	nodes := make([]GraphNode, len(in.Graph.Vertices))
	for i, v := range in.Graph.Vertices {
		nodes[i] = GraphNode{ID: v.ID, Label: v.Label}
	}
	edges := make([]GraphEdge, len(in.Graph.Edges))
	for i, e := range in.Graph.Edges {
		edges[i] = GraphEdge{From: e.From, To: e.To, Type: e.Type.String()}
	}

	var diagram *string
	if in.Diagram != "" {
		d := in.Diagram
		diagram = &d
	}

	var generatedAt *string
	if in.Timestamp != nil {
		s := in.Timestamp.UTC().Format(time.RFC3339Nano)
		generatedAt = &s
	}

	warnings := make([]Warning, len(in.Warnings))
	copy(warnings, in.Warnings)
	sort.Slice(warnings, func(i, j int) bool {
		if warnings[i].Path != warnings[j].Path {
			return warnings[i].Path < warnings[j].Path
		}
		return warnings[i].Message < warnings[j].Message
	})

	return &AnalysisReport{
		SchemaVersion: schemaVersion,
		RunID:         uuid.NewString(),
		GeneratedAt:   generatedAt,
		DurationMS:    in.Duration.Milliseconds(),
		ProjectHealth: computeHealth(files),
		Files:         files,
		Hotspots:      hotspots,
		GraphNodes:    nodes,
		GraphEdges:    edges,
		Diagram:       diagram,
		Warnings:      warnings,
		Error:         in.FatalErr,
	}
}

func renderHotspots(hotspots []correlate.Hotspot) []HotspotReport {
	out := make([]HotspotReport, len(hotspots))
	for i, h := range hotspots {
		factors := make([]string, len(h.Factors))
		for j, f := range h.Factors {
			factors[j] = factorString(f)
		}
		out[i] = HotspotReport{
			Path:           h.File.Path,
			LineStart:      int(h.StartLine),
			LineEnd:        int(h.EndLine),
			CompositeScore: h.Score,
			Factors:        factors,
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CompositeScore != out[j].CompositeScore {
			return out[i].CompositeScore > out[j].CompositeScore
		}
		return out[i].Path < out[j].Path
	})
	return out
}

func factorString(f correlate.Factor) string {
	switch f.Kind {
	case correlate.FactorComplexity:
		return fmt.Sprintf("Complexity(cyclomatic=%d, cognitive=%d)", f.Cyclomatic, f.Cognitive)
	case correlate.FactorDeadCode:
		return fmt.Sprintf("DeadCode(confidence=%s)", f.DeadCodeConfidence)
	case correlate.FactorTechnicalDebt:
		return fmt.Sprintf("TechnicalDebt(category=%s, severity=%s)", f.DebtCategory, f.DebtSeverity)
	case correlate.FactorDuplication:
		return fmt.Sprintf("Duplication(type=%s, group=%d)", f.CloneType, f.CloneGroupID)
	case correlate.FactorChurnRisk:
		return fmt.Sprintf("ChurnRisk(commits=%d, authors=%d, correlation=%.2f)", f.CommitCount, f.AuthorCount, f.Correlation)
	default:
		return f.Kind.String()
	}
}

// computeHealth derives an overall 0-100 score, defect density, and
// estimated technical-debt hours from a run's findings. The exact
// weighting is this package's own open-question resolution: one finding
// per file is penalized at a flat rate, and only DEBT001 findings
// contribute estimated hours since only SATD findings carry a severity
// this package can map to an effort estimate.
func computeHealth(files []FileReport) ProjectHealth {
	var totalFindings int
	var debtHours float64
	for _, f := range files {
		for _, finding := range f.Findings {
			totalFindings++
			if finding.RuleID == RuleDebt {
				debtHours += debtHoursFor(finding.Severity)
			}
		}
	}

	density := 0.0
	if len(files) > 0 {
		density = float64(totalFindings) / float64(len(files))
	}

	score := 100 - density*5
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return ProjectHealth{
		OverallScore:  round2(score),
		DefectDensity: round2(density),
		TechDebtHours: round2(debtHours),
	}
}

func debtHoursFor(severity string) float64 {
	switch severity {
	case analyze.SeverityCritical.String():
		return debtHoursBySeverity[analyze.SeverityCritical]
	case analyze.SeverityHigh.String():
		return debtHoursBySeverity[analyze.SeverityHigh]
	case analyze.SeverityMedium.String():
		return debtHoursBySeverity[analyze.SeverityMedium]
	default:
		return debtHoursBySeverity[analyze.SeverityLow]
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
