package correlate

import (
	"sort"

	"codescope/internal/analyze"
	"codescope/internal/astcore"
)

const (
	weightDeadCode   = 0.30
	weightTechDebt   = 0.25
	weightComplexity = 0.25
	weightChurn      = 0.20
)

// Findings bundles every analyzer's output for one run. Correlate treats
// this as the union of per-analyzer findings keyed by node identifier.
type Findings struct {
	DeadCode    []analyze.DeadCodeFinding
	SATD        []analyze.SATDFinding
	Complexity  []analyze.ComplexityResult
	Duplication []analyze.CloneGroup
	Churn       []analyze.ChurnResult
}

func confidenceWeight(c analyze.Confidence) float64 {
	switch c {
	case analyze.ConfidenceHigh:
		return 1.0
	case analyze.ConfidenceMedium:
		return 0.66
	default:
		return 0.33
	}
}

func severityWeight(s analyze.Severity) float64 {
	switch s {
	case analyze.SeverityCritical:
		return 4
	case analyze.SeverityHigh:
		return 3
	case analyze.SeverityMedium:
		return 2
	default:
		return 1
	}
}

// Correlate scores every Function/Method node that at least one analyzer
// flagged and returns hotspots sorted by descending composite score, ties
// broken by (higher line count, lower file path lexicographically).
func Correlate(store *astcore.Store, f Findings) []Hotspot {
	deadRaw := make(map[astcore.NodeID]float64)
	deadConfidence := make(map[astcore.NodeID]analyze.Confidence)
	for _, d := range f.DeadCode {
		w := confidenceWeight(d.Confidence)
		if w > deadRaw[d.Node] {
			deadRaw[d.Node] = w
			deadConfidence[d.Node] = d.Confidence
		}
	}

	debtRaw := make(map[astcore.NodeID]float64)
	debtFactors := make(map[astcore.NodeID][]Factor)
	for _, s := range f.SATD {
		if s.Enclosing == astcore.Unresolved {
			continue
		}
		debtRaw[s.Enclosing] += severityWeight(s.Severity)
		debtFactors[s.Enclosing] = append(debtFactors[s.Enclosing], Factor{
			Kind:         FactorTechnicalDebt,
			DebtCategory: s.Category,
			DebtSeverity: s.Severity,
		})
	}

	complexityRaw := make(map[astcore.NodeID]float64)
	complexityFactors := make(map[astcore.NodeID]Factor)
	for _, c := range f.Complexity {
		if c.Cyclomatic <= 1 {
			// a branch-free function carries no complexity signal
			continue
		}
		complexityRaw[c.Node] = float64(c.Cyclomatic + c.Cognitive)
		complexityFactors[c.Node] = Factor{Kind: FactorComplexity, Cyclomatic: c.Cyclomatic, Cognitive: c.Cognitive}
	}

	duplicationFactors := make(map[astcore.NodeID][]Factor)
	for groupID, g := range f.Duplication {
		for _, m := range g.Members {
			duplicationFactors[m] = append(duplicationFactors[m], Factor{
				Kind:         FactorDuplication,
				CloneType:    g.Type,
				CloneGroupID: groupID,
			})
		}
	}

	churnNorm := analyze.NormalizeChurn(f.Churn)
	churnByPath := make(map[string]analyze.ChurnResult, len(f.Churn))
	for _, c := range f.Churn {
		churnByPath[c.Path] = c
	}

	nodes := relevantNodes(deadRaw, debtRaw, complexityRaw, duplicationFactors)

	maxDead := maxOf(deadRaw)
	maxDebt := maxOf(debtRaw)
	maxComplexity := maxOf(complexityRaw)

	var hotspots []Hotspot
	for _, id := range nodes {
		n, ok := store.Get(id)
		if !ok {
			continue
		}
		if n.Kind != astcore.KindFunction && n.Kind != astcore.KindMethod {
			continue
		}

		var factors []Factor
		score := 0.0

		if w, ok := deadRaw[id]; ok {
			score += weightDeadCode * normalize(w, maxDead)
			factors = append(factors, Factor{Kind: FactorDeadCode, DeadCodeConfidence: deadConfidence[id]})
		}
		if w, ok := debtRaw[id]; ok {
			score += weightTechDebt * normalize(w, maxDebt)
			factors = append(factors, debtFactors[id]...)
		}
		if w, ok := complexityRaw[id]; ok {
			score += weightComplexity * normalize(w, maxComplexity)
			factors = append(factors, complexityFactors[id])
		}
		if cr, ok := churnByPath[n.File.Path]; ok {
			score += weightChurn * churnNorm[n.File.Path]
			factors = append(factors, Factor{
				Kind:        FactorChurnRisk,
				CommitCount: cr.CommitCount,
				AuthorCount: cr.AuthorCount,
				Correlation: churnNorm[n.File.Path],
			})
		}
		factors = append(factors, duplicationFactors[id]...)

		hotspots = append(hotspots, Hotspot{
			File:      n.File,
			Node:      id,
			StartLine: n.Span.StartLine,
			EndLine:   n.Span.EndLine,
			Score:     score,
			Factors:   factors,
		})
	}

	sort.Slice(hotspots, func(i, j int) bool {
		a, b := hotspots[i], hotspots[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		la := int(a.EndLine) - int(a.StartLine)
		lb := int(b.EndLine) - int(b.StartLine)
		if la != lb {
			return la > lb
		}
		return a.File.Path < b.File.Path
	})
	return hotspots
}

func relevantNodes(deadRaw, debtRaw, complexityRaw map[astcore.NodeID]float64, duplicationFactors map[astcore.NodeID][]Factor) []astcore.NodeID {
	seen := make(map[astcore.NodeID]bool)
	for _, m := range []map[astcore.NodeID]float64{deadRaw, debtRaw, complexityRaw} {
		for id := range m {
			seen[id] = true
		}
	}
	for id := range duplicationFactors {
		seen[id] = true
	}
	var out []astcore.NodeID
	for id := range seen {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func maxOf(m map[astcore.NodeID]float64) float64 {
	max := 0.0
	for _, v := range m {
		if v > max {
			max = v
		}
	}
	return max
}

func normalize(v, max float64) float64 {
	if max == 0 {
		return 0
	}
	return v / max
}
