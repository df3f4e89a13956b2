package codescope

import (
	"encoding/json"
	"fmt"

	"codescope/internal/analyze"
	"codescope/internal/astcore"
	"codescope/internal/cache"
	"codescope/internal/config"
	"codescope/internal/discovery"
	"codescope/internal/report"
)

// churnRiskThreshold is the normalized churn score (0-1) above which a
// file's recency-weighted commit activity is reported as a CHURN001
// finding rather than silently folded into project_health only.
const churnRiskThreshold = 0.7

// ruleCacheKind maps a stable report rule id to the cache discriminator
// its findings are stored under, so two runs over an unchanged file skip
// recomputing that analyzer's output for it.
func ruleCacheKind(ruleID string) string {
	switch ruleID {
	case report.RuleComplexity:
		return cache.KindComplexity
	case report.RuleDeadCode:
		return cache.KindDeadCode
	case report.RuleDebt:
		return cache.KindSATD
	case report.RuleDuplication:
		return cache.KindDuplicate
	case report.RuleChurn:
		return cache.KindChurn
	case report.RuleBigO:
		return cache.KindBigO
	default:
		return ruleID
	}
}

func findingAt(n astcore.Node, ruleID, severity, message string) report.Finding {
	return report.Finding{
		RuleID:    ruleID,
		Severity:  severity,
		LineStart: int(n.Span.StartLine),
		ColStart:  int(n.Span.StartCol),
		LineEnd:   int(n.Span.EndLine),
		ColEnd:    int(n.Span.EndCol),
		Message:   message,
	}
}

func confidenceSeverity(c analyze.Confidence) string {
	switch c {
	case analyze.ConfidenceHigh:
		return "High"
	case analyze.ConfidenceMedium:
		return "Medium"
	default:
		return "Low"
	}
}

// buildFileFindings converts every enabled analyzer's raw results into
// report.Finding values grouped by file, applying the per-(rule, file
// content) cache on the way: a file whose content fingerprint hasn't
// changed since a prior run reuses that run's findings for the same rule
// instead of keeping the freshly computed ones, and a first-time result is
// written back for the next run to find.
func buildFileFindings(store *astcore.Store, results analyzerResults, th config.Thresholds, pathToFile map[string]astcore.FileId, c *cache.Cache) map[string][]report.Finding {
	buckets := make(map[astcore.FileId]map[string][]report.Finding)
	add := func(file astcore.FileId, f report.Finding) {
		byRule, ok := buckets[file]
		if !ok {
			byRule = make(map[string][]report.Finding)
			buckets[file] = byRule
		}
		byRule[f.RuleID] = append(byRule[f.RuleID], f)
	}

	if len(results.findings.Complexity) > 0 {
		for _, v := range analyze.ComplexityViolations(results.findings.Complexity, th) {
			n, ok := store.Get(v.Node)
			if !ok {
				continue
			}
			sev := "Medium"
			if v.Level == "error" {
				sev = "High"
			}
			msg := fmt.Sprintf("cyclomatic complexity %d, cognitive complexity %d", v.Cyclomatic, v.Cognitive)
			add(n.File, findingAt(n, report.RuleComplexity, sev, msg))
		}
	}

	for _, d := range results.findings.DeadCode {
		n, ok := store.Get(d.Node)
		if !ok {
			continue
		}
		add(n.File, findingAt(n, report.RuleDeadCode, confidenceSeverity(d.Confidence), d.Reason.String()))
	}

	for _, s := range results.findings.SATD {
		n, ok := store.Get(s.Node)
		if !ok {
			continue
		}
		f := findingAt(n, report.RuleDebt, s.Severity.String(), s.Text)
		f.ContextHash = s.ContextHash.String()
		add(n.File, f)
	}

	for i, g := range results.findings.Duplication {
		for _, memberID := range g.Members {
			n, ok := store.Get(memberID)
			if !ok {
				continue
			}
			msg := fmt.Sprintf("%s clone, group %d, similarity %.2f", g.Type, i, g.Similarity)
			add(n.File, findingAt(n, report.RuleDuplication, "Medium", msg))
		}
	}

	if len(results.findings.Churn) > 0 {
		normalized := analyze.NormalizeChurn(results.findings.Churn)
		for _, r := range results.findings.Churn {
			if normalized[r.Path] < churnRiskThreshold {
				continue
			}
			msg := fmt.Sprintf("%d commits by %d authors, recency score %.2f", r.CommitCount, r.AuthorCount, r.RecencyScore)
			add(pathToFile[r.Path], report.Finding{RuleID: report.RuleChurn, Severity: "Medium", LineStart: 1, ColStart: 1, Message: msg})
		}
	}

	for _, b := range results.bigo {
		if b.Class < analyze.BigOQuadratic {
			continue
		}
		n, ok := store.Get(b.Node)
		if !ok {
			continue
		}
		sev := "Medium"
		switch {
		case b.Class >= analyze.BigOExponential:
			sev = "Critical"
		case b.Class >= analyze.BigOCubic:
			sev = "High"
		}
		add(n.File, findingAt(n, report.RuleBigO, sev, "estimated growth "+b.Class.String()))
	}

	return flattenWithCache(buckets, c)
}

// flattenWithCache applies the per-(rule, fingerprint) cache and collapses
// the file/rule bucket map down to the path-keyed shape buildFileReports
// consumes.
func flattenWithCache(buckets map[astcore.FileId]map[string][]report.Finding, c *cache.Cache) map[string][]report.Finding {
	out := make(map[string][]report.Finding, len(buckets))
	for file, byRule := range buckets {
		var all []report.Finding
		for ruleID, computed := range byRule {
			all = append(all, cachedOrComputed(c, ruleID, file, computed)...)
		}
		out[file.Path] = all
	}
	return out
}

func cachedOrComputed(c *cache.Cache, ruleID string, file astcore.FileId, computed []report.Finding) []report.Finding {
	if c == nil {
		return computed
	}
	key := cache.Key{Kind: ruleCacheKind(ruleID), Fingerprint: file.Fingerprint}
	if data, ok := c.Get(key); ok {
		var cached []report.Finding
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached
		}
	}
	if data, err := json.Marshal(computed); err == nil {
		_ = c.Put(key, data)
	}
	return computed
}

// buildFileReports produces one report.FileReport per discovered file,
// including files with zero findings so the report's file inventory
// matches the project's actual file set.
func buildFileReports(entries []discovery.FileEntry, pathLang map[string]astcore.Language, findings map[string][]report.Finding) []report.FileReport {
	out := make([]report.FileReport, 0, len(entries))
	for _, e := range entries {
		out = append(out, report.FileReport{
			Path:     e.File.Path,
			Language: pathLang[e.File.Path].String(),
			Findings: findings[e.File.Path],
		})
	}
	return out
}
