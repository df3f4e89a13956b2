package analyze

import (
	"codescope/internal/astcore"
	"codescope/internal/config"
)

// branchTags is the canonical control-flow vocabulary every language
// parser's classify function writes into a KindBlock node's Payload.Name
// (see internal/langs' DESIGN.md entry for why the closed NodeKind enum
// does not carry dedicated If/For/Switch kinds).
var branchTags = map[string]bool{
	"if":          true,
	"loop":        true,
	"switch_case": true,
	"catch":       true,
	"ternary":     true,
	"logical_and": true,
	"logical_or":  true,
}

func isLogicalOp(tag string) bool { return tag == "logical_and" || tag == "logical_or" }

// Complexity computes cyclomatic and cognitive complexity for every
// Function/Method node in store. It is a pure function: store is
// read only.
func Complexity(store *astcore.Store) []ComplexityResult {
	var results []ComplexityResult
	for _, n := range store.All() {
		if n.Kind != astcore.KindFunction && n.Kind != astcore.KindMethod {
			continue
		}
		results = append(results, computeComplexity(store, n.ID))
	}
	return results
}

func computeComplexity(store *astcore.Store, fnID astcore.NodeID) ComplexityResult {
	cyclomatic := 1
	cognitive := 0

	var walk func(id astcore.NodeID, depth int)
	walk = func(id astcore.NodeID, depth int) {
		n, ok := store.Get(id)
		if !ok {
			return
		}
		for _, c := range n.Children {
			cn, ok := store.Get(c)
			if !ok {
				continue
			}
			if cn.Kind == astcore.KindFunction || cn.Kind == astcore.KindMethod {
				// Nested functions/closures get their own ComplexityResult;
				// their branches never count toward the enclosing body.
				continue
			}

			nextDepth := depth
			if cn.Kind == astcore.KindBlock && branchTags[cn.Payload.Name] {
				cyclomatic++
				if isLogicalOp(cn.Payload.Name) {
					if depth > 0 {
						cognitive++
					}
				} else {
					cognitive += 1 + depth
					nextDepth = depth + 1
				}
			}
			walk(c, nextDepth)
		}
	}
	walk(fnID, 0)

	return ComplexityResult{Node: fnID, Cyclomatic: cyclomatic, Cognitive: cognitive}
}

// ComplexityViolations attaches warn/error violations per the configured
// thresholds (default cyclomatic 20/30, cognitive 15/30).
func ComplexityViolations(results []ComplexityResult, th config.Thresholds) []ComplexityViolation {
	var out []ComplexityViolation
	for _, r := range results {
		level := violationLevel(r, th)
		if level != "" {
			out = append(out, ComplexityViolation{Node: r.Node, Level: level, ComplexityResult: r})
		}
	}
	return out
}

func violationLevel(r ComplexityResult, th config.Thresholds) string {
	if r.Cyclomatic >= th.CyclomaticError || r.Cognitive >= th.CognitiveError {
		return "error"
	}
	if r.Cyclomatic >= th.CyclomaticWarn || r.Cognitive >= th.CognitiveWarn {
		return "warn"
	}
	return ""
}
