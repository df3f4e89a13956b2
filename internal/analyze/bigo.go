package analyze

import (
	"sort"
	"strconv"

	"codescope/internal/astcore"
)

// BigO estimates the asymptotic growth class of every Function/Method node
// in store by walking its loop nesting and recursive call patterns. Rules
// are applied top-down: a recursive call shape, when found, takes
// precedence over loop nesting, since the recursive shape dominates the
// function's actual growth.
func BigO(store *astcore.Store) []BigOResult {
	var results []BigOResult
	for _, n := range store.All() {
		if n.Kind != astcore.KindFunction && n.Kind != astcore.KindMethod {
			continue
		}
		results = append(results, classifyGrowth(store, n))
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Node < results[j].Node })
	return results
}

func classifyGrowth(store *astcore.Store, n astcore.Node) BigOResult {
	recCalls := recursiveCalls(store, n)
	if len(recCalls) > 0 {
		return classifyRecursion(n.ID, recCalls)
	}

	depth, evidence := maxLoopNestingDepth(store, n.ID)
	return classifyLoopNesting(n.ID, depth, evidence)
}

type recursiveCall struct {
	node               astcore.NodeID
	hasHalvingEvidence bool
}

// recursiveCalls walks n's own body (excluding nested closures) collecting
// every Call whose callee reference names n itself.
func recursiveCalls(store *astcore.Store, n astcore.Node) []recursiveCall {
	if n.Payload.Name == "" {
		return nil
	}
	var calls []recursiveCall
	var walk func(id astcore.NodeID)
	walk = func(id astcore.NodeID) {
		cn, ok := store.Get(id)
		if !ok {
			return
		}
		if cn.ID != n.ID && (cn.Kind == astcore.KindFunction || cn.Kind == astcore.KindMethod) {
			return
		}
		if cn.Kind == astcore.KindCall && calleeNames(cn.Payload.CalleeRef, n.Payload.Name) {
			calls = append(calls, recursiveCall{node: cn.ID, hasHalvingEvidence: argumentsSuggestHalving(store, cn.ID)})
		}
		for _, c := range cn.Children {
			walk(c)
		}
	}
	walk(n.ID)
	return calls
}

func calleeNames(calleeRef, fnName string) bool {
	if calleeRef == fnName {
		return true
	}
	// Qualified references (receiver.Method, pkg.Func) still count as
	// self-recursion when their trailing segment matches.
	for i := len(calleeRef) - 1; i >= 0; i-- {
		if calleeRef[i] == '.' || calleeRef[i] == ':' {
			return calleeRef[i+1:] == fnName
		}
	}
	return false
}

// argumentsSuggestHalving looks for a division-by-two or midpoint pattern
// among a Call node's argument subtree: a Literal "2" or an Identifier named
// mid or half sitting alongside the call, the signals the Unified AST's
// coarse Call/Literal/Identifier vocabulary can carry without a full
// expression grammar.
func argumentsSuggestHalving(store *astcore.Store, callID astcore.NodeID) bool {
	found := false
	var walk func(id astcore.NodeID)
	walk = func(id astcore.NodeID) {
		if found {
			return
		}
		n, ok := store.Get(id)
		if !ok {
			return
		}
		if n.Kind == astcore.KindLiteral && n.Payload.LiteralValue == "2" {
			found = true
			return
		}
		if n.Kind == astcore.KindIdentifier && (n.Payload.Name == "mid" || n.Payload.Name == "half") {
			found = true
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(callID)
	return found
}

func classifyRecursion(node astcore.NodeID, calls []recursiveCall) BigOResult {
	halving := 0
	for _, c := range calls {
		if c.hasHalvingEvidence {
			halving++
		}
	}

	switch {
	case len(calls) == 1 && halving == 1:
		return BigOResult{Node: node, Class: BigOLogarithmic, Evidence: []string{"single recursive call with halving-argument evidence"}}
	case len(calls) == 1:
		return BigOResult{Node: node, Class: BigOLinear, Evidence: []string{"single recursive call, no halving evidence"}}
	case len(calls) == 2 && halving >= 1:
		return BigOResult{Node: node, Class: BigOLinearithmic, Evidence: []string{"two recursive calls with disjoint-half evidence"}}
	case len(calls) == 2:
		return BigOResult{Node: node, Class: BigOExponential, Evidence: []string{"two recursive calls on the full argument"}}
	default:
		return BigOResult{Node: node, Class: BigOExponential, Evidence: []string{strconv.Itoa(len(calls)) + " recursive call sites"}}
	}
}

// maxLoopNestingDepth reports the deepest chain of nested loop blocks
// within fnID, excluding nested function bodies. Sequential (sibling)
// loops at the same level never add: the walk takes the maximum over
// branches, never the sum.
func maxLoopNestingDepth(store *astcore.Store, fnID astcore.NodeID) (int, []string) {
	var evidence []string
	var walk func(id astcore.NodeID, depth int) int
	walk = func(id astcore.NodeID, depth int) int {
		n, ok := store.Get(id)
		if !ok {
			return depth
		}
		best := depth
		for _, c := range n.Children {
			cn, ok := store.Get(c)
			if !ok {
				continue
			}
			if cn.ID != fnID && (cn.Kind == astcore.KindFunction || cn.Kind == astcore.KindMethod) {
				continue
			}
			childDepth := depth
			if cn.Kind == astcore.KindBlock && cn.Payload.Name == "loop" {
				childDepth = depth + 1
				evidence = append(evidence, "loop at nesting depth "+strconv.Itoa(childDepth))
			}
			if r := walk(c, childDepth); r > best {
				best = r
			}
		}
		return best
	}
	depth := walk(fnID, 0)
	return depth, evidence
}

func classifyLoopNesting(node astcore.NodeID, depth int, evidence []string) BigOResult {
	switch depth {
	case 0:
		return BigOResult{Node: node, Class: BigOConstant, Evidence: evidence}
	case 1:
		return BigOResult{Node: node, Class: BigOLinear, Evidence: evidence}
	case 2:
		return BigOResult{Node: node, Class: BigOQuadratic, Evidence: evidence}
	case 3:
		return BigOResult{Node: node, Class: BigOCubic, Evidence: evidence}
	default:
		return BigOResult{Node: node, Class: BigOPolynomial, Degree: depth, Evidence: evidence}
	}
}
