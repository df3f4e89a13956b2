package analyze

import (
	"regexp"
	"strings"

	"codescope/internal/astcore"
)

type satdPattern struct {
	regex    *regexp.Regexp
	category SATDCategory
	severity Severity
}

// satdPatterns is the marker table: security concerns escalate to
// Critical, known defects to High, design compromises and performance
// notes to Medium, and plain TODOs/requirements to Low. Matching is
// case-insensitive and keyed on a word boundary so e.g. "Hacking" never
// matches "HACK".
var satdPatterns = []satdPattern{
	{regexp.MustCompile(`(?i)\b(SECURITY|VULN|VULNERABILITY|CVE|UNSAFE)\b`), CategorySecurity, SeverityCritical},

	{regexp.MustCompile(`(?i)\b(FIXME|BUG|BROKEN)\b`), CategoryDefect, SeverityHigh},

	{regexp.MustCompile(`(?i)\b(HACK|KLUDGE|SMELL)\b`), CategoryDesign, SeverityMedium},
	{regexp.MustCompile(`(?i)\b(SLOW|OPTIMIZE|PERF|PERFORMANCE)\b`), CategoryPerformance, SeverityMedium},
	{regexp.MustCompile(`(?i)\btest.*\b(disabled|skipped)\b`), CategoryTest, SeverityMedium},

	{regexp.MustCompile(`(?i)\b(TODO|FEAT|ENHANCEMENT)\b`), CategoryRequirement, SeverityLow},
}

// SATD scans every Comment node in store for self-admitted-technical-debt
// markers, attaching the enclosing function's ContextHash and applying
// context-based severity adjustment.
func SATD(store *astcore.Store, results []ComplexityResult) []SATDFinding {
	complexityByNode := make(map[astcore.NodeID]ComplexityResult, len(results))
	for _, r := range results {
		complexityByNode[r.Node] = r
	}

	var findings []SATDFinding
	for _, n := range store.All() {
		if n.Kind != astcore.KindComment {
			continue
		}
		text := n.Payload.CommentText
		if text == "" {
			continue
		}
		if shouldSkipSATDLine(text) {
			continue
		}
		pat, ok := matchSATD(text)
		if !ok {
			continue
		}

		enclosing, enclosingNode, haveEnclosing := enclosingFunction(store, n.ID)
		severity := pat.severity
		if haveEnclosing {
			severity = adjustSeverity(severity, pat.category, enclosingNode, complexityByNode[enclosing])
		}

		findings = append(findings, SATDFinding{
			Node:        n.ID,
			Enclosing:   enclosing,
			ContextHash: enclosingNode.ContextHash,
			Category:    pat.category,
			Severity:    severity,
			Text:        strings.TrimSpace(text),
		})
	}
	return findings
}

func matchSATD(text string) (satdPattern, bool) {
	for _, p := range satdPatterns {
		if p.regex.MatchString(text) {
			return p, true
		}
	}
	return satdPattern{}, false
}

// shouldSkipSATDLine filters markdown section headers and changelog-style
// bug-tracking references ("BUG-104: ...") that use the same vocabulary
// without describing live debt in the code itself.
func shouldSkipSATDLine(text string) bool {
	trimmed := strings.TrimSpace(strings.TrimLeft(text, "/#* "))
	lower := strings.ToLower(trimmed)
	if strings.Contains(lower, "bug-") || strings.Contains(lower, "-bug-") {
		return true
	}
	return false
}

// enclosingFunction walks the advisory Parent chain to the nearest
// Function or Method ancestor. Parent is a first-seen-occurrence pointer
// under hash-consing (see astcore.Store), so a comment whose exact text is
// duplicated across two functions may attribute to whichever was inserted
// first; SATD comments are rarely byte-identical across unrelated
// functions in practice, so this is accepted rather than threading a
// separate per-file walk through here.
func enclosingFunction(store *astcore.Store, id astcore.NodeID) (astcore.NodeID, astcore.Node, bool) {
	cur := id
	for {
		n, ok := store.Get(cur)
		if !ok || !n.HasParent() {
			return astcore.Unresolved, astcore.Node{}, false
		}
		parent, ok := store.Get(n.Parent)
		if !ok {
			return astcore.Unresolved, astcore.Node{}, false
		}
		if parent.Kind == astcore.KindFunction || parent.Kind == astcore.KindMethod {
			return parent.ID, parent, true
		}
		cur = n.Parent
	}
}

// adjustSeverity escalates Security-flagged-context and high-complexity
// Performance findings by one level, and demotes findings inside test
// functions by one level (test code carrying a TODO is lower-priority
// debt than the same marker in production code).
func adjustSeverity(base Severity, category SATDCategory, enclosing astcore.Node, complexity ComplexityResult) Severity {
	sev := base
	if enclosing.Flags.Has(astcore.FlagIsTest) {
		sev = sev.demote()
		return sev
	}
	if isSecurityContext(enclosing.Payload.Name) {
		sev = sev.bump()
	}
	if category == CategoryPerformance && complexity.Cyclomatic >= 20 {
		sev = sev.bump()
	}
	return sev
}

func isSecurityContext(name string) bool {
	lower := strings.ToLower(name)
	for _, term := range []string{"auth", "security", "crypto", "password", "credential", "token", "session", "sanitize", "validate"} {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
