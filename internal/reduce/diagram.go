package reduce

import (
	"fmt"
	"strings"

	"codescope/internal/refgraph"
)

// EmitMermaid renders a ReducedGraph as a fenced Mermaid flowchart. Vertices
// and edges are assumed pre-sorted by Reduce; EmitMermaid does not re-sort,
// so callers that build a ReducedGraph by hand are responsible for ordering
// it themselves if they want deterministic output.
func EmitMermaid(rg ReducedGraph) string {
	var b strings.Builder
	b.WriteString("```mermaid\n")
	b.WriteString("graph TD\n")
	for _, v := range rg.Vertices {
		fmt.Fprintf(&b, "    %s[%s]\n", v.ID, v.Label)
	}
	for _, e := range rg.Edges {
		fmt.Fprintf(&b, "    %s %s %s\n", e.From, edgeArrow(e.Type), e.To)
	}
	b.WriteString("```\n")
	return b.String()
}

func edgeArrow(t refgraph.EdgeType) string {
	switch t {
	case refgraph.EdgeImplements:
		return "-.->"
	case refgraph.EdgeInherits:
		return "==>"
	default:
		return "-->"
	}
}
