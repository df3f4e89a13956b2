package report

import "encoding/json"

// jsonFinding, jsonFile, ... mirror AnalysisReport field-for-field but
// with the snake_case tags the fixed JSON schema specifies; keeping them
// separate from the Go-idiomatic AnalysisReport lets every other output
// format use PascalCase field access without reflecting on json tags.
type jsonFinding struct {
	RuleID      string `json:"rule_id"`
	Severity    string `json:"severity"`
	LineStart   int    `json:"line_start"`
	ColumnStart int    `json:"column_start"`
	LineEnd     int    `json:"line_end"`
	ColumnEnd   int    `json:"column_end"`
	Message     string `json:"message"`
	ContextHash string `json:"context_hash,omitempty"`
}

type jsonFile struct {
	Path     string        `json:"path"`
	Language string        `json:"language"`
	Findings []jsonFinding `json:"findings"`
}

type jsonHotspot struct {
	Path           string   `json:"path"`
	LineStart      int      `json:"line_start"`
	LineEnd        int      `json:"line_end"`
	CompositeScore float64  `json:"composite_score"`
	Factors        []string `json:"factors"`
}

type jsonGraphNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type jsonGraphEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Type string `json:"type"`
}

type jsonHealth struct {
	OverallScore  float64 `json:"overall_score"`
	DefectDensity float64 `json:"defect_density"`
	TechDebtHours float64 `json:"tech_debt_hours"`
}

type jsonWarning struct {
	Kind    string `json:"kind"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

type jsonError struct {
	Kind    string `json:"kind"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

type jsonReport struct {
	SchemaVersion string          `json:"schema_version"`
	RunID         string          `json:"run_id"`
	GeneratedAt   *string         `json:"generated_at"`
	DurationMS    int64           `json:"duration_ms"`
	ProjectHealth jsonHealth      `json:"project_health"`
	Files         []jsonFile      `json:"files"`
	Hotspots      []jsonHotspot   `json:"hotspots"`
	Graph         jsonGraph       `json:"graph"`
	Diagram       *string         `json:"diagram"`
	Warnings      []jsonWarning   `json:"warnings"`
	Error         *jsonError      `json:"error,omitempty"`
}

type jsonGraph struct {
	Nodes []jsonGraphNode `json:"nodes"`
	Edges []jsonGraphEdge `json:"edges"`
}

// JSON renders r as the fixed-schema JSON document, indented for human
// readability; callers that want compact output can re-marshal the
// returned bytes with json.Compact.
func JSON(r *AnalysisReport) ([]byte, error) {
	doc := jsonReport{
		SchemaVersion: r.SchemaVersion,
		RunID:         r.RunID,
		GeneratedAt:   r.GeneratedAt,
		DurationMS:    r.DurationMS,
		ProjectHealth: jsonHealth{
			OverallScore:  r.ProjectHealth.OverallScore,
			DefectDensity: r.ProjectHealth.DefectDensity,
			TechDebtHours: r.ProjectHealth.TechDebtHours,
		},
		Diagram: r.Diagram,
	}

	for _, f := range r.Files {
		jf := jsonFile{Path: f.Path, Language: f.Language, Findings: make([]jsonFinding, len(f.Findings))}
		for i, fi := range f.Findings {
			jf.Findings[i] = jsonFinding{
				RuleID:      fi.RuleID,
				Severity:    fi.Severity,
				LineStart:   fi.LineStart,
				ColumnStart: fi.ColStart,
				LineEnd:     fi.LineEnd,
				ColumnEnd:   fi.ColEnd,
				Message:     fi.Message,
				ContextHash: fi.ContextHash,
			}
		}
		doc.Files = append(doc.Files, jf)
	}
	if doc.Files == nil {
		doc.Files = []jsonFile{}
	}

	for _, h := range r.Hotspots {
		doc.Hotspots = append(doc.Hotspots, jsonHotspot{
			Path:           h.Path,
			LineStart:      h.LineStart,
			LineEnd:        h.LineEnd,
			CompositeScore: h.CompositeScore,
			Factors:        h.Factors,
		})
	}
	if doc.Hotspots == nil {
		doc.Hotspots = []jsonHotspot{}
	}

	for _, n := range r.GraphNodes {
		doc.Graph.Nodes = append(doc.Graph.Nodes, jsonGraphNode{ID: n.ID, Label: n.Label})
	}
	if doc.Graph.Nodes == nil {
		doc.Graph.Nodes = []jsonGraphNode{}
	}
	for _, e := range r.GraphEdges {
		doc.Graph.Edges = append(doc.Graph.Edges, jsonGraphEdge{From: e.From, To: e.To, Type: e.Type})
	}
	if doc.Graph.Edges == nil {
		doc.Graph.Edges = []jsonGraphEdge{}
	}

	for _, w := range r.Warnings {
		doc.Warnings = append(doc.Warnings, jsonWarning{Kind: w.Kind.String(), Path: w.Path, Message: w.Message})
	}
	if doc.Warnings == nil {
		doc.Warnings = []jsonWarning{}
	}

	if r.Error != nil {
		doc.Error = &jsonError{Kind: r.Error.Kind.String(), Path: r.Error.Path, Message: r.Error.Message}
	}

	return json.MarshalIndent(doc, "", "  ")
}
