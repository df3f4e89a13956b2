package report

import (
	"encoding/json"
	"sort"
)

const sarifSchemaURI = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"

// sarifRuleNames gives each stable rule id a short human-readable title;
// SARIF viewers show this next to the id.
var sarifRuleNames = map[string]string{
	RuleComplexity:  "High cyclomatic or cognitive complexity",
	RuleDeadCode:    "Unreachable or unused code",
	RuleDebt:        "Self-admitted technical debt",
	RuleDuplication: "Duplicated code fragment",
	RuleChurn:       "High-churn, high-risk file",
	RuleBigO:        "Asymptotic growth concern",
}

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	ShortDescription sarifMessage           `json:"shortDescription"`
	Properties       map[string]interface{} `json:"properties,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID           string              `json:"ruleId"`
	Level            string              `json:"level"`
	Message          sarifMessage        `json:"message"`
	Locations        []sarifLocation     `json:"locations"`
	Properties       map[string]interface{} `json:"properties,omitempty"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn,omitempty"`
	EndLine     int `json:"endLine,omitempty"`
	EndColumn   int `json:"endColumn,omitempty"`
}

// SARIF renders r as a SARIF 2.1.0 log with one run. Every distinct rule
// id that actually fired is declared under the driver; results carry the
// finding's physical location and, when present, its cross-run context
// hash as a property.
func SARIF(r *AnalysisReport) ([]byte, error) {
	seen := make(map[string]bool)
	var rules []sarifRule
	var results []sarifResult

	for _, f := range r.Files {
		for _, fi := range f.Findings {
			if !seen[fi.RuleID] {
				seen[fi.RuleID] = true
				rules = append(rules, sarifRule{
					ID:               fi.RuleID,
					Name:             fi.RuleID,
					ShortDescription: sarifMessage{Text: sarifRuleNames[fi.RuleID]},
				})
			}

			props := map[string]interface{}{}
			if fi.ContextHash != "" {
				props["contextHash"] = fi.ContextHash
			}

			results = append(results, sarifResult{
				RuleID:  fi.RuleID,
				Level:   sarifLevel(fi.Severity),
				Message: sarifMessage{Text: fi.Message},
				Locations: []sarifLocation{{
					PhysicalLocation: sarifPhysicalLocation{
						ArtifactLocation: sarifArtifactLocation{URI: f.Path},
						Region: sarifRegion{
							StartLine:   fi.LineStart,
							StartColumn: fi.ColStart,
							EndLine:     fi.LineEnd,
							EndColumn:   fi.ColEnd,
						},
					},
				}},
				Properties: props,
			})
		}
	}

	// Declared rules in id order so the driver section is stable across
	// runs regardless of which file happened to report a rule first.
	sortRules(rules)

	if rules == nil {
		rules = []sarifRule{}
	}
	if results == nil {
		results = []sarifResult{}
	}

	log := sarifLog{
		Schema:  sarifSchemaURI,
		Version: "2.1.0",
		Runs: []sarifRun{{
			Tool: sarifTool{Driver: sarifDriver{
				Name:           "codescope",
				Version:        r.SchemaVersion,
				InformationURI: "",
				Rules:          rules,
			}},
			Results: results,
		}},
	}

	return json.MarshalIndent(log, "", "  ")
}

func sarifLevel(severity string) string {
	switch severity {
	case "Critical", "High":
		return "error"
	case "Medium":
		return "warning"
	default:
		return "note"
	}
}

func sortRules(rules []sarifRule) {
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })
}
