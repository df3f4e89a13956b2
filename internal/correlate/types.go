// Package correlate combines the six defect analyzers' independent
// findings into a single ranked sequence of hotspots, one per
// Function/Method node that at least one analyzer flagged.
package correlate

import (
	"codescope/internal/analyze"
	"codescope/internal/astcore"
)

// FactorKind is the closed set of contributing-factor shapes a hotspot can
// carry.
type FactorKind uint8

const (
	FactorDeadCode FactorKind = iota
	FactorTechnicalDebt
	FactorComplexity
	FactorDuplication
	FactorChurnRisk
)

func (k FactorKind) String() string {
	switch k {
	case FactorDeadCode:
		return "DeadCode"
	case FactorTechnicalDebt:
		return "TechnicalDebt"
	case FactorComplexity:
		return "Complexity"
	case FactorDuplication:
		return "Duplication"
	case FactorChurnRisk:
		return "ChurnRisk"
	default:
		return "Unknown"
	}
}

// Factor is one contributing-factor attachment on a Hotspot. Only the
// fields relevant to Kind are populated; the rest stay zero.
type Factor struct {
	Kind FactorKind

	// TechnicalDebt
	DebtCategory analyze.SATDCategory
	DebtSeverity analyze.Severity

	// Complexity
	Cyclomatic int
	Cognitive  int

	// Duplication
	CloneType    analyze.CloneType
	CloneGroupID int

	// ChurnRisk
	CommitCount int
	AuthorCount int
	Correlation float64

	// DeadCode
	DeadCodeConfidence analyze.Confidence
}

// Hotspot is one node's composite defect score with every factor that
// contributed to it.
type Hotspot struct {
	File      astcore.FileId
	Node      astcore.NodeID
	StartLine uint32
	EndLine   uint32
	Score     float64
	Factors   []Factor
}
