package analyze

import (
	"testing"
	"time"
)

func TestChurnCountsCommitsAndUniqueAuthors(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tuples := []ChurnTuple{
		{Path: "a.go", Timestamp: now.Add(-1 * time.Hour).Unix(), Author: "alice"},
		{Path: "a.go", Timestamp: now.Add(-2 * time.Hour).Unix(), Author: "alice"},
		{Path: "a.go", Timestamp: now.Add(-3 * time.Hour).Unix(), Author: "bob"},
		{Path: "b.go", Timestamp: now.Add(-1 * time.Hour).Unix(), Author: "carol"},
	}
	results := Churn(tuples, now)

	byPath := map[string]ChurnResult{}
	for _, r := range results {
		byPath[r.Path] = r
	}

	a := byPath["a.go"]
	if a.CommitCount != 3 {
		t.Fatalf("expected 3 commits for a.go, got %d", a.CommitCount)
	}
	if a.AuthorCount != 2 {
		t.Fatalf("expected 2 unique authors for a.go, got %d", a.AuthorCount)
	}
	b := byPath["b.go"]
	if b.CommitCount != 1 || b.AuthorCount != 1 {
		t.Fatalf("expected b.go to have 1 commit by 1 author, got %+v", b)
	}
}

func TestChurnRecencyDecaysWithAge(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tuples := []ChurnTuple{
		{Path: "recent.go", Timestamp: now.Add(-1 * time.Hour).Unix(), Author: "alice"},
		{Path: "stale.go", Timestamp: now.Add(-365 * 24 * time.Hour).Unix(), Author: "alice"},
	}
	results := Churn(tuples, now)

	byPath := map[string]ChurnResult{}
	for _, r := range results {
		byPath[r.Path] = r
	}
	if byPath["recent.go"].RecencyScore <= byPath["stale.go"].RecencyScore {
		t.Fatalf("expected a commit an hour old to score higher than one a year old: %+v", byPath)
	}
}

func TestChurnHalfLifeProperty(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tuples := []ChurnTuple{
		{Path: "half.go", Timestamp: now.Add(-churnHalfLife).Unix(), Author: "alice"},
	}
	results := Churn(tuples, now)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	// One half-life old contributes exp(-1) ~= 0.3679.
	got := results[0].RecencyScore
	if got < 0.36 || got > 0.37 {
		t.Fatalf("expected a one-half-life-old commit's weight ~= 0.3679, got %f", got)
	}
}

func TestNormalizeChurnScalesToUnitRange(t *testing.T) {
	results := []ChurnResult{
		{Path: "a.go", RecencyScore: 4.0},
		{Path: "b.go", RecencyScore: 2.0},
		{Path: "c.go", RecencyScore: 0.0},
	}
	norm := NormalizeChurn(results)
	if norm["a.go"] != 1.0 {
		t.Fatalf("expected the max to normalize to 1.0, got %f", norm["a.go"])
	}
	if norm["b.go"] != 0.5 {
		t.Fatalf("expected half-of-max to normalize to 0.5, got %f", norm["b.go"])
	}
	if norm["c.go"] != 0.0 {
		t.Fatalf("expected zero to normalize to 0.0, got %f", norm["c.go"])
	}
}
