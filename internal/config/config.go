// Package config loads the optional on-disk .codescope.yml that supplies
// defaults for fields an AnalysisRequest leaves unset.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Thresholds mirrors the complexity analyzer's configured warn/error bounds.
type Thresholds struct {
	CyclomaticWarn  int `yaml:"cyclomatic_warn"`
	CyclomaticError int `yaml:"cyclomatic_error"`
	CognitiveWarn   int `yaml:"cognitive_warn"`
	CognitiveError  int `yaml:"cognitive_error"`
}

// DefaultThresholds matches default thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CyclomaticWarn:  20,
		CyclomaticError: 30,
		CognitiveWarn:   15,
		CognitiveError:  30,
	}
}

// File is the parsed shape of .codescope.yml.
type File struct {
	IgnorePatterns       []string      `yaml:"ignore_patterns"`
	MaxDepth             int           `yaml:"max_depth"`
	FollowSymlinks       bool          `yaml:"follow_symlinks"`
	EnabledAnalyzers     []string      `yaml:"enabled_analyzers"`
	Thresholds           Thresholds    `yaml:"thresholds"`
	MaxNodes             int           `yaml:"max_nodes"`
	MaxEdges             int           `yaml:"max_edges"`
	PerFileTimeout       time.Duration `yaml:"per_file_timeout"`
	IncludeTests         bool          `yaml:"include_tests"`
	RetentionWindow      time.Duration `yaml:"retention_window"`
	ComputeCycleMetadata bool          `yaml:"compute_cycle_metadata"`
}

// Default returns File populated with the documented defaults.
func Default() File {
	return File{
		MaxDepth:         0,
		FollowSymlinks:   false,
		EnabledAnalyzers: []string{"complexity", "deadcode", "satd", "duplication", "churn", "bigo"},
		Thresholds:       DefaultThresholds(),
		MaxNodes:         20,
		MaxEdges:         400,
		PerFileTimeout:   10 * time.Second,
		IncludeTests:     false,
		RetentionWindow:  30 * 24 * time.Hour,
	}
}

// Load reads .codescope.yml from root if present, overlaying it onto
// Default(). A missing file is not an error.
func Load(root string) (File, error) {
	cfg := Default()
	path := filepath.Join(root, ".codescope.yml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}
