// Package main implements the codescope CLI, a thin cobra front-end over
// the codescope package: it only builds an AnalysisRequest, calls
// codescope.Analyze, and writes the rendered report. Framing choices here
// (flags, exit codes, file I/O) are deliberately outside the analysis
// core itself.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"codescope"
	"codescope/internal/analyze"
	"codescope/internal/logging"
)

var (
	verbose      bool
	jsonLogs     bool
	outputFormat string
	outputPath   string
	enabled      []string
	ignore       []string
	maxNodes     int
	maxEdges     int
	diagram      bool
	deadline     time.Duration
	cacheDir     string
	churnFile    string
	churnGit     bool
	churnDepth   int
)

var rootCmd = &cobra.Command{
	Use:   "codescope [project path]",
	Short: "codescope - unified polyglot code analysis core",
	Long: `codescope parses a source tree into a language-agnostic AST, builds a
cross-language reference graph, runs complexity, dead-code, technical-debt,
duplication, churn, and big-O analyzers, correlates the results into
hotspots, and emits a single report as JSON, SARIF, or Markdown.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Configure(verbose, jsonLogs)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
	RunE: runAnalyze,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "emit structured JSON logs instead of console logs")

	rootCmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "output format: json, sarif, or markdown")
	rootCmd.Flags().StringVarP(&outputPath, "out", "o", "", "write the rendered report here instead of stdout")
	rootCmd.Flags().StringSliceVar(&enabled, "enable", nil, "analyzers to run (default: all configured); one of complexity,deadcode,satd,duplication,churn,bigo")
	rootCmd.Flags().StringSliceVar(&ignore, "ignore", nil, "additional glob ignore patterns")
	rootCmd.Flags().IntVar(&maxNodes, "max-nodes", 0, "cap on diagram vertices (0: use project config)")
	rootCmd.Flags().IntVar(&maxEdges, "max-edges", 0, "cap on diagram edges (0: use project config)")
	rootCmd.Flags().BoolVar(&diagram, "diagram", false, "include a reduced-graph Mermaid diagram in the report")
	rootCmd.Flags().DurationVar(&deadline, "deadline", 0, "abort the run and return partial results after this long (0: no deadline)")
	rootCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "directory for the on-disk analyzer result cache (empty: no caching)")
	rootCmd.Flags().StringVar(&churnFile, "churn-file", "", "path to a newline-delimited (path, timestamp, author) churn record stream")
	rootCmd.Flags().BoolVar(&churnGit, "churn-from-git", false, "derive churn history from `git log` in the project directory")
	rootCmd.Flags().IntVar(&churnDepth, "churn-depth", 500, "number of commits to scan when --churn-from-git is set")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := logging.L()

	req := codescope.AnalysisRequest{
		ProjectPath:      args[0],
		IgnorePatterns:   ignore,
		EnabledAnalyzers: enabled,
		MaxNodes:         maxNodes,
		MaxEdges:         maxEdges,
		Diagram:          diagram,
		Deadline:         deadline,
		CacheDir:         cacheDir,
	}

	format, err := parseFormat(outputFormat)
	if err != nil {
		return err
	}
	req.OutputFormat = format

	history, err := loadChurnHistory(ctx, args[0])
	if err != nil {
		return err
	}
	req.History = history

	report, analyzeErr := codescope.Analyze(ctx, req)
	if report == nil {
		return analyzeErr
	}

	if len(report.Rendered) > 0 {
		if writeErr := writeOutput(report.Rendered); writeErr != nil {
			return writeErr
		}
	}

	if analyzeErr != nil {
		log.Error("analysis did not complete", zap.Error(analyzeErr))
		return analyzeErr
	}
	return nil
}

func parseFormat(s string) (codescope.OutputFormat, error) {
	switch s {
	case "json", "":
		return codescope.FormatJSON, nil
	case "sarif":
		return codescope.FormatSARIF, nil
	case "markdown", "md":
		return codescope.FormatMarkdown, nil
	default:
		return 0, fmt.Errorf("unknown output format %q (want json, sarif, or markdown)", s)
	}
}

func loadChurnHistory(ctx context.Context, projectPath string) ([]analyze.ChurnTuple, error) {
	switch {
	case churnFile != "" && churnGit:
		return nil, fmt.Errorf("--churn-file and --churn-from-git are mutually exclusive")
	case churnFile != "":
		f, err := os.Open(churnFile)
		if err != nil {
			return nil, fmt.Errorf("opening churn file: %w", err)
		}
		defer f.Close()
		return codescope.ParseChurnStream(f)
	case churnGit:
		return churnFromGit(ctx, projectPath, churnDepth)
	default:
		return nil, nil
	}
}

func writeOutput(data []byte) error {
	if outputPath == "" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(outputPath, data, 0o644)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
