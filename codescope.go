// Package codescope is the unified polyglot code analysis core: discovery,
// parsing, reference-graph construction, six defect analyzers, hotspot
// correlation, graph reduction, and report assembly, all reachable through
// one entry point, Analyze. Command-line and transport framing are thin
// adapters living outside this package (see cmd/codescope).
package codescope

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"codescope/internal/analyze"
	"codescope/internal/astcore"
	"codescope/internal/cache"
	"codescope/internal/config"
	"codescope/internal/correlate"
	"codescope/internal/discovery"
	"codescope/internal/langs"
	"codescope/internal/logging"
	"codescope/internal/reduce"
	"codescope/internal/refgraph"
	"codescope/internal/report"
	"codescope/internal/schedule"

	"go.uber.org/zap"
)

// OutputFormat selects which serialization Analyze renders into
// AnalysisReport.Rendered.
type OutputFormat uint8

const (
	FormatJSON OutputFormat = iota
	FormatSARIF
	FormatMarkdown
)

// AnalysisRequest is the single input to Analyze. ProjectPath is the only
// required field; everything else overlays onto the project's
// .codescope.yml (or the built-in defaults when none exists).
type AnalysisRequest struct {
	ProjectPath      string
	IgnorePatterns   []string
	EnabledAnalyzers []string
	OutputFormat     OutputFormat
	MaxNodes         int
	MaxEdges         int
	Diagram          bool
	History          []analyze.ChurnTuple
	Deadline         time.Duration

	// CacheDir roots the L3 on-disk cache; empty disables caching for
	// this run entirely (every analyzer still runs, just without a
	// persisted fast path for a future run over the same file content).
	CacheDir string

	// AsOf is the reference instant churn recency decays from, and the
	// instant reported as the run's GeneratedAt when non-nil. Nil omits
	// GeneratedAt from the report, and churn recency then decays from
	// time.Now(), so churn scores are not reproducible across runs.
	AsOf *time.Time
}

// AnalysisReport is Analyze's return value: the structured report plus
// its caller-requested serialized form.
type AnalysisReport struct {
	*report.AnalysisReport
	Rendered []byte
}

var knownAnalyzers = map[string]bool{
	"complexity":  true,
	"deadcode":    true,
	"satd":        true,
	"duplication": true,
	"churn":       true,
	"bigo":        true,
}

// Analyze runs the full pipeline: discovery, parsing, graph construction,
// the enabled analyzers, hotspot correlation, graph reduction, and report
// assembly. A fatal condition (InvalidConfig, PathNotFound, Cancelled,
// InternalInvariant) is returned as both a Go error and an AnalysisReport
// whose Error field carries the same classification, so a caller that
// only inspects the report still sees why the run failed.
func Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisReport, error) {
	start := time.Now()
	log := logging.Stage("orchestrator")

	if req.ProjectPath == "" {
		return fail(report.InvalidConfig("project path is required"), nil, nil, start, req)
	}
	root, err := filepath.Abs(req.ProjectPath)
	if err != nil {
		return fail(report.InvalidConfig(err.Error()), nil, nil, start, req)
	}
	if info, statErr := os.Stat(root); statErr != nil || !info.IsDir() {
		return fail(report.PathNotFound(root), nil, nil, start, req)
	}

	cfg, err := config.Load(root)
	if err != nil {
		return fail(report.InvalidConfig(err.Error()), nil, nil, start, req)
	}
	applyRequestOverrides(&cfg, req)

	enabled, err := resolveAnalyzers(req.EnabledAnalyzers, cfg.EnabledAnalyzers)
	if err != nil {
		return fail(report.InvalidConfig(err.Error()), nil, nil, start, req)
	}

	runCtx := ctx
	var cancel context.CancelFunc = func() {}
	if req.Deadline > 0 {
		runCtx, cancel = context.WithTimeout(ctx, req.Deadline)
	}
	defer cancel()

	var fileCache *cache.Cache
	if req.CacheDir != "" {
		fileCache, err = cache.New(req.CacheDir, cache.DefaultL1Size)
		if err != nil {
			log.Warn("cache unavailable, continuing without it", zap.Error(err))
			fileCache = nil
		} else {
			defer fileCache.Close()
		}
	}

	walker := discovery.NewWalker(cfg)
	entries, err := walker.Walk(runCtx, root)
	if err != nil {
		if isCancellation(err) {
			return fail(report.Cancelled(err.Error()), nil, nil, start, req)
		}
		return fail(report.PathNotFound(root), nil, nil, start, req)
	}

	var warnings []report.Warning
	pathLang := make(map[string]astcore.Language, len(entries))
	pathToFile := make(map[string]astcore.FileId, len(entries))
	for _, e := range entries {
		pathLang[e.File.Path] = e.Lang
		pathToFile[e.File.Path] = e.File
	}

	sched := schedule.Config{}

	type readResult struct {
		entry discovery.FileEntry
		data  []byte
		ok    bool
	}
	reads, err := schedule.RunIO(runCtx, sched, entries, func(_ context.Context, e discovery.FileEntry) (readResult, error) {
		data, readErr := os.ReadFile(e.File.Path)
		if readErr != nil {
			return readResult{entry: e}, nil
		}
		return readResult{entry: e, data: data, ok: true}, nil
	})
	if err != nil && isCancellation(err) {
		return fail(report.Cancelled(err.Error()), partialReport(entries, pathLang, nil, start, req), nil, start, req)
	}

	store := astcore.NewStore()
	registry := langs.NewRegistry()
	defer registry.Close()

	for _, rr := range reads {
		if !rr.ok {
			warnings = append(warnings, report.Warning{Kind: report.ErrUnreadable, Path: rr.entry.File.Path, Message: "failed to read file"})
			continue
		}
		parser := registry.For(rr.entry.Lang)
		if parser == nil {
			continue
		}
		_, parseErr, err := parser.Parse(runCtx, store, rr.entry.File, rr.data)
		if err != nil {
			if isCancellation(err) {
				warnings = append(warnings, report.Warning{Kind: report.ErrCancelled, Path: rr.entry.File.Path, Message: err.Error()})
				return fail(report.Cancelled(err.Error()), partialReport(entries, pathLang, warnings, start, req), nil, start, req)
			}
			warnings = append(warnings, report.Warning{Kind: report.ErrParseError, Path: rr.entry.File.Path, Message: err.Error()})
			continue
		}
		if parseErr != nil {
			warnings = append(warnings, report.Warning{Kind: report.ErrParseError, Path: rr.entry.File.Path, Message: parseErr.Error()})
		}
	}

	if runCtx.Err() != nil {
		return fail(report.Cancelled(runCtx.Err().Error()), partialReport(entries, pathLang, warnings, start, req), nil, start, req)
	}

	graph := refgraph.Build(store)
	symtab := refgraph.BuildSymbolTables(store)

	results := runAnalyzers(store, graph, symtab, enabled, cfg, req.History, asOf(req))

	hotspots := correlate.Correlate(store, results.findings)

	fileFindings := buildFileFindings(store, results, cfg.Thresholds, pathToFile, fileCache)
	files := buildFileReports(entries, pathLang, fileFindings)

	maxNodes, maxEdges := cfg.MaxNodes, cfg.MaxEdges
	reduced := reduce.Reduce(graph, maxNodes, maxEdges)
	diagram := ""
	if req.Diagram {
		diagram = reduce.EmitMermaid(reduced)
	}

	in := report.Input{
		Files:     files,
		Hotspots:  hotspots,
		Graph:     reduced,
		Diagram:   diagram,
		Duration:  time.Since(start),
		Warnings:  warnings,
		Timestamp: req.AsOf,
	}
	rep := report.Assemble(in)

	rendered, err := render(rep, req.OutputFormat)
	if err != nil {
		return fail(report.InternalInvariant(err.Error()), rep, nil, start, req)
	}

	return &AnalysisReport{AnalysisReport: rep, Rendered: rendered}, nil
}

func asOf(req AnalysisRequest) time.Time {
	if req.AsOf != nil {
		return *req.AsOf
	}
	return time.Now()
}

func applyRequestOverrides(cfg *config.File, req AnalysisRequest) {
	if len(req.IgnorePatterns) > 0 {
		cfg.IgnorePatterns = append(append([]string{}, cfg.IgnorePatterns...), req.IgnorePatterns...)
	}
	if len(req.EnabledAnalyzers) > 0 {
		cfg.EnabledAnalyzers = req.EnabledAnalyzers
	}
	if req.MaxNodes > 0 {
		cfg.MaxNodes = req.MaxNodes
	}
	if req.MaxEdges > 0 {
		cfg.MaxEdges = req.MaxEdges
	}
}

func resolveAnalyzers(requested, fallback []string) (map[string]bool, error) {
	names := requested
	if len(names) == 0 {
		names = fallback
	}
	out := make(map[string]bool, len(names))
	for _, n := range names {
		if !knownAnalyzers[n] {
			return nil, fmt.Errorf("unknown analyzer %q", n)
		}
		out[n] = true
	}
	return out, nil
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// partialReport assembles whatever of the pipeline already ran by the time
// a cancellation was observed: the files discovery found (with no findings,
// since the analyzers haven't run yet at any of fail's cancellation call
// sites) and the warnings accumulated so far. fail attaches the fatal
// Cancelled error to the result, so a caller inspecting only the report
// still sees which files were in scope and what had already gone wrong,
// instead of an empty report indistinguishable from one for an empty
// project.
func partialReport(entries []discovery.FileEntry, pathLang map[string]astcore.Language, warnings []report.Warning, start time.Time, req AnalysisRequest) *report.AnalysisReport {
	files := buildFileReports(entries, pathLang, map[string][]report.Finding{})
	in := report.Input{
		Files:     files,
		Duration:  time.Since(start),
		Warnings:  warnings,
		Timestamp: req.AsOf,
	}
	return report.Assemble(in)
}

// fail builds a fatal AnalysisReport: whatever report was already
// assembled (nil before report assembly starts) gets aerr attached as its
// Error field, so a caller inspecting only the report still learns why
// the run stopped.
func fail(aerr *report.AnalysisError, partial *report.AnalysisReport, _ []report.Warning, start time.Time, req AnalysisRequest) (*AnalysisReport, error) {
	rep := partial
	if rep == nil {
		rep = report.Assemble(report.Input{Duration: time.Since(start), FatalErr: aerr, Timestamp: req.AsOf})
	} else {
		rep.Error = aerr
	}
	rendered, renderErr := render(rep, req.OutputFormat)
	if renderErr != nil {
		rendered = nil
	}
	return &AnalysisReport{AnalysisReport: rep, Rendered: rendered}, aerr
}

func render(rep *report.AnalysisReport, format OutputFormat) ([]byte, error) {
	switch format {
	case FormatSARIF:
		return report.SARIF(rep)
	case FormatMarkdown:
		return []byte(report.Markdown(rep)), nil
	default:
		return report.JSON(rep)
	}
}

// analyzerResults bundles every enabled analyzer's raw output. BigO is
// kept separate from correlate.Findings since the hotspot correlator has
// no asymptotic-growth factor; BigO findings still reach the per-file
// report, just outside the composite score.
type analyzerResults struct {
	findings correlate.Findings
	bigo     []analyze.BigOResult
}

// runAnalyzers invokes every enabled analyzer. Complexity results are
// always computed (even when "complexity" itself is disabled) since SATD
// needs them for context-based severity adjustment; the complexity results
// are only attached to the returned Findings when the caller actually
// enabled the complexity analyzer.
func runAnalyzers(store *astcore.Store, graph *refgraph.Graph, symtab *refgraph.SymbolTable, enabled map[string]bool, cfg config.File, history []analyze.ChurnTuple, asOfTime time.Time) analyzerResults {
	complexityResults := analyze.Complexity(store)

	var out analyzerResults
	if enabled["complexity"] {
		out.findings.Complexity = complexityResults
	}
	if enabled["deadcode"] {
		out.findings.DeadCode = analyze.DeadCode(store, graph, cfg.IncludeTests)
	}
	if enabled["satd"] {
		out.findings.SATD = analyze.SATD(store, complexityResults)
	}
	if enabled["duplication"] {
		out.findings.Duplication = analyze.Duplication(store, symtab)
	}
	if enabled["churn"] && len(history) > 0 {
		out.findings.Churn = analyze.Churn(history, asOfTime)
	}
	if enabled["bigo"] {
		out.bigo = analyze.BigO(store)
	}
	return out
}
