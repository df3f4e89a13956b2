package discovery

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"codescope/internal/astcore"
	"codescope/internal/config"
	"codescope/internal/logging"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
)

// alwaysSkippedDirs are excluded regardless of ignore patterns: they are
// either version-control internals or build output no analyzer should walk.
var alwaysSkippedDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"third_party":  true,
	"dist":         true,
	"build":        true,
	"target":       true,
	"__pycache__":  true,
	".venv":        true,
	".gradle":      true,
}

// isCMakeBuildDir matches the cmake-build-* family commonly named by
// name (cmake-build-debug, cmake-build-release, ...).
func isCMakeBuildDir(name string) bool {
	return strings.HasPrefix(name, "cmake-build-")
}

// FileEntry is one discovered source file, classified and fingerprinted but
// not yet parsed.
type FileEntry struct {
	File        astcore.FileId
	Lang        astcore.Language
	IsTest      bool
	IsGenerated bool
	Size        int64
	ModTime     time.Time
}

// Walker enumerates source files under a root directory, honoring ignore
// patterns, a depth limit, and symlink-following policy.
type Walker struct {
	cfg config.File
}

// NewWalker builds a Walker from a resolved configuration.
func NewWalker(cfg config.File) *Walker {
	return &Walker{cfg: cfg}
}

type walkJob struct {
	path string
	info os.FileInfo
}

// Walk enumerates every file under root whose language is supported and
// which survives the ignore/test/depth filters. The directory traversal is
// sequential; per-file hashing is fanned out across a bounded worker pool
// since hashing, not walking, dominates discovery latency on large trees.
func (w *Walker) Walk(ctx context.Context, root string) ([]FileEntry, error) {
	log := logging.Stage("discovery")
	start := time.Now()

	jobs, err := w.collectJobs(ctx, root)
	if err != nil {
		return nil, err
	}

	results := make([]FileEntry, len(jobs))
	var wg sync.WaitGroup
	sem := make(chan struct{}, 32)
	var mu sync.Mutex
	var firstErr error

	for i, j := range jobs {
		wg.Add(1)
		go func(i int, j walkJob) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			select {
			case <-ctx.Done():
				mu.Lock()
				if firstErr == nil {
					firstErr = ctx.Err()
				}
				mu.Unlock()
				return
			default:
			}

			entry, skip, err := w.classifyJob(j)
			if err != nil {
				log.Warn("skipping unreadable file", zap.String("path", j.path), zap.Error(err))
				return
			}
			if skip {
				return
			}
			results[i] = entry
		}(i, j)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	out := results[:0]
	for _, e := range results {
		if e.File.Path != "" {
			out = append(out, e)
		}
	}

	log.Info("discovery complete", zap.Int("files", len(out)), zap.Duration("elapsed", time.Since(start)))
	return out, nil
}

func (w *Walker) classifyJob(j walkJob) (FileEntry, bool, error) {
	isTest := IsTestFile(j.path)
	if isTest && !w.cfg.IncludeTests {
		return FileEntry{}, true, nil
	}

	file, content, err := astcore.FingerprintFile(j.path)
	if err != nil {
		return FileEntry{}, false, err
	}

	return FileEntry{
		File:        file,
		Lang:        DetectLanguage(j.path),
		IsTest:      isTest,
		IsGenerated: IsGenerated(content),
		Size:        j.info.Size(),
		ModTime:     j.info.ModTime(),
	}, false, nil
}

func (w *Walker) collectJobs(ctx context.Context, root string) ([]walkJob, error) {
	log := logging.Stage("discovery")
	visited := map[string]bool{} // resolved symlink targets, cycle guard
	var jobs []walkJob

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Warn("walk error", zap.String("path", path), zap.Error(err))
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			return w.visitDir(path, info, rel)
		}

		if info.Mode()&os.ModeSymlink != 0 {
			resolved, ok := w.resolveSymlink(path, visited)
			if !ok {
				return nil
			}
			info = resolved
		}

		if w.matchesIgnore(rel) {
			return nil
		}
		if DetectLanguage(path) == astcore.LangUnknown {
			return nil
		}

		jobs = append(jobs, walkJob{path: path, info: info})
		return nil
	})
	return jobs, err
}

func (w *Walker) visitDir(path string, info os.FileInfo, rel string) error {
	name := info.Name()
	if name != "." && (alwaysSkippedDirs[name] || isCMakeBuildDir(name) || strings.HasPrefix(name, ".")) {
		return filepath.SkipDir
	}
	if w.cfg.MaxDepth > 0 && strings.Count(rel, "/") >= w.cfg.MaxDepth {
		return filepath.SkipDir
	}
	if w.matchesIgnore(rel) {
		return filepath.SkipDir
	}
	return nil
}

func (w *Walker) resolveSymlink(path string, visited map[string]bool) (os.FileInfo, bool) {
	if !w.cfg.FollowSymlinks {
		return nil, false
	}
	target, err := filepath.EvalSymlinks(path)
	if err != nil || visited[target] {
		return nil, false
	}
	visited[target] = true
	real, err := os.Stat(target)
	if err != nil {
		return nil, false
	}
	return real, true
}

func (w *Walker) matchesIgnore(rel string) bool {
	for _, pat := range w.cfg.IgnorePatterns {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return true
		}
	}
	return false
}
