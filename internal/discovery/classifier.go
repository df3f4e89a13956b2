package discovery

import (
	"bufio"
	"bytes"
	"path/filepath"
	"strings"

	"codescope/internal/astcore"
)

// extMap mirrors the extension table codescope's teacher used for full-repo
// language breakdowns, trimmed to the languages the AST layer can parse.
var extMap = map[string]astcore.Language{
	".go":  astcore.LangGo,
	".py":  astcore.LangPython,
	".pyi": astcore.LangPython,
	".rs":  astcore.LangRust,
	".ts":  astcore.LangTypeScript,
	".tsx": astcore.LangTypeScript,
	".js":  astcore.LangJavaScript,
	".jsx": astcore.LangJavaScript,
	".mjs": astcore.LangJavaScript,
	".cjs": astcore.LangJavaScript,
	".c":   astcore.LangC,
	".h":   astcore.LangC,
	".cpp": astcore.LangCPP,
	".cc":  astcore.LangCPP,
	".cxx": astcore.LangCPP,
	".hpp": astcore.LangCPP,
	".hh":  astcore.LangCPP,
	".kt":  astcore.LangKotlin,
	".kts": astcore.LangKotlin,
}

// DetectLanguage classifies a path by extension. Paths outside the closed
// language set return LangUnknown; they are not parsed, and the walker
// leaves them out of the file inventory.
func DetectLanguage(path string) astcore.Language {
	ext := strings.ToLower(filepath.Ext(path))
	if l, ok := extMap[ext]; ok {
		return l
	}
	return astcore.LangUnknown
}

// IsTestFile reports whether path looks like a test file under any of the
// supported languages' conventions.
func IsTestFile(path string) bool {
	base := filepath.Base(path)
	dir := filepath.Dir(path)

	switch {
	case strings.HasSuffix(path, "_test.go"):
		return true
	case strings.HasSuffix(path, "_test.py") || strings.HasPrefix(base, "test_"):
		return true
	case strings.HasSuffix(path, ".test.ts") || strings.HasSuffix(path, ".test.tsx") ||
		strings.HasSuffix(path, ".test.js") || strings.HasSuffix(path, ".test.jsx") ||
		strings.HasSuffix(path, ".spec.ts") || strings.HasSuffix(path, ".spec.tsx") ||
		strings.HasSuffix(path, ".spec.js"):
		return true
	}

	if strings.Contains(filepath.ToSlash(dir), "/tests/") || strings.Contains(filepath.ToSlash(dir), "/test/") ||
		strings.Contains(filepath.ToSlash(dir), "/__tests__/") {
		ext := filepath.Ext(path)
		switch ext {
		case ".py", ".js", ".ts", ".tsx", ".rs":
			return true
		}
	}

	if strings.Contains(dir, "tests") && strings.HasSuffix(path, ".rs") {
		return true
	}

	return false
}

// generatedMarkers are the comment prefixes that, by convention across the
// supported languages' tooling, mark a file as machine-generated.
var generatedMarkers = [][]byte{
	[]byte("Code generated"),
	[]byte("DO NOT EDIT"),
	[]byte("@generated"),
	[]byte("This file was automatically generated"),
}

// IsGenerated scans the first few lines of content for a generated-file
// marker. Only the leading lines are checked since every supported
// language's generators emit the marker as a header comment.
func IsGenerated(content []byte) bool {
	scanner := bufio.NewScanner(bytes.NewReader(content))
	lines := 0
	for scanner.Scan() && lines < 20 {
		line := scanner.Bytes()
		for _, marker := range generatedMarkers {
			if bytes.Contains(line, marker) {
				return true
			}
		}
		lines++
	}
	return false
}
