package codescope

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"codescope/internal/analyze"
)

// ParseChurnStream reads the newline-delimited (path, ISO-8601 timestamp,
// author) record stream the external-interface contract accepts as
// optional churn history, one tab-separated record per line. Blank lines
// and lines starting with '#' are skipped so a hand-edited or
// git-log-generated file can carry a leading comment.
func ParseChurnStream(r io.Reader) ([]analyze.ChurnTuple, error) {
	var tuples []analyze.ChurnTuple
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 3 {
			return nil, fmt.Errorf("churn stream line %d: expected 3 tab-separated fields, got %d", lineNo, len(fields))
		}
		ts, err := time.Parse(time.RFC3339, fields[1])
		if err != nil {
			return nil, fmt.Errorf("churn stream line %d: invalid timestamp %q: %w", lineNo, fields[1], err)
		}
		tuples = append(tuples, analyze.ChurnTuple{
			Path:      fields[0],
			Timestamp: ts.Unix(),
			Author:    fields[2],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading churn stream: %w", err)
	}
	return tuples, nil
}
