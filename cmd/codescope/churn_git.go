package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"codescope/internal/analyze"
)

// churnFromGit shells out to `git log` to produce the (path, timestamp,
// author) tuples the core's churn analyzer consumes, without the core
// itself ever touching a repository. depth caps how many commits are
// walked; 0 means the full history.
func churnFromGit(ctx context.Context, root string, depth int) ([]analyze.ChurnTuple, error) {
	args := []string{"log", "--name-only", "--pretty=format:COMMIT:%H|%aI|%an"}
	if depth > 0 {
		args = append(args, fmt.Sprintf("-n%d", depth))
	}
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = root
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git log failed: %w", err)
	}

	var tuples []analyze.ChurnTuple
	var currentTs int64
	var currentAuthor string

	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "COMMIT:") {
			parts := strings.SplitN(strings.TrimPrefix(line, "COMMIT:"), "|", 3)
			if len(parts) != 3 {
				continue
			}
			ts, parseErr := time.Parse(time.RFC3339, parts[1])
			if parseErr != nil {
				continue
			}
			currentTs = ts.Unix()
			currentAuthor = parts[2]
			continue
		}
		path := strings.TrimSpace(line)
		if path == "" {
			continue
		}
		tuples = append(tuples, analyze.ChurnTuple{Path: path, Timestamp: currentTs, Author: currentAuthor})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading git log output: %w", err)
	}
	return tuples, nil
}
