// Package batch partitions identifier lists into bounded-concurrency slices
// and drives the per-identifier pipeline.
package batch

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadIdentifiers loads a line-oriented identifier file: one identifier per
// line, whitespace trimmed, blank lines skipped. A missing file is the
// caller's fatal startup condition.
func ReadIdentifiers(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input %s: %w", path, err)
	}
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		id := strings.TrimSpace(scanner.Text())
		if id == "" {
			continue
		}
		ids = append(ids, id)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input %s: %w", path, err)
	}
	return ids, nil
}
