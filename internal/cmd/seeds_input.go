package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/querylens/querylens/internal/core/expand"
)

// resolveSeeds combines positional seeds with an optional seeds file.
// "-" reads from stdin. The result is trimmed and deduped in order.
func resolveSeeds(positional []string, seedsFile string) ([]string, error) {
	trimmed := strings.TrimSpace(seedsFile)
	if trimmed == "" {
		return expand.Distinct(positional), nil
	}
	if len(positional) > 0 {
		return nil, fmt.Errorf("cannot combine positional seeds with --seeds-file")
	}

	if trimmed == "-" {
		return readSeeds(os.Stdin)
	}

	file, err := os.Open(trimmed)
	if err != nil {
		return nil, err
	}
	defer file.Close() // nolint:errcheck // best-effort cleanup on read-only file

	return readSeeds(file)
}

// readSeeds parses one seed per line, skipping blanks and # comments.
func readSeeds(r io.Reader) ([]string, error) {
	seeds := make([]string, 0)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		seeds = append(seeds, raw)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return expand.Distinct(seeds), nil
}
