package sweep

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadSiteFile reads the site list: one URL per line, trimmed, empty lines
// and #-comments skipped, file order preserved. A missing or unreadable
// file is the one hard pre-flight failure of a run.
func ReadSiteFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read site list: %w", err)
	}
	defer f.Close()

	var sites []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sites = append(sites, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read site list: %w", err)
	}
	return sites, nil
}
