// Package exclusion parses exclusion lists into URL sets that pre-seed
// a crawl's visited registry. It accepts plain URL lists and the
// crawler's own CSV export, so a previous crawl's output can be fed
// straight back in to skip already-analyzed pages.
package exclusion

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
)

// Parse reads a line-oriented exclusion source. Each line contributes
// at most one URL: the text before the first comma, unquoted if it is
// wrapped in double quotes, kept only when it is a well-formed absolute
// http(s) URL. Everything else (CSV headers, blank lines, comments) is
// ignored, which is what lets a full CSV export double as an exclusion
// list.
func Parse(r io.Reader) ([]string, error) {
	seen := make(map[string]bool)
	var urls []string

	scanner := bufio.NewScanner(r)
	// Export rows can be long; the default 64 KiB token limit is not
	// enough for pages with many inlinks.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		candidate := extractURL(scanner.Text())
		if candidate == "" || seen[candidate] {
			continue
		}
		seen[candidate] = true
		urls = append(urls, candidate)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read exclusion list: %w", err)
	}

	return urls, nil
}

// ParseFile reads an exclusion list from disk.
func ParseFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open exclusion list: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// extractURL pulls the URL candidate out of one line, returning ""
// when the line carries none.
func extractURL(line string) string {
	// CSV input: only the first column can hold the URL.
	if i := strings.IndexByte(line, ','); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)

	// Strip one pair of enclosing quotes, the way the CSV export
	// writes every field.
	if len(line) >= 2 && strings.HasPrefix(line, `"`) && strings.HasSuffix(line, `"`) {
		line = line[1 : len(line)-1]
	}
	line = strings.TrimSpace(line)

	if !strings.HasPrefix(line, "http") {
		return ""
	}
	u, err := url.Parse(line)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return ""
	}

	return line
}
