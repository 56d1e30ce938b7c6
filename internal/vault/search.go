package vault

import (
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
)

// Extensions considered text for content search. Everything else is skipped.
var searchableExts = map[string]bool{
	".md":   true,
	".txt":  true,
	".csv":  true,
	".json": true,
	".yaml": true,
	".yml":  true,
}

const (
	maxMatchesPerFile = 5
	previewChars      = 200
)

// LineMatch is one matching line within a file. Line numbers are 1-based.
type LineMatch struct {
	Line int
	Text string
}

// FileMatch is the per-file search result. TotalHits counts every occurrence
// in the file; Matches holds at most maxMatchesPerFile lines.
type FileMatch struct {
	Path      string
	Preview   string
	TotalHits int
	Matches   []LineMatch
}

// Search performs a case-insensitive substring search over the direct
// children of startPath (non-recursive), restricted to the text extension
// allow-list. Files that fail to read are logged and skipped; one bad file
// never aborts the search.
func (v *Vault) Search(startPath, query string) ([]FileMatch, error) {
	entries, err := v.List(startPath)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	var results []FileMatch

	for _, e := range entries {
		if e.IsDir || !searchableExts[strings.ToLower(filepath.Ext(e.Name))] {
			continue
		}

		content, _, err := v.Read(e.Path)
		if err != nil {
			log.Warn().Str("path", e.Path).Err(err).Msg("search: skipping unreadable file")
			continue
		}

		hits := strings.Count(strings.ToLower(content), needle)
		if hits == 0 {
			continue
		}

		match := FileMatch{
			Path:      e.Path,
			TotalHits: hits,
			Preview:   truncate(content, previewChars),
		}
		for i, line := range strings.Split(content, "\n") {
			if strings.Contains(strings.ToLower(line), needle) {
				match.Matches = append(match.Matches, LineMatch{Line: i + 1, Text: line})
				if len(match.Matches) == maxMatchesPerFile {
					break
				}
			}
		}
		results = append(results, match)
	}

	return results, nil
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
