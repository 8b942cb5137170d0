package svn

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/pmtools/vcsbridge/internal/process"
	"github.com/samber/lo"
)

// statusColumns is the width of the status block that precedes the path in
// `svn status` output.
const statusColumns = 8

// ParseInfo extracts the fields of `svn info` output by line prefix.
func ParseInfo(out string) Info {
	var info Info

	for _, line := range process.Lines(out) {
		switch {
		case strings.HasPrefix(line, "Revision: "):
			info.Revision = strings.TrimPrefix(line, "Revision: ")
		case strings.HasPrefix(line, "URL: "):
			info.URL = strings.TrimPrefix(line, "URL: ")
		case strings.HasPrefix(line, "Repository Root: "):
			info.RepositoryRoot = strings.TrimPrefix(line, "Repository Root: ")
		case strings.HasPrefix(line, "Last Changed Author: "):
			info.Author = strings.TrimPrefix(line, "Last Changed Author: ")
		case strings.HasPrefix(line, "Last Changed Date: "):
			// 2024-01-15 10:30:45 +0800 (Mon, 15 Jan 2024)
			date := strings.TrimPrefix(line, "Last Changed Date: ")
			date, _, _ = strings.Cut(date, "(")
			info.Date = strings.TrimSpace(date)
		}
	}

	return info
}

// ParseStatus classifies `svn status` lines by their first column.
// Modified, added, deleted and replaced items are modified; unversioned
// items are untracked; everything else is ignored. Absolute paths are made
// relative to root.
func ParseStatus(out, root string) (modified, untracked []string) {
	modified, untracked = []string{}, []string{}

	for _, line := range process.Lines(out) {
		if strings.HasPrefix(line, "Status of working copy") || strings.HasPrefix(line, "---") {
			continue
		}

		path := statusPath(line, root)
		if path == "" {
			continue
		}

		switch line[0] {
		case 'M', 'A', 'D', 'R':
			modified = append(modified, path)
		case '?':
			untracked = append(untracked, path)
		}
	}

	modified = lo.Uniq(modified)
	untracked = lo.Uniq(untracked)
	slices.Sort(modified)
	slices.Sort(untracked)

	return modified, untracked
}

func statusPath(line, root string) string {
	if len(line) <= statusColumns {
		return ""
	}

	path := strings.TrimSpace(line[statusColumns:])
	if root != "" && filepath.IsAbs(path) {
		if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
			path = rel
		}
	}

	return filepath.ToSlash(path)
}

// summaryLine returns the first output line containing marker, or fallback.
func summaryLine(out, marker, fallback string) string {
	line, ok := lo.Find(process.Lines(out), func(l string) bool {
		return strings.Contains(l, marker)
	})
	if !ok {
		return fallback
	}
	return strings.TrimSpace(line)
}
