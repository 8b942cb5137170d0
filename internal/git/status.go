package git

import (
	"slices"

	"github.com/go-git/go-git/v6"
)

// summarize splits worktree status entries into modified and untracked
// paths. Clean entries are skipped; every other state counts as modified.
func summarize(st git.Status) (modified, untracked []string) {
	modified, untracked = []string{}, []string{}

	for path, fs := range st {
		switch {
		case fs.Staging == git.Unmodified && fs.Worktree == git.Unmodified:
			continue
		case fs.Worktree == git.Untracked:
			untracked = append(untracked, path)
		default:
			modified = append(modified, path)
		}
	}

	slices.Sort(modified)
	slices.Sort(untracked)

	return modified, untracked
}

// hasStagedChanges reports whether the index differs from HEAD.
func hasStagedChanges(st git.Status) bool {
	for _, fs := range st {
		if fs.Staging != git.Unmodified && fs.Staging != git.Untracked {
			return true
		}
	}
	return false
}

// diffable returns the sorted paths that differ between HEAD and the
// working tree, ignoring untracked files.
func diffable(st git.Status) []string {
	var paths []string
	for path, fs := range st {
		if fs.Worktree == git.Untracked {
			continue
		}
		if fs.Staging == git.Unmodified && fs.Worktree == git.Unmodified {
			continue
		}
		paths = append(paths, path)
	}
	slices.Sort(paths)
	return paths
}
