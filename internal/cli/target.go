package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pmtools/vcsbridge/internal/operations"
	"github.com/pmtools/vcsbridge/internal/projects"
	"github.com/pmtools/vcsbridge/internal/svn"
	"github.com/spf13/cobra"
)

// targetFlags are shared by the commands that act on one working copy.
type targetFlags struct {
	vcs  string
	name string
}

func (f *targetFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.vcs, "vcs", "", "version control system: git or svn (detected when omitted)")
	cmd.Flags().StringVar(&f.name, "name", "", "repository name used in the history")
}

// target builds the operation target for the path in args, "." by default.
// An omitted --vcs is guessed from the metadata directories above the path;
// when none is found the project registry decides.
func (f *targetFlags) target(args []string) (operations.Target, error) {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return operations.Target{}, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	kind := projects.Kind(f.vcs)
	if !kind.Valid() {
		return operations.Target{}, fmt.Errorf("unsupported vcs %q: choose git or svn", f.vcs)
	}
	if kind == projects.KindNone {
		kind = detectKind(abs)
	}

	return operations.Target{Kind: kind, Path: abs, Name: f.name}, nil
}

// detectKind picks the backend of the nearest metadata directory at or above
// path. A .git directory counts only at path itself, since the git engine
// does not search ancestors; an enclosing repository yields KindNone.
func detectKind(path string) projects.Kind {
	for dir := path; ; {
		if dir == path && exists(filepath.Join(dir, ".git")) {
			return projects.KindGit
		}
		if info, err := os.Stat(filepath.Join(dir, svn.MetadataDir)); err == nil && info.IsDir() {
			return projects.KindSvn
		}
		if dir != path && exists(filepath.Join(dir, ".git")) {
			return projects.KindNone
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return projects.KindNone
		}
		dir = parent
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
