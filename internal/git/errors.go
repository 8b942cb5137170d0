package git

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-git/go-git/v6"
	"github.com/pmtools/vcsbridge/internal/failure"
)

const (
	opStatus   = "git status"
	opPull     = "git pull"
	opPush     = "git push"
	opCommit   = "git commit"
	opDiff     = "git diff"
	opClone    = "git clone"
	opAuthTest = "git auth test"
)

var (
	ErrDetachedHead     = errors.New("HEAD is detached")
	ErrNoRemote         = errors.New("no remote configured")
	ErrIdentityNotFound = errors.New("commit identity not configured")
)

// openError maps errors of opening a repository at path to failure categories.
func openError(op, path string, err error) error {
	switch {
	case errors.Is(err, git.ErrRepositoryNotExists):
		return &failure.Error{
			Category: failure.CategoryNotARepository,
			Op:       op,
			Message:  fmt.Sprintf("not a git repository: %s", path),
			Err:      err,
		}
	case errors.Is(err, fs.ErrNotExist):
		return &failure.Error{
			Category: failure.CategoryNotFound,
			Op:       op,
			Message:  fmt.Sprintf("path does not exist: %s", path),
			Err:      err,
		}
	default:
		return failure.Wrap(failure.Classify(err.Error()), op, err)
	}
}

// checkPath verifies path is a non-empty existing directory.
func checkPath(op, path string) error {
	if path == "" {
		return failure.Validation(op, "repository path is required")
	}
	info, err := os.Stat(path)
	if err != nil {
		return openError(op, path, err)
	}
	if !info.IsDir() {
		return failure.Validation(op, "not a directory: %s", path)
	}
	return nil
}

// libraryError classifies an embedded library error, keeping failures that
// are already classified.
func libraryError(op, message string, err error) error {
	var fe *failure.Error
	if errors.As(err, &fe) {
		return err
	}
	return &failure.Error{
		Category: failure.Classify(err.Error()),
		Op:       op,
		Message:  message,
		Err:      err,
	}
}
