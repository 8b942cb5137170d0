package svn

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pmtools/vcsbridge/internal/failure"
)

// MetadataDir is the administrative directory at a working copy root.
const MetadataDir = ".svn"

// FindWorkingCopyRoot returns the nearest directory at or above path that
// contains a .svn directory.
func FindWorkingCopyRoot(path string) (string, error) {
	if path == "" {
		return "", failure.Validation(opStatus, "path is required")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", failure.Wrap(failure.CategoryUnknown, opStatus, err)
	}

	if _, err = os.Stat(abs); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &failure.Error{
				Category: failure.CategoryNotFound,
				Op:       opStatus,
				Message:  fmt.Sprintf("path does not exist: %s", path),
				Err:      err,
			}
		}
		return "", failure.Wrap(failure.CategoryUnknown, opStatus, err)
	}

	for dir := abs; ; {
		if info, statErr := os.Stat(filepath.Join(dir, MetadataDir)); statErr == nil && info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", &failure.Error{
		Category: failure.CategoryNotAWorkingCopy,
		Op:       opStatus,
		Message:  fmt.Sprintf("no working copy found at %s or any parent directory", path),
		Err:      ErrNoWorkingCopy,
	}
}
