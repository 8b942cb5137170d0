package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/aymanbagabas/go-udiff"
	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/object"
	"go.uber.org/zap"
)

// NoChangesMessage is returned by Diff for a clean working tree.
const NoChangesMessage = "No changes"

// Diff renders the changes between HEAD and the working tree as unified
// diff text. Untracked files are not included.
func (s *Service) Diff(_ context.Context, path string) (string, error) {
	s.logger.Info("computing diff", zap.String("path", path))

	repo, err := s.open(opDiff, path)
	if err != nil {
		return "", err
	}

	wt, err := repo.Worktree()
	if err != nil {
		s.logger.Error("failed to get worktree", zap.Error(err))
		return "", libraryError(opDiff, "failed to get worktree", err)
	}

	st, err := wt.Status()
	if err != nil {
		s.logger.Error("failed to get worktree status", zap.Error(err))
		return "", libraryError(opDiff, "failed to get worktree status", err)
	}

	tree, err := headTree(repo)
	if err != nil {
		s.logger.Error("failed to read HEAD tree", zap.Error(err))
		return "", libraryError(opDiff, "failed to read HEAD tree", err)
	}

	var out strings.Builder
	for _, p := range diffable(st) {
		oldContent, err := treeContent(tree, p)
		if err != nil {
			return "", libraryError(opDiff, fmt.Sprintf("failed to read %s at HEAD", p), err)
		}
		newContent, err := workingContent(path, p)
		if err != nil {
			return "", libraryError(opDiff, fmt.Sprintf("failed to read %s", p), err)
		}

		out.WriteString(fileDiff(p, oldContent, newContent))
	}

	if out.Len() == 0 {
		return NoChangesMessage, nil
	}

	return out.String(), nil
}

// fileDiff renders one file section, or nothing when both sides are equal.
func fileDiff(p string, oldContent, newContent []byte) string {
	if bytes.Equal(oldContent, newContent) {
		return ""
	}

	header := fmt.Sprintf("diff --git a/%s b/%s\n", p, p)
	if isBinary(oldContent) || isBinary(newContent) {
		return header + fmt.Sprintf("Binary files a/%s and b/%s differ\n", p, p)
	}

	return header + udiff.Unified("a/"+p, "b/"+p, string(oldContent), string(newContent))
}

func headTree(repo *git.Repository) (*object.Tree, error) {
	head, err := repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		// unborn branch: everything is new
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, err
	}

	return commit.Tree()
}

func treeContent(tree *object.Tree, p string) ([]byte, error) {
	if tree == nil {
		return nil, nil
	}

	f, err := tree.File(p)
	if errors.Is(err, object.ErrFileNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	content, err := f.Contents()
	if err != nil {
		return nil, err
	}

	return []byte(content), nil
}

func workingContent(root, p string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(p)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

func isBinary(data []byte) bool {
	const sniff = 8000
	if len(data) > sniff {
		data = data[:sniff]
	}
	return bytes.IndexByte(data, 0) >= 0
}
