package git

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-git/v6/config"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/pmtools/vcsbridge/internal/failure"
	"github.com/pmtools/vcsbridge/internal/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Status(t *testing.T) {
	ctx := context.Background()

	t.Run("empty repository", func(t *testing.T) {
		svc, _ := newTestService(t)
		dir := t.TempDir()
		initRepo(t, dir)

		status, err := svc.Status(ctx, dir)
		require.NoError(t, err)

		assert.Empty(t, status.Modified)
		assert.Empty(t, status.Untracked)
		assert.False(t, status.IsDirty)
		assert.NotNil(t, status.Branch, "unborn branch still has a name")
		assert.Nil(t, status.HeadRevision)
		assert.Nil(t, status.Ahead)
		assert.Nil(t, status.Behind)
	})

	t.Run("untracked file", func(t *testing.T) {
		svc, _ := newTestService(t)
		dir := t.TempDir()
		initRepo(t, dir)
		writeFile(t, dir, "a.txt", "a")

		status, err := svc.Status(ctx, dir)
		require.NoError(t, err)

		assert.Equal(t, []string{"a.txt"}, status.Untracked)
		assert.Empty(t, status.Modified)
		assert.True(t, status.IsDirty)
	})

	t.Run("modified and staged files are modified", func(t *testing.T) {
		svc, _ := newTestService(t)
		dir := t.TempDir()
		repo := initRepo(t, dir)
		commitFile(t, repo, dir, "a.txt", "one\n")
		writeFile(t, dir, "a.txt", "two\n")
		writeFile(t, dir, "b.txt", "new\n")
		wt, err := repo.Worktree()
		require.NoError(t, err)
		_, err = wt.Add("b.txt")
		require.NoError(t, err)

		status, err := svc.Status(ctx, dir)
		require.NoError(t, err)

		assert.Equal(t, []string{"a.txt", "b.txt"}, status.Modified)
		assert.Empty(t, status.Untracked)
		assert.True(t, status.IsDirty)
		require.NotNil(t, status.HeadRevision)
		assert.Equal(t, headHash(t, repo), *status.HeadRevision)
	})

	t.Run("not a repository", func(t *testing.T) {
		svc, _ := newTestService(t)
		dir := t.TempDir()

		_, err := svc.Status(ctx, dir)
		require.ErrorIs(t, err, failure.ErrNotARepository)

		_, statErr := os.Stat(filepath.Join(dir, ".git"))
		assert.True(t, os.IsNotExist(statErr), "status must not create a repository")
	})

	t.Run("subdirectory is not a repository root", func(t *testing.T) {
		svc, _ := newTestService(t)
		dir := t.TempDir()
		initRepo(t, dir)
		sub := filepath.Join(dir, "sub")
		require.NoError(t, os.Mkdir(sub, 0o755))

		_, err := svc.Status(ctx, sub)
		assert.ErrorIs(t, err, failure.ErrNotARepository)
	})

	t.Run("missing path", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.Status(ctx, filepath.Join(t.TempDir(), "missing"))
		assert.ErrorIs(t, err, failure.ErrNotFound)
	})
}

func TestService_Commit(t *testing.T) {
	ctx := context.Background()

	t.Run("second commit has nothing to commit", func(t *testing.T) {
		svc, _ := newTestService(t)
		dir := t.TempDir()
		repo := initRepo(t, dir)
		commitFile(t, repo, dir, "a.txt", "one\n")
		writeFile(t, dir, "a.txt", "two\n")
		writeFile(t, dir, "b.txt", "new\n")

		msg, err := svc.Commit(ctx, dir, "second")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(msg, "Committed "), msg)
		assert.True(t, strings.HasSuffix(msg, " - second"), msg)

		_, err = svc.Commit(ctx, dir, "again")
		require.ErrorIs(t, err, failure.ErrNoChanges)

		status, err := svc.Status(ctx, dir)
		require.NoError(t, err)
		assert.False(t, status.IsDirty)

		head, err := repo.Head()
		require.NoError(t, err)
		commit, err := repo.CommitObject(head.Hash())
		require.NoError(t, err)
		assert.Equal(t, "second", commit.Message)
		assert.Equal(t, "Test Author", commit.Author.Name)
		assert.Equal(t, commit.Author.Email, commit.Committer.Email)
		assert.Equal(t, 1, commit.NumParents())
	})

	t.Run("clean repository", func(t *testing.T) {
		svc, _ := newTestService(t)
		dir := t.TempDir()
		repo := initRepo(t, dir)
		commitFile(t, repo, dir, "a.txt", "one\n")
		before := headHash(t, repo)

		_, err := svc.Commit(ctx, dir, "msg")
		require.ErrorIs(t, err, failure.ErrNoChanges)
		assert.Equal(t, before, headHash(t, repo))
	})

	t.Run("first commit on unborn branch", func(t *testing.T) {
		svc, _ := newTestService(t)
		dir := t.TempDir()
		repo := initRepo(t, dir)
		writeFile(t, dir, "a.txt", "a")

		_, err := svc.Commit(ctx, dir, "initial")
		require.NoError(t, err)

		commit, err := repo.CommitObject(plumbing.NewHash(headHash(t, repo)))
		require.NoError(t, err)
		assert.Zero(t, commit.NumParents())
	})

	t.Run("deleted file is committed", func(t *testing.T) {
		svc, _ := newTestService(t)
		dir := t.TempDir()
		repo := initRepo(t, dir)
		commitFile(t, repo, dir, "a.txt", "a")
		require.NoError(t, os.Remove(filepath.Join(dir, "a.txt")))

		_, err := svc.Commit(ctx, dir, "remove a")
		require.NoError(t, err)

		status, err := svc.Status(ctx, dir)
		require.NoError(t, err)
		assert.False(t, status.IsDirty)
	})

	t.Run("empty message", func(t *testing.T) {
		svc, _ := newTestService(t)
		dir := t.TempDir()
		initRepo(t, dir)

		_, err := svc.Commit(ctx, dir, "  ")
		assert.ErrorIs(t, err, failure.ErrValidation)
	})

	t.Run("not a repository", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.Commit(ctx, t.TempDir(), "msg")
		assert.ErrorIs(t, err, failure.ErrNotARepository)
	})
}

func TestService_Diff(t *testing.T) {
	ctx := context.Background()

	t.Run("modified file", func(t *testing.T) {
		svc, _ := newTestService(t)
		dir := t.TempDir()
		repo := initRepo(t, dir)
		commitFile(t, repo, dir, "a.txt", "one\nshared\n")
		writeFile(t, dir, "a.txt", "two\nshared\n")
		writeFile(t, dir, "untracked.txt", "ignored by diff\n")

		out, err := svc.Diff(ctx, dir)
		require.NoError(t, err)

		assert.Contains(t, out, "diff --git a/a.txt b/a.txt\n")
		assert.Contains(t, out, "--- a/a.txt\n")
		assert.Contains(t, out, "+++ b/a.txt\n")
		assert.Contains(t, out, "\n-one\n")
		assert.Contains(t, out, "\n+two\n")
		assert.Contains(t, out, "\n shared\n")
		assert.NotContains(t, out, "untracked.txt")
	})

	t.Run("staged new and binary files", func(t *testing.T) {
		svc, _ := newTestService(t)
		dir := t.TempDir()
		repo := initRepo(t, dir)
		commitFile(t, repo, dir, "a.txt", "a\n")
		writeFile(t, dir, "new.txt", "fresh\n")
		writeFile(t, dir, "blob.bin", "\x00\x01\x02")
		wt, err := repo.Worktree()
		require.NoError(t, err)
		_, err = wt.Add("new.txt")
		require.NoError(t, err)
		_, err = wt.Add("blob.bin")
		require.NoError(t, err)

		out, err := svc.Diff(ctx, dir)
		require.NoError(t, err)

		assert.Contains(t, out, "+fresh\n")
		assert.Contains(t, out, "Binary files a/blob.bin and b/blob.bin differ\n")
		assert.Less(t, strings.Index(out, "blob.bin"), strings.Index(out, "new.txt"), "files are sorted")
	})

	t.Run("no changes", func(t *testing.T) {
		svc, _ := newTestService(t)
		dir := t.TempDir()
		repo := initRepo(t, dir)
		commitFile(t, repo, dir, "a.txt", "a\n")

		out, err := svc.Diff(ctx, dir)
		require.NoError(t, err)
		assert.Equal(t, NoChangesMessage, out)
	})
}

func TestService_Clone(t *testing.T) {
	ctx := context.Background()

	t.Run("validation happens before spawning", func(t *testing.T) {
		svc, rec := newTestService(t)

		_, err := svc.Clone(ctx, "", "/tmp/target")
		require.ErrorIs(t, err, failure.ErrValidation)
		_, err = svc.Clone(ctx, "https://example.com/r.git", " ")
		require.ErrorIs(t, err, failure.ErrValidation)

		assert.Empty(t, rec.Calls())
	})

	t.Run("runs git clone", func(t *testing.T) {
		svc, rec := newTestService(t)
		rec.OnArgs("git", []string{"clone"}, process.Reply{})

		msg, err := svc.Clone(ctx, "https://example.com/r.git", "/tmp/target")
		require.NoError(t, err)
		assert.Equal(t, "Clone completed", msg)

		calls := rec.CallsTo("git")
		require.Len(t, calls, 1)
		assert.Equal(t, []string{"clone", "https://example.com/r.git", "/tmp/target"}, calls[0].Args)
	})

	t.Run("classifies failure", func(t *testing.T) {
		svc, rec := newTestService(t)
		rec.OnArgs("git", []string{"clone"}, process.Reply{Result: process.Result{
			ExitCode: 128,
			Stderr:   "fatal: Authentication failed for 'https://example.com/r.git/'",
		}})

		_, err := svc.Clone(ctx, "https://example.com/r.git", "/tmp/target")
		assert.ErrorIs(t, err, failure.ErrAuthentication)
	})
}

func TestRemoteForBranch(t *testing.T) {
	dir := t.TempDir()
	repo := initRepo(t, dir)

	assert.Equal(t, "origin", remoteForBranch(repo, "main", "origin"))

	cfg, err := repo.Config()
	require.NoError(t, err)
	cfg.Remotes["fork"] = &config.RemoteConfig{
		Name:  "fork",
		URLs:  []string{"https://example.com/fork.git"},
		Fetch: []config.RefSpec{"+refs/heads/*:refs/remotes/fork/*"},
	}
	cfg.Remotes["upstream"] = &config.RemoteConfig{
		Name:  "upstream",
		URLs:  []string{"https://example.com/upstream.git"},
		Fetch: []config.RefSpec{"+refs/heads/*:refs/remotes/upstream/*"},
	}
	cfg.Branches["main"] = &config.Branch{Name: "main", Remote: "fork", Merge: plumbing.NewBranchReferenceName("main")}
	cfg.Branches["topic"] = &config.Branch{Name: "topic", Remote: "upstream", Merge: plumbing.NewBranchReferenceName("feature")}
	cfg.Branches["local"] = &config.Branch{Name: "local", Remote: ".", Merge: plumbing.NewBranchReferenceName("main")}
	cfg.Branches["gone"] = &config.Branch{Name: "gone", Remote: "removed", Merge: plumbing.NewBranchReferenceName("gone")}
	require.NoError(t, repo.SetConfig(cfg))

	assert.Equal(t, "fork", remoteForBranch(repo, "main", "origin"))
	assert.Equal(t, "upstream", remoteForBranch(repo, "topic", "origin"), "tracking ref refs/remotes/upstream/feature")
	assert.Equal(t, "origin", remoteForBranch(repo, "local", "origin"), "a local upstream has no remote")
	assert.Equal(t, "origin", remoteForBranch(repo, "gone", "origin"), "unknown remote")
	assert.Equal(t, "origin", remoteForBranch(repo, "other", "origin"))
}

func TestSummarize(t *testing.T) {
	dir := t.TempDir()
	repo := initRepo(t, dir)
	commitFile(t, repo, dir, "z.txt", "z")
	writeFile(t, dir, "z.txt", "changed")
	writeFile(t, dir, "b.txt", "b")
	writeFile(t, dir, "a.txt", "a")

	wt, err := repo.Worktree()
	require.NoError(t, err)
	st, err := wt.Status()
	require.NoError(t, err)

	modified, untracked := summarize(st)
	assert.Equal(t, []string{"z.txt"}, modified)
	assert.Equal(t, []string{"a.txt", "b.txt"}, untracked)
}
