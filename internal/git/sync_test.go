package git

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/go-git/go-git/v6/plumbing"
	"github.com/pmtools/vcsbridge/internal/credentials"
	"github.com/pmtools/vcsbridge/internal/failure"
	"github.com/pmtools/vcsbridge/internal/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pullCalls(rec *process.Recorder, verb string) int {
	n := 0
	for _, c := range rec.CallsTo("git") {
		if len(c.Args) == 3 && c.Args[0] == "-C" && c.Args[2] == verb {
			n++
		}
	}
	return n
}

// newRejectingRemote returns a local clone whose origin is an HTTP server
// that answers every request with 401.
func newRejectingRemote(t *testing.T) (dir, url string, hits *atomic.Int32) {
	t.Helper()

	hits = new(atomic.Int32)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	dir = t.TempDir()
	repo := initRepo(t, dir)
	commitFile(t, repo, dir, "README.md", "hello\n")
	url = srv.URL + "/team/oauth-service.git"
	_, err := repo.CreateRemote(remoteConfig(DefaultRemote, url))
	require.NoError(t, err)

	return dir, url, hits
}

func TestService_LibraryAuthFailure(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		run  func(svc *Service, dir string) (string, error)
	}{
		{"pull", func(svc *Service, dir string) (string, error) { return svc.Pull(ctx, dir, Defaults{}) }},
		{"push", func(svc *Service, dir string) (string, error) { return svc.Push(ctx, dir, Defaults{}) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, url, hits := newRejectingRemote(t)
			svc, rec := newTestService(t)

			_, err := tt.run(svc, dir)
			require.ErrorIs(t, err, failure.ErrAuthentication)
			assert.Contains(t, err.Error(), url)
			assert.Contains(t, err.Error(), credentials.Guidance)
			assert.Contains(t, err.Error(), "git cli attempt failed")
			assert.Equal(t, 1, pullCalls(rec, tt.name), "cli tier is tried exactly once")
			assert.Positive(t, hits.Load())
		})
	}
}

func TestService_Pull(t *testing.T) {
	ctx := context.Background()

	t.Run("cli success skips library", func(t *testing.T) {
		svc, rec := newTestService(t)
		dir := t.TempDir()
		rec.OnArgs("git", []string{"-C", dir, "pull"}, process.Reply{})

		msg, err := svc.Pull(ctx, dir, Defaults{})
		require.NoError(t, err)
		assert.Equal(t, "Already up to date.", msg)
		assert.Equal(t, 1, pullCalls(rec, "pull"))
	})

	t.Run("cli output is trimmed", func(t *testing.T) {
		svc, rec := newTestService(t)
		dir := t.TempDir()
		rec.OnArgs("git", []string{"-C", dir, "pull"}, process.Reply{Result: process.Result{Stdout: "Updating 1..2\nFast-forward\n\n"}})

		msg, err := svc.Pull(ctx, dir, Defaults{})
		require.NoError(t, err)
		assert.Equal(t, "Updating 1..2\nFast-forward", msg)
	})

	t.Run("library fallback fast-forwards", func(t *testing.T) {
		f := newRemoteFixture(t)
		commitFile(t, f.seed, f.seedDir, "CHANGELOG.md", "v2\n")
		f.publish(t)

		svc, rec := newTestService(t)
		msg, err := svc.Pull(ctx, f.localDir, Defaults{})
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(msg, "Pulled origin/"), msg)
		assert.Equal(t, headHash(t, f.seed), headHash(t, f.local))
		content, err := os.ReadFile(filepath.Join(f.localDir, "CHANGELOG.md"))
		require.NoError(t, err)
		assert.Equal(t, "v2\n", string(content))
		assert.Equal(t, 1, pullCalls(rec, "pull"), "cli tier is tried exactly once")
	})

	t.Run("library fallback already up to date", func(t *testing.T) {
		f := newRemoteFixture(t)

		svc, _ := newTestService(t)
		msg, err := svc.Pull(ctx, f.localDir, Defaults{})
		require.NoError(t, err)
		assert.Equal(t, "Already up to date.", msg)
	})

	t.Run("diverged histories are not merged", func(t *testing.T) {
		f := newRemoteFixture(t)
		commitFile(t, f.seed, f.seedDir, "remote.txt", "remote\n")
		f.publish(t)
		commitFile(t, f.local, f.localDir, "local.txt", "local\n")
		before := headHash(t, f.local)

		svc, _ := newTestService(t)
		_, err := svc.Pull(ctx, f.localDir, Defaults{})
		require.ErrorIs(t, err, failure.ErrDivergence)
		assert.Contains(t, err.Error(), "git cli attempt failed")

		assert.Equal(t, before, headHash(t, f.local))
		_, statErr := os.Stat(filepath.Join(f.localDir, "remote.txt"))
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("missing remote", func(t *testing.T) {
		svc, _ := newTestService(t)
		dir := t.TempDir()
		repo := initRepo(t, dir)
		commitFile(t, repo, dir, "a.txt", "a")

		_, err := svc.Pull(ctx, dir, Defaults{})
		assert.ErrorIs(t, err, failure.ErrNotFound)
	})

	t.Run("empty path", func(t *testing.T) {
		svc, rec := newTestService(t)

		_, err := svc.Pull(ctx, "", Defaults{})
		require.ErrorIs(t, err, failure.ErrValidation)
		assert.Empty(t, rec.Calls())
	})
}

func TestService_Push(t *testing.T) {
	ctx := context.Background()

	t.Run("library fallback pushes current branch", func(t *testing.T) {
		f := newRemoteFixture(t)
		commitFile(t, f.local, f.localDir, "feature.txt", "feature\n")

		svc, rec := newTestService(t)
		msg, err := svc.Push(ctx, f.localDir, Defaults{})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(msg, "Pushed to origin/"), msg)
		assert.Equal(t, 1, pullCalls(rec, "push"))

		branch, err := currentBranch(f.local)
		require.NoError(t, err)
		bare, err := openBare(f.bareDir)
		require.NoError(t, err)
		ref, err := bare.Reference(plumbing.NewBranchReferenceName(branch), true)
		require.NoError(t, err)
		assert.Equal(t, headHash(t, f.local), ref.Hash().String())
	})

	t.Run("nothing to push", func(t *testing.T) {
		f := newRemoteFixture(t)

		svc, _ := newTestService(t)
		msg, err := svc.Push(ctx, f.localDir, Defaults{})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(msg, "Pushed to origin/"), msg)
	})

	t.Run("cli success", func(t *testing.T) {
		svc, rec := newTestService(t)
		dir := t.TempDir()
		rec.OnArgs("git", []string{"-C", dir, "push"}, process.Reply{})

		msg, err := svc.Push(ctx, dir, Defaults{})
		require.NoError(t, err)
		assert.Equal(t, "Push completed", msg)
	})
}

func TestService_TestAuth(t *testing.T) {
	ctx := context.Background()

	t.Run("reachable remote", func(t *testing.T) {
		f := newRemoteFixture(t)

		svc, _ := newTestService(t)
		report, err := svc.TestAuth(ctx, f.localDir, Defaults{})
		require.NoError(t, err)

		assert.Equal(t, "origin", report.Remote)
		assert.Equal(t, f.bareDir, report.URL)
		assert.Equal(t, "Unknown", report.Scheme)
		assert.Contains(t, report.String(), f.bareDir)
	})

	t.Run("falls back to upstream remote", func(t *testing.T) {
		f := newRemoteFixture(t)
		require.NoError(t, f.local.DeleteRemote("origin"))
		_, err := f.local.CreateRemote(remoteConfig(SecondaryRemote, f.bareDir))
		require.NoError(t, err)

		svc, _ := newTestService(t)
		report, err := svc.TestAuth(ctx, f.localDir, Defaults{})
		require.NoError(t, err)
		assert.Equal(t, SecondaryRemote, report.Remote)
	})

	t.Run("no remote", func(t *testing.T) {
		dir := t.TempDir()
		initRepo(t, dir)

		svc, _ := newTestService(t)
		_, err := svc.TestAuth(ctx, dir, Defaults{})
		assert.ErrorIs(t, err, failure.ErrNotFound)
	})
}
