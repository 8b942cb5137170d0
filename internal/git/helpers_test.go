package git

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/config"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/pmtools/vcsbridge/internal/credentials"
	"github.com/pmtools/vcsbridge/internal/process"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestService(t *testing.T) (*Service, *process.Recorder) {
	t.Helper()

	logger := zaptest.NewLogger(t)
	rec := process.NewRecorder()
	resolver := credentials.NewResolver(credentials.Config{}, rec, logger)

	return NewService(Config{}, rec, resolver, logger), rec
}

// initRepo creates a non-bare repository with a local commit identity.
func initRepo(t *testing.T, dir string) *git.Repository {
	t.Helper()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	setIdentity(t, repo)

	return repo
}

func setIdentity(t *testing.T, repo *git.Repository) {
	t.Helper()

	cfg, err := repo.Config()
	require.NoError(t, err)
	cfg.User.Name = "Test Author"
	cfg.User.Email = "test@example.com"
	require.NoError(t, repo.SetConfig(cfg))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

// commitFile writes name and commits it directly through go-git.
func commitFile(t *testing.T, repo *git.Repository, dir, name, content string) {
	t.Helper()

	writeFile(t, dir, name, content)

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(name)
	require.NoError(t, err)
	_, err = wt.Commit("update "+name, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Test Author",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)
}

func headHash(t *testing.T, repo *git.Repository) string {
	t.Helper()

	head, err := repo.Head()
	require.NoError(t, err)
	return head.Hash().String()
}

// remoteFixture is a bare "server" repository, a seed clone used to publish
// commits to it, and a local clone under test.
type remoteFixture struct {
	bareDir  string
	seedDir  string
	seed     *git.Repository
	localDir string
	local    *git.Repository
}

func newRemoteFixture(t *testing.T) *remoteFixture {
	t.Helper()

	root := t.TempDir()
	f := &remoteFixture{
		bareDir:  filepath.Join(root, "server.git"),
		seedDir:  filepath.Join(root, "seed"),
		localDir: filepath.Join(root, "local"),
	}

	_, err := git.PlainInit(f.bareDir, true)
	require.NoError(t, err)

	f.seed = initRepo(t, f.seedDir)
	_, err = f.seed.CreateRemote(&config.RemoteConfig{Name: DefaultRemote, URLs: []string{f.bareDir}})
	require.NoError(t, err)
	commitFile(t, f.seed, f.seedDir, "README.md", "hello\n")
	f.publish(t)

	f.local, err = git.PlainCloneContext(context.Background(), f.localDir, &git.CloneOptions{URL: f.bareDir})
	require.NoError(t, err)
	setIdentity(t, f.local)

	return f
}

// publish pushes every seed branch to the bare repository.
func (f *remoteFixture) publish(t *testing.T) {
	t.Helper()

	err := f.seed.Push(&git.PushOptions{
		RemoteName: DefaultRemote,
		RefSpecs:   []config.RefSpec{"refs/heads/*:refs/heads/*"},
	})
	if !errors.Is(err, git.NoErrAlreadyUpToDate) {
		require.NoError(t, err)
	}
}

func openBare(dir string) (*git.Repository, error) {
	return git.PlainOpen(dir)
}

func remoteConfig(name, url string) *config.RemoteConfig {
	return &config.RemoteConfig{Name: name, URLs: []string{url}}
}
