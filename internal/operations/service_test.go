package operations

import (
	"context"
	"path/filepath"
	"testing"

	gogit "github.com/go-git/go-git/v6"
	"github.com/google/uuid"
	"github.com/pmtools/vcsbridge/internal/credentials"
	"github.com/pmtools/vcsbridge/internal/failure"
	"github.com/pmtools/vcsbridge/internal/git"
	"github.com/pmtools/vcsbridge/internal/history"
	"github.com/pmtools/vcsbridge/internal/preferences"
	"github.com/pmtools/vcsbridge/internal/process"
	"github.com/pmtools/vcsbridge/internal/projects"
	"github.com/pmtools/vcsbridge/internal/svn"
	"github.com/pmtools/vcsbridge/pkg/badgerfx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fixture struct {
	svc      *Service
	rec      *process.Recorder
	history  *history.Service
	registry *projects.Service
	metrics  *Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := zaptest.NewLogger(t)
	db, err := badgerfx.Open(badgerfx.Config{InMemory: true}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rec := process.NewRecorder()
	rec.OnArgs("svn", []string{"--version"}, process.Reply{Result: process.Result{Stdout: "1.14.2\n"}})

	prefs, err := preferences.NewService(preferences.Config{Path: filepath.Join(t.TempDir(), "config.json")}, logger)
	require.NoError(t, err)

	metrics, err := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	f := &fixture{
		rec:      rec,
		history:  history.NewService(history.Config{}, history.NewRepository(db), logger),
		registry: projects.NewService(projects.NewStore(db), logger),
		metrics:  metrics,
	}
	f.svc = NewService(
		git.NewService(git.Config{}, rec, credentials.NewResolver(credentials.Config{}, rec, logger), logger),
		svn.NewService(svn.Config{}, rec, logger),
		prefs,
		f.registry,
		f.history,
		metrics,
		logger,
	)

	return f
}

func (f *fixture) entries(t *testing.T) []history.Entry {
	t.Helper()

	entries, err := f.history.Recent(context.Background(), 100)
	require.NoError(t, err)
	return entries
}

func TestService_Pull(t *testing.T) {
	ctx := context.Background()

	t.Run("git", func(t *testing.T) {
		f := newFixture(t)
		dir := t.TempDir()
		f.rec.OnArgs("git", []string{"-C", dir, "pull"}, process.Reply{Result: process.Result{Stdout: "Already up to date.\n"}})

		msg, err := f.svc.Pull(ctx, Target{Kind: projects.KindGit, Path: dir})
		require.NoError(t, err)
		assert.Equal(t, "Already up to date.", msg)

		entries := f.entries(t)
		require.Len(t, entries, 1)
		assert.Equal(t, history.TypeGitPull, entries[0].Type)
		assert.Equal(t, history.StatusSuccess, entries[0].Status)
		assert.Equal(t, filepath.Base(dir), entries[0].RepositoryName)
		assert.Equal(t, dir, entries[0].RepositoryPath)

		assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.total.WithLabelValues("git", opPull, "success")), 0)
	})

	t.Run("svn update", func(t *testing.T) {
		f := newFixture(t)
		f.rec.OnArgs("svn", []string{"update", "/wc"}, process.Reply{Result: process.Result{Stdout: "Updated to revision 9.\n"}})

		msg, err := f.svc.Pull(ctx, Target{Kind: projects.KindSvn, Path: "/wc"})
		require.NoError(t, err)
		assert.Equal(t, "Updated to revision 9.", msg)
		assert.Equal(t, history.TypeSvnUpdate, f.entries(t)[0].Type)
	})

	t.Run("kind and name come from the registry", func(t *testing.T) {
		f := newFixture(t)
		project, err := f.registry.CreateProject(ctx, projects.ProjectDraft{Name: "legacy"})
		require.NoError(t, err)
		_, err = f.registry.AddRepository(ctx, project.ID, projects.RepositoryDraft{
			Name: "billing",
			Path: "/src/billing",
			URL:  "svn://svn.example.com/billing/trunk",
		})
		require.NoError(t, err)
		f.rec.OnArgs("svn", []string{"update", "/src/billing"}, process.Reply{})

		_, err = f.svc.Pull(ctx, Target{Path: "/src/billing"})
		require.NoError(t, err)
		assert.Len(t, f.rec.CallsTo("svn"), 2)
		assert.Equal(t, "billing", f.entries(t)[0].RepositoryName)
	})

	t.Run("unknown kind", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Pull(ctx, Target{Path: "/src/unknown"})
		require.ErrorIs(t, err, failure.ErrValidation)
		assert.Empty(t, f.rec.Calls())
		assert.Empty(t, f.entries(t))
	})

	t.Run("failure is recorded", func(t *testing.T) {
		f := newFixture(t)
		dir := t.TempDir()
		f.rec.OnArgs("git", []string{"-C", dir, "pull"}, process.Reply{Result: process.Result{
			ExitCode: 128,
			Stderr:   "fatal: not a git repository (or any of the parent directories): .git",
		}})

		_, err := f.svc.Pull(ctx, Target{Kind: projects.KindGit, Path: dir})
		require.ErrorIs(t, err, failure.ErrNotARepository)

		entries := f.entries(t)
		require.Len(t, entries, 1)
		assert.Equal(t, history.StatusError, entries[0].Status)
		assert.NotEmpty(t, entries[0].Message)
		assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.total.WithLabelValues("git", opPull, "error")), 0)
	})
}

func TestService_Push(t *testing.T) {
	ctx := context.Background()

	t.Run("svn has no push", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Push(ctx, Target{Kind: projects.KindSvn, Path: "/wc"})
		require.ErrorIs(t, err, failure.ErrValidation)
		assert.Contains(t, err.Error(), "svn has no push")
		assert.Empty(t, f.rec.Calls())
	})

	t.Run("git", func(t *testing.T) {
		f := newFixture(t)
		dir := t.TempDir()
		f.rec.OnArgs("git", []string{"-C", dir, "push"}, process.Reply{})

		msg, err := f.svc.Push(ctx, Target{Kind: projects.KindGit, Path: dir, Name: "app"})
		require.NoError(t, err)
		assert.Equal(t, "Push completed", msg)

		entry := f.entries(t)[0]
		assert.Equal(t, history.TypeGitPush, entry.Type)
		assert.Equal(t, "app", entry.RepositoryName)
	})
}

func TestService_CommitAndDiff(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.rec.OnArgs("svn", []string{"commit", "/wc", "-m", "fix"}, process.Reply{Result: process.Result{Stdout: "Committed revision 44.\n"}})
	f.rec.OnArgs("svn", []string{"diff", "/wc"}, process.Reply{Result: process.Result{Stdout: "Index: main.c\n+x\n"}})

	msg, err := f.svc.Commit(ctx, Target{Kind: projects.KindSvn, Path: "/wc"}, "fix")
	require.NoError(t, err)
	assert.Equal(t, "Committed revision 44.", msg)

	out, err := f.svc.Diff(ctx, Target{Kind: projects.KindSvn, Path: "/wc"})
	require.NoError(t, err)
	assert.Equal(t, "Index: main.c\n+x\n", out)

	entries := f.entries(t)
	require.Len(t, entries, 2)
	assert.Equal(t, history.TypeSvnDiff, entries[0].Type)
	assert.Equal(t, "Index: main.c", entries[0].Message)
	assert.Equal(t, history.TypeSvnCommit, entries[1].Type)
}

func TestService_Clone(t *testing.T) {
	ctx := context.Background()

	t.Run("kind detected from url", func(t *testing.T) {
		f := newFixture(t)
		f.rec.OnArgs("git", []string{"clone"}, process.Reply{})

		msg, err := f.svc.Clone(ctx, projects.KindNone, "https://github.com/acme/app.git", "/src/app")
		require.NoError(t, err)
		assert.Equal(t, "Clone completed", msg)

		entry := f.entries(t)[0]
		assert.Equal(t, history.TypeGitClone, entry.Type)
		assert.Equal(t, "app", entry.RepositoryName)
	})

	t.Run("svn checkout", func(t *testing.T) {
		f := newFixture(t)
		f.rec.OnArgs("svn", []string{"checkout"}, process.Reply{Result: process.Result{Stdout: "Checked out revision 3.\n"}})

		msg, err := f.svc.Clone(ctx, projects.KindNone, "svn://svn.example.com/app/trunk", "/src/app")
		require.NoError(t, err)
		assert.Equal(t, "Checked out revision 3.", msg)
		assert.Equal(t, history.TypeSvnCheckout, f.entries(t)[0].Type)
	})

	t.Run("undetectable url", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Clone(ctx, projects.KindNone, "https://example.com/code", "/src/app")
		require.ErrorIs(t, err, failure.ErrValidation)
		assert.Empty(t, f.rec.Calls())
	})
}

func TestService_Status(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	_, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	status, err := f.svc.Status(context.Background(), Target{Kind: projects.KindGit, Path: dir})
	require.NoError(t, err)
	assert.Equal(t, projects.KindGit, status.Kind)
	require.NotNil(t, status.Git)
	assert.Nil(t, status.Svn)
	assert.False(t, status.Git.IsDirty)
	assert.Empty(t, f.entries(t), "status is not recorded")
}

func TestService_TestAuth(t *testing.T) {
	f := newFixture(t)
	f.rec.OnArgs("svn", []string{"info", "/wc"}, process.Reply{Result: process.Result{
		Stdout: "URL: svn://svn.example.com/app/trunk\nRevision: 12\nRepository Root: svn://svn.example.com/app\n",
	}})

	report, err := f.svc.TestAuth(context.Background(), Target{Kind: projects.KindSvn, Path: "/wc"})
	require.NoError(t, err)
	assert.Contains(t, report, "svn://svn.example.com/app/trunk")
}

func TestService_Batch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	project, err := f.registry.CreateProject(ctx, projects.ProjectDraft{Name: "platform"})
	require.NoError(t, err)
	gitDir := t.TempDir()
	_, err = f.registry.AddRepository(ctx, project.ID, projects.RepositoryDraft{Path: gitDir, Kind: projects.KindGit})
	require.NoError(t, err)
	_, err = f.registry.AddRepository(ctx, project.ID, projects.RepositoryDraft{Path: "/src/legacy", Kind: projects.KindSvn})
	require.NoError(t, err)

	f.rec.OnArgs("git", []string{"-C", gitDir, "pull"}, process.Reply{})
	f.rec.OnArgs("git", []string{"-C", gitDir, "push"}, process.Reply{})
	f.rec.OnArgs("svn", []string{"update", "/src/legacy"}, process.Reply{Result: process.Result{
		ExitCode: 1,
		Stderr:   "svn: E170013: Unable to connect to a repository",
	}})

	t.Run("pull", func(t *testing.T) {
		report, err := f.svc.BatchPull(ctx, project.ID)
		require.NoError(t, err)
		require.Len(t, report.Outcomes, 2)
		assert.Equal(t, 1, report.Succeeded())
		assert.Equal(t, 1, report.Failed())

		batch := f.entries(t)[0]
		assert.Equal(t, history.TypeBatchPull, batch.Type)
		assert.Equal(t, history.StatusError, batch.Status)
		assert.Equal(t, "platform", batch.RepositoryName)
		assert.Equal(t, "1 succeeded, 1 failed", batch.Message)
	})

	t.Run("push skips svn", func(t *testing.T) {
		report, err := f.svc.BatchPush(ctx, project.ID)
		require.NoError(t, err)
		require.Len(t, report.Outcomes, 1)
		assert.Equal(t, projects.KindGit, report.Outcomes[0].Kind)
		assert.True(t, report.Outcomes[0].Success())
		assert.Equal(t, history.StatusSuccess, f.entries(t)[0].Status)
	})

	t.Run("unknown project", func(t *testing.T) {
		_, err := f.svc.BatchPull(ctx, uuid.New())
		assert.ErrorIs(t, err, projects.ErrNotFound)
	})
}
