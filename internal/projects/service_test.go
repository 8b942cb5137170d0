package projects

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/pmtools/vcsbridge/internal/failure"
	"github.com/pmtools/vcsbridge/pkg/badgerfx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	logger := zaptest.NewLogger(t)
	db, err := badgerfx.Open(badgerfx.Config{InMemory: true}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewService(NewStore(db), logger)
}

func TestService_Projects(t *testing.T) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		svc := newTestService(t)

		created, err := svc.CreateProject(ctx, ProjectDraft{Name: " web ", Description: "frontend"})
		require.NoError(t, err)
		assert.Equal(t, "web", created.Name)

		got, err := svc.GetProject(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "frontend", got.Description)
	})

	t.Run("name is required", func(t *testing.T) {
		svc := newTestService(t)

		_, err := svc.CreateProject(ctx, ProjectDraft{Name: "  "})
		assert.ErrorIs(t, err, failure.ErrValidation)
	})

	t.Run("names are unique", func(t *testing.T) {
		svc := newTestService(t)

		_, err := svc.CreateProject(ctx, ProjectDraft{Name: "web"})
		require.NoError(t, err)
		_, err = svc.CreateProject(ctx, ProjectDraft{Name: "web"})
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("rename checks uniqueness", func(t *testing.T) {
		svc := newTestService(t)

		web, err := svc.CreateProject(ctx, ProjectDraft{Name: "web"})
		require.NoError(t, err)
		_, err = svc.CreateProject(ctx, ProjectDraft{Name: "api"})
		require.NoError(t, err)

		_, err = svc.UpdateProject(ctx, web.ID, ProjectDraft{Name: "api"})
		require.ErrorIs(t, err, ErrConflict)

		renamed, err := svc.UpdateProject(ctx, web.ID, ProjectDraft{Name: "site", Description: "new"})
		require.NoError(t, err)
		assert.Equal(t, "site", renamed.Name)
		assert.True(t, renamed.UpdatedAt.After(web.UpdatedAt))

		_, err = svc.CreateProject(ctx, ProjectDraft{Name: "web"})
		assert.NoError(t, err, "old name is released")
	})

	t.Run("list most recently updated first", func(t *testing.T) {
		svc := newTestService(t)

		first, err := svc.CreateProject(ctx, ProjectDraft{Name: "first"})
		require.NoError(t, err)
		_, err = svc.CreateProject(ctx, ProjectDraft{Name: "second"})
		require.NoError(t, err)
		_, err = svc.UpdateProject(ctx, first.ID, ProjectDraft{Name: "first"})
		require.NoError(t, err)

		list, err := svc.ListProjects(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "first", list[0].Name)
		assert.Equal(t, "second", list[1].Name)
	})

	t.Run("missing project", func(t *testing.T) {
		svc := newTestService(t)

		_, err := svc.GetProject(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, svc.DeleteProject(ctx, uuid.New()), ErrNotFound)
	})
}

func TestService_Repositories(t *testing.T) {
	ctx := context.Background()

	t.Run("add fills defaults", func(t *testing.T) {
		svc := newTestService(t)
		project, err := svc.CreateProject(ctx, ProjectDraft{Name: "web"})
		require.NoError(t, err)
		dir := filepath.Join(t.TempDir(), "frontend")

		repo, err := svc.AddRepository(ctx, project.ID, RepositoryDraft{
			Path: dir,
			URL:  "git@github.com:acme/frontend.git",
		})
		require.NoError(t, err)
		assert.Equal(t, "frontend", repo.Name)
		assert.Equal(t, KindGit, repo.Kind)
		assert.Equal(t, project.ID, repo.ProjectID)

		found, err := svc.FindRepository(ctx, dir)
		require.NoError(t, err)
		assert.Equal(t, repo.ID, found.ID)
	})

	t.Run("explicit kind is kept", func(t *testing.T) {
		svc := newTestService(t)
		project, err := svc.CreateProject(ctx, ProjectDraft{Name: "web"})
		require.NoError(t, err)

		repo, err := svc.AddRepository(ctx, project.ID, RepositoryDraft{
			Path: t.TempDir(),
			URL:  "https://github.com/acme/mirror",
			Kind: KindSvn,
		})
		require.NoError(t, err)
		assert.Equal(t, KindSvn, repo.Kind)
	})

	t.Run("validation", func(t *testing.T) {
		svc := newTestService(t)
		project, err := svc.CreateProject(ctx, ProjectDraft{Name: "web"})
		require.NoError(t, err)

		_, err = svc.AddRepository(ctx, project.ID, RepositoryDraft{})
		require.ErrorIs(t, err, failure.ErrValidation)

		_, err = svc.AddRepository(ctx, project.ID, RepositoryDraft{Path: "/x", Kind: "hg"})
		require.ErrorIs(t, err, failure.ErrValidation)

		_, err = svc.AddRepository(ctx, uuid.New(), RepositoryDraft{Path: "/x"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("paths are unique across projects", func(t *testing.T) {
		svc := newTestService(t)
		web, err := svc.CreateProject(ctx, ProjectDraft{Name: "web"})
		require.NoError(t, err)
		api, err := svc.CreateProject(ctx, ProjectDraft{Name: "api"})
		require.NoError(t, err)
		dir := t.TempDir()

		_, err = svc.AddRepository(ctx, web.ID, RepositoryDraft{Path: dir})
		require.NoError(t, err)
		_, err = svc.AddRepository(ctx, api.ID, RepositoryDraft{Path: dir})
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("list per project newest first", func(t *testing.T) {
		svc := newTestService(t)
		web, err := svc.CreateProject(ctx, ProjectDraft{Name: "web"})
		require.NoError(t, err)
		api, err := svc.CreateProject(ctx, ProjectDraft{Name: "api"})
		require.NoError(t, err)

		_, err = svc.AddRepository(ctx, web.ID, RepositoryDraft{Path: "/src/one"})
		require.NoError(t, err)
		_, err = svc.AddRepository(ctx, web.ID, RepositoryDraft{Path: "/src/two"})
		require.NoError(t, err)
		_, err = svc.AddRepository(ctx, api.ID, RepositoryDraft{Path: "/src/three"})
		require.NoError(t, err)

		repos, err := svc.ListRepositories(ctx, web.ID)
		require.NoError(t, err)
		require.Len(t, repos, 2)
		assert.Equal(t, "two", repos[0].Name)
		assert.Equal(t, "one", repos[1].Name)
	})

	t.Run("remove", func(t *testing.T) {
		svc := newTestService(t)
		web, err := svc.CreateProject(ctx, ProjectDraft{Name: "web"})
		require.NoError(t, err)
		repo, err := svc.AddRepository(ctx, web.ID, RepositoryDraft{Path: "/src/one"})
		require.NoError(t, err)

		require.NoError(t, svc.RemoveRepository(ctx, repo.ID))
		_, err = svc.FindRepository(ctx, "/src/one")
		require.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, svc.RemoveRepository(ctx, repo.ID), ErrNotFound)

		_, err = svc.AddRepository(ctx, web.ID, RepositoryDraft{Path: "/src/one"})
		assert.NoError(t, err, "path is released")
	})

	t.Run("deleting a project removes its repositories", func(t *testing.T) {
		svc := newTestService(t)
		web, err := svc.CreateProject(ctx, ProjectDraft{Name: "web"})
		require.NoError(t, err)
		repo, err := svc.AddRepository(ctx, web.ID, RepositoryDraft{Path: "/src/one"})
		require.NoError(t, err)

		require.NoError(t, svc.DeleteProject(ctx, web.ID))

		_, err = svc.GetRepository(ctx, repo.ID)
		require.ErrorIs(t, err, ErrNotFound)
		_, err = svc.ListRepositories(ctx, web.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
