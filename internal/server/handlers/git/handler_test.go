package git_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	gogit "github.com/go-git/go-git/v6"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/pmtools/vcsbridge/internal/credentials"
	"github.com/pmtools/vcsbridge/internal/git"
	"github.com/pmtools/vcsbridge/internal/history"
	"github.com/pmtools/vcsbridge/internal/operations"
	"github.com/pmtools/vcsbridge/internal/preferences"
	"github.com/pmtools/vcsbridge/internal/process"
	"github.com/pmtools/vcsbridge/internal/projects"
	"github.com/pmtools/vcsbridge/internal/server/handlers"
	handler "github.com/pmtools/vcsbridge/internal/server/handlers/git"
	"github.com/pmtools/vcsbridge/internal/svn"
	"github.com/pmtools/vcsbridge/pkg/badgerfx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newApp(t *testing.T) *fiber.App {
	t.Helper()

	logger := zaptest.NewLogger(t)
	db, err := badgerfx.Open(badgerfx.Config{InMemory: true}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rec := process.NewRecorder()
	prefs, err := preferences.NewService(preferences.Config{Path: filepath.Join(t.TempDir(), "config.json")}, logger)
	require.NoError(t, err)
	metrics, err := operations.NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	ops := operations.NewService(
		git.NewService(git.Config{}, rec, credentials.NewResolver(credentials.Config{}, rec, logger), logger),
		svn.NewService(svn.Config{}, rec, logger),
		prefs,
		projects.NewService(projects.NewStore(db), logger),
		history.NewService(history.Config{}, history.NewRepository(db), logger),
		metrics,
		logger,
	)

	app := fiber.New()
	handler.NewHandler(ops, validator.New(), logger).Register(app.Group("/api/v1"))

	return app
}

func post(t *testing.T, app *fiber.App, path string, body any, out any) int {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/git"+path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}

	return resp.StatusCode
}

func TestHandler_Status(t *testing.T) {
	app := newApp(t)

	t.Run("untracked file", func(t *testing.T) {
		dir := t.TempDir()
		_, err := gogit.PlainInit(dir, false)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

		var status git.RepositoryStatus
		require.Equal(t, fiber.StatusOK, post(t, app, "/status", handlers.PathRequest{Path: dir}, &status))
		assert.Equal(t, []string{"notes.txt"}, status.Untracked)
		assert.Empty(t, status.Modified)
		assert.True(t, status.IsDirty)
		assert.Nil(t, status.HeadRevision)
	})

	t.Run("not a repository", func(t *testing.T) {
		var errResp handlers.ErrorResponse
		require.Equal(t, fiber.StatusNotFound, post(t, app, "/status", handlers.PathRequest{Path: t.TempDir()}, &errResp))
		assert.Equal(t, "not_a_repository", errResp.Category)
	})
}

func TestHandler_Commit(t *testing.T) {
	app := newApp(t)

	t.Run("message required", func(t *testing.T) {
		assert.Equal(t, fiber.StatusBadRequest, post(t, app, "/commit", handler.CommitRequest{Path: t.TempDir()}, nil))
	})

	t.Run("nothing to commit", func(t *testing.T) {
		dir := t.TempDir()
		_, err := gogit.PlainInit(dir, false)
		require.NoError(t, err)

		var errResp handlers.ErrorResponse
		require.Equal(t, fiber.StatusConflict, post(t, app, "/commit", handler.CommitRequest{Path: dir, Message: "empty"}, &errResp))
		assert.Equal(t, "no_changes", errResp.Category)
	})
}
