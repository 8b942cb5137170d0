package system_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/pmtools/vcsbridge/internal/desktop"
	"github.com/pmtools/vcsbridge/internal/failure"
	"github.com/pmtools/vcsbridge/internal/preferences"
	"github.com/pmtools/vcsbridge/internal/process"
	handler "github.com/pmtools/vcsbridge/internal/server/handlers/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newApp(t *testing.T) (*fiber.App, *process.Recorder) {
	t.Helper()

	logger := zaptest.NewLogger(t)
	prefs, err := preferences.NewService(preferences.Config{Path: filepath.Join(t.TempDir(), "config.json")}, logger)
	require.NoError(t, err)

	rec := process.NewRecorder()
	desktopSvc := desktop.NewService(desktop.Config{OS: "linux"}, rec, prefs, logger)

	app := fiber.New()
	handler.NewHandler(desktopSvc, prefs, validator.New(), logger).Register(app.Group("/api/v1"))

	return app, rec
}

func post(t *testing.T, app *fiber.App, path string, body any) int {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(fiber.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestHandler_OpenFolder(t *testing.T) {
	app, rec := newApp(t)

	code := post(t, app, "/api/v1/system/open-folder", map[string]string{"path": "/src/web"})
	require.Equal(t, fiber.StatusNoContent, code)

	calls := rec.CallsTo("xdg-open")
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"/src/web"}, calls[0].Args)

	code = post(t, app, "/api/v1/system/open-folder", map[string]string{})
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestHandler_OpenEditorFailure(t *testing.T) {
	app, rec := newApp(t)
	rec.On(func(process.Command) bool { return true }, process.Reply{
		Err: &failure.Error{Category: failure.CategoryProcessLaunch, Op: "open editor", Err: errors.New("executable file not found in $PATH")},
	})

	code := post(t, app, "/api/v1/system/open-editor", map[string]string{"path": "/src/web"})
	assert.Equal(t, fiber.StatusServiceUnavailable, code)
}

func TestHandler_Preferences(t *testing.T) {
	app, _ := newApp(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/preferences", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var prefs preferences.Preferences
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&prefs))
	assert.Equal(t, preferences.DefaultEditor, prefs.Editor.DefaultEditor)

	remote := "upstream"
	prefs.Git.DefaultRemote = &remote
	prefs.Svn.AutoUpdate = true

	data, err := json.Marshal(prefs)
	require.NoError(t, err)
	req := httptest.NewRequest(fiber.MethodPut, "/api/v1/preferences", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")

	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var saved preferences.Preferences
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&saved))
	require.NotNil(t, saved.Git.DefaultRemote)
	assert.Equal(t, "upstream", *saved.Git.DefaultRemote)
	assert.True(t, saved.Svn.AutoUpdate)
}

func TestHandler_Home(t *testing.T) {
	t.Setenv("HOME", "/home/dev")
	app, _ := newApp(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/system/home", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body handler.HomeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "/home/dev", body.Path)
}
