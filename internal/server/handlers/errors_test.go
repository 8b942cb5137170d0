package handlers_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/pmtools/vcsbridge/internal/failure"
	"github.com/pmtools/vcsbridge/internal/history"
	"github.com/pmtools/vcsbridge/internal/projects"
	"github.com/pmtools/vcsbridge/internal/server/handlers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorsHandler(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		category string
		message  string
	}{
		{
			name:     "validation",
			err:      failure.Validation("git commit", "commit message is required"),
			status:   fiber.StatusBadRequest,
			category: "validation",
			message:  "git commit: commit message is required",
		},
		{
			name:     "authentication with detail",
			err:      (&failure.Error{Category: failure.CategoryAuthentication, Op: "git push", Message: "authentication failed"}).WithDetail("use ssh"),
			status:   fiber.StatusUnauthorized,
			category: "authentication",
			message:  "git push: authentication failed",
		},
		{
			name:     "wrapped divergence",
			err:      fmt.Errorf("batch: %w", failure.New(failure.CategoryDivergence, "git pull", "branches have diverged")),
			status:   fiber.StatusConflict,
			category: "divergence",
			message:  "git pull: branches have diverged",
		},
		{
			name:     "environment",
			err:      failure.New(failure.CategoryEnvironment, "svn update", "svn is not installed"),
			status:   fiber.StatusServiceUnavailable,
			category: "environment",
		},
		{
			name:   "project not found",
			err:    fmt.Errorf("%w: project 1", projects.ErrNotFound),
			status: fiber.StatusNotFound,
		},
		{
			name:   "history entry not found",
			err:    history.ErrNotFound,
			status: fiber.StatusNotFound,
		},
		{
			name:   "conflict",
			err:    fmt.Errorf("%w: project with name %q", projects.ErrConflict, "web"),
			status: fiber.StatusConflict,
		},
		{
			name:   "other errors reach the app handler",
			err:    errors.New("boom"),
			status: fiber.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(handlers.ErrorsHandler)
			app.Get("/", func(*fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.category == "" {
				return
			}

			var body handlers.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.category, body.Category)
			if tt.message != "" {
				assert.Equal(t, tt.message, body.Message)
			}
		})
	}
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, fiber.StatusNotFound, handlers.StatusOf(failure.CategoryNotAWorkingCopy))
	assert.Equal(t, fiber.StatusConflict, handlers.StatusOf(failure.CategoryNoChanges))
	assert.Equal(t, fiber.StatusServiceUnavailable, handlers.StatusOf(failure.CategoryProcessLaunch))
	assert.Equal(t, fiber.StatusInternalServerError, handlers.StatusOf(failure.Category("bogus")))
}

func TestParamID(t *testing.T) {
	app := fiber.New()
	app.Get("/:id", func(c *fiber.Ctx) error {
		id, err := handlers.ParamID(c)
		if err != nil {
			return err
		}
		return c.SendString(id.String())
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/0190b4b4-7d5c-7b1a-9d3e-1c2b3a4d5e6f", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/nope", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
