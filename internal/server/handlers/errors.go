// Package handlers holds what the HTTP handlers share: the error body and
// the mapping of domain errors to status codes.
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pmtools/vcsbridge/internal/failure"
	"github.com/pmtools/vcsbridge/internal/history"
	"github.com/pmtools/vcsbridge/internal/projects"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message  string `json:"message"`
	Category string `json:"category,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// MessageResponse carries the outcome text of an operation.
type MessageResponse struct {
	Message string `json:"message"`
}

// PathRequest names a working copy.
type PathRequest struct {
	Path string `json:"path" validate:"required"`
}

var categoryStatus = map[failure.Category]int{
	failure.CategoryValidation:      fiber.StatusBadRequest,
	failure.CategoryNotFound:        fiber.StatusNotFound,
	failure.CategoryNotARepository:  fiber.StatusNotFound,
	failure.CategoryNotAWorkingCopy: fiber.StatusNotFound,
	failure.CategoryNoChanges:       fiber.StatusConflict,
	failure.CategoryDivergence:      fiber.StatusConflict,
	failure.CategoryAuthentication:  fiber.StatusUnauthorized,
	failure.CategoryEnvironment:     fiber.StatusServiceUnavailable,
	failure.CategoryProcessLaunch:   fiber.StatusServiceUnavailable,
	failure.CategoryUnknown:         fiber.StatusInternalServerError,
}

// StatusOf returns the HTTP status of a failure category.
func StatusOf(category failure.Category) int {
	if code, ok := categoryStatus[category]; ok {
		return code
	}
	return fiber.StatusInternalServerError
}

// ErrorsHandler renders domain errors returned by the next handler.
// Other errors are left to the application error handler.
func ErrorsHandler(c *fiber.Ctx) error {
	err := c.Next()
	if err == nil {
		return nil
	}

	var fe *failure.Error
	switch {
	case errors.As(err, &fe):
		msg := fe.Message
		if msg == "" {
			msg = fe.Category.Sentinel().Error()
		}
		if fe.Op != "" {
			msg = fe.Op + ": " + msg
		}
		return c.Status(StatusOf(fe.Category)).JSON(ErrorResponse{
			Message:  msg,
			Category: string(fe.Category),
			Detail:   fe.Detail,
		})
	case errors.Is(err, projects.ErrNotFound), errors.Is(err, history.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Message: err.Error()})
	case errors.Is(err, projects.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Message: err.Error()})
	}

	return err
}

// ParamID parses the :id route parameter.
func ParamID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.UUID{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return id, nil
}
