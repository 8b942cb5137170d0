package history

import (
	"github.com/go-core-fx/fiberfx/handler"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/pmtools/vcsbridge/internal/history"
	"github.com/pmtools/vcsbridge/internal/server/handlers"
	"github.com/pmtools/vcsbridge/internal/server/validation"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type Handler struct {
	historySvc *history.Service

	validator *validator.Validate
	logger    *zap.Logger
}

func NewHandler(historySvc *history.Service, validator *validator.Validate, logger *zap.Logger) handler.Handler {
	return &Handler{
		historySvc: historySvc,

		validator: validator,
		logger:    logger,
	}
}

// Register implements handler.Handler.
func (h *Handler) Register(r fiber.Router) {
	r = r.Group("/history")

	r.Use(handlers.ErrorsHandler)
	r.Get("/", validation.DecorateWithQueryEx(h.validator, h.list))
	r.Delete("/", h.clear)
	r.Delete("/:id", h.delete)
}

//	@Summary		List operation history
//	@Description	Recent operations, newest first; filtered by repository path when given
//	@Tags			history
//	@Produce		json
//	@Param			limit	query	int		false	"Maximum number of entries (default 10)"
//	@Param			path	query	string	false	"Repository path"
//	@Success		200		{array}	EntryResponse
//	@Router			/history [get]
func (h *Handler) list(c *fiber.Ctx, q *ListQuery) error {
	var (
		entries []history.Entry
		err     error
	)

	if q.Path != "" {
		entries, err = h.historySvc.ByRepository(c.Context(), q.Path)
		if err == nil && q.Limit > 0 && len(entries) > q.Limit {
			entries = entries[:q.Limit]
		}
	} else {
		entries, err = h.historySvc.Recent(c.Context(), q.Limit)
	}
	if err != nil {
		return err
	}

	return c.JSON(lo.Map(entries, func(e history.Entry, _ int) EntryResponse {
		return toResponse(e)
	}))
}

//	@Summary		Delete a history entry
//	@Tags			history
//	@Param			id	path	string	true	"Entry ID"
//	@Success		204
//	@Failure		404	{object}	handlers.ErrorResponse
//	@Router			/history/{id} [delete]
func (h *Handler) delete(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c)
	if err != nil {
		return err
	}

	if rmErr := h.historySvc.Remove(c.Context(), id); rmErr != nil {
		return rmErr
	}

	return c.SendStatus(fiber.StatusNoContent)
}

//	@Summary		Clear history
//	@Tags			history
//	@Success		204
//	@Router			/history [delete]
func (h *Handler) clear(c *fiber.Ctx) error {
	if err := h.historySvc.Clear(c.Context()); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func toResponse(e history.Entry) EntryResponse {
	return EntryResponse{
		ID:             e.ID,
		Type:           string(e.Type),
		Status:         string(e.Status),
		RepositoryName: e.RepositoryName,
		RepositoryPath: e.RepositoryPath,
		Message:        e.Message,
		Timestamp:      e.Timestamp,
		Duration:       e.Duration.Milliseconds(),
	}
}
