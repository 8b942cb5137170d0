package system

import (
	"github.com/go-core-fx/fiberfx/handler"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/pmtools/vcsbridge/internal/desktop"
	"github.com/pmtools/vcsbridge/internal/preferences"
	"github.com/pmtools/vcsbridge/internal/server/handlers"
	"github.com/pmtools/vcsbridge/internal/server/validation"
	"go.uber.org/zap"
)

// HomeResponse is the body of GET /system/home.
type HomeResponse struct {
	Path string `json:"path"`
}

type Handler struct {
	desktopSvc     *desktop.Service
	preferencesSvc *preferences.Service

	validator *validator.Validate
	logger    *zap.Logger
}

func NewHandler(
	desktopSvc *desktop.Service,
	preferencesSvc *preferences.Service,
	validator *validator.Validate,
	logger *zap.Logger,
) handler.Handler {
	return &Handler{
		desktopSvc:     desktopSvc,
		preferencesSvc: preferencesSvc,

		validator: validator,
		logger:    logger,
	}
}

// Register implements handler.Handler.
func (h *Handler) Register(r fiber.Router) {
	system := r.Group("/system")
	system.Use(handlers.ErrorsHandler)
	system.Post("/open-folder", validation.DecorateWithBodyEx(h.validator, h.openFolder))
	system.Post("/open-editor", validation.DecorateWithBodyEx(h.validator, h.openEditor))
	system.Post("/open-terminal", validation.DecorateWithBodyEx(h.validator, h.openTerminal))
	system.Get("/home", h.home)

	prefs := r.Group("/preferences")
	prefs.Use(handlers.ErrorsHandler)
	prefs.Get("/", h.getPreferences)
	prefs.Put("/", validation.DecorateWithBodyEx(h.validator, h.putPreferences))
}

//	@Summary		Open folder
//	@Description	Show a directory in the platform file manager
//	@Tags			system
//	@Accept			json
//	@Param			request	body	handlers.PathRequest	true	"Directory"
//	@Success		204
//	@Failure		503	{object}	handlers.ErrorResponse
//	@Router			/system/open-folder [post]
func (h *Handler) openFolder(c *fiber.Ctx, req *handlers.PathRequest) error {
	if err := h.desktopSvc.OpenFolder(c.Context(), req.Path); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

//	@Summary		Open editor
//	@Description	Open a directory in Visual Studio Code or the configured editor
//	@Tags			system
//	@Accept			json
//	@Param			request	body	handlers.PathRequest	true	"Directory"
//	@Success		204
//	@Failure		503	{object}	handlers.ErrorResponse
//	@Router			/system/open-editor [post]
func (h *Handler) openEditor(c *fiber.Ctx, req *handlers.PathRequest) error {
	if err := h.desktopSvc.OpenEditor(c.Context(), req.Path); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

//	@Summary		Open terminal
//	@Description	Open a terminal window in a directory
//	@Tags			system
//	@Accept			json
//	@Param			request	body	handlers.PathRequest	true	"Directory"
//	@Success		204
//	@Failure		503	{object}	handlers.ErrorResponse
//	@Router			/system/open-terminal [post]
func (h *Handler) openTerminal(c *fiber.Ctx, req *handlers.PathRequest) error {
	if err := h.desktopSvc.OpenTerminal(c.Context(), req.Path); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

//	@Summary		Home directory
//	@Tags			system
//	@Produce		json
//	@Success		200	{object}	HomeResponse
//	@Router			/system/home [get]
func (h *Handler) home(c *fiber.Ctx) error {
	home, err := h.desktopSvc.HomeDir()
	if err != nil {
		return err
	}

	return c.JSON(HomeResponse{Path: home})
}

//	@Summary		Get preferences
//	@Tags			preferences
//	@Produce		json
//	@Success		200	{object}	preferences.Preferences
//	@Router			/preferences [get]
func (h *Handler) getPreferences(c *fiber.Ctx) error {
	prefs, err := h.preferencesSvc.Get(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(prefs)
}

//	@Summary		Save preferences
//	@Tags			preferences
//	@Accept			json
//	@Produce		json
//	@Param			request	body		preferences.Preferences	true	"Preferences"
//	@Success		200		{object}	preferences.Preferences
//	@Router			/preferences [put]
func (h *Handler) putPreferences(c *fiber.Ctx, req *preferences.Preferences) error {
	if err := h.preferencesSvc.Save(c.Context(), *req); err != nil {
		return err
	}

	return h.getPreferences(c)
}
