package svn

import (
	"github.com/go-core-fx/fiberfx/handler"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/pmtools/vcsbridge/internal/operations"
	"github.com/pmtools/vcsbridge/internal/projects"
	"github.com/pmtools/vcsbridge/internal/server/handlers"
	"github.com/pmtools/vcsbridge/internal/server/validation"
	"github.com/pmtools/vcsbridge/internal/svn"
	"go.uber.org/zap"
)

type Handler struct {
	operationsSvc *operations.Service
	svnSvc        *svn.Service

	validator *validator.Validate
	logger    *zap.Logger
}

func NewHandler(
	operationsSvc *operations.Service,
	svnSvc *svn.Service,
	validator *validator.Validate,
	logger *zap.Logger,
) handler.Handler {
	return &Handler{
		operationsSvc: operationsSvc,
		svnSvc:        svnSvc,

		validator: validator,
		logger:    logger,
	}
}

// Register implements handler.Handler.
func (h *Handler) Register(r fiber.Router) {
	r = r.Group("/svn")

	r.Use(handlers.ErrorsHandler)
	r.Post("/status", validation.DecorateWithBodyEx(h.validator, h.status))
	r.Post("/update", validation.DecorateWithBodyEx(h.validator, h.update))
	r.Post("/commit", validation.DecorateWithBodyEx(h.validator, h.commit))
	r.Post("/diff", validation.DecorateWithBodyEx(h.validator, h.diff))
	r.Post("/add", validation.DecorateWithBodyEx(h.validator, h.add))
	r.Post("/revert", validation.DecorateWithBodyEx(h.validator, h.revert))
	r.Post("/checkout", validation.DecorateWithBodyEx(h.validator, h.checkout))
	r.Post("/auth-test", validation.DecorateWithBodyEx(h.validator, h.authTest))
}

func target(path string) operations.Target {
	return operations.Target{Kind: projects.KindSvn, Path: path}
}

//	@Summary		Working copy status
//	@Description	Revision information and changed paths of the working copy containing path
//	@Tags			svn
//	@Accept			json
//	@Produce		json
//	@Param			request	body		handlers.PathRequest	true	"Working copy"
//	@Success		200		{object}	svn.WorkingCopyStatus
//	@Failure		404		{object}	handlers.ErrorResponse
//	@Failure		503		{object}	handlers.ErrorResponse
//	@Router			/svn/status [post]
func (h *Handler) status(c *fiber.Ctx, req *handlers.PathRequest) error {
	status, err := h.operationsSvc.Status(c.Context(), target(req.Path))
	if err != nil {
		return err
	}

	return c.JSON(status.Svn)
}

//	@Summary		Update
//	@Tags			svn
//	@Accept			json
//	@Produce		json
//	@Param			request	body		handlers.PathRequest	true	"Working copy"
//	@Success		200		{object}	handlers.MessageResponse
//	@Router			/svn/update [post]
func (h *Handler) update(c *fiber.Ctx, req *handlers.PathRequest) error {
	msg, err := h.operationsSvc.Pull(c.Context(), target(req.Path))
	if err != nil {
		return err
	}

	return c.JSON(handlers.MessageResponse{Message: msg})
}

//	@Summary		Commit
//	@Tags			svn
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CommitRequest	true	"Commit"
//	@Success		200		{object}	handlers.MessageResponse
//	@Router			/svn/commit [post]
func (h *Handler) commit(c *fiber.Ctx, req *CommitRequest) error {
	msg, err := h.operationsSvc.Commit(c.Context(), target(req.Path), req.Message)
	if err != nil {
		return err
	}

	return c.JSON(handlers.MessageResponse{Message: msg})
}

//	@Summary		Diff
//	@Tags			svn
//	@Accept			json
//	@Produce		json
//	@Param			request	body		handlers.PathRequest	true	"Working copy"
//	@Success		200		{object}	DiffResponse
//	@Router			/svn/diff [post]
func (h *Handler) diff(c *fiber.Ctx, req *handlers.PathRequest) error {
	out, err := h.operationsSvc.Diff(c.Context(), target(req.Path))
	if err != nil {
		return err
	}

	return c.JSON(DiffResponse{Diff: out})
}

//	@Summary		Add files
//	@Description	Schedule files, relative to the working copy, for addition
//	@Tags			svn
//	@Accept			json
//	@Produce		json
//	@Param			request	body		FilesRequest	true	"Files"
//	@Success		200		{object}	handlers.MessageResponse
//	@Failure		400		{object}	handlers.ErrorResponse
//	@Router			/svn/add [post]
func (h *Handler) add(c *fiber.Ctx, req *FilesRequest) error {
	msg, err := h.svnSvc.Add(c.Context(), req.Path, req.Files)
	if err != nil {
		return err
	}

	return c.JSON(handlers.MessageResponse{Message: msg})
}

//	@Summary		Revert
//	@Description	Discard local changes to the listed files, or to the whole working copy when files is absent
//	@Tags			svn
//	@Accept			json
//	@Produce		json
//	@Param			request	body		FilesRequest	true	"Files"
//	@Success		200		{object}	handlers.MessageResponse
//	@Failure		400		{object}	handlers.ErrorResponse
//	@Router			/svn/revert [post]
func (h *Handler) revert(c *fiber.Ctx, req *FilesRequest) error {
	msg, err := h.svnSvc.Revert(c.Context(), req.Path, req.Files)
	if err != nil {
		return err
	}

	return c.JSON(handlers.MessageResponse{Message: msg})
}

//	@Summary		Checkout
//	@Tags			svn
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CheckoutRequest	true	"Checkout"
//	@Success		201		{object}	handlers.MessageResponse
//	@Router			/svn/checkout [post]
func (h *Handler) checkout(c *fiber.Ctx, req *CheckoutRequest) error {
	msg, err := h.operationsSvc.Clone(c.Context(), projects.KindSvn, req.URL, req.TargetPath)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(handlers.MessageResponse{Message: msg})
}

//	@Summary		Test authentication
//	@Tags			svn
//	@Accept			json
//	@Produce		json
//	@Param			request	body		handlers.PathRequest	true	"Working copy"
//	@Success		200		{object}	handlers.MessageResponse
//	@Failure		401		{object}	handlers.ErrorResponse
//	@Router			/svn/auth-test [post]
func (h *Handler) authTest(c *fiber.Ctx, req *handlers.PathRequest) error {
	report, err := h.operationsSvc.TestAuth(c.Context(), target(req.Path))
	if err != nil {
		return err
	}

	return c.JSON(handlers.MessageResponse{Message: report})
}
