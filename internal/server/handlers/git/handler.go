package git

import (
	"github.com/go-core-fx/fiberfx/handler"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/pmtools/vcsbridge/internal/operations"
	"github.com/pmtools/vcsbridge/internal/projects"
	"github.com/pmtools/vcsbridge/internal/server/handlers"
	"github.com/pmtools/vcsbridge/internal/server/validation"
	"go.uber.org/zap"
)

type Handler struct {
	operationsSvc *operations.Service

	validator *validator.Validate
	logger    *zap.Logger
}

func NewHandler(operationsSvc *operations.Service, validator *validator.Validate, logger *zap.Logger) handler.Handler {
	return &Handler{
		operationsSvc: operationsSvc,

		validator: validator,
		logger:    logger,
	}
}

// Register implements handler.Handler.
func (h *Handler) Register(r fiber.Router) {
	r = r.Group("/git")

	r.Use(handlers.ErrorsHandler)
	r.Post("/status", validation.DecorateWithBodyEx(h.validator, h.status))
	r.Post("/pull", validation.DecorateWithBodyEx(h.validator, h.pull))
	r.Post("/push", validation.DecorateWithBodyEx(h.validator, h.push))
	r.Post("/commit", validation.DecorateWithBodyEx(h.validator, h.commit))
	r.Post("/diff", validation.DecorateWithBodyEx(h.validator, h.diff))
	r.Post("/clone", validation.DecorateWithBodyEx(h.validator, h.clone))
	r.Post("/auth-test", validation.DecorateWithBodyEx(h.validator, h.authTest))
}

func target(path string) operations.Target {
	return operations.Target{Kind: projects.KindGit, Path: path}
}

//	@Summary		Repository status
//	@Description	Branch, head revision and changed paths of a git repository
//	@Tags			git
//	@Accept			json
//	@Produce		json
//	@Param			request	body		handlers.PathRequest	true	"Repository"
//	@Success		200		{object}	git.RepositoryStatus
//	@Failure		400		{object}	handlers.ErrorResponse
//	@Failure		404		{object}	handlers.ErrorResponse
//	@Router			/git/status [post]
func (h *Handler) status(c *fiber.Ctx, req *handlers.PathRequest) error {
	status, err := h.operationsSvc.Status(c.Context(), target(req.Path))
	if err != nil {
		return err
	}

	return c.JSON(status.Git)
}

//	@Summary		Pull
//	@Description	Pull the current branch, falling back to a fast-forward through the embedded library
//	@Tags			git
//	@Accept			json
//	@Produce		json
//	@Param			request	body		handlers.PathRequest	true	"Repository"
//	@Success		200		{object}	handlers.MessageResponse
//	@Failure		401		{object}	handlers.ErrorResponse
//	@Failure		409		{object}	handlers.ErrorResponse
//	@Router			/git/pull [post]
func (h *Handler) pull(c *fiber.Ctx, req *handlers.PathRequest) error {
	msg, err := h.operationsSvc.Pull(c.Context(), target(req.Path))
	if err != nil {
		return err
	}

	return c.JSON(handlers.MessageResponse{Message: msg})
}

//	@Summary		Push
//	@Description	Push the current branch to its remote
//	@Tags			git
//	@Accept			json
//	@Produce		json
//	@Param			request	body		handlers.PathRequest	true	"Repository"
//	@Success		200		{object}	handlers.MessageResponse
//	@Failure		401		{object}	handlers.ErrorResponse
//	@Router			/git/push [post]
func (h *Handler) push(c *fiber.Ctx, req *handlers.PathRequest) error {
	msg, err := h.operationsSvc.Push(c.Context(), target(req.Path))
	if err != nil {
		return err
	}

	return c.JSON(handlers.MessageResponse{Message: msg})
}

//	@Summary		Commit
//	@Description	Stage every change and commit it
//	@Tags			git
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CommitRequest	true	"Commit"
//	@Success		200		{object}	handlers.MessageResponse
//	@Failure		400		{object}	handlers.ErrorResponse
//	@Failure		409		{object}	handlers.ErrorResponse
//	@Router			/git/commit [post]
func (h *Handler) commit(c *fiber.Ctx, req *CommitRequest) error {
	msg, err := h.operationsSvc.Commit(c.Context(), target(req.Path), req.Message)
	if err != nil {
		return err
	}

	return c.JSON(handlers.MessageResponse{Message: msg})
}

//	@Summary		Diff
//	@Description	Unified diff of the working tree against HEAD
//	@Tags			git
//	@Accept			json
//	@Produce		json
//	@Param			request	body		handlers.PathRequest	true	"Repository"
//	@Success		200		{object}	DiffResponse
//	@Router			/git/diff [post]
func (h *Handler) diff(c *fiber.Ctx, req *handlers.PathRequest) error {
	out, err := h.operationsSvc.Diff(c.Context(), target(req.Path))
	if err != nil {
		return err
	}

	return c.JSON(DiffResponse{Diff: out})
}

//	@Summary		Clone
//	@Description	Clone a repository into a new directory
//	@Tags			git
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CloneRequest	true	"Clone"
//	@Success		201		{object}	handlers.MessageResponse
//	@Failure		400		{object}	handlers.ErrorResponse
//	@Router			/git/clone [post]
func (h *Handler) clone(c *fiber.Ctx, req *CloneRequest) error {
	msg, err := h.operationsSvc.Clone(c.Context(), projects.KindGit, req.URL, req.TargetPath)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(handlers.MessageResponse{Message: msg})
}

//	@Summary		Test authentication
//	@Description	List the remote references with the available credentials
//	@Tags			git
//	@Accept			json
//	@Produce		json
//	@Param			request	body		handlers.PathRequest	true	"Repository"
//	@Success		200		{object}	handlers.MessageResponse
//	@Failure		401		{object}	handlers.ErrorResponse
//	@Router			/git/auth-test [post]
func (h *Handler) authTest(c *fiber.Ctx, req *handlers.PathRequest) error {
	report, err := h.operationsSvc.TestAuth(c.Context(), target(req.Path))
	if err != nil {
		return err
	}

	return c.JSON(handlers.MessageResponse{Message: report})
}
