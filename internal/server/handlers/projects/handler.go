package projects

import (
	"context"

	"github.com/go-core-fx/fiberfx/handler"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pmtools/vcsbridge/internal/failure"
	"github.com/pmtools/vcsbridge/internal/operations"
	"github.com/pmtools/vcsbridge/internal/projects"
	"github.com/pmtools/vcsbridge/internal/server/handlers"
	"github.com/pmtools/vcsbridge/internal/server/validation"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type Handler struct {
	projectsSvc   *projects.Service
	operationsSvc *operations.Service

	validator *validator.Validate
	logger    *zap.Logger
}

func NewHandler(
	projectsSvc *projects.Service,
	operationsSvc *operations.Service,
	validator *validator.Validate,
	logger *zap.Logger,
) handler.Handler {
	return &Handler{
		projectsSvc:   projectsSvc,
		operationsSvc: operationsSvc,

		validator: validator,
		logger:    logger,
	}
}

// Register implements handler.Handler.
func (h *Handler) Register(r fiber.Router) {
	p := r.Group("/projects")
	p.Use(handlers.ErrorsHandler)
	p.Post("/", validation.DecorateWithBodyEx(h.validator, h.post))
	p.Get("/", h.list)
	p.Get("/:id", h.get)
	p.Put("/:id", validation.DecorateWithBodyEx(h.validator, h.put))
	p.Delete("/:id", h.delete)
	p.Get("/:id/repositories", h.listRepositories)
	p.Post("/:id/repositories", validation.DecorateWithBodyEx(h.validator, h.postRepository))
	p.Post("/:id/pull", h.pull)
	p.Post("/:id/push", h.push)

	repos := r.Group("/repositories")
	repos.Use(handlers.ErrorsHandler)
	repos.Delete("/:id", h.deleteRepository)
}

//	@Summary		Create a project
//	@Tags			projects
//	@Accept			json
//	@Produce		json
//	@Param			project	body		ProjectRequest	true	"Project"
//	@Success		201		{object}	ProjectResponse
//	@Failure		400		{object}	handlers.ErrorResponse
//	@Failure		409		{object}	handlers.ErrorResponse
//	@Router			/projects [post]
func (h *Handler) post(c *fiber.Ctx, req *ProjectRequest) error {
	project, err := h.projectsSvc.CreateProject(c.Context(), projects.ProjectDraft{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(toProjectResponse(project))
}

//	@Summary		List projects
//	@Description	Projects, most recently updated first
//	@Tags			projects
//	@Produce		json
//	@Success		200	{array}	ProjectResponse
//	@Router			/projects [get]
func (h *Handler) list(c *fiber.Ctx) error {
	list, err := h.projectsSvc.ListProjects(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(lo.Map(list, func(p projects.Project, _ int) ProjectResponse {
		return toProjectResponse(&p)
	}))
}

//	@Summary		Get a project
//	@Tags			projects
//	@Produce		json
//	@Param			id	path		string	true	"Project ID"
//	@Success		200	{object}	ProjectResponse
//	@Failure		404	{object}	handlers.ErrorResponse
//	@Router			/projects/{id} [get]
func (h *Handler) get(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c)
	if err != nil {
		return err
	}

	project, err := h.projectsSvc.GetProject(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(toProjectResponse(project))
}

//	@Summary		Update a project
//	@Tags			projects
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Project ID"
//	@Param			project	body		ProjectRequest	true	"Project"
//	@Success		200		{object}	ProjectResponse
//	@Failure		404		{object}	handlers.ErrorResponse
//	@Failure		409		{object}	handlers.ErrorResponse
//	@Router			/projects/{id} [put]
func (h *Handler) put(c *fiber.Ctx, req *ProjectRequest) error {
	id, err := handlers.ParamID(c)
	if err != nil {
		return err
	}

	project, err := h.projectsSvc.UpdateProject(c.Context(), id, projects.ProjectDraft{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}

	return c.JSON(toProjectResponse(project))
}

//	@Summary		Delete a project
//	@Description	Remove a project and its repositories from the registry
//	@Tags			projects
//	@Param			id	path	string	true	"Project ID"
//	@Success		204
//	@Failure		404	{object}	handlers.ErrorResponse
//	@Router			/projects/{id} [delete]
func (h *Handler) delete(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c)
	if err != nil {
		return err
	}

	if delErr := h.projectsSvc.DeleteProject(c.Context(), id); delErr != nil {
		return delErr
	}

	return c.SendStatus(fiber.StatusNoContent)
}

//	@Summary		List repositories of a project
//	@Tags			projects
//	@Produce		json
//	@Param			id	path	string	true	"Project ID"
//	@Success		200	{array}	RepositoryResponse
//	@Router			/projects/{id}/repositories [get]
func (h *Handler) listRepositories(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c)
	if err != nil {
		return err
	}

	repos, err := h.projectsSvc.ListRepositories(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(lo.Map(repos, func(r projects.Repository, _ int) RepositoryResponse {
		return toRepositoryResponse(&r)
	}))
}

//	@Summary		Add a repository
//	@Tags			projects
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string				true	"Project ID"
//	@Param			repository	body		RepositoryRequest	true	"Repository"
//	@Success		201			{object}	RepositoryResponse
//	@Failure		409			{object}	handlers.ErrorResponse
//	@Router			/projects/{id}/repositories [post]
func (h *Handler) postRepository(c *fiber.Ctx, req *RepositoryRequest) error {
	id, err := handlers.ParamID(c)
	if err != nil {
		return err
	}

	repo, err := h.projectsSvc.AddRepository(c.Context(), id, projects.RepositoryDraft{
		Name: req.Name,
		Path: req.Path,
		URL:  req.URL,
		Kind: projects.Kind(req.VCS),
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(toRepositoryResponse(repo))
}

//	@Summary		Remove a repository
//	@Description	Remove a repository from the registry; nothing is deleted from disk
//	@Tags			projects
//	@Param			id	path	string	true	"Repository ID"
//	@Success		204
//	@Failure		404	{object}	handlers.ErrorResponse
//	@Router			/repositories/{id} [delete]
func (h *Handler) deleteRepository(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c)
	if err != nil {
		return err
	}

	if delErr := h.projectsSvc.RemoveRepository(c.Context(), id); delErr != nil {
		return delErr
	}

	return c.SendStatus(fiber.StatusNoContent)
}

//	@Summary		Pull every repository
//	@Tags			projects
//	@Produce		json
//	@Param			id	path		string	true	"Project ID"
//	@Success		200	{object}	BatchResponse
//	@Router			/projects/{id}/pull [post]
func (h *Handler) pull(c *fiber.Ctx) error {
	return h.batch(c, h.operationsSvc.BatchPull)
}

//	@Summary		Push every git repository
//	@Tags			projects
//	@Produce		json
//	@Param			id	path		string	true	"Project ID"
//	@Success		200	{object}	BatchResponse
//	@Router			/projects/{id}/push [post]
func (h *Handler) push(c *fiber.Ctx) error {
	return h.batch(c, h.operationsSvc.BatchPush)
}

func (h *Handler) batch(c *fiber.Ctx, run func(context.Context, uuid.UUID) (*operations.BatchReport, error)) error {
	id, err := handlers.ParamID(c)
	if err != nil {
		return err
	}

	report, err := run(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(BatchResponse{
		ProjectID: report.ProjectID,
		Succeeded: report.Succeeded(),
		Failed:    report.Failed(),
		Results: lo.Map(report.Outcomes, func(o operations.Outcome, _ int) OutcomeResponse {
			res := OutcomeResponse{
				RepositoryID: o.RepositoryID,
				Name:         o.Name,
				Path:         o.Path,
				VCS:          string(o.Kind),
				Success:      o.Success(),
				Message:      o.Message,
			}
			if o.Err != nil {
				res.Error = o.Err.Error()
				res.Category = string(failure.CategoryOf(o.Err))
			}
			return res
		}),
	})
}

func toProjectResponse(p *projects.Project) ProjectResponse {
	return ProjectResponse{
		ProjectRequest: ProjectRequest{
			Name:        p.Name,
			Description: p.Description,
		},
		ID:        p.ID,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toRepositoryResponse(r *projects.Repository) RepositoryResponse {
	return RepositoryResponse{
		RepositoryRequest: RepositoryRequest{
			Name: r.Name,
			Path: r.Path,
			URL:  r.URL,
			VCS:  string(r.Kind),
		},
		ID:        r.ID,
		ProjectID: r.ProjectID,
		CreatedAt: r.CreatedAt,
	}
}
