package projects

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pmtools/vcsbridge/internal/failure"
	"go.uber.org/zap"
)

const (
	opCreateProject = "create project"
	opUpdateProject = "update project"
	opAddRepository = "add repository"
)

// Service manages the registry of projects and their repositories.
type Service struct {
	store *Store

	logger *zap.Logger
}

func NewService(store *Store, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

func (s *Service) CreateProject(ctx context.Context, draft ProjectDraft) (*Project, error) {
	draft.Name = strings.TrimSpace(draft.Name)
	if draft.Name == "" {
		return nil, failure.Validation(opCreateProject, "project name is required")
	}

	project, err := s.store.CreateProject(ctx, draft)
	if err != nil {
		s.logger.Error("failed to create project", zap.String("name", draft.Name), zap.Error(err))
		return nil, err
	}

	s.logger.Info("project created", zap.Stringer("id", project.ID), zap.String("name", project.Name))

	return project, nil
}

func (s *Service) GetProject(ctx context.Context, id uuid.UUID) (*Project, error) {
	return s.store.GetProject(ctx, id)
}

func (s *Service) ListProjects(ctx context.Context) ([]Project, error) {
	return s.store.ListProjects(ctx)
}

// UpdateProject replaces the name and description of a project.
func (s *Service) UpdateProject(ctx context.Context, id uuid.UUID, draft ProjectDraft) (*Project, error) {
	draft.Name = strings.TrimSpace(draft.Name)
	if draft.Name == "" {
		return nil, failure.Validation(opUpdateProject, "project name is required")
	}

	project, err := s.store.UpdateProject(ctx, id, func(p *ProjectDraft) error {
		*p = draft
		return nil
	})
	if err != nil {
		s.logger.Error("failed to update project", zap.Stringer("id", id), zap.Error(err))
		return nil, err
	}

	return project, nil
}

// DeleteProject removes a project and all of its repositories from the
// registry. Nothing is removed from disk.
func (s *Service) DeleteProject(ctx context.Context, id uuid.UUID) error {
	removed, err := s.store.DeleteProject(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete project", zap.Stringer("id", id), zap.Error(err))
		return err
	}

	s.logger.Info("project deleted", zap.Stringer("id", id), zap.Int("repositories", removed))

	return nil
}

// AddRepository registers the repository at draft.Path. The path is made
// absolute, the name defaults to the last path element and the kind is
// detected from the URL when not given.
func (s *Service) AddRepository(ctx context.Context, projectID uuid.UUID, draft RepositoryDraft) (*Repository, error) {
	if strings.TrimSpace(draft.Path) == "" {
		return nil, failure.Validation(opAddRepository, "repository path is required")
	}
	if !draft.Kind.Valid() {
		return nil, failure.Validation(opAddRepository, "unsupported vcs %q", draft.Kind)
	}

	abs, err := filepath.Abs(draft.Path)
	if err != nil {
		return nil, failure.Wrap(failure.CategoryValidation, opAddRepository, err)
	}
	draft.Path = abs

	if strings.TrimSpace(draft.Name) == "" {
		draft.Name = filepath.Base(abs)
	}
	if draft.Kind == KindNone {
		draft.Kind = DetectKind(draft.URL)
	}

	repo, err := s.store.AddRepository(ctx, projectID, draft)
	if err != nil {
		s.logger.Error("failed to add repository",
			zap.Stringer("project_id", projectID),
			zap.String("path", abs),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("repository added",
		zap.Stringer("id", repo.ID),
		zap.String("path", repo.Path),
		zap.String("vcs", string(repo.Kind)))

	return repo, nil
}

func (s *Service) GetRepository(ctx context.Context, id uuid.UUID) (*Repository, error) {
	return s.store.GetRepository(ctx, id)
}

// FindRepository returns the repository registered at path, if any.
func (s *Service) FindRepository(ctx context.Context, path string) (*Repository, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, failure.Wrap(failure.CategoryValidation, "find repository", err)
	}

	return s.store.RepositoryByPath(ctx, abs)
}

func (s *Service) ListRepositories(ctx context.Context, projectID uuid.UUID) ([]Repository, error) {
	return s.store.ListRepositories(ctx, projectID)
}

func (s *Service) RemoveRepository(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteRepository(ctx, id); err != nil {
		s.logger.Error("failed to remove repository", zap.Stringer("id", id), zap.Error(err))
		return err
	}

	s.logger.Info("repository removed", zap.Stringer("id", id))

	return nil
}
