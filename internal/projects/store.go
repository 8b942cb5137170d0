package projects

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/pmtools/vcsbridge/pkg/badgerfx"
)

const (
	prefixProject    = "project:"
	prefixRepository = "repository:"

	prefixProjectByID   = prefixProject + "id:"
	prefixProjectByName = prefixProject + "name:"

	prefixRepositoryByID      = prefixRepository + "id:"
	prefixRepositoryByPath    = prefixRepository + "path:"
	prefixRepositoryByProject = prefixRepository + "project:"
)

func projectNameKey(name string) string {
	return prefixProjectByName + url.QueryEscape(name)
}

func repositoryPathKey(path string) string {
	return prefixRepositoryByPath + url.QueryEscape(path)
}

func repositoryProjectPrefix(projectID uuid.UUID) string {
	return prefixRepositoryByProject + projectID.String() + ":"
}

// Store persists projects and their repositories.
type Store struct {
	db *badger.DB

	projects     *badgerfx.Repository[*projectModel]
	repositories *badgerfx.Repository[*repositoryModel]
}

func NewStore(db *badger.DB) *Store {
	return &Store{
		db: db,
		projects: badgerfx.NewRepository(prefixProjectByID, func() *projectModel {
			return new(projectModel)
		}),
		repositories: badgerfx.NewRepository(prefixRepositoryByID, func() *repositoryModel {
			return new(repositoryModel)
		}),
	}
}

// CreateProject stores a new project. Names are unique.
func (s *Store) CreateProject(_ context.Context, draft ProjectDraft) (*Project, error) {
	model := newProjectModel(draft)

	err := s.db.Update(func(txn *badger.Txn) error {
		exists, err := s.projects.Exists(txn, projectNameKey(model.Name))
		if err != nil {
			return fmt.Errorf("failed to check name uniqueness: %w", err)
		}
		if exists {
			return fmt.Errorf("%w: project with name %q", ErrConflict, model.Name)
		}

		return s.projects.Write(txn, model)
	})

	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	project := newProject(model)
	return &project, nil
}

func (s *Store) GetProject(_ context.Context, id uuid.UUID) (*Project, error) {
	var project Project

	err := s.db.View(func(txn *badger.Txn) error {
		model, err := s.getProject(txn, id)
		if err == nil {
			project = newProject(model)
		}

		return err
	})

	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return &project, nil
}

// ListProjects returns all projects, most recently updated first.
func (s *Store) ListProjects(_ context.Context) ([]Project, error) {
	var projects []Project

	err := s.db.View(func(txn *badger.Txn) error {
		models, err := s.projects.List(txn, badger.DefaultIteratorOptions)
		if err != nil {
			return err
		}

		for _, model := range models {
			projects = append(projects, newProject(model))
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	slices.SortStableFunc(projects, func(a, b Project) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})

	return projects, nil
}

// UpdateProject applies updater to a stored project. Renames keep names
// unique.
func (s *Store) UpdateProject(_ context.Context, id uuid.UUID, updater func(*ProjectDraft) error) (*Project, error) {
	var project Project

	err := s.db.Update(func(txn *badger.Txn) error {
		old, err := s.getProject(txn, id)
		if err != nil {
			return err
		}

		draft := newProject(old).ProjectDraft
		if updErr := updater(&draft); updErr != nil {
			return updErr
		}

		if draft.Name != old.Name {
			exists, existsErr := s.projects.Exists(txn, projectNameKey(draft.Name))
			if existsErr != nil {
				return fmt.Errorf("failed to check name uniqueness: %w", existsErr)
			}
			if exists {
				return fmt.Errorf("%w: project with name %q", ErrConflict, draft.Name)
			}
		}

		if rmErr := s.projects.DeleteIndexes(txn, old); rmErr != nil {
			return rmErr
		}

		model := *old
		model.Name = draft.Name
		model.Description = draft.Description
		model.Touch()

		if wrErr := s.projects.Write(txn, &model); wrErr != nil {
			return wrErr
		}

		project = newProject(&model)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return &project, nil
}

// DeleteProject removes a project together with its repositories and
// returns how many repositories were removed.
func (s *Store) DeleteProject(_ context.Context, id uuid.UUID) (int, error) {
	removed := 0

	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := s.getProject(txn, id); err != nil {
			return err
		}

		repos, err := s.repositories.ListByIndex(txn, repositoryProjectPrefix(id))
		if err != nil {
			return err
		}

		for _, repo := range repos {
			if delErr := s.repositories.Delete(txn, repo.StorageID()); delErr != nil {
				return delErr
			}
		}
		removed = len(repos)

		return s.projects.Delete(txn, id.String())
	})

	if err != nil {
		return 0, fmt.Errorf("failed to delete project: %w", err)
	}

	return removed, nil
}

// AddRepository registers a repository in a project. Paths are unique
// across all projects.
func (s *Store) AddRepository(_ context.Context, projectID uuid.UUID, draft RepositoryDraft) (*Repository, error) {
	model := newRepositoryModel(projectID, draft)

	err := s.db.Update(func(txn *badger.Txn) error {
		project, err := s.getProject(txn, projectID)
		if err != nil {
			return err
		}

		exists, err := s.repositories.Exists(txn, repositoryPathKey(model.Path))
		if err != nil {
			return fmt.Errorf("failed to check path uniqueness: %w", err)
		}
		if exists {
			return fmt.Errorf("%w: repository at %q", ErrConflict, model.Path)
		}

		if wrErr := s.repositories.Write(txn, model); wrErr != nil {
			return wrErr
		}

		project.Touch()
		return s.projects.Write(txn, project)
	})

	if err != nil {
		return nil, fmt.Errorf("failed to add repository: %w", err)
	}

	repo := newRepository(model)
	return &repo, nil
}

func (s *Store) GetRepository(_ context.Context, id uuid.UUID) (*Repository, error) {
	var repo Repository

	err := s.db.View(func(txn *badger.Txn) error {
		model, err := s.repositories.Read(txn, id.String())
		if errors.Is(err, badgerfx.ErrNotFound) {
			return fmt.Errorf("%w: repository %s", ErrNotFound, id)
		}
		if err != nil {
			return err
		}

		repo = newRepository(model)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to get repository: %w", err)
	}

	return &repo, nil
}

// RepositoryByPath finds the repository registered at path.
func (s *Store) RepositoryByPath(_ context.Context, path string) (*Repository, error) {
	var repo Repository

	err := s.db.View(func(txn *badger.Txn) error {
		model, err := s.repositories.ReadByIndex(txn, repositoryPathKey(path))
		if errors.Is(err, badgerfx.ErrNotFound) {
			return fmt.Errorf("%w: repository at %q", ErrNotFound, path)
		}
		if err != nil {
			return err
		}

		repo = newRepository(model)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to get repository by path: %w", err)
	}

	return &repo, nil
}

// ListRepositories returns the repositories of a project, newest first.
func (s *Store) ListRepositories(_ context.Context, projectID uuid.UUID) ([]Repository, error) {
	var repos []Repository

	err := s.db.View(func(txn *badger.Txn) error {
		if _, err := s.getProject(txn, projectID); err != nil {
			return err
		}

		models, err := s.repositories.ListByIndex(txn, repositoryProjectPrefix(projectID))
		if err != nil {
			return err
		}

		for _, model := range models {
			repos = append(repos, newRepository(model))
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}

	slices.SortStableFunc(repos, func(a, b Repository) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return repos, nil
}

func (s *Store) DeleteRepository(_ context.Context, id uuid.UUID) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		err := s.repositories.Delete(txn, id.String())
		if errors.Is(err, badgerfx.ErrNotFound) {
			return fmt.Errorf("%w: repository %s", ErrNotFound, id)
		}

		return err
	})

	if err != nil {
		return fmt.Errorf("failed to delete repository: %w", err)
	}

	return nil
}

func (s *Store) getProject(txn *badger.Txn, id uuid.UUID) (*projectModel, error) {
	model, err := s.projects.Read(txn, id.String())
	if errors.Is(err, badgerfx.ErrNotFound) {
		return nil, fmt.Errorf("%w: project %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	return model, nil
}
