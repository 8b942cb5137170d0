package projects

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pmtools/vcsbridge/internal/storage"
)

type projectModel struct {
	storage.BaseEntity

	Name        string `json:"name"`
	Description string `json:"description"`
}

func newProjectModel(draft ProjectDraft) *projectModel {
	return &projectModel{
		BaseEntity:  storage.NewBaseEntity(),
		Name:        draft.Name,
		Description: draft.Description,
	}
}

func (m *projectModel) StorageIndexes() []string {
	return []string{projectNameKey(m.Name)}
}

func (m *projectModel) MarshalStorage() ([]byte, error) {
	return json.Marshal(m)
}

func (m *projectModel) UnmarshalStorage(data []byte) error {
	return json.Unmarshal(data, m)
}

func newProject(model *projectModel) Project {
	return Project{
		ProjectDraft: ProjectDraft{
			Name:        model.Name,
			Description: model.Description,
		},
		ID:        model.ID,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

type repositoryModel struct {
	storage.BaseEntity

	ProjectID uuid.UUID `json:"project_id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	URL       string    `json:"url"`
	Kind      Kind      `json:"vcs"`
}

func newRepositoryModel(projectID uuid.UUID, draft RepositoryDraft) *repositoryModel {
	return &repositoryModel{
		BaseEntity: storage.NewBaseEntity(),
		ProjectID:  projectID,
		Name:       draft.Name,
		Path:       draft.Path,
		URL:        draft.URL,
		Kind:       draft.Kind,
	}
}

func (m *repositoryModel) StorageIndexes() []string {
	return []string{
		repositoryPathKey(m.Path),
		repositoryProjectPrefix(m.ProjectID) + m.ID.String(),
	}
}

func (m *repositoryModel) MarshalStorage() ([]byte, error) {
	return json.Marshal(m)
}

func (m *repositoryModel) UnmarshalStorage(data []byte) error {
	return json.Unmarshal(data, m)
}

func newRepository(model *repositoryModel) Repository {
	return Repository{
		RepositoryDraft: RepositoryDraft{
			Name: model.Name,
			Path: model.Path,
			URL:  model.URL,
			Kind: model.Kind,
		},
		ID:        model.ID,
		ProjectID: model.ProjectID,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
