package projects

import (
	"time"

	"github.com/google/uuid"
)

// ProjectRequest is the payload of POST and PUT /projects.
type ProjectRequest struct {
	Name        string `json:"name"        validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=500"`
}

type ProjectResponse struct {
	ProjectRequest

	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RepositoryRequest is the payload of POST /projects/{id}/repositories.
// An empty vcs is detected from the URL.
type RepositoryRequest struct {
	Name string `json:"name" validate:"max=100"`
	Path string `json:"path" validate:"required"`
	URL  string `json:"url"  validate:"max=2048"`
	VCS  string `json:"vcs"  validate:"omitempty,oneof=git svn"`
}

type RepositoryResponse struct {
	RepositoryRequest

	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"project_id"`
	CreatedAt time.Time `json:"created_at"`
}

// OutcomeResponse is the result of one repository in a batch operation.
type OutcomeResponse struct {
	RepositoryID uuid.UUID `json:"repository_id"`
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	VCS          string    `json:"vcs"`
	Success      bool      `json:"success"`
	Message      string    `json:"message,omitempty"`
	Error        string    `json:"error,omitempty"`
	Category     string    `json:"category,omitempty"`
}

type BatchResponse struct {
	ProjectID uuid.UUID         `json:"project_id"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Results   []OutcomeResponse `json:"results"`
}
