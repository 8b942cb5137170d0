package projects

import (
	"time"

	"github.com/google/uuid"
)

// Kind is the version control system of a registered repository.
type Kind string

const (
	KindGit  Kind = "git"
	KindSvn  Kind = "svn"
	KindNone Kind = ""
)

func (k Kind) Valid() bool {
	switch k {
	case KindGit, KindSvn, KindNone:
		return true
	}
	return false
}

type ProjectDraft struct {
	Name        string
	Description string
}

type Project struct {
	ProjectDraft

	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

type RepositoryDraft struct {
	Name string
	Path string
	URL  string
	Kind Kind
}

type Repository struct {
	RepositoryDraft

	ID        uuid.UUID
	ProjectID uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}
