package operations

import (
	"github.com/google/uuid"
	"github.com/pmtools/vcsbridge/internal/git"
	"github.com/pmtools/vcsbridge/internal/projects"
	"github.com/pmtools/vcsbridge/internal/svn"
)

// Target is the working copy an operation acts on. When Kind is empty it
// is taken from the project registry entry for Path.
type Target struct {
	Kind projects.Kind
	Path string
	// Name labels history entries; the registry name or the last path
	// element when empty.
	Name string
}

// Status is the backend-specific status of a working copy. Exactly one of
// Git and Svn is set.
type Status struct {
	Kind projects.Kind
	Git  *git.RepositoryStatus
	Svn  *svn.WorkingCopyStatus
}

// Outcome is the result of one repository in a batch.
type Outcome struct {
	RepositoryID uuid.UUID
	Name         string
	Path         string
	Kind         projects.Kind
	Message      string
	Err          error
}

func (o Outcome) Success() bool {
	return o.Err == nil
}

// BatchReport lists the outcome of every repository of a project.
type BatchReport struct {
	ProjectID uuid.UUID
	Outcomes  []Outcome
}

func (r BatchReport) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Success() {
			n++
		}
	}
	return n
}

func (r BatchReport) Failed() int {
	return len(r.Outcomes) - r.Succeeded()
}
