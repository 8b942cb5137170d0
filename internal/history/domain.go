package history

import (
	"time"

	"github.com/google/uuid"
)

// Type identifies the operation that produced an entry.
type Type string

const (
	TypeGitPull     Type = "git_pull"
	TypeGitPush     Type = "git_push"
	TypeGitCommit   Type = "git_commit"
	TypeGitDiff     Type = "git_diff"
	TypeGitClone    Type = "git_clone"
	TypeSvnUpdate   Type = "svn_update"
	TypeSvnCommit   Type = "svn_commit"
	TypeSvnDiff     Type = "svn_diff"
	TypeSvnCheckout Type = "svn_checkout"
	TypeBatchPull   Type = "batch_pull"
	TypeBatchPush   Type = "batch_push"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusPending Status = "pending"
)

type EntryDraft struct {
	Type           Type
	Status         Status
	RepositoryName string
	RepositoryPath string
	Message        string
	Duration       time.Duration
}

type Entry struct {
	EntryDraft

	ID        uuid.UUID
	Timestamp time.Time
}
